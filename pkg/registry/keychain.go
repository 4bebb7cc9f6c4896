package registry

import (
	"fmt"
	"os"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/sirupsen/logrus"

	dockerCliConfig "github.com/docker/cli/cli/config"
	dockerConfigConfigfile "github.com/docker/cli/cli/config/configfile"
	dockerConfigCredentials "github.com/docker/cli/cli/config/credentials"
	dockerConfigTypes "github.com/docker/cli/cli/config/types"

	"github.com/nicholas-fedor/updatecheck/pkg/registry/helpers"
)

// Keychain resolves registry credentials for go-containerregistry.
//
// Environment credentials (REPO_USER, REPO_PASS) apply to every registry and win
// over the Docker CLI config. Registries without credentials are accessed anonymously.
type Keychain struct {
	// ConfigDir is the Docker CLI config directory; empty uses DOCKER_CONFIG or ~/.docker.
	ConfigDir string
}

// Resolve implements authn.Keychain.
//
// Parameters:
//   - target: Registry or repository being accessed.
//
// Returns:
//   - authn.Authenticator: Credentials for the registry, or authn.Anonymous.
//   - error: Non-nil if the Docker config exists but cannot be loaded.
func (k Keychain) Resolve(target authn.Resource) (authn.Authenticator, error) {
	clog := logrus.WithField("registry", target.RegistryStr())

	auth, err := EnvCredentials()
	if err != nil {
		clog.WithError(err).Trace("Environment auth not available, trying config file")

		server, addrErr := registryServer(target)
		if addrErr != nil {
			return nil, addrErr
		}

		auth, err = ConfigCredentials(k.ConfigDir, server)
		if err != nil {
			return nil, err
		}
	}

	if auth == (dockerConfigTypes.AuthConfig{}) {
		clog.Debug("No registry credentials found, using anonymous access")

		return authn.Anonymous, nil
	}

	clog.WithField("username", auth.Username).Debug("Using registry credentials")

	return authn.FromConfig(authn.AuthConfig{
		Username:      auth.Username,
		Password:      auth.Password,
		Auth:          auth.Auth,
		IdentityToken: auth.IdentityToken,
		RegistryToken: auth.RegistryToken,
	}), nil
}

// EnvCredentials reads REPO_USER and REPO_PASS from the environment.
//
// Returns:
//   - dockerConfigTypes.AuthConfig: Credentials from the environment.
//   - error: Non-nil if either variable is unset.
func EnvCredentials() (dockerConfigTypes.AuthConfig, error) {
	username := os.Getenv("REPO_USER")
	password := os.Getenv("REPO_PASS")

	if username == "" || password == "" {
		return dockerConfigTypes.AuthConfig{}, errUnsetRegAuthVars
	}

	logrus.WithField("username", username).Debug("Loaded auth credentials from environment")

	return dockerConfigTypes.AuthConfig{
		Username: username,
		Password: password,
	}, nil
}

// registryServer returns the host credentials are stored under for target.
func registryServer(target authn.Resource) (string, error) {
	if target.String() == target.RegistryStr() {
		if target.RegistryStr() == helpers.DefaultRegistryDomain {
			return helpers.DefaultRegistryHost, nil
		}

		return target.RegistryStr(), nil
	}

	server, err := helpers.GetRegistryAddress(target.String())
	if err != nil {
		return "", fmt.Errorf("%w: %w", errFailedGetRegistryAddress, err)
	}

	return server, nil
}

// ConfigCredentials looks up credentials for a registry in the Docker CLI config.
//
// Parameters:
//   - configDir: Config directory; empty uses the Docker CLI default.
//   - server: Registry host, e.g. "ghcr.io" or "index.docker.io".
//
// Returns:
//   - dockerConfigTypes.AuthConfig: Stored credentials, empty if none are stored.
//   - error: Non-nil if the config file cannot be parsed.
func ConfigCredentials(configDir, server string) (dockerConfigTypes.AuthConfig, error) {
	configFile, err := dockerCliConfig.Load(configDir)
	if err != nil {
		logrus.WithError(err).WithField("config_dir", configDir).Debug("Failed to load Docker config")

		return dockerConfigTypes.AuthConfig{}, fmt.Errorf("%w: %w", errFailedLoadDockerConfig, err)
	}

	auth, err := CredentialsStore(*configFile).Get(server)
	if err != nil {
		// A broken credential helper is treated like missing credentials.
		logrus.WithError(err).WithField("server", server).Debug("Credential store lookup failed")

		return dockerConfigTypes.AuthConfig{}, nil
	}

	logrus.WithFields(logrus.Fields{
		"server":      server,
		"config_file": configFile.Filename,
		"found":       auth.Username != "" || auth.IdentityToken != "",
	}).Debug("Looked up credentials in Docker config")

	return auth, nil
}

// CredentialsStore returns a new credentials store based on the settings provided in the configuration file.
// It determines whether to use a native or file-based store depending on the config.
func CredentialsStore(configFile dockerConfigConfigfile.ConfigFile) dockerConfigCredentials.Store {
	if configFile.CredentialsStore != "" {
		return dockerConfigCredentials.NewNativeStore(&configFile, configFile.CredentialsStore)
	}

	return dockerConfigCredentials.NewFileStore(&configFile)
}
