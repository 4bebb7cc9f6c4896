package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/nicholas-fedor/updatecheck/internal/util"
	"github.com/nicholas-fedor/updatecheck/pkg/filters"
	"github.com/nicholas-fedor/updatecheck/pkg/types"
)

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "config.yaml"

// Configuration keys, matching the environment variable names.
const (
	KeyGotifyServer        = "GOTIFY_SERVER"
	KeyGotifyToken         = "GOTIFY_TOKEN"
	KeyIgnoreImages        = "IGNORE_IMAGES"
	KeyIgnoreRegistries    = "IGNORE_REGISTRIES"
	KeyGotifyTLSSkipVerify = "GOTIFY_TLS_SKIP_VERIFY"
	KeyGotifyCAFile        = "GOTIFY_CA_FILE"
)

// Validation errors, worded for operators.
var (
	ErrConfigNotFound          = errors.New("Configuration file not found.")
	ErrConfigUnreadable        = errors.New("Configuration file could not be read.")
	ErrGotifyServerMissing     = errors.New("Gotify server must be set. [GOTIFY_SERVER]")
	ErrGotifyServerInvalid     = errors.New("Gotify server must be an http or https URL. [GOTIFY_SERVER]")
	ErrGotifyTokenMissing      = errors.New("Gotify token must be set. [GOTIFY_TOKEN]")
	ErrGotifyTokenUnreadable   = errors.New("Gotify token file could not be read. [GOTIFY_TOKEN]")
	ErrIgnoreImagesInvalid     = errors.New("Ignore images value is empty or not a list. [IGNORE_IMAGES]")
	ErrIgnoreRegistriesInvalid = errors.New("Ignore registries value is empty or not a list. [IGNORE_REGISTRIES]")
	ErrTLSSkipVerifyInvalid    = errors.New("Gotify TLS skip verify must be a boolean. [GOTIFY_TLS_SKIP_VERIFY]")
)

// Config is the validated, immutable run configuration.
type Config struct {
	GotifyServer        string
	GotifyToken         string
	GotifyTLSSkipVerify bool
	GotifyCAFile        string
	IgnoreImages        []string
	IgnoreRegistries    []string
}

// Rules returns the ignore rules, including the implicit localhost registry.
func (c *Config) Rules() filters.IgnoreRules {
	return filters.NewIgnoreRules(c.IgnoreImages, c.IgnoreRegistries)
}

// Load reads and validates the configuration file.
//
// Parameters:
//   - fs: Filesystem holding the configuration and token files.
//   - path: Configuration file; empty uses DefaultPath.
//
// Returns:
//   - *Config: Validated configuration.
//   - error: A *types.SetupError wrapping one of the Err* values.
func Load(fs afero.Fs, path string) (*Config, error) {
	config, err := load(fs, path)
	if err != nil {
		return nil, &types.SetupError{Err: err}
	}

	return config, nil
}

// load does the work of Load without the setup error wrapping.
func load(fs afero.Fs, path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	clog := logrus.WithField("path", path)

	exists, err := afero.Exists(fs, path)
	if err != nil || !exists {
		return nil, ErrConfigNotFound
	}

	reader := viper.New()
	reader.SetFs(fs)
	reader.SetConfigFile(path)
	reader.SetConfigType(configType(path))

	for _, key := range []string{KeyGotifyServer, KeyGotifyToken} {
		if err := reader.BindEnv(key); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfigUnreadable, err)
		}
	}

	if err := reader.ReadInConfig(); err != nil {
		clog.WithError(err).Debug("Failed to parse configuration file")

		return nil, fmt.Errorf("%w: %w", ErrConfigUnreadable, err)
	}

	config := &Config{
		GotifyServer: strings.TrimSpace(reader.GetString(KeyGotifyServer)),
		GotifyCAFile: strings.TrimSpace(reader.GetString(KeyGotifyCAFile)),
	}

	if config.GotifyServer == "" {
		return nil, ErrGotifyServerMissing
	}

	if server, err := url.Parse(config.GotifyServer); err != nil ||
		(server.Scheme != "http" && server.Scheme != "https") || server.Host == "" {
		return nil, ErrGotifyServerInvalid
	}

	if config.GotifyToken, err = readToken(fs, reader.GetString(KeyGotifyToken)); err != nil {
		return nil, err
	}

	if config.IgnoreImages, err = optionalList(reader, KeyIgnoreImages, ErrIgnoreImagesInvalid); err != nil {
		return nil, err
	}

	if config.IgnoreRegistries, err = optionalList(reader, KeyIgnoreRegistries, ErrIgnoreRegistriesInvalid); err != nil {
		return nil, err
	}

	if reader.IsSet(KeyGotifyTLSSkipVerify) {
		if config.GotifyTLSSkipVerify, err = cast.ToBoolE(reader.Get(KeyGotifyTLSSkipVerify)); err != nil {
			return nil, ErrTLSSkipVerifyInvalid
		}
	}

	clog.WithFields(logrus.Fields{
		"server":            config.GotifyServer,
		"ignore_images":     len(config.IgnoreImages),
		"ignore_registries": len(config.IgnoreRegistries),
	}).Debug("Loaded configuration")

	return config, nil
}

// configType derives the viper format from the file extension, defaulting to yaml.
func configType(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "yml", "yaml", "":
		return "yaml"
	default:
		return ext
	}
}

// readToken returns the token, reading it from a file when value names one.
func readToken(fs afero.Fs, value string) (string, error) {
	token := strings.TrimSpace(value)
	if token == "" {
		return "", ErrGotifyTokenMissing
	}

	if !util.IsFilePath(fs, token) {
		return token, nil
	}

	content, err := afero.ReadFile(fs, token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGotifyTokenUnreadable, err)
	}

	token = strings.TrimSpace(string(content))
	if token == "" {
		return "", ErrGotifyTokenMissing
	}

	logrus.WithField("file", value).Debug("Read Gotify token from file")

	return token, nil
}

// optionalList reads a list key that may be absent but must be a non-empty list when present.
func optionalList(reader *viper.Viper, key string, invalid error) ([]string, error) {
	if !reader.IsSet(key) {
		return nil, nil
	}

	raw := reader.Get(key)

	switch raw.(type) {
	case []any, []string:
	default:
		return nil, invalid
	}

	values, err := cast.ToStringSliceE(raw)
	if err != nil {
		return nil, invalid
	}

	values = util.FilterEmpty(values)
	if len(values) == 0 {
		return nil, invalid
	}

	return values, nil
}
