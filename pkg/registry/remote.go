package registry

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/sirupsen/logrus"

	v1 "github.com/google/go-containerregistry/pkg/v1"

	"github.com/nicholas-fedor/updatecheck/pkg/types"
)

// remoteClientName identifies the registry API backend.
const remoteClientName = "remote"

// RemoteOptions configures a RemoteClient.
type RemoteOptions struct {
	// Keychain resolves credentials; nil uses Keychain{}.
	Keychain authn.Keychain
	// Platform selects the image from multi-platform indexes; nil uses the host platform.
	Platform *v1.Platform
	// Transport overrides the HTTP transport.
	Transport http.RoundTripper
	// Insecure allows plain HTTP registries.
	Insecure bool
}

// RemoteClient implements types.RegistryClient on top of the registry HTTP API.
type RemoteClient struct {
	keychain  authn.Keychain
	platform  v1.Platform
	transport http.RoundTripper
	insecure  bool
}

// NewRemoteClient creates a registry client.
//
// Parameters:
//   - opts: Client options.
//
// Returns:
//   - *RemoteClient: Initialized client.
func NewRemoteClient(opts RemoteOptions) *RemoteClient {
	client := &RemoteClient{
		keychain:  opts.Keychain,
		transport: opts.Transport,
		insecure:  opts.Insecure,
		platform: v1.Platform{
			OS:           "linux",
			Architecture: runtime.GOARCH,
		},
	}

	if client.keychain == nil {
		client.keychain = Keychain{}
	}

	if opts.Platform != nil {
		client.platform = *opts.Platform
	}

	return client
}

// Name identifies the backend.
func (c *RemoteClient) Name() string {
	return remoteClientName
}

// Ping has nothing to verify before the first registry request.
func (c *RemoteClient) Ping(_ context.Context) error {
	logrus.WithField("platform", c.platform.String()).Debug("Using registry API client")

	return nil
}

// RemoteCreated returns the creation time recorded in the image config in the registry.
//
// Parameters:
//   - ctx: Context bounding all registry requests.
//   - imageName: Registry-qualified image name.
//
// Returns:
//   - time.Time: Creation time of the image for the configured platform.
//   - error: Non-nil if the reference is invalid, the registry fails, or the date is missing.
func (c *RemoteClient) RemoteCreated(ctx context.Context, imageName string) (time.Time, error) {
	clog := logrus.WithField("image", imageName)

	var nameOpts []name.Option
	if c.insecure {
		nameOpts = append(nameOpts, name.Insecure)
	}

	ref, err := name.ParseReference(imageName, nameOpts...)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %w", errInvalidReference, imageName, err)
	}

	remoteOpts := []remote.Option{
		remote.WithContext(ctx),
		remote.WithAuthFromKeychain(c.keychain),
		remote.WithPlatform(c.platform),
	}
	if c.transport != nil {
		remoteOpts = append(remoteOpts, remote.WithTransport(c.transport))
	}

	img, err := remote.Image(ref, remoteOpts...)
	if err != nil {
		clog.WithError(err).Debug("Failed to fetch remote image")

		return time.Time{}, fmt.Errorf("%w: %s: %w", errFetchImageFailed, ref.Name(), err)
	}

	config, err := img.ConfigFile()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %w", errReadConfigFailed, ref.Name(), err)
	}

	created := config.Created.Time
	if err := types.CheckCreated(created); err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %w", errReadConfigFailed, ref.Name(), err)
	}

	clog.WithField("created", created).Trace("Resolved remote created date")

	return created, nil
}
