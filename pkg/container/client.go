package container

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	cerrdefs "github.com/containerd/errdefs"
	dockerContainer "github.com/docker/docker/api/types/container"
	dockerFilters "github.com/docker/docker/api/types/filters"
	dockerImage "github.com/docker/docker/api/types/image"
	dockerClient "github.com/docker/docker/client"

	"github.com/nicholas-fedor/updatecheck/pkg/types"
)

// apiClientName identifies the Docker Engine API backend.
const apiClientName = "docker-api"

// danglingTag is how runtimes render an untagged image.
const danglingTag = "<none>"

// client is the Docker Engine API implementation of types.RuntimeClient.
type client struct {
	api dockerClient.APIClient
	ClientOptions
}

// ClientOptions configures the behavior of the Docker Engine API client.
type ClientOptions struct {
	// IncludeRestarting also lists containers in the "restarting" state.
	IncludeRestarting bool
	// Host overrides DOCKER_HOST when non-empty.
	Host string
}

// NewClient initializes a Docker Engine API client.
//
// It is configured from the environment (DOCKER_HOST, DOCKER_API_VERSION, DOCKER_CERT_PATH,
// DOCKER_TLS_VERIFY) and negotiates the API version with the daemon on first use.
//
// Parameters:
//   - opts: Options to customize listing behavior.
//
// Returns:
//   - types.RuntimeClient: Initialized client.
//   - error: Non-nil if the client cannot be constructed.
func NewClient(opts ClientOptions) (types.RuntimeClient, error) {
	clientOpts := []dockerClient.Opt{
		dockerClient.FromEnv,
		dockerClient.WithAPIVersionNegotiation(),
	}
	if opts.Host != "" {
		clientOpts = append(clientOpts, dockerClient.WithHost(opts.Host))
	}

	cli, err := dockerClient.NewClientWithOpts(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Docker client: %w", err)
	}

	logrus.WithField("host", cli.DaemonHost()).Debug("Initialized Docker client")

	return &client{
		api:           cli,
		ClientOptions: opts,
	}, nil
}

// Name identifies the backend.
func (c *client) Name() string {
	return apiClientName
}

// Ping verifies the daemon answers.
//
// Parameters:
//   - ctx: Context for the request.
//
// Returns:
//   - error: Non-nil if the daemon is unreachable.
func (c *client) Ping(ctx context.Context) error {
	ping, err := c.api.Ping(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", errPingFailed, err)
	}

	logrus.WithFields(logrus.Fields{
		"api_version": ping.APIVersion,
		"os_type":     ping.OSType,
	}).Debug("Container runtime answered ping")

	return nil
}

// ListContainers retrieves the IDs of running containers.
//
// Parameters:
//   - ctx: Context for the request.
//
// Returns:
//   - []types.ContainerID: IDs in the order reported by the daemon.
//   - error: Non-nil if listing fails.
func (c *client) ListContainers(ctx context.Context) ([]types.ContainerID, error) {
	clog := logrus.WithField("include_restarting", c.IncludeRestarting)
	clog.Debug("Retrieving container list")

	filterArgs := dockerFilters.NewArgs()
	filterArgs.Add("status", "running")

	if c.IncludeRestarting {
		filterArgs.Add("status", "restarting")
	}

	containers, err := c.api.ContainerList(ctx, dockerContainer.ListOptions{Filters: filterArgs})
	if err != nil {
		clog.WithError(err).Debug("Failed to list containers")

		return nil, fmt.Errorf("%w: %w", errListContainersFailed, err)
	}

	ids := make([]types.ContainerID, 0, len(containers))
	for _, summary := range containers {
		ids = append(ids, types.ContainerID(summary.ID))
	}

	clog.WithField("count", len(ids)).Debug("Listed containers")

	return ids, nil
}

// ListImages retrieves all tagged local images as "repository:tag".
//
// Parameters:
//   - ctx: Context for the request.
//
// Returns:
//   - []string: Image names; an image with several tags yields several names.
//   - error: Non-nil if listing fails.
func (c *client) ListImages(ctx context.Context) ([]string, error) {
	images, err := c.api.ImageList(ctx, dockerImage.ListOptions{})
	if err != nil {
		logrus.WithError(err).Debug("Failed to list images")

		return nil, fmt.Errorf("%w: %w", errListImagesFailed, err)
	}

	names := []string{}

	for _, summary := range images {
		for _, tag := range summary.RepoTags {
			if strings.Contains(tag, danglingTag) {
				continue
			}

			names = append(names, tag)
		}
	}

	logrus.WithField("count", len(names)).Debug("Listed images")

	return names, nil
}

// InspectContainerImage resolves a container to its image name and content ID.
//
// Parameters:
//   - ctx: Context for the request.
//   - id: Container to inspect.
//
// Returns:
//   - types.ImageRef: Image name from the container config and the image content ID.
//   - error: Non-nil if inspection fails or the container has no image name.
func (c *client) InspectContainerImage(
	ctx context.Context,
	id types.ContainerID,
) (types.ImageRef, error) {
	clog := logrus.WithField("container_id", id.ShortID())

	info, err := c.api.ContainerInspect(ctx, string(id))
	if err != nil {
		clog.WithError(err).Debug("Failed to inspect container")

		return types.ImageRef{}, fmt.Errorf("%w: %s: %w", errInspectContainerFailed, id.ShortID(), err)
	}

	if info.Config == nil || info.Config.Image == "" {
		return types.ImageRef{}, fmt.Errorf("%w: %s", errNoImageName, id.ShortID())
	}

	ref := types.ImageRef{
		Name:        info.Config.Image,
		ID:          types.ImageID(info.Image),
		ContainerID: id,
	}

	clog.WithFields(logrus.Fields{
		"image":    ref.Name,
		"image_id": ref.ID.ShortID(),
	}).Debug("Resolved container image")

	return ref, nil
}

// ImageCreated returns the creation time of a local image.
//
// Parameters:
//   - ctx: Context for the request.
//   - key: Image content ID or name.
//
// Returns:
//   - time.Time: Creation time recorded in the image config.
//   - error: Non-nil if the image is unknown or its date cannot be parsed.
func (c *client) ImageCreated(ctx context.Context, key string) (time.Time, error) {
	info, err := c.api.ImageInspect(ctx, key)
	if err != nil {
		if cerrdefs.IsNotFound(err) {
			return time.Time{}, fmt.Errorf("%w: %s", errImageNotFound, key)
		}

		return time.Time{}, fmt.Errorf("%w: %s: %w", errInspectImageFailed, key, err)
	}

	created, err := types.ParseCreated(info.Created)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %w", errInspectImageFailed, key, err)
	}

	return created, nil
}
