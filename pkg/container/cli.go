package container

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/updatecheck/internal/util"
	"github.com/nicholas-fedor/updatecheck/pkg/types"
)

// Supported command-line runtimes.
const (
	Podman = "podman"
	Docker = "docker"
)

// cliTemplates holds the Go templates each runtime understands for inspection.
type cliTemplates struct {
	containerImage string // Prints "<image name> <image id>" for a container.
}

// templates maps runtimes to their inspection templates.
var templates = map[string]cliTemplates{
	Podman: {containerImage: "{{.ImageName}} {{.Image}}"},
	Docker: {containerImage: "{{.Config.Image}} {{.Image}}"},
}

// CLIClient implements types.RuntimeClient by invoking the podman or docker binary.
type CLIClient struct {
	binary    string
	templates cliTemplates
	run       util.Runner
}

// NewCLIClient creates a client driving the given runtime binary.
//
// Parameters:
//   - binary: Podman or Docker.
//   - run: Command runner; nil uses util.RunCommand.
//
// Returns:
//   - *CLIClient: Initialized client.
//   - error: Non-nil if the runtime is not supported.
func NewCLIClient(binary string, run util.Runner) (*CLIClient, error) {
	tpl, ok := templates[binary]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errUnsupportedRuntime, binary)
	}

	if run == nil {
		run = util.RunCommand
	}

	return &CLIClient{binary: binary, templates: tpl, run: run}, nil
}

// Name identifies the backend.
func (c *CLIClient) Name() string {
	return c.binary
}

// Ping verifies the binary is installed and runs.
func (c *CLIClient) Ping(ctx context.Context) error {
	if _, err := util.LookupTool(c.binary); err != nil {
		return err
	}

	version, err := c.run(ctx, c.binary, "--version")
	if err != nil {
		return fmt.Errorf("%w: %w", errPingFailed, err)
	}

	logrus.WithField("version", strings.TrimSpace(version)).Debug("Container runtime answered ping")

	return nil
}

// ListContainers retrieves the IDs of running containers.
func (c *CLIClient) ListContainers(ctx context.Context) ([]types.ContainerID, error) {
	out, err := c.run(ctx, c.binary, "ps", "--no-trunc", "--format", "{{.ID}}")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errListContainersFailed, err)
	}

	lines := util.SplitLines(out)
	ids := make([]types.ContainerID, 0, len(lines))

	for _, line := range lines {
		ids = append(ids, types.ContainerID(line))
	}

	logrus.WithField("count", len(ids)).Debug("Listed containers")

	return ids, nil
}

// ListImages retrieves all tagged local images as "repository:tag".
func (c *CLIClient) ListImages(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, c.binary, "images", "--format", "{{.Repository}}:{{.Tag}}")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errListImagesFailed, err)
	}

	names := []string{}

	for _, line := range util.SplitLines(out) {
		if strings.Contains(line, danglingTag) {
			continue
		}

		names = append(names, line)
	}

	logrus.WithField("count", len(names)).Debug("Listed images")

	return names, nil
}

// InspectContainerImage resolves a container to its image name and content ID in one call.
func (c *CLIClient) InspectContainerImage(
	ctx context.Context,
	id types.ContainerID,
) (types.ImageRef, error) {
	out, err := c.run(ctx, c.binary, "container", "inspect", string(id), "--format", c.templates.containerImage)
	if err != nil {
		return types.ImageRef{}, fmt.Errorf("%w: %s: %w", errInspectContainerFailed, id.ShortID(), err)
	}

	fields := strings.Fields(out)
	if len(fields) == 0 {
		return types.ImageRef{}, fmt.Errorf("%w: %s", errNoImageName, id.ShortID())
	}

	ref := types.ImageRef{Name: fields[0], ContainerID: id}
	if len(fields) > 1 {
		ref.ID = types.ImageID(fields[1])
	}

	return ref, nil
}

// ImageCreated returns the creation time of a local image.
func (c *CLIClient) ImageCreated(ctx context.Context, key string) (time.Time, error) {
	out, err := c.run(ctx, c.binary, "image", "inspect", key, "--format", "{{.Created}}")
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %w", errInspectImageFailed, key, err)
	}

	lines := util.SplitLines(out)
	if len(lines) == 0 {
		return time.Time{}, fmt.Errorf("%w: %s", errImageNotFound, key)
	}

	created, err := types.ParseCreated(lines[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %w", errInspectImageFailed, key, err)
	}

	return created, nil
}
