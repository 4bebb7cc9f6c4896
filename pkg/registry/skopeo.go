package registry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/updatecheck/internal/util"
	"github.com/nicholas-fedor/updatecheck/pkg/types"
)

// skopeoBinary is the skopeo executable name.
const skopeoBinary = "skopeo"

// SkopeoClient implements types.RegistryClient by invoking "skopeo inspect".
type SkopeoClient struct {
	run util.Runner
}

// NewSkopeoClient creates a skopeo-backed registry client.
//
// Parameters:
//   - run: Command runner; nil uses util.RunCommand.
//
// Returns:
//   - *SkopeoClient: Initialized client.
func NewSkopeoClient(run util.Runner) *SkopeoClient {
	if run == nil {
		run = util.RunCommand
	}

	return &SkopeoClient{run: run}
}

// Name identifies the backend.
func (c *SkopeoClient) Name() string {
	return skopeoBinary
}

// Ping verifies skopeo is installed and runs.
func (c *SkopeoClient) Ping(ctx context.Context) error {
	if _, err := util.LookupTool(skopeoBinary); err != nil {
		return err
	}

	version, err := c.run(ctx, skopeoBinary, "--version")
	if err != nil {
		return fmt.Errorf("%w: %w", errPingFailed, err)
	}

	logrus.WithField("version", strings.TrimSpace(version)).Debug("Registry tool answered ping")

	return nil
}

// RemoteCreated returns the creation time of the image in its registry.
//
// Parameters:
//   - ctx: Context bounding the skopeo process.
//   - imageName: Registry-qualified image name.
//
// Returns:
//   - time.Time: Creation time printed by skopeo.
//   - error: Non-nil if skopeo fails or prints an unparsable date.
func (c *SkopeoClient) RemoteCreated(ctx context.Context, imageName string) (time.Time, error) {
	out, err := c.run(ctx, skopeoBinary, "inspect", "docker://"+imageName, "--format", "{{.Created}}")
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %w", errInspectFailed, imageName, err)
	}

	var raw string
	if lines := util.SplitLines(out); len(lines) > 0 {
		raw = lines[0]
	}

	created, err := types.ParseCreated(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %w", errInspectFailed, imageName, err)
	}

	return created, nil
}
