package util

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrCommandFailed indicates an external command exited unsuccessfully.
var ErrCommandFailed = errors.New("command failed")

// ErrToolNotFound indicates an external command is not installed.
var ErrToolNotFound = errors.New("tool not found")

// Runner executes an external command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) (string, error)

// RunCommand executes name with args, bound to ctx.
//
// A context deadline or cancellation kills the process and is returned as the error.
//
// Parameters:
//   - ctx: Context bounding the command.
//   - name: Executable name, resolved through PATH.
//   - args: Arguments passed verbatim, without a shell.
//
// Returns:
//   - string: Standard output.
//   - error: Non-nil if the command could not start or exited non-zero; stderr is included.
func RunCommand(ctx context.Context, name string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	clog := logrus.WithFields(logrus.Fields{
		"command": name,
		"args":    args,
	})
	clog.Trace("Running external command")

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), ctxErr)
		}

		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrToolNotFound, name)
		}

		clog.WithError(err).WithField("stderr", stderr.String()).Debug("External command failed")

		return "", fmt.Errorf(
			"%w: %s %s: %w: %s",
			ErrCommandFailed,
			name,
			strings.Join(args, " "),
			err,
			strings.TrimSpace(stderr.String()),
		)
	}

	return stdout.String(), nil
}

// LookupTool verifies that name can be executed.
//
// Returns:
//   - string: Resolved path.
//   - error: Wraps ErrToolNotFound if name is not on PATH.
func LookupTool(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrToolNotFound, name, err)
	}

	return path, nil
}
