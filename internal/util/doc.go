// Package util provides helpers shared by the runtime and registry backends.
// It includes external command execution, command output parsing and duration formatting.
//
// Key components:
//   - Runner / RunCommand: Executes an external tool under a context.
//   - CallWithTimeout: Bounds one runtime or registry query.
//   - SplitLines: Splits command output into non-empty lines.
//   - FormatDuration: Formats durations for logs ("1 minute, 3 seconds").
//
// Usage example:
//
//	out, err := util.RunCommand(ctx, "podman", "ps", "--format", "{{.ID}}")
//	ids := util.SplitLines(out)
package util
