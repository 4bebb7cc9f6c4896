// Package cmd contains the command-line interface (CLI) definition and execution logic for updatecheck.
// It provides the root command, which performs a single check run and exits.
//
// Key components:
//   - rootCmd: Root command wiring configuration, backends, notifications, and metrics.
//   - RunConfig: Struct for configuring execution.
//
// Usage examples:
//   - Run the CLI from main.go:
//     cmd.Execute()
//   - Check running containers against their registries:
//     updatecheck --config /etc/updatecheck/config.yaml
//
// The package integrates with actions, container, registry, notifications, and flags packages,
// using Cobra for CLI parsing and logrus for logging.
package cmd
