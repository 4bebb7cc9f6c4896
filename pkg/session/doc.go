// Package session aggregates the outcome of a check run.
//
// Key components:
//   - State: Enum for image outcomes (Skipped, Fresh, Outdated, Failed).
//   - ImageStatus: Outcome of one inventory entry.
//   - Progress: Concurrency-safe collector, indexed by inventory position.
//   - Report: Frozen result with counts and the ordered list of outdated images.
//   - Printer: Operator-facing output, as text lines or one JSON document.
//
// Usage example:
//
//	progress := session.NewProgress(len(images))
//	progress.AddSkipped(0, "localhost/app:1", "registry ignore")
//	progress.AddChecked(1, image, local, remote)
//	report := progress.Report()
//	fmt.Println(report.Checked, report.Outdated)
package session
