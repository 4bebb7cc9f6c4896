package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Output formats accepted by NewPrinter.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// errUnknownFormat indicates an unsupported output format was requested.
var errUnknownFormat = errors.New("unknown output format")

// Printer writes the operator-facing output of a run.
//
// In text mode every event is printed as it happens, followed by the summary.
// In JSON mode events are suppressed and the summary is the whole report.
// Printer is safe for concurrent use.
type Printer struct {
	mu     sync.Mutex
	out    io.Writer
	format string
}

// NewPrinter creates a printer.
//
// Parameters:
//   - out: Destination, usually standard output.
//   - format: FormatText or FormatJSON.
//
// Returns:
//   - *Printer: Initialized printer.
//   - error: Non-nil if format is unknown.
func NewPrinter(out io.Writer, format string) (*Printer, error) {
	if format != FormatText && format != FormatJSON {
		return nil, fmt.Errorf("%w: %q", errUnknownFormat, format)
	}

	return &Printer{out: out, format: format}, nil
}

// Skipping announces an image removed by the filter chain.
func (p *Printer) Skipping(name, reason string) {
	p.line("Skipping %s (%s)", name, reason)
}

// Checking announces an image about to be compared.
func (p *Printer) Checking(name string) {
	p.line("Checking %s", name)
}

// FoundUpdate announces an outdated image.
func (p *Printer) FoundUpdate(name string) {
	p.line("Found update for %s", name)
}

// Unable announces an image whose timestamps could not be resolved.
func (p *Printer) Unable(name string, err error) {
	p.line("Unable to check %s: %v", name, err)
}

// Sending announces the notification dispatch.
func (p *Printer) Sending() {
	p.line("Sending notification")
}

// Sent confirms the notification was delivered.
func (p *Printer) Sent() {
	p.line("Sent notification")
}

// Summary prints the run result.
//
// Parameters:
//   - report: Frozen run result.
//
// Returns:
//   - error: Non-nil if the output cannot be written.
func (p *Printer) Summary(report *Report) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.format == FormatJSON {
		encoder := json.NewEncoder(p.out)
		encoder.SetIndent("", "  ")

		if err := encoder.Encode(report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}

		return nil
	}

	lines := []string{
		fmt.Sprintf("Checked: %d", report.Checked),
		fmt.Sprintf("Skipped: %d", report.Skipped),
		fmt.Sprintf("Updates: %d", len(report.Outdated)),
	}
	if report.Errored > 0 {
		lines = append(lines, fmt.Sprintf("Errors: %d", report.Errored))
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(p.out, line); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	return nil
}

// line prints one text-mode event.
func (p *Printer) line(format string, args ...any) {
	if p.format != FormatText {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	_, _ = fmt.Fprintf(p.out, format+"\n", args...)
}
