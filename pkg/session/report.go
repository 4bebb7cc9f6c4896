package session

import "time"

// Report is the frozen result of a run.
type Report struct {
	Checked  int            `json:"checked"`  // Images compared, outdated or not.
	Skipped  int            `json:"skipped"`  // Images removed by the filter chain.
	Errored  int            `json:"errored"`  // Images whose timestamps could not be resolved.
	Outdated []string       `json:"outdated"` // Outdated image names, in inventory order.
	Images   []*ImageStatus `json:"images"`   // Every outcome, in inventory order.
	Started  time.Time      `json:"started"`
	Finished time.Time      `json:"finished"`
}

// newReport builds a report from statuses visited in index order.
func newReport(started, finished time.Time, indexes []int, statuses map[int]*ImageStatus) *Report {
	report := &Report{
		Outdated: []string{},
		Images:   make([]*ImageStatus, 0, len(indexes)),
		Started:  started,
		Finished: finished,
	}

	for _, index := range indexes {
		status := statuses[index]
		report.Images = append(report.Images, status)

		switch status.State {
		case SkippedState:
			report.Skipped++
		case FreshState:
			report.Checked++
		case OutdatedState:
			report.Checked++
			report.Outdated = append(report.Outdated, status.Name)
		case FailedState:
			report.Errored++
		case UnknownState:
		}
	}

	return report
}

// Total returns the number of inventory entries accounted for.
func (r *Report) Total() int {
	return r.Checked + r.Skipped + r.Errored
}

// HasUpdates reports whether any image is outdated.
func (r *Report) HasUpdates() bool {
	return len(r.Outdated) > 0
}

// Duration returns how long the run took.
func (r *Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Failed returns the outcomes that could not be resolved.
func (r *Report) Failed() []*ImageStatus {
	failed := []*ImageStatus{}

	for _, status := range r.Images {
		if status.State == FailedState {
			failed = append(failed, status)
		}
	}

	return failed
}
