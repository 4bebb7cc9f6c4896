package session

import (
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/updatecheck/pkg/types"
)

// Progress collects image outcomes during a run.
//
// It is safe for concurrent use. Outcomes are keyed by inventory index so that
// the report keeps inventory order regardless of completion order. Outcomes
// added after Report are ignored.
type Progress struct {
	mu       sync.Mutex
	started  time.Time
	statuses map[int]*ImageStatus
	report   *Report
}

// NewProgress creates an empty collector.
//
// Parameters:
//   - size: Expected number of inventory entries.
//
// Returns:
//   - *Progress: Collector with its start time set to now.
func NewProgress(size int) *Progress {
	return &Progress{
		started:  time.Now(),
		statuses: make(map[int]*ImageStatus, size),
	}
}

// AddSkipped records an image removed by the filter chain.
//
// Parameters:
//   - index: Inventory position.
//   - name: Image name.
//   - reason: Filter that removed it.
func (p *Progress) AddSkipped(index int, name, reason string) {
	p.add(&ImageStatus{
		Index:  index,
		Name:   name,
		State:  SkippedState,
		Reason: reason,
	})
}

// AddChecked records a completed comparison.
//
// Parameters:
//   - index: Inventory position.
//   - ref: Image compared.
//   - local: Local created date.
//   - remote: Remote created date.
func (p *Progress) AddChecked(index int, ref types.ImageRef, local, remote time.Time) {
	state := FreshState
	if types.IsOutdated(local, remote) {
		state = OutdatedState
	}

	p.add(&ImageStatus{
		Index:       index,
		Name:        ref.Name,
		ImageID:     ref.ID,
		ContainerID: ref.ContainerID,
		State:       state,
		Local:       &local,
		Remote:      &remote,
	})
}

// AddFailed records an image whose timestamps could not be resolved.
//
// Parameters:
//   - index: Inventory position.
//   - ref: Image that failed.
//   - err: Cause.
func (p *Progress) AddFailed(index int, ref types.ImageRef, err error) {
	p.add(&ImageStatus{
		Index:       index,
		Name:        ref.Name,
		ImageID:     ref.ID,
		ContainerID: ref.ContainerID,
		State:       FailedState,
		Err:         err,
		ErrMessage:  err.Error(),
	})
}

// add stores a status unless the run has been frozen.
func (p *Progress) add(status *ImageStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()

	clog := logrus.WithFields(logrus.Fields{
		"image": status.Name,
		"index": status.Index,
		"state": status.State.String(),
	})

	if p.report != nil {
		clog.Warn("Ignoring image outcome recorded after the run finished")

		return
	}

	if _, exists := p.statuses[status.Index]; exists {
		clog.Warn("Ignoring duplicate outcome for inventory entry")

		return
	}

	p.statuses[status.Index] = status

	clog.Debug("Recorded image outcome")
}

// Report freezes the collector and returns the run result.
//
// Subsequent calls return the same report.
//
// Returns:
//   - *Report: Counts, ordered outdated names and per-image outcomes.
func (p *Progress) Report() *Report {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.report != nil {
		return p.report
	}

	indexes := make([]int, 0, len(p.statuses))
	for index := range p.statuses {
		indexes = append(indexes, index)
	}

	sort.Ints(indexes)

	p.report = newReport(p.started, time.Now(), indexes, p.statuses)

	logrus.WithFields(logrus.Fields{
		"checked":  p.report.Checked,
		"skipped":  p.report.Skipped,
		"errored":  p.report.Errored,
		"outdated": len(p.report.Outdated),
	}).Debug("Generated report")

	return p.report
}
