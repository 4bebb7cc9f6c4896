package actions

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/nicholas-fedor/updatecheck/internal/util"
	"github.com/nicholas-fedor/updatecheck/pkg/filters"
	"github.com/nicholas-fedor/updatecheck/pkg/inventory"
	"github.com/nicholas-fedor/updatecheck/pkg/session"
	"github.com/nicholas-fedor/updatecheck/pkg/types"
)

// CheckParams configures a check run.
type CheckParams struct {
	Source      inventory.Source     // Images to check.
	Runtime     types.RuntimeClient  // Local created dates.
	Registry    types.RegistryClient // Remote created dates.
	Rules       filters.IgnoreRules  // Ignore lists.
	Deduplicate bool                 // Check each image name once.
	Workers     int                  // Concurrent comparisons; values below 1 mean 1.
	Timeout     time.Duration        // Bound for each runtime or registry call, inventory included; 0 disables it.
	Printer     *session.Printer     // Operator-facing output.
}

// validate reports missing collaborators.
func (p CheckParams) validate() error {
	switch {
	case p.Source == nil:
		return errMissingSource
	case p.Runtime == nil || p.Registry == nil:
		return errMissingClient
	case p.Printer == nil:
		return errMissingPrinter
	default:
		return nil
	}
}

// Check compares every inventory entry with its registry.
//
// The filter chain runs in inventory order on the calling goroutine, so the
// first occurrence of a name is the one checked. Comparisons run on up to
// params.Workers goroutines. A failed lookup is recorded for its image and
// the run continues. Every inventory entry ends up in exactly one of the
// report's checked, skipped or errored counts.
//
// Parameters:
//   - ctx: Run context; cancellation aborts outstanding lookups.
//   - params: Run configuration.
//
// Returns:
//   - *session.Report: Result of the run, also returned on cancellation.
//   - error: Non-nil if params are incomplete or ctx was canceled.
func Check(ctx context.Context, params CheckParams) (*session.Report, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	var seen filters.SeenSet
	if params.Deduplicate {
		seen = filters.NewSeenSet()
	}

	filter, desc := filters.BuildFilter(params.Rules, seen)
	logrus.WithField("inventory", params.Source.Name()).Info(desc)

	images := params.Source.Images(ctx, params.Timeout)
	progress := session.NewProgress(len(images))

	workers := max(params.Workers, 1)

	group := &errgroup.Group{}
	group.SetLimit(workers)

	logrus.WithFields(logrus.Fields{
		"images":   len(images),
		"workers":  workers,
		"runtime":  params.Runtime.Name(),
		"registry": params.Registry.Name(),
	}).Debug("Starting check run")

	for index, image := range images {
		if reason := filter(image.Name); reason != filters.ReasonNone {
			params.Printer.Skipping(image.Name, string(reason))
			progress.AddSkipped(index, image.Name, string(reason))

			continue
		}

		if err := ctx.Err(); err != nil {
			progress.AddFailed(index, image, err)

			continue
		}

		params.Printer.Checking(image.Name)

		group.Go(func() error {
			checkImage(ctx, params, progress, index, image)

			return nil
		})
	}

	_ = group.Wait()

	report := progress.Report()

	if err := ctx.Err(); err != nil {
		logrus.WithError(err).Warn("Check run interrupted")

		return report, fmt.Errorf("check run interrupted: %w", err)
	}

	return report, nil
}

// checkImage resolves both created dates of one image and records the outcome.
func checkImage(
	ctx context.Context,
	params CheckParams,
	progress *session.Progress,
	index int,
	image types.ImageRef,
) {
	clog := logrus.WithField("image", image.Name)
	if image.ContainerID != "" {
		clog = clog.WithField("container_id", image.ContainerID.ShortID())
	}

	local, err := util.CallWithTimeout(ctx, params.Timeout, func(callCtx context.Context) (time.Time, error) {
		return params.Runtime.ImageCreated(callCtx, image.Key())
	})
	if err != nil {
		fail(params, progress, index, image, &types.PerImageError{Image: image.Name, Stage: stageLocal, Err: err})

		return
	}

	remote, err := util.CallWithTimeout(ctx, params.Timeout, func(callCtx context.Context) (time.Time, error) {
		return params.Registry.RemoteCreated(callCtx, image.Name)
	})
	if err != nil {
		fail(params, progress, index, image, &types.PerImageError{Image: image.Name, Stage: stageRemote, Err: err})

		return
	}

	clog.WithFields(logrus.Fields{
		"local":  local.UTC(),
		"remote": remote.UTC(),
	}).Debug("Compared created dates")

	if types.IsOutdated(local, remote) {
		params.Printer.FoundUpdate(image.Name)
	}

	progress.AddChecked(index, image, local, remote)
}

// fail records and reports an image whose dates could not be resolved.
func fail(
	params CheckParams,
	progress *session.Progress,
	index int,
	image types.ImageRef,
	err *types.PerImageError,
) {
	logrus.WithError(err.Err).WithFields(logrus.Fields{
		"image": image.Name,
		"stage": err.Stage,
	}).Warn("Unable to resolve created date")

	params.Printer.Unable(image.Name, fmt.Errorf("%s created date: %w", err.Stage, err.Err))
	progress.AddFailed(index, image, err)
}
