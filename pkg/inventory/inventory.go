package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/updatecheck/internal/util"
	"github.com/nicholas-fedor/updatecheck/pkg/types"
)

// Strategy names accepted by New.
const (
	StrategyContainers = "containers"
	StrategyImages     = "images"
)

// errUnknownStrategy indicates an unsupported inventory strategy was requested.
var errUnknownStrategy = errors.New("unknown inventory strategy")

// Source produces the finite, ordered list of images to check.
type Source interface {
	// Name identifies the strategy.
	Name() string
	// Images lists the images; it never fails, listing errors yield an empty list.
	// Each runtime call is bounded by callTimeout; zero leaves calls unbounded.
	Images(ctx context.Context, callTimeout time.Duration) []types.ImageRef
}

// New returns the source for a strategy name.
//
// Parameters:
//   - strategy: StrategyContainers or StrategyImages.
//   - client: Runtime to query.
//
// Returns:
//   - Source: Inventory source.
//   - error: Non-nil if strategy is unknown.
func New(strategy string, client types.RuntimeClient) (Source, error) {
	switch strategy {
	case StrategyContainers:
		return ContainerSource{Client: client}, nil
	case StrategyImages:
		return ImageSource{Client: client}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownStrategy, strategy)
	}
}

// ContainerSource lists the images of running containers.
type ContainerSource struct {
	Client types.RuntimeClient
}

// Name identifies the strategy.
func (s ContainerSource) Name() string {
	return StrategyContainers
}

// Images resolves every running container to its image.
//
// Containers that cannot be resolved are logged and left out. Several containers
// running the same image produce repeated entries, in container order.
//
// Parameters:
//   - ctx: Context for runtime queries.
//   - callTimeout: Bound for the listing and for each container inspection.
//
// Returns:
//   - []types.ImageRef: One entry per resolvable container.
func (s ContainerSource) Images(ctx context.Context, callTimeout time.Duration) []types.ImageRef {
	ids, err := util.CallWithTimeout(ctx, callTimeout, s.Client.ListContainers)
	if err != nil {
		logListFailure(&types.InventoryError{Source: "containers", Err: err})

		return []types.ImageRef{}
	}

	refs := make([]types.ImageRef, 0, len(ids))

	for _, id := range ids {
		ref, err := util.CallWithTimeout(ctx, callTimeout, func(callCtx context.Context) (types.ImageRef, error) {
			return s.Client.InspectContainerImage(callCtx, id)
		})
		if err != nil {
			logrus.WithError(err).
				WithField("container_id", id.ShortID()).
				Warn("Unable to resolve container image, leaving it out")

			continue
		}

		refs = append(refs, ref)
	}

	logrus.WithFields(logrus.Fields{
		"containers": len(ids),
		"images":     len(refs),
	}).Debug("Collected container inventory")

	return refs
}

// ImageSource lists every tagged local image.
type ImageSource struct {
	Client types.RuntimeClient
}

// Name identifies the strategy.
func (s ImageSource) Name() string {
	return StrategyImages
}

// Images lists local images by "repository:tag".
//
// Parameters:
//   - ctx: Context for runtime queries.
//   - callTimeout: Bound for the listing.
//
// Returns:
//   - []types.ImageRef: One entry per tag, without content IDs.
func (s ImageSource) Images(ctx context.Context, callTimeout time.Duration) []types.ImageRef {
	names, err := util.CallWithTimeout(ctx, callTimeout, s.Client.ListImages)
	if err != nil {
		logListFailure(&types.InventoryError{Source: "images", Err: err})

		return []types.ImageRef{}
	}

	refs := make([]types.ImageRef, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}

		refs = append(refs, types.ImageRef{Name: name})
	}

	logrus.WithField("images", len(refs)).Debug("Collected image inventory")

	return refs
}

// logListFailure reports a listing failure that empties the inventory.
func logListFailure(err *types.InventoryError) {
	logrus.WithError(err).Error("Unable to list inventory, nothing will be checked")
}
