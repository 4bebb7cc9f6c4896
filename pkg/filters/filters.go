// Package filters decides which inventory images are excluded from update checks.
// It defines chainable filter functions for duplicates, ignored image names and ignored registries.
package filters

import (
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultIgnoredRegistry is always ignored: locally built images have no origin registry.
const DefaultIgnoredRegistry = "localhost"

// Reason explains why an image was skipped.
type Reason string

// Skip reasons, in the order the chain evaluates them.
const (
	ReasonNone           Reason = ""
	ReasonDuplicate      Reason = "duplicate image"
	ReasonImageIgnore    Reason = "image ignore"
	ReasonRegistryIgnore Reason = "registry ignore"
)

// Filter evaluates an image name and returns the reason to skip it, or ReasonNone to keep it.
type Filter func(name string) Reason

// IgnoreRules holds the configured ignore lists for a run.
//
// The zero value ignores only DefaultIgnoredRegistry.
type IgnoreRules struct {
	images     []string
	registries []string
}

// NewIgnoreRules builds ignore rules from configured image names and registry prefixes.
//
// Parameters:
//   - images: Exact image names to ignore.
//   - registries: Registry prefixes to ignore in addition to DefaultIgnoredRegistry.
//
// Returns:
//   - IgnoreRules: Immutable rules.
func NewIgnoreRules(images, registries []string) IgnoreRules {
	return IgnoreRules{
		images:     slices.Clone(images),
		registries: append([]string{DefaultIgnoredRegistry}, registries...),
	}
}

// Images returns the exact image names ignored.
func (r IgnoreRules) Images() []string {
	return slices.Clone(r.images)
}

// Registries returns the ignored registry prefixes, DefaultIgnoredRegistry first.
func (r IgnoreRules) Registries() []string {
	if r.registries == nil {
		return []string{DefaultIgnoredRegistry}
	}

	return slices.Clone(r.registries)
}

// SeenSet records image names already processed during a run.
type SeenSet map[string]struct{}

// NewSeenSet returns an empty SeenSet.
func NewSeenSet() SeenSet {
	return make(SeenSet)
}

// Add records name, returning false if it was already present.
func (s SeenSet) Add(name string) bool {
	if _, ok := s[name]; ok {
		return false
	}

	s[name] = struct{}{}

	return true
}

// NoFilter keeps every image.
//
// Returns:
//   - Reason: Always ReasonNone.
func NoFilter(string) Reason {
	return ReasonNone
}

// FilterByDuplicates skips images already recorded in seen and records the others.
//
// Parameters:
//   - seen: Per-run set of processed names; nil disables the check.
//   - baseFilter: Base filter to chain.
//
// Returns:
//   - Filter: Filter function combining the duplicate check with base filter.
func FilterByDuplicates(seen SeenSet, baseFilter Filter) Filter {
	if seen == nil {
		return baseFilter
	}

	return func(name string) Reason {
		if !seen.Add(name) {
			logrus.WithField("image", name).Debug("Image already processed in this run")

			return ReasonDuplicate
		}

		return baseFilter(name)
	}
}

// FilterByImages skips images whose name exactly matches an ignored name.
//
// Parameters:
//   - images: Exact names to skip.
//   - baseFilter: Base filter to chain.
//
// Returns:
//   - Filter: Filter function combining the name check with base filter.
func FilterByImages(images []string, baseFilter Filter) Filter {
	if len(images) == 0 {
		return baseFilter
	}

	return func(name string) Reason {
		if slices.Contains(images, name) {
			logrus.WithField("image", name).Debug("Image matched ignore list")

			return ReasonImageIgnore
		}

		return baseFilter(name)
	}
}

// FilterByRegistries skips images whose name starts with an ignored registry prefix.
//
// The match is a literal string prefix, so "localhost" also matches "localhost.example.com/app".
//
// Parameters:
//   - registries: Prefixes to skip.
//   - baseFilter: Base filter to chain.
//
// Returns:
//   - Filter: Filter function combining the prefix check with base filter.
func FilterByRegistries(registries []string, baseFilter Filter) Filter {
	if len(registries) == 0 {
		return baseFilter
	}

	return func(name string) Reason {
		for _, registry := range registries {
			if strings.HasPrefix(name, registry) {
				logrus.WithFields(logrus.Fields{
					"image":    name,
					"registry": registry,
				}).Debug("Image matched registry ignore list")

				return ReasonRegistryIgnore
			}
		}

		return baseFilter(name)
	}
}

// BuildFilter constructs the filter chain for a run.
//
// The chain checks duplicates first, then ignored names, then ignored registries.
//
// Parameters:
//   - rules: Ignore rules from configuration.
//   - seen: Per-run SeenSet, nil to disable duplicate detection.
//
// Returns:
//   - Filter: Combined filter function.
//   - string: Description of the filter.
func BuildFilter(rules IgnoreRules, seen SeenSet) (Filter, string) {
	registries := rules.Registries()
	images := rules.Images()

	filter := NoFilter
	filter = FilterByRegistries(registries, filter)
	filter = FilterByImages(images, filter)
	filter = FilterByDuplicates(seen, filter)

	stringBuilder := strings.Builder{}
	stringBuilder.WriteString("Checking all images except registries \"")
	stringBuilder.WriteString(strings.Join(registries, `" or "`))
	stringBuilder.WriteString(`"`)

	if len(images) > 0 {
		stringBuilder.WriteString(" and images \"")
		stringBuilder.WriteString(strings.Join(images, `" or "`))
		stringBuilder.WriteString(`"`)
	}

	if seen != nil {
		stringBuilder.WriteString(", each image once")
	}

	filterDesc := stringBuilder.String()

	logrus.WithFields(logrus.Fields{
		"ignore_images":     images,
		"ignore_registries": registries,
		"deduplicate":       seen != nil,
	}).Debug("Filter built")

	return filter, filterDesc
}

// ShouldSkip applies the full filter chain to a single image name.
//
// Parameters:
//   - name: Image name to evaluate.
//   - seen: Per-run SeenSet, nil to disable duplicate detection.
//   - rules: Ignore rules from configuration.
//
// Returns:
//   - bool: True if the image must not be checked.
//   - Reason: Why it was skipped, ReasonNone otherwise.
func ShouldSkip(name string, seen SeenSet, rules IgnoreRules) (bool, Reason) {
	filter, _ := BuildFilter(rules, seen)
	reason := filter(name)

	return reason != ReasonNone, reason
}
