// Package filters provides the filter chain deciding which inventory images are checked.
// It defines functions to skip duplicates, ignored image names, and ignored registries.
//
// Key components:
//   - Filter Functions: Skip images (e.g., FilterByImages, FilterByRegistries).
//   - BuildFilter: Combines filters into a single function.
//   - ShouldSkip: Applies the chain to one name.
//
// Usage example:
//
//	rules := filters.NewIgnoreRules([]string{"nginx:latest"}, []string{"registry.internal"})
//	filter, desc := filters.BuildFilter(rules, filters.NewSeenSet())
//	logrus.Info(desc)
//	if reason := filter("docker.io/library/redis:7"); reason != filters.ReasonNone {
//	    fmt.Printf("Skipping redis (%s)\n", reason)
//	}
//
// The package uses logrus for logging filter decisions.
package filters
