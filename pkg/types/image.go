package types

import "strings"

// ImageID is a content hash identifying a local image.
type ImageID string

// ContainerID is a hash string for a container instance.
type ContainerID string

// ImageRef identifies an image in use on the host.
type ImageRef struct {
	Name        string      // Registry-qualified name with tag, e.g. "ghcr.io/org/app:1.2".
	ID          ImageID     // Local content ID, empty when the inventory did not resolve one.
	ContainerID ContainerID // Container the image was resolved from, empty for image listings.
}

// Key returns the identifier used to inspect the image locally.
//
// The content ID is preferred so that a tag moved by a later pull does not
// hide the image the container actually runs.
//
// Returns:
//   - string: Content ID if known, otherwise the image name.
func (r ImageRef) Key() string {
	if r.ID != "" {
		return string(r.ID)
	}

	return r.Name
}

// ShortID returns the 12-character short version of an image ID.
//
// Returns:
//   - string: Shortened ID without "sha256:" prefix.
func (id ImageID) ShortID() string {
	return shortID(string(id))
}

// ShortID returns the 12-character short version of a container ID.
//
// Returns:
//   - string: Shortened ID without "sha256:" prefix.
func (id ContainerID) ShortID() string {
	return shortID(string(id))
}

// shortID truncates a digest to 12 hex characters. A "sha256:" prefix is
// dropped; any other algorithm prefix is kept.
func shortID(longID string) string {
	const length = 12

	algorithm, hex, found := strings.Cut(longID, ":")
	switch {
	case !found:
		hex, algorithm = longID, ""
	case algorithm == "sha256":
		algorithm = ""
	default:
		algorithm += ":"
	}

	if len(hex) > length {
		hex = hex[:length]
	}

	return algorithm + hex
}
