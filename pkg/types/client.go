package types

import (
	"context"
	"time"
)

// RuntimeClient defines the queries made against the local container runtime.
type RuntimeClient interface {
	// Name identifies the runtime backend (e.g. "docker-api", "podman").
	Name() string
	// Ping verifies the runtime is reachable and usable.
	Ping(ctx context.Context) error
	// ListContainers returns the IDs of all running containers.
	ListContainers(ctx context.Context) ([]ContainerID, error)
	// ListImages returns all locally stored images as "repository:tag".
	ListImages(ctx context.Context) ([]string, error)
	// InspectContainerImage resolves a container to the image it runs.
	InspectContainerImage(ctx context.Context, id ContainerID) (ImageRef, error)
	// ImageCreated returns the creation time of a local image, by content ID or name.
	ImageCreated(ctx context.Context, key string) (time.Time, error)
}

// RegistryClient defines the queries made against remote registries.
type RegistryClient interface {
	// Name identifies the registry backend (e.g. "remote", "skopeo").
	Name() string
	// Ping verifies the backend is usable.
	Ping(ctx context.Context) error
	// RemoteCreated returns the creation time of the image a registry currently serves for name.
	RemoteCreated(ctx context.Context, name string) (time.Time, error)
}
