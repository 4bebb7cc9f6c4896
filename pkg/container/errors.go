package container

import "errors"

// Errors for runtime queries.
var (
	// errPingFailed indicates the runtime could not be reached.
	errPingFailed = errors.New("container runtime is not reachable")
	// errListContainersFailed indicates a failure to list running containers.
	errListContainersFailed = errors.New("failed to list containers")
	// errListImagesFailed indicates a failure to list local images.
	errListImagesFailed = errors.New("failed to list images")
	// errInspectContainerFailed indicates a failure to inspect a container.
	errInspectContainerFailed = errors.New("failed to inspect container")
	// errInspectImageFailed indicates a failure to inspect an image.
	errInspectImageFailed = errors.New("failed to inspect image")
	// errImageNotFound indicates the runtime does not know the image.
	errImageNotFound = errors.New("image not found")
	// errNoImageName indicates a container reported no image name.
	errNoImageName = errors.New("container has no image name")
	// errUnsupportedRuntime indicates an unknown command-line runtime was requested.
	errUnsupportedRuntime = errors.New("unsupported container runtime")
)
