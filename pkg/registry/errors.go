package registry

import "errors"

// Errors for registry operations.
var (
	// errInvalidReference indicates an image name could not be parsed as a reference.
	errInvalidReference = errors.New("invalid image reference")
	// errFetchImageFailed indicates the image could not be fetched from its registry.
	errFetchImageFailed = errors.New("failed to fetch remote image")
	// errReadConfigFailed indicates the remote image config could not be read.
	errReadConfigFailed = errors.New("failed to read remote image config")
	// errInspectFailed indicates skopeo could not inspect the remote image.
	errInspectFailed = errors.New("failed to inspect remote image")
	// errPingFailed indicates the registry tool is not usable.
	errPingFailed = errors.New("registry client is not usable")
	// errUnsetRegAuthVars indicates registry auth environment variables (REPO_USER, REPO_PASS) are not set.
	errUnsetRegAuthVars = errors.New(
		"registry auth environment variables (REPO_USER, REPO_PASS) not set",
	)
	// errFailedGetRegistryAddress indicates a failure to extract the registry address from an image reference.
	errFailedGetRegistryAddress = errors.New("failed to get registry address")
	// errFailedLoadDockerConfig indicates a failure to load the Docker configuration file.
	errFailedLoadDockerConfig = errors.New("failed to load Docker config")
)
