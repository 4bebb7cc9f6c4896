package actions

import "errors"

// Errors for check runs.
var (
	// errMissingSource indicates no inventory source was configured.
	errMissingSource = errors.New("no inventory source configured")
	// errMissingClient indicates a runtime or registry client was not configured.
	errMissingClient = errors.New("runtime and registry clients are required")
	// errMissingPrinter indicates no output printer was configured.
	errMissingPrinter = errors.New("no output printer configured")
)

// Stages reported in per-image errors.
const (
	stageLocal  = "local"
	stageRemote = "remote"
)
