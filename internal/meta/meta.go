// Package meta holds build information injected at link time.
package meta

// Version is the release version, set with
// -ldflags "-X github.com/nicholas-fedor/updatecheck/internal/meta.Version=v1.2.3".
var Version = "v0.0.0-unknown"
