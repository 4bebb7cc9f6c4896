// Package types defines the core types and interfaces shared by the update check pipeline.
// It provides abstractions for the container runtime, the registry, notifications and the
// error taxonomy used to decide the process exit status.
//
// Key components:
//   - ImageRef: An image in use on the host, as produced by an inventory source.
//   - RuntimeClient: Interface for listing and inspecting local containers and images.
//   - RegistryClient: Interface for reading remote image metadata.
//   - Notifier: Interface for delivering a titled message.
//   - ParseCreated / IsOutdated: Timestamp parsing and comparison.
//   - SetupError, InventoryError, PerImageError, NotifyError: Error taxonomy.
//
// Usage example:
//
//	local, _ := runtime.ImageCreated(ctx, ref.Key())
//	remote, _ := registry.RemoteCreated(ctx, ref.Name)
//	if types.IsOutdated(local, remote) {
//	    fmt.Println("Found update for " + ref.Name)
//	}
package types
