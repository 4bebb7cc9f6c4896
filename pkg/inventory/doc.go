// Package inventory enumerates the images in use on the host.
//
// Two strategies are provided:
//   - ContainerSource: the images of running containers, resolved to their content IDs.
//   - ImageSource: every tagged local image.
//
// A listing failure yields an empty inventory and is logged, never returned;
// an empty host and an unreachable runtime both lead to a run with nothing to check.
package inventory
