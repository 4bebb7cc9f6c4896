// Package container queries the local container runtime for the images in use.
// It provides two implementations of types.RuntimeClient: one talking to the Docker
// Engine API (also served by the podman system service), and one driving the podman or
// docker command-line tools.
//
// Key components:
//   - NewClient: Docker Engine API client configured from DOCKER_HOST and friends.
//   - NewCLIClient: Client invoking "podman" or "docker" and parsing their output.
//
// Usage example:
//
//	cli, err := container.NewClient(container.ClientOptions{})
//	ids, _ := cli.ListContainers(ctx)
//	for _, id := range ids {
//	    ref, _ := cli.InspectContainerImage(ctx, id)
//	    created, _ := cli.ImageCreated(ctx, ref.Key())
//	}
package container
