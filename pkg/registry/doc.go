// Package registry resolves the creation time of images in their origin registry.
//
// Two backends implement types.RegistryClient:
//   - RemoteClient: queries the registry API directly through go-containerregistry.
//   - SkopeoClient: shells out to "skopeo inspect".
//
// Credentials for RemoteClient come from Keychain, which reads REPO_USER and
// REPO_PASS from the environment first and falls back to the Docker CLI config
// file and its credential helpers.
//
// Usage example:
//
//	client := registry.NewRemoteClient(registry.RemoteOptions{})
//	created, err := client.RemoteCreated(ctx, "ghcr.io/org/app:1.2")
//	if err != nil {
//	    logrus.WithError(err).Error("Failed to resolve remote created date")
//	}
package registry
