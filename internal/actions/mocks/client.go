// Package mocks provides mock implementations for testing updatecheck components.
package mocks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nicholas-fedor/updatecheck/pkg/types"
)

// Errors returned for entries missing from TestData.
var (
	errNoSuchImage     = errors.New("no such image")
	errNoSuchContainer = errors.New("no such container")
)

// TestData holds the host and registry state the mock clients serve.
type TestData struct {
	Containers      []types.ContainerID                 // Running containers, in listing order.
	ContainerImages map[types.ContainerID]types.ImageRef // Image each container resolves to.
	Images          []string                            // Local tagged images.
	LocalCreated    map[string]time.Time                // Local created dates by inspection key.
	RemoteCreated   map[string]time.Time                // Remote created dates by image name.
	ListErr         error                               // Returned by both listing calls when set.
	PingErr         error                               // Returned by Ping when set.
	RemoteDelay     time.Duration                       // Latency of every remote lookup.
	ListBlocks      bool                                // Listing calls block until their context ends.
	Unresponsive    map[types.ContainerID]bool          // Containers whose inspection blocks until its context ends.

	mu          sync.Mutex
	localCalls  []string
	remoteCalls []string
}

// LocalCalls returns the inspection keys looked up locally, in call order.
func (data *TestData) LocalCalls() []string {
	data.mu.Lock()
	defer data.mu.Unlock()

	return append([]string(nil), data.localCalls...)
}

// RemoteCalls returns the image names looked up remotely, in call order.
func (data *TestData) RemoteCalls() []string {
	data.mu.Lock()
	defer data.mu.Unlock()

	return append([]string(nil), data.remoteCalls...)
}

// MockRuntime is a types.RuntimeClient serving TestData.
type MockRuntime struct {
	TestData *TestData
}

// MockRegistry is a types.RegistryClient serving TestData.
type MockRegistry struct {
	TestData *TestData
}

// CreateMockClients constructs a runtime and registry sharing data.
func CreateMockClients(data *TestData) (MockRuntime, MockRegistry) {
	return MockRuntime{TestData: data}, MockRegistry{TestData: data}
}

// Name identifies the mock runtime.
func (client MockRuntime) Name() string { return "mock-runtime" }

// Ping returns TestData.PingErr.
func (client MockRuntime) Ping(_ context.Context) error { return client.TestData.PingErr }

// ListContainers returns the configured container IDs.
func (client MockRuntime) ListContainers(ctx context.Context) ([]types.ContainerID, error) {
	if client.TestData.ListBlocks {
		return nil, waitForDone(ctx)
	}

	if client.TestData.ListErr != nil {
		return nil, client.TestData.ListErr
	}

	return client.TestData.Containers, nil
}

// ListImages returns the configured image names.
func (client MockRuntime) ListImages(ctx context.Context) ([]string, error) {
	if client.TestData.ListBlocks {
		return nil, waitForDone(ctx)
	}

	if client.TestData.ListErr != nil {
		return nil, client.TestData.ListErr
	}

	return client.TestData.Images, nil
}

// InspectContainerImage returns the image configured for the container.
func (client MockRuntime) InspectContainerImage(
	ctx context.Context,
	id types.ContainerID,
) (types.ImageRef, error) {
	if client.TestData.Unresponsive[id] {
		return types.ImageRef{}, waitForDone(ctx)
	}

	ref, ok := client.TestData.ContainerImages[id]
	if !ok {
		return types.ImageRef{}, fmt.Errorf("%w: %s", errNoSuchContainer, id)
	}

	return ref, nil
}

// ImageCreated returns the configured local date for key.
func (client MockRuntime) ImageCreated(ctx context.Context, key string) (time.Time, error) {
	data := client.TestData

	data.mu.Lock()
	data.localCalls = append(data.localCalls, key)
	data.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}

	created, ok := data.LocalCreated[key]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", errNoSuchImage, key)
	}

	return created, nil
}

// Name identifies the mock registry.
func (client MockRegistry) Name() string { return "mock-registry" }

// Ping always succeeds.
func (client MockRegistry) Ping(_ context.Context) error { return nil }

// RemoteCreated returns the configured remote date for name after TestData.RemoteDelay.
func (client MockRegistry) RemoteCreated(ctx context.Context, name string) (time.Time, error) {
	data := client.TestData

	data.mu.Lock()
	data.remoteCalls = append(data.remoteCalls, name)
	data.mu.Unlock()

	if data.RemoteDelay > 0 {
		select {
		case <-ctx.Done():
			return time.Time{}, ctx.Err()
		case <-time.After(data.RemoteDelay):
		}
	}

	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}

	created, ok := data.RemoteCreated[name]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", errNoSuchImage, name)
	}

	return created, nil
}

// waitForDone simulates a hung daemon.
func waitForDone(ctx context.Context) error {
	<-ctx.Done()

	return ctx.Err()
}
