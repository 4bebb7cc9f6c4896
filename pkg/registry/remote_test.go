package registry

import (
	"context"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/mutate"
	"github.com/google/go-containerregistry/pkg/v1/random"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	ggcrRegistry "github.com/google/go-containerregistry/pkg/registry"
	v1 "github.com/google/go-containerregistry/pkg/v1"
)

var _ = ginkgo.Describe("the registry API client", func() {
	var (
		server *httptest.Server
		host   string
		client *RemoteClient
		ctx    context.Context
	)

	push := func(repo string, created time.Time) {
		img, err := random.Image(256, 1)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		if !created.IsZero() {
			img, err = mutate.CreatedAt(img, v1.Time{Time: created})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		}

		ref, err := name.ParseReference(host+"/"+repo, name.Insecure)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(remote.Write(ref, img)).To(gomega.Succeed())
	}

	ginkgo.BeforeEach(func() {
		ginkgo.GinkgoT().Setenv("REPO_USER", "")
		ginkgo.GinkgoT().Setenv("REPO_PASS", "")

		server = httptest.NewServer(ggcrRegistry.New(ggcrRegistry.Logger(log.New(io.Discard, "", 0))))
		host = strings.TrimPrefix(server.URL, "http://")
		client = NewRemoteClient(RemoteOptions{
			Keychain: Keychain{ConfigDir: ginkgo.GinkgoT().TempDir()},
			Insecure: true,
		})
		ctx = context.Background()
	})

	ginkgo.AfterEach(func() {
		server.Close()
	})

	ginkgo.It("should report its name and always pass the ping", func() {
		gomega.Expect(client.Name()).To(gomega.Equal("remote"))
		gomega.Expect(client.Ping(ctx)).To(gomega.Succeed())
	})

	ginkgo.It("should return the created date from the image config", func() {
		created := time.Date(2024, time.March, 5, 10, 20, 30, 0, time.UTC)
		push("org/app:1.2", created)

		got, err := client.RemoteCreated(ctx, host+"/org/app:1.2")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(got.Unix()).To(gomega.Equal(created.Unix()))
	})

	ginkgo.It("should fail for images without a created date", func() {
		push("org/undated:latest", time.Time{})

		_, err := client.RemoteCreated(ctx, host+"/org/undated:latest")
		gomega.Expect(err).To(gomega.MatchError(errReadConfigFailed))
	})

	ginkgo.It("should fail for unknown tags", func() {
		_, err := client.RemoteCreated(ctx, host+"/org/missing:latest")
		gomega.Expect(err).To(gomega.MatchError(errFetchImageFailed))
	})

	ginkgo.It("should fail for invalid references", func() {
		_, err := client.RemoteCreated(ctx, "Not A Reference")
		gomega.Expect(err).To(gomega.MatchError(errInvalidReference))
	})

	ginkgo.It("should abort when the context is canceled", func() {
		push("org/app:1.2", time.Now())

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := client.RemoteCreated(canceled, host+"/org/app:1.2")
		gomega.Expect(err).To(gomega.MatchError(errFetchImageFailed))
	})
})
