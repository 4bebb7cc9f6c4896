package registry

import (
	"os"
	"path/filepath"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Registry credentials", func() {
	var configDir string

	ginkgo.BeforeEach(func() {
		configDir = ginkgo.GinkgoT().TempDir()
		ginkgo.GinkgoT().Setenv("REPO_USER", "")
		ginkgo.GinkgoT().Setenv("REPO_PASS", "")
	})

	writeConfig := func(content string) {
		err := os.WriteFile(filepath.Join(configDir, "config.json"), []byte(content), 0o600)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
	}

	resolve := func(image string) *authn.AuthConfig {
		ref, err := name.ParseReference(image)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		auth, err := Keychain{ConfigDir: configDir}.Resolve(ref.Context())
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		cfg, err := auth.Authorization()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		return cfg
	}

	ginkgo.Describe("EnvCredentials", func() {
		ginkgo.It("should return an error if repo envs are unset", func() {
			_, err := EnvCredentials()
			gomega.Expect(err).To(gomega.MatchError(errUnsetRegAuthVars))
		})

		ginkgo.It("should return repo credentials from env when set", func() {
			ginkgo.GinkgoT().Setenv("REPO_USER", "updatecheck-user")
			ginkgo.GinkgoT().Setenv("REPO_PASS", "updatecheck-pass")

			auth, err := EnvCredentials()
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(auth.Username).To(gomega.Equal("updatecheck-user"))
			gomega.Expect(auth.Password).To(gomega.Equal("updatecheck-pass"))
		})
	})

	ginkgo.Describe("ConfigCredentials", func() {
		ginkgo.It("should return an error if the config file is malformed", func() {
			writeConfig("{not json")

			_, err := ConfigCredentials(configDir, "ghcr.io")
			gomega.Expect(err).To(gomega.MatchError(errFailedLoadDockerConfig))
		})

		ginkgo.It("should return empty credentials for unknown registries", func() {
			auth, err := ConfigCredentials(configDir, "ghcr.io")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(auth.Username).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("Keychain", func() {
		ginkgo.It("should prefer environment credentials", func() {
			ginkgo.GinkgoT().Setenv("REPO_USER", "env-user")
			ginkgo.GinkgoT().Setenv("REPO_PASS", "env-pass")
			writeConfig(`{"auths":{"ghcr.io":{"auth":"ZmlsZS11c2VyOmZpbGUtcGFzcw=="}}}`)

			cfg := resolve("ghcr.io/org/app:1.2")
			gomega.Expect(cfg.Username).To(gomega.Equal("env-user"))
			gomega.Expect(cfg.Password).To(gomega.Equal("env-pass"))
		})

		ginkgo.It("should read credentials from the Docker config", func() {
			writeConfig(`{"auths":{"ghcr.io":{"auth":"ZmlsZS11c2VyOmZpbGUtcGFzcw=="}}}`)

			cfg := resolve("ghcr.io/org/app:1.2")
			gomega.Expect(cfg.Username).To(gomega.Equal("file-user"))
			gomega.Expect(cfg.Password).To(gomega.Equal("file-pass"))
		})

		ginkgo.It("should match Docker Hub credentials stored under the legacy index URL", func() {
			writeConfig(`{"auths":{"https://index.docker.io/v1/":{"auth":"ZmlsZS11c2VyOmZpbGUtcGFzcw=="}}}`)

			cfg := resolve("nginx:latest")
			gomega.Expect(cfg.Username).To(gomega.Equal("file-user"))
		})

		ginkgo.It("should fall back to anonymous access", func() {
			ref, err := name.ParseReference("quay.io/org/app")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			auth, err := Keychain{ConfigDir: configDir}.Resolve(ref.Context())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(auth).To(gomega.Equal(authn.Anonymous))
		})
	})
})
