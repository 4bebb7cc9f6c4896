package actions_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/nicholas-fedor/updatecheck/internal/actions"
	"github.com/nicholas-fedor/updatecheck/internal/actions/mocks"
	"github.com/nicholas-fedor/updatecheck/pkg/filters"
	"github.com/nicholas-fedor/updatecheck/pkg/inventory"
	"github.com/nicholas-fedor/updatecheck/pkg/session"
	"github.com/nicholas-fedor/updatecheck/pkg/types"
)

var errDaemonDown = errors.New("daemon down")

// newParams wires an image inventory served by data into check parameters.
func newParams(data *mocks.TestData, out *bytes.Buffer) actions.CheckParams {
	runtime, registry := mocks.CreateMockClients(data)
	printer, err := session.NewPrinter(out, session.FormatText)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	return actions.CheckParams{
		Source:      inventory.ImageSource{Client: runtime},
		Runtime:     runtime,
		Registry:    registry,
		Rules:       filters.NewIgnoreRules(nil, nil),
		Deduplicate: true,
		Workers:     1,
		Timeout:     time.Second,
		Printer:     printer,
	}
}

var _ = ginkgo.Describe("the check action", func() {
	var (
		out  *bytes.Buffer
		ctx  context.Context
		base time.Time
	)

	ginkgo.BeforeEach(func() {
		out = &bytes.Buffer{}
		ctx = context.Background()
		base = time.Unix(1000, 0)
	})

	ginkgo.It("should reject incomplete parameters", func() {
		_, err := actions.Check(ctx, actions.CheckParams{})
		gomega.Expect(err).To(gomega.HaveOccurred())
	})

	ginkgo.When("the inventory mixes ignored, duplicate and regular images", func() {
		ginkgo.It("should check the first occurrence and skip the rest", func() {
			data := &mocks.TestData{
				Images: []string{"localhost/app:latest", "reg.example.com/db:1", "reg.example.com/db:1"},
				LocalCreated: map[string]time.Time{
					"reg.example.com/db:1": base,
				},
				RemoteCreated: map[string]time.Time{
					"reg.example.com/db:1": base,
				},
			}

			report, err := actions.Check(ctx, newParams(data, out))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(report.Checked).To(gomega.Equal(1))
			gomega.Expect(report.Skipped).To(gomega.Equal(2))
			gomega.Expect(report.Images[0].Reason).To(gomega.Equal("registry ignore"))
			gomega.Expect(report.Images[2].Reason).To(gomega.Equal("duplicate image"))
			gomega.Expect(data.RemoteCalls()).To(gomega.Equal([]string{"reg.example.com/db:1"}))
			gomega.Expect(out.String()).To(gomega.Equal(
				"Skipping localhost/app:latest (registry ignore)\n" +
					"Checking reg.example.com/db:1\n" +
					"Skipping reg.example.com/db:1 (duplicate image)\n"))
		})

		ginkgo.It("should check every occurrence when deduplication is off", func() {
			data := &mocks.TestData{
				Images:        []string{"reg.example.com/db:1", "reg.example.com/db:1"},
				LocalCreated:  map[string]time.Time{"reg.example.com/db:1": base},
				RemoteCreated: map[string]time.Time{"reg.example.com/db:1": base},
			}
			params := newParams(data, out)
			params.Deduplicate = false

			report, err := actions.Check(ctx, params)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(report.Checked).To(gomega.Equal(2))
			gomega.Expect(report.Skipped).To(gomega.Equal(0))
		})
	})

	ginkgo.When("ignore lists are configured", func() {
		ginkgo.It("should never resolve timestamps of ignored images", func() {
			data := &mocks.TestData{
				Images: []string{"nginx:latest", "quay.io/org/app:1", "quay.io.evil/app:1", "redis:7"},
				LocalCreated: map[string]time.Time{
					"redis:7":            base,
					"quay.io.evil/app:1": base,
				},
				RemoteCreated: map[string]time.Time{
					"redis:7":            base,
					"quay.io.evil/app:1": base,
				},
			}
			params := newParams(data, out)
			params.Rules = filters.NewIgnoreRules([]string{"nginx:latest"}, []string{"quay.io/"})

			report, err := actions.Check(ctx, params)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(report.Skipped).To(gomega.Equal(2))
			gomega.Expect(report.Checked).To(gomega.Equal(2))
			gomega.Expect(data.LocalCalls()).To(gomega.ConsistOf("quay.io.evil/app:1", "redis:7"))
			gomega.Expect(data.RemoteCalls()).NotTo(gomega.ContainElement("nginx:latest"))
		})
	})

	ginkgo.DescribeTable("update detection",
		func(remoteOffset time.Duration, outdated bool) {
			data := &mocks.TestData{
				Images:        []string{"nginx:latest"},
				LocalCreated:  map[string]time.Time{"nginx:latest": base},
				RemoteCreated: map[string]time.Time{"nginx:latest": base.Add(remoteOffset)},
			}

			report, err := actions.Check(ctx, newParams(data, out))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(report.Checked).To(gomega.Equal(1))
			gomega.Expect(report.HasUpdates()).To(gomega.Equal(outdated))
		},
		ginkgo.Entry("equal timestamps", time.Duration(0), false),
		ginkgo.Entry("remote one second older", -time.Second, false),
		ginkgo.Entry("remote newer within the same second", 500*time.Millisecond, false),
		ginkgo.Entry("remote one second newer", time.Second, true),
		ginkgo.Entry("remote much newer", 500*time.Second, true),
	)

	ginkgo.When("a lookup fails", func() {
		ginkgo.It("should count the image as errored and continue", func() {
			data := &mocks.TestData{
				Images: []string{"a:1", "b:1", "c:1"},
				LocalCreated: map[string]time.Time{
					"a:1": base,
					"c:1": base,
				},
				RemoteCreated: map[string]time.Time{
					"c:1": base.Add(time.Minute),
				},
			}

			report, err := actions.Check(ctx, newParams(data, out))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(report.Checked).To(gomega.Equal(1))
			gomega.Expect(report.Errored).To(gomega.Equal(2))
			gomega.Expect(report.Total()).To(gomega.Equal(3))
			gomega.Expect(report.Outdated).To(gomega.Equal([]string{"c:1"}))

			var perImage *types.PerImageError
			gomega.Expect(errors.As(report.Images[0].Err, &perImage)).To(gomega.BeTrue())
			gomega.Expect(perImage.Stage).To(gomega.Equal("remote"))
			gomega.Expect(errors.As(report.Images[1].Err, &perImage)).To(gomega.BeTrue())
			gomega.Expect(perImage.Stage).To(gomega.Equal("local"))
			gomega.Expect(out.String()).To(gomega.ContainSubstring("Unable to check a:1: remote created date: "))
		})

		ginkgo.It("should bound slow registry calls with the timeout", func() {
			data := &mocks.TestData{
				Images:        []string{"slow:1"},
				LocalCreated:  map[string]time.Time{"slow:1": base},
				RemoteCreated: map[string]time.Time{"slow:1": base},
				RemoteDelay:   time.Minute,
			}
			params := newParams(data, out)
			params.Timeout = 20 * time.Millisecond

			report, err := actions.Check(ctx, params)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(report.Errored).To(gomega.Equal(1))
			gomega.Expect(report.Images[0].Err).To(gomega.MatchError(context.DeadlineExceeded))
		})
	})

	ginkgo.When("listing fails", func() {
		ginkgo.It("should finish with an empty report", func() {
			data := &mocks.TestData{ListErr: errDaemonDown}

			report, err := actions.Check(ctx, newParams(data, out))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(report.Total()).To(gomega.Equal(0))
			gomega.Expect(data.LocalCalls()).To(gomega.BeEmpty())
		})
	})

	ginkgo.When("the runtime hangs while listing", func() {
		ginkgo.It("should give up after the call timeout with an empty report", func() {
			data := &mocks.TestData{ListBlocks: true, Images: []string{"nginx:latest"}}
			params := newParams(data, out)
			params.Timeout = 50 * time.Millisecond

			done := make(chan *session.Report, 1)
			go func() {
				defer ginkgo.GinkgoRecover()

				report, err := actions.Check(ctx, params)
				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				done <- report
			}()

			var report *session.Report
			gomega.Eventually(done, 2*time.Second).Should(gomega.Receive(&report))
			gomega.Expect(report.Total()).To(gomega.Equal(0))
			gomega.Expect(data.LocalCalls()).To(gomega.BeEmpty())
		})

		ginkgo.It("should drop a container whose inspection hangs", func() {
			data := &mocks.TestData{
				Containers: []types.ContainerID{"stuck", "c1"},
				ContainerImages: map[types.ContainerID]types.ImageRef{
					"stuck": {Name: "redis:7", ContainerID: "stuck"},
					"c1":    {Name: "nginx:latest", ContainerID: "c1"},
				},
				Unresponsive:  map[types.ContainerID]bool{"stuck": true},
				LocalCreated:  map[string]time.Time{"nginx:latest": base},
				RemoteCreated: map[string]time.Time{"nginx:latest": base},
			}
			params := newParams(data, out)
			params.Timeout = 50 * time.Millisecond
			runtime, _ := mocks.CreateMockClients(data)
			params.Source = inventory.ContainerSource{Client: runtime}

			report, err := actions.Check(ctx, params)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(report.Total()).To(gomega.Equal(1))
			gomega.Expect(report.Checked).To(gomega.Equal(1))
		})
	})

	ginkgo.When("checking in parallel", func() {
		ginkgo.It("should keep inventory order and account for every image", func() {
			data := &mocks.TestData{
				LocalCreated:  map[string]time.Time{},
				RemoteCreated: map[string]time.Time{},
				RemoteDelay:   5 * time.Millisecond,
			}

			var want []string

			for i := range 40 {
				name := fmt.Sprintf("reg.example.com/app%02d:1", i)
				data.Images = append(data.Images, name)
				data.LocalCreated[name] = base

				if i%3 == 0 {
					data.RemoteCreated[name] = base.Add(time.Hour)
					want = append(want, name)
				} else if i%7 != 0 {
					data.RemoteCreated[name] = base
				}
			}

			params := newParams(data, out)
			params.Workers = 8

			report, err := actions.Check(ctx, params)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(report.Outdated).To(gomega.Equal(want))
			gomega.Expect(report.Total()).To(gomega.Equal(40))
			gomega.Expect(report.Errored).To(gomega.BeNumerically(">", 0))
		})
	})

	ginkgo.When("the run is canceled", func() {
		ginkgo.It("should stop and still account for every image", func() {
			data := &mocks.TestData{
				Images:        []string{"a:1", "b:1", "c:1"},
				LocalCreated:  map[string]time.Time{"a:1": base, "b:1": base, "c:1": base},
				RemoteCreated: map[string]time.Time{"a:1": base, "b:1": base, "c:1": base},
				RemoteDelay:   time.Minute,
			}
			params := newParams(data, out)
			params.Timeout = 0

			runCtx, cancel := context.WithCancel(ctx)
			time.AfterFunc(20*time.Millisecond, cancel)

			report, err := actions.Check(runCtx, params)
			gomega.Expect(err).To(gomega.MatchError(context.Canceled))
			gomega.Expect(types.ExitCode(err)).To(gomega.Equal(types.ExitCanceled))
			gomega.Expect(report.Total()).To(gomega.Equal(3))
			gomega.Expect(report.Errored).To(gomega.Equal(3))
		})
	})

	ginkgo.When("containers are the inventory", func() {
		ginkgo.It("should look up local dates by content ID", func() {
			data := &mocks.TestData{
				Containers: []types.ContainerID{"c1", "c2"},
				ContainerImages: map[types.ContainerID]types.ImageRef{
					"c1": {Name: "nginx:latest", ID: "sha256:old", ContainerID: "c1"},
					"c2": {Name: "nginx:latest", ID: "sha256:new", ContainerID: "c2"},
				},
				LocalCreated:  map[string]time.Time{"sha256:old": base},
				RemoteCreated: map[string]time.Time{"nginx:latest": base.Add(time.Hour)},
			}
			params := newParams(data, out)
			runtime, _ := mocks.CreateMockClients(data)
			params.Source = inventory.ContainerSource{Client: runtime}

			report, err := actions.Check(ctx, params)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(data.LocalCalls()).To(gomega.Equal([]string{"sha256:old"}))
			gomega.Expect(report.Outdated).To(gomega.Equal([]string{"nginx:latest"}))
			gomega.Expect(report.Skipped).To(gomega.Equal(1))
		})
	})
})
