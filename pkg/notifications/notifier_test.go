package notifications_test

import (
	"bytes"
	"context"
	"errors"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/nicholas-fedor/updatecheck/internal/actions/mocks"
	"github.com/nicholas-fedor/updatecheck/pkg/notifications"
	"github.com/nicholas-fedor/updatecheck/pkg/types"
)

var (
	errRejected   = errors.New("rejected")
	errClosedPipe = errors.New("closed pipe")
)

// brokenWriter fails every write.
type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errClosedPipe }

var _ = ginkgo.Describe("the notification dispatcher", func() {
	ginkgo.Describe("BuildTitle", func() {
		ginkgo.It("should name the host", func() {
			gomega.Expect(notifications.BuildTitle("web-01", "")).
				To(gomega.Equal("Image updates available for web-01"))
		})

		ginkgo.It("should prefix the tag", func() {
			gomega.Expect(notifications.BuildTitle("web-01", "prod")).
				To(gomega.Equal("[prod] Image updates available for web-01"))
		})
	})

	ginkgo.Describe("BuildMessage", func() {
		ginkgo.It("should list one image per line in order", func() {
			gomega.Expect(notifications.BuildMessage([]string{"b:1", "a:1"})).
				To(gomega.Equal("Images requiring an update:\nb:1\na:1"))
		})
	})

	ginkgo.Describe("Notify", func() {
		var (
			first  *mocks.MockNotifier
			second *mocks.MockNotifier
		)

		ginkgo.BeforeEach(func() {
			first = &mocks.MockNotifier{}
			second = &mocks.MockNotifier{}
		})

		ginkgo.It("should send nothing without outdated images", func() {
			dispatcher := notifications.NewDispatcher(notifications.DispatcherOptions{
				Notifiers: []types.Notifier{first},
				Hostname:  "web-01",
			})

			gomega.Expect(dispatcher.Notify(context.Background(), nil)).To(gomega.Succeed())
			gomega.Expect(first.Sent()).To(gomega.BeEmpty())
		})

		ginkgo.It("should send exactly one message to every notifier", func() {
			dispatcher := notifications.NewDispatcher(notifications.DispatcherOptions{
				Notifiers: []types.Notifier{first, second},
				Hostname:  "web-01",
			})

			err := dispatcher.Notify(context.Background(), []string{"nginx:latest", "redis:7"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			expected := mocks.Message{
				Title: "Image updates available for web-01",
				Body:  "Images requiring an update:\nnginx:latest\nredis:7",
			}
			gomega.Expect(first.Sent()).To(gomega.Equal([]mocks.Message{expected}))
			gomega.Expect(second.Sent()).To(gomega.Equal([]mocks.Message{expected}))
		})

		ginkgo.It("should try every notifier and report failures as notify errors", func() {
			first.Err = errRejected
			dispatcher := notifications.NewDispatcher(notifications.DispatcherOptions{
				Notifiers: []types.Notifier{first, second},
				Hostname:  "web-01",
			})

			err := dispatcher.Notify(context.Background(), []string{"nginx:latest"})
			gomega.Expect(err).To(gomega.MatchError(errRejected))

			var notifyErr *types.NotifyError
			gomega.Expect(errors.As(err, &notifyErr)).To(gomega.BeTrue())
			gomega.Expect(notifyErr.Service).To(gomega.Equal("mock"))
			gomega.Expect(types.ExitCode(err)).To(gomega.Equal(types.ExitNotifyFailure))
			gomega.Expect(second.Sent()).To(gomega.HaveLen(1))
		})

		ginkgo.It("should print instead of sending in dry-run mode", func() {
			var out bytes.Buffer

			dispatcher := notifications.NewDispatcher(notifications.DispatcherOptions{
				Notifiers: []types.Notifier{first},
				Hostname:  "web-01",
				TitleTag:  "lab",
				DryRun:    true,
				Out:       &out,
			})

			gomega.Expect(dispatcher.Notify(context.Background(), []string{"nginx:latest"})).To(gomega.Succeed())
			gomega.Expect(first.Sent()).To(gomega.BeEmpty())
			gomega.Expect(out.String()).To(gomega.Equal(
				"[lab] Image updates available for web-01\nImages requiring an update:\nnginx:latest\n"))
		})

		ginkgo.It("should report a failed dry-run print as a notification failure", func() {
			dispatcher := notifications.NewDispatcher(notifications.DispatcherOptions{
				Notifiers: []types.Notifier{first},
				Hostname:  "web-01",
				DryRun:    true,
				Out:       brokenWriter{},
			})

			err := dispatcher.Notify(context.Background(), []string{"nginx:latest"})
			gomega.Expect(err).To(gomega.MatchError(errClosedPipe))

			var notifyErr *types.NotifyError
			gomega.Expect(errors.As(err, &notifyErr)).To(gomega.BeTrue())
			gomega.Expect(types.ExitCode(err)).To(gomega.Equal(types.ExitNotifyFailure))
			gomega.Expect(first.Sent()).To(gomega.BeEmpty())
		})
	})
})
