package actions_test

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/nicholas-fedor/updatecheck/internal/actions"
	"github.com/nicholas-fedor/updatecheck/internal/actions/mocks"
	"github.com/nicholas-fedor/updatecheck/pkg/notifications"
	"github.com/nicholas-fedor/updatecheck/pkg/types"
)

var _ = ginkgo.Describe("the check run with notifications", func() {
	var (
		out      *bytes.Buffer
		ctx      context.Context
		base     time.Time
		notifier *mocks.MockNotifier
	)

	ginkgo.BeforeEach(func() {
		out = &bytes.Buffer{}
		ctx = context.Background()
		base = time.Unix(1000, 0)
		notifier = &mocks.MockNotifier{}
	})

	dispatcherFor := func(notifiers ...types.Notifier) *notifications.Dispatcher {
		return notifications.NewDispatcher(notifications.DispatcherOptions{
			Notifiers: notifiers,
			Hostname:  "web-01",
			Out:       out,
		})
	}

	ginkgo.It("should not notify when nothing is outdated", func() {
		data := &mocks.TestData{
			Images:        []string{"nginx:latest"},
			LocalCreated:  map[string]time.Time{"nginx:latest": base},
			RemoteCreated: map[string]time.Time{"nginx:latest": base},
		}

		metric, err := actions.RunCheckWithNotifications(ctx, newParams(data, out), dispatcherFor(notifier), false)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(metric.Checked).To(gomega.Equal(1))
		gomega.Expect(notifier.Sent()).To(gomega.BeEmpty())
		gomega.Expect(out.String()).To(gomega.Equal(
			"Checking nginx:latest\nChecked: 1\nSkipped: 0\nUpdates: 0\n"))
	})

	ginkgo.It("should name the images it could not check in the log", func() {
		hook := logtest.NewGlobal()
		defer logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks))

		data := &mocks.TestData{
			Images:        []string{"nginx:latest", "redis:7", "ghcr.io/org/app:1"},
			LocalCreated:  map[string]time.Time{"nginx:latest": base},
			RemoteCreated: map[string]time.Time{"nginx:latest": base},
		}

		_, err := actions.RunCheckWithNotifications(ctx, newParams(data, out), dispatcherFor(notifier), false)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		var summary *logrus.Entry
		for _, entry := range hook.AllEntries() {
			if entry.Message == "2 images could not be checked" {
				summary = entry
			}
		}

		gomega.Expect(summary).NotTo(gomega.BeNil())
		gomega.Expect(summary.Level).To(gomega.Equal(logrus.WarnLevel))
		gomega.Expect(summary.Data).To(gomega.HaveKeyWithValue("images", "redis:7, ghcr.io/org/app:1"))
	})

	ginkgo.It("should notify once with every outdated image in inventory order", func() {
		data := &mocks.TestData{
			Images: []string{"zeta:1", "alpha:1", "mid:1"},
			LocalCreated: map[string]time.Time{
				"zeta:1": base, "alpha:1": base, "mid:1": base,
			},
			RemoteCreated: map[string]time.Time{
				"zeta:1": base.Add(500 * time.Second), "alpha:1": base.Add(time.Second), "mid:1": base,
			},
		}

		metric, err := actions.RunCheckWithNotifications(ctx, newParams(data, out), dispatcherFor(notifier), false)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(metric.Outdated).To(gomega.Equal(2))
		gomega.Expect(notifier.Sent()).To(gomega.Equal([]mocks.Message{{
			Title: "Image updates available for web-01",
			Body:  "Images requiring an update:\nzeta:1\nalpha:1",
		}}))
		gomega.Expect(out.String()).To(gomega.HaveSuffix(
			"Checked: 3\nSkipped: 0\nUpdates: 2\nSending notification\nSent notification\n"))
	})

	ginkgo.It("should print the notification in dry-run mode", func() {
		data := &mocks.TestData{
			Images:        []string{"nginx:latest"},
			LocalCreated:  map[string]time.Time{"nginx:latest": base},
			RemoteCreated: map[string]time.Time{"nginx:latest": base.Add(time.Hour)},
		}
		dispatcher := notifications.NewDispatcher(notifications.DispatcherOptions{
			Notifiers: []types.Notifier{notifier},
			Hostname:  "web-01",
			DryRun:    true,
			Out:       out,
		})

		_, err := actions.RunCheckWithNotifications(ctx, newParams(data, out), dispatcher, true)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(notifier.Sent()).To(gomega.BeEmpty())
		gomega.Expect(out.String()).To(gomega.HaveSuffix(
			"Updates: 1\nImage updates available for web-01\nImages requiring an update:\nnginx:latest\n"))
	})

	ginkgo.When("the Gotify server fails", func() {
		var server *ghttp.Server

		ginkgo.BeforeEach(func() {
			server = ghttp.NewServer()
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/message"),
				ghttp.RespondWith(http.StatusInternalServerError, ""),
			))
		})

		ginkgo.AfterEach(func() {
			server.Close()
		})

		ginkgo.It("should report the counts and then a delivery failure", func() {
			gotify, err := notifications.NewGotifyNotifier(notifications.GotifyConfig{
				Server: server.URL(),
				Token:  "app-token",
			})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			data := &mocks.TestData{
				Images:        []string{"localhost/app:1", "nginx:latest"},
				LocalCreated:  map[string]time.Time{"nginx:latest": base},
				RemoteCreated: map[string]time.Time{"nginx:latest": base.Add(500 * time.Second)},
			}

			metric, err := actions.RunCheckWithNotifications(ctx, newParams(data, out), dispatcherFor(gotify), false)
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(err.Error()).To(gomega.ContainSubstring("gotify notification failed"))
			gomega.Expect(err.Error()).To(gomega.ContainSubstring("(500)"))
			gomega.Expect(types.ExitCode(err)).To(gomega.Equal(types.ExitNotifyFailure))
			gomega.Expect(metric.Checked).To(gomega.Equal(1))
			gomega.Expect(metric.Skipped).To(gomega.Equal(1))
			gomega.Expect(out.String()).To(gomega.HaveSuffix(
				"Checked: 1\nSkipped: 1\nUpdates: 1\nSending notification\n"))
			gomega.Expect(server.ReceivedRequests()).To(gomega.HaveLen(1))
		})
	})
})
