// Package cmd contains the command-line interface (CLI) definitions and execution logic for updatecheck.
// It provides the root command, orchestrating configuration loading, runtime and registry client setup,
// the check run itself, notification dispatch, and metrics export.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nicholas-fedor/updatecheck/internal/actions"
	"github.com/nicholas-fedor/updatecheck/internal/config"
	"github.com/nicholas-fedor/updatecheck/internal/flags"
	"github.com/nicholas-fedor/updatecheck/internal/logging"
	"github.com/nicholas-fedor/updatecheck/internal/meta"
	"github.com/nicholas-fedor/updatecheck/pkg/container"
	"github.com/nicholas-fedor/updatecheck/pkg/inventory"
	"github.com/nicholas-fedor/updatecheck/pkg/metrics"
	"github.com/nicholas-fedor/updatecheck/pkg/notifications"
	"github.com/nicholas-fedor/updatecheck/pkg/registry"
	"github.com/nicholas-fedor/updatecheck/pkg/session"
	"github.com/nicholas-fedor/updatecheck/pkg/types"
)

// appFs is the filesystem holding the configuration and secret files.
var appFs = afero.NewOsFs()

// newRuntimeClient builds the runtime backend selected by --runtime.
//
// It is a variable so tests can substitute a mock runtime.
var newRuntimeClient = func(options flags.Options) (types.RuntimeClient, error) {
	if options.Runtime == flags.RuntimeDockerAPI {
		return container.NewClient(container.ClientOptions{
			Host:              options.Host,
			IncludeRestarting: options.IncludeRestarting,
		})
	}

	client, err := container.NewCLIClient(options.Runtime, nil)
	if err != nil {
		return nil, err
	}

	return client, nil
}

// newRegistryClient builds the registry backend selected by --registry-client.
//
// It is a variable so tests can substitute a mock registry.
var newRegistryClient = func(options flags.Options) (types.RegistryClient, error) {
	if options.RegistryClient == flags.RegistrySkopeo {
		return registry.NewSkopeoClient(nil), nil
	}

	return registry.NewRemoteClient(registry.RemoteOptions{
		Keychain: registry.Keychain{ConfigDir: options.DockerConfig},
		Insecure: options.InsecureRegistry,
	}), nil
}

// rootCmd is the updatecheck command.
var rootCmd = NewRootCommand()

// RunConfig encapsulates the configuration parameters for the runMain function.
type RunConfig struct {
	// Options holds the parsed command-line flags.
	Options flags.Options
	// Fs is the filesystem the configuration file is read from.
	Fs afero.Fs
	// Stdout receives the per-image lines, the summary, and dry-run notifications.
	Stdout io.Writer
	// Stderr receives dry-run notifications when Stdout carries JSON.
	Stderr io.Writer
}

// NewRootCommand creates and configures the root command for the updatecheck CLI.
//
// Returns:
//   - *cobra.Command: Root command performing one check run.
func NewRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "updatecheck",
		Short: "Checks whether images in use have newer versions in their registry",
		Long: "\nupdatecheck compares the creation date of local container images with the image in their origin registry" +
			"\nand sends a Gotify notification listing the images that have an update available." +
			"\nIt never pulls images or restarts containers.",
		Run:    run,
		PreRun: preRun,
		Args:   cobra.NoArgs,
	}
}

// init registers the command flags.
func init() {
	flags.SetDefaults()
	flags.RegisterBackendFlags(rootCmd)
	flags.RegisterSystemFlags(rootCmd)
	flags.RegisterNotificationFlags(rootCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Fatal("Failed to execute root command")
	}
}

// preRun configures logging and resolves secrets referenced by file.
//
// Parameters:
//   - cmd: The cobra.Command being executed.
func preRun(cmd *cobra.Command, _ []string) {
	flagsSet := cmd.PersistentFlags()
	flags.ProcessFlagAliases(flagsSet)

	// Setup logging based on flags such as --debug, --trace, and --log-format.
	if err := flags.SetupLogging(flagsSet); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize logging")
	}

	if err := flags.GetSecretsFromFiles(appFs, cmd); err != nil {
		logrus.WithError(err).Fatal("Failed to read secrets")
	}
}

// run performs the check run and exits with its status.
//
// SIGINT and SIGTERM cancel the run; outstanding runtime and registry calls are aborted.
//
// Parameters:
//   - c: The cobra.Command being executed.
func run(c *cobra.Command, _ []string) {
	options, err := flags.ReadOptions(c)
	if err != nil {
		logrus.WithError(err).Error("Invalid command-line options")
		os.Exit(types.ExitSetupFailure)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	exitCode := runMain(ctx, RunConfig{
		Options: options,
		Fs:      appFs,
		Stdout:  c.OutOrStdout(),
		Stderr:  c.ErrOrStderr(),
	})

	stop()

	if exitCode != types.ExitOK {
		logrus.WithField("exit_code", exitCode).Debug("Exiting with non-zero status")
		os.Exit(exitCode)
	}
}

// runMain executes one check run and maps its outcome to an exit status.
//
// Parameters:
//   - ctx: Run context.
//   - cfg: Run configuration.
//
// Returns:
//   - int: types.ExitOK, types.ExitSetupFailure, types.ExitNotifyFailure or types.ExitCanceled.
func runMain(ctx context.Context, cfg RunConfig) int {
	err := execute(ctx, cfg)
	exitCode := types.ExitCode(err)

	switch exitCode {
	case types.ExitOK:
	case types.ExitCanceled:
		logrus.Warn("Check run interrupted")
	case types.ExitNotifyFailure:
		logrus.WithError(err).Error("Failed to send notification")
	default:
		logrus.WithError(err).Error("Check run failed")
	}

	return exitCode
}

// execute loads the configuration, prepares the backends and performs the run.
//
// Every failure before the first inventory call is returned as a *types.SetupError.
func execute(ctx context.Context, cfg RunConfig) error {
	options := cfg.Options

	conf, err := config.Load(cfg.Fs, options.ConfigPath)
	if err != nil {
		return err
	}

	runtime, registryClient, err := prepareClients(ctx, options)
	if err != nil {
		return &types.SetupError{Err: err}
	}

	source, err := inventory.New(options.Inventory, runtime)
	if err != nil {
		return &types.SetupError{Err: err}
	}

	printer, err := session.NewPrinter(cfg.Stdout, options.Output)
	if err != nil {
		return &types.SetupError{Err: err}
	}

	notifiers, err := newNotifiers(conf, options)
	if err != nil {
		return &types.SetupError{Err: err}
	}

	dryRunOut := cfg.Stdout
	if options.Output == session.FormatJSON {
		dryRunOut = cfg.Stderr
	}

	dispatcher := notifications.NewDispatcher(notifications.DispatcherOptions{
		Notifiers: notifiers,
		Hostname:  options.Hostname,
		TitleTag:  options.TitleTag,
		DryRun:    options.DryRun,
		Out:       dryRunOut,
	})

	logging.WriteStartupMessage(meta.Version, runtime, registryClient, notifiers, logging.RunInfo{
		Inventory: options.Inventory,
		Workers:   options.Workers,
		Timeout:   options.Timeout,
		DryRun:    options.DryRun,
	})

	metric, err := actions.RunCheckWithNotifications(ctx, actions.CheckParams{
		Source:      source,
		Runtime:     runtime,
		Registry:    registryClient,
		Rules:       conf.Rules(),
		Deduplicate: options.Deduplicate,
		Workers:     options.Workers,
		Timeout:     options.Timeout,
		Printer:     printer,
	}, dispatcher, options.DryRun)

	exportMetrics(ctx, metric, options)

	return err
}

// prepareClients builds both backends and verifies they are usable.
func prepareClients(
	ctx context.Context,
	options flags.Options,
) (types.RuntimeClient, types.RegistryClient, error) {
	runtime, err := newRuntimeClient(options)
	if err != nil {
		return nil, nil, err
	}

	registryClient, err := newRegistryClient(options)
	if err != nil {
		return nil, nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, options.Timeout)
	defer cancel()

	if err := runtime.Ping(pingCtx); err != nil {
		return nil, nil, fmt.Errorf("%s runtime unavailable: %w", runtime.Name(), err)
	}

	if err := registryClient.Ping(pingCtx); err != nil {
		return nil, nil, fmt.Errorf("%s registry client unavailable: %w", registryClient.Name(), err)
	}

	return runtime, registryClient, nil
}

// newNotifiers builds the Gotify notifier and, when URLs are given, the shoutrrr notifier.
func newNotifiers(conf *config.Config, options flags.Options) ([]types.Notifier, error) {
	gotify, err := notifications.NewGotifyNotifier(notifications.GotifyConfig{
		Server:             conf.GotifyServer,
		Token:              conf.GotifyToken,
		InsecureSkipVerify: conf.GotifyTLSSkipVerify,
		CAFile:             conf.GotifyCAFile,
	})
	if err != nil {
		return nil, err
	}

	notifiers := []types.Notifier{gotify}

	if len(options.NotificationURLs) > 0 {
		shoutrrr, err := notifications.NewShoutrrrNotifier(options.NotificationURLs)
		if err != nil {
			return nil, err
		}

		notifiers = append(notifiers, shoutrrr)
	}

	return notifiers, nil
}

// exportMetrics writes the run metrics to the configured textfile and Pushgateway.
//
// Export failures are logged and never change the run's exit status.
func exportMetrics(ctx context.Context, metric *metrics.Metric, options flags.Options) {
	if metric == nil || (options.MetricsTextfile == "" && options.MetricsPushgateway == "") {
		return
	}

	exporter, err := metrics.NewWithRegistry(prometheus.NewRegistry())
	if err != nil {
		logrus.WithError(err).Warn("Failed to initialize metrics")

		return
	}

	exporter.Register(metric)

	if options.MetricsTextfile != "" {
		if err := exporter.WriteTextfile(options.MetricsTextfile); err != nil {
			logrus.WithError(err).Warn("Failed to write metrics textfile")
		}
	}

	if options.MetricsPushgateway == "" {
		return
	}

	// An interrupted run still reports what it managed to check.
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), options.Timeout)
	defer cancel()

	instance := options.Hostname
	if instance == "" {
		instance, _ = os.Hostname()
	}

	if err := exporter.Push(pushCtx, options.MetricsPushgateway, instance); err != nil {
		logrus.WithError(err).Warn("Failed to push metrics")
	}
}
