// Package flags manages command-line flags and environment variables for updatecheck configuration.
package flags

import (
	"bufio"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nicholas-fedor/updatecheck/internal/util"
)

// Runtime backends.
const (
	RuntimeDockerAPI = "docker-api"
	RuntimePodman    = "podman"
	RuntimeDocker    = "docker"
)

// Registry backends.
const (
	RegistryRemote = "remote"
	RegistrySkopeo = "skopeo"
)

// defaultTimeout bounds each runtime or registry call.
const defaultTimeout = 60 * time.Second

// defaultWorkers checks one image at a time.
const defaultWorkers = 1

// Errors returned while reading flags and configuring logging.
var (
	errInvalidLogFormat   = errors.New("invalid log format specified")
	errInvalidLogLevel    = errors.New("invalid log level specified")
	errSetFlagFailed      = errors.New("failed to set flag value")
	errInvalidFlagName    = errors.New("invalid flag name provided")
	errOpenFileFailed     = errors.New("failed to open secret file")
	errCloseFileFailed    = errors.New("failed to close secret file")
	errReplaceSliceFailed = errors.New("failed to replace slice value in flag")
)

// errInvalidChoice indicates a flag value outside its allowed set.
var errInvalidChoice = errors.New("invalid value")

// errOutOfRange indicates a numeric flag below its minimum.
var errOutOfRange = errors.New("value out of range")

// Options is the parsed and validated command-line configuration.
type Options struct {
	ConfigPath         string
	Runtime            string
	Host               string
	IncludeRestarting  bool
	Inventory          string
	RegistryClient     string
	InsecureRegistry   bool
	DockerConfig       string
	Timeout            time.Duration
	Workers            int
	Deduplicate        bool
	DryRun             bool
	Output             string
	NotificationURLs   []string
	Hostname           string
	TitleTag           string
	MetricsTextfile    string
	MetricsPushgateway string
}

// RegisterBackendFlags adds flags selecting and configuring the runtime and registry backends.
func RegisterBackendFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()
	flags.StringP(
		"runtime",
		"r",
		envString("UPDATECHECK_RUNTIME"),
		"Container runtime to query. Possible values: docker-api, podman or docker")

	flags.StringP(
		"host",
		"H",
		envString("DOCKER_HOST"),
		"Daemon socket to connect to (docker-api runtime only)")

	flags.Bool(
		"include-restarting",
		envBool("UPDATECHECK_INCLUDE_RESTARTING"),
		"Will also include restarting containers")

	flags.StringP(
		"inventory",
		"i",
		envString("UPDATECHECK_INVENTORY"),
		"Images to check. Possible values: containers (running containers) or images (all local images)")

	flags.String(
		"registry-client",
		envString("UPDATECHECK_REGISTRY_CLIENT"),
		"Registry query backend. Possible values: remote or skopeo")

	flags.Bool(
		"insecure-registry",
		envBool("UPDATECHECK_INSECURE_REGISTRY"),
		"Allow plain HTTP registries (remote registry client only)")

	flags.String(
		"docker-config",
		envString("DOCKER_CONFIG"),
		"Docker CLI config directory holding registry credentials")
}

// RegisterSystemFlags adds flags that modify the program flow to the root command.
// These flags control the check run, logging, output, and metrics.
func RegisterSystemFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()
	flags.StringP(
		"config",
		"c",
		envString("UPDATECHECK_CONFIG"),
		"Path to the configuration file")

	flags.DurationP(
		"timeout",
		"t",
		envDuration("UPDATECHECK_TIMEOUT"),
		"Timeout for each runtime or registry call")

	flags.IntP(
		"workers",
		"w",
		envInt("UPDATECHECK_WORKERS"),
		"Number of images checked concurrently")

	flags.Bool(
		"no-dedupe",
		envBool("UPDATECHECK_NO_DEDUPE"),
		"Check an image once per occurrence instead of once per run")

	flags.Bool(
		"dry-run",
		envBool("UPDATECHECK_DRY_RUN"),
		"Print the notification instead of sending it")

	flags.StringP(
		"output",
		"o",
		envString("UPDATECHECK_OUTPUT"),
		"Output format. Possible values: text or json")

	flags.BoolP(
		"debug",
		"d",
		envBool("UPDATECHECK_DEBUG"),
		"Enable debug mode with verbose logging")

	flags.Bool(
		"trace",
		envBool("UPDATECHECK_TRACE"),
		"Enable trace mode with very verbose logging - caution, exposes credentials")

	flags.String(
		"log-level",
		envString("UPDATECHECK_LOG_LEVEL"),
		"The maximum log level that will be written to STDERR. Possible values: panic, fatal, error, warn, info, debug or trace")

	flags.String(
		"log-format",
		envString("UPDATECHECK_LOG_FORMAT"),
		"Sets what logging format to use for console output. Possible values: Auto, LogFmt, Pretty, JSON")

	flags.Bool(
		"no-color",
		envBool("NO_COLOR"),
		"Disable ANSI color escape codes in log output")

	flags.String(
		"metrics-textfile",
		envString("UPDATECHECK_METRICS_TEXTFILE"),
		"Write run metrics to this file for the node exporter textfile collector")

	flags.String(
		"metrics-pushgateway",
		envString("UPDATECHECK_METRICS_PUSHGATEWAY"),
		"Push run metrics to this Prometheus Pushgateway URL")
}

// RegisterNotificationFlags adds notification flags to the root command.
// The Gotify endpoint itself comes from the configuration file.
func RegisterNotificationFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()

	flags.StringArrayP(
		"notification-url",
		"n",
		envStringSlice("UPDATECHECK_NOTIFICATION_URL"),
		"Additional shoutrrr URL to send the notification to, may be repeated")

	flags.String(
		"notifications-hostname",
		envString("UPDATECHECK_NOTIFICATIONS_HOSTNAME"),
		"Custom hostname for notification titles")

	flags.String(
		"notification-title-tag",
		envString("UPDATECHECK_NOTIFICATION_TITLE_TAG"),
		"Title prefix tag for notifications")
}

// The env helpers bind key to its UPDATECHECK_* environment variable and
// return the current value, which becomes the flag default.
func envString(key string) string {
	viper.MustBindEnv(key)

	return viper.GetString(key)
}

func envStringSlice(key string) []string {
	viper.MustBindEnv(key)

	return viper.GetStringSlice(key)
}

func envInt(key string) int {
	viper.MustBindEnv(key)

	return viper.GetInt(key)
}

func envBool(key string) bool {
	viper.MustBindEnv(key)

	return viper.GetBool(key)
}

func envDuration(key string) time.Duration {
	viper.MustBindEnv(key)

	return viper.GetDuration(key)
}

// SetDefaults registers the value each UPDATECHECK_* variable falls back to
// when it is unset. Call it before registering flags.
func SetDefaults() {
	viper.AutomaticEnv()
	viper.SetDefault("UPDATECHECK_CONFIG", "config.yaml")
	viper.SetDefault("UPDATECHECK_RUNTIME", RuntimeDockerAPI)
	viper.SetDefault("UPDATECHECK_INVENTORY", "containers")
	viper.SetDefault("UPDATECHECK_REGISTRY_CLIENT", RegistryRemote)
	viper.SetDefault("UPDATECHECK_TIMEOUT", defaultTimeout)
	viper.SetDefault("UPDATECHECK_WORKERS", defaultWorkers)
	viper.SetDefault("UPDATECHECK_OUTPUT", "text")
	viper.SetDefault("UPDATECHECK_NOTIFICATION_URL", []string{})
	viper.SetDefault("UPDATECHECK_LOG_LEVEL", "info")
	viper.SetDefault("UPDATECHECK_LOG_FORMAT", "auto")
}

// ReadOptions retrieves and validates the flags used by the check run.
//
// Parameters:
//   - cmd: Command whose persistent flags were registered by this package.
//
// Returns:
//   - Options: Parsed options.
//   - error: Non-nil if a flag is missing or holds an invalid value.
func ReadOptions(cmd *cobra.Command) (Options, error) {
	flags := cmd.PersistentFlags()
	reader := flagReader{flags: flags}

	noDedupe := reader.getBool("no-dedupe")

	options := Options{
		ConfigPath:         reader.getString("config"),
		Runtime:            strings.ToLower(reader.getString("runtime")),
		Host:               reader.getString("host"),
		IncludeRestarting:  reader.getBool("include-restarting"),
		Inventory:          strings.ToLower(reader.getString("inventory")),
		RegistryClient:     strings.ToLower(reader.getString("registry-client")),
		InsecureRegistry:   reader.getBool("insecure-registry"),
		DockerConfig:       reader.getString("docker-config"),
		Timeout:            reader.getDuration("timeout"),
		Workers:            reader.getInt("workers"),
		Deduplicate:        !noDedupe,
		DryRun:             reader.getBool("dry-run"),
		Output:             strings.ToLower(reader.getString("output")),
		NotificationURLs:   reader.getStringArray("notification-url"),
		Hostname:           reader.getString("notifications-hostname"),
		TitleTag:           reader.getString("notification-title-tag"),
		MetricsTextfile:    reader.getString("metrics-textfile"),
		MetricsPushgateway: reader.getString("metrics-pushgateway"),
	}

	if reader.err != nil {
		return Options{}, reader.err
	}

	if err := options.validate(); err != nil {
		return Options{}, err
	}

	return options, nil
}

// validate checks enumerated and numeric options.
func (o Options) validate() error {
	choices := []struct {
		flag    string
		value   string
		allowed []string
	}{
		{"runtime", o.Runtime, []string{RuntimeDockerAPI, RuntimePodman, RuntimeDocker}},
		{"inventory", o.Inventory, []string{"containers", "images"}},
		{"registry-client", o.RegistryClient, []string{RegistryRemote, RegistrySkopeo}},
		{"output", o.Output, []string{"text", "json"}},
	}

	for _, choice := range choices {
		if !slices.Contains(choice.allowed, choice.value) {
			return fmt.Errorf("%w %q for --%s, expected one of: %s",
				errInvalidChoice, choice.value, choice.flag, strings.Join(choice.allowed, ", "))
		}
	}

	if o.Workers < 1 {
		return fmt.Errorf("%w: --workers must be at least 1, got %d", errOutOfRange, o.Workers)
	}

	if o.Timeout <= 0 {
		return fmt.Errorf("%w: --timeout must be positive, got %s", errOutOfRange, o.Timeout)
	}

	return nil
}

// flagReader reads typed flag values, keeping the first lookup error.
type flagReader struct {
	flags *pflag.FlagSet
	err   error
}

func (r *flagReader) keep(err error) {
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}
}

func (r *flagReader) getString(name string) string {
	value, err := r.flags.GetString(name)
	r.keep(err)

	return value
}

func (r *flagReader) getStringArray(name string) []string {
	value, err := r.flags.GetStringArray(name)
	r.keep(err)

	return value
}

func (r *flagReader) getBool(name string) bool {
	value, err := r.flags.GetBool(name)
	r.keep(err)

	return value
}

func (r *flagReader) getInt(name string) int {
	value, err := r.flags.GetInt(name)
	r.keep(err)

	return value
}

func (r *flagReader) getDuration(name string) time.Duration {
	value, err := r.flags.GetDuration(name)
	r.keep(err)

	return value
}

// GetSecretsFromFiles swaps secret-bearing flag values that name an existing
// file for the contents of that file.
func GetSecretsFromFiles(fs afero.Fs, rootCmd *cobra.Command) error {
	flags := rootCmd.PersistentFlags()

	secrets := []string{
		"notification-url",
	}
	for _, secret := range secrets {
		if err := getSecretFromFile(fs, flags, secret); err != nil {
			return fmt.Errorf("failed to get secret from flag %v: %w", secret, err)
		}
	}

	return nil
}

// getSecretFromFile resolves one flag. Slice flags expand each file entry
// into one value per non-blank line; string flags take the trimmed content.
func getSecretFromFile(fs afero.Fs, flags *pflag.FlagSet, secret string) error {
	flag := flags.Lookup(secret)
	if flag == nil {
		return fmt.Errorf("%w: %q", errInvalidFlagName, secret)
	}

	if sliceValue, ok := flag.Value.(pflag.SliceValue); ok {
		oldValues := sliceValue.GetSlice()
		values := make([]string, 0, len(oldValues))

		for _, value := range oldValues {
			if value == "" || !util.IsFilePath(fs, value) {
				values = append(values, value)

				continue
			}

			file, err := fs.Open(value)
			if err != nil {
				return fmt.Errorf("%w: %w", errOpenFileFailed, err)
			}

			scanner := bufio.NewScanner(file)
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}

				values = append(values, line)
			}

			if err := file.Close(); err != nil {
				return fmt.Errorf("%w: %w", errCloseFileFailed, err)
			}
		}

		if err := sliceValue.Replace(values); err != nil {
			return fmt.Errorf("%w: %w", errReplaceSliceFailed, err)
		}

		return nil
	}

	value := flag.Value.String()
	if value != "" && util.IsFilePath(fs, value) {
		content, err := afero.ReadFile(fs, value)
		if err != nil {
			return fmt.Errorf("%w: %w", errOpenFileFailed, err)
		}

		if err := flags.Set(secret, strings.TrimSpace(string(content))); err != nil {
			return fmt.Errorf("%w: %w", errSetFlagFailed, err)
		}
	}

	return nil
}

// ProcessFlagAliases synchronizes flag values based on helper flags.
// The debug and trace switches raise the log level; trace wins over debug.
func ProcessFlagAliases(flags *pflag.FlagSet) {
	if flagIsEnabled(flags, "debug") {
		setFlagIfDefault(flags, "log-level", "debug")
	}

	if flagIsEnabled(flags, "trace") {
		if err := flags.Set("log-level", "trace"); err != nil {
			logrus.WithError(err).Error("Could not raise log level to trace")
		}
	}
}

// SetupLogging applies --log-format, --no-color and --log-level to the
// standard logrus logger.
func SetupLogging(flags *pflag.FlagSet) error {
	logFormat, err := flags.GetString("log-format")
	if err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	noColor, err := flags.GetBool("no-color")
	if err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	if err := configureLogFormat(logFormat, noColor); err != nil {
		return err
	}

	rawLogLevel, err := flags.GetString("log-level")
	if err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	logLevel, err := logrus.ParseLevel(rawLogLevel)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidLogLevel, err)
	}

	logrus.SetLevel(logLevel)

	return nil
}

// configureLogFormat maps a format name to a logrus formatter.
func configureLogFormat(logFormat string, noColor bool) error {
	switch strings.ToLower(logFormat) {
	case "auto":
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableColors:             noColor,
			EnvironmentOverrideColors: true,
		})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "logfmt":
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableColors: true,
			FullTimestamp: true,
		})
	case "pretty":
		logrus.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !noColor,
			FullTimestamp: false,
		})
	default:
		return fmt.Errorf("%w: %s", errInvalidLogFormat, logFormat)
	}

	return nil
}

// flagIsEnabled reports a boolean flag. An unregistered name is a programming
// error and is fatal.
func flagIsEnabled(flags *pflag.FlagSet, name string) bool {
	value, err := flags.GetBool(name)
	if err != nil {
		logrus.Fatalf("The flag %q is not defined", name)
	}

	return value
}

// setFlagIfDefault sets name unless the user already set it.
func setFlagIfDefault(flags *pflag.FlagSet, name string, value string) {
	if flags.Changed(name) {
		return
	}

	if err := flags.Set(name, value); err != nil {
		logrus.WithError(err).WithField("flag", name).Error("Could not set flag")
	}
}
