// Package flags manages command-line flags and environment variables for updatecheck.
// It configures the runtime and registry backends, run behavior, output, and notifications via Cobra and Viper.
//
// Key components:
//   - RegisterBackendFlags: Adds runtime and registry backend flags.
//   - RegisterSystemFlags: Adds run control, logging, output, and metrics flags.
//   - RegisterNotificationFlags: Adds notification settings.
//   - ReadOptions: Collects and validates the parsed flags.
//   - SetupLogging: Configures logrus based on flags.
//
// Usage example:
//
//	cmd := &cobra.Command{}
//	flags.SetDefaults()
//	flags.RegisterSystemFlags(cmd)
//	err := flags.SetupLogging(cmd.PersistentFlags())
//	if err != nil {
//	    logrus.WithError(err).Fatal("Logging setup failed")
//	}
//
// Every flag can also be set through an UPDATECHECK_ environment variable, bound with Viper.
package flags
