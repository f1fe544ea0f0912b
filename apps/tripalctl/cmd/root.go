package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/quatton/qtripal/pkg/qlog"
	"github.com/quatton/qtripal/pkg/qsdk"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type contextKey string

const serviceContextKey contextKey = "tripalservice"

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "tripalctl",
		Short: "Submit expression and biomaterial jobs to a Tripal site",
		Long: `tripalctl talks to the tripal_api endpoints of a Tripal site. It loads
expression data, manages biomaterials and inspects the site's job queue.

Every submitting command queues a job and, unless --no-wait is given, runs
the queue and blocks until the job is Completed, Error or Cancelled.
Results are printed as JSON on stdout; progress goes to stderr.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if svc, ok := cmd.Context().Value(serviceContextKey).(*Service); ok {
				return svc.Close()
			}
			return nil
		},
	}
)

func setup(cmd *cobra.Command, args []string) error {
	envLoaded := godotenv.Load() == nil

	cfg, err := qsdk.LoadConfig(cfgFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if err := cfg.BindFlags(map[string]*pflag.Flag{
		qsdk.BaseUrlKey:     flags.Lookup("base-url"),
		qsdk.UserKey:        flags.Lookup("user"),
		qsdk.VersionKey:     flags.Lookup("tripal-version"),
		qsdk.HTTPTimeoutKey: flags.Lookup("http-timeout"),
		qsdk.RunJobsKey:     flags.Lookup("run-jobs"),
		qsdk.LogFileKey:     flags.Lookup("log-file"),
	}); err != nil {
		return err
	}

	quiet, _ := flags.GetBool("quiet")
	verbose, _ := flags.GetBool("verbose")
	logger := qlog.Setup(qlog.ParseVerbosity(quiet, verbose), cfg.LogFile)
	if envLoaded {
		logger.Debug("loaded .env file")
	}
	if used := cfg.ConfigFileUsed(); used != "" {
		logger.Debug("using config file", "path", used)
	}

	svc, err := NewService(cmd.Context(), cfg, logger.Logger)
	if err != nil {
		return err
	}

	ctx := context.WithValue(cmd.Context(), serviceContextKey, svc)
	cmd.SetContext(ctx)
	return nil
}

// GetService retrieves the Service from the command context
func GetService(cmd *cobra.Command) (*Service, error) {
	svc, ok := cmd.Context().Value(serviceContextKey).(*Service)
	if !ok {
		return nil, errors.New("no service in context")
	}
	return svc, nil
}

func Execute() {
	err := rootCmd.ExecuteContext(context.Background())
	_ = qlog.Close()
	if err != nil {
		os.Exit(exitIfSdkError(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML). Searches: tripal.yaml, .tripal/config.yaml")
	rootCmd.PersistentFlags().String("base-url", "", "Base URL of the Tripal site (overrides config)")
	rootCmd.PersistentFlags().String("user", "", "Drupal user to authenticate as (overrides config)")
	rootCmd.PersistentFlags().Int("tripal-version", 3, "Major Tripal version of the site (2 or 3)")
	rootCmd.PersistentFlags().Duration("http-timeout", 0, "Per-request HTTP timeout (overrides config)")
	rootCmd.PersistentFlags().Bool("run-jobs", true, "Trigger the job queue before waiting")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Give up waiting after this long (0 waits forever)")
	rootCmd.PersistentFlags().String("log-file", "", "Also write debug logs as JSON to this file (rotated)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Print debug logs")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Only print warnings and errors")
}
