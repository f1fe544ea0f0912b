package cmd

import (
	"strings"

	"github.com/quatton/qtripal/pkg/qjob"
	"github.com/spf13/cobra"
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Inspect and drive the site's job queue",
}

var jobGetCmd = &cobra.Command{
	Use:   "get <job-id>",
	Short: "Show a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := GetService(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		job, err := svc.Jobs.Get(ctx, qjob.ID(strings.TrimSpace(args[0])))
		if err != nil {
			return err
		}
		return printJSON(cmd, job)
	},
}

var jobWaitRun bool

var jobWaitCmd = &cobra.Command{
	Use:   "wait <job-id>",
	Short: "Block until a job is Completed, Error or Cancelled",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := GetService(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		job, err := qjob.RunAndWait(ctx, svc.Jobs, qjob.ID(strings.TrimSpace(args[0])), jobWaitRun)
		if err != nil {
			return err
		}
		return printJSON(cmd, job)
	},
}

var jobRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Ask the site to launch queued jobs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := GetService(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		if err := svc.Jobs.Run(ctx); err != nil {
			return err
		}
		svc.Logger.Info("job queue triggered")
		return nil
	},
}

func init() {
	jobWaitCmd.Flags().BoolVar(&jobWaitRun, "run", false, "Trigger the job queue before waiting")

	jobCmd.AddCommand(jobGetCmd, jobWaitCmd, jobRunCmd)
	rootCmd.AddCommand(jobCmd)
}
