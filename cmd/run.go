package cmd

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gsingh-io/dbbackup/internal/logger"
	"github.com/gsingh-io/dbbackup/pkg/backup"
)

func runCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Trigger a PostgreSQL backup job and wait for its completion",
		Long: `dbbackup run submits a one-shot Kubernetes Job running the pg-s3-backup
container, follows its logs and waits until it completes. The job is
deleted once finished unless --keep-job is set.

Multiple databases can be backed up in one invocation by pointing
--targets-file at a YAML file with a "targets" list.`,
		Run: func(cmd *cobra.Command, _ []string) {
			bindPFlagsSnakeCase(cmd.Flags())

			opts := backup.RunOpts{}
			hydrateOptsFromViper(&opts)

			if err := doRun(cmd.Context(), opts); err != nil {
				logger.Fatalf("Backup failed: %v", err)
			}
		},
	}

	cmd.Flags().String("host", "localhost", "Hostname of the postgres server.")
	cmd.Flags().Int("port", 5432, "Port of the postgres server.")
	cmd.Flags().String("dbname", "postgres", "Name of the database to backup.")
	cmd.Flags().String("user", "postgres", "Username to connect to the database.")
	cmd.Flags().Bool("all", false, "Backup all databases of the server.")
	cmd.Flags().String("bucket", "my-backups", "S3 bucket to upload the backup to.")
	cmd.Flags().String("prefix", "", "S3 key prefix to upload the backup under.")
	cmd.Flags().String("aws-profile", "default", "AWS profile used for the upload.")
	cmd.Flags().String("aws-region", "us-east-1", "AWS region of the bucket.")
	cmd.Flags().String("aws-endpoint-url", "", "Custom AWS endpoint URL, for S3-compatible services.")
	cmd.Flags().Bool("compress", false, "Enable gzip compression of the dump.")
	cmd.Flags().Bool("keep-local", false, "Keep the local backup file in the container after upload.")
	cmd.Flags().String("targets-file", "", "Path to a YAML file listing several databases to backup.")
	cmd.Flags().Int("concurrency", 1, "Maximum number of backup jobs running at the same time.")
	cmd.Flags().Bool("follow-logs", true, "Relay the logs of the backup container.")
	cmd.Flags().Bool("keep-job", false, "Do not delete the job after completion.")
	cmd.Flags().Bool("dry-run", false, "Print the backup invocation without submitting any job.")
	cmd.Flags().Int("timeout-seconds", 600, "How long to wait for a job to run to completion.")

	return cmd
}

func doRun(ctx context.Context, opts backup.RunOpts) error {
	targets := []backup.Target{backup.DefaultTarget(opts)}
	if opts.TargetsFile != "" {
		var err error
		targets, err = backup.LoadTargets(opts.TargetsFile, opts)
		if err != nil {
			return err
		}
	}

	runner, err := backup.CreateRunner(opts)
	if err != nil {
		return err
	}

	var output io.Writer
	if opts.FollowLogs {
		output = os.Stdout
	}

	results, err := runner.RunAll(ctx, output, targets)

	for _, result := range results {
		if result.Err != nil {
			logger.Errorf("%s: job %s failed: %v", result.Target.Dbname, result.JobName, result.Err)
			continue
		}
		logger.Infof("%s: job %s succeeded", result.Target.Dbname, result.JobName)
	}

	return err
}
