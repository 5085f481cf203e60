package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/gsingh-io/dbbackup/internal/logger"
	"github.com/gsingh-io/dbbackup/pkg/storage"
)

func pruneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete backups beyond the retention policy",
		Long: `dbbackup prune deletes backup objects from the S3 bucket. The newest
--keep objects are always retained, older objects are deleted when they
exceed --older-than (all of them when --older-than is not set).`,
		Run: func(cmd *cobra.Command, _ []string) {
			bindPFlagsSnakeCase(cmd.Flags())

			opts := storage.PruneOpts{}
			hydrateOptsFromViper(&opts)

			if err := doPrune(cmd.Context(), opts); err != nil {
				logger.Fatalf("Prune failed: %v", err)
			}
		},
	}

	cmd.Flags().String("bucket", "my-backups", "S3 bucket holding the backups.")
	cmd.Flags().String("prefix", "", "S3 key prefix of the backups.")
	cmd.Flags().String("aws-profile", "default", "AWS profile.")
	cmd.Flags().String("aws-region", "us-east-1", "AWS region of the bucket.")
	cmd.Flags().String("aws-endpoint-url", "", "Custom AWS endpoint URL, for S3-compatible services.")
	cmd.Flags().Int("keep", 7, "Number of most recent backups to always retain.")
	cmd.Flags().Duration("older-than", 0, "Only delete backups older than this duration (e.g. 720h).")
	cmd.Flags().Bool("dry-run", false, "Print the backups that would be deleted without deleting anything.")

	return cmd
}

func doPrune(ctx context.Context, opts storage.PruneOpts) error {
	store, err := createStore(ctx, opts.AWSRegion, opts.AWSProfile, opts.AWSEndpointURL, opts.Bucket)
	if err != nil {
		return err
	}

	deleted, err := store.Prune(ctx, opts.Prefix, opts.Keep, opts.OlderThan, opts.DryRun)
	if err != nil {
		return err
	}

	if len(deleted) == 0 {
		logger.Infof("Nothing to prune")
		return nil
	}

	logger.Infof("Pruned %d backup(s)", len(deleted))
	return nil
}
