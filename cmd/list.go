package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gsingh-io/dbbackup/internal/logger"
	"github.com/gsingh-io/dbbackup/pkg/storage"
)

func listCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the backups present in the S3 bucket",
		Long:  `dbbackup list prints the backup objects stored in the S3 bucket, newest first`,
		Run: func(cmd *cobra.Command, _ []string) {
			bindPFlagsSnakeCase(cmd.Flags())

			opts := storage.ListOpts{}
			hydrateOptsFromViper(&opts)

			if err := doList(cmd.Context(), opts); err != nil {
				logger.Fatalf("List failed: %v", err)
			}
		},
	}

	cmd.Flags().String("bucket", "my-backups", "S3 bucket holding the backups.")
	cmd.Flags().String("prefix", "", "S3 key prefix of the backups.")
	cmd.Flags().String("aws-profile", "default", "AWS profile.")
	cmd.Flags().String("aws-region", "us-east-1", "AWS region of the bucket.")
	cmd.Flags().String("aws-endpoint-url", "", "Custom AWS endpoint URL, for S3-compatible services.")
	cmd.Flags().StringP("output", "o", "", ""+
		"Output format (console|go-template-file)\n"+
		"You can provide a custom format using go-template: like this: \"-o go-template-file=...\".")

	return cmd
}

func doList(ctx context.Context, opts storage.ListOpts) error {
	formatOpts, err := storage.ParseOutputOptions(opts.Output)
	if err != nil {
		return fmt.Errorf("error while parsing output options: %w", err)
	}

	store, err := createStore(ctx, opts.AWSRegion, opts.AWSProfile, opts.AWSEndpointURL, opts.Bucket)
	if err != nil {
		return err
	}

	objects, err := store.List(ctx, opts.Prefix)
	if err != nil {
		return err
	}

	return storage.GenerateList(objects, formatOpts)
}

func createStore(ctx context.Context, region, profile, endpointURL, bucket string) (*storage.Store, error) {
	awsCfg, err := storage.NewAWSConfig(ctx, region, profile)
	if err != nil {
		return nil, err
	}

	return storage.NewStore(storage.NewS3Client(awsCfg, endpointURL), bucket), nil
}
