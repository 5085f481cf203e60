package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/gsingh-io/dbbackup/internal/logger"
)

// S3API is the subset of the S3 client used by the store, so tests can fake it.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Object is one backup file present in the bucket.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Store gives access to the backups uploaded to an S3 bucket.
type Store struct {
	api    S3API
	bucket string
}

// NewStore creates a new instance of Store.
func NewStore(api S3API, bucket string) *Store {
	return &Store{
		api:    api,
		bucket: bucket,
	}
}

// NewAWSConfig loads the ambient AWS configuration (credentials chain,
// shared profile) for the given region.
func NewAWSConfig(ctx context.Context, region, profile string) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("cannot load AWS config: %w", err)
	}

	return cfg, nil
}

// NewS3Client builds the S3 client, optionally pointed at an
// S3-compatible endpoint.
func NewS3Client(cfg aws.Config, endpointURL string) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpointURL != "" {
			o.BaseEndpoint = aws.String(endpointURL)
			o.UsePathStyle = true
		}
	})
}

// List returns the backup objects under the given prefix, newest first.
func (s *Store) List(ctx context.Context, prefix string) ([]Object, error) {
	var objects []Object

	paginator := s3.NewListObjectsV2Paginator(s.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("can't list objects in bucket %s: %w", s.bucket, err)
		}

		for _, obj := range page.Contents {
			objects = append(objects, Object{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}

	sort.SliceStable(objects, func(i, j int) bool {
		return objects[i].LastModified.After(objects[j].LastModified)
	})

	return objects, nil
}

// Latest returns the most recent backup object under the given prefix.
func (s *Store) Latest(ctx context.Context, prefix string) (Object, error) {
	objects, err := s.List(ctx, prefix)
	if err != nil {
		return Object{}, err
	}
	if len(objects) == 0 {
		return Object{}, fmt.Errorf("no backup found in %s", s.URL(prefix))
	}

	return objects[0], nil
}

// Prune deletes backups beyond the retention policy: the `keep` newest
// objects are always retained, the others are deleted when older than
// `olderThan` (a zero duration deletes them all).
// It returns the deleted objects. With dryRun enabled nothing is deleted,
// the returned slice lists the deletion candidates.
func (s *Store) Prune(ctx context.Context, prefix string, keep int, olderThan time.Duration, dryRun bool) ([]Object, error) {
	objects, err := s.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	if keep < 0 {
		keep = 0
	}
	if len(objects) <= keep {
		return nil, nil
	}

	cutoff := time.Now().Add(-olderThan)

	var deleted []Object
	for _, obj := range objects[keep:] {
		if olderThan > 0 && obj.LastModified.After(cutoff) {
			continue
		}

		if dryRun {
			logger.Infof("[DRY-RUN] Would delete %s", s.URL(obj.Key))
			deleted = append(deleted, obj)
			continue
		}

		_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(obj.Key),
		})
		if err != nil {
			return deleted, fmt.Errorf("can't delete object %s: %w", obj.Key, err)
		}

		logger.Debugf("Deleted %s", s.URL(obj.Key))
		deleted = append(deleted, obj)
	}

	return deleted, nil
}

// URL returns the absolute path to the s3 object in the form s3://bucket/key.
func (s *Store) URL(key string) string {
	if key == "" {
		return fmt.Sprintf("s3://%s", s.bucket)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key)
}
