package backup_test

import (
	"testing"

	"github.com/gsingh-io/dbbackup/pkg/backup"
	"github.com/stretchr/testify/assert"
)

func Test_BuildArgs_Minimal(t *testing.T) {
	t.Parallel()

	opts := backup.RunOpts{
		Bucket:     "my-backups",
		AWSProfile: "default",
		AWSRegion:  "us-east-1",
	}
	target := backup.Target{
		Host:   "localhost",
		Port:   5432,
		Dbname: "postgres",
		User:   "postgres",
	}

	args := backup.BuildArgs(opts, target)

	assert.Equal(t, []string{
		"--host", "localhost",
		"--port", "5432",
		"--dbname", "postgres",
		"--user", "postgres",
		"--bucket", "my-backups",
		"--aws-profile", "default",
		"--aws-region", "us-east-1",
	}, args)
}

func Test_BuildArgs_AllOptions(t *testing.T) {
	t.Parallel()

	opts := backup.RunOpts{
		Bucket:         "my-backups",
		AWSProfile:     "backup",
		AWSRegion:      "eu-west-3",
		AWSEndpointURL: "https://minio.example.org",
		Compress:       true,
		KeepLocal:      true,
	}
	target := backup.Target{
		Host:   "db.example.org",
		Port:   5433,
		Dbname: "app",
		User:   "backup",
		All:    true,
		Prefix: "production/",
	}

	args := backup.BuildArgs(opts, target)

	assert.Equal(t, []string{
		"--host", "db.example.org",
		"--port", "5433",
		"--dbname", "app",
		"--user", "backup",
		"--bucket", "my-backups",
		"--aws-profile", "backup",
		"--aws-region", "eu-west-3",
		"--all",
		"--prefix", "production/",
		"--aws-endpoint-url", "https://minio.example.org",
		"--compress",
		"--keep-local",
	}, args)
}
