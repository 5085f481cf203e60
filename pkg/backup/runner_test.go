package backup_test

import (
	"context"
	"strings"
	"testing"

	"github.com/gsingh-io/dbbackup/pkg/backup"
	"github.com/gsingh-io/dbbackup/pkg/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Runner_Run(t *testing.T) {
	t.Parallel()

	executor := mock.NewExecutor()
	executor.Output = "backup completed"

	opts := backup.RunOpts{
		Bucket:     "my-backups",
		AWSProfile: "default",
		AWSRegion:  "us-east-1",
	}
	runner := backup.NewRunner(executor, opts)

	writer := mock.NewWriter()
	result := runner.Run(context.Background(), writer, backup.Target{
		Host:   "localhost",
		Port:   5432,
		Dbname: "mydb",
		User:   "postgres",
	})

	require.NoError(t, result.Err)
	assert.Equal(t, "backup completed", writer.GetString())

	require.Len(t, executor.Executed, 1)
	job := executor.Executed[0]
	assert.True(t, strings.HasPrefix(job.JobName, "pg-s3-backup-mydb-"),
		"job name %s does not have prefix pg-s3-backup-mydb-", job.JobName)
	assert.Equal(t, job.JobName, result.JobName)
	assert.Contains(t, job.Args, "--dbname")
	assert.Contains(t, job.Args, "mydb")
}

func Test_Runner_RunDryRun(t *testing.T) {
	t.Parallel()

	executor := mock.NewExecutor()

	opts := backup.RunOpts{
		Bucket: "my-backups",
		DryRun: true,
	}
	runner := backup.NewRunner(executor, opts)

	result := runner.Run(context.Background(), nil, backup.Target{Dbname: "mydb"})

	require.NoError(t, result.Err)
	assert.Empty(t, executor.Executed)
}

func Test_Runner_RunAll(t *testing.T) {
	t.Parallel()

	executor := mock.NewExecutor()

	opts := backup.RunOpts{
		Bucket:      "my-backups",
		Concurrency: 2,
	}
	runner := backup.NewRunner(executor, opts)

	targets := []backup.Target{
		{Dbname: "app", Host: "localhost", Port: 5432, User: "postgres"},
		{Dbname: "analytics", Host: "localhost", Port: 5432, User: "postgres"},
		{Dbname: "audit", Host: "localhost", Port: 5432, User: "postgres"},
	}

	results, err := runner.RunAll(context.Background(), nil, targets)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Len(t, executor.Executed, 3)

	for i, result := range results {
		assert.Equal(t, targets[i].Dbname, result.Target.Dbname)
		assert.NoError(t, result.Err)
	}
}

func Test_Runner_RunAllReportsFailure(t *testing.T) {
	t.Parallel()

	executor := mock.NewExecutor()
	executor.Error = assert.AnError

	runner := backup.NewRunner(executor, backup.RunOpts{Bucket: "my-backups"})

	results, err := runner.RunAll(context.Background(), nil, []backup.Target{{Dbname: "app"}})
	require.ErrorContains(t, err, "at least one backup failed")
	require.Len(t, results, 1)
	require.ErrorIs(t, results[0].Err, assert.AnError)
}

func Test_Runner_HasRunID(t *testing.T) {
	t.Parallel()

	runner := backup.NewRunner(mock.NewExecutor(), backup.RunOpts{})
	assert.NotEmpty(t, runner.RunID)
}
