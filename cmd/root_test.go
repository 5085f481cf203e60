package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gsingh-io/dbbackup/pkg/backup"
)

// Keys without a flag (credentials, kubernetes.*) must still be
// overridable through DBBACKUP_* env vars: viper only unmarshals keys it
// knows about, so each one needs a registered default.
func Test_InitConfig_EnvOverridesFlaglessKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".dbbackup.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("bucket: from-config\n"), 0o600))

	t.Setenv("DBBACKUP_POSTGRES_PASSWORD", "hunter2")
	t.Setenv("DBBACKUP_AWS_ACCESS_KEY_ID", "AKIAEXAMPLE")
	t.Setenv("DBBACKUP_AWS_SECRET_ACCESS_KEY", "aws-secret")
	t.Setenv("DBBACKUP_KUBERNETES_ENV_SECRET", "pg-backup-credentials")
	t.Setenv("DBBACKUP_KUBERNETES_IMAGE_PULL_SECRETS", "pull-a,pull-b")
	t.Setenv("DBBACKUP_KUBERNETES_JOB_OVERRIDE", "spec:\n  activeDeadlineSeconds: 1200\n")
	t.Setenv("DBBACKUP_KUBERNETES_NAMESPACE", "backups")

	viper.Reset()
	cfgFile = configPath
	t.Cleanup(func() {
		cfgFile = ""
		viper.Reset()
	})

	initConfig()

	opts := backup.RunOpts{}
	hydrateOptsFromViper(&opts)

	assert.Equal(t, "from-config", opts.Bucket)
	assert.Equal(t, "hunter2", opts.PostgresPassword)
	assert.Equal(t, "AKIAEXAMPLE", opts.AWSAccessKeyID)
	assert.Equal(t, "aws-secret", opts.AWSSecretAccessKey)
	assert.Equal(t, "pg-backup-credentials", opts.Kubernetes.EnvSecret)
	assert.Equal(t, []string{"pull-a", "pull-b"}, opts.Kubernetes.ImagePullSecrets)
	assert.Equal(t, "spec:\n  activeDeadlineSeconds: 1200\n", opts.Kubernetes.JobOverride)
	assert.Equal(t, "backups", opts.Kubernetes.Namespace)

	// Defaults still apply for keys left untouched.
	assert.Equal(t, int32(defaultBackoffLimit), opts.Kubernetes.BackoffLimit)
	assert.Equal(t, defaultBackupImage, opts.Kubernetes.Image)
}
