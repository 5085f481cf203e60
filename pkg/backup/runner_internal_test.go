package backup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_credentialEnv(t *testing.T) {
	t.Parallel()

	dataset := []struct {
		name     string
		opts     RunOpts
		expected map[string]string
	}{
		{
			name: "secret reference wins over literals",
			opts: RunOpts{
				PostgresPassword: "hunter2",
				Kubernetes:       KubernetesConfig{EnvSecret: "pg-backup-credentials"},
			},
			expected: nil,
		},
		{
			name: "literal credentials become env vars",
			opts: RunOpts{
				PostgresPassword:   "hunter2",
				AWSAccessKeyID:     "AKIAEXAMPLE",
				AWSSecretAccessKey: "aws-secret",
			},
			expected: map[string]string{
				"PGPASSWORD":            "hunter2",
				"AWS_ACCESS_KEY_ID":     "AKIAEXAMPLE",
				"AWS_SECRET_ACCESS_KEY": "aws-secret",
			},
		},
		{
			// The image may rely on the pod identity (IRSA, instance
			// profile), nothing gets injected and nothing gets warned about.
			name:     "no credentials configured at all",
			opts:     RunOpts{},
			expected: map[string]string{},
		},
	}

	for _, ds := range dataset {
		t.Run(ds.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, ds.expected, credentialEnv(ds.opts))
		})
	}
}

func Test_credentialSecrets(t *testing.T) {
	t.Parallel()

	assert.Nil(t, credentialSecrets(RunOpts{}))
	assert.Equal(t, []string{"pg-backup-credentials"}, credentialSecrets(RunOpts{
		Kubernetes: KubernetesConfig{EnvSecret: "pg-backup-credentials"},
	}))
}
