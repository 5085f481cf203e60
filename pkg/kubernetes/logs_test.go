package kubernetes_test

import (
	"context"
	"testing"
	"time"

	k8sutils "github.com/gsingh-io/dbbackup/pkg/kubernetes"
	"github.com/gsingh-io/dbbackup/pkg/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func newJobPod(name, jobName string) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: "backup-ns",
			Labels: map[string]string{
				"job-name": jobName,
			},
		},
	}
}

func Test_JobPod(t *testing.T) {
	t.Parallel()

	clientSet := fake.NewSimpleClientset(newJobPod("pg-s3-backup-db-abcd1234-xyz", "pg-s3-backup-db-abcd1234"))

	pod, err := k8sutils.JobPod(context.Background(), clientSet, "backup-ns", "pg-s3-backup-db-abcd1234")
	require.NoError(t, err)
	assert.Equal(t, "pg-s3-backup-db-abcd1234-xyz", pod.Name)
}

func Test_JobPod_NoPod(t *testing.T) {
	t.Parallel()

	clientSet := fake.NewSimpleClientset()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := k8sutils.JobPod(ctx, clientSet, "backup-ns", "pg-s3-backup-db-abcd1234")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func Test_PrintJobLogs(t *testing.T) {
	t.Parallel()

	clientSet := fake.NewSimpleClientset(newJobPod("pg-s3-backup-db-abcd1234-xyz", "pg-s3-backup-db-abcd1234"))

	writer := mock.NewWriter()
	k8sutils.PrintJobLogs(context.Background(), writer, clientSet, "backup-ns", "pg-s3-backup-db-abcd1234")

	// The fake clientset always serves this log content.
	assert.Equal(t, "fake logs", writer.GetString())
}
