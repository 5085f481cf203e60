package backup

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gsingh-io/dbbackup/internal/logger"
	k8sutils "github.com/gsingh-io/dbbackup/pkg/kubernetes"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/utils/ptr"
)

// backupCommand is the entrypoint of the pg-s3-backup image.
const backupCommand = "/app/pg_s3_backup"

const containerName = "backup"

// Executor runs one backup job and blocks until it completes.
type Executor interface {
	// Execute the backup job, passing a slice of arguments to the pg_s3_backup command.
	Execute(ctx context.Context, output io.Writer, jobName string, args ...string) error
}

// KubernetesExecutor runs the backup as a batch job in a Kubernetes cluster.
type KubernetesExecutor struct {
	clientSet             kubernetes.Interface
	JobConfig             k8sutils.JobConfig // The default job configuration used to run backups.
	DeleteAfterCompletion bool               // Delete the job once it has completed.
	Timeout               time.Duration      // How long to wait for the job to run to completion.
}

// NewKubernetesExecutor creates a new instance of KubernetesExecutor.
func NewKubernetesExecutor(clientSet kubernetes.Interface, config k8sutils.JobConfig) *KubernetesExecutor {
	return &KubernetesExecutor{
		clientSet:             clientSet,
		JobConfig:             config,
		DeleteAfterCompletion: true,
		Timeout:               10 * time.Minute,
	}
}

// Execute the backup using a Kubernetes Job.
// A nil output writer skips the log relay entirely, the job status alone
// decides the outcome.
func (e KubernetesExecutor) Execute(ctx context.Context, output io.Writer, jobName string, args ...string) error {
	if e.JobConfig.Image == "" {
		return fmt.Errorf("the Image option is required")
	}

	job, err := e.buildJob(jobName, args)
	if err != nil {
		return err
	}

	namespace := e.JobConfig.Namespace
	watcher, err := e.clientSet.BatchV1().Jobs(namespace).Watch(ctx, metav1.ListOptions{
		LabelSelector: fmt.Sprintf("app.kubernetes.io/instance=%s", jobName),
		Watch:         true,
	})
	if err != nil {
		return fmt.Errorf("failed to watch job: %w", err)
	}
	defer watcher.Stop()

	readyChan, errChan := k8sutils.MonitorJob(ctx, watcher, e.Timeout)
	go func() {
		<-readyChan
		if output == nil {
			return
		}
		k8sutils.PrintJobLogs(ctx, output, e.clientSet, namespace, jobName)
	}()

	_, err = e.clientSet.BatchV1().Jobs(namespace).Create(ctx, job, metav1.CreateOptions{})
	if err != nil {
		return fmt.Errorf("failed to create backup job: %w", err)
	}

	if e.DeleteAfterCompletion {
		defer func() {
			propagation := metav1.DeletePropagationBackground
			err := e.clientSet.BatchV1().Jobs(namespace).Delete(ctx, jobName, metav1.DeleteOptions{
				PropagationPolicy: &propagation,
			})
			if err != nil {
				logger.Warnf("Failed to delete backup job %s, ignoring: %v", jobName, err)
			}
		}()
	}

	err = <-errChan
	if err != nil {
		return fmt.Errorf("error watching backup job: %w", err)
	}

	return nil
}

// buildJob assembles the batch/v1 Job manifest for one backup run.
func (e KubernetesExecutor) buildJob(jobName string, args []string) (*batchv1.Job, error) {
	labels := map[string]string{
		"app.kubernetes.io/name":       "pg-s3-backup",
		"app.kubernetes.io/component":  "backup-job",
		"app.kubernetes.io/instance":   jobName,
		"app.kubernetes.io/managed-by": "dbbackup",
	}
	// Merge the default labels with those provided in the options.
	for k, v := range e.JobConfig.Labels {
		labels[k] = v
	}

	var imagePullSecrets []corev1.LocalObjectReference
	for _, secretName := range e.JobConfig.ImagePullSecrets {
		imagePullSecrets = append(imagePullSecrets, corev1.LocalObjectReference{
			Name: secretName,
		})
	}

	var envVars []corev1.EnvVar
	for k, v := range e.JobConfig.Env {
		envVars = append(envVars, corev1.EnvVar{
			Name:  k,
			Value: v,
		})
	}

	var envFrom []corev1.EnvFromSource
	for _, secretName := range e.JobConfig.EnvSecrets {
		envFrom = append(envFrom, corev1.EnvFromSource{
			SecretRef: &corev1.SecretEnvSource{
				LocalObjectReference: corev1.LocalObjectReference{
					Name: secretName,
				},
			},
		})
	}

	pullPolicy := corev1.PullPolicy(e.JobConfig.ImagePullPolicy)
	if pullPolicy == "" {
		pullPolicy = corev1.PullAlways
	}

	container := corev1.Container{
		Name:            containerName,
		Image:           e.JobConfig.Image,
		ImagePullPolicy: pullPolicy,
		Command:         []string{backupCommand},
		Args:            args,
		EnvFrom:         envFrom,
		Env:             envVars,
	}
	err := k8sutils.MergeObjectWithYaml(&container, e.JobConfig.ContainerOverride)
	if err != nil {
		return nil, err
	}

	job := batchv1.Job{
		ObjectMeta: metav1.ObjectMeta{
			Name:      jobName,
			Namespace: e.JobConfig.Namespace,
			Labels:    labels,
		},
		Spec: batchv1.JobSpec{
			BackoffLimit:            ptr.To(e.JobConfig.BackoffLimit),
			TTLSecondsAfterFinished: ptr.To(e.JobConfig.TTLSecondsAfterFinished),
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels: labels,
				},
				Spec: corev1.PodSpec{
					ImagePullSecrets: imagePullSecrets,
					Containers: []corev1.Container{
						container,
					},
					RestartPolicy: corev1.RestartPolicyNever,
				},
			},
		},
	}
	err = k8sutils.MergeObjectWithYaml(&job, e.JobConfig.JobOverride)
	if err != nil {
		return nil, err
	}

	return &job, nil
}
