package kubernetes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gsingh-io/dbbackup/internal/logger"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

const podLookupInterval = 1 * time.Second

var errPodNotFound = errors.New("no pod found for job")

// JobPod returns the pod spawned by the job controller for the given job.
// The pod may not exist yet right after the job submission, the lookup
// is retried until the context is cancelled.
func JobPod(ctx context.Context, k8s kubernetes.Interface, namespace, jobName string) (*corev1.Pod, error) {
	for {
		pod, err := findJobPod(ctx, k8s, namespace, jobName)
		if err == nil {
			return pod, nil
		}
		if !errors.Is(err, errPodNotFound) {
			return nil, err
		}

		select {
		case <-time.After(podLookupInterval):
		case <-ctx.Done():
			return nil, fmt.Errorf("stop waiting for pod of job %s: %w", jobName, ctx.Err())
		}
	}
}

func findJobPod(ctx context.Context, k8s kubernetes.Interface, namespace, jobName string) (*corev1.Pod, error) {
	podList, err := k8s.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{
		LabelSelector: fmt.Sprintf("job-name=%s", jobName),
		Limit:         1,
	})
	if err != nil {
		return nil, fmt.Errorf("can't list pods of job %s: %w", jobName, err)
	}

	if len(podList.Items) == 0 {
		return nil, errPodNotFound
	}

	return &podList.Items[0], nil
}

// PrintJobLogs follows the logs of the pod owned by the given job and writes them to the given io.Writer.
// The function is blocking, and will continue to print logs until the log stream is no longer readable,
// most likely because the container exited.
func PrintJobLogs(ctx context.Context, out io.Writer, k8s kubernetes.Interface, namespace, jobName string) {
	pod, err := JobPod(ctx, k8s, namespace, jobName)
	if err != nil {
		logger.Errorf("Failed to resolve pod for job %s: %v", jobName, err)
		return
	}

	req := k8s.CoreV1().Pods(namespace).GetLogs(pod.Name, &corev1.PodLogOptions{
		Follow: true,
	})
	podLogs, err := req.Stream(ctx)
	if err != nil {
		logger.Errorf("Failed to stream logs for pod %s: %v", pod.Name, err)
		return
	}
	defer func() {
		_ = podLogs.Close()
	}()
	for {
		buf := make([]byte, 2000)
		numBytes, err := podLogs.Read(buf)
		if errors.Is(err, io.EOF) {
			return
		}
		if numBytes == 0 {
			continue
		}
		if err != nil {
			logger.Errorf("Error reading logs buffer of pod %s: %v", pod.Name, err)
			return
		}
		if _, err := out.Write(buf[:numBytes]); err != nil {
			logger.Errorf("Error writing log to output: %v", err)
			return
		}
	}
}
