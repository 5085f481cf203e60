package kubernetes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gsingh-io/dbbackup/internal/logger"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/rand"
	"k8s.io/apimachinery/pkg/util/yaml"
	"k8s.io/apimachinery/pkg/watch"
)

// MonitorJob waits for a batch job to run to completion.
// The function is non-blocking, it returns 2 channels that will be used as event dispatchers:
// - When the job gets its first active pod, an empty struct is sent to readyChan.
// - When the job reaches completion, nil is sent to errChan on success, or an error if the job failed.
// - If the timeout is reached, an error is sent to errChan.
// - If the passed context is cancelled or timeouts, an error is sent to errChan.
func MonitorJob(ctx context.Context, watcher watch.Interface, timeout time.Duration) (chan struct{}, chan error) {
	readyChan := make(chan struct{})
	errChan := make(chan error)
	active := false

	go func() {
		defer close(errChan)
		defer close(readyChan)

		// A single timer bounds the whole wait. An inline time.After in the
		// select would reset on every watch event, and a job whose pods keep
		// failing under backoffLimit emits events indefinitely.
		timer := time.NewTimer(timeout)
		defer timer.Stop()

		for {
			select {
			case event, chanOk := <-watcher.ResultChan():
				if !chanOk {
					return
				}
				job, ok := event.Object.(*batchv1.Job)
				if !ok {
					// The Object of the event is not a Job, we can ignore it.
					// Maybe the watcher is watching different types of resources, or the job we are watching was
					// deleted before the watcher was stopped.
					// In both cases we don't care: we just want updates on the job status.
					break
				}

				logger.Debugf("Job %s/%s %s, active=%d succeeded=%d failed=%d", job.Namespace,
					job.Name, event.Type, job.Status.Active, job.Status.Succeeded, job.Status.Failed)

				if event.Type == watch.Deleted {
					logger.Errorf("Job %s/%s was deleted", job.Namespace, job.Name)
					errChan <- fmt.Errorf("job %s was deleted", job.Name)
					return
				}

				switch currentJobState(job) {
				case jobStateActive:
					if active {
						break
					}
					active = true
					logger.Infof("Job %s/%s has a running pod, ready to proceed", job.Namespace, job.Name)
					readyChan <- struct{}{}
				case jobStateSucceeded:
					logger.Infof("Job %s/%s succeeded", job.Namespace, job.Name)
					errChan <- nil
					return
				case jobStateFailed:
					logger.Infof("Job %s/%s failed", job.Namespace, job.Name)
					errChan <- fmt.Errorf("job %s terminated (failed)", job.Name)
					return
				case jobStatePending:
				}
			case <-timer.C:
				errChan <- fmt.Errorf("timeout waiting for job to run to completion")
				return
			case <-ctx.Done():
				errChan <- fmt.Errorf("stop waiting for job: %w", ctx.Err())
				return
			}
		}
	}()

	return readyChan, errChan
}

type jobState int

const (
	jobStatePending jobState = iota
	jobStateActive
	jobStateSucceeded
	jobStateFailed
)

// currentJobState resolves the state of a job from its status.
// Conditions are authoritative once set, the active counter only tells
// us that a pod is up and producing logs.
func currentJobState(job *batchv1.Job) jobState {
	for _, cond := range job.Status.Conditions {
		if cond.Status != corev1.ConditionTrue {
			continue
		}
		switch cond.Type {
		case batchv1.JobComplete:
			return jobStateSucceeded
		case batchv1.JobFailed:
			return jobStateFailed
		case batchv1.JobSuspended, batchv1.JobFailureTarget, batchv1.JobSuccessCriteriaMet:
		}
	}

	if job.Status.Succeeded > 0 {
		return jobStateSucceeded
	}
	if job.Status.Active > 0 {
		return jobStateActive
	}

	return jobStatePending
}

// UniqueJobName generates a unique job name with random characters.
// An identifier string passed as argument will be included in the generated job name.
func UniqueJobName(identifier string) func() string {
	return func() string {
		identifier = strings.ReplaceAll(identifier, ":", "-")
		identifier = strings.ReplaceAll(identifier, "/", "-")
		identifier = strings.ReplaceAll(identifier, "_", "-")
		base := identifier
		maxNameLength, randomLength := 63, 8
		maxGeneratedNameLength := maxNameLength - randomLength - 1
		if len(base) > maxGeneratedNameLength {
			base = base[:maxGeneratedNameLength]
		}

		return strings.ToLower(fmt.Sprintf("%s-%s", base, rand.String(randomLength)))
	}
}

// MergeObjectWithYaml unmarshalls the YAML from the yamlOverride argument into the provided object.
// The `obj` argument typically is a pointer to a kubernetes type (with `json` tags).
// Existing values inside the `obj` will be erased if the YAML explicitly overrides it.
// All values within the object that are not explicitly overridden will not be modified.
func MergeObjectWithYaml(obj interface{}, yamlOverride string) error {
	if yamlOverride == "" {
		return nil
	}

	decoder := yaml.NewYAMLOrJSONDecoder(strings.NewReader(yamlOverride), 1024)
	if err := decoder.Decode(&obj); err != nil {
		return fmt.Errorf("invalid yaml override for type %T: %w", obj, err)
	}

	return nil
}
