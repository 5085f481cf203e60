package backup

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gsingh-io/dbbackup/internal/logger"
	k8sutils "github.com/gsingh-io/dbbackup/pkg/kubernetes"
	"gitlab.com/radiofrance/kubecli"
	"golang.org/x/sync/errgroup"
)

// jobIdentifier is the sanitized prefix of every generated job name.
const jobIdentifier = "pg-s3-backup"

// RunIDLabel is stamped on every job of a run so that all jobs submitted
// by a single invocation can be selected together.
const RunIDLabel = "dbbackup.gsingh.io/run-id"

// Result is the outcome of one backup job.
type Result struct {
	Target   Target
	JobName  string
	Duration time.Duration
	Err      error
}

// Runner triggers backup jobs, one per target.
type Runner struct {
	executor Executor
	opts     RunOpts
	RunID    string
}

// NewRunner creates a new instance of Runner.
func NewRunner(executor Executor, opts RunOpts) *Runner {
	return &Runner{
		executor: executor,
		opts:     opts,
		RunID:    uuid.NewString(),
	}
}

// CreateRunner wires a Runner to the cluster targeted by the local
// kubeconfig, falling back to the in-cluster config.
func CreateRunner(opts RunOpts) (*Runner, error) {
	k8sClient, err := kubecli.New("")
	if err != nil {
		return nil, fmt.Errorf("could not get kube client from context: %w", err)
	}

	runner := NewRunner(nil, opts)

	executor := NewKubernetesExecutor(k8sClient.ClientSet, k8sutils.JobConfig{
		Namespace: opts.Kubernetes.Namespace,
		Labels: map[string]string{
			RunIDLabel: runner.RunID,
		},
		Image:                   opts.Kubernetes.Image,
		ImagePullPolicy:         opts.Kubernetes.ImagePullPolicy,
		ImagePullSecrets:        opts.Kubernetes.ImagePullSecrets,
		Env:                     credentialEnv(opts),
		EnvSecrets:              credentialSecrets(opts),
		BackoffLimit:            opts.Kubernetes.BackoffLimit,
		TTLSecondsAfterFinished: opts.Kubernetes.TTLSecondsAfterFinished,
		ContainerOverride:       opts.Kubernetes.ContainerOverride,
		JobOverride:             opts.Kubernetes.JobOverride,
	})
	executor.DeleteAfterCompletion = !opts.KeepJob
	if opts.TimeoutSeconds > 0 {
		executor.Timeout = time.Duration(opts.TimeoutSeconds) * time.Second
	}

	runner.executor = executor
	return runner, nil
}

// credentialSecrets returns the `envFrom` secret names injecting the
// backup credentials. The named secret is expected to hold the
// PGPASSWORD, AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY keys.
func credentialSecrets(opts RunOpts) []string {
	if opts.Kubernetes.EnvSecret == "" {
		return nil
	}
	return []string{opts.Kubernetes.EnvSecret}
}

// credentialEnv returns the literal credential env vars used when no
// kubernetes secret is configured. Literal values end up readable in the
// job manifest, a Secret reference should be preferred.
func credentialEnv(opts RunOpts) map[string]string {
	if opts.Kubernetes.EnvSecret != "" {
		return nil
	}

	env := map[string]string{}
	if opts.PostgresPassword != "" {
		env["PGPASSWORD"] = opts.PostgresPassword
	}
	if opts.AWSAccessKeyID != "" {
		env["AWS_ACCESS_KEY_ID"] = opts.AWSAccessKeyID
	}
	if opts.AWSSecretAccessKey != "" {
		env["AWS_SECRET_ACCESS_KEY"] = opts.AWSSecretAccessKey
	}

	// No warning when nothing is configured either way: the image may get
	// its credentials from the pod identity (IRSA, instance profile).
	if len(env) > 0 {
		logger.Warnf("No kubernetes.env_secret configured, passing credentials as literal env vars")
	}

	return env
}

// Run triggers the backup job for a single target and waits for its completion.
func (r *Runner) Run(ctx context.Context, output io.Writer, target Target) Result {
	jobName := k8sutils.UniqueJobName(jobIdentifier + "-" + target.Dbname)()
	args := BuildArgs(r.opts, target)

	if r.opts.DryRun {
		logger.Infof("[DRY-RUN] %s %s", backupCommand, strings.Join(args, " "))
		return Result{Target: target, JobName: jobName}
	}

	logger.Infof("Starting PostgreSQL backup to S3: %s (job %s)", destination(r.opts, target), jobName)

	start := time.Now()
	err := r.executor.Execute(ctx, output, jobName, args...)
	result := Result{
		Target:   target,
		JobName:  jobName,
		Duration: time.Since(start),
		Err:      err,
	}

	if err != nil {
		logger.Errorf("Backup of database %q failed: %v", target.Dbname, err)
		return result
	}

	logger.Infof("Backup of database %q completed in %s", target.Dbname, result.Duration.Round(time.Second))
	return result
}

// RunAll triggers one backup job per target, bounded by the configured
// concurrency. The first failure cancels the jobs still waiting, results
// of already started jobs are reported regardless.
func (r *Runner) RunAll(ctx context.Context, output io.Writer, targets []Target) ([]Result, error) {
	concurrency := r.opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]Result, len(targets))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)
	for i, target := range targets {
		group.Go(func() error {
			results[i] = r.Run(groupCtx, output, target)
			return results[i].Err
		})
	}

	if err := group.Wait(); err != nil {
		return results, fmt.Errorf("at least one backup failed: %w", err)
	}

	return results, nil
}

// destination renders the s3 target of a backup for display purposes.
func destination(opts RunOpts, target Target) string {
	if target.Prefix == "" {
		return fmt.Sprintf("s3://%s", opts.Bucket)
	}
	return fmt.Sprintf("s3://%s/%s", opts.Bucket, target.Prefix)
}
