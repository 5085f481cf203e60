package kubernetes

// JobConfig hold the configuration for the kubernetes job to create.
type JobConfig struct {
	// Kubernetes generic configuration.
	// The job name is not part of the config: every run generates a unique
	// name to avoid collisions with a not-yet-reaped previous job.
	Namespace        string            // The namespace where the job should be created.
	Labels           map[string]string // A map of key/value labels.
	Image            string            // The image for the job container.
	ImagePullPolicy  string            // The image pull policy ("Always", "IfNotPresent", "Never").
	ImagePullSecrets []string          // A list of `imagePullSecret` secret names.
	Env              map[string]string // A map of key/value env variables.
	EnvSecrets       []string          // A list of `envFrom` secret names.

	// Job-specific configuration.
	BackoffLimit            int32 // Number of pod retries before the job is marked as failed.
	TTLSecondsAfterFinished int32 // Delay before a finished job is eligible for garbage collection.

	// Advanced customisations (raw YAML overrides)
	ContainerOverride string // YAML string to override the job container object.
	JobOverride       string // YAML string to override the job object.
}
