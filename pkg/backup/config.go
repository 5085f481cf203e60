package backup

// KubernetesConfig holds the kubernetes-related settings of the backup job.
// These have no flag bound to them, they come from the config file or from
// DBBACKUP_KUBERNETES_* environment variables.
type KubernetesConfig struct {
	Namespace               string   `mapstructure:"namespace"`
	Image                   string   `mapstructure:"image"`
	ImagePullPolicy         string   `mapstructure:"image_pull_policy"`
	ImagePullSecrets        []string `mapstructure:"image_pull_secrets"`
	EnvSecret               string   `mapstructure:"env_secret"`
	BackoffLimit            int32    `mapstructure:"backoff_limit"`
	TTLSecondsAfterFinished int32    `mapstructure:"ttl_seconds_after_finished"`
	ContainerOverride       string   `mapstructure:"container_override"`
	JobOverride             string   `mapstructure:"job_override"`
}

// RunOpts holds the options of the `run` command.
type RunOpts struct {
	// PostgreSQL connection options.
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	Dbname string `mapstructure:"dbname"`
	User   string `mapstructure:"user"`
	All    bool   `mapstructure:"all"`

	// S3 destination options.
	Bucket         string `mapstructure:"bucket"`
	Prefix         string `mapstructure:"prefix"`
	AWSProfile     string `mapstructure:"aws_profile"`
	AWSRegion      string `mapstructure:"aws_region"`
	AWSEndpointURL string `mapstructure:"aws_endpoint_url"`

	// Backup binary options.
	Compress  bool `mapstructure:"compress"`
	KeepLocal bool `mapstructure:"keep_local"`

	// Run behaviour.
	TargetsFile    string `mapstructure:"targets_file"`
	Concurrency    int    `mapstructure:"concurrency"`
	FollowLogs     bool   `mapstructure:"follow_logs"`
	KeepJob        bool   `mapstructure:"keep_job"`
	DryRun         bool   `mapstructure:"dry_run"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`

	// Legacy credential passing. When `kubernetes.env_secret` is unset, these
	// literal values are injected as plain env vars in the job container.
	// Prefer a kubernetes Secret holding the PGPASSWORD, AWS_ACCESS_KEY_ID
	// and AWS_SECRET_ACCESS_KEY keys.
	PostgresPassword   string `mapstructure:"postgres_password"`
	AWSAccessKeyID     string `mapstructure:"aws_access_key_id"`
	AWSSecretAccessKey string `mapstructure:"aws_secret_access_key"`

	Kubernetes KubernetesConfig `mapstructure:"kubernetes"`
}
