package cmd

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gsingh-io/dbbackup/internal/logger"
)

const (
	defaultLogLevel                = "info"
	defaultBackupImage             = "regv2.gsingh.io/personal/pg-s3-backup:latest"
	defaultImagePullPolicy         = "Always"
	defaultKubernetesNamespace     = "default"
	defaultBackoffLimit            = 4
	defaultTTLSecondsAfterFinished = 300
)

var (
	workingDir string
	cfgFile    string
)

var rootCmd = &cobra.Command{
	Use: "dbbackup",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	Short: "Trigger PostgreSQL-to-S3 backup jobs on a Kubernetes cluster",
	Long: `dbbackup runs the pg-s3-backup container as a one-shot Kubernetes Job,
waits for its completion and relays its logs. It also lists and prunes
the backups already uploaded to the S3 bucket.

Run dbbackup --help for more information`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	// Set logger level from flags as early as possible, then load config, then finalize from Viper
	cobra.OnInitialize(preInitLogLevelFromFlags, initConfig, initLogLevel)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.config/.dbbackup.yaml)")
	rootCmd.PersistentFlags().StringP("log-level", "l", defaultLogLevel,
		`Log level. Can be any standard log-level ("info", "debug", etc...)`)

	err := viper.BindPFlags(rootCmd.PersistentFlags())
	if err != nil {
		cobra.CheckErr(err)
	}

	rootCmd.AddCommand(runCommand())
	rootCmd.AddCommand(listCommand())
	rootCmd.AddCommand(pruneCommand())
	rootCmd.AddCommand(versionCommand())
	rootCmd.AddCommand(docgenCommand())
}

func initConfig() {
	var err error

	workingDir, err = os.Getwd()
	cobra.CheckErr(err)

	viper.SetConfigType("yaml")

	if cfgFile != "" {
		// Use config file from the flag.
		setConfigFile(cfgFile)
	} else if val := os.Getenv("DBBACKUP_CONFIG"); val != "" {
		// Use config file from the env variable.
		setConfigFile(val)
	} else {
		// Add $HOME/.config and current directory as paths for Viper to search for the config file in.
		homeDir, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(path.Join(homeDir, ".config"))
		viper.AddConfigPath(workingDir)

		// Search config file with name ".dbbackup.yaml" or ".dbbackup.yml".
		viper.SetConfigName(".dbbackup")
	}

	// Set defaults for config values that have no flag bound to them.
	// Every flag-less key needs a default registered here, otherwise
	// viper.Unmarshal never sees the key and its DBBACKUP_* env override
	// is silently dropped.
	viper.SetDefault("kubernetes.namespace", defaultKubernetesNamespace)
	viper.SetDefault("kubernetes.image", defaultBackupImage)
	viper.SetDefault("kubernetes.image_pull_policy", defaultImagePullPolicy)
	viper.SetDefault("kubernetes.image_pull_secrets", []string{})
	viper.SetDefault("kubernetes.env_secret", "")
	viper.SetDefault("kubernetes.backoff_limit", defaultBackoffLimit)
	viper.SetDefault("kubernetes.ttl_seconds_after_finished", defaultTTLSecondsAfterFinished)
	viper.SetDefault("kubernetes.container_override", "")
	viper.SetDefault("kubernetes.job_override", "")
	viper.SetDefault("postgres_password", "")
	viper.SetDefault("aws_access_key_id", "")
	viper.SetDefault("aws_secret_access_key", "")

	// Env vars starting with the DBBACKUP_ prefix can override any configuration.
	// e.g. DBBACKUP_LOG_LEVEL, DBBACKUP_KUBERNETES_NAMESPACE, DBBACKUP_POSTGRES_PASSWORD, etc...
	viper.SetEnvPrefix("dbbackup")
	// Allows to override any sub-level in file config.
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// Read in environment variables that match.
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	err = viper.ReadInConfig()
	if err != nil {
		// Non-blocking, because some commands do not require a config file, ie: docgen.
		logger.Warnf("%s", err)
	} else {
		logger.Infof("Using config file: %s", viper.ConfigFileUsed())
	}
}

func initLogLevel() {
	logLevel := viper.GetString("log_level")
	logger.SetLevel(&logLevel)
}

// preInitLogLevelFromFlags sets the log level from Cobra flags or env before config/env are loaded by Viper,
// so that early logs (like config not found) respect user-provided preference.
// Precedence respected here: flag > env (DBBACKUP_LOG_LEVEL) > config (handled later in initLogLevel via Viper).
func preInitLogLevelFromFlags() {
	if rootCmd == nil {
		return
	}

	flag := rootCmd.PersistentFlags().Lookup("log-level")
	if flag != nil && flag.Changed {
		val, err := rootCmd.PersistentFlags().GetString("log-level")
		if err == nil {
			logger.SetLevel(&val)
			return
		}
	}

	if val, ok := os.LookupEnv("DBBACKUP_LOG_LEVEL"); ok && val != "" {
		logger.SetLevel(&val)
	}
}

func setConfigFile(name string) {
	_, err := os.Stat(name)
	if err != nil {
		cobra.CheckErr(fmt.Errorf("config file %q not found", name))
	}

	viper.SetConfigFile(name)
}

// hydrateOptsFromViper copies all the viper values into our config struct.
// The mapping between viper identifiers and struct field names
// is ensured by `mapstructure` struct tags.
func hydrateOptsFromViper(opts any) {
	_ = viper.Unmarshal(opts)
}

// bindPFlagsSnakeCase binds the flags with viper values. The identifier of the viper value
// is the name of the flag with dashes replaced by underscores. This is required so we can
// retrieve values from viper with the same behaviour with config coming from files
// (my_config: "value") or from flags (--my-config=value).
func bindPFlagsSnakeCase(flags *pflag.FlagSet) {
	flags.VisitAll(func(flag *pflag.Flag) {
		_ = viper.BindPFlag(strings.ReplaceAll(flag.Name, "-", "_"), flag)
	})
}
