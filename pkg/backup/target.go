package backup

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Target describes one database to back up.
// Empty fields are filled with the values of the run options.
type Target struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Dbname string `yaml:"dbname"`
	User   string `yaml:"user"`
	All    bool   `yaml:"all"`
	Prefix string `yaml:"prefix"`
}

type targetsFile struct {
	Targets []Target `yaml:"targets"`
}

// LoadTargets reads a YAML targets file and returns the list of targets,
// with empty fields defaulted from the run options.
func LoadTargets(path string, opts RunOpts) ([]Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read targets file %s: %w", path, err)
	}

	var file targetsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid targets file %s: %w", path, err)
	}

	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("targets file %s contains no targets", path)
	}

	targets := make([]Target, len(file.Targets))
	for i, target := range file.Targets {
		targets[i] = withDefaults(target, opts)
	}

	return targets, nil
}

// DefaultTarget builds the single target described by the run options.
func DefaultTarget(opts RunOpts) Target {
	return Target{
		Host:   opts.Host,
		Port:   opts.Port,
		Dbname: opts.Dbname,
		User:   opts.User,
		All:    opts.All,
		Prefix: opts.Prefix,
	}
}

func withDefaults(target Target, opts RunOpts) Target {
	if target.Host == "" {
		target.Host = opts.Host
	}
	if target.Port == 0 {
		target.Port = opts.Port
	}
	if target.Dbname == "" {
		target.Dbname = opts.Dbname
	}
	if target.User == "" {
		target.User = opts.User
	}
	if target.Prefix == "" {
		target.Prefix = opts.Prefix
	}

	return target
}
