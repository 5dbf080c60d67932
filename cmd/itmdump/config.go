package main

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

// decodeConfig is the resolved configuration for the decode and serve
// subcommands: flag defaults, overridden by a YAML file via --config,
// overridden again by any flag the caller explicitly set.
type decodeConfig struct {
	Naive           bool   `yaml:"naive"`
	OnlyGTS         bool   `yaml:"only_gts"`
	StimulusStrings bool   `yaml:"stimulus_strings"`
	JSON            bool   `yaml:"json"`
	Stats           bool   `yaml:"stats"`
	MetricsAddr     string `yaml:"metrics_addr"`
	Verbose         bool   `yaml:"verbose"`
}

// loadConfig reads cmd's flags into a decodeConfig, applying a YAML config
// file (if --config was given) as the base and letting any flag the
// caller explicitly set win over it.
func loadConfig(cmd *cobra.Command) (decodeConfig, error) {
	var cfg decodeConfig

	// cmd.Flag also finds --config when it is a persistent flag (declared
	// here or on a parent) that has not been merged into cmd.Flags() yet.
	path := ""
	if f := cmd.Flag("config"); f != nil {
		path = f.Value.String()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return decodeConfig{}, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return decodeConfig{}, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("naive") || path == "" {
		cfg.Naive, _ = flags.GetBool("naive")
	}
	if flags.Changed("only-gts") || path == "" {
		cfg.OnlyGTS, _ = flags.GetBool("only-gts")
	}
	if flags.Changed("stimulus-strings") || path == "" {
		cfg.StimulusStrings, _ = flags.GetBool("stimulus-strings")
	}
	if flags.Changed("json") || path == "" {
		cfg.JSON, _ = flags.GetBool("json")
	}
	if flags.Changed("stats") || path == "" {
		cfg.Stats, _ = flags.GetBool("stats")
	}
	if flags.Changed("metrics-addr") || path == "" {
		cfg.MetricsAddr, _ = flags.GetString("metrics-addr")
	}
	if flags.Changed("verbose") || path == "" {
		cfg.Verbose, _ = flags.GetBool("verbose")
	}
	return cfg, nil
}
