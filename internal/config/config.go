package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/datamend/datamend-cli/internal/utils"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	PipelinesDir         string  `mapstructure:"pipelines_dir" yaml:"pipelines_dir"`
	TemplatesDir         string  `mapstructure:"templates_dir" yaml:"templates_dir"`
	HistoryCapacity      int     `mapstructure:"history_capacity" yaml:"history_capacity"`
	DefaultIQRMultiplier float64 `mapstructure:"default_iqr_multiplier" yaml:"default_iqr_multiplier"`
	DefaultZThreshold    float64 `mapstructure:"default_z_threshold" yaml:"default_z_threshold"`
	DefaultContamination float64 `mapstructure:"default_contamination" yaml:"default_contamination"`
	AutoCleanMissingPct  float64 `mapstructure:"auto_clean_missing_pct" yaml:"auto_clean_missing_pct"`
	Debug                bool    `mapstructure:"debug" yaml:"debug"`
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".datamend"), nil
}

func withDefaults(g *Global, base string) {
	if g.PipelinesDir == "" {
		g.PipelinesDir = filepath.Join(base, "pipelines")
	}
	if g.TemplatesDir == "" {
		g.TemplatesDir = filepath.Join(base, "templates")
	}
	if g.HistoryCapacity <= 0 {
		g.HistoryCapacity = 50
	}
	if g.DefaultIQRMultiplier <= 0 {
		g.DefaultIQRMultiplier = 1.5
	}
	if g.DefaultZThreshold <= 0 {
		g.DefaultZThreshold = 3.0
	}
	if g.DefaultContamination <= 0 {
		g.DefaultContamination = 0.1
	}
	if g.AutoCleanMissingPct <= 0 {
		g.AutoCleanMissingPct = 0.95
	}
}

// Load reads configuration from the given file, or from
// ~/.datamend/config.yaml when empty. A missing config file is not an
// error; defaults apply.
func Load(cfgFile string) (*Global, error) {
	base, err := defaultDir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(base)
		v.SetConfigName("config")
	}
	v.SetEnvPrefix("DATAMEND")
	v.AutomaticEnv()

	g := &Global{}
	if err := v.ReadInConfig(); err != nil {
		// An absent config file is fine; anything else when the user
		// pointed at a file explicitly is fatal.
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if cfgFile != "" && !os.IsNotExist(err) && !notFound {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := v.Unmarshal(g); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	withDefaults(g, base)
	return g, nil
}

// Save writes the configuration as YAML to the default location.
func Save(g *Global) (string, error) {
	base, err := defaultDir()
	if err != nil {
		return "", err
	}
	if err := utils.EnsureDir(base); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	b, err := yaml.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	path := filepath.Join(base, "config.yaml")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}
