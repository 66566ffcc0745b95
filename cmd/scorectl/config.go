package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bibbank/scoring-service/pkg/observability"
)

// cliConfig holds scorectl settings resolved from flags, SCORECTL_*
// variables and scorectl.yaml, in that order of precedence.
type cliConfig struct {
	Model       modelConfig       `mapstructure:"model"`
	Explanation explanationConfig `mapstructure:"explanation"`
	Log         logConfig         `mapstructure:"log"`
}

type modelConfig struct {
	Path       string `mapstructure:"path"`
	SchemaPath string `mapstructure:"schema"`
	Workers    int    `mapstructure:"workers"`
}

type explanationConfig struct {
	Method      string `mapstructure:"method"`
	TopK        int    `mapstructure:"top_k"`
	MaxFeatures int    `mapstructure:"max_features"`
}

type logConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func (c *cliConfig) logging(out io.Writer) observability.LogConfig {
	return observability.LogConfig{
		Level:  c.Log.Level,
		Format: c.Log.Format,
		Output: out,
	}
}

// flagKeys maps persistent flags to configuration keys.
var flagKeys = map[string]string{
	"model":        "model.path",
	"schema":       "model.schema",
	"workers":      "model.workers",
	"method":       "explanation.method",
	"top-k":        "explanation.top_k",
	"max-features": "explanation.max_features",
	"log-level":    "log.level",
}

func loadConfig(flags *pflag.FlagSet) (*cliConfig, error) {
	v := viper.New()

	// Config file
	if file, _ := flags.GetString("config"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("scorectl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/scorectl")
	}

	// Environment
	v.SetEnvPrefix("SCORECTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("model.path", "models/forest_v1.json")
	v.SetDefault("model.schema", "")
	v.SetDefault("model.workers", 0)
	v.SetDefault("explanation.method", "tree_shapley")
	v.SetDefault("explanation.top_k", 5)
	v.SetDefault("explanation.max_features", 0)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")

	for flag, key := range flagKeys {
		if f := flags.Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("config: bind --%s: %w", flag, err)
			}
		}
	}

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var cfg cliConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.logging(nil).Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
