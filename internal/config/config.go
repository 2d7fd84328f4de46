// Package config loads eiken settings from an optional YAML file, a .env
// file, EIKEN_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/eiken-drill/eiken/internal/explain"
	"github.com/eiken-drill/eiken/internal/llm"
	"github.com/eiken-drill/eiken/internal/store"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "EIKEN"

// Config is the resolved application configuration.
type Config struct {
	// DBPath is the SQLite file. Empty means the per-user default.
	DBPath string `mapstructure:"db"`

	// DataPath is a question dataset JSON file. Empty selects the
	// embedded sample dataset.
	DataPath string `mapstructure:"data"`

	Log   LogConfig      `mapstructure:"log"`
	LLM   llm.Config     `mapstructure:"llm"`
	Tutor explain.Config `mapstructure:"tutor"`

	// ConfigFile is the file the settings were read from, if any.
	ConfigFile string `mapstructure:"-"`
}

// LogConfig controls the diagnostic log. The TUI owns the terminal, so
// logs always go to a file.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	File   string `mapstructure:"file"`
	Format string `mapstructure:"format"` // "console" or "json"
}

// Options tells Load where to look.
type Options struct {
	// File is an explicit config file. Missing explicit files are errors.
	File string

	// EnvFile is loaded into the process environment before reading
	// variables. Defaults to ".env"; a missing file is ignored.
	EnvFile string

	// Flags, when set, override file and environment values for the
	// "db", "data" and "log-level" flags that were passed.
	Flags *pflag.FlagSet

	// Getenv is used for vendor API key discovery. Defaults to os.Getenv.
	Getenv func(string) string
}

// Load resolves the configuration.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("config", EnvPrefix+"_CONFIG")

	if opts.Flags != nil {
		for key, flag := range map[string]string{"db": "db", "data": "data", "log.level": "log-level"} {
			if f := opts.Flags.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", flag, err)
				}
			}
		}
	}

	file := opts.File
	if file == "" {
		file = v.GetString("config")
	}
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := ConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg.LLM.Discover(getenv)
	if err := cfg.LLM.Validate(); err != nil {
		return nil, err
	}

	if cfg.Log.File == "" {
		dir, err := store.DataDir()
		if err != nil {
			return nil, err
		}
		cfg.Log.File = filepath.Join(dir, "eiken.log")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	llmDefaults := llm.DefaultConfig()
	tutorDefaults := explain.DefaultConfig()

	// Every key needs a default so AutomaticEnv can see it during Unmarshal.
	defaults := map[string]any{
		"db":         "",
		"data":       "",
		"log.level":  "info",
		"log.file":   "",
		"log.format": "console",

		"llm.provider":            "",
		"llm.timeout":             llmDefaults.Timeout,
		"llm.anthropic.api_key":   "",
		"llm.anthropic.model":     llmDefaults.Anthropic.Model,
		"llm.openai.api_key":      "",
		"llm.openai.model":        llmDefaults.OpenAI.Model,
		"llm.openai.base_url":     "",
		"llm.gemini.api_key":      "",
		"llm.gemini.model":        llmDefaults.Gemini.Model,
		"llm.openrouter.api_key":  "",
		"llm.openrouter.model":    llmDefaults.OpenRouter.Model,
		"llm.openrouter.base_url": "",
		"llm.retry.max_attempts":  llmDefaults.Retry.MaxAttempts,
		"llm.retry.initial_wait":  llmDefaults.Retry.InitialWait,
		"llm.retry.max_wait":      llmDefaults.Retry.MaxWait,
		"llm.retry.multiplier":    llmDefaults.Retry.Multiplier,

		"tutor.max_tokens":  tutorDefaults.MaxTokens,
		"tutor.temperature": tutorDefaults.Temperature,
		"tutor.timeout":     tutorDefaults.Timeout,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// ConfigDir is $XDG_CONFIG_HOME/eiken, falling back to ~/.config/eiken.
func ConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "eiken"), nil
}

// ResolveDBPath returns the configured database path, or the per-user
// default, and makes sure its directory exists.
func (c *Config) ResolveDBPath() (string, error) {
	if c.DBPath != "" {
		return c.DBPath, store.EnsureDir(c.DBPath)
	}
	return store.DefaultDBPath()
}

// TutorTimeout is the effective per-explanation deadline.
func (c *Config) TutorTimeout() time.Duration {
	if c.Tutor.Timeout > 0 {
		return c.Tutor.Timeout
	}
	return c.LLM.Timeout
}
