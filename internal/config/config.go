// ABOUTME: Configuration for the samplepad command
// ABOUTME: Merges defaults, an optional samplepad.yaml, .env and SAMPLEPAD_* environment variables
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Resonate-Protocol/sampleplayer/pkg/sampler"
)

// FileName is the config file looked up in the working directory
const FileName = "samplepad"

// EnvPrefix prefixes every environment override
const EnvPrefix = "SAMPLEPAD"

// RemoteConfig controls the websocket trigger endpoint
type RemoteConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr      string `mapstructure:"addr" yaml:"addr"`
	Discovery bool   `mapstructure:"discovery" yaml:"discovery"`
	Name      string `mapstructure:"name" yaml:"name"`
}

// LogConfig controls the rotating log file
type LogConfig struct {
	File       string `mapstructure:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// Config holds every samplepad setting
type Config struct {
	SampleDir  string       `mapstructure:"sample_dir" yaml:"sample_dir"`
	Samples    []string     `mapstructure:"samples" yaml:"samples,omitempty"`
	Backend    string       `mapstructure:"backend" yaml:"backend"`
	SampleRate int          `mapstructure:"sample_rate" yaml:"sample_rate"`
	Channels   int          `mapstructure:"channels" yaml:"channels"`
	MaxVoices  int          `mapstructure:"max_voices" yaml:"max_voices"`
	Exhaustion string       `mapstructure:"exhaustion" yaml:"exhaustion"`
	Headless   bool         `mapstructure:"headless" yaml:"headless"`
	Remote     RemoteConfig `mapstructure:"remote" yaml:"remote"`
	Log        LogConfig    `mapstructure:"log" yaml:"log"`
}

// Backends lists the supported audio drivers
var Backends = []string{"oto", "malgo", "portaudio"}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		SampleDir:  "sounds",
		Backend:    "oto",
		SampleRate: 44100,
		Channels:   2,
		MaxVoices:  sampler.DefaultMaxVoices,
		Exhaustion: sampler.StealOldest.String(),
		Remote: RemoteConfig{
			Addr:      ":8930",
			Discovery: true,
			Name:      "samplepad",
		},
		Log: LogConfig{
			File:       "samplepad.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads the configuration. An explicit path must exist; otherwise
// samplepad.yaml in the working directory is optional.
func Load(path string) (Config, error) {
	if err := LoadEnv(".env"); err != nil {
		return Config{}, err
	}

	v := viper.New()
	setDefaults(v, Default())

	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadEnv loads KEY=value pairs from path into the environment.
// A missing file is not an error; variables already set win.
func LoadEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("sample_dir", d.SampleDir)
	v.SetDefault("samples", d.Samples)
	v.SetDefault("backend", d.Backend)
	v.SetDefault("sample_rate", d.SampleRate)
	v.SetDefault("channels", d.Channels)
	v.SetDefault("max_voices", d.MaxVoices)
	v.SetDefault("exhaustion", d.Exhaustion)
	v.SetDefault("headless", d.Headless)
	v.SetDefault("remote.enabled", d.Remote.Enabled)
	v.SetDefault("remote.addr", d.Remote.Addr)
	v.SetDefault("remote.discovery", d.Remote.Discovery)
	v.SetDefault("remote.name", d.Remote.Name)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
	v.SetDefault("log.compress", d.Log.Compress)
}

// Validate checks value ranges and names
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid sample_rate %d", c.SampleRate)
	}
	if c.Channels < 1 || c.Channels > 8 {
		return fmt.Errorf("invalid channels %d (supported: 1-8)", c.Channels)
	}
	if c.MaxVoices <= 0 {
		return fmt.Errorf("invalid max_voices %d", c.MaxVoices)
	}
	if _, err := c.ExhaustionPolicy(); err != nil {
		return err
	}

	for _, b := range Backends {
		if c.Backend == b {
			return nil
		}
	}
	return fmt.Errorf("unknown backend %q (supported: %s)", c.Backend, strings.Join(Backends, ", "))
}

// ExhaustionPolicy returns the configured voice exhaustion policy
func (c Config) ExhaustionPolicy() (sampler.ExhaustionPolicy, error) {
	return sampler.ParseExhaustionPolicy(c.Exhaustion)
}

// Write saves cfg as YAML
func Write(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
