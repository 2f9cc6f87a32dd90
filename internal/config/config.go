package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"genforge/internal/genctx"
	"genforge/internal/runstore"
)

// Config is the full runtime configuration. Values come from an optional
// config file, GENFORGE_* environment variables and a .env file, in
// ascending precedence of env over file.
type Config struct {
	Env        string `mapstructure:"env"`
	ListenAddr string `mapstructure:"listen_addr"`

	Models          ModelConfig             `mapstructure:"models"`
	Rules           []genctx.DependencyRule `mapstructure:"dependency_rules"`
	FilteredPrompts bool                    `mapstructure:"filtered_prompts"`

	// Templates maps a file extension (".cfg") to a custom prompt
	// template.
	Templates map[string]string `mapstructure:"templates"`

	Store StoreConfig `mapstructure:"store"`
}

// ModelConfig names the provider and the per-role models.
type ModelConfig struct {
	Provider  string `mapstructure:"provider"`
	Coder     string `mapstructure:"coder"`
	Architect string `mapstructure:"architect"`
}

// StoreConfig selects the run persistence backend.
type StoreConfig struct {
	// Backend is "memory", "postgres" or "s3".
	Backend     string            `mapstructure:"backend"`
	PostgresDSN string            `mapstructure:"postgres_dsn"`
	S3          runstore.S3Config `mapstructure:"s3"`
}

// Load reads configuration from the default locations: a genforge.yaml
// next to the working directory plus the environment.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom reads configuration, preferring the explicit file path when
// given. A missing config file is not an error; the defaults plus the
// environment apply.
func LoadFrom(path string) (*Config, error) {
	_ = godotenv.Load()

	// The default "." key delimiter would split extension-keyed template
	// maps (".cfg") into nested keys.
	v := viper.NewWithOptions(viper.KeyDelimiter("::"))
	setDefaults(v)

	v.SetEnvPrefix("genforge")
	v.SetEnvKeyReplacer(strings.NewReplacer("::", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("genforge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if len(cfg.Rules) == 0 {
		cfg.Rules = genctx.DefaultDependencyRules()
	}
	if !strings.HasPrefix(cfg.ListenAddr, ":") && !strings.Contains(cfg.ListenAddr, ":") {
		cfg.ListenAddr = ":" + cfg.ListenAddr
	}
	switch cfg.Store.Backend {
	case "memory", "postgres", "s3":
	default:
		return nil, fmt.Errorf("config: unknown store backend %q", cfg.Store.Backend)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("listen_addr", ":8082")
	v.SetDefault("models::provider", "gemini")
	v.SetDefault("models::coder", "gemini-2.0-flash")
	v.SetDefault("models::architect", "")
	v.SetDefault("filtered_prompts", false)
	v.SetDefault("store::backend", "memory")
	v.SetDefault("store::s3::region", "us-east-1")
	v.SetDefault("store::s3::bucket", "genforge-artifacts")
}
