package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	ESFuse     ESFuseConfig     `yaml:"esfuse" mapstructure:"esfuse"`
	Submission SubmissionConfig `yaml:"submission" mapstructure:"submission"`
	Workflow   WorkflowConfig   `yaml:"workflow" mapstructure:"workflow"`
	Fields     FieldsConfig     `yaml:"fields" mapstructure:"fields"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// ESFuseConfig holds ESFuse API credentials and client settings.
type ESFuseConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	Token       string  `yaml:"token" mapstructure:"token"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst   int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// SubmissionConfig configures loan submission creation.
type SubmissionConfig struct {
	Type     string `yaml:"type" mapstructure:"type"`
	AutoLock bool   `yaml:"auto_lock" mapstructure:"auto_lock"`
}

// WorkflowConfig configures pipeline execution.
type WorkflowConfig struct {
	DocConcurrency int    `yaml:"doc_concurrency" mapstructure:"doc_concurrency"`
	ArtifactDir    string `yaml:"artifact_dir" mapstructure:"artifact_dir"`
}

// FieldsConfig configures the field-code table. An empty path uses the
// built-in table.
type FieldsConfig struct {
	TablePath string `yaml:"table_path" mapstructure:"table_path"`
}

// StoreConfig configures the run-history database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RACKSTACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Keys without a meaningful default still need registering:
	// AutomaticEnv only surfaces keys viper already knows about.
	v.SetDefault("esfuse.base_url", "")
	v.SetDefault("esfuse.token", "")
	v.SetDefault("esfuse.timeout_secs", 30)
	v.SetDefault("esfuse.rate_limit", 5.0)
	v.SetDefault("esfuse.rate_burst", 10)
	v.SetDefault("submission.type", "Initial Submission")
	v.SetDefault("submission.auto_lock", true)
	v.SetDefault("workflow.doc_concurrency", 4)
	v.SetDefault("workflow.artifact_dir", "")
	v.SetDefault("fields.table_path", "")
	v.SetDefault("store.path", "rackstack.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
