package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Admin     AdminConfig     `mapstructure:"admin"`
	API       APIConfig       `mapstructure:"api"`
	Queue     QueueConfig     `mapstructure:"queue"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Retention RetentionConfig `mapstructure:"retention"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// AdminConfig holds the dashboard login credentials. PasswordHash is a bcrypt
// hash; plaintext passwords never appear in config.
type AdminConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
}

// APIConfig authenticates server-to-server calls from the host SaaS widget.
type APIConfig struct {
	Key string `mapstructure:"key"`
}

type QueueConfig struct {
	FeedbackQueue string `mapstructure:"feedback_queue"`
	MaxWorkers    int    `mapstructure:"max_workers"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// RetentionConfig tunes the decision engine. Weights are fallback values used
// when the ai_weights table has no row for a factor. Revenue percentages are
// the defaults applied when a flow step does not carry its own revenue_percent.
type RetentionConfig struct {
	DefaultLanguage      string             `mapstructure:"default_language"`
	Weights              map[string]float64 `mapstructure:"weights"`
	DiscountSavePercent  float64            `mapstructure:"discount_save_percent"`
	DowngradeSavePercent float64            `mapstructure:"downgrade_save_percent"`
	RecommendMinSample   int                `mapstructure:"recommend_min_sample"`
	MessageOptimization  bool               `mapstructure:"message_optimization"`
}

// DefaultWeights are the factor coefficients used when neither the database
// nor the config file provides a value.
var DefaultWeights = map[string]float64{
	"behavior_weight":        0.3,
	"value_weight":           0.25,
	"history_weight":         0.25,
	"cancel_attempts_weight": 0.2,
}

const (
	DefaultDiscountSavePercent  = 0.20
	DefaultDowngradeSavePercent = 0.30
)

func Load(configPath string) (*Config, error) {
	// Prefer config.local.yaml when present (real secrets, not committed).
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Retention.DefaultLanguage == "" {
		cfg.Retention.DefaultLanguage = "en"
	}
	if cfg.Retention.DiscountSavePercent <= 0 {
		cfg.Retention.DiscountSavePercent = DefaultDiscountSavePercent
	}
	if cfg.Retention.DowngradeSavePercent <= 0 {
		cfg.Retention.DowngradeSavePercent = DefaultDowngradeSavePercent
	}
	if cfg.Retention.RecommendMinSample <= 0 {
		cfg.Retention.RecommendMinSample = 5
	}
	if cfg.Queue.FeedbackQueue == "" {
		cfg.Queue.FeedbackQueue = "retention_feedback"
	}
	if cfg.Queue.MaxWorkers <= 0 {
		cfg.Queue.MaxWorkers = 2
	}
}
