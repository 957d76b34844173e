package config

import (
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type RateConfig struct {
	Env          string `yaml:"env"`
	HTTPServer   `yaml:"http_server"`
	RateDB       `yaml:"rate_db"`
	LogConfig    `yaml:"log_config"`
	KafkaService `yaml:"kafka-service"`
	RateBounds   `yaml:"rate_bounds"`
	Staleness    `yaml:"staleness"`
	Scheduler    `yaml:"scheduler"`
	Notifier     `yaml:"notifier"`
}

type HTTPServer struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type RateDB struct {
	Dsn            string `yaml:"dsn"`
	MigrationsPath string `yaml:"migrations_path"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogOutput string `yaml:"log_output"`
}

type KafkaService struct {
	Host        string `yaml:"host"`
	Port        string `yaml:"port"`
	RateTopic   string `yaml:"rate_topic" env-default:"rate-events"`
	SwitchTopic string `yaml:"switch_topic" env-default:"provider-switch-events"`
}

type RateBounds struct {
	MinRate float64 `yaml:"min_rate" env-default:"10000"`
	MaxRate float64 `yaml:"max_rate" env-default:"25000"`
}

type Staleness struct {
	MaxAgeDays      int `yaml:"max_age_days" env-default:"7"`
	WarnAgeDays     int `yaml:"warn_age_days" env-default:"3"`
	MaxCacheAgeDays int `yaml:"max_cache_age_days" env-default:"30"`
}

type Scheduler struct {
	Workers int `yaml:"workers" env-default:"4"`
	// TickIntervalMin is how often the worker checks for tenants whose
	// preferred update hour has arrived.
	TickIntervalMin     int    `yaml:"tick_interval_min" env-default:"60"`
	ProviderTimeoutSec  int    `yaml:"provider_timeout_sec" env-default:"10"`
	TenantDeadlineSec   int    `yaml:"tenant_deadline_sec" env-default:"30"`
	RunOnStart          bool   `yaml:"run_on_start" env-default:"true"`
	DefaultAutoUpdateAt string `yaml:"default_auto_update_at" env-default:"06:00"`
}

type Notifier struct {
	CallbackURL string `yaml:"callback_url"`
	TimeoutSec  int    `yaml:"timeout_sec" env-default:"5"`
}

func MustLoad() *RateConfig {

	// Processing env config variable and file
	configPath := os.Getenv("RATE_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("RATE_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	// YAML to struct object
	var cfg RateConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
