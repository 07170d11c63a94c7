package config

import (
	"log"

	"gopkg.in/yaml.v3"

	"brokerdash/pkg/config"
)

type Config struct {
	Server   config.ServerConfig   `yaml:"server"`
	DB       config.DBConfig       `yaml:"db"`
	MQ       config.MQConfig       `yaml:"mq"`
	Redis    config.RedisConfig    `yaml:"redis"`
	JWT      config.JWTConfig      `yaml:"jwt"`
	Email    config.EmailConfig    `yaml:"email"`
	Calendar config.CalendarConfig `yaml:"calendar"`
}

func Load() *Config {
	env := config.GetConfigEnv()
	configDir := config.GetEnv("CONFIG_DIR", "config")

	cfgMap, err := config.LoadConfig(env, configDir)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var cfg Config
	cfgData, err := yaml.Marshal(cfgMap)
	if err != nil {
		log.Fatalf("failed to marshal config: %v", err)
	}
	if err := yaml.Unmarshal(cfgData, &cfg); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}

	// Env vars win over files.
	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideJWTFromEnv(&cfg.JWT)
	config.OverrideEmailFromEnv(&cfg.Email)
	config.OverrideCalendarFromEnv(&cfg.Calendar)

	return &cfg
}
