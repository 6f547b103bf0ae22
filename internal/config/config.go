package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"ENV"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	DBMaxConns     int    `mapstructure:"DB_MAX_CONNS"`
	MigrationsPath string `mapstructure:"MIGRATIONS_PATH"`
	Seed           bool   `mapstructure:"SEED"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	AlertStream   string `mapstructure:"ALERT_STREAM"`

	MQTTBroker      string `mapstructure:"MQTT_BROKER"`
	MQTTUsername    string `mapstructure:"MQTT_USERNAME"`
	MQTTPassword    string `mapstructure:"MQTT_PASSWORD"`
	MQTTTopicPrefix string `mapstructure:"MQTT_TOPIC_PREFIX"`

	TelegramToken   string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	TelegramBaseURL string `mapstructure:"TELEGRAM_BASE_URL"`
	NurseChatID     int64  `mapstructure:"NURSE_CHAT_ID"`

	ReportFontPath string `mapstructure:"REPORT_FONT_PATH"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

var keys = []string{
	"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "MIGRATIONS_PATH", "SEED",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "ALERT_STREAM",
	"MQTT_BROKER", "MQTT_USERNAME", "MQTT_PASSWORD", "MQTT_TOPIC_PREFIX",
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_BASE_URL", "NURSE_CHAT_ID",
	"REPORT_FONT_PATH", "LOG_LEVEL", "LOG_FORMAT",
}

// Load reads configuration from the environment and an optional .env file.
// An empty DATABASE_URL runs the server on the in-memory store.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("SEED", true)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ALERT_STREAM", "patient:alerts")
	v.SetDefault("MQTT_TOPIC_PREFIX", "ward")
	v.SetDefault("TELEGRAM_BASE_URL", "https://api.telegram.org")
	v.SetDefault("REPORT_FONT_PATH", "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	// .env is optional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func (c *Config) UseDatabase() bool {
	return c.DatabaseURL != ""
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
