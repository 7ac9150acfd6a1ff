package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	AMQP     AMQPConfig     `mapstructure:"amqp"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	GenAI    GenAIConfig    `mapstructure:"genai"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Workers  WorkersConfig  `mapstructure:"workers"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	URL          string `mapstructure:"url"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type AMQPConfig struct {
	URL         string `mapstructure:"url"`
	IntakeQueue string `mapstructure:"intake_queue"`
}

type GatewayConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

type GenAIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type TelegramConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
	ChatID  int64  `mapstructure:"chat_id"`
}

type WorkersConfig struct {
	CampaignInterval     time.Duration `mapstructure:"campaign_interval"`
	ReactivationInterval time.Duration `mapstructure:"reactivation_interval"`
	FollowupInterval     time.Duration `mapstructure:"followup_interval"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads an optional config file and environment variables prefixed with
// WALEADS_ (nested keys joined with underscores, e.g. WALEADS_DATABASE_URL).
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", ":8090")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("amqp.intake_queue", "campaign_enqueue")
	v.SetDefault("gateway.timeout", 15*time.Second)
	v.SetDefault("gateway.requests_per_second", 2.0)
	v.SetDefault("genai.timeout", 30*time.Second)
	v.SetDefault("genai.model", "gpt-4o-mini")
	v.SetDefault("workers.campaign_interval", 5*time.Minute)
	v.SetDefault("workers.reactivation_interval", time.Minute)
	v.SetDefault("workers.followup_interval", time.Minute)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetEnvPrefix("WALEADS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
