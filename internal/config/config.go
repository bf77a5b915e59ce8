package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixa todas as variáveis; "__" separa seções (DIAGNOSTIC_SERVER__PORT).
const EnvPrefix = "DIAGNOSTIC_"

type Config struct {
	Env          string             `koanf:"env" validate:"required,oneof=development staging production"`
	LogLevel     string             `koanf:"log_level" validate:"required"`
	Server       ServerConfig       `koanf:"server"`
	Database     DatabaseConfig     `koanf:"database"`
	Integrations IntegrationsConfig `koanf:"integrations"`
	Queue        QueueConfig        `koanf:"queue"`
	Mail         MailConfig         `koanf:"mail"`
	Watch        WatchConfig        `koanf:"watch"`
}

type ServerConfig struct {
	Port               string        `koanf:"port" validate:"required"`
	ReadTimeout        time.Duration `koanf:"read_timeout" validate:"gt=0"`
	IdleTimeout        time.Duration `koanf:"idle_timeout" validate:"gt=0"`
	CORSAllowedOrigins string        `koanf:"cors_allowed_origins"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"gte=1"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	Migrate         bool          `koanf:"migrate"`
}

type IntegrationsConfig struct {
	MauticFormURL      string        `koanf:"mautic_form_url" validate:"required,url"`
	AnalysisWebhookURL string        `koanf:"analysis_webhook_url" validate:"required,url"`
	Timeout            time.Duration `koanf:"timeout" validate:"gt=0"`
}

// QueueConfig vazio desliga o RabbitMQ e o envio da análise passa a ser direto.
type QueueConfig struct {
	URL string `koanf:"url" validate:"omitempty,url"`
}

type MailConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port" validate:"omitempty,gte=1,lte=65535"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	From     string `koanf:"from" validate:"omitempty,email"`
}

type WatchConfig struct {
	Timeout            time.Duration `koanf:"timeout" validate:"gt=0"`
	Tick               time.Duration `koanf:"tick" validate:"gt=0"`
	StaleAfter         time.Duration `koanf:"stale_after" validate:"gt=0"`
	RateLimitPerMinute int           `koanf:"rate_limit_per_minute" validate:"gte=1"`
}

func Default() *Config {
	return &Config{
		Env:      "development",
		LogLevel: "info",
		Server: ServerConfig{
			Port:               "8080",
			ReadTimeout:        15 * time.Second,
			IdleTimeout:        60 * time.Second,
			CORSAllowedOrigins: "*",
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			Migrate:         true,
		},
		Integrations: IntegrationsConfig{
			Timeout: 15 * time.Second,
		},
		Mail: MailConfig{
			Port: 587,
		},
		Watch: WatchConfig{
			Timeout:            120 * time.Second,
			Tick:               time.Second,
			StaleAfter:         10 * time.Minute,
			RateLimitPerMinute: 10,
		},
	}
}

// Load lê o .env (se existir), aplica as variáveis DIAGNOSTIC_* sobre os padrões e valida.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(EnvPrefix)
}

func load(prefix string) (*Config, error) {
	k := koanf.New(".")
	err := k.Load(env.Provider(prefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, prefix)), "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Origins separa a lista de origens CORS por vírgula.
func (s ServerConfig) Origins() []string {
	var origins []string
	for _, o := range strings.Split(s.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) MailEnabled() bool {
	return c.Mail.Host != ""
}

func (c *Config) QueueEnabled() bool {
	return c.Queue.URL != ""
}
