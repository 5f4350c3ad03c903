package main

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"crownium_bot/internal/bot"
	"crownium_bot/internal/repository"
	"crownium_bot/internal/scheduler"
	"crownium_bot/pkg/auth"

	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
)

type Config struct {
	Database repository.Config `yaml:"database"`
	Server   ServerConfig      `yaml:"server"`

	Telegram bot.Config       `yaml:"telegram"`
	Tasks    TasksConfig      `yaml:"tasks"`
	Callback CallbackConfig   `yaml:"callback"`
	Schedule scheduler.Config `yaml:"schedule"`
	Metrics  MetricsConfig    `yaml:"metrics"`
	MiniApp  MiniAppConfig    `yaml:"miniapp"`

	LogLevel string `yaml:"logLevel"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type TasksConfig struct {
	OfferURL string `yaml:"offerURL"`
}

type CallbackConfig struct {
	Auth   string `yaml:"auth"`
	Secret string `yaml:"secret"`
}

// MiniAppConfig controls the init-data check on /api/v1. SkipAuth is for
// local development against a loopback listener only.
type MiniAppConfig struct {
	SkipAuth bool `yaml:"skipAuth"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "crownium")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "3000")

	v.SetDefault("telegram.botToken", "")
	v.SetDefault("telegram.debug", false)
	v.SetDefault("telegram.pollTimeout", 60)

	v.SetDefault("tasks.offerURL", "https://your-cpa-network.com/offer")

	v.SetDefault("callback.auth", string(auth.CallbackModeHMAC))
	v.SetDefault("callback.secret", "")

	v.SetDefault("schedule.dailyReset", scheduler.DefaultDailyReset)
	v.SetDefault("schedule.timezone", "UTC")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("miniapp.skipAuth", false)

	v.SetDefault("logLevel", "info")
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName(configName)
	v.AddConfigPath(configPath)
	v.SetConfigType(configFormat)

	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return errors.New("telegram.botToken is required")
	}

	mode, err := auth.ParseCallbackMode(c.Callback.Auth)
	if err != nil {
		return err
	}
	if mode != auth.CallbackModeNone && c.Callback.Secret == "" {
		return fmt.Errorf("callback.secret is required for callback auth mode %q", mode)
	}

	offer, err := url.Parse(c.Tasks.OfferURL)
	if err != nil || offer.Scheme == "" || offer.Host == "" {
		return fmt.Errorf("tasks.offerURL %q is not an absolute URL", c.Tasks.OfferURL)
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path %q must start with /", c.Metrics.Path)
	}

	if c.MiniApp.SkipAuth && !isLoopback(c.Server.Host) {
		return fmt.Errorf("miniapp.skipAuth requires a loopback server.host, got %q", c.Server.Host)
	}

	return nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
