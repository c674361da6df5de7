package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultLIRCStatusCommand = "systemctl status lircd"
	defaultLIRCSendCommand   = "sudo irsend SEND_ONCE"
	defaultLogFormat         = "json"
	redacted                 = "*redacted*"
)

var defaultHomeAssistantDomains = []string{"light", "cover", "switch"}

// Config stores runtime settings loaded from the environment and an optional file.
type Config struct {
	RokuURI              string        `mapstructure:"roku_uri"`
	HomeAssistantURI     string        `mapstructure:"homeassistant_uri"`
	HomeAssistantToken   string        `mapstructure:"homeassistant_token"`
	Port                 int           `mapstructure:"port"`
	Timeout              time.Duration `mapstructure:"timeout"`
	MissCooldown         time.Duration `mapstructure:"miss_cooldown"`
	MissThreshold        int           `mapstructure:"miss_threshold"`
	MaxArgLength         int           `mapstructure:"max_arg_length"`
	MissSweepInterval    time.Duration `mapstructure:"miss_sweep_interval"`
	RefreshInterval      time.Duration `mapstructure:"refresh_interval"`
	HomeAssistantDomains []string      `mapstructure:"homeassistant_domains"`
	LIRCStatusCommand    string        `mapstructure:"lirc_status_command"`
	LIRCSendCommand      string        `mapstructure:"lirc_send_command"`
	LogFormat            string        `mapstructure:"log_format"`
	RawLogLevel          string        `mapstructure:"log_level"`

	LogLevel slog.Level `mapstructure:"-"`
}

var keys = []string{
	"roku_uri",
	"homeassistant_uri",
	"homeassistant_token",
	"port",
	"timeout",
	"miss_cooldown",
	"miss_threshold",
	"max_arg_length",
	"miss_sweep_interval",
	"refresh_interval",
	"homeassistant_domains",
	"lirc_status_command",
	"lirc_send_command",
	"log_format",
	"log_level",
}

// Load reads .env, an optional config file (--config or CONFIG_FILE) and the
// environment, in increasing priority, and validates the result.
func Load(args []string) (Config, error) {
	flags := pflag.NewFlagSet("smart", pflag.ContinueOnError)
	configFile := flags.String("config", "", "path to a YAML or JSON config file")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	for _, key := range keys {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return Config{}, err
		}
	}

	path := *configFile
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.RawLogLevel)
	cfg.HomeAssistantDomains = normalizeDomains(cfg.HomeAssistantDomains)
	if cfg.MissSweepInterval <= 0 {
		cfg.MissSweepInterval = cfg.MissCooldown
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("refresh_interval", time.Duration(0))
	v.SetDefault("homeassistant_domains", defaultHomeAssistantDomains)
	v.SetDefault("lirc_status_command", defaultLIRCStatusCommand)
	v.SetDefault("lirc_send_command", defaultLIRCSendCommand)
	v.SetDefault("log_format", defaultLogFormat)
	v.SetDefault("log_level", "info")
}

// Validate reports every required key that is missing or out of range.
func (c Config) Validate() error {
	var invalid []string
	if !validURL(c.RokuURI) {
		invalid = append(invalid, "roku_uri")
	}
	if !validURL(c.HomeAssistantURI) {
		invalid = append(invalid, "homeassistant_uri")
	}
	if strings.TrimSpace(c.HomeAssistantToken) == "" {
		invalid = append(invalid, "homeassistant_token")
	}
	if c.Port <= 0 || c.Port > 65535 {
		invalid = append(invalid, "port")
	}
	if c.Timeout <= 0 {
		invalid = append(invalid, "timeout")
	}
	if c.MissCooldown <= 0 {
		invalid = append(invalid, "miss_cooldown")
	}
	if c.MissThreshold <= 0 {
		invalid = append(invalid, "miss_threshold")
	}
	if c.MaxArgLength <= 0 {
		invalid = append(invalid, "max_arg_length")
	}
	if c.RefreshInterval < 0 {
		invalid = append(invalid, "refresh_interval")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		invalid = append(invalid, "log_format")
	}
	if len(invalid) > 0 {
		return fmt.Errorf("missing or invalid config: %s", strings.Join(invalid, ", "))
	}
	return nil
}

// HTTPAddr returns the listen address for the HTTP server.
func (c Config) HTTPAddr() string {
	return ":" + strconv.Itoa(c.Port)
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.HomeAssistantToken != "" {
		c.HomeAssistantToken = redacted
	}
	return c
}

func validURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func normalizeDomains(domains []string) []string {
	out := make([]string, 0, len(domains))
	for _, domain := range domains {
		for _, part := range strings.Split(domain, ",") {
			if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
				out = append(out, part)
			}
		}
	}
	if len(out) == 0 {
		return append([]string(nil), defaultHomeAssistantDomains...)
	}
	return out
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
