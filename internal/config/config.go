// Package config handles loading and validating the application configuration
// from an optional YAML file, a .env file, and the process environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/deal-notifier/internal/notify"
	"github.com/donaldgifford/deal-notifier/pkg/logger"
	domain "github.com/donaldgifford/deal-notifier/pkg/types"
)

// Config is the top-level application configuration. It is built once at
// startup and passed explicitly; nothing mutates it afterwards.
type Config struct {
	Pipedrive PipedriveConfig `yaml:"pipedrive"`
	Notify    NotifyConfig    `yaml:"notify"`
	State     StateConfig     `yaml:"state"`
	Message   MessageConfig   `yaml:"message"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// PipedriveConfig defines the deal source settings.
type PipedriveConfig struct {
	APIToken  string          `yaml:"api_token"`
	FilterID  string          `yaml:"filter_id"`
	BaseURL   string          `yaml:"base_url"`
	PageSize  int             `yaml:"page_size"`
	MaxPages  int             `yaml:"max_pages"`
	Timeout   time.Duration   `yaml:"timeout"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines Pipedrive API rate limiting settings.
type RateLimitConfig struct {
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
	// DailyLimit is counted per process, so it only bounds serve.
	DailyLimit int64 `yaml:"daily_limit"`
}

// NotifyConfig defines the notification channel.
type NotifyConfig struct {
	Backend   string         `yaml:"backend"` // whatsapp, discord, shoutrrr, log
	Recipient string         `yaml:"recipient"`
	Timeout   time.Duration  `yaml:"timeout"`
	WhatsApp  WhatsAppConfig `yaml:"whatsapp"`
	Discord   DiscordConfig  `yaml:"discord"`
	Shoutrrr  ShoutrrrConfig `yaml:"shoutrrr"`
}

// WhatsAppConfig defines WhatsApp Cloud API settings.
type WhatsAppConfig struct {
	APIURL        string `yaml:"api_url"`
	Token         string `yaml:"token"`
	PhoneNumberID string `yaml:"phone_number_id"`
}

// DiscordConfig defines Discord webhook settings.
type DiscordConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

// ShoutrrrConfig defines Shoutrrr service URLs. "{recipient}" in a URL is
// replaced with the recipient's digits at send time.
type ShoutrrrConfig struct {
	URLs []string `yaml:"urls"`
}

// StateConfig defines where notification state is kept.
type StateConfig struct {
	Backend string `yaml:"backend"` // file, postgres
	Path    string `yaml:"path"`
	DSN     string `yaml:"dsn"`
}

// MessageConfig defines message phrasing.
type MessageConfig struct {
	Label           string `yaml:"label"`
	NotifyWhenEmpty *bool  `yaml:"notify_when_empty"` // default: true
}

// ShouldNotifyWhenEmpty reports whether a "nothing new" notice is sent.
func (m *MessageConfig) ShouldNotifyWhenEmpty() bool {
	return m.NotifyWhenEmpty == nil || *m.NotifyWhenEmpty
}

// ScheduleConfig defines the in-process schedule used by serve.
type ScheduleConfig struct {
	Cron string `yaml:"cron"`
}

// ServerConfig defines the Echo HTTP server settings used by serve.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Addr returns host:port.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Notify backends.
const (
	BackendWhatsApp = "whatsapp"
	BackendDiscord  = "discord"
	BackendShoutrrr = "shoutrrr"
	BackendLog      = "log"
)

// State backends.
const (
	StateBackendFile     = "file"
	StateBackendPostgres = "postgres"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env")
// into the process environment. Variables already set are not overridden
// and missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the optional YAML file at path, overlays the process
// environment, applies defaults, and validates the result. Every failure is a
// configuration error.
func Load(path string) (*Config, error) {
	return LoadWithLookup(path, os.LookupEnv)
}

// LoadWithLookup is Load with an injectable environment.
func LoadWithLookup(path string, lookup LookupFunc) (*Config, error) {
	cfg, err := load(path, lookup)
	if err != nil {
		return nil, domain.NewError(domain.KindConfiguration, "loading config", err)
	}
	return cfg, nil
}

func load(path string, lookup LookupFunc) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		expanded := expandEnvRefs(string(data), lookup)

		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config YAML: %w", err)
		}
	}

	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	recipient, err := notify.NormalizeRecipient(cfg.Notify.Recipient)
	if err != nil {
		return nil, fmt.Errorf("validating config: notify.recipient: %w", err)
	}
	cfg.Notify.Recipient = recipient

	return cfg, nil
}

// envRefPattern matches ${VAR} only. Bare $VAR is left alone so values such
// as "R$15k" survive.
var envRefPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

func expandEnvRefs(s string, lookup LookupFunc) string {
	return envRefPattern.ReplaceAllStringFunc(s, func(ref string) string {
		v, _ := lookup(ref[2 : len(ref)-1])
		return v
	})
}

type envBinding struct {
	key string
	set func(cfg *Config, v string) error
}

func setString(dst func(*Config) *string) func(*Config, string) error {
	return func(cfg *Config, v string) error {
		*dst(cfg) = v
		return nil
	}
}

// envBindings lists every environment variable the notifier reads. The first
// three keep the names used by earlier deployments.
var envBindings = []envBinding{
	{"PIPEDRIVE_API_KEY", setString(func(c *Config) *string { return &c.Pipedrive.APIToken })},
	{"PIPEDRIVE_FILTER_ID", setString(func(c *Config) *string { return &c.Pipedrive.FilterID })},
	{"WHATSAPP_RECIPIENT", setString(func(c *Config) *string { return &c.Notify.Recipient })},
	{"PIPEDRIVE_BASE_URL", setString(func(c *Config) *string { return &c.Pipedrive.BaseURL })},
	{"NOTIFY_BACKEND", setString(func(c *Config) *string { return &c.Notify.Backend })},
	{"WHATSAPP_TOKEN", setString(func(c *Config) *string { return &c.Notify.WhatsApp.Token })},
	{"WHATSAPP_PHONE_NUMBER_ID", setString(func(c *Config) *string { return &c.Notify.WhatsApp.PhoneNumberID })},
	{"WHATSAPP_API_URL", setString(func(c *Config) *string { return &c.Notify.WhatsApp.APIURL })},
	{"DISCORD_WEBHOOK_URL", setString(func(c *Config) *string { return &c.Notify.Discord.WebhookURL })},
	{"SHOUTRRR_URLS", func(c *Config, v string) error {
		c.Notify.Shoutrrr.URLs = splitList(v)
		return nil
	}},
	{"STATE_BACKEND", setString(func(c *Config) *string { return &c.State.Backend })},
	{"STATE_PATH", setString(func(c *Config) *string { return &c.State.Path })},
	{"STATE_DSN", setString(func(c *Config) *string { return &c.State.DSN })},
	{"MESSAGE_LABEL", setString(func(c *Config) *string { return &c.Message.Label })},
	{"NOTIFY_WHEN_EMPTY", func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("NOTIFY_WHEN_EMPTY: %w", err)
		}
		c.Message.NotifyWhenEmpty = &b
		return nil
	}},
	{"SCHEDULE_CRON", setString(func(c *Config) *string { return &c.Schedule.Cron })},
	{"SERVER_PORT", func(c *Config, v string) error {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SERVER_PORT: %w", err)
		}
		c.Server.Port = p
		return nil
	}},
	{"LOG_LEVEL", setString(func(c *Config) *string { return &c.Logging.Level })},
	{"LOG_FORMAT", setString(func(c *Config) *string { return &c.Logging.Format })},
}

func applyEnv(cfg *Config, lookup LookupFunc) error {
	var errs []error
	for _, b := range envBindings {
		v, ok := lookup(b.key)
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if err := b.set(cfg, v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func applyDefaults(cfg *Config) {
	applyPipedriveDefaults(&cfg.Pipedrive)
	applyNotifyDefaults(&cfg.Notify)
	applyStateDefaults(&cfg.State)
	applyMessageDefaults(&cfg.Message)
	applyScheduleDefaults(&cfg.Schedule)
	applyServerDefaults(&cfg.Server)
	applyLoggingDefaults(&cfg.Logging)
}

func applyPipedriveDefaults(p *PipedriveConfig) {
	if p.BaseURL == "" {
		p.BaseURL = "https://api.pipedrive.com/api/v1"
	}
	p.BaseURL = strings.TrimRight(p.BaseURL, "/")
	if p.PageSize == 0 {
		p.PageSize = 100
	}
	if p.MaxPages == 0 {
		p.MaxPages = 20
	}
	if p.Timeout == 0 {
		p.Timeout = 30 * time.Second
	}
	if p.RateLimit.PerSecond == 0 {
		p.RateLimit.PerSecond = 2
	}
	if p.RateLimit.Burst == 0 {
		p.RateLimit.Burst = 5
	}
	if p.RateLimit.DailyLimit == 0 {
		p.RateLimit.DailyLimit = 10000
	}
}

func applyNotifyDefaults(n *NotifyConfig) {
	if n.Backend == "" {
		n.Backend = BackendWhatsApp
	}
	n.Backend = strings.ToLower(n.Backend)
	if n.Timeout == 0 {
		n.Timeout = 30 * time.Second
	}
	if n.WhatsApp.APIURL == "" {
		n.WhatsApp.APIURL = "https://graph.facebook.com/v21.0"
	}
	n.WhatsApp.APIURL = strings.TrimRight(n.WhatsApp.APIURL, "/")
}

func applyStateDefaults(s *StateConfig) {
	if s.Backend == "" {
		s.Backend = StateBackendFile
	}
	s.Backend = strings.ToLower(s.Backend)
	if s.Path == "" {
		s.Path = "sent_ids.json"
	}
}

func applyMessageDefaults(m *MessageConfig) {
	if m.Label == "" {
		m.Label = "deal IDs"
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.Cron == "" {
		s.Cron = "@every 1h"
	}
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Pipedrive.APIToken == "" {
		errs = append(errs, fmt.Errorf("pipedrive.api_token is required (PIPEDRIVE_API_KEY)"))
	}
	if cfg.Pipedrive.FilterID == "" {
		errs = append(errs, fmt.Errorf("pipedrive.filter_id is required (PIPEDRIVE_FILTER_ID)"))
	}
	if cfg.Notify.Recipient == "" {
		errs = append(errs, fmt.Errorf("notify.recipient is required (WHATSAPP_RECIPIENT)"))
	}

	if err := validateHTTPURL("pipedrive.base_url", cfg.Pipedrive.BaseURL); err != nil {
		errs = append(errs, err)
	}
	if cfg.Pipedrive.PageSize < 1 || cfg.Pipedrive.PageSize > 500 {
		errs = append(errs, fmt.Errorf("pipedrive.page_size must be between 1 and 500 (got %d)", cfg.Pipedrive.PageSize))
	}
	if cfg.Pipedrive.MaxPages < 1 {
		errs = append(errs, fmt.Errorf("pipedrive.max_pages must be positive (got %d)", cfg.Pipedrive.MaxPages))
	}

	errs = append(errs, validateNotify(&cfg.Notify)...)

	switch cfg.State.Backend {
	case StateBackendFile:
		if strings.TrimSpace(cfg.State.Path) == "" {
			errs = append(errs, fmt.Errorf("state.path is required when backend is file"))
		}
	case StateBackendPostgres:
		if cfg.State.DSN == "" {
			errs = append(errs, fmt.Errorf("state.dsn is required when backend is postgres (STATE_DSN)"))
		}
	default:
		errs = append(errs, fmt.Errorf(
			"state.backend must be one of: file, postgres (got %q)", cfg.State.Backend,
		))
	}

	if _, err := cron.ParseStandard(cfg.Schedule.Cron); err != nil {
		errs = append(errs, fmt.Errorf("schedule.cron %q is invalid: %w", cfg.Schedule.Cron, err))
	}

	if !logger.ValidLevel(cfg.Logging.Level) {
		errs = append(errs, fmt.Errorf(
			"logging.level must be one of: debug, info, warn, error (got %q)", cfg.Logging.Level,
		))
	}

	return errors.Join(errs...)
}

func validateNotify(n *NotifyConfig) []error {
	var errs []error

	switch n.Backend {
	case BackendWhatsApp:
		if n.WhatsApp.Token == "" {
			errs = append(errs, fmt.Errorf("notify.whatsapp.token is required when backend is whatsapp (WHATSAPP_TOKEN)"))
		}
		if n.WhatsApp.PhoneNumberID == "" {
			errs = append(errs, fmt.Errorf(
				"notify.whatsapp.phone_number_id is required when backend is whatsapp (WHATSAPP_PHONE_NUMBER_ID)",
			))
		}
		if err := validateHTTPURL("notify.whatsapp.api_url", n.WhatsApp.APIURL); err != nil {
			errs = append(errs, err)
		}
	case BackendDiscord:
		if n.Discord.WebhookURL == "" {
			errs = append(errs, fmt.Errorf("notify.discord.webhook_url is required when backend is discord"))
		} else if err := validateHTTPURL("notify.discord.webhook_url", n.Discord.WebhookURL); err != nil {
			errs = append(errs, err)
		}
	case BackendShoutrrr:
		if len(n.Shoutrrr.URLs) == 0 {
			errs = append(errs, fmt.Errorf("notify.shoutrrr.urls is required when backend is shoutrrr"))
		}
	case BackendLog:
	default:
		errs = append(errs, fmt.Errorf(
			"notify.backend must be one of: whatsapp, discord, shoutrrr, log (got %q)", n.Backend,
		))
	}

	return errs
}

func validateHTTPURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", field, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL (got %q)", field, raw)
	}
	return nil
}
