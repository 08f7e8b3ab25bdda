// Package config loads the settings of a ctfrank run.
//
// Values are layered, later layers win:
//  1. defaults (Default)
//  2. the optional json5 file and its `.local` override
//  3. environment variables prefixed with CTFRANK_
package config

import (
	"ctfrank/internal/apperr"
	"ctfrank/internal/configutil"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
)

const EnvPrefix = "CTFRANK_"

// legacyWebhookEnv is read when CTFRANK_WEBHOOK_URL is not set.
const legacyWebhookEnv = "DISCORD_WEBHOOK_URL"

const defaultAvatarURL = "https://cdn.discordapp.com/attachments/719605546101113012/731453497479790672/ctftime.png"

// Duration is a time.Duration that reads "30s" style strings from both
// json5 files and environment variables.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Config struct {
	// DatabaseURL is a sqlite path / `file:` uri or a libsql url.
	DatabaseURL string `json:"database_url" env:"DATABASE_URL"`
	WebhookURL  string `json:"webhook_url" env:"WEBHOOK_URL"`

	TeamID string `json:"team_id" env:"TEAM_ID"`
	// Season is the ranking year used by both the api and the profile page.
	Season string `json:"season" env:"SEASON"`
	Region string `json:"region" env:"REGION"`

	BaseURL          string `json:"base_url" env:"BASE_URL"`
	APIBaseURL       string `json:"api_base_url" env:"API_BASE_URL"`
	UserAgent        string `json:"user_agent" env:"USER_AGENT"`
	CloudflareBypass bool   `json:"cloudflare_bypass" env:"CLOUDFLARE_BYPASS"`

	Timezone    string   `json:"timezone" env:"TIMEZONE"`
	HTTPTimeout Duration `json:"http_timeout" env:"HTTP_TIMEOUT"`
	RunTimeout  Duration `json:"run_timeout" env:"RUN_TIMEOUT"`

	Username  string `json:"username" env:"USERNAME"`
	AvatarURL string `json:"avatar_url" env:"AVATAR_URL"`

	LogLevel     string `json:"log_level" env:"LOG_LEVEL"`
	OtlpEndpoint string `json:"otlp_endpoint" env:"OTLP_ENDPOINT"`
}

// Default returns the settings used when nothing overrides them. Season is
// left empty and resolved against the clock in Load.
func Default() Config {
	return Config{
		TeamID:      "113107",
		Region:      "NO",
		BaseURL:     "https://ctftime.org",
		UserAgent:   "Corax",
		Timezone:    "Europe/Oslo",
		HTTPTimeout: Duration(30 * time.Second),
		RunTimeout:  Duration(2 * time.Minute),
		Username:    "CTFtime",
		AvatarURL:   defaultAvatarURL,
		LogLevel:    "info",
	}
}

// Load reads the config file at path (missing files are fine) and the process environment.
func Load(path string) (Config, error) {
	return LoadFrom(path, env.ToMap(os.Environ()), time.Now())
}

// LoadFrom is Load with an explicit environment and clock, now is only used
// to default the season.
func LoadFrom(path string, environ map[string]string, now time.Time) (Config, error) {
	cfg := Default()

	if path != "" {
		fileCfg, err := configutil.ReadConfig[Config](path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, apperr.Configuration("read config file", err)
		default:
			err = mergo.Merge(&cfg, fileCfg, mergo.WithOverride)
			if err != nil {
				return Config{}, apperr.Configuration("merge config file", err)
			}
		}
	}

	err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	})
	if err != nil {
		return Config{}, apperr.Configuration("parse environment", err)
	}
	if cfg.WebhookURL == "" {
		cfg.WebhookURL = environ[legacyWebhookEnv]
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = cfg.BaseURL
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return Config{}, apperr.Configuration("load timezone "+cfg.Timezone, err)
	}
	if cfg.Season == "" {
		cfg.Season = strconv.Itoa(now.In(loc).Year())
	}

	return cfg, cfg.Validate()
}

// RequireWebhook fails with apperr.ErrConfiguration when no webhook url is
// set, only commands that post need one.
func (c Config) RequireWebhook() error {
	if c.WebhookURL == "" {
		return apperr.Configuration(EnvPrefix+"WEBHOOK_URL is required", nil)
	}
	return nil
}

// Validate fails with apperr.ErrConfiguration naming every missing or invalid
// setting. The webhook url is checked separately by RequireWebhook.
func (c Config) Validate() error {
	var problems []string
	if c.DatabaseURL == "" {
		problems = append(problems, EnvPrefix+"DATABASE_URL is required")
	}
	if strings.TrimSpace(c.TeamID) == "" {
		problems = append(problems, "team id is empty")
	}
	if strings.TrimSpace(c.Season) == "" {
		problems = append(problems, "season is empty")
	}
	if strings.TrimSpace(c.Region) == "" {
		problems = append(problems, "region is empty")
	}
	if c.HTTPTimeout <= 0 {
		problems = append(problems, "http timeout must be positive")
	}
	if c.RunTimeout <= 0 {
		problems = append(problems, "run timeout must be positive")
	}
	if len(problems) > 0 {
		return apperr.Configuration(strings.Join(problems, ", "), nil)
	}
	return nil
}
