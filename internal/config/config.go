// Package config loads Gridiron runtime configuration from a TOML file and
// environment variables, exposing typed structs and accessors for all sections.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const defaultProfile = "default"

// Config is the runtime configuration loaded from defaults, config.toml, and env vars.
type Config struct {
	// HomeDir is runtime-resolved from GRIDIRON_HOME and not read from config.
	HomeDir  string                       `mapstructure:"-"`
	LLM      map[string]LLMProviderConfig `mapstructure:"llm"`
	Budget   BudgetConfig                 `mapstructure:"budget"`
	Retry    RetryConfig                  `mapstructure:"retry"`
	League   LeagueConfig                 `mapstructure:"league"`
	Tools    ToolsConfig                  `mapstructure:"tools"`
	Costs    CostsConfig                  `mapstructure:"costs"`
	Notify   NotifyConfig                 `mapstructure:"notify"`
	Schedule ScheduleConfig               `mapstructure:"schedule"`
}

// LLMProviderConfig configures one LLM provider profile.
type LLMProviderConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
	// BaseURL overrides the vendor endpoint, mainly for tests and proxies.
	BaseURL   string `mapstructure:"base_url"`
	MaxTokens int    `mapstructure:"max_tokens"`
	// Temperature of 0 leaves the vendor default in place.
	Temperature    float64       `mapstructure:"temperature"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// BudgetConfig bounds a single conversation run.
type BudgetConfig struct {
	TurnsMax     int           `mapstructure:"turns_max"`
	ToolCallsMax int           `mapstructure:"tool_calls_max"`
	RunTimeout   time.Duration `mapstructure:"run_timeout"`
}

// RetryConfig controls per-request retry of transient provider failures.
type RetryConfig struct {
	MaxAttempts  int           `mapstructure:"max_attempts"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
	MaxDelay     time.Duration `mapstructure:"max_delay"`
}

// LeagueConfig identifies the fantasy league the assistant advises on.
type LeagueConfig struct {
	Provider string `mapstructure:"provider"`
	LeagueID string `mapstructure:"league_id"`
	TeamID   string `mapstructure:"team_id"`
	// Season of 0 means the current calendar year.
	Season int `mapstructure:"season"`
	// ESPNS2 and SWID are the ESPN private-league auth cookies.
	ESPNS2 string `mapstructure:"espn_s2"`
	SWID   string `mapstructure:"swid"`
}

// ToolsConfig configures built-in conversation tools.
type ToolsConfig struct {
	WebSearch WebSearchConfig `mapstructure:"web_search"`
}

// WebSearchConfig configures the Brave web search tool.
type WebSearchConfig struct {
	APIKey     string `mapstructure:"api_key"`
	MaxResults int    `mapstructure:"max_results"`
}

// CostsConfig selects the spend ledger backend and soft USD limits.
type CostsConfig struct {
	Backend      string  `mapstructure:"backend"`
	DailyLimit   float64 `mapstructure:"daily_limit"`
	MonthlyLimit float64 `mapstructure:"monthly_limit"`
}

// NotifyConfig configures outbound notification targets.
type NotifyConfig struct {
	Slack    SlackConfig    `mapstructure:"slack"`
	Discord  DiscordConfig  `mapstructure:"discord"`
	Pushover PushoverConfig `mapstructure:"pushover"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// SlackConfig configures the Slack incoming-webhook notifier.
type SlackConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
}

// DiscordConfig configures the Discord webhook notifier.
type DiscordConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
}

// PushoverConfig configures the Pushover notifier.
type PushoverConfig struct {
	Token string `mapstructure:"token"`
	User  string `mapstructure:"user"`
}

// TelegramConfig configures the Telegram notifier and serve-mode listener.
type TelegramConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
	// ChatID receives scheduled notifications. Serve mode also restricts
	// inbound messages to this chat when set.
	ChatID int64 `mapstructure:"chat_id"`
}

// ScheduleConfig holds cron expressions for recurring advice runs.
// An empty expression disables the job.
type ScheduleConfig struct {
	StartSit string `mapstructure:"start_sit"`
	Waivers  string `mapstructure:"waivers"`
}

var defaultConfig = Config{
	LLM: map[string]LLMProviderConfig{
		defaultProfile: {
			APIKey:         "",
			Provider:       "anthropic",
			Model:          "claude-sonnet-4-5",
			MaxTokens:      1024,
			Temperature:    0,
			RequestTimeout: 90 * time.Second,
		},
	},
	Budget: BudgetConfig{
		TurnsMax:     6,
		ToolCallsMax: 8,
		RunTimeout:   5 * time.Minute,
	},
	Retry: RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     8 * time.Second,
	},
	League: LeagueConfig{
		Provider: "espn",
	},
	Tools: ToolsConfig{
		WebSearch: WebSearchConfig{
			MaxResults: 5,
		},
	},
	Costs: CostsConfig{
		Backend:      "jsonl",
		DailyLimit:   0,
		MonthlyLimit: 0,
	},
	Schedule: ScheduleConfig{
		StartSit: "",
		Waivers:  "",
	},
}

// defaultUserConfig is the minimal bootstrap config written for first-time
// users. It intentionally contains only user-editable essentials and not the
// full runtime default surface.
var defaultUserConfig = Config{
	LLM: map[string]LLMProviderConfig{
		defaultProfile: {
			APIKey:         "$ANTHROPIC_API_KEY",
			Provider:       "anthropic",
			Model:          "claude-sonnet-4-5",
			RequestTimeout: 90 * time.Second,
		},
	},
	League: LeagueConfig{
		Provider: "espn",
	},
	Costs: CostsConfig{
		Backend:      "jsonl",
		DailyLimit:   0,
		MonthlyLimit: 0,
	},
}

// homeDir returns the Gridiron home directory.
// Uses GRIDIRON_HOME env var if set, otherwise defaults to ~/.gridiron.
func homeDir() (string, error) {
	if dir := os.Getenv("GRIDIRON_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return defaultHomePath(home), nil
}

// Load merges hardcoded defaults and config file values in that order.
// The runtime data directory is GRIDIRON_HOME/data (default: ~/.gridiron/data).
// Config is always at $GRIDIRON_HOME/config.toml.
func Load() (*Config, error) {
	homeDir, err := homeDir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(homeConfigPath(homeDir))
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	decodeHook := mapstructure.ComposeDecodeHookFunc(
		expandEnvStringHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)

	if err := v.Unmarshal(&cfg, func(c *mapstructure.DecoderConfig) {
		c.DecodeHook = decodeHook
	}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.HomeDir = homeDir

	return &cfg, nil
}

// Write writes the merged configuration (defaults overlaid by user
// config) to w in TOML format.
func Write(w io.Writer) error {
	if w == nil {
		return errors.New("writer is required")
	}

	homeDir, err := homeDir()
	if err != nil {
		return err
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(homeConfigPath(homeDir))
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read config file: %w", err)
		}
	}

	// Keep duration fields human-readable in generated TOML.
	v.Set("llm.default.request_timeout", v.GetDuration("llm.default.request_timeout").String())
	v.Set("budget.run_timeout", v.GetDuration("budget.run_timeout").String())
	v.Set("retry.initial_delay", v.GetDuration("retry.initial_delay").String())
	v.Set("retry.max_delay", v.GetDuration("retry.max_delay").String())

	if err := v.WriteConfigTo(w); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// DefaultUserConfigTOML renders the minimal bootstrap user config as TOML.
func DefaultUserConfigTOML() (string, error) {
	v := viper.New()
	v.SetConfigType("toml")

	for profile, llm := range defaultUserConfig.LLM {
		v.Set("llm."+profile+".api_key", llm.APIKey)
		v.Set("llm."+profile+".provider", llm.Provider)
		v.Set("llm."+profile+".model", llm.Model)
		v.Set("llm."+profile+".request_timeout", llm.RequestTimeout.String())
	}
	v.Set("league.provider", defaultUserConfig.League.Provider)
	v.Set("league.league_id", defaultUserConfig.League.LeagueID)
	v.Set("league.team_id", defaultUserConfig.League.TeamID)
	v.Set("costs.backend", defaultUserConfig.Costs.Backend)
	v.Set("costs.daily_limit", defaultUserConfig.Costs.DailyLimit)
	v.Set("costs.monthly_limit", defaultUserConfig.Costs.MonthlyLimit)

	var out bytes.Buffer
	if err := v.WriteConfigTo(&out); err != nil {
		return "", fmt.Errorf("write default user config: %w", err)
	}
	return out.String(), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.default.api_key", defaultConfig.LLM[defaultProfile].APIKey)
	v.SetDefault("llm.default.provider", defaultConfig.LLM[defaultProfile].Provider)
	v.SetDefault("llm.default.model", defaultConfig.LLM[defaultProfile].Model)
	v.SetDefault("llm.default.max_tokens", defaultConfig.LLM[defaultProfile].MaxTokens)
	v.SetDefault("llm.default.temperature", defaultConfig.LLM[defaultProfile].Temperature)
	v.SetDefault("llm.default.request_timeout", defaultConfig.LLM[defaultProfile].RequestTimeout)

	v.SetDefault("budget.turns_max", defaultConfig.Budget.TurnsMax)
	v.SetDefault("budget.tool_calls_max", defaultConfig.Budget.ToolCallsMax)
	v.SetDefault("budget.run_timeout", defaultConfig.Budget.RunTimeout)

	v.SetDefault("retry.max_attempts", defaultConfig.Retry.MaxAttempts)
	v.SetDefault("retry.initial_delay", defaultConfig.Retry.InitialDelay)
	v.SetDefault("retry.max_delay", defaultConfig.Retry.MaxDelay)

	v.SetDefault("league.provider", defaultConfig.League.Provider)
	v.SetDefault("league.season", defaultConfig.League.Season)

	v.SetDefault("tools.web_search.api_key", defaultConfig.Tools.WebSearch.APIKey)
	v.SetDefault("tools.web_search.max_results", defaultConfig.Tools.WebSearch.MaxResults)

	v.SetDefault("costs.backend", defaultConfig.Costs.Backend)
	v.SetDefault("costs.daily_limit", defaultConfig.Costs.DailyLimit)
	v.SetDefault("costs.monthly_limit", defaultConfig.Costs.MonthlyLimit)

	v.SetDefault("schedule.start_sit", defaultConfig.Schedule.StartSit)
	v.SetDefault("schedule.waivers", defaultConfig.Schedule.Waivers)
}

// DefaultLLM returns the default LLM profile with fallback defaults.
func (c *Config) DefaultLLM() LLMProviderConfig {
	if llm, ok := c.LLM[defaultProfile]; ok {
		return llm
	}
	return defaultConfig.LLM[defaultProfile]
}

func expandEnvStringHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to.Kind() != reflect.String {
			return data, nil
		}
		value, ok := data.(string)
		if !ok {
			return data, nil
		}
		return os.ExpandEnv(value), nil
	}
}
