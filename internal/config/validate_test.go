package config

import (
	"strings"
	"testing"
	"time"
)

var (
	_ Validatable = LLMProviderConfig{}
	_ Validatable = BudgetConfig{}
	_ Validatable = RetryConfig{}
	_ Validatable = CostsConfig{}
	_ Validatable = TelegramConfig{}
)

func validStartupConfig() *Config {
	return &Config{
		LLM: map[string]LLMProviderConfig{
			"default": {Provider: "anthropic", APIKey: "k", Model: "m", RequestTimeout: time.Minute},
		},
		Budget: BudgetConfig{TurnsMax: 6, ToolCallsMax: 8, RunTimeout: 5 * time.Minute},
		Retry:  RetryConfig{MaxAttempts: 3, InitialDelay: 500 * time.Millisecond, MaxDelay: 8 * time.Second},
		League: LeagueConfig{Provider: "espn", LeagueID: "1", TeamID: "2"},
		Tools:  ToolsConfig{WebSearch: WebSearchConfig{APIKey: "b"}},
		Costs:  CostsConfig{Backend: "jsonl"},
	}
}

func TestValidateStartup_HardFailNoLLM(t *testing.T) {
	cfg := validStartupConfig()
	cfg.LLM = map[string]LLMProviderConfig{}

	_, err := ValidateStartup(cfg)
	if err == nil {
		t.Fatalf("expected error for missing llm profiles")
	}
}

func TestValidateStartup_HardFailNoDefaultProfile(t *testing.T) {
	cfg := validStartupConfig()
	cfg.LLM = map[string]LLMProviderConfig{
		"other": {Provider: "anthropic", APIKey: "k", Model: "m", RequestTimeout: time.Minute},
	}

	_, err := ValidateStartup(cfg)
	if err == nil || !strings.Contains(err.Error(), "llm.default profile is required") {
		t.Fatalf("expected missing default profile error, got %v", err)
	}
}

func TestValidateStartup_ProviderRequiresAPIKey(t *testing.T) {
	cfg := validStartupConfig()
	profile := cfg.LLM["default"]
	profile.APIKey = ""
	cfg.LLM["default"] = profile

	_, err := ValidateStartup(cfg)
	if err == nil || !strings.Contains(err.Error(), "api_key is required") {
		t.Fatalf("expected api_key validation error, got %v", err)
	}
}

func TestValidateStartup_UnknownProviderFails(t *testing.T) {
	cfg := validStartupConfig()
	profile := cfg.LLM["default"]
	profile.Provider = "ollama"
	cfg.LLM["default"] = profile

	_, err := ValidateStartup(cfg)
	if err == nil || !strings.Contains(err.Error(), "unsupported provider") {
		t.Fatalf("expected unsupported provider error, got %v", err)
	}
}

func TestValidateStartup_BudgetBoundsChecked(t *testing.T) {
	cfg := validStartupConfig()
	cfg.Budget.TurnsMax = 0

	_, err := ValidateStartup(cfg)
	if err == nil || !strings.Contains(err.Error(), "turns_max must be >= 1") {
		t.Fatalf("expected turns_max validation error, got %v", err)
	}
}

func TestValidateStartup_CostsBackendChecked(t *testing.T) {
	cfg := validStartupConfig()
	cfg.Costs.Backend = "postgres"

	_, err := ValidateStartup(cfg)
	if err == nil || !strings.Contains(err.Error(), "unsupported backend") {
		t.Fatalf("expected costs backend validation error, got %v", err)
	}
}

func TestValidateStartup_TelegramEnabledRequiresToken(t *testing.T) {
	cfg := validStartupConfig()
	cfg.Notify.Telegram = TelegramConfig{Enabled: true, Token: ""}

	_, err := ValidateStartup(cfg)
	if err == nil || !strings.Contains(err.Error(), "token is required") {
		t.Fatalf("expected telegram token validation error, got %v", err)
	}
}

func TestValidateStartup_MissingLeagueWarnsOnly(t *testing.T) {
	cfg := validStartupConfig()
	cfg.League.LeagueID = ""

	report, err := ValidateStartup(cfg)
	if err != nil {
		t.Fatalf("expected no hard error, got %v", err)
	}
	if report == nil || len(report.Warnings) == 0 {
		t.Fatalf("expected warning for empty league_id")
	}
}

func TestValidateStartup_ValidConfigPasses(t *testing.T) {
	report, err := ValidateStartup(validStartupConfig())
	if err != nil {
		t.Fatalf("expected valid config to pass, got %v", err)
	}
	if len(report.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", report.Warnings)
	}
}
