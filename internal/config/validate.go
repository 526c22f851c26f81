package config

import (
	"errors"
	"fmt"
)

// Validatable is implemented by config sections that can self-validate.
type Validatable interface {
	Validate() error
}

// ValidationReport carries non-fatal findings from startup validation.
type ValidationReport struct {
	Warnings []string
}

var supportedProviders = map[string]bool{
	"anthropic":  true,
	"openai":     true,
	"deepseek":   true,
	"gemini":     true,
	"perplexity": true,
}

func (c LLMProviderConfig) Validate() error {
	if c.Provider == "" {
		return errors.New("provider is required")
	}
	if !supportedProviders[c.Provider] {
		return fmt.Errorf("unsupported provider %q", c.Provider)
	}
	if c.Model == "" {
		return errors.New("model is required")
	}
	if c.APIKey == "" {
		return errors.New("api_key is required")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be > 0")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return errors.New("temperature must be between 0 and 2")
	}
	return nil
}

func (c BudgetConfig) Validate() error {
	if c.TurnsMax < 1 {
		return errors.New("turns_max must be >= 1")
	}
	if c.ToolCallsMax < 0 {
		return errors.New("tool_calls_max must be >= 0")
	}
	if c.RunTimeout <= 0 {
		return errors.New("run_timeout must be > 0")
	}
	return nil
}

func (c RetryConfig) Validate() error {
	if c.MaxAttempts < 1 {
		return errors.New("max_attempts must be >= 1")
	}
	if c.InitialDelay < 0 || c.MaxDelay < 0 {
		return errors.New("delays must be >= 0")
	}
	if c.MaxDelay > 0 && c.MaxDelay < c.InitialDelay {
		return errors.New("max_delay must be >= initial_delay")
	}
	return nil
}

func (c CostsConfig) Validate() error {
	switch c.Backend {
	case "jsonl", "sqlite":
	default:
		return fmt.Errorf("unsupported backend %q (allowed: jsonl, sqlite)", c.Backend)
	}
	if c.DailyLimit < 0 || c.MonthlyLimit < 0 {
		return errors.New("limits must be >= 0")
	}
	return nil
}

func (c TelegramConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Token == "" {
		return errors.New("token is required when enabled=true")
	}
	return nil
}

// ValidateStartup validates startup configuration and returns warning messages.
func ValidateStartup(cfg *Config) (*ValidationReport, error) {
	var errs []error
	report := &ValidationReport{}

	if len(cfg.LLM) == 0 {
		errs = append(errs, errors.New("at least one llm.* profile is required"))
	}
	if _, ok := cfg.LLM[defaultProfile]; !ok {
		errs = append(errs, errors.New("llm.default profile is required"))
	}

	for name, llmCfg := range cfg.LLM {
		if err := llmCfg.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("llm.%s: %w", name, err))
		}
	}
	if err := cfg.Budget.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("budget: %w", err))
	}
	if err := cfg.Retry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("retry: %w", err))
	}
	if err := cfg.Costs.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("costs: %w", err))
	}
	if err := cfg.Notify.Telegram.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("notify.telegram: %w", err))
	}

	if cfg.League.LeagueID == "" {
		report.Warnings = append(report.Warnings, "league.league_id is empty; roster lookups are disabled")
	}
	if cfg.Tools.WebSearch.APIKey == "" {
		report.Warnings = append(report.Warnings, "tools.web_search.api_key is empty; web search is disabled")
	}

	if len(errs) > 0 {
		return report, errors.Join(errs...)
	}
	return report, nil
}
