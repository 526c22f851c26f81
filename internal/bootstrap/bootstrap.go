// Package bootstrap creates the GRIDIRON_HOME tree on first run.
package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gridiron-ai/gridiron/internal/config"
)

// Initialize creates the expected Gridiron data tree if missing, including a
// starter config.toml the user fills in with API keys and league settings.
func Initialize(cfg *config.Config) error {
	dirs := []string{
		cfg.HomeDir,
		cfg.DataDir(),
		cfg.LogsDir(),
		cfg.SessionsDir(),
		cfg.CLISessionDir(),
		filepath.Dir(cfg.TelegramContextPath()),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}

	starterConfig, err := config.DefaultUserConfigTOML()
	if err != nil {
		return err
	}
	files := []struct {
		path    string
		content string
	}{
		{path: cfg.ConfigPath(), content: starterConfig},
		{path: cfg.CostsPath(), content: ""},
		{path: cfg.CLIContextPath(), content: ""},
	}
	for _, file := range files {
		if err := writeFileIfMissing(file.path, file.content); err != nil {
			return err
		}
	}
	return nil
}

func writeFileIfMissing(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %q: %w", path, err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write file %q: %w", path, err)
	}
	return nil
}
