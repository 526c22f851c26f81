package config

import "path/filepath"

const (
	// Global layout under GRIDIRON_HOME.
	ConfigFilePath = "config.toml"
	DataDirPath    = "data"
	LogsDirPath    = "logs"

	// Data directory layout under GRIDIRON_HOME/data.
	SessionsDirPath    = "sessions"
	CLISessionsDirPath = "cli"
	DefaultSessionPath = "default.jsonl"

	CostsFileName   = "costs.jsonl"
	CostsDBFileName = "costs.db"
)

func homeConfigPath(home string) string {
	return filepath.Join(home, ConfigFilePath)
}

func defaultHomePath(home string) string {
	return filepath.Join(home, ".gridiron")
}

func homeDataPath(home string) string {
	return filepath.Join(home, DataDirPath)
}

func (c *Config) ConfigPath() string {
	return homeConfigPath(c.HomeDir)
}

func (c *Config) DataDir() string {
	return homeDataPath(c.HomeDir)
}

func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir(), LogsDirPath)
}

func (c *Config) SessionsDir() string {
	return filepath.Join(c.DataDir(), SessionsDirPath)
}

func (c *Config) CLISessionDir() string {
	return filepath.Join(c.SessionsDir(), CLISessionsDirPath)
}

func (c *Config) CLIContextPath() string {
	return filepath.Join(c.CLISessionDir(), DefaultSessionPath)
}

func (c *Config) TelegramContextPath() string {
	return filepath.Join(c.SessionsDir(), "telegram", DefaultSessionPath)
}

func (c *Config) CostsPath() string {
	return filepath.Join(c.LogsDir(), CostsFileName)
}

func (c *Config) CostsDBPath() string {
	return filepath.Join(c.LogsDir(), CostsDBFileName)
}
