// Package main is the entry point for the gridiron binary.
// It delegates immediately to the CLI command tree.
package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/gridiron-ai/gridiron/internal/cli"
	"github.com/gridiron-ai/gridiron/internal/logging"
)

func main() {
	// Load .env if present so API keys referenced from config resolve.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logging.Logger().Warn("load .env file", "err", err)
	}

	if err := cli.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		logging.Logger().Error("fatal error", "err", err)
		os.Exit(1)
	}
}
