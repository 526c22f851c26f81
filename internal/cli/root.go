// Package cli wires Cobra subcommands to application dependencies; it is a
// thin controller with no business logic.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gridiron-ai/gridiron/internal/bootstrap"
	"github.com/gridiron-ai/gridiron/internal/config"
	"github.com/gridiron-ai/gridiron/internal/logging"
)

// NewRootCmd creates the root command and registers all subcommands.
func NewRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "gridiron",
		Short: "Fantasy football advice from your league data and an LLM",
		// Let main handle fatal error rendering through structured logs.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if verbose {
				logging.SetLevel(slog.LevelInfo)
			} else {
				logging.SetLevel(slog.LevelWarn)
			}

			// config and version only print; they should not trigger
			// first-run onboarding.
			switch cmd.Name() {
			case "config", "version":
				return nil
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			firstRun := false
			if _, err := os.Stat(cfg.ConfigPath()); errors.Is(err, os.ErrNotExist) {
				firstRun = true
			} else if err != nil {
				return fmt.Errorf("stat config file %q: %w", cfg.ConfigPath(), err)
			}

			if err := bootstrap.Initialize(cfg); err != nil {
				return err
			}

			if firstRun {
				// First-run bootstrap is an onboarding path, not a fatal
				// error. Print guidance and exit cleanly so logs do not
				// report failures.
				if _, err := fmt.Fprintf(
					cmd.ErrOrStderr(),
					"First run setup complete.\nEdit config file: %s\nAdd your provider API key and ESPN league settings, then rerun.\n",
					cfg.ConfigPath(),
				); err != nil {
					return err
				}
				os.Exit(0)
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to interactive chat when no subcommand is provided.
			askCmd, _, err := cmd.Find([]string{"ask"})
			if err != nil {
				return err
			}
			askCmd.SetContext(cmd.Context())
			return askCmd.RunE(askCmd, args)
		},
	}

	root.AddCommand(newAskCmd())
	root.AddCommand(newAdviseCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newCostsCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging (info level)")

	return root
}
