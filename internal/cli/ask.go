package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gridiron-ai/gridiron/internal/channels"
	"github.com/gridiron-ai/gridiron/internal/commands"
	"github.com/gridiron-ai/gridiron/internal/session"
)

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question (or start interactive chat without one)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadValidatedConfig()
			if err != nil {
				return err
			}
			ledger, err := openLedger(cfg)
			if err != nil {
				return err
			}
			defer closeLedger(ledger)
			adv := newAdviser(cfg, ledger)

			question := strings.TrimSpace(strings.Join(args, " "))
			if question != "" {
				if strings.HasPrefix(question, "/") {
					return errors.New("slash commands only work in interactive chat")
				}
				res, err := adv.Ask(cmd.Context(), question, nil)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Content)
				return err
			}

			handler := &channels.AdvisorHandler{
				Advisor: adv,
				Session: session.New(cfg.CLIContextPath()),
			}
			router := commands.Router{
				Commands: &commands.Handler{
					Resetter:        handler,
					Ledger:          ledger,
					DailyLimitUSD:   cfg.Costs.DailyLimit,
					MonthlyLimitUSD: cfg.Costs.MonthlyLimit,
				},
				Next: handler,
			}
			listener := channels.NewCLI(cmd.InOrStdin(), cmd.OutOrStdout())
			return listener.Listen(cmd.Context(), router)
		},
	}
}
