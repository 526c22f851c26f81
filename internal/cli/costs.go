package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gridiron-ai/gridiron/internal/commands"
	"github.com/gridiron-ai/gridiron/internal/config"
)

func newCostsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "costs",
		Short: "Show LLM spend for today and this month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Spend is readable even while the LLM profile is incomplete,
			// so skip startup validation here.
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ledger, err := openLedger(cfg)
			if err != nil {
				return err
			}
			defer closeLedger(ledger)

			spend, err := ledger.Spend(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(
				cmd.OutOrStdout(),
				"Spend today: %s\nThis month: %s\n",
				commands.FormatSpend(spend.TodayUSD, cfg.Costs.DailyLimit),
				commands.FormatSpend(spend.MonthUSD, cfg.Costs.MonthlyLimit),
			)
			return err
		},
	}
}
