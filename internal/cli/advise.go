package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gridiron-ai/gridiron/internal/agent"
	"github.com/gridiron-ai/gridiron/internal/notify"
)

func newAdviseCmd() *cobra.Command {
	var (
		week     int
		deliver  bool
		opponent string
	)

	cmd := &cobra.Command{
		Use:   "advise",
		Short: "Run a lineup, waiver, or matchup report",
	}
	cmd.PersistentFlags().IntVarP(&week, "week", "w", 0, "NFL week (0 means the current week)")
	cmd.PersistentFlags().BoolVar(&deliver, "notify", false, "Also deliver the report to configured notifiers")

	runReport := func(cmd *cobra.Command, title string, run func(adv adviser, week int) (*agent.Result, error)) error {
		cfg, err := loadValidatedConfig()
		if err != nil {
			return err
		}
		ledger, err := openLedger(cfg)
		if err != nil {
			return err
		}
		defer closeLedger(ledger)

		res, err := run(newAdviser(cfg, ledger), week)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), res.Content); err != nil {
			return err
		}

		if !deliver {
			return nil
		}
		targets, err := notify.FromConfig(cfg.Notify, nil)
		if err != nil {
			return err
		}
		if len(targets) == 0 {
			return errors.New("--notify is set but no notifiers are configured")
		}
		subject := fmt.Sprintf("%s Week %d", title, reportWeek(week))
		return targets.Send(cmd.Context(), subject, res.Content)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "start-sit",
		Short: "Review the week's lineup against rankings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, "Start/Sit", func(adv adviser, week int) (*agent.Result, error) {
				return adv.StartSit(cmd.Context(), week)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "waivers",
		Short: "Scan the waiver wire for pickups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, "Waiver Wire", func(adv adviser, week int) (*agent.Result, error) {
				return adv.Waivers(cmd.Context(), week)
			})
		},
	})
	matchup := &cobra.Command{
		Use:   "matchup",
		Short: "Preview the week's head-to-head matchup",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, "Matchup", func(adv adviser, week int) (*agent.Result, error) {
				return adv.Matchup(cmd.Context(), week, opponent)
			})
		},
	}
	matchup.Flags().StringVar(&opponent, "opponent", "", "Opponent team ID for a two-sided preview")
	cmd.AddCommand(matchup)

	return cmd
}
