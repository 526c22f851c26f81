package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gridiron-ai/gridiron/internal/channels"
	"github.com/gridiron-ai/gridiron/internal/commands"
	"github.com/gridiron-ai/gridiron/internal/logging"
	"github.com/gridiron-ai/gridiron/internal/notify"
	"github.com/gridiron-ai/gridiron/internal/scheduler"
	"github.com/gridiron-ai/gridiron/internal/session"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram listener and the report scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadValidatedConfig()
			if err != nil {
				return err
			}

			telegramEnabled := cfg.Notify.Telegram.Enabled && strings.TrimSpace(cfg.Notify.Telegram.Token) != ""
			scheduleEnabled := strings.TrimSpace(cfg.Schedule.StartSit) != "" || strings.TrimSpace(cfg.Schedule.Waivers) != ""
			if !telegramEnabled && !scheduleEnabled {
				return errors.New("nothing to serve: enable notify.telegram or add [schedule] entries in config.toml")
			}

			ledger, err := openLedger(cfg)
			if err != nil {
				return err
			}
			defer closeLedger(ledger)
			adv := newAdviser(cfg, ledger)

			llmCfg := cfg.DefaultLLM()
			logging.Logger().Info(
				"starting server",
				"provider", llmCfg.Provider,
				"model", llmCfg.Model,
				"home", cfg.HomeDir,
				"telegram", telegramEnabled,
			)

			pidFilePath := filepath.Join(cfg.DataDir(), "gridiron.pid")
			if err := os.WriteFile(pidFilePath, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0o644); err != nil {
				return fmt.Errorf("write pid file %q: %w", pidFilePath, err)
			}
			defer os.Remove(pidFilePath)

			targets, err := notify.FromConfig(cfg.Notify, nil)
			if err != nil {
				return err
			}
			if scheduleEnabled && len(targets) == 0 {
				logging.Logger().Warn("scheduled reports have no delivery target; results will only be logged")
			}
			svc, err := scheduler.New(cfg.Schedule, adv, targets)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := svc.Start(runCtx); err != nil {
				return err
			}

			if telegramEnabled {
				handler := &channels.AdvisorHandler{
					Advisor: adv,
					Session: session.New(cfg.TelegramContextPath()),
				}
				router := commands.Router{
					Commands: &commands.Handler{
						Resetter:        handler,
						Ledger:          ledger,
						Jobs:            schedulerJobs(svc),
						DailyLimitUSD:   cfg.Costs.DailyLimit,
						MonthlyLimitUSD: cfg.Costs.MonthlyLimit,
					},
					Next: handler,
				}
				listener := channels.NewTelegram(cfg.Notify.Telegram.Token, cfg.Notify.Telegram.ChatID)
				if err := listener.Listen(runCtx, router); err != nil {
					return err
				}
			} else {
				<-runCtx.Done()
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := svc.Stop(shutdownCtx); err != nil {
				return err
			}
			logging.Logger().Info("server stopped")
			return nil
		},
	}
}

func schedulerJobs(svc *scheduler.Service) commands.JobsFunc {
	return func() []commands.Job {
		var jobs []commands.Job
		for _, job := range svc.Jobs() {
			jobs = append(jobs, commands.Job{Name: job.Name, Spec: job.Spec, Next: job.Next})
		}
		return jobs
	}
}
