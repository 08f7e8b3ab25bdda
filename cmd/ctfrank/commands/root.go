package commands

import (
	"context"
	"ctfrank/internal/app"
	"ctfrank/internal/config"
	"ctfrank/internal/serviceutil"
	"ctfrank/internal/telemetry"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "ctfrank",
	Short: "ctfrank posts a team's CTFtime ranking changes to a chat webhook.",
	Long: `ctfrank checks the world and region rank of a team on CTFtime, compares
them to the last stored check, posts the result to a webhook and stores the
new ranks. It runs once and exits, schedule it with cron or a systemd timer.

Configuration is read from CTFRANK_* environment variables, optionally on
top of a json5 file given with --config.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCmd.RunE,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&configPath, "config", "ctfrank.json5",
		"Optional json5 config file, a <name>.local.json5 next to it overrides it.",
	)
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		serviceutil.Fatal(fmt.Sprintf("%s failed", rootCmd.Name()), err)
	}
}

// withApp loads the config, runs the extra checks, opens the app and runs fn
// bounded by the configured run timeout.
func withApp(
	ctx context.Context,
	fn func(ctx context.Context, a *app.App) error,
	checks ...func(config.Config) error,
) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	for _, check := range checks {
		if err := check(cfg); err != nil {
			return err
		}
	}
	telemetry.InitSlog(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(ctx, cfg.RunTimeout.Std())
	defer cancel()

	a, err := app.Open(ctx, cfg, telemetry.SlogAPI{})
	if err != nil {
		return err
	}
	defer closeApp(a)

	return fn(ctx, a)
}

type closer interface {
	Close(ctx context.Context) error
}

func closeApp(a closer) {
	err := a.Close(context.Background())
	if err != nil {
		slog.Warn("failed to close app", "err", err.Error())
	}
}
