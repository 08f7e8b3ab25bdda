package commands

import (
	"context"
	"ctfrank/internal/app"
	"ctfrank/internal/config"
	"ctfrank/internal/tracker"
	"log/slog"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetches the ranks, posts the update and stores the new ranks.",
	Long:  `Fetches the ranks, posts the update and stores the new ranks. Requires CTFRANK_WEBHOOK_URL (or DISCORD_WEBHOOK_URL).`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			result, err := a.Tracker.Run(ctx, tracker.RunOptions{})
			if err != nil {
				return err
			}
			slog.Info(
				"ranking checked",
				"world", result.Current.World,
				"world_change", result.Change.World,
				"region", result.Current.Region,
				"region_change", result.Change.Region,
			)
			return nil
		}, config.Config.RequireWebhook)
	},
}
