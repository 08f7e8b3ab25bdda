package commands

import (
	"context"
	"ctfrank/internal/app"
	"ctfrank/internal/ranking"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "How many observations to show.")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history [--limit N]",
	Short: "Lists stored observations, newest first.",
	Long:  `Lists stored observations, newest first. Does not need a webhook url.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			list, err := a.Store.List(ctx, historyLimit)
			if err != nil {
				return err
			}
			renderHistory(cmd.OutOrStdout(), list)
			return nil
		})
	},
}

func renderHistory(out io.Writer, list []ranking.Observation) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Checked at", "World", "Region"})
	for _, obs := range list {
		t.AppendRow(table.Row{obs.Timestamp(), obs.World.String(), obs.Region.String()})
	}
	t.Render()
}
