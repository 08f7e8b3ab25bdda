package commands

import (
	"context"
	"ctfrank/internal/app"
	"ctfrank/internal/tracker"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var checkJSON bool

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print the webhook payload that would be sent.")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check [--json]",
	Short: "Fetches and compares the ranks without posting or storing anything.",
	Long:  `Fetches and compares the ranks without posting or storing anything. Does not need a webhook url.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			result, err := a.Tracker.Run(ctx, tracker.RunOptions{DryRun: true})
			if err != nil {
				return err
			}
			if checkJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result.Message)
			}
			renderCheck(cmd.OutOrStdout(), result)
			return nil
		})
	},
}

func renderCheck(out io.Writer, result tracker.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Scope", "Previous", "Current", "Change"})
	t.AppendRow(table.Row{
		"World",
		result.Previous.World.String(),
		result.Current.World.String(),
		result.Change.World.String(),
	})
	t.AppendRow(table.Row{
		"Region",
		result.Previous.Region.String(),
		result.Current.Region.String(),
		result.Change.Region.String(),
	})
	t.AppendFooter(table.Row{"Last checked", result.Previous.Timestamp(), "", ""})
	t.Render()
	fmt.Fprintln(out)
}
