package main

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newStatsCmd(f *rootFlags) *cobra.Command {
	var recent int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "List configured crawlers and their last run",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), f)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Name", "Source", "Enabled", "Last run"})
			for _, s := range a.manager.Stats(ctx) {
				last := "never"
				if s.LastRun != nil {
					last = s.LastRun.Local().Format(time.DateTime)
				}
				t.AppendRow(table.Row{s.Name, s.Source, s.Enabled, last})
			}
			t.Render()

			if recent <= 0 {
				return nil
			}
			rt := table.NewWriter()
			rt.SetOutputMirror(cmd.OutOrStdout())
			rt.SetStyle(table.StyleLight)
			rt.AppendHeader(table.Row{"Crawler", "Finished", "Success", "Found", "Kept", "Session"})
			for _, c := range a.manager.Configs() {
				runs, err := a.history.Recent(ctx, c.Name, recent)
				if err != nil {
					return err
				}
				for _, r := range runs {
					rt.AppendRow(table.Row{r.Crawler, r.FinishedAt.Local().Format(time.DateTime), r.Success, r.JobsFound, r.JobsProcessed, r.SessionID})
				}
			}
			rt.Render()
			return nil
		},
	}
	cmd.Flags().IntVar(&recent, "recent", 0, "also list the last N runs per crawler (needs the redis history driver across processes)")
	return cmd
}
