package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"remotejobs-crawler/internal/poll"
	"remotejobs-crawler/internal/scrape/types"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newRunCmd(f *rootFlags) *cobra.Command {
	var (
		asJSON  bool
		persist bool
	)
	cmd := &cobra.Command{
		Use:   "run [crawler name]",
		Short: "Run every enabled crawler once, or only the named one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), f)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				name := strings.TrimSpace(args[0])
				res := a.manager.RunSpecific(ctx, name)
				if res == nil {
					return fmt.Errorf("%w: %q", poll.ErrUnknownCrawler, name)
				}
				if persist {
					if _, err := poll.Persist(ctx, a.store, res.Jobs); err != nil {
						return err
					}
				}
				if asJSON {
					return writeIndented(out, res)
				}
				renderRuns(out, []poll.CrawlerRun{{CrawlerName: name, Result: *res}})
				return nil
			}

			var s *poll.SessionResult
			if persist {
				if s, _, err = a.poller.Run(ctx); err != nil {
					return err
				}
			} else {
				s = a.manager.RunAll(ctx)
			}
			if asJSON {
				return writeIndented(out, s)
			}
			renderRuns(out, s.Results)
			fmt.Fprintf(out, "session %s: %d jobs kept, %d duplicates removed\n",
				s.SessionID, len(s.FinalJobs), s.DuplicatesRemoved)
			for _, e := range s.Errors {
				fmt.Fprintln(out, "error:", e)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	cmd.Flags().BoolVar(&persist, "persist", true, "store collected jobs as pending")
	return cmd
}

func renderRuns(w io.Writer, runs []poll.CrawlerRun) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Crawler", "Success", "Found", "Kept", "Errors"})
	for _, r := range runs {
		t.AppendRow(table.Row{r.CrawlerName, r.Result.Success, r.Result.JobsFound, r.Result.JobsProcessed, errorSummary(r.Result)})
	}
	t.Render()
}

func errorSummary(r types.Result) string {
	switch len(r.Errors) {
	case 0:
		return ""
	case 1:
		return r.Errors[0]
	default:
		return fmt.Sprintf("%s (+%d more)", r.Errors[0], len(r.Errors)-1)
	}
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
