package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"remotejobs-crawler/internal/domain"
	"remotejobs-crawler/internal/rank"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newScoreCmd() *cobra.Command {
	var (
		policyFile string
		minScore   int
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score job postings read as JSON from stdin",
		Long: `Reads one job object or an array of job objects from stdin and prints
the score, the matched keywords and the inferred role category of each.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := rank.Default()
			if policyFile != "" {
				p, err := rank.LoadPolicyFile(policyFile)
				if err != nil {
					return err
				}
				engine = rank.NewEngine(p)
			}

			jobs, err := readJobs(cmd.InOrStdin())
			if err != nil {
				return err
			}
			renderScores(cmd.OutOrStdout(), engine, jobs, minScore)
			return nil
		},
	}
	cmd.Flags().StringVar(&policyFile, "policy", "", "scoring policy YAML (default built-in policy)")
	cmd.Flags().IntVar(&minScore, "min-score", 0, "hide jobs scoring below this")
	return cmd
}

func readJobs(r io.Reader) ([]domain.CandidateJob, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, errors.New("no input")
	}

	if b[0] == '[' {
		var jobs []domain.CandidateJob
		if err := json.Unmarshal(b, &jobs); err != nil {
			return nil, fmt.Errorf("parse jobs: %w", err)
		}
		return jobs, nil
	}
	var job domain.CandidateJob
	if err := json.Unmarshal(b, &job); err != nil {
		return nil, fmt.Errorf("parse job: %w", err)
	}
	return []domain.CandidateJob{job}, nil
}

func renderScores(w io.Writer, engine *rank.Engine, jobs []domain.CandidateJob, minScore int) {
	scored := make([]domain.CandidateJob, 0, len(jobs))
	for _, j := range jobs {
		res := engine.Score(j)
		j.Score = res.Score
		j.KeywordsMatched = res.MatchedKeywords
		j.RoleCategory = engine.InferRoleCategory(j)
		scored = append(scored, j)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Title", "Company", "Score", "Accepted", "Role", "Keywords"})
	for _, j := range rank.FilterByScore(scored, minScore) {
		t.AppendRow(table.Row{
			j.Title,
			j.Company,
			j.Score,
			j.Score >= rank.AcceptanceThreshold,
			j.RoleCategory,
			strings.Join(j.KeywordsMatched, ", "),
		})
	}
	t.Render()
}
