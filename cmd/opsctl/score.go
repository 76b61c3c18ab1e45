package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"opsdesk/internal/heuristics"
	"opsdesk/internal/records"
)

func newScoreCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "score <file.json>",
		Short: "Compute the win likelihood of a deal or an array of deals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readFile(args[0])
			if err != nil {
				return err
			}
			p, err := root.provider()
			if err != nil {
				return err
			}
			now, err := root.now()
			if err != nil {
				return err
			}
			engine := heuristics.NewEngine(p.Current())

			if isArray(data) {
				var deals []records.Deal
				if err := json.Unmarshal(data, &deals); err != nil {
					return fmt.Errorf("decode %s: %w", args[0], err)
				}
				scores := make([]heuristics.WinScore, len(deals))
				for i, d := range deals {
					scores[i] = engine.WinLikelihood(d, now)
				}
				return writeJSON(cmd.OutOrStdout(), scores)
			}

			var deal records.Deal
			if err := json.Unmarshal(data, &deal); err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}
			return writeJSON(cmd.OutOrStdout(), engine.WinLikelihood(deal, now))
		},
	}
}
