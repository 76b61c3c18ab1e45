package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	heuristicsconfig "opsdesk/internal/heuristics/config"
)

type rootFlags struct {
	heuristics string
	at         string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "opsctl",
		Short: "Operations desk tooling",
		Long: `opsctl evaluates shipments, deals and record bundles offline using the
same rules and heuristics as the opsdesk server.

Examples:
  # Compliance check a shipment or an array of shipments
  opsctl check shipment.json

  # Score a deal
  opsctl score deal.json

  # Render the daily brief for a bundle of records
  opsctl brief bundle.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.heuristics, "heuristics", os.Getenv("HEURISTICS_CONFIG"), "heuristics YAML file (defaults when empty)")
	cmd.PersistentFlags().StringVar(&flags.at, "at", "", "evaluation time as RFC3339 (defaults to now)")

	cmd.AddCommand(
		newCheckCmd(flags),
		newScoreCmd(flags),
		newBriefCmd(flags),
		newTokenCmd(),
	)
	return cmd
}

func (f *rootFlags) provider() (*heuristicsconfig.Provider, error) {
	p, err := heuristicsconfig.New(f.heuristics)
	if err != nil {
		return nil, fmt.Errorf("load heuristics config: %w", err)
	}
	return p, nil
}

func (f *rootFlags) now() (time.Time, error) {
	if f.at == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, f.at)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at %q: %w", f.at, err)
	}
	return t.UTC(), nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
