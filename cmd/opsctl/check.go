package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"opsdesk/internal/compliance"
)

// errFlagged is returned with --strict when any shipment is flagged.
var errFlagged = errors.New("one or more shipments are flagged")

func newCheckCmd(root *rootFlags) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "check <file.json>",
		Short: "Run the compliance rules over a shipment or an array of shipments",
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
			engine := compliance.NewEngine(compliance.WithWatchlists(p.Current().Compliance))

			var out any
			flagged := false
			if isArray(data) {
				var raws []json.RawMessage
				if err := json.Unmarshal(data, &raws); err != nil {
					return fmt.Errorf("decode %s: %w", args[0], err)
				}
				results := make([]compliance.Result, len(raws))
				for i, raw := range raws {
					sh, err := compliance.ToShipment(raw)
					if err != nil {
						return fmt.Errorf("shipments[%d]: %w", i, err)
					}
					results[i] = engine.CheckAt(sh, now)
					flagged = flagged || results[i].Flagged()
				}
				out = results
			} else {
				sh, err := compliance.ToShipment(json.RawMessage(data))
				if err != nil {
					return err
				}
				result := engine.CheckAt(sh, now)
				flagged = result.Flagged()
				out = result
			}

			if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if strict && flagged {
				return errFlagged
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any shipment is flagged")
	return cmd
}

func isArray(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '['
}
