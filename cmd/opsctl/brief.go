package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"opsdesk/internal/briefs"
	compliancesvc "opsdesk/internal/compliance/service"
	dashsvc "opsdesk/internal/dashboard/service"
	dashstore "opsdesk/internal/dashboard/store"
	heuristicsconfig "opsdesk/internal/heuristics/config"
	"opsdesk/internal/records"
	recordssvc "opsdesk/internal/records/service"
	recordsstore "opsdesk/internal/records/store"
	"opsdesk/pkg/requestcontext"
)

// bundle is an export of every record on the desk.
type bundle struct {
	Shipments      []*records.Shipment      `json:"shipments"`
	Deals          []*records.Deal          `json:"deals"`
	Communications []*records.Communication `json:"communications"`
}

type briefFlags struct {
	shipment string
	format   string
	width    int
}

func newBriefCmd(root *rootFlags) *cobra.Command {
	flags := &briefFlags{}
	cmd := &cobra.Command{
		Use:   "brief <bundle.json>",
		Short: "Render the daily brief, or one shipment's brief, for a record bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readFile(args[0])
			if err != nil {
				return err
			}
			var b bundle
			if err := json.Unmarshal(data, &b); err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}
			p, err := root.provider()
			if err != nil {
				return err
			}
			now, err := root.now()
			if err != nil {
				return err
			}

			ctx := requestcontext.WithTime(cmd.Context(), now)
			brief, err := renderBundle(ctx, b, p, flags.shipment)
			if err != nil {
				return err
			}
			return printBrief(cmd.OutOrStdout(), brief, flags)
		},
	}
	cmd.Flags().StringVar(&flags.shipment, "shipment", "", "shipment ID or reference for a single-shipment brief")
	cmd.Flags().StringVar(&flags.format, "format", "terminal", "output format: terminal, markdown, json")
	cmd.Flags().IntVar(&flags.width, "width", 80, "word wrap width for terminal output")
	return cmd
}

// renderBundle loads the bundle into in-memory services and asks the
// dashboard for the brief.
func renderBundle(ctx context.Context, b bundle, p *heuristicsconfig.Provider, shipment string) (briefs.Brief, error) {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := recordssvc.New(recordsstore.NewInMemory(), recordssvc.WithLogger(quiet))

	var target *records.Shipment
	for _, sh := range b.Shipments {
		created, err := rec.CreateShipment(ctx, sh)
		if err != nil {
			return briefs.Brief{}, fmt.Errorf("load shipment %s: %w", sh.Label(), err)
		}
		if shipment != "" && (created.ID.String() == shipment || created.Reference == shipment) {
			target = created
		}
	}
	for _, d := range b.Deals {
		if _, err := rec.CreateDeal(ctx, d); err != nil {
			return briefs.Brief{}, fmt.Errorf("load deal %q: %w", d.Name, err)
		}
	}
	for _, c := range b.Communications {
		if _, err := rec.CreateCommunication(ctx, c); err != nil {
			return briefs.Brief{}, fmt.Errorf("load communication: %w", err)
		}
	}

	comp := compliancesvc.New(p.Current().Compliance, compliancesvc.WithShipments(rec), compliancesvc.WithLogger(quiet))
	dash := dashsvc.New(rec, comp, p, dashstore.NewInMemory(0), dashsvc.WithLogger(quiet))

	if shipment == "" {
		return dash.DailyBrief(ctx)
	}
	if target == nil {
		return briefs.Brief{}, fmt.Errorf("shipment %q not found in bundle", shipment)
	}
	return dash.ShipmentBrief(ctx, target.ID)
}

func printBrief(w io.Writer, b briefs.Brief, flags *briefFlags) error {
	switch flags.format {
	case "json":
		return writeJSON(w, b)
	case "markdown":
		_, err := io.WriteString(w, b.Markdown)
		return err
	case "terminal":
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(flags.width),
		)
		if err != nil {
			return fmt.Errorf("create renderer: %w", err)
		}
		out, err := r.Render(b.Markdown)
		if err != nil {
			return fmt.Errorf("render brief: %w", err)
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		return fmt.Errorf("unsupported format %q", flags.format)
	}
}
