// Package briefs renders deterministic operator briefs from records and their
// scores. The same inputs always produce the same text.
package briefs

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"opsdesk/internal/compliance"
	"opsdesk/internal/heuristics"
	"opsdesk/internal/records"
	"opsdesk/pkg/domain"
)

const (
	dateLayout       = "2006-01-02"
	maxAlertLines    = 5
	maxDealLines     = 3
	noAttentionLabel = "Nothing needs attention."
)

// Brief is a rendered summary. Markdown repeats the other fields as a
// document ready for display.
type Brief struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Highlights  []string  `json:"highlights"`
	GeneratedAt time.Time `json:"generatedAt"`
	Markdown    string    `json:"markdown"`
}

// ShipmentInput is everything known about one shipment.
type ShipmentInput struct {
	Shipment       records.Shipment
	Compliance     compliance.Result
	Risk           heuristics.RiskScore
	Communications []*records.Communication
}

// ShipmentLine summarises a shipment for the daily brief.
type ShipmentLine struct {
	Label    string
	Flagged  bool
	Findings int
	Risk     heuristics.RiskScore
}

// DealLine summarises a deal for the daily brief.
type DealLine struct {
	ID       domain.DealID
	Name     string
	Stage    domain.DealStage
	Value    float64
	Currency string
	Score    int
}

// DailyInput is the state of the whole desk at one point in time.
type DailyInput struct {
	Shipments     []ShipmentLine
	Deals         []DealLine
	Notifications []heuristics.Notification
}

var funcs = template.FuncMap{
	"signed": func(n int) string {
		if n > 0 {
			return fmt.Sprintf("+%d", n)
		}
		return fmt.Sprintf("%d", n)
	},
	"money": money,
}

var (
	shipmentTemplate = template.Must(template.New("shipment").Funcs(funcs).Parse(shipmentMarkdown))
	dailyTemplate    = template.Must(template.New("daily").Funcs(funcs).Parse(dailyMarkdown))
)

const shipmentMarkdown = `# {{.Title}}

{{.Summary}}

## Highlights
{{range .Highlights}}- {{.}}
{{end}}
## Compliance
Status: **{{.Status}}** (checked {{.CheckedAt}})
{{range .Findings}}- {{.}}
{{end}}
## Risk
Score {{.Risk.Score}}/100 ({{.Risk.Level}})
{{range .Risk.Factors}}- {{.Detail}} ({{signed .Impact}})
{{end}}`

const dailyMarkdown = `# {{.Title}}

{{.Summary}}

## Highlights
{{range .Highlights}}- {{.}}
{{end}}
## Notifications
{{if .Notifications}}| Severity | Kind | Message |
|---|---|---|
{{range .Notifications}}| {{.Severity}} | {{.Kind}} | {{.Message}} |
{{end}}{{else}}No open notifications.
{{end}}
## Pipeline
{{if .Deals}}| Deal | Stage | Value | Win likelihood |
|---|---|---|---|
{{range .Deals}}| {{.Name}} | {{.Stage}} | {{money .Value .Currency}} | {{.Score}}% |
{{end}}{{else}}No deals in the pipeline.
{{end}}`

// Shipment renders the brief for a single shipment.
func Shipment(in ShipmentInput, now time.Time) (Brief, error) {
	sh := in.Shipment
	b := Brief{
		Title:       "Shipment " + sh.Label(),
		GeneratedAt: now.UTC(),
	}

	who := ""
	if sh.Customer != "" {
		who = " for " + sh.Customer
	}
	b.Summary = fmt.Sprintf("Shipment %s%s is %s with %s customer-experience risk (%d/100).",
		sh.Label(), who, in.Compliance.Status, in.Risk.Level, in.Risk.Score)

	b.Highlights = append(b.Highlights, in.Compliance.Messages()...)
	if in.Risk.DelayDays > 0 {
		b.Highlights = append(b.Highlights, fmt.Sprintf("Running %d day(s) behind the promised date", in.Risk.DelayDays))
	}
	if n := awaitingReply(in.Communications); n > 0 {
		b.Highlights = append(b.Highlights, fmt.Sprintf("%d inbound message(s) awaiting a reply", n))
	}
	if last := latest(in.Communications); last != nil {
		b.Highlights = append(b.Highlights, fmt.Sprintf("Last %s message via %s %s",
			last.Direction, last.Channel, humanize.RelTime(last.SentAt, now, "ago", "from now")))
	}
	if len(b.Highlights) == 0 {
		b.Highlights = []string{noAttentionLabel}
	}

	view := struct {
		Brief
		Status    compliance.Status
		CheckedAt string
		Findings  []string
		Risk      heuristics.RiskScore
	}{
		Brief:     b,
		Status:    in.Compliance.Status,
		CheckedAt: in.Compliance.FormattedCheckedAt(),
		Findings:  in.Compliance.Messages(),
		Risk:      in.Risk,
	}
	md, err := render(shipmentTemplate, view)
	if err != nil {
		return Brief{}, err
	}
	b.Markdown = md
	return b, nil
}

// Daily renders the desk-wide brief for the day containing now.
func Daily(in DailyInput, now time.Time) (Brief, error) {
	b := Brief{
		Title:       "Daily operations brief " + now.UTC().Format(dateLayout),
		GeneratedAt: now.UTC(),
	}

	flagged, highRisk := 0, 0
	for _, s := range in.Shipments {
		if s.Flagged {
			flagged++
		}
		if s.Risk.Level == heuristics.RiskHigh {
			highRisk++
		}
	}
	deals := openDeals(in.Deals)
	pipeline := 0.0
	for _, d := range deals {
		pipeline += d.Value
	}
	critical := 0
	for _, n := range in.Notifications {
		if n.Severity == heuristics.SeverityCritical {
			critical++
		}
	}
	b.Summary = fmt.Sprintf("%d shipment(s) tracked, %d flagged for compliance and %d at high risk. %d open deal(s) worth %s. %d critical notification(s).",
		len(in.Shipments), flagged, highRisk, len(deals), humanize.Commaf(pipeline), critical)

	alerts := slices.Clone(in.Notifications)
	heuristics.SortNotifications(alerts)
	for _, n := range alerts[:min(len(alerts), maxAlertLines)] {
		b.Highlights = append(b.Highlights, fmt.Sprintf("[%s] %s", n.Severity, n.Message))
	}
	for _, d := range topDeals(deals, maxDealLines) {
		b.Highlights = append(b.Highlights, fmt.Sprintf("Deal %s is at %d%% win likelihood (%s)", d.Name, d.Score, d.Stage))
	}
	if len(b.Highlights) == 0 {
		b.Highlights = []string{noAttentionLabel}
	}

	view := struct {
		Brief
		Notifications []heuristics.Notification
		Deals         []DealLine
	}{Brief: b, Notifications: alerts, Deals: topDeals(in.Deals, len(in.Deals))}
	md, err := render(dailyTemplate, view)
	if err != nil {
		return Brief{}, err
	}
	b.Markdown = md
	return b, nil
}

func render(t *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %s brief: %w", t.Name(), err)
	}
	return sb.String(), nil
}

func awaitingReply(comms []*records.Communication) int {
	n := 0
	for _, c := range comms {
		if c.AwaitingReply() {
			n++
		}
	}
	return n
}

func latest(comms []*records.Communication) *records.Communication {
	var out *records.Communication
	for _, c := range comms {
		if out == nil || c.SentAt.After(out.SentAt) {
			out = c
		}
	}
	return out
}

func openDeals(deals []DealLine) []DealLine {
	var out []DealLine
	for _, d := range deals {
		if !d.Stage.IsClosed() {
			out = append(out, d)
		}
	}
	return out
}

// topDeals orders by score descending, then name, then ID.
func topDeals(deals []DealLine, n int) []DealLine {
	out := slices.Clone(deals)
	slices.SortFunc(out, func(a, b DealLine) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out[:min(len(out), n)]
}

func money(v float64, currency string) string {
	s := humanize.Commaf(v)
	if currency == "" {
		return s
	}
	return currency + " " + s
}
