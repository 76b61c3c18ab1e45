package heuristics

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/dustin/go-humanize"

	"opsdesk/internal/compliance"
	"opsdesk/internal/records"
	"opsdesk/pkg/domain"
	pstrings "opsdesk/pkg/platform/strings"
)

const (
	maxCompetitors = 3
	delayCap       = 40
	findingsCap    = 25
	unansweredCap  = 30
	sentimentCap   = 20
	hoursPerDay    = 24
	scoreFloor     = 0
	scoreCeiling   = 100
)

var stageBase = map[domain.DealStage]int{
	domain.DealStageProspect:    10,
	domain.DealStageQualified:   25,
	domain.DealStageProposal:    45,
	domain.DealStageNegotiation: 65,
	domain.DealStageWon:         100,
	domain.DealStageLost:        0,
}

// Engine applies one settings snapshot.
type Engine struct {
	settings Settings
}

func NewEngine(settings Settings) *Engine {
	return &Engine{settings: settings.Clone()}
}

func (e *Engine) Settings() Settings {
	return e.settings.Clone()
}

// WinLikelihood scores a deal. Won and lost deals keep their stage base.
func (e *Engine) WinLikelihood(d records.Deal, now time.Time) WinScore {
	w := e.settings.Weights
	base := stageBase[d.Stage]
	score := WinScore{
		DealID:  d.ID,
		Factors: []Factor{{Code: "stage", Impact: base, Detail: "stage " + string(d.Stage)}},
	}
	if d.Stage.IsClosed() {
		score.Score = base
		return score
	}

	total := base
	add := func(code string, impact int, detail string) {
		if impact == 0 {
			return
		}
		total += impact
		score.Factors = append(score.Factors, Factor{Code: code, Impact: impact, Detail: detail})
	}

	if d.ChampionIdentified {
		add("champion_identified", w.ChampionIdentified, "champion identified")
	}
	if d.QuoteSent {
		add("quote_sent", w.QuoteSent, "quote sent")
	}
	if competitors := min(max(d.CompetitorCount, 0), maxCompetitors); competitors > 0 {
		add("competitors", -competitors*w.CompetitorPenalty, fmt.Sprintf("%d competitor(s)", d.CompetitorCount))
	}
	followUp := time.Duration(e.settings.SLA.DealFollowUpDays) * hoursPerDay * time.Hour
	switch {
	case d.LastContactAt == nil:
		add("stale_contact", -w.StaleContact, "no contact recorded")
	case now.Sub(*d.LastContactAt) > followUp:
		add("stale_contact", -w.StaleContact, "last contact "+humanize.RelTime(*d.LastContactAt, now, "ago", "from now"))
	}
	if d.ExpectedCloseAt != nil && d.ExpectedCloseAt.Before(now) {
		add("overdue_close", -w.OverdueClose, "expected close "+humanize.RelTime(*d.ExpectedCloseAt, now, "ago", "from now"))
	}

	score.Score = clamp(total)
	return score
}

// CXRisk scores a shipment from its delay, compliance findings and the
// communications linked to it.
func (e *Engine) CXRisk(s records.Shipment, findings []compliance.Finding, comms []*records.Communication, now time.Time) RiskScore {
	w := e.settings.Weights
	risk := RiskScore{ShipmentID: s.ID, Factors: []Factor{}}
	total := 0
	add := func(code string, impact int, detail string) {
		if impact <= 0 {
			return
		}
		total += impact
		risk.Factors = append(risk.Factors, Factor{Code: code, Impact: impact, Detail: detail})
	}

	if delay, ok := DelayDays(s.Shipment); ok {
		risk.DelayDays = delay
		if delay > 0 {
			add("delay", min(delay*w.DelayPerDay, delayCap), fmt.Sprintf("%d day(s) behind promise", delay))
		}
	}
	if n := len(findings); n > 0 {
		add("compliance_findings", min(n*w.ComplianceFinding, findingsCap), fmt.Sprintf("%d compliance finding(s)", n))
	}

	unanswered, negative := 0, 0
	for _, c := range comms {
		if e.overdueReply(c, now) {
			unanswered++
		}
		if pstrings.ContainsAnyFold(c.Subject, e.settings.NegativeKeywords) ||
			pstrings.ContainsAnyFold(c.Body, e.settings.NegativeKeywords) {
			negative++
		}
	}
	if unanswered > 0 {
		add("unanswered_messages", min(unanswered*w.UnansweredMessage, unansweredCap), fmt.Sprintf("%d unanswered message(s)", unanswered))
	}
	if negative > 0 {
		add("negative_sentiment", min(negative*w.NegativeSentiment, sentimentCap), fmt.Sprintf("%d negative message(s)", negative))
	}

	risk.Score = clamp(total)
	risk.Level = LevelFor(risk.Score)
	return risk
}

// overdueReply reports an inbound message left unanswered past the SLA.
func (e *Engine) overdueReply(c *records.Communication, now time.Time) bool {
	window := time.Duration(e.settings.SLA.ResponseHours) * time.Hour
	return c.AwaitingReply() && now.Sub(c.SentAt) > window
}

// Notifications derives every active alert from a snapshot. findings holds the
// compliance findings per shipment; shipments missing from it are treated as
// cleared. The result is ordered by severity, then creation time, then ID.
func (e *Engine) Notifications(snap records.Snapshot, findings map[domain.ShipmentID][]compliance.Finding, now time.Time) []Notification {
	sla := e.settings.SLA
	var out []Notification

	for _, sh := range snap.Shipments {
		id := sh.ID.String()
		label := sh.Label()

		if eta, ok := ParseDate(sh.ETA); ok && sh.ArrivalDate == "" {
			due := eta.Add(time.Duration(sla.ArrivalGraceHours) * time.Hour)
			if now.After(due) {
				out = append(out, newNotification(KindOverdueArrival, SeverityWarning, SubjectShipment, id,
					fmt.Sprintf("Shipment %s was due %s and has no arrival recorded", label, humanize.RelTime(eta, now, "ago", "from now")),
					due))
			}
		}
		if delay, ok := DelayDays(sh.Shipment); ok && delay > sla.MaxDelayDays {
			out = append(out, newNotification(KindSLADelay, SeverityCritical, SubjectShipment, id,
				fmt.Sprintf("Shipment %s is %d days behind its promised date", label, delay),
				now))
		}
		if f := findings[sh.ID]; len(f) > 0 {
			out = append(out, newNotification(KindComplianceFlagged, SeverityWarning, SubjectShipment, id,
				fmt.Sprintf("Shipment %s has %d compliance finding(s): %s", label, len(f), f[0].Message),
				now))
		}
		risk := e.CXRisk(*sh, findings[sh.ID], snap.CommunicationsFor(sh.ID), now)
		if risk.Level == RiskHigh {
			out = append(out, newNotification(KindCXRisk, SeverityCritical, SubjectShipment, id,
				fmt.Sprintf("Shipment %s has high customer-experience risk (%d/100)", label, risk.Score),
				now))
		}
	}

	for _, c := range snap.Communications {
		if !e.overdueReply(c, now) {
			continue
		}
		from := c.From
		if from == "" {
			from = "unknown sender"
		}
		due := c.SentAt.Add(time.Duration(sla.ResponseHours) * time.Hour)
		out = append(out, newNotification(KindUnansweredMessage, SeverityWarning, SubjectCommunication, c.ID.String(),
			fmt.Sprintf("Message from %s received %s is still unanswered", from, humanize.RelTime(c.SentAt, now, "ago", "from now")),
			due))
	}

	followUp := time.Duration(sla.DealFollowUpDays) * hoursPerDay * time.Hour
	for _, d := range snap.Deals {
		if d.Stage.IsClosed() {
			continue
		}
		last, detail := d.CreatedAt, "has had no contact since it was opened"
		if d.LastContactAt != nil {
			last, detail = *d.LastContactAt, "was last contacted"
		}
		if now.Sub(last) <= followUp {
			continue
		}
		out = append(out, newNotification(KindStaleDeal, SeverityInfo, SubjectDeal, d.ID.String(),
			fmt.Sprintf("Deal %s %s %s", d.Name, detail, humanize.RelTime(last, now, "ago", "from now")),
			last.Add(followUp)))
	}

	SortNotifications(out)
	return out
}

// SortNotifications orders critical first, then oldest first, then by ID.
func SortNotifications(list []Notification) {
	slices.SortFunc(list, func(a, b Notification) int {
		if c := cmp.Compare(b.Severity.Rank(), a.Severity.Rank()); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
}

func clamp(v int) int {
	return min(max(v, scoreFloor), scoreCeiling)
}
