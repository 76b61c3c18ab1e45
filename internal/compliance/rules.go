package compliance

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	pstrings "opsdesk/pkg/platform/strings"
)

// RuleID is the stable identifier of a rule, used in metrics and audit.
type RuleID string

const (
	RuleHeavyCargo       RuleID = "heavy_cargo"
	RuleMissingISF       RuleID = "missing_isf"
	RuleMissingDocuments RuleID = "missing_documents"
	RuleHSCode           RuleID = "hs_code"
	RuleHighRiskPort     RuleID = "high_risk_port"
	RuleMissingShipper   RuleID = "missing_shipper"
	RuleMissingConsignee RuleID = "missing_consignee"
	RuleMissingETA       RuleID = "missing_eta"
)

// Finding is one issue raised by a rule.
type Finding struct {
	RuleID  RuleID `json:"ruleId"`
	Message string `json:"message"`
}

// RuleFunc inspects a shipment and reports at most one finding.
type RuleFunc func(ShipmentView) (Finding, bool)

const (
	msgInvalidHSCode       = "HS code appears invalid or generic"
	msgMissingHSCode       = "Missing HS code or commodity description"
	msgHighRiskPort        = "Route involves a high-risk port (manual review required)"
	msgMissingShipper      = "Missing shipper information"
	msgMissingConsignee    = "Missing consignee information"
	msgMissingETA          = "Missing ETA or arrival date"
	msgMissingISF          = "Missing ISF filing (required for US imports)"
	msgMissingDocumentsFmt = "Missing documents: %s"
	msgHeavyCargoFmt       = "Heavy cargo (>%skg) – needs manual clearance"
)

// BuildRules returns the fixed, ordered rule battery for the given watchlists.
// Order determines finding order only; every rule runs on every shipment.
func BuildRules(w Watchlists) []RuleFunc {
	w = w.Clone()
	return []RuleFunc{
		heavyCargo(w),
		missingISF(w),
		missingDocuments(w),
		hsCode(w),
		highRiskPort(w),
		missingShipper,
		missingConsignee,
		missingETA,
	}
}

func found(id RuleID, msg string) (Finding, bool) {
	return Finding{RuleID: id, Message: msg}, true
}

func heavyCargo(w Watchlists) RuleFunc {
	msg := fmt.Sprintf(msgHeavyCargoFmt, humanize.Commaf(w.HeavyCargoLimitKg))
	return func(s ShipmentView) (Finding, bool) {
		if !pstrings.ContainsAnyFold(s.Port, w.HeavyCargoPorts) {
			return Finding{}, false
		}
		if !s.HasWeight || s.WeightKg <= w.HeavyCargoLimitKg {
			return Finding{}, false
		}
		return found(RuleHeavyCargo, msg)
	}
}

// missingISF matches the ISF marker anywhere in a document name, so a name
// like "Misfiled invoice" also counts as an ISF document.
func missingISF(w Watchlists) RuleFunc {
	return func(s ShipmentView) (Finding, bool) {
		if !pstrings.ContainsAnyFold(s.Port, w.USPorts) {
			return Finding{}, false
		}
		if pstrings.AnyContainsFold(s.Docs, w.ISFMarker) || s.ISFFiled {
			return Finding{}, false
		}
		return found(RuleMissingISF, msgMissingISF)
	}
}

func missingDocuments(w Watchlists) RuleFunc {
	return func(s ShipmentView) (Finding, bool) {
		var missing []string
		for _, required := range w.RequiredDocuments {
			if !pstrings.AnyContainsFold(s.Docs, required) {
				missing = append(missing, required)
			}
		}
		if len(missing) == 0 {
			return Finding{}, false
		}
		return found(RuleMissingDocuments, fmt.Sprintf(msgMissingDocumentsFmt, strings.Join(missing, ", ")))
	}
}

func hsCode(w Watchlists) RuleFunc {
	return func(s ShipmentView) (Finding, bool) {
		if s.HasHSCode {
			code := strings.TrimSpace(s.HSCode)
			if slices.Contains(w.GenericHSCodes, code) || utf8.RuneCountInString(code) < w.MinHSCodeLength {
				return found(RuleHSCode, msgInvalidHSCode)
			}
			return Finding{}, false
		}
		if s.Commodity == "" {
			return found(RuleHSCode, msgMissingHSCode)
		}
		return Finding{}, false
	}
}

func highRiskPort(w Watchlists) RuleFunc {
	return func(s ShipmentView) (Finding, bool) {
		if s.Port == "" || !pstrings.ContainsAnyFold(s.Port, w.HighRiskRegions) {
			return Finding{}, false
		}
		return found(RuleHighRiskPort, msgHighRiskPort)
	}
}

func missingShipper(s ShipmentView) (Finding, bool) {
	if s.Shipper != "" {
		return Finding{}, false
	}
	return found(RuleMissingShipper, msgMissingShipper)
}

func missingConsignee(s ShipmentView) (Finding, bool) {
	if s.Consignee != "" {
		return Finding{}, false
	}
	return found(RuleMissingConsignee, msgMissingConsignee)
}

func missingETA(s ShipmentView) (Finding, bool) {
	if s.ETA != "" || s.ArrivalDate != "" || s.PromisedDate != "" {
		return Finding{}, false
	}
	return found(RuleMissingETA, msgMissingETA)
}

// Evaluate runs every rule in order and collects the findings.
// This is pure domain logic - no I/O, no side effects.
func Evaluate(view ShipmentView, rules []RuleFunc) []Finding {
	findings := make([]Finding, 0, len(rules))
	for _, rule := range rules {
		if f, ok := rule(view); ok {
			findings = append(findings, f)
		}
	}
	return findings
}
