package domain

import dErrors "opsdesk/pkg/domain-errors"

// DealStage is the pipeline position of a commercial deal.
// Invariant: the value must be one of the supported stages.
//
// Usage: construct via ParseDealStage at trust boundaries; direct casting
// bypasses validation.
type DealStage string

const (
	DealStageProspect    DealStage = "prospect"
	DealStageQualified   DealStage = "qualified"
	DealStageProposal    DealStage = "proposal"
	DealStageNegotiation DealStage = "negotiation"
	DealStageWon         DealStage = "won"
	DealStageLost        DealStage = "lost"
)

var validDealStages = map[DealStage]bool{
	DealStageProspect:    true,
	DealStageQualified:   true,
	DealStageProposal:    true,
	DealStageNegotiation: true,
	DealStageWon:         true,
	DealStageLost:        true,
}

// ParseDealStage constructs a DealStage from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseDealStage(s string) (DealStage, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "stage cannot be empty")
	}
	st := DealStage(s)
	if !st.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid stage")
	}
	return st, nil
}

// IsValid checks if the stage is one of the supported enum values.
func (s DealStage) IsValid() bool {
	return validDealStages[s]
}

// IsClosed reports whether the deal has reached a terminal stage.
func (s DealStage) IsClosed() bool {
	return s == DealStageWon || s == DealStageLost
}

func (s DealStage) String() string {
	return string(s)
}
