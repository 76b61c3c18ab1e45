package compliance

import "slices"

// Watchlists is the static reference data the rules match against. Matching
// is case-insensitive substring containment.
type Watchlists struct {
	HeavyCargoPorts   []string `yaml:"heavy_cargo_ports" json:"heavyCargoPorts"`
	HeavyCargoLimitKg float64  `yaml:"heavy_cargo_limit_kg" json:"heavyCargoLimitKg"`
	USPorts           []string `yaml:"us_ports" json:"usPorts"`
	ISFMarker         string   `yaml:"isf_marker" json:"isfMarker"`
	RequiredDocuments []string `yaml:"required_documents" json:"requiredDocuments"`
	GenericHSCodes    []string `yaml:"generic_hs_codes" json:"genericHsCodes"`
	MinHSCodeLength   int      `yaml:"min_hs_code_length" json:"minHsCodeLength"`
	HighRiskRegions   []string `yaml:"high_risk_regions" json:"highRiskRegions"`
}

// DefaultWatchlists returns a fresh copy of the built-in reference data.
func DefaultWatchlists() Watchlists {
	return Watchlists{
		HeavyCargoPorts:   []string{"LAX", "Long Beach", "Los Angeles", "LGB"},
		HeavyCargoLimitKg: 25000,
		USPorts:           []string{"LAX", "Long Beach", "Los Angeles", "LGB", "NYC", "New York", "Savannah", "Charleston", "Miami"},
		ISFMarker:         "ISF",
		RequiredDocuments: []string{"Bill of Lading", "Commercial Invoice"},
		GenericHSCodes:    []string{"0000", "9999"},
		MinHSCodeLength:   4,
		HighRiskRegions:   []string{"IRAN", "NORTH KOREA", "SYRIA", "RUSSIA"},
	}
}

// Merge overlays the non-empty fields of o onto w.
func (w Watchlists) Merge(o Watchlists) Watchlists {
	out := w.Clone()
	if len(o.HeavyCargoPorts) > 0 {
		out.HeavyCargoPorts = slices.Clone(o.HeavyCargoPorts)
	}
	if o.HeavyCargoLimitKg > 0 {
		out.HeavyCargoLimitKg = o.HeavyCargoLimitKg
	}
	if len(o.USPorts) > 0 {
		out.USPorts = slices.Clone(o.USPorts)
	}
	if o.ISFMarker != "" {
		out.ISFMarker = o.ISFMarker
	}
	if len(o.RequiredDocuments) > 0 {
		out.RequiredDocuments = slices.Clone(o.RequiredDocuments)
	}
	if len(o.GenericHSCodes) > 0 {
		out.GenericHSCodes = slices.Clone(o.GenericHSCodes)
	}
	if o.MinHSCodeLength > 0 {
		out.MinHSCodeLength = o.MinHSCodeLength
	}
	if len(o.HighRiskRegions) > 0 {
		out.HighRiskRegions = slices.Clone(o.HighRiskRegions)
	}
	return out
}

// Clone deep-copies the lists so engines never share mutable slices.
func (w Watchlists) Clone() Watchlists {
	out := w
	out.HeavyCargoPorts = slices.Clone(w.HeavyCargoPorts)
	out.USPorts = slices.Clone(w.USPorts)
	out.RequiredDocuments = slices.Clone(w.RequiredDocuments)
	out.GenericHSCodes = slices.Clone(w.GenericHSCodes)
	out.HighRiskRegions = slices.Clone(w.HighRiskRegions)
	return out
}
