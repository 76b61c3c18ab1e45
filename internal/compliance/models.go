package compliance

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Shipment is the flat record the rules inspect. Every field is optional:
// an empty Text, an unset Quantity or a nil DocList means the field is absent.
// JSON decoding is lenient so loosely typed upstream records decode without error.
type Shipment struct {
	Port         Text     `json:"port,omitempty"`
	Weight       Quantity `json:"weight,omitzero"`
	Docs         DocList  `json:"docs,omitzero"`
	Documents    DocList  `json:"documents,omitzero"`
	HSCode       Text     `json:"hsCode,omitempty"`
	Commodity    Text     `json:"commodity,omitempty"`
	Shipper      Text     `json:"shipper,omitempty"`
	Consignee    Text     `json:"consignee,omitempty"`
	ETA          Text     `json:"eta,omitempty"`
	ArrivalDate  Text     `json:"arrivalDate,omitempty"`
	PromisedDate Text     `json:"promisedDate,omitempty"`
	ISFFiled     Flag     `json:"isfFiled,omitempty"`
}

// ShipmentView is the normalized, read-only projection the rules evaluate.
type ShipmentView struct {
	Port         string
	WeightKg     float64
	HasWeight    bool
	Docs         []string
	HSCode       string
	HasHSCode    bool
	Commodity    string
	Shipper      string
	Consignee    string
	ETA          string
	ArrivalDate  string
	PromisedDate string
	ISFFiled     bool
}

// View resolves aliases and optional fields. docs wins over documents whenever
// it is present, even if empty.
func (s Shipment) View() ShipmentView {
	docs := s.Documents
	if s.Docs != nil {
		docs = s.Docs
	}
	weight, hasWeight := s.Weight.Get()
	return ShipmentView{
		Port:         string(s.Port),
		WeightKg:     weight,
		HasWeight:    hasWeight,
		Docs:         []string(docs),
		HSCode:       string(s.HSCode),
		HasHSCode:    s.HSCode != "",
		Commodity:    string(s.Commodity),
		Shipper:      string(s.Shipper),
		Consignee:    string(s.Consignee),
		ETA:          string(s.ETA),
		ArrivalDate:  string(s.ArrivalDate),
		PromisedDate: string(s.PromisedDate),
		ISFFiled:     bool(s.ISFFiled),
	}
}

// DocumentList returns the effective documents after alias resolution.
func (s Shipment) DocumentList() []string {
	return s.View().Docs
}

// Text is an optional string. JSON strings decode as-is, numbers decode to
// their decimal form (hsCode often arrives as a number), and null, booleans,
// arrays and objects decode as absent.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*t = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		*t = Text(json.Number(data).String())
	default:
		*t = ""
	}
	return nil
}

// Quantity is an optional number. JSON numbers and numeric strings decode;
// anything else decodes as absent.
type Quantity struct {
	value float64
	ok    bool
}

// Kg builds a present Quantity.
func Kg(v float64) Quantity {
	return Quantity{value: v, ok: true}
}

func (q Quantity) Get() (float64, bool) {
	return q.value, q.ok
}

func (q Quantity) IsZero() bool {
	return !q.ok
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	if !q.ok {
		return []byte("null"), nil
	}
	return json.Marshal(q.value)
}

func (q *Quantity) UnmarshalJSON(data []byte) error {
	*q = Quantity{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}
	if raw == "" || raw == "null" || raw == "true" || raw == "false" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	*q = Kg(v)
	return nil
}

// DocList is an optional list of document names. nil means absent; an empty,
// non-nil list means present but empty. Non-string entries are skipped and a
// non-array value decodes as absent.
type DocList []string

func (d *DocList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		*d = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(DocList, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
		}
	}
	*d = out
	return nil
}

// Flag is a loosely typed boolean: true, non-empty strings, non-zero numbers,
// arrays and objects are true; false, "", 0 and null are false.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*f = false
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case 't':
		*f = true
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = s != ""
	case '[', '{':
		*f = true
	case 'f', 'n':
	default:
		v, err := strconv.ParseFloat(string(data), 64)
		*f = err == nil && v != 0
	}
	return nil
}
