// Package compliance evaluates shipments against a fixed battery of customs and
// documentation rules. The engine is pure: it reads the clock and nothing else,
// so it may be called concurrently without coordination.
package compliance

import (
	"bytes"
	"encoding/json"
	"time"

	dErrors "opsdesk/pkg/domain-errors"
)

// Engine runs the ordered rule list built from its watchlists.
type Engine struct {
	watchlists Watchlists
	rules      []RuleFunc
	now        func() time.Time
}

type Option func(*Engine)

// WithWatchlists replaces the default reference data.
func WithWatchlists(w Watchlists) Option {
	return func(e *Engine) {
		e.watchlists = w.Clone()
	}
}

// WithClock injects the time source used for checkedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		watchlists: DefaultWatchlists(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.rules = BuildRules(e.watchlists)
	return e
}

// Check evaluates a shipment at the engine's current time.
func (e *Engine) Check(s Shipment) Result {
	return e.CheckAt(s, e.now())
}

// CheckAt evaluates a shipment with an explicit evaluation time.
func (e *Engine) CheckAt(s Shipment, at time.Time) Result {
	return BuildResult(Evaluate(s.View(), e.rules), at)
}

// Watchlists returns a copy of the reference data in use.
func (e *Engine) Watchlists() Watchlists {
	return e.watchlists.Clone()
}

// Record is implemented by stored records that wrap a Shipment.
type Record interface {
	ComplianceShipment() Shipment
}

// CheckRecord evaluates any record-shaped value: a Shipment, a *Shipment, a
// Record, a map with string keys, or a JSON object. Anything else yields a
// CodeInvalidInput error; this is the only error the engine returns.
func (e *Engine) CheckRecord(v any) (Result, error) {
	s, err := ToShipment(v)
	if err != nil {
		return Result{}, err
	}
	return e.Check(s), nil
}

// ToShipment converts a record-shaped value into a Shipment.
func ToShipment(v any) (Shipment, error) {
	switch rec := v.(type) {
	case Shipment:
		return rec, nil
	case *Shipment:
		if rec == nil {
			return Shipment{}, invalidInput()
		}
		return *rec, nil
	case Record:
		return rec.ComplianceShipment(), nil
	case map[string]any:
		if rec == nil {
			return Shipment{}, invalidInput()
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return Shipment{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "shipment record is not serializable")
		}
		return decodeObject(data)
	case json.RawMessage:
		return decodeObject(rec)
	case []byte:
		return decodeObject(rec)
	default:
		return Shipment{}, invalidInput()
	}
}

func decodeObject(data []byte) (Shipment, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return Shipment{}, invalidInput()
	}
	var s Shipment
	if err := json.Unmarshal(data, &s); err != nil {
		return Shipment{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "shipment must be a JSON object")
	}
	return s, nil
}

func invalidInput() error {
	return dErrors.New(dErrors.CodeInvalidInput, "shipment must be a record")
}
