// Package form holds the client side of the prediction pipeline: the
// patient record being edited and the submission state machine
// (Idle -> Loading -> Succeeded | Failed, re-entrant on every Submit).
//
// Overlapping submissions are ordered by a sequence counter. Only the
// settlement of the most recently issued Submit is applied; earlier ones are
// dropped, so a slow stale response can never overwrite newer state.
package form

import (
	"context"
	"fmt"
	"sync"

	"github.com/cardio/cardio/internal/domain/prediction"
)

// DefaultErrorMessage is shown when a failure carries no message of its own.
const DefaultErrorMessage = "An error occurred during prediction."

// Form is safe for concurrent use.
type Form struct {
	predictor Predictor

	mu      sync.Mutex
	record  prediction.PatientRecord
	touched map[Field]bool
	state   State
	seq     uint64
}

// New returns an Idle form with a zeroed record.
func New(predictor Predictor) *Form {
	return &Form{
		predictor: predictor,
		touched:   make(map[Field]bool),
	}
}

// UpdateField stores raw into f. Number inputs on decimal fields keep the
// fraction; every other combination is read as an integer. Values are not
// range-checked. On a parse error the record is left unchanged.
func (f *Form) UpdateField(field Field, raw string, kind InputKind) error {
	if !field.valid() {
		return fmt.Errorf("update field: invalid field")
	}

	if kind == InputNumber && field.Decimal() {
		v, err := parseDecimal(raw)
		if err != nil {
			return fmt.Errorf("update %s: %w", field, err)
		}
		f.mu.Lock()
		field.setFloat(&f.record, v)
		f.touched[field] = true
		f.mu.Unlock()
		return nil
	}

	v, err := parseInteger(raw)
	if err != nil {
		return fmt.Errorf("update %s: %w", field, err)
	}
	f.mu.Lock()
	field.setInt(&f.record, v)
	f.touched[field] = true
	f.mu.Unlock()
	return nil
}

// UpdateRadioField stores raw into one of the binary fields, always as an
// integer.
func (f *Form) UpdateRadioField(field Field, raw string) error {
	return f.UpdateField(field, raw, InputRadio)
}

// Record returns a copy of the current record.
func (f *Form) Record() prediction.PatientRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record
}

// Missing lists the fields nobody has set yet, in form order.
func (f *Form) Missing() []Field {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Field
	for _, field := range allFields {
		if !f.touched[field] {
			out = append(out, field)
		}
	}
	return out
}

// State returns the current submission state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Submit clears any previous result, enters Loading, sends the record and
// settles into Succeeded or Failed. It returns the state after settlement.
// If a newer Submit started in the meantime this call's outcome is dropped
// and the returned state is whatever the newer submission has produced.
func (f *Form) Submit(ctx context.Context) State {
	f.mu.Lock()
	f.seq++
	seq := f.seq
	f.state = State{Phase: Loading}
	record := f.record
	f.mu.Unlock()

	next := f.settle(ctx, record)

	f.mu.Lock()
	defer f.mu.Unlock()
	if seq == f.seq {
		f.state = next
	}
	return f.state
}

func (f *Form) settle(ctx context.Context, record prediction.PatientRecord) (st State) {
	defer func() {
		if r := recover(); r != nil {
			st = failed(fmt.Sprint(r))
			if st.Message == "" {
				st.Message = DefaultErrorMessage
			}
		}
	}()

	value, err := f.predictor.Predict(ctx, record)
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = DefaultErrorMessage
		}
		return failed(msg)
	}
	return succeeded(value)
}
