package form

import (
	"fmt"

	"github.com/cardio/cardio/internal/domain/prediction"
)

type fieldID int

const (
	fieldInvalid fieldID = iota
	fieldAge
	fieldGender
	fieldHeight
	fieldWeight
	fieldAPHi
	fieldAPLo
	fieldCholesterol
	fieldGluc
	fieldSmoke
	fieldAlco
	fieldActive
)

// Field names one member of a PatientRecord. The only valid values are the
// package-level variables below; the zero Field is rejected by every update.
type Field struct {
	id fieldID
}

var (
	Age         = Field{fieldAge}
	Gender      = Field{fieldGender}
	Height      = Field{fieldHeight}
	Weight      = Field{fieldWeight}
	APHi        = Field{fieldAPHi}
	APLo        = Field{fieldAPLo}
	Cholesterol = Field{fieldCholesterol}
	Gluc        = Field{fieldGluc}
	Smoke       = Field{fieldSmoke}
	Alco        = Field{fieldAlco}
	Active      = Field{fieldActive}
)

var allFields = []Field{Age, Gender, Height, Weight, APHi, APLo, Cholesterol, Gluc, Smoke, Alco, Active}

var fieldNames = map[fieldID]string{
	fieldAge:         "age",
	fieldGender:      "gender",
	fieldHeight:      "height",
	fieldWeight:      "weight",
	fieldAPHi:        "ap_hi",
	fieldAPLo:        "ap_lo",
	fieldCholesterol: "cholesterol",
	fieldGluc:        "gluc",
	fieldSmoke:       "smoke",
	fieldAlco:        "alco",
	fieldActive:      "active",
}

// Fields returns every field in form order.
func Fields() []Field {
	out := make([]Field, len(allFields))
	copy(out, allFields)
	return out
}

// FieldByName resolves a control name such as "ap_hi".
func FieldByName(name string) (Field, error) {
	for _, f := range allFields {
		if f.Name() == name {
			return f, nil
		}
	}
	return Field{}, fmt.Errorf("unknown field %q", name)
}

// Name is the JSON / control name.
func (f Field) Name() string {
	return fieldNames[f.id]
}

func (f Field) String() string {
	if n := f.Name(); n != "" {
		return n
	}
	return "invalid"
}

// Decimal reports whether number inputs for f keep a fractional part.
func (f Field) Decimal() bool {
	return f.id == fieldHeight || f.id == fieldWeight
}

// Binary reports whether f is a 0/1 radio field.
func (f Field) Binary() bool {
	return f.id == fieldSmoke || f.id == fieldAlco || f.id == fieldActive
}

func (f Field) valid() bool {
	return f.id > fieldInvalid && f.id <= fieldActive
}

func (f Field) setInt(r *prediction.PatientRecord, v int) {
	switch f.id {
	case fieldAge:
		r.Age = v
	case fieldGender:
		r.Gender = v
	case fieldHeight:
		r.Height = float64(v)
	case fieldWeight:
		r.Weight = float64(v)
	case fieldAPHi:
		r.APHi = v
	case fieldAPLo:
		r.APLo = v
	case fieldCholesterol:
		r.Cholesterol = v
	case fieldGluc:
		r.Gluc = v
	case fieldSmoke:
		r.Smoke = v
	case fieldAlco:
		r.Alco = v
	case fieldActive:
		r.Active = v
	}
}

func (f Field) setFloat(r *prediction.PatientRecord, v float64) {
	switch f.id {
	case fieldHeight:
		r.Height = v
	case fieldWeight:
		r.Weight = v
	default:
		f.setInt(r, int(v))
	}
}
