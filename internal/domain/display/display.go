// Package display turns a submission state into what the user sees.
package display

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/cardio/cardio/internal/domain/form"
	"github.com/cardio/cardio/internal/domain/prediction"
)

// Kind selects which result block is shown.
type Kind int

const (
	None Kind = iota
	HighRisk
	LowRisk
	Error
)

func (k Kind) String() string {
	switch k {
	case HighRisk:
		return "high-risk"
	case LowRisk:
		return "low-risk"
	case Error:
		return "error"
	}
	return "none"
}

// Submit button labels.
const (
	LabelPredict    = "Predict"
	LabelPredicting = "Predicting..."
)

// Picker chooses an index in [0, n). *rand.Rand satisfies it.
type Picker interface {
	IntN(n int) int
}

type globalPicker struct{}

func (globalPicker) IntN(n int) int { return rand.IntN(n) }

// DefaultPicker draws from the process-wide random source.
var DefaultPicker Picker = globalPicker{}

// View is everything the page needs to render one state.
type View struct {
	Kind           Kind
	Quote          string
	Tip            string
	ImageURL       string
	Message        string
	SubmitDisabled bool
	SubmitLabel    string
}

// Render maps st to a View. Any succeeded prediction other than exactly 1
// renders as low risk.
func Render(st form.State, p Picker) View {
	if p == nil {
		p = DefaultPicker
	}

	v := View{SubmitLabel: LabelPredict}
	switch st.Phase {
	case form.Loading:
		v.SubmitDisabled = true
		v.SubmitLabel = LabelPredicting
	case form.Succeeded:
		if st.Prediction == prediction.HighRisk {
			v.Kind = HighRisk
			v.Quote = pick(Quotes, p)
		} else {
			v.Kind = LowRisk
			v.Tip = pick(Tips, p)
			v.ImageURL = pick(Images, p)
		}
	case form.Failed:
		v.Kind = Error
		v.Message = st.Message
	}
	return v
}

func pick(items []string, p Picker) string {
	if len(items) == 0 {
		return ""
	}
	return items[p.IntN(len(items))]
}

// Text formats v for a terminal.
func Text(v View) string {
	var b strings.Builder
	switch v.Kind {
	case HighRisk:
		b.WriteString("Prediction: HIGH risk of cardiovascular disease.\n")
		b.WriteString("Please consult a healthcare professional.\n\n")
		fmt.Fprintf(&b, "\"%s\"\n", v.Quote)
	case LowRisk:
		b.WriteString("Prediction: LOW risk of cardiovascular disease.\n\n")
		fmt.Fprintf(&b, "Tip: %s\n", v.Tip)
		fmt.Fprintf(&b, "View: %s\n", v.ImageURL)
	case Error:
		fmt.Fprintf(&b, "Error: %s\n", v.Message)
	default:
		fmt.Fprintf(&b, "[%s]\n", v.SubmitLabel)
	}
	return b.String()
}
