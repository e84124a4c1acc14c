package form

import "fmt"

// Phase is the lifecycle stage of a submission.
type Phase int

const (
	Idle Phase = iota
	Loading
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// State is a tagged variant: Prediction is meaningful only when Phase is
// Succeeded and Message only when Phase is Failed.
type State struct {
	Phase      Phase
	Prediction int
	Message    string
}

func succeeded(prediction int) State {
	return State{Phase: Succeeded, Prediction: prediction}
}

func failed(message string) State {
	return State{Phase: Failed, Message: message}
}

func (s State) String() string {
	switch s.Phase {
	case Succeeded:
		return fmt.Sprintf("succeeded(%d)", s.Prediction)
	case Failed:
		return fmt.Sprintf("failed(%q)", s.Message)
	}
	return s.Phase.String()
}
