package form

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// InputKind is the kind of control a raw value came from.
type InputKind int

const (
	InputNumber InputKind = iota
	InputSelect
	InputRadio
)

func (k InputKind) String() string {
	switch k {
	case InputNumber:
		return "number"
	case InputSelect:
		return "select"
	case InputRadio:
		return "radio"
	}
	return "unknown"
}

var (
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// parseInteger reads the leading integer of raw, ignoring whatever follows:
// "45" and "45.9" both give 45.
func parseInteger(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	m := intPrefix.FindString(s)
	if m == "" {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return 0, fmt.Errorf("%q is out of range: %w", raw, err)
	}
	return v, nil
}

// parseDecimal reads the leading decimal number of raw. NaN and infinities
// are never produced.
func parseDecimal(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	m := floatPrefix.FindString(s)
	if m == "" {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is out of range: %w", raw, err)
	}
	return v, nil
}
