// Package validate checks raw amount input before any quote is requested.
package validate

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/dustin/go-humanize"
)

// Kind classifies raw input.
type Kind int

const (
	Empty Kind = iota
	NotNumeric
	OutOfRange
	Valid
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case NotNumeric:
		return "not_numeric"
	case OutOfRange:
		return "out_of_range"
	case Valid:
		return "valid"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Default bounds for the fiat amount.
const (
	DefaultMinAmount = 50
	DefaultMaxAmount = 20_000
)

var digits = regexp.MustCompile(`^[0-9]+$`)

// State is the outcome of validating one input text.
type State struct {
	Kind   Kind
	Amount int
	Min    int
	Max    int
}

// OK reports whether a quote request may be issued for the input.
func (s State) OK() bool { return s.Kind == Valid }

// Message is the user-facing explanation, empty for valid input.
func (s State) Message() string {
	switch s.Kind {
	case Empty:
		return fmt.Sprintf("Type a number in range %s–%s", humanize.Comma(int64(s.Min)), humanize.Comma(int64(s.Max)))
	case NotNumeric:
		return "Input must be a positive number"
	case OutOfRange:
		return fmt.Sprintf("Input must be a number between %s and %s", humanize.Comma(int64(s.Min)), humanize.Comma(int64(s.Max)))
	default:
		return ""
	}
}

// Validator accepts whole fiat amounts in [Min, Max].
type Validator struct {
	Min int
	Max int
}

// New returns a validator for [min, max].
func New(min, max int) Validator { return Validator{Min: min, Max: max} }

// Validate classifies text. It never touches the network.
func (v Validator) Validate(text string) State {
	st := State{Min: v.Min, Max: v.Max}
	if text == "" {
		st.Kind = Empty
		return st
	}
	if !digits.MatchString(text) {
		st.Kind = NotNumeric
		return st
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		// Only overflow reaches here: the text is all digits.
		st.Kind = OutOfRange
		return st
	}
	if n < v.Min || n > v.Max {
		st.Kind = OutOfRange
		st.Amount = n
		return st
	}
	st.Kind = Valid
	st.Amount = n
	return st
}
