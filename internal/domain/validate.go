package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Messages surfaced to API clients.
const (
	MsgMissingFields = "Missing fields"
	MsgInvalidSalary = "Invalid salary values"
)

// ValidationError is a client input error. It maps to HTTP 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Invalid returns a *ValidationError with a formatted message.
func Invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ParseSalary parses a raw salary value. Empty input reports a missing
// field; anything non-finite or not strictly positive is invalid.
func ParseSalary(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, &ValidationError{Msg: MsgMissingFields}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !ValidSalary(v) {
		return 0, &ValidationError{Msg: MsgInvalidSalary}
	}
	return v, nil
}

// ValidSalary reports whether v is usable as an annual salary.
func ValidSalary(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// CreateInput is the raw request to create a comparison.
type CreateInput struct {
	NameA    string
	NameB    string
	AnnualA  string
	AnnualB  string
	Currency string
}

// Validate checks presence first, then salary values, mirroring the
// order clients see errors in.
func (in CreateInput) Validate() (annualA, annualB float64, err error) {
	if strings.TrimSpace(in.NameA) == "" || strings.TrimSpace(in.NameB) == "" ||
		strings.TrimSpace(in.AnnualA) == "" || strings.TrimSpace(in.AnnualB) == "" {
		return 0, 0, &ValidationError{Msg: MsgMissingFields}
	}
	if annualA, err = ParseSalary(in.AnnualA); err != nil {
		return 0, 0, err
	}
	if annualB, err = ParseSalary(in.AnnualB); err != nil {
		return 0, 0, err
	}
	return annualA, annualB, nil
}
