// Package domain holds the comparison record and the salary rate model.
package domain

import (
	"math"
	"time"
)

// SecondsPerYear is a fixed 365-day year. Leap years are not accounted for.
const SecondsPerYear = 365 * 24 * 60 * 60

// DefaultCurrency is applied when a create request omits the currency.
const DefaultCurrency = "EUR"

// AccrualRate converts an annual amount into a per-second amount.
// Callers must reject non-finite and non-positive input before calling.
func AccrualRate(annual float64) float64 {
	return annual / SecondsPerYear
}

// Comparison is a persisted salary race between two people.
type Comparison struct {
	ID        int64     `json:"id"`
	Slug      string    `json:"slug"`
	NameA     string    `json:"nameA"`
	NameB     string    `json:"nameB"`
	AnnualA   float64   `json:"annualA"`
	AnnualB   float64   `json:"annualB"`
	PerSecA   float64   `json:"perSecA"`
	PerSecB   float64   `json:"perSecB"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewComparison derives both accrual rates from the annual salaries.
// The slug and ID are assigned by the caller and the store.
func NewComparison(nameA, nameB string, annualA, annualB float64, currency string, now time.Time) Comparison {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Comparison{
		NameA:     nameA,
		NameB:     nameB,
		AnnualA:   annualA,
		AnnualB:   annualB,
		PerSecA:   AccrualRate(annualA),
		PerSecB:   AccrualRate(annualB),
		Currency:  currency,
		CreatedAt: now.UTC(),
	}
}

// URL returns the site-relative path of the comparison page.
func (c Comparison) URL() string {
	return "/compare/" + c.Slug
}

// Leader returns "A", "B", or "" for a tie on the per-second rate.
func (c Comparison) Leader() string {
	switch {
	case c.PerSecA > c.PerSecB:
		return "A"
	case c.PerSecB > c.PerSecA:
		return "B"
	}
	return ""
}

// Ratio returns how many times faster the leader accrues, or 1 for a tie.
func (c Comparison) Ratio() float64 {
	lo, hi := math.Min(c.PerSecA, c.PerSecB), math.Max(c.PerSecA, c.PerSecB)
	if lo <= 0 {
		return 1
	}
	return hi / lo
}
