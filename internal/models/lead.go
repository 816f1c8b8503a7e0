package models

import (
	"strings"
	"time"
)

// Scenario identifies an industry demo track.
type Scenario string

const (
	ScenarioHealthcare Scenario = "healthcare"
	ScenarioFinancial  Scenario = "financial"
	ScenarioTrades     Scenario = "trades"
)

// Scenarios lists every supported scenario in display order.
var Scenarios = []Scenario{ScenarioHealthcare, ScenarioFinancial, ScenarioTrades}

// Valid reports whether s is a known scenario.
func (s Scenario) Valid() bool {
	switch s {
	case ScenarioHealthcare, ScenarioFinancial, ScenarioTrades:
		return true
	}
	return false
}

// Lead is a contact captured by the demo gate instead of a token.
type Lead struct {
	ID          string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	CountryCode string    `json:"countryCode"`
	Scenario    Scenario  `json:"scenario"`
	Message     string    `json:"message,omitempty"`
	Source      string    `json:"source,omitempty"`
	StartedAt   time.Time `json:"-"` // when the visitor opened the form
	SubmittedAt time.Time `json:"submittedAt"`
}

// DedupKey identifies a submission by normalized email and the digits of
// the full phone number.
func (l *Lead) DedupKey() string {
	return strings.ToLower(strings.TrimSpace(l.Email)) + "|" + DigitsOnly(l.FullPhone())
}

// FullPhone joins the country code and the phone digits.
func (l *Lead) FullPhone() string {
	return strings.TrimSpace(l.CountryCode) + DigitsOnly(l.Phone)
}

// DigitsOnly strips every non-digit rune from s.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
