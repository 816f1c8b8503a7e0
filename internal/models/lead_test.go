package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScenario_Valid(t *testing.T) {
	for _, s := range Scenarios {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Scenario("retail").Valid())
	assert.False(t, Scenario("").Valid())
}

func TestLead_DedupKey(t *testing.T) {
	a := &Lead{Email: " Jane@Example.com ", CountryCode: "+1", Phone: "(555) 201-3344"}
	b := &Lead{Email: "jane@example.com", CountryCode: "+1", Phone: "555-201-3344"}
	c := &Lead{Email: "jane@example.com", CountryCode: "+44", Phone: "555-201-3344"}

	assert.Equal(t, a.DedupKey(), b.DedupKey())
	assert.Equal(t, "jane@example.com|15552013344", a.DedupKey())
	assert.NotEqual(t, a.DedupKey(), c.DedupKey())
}

func TestLead_FullPhone(t *testing.T) {
	l := &Lead{CountryCode: "+1", Phone: "555 201 3344"}
	assert.Equal(t, "+15552013344", l.FullPhone())
}
