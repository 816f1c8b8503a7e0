package demo

import (
	"fmt"
	"os"

	"github.com/tolutally/matchbox-web/internal/models"

	"gopkg.in/yaml.v3"
)

// ScenarioInfo describes one demo track and the assistant that runs it.
type ScenarioInfo struct {
	ID          models.Scenario `yaml:"id"`
	Label       string          `yaml:"label"`
	Description string          `yaml:"description"`
	AssistantID string          `yaml:"assistant_id"`
}

// Catalog lists the demo tracks in display order.
type Catalog struct {
	Scenarios []ScenarioInfo `yaml:"scenarios"`
}

// assistant id environment keys per scenario
var assistantEnv = map[models.Scenario]string{
	models.ScenarioHealthcare: "VAPI_ASSISTANT_HEALTHCARE",
	models.ScenarioFinancial:  "VAPI_ASSISTANT_FINANCIAL",
	models.ScenarioTrades:     "VAPI_ASSISTANT_TRADES",
}

// DefaultCatalog returns the built-in tracks with assistant ids taken
// from getenv.
func DefaultCatalog(getenv func(string) string) *Catalog {
	if getenv == nil {
		getenv = os.Getenv
	}
	c := &Catalog{Scenarios: []ScenarioInfo{
		{ID: models.ScenarioHealthcare, Label: "Healthcare", Description: "Appointment reminder demo"},
		{ID: models.ScenarioFinancial, Label: "Financial Services", Description: "Reminder demo"},
		{ID: models.ScenarioTrades, Label: "Skilled Trades", Description: "Appointment booking demo"},
	}}
	for i := range c.Scenarios {
		c.Scenarios[i].AssistantID = getenv(assistantEnv[c.Scenarios[i].ID])
	}
	return c
}

// LoadCatalog reads a YAML catalog from path and fills the gaps from
// base: unknown scenarios are rejected, missing fields keep base values.
func LoadCatalog(path string, base *Catalog) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario catalog: %w", err)
	}

	var file Catalog
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse scenario catalog: %w", err)
	}

	out := &Catalog{Scenarios: append([]ScenarioInfo(nil), base.Scenarios...)}
	for _, s := range file.Scenarios {
		if !s.ID.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownScenario, s.ID)
		}
		i := out.index(s.ID)
		if i < 0 {
			out.Scenarios = append(out.Scenarios, ScenarioInfo{ID: s.ID})
			i = len(out.Scenarios) - 1
		}
		cur := &out.Scenarios[i]
		if s.Label != "" {
			cur.Label = s.Label
		}
		if s.Description != "" {
			cur.Description = s.Description
		}
		if s.AssistantID != "" {
			cur.AssistantID = s.AssistantID
		}
	}
	return out, nil
}

// Lookup finds the track for id.
func (c *Catalog) Lookup(id models.Scenario) (ScenarioInfo, bool) {
	if i := c.index(id); i >= 0 {
		return c.Scenarios[i], true
	}
	return ScenarioInfo{}, false
}

func (c *Catalog) index(id models.Scenario) int {
	for i, s := range c.Scenarios {
		if s.ID == id {
			return i
		}
	}
	return -1
}
