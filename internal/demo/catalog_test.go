package demo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolutally/matchbox-web/internal/models"
)

func TestDefaultCatalogReadsAssistantIDs(t *testing.T) {
	env := map[string]string{
		"VAPI_ASSISTANT_HEALTHCARE": "asst-h",
		"VAPI_ASSISTANT_TRADES":     "asst-t",
	}
	c := DefaultCatalog(func(k string) string { return env[k] })

	require.Len(t, c.Scenarios, 3)
	for i, id := range models.Scenarios {
		assert.Equal(t, id, c.Scenarios[i].ID)
	}

	h, ok := c.Lookup(models.ScenarioHealthcare)
	require.True(t, ok)
	assert.Equal(t, "asst-h", h.AssistantID)
	assert.Equal(t, "Healthcare", h.Label)

	f, ok := c.Lookup(models.ScenarioFinancial)
	require.True(t, ok)
	assert.Empty(t, f.AssistantID)

	_, ok = c.Lookup("retail")
	assert.False(t, ok)
}

func TestLoadCatalogOverridesBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scenarios:
  - id: financial
    assistant_id: asst-f
    description: Policy renewal reminder
  - id: trades
    label: HVAC
`), 0o600))

	base := DefaultCatalog(func(k string) string {
		if k == "VAPI_ASSISTANT_TRADES" {
			return "asst-t"
		}
		return ""
	})
	c, err := LoadCatalog(path, base)
	require.NoError(t, err)

	f, _ := c.Lookup(models.ScenarioFinancial)
	assert.Equal(t, "asst-f", f.AssistantID)
	assert.Equal(t, "Policy renewal reminder", f.Description)
	assert.Equal(t, "Financial Services", f.Label)

	tr, _ := c.Lookup(models.ScenarioTrades)
	assert.Equal(t, "HVAC", tr.Label)
	assert.Equal(t, "asst-t", tr.AssistantID)

	// base is not modified
	orig, _ := base.Lookup(models.ScenarioFinancial)
	assert.Empty(t, orig.AssistantID)
}

func TestLoadCatalogErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadCatalog(filepath.Join(dir, "missing.yaml"), DefaultCatalog(nil))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("scenarios: [id: retail]"), 0o600))
	_, err = LoadCatalog(bad, DefaultCatalog(nil))
	assert.Error(t, err)

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("scenarios:\n  - id: retail\n"), 0o600))
	_, err = LoadCatalog(unknown, DefaultCatalog(nil))
	assert.ErrorIs(t, err, ErrUnknownScenario)
}
