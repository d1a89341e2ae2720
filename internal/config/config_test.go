package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "analysis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func writeConfigMap(t *testing.T, m map[string]any) string {
	t.Helper()
	body, err := yaml.Marshal(m)
	require.NoError(t, err)
	return writeConfig(t, string(body))
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: \":8181\"\n")
	t.Setenv("CONFIG_PATH", path)

	cfg, _, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8181", cfg.Server.Addr)
	assert.Equal(t, "analysis", cfg.Temporal.TaskQueue)
	assert.Equal(t, 120*time.Second, cfg.Orchestration.GlobalDeadline)
	assert.Equal(t, 15*time.Second, cfg.Orchestration.DefaultAgentTimeout)
	assert.InDelta(t, 0.20, cfg.Scoring.Weights["clinical"], 1e-9)
	assert.InDelta(t, 2.0, cfg.Scoring.Penalty.PerSignal, 1e-9)
	assert.InDelta(t, 20.0, cfg.Scoring.Penalty.Cap, 1e-9)
	assert.Contains(t, cfg.Sources.Endpoints.ClinicalTrials, "clinicaltrials.gov")
}

func TestLoadRejectsBadWeights(t *testing.T) {
	path := writeConfig(t, `
scoring:
  weights:
    clinical: 0.5
    literature: 0.2
`)
	t.Setenv("CONFIG_PATH", path)

	_, _, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsAgentTimeoutAboveDeadline(t *testing.T) {
	path := writeConfig(t, `
orchestration:
  global_deadline: 30s
  agent_timeouts:
    clinical: 45s
`)
	t.Setenv("CONFIG_PATH", path)

	_, _, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clinical")
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfigMap(t, map[string]any{
		"orchestration": map[string]any{
			"global_deadline":       "90s",
			"default_agent_timeout": "10s",
			"agent_timeouts":        map[string]any{"hypothesis": "20s"},
		},
		"webhook": map[string]any{"url": "http://hooks.internal/analysis"},
		"scoring": map[string]any{
			"weights": map[string]float64{
				"clinical":   0.30,
				"literature": 0.20,
				"safety":     0.50,
			},
		},
	})
	t.Setenv("CONFIG_PATH", path)

	cfg, _, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.Orchestration.GlobalDeadline)
	assert.Equal(t, 20*time.Second, cfg.Orchestration.AgentTimeouts["hypothesis"])
	assert.Equal(t, "http://hooks.internal/analysis", cfg.Webhook.URL)
	assert.InDelta(t, 0.50, cfg.Scoring.Weights["safety"], 1e-9)
}
