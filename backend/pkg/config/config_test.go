package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ClassifierHeuristic, cfg.ClassifierMode)
	assert.Equal(t, 0.6, cfg.ConfidenceThreshold)
	assert.Equal(t, 15, cfg.WildcardResultCap)
	assert.Equal(t, 50, cfg.MemoryLogSize)
	assert.Equal(t, 10, cfg.ChatHistoryWindow)
	assert.Equal(t, 200, cfg.QueryHistoryWindow)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CLASSIFIER_MODE", "inference")
	t.Setenv("CONFIDENCE_THRESHOLD", "0.8")
	t.Setenv("WILDCARD_RESULT_CAP", "30")
	t.Setenv("ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ClassifierInference, cfg.ClassifierMode)
	assert.Equal(t, 0.8, cfg.ConfidenceThreshold)
	assert.Equal(t, 30, cfg.WildcardResultCap)
	assert.True(t, cfg.IsProduction())
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() *Config {
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	cfg := base()
	cfg.Neo4jURI = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.ClassifierMode = "coin_flip"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.ConfidenceThreshold = 1.0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.MemoryLogSize = 0
	assert.Error(t, cfg.Validate())
}

func TestLoadIgnoresUnparseableNumbers(t *testing.T) {
	t.Setenv("CONFIDENCE_THRESHOLD", "very high")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.6, cfg.ConfidenceThreshold)
}
