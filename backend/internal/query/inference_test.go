package query

import (
	"context"
	"errors"
	"testing"

	"chatgraph/backend/internal/adapter"
	"github.com/stretchr/testify/assert"
)

type stubClassification struct {
	result adapter.QueryClassification
	err    error
}

func (s *stubClassification) ClassifyQuery(_ context.Context, _ string, _ []string) (adapter.QueryClassification, error) {
	return s.result, s.err
}

func TestInferenceClassifierHappyPath(t *testing.T) {
	classifier := NewInferenceClassifier(&stubClassification{
		result: adapter.QueryClassification{
			Intent:    "graph_lookup",
			Topics:    []string{"The Beach", "Jake"},
			Timeframe: "yesterday",
		},
	})

	analysis := classifier.Classify(context.Background(), "Who went to the beach yesterday?", nil)

	assert.Equal(t, IntentGraphLookup, analysis.Intent)
	assert.Equal(t, []string{"beach", "jake"}, analysis.Topics)
	assert.Equal(t, TimeframeYesterday, analysis.Timeframe)
}

func TestInferenceClassifierFallsBackOnError(t *testing.T) {
	classifier := NewInferenceClassifier(&stubClassification{err: errors.New("service down")})

	analysis := classifier.Classify(context.Background(), "Who went to the beach yesterday?", nil)

	assert.Equal(t, IntentGraphLookup, analysis.Intent, "heuristic fallback still classifies")
	assert.Equal(t, TimeframeYesterday, analysis.Timeframe)
}

func TestInferenceClassifierFallsBackOnUnknownIntent(t *testing.T) {
	classifier := NewInferenceClassifier(&stubClassification{
		result: adapter.QueryClassification{Intent: "weather_forecast"},
	})

	analysis := classifier.Classify(context.Background(), "Do you remember what I said earlier?", nil)

	assert.Equal(t, IntentMemoryLookup, analysis.Intent)
}

func TestInferenceClassifierDropsNonCanonicalTimeframe(t *testing.T) {
	classifier := NewInferenceClassifier(&stubClassification{
		result: adapter.QueryClassification{
			Intent:    "general_chat",
			Timeframe: "the cretaceous period",
		},
	})

	analysis := classifier.Classify(context.Background(), "hello there", nil)

	assert.Empty(t, analysis.Timeframe)
}
