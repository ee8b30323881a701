package query

import (
	"context"

	"chatgraph/backend/internal/adapter"
	"chatgraph/backend/pkg/logger"
	"go.uber.org/zap"
)

// ============================================================================
// Inference Classifier
// ============================================================================

// ClassificationService is the slice of the inference client this path needs
type ClassificationService interface {
	ClassifyQuery(ctx context.Context, queryText string, recentHistory []string) (adapter.QueryClassification, error)
}

// InferenceClassifier delegates classification plus topic/timeframe
// extraction to the Inference Service, falling back to the heuristic path
// when the service fails so the output contract always holds.
type InferenceClassifier struct {
	inference ClassificationService
	fallback  *HeuristicClassifier
	logger    *zap.Logger
}

// NewInferenceClassifier creates a new inference-backed classifier
func NewInferenceClassifier(inference ClassificationService) *InferenceClassifier {
	return &InferenceClassifier{
		inference: inference,
		fallback:  NewHeuristicClassifier(),
		logger:    logger.Get(),
	}
}

// Classify asks the Inference Service for intent, topics, and timeframe
func (c *InferenceClassifier) Classify(ctx context.Context, queryText string, recentHistory []string) Analysis {
	classification, err := c.inference.ClassifyQuery(ctx, queryText, recentHistory)
	if err != nil {
		c.logger.Warn("Query classification degraded to heuristics", zap.Error(err))
		return c.fallback.Classify(ctx, queryText, recentHistory)
	}

	intent := parseIntent(classification.Intent)
	if intent == IntentUnclassified {
		return c.fallback.Classify(ctx, queryText, recentHistory)
	}

	analysis := Analysis{
		Intent:    intent,
		Topics:    normalizeTopics(classification.Topics),
		Timeframe: canonicalTimeframe(classification.Timeframe),
	}
	if len(analysis.Topics) == 0 {
		analysis.Topics = ExtractTopics(queryText)
	}

	return analysis
}

func parseIntent(raw string) Intent {
	switch raw {
	case string(IntentMemoryLookup):
		return IntentMemoryLookup
	case string(IntentGraphLookup):
		return IntentGraphLookup
	case string(IntentGeneralChat):
		return IntentGeneralChat
	}
	return IntentUnclassified
}

func normalizeTopics(topics []string) []string {
	var normalized []string
	seen := make(map[string]bool)
	for _, topic := range topics {
		for _, word := range ExtractTopics(topic) {
			if seen[word] {
				continue
			}
			seen[word] = true
			normalized = append(normalized, word)
		}
	}
	return normalized
}

// canonicalTimeframe keeps only the canonical buckets; anything else is absent
func canonicalTimeframe(timeframe string) string {
	switch timeframe {
	case TimeframeLastHour, TimeframeYesterday, TimeframeLastWeek, TimeframeLastMonth:
		return timeframe
	}
	return ""
}
