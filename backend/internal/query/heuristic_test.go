package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyIntentRouting(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		intent Intent
	}{
		{"greeting", "What's up?", IntentGeneralChat},
		{"casual opener", "hey, how's it going", IntentGeneralChat},
		{"thanks", "thanks a lot!", IntentGeneralChat},
		{"graph who", "Who went to the beach yesterday?", IntentGraphLookup},
		{"graph what", "What did Jake say about camping?", IntentGraphLookup},
		{"graph tell me", "tell me about Yosemite", IntentGraphLookup},
		{"memory recall", "Do you remember what I said earlier?", IntentMemoryLookup},
		{"memory earlier", "what did we talk about earlier today", IntentMemoryLookup},
		{"statement defaults to chat", "I had a great weekend", IntentGeneralChat},
	}

	classifier := NewHeuristicClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := classifier.Classify(context.Background(), tt.query, nil)
			assert.Equal(t, tt.intent, analysis.Intent)
		})
	}
}

func TestClassifyChatWinsOverQuestionWords(t *testing.T) {
	// "What's up?" starts with "what" but is small talk; the chat family is
	// checked first so it never becomes a graph lookup.
	analysis := NewHeuristicClassifier().Classify(context.Background(), "What's up?", nil)
	assert.Equal(t, IntentGeneralChat, analysis.Intent)
}

func TestClassifyMemoryWinsOverGraph(t *testing.T) {
	// Recall questions contain who/what too; memory phrasing takes precedence.
	analysis := NewHeuristicClassifier().Classify(context.Background(), "Do you remember who I mentioned yesterday?", nil)
	assert.Equal(t, IntentMemoryLookup, analysis.Intent)
}

func TestClassifyTimeframes(t *testing.T) {
	tests := []struct {
		query     string
		timeframe string
	}{
		{"who went out in the last hour", TimeframeLastHour},
		{"what happened yesterday", TimeframeYesterday},
		{"what did Maria do last week", TimeframeLastWeek},
		{"who visited the park in the past month", TimeframeLastMonth},
		{"who likes pizza", ""},
	}

	classifier := NewHeuristicClassifier()
	for _, tt := range tests {
		analysis := classifier.Classify(context.Background(), tt.query, nil)
		assert.Equal(t, tt.timeframe, analysis.Timeframe, tt.query)
	}
}

func TestExtractTopics(t *testing.T) {
	topics := ExtractTopics("Who went to the Beach yesterday with Jake?")
	assert.Equal(t, []string{"beach", "jake"}, topics)
}

func TestExtractTopicsDropsShortAndStopwords(t *testing.T) {
	assert.Empty(t, ExtractTopics("do you go up to it"))
}

func TestExtractTopicsDedupes(t *testing.T) {
	topics := ExtractTopics("pizza pizza PIZZA")
	assert.Equal(t, []string{"pizza"}, topics)
}
