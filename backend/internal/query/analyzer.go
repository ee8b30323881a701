package query

import "context"

// Intent is the classified purpose of a user query
type Intent string

const (
	// IntentUnclassified is the initial state before classification
	IntentUnclassified Intent = "unclassified"
	// IntentMemoryLookup asks what was said earlier in the conversation
	IntentMemoryLookup Intent = "memory_lookup"
	// IntentGraphLookup is a who/what/when/where question answered from the graph
	IntentGraphLookup Intent = "graph_lookup"
	// IntentGeneralChat is a greeting, thanks, or other small talk
	IntentGeneralChat Intent = "general_chat"
)

// Canonical timeframe buckets. A query's timeframe is one of these or absent.
const (
	TimeframeLastHour  = "last hour"
	TimeframeYesterday = "yesterday"
	TimeframeLastWeek  = "last week"
	TimeframeLastMonth = "last month"
)

// Analysis is the classifier output: intent plus topic and timeframe hints.
// Topics are normalized lowercase keywords.
type Analysis struct {
	Intent    Intent   `json:"intent"`
	Topics    []string `json:"topics"`
	Timeframe string   `json:"timeframe,omitempty"`
}

// Classifier turns a query and optional recent history into an Analysis.
// Implementations are interchangeable: the heuristic path is fast and
// deterministic, the inference path more accurate. Both conform to the same
// output contract and are selected by configuration.
type Classifier interface {
	Classify(ctx context.Context, queryText string, recentHistory []string) Analysis
}
