package query

import (
	"context"
	"regexp"
	"strings"
)

// ============================================================================
// Heuristic Classifier
// ============================================================================

// Regex families for the fast classification path. Order matters: memory
// recall phrasing is checked before graph-query phrasing because recall
// questions often contain who/what/when/where too.
var (
	memoryPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bdo you remember\b`),
		regexp.MustCompile(`(?i)\bremember (what|when|who|where|that)\b`),
		regexp.MustCompile(`(?i)\bwhat (did|was) (i|we|you) (say|said|talk|discussed?)\b`),
		regexp.MustCompile(`(?i)\b(said|mentioned|told you) (earlier|before)\b`),
		regexp.MustCompile(`(?i)\bearlier (today|in (the|this) (chat|conversation))\b`),
	}

	graphPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(who|what|when|where)\b`),
		regexp.MustCompile(`(?i)\b(who|what|when|where)\b.*\babout\b`),
		regexp.MustCompile(`(?i)\bwho (went|did|likes?|visited|watched|ate|was)\b`),
		regexp.MustCompile(`(?i)\bwhat did \w+ (say|do|eat|watch|mention)\b`),
		regexp.MustCompile(`(?i)\btell me about\b`),
	}

	chatPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(hi|hey|hello|yo|sup|howdy)\b`),
		regexp.MustCompile(`(?i)^(what'?s up|how are you|how'?s it going)\b`),
		regexp.MustCompile(`(?i)^(thanks|thank you|thx|ty)\b`),
		regexp.MustCompile(`(?i)^(good (morning|afternoon|evening|night)|bye|see ya)\b`),
	}
)

// timeframeVocabulary maps surface phrasings to the canonical buckets
var timeframeVocabulary = []struct {
	pattern   *regexp.Regexp
	timeframe string
}{
	{regexp.MustCompile(`(?i)\b(last|past|previous) hour\b`), TimeframeLastHour},
	{regexp.MustCompile(`(?i)\byesterday\b`), TimeframeYesterday},
	{regexp.MustCompile(`(?i)\b(last|past|previous) week\b`), TimeframeLastWeek},
	{regexp.MustCompile(`(?i)\b(last|past|previous) month\b`), TimeframeLastMonth},
}

// stopwords excluded from topic extraction
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "was": true, "are": true,
	"were": true, "be": true, "been": true, "do": true, "did": true, "does": true,
	"who": true, "what": true, "when": true, "where": true, "why": true, "how": true,
	"i": true, "you": true, "we": true, "they": true, "he": true, "she": true,
	"it": true, "me": true, "my": true, "your": true, "our": true, "their": true,
	"to": true, "of": true, "in": true, "on": true, "at": true, "for": true,
	"with": true, "about": true, "and": true, "or": true, "but": true, "not": true,
	"say": true, "said": true, "go": true, "went": true, "get": true, "got": true,
	"remember": true, "earlier": true, "before": true, "up": true, "that": true,
	"this": true, "there": true, "here": true, "tell": true, "know": true,
	"last": true, "past": true, "previous": true, "hour": true, "week": true,
	"month": true, "yesterday": true,
}

// HeuristicClassifier is the fast, deterministic classification path. It is a
// pure function of the query text; recent history is accepted for contract
// parity with the inference path but unused.
type HeuristicClassifier struct{}

// NewHeuristicClassifier creates a new heuristic classifier
func NewHeuristicClassifier() *HeuristicClassifier {
	return &HeuristicClassifier{}
}

// Classify matches the query against the regex families and the canonical
// timeframe vocabulary
func (h *HeuristicClassifier) Classify(_ context.Context, queryText string, _ []string) Analysis {
	analysis := Analysis{
		Intent:    IntentGeneralChat,
		Topics:    ExtractTopics(queryText),
		Timeframe: matchTimeframe(queryText),
	}

	trimmed := strings.TrimSpace(queryText)
	switch {
	case matchesAny(trimmed, chatPatterns):
		analysis.Intent = IntentGeneralChat
	case matchesAny(trimmed, memoryPatterns):
		analysis.Intent = IntentMemoryLookup
	case matchesAny(trimmed, graphPatterns):
		analysis.Intent = IntentGraphLookup
	}

	return analysis
}

func matchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, pattern := range patterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}

func matchTimeframe(text string) string {
	for _, entry := range timeframeVocabulary {
		if entry.pattern.MatchString(text) {
			return entry.timeframe
		}
	}
	return ""
}

// ExtractTopics tokenizes the query into normalized lowercase keywords,
// dropping stopwords and short tokens. Shared by both classifier paths and
// by retrieval's query-word expansion.
func ExtractTopics(queryText string) []string {
	seen := make(map[string]bool)
	var topics []string

	for _, word := range strings.Fields(strings.ToLower(queryText)) {
		word = strings.Trim(word, ".,!?;:'\"()@#")
		if len(word) < 3 || stopwords[word] {
			continue
		}
		if seen[word] {
			continue
		}
		seen[word] = true
		topics = append(topics, word)
	}

	return topics
}
