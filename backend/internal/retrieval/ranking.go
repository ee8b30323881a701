package retrieval

import (
	"sort"
	"strings"

	"chatgraph/backend/internal/graph"
)

// ============================================================================
// Read-Time Ranking
// ============================================================================

// Ranking is a pure selection rule over the append-only evidence log, applied
// by the downstream consumer. Nothing here mutates the graph: competing
// claims stay in the store, and this decides which to present first.

// vagueEndpoints are placeholder names the extraction sometimes produces when
// the model could not resolve an actual entity
var vagueEndpoints = map[string]bool{
	"unknown person": true,
	"unknown":        true,
	"someone":        true,
	"somebody":       true,
	"anyone":         true,
	"people":         true,
	"they":           true,
}

// inquiryMarkers flag relation labels that record a question about a concept
// rather than an action or ownership involving it
var inquiryMarkers = []string{"ASKED", "INQUIRED", "WONDERED", "QUESTIONED"}

// Rank orders triples for presentation: edges whose endpoints name specific,
// known entities come before vague placeholders, and action/ownership
// relations come before mere inquiry-about relations. The sort is stable, so
// the retriever's lexicographic order breaks ties.
func Rank(triples []graph.Triple) []graph.Triple {
	ranked := make([]graph.Triple, len(triples))
	copy(ranked, triples)

	sort.SliceStable(ranked, func(i, j int) bool {
		return rankScore(ranked[i]) > rankScore(ranked[j])
	})

	return ranked
}

func rankScore(triple graph.Triple) int {
	score := 0
	if isVagueEndpoint(triple.Entity1) {
		score -= 2
	}
	if isVagueEndpoint(triple.Entity2) {
		score -= 2
	}
	if isInquiryRelation(triple.RelType) {
		score--
	}
	return score
}

func isVagueEndpoint(name string) bool {
	return vagueEndpoints[strings.ToLower(strings.TrimSpace(name))]
}

func isInquiryRelation(relType string) bool {
	upper := strings.ToUpper(relType)
	for _, marker := range inquiryMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}
