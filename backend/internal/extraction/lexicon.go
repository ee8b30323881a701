package extraction

import (
	"strings"

	"chatgraph/backend/internal/graph"
)

// ============================================================================
// Fallback Keyword Lexicon
// ============================================================================

// fallbackLexicon maps lowercase keywords to entity types. It is the
// deterministic degradation path when the Inference Service fails or returns
// a malformed payload: coarse, but it keeps the graph from losing all
// context for a message.
var fallbackLexicon = map[string]string{
	// Locations
	"beach":     graph.EntityLocation,
	"park":      graph.EntityLocation,
	"mountains": graph.EntityLocation,
	"lake":      graph.EntityLocation,
	"city":      graph.EntityLocation,
	"downtown":  graph.EntityLocation,
	"office":    graph.EntityLocation,
	"school":    graph.EntityLocation,
	"gym":       graph.EntityLocation,
	"yosemite":  graph.EntityLocation,

	// Activities
	"camping":  graph.EntityActivity,
	"hiking":   graph.EntityActivity,
	"swimming": graph.EntityActivity,
	"running":  graph.EntityActivity,
	"cooking":  graph.EntityActivity,
	"fishing":  graph.EntityActivity,
	"picnic":   graph.EntityActivity,
	"party":    graph.EntityActivity,
	"concert":  graph.EntityActivity,
	"movie":    graph.EntityActivity,

	// Time references
	"yesterday": graph.EntityTime,
	"today":     graph.EntityTime,
	"tomorrow":  graph.EntityTime,
	"tonight":   graph.EntityTime,
	"weekend":   graph.EntityTime,
	"morning":   graph.EntityTime,
	"evening":   graph.EntityTime,
	"monday":    graph.EntityTime,
	"friday":    graph.EntityTime,

	// Food
	"pizza":     graph.EntityFood,
	"coffee":    graph.EntityFood,
	"burrito":   graph.EntityFood,
	"burritos":  graph.EntityFood,
	"tacos":     graph.EntityFood,
	"sushi":     graph.EntityFood,
	"chocolate": graph.EntityFood,
	"sandwich":  graph.EntityFood,
}

// extractWithLexicon scans the message for known keywords and returns the
// matched entities. Matching is exact per whitespace-delimited word after
// stripping punctuation.
func extractWithLexicon(messageText string) []graph.Entity {
	seen := make(map[string]bool)
	var entities []graph.Entity

	for _, word := range strings.Fields(strings.ToLower(messageText)) {
		word = strings.Trim(word, ".,!?;:'\"()")
		entityType, ok := fallbackLexicon[word]
		if !ok || seen[word] {
			continue
		}
		seen[word] = true
		entities = append(entities, graph.Entity{Name: word, Type: entityType})
	}

	return entities
}
