package formatter

import (
	"fmt"
	"sort"
	"strings"

	"chatgraph/backend/internal/constants"
	"chatgraph/backend/internal/graph"
)

// Format renders ranked retrieval results into the structured context block
// handed to the Response Generation Service. Empty sections are omitted; when
// every section is empty the sentinel is returned instead, so the generation
// service can decline honestly rather than fabricate an answer.
func Format(triples []graph.Triple) string {
	if len(triples) == 0 {
		return constants.NoContextSentinel
	}

	var sections []string

	if entities := relevantEntities(triples); len(entities) > 0 {
		sections = append(sections, section("Relevant Entities", entities))
	}
	if people := relatedPeople(triples); len(people) > 0 {
		sections = append(sections, section("Related People", people))
	}
	if insights := topicInsights(triples); len(insights) > 0 {
		sections = append(sections, section("Topic Insights", insights))
	}
	if connections := entityConnections(triples); len(connections) > 0 {
		sections = append(sections, section("Entity Connections", connections))
	}

	if len(sections) == 0 {
		return constants.NoContextSentinel
	}

	return strings.Join(sections, "\n\n")
}

func section(title string, lines []string) string {
	return fmt.Sprintf("%s:\n- %s", title, strings.Join(lines, "\n- "))
}

// relevantEntities lists the distinct entity names across all triples,
// preserving the ranked order of first appearance
func relevantEntities(triples []graph.Triple) []string {
	seen := make(map[string]bool)
	var entities []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		entities = append(entities, name)
	}
	for _, triple := range triples {
		add(triple.Entity1)
		add(triple.Entity2)
	}
	return entities
}

// relatedPeople lists the distinct Person entities involved
func relatedPeople(triples []graph.Triple) []string {
	seen := make(map[string]bool)
	var people []string
	add := func(name, entityType string) {
		if entityType != graph.EntityPerson || name == "" || seen[name] {
			return
		}
		seen[name] = true
		people = append(people, name)
	}
	for _, triple := range triples {
		add(triple.Entity1, triple.Entity1Type)
		add(triple.Entity2, triple.Entity2Type)
	}
	return people
}

// topicInsights aggregates edges by relationship type
func topicInsights(triples []graph.Triple) []string {
	byType := make(map[string][]string)
	var order []string
	for _, triple := range triples {
		if _, ok := byType[triple.RelType]; !ok {
			order = append(order, triple.RelType)
		}
		byType[triple.RelType] = append(byType[triple.RelType],
			fmt.Sprintf("%s → %s", triple.Entity1, triple.Entity2))
	}

	var insights []string
	for _, relType := range order {
		pairs := byType[relType]
		sort.Strings(pairs)
		insights = append(insights, fmt.Sprintf("%s: %s",
			humanizeRelType(relType), strings.Join(pairs, "; ")))
	}
	return insights
}

// entityConnections lists each edge individually, in ranked order
func entityConnections(triples []graph.Triple) []string {
	connections := make([]string, 0, len(triples))
	for _, triple := range triples {
		connections = append(connections,
			fmt.Sprintf("%s %s %s", triple.Entity1, humanizeRelType(triple.RelType), triple.Entity2))
	}
	return connections
}

// humanizeRelType turns VISITED or ENJOYS_ACTIVITY into "visited" and
// "enjoys activity" for readability in the prompt
func humanizeRelType(relType string) string {
	return strings.ToLower(strings.ReplaceAll(relType, "_", " "))
}
