package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ============================================================================
// Search Operations
// ============================================================================

// The five independent retrieval strategies live here as separate queries.
// Each takes a single lowercase search term and an optional timeframe lower
// bound (zero time means unbounded) and returns raw triples; the retrieval
// package owns union, deduplication, and ordering.

const sinceClause = `($since = '' OR (rel.timestamp IS NOT NULL AND rel.timestamp >= datetime($since)))`

// SearchDirect finds edges where either endpoint's name contains the term
func (r *Repository) SearchDirect(ctx context.Context, term string, since time.Time) ([]Triple, error) {
	query := fmt.Sprintf(`
		MATCH (e1:Entity)-[rel]->(e2:Entity)
		WHERE (toLower(e1.name) CONTAINS $term OR toLower(e2.name) CONTAINS $term)
		  AND %s
		RETURN e1.name as entity1, e1.entity_type as entity1_type,
		       type(rel) as rel_type,
		       e2.name as entity2, e2.entity_type as entity2_type
	`, sinceClause)

	return r.runTripleQuery(ctx, "direct search", query, term, since, 0)
}

// SearchByRelationType finds edges whose relationship label contains the term
func (r *Repository) SearchByRelationType(ctx context.Context, term string, since time.Time) ([]Triple, error) {
	query := fmt.Sprintf(`
		MATCH (e1:Entity)-[rel]->(e2:Entity)
		WHERE toLower(type(rel)) CONTAINS $term
		  AND %s
		RETURN e1.name as entity1, e1.entity_type as entity1_type,
		       type(rel) as rel_type,
		       e2.name as entity2, e2.entity_type as entity2_type
	`, sinceClause)

	return r.runTripleQuery(ctx, "relation type search", query, term, since, 0)
}

// SearchWildcard covers endpoint names and relation labels in one bounded
// pass, capped to keep the combined scan cheap.
func (r *Repository) SearchWildcard(ctx context.Context, term string, since time.Time, limit int) ([]Triple, error) {
	if limit < 1 {
		limit = 10
	}

	query := fmt.Sprintf(`
		MATCH (e1:Entity)-[rel]->(e2:Entity)
		WHERE (toLower(e1.name) CONTAINS $term
		   OR toLower(e2.name) CONTAINS $term
		   OR toLower(type(rel)) CONTAINS $term)
		  AND %s
		RETURN e1.name as entity1, e1.entity_type as entity1_type,
		       type(rel) as rel_type,
		       e2.name as entity2, e2.entity_type as entity2_type
		LIMIT $limit
	`, sinceClause)

	return r.runTripleQuery(ctx, "wildcard search", query, term, since, limit)
}

// SearchTwoHop follows paths e1 -> e2 -> e3 where any of the three node names
// contains the term, surfacing indirect connections not visible from
// single-edge matches. Both edges of a matching path are returned, and the
// timeframe bound applies to the first hop.
func (r *Repository) SearchTwoHop(ctx context.Context, term string, since time.Time) ([]Triple, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (e1:Entity)-[r1]->(e2:Entity)-[r2]->(e3:Entity)
		WHERE (toLower(e1.name) CONTAINS $term
		   OR toLower(e2.name) CONTAINS $term
		   OR toLower(e3.name) CONTAINS $term)
		  AND ($since = '' OR (r1.timestamp IS NOT NULL AND r1.timestamp >= datetime($since)))
		RETURN e1.name as entity1, e1.entity_type as entity1_type,
		       type(r1) as rel1_type,
		       e2.name as entity2, e2.entity_type as entity2_type,
		       type(r2) as rel2_type,
		       e3.name as entity3, e3.entity_type as entity3_type
	`

	sinceStr := ""
	if !since.IsZero() {
		sinceStr = since.UTC().Format(time.RFC3339)
	}

	result, err := session.Run(ctx, query, map[string]interface{}{
		"term":  term,
		"since": sinceStr,
	})
	if err != nil {
		return nil, fmt.Errorf("two-hop search failed: %w", err)
	}

	var triples []Triple
	for result.Next(ctx) {
		record := result.Record()
		triples = append(triples, Triple{
			Entity1:     getStringFromRecord(record, "entity1"),
			Entity1Type: getStringFromRecord(record, "entity1_type"),
			RelType:     getStringFromRecord(record, "rel1_type"),
			Entity2:     getStringFromRecord(record, "entity2"),
			Entity2Type: getStringFromRecord(record, "entity2_type"),
		})
		triples = append(triples, Triple{
			Entity1:     getStringFromRecord(record, "entity2"),
			Entity1Type: getStringFromRecord(record, "entity2_type"),
			RelType:     getStringFromRecord(record, "rel2_type"),
			Entity2:     getStringFromRecord(record, "entity3"),
			Entity2Type: getStringFromRecord(record, "entity3_type"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("two-hop search failed: %w", err)
	}

	return triples, nil
}

// SearchActorActions finds person -> action edges where the action name or
// relation label contains the term. Used for "who" questions.
func (r *Repository) SearchActorActions(ctx context.Context, term string, since time.Time) ([]Triple, error) {
	query := fmt.Sprintf(`
		MATCH (e1:Entity {entity_type: 'Person'})-[rel]->(e2:Entity)
		WHERE (toLower(e2.name) CONTAINS $term OR toLower(type(rel)) CONTAINS $term)
		  AND %s
		RETURN e1.name as entity1, e1.entity_type as entity1_type,
		       type(rel) as rel_type,
		       e2.name as entity2, e2.entity_type as entity2_type
	`, sinceClause)

	return r.runTripleQuery(ctx, "actor action search", query, term, since, 0)
}

// runTripleQuery executes a search query returning the standard triple columns
func (r *Repository) runTripleQuery(ctx context.Context, operation, query, term string, since time.Time, limit int) ([]Triple, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	sinceStr := ""
	if !since.IsZero() {
		sinceStr = since.UTC().Format(time.RFC3339)
	}

	params := map[string]interface{}{
		"term":  term,
		"since": sinceStr,
	}
	if limit > 0 {
		params["limit"] = limit
	}

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", operation, err)
	}

	var triples []Triple
	for result.Next(ctx) {
		record := result.Record()
		triples = append(triples, Triple{
			Entity1:     getStringFromRecord(record, "entity1"),
			Entity1Type: getStringFromRecord(record, "entity1_type"),
			RelType:     getStringFromRecord(record, "rel_type"),
			Entity2:     getStringFromRecord(record, "entity2"),
			Entity2Type: getStringFromRecord(record, "entity2_type"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("%s failed: %w", operation, err)
	}

	return triples, nil
}
