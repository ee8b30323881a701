package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// ============================================================================
// Entity and Relationship Operations
// ============================================================================

// UpsertEntity merges an entity node keyed by (name, type). Idempotent:
// identical (name, type) pairs always map to the same node, which also makes
// concurrent creation safe without explicit locking.
func (r *Repository) UpsertEntity(ctx context.Context, name, entityType string) (EntityRef, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MERGE (e:Entity {name: $name, entity_type: $entityType})
		ON CREATE SET e.created_at = datetime()
		RETURN e.name as name, e.entity_type as entity_type
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"name":       name,
		"entityType": entityType,
	})
	if err != nil {
		return EntityRef{}, fmt.Errorf("failed to upsert entity: %w", err)
	}

	record, err := result.Single(ctx)
	if err != nil {
		return EntityRef{}, fmt.Errorf("failed to verify entity upsert: %w", err)
	}

	return EntityRef{
		Name: getStringFromRecord(record, "name"),
		Type: getStringFromRecord(record, "entity_type"),
	}, nil
}

// CreateRelationship appends a typed edge between two entities. Each call
// records a separate edge with its own evidence: the graph is an append-only
// log of claims, and competing claims coexist until read time.
func (r *Repository) CreateRelationship(ctx context.Context, rel Relationship) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	label := SanitizeRelType(rel.Type)
	timestampStr := rel.Timestamp.UTC().Format(time.RFC3339)

	// Edge labels cannot be parameterized in Cypher; the label has been
	// sanitized to a safe identifier above.
	query := fmt.Sprintf(`
		MERGE (from:Entity {name: $fromName, entity_type: $fromType})
		MERGE (to:Entity {name: $toName, entity_type: $toType})
		CREATE (from)-[rel:%s {
			confidence: $confidence,
			evidence: $evidence,
			timestamp: datetime($timestamp),
			source_message_id: $sourceMessageID
		}]->(to)
	`, label)

	_, err := session.Run(ctx, query, map[string]interface{}{
		"fromName":        rel.From.Name,
		"fromType":        rel.From.Type,
		"toName":          rel.To.Name,
		"toType":          rel.To.Type,
		"confidence":      rel.Confidence,
		"evidence":        rel.Evidence,
		"timestamp":       timestampStr,
		"sourceMessageID": rel.SourceMessageID,
	})
	if err != nil {
		return fmt.Errorf("failed to create relationship: %w", err)
	}

	r.logger.Debug("Relationship created",
		zap.String("from", rel.From.Name),
		zap.String("type", label),
		zap.String("to", rel.To.Name),
		zap.Float64("confidence", rel.Confidence),
	)
	return nil
}
