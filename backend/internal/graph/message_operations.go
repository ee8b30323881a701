package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// ============================================================================
// Message Sync Operations
// ============================================================================

// SyncMessage mirrors a durably-recorded chat message into the graph: the
// message node, its sender, and a SENT edge. Each sub-write is an independent
// merge; partial failure is acceptable because a retry or resync backfills
// the missing pieces.
func (r *Repository) SyncMessage(ctx context.Context, msg Message) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	timestampStr := msg.Timestamp.UTC().Format(time.RFC3339)

	query := `
		MERGE (m:Message {id: $id})
		ON CREATE SET
			m.text = $text,
			m.timestamp = datetime($timestamp),
			m.is_ai_response = $isAIResponse
		MERGE (s:Entity {name: $sender, entity_type: 'Person'})
		ON CREATE SET s.created_at = datetime()
		MERGE (s)-[:SENT]->(m)
	`

	_, err := session.Run(ctx, query, map[string]interface{}{
		"id":           msg.ID,
		"text":         msg.Text,
		"timestamp":    timestampStr,
		"isAIResponse": msg.IsAIResponse,
		"sender":       msg.Sender,
	})
	if err != nil {
		return fmt.Errorf("failed to sync message: %w", err)
	}

	r.logger.Debug("Message synced",
		zap.String("message_id", msg.ID),
		zap.String("sender", msg.Sender),
	)
	return nil
}

// LinkMessageMention records that a message mentioned a person. Kept separate
// from SyncMessage so a failed mention write never blocks the message sync.
func (r *Repository) LinkMessageMention(ctx context.Context, messageID, personName string) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (m:Message {id: $messageID})
		MERGE (p:Entity {name: $personName, entity_type: 'Person'})
		ON CREATE SET p.created_at = datetime()
		MERGE (m)-[:MENTIONS]->(p)
	`

	_, err := session.Run(ctx, query, map[string]interface{}{
		"messageID":  messageID,
		"personName": personName,
	})
	if err != nil {
		return fmt.Errorf("failed to link mention: %w", err)
	}

	return nil
}
