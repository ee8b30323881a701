package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ============================================================================
// Conversation Thread Operations
// ============================================================================

// UpsertThread merges a thread node per topic and appends the message to it.
// Threads only serve thread-summary queries; graph traversal never crosses
// them.
func (r *Repository) UpsertThread(ctx context.Context, topic, participant, messageID string, activity time.Time) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	activityStr := activity.UTC().Format(time.RFC3339)

	query := `
		MERGE (t:Thread {topic: $topic})
		ON CREATE SET
			t.participants = [$participant],
			t.message_ids = [$messageID],
			t.last_activity = datetime($activity)
		ON MATCH SET
			t.participants = CASE
				WHEN $participant IN t.participants THEN t.participants
				ELSE t.participants + $participant
			END,
			t.message_ids = CASE
				WHEN $messageID IN t.message_ids THEN t.message_ids
				ELSE t.message_ids + $messageID
			END,
			t.last_activity = datetime($activity)
	`

	_, err := session.Run(ctx, query, map[string]interface{}{
		"topic":       topic,
		"participant": participant,
		"messageID":   messageID,
		"activity":    activityStr,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert thread: %w", err)
	}

	return nil
}

// GetThread retrieves a conversation thread by topic
func (r *Repository) GetThread(ctx context.Context, topic string) (*ConversationThread, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (t:Thread)
		WHERE toLower(t.topic) CONTAINS toLower($topic)
		RETURN t.topic as topic, t.participants as participants,
		       t.message_ids as message_ids, t.last_activity as last_activity
		ORDER BY t.last_activity DESC
		LIMIT 1
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"topic": topic,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get thread: %w", err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, fmt.Errorf("failed to fetch thread record: %w", err)
		}
		return nil, nil
	}

	record := result.Record()
	thread := &ConversationThread{
		Topic:        getStringFromRecord(record, "topic"),
		Participants: getStringSliceFromRecord(record, "participants"),
		MessageIDs:   getStringSliceFromRecord(record, "message_ids"),
		LastActivity: getTimeFromRecord(record, "last_activity"),
	}

	return thread, nil
}
