package graph

import "time"

// ============================================================================
// Knowledge Graph Types
// ============================================================================

// Entity represents a graph node identified by (name, type). Entity types are
// open-ended; the constants below cover the buckets the extraction pipeline
// produces, but any non-empty string is a valid type.
type Entity struct {
	Name       string                 `json:"name"`
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// Well-known entity types
const (
	EntityPerson   = "Person"
	EntityLocation = "Location"
	EntityActivity = "Activity"
	EntityTime     = "Time"
	EntityMedia    = "Media"
	EntityFood     = "Food"
)

// EntityRef identifies an upserted entity node
type EntityRef struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Relationship is a directed, typed edge between two entities. Edges are
// append-only: the same (from, to, type) triple may exist many times, each
// carrying its own evidence. Selection among competing claims happens at
// query time, never at write time.
type Relationship struct {
	From            EntityRef `json:"from"`
	To              EntityRef `json:"to"`
	Type            string    `json:"type"`
	Confidence      float64   `json:"confidence"`
	Evidence        string    `json:"evidence"`
	Timestamp       time.Time `json:"timestamp"`
	SourceMessageID string    `json:"source_message_id"`
}

// Triple is a retrieval result row: (entity1, relationshipType, entity2).
// Entity types ride along so the formatter can group people separately.
type Triple struct {
	Entity1     string `json:"entity1"`
	Entity1Type string `json:"entity1_type"`
	RelType     string `json:"rel_type"`
	Entity2     string `json:"entity2"`
	Entity2Type string `json:"entity2_type"`
}

// Key returns the deduplication key for a retrieval result
func (t Triple) Key() string {
	return t.Entity1 + "|" + t.RelType + "|" + t.Entity2
}

// Message mirrors a chat message owned by the upstream persistence layer.
// IsAIResponse gates the feedback-loop guard: messages the system generated
// itself are never re-ingested as new facts.
type Message struct {
	ID           string    `json:"id"`
	Sender       string    `json:"sender"`
	Text         string    `json:"text"`
	Timestamp    time.Time `json:"timestamp"`
	IsAIResponse bool      `json:"is_ai_response"`
}

// ConversationThread is a coarse grouping of messages by topic, used only
// for thread-summary queries, not for graph traversal.
type ConversationThread struct {
	Topic        string    `json:"topic"`
	Participants []string  `json:"participants"`
	MessageIDs   []string  `json:"message_ids"`
	LastActivity time.Time `json:"last_activity"`
}
