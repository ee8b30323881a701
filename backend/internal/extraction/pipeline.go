package extraction

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"chatgraph/backend/internal/adapter"
	"chatgraph/backend/internal/constants"
	"chatgraph/backend/internal/graph"
	"chatgraph/backend/pkg/logger"
	"go.uber.org/zap"
)

// mentionPattern matches @-mention tokens. This path never depends on the
// Inference Service and is guaranteed accurate.
var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_]+)`)

// InferenceService is the slice of the inference client the pipeline needs
type InferenceService interface {
	ExtractEntities(ctx context.Context, messageText string, recentHistory []string) (adapter.EntityBuckets, error)
	ExtractRelationships(ctx context.Context, messageText, sender string) ([]adapter.RelationshipTriple, error)
}

// Result holds everything extracted from one message
type Result struct {
	Entities      []graph.Entity
	Relationships []graph.Relationship
}

// IsEmpty reports whether nothing was extracted
func (r Result) IsEmpty() bool {
	return len(r.Entities) == 0 && len(r.Relationships) == 0
}

// Pipeline turns message text into entities and relationship triples
type Pipeline struct {
	inference           InferenceService
	confidenceThreshold float64
	logger              *zap.Logger
}

// NewPipeline creates a new extraction pipeline. A threshold of zero selects
// the default confidence gate.
func NewPipeline(inference InferenceService, confidenceThreshold float64) *Pipeline {
	if confidenceThreshold <= 0 {
		confidenceThreshold = constants.DefaultConfidenceThreshold
	}
	return &Pipeline{
		inference:           inference,
		confidenceThreshold: confidenceThreshold,
		logger:              logger.Get(),
	}
}

// Extract runs entity and relationship extraction for a single message.
// It never returns an error: every Inference Service failure is caught here,
// logged, and degraded to the deterministic fallback or an empty result, so
// extraction can never block message delivery.
func (p *Pipeline) Extract(ctx context.Context, msg graph.Message, recentHistory []string) Result {
	// Feedback-loop guard: never re-ingest the system's own answers as facts.
	if msg.IsAIResponse {
		return Result{}
	}

	var result Result

	// @-mentions are always extracted deterministically
	result.Entities = append(result.Entities, extractMentions(msg.Text)...)

	// Everything else comes from the Inference Service, with the keyword
	// lexicon as the degradation path
	buckets, err := p.inference.ExtractEntities(ctx, msg.Text, recentHistory)
	if err != nil {
		p.logger.Warn("Entity extraction degraded to fallback lexicon",
			zap.String("message_id", msg.ID),
			zap.Error(err),
		)
		result.Entities = append(result.Entities, extractWithLexicon(msg.Text)...)
	} else {
		result.Entities = append(result.Entities, bucketsToEntities(buckets)...)
	}
	result.Entities = dedupeEntities(result.Entities)

	// Relationship extraction is a second, independently failable call
	triples, err := p.inference.ExtractRelationships(ctx, msg.Text, msg.Sender)
	if err != nil {
		p.logger.Warn("Relationship extraction skipped",
			zap.String("message_id", msg.ID),
			zap.Error(err),
		)
		return result
	}

	for _, triple := range triples {
		if triple.From == "" || triple.To == "" || triple.Relation == "" {
			continue
		}
		if triple.Confidence > 1.0 {
			// Confidence is a probability; anything above 1 is a malformed
			// score, not a very certain one.
			p.logger.Warn("Dropping relationship with out-of-range confidence",
				zap.String("relation", triple.Relation),
				zap.Float64("confidence", triple.Confidence),
			)
			continue
		}
		if triple.Confidence <= p.confidenceThreshold {
			p.logger.Debug("Dropping low-confidence relationship",
				zap.String("from", triple.From),
				zap.String("relation", triple.Relation),
				zap.String("to", triple.To),
				zap.Float64("confidence", triple.Confidence),
			)
			continue
		}
		result.Relationships = append(result.Relationships, graph.Relationship{
			From:            graph.EntityRef{Name: triple.From, Type: normalizeEntityType(triple.FromType)},
			To:              graph.EntityRef{Name: triple.To, Type: normalizeEntityType(triple.ToType)},
			Type:            triple.Relation,
			Confidence:      triple.Confidence,
			Evidence:        triple.Evidence,
			Timestamp:       ensureTimestamp(msg.Timestamp),
			SourceMessageID: msg.ID,
		})
	}

	return result
}

// extractMentions pulls @-mention tokens out as Person entities
func extractMentions(messageText string) []graph.Entity {
	matches := mentionPattern.FindAllStringSubmatch(messageText, -1)
	var entities []graph.Entity
	for _, match := range matches {
		entities = append(entities, graph.Entity{
			Name: match[1],
			Type: graph.EntityPerson,
		})
	}
	return entities
}

// bucketsToEntities flattens the fixed-shape inference response
func bucketsToEntities(buckets adapter.EntityBuckets) []graph.Entity {
	var entities []graph.Entity
	appendAll := func(names []string, entityType string) {
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			entities = append(entities, graph.Entity{Name: name, Type: entityType})
		}
	}

	appendAll(buckets.Locations, graph.EntityLocation)
	appendAll(buckets.Activities, graph.EntityActivity)
	appendAll(buckets.TimeReferences, graph.EntityTime)
	appendAll(buckets.Songs, graph.EntityMedia)
	appendAll(buckets.TVShows, graph.EntityMedia)
	appendAll(buckets.FoodItems, graph.EntityFood)
	return entities
}

// dedupeEntities removes duplicate (name, type) pairs, keeping first order
func dedupeEntities(entities []graph.Entity) []graph.Entity {
	seen := make(map[string]bool)
	var unique []graph.Entity
	for _, entity := range entities {
		key := strings.ToLower(entity.Name) + "|" + entity.Type
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, entity)
	}
	return unique
}

// normalizeEntityType maps free-form type strings from the inference
// response onto the well-known vocabulary, passing unknown types through
func normalizeEntityType(entityType string) string {
	switch strings.ToLower(strings.TrimSpace(entityType)) {
	case "person", "people", "user":
		return graph.EntityPerson
	case "location", "place":
		return graph.EntityLocation
	case "activity", "action":
		return graph.EntityActivity
	case "time", "time_reference", "date":
		return graph.EntityTime
	case "media", "song", "tv_show", "show", "music":
		return graph.EntityMedia
	case "food", "food_item", "drink":
		return graph.EntityFood
	case "":
		return graph.EntityActivity
	}
	// Open schema: unknown types pass through, capitalized
	lower := strings.ToLower(strings.TrimSpace(entityType))
	first, size := utf8.DecodeRuneInString(lower)
	return string(unicode.ToUpper(first)) + lower[size:]
}

// Timestamps on extracted relationships default to the message timestamp;
// zero timestamps get the current time so edges always sort.
func ensureTimestamp(ts time.Time) time.Time {
	if ts.IsZero() {
		return time.Now()
	}
	return ts
}
