package orchestrator

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"chatgraph/backend/internal/constants"
	"chatgraph/backend/internal/extraction"
	"chatgraph/backend/internal/formatter"
	"chatgraph/backend/internal/graph"
	"chatgraph/backend/internal/query"
	"chatgraph/backend/internal/retrieval"
	"chatgraph/backend/pkg/logger"
	"go.uber.org/zap"
)

// GraphWriter is the slice of the graph store the engine writes through.
// Every write is independently failable; the engine logs and continues on
// partial failure because idempotent merges backfill missing pieces later.
type GraphWriter interface {
	SyncMessage(ctx context.Context, msg graph.Message) error
	LinkMessageMention(ctx context.Context, messageID, personName string) error
	UpsertEntity(ctx context.Context, name, entityType string) (graph.EntityRef, error)
	CreateRelationship(ctx context.Context, rel graph.Relationship) error
	UpsertThread(ctx context.Context, topic, participant, messageID string, activity time.Time) error
}

// Extractor runs the extraction pipeline for one message
type Extractor interface {
	Extract(ctx context.Context, msg graph.Message, recentHistory []string) extraction.Result
}

// ContextRetriever runs the multi-strategy graph search
type ContextRetriever interface {
	Retrieve(ctx context.Context, queryText string, analysis query.Analysis) []graph.Triple
}

// ResponseGenerator is the external Response Generation Service boundary
type ResponseGenerator interface {
	GenerateReply(ctx context.Context, systemPrompt, contextBlock, historyExcerpt, queryText string) (string, error)
}

// stage is a state of the response orchestration machine
type stage int

const (
	stageParseIntent stage = iota
	stageMemoryLookup
	stageGraphLookup
	stageGenerate
	stageDone
)

var infoSeekingPattern = regexp.MustCompile(`(?i)\b(who|what|when|where)\b`)

const generationSystemPrompt = `You are a helpful assistant in a group chat. Answer the user's question using the knowledge-graph context and conversation excerpt provided. If the context says no relevant context was found and the excerpt does not answer the question, say you don't have that information rather than guessing.`

// Options tunes the engine's history windows
type Options struct {
	// ChatHistoryWindow is the rolling excerpt size for casual chat
	ChatHistoryWindow int
	// QueryHistoryWindow is the widened excerpt size for information-seeking
	// questions, up to the full history
	QueryHistoryWindow int
}

// Engine ties extraction, retrieval, and response generation together. It is
// the only surface this core exposes: RecordMessage and AnswerQuery.
type Engine struct {
	store      GraphWriter
	extractor  Extractor
	classifier query.Classifier
	retriever  ContextRetriever
	generator  ResponseGenerator
	memory     *MemoryLog
	opts       Options
	logger     *zap.Logger
}

// NewEngine creates a new orchestration engine
func NewEngine(store GraphWriter, extractor Extractor, classifier query.Classifier, retriever ContextRetriever, generator ResponseGenerator, memory *MemoryLog, opts Options) *Engine {
	if opts.ChatHistoryWindow < 1 {
		opts.ChatHistoryWindow = 10
	}
	if opts.QueryHistoryWindow < opts.ChatHistoryWindow {
		opts.QueryHistoryWindow = 200
	}
	return &Engine{
		store:      store,
		extractor:  extractor,
		classifier: classifier,
		retriever:  retriever,
		generator:  generator,
		memory:     memory,
		opts:       opts,
		logger:     logger.Get(),
	}
}

// RecordMessage mirrors a durably-recorded message into the graph and runs
// extraction on it. Every sub-write is independent: a failed relationship
// write never aborts entity writes, and nothing here can fail message
// delivery — all errors are caught and logged at this boundary.
func (e *Engine) RecordMessage(ctx context.Context, msg graph.Message, recentHistory []string) {
	if err := e.store.SyncMessage(ctx, msg); err != nil {
		e.logger.Warn("Message sync failed, continuing with reduced context",
			zap.String("message_id", msg.ID),
			zap.Error(err),
		)
	}

	result := e.extractor.Extract(ctx, msg, recentHistory)
	if result.IsEmpty() {
		return
	}

	var threadTopic string
	for _, entity := range result.Entities {
		if _, err := e.store.UpsertEntity(ctx, entity.Name, entity.Type); err != nil {
			e.logger.Warn("Entity upsert failed",
				zap.String("entity", entity.Name),
				zap.Error(err),
			)
			continue
		}
		if entity.Type == graph.EntityPerson {
			if err := e.store.LinkMessageMention(ctx, msg.ID, entity.Name); err != nil {
				e.logger.Warn("Mention link failed",
					zap.String("person", entity.Name),
					zap.Error(err),
				)
			}
		} else if threadTopic == "" {
			threadTopic = entity.Name
		}
	}

	for _, rel := range result.Relationships {
		if err := e.store.CreateRelationship(ctx, rel); err != nil {
			e.logger.Warn("Relationship write failed",
				zap.String("from", rel.From.Name),
				zap.String("type", rel.Type),
				zap.Error(err),
			)
		}
	}

	if threadTopic != "" {
		if err := e.store.UpsertThread(ctx, threadTopic, msg.Sender, msg.ID, msg.Timestamp); err != nil {
			e.logger.Warn("Thread upsert failed",
				zap.String("topic", threadTopic),
				zap.Error(err),
			)
		}
	}

	e.logger.Debug("Message recorded",
		zap.String("message_id", msg.ID),
		zap.Int("entities", len(result.Entities)),
		zap.Int("relationships", len(result.Relationships)),
	)
}

// AnswerQuery runs the full orchestration state machine and always returns a
// reply string. Any failure at any stage yields the fixed generic apology;
// this method never returns an error and never panics out.
func (e *Engine) AnswerQuery(ctx context.Context, queryText, sender string, history []graph.Message) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Orchestration panicked", zap.Any("panic", r))
			reply = constants.GenericApology
		}
	}()

	answer, err := e.runStateMachine(ctx, queryText, sender, history)
	if err != nil {
		e.logger.Error("Orchestration failed",
			zap.String("sender", sender),
			zap.Error(err),
		)
		return constants.GenericApology
	}

	e.memory.Record(sender, queryText, answer)
	return answer
}

// runStateMachine sequences ParseIntent → route(intent) → GenerateResponse
func (e *Engine) runStateMachine(ctx context.Context, queryText, sender string, history []graph.Message) (string, error) {
	var analysis query.Analysis
	var contextBlock string

	current := stageParseIntent
	for current != stageDone {
		switch current {
		case stageParseIntent:
			analysis = e.classifier.Classify(ctx, queryText, historyLines(history, e.opts.ChatHistoryWindow))
			e.logger.Debug("Query classified",
				zap.String("intent", string(analysis.Intent)),
				zap.Strings("topics", analysis.Topics),
				zap.String("timeframe", analysis.Timeframe),
			)
			switch analysis.Intent {
			case query.IntentMemoryLookup:
				current = stageMemoryLookup
			case query.IntentGraphLookup:
				current = stageGraphLookup
			default:
				// GeneralChat needs no lookup
				current = stageGenerate
			}

		case stageMemoryLookup:
			contextBlock = e.memoryContext(sender, analysis.Topics)
			current = stageGenerate

		case stageGraphLookup:
			triples := e.retriever.Retrieve(ctx, queryText, analysis)
			ranked := retrieval.Rank(triples)
			contextBlock = formatter.Format(ranked)
			current = stageGenerate

		case stageGenerate:
			excerpt := e.historyExcerpt(queryText, analysis.Intent, history)
			answer, err := e.generator.GenerateReply(ctx, generationSystemPrompt, contextBlock, excerpt, queryText)
			if err != nil {
				return "", fmt.Errorf("response generation failed: %w", err)
			}
			if strings.TrimSpace(answer) == "" {
				return "", fmt.Errorf("response generation returned empty reply")
			}
			return answer, nil
		}
	}

	return "", fmt.Errorf("orchestration reached done without a reply")
}

// memoryContext formats recalled past exchanges for the prompt
func (e *Engine) memoryContext(sender string, topics []string) string {
	entries := e.memory.Recall(sender, topics)
	if len(entries) == 0 {
		return constants.NoContextSentinel
	}

	var lines []string
	for _, entry := range entries {
		lines = append(lines, fmt.Sprintf("- Asked: %q Answered: %q", entry.Query, entry.Answer))
	}
	return "Past Exchanges:\n" + strings.Join(lines, "\n")
}

// historyExcerpt selects the conversation window for the prompt. Information-
// seeking questions (who/what/when/where) widen the window dramatically, up
// to the full history; casual chat keeps a small rolling window.
func (e *Engine) historyExcerpt(queryText string, intent query.Intent, history []graph.Message) string {
	window := e.opts.ChatHistoryWindow
	if intent == query.IntentGraphLookup || intent == query.IntentMemoryLookup || infoSeekingPattern.MatchString(queryText) {
		window = e.opts.QueryHistoryWindow
	}
	return strings.Join(historyLines(history, window), "\n")
}

// historyLines renders the most recent messages as "sender: text" lines
func historyLines(history []graph.Message, window int) []string {
	if window > 0 && len(history) > window {
		history = history[len(history)-window:]
	}
	lines := make([]string, 0, len(history))
	for _, msg := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", msg.Sender, msg.Text))
	}
	return lines
}
