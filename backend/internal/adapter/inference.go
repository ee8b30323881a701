package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "chatgraph/backend/pkg/errors"
	"chatgraph/backend/pkg/logger"
	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// InferenceClient talks to the Inference Service through an OpenAI-compatible
// endpoint. Calls are rate limited and guarded by a circuit breaker so a
// failing service degrades to the deterministic fallback paths instead of
// stalling message delivery.
type InferenceClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	logger  *zap.Logger
}

// Options configures the inference client's protection settings
type Options struct {
	Timeout       time.Duration
	MaxFailures   uint32
	RatePerSecond float64
	RateBurst     int
}

// DefaultOptions returns the protection settings used when none are supplied
func DefaultOptions() Options {
	return Options{
		Timeout:       30 * time.Second,
		MaxFailures:   3,
		RatePerSecond: 5,
		RateBurst:     10,
	}
}

// NewInferenceClient creates a new inference client
func NewInferenceClient(baseURL, apiKey, modelID string, opts Options) *InferenceClient {
	// Local gateways accept a dummy API key
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = strings.TrimRight(baseURL, "/") + "/v1"

	log := logger.Get()
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "InferenceService",
		Timeout: opts.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Inference circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &InferenceClient{
		client:  openai.NewClientWithConfig(config),
		model:   modelID,
		timeout: opts.Timeout,
		breaker: breaker,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.RateBurst),
		logger:  log,
	}
}

const entityExtractionPrompt = `You extract entities from chat messages. Respond with a JSON object with exactly these keys, each a list of strings (empty lists allowed): "locations", "activities", "time_references", "songs", "tv_shows", "food_items". Extract only entities actually mentioned in the message.`

const relationshipExtractionPrompt = `You extract relationships from a chat message as a JSON object {"relationships": [...]}. Each relationship has "from", "from_type", "relationship", "to", "to_type", "confidence" (0.0-1.0), and "evidence" (the supporting phrase). Extract relationships about the subjects mentioned in the message content. Do not assume the sender is the subject: in "Jake went camping", the subject is Jake, not the person who typed the message. Relationship labels are short uppercase verb phrases like VISITED or ENJOYS_ACTIVITY.`

const classificationPrompt = `You classify a chat query. Respond with a JSON object: "intent" is one of "memory_lookup" (asking what was said earlier), "graph_lookup" (who/what/when/where questions about people, places, or activities), or "general_chat" (greetings, thanks, small talk); "topics" is a list of lowercase keywords; "timeframe" is one of "last hour", "yesterday", "last week", "last month", or "" when absent.`

// ExtractEntities requests the fixed-shape entity buckets for a message
func (c *InferenceClient) ExtractEntities(ctx context.Context, messageText string, recentHistory []string) (EntityBuckets, error) {
	userMsg := messageText
	if len(recentHistory) > 0 {
		userMsg = fmt.Sprintf("Recent conversation:\n%s\n\nMessage to extract from:\n%s",
			strings.Join(recentHistory, "\n"), messageText)
	}

	content, err := c.complete(ctx, "entity extraction", entityExtractionPrompt, userMsg)
	if err != nil {
		return EntityBuckets{}, err
	}

	var buckets EntityBuckets
	if err := json.Unmarshal([]byte(content), &buckets); err != nil {
		return EntityBuckets{}, apperrors.NewMalformedPayload("entity extraction", err)
	}

	return buckets, nil
}

// ExtractRelationships requests relationship triples about the subjects
// mentioned in the message content
func (c *InferenceClient) ExtractRelationships(ctx context.Context, messageText, sender string) ([]RelationshipTriple, error) {
	userMsg := fmt.Sprintf("Sender: %s\nMessage: %s", sender, messageText)

	content, err := c.complete(ctx, "relationship extraction", relationshipExtractionPrompt, userMsg)
	if err != nil {
		return nil, err
	}

	var resp relationshipResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return nil, apperrors.NewMalformedPayload("relationship extraction", err)
	}

	return resp.Relationships, nil
}

// ClassifyQuery requests intent, topics, and timeframe for a user query
func (c *InferenceClient) ClassifyQuery(ctx context.Context, query string, recentHistory []string) (QueryClassification, error) {
	userMsg := query
	if len(recentHistory) > 0 {
		userMsg = fmt.Sprintf("Recent conversation:\n%s\n\nQuery:\n%s",
			strings.Join(recentHistory, "\n"), query)
	}

	content, err := c.complete(ctx, "query classification", classificationPrompt, userMsg)
	if err != nil {
		return QueryClassification{}, err
	}

	var classification QueryClassification
	if err := json.Unmarshal([]byte(content), &classification); err != nil {
		return QueryClassification{}, apperrors.NewMalformedPayload("query classification", err)
	}

	return classification, nil
}

// GenerateReply asks the Response Generation Service for the final answer,
// given the formatted context block and a recent-conversation excerpt
func (c *InferenceClient) GenerateReply(ctx context.Context, systemPrompt, contextBlock, historyExcerpt, query string) (string, error) {
	userMsg := fmt.Sprintf("%s\n\nRecent conversation:\n%s\n\nQuestion from the user:\n%s",
		contextBlock, historyExcerpt, query)

	content, err := c.completeText(ctx, "response generation", systemPrompt, userMsg)
	if err != nil {
		return "", err
	}
	return content, nil
}

// complete runs a JSON-mode chat completion through the limiter and breaker
func (c *InferenceClient) complete(ctx context.Context, operation, systemPrompt, userMsg string) (string, error) {
	return c.run(ctx, operation, systemPrompt, userMsg, true)
}

// completeText runs a plain-text chat completion
func (c *InferenceClient) completeText(ctx context.Context, operation, systemPrompt, userMsg string) (string, error) {
	return c.run(ctx, operation, systemPrompt, userMsg, false)
}

func (c *InferenceClient) run(ctx context.Context, operation, systemPrompt, userMsg string, jsonMode bool) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", apperrors.NewContextCancelled(operation, err)
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMsg},
		},
		Temperature: 0.2,
	}
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	// Retry with linear backoff, same as the rest of the service calls
	var content string
	var lastErr error
	maxRetries := 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			c.logger.Warn("Retrying inference request",
				zap.String("operation", operation),
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				return "", apperrors.NewContextCancelled(operation, ctx.Err())
			case <-time.After(backoff):
			}
		}

		result, err := c.breaker.Execute(func() (interface{}, error) {
			callCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			return c.client.CreateChatCompletion(callCtx, req)
		})
		if err != nil {
			lastErr = err
			c.logger.Error("Inference request failed",
				zap.String("operation", operation),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			if err == gobreaker.ErrOpenState {
				// No point hammering an open breaker
				break
			}
			continue
		}

		resp := result.(openai.ChatCompletionResponse)
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("no choices in inference response")
			continue
		}

		content = resp.Choices[0].Message.Content
		lastErr = nil
		break
	}

	if lastErr != nil {
		return "", apperrors.NewInferenceCallFailed(operation, maxRetries, lastErr)
	}

	c.logger.Debug("Inference response received",
		zap.String("operation", operation),
		zap.Int("content_length", len(content)),
	)
	return content, nil
}
