package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"chatgraph/backend/internal/adapter"
	"chatgraph/backend/internal/extraction"
	"chatgraph/backend/internal/graph"
	"chatgraph/backend/internal/orchestrator"
	"chatgraph/backend/internal/query"
	"chatgraph/backend/internal/retrieval"
	"chatgraph/backend/pkg/config"
	"chatgraph/backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// recentMessages is a small rolling buffer used when a query request does not
// carry its own history. Message persistence itself is owned upstream.
type recentMessages struct {
	mu       sync.Mutex
	messages []graph.Message
	limit    int
}

func (r *recentMessages) add(msg graph.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	if len(r.messages) > r.limit {
		r.messages = r.messages[len(r.messages)-r.limit:]
	}
}

func (r *recentMessages) snapshot() []graph.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]graph.Message, len(r.messages))
	copy(out, r.messages)
	return out
}

func (r *recentMessages) lines(window int) []string {
	msgs := r.snapshot()
	if window > 0 && len(msgs) > window {
		msgs = msgs[len(msgs)-window:]
	}
	lines := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		lines = append(lines, fmt.Sprintf("%s: %s", msg.Sender, msg.Text))
	}
	return lines
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting chat graph server...")

	// Initialize Neo4j driver. Connectivity failure is not fatal: graph
	// operations degrade to logged errors and empty results, and message
	// handling continues with reduced context.
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	ctx := context.Background()
	graphRepo := graph.NewRepository(driver)
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Warn("Graph store unavailable, continuing degraded", zap.Error(err))
	} else if err := graphRepo.EnsureIndexes(ctx); err != nil {
		log.Warn("Failed to ensure graph indexes", zap.Error(err))
	}

	// Inference Service client
	inference := adapter.NewInferenceClient(cfg.InferenceURL, cfg.InferenceAPIKey, cfg.ModelID, adapter.Options{
		Timeout:       time.Duration(cfg.InferenceTimeoutSeconds) * time.Second,
		MaxFailures:   uint32(cfg.InferenceMaxFailures),
		RatePerSecond: cfg.InferenceRatePerSecond,
		RateBurst:     cfg.InferenceRateBurst,
	})

	// Query classifier, selected by configuration
	var classifier query.Classifier
	if cfg.ClassifierMode == config.ClassifierInference {
		classifier = query.NewInferenceClassifier(inference)
	} else {
		classifier = query.NewHeuristicClassifier()
	}

	pipeline := extraction.NewPipeline(inference, cfg.ConfidenceThreshold)
	retriever := retrieval.NewRetriever(graphRepo, cfg.WildcardResultCap)

	memory, err := orchestrator.NewMemoryLog(cfg.MemoryLogSize, cfg.MemoryLogSenders)
	if err != nil {
		log.Fatal("Failed to create memory log", zap.Error(err))
	}

	engine := orchestrator.NewEngine(graphRepo, pipeline, classifier, retriever, inference, memory, orchestrator.Options{
		ChatHistoryWindow:  cfg.ChatHistoryWindow,
		QueryHistoryWindow: cfg.QueryHistoryWindow,
	})

	recent := &recentMessages{limit: cfg.QueryHistoryWindow}

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API routes
	api := router.Group("/api")
	{
		// Record a chat message: runs extraction and graph mutation.
		// Invoked after the message is durably recorded upstream.
		api.POST("/messages", func(c *gin.Context) {
			var req struct {
				ID           string    `json:"id"`
				Sender       string    `json:"sender" binding:"required"`
				Text         string    `json:"text" binding:"required"`
				Timestamp    time.Time `json:"timestamp"`
				IsAIResponse bool      `json:"is_ai_response"`
			}

			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			msg := graph.Message{
				ID:           req.ID,
				Sender:       req.Sender,
				Text:         req.Text,
				Timestamp:    req.Timestamp,
				IsAIResponse: req.IsAIResponse,
			}
			if msg.ID == "" {
				msg.ID = uuid.New().String()
			}
			if msg.Timestamp.IsZero() {
				msg.Timestamp = time.Now()
			}

			engine.RecordMessage(c.Request.Context(), msg, recent.lines(cfg.ChatHistoryWindow))
			recent.add(msg)

			c.JSON(http.StatusAccepted, gin.H{"id": msg.ID})
		})

		// Answer a natural-language question about the conversation history
		api.POST("/query", func(c *gin.Context) {
			var req struct {
				Query   string          `json:"query" binding:"required"`
				Sender  string          `json:"sender" binding:"required"`
				History []graph.Message `json:"history"`
			}

			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			history := req.History
			if len(history) == 0 {
				history = recent.snapshot()
			}

			reply := engine.AnswerQuery(c.Request.Context(), req.Query, req.Sender, history)

			answerMsg := graph.Message{
				ID:           uuid.New().String(),
				Sender:       "assistant",
				Text:         reply,
				Timestamp:    time.Now(),
				IsAIResponse: true,
			}
			// The answer flows back through RecordMessage where the
			// feedback-loop guard keeps it out of the graph as facts.
			engine.RecordMessage(c.Request.Context(), answerMsg, nil)
			recent.add(answerMsg)

			c.JSON(http.StatusOK, gin.H{"reply": reply})
		})

		// Thread summary by topic
		api.GET("/threads/:topic", func(c *gin.Context) {
			thread, err := graphRepo.GetThread(c.Request.Context(), c.Param("topic"))
			if err != nil {
				log.Error("Failed to get thread", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch thread"})
				return
			}
			if thread == nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "Thread not found"})
				return
			}
			c.JSON(http.StatusOK, thread)
		})

		// Wipe the graph: the conversation-reset path
		api.DELETE("/graph", func(c *gin.Context) {
			if err := graphRepo.ClearAll(c.Request.Context()); err != nil {
				log.Error("Failed to clear graph", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear graph"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "cleared"})
		})
	}

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
