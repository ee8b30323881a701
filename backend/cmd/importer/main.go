// Command importer replays a plain-text conversation script through the
// context engine, building the knowledge graph as if the messages had
// arrived live. Useful for seeding demos and for backfilling history.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"chatgraph/backend/internal/adapter"
	"chatgraph/backend/internal/extraction"
	"chatgraph/backend/internal/graph"
	"chatgraph/backend/internal/orchestrator"
	"chatgraph/backend/internal/query"
	"chatgraph/backend/internal/retrieval"
	"chatgraph/backend/pkg/config"
	"chatgraph/backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Supported script line formats, tried in order:
//
//	Day 3 - Alice: went hiking
//	[Alice] went hiking
//	Alice - went hiking
//	Alice: went hiking
var lineFormats = []*regexp.Regexp{
	regexp.MustCompile(`^Day\s+(\d+)\s*-\s*([^:]+):\s*(.+)$`),
	regexp.MustCompile(`^\[([^\]]+)\]\s*(.+)$`),
	regexp.MustCompile(`^([A-Za-z0-9_ ]+?)\s+-\s+(.+)$`),
	regexp.MustCompile(`^([^:]+):\s*(.+)$`),
}

type scriptLine struct {
	sender string
	text   string
	day    int
}

func parseLine(raw string) (scriptLine, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "#") {
		return scriptLine{}, false
	}

	if m := lineFormats[0].FindStringSubmatch(raw); m != nil {
		day := 0
		fmt.Sscanf(m[1], "%d", &day)
		return scriptLine{sender: strings.TrimSpace(m[2]), text: strings.TrimSpace(m[3]), day: day}, true
	}
	for _, format := range lineFormats[1:] {
		if m := format.FindStringSubmatch(raw); m != nil {
			return scriptLine{sender: strings.TrimSpace(m[1]), text: strings.TrimSpace(m[2]), day: 1}, true
		}
	}
	return scriptLine{}, false
}

func main() {
	scriptPath := flag.String("file", "", "path to the conversation script")
	reset := flag.Bool("reset", false, "wipe the graph before importing")
	spacing := flag.Duration("spacing", time.Minute, "simulated gap between messages")
	flag.Parse()

	if *scriptPath == "" {
		fmt.Fprintln(os.Stderr, "usage: importer -file conversation.txt [-reset] [-spacing 1m]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}
	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()
	log := logger.Get()

	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Graph store unreachable", zap.Error(err))
	}

	graphRepo := graph.NewRepository(driver)
	if *reset {
		log.Info("Clearing graph before import")
		if err := graphRepo.ClearAll(ctx); err != nil {
			log.Fatal("Failed to clear graph", zap.Error(err))
		}
	}
	if err := graphRepo.EnsureIndexes(ctx); err != nil {
		log.Warn("Failed to ensure graph indexes", zap.Error(err))
	}

	inference := adapter.NewInferenceClient(cfg.InferenceURL, cfg.InferenceAPIKey, cfg.ModelID, adapter.Options{
		Timeout:       time.Duration(cfg.InferenceTimeoutSeconds) * time.Second,
		MaxFailures:   uint32(cfg.InferenceMaxFailures),
		RatePerSecond: cfg.InferenceRatePerSecond,
		RateBurst:     cfg.InferenceRateBurst,
	})
	pipeline := extraction.NewPipeline(inference, cfg.ConfidenceThreshold)
	retriever := retrieval.NewRetriever(graphRepo, cfg.WildcardResultCap)

	memory, err := orchestrator.NewMemoryLog(cfg.MemoryLogSize, cfg.MemoryLogSenders)
	if err != nil {
		log.Fatal("Failed to create memory log", zap.Error(err))
	}
	engine := orchestrator.NewEngine(graphRepo, pipeline, query.NewHeuristicClassifier(), retriever, inference, memory, orchestrator.Options{
		ChatHistoryWindow:  cfg.ChatHistoryWindow,
		QueryHistoryWindow: cfg.QueryHistoryWindow,
	})

	file, err := os.Open(*scriptPath)
	if err != nil {
		log.Fatal("Failed to open script", zap.String("path", *scriptPath), zap.Error(err))
	}
	defer file.Close()

	// Messages are timestamped backwards from now, one spacing apart per
	// message plus one day per "Day N" marker, so timeframe filters behave
	// sensibly against freshly imported data.
	var lines []scriptLine
	scanner := bufio.NewScanner(file)
	skipped := 0
	for scanner.Scan() {
		line, ok := parseLine(scanner.Text())
		if !ok {
			if strings.TrimSpace(scanner.Text()) != "" && !strings.HasPrefix(strings.TrimSpace(scanner.Text()), "#") {
				skipped++
			}
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		log.Fatal("Failed to read script", zap.Error(err))
	}

	maxDay := 1
	for _, line := range lines {
		if line.day > maxDay {
			maxDay = line.day
		}
	}
	base := time.Now().Add(-time.Duration(len(lines)) * *spacing)

	var recent []string
	imported := 0
	for i, line := range lines {
		ts := base.Add(time.Duration(i) * *spacing)
		if line.day > 0 {
			ts = ts.AddDate(0, 0, line.day-maxDay)
		}

		msg := graph.Message{
			ID:        uuid.New().String(),
			Sender:    line.sender,
			Text:      line.text,
			Timestamp: ts,
		}

		engine.RecordMessage(ctx, msg, recent)
		recent = append(recent, fmt.Sprintf("%s: %s", line.sender, line.text))
		if len(recent) > cfg.ChatHistoryWindow {
			recent = recent[len(recent)-cfg.ChatHistoryWindow:]
		}
		imported++
	}

	log.Info("Import complete",
		zap.String("file", *scriptPath),
		zap.Int("imported", imported),
		zap.Int("skipped", skipped),
	)
	fmt.Printf("Imported %d messages (%d lines skipped)\n", imported, skipped)
}
