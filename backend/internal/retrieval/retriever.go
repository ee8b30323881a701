package retrieval

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"chatgraph/backend/internal/constants"
	"chatgraph/backend/internal/graph"
	"chatgraph/backend/internal/query"
	"chatgraph/backend/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Searcher is the slice of the graph store the retriever reads through
type Searcher interface {
	SearchDirect(ctx context.Context, term string, since time.Time) ([]graph.Triple, error)
	SearchByRelationType(ctx context.Context, term string, since time.Time) ([]graph.Triple, error)
	SearchWildcard(ctx context.Context, term string, since time.Time, limit int) ([]graph.Triple, error)
	SearchTwoHop(ctx context.Context, term string, since time.Time) ([]graph.Triple, error)
	SearchActorActions(ctx context.Context, term string, since time.Time) ([]graph.Triple, error)
}

var whoPattern = regexp.MustCompile(`(?i)\bwho\b`)

// Retriever runs the independent search strategies and merges their results
// deterministically
type Retriever struct {
	store       Searcher
	wildcardCap int
	logger      *zap.Logger
}

// NewRetriever creates a new retriever. A cap of zero selects the default
// wildcard result cap.
func NewRetriever(store Searcher, wildcardCap int) *Retriever {
	if wildcardCap <= 0 {
		wildcardCap = constants.DefaultWildcardResultCap
	}
	return &Retriever{
		store:       store,
		wildcardCap: wildcardCap,
		logger:      logger.Get(),
	}
}

// Retrieve unions the strategy results for every query word, deduplicates by
// (entity1, relationshipType, entity2), and sorts lexicographically by
// (entity1, entity2, relationshipType) so the output is order-stable.
// Strategy failures are logged and contribute nothing; retrieval never fails
// as a whole.
func (r *Retriever) Retrieve(ctx context.Context, queryText string, analysis query.Analysis) []graph.Triple {
	words := mergeSearchTerms(query.ExtractTopics(queryText), analysis.Topics)
	if len(words) == 0 {
		return []graph.Triple{}
	}

	since := timeframeToSince(analysis.Timeframe, time.Now())
	isWhoQuestion := whoPattern.MatchString(queryText)

	var mu sync.Mutex
	var collected []graph.Triple
	appendResults := func(strategy string, triples []graph.Triple, err error) {
		if err != nil {
			r.logger.Warn("Retrieval strategy failed",
				zap.String("strategy", strategy),
				zap.Error(err),
			)
			return
		}
		mu.Lock()
		collected = append(collected, triples...)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, word := range words {
		word := word
		g.Go(func() error {
			triples, err := r.store.SearchDirect(gctx, word, since)
			appendResults("direct", triples, err)
			return nil
		})
		g.Go(func() error {
			triples, err := r.store.SearchByRelationType(gctx, word, since)
			appendResults("relation", triples, err)
			return nil
		})
		g.Go(func() error {
			triples, err := r.store.SearchWildcard(gctx, word, since, r.wildcardCap)
			appendResults("wildcard", triples, err)
			return nil
		})
		g.Go(func() error {
			triples, err := r.store.SearchTwoHop(gctx, word, since)
			appendResults("two-hop", triples, err)
			return nil
		})
		if isWhoQuestion {
			g.Go(func() error {
				triples, err := r.store.SearchActorActions(gctx, word, since)
				appendResults("actor-action", triples, err)
				return nil
			})
		}
	}

	_ = g.Wait()

	return DedupeAndSort(collected)
}

// DedupeAndSort removes duplicate (entity1, relationshipType, entity2) keys
// and imposes the stable lexicographic order downstream prompt construction
// depends on.
func DedupeAndSort(triples []graph.Triple) []graph.Triple {
	seen := make(map[string]bool)
	unique := make([]graph.Triple, 0, len(triples))
	for _, triple := range triples {
		if triple.Entity1 == "" || triple.Entity2 == "" {
			continue
		}
		key := triple.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, triple)
	}

	sort.Slice(unique, func(i, j int) bool {
		if unique[i].Entity1 != unique[j].Entity1 {
			return unique[i].Entity1 < unique[j].Entity1
		}
		if unique[i].Entity2 != unique[j].Entity2 {
			return unique[i].Entity2 < unique[j].Entity2
		}
		return unique[i].RelType < unique[j].RelType
	})

	return unique
}

// mergeSearchTerms unions query words and analyzer topics, preserving order
func mergeSearchTerms(queryWords, topics []string) []string {
	seen := make(map[string]bool)
	var merged []string
	for _, word := range append(append([]string{}, queryWords...), topics...) {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" || seen[word] {
			continue
		}
		seen[word] = true
		merged = append(merged, word)
	}
	return merged
}

// timeframeToSince converts a canonical timeframe bucket to an edge-timestamp
// lower bound. The zero time means no filtering.
func timeframeToSince(timeframe string, now time.Time) time.Time {
	switch timeframe {
	case query.TimeframeLastHour:
		return now.Add(-time.Hour)
	case query.TimeframeYesterday:
		// Start of the previous calendar day, so all of yesterday qualifies
		year, month, day := now.AddDate(0, 0, -1).Date()
		return time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	case query.TimeframeLastWeek:
		return now.AddDate(0, 0, -7)
	case query.TimeframeLastMonth:
		return now.AddDate(0, -1, 0)
	}
	return time.Time{}
}
