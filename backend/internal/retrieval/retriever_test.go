package retrieval

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"chatgraph/backend/internal/graph"
	"chatgraph/backend/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStore returns canned triples per strategy and records which strategies
// and terms were hit
type stubStore struct {
	mu        sync.Mutex
	direct    map[string][]graph.Triple
	relation  map[string][]graph.Triple
	wildcard  map[string][]graph.Triple
	twoHop    map[string][]graph.Triple
	actor     map[string][]graph.Triple
	actorHits int
	failAll   bool
	lastSince time.Time
}

func (s *stubStore) lookup(m map[string][]graph.Triple, term string, since time.Time) ([]graph.Triple, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return nil, errors.New("store down")
	}
	s.lastSince = since
	return m[term], nil
}

func (s *stubStore) SearchDirect(_ context.Context, term string, since time.Time) ([]graph.Triple, error) {
	return s.lookup(s.direct, term, since)
}

func (s *stubStore) SearchByRelationType(_ context.Context, term string, since time.Time) ([]graph.Triple, error) {
	return s.lookup(s.relation, term, since)
}

func (s *stubStore) SearchWildcard(_ context.Context, term string, since time.Time, _ int) ([]graph.Triple, error) {
	return s.lookup(s.wildcard, term, since)
}

func (s *stubStore) SearchTwoHop(_ context.Context, term string, since time.Time) ([]graph.Triple, error) {
	return s.lookup(s.twoHop, term, since)
}

func (s *stubStore) SearchActorActions(_ context.Context, term string, since time.Time) ([]graph.Triple, error) {
	s.mu.Lock()
	s.actorHits++
	s.mu.Unlock()
	return s.lookup(s.actor, term, since)
}

func triple(e1, rel, e2 string) graph.Triple {
	return graph.Triple{Entity1: e1, RelType: rel, Entity2: e2}
}

func TestRetrieveUnionsDedupesAndSorts(t *testing.T) {
	store := &stubStore{
		direct: map[string][]graph.Triple{
			"beach": {triple("Jake", "VISITED", "beach")},
		},
		wildcard: map[string][]graph.Triple{
			// Same edge again plus a second one, arriving from another strategy
			"beach": {triple("Jake", "VISITED", "beach"), triple("Maria", "LIKES", "beach")},
		},
	}
	retriever := NewRetriever(store, 0)

	results := retriever.Retrieve(context.Background(), "tell me about the beach", query.Analysis{Intent: query.IntentGraphLookup})

	require.Len(t, results, 2, "duplicate edge appears once")
	assert.Equal(t, "Jake", results[0].Entity1)
	assert.Equal(t, "Maria", results[1].Entity1)
}

func TestRetrieveIncludesBothTwoHopEdges(t *testing.T) {
	// The store's two-hop search returns both edges of each matched path;
	// Retrieve must carry both through even when the term only names the far
	// endpoint of the path.
	store := &stubStore{
		twoHop: map[string][]graph.Triple{
			"yosemite": {
				triple("Jake", "ENJOYS_ACTIVITY", "camping"),
				triple("camping", "WENT_TO", "Yosemite"),
			},
		},
	}
	retriever := NewRetriever(store, 0)

	results := retriever.Retrieve(context.Background(), "tell me about Yosemite", query.Analysis{Intent: query.IntentGraphLookup})

	require.Len(t, results, 2)
	assert.Equal(t, triple("Jake", "ENJOYS_ACTIVITY", "camping"), results[0])
	assert.Equal(t, triple("camping", "WENT_TO", "Yosemite"), results[1])
}

func TestRetrieveActorStrategyOnlyForWhoQuestions(t *testing.T) {
	store := &stubStore{
		actor: map[string][]graph.Triple{
			"beach": {triple("Jake", "VISITED", "beach")},
		},
	}
	retriever := NewRetriever(store, 0)

	retriever.Retrieve(context.Background(), "what about the beach", query.Analysis{})
	assert.Zero(t, store.actorHits)

	results := retriever.Retrieve(context.Background(), "who visited the beach", query.Analysis{})
	assert.NotZero(t, store.actorHits)
	assert.Len(t, results, 1)
}

func TestRetrieveSurvivesStrategyFailures(t *testing.T) {
	retriever := NewRetriever(&stubStore{failAll: true}, 0)

	results := retriever.Retrieve(context.Background(), "who visited the beach", query.Analysis{})

	assert.Empty(t, results, "failures degrade to no context, never an error")
}

func TestRetrieveNoSearchableWords(t *testing.T) {
	retriever := NewRetriever(&stubStore{}, 0)

	results := retriever.Retrieve(context.Background(), "do you go?", query.Analysis{})

	assert.Empty(t, results)
}

func TestRetrieveMergesAnalyzerTopics(t *testing.T) {
	store := &stubStore{
		direct: map[string][]graph.Triple{
			"yosemite": {triple("Jake", "VISITED", "Yosemite")},
		},
	}
	retriever := NewRetriever(store, 0)

	// "yosemite" only appears as an analyzer topic, not in the query words
	results := retriever.Retrieve(context.Background(), "where did he go", query.Analysis{Topics: []string{"Yosemite"}})

	assert.Len(t, results, 1)
}

func TestDedupeAndSortIsDeterministic(t *testing.T) {
	shuffled := []graph.Triple{
		triple("Maria", "LIKES", "beach"),
		triple("Jake", "VISITED", "beach"),
		triple("Jake", "ATE", "pizza"),
		triple("Jake", "VISITED", "beach"),
		triple("Jake", "WENT_TO", "beach"),
		triple("", "VISITED", "beach"),
	}

	want := []graph.Triple{
		triple("Jake", "VISITED", "beach"),
		triple("Jake", "WENT_TO", "beach"),
		triple("Jake", "ATE", "pizza"),
		triple("Maria", "LIKES", "beach"),
	}

	assert.Equal(t, want, DedupeAndSort(shuffled))
	// A different arrival order converges on the same output
	reversed := []graph.Triple{shuffled[4], shuffled[3], shuffled[2], shuffled[1], shuffled[0]}
	assert.Equal(t, want, DedupeAndSort(reversed))
}

func TestTimeframeToSince(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC)

	assert.Equal(t, now.Add(-time.Hour), timeframeToSince(query.TimeframeLastHour, now))
	assert.Equal(t, time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC), timeframeToSince(query.TimeframeYesterday, now))
	assert.Equal(t, now.AddDate(0, 0, -7), timeframeToSince(query.TimeframeLastWeek, now))
	assert.Equal(t, now.AddDate(0, -1, 0), timeframeToSince(query.TimeframeLastMonth, now))
	assert.True(t, timeframeToSince("", now).IsZero())
	assert.True(t, timeframeToSince("next year", now).IsZero())
}
