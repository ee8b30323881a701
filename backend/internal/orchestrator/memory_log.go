package orchestrator

import (
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ============================================================================
// Per-Sender Memory Log
// ============================================================================

// MemoryEntry is one past (query, answer) exchange
type MemoryEntry struct {
	Query     string
	Answer    string
	Timestamp time.Time
}

// MemoryLog is a bounded, in-process log of past exchanges per sender.
// Each sender keeps at most entryLimit entries with FIFO eviction, and the
// sender set itself is LRU-bounded so long-running processes cannot grow
// without bound. Supplementary and non-persistent: not shared across
// processes. The log is owned and injected, never a package-level global.
type MemoryLog struct {
	mu         sync.Mutex
	senders    *lru.Cache[string, []MemoryEntry]
	entryLimit int
}

// NewMemoryLog creates a memory log holding entryLimit entries for up to
// senderLimit senders
func NewMemoryLog(entryLimit, senderLimit int) (*MemoryLog, error) {
	if entryLimit < 1 {
		entryLimit = 50
	}
	if senderLimit < 1 {
		senderLimit = 256
	}

	senders, err := lru.New[string, []MemoryEntry](senderLimit)
	if err != nil {
		return nil, err
	}

	return &MemoryLog{
		senders:    senders,
		entryLimit: entryLimit,
	}, nil
}

// Record appends an exchange to the sender's log, evicting the oldest entry
// once the limit is reached
func (m *MemoryLog) Record(sender, query, answer string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, _ := m.senders.Get(sender)
	entries = append(entries, MemoryEntry{
		Query:     query,
		Answer:    answer,
		Timestamp: time.Now(),
	})
	if len(entries) > m.entryLimit {
		entries = entries[len(entries)-m.entryLimit:]
	}
	m.senders.Add(sender, entries)
}

// Recall returns the sender's past exchanges that mention any of the given
// words, most recent last. Empty words returns the whole log.
func (m *MemoryLog) Recall(sender string, words []string) []MemoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, ok := m.senders.Get(sender)
	if !ok {
		return nil
	}
	if len(words) == 0 {
		recalled := make([]MemoryEntry, len(entries))
		copy(recalled, entries)
		return recalled
	}

	var recalled []MemoryEntry
	for _, entry := range entries {
		haystack := strings.ToLower(entry.Query + " " + entry.Answer)
		for _, word := range words {
			if strings.Contains(haystack, strings.ToLower(word)) {
				recalled = append(recalled, entry)
				break
			}
		}
	}
	return recalled
}

// Len reports how many entries a sender currently has
func (m *MemoryLog) Len(sender string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, _ := m.senders.Get(sender)
	return len(entries)
}
