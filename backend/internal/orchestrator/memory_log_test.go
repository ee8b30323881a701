package orchestrator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLogRecordAndRecall(t *testing.T) {
	log, err := NewMemoryLog(50, 16)
	require.NoError(t, err)

	log.Record("jake", "who went camping?", "You did, at Yosemite.")
	log.Record("jake", "what's for dinner?", "Pizza, apparently.")

	recalled := log.Recall("jake", []string{"camping"})
	require.Len(t, recalled, 1)
	assert.Equal(t, "who went camping?", recalled[0].Query)

	// Empty words recall everything
	assert.Len(t, log.Recall("jake", nil), 2)
	// Matching runs over answers too
	assert.Len(t, log.Recall("jake", []string{"yosemite"}), 1)
	// Unknown sender recalls nothing
	assert.Empty(t, log.Recall("maria", nil))
}

func TestMemoryLogFIFOEviction(t *testing.T) {
	log, err := NewMemoryLog(3, 16)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		log.Record("jake", fmt.Sprintf("question %d", i), "answer")
	}

	assert.Equal(t, 3, log.Len("jake"))
	entries := log.Recall("jake", nil)
	assert.Equal(t, "question 2", entries[0].Query, "oldest entries evicted first")
	assert.Equal(t, "question 4", entries[2].Query)
}

func TestMemoryLogSenderBound(t *testing.T) {
	log, err := NewMemoryLog(10, 2)
	require.NoError(t, err)

	log.Record("a", "q", "a")
	log.Record("b", "q", "a")
	log.Record("c", "q", "a")

	// Sender set is LRU-bounded: the least recently used sender fell out
	assert.Zero(t, log.Len("a"))
	assert.Equal(t, 1, log.Len("b"))
	assert.Equal(t, 1, log.Len("c"))
}

func TestMemoryLogDefaults(t *testing.T) {
	log, err := NewMemoryLog(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 50, log.entryLimit)
}
