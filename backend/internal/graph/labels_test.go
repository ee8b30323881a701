package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeRelTypeWellKnownPassThrough(t *testing.T) {
	for _, label := range []string{"VISITED", "ENJOYS_ACTIVITY", "LISTENED_TO"} {
		assert.Equal(t, label, SanitizeRelType(label))
		assert.True(t, IsWellKnownRelType(label))
	}
}

func TestSanitizeRelTypeCustomLabels(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "went camping with", "WENT_CAMPING_WITH"},
		{"punctuation", "likes-to; drop table!", "LIKES_TO_DROP_TABLE"},
		{"collapses underscores", "ate___with", "ATE_WITH"},
		{"strips edges", "__watched__", "WATCHED"},
		{"empty falls back", "", "RELATED_TO"},
		{"symbols only falls back", "!!!", "RELATED_TO"},
		{"digit leading falls back", "9_lives", "RELATED_TO"},
		{"cypher injection stripped", "X]->(n) DETACH DELETE n //", "X_N_DETACH_DELETE_N"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeRelType(tt.in))
		})
	}
}

func TestTripleKey(t *testing.T) {
	a := Triple{Entity1: "Jake", RelType: "VISITED", Entity2: "beach"}
	b := Triple{Entity1: "Jake", RelType: "VISITED", Entity2: "beach", Entity1Type: EntityPerson}
	c := Triple{Entity1: "Jake", RelType: "WENT_TO", Entity2: "beach"}

	assert.Equal(t, a.Key(), b.Key(), "entity types do not affect identity")
	assert.NotEqual(t, a.Key(), c.Key())
}
