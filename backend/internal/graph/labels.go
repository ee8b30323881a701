package graph

import (
	"regexp"
	"strings"
)

// ============================================================================
// Relationship Label Sanitization
// ============================================================================

// Relationship types are discovered at runtime from free-form model output,
// so every label passes through sanitization exactly once, here at the store
// boundary, before being interpolated into a Cypher edge label.

// wellKnownRelTypes are labels the extraction pipeline emits frequently.
// They skip sanitization because they are already valid identifiers.
var wellKnownRelTypes = map[string]bool{
	"MENTIONED":       true,
	"VISITED":         true,
	"LIKES":           true,
	"DISLIKES":        true,
	"ENJOYS_ACTIVITY": true,
	"WATCHED":         true,
	"LISTENED_TO":     true,
	"ATE":             true,
	"WENT_TO":         true,
	"ASKED_ABOUT":     true,
	"TALKED_ABOUT":    true,
	"RELATED_TO":      true,
}

var nonIdentifierChars = regexp.MustCompile(`[^A-Za-z0-9_]+`)
var underscoreRuns = regexp.MustCompile(`_+`)

// SanitizeRelType converts a free-form relationship type into a safe
// store-level edge label. Non-identifier characters collapse to underscores,
// the result is uppercased, and an empty or digit-leading result falls back
// to RELATED_TO.
func SanitizeRelType(relType string) string {
	relType = strings.TrimSpace(relType)
	if wellKnownRelTypes[relType] {
		return relType
	}

	label := nonIdentifierChars.ReplaceAllString(relType, "_")
	label = underscoreRuns.ReplaceAllString(label, "_")
	label = strings.Trim(label, "_")
	label = strings.ToUpper(label)

	if label == "" || (label[0] >= '0' && label[0] <= '9') {
		return "RELATED_TO"
	}
	return label
}

// IsWellKnownRelType reports whether the label is in the fixed vocabulary
func IsWellKnownRelType(relType string) bool {
	return wellKnownRelTypes[relType]
}
