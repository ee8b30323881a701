package adapter

// ============================================================================
// Inference Service Response Contracts
// ============================================================================

// Every Inference Service call has a fixed response shape. Malformed or
// failed responses never propagate past this package; callers receive a typed
// error and fall back to their deterministic paths.

// EntityBuckets is the fixed-shape entity extraction response
type EntityBuckets struct {
	Locations      []string `json:"locations"`
	Activities     []string `json:"activities"`
	TimeReferences []string `json:"time_references"`
	Songs          []string `json:"songs"`
	TVShows        []string `json:"tv_shows"`
	FoodItems      []string `json:"food_items"`
}

// IsEmpty reports whether no entities were extracted
func (b EntityBuckets) IsEmpty() bool {
	return len(b.Locations) == 0 && len(b.Activities) == 0 &&
		len(b.TimeReferences) == 0 && len(b.Songs) == 0 &&
		len(b.TVShows) == 0 && len(b.FoodItems) == 0
}

// RelationshipTriple is one extracted relationship with its confidence and
// the evidence sentence it came from
type RelationshipTriple struct {
	From       string  `json:"from"`
	FromType   string  `json:"from_type"`
	Relation   string  `json:"relationship"`
	To         string  `json:"to"`
	ToType     string  `json:"to_type"`
	Confidence float64 `json:"confidence"`
	Evidence   string  `json:"evidence"`
}

type relationshipResponse struct {
	Relationships []RelationshipTriple `json:"relationships"`
}

// QueryClassification is the intent/topic/timeframe response shape shared
// with the heuristic classifier so the two are interchangeable
type QueryClassification struct {
	Intent    string   `json:"intent"` // memory_lookup, graph_lookup, general_chat
	Topics    []string `json:"topics"`
	Timeframe string   `json:"timeframe,omitempty"`
}
