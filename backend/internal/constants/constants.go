package constants

// Orchestration constants
const (
	// GenericApology is the fixed fallback reply returned when any stage of
	// response orchestration fails. AnswerQuery never surfaces a raw error.
	GenericApology = "I'm sorry, I'm having trouble coming up with a response right now. Please try again in a moment."

	// NoContextSentinel is emitted by the context formatter when every
	// section is empty, so the generation service can decline honestly
	// instead of fabricating an answer.
	NoContextSentinel = "No relevant context found in the conversation history."
)

// Extraction constants
const (
	// DefaultConfidenceThreshold gates relationship persistence; only triples
	// with confidence strictly above this value are written to the graph.
	DefaultConfidenceThreshold = 0.6
)

// Retrieval constants
const (
	// DefaultWildcardResultCap bounds the combined wildcard search strategy.
	DefaultWildcardResultCap = 15
)
