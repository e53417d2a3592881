package domain

// Intent is the routing label assigned to a query.
type Intent string

const (
	IntentDocQuestion Intent = "doc_question"
	IntentGeneral     Intent = "general"
	IntentError       Intent = "error"
)

// Chunk is a bounded span of source-document text with provenance metadata.
// Chunks are immutable once created and unique by (SourceID, ChunkIndex).
type Chunk struct {
	Text       string `json:"text"`
	SourceID   string `json:"source_id"`
	PageNumber int    `json:"page_number"`
	ChunkIndex int    `json:"chunk_index"`
}

// ScoredChunk is a retrieved chunk with its similarity to the query.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// Attribution points a reader back at the source of an answer fragment.
type Attribution struct {
	Source  string `json:"source"`
	Page    int    `json:"page"`
	Snippet string `json:"snippet"`
}

// Query is one incoming request, correlated across logs by its trace ID.
type Query struct {
	Text    string
	TraceID string
}

// Result is the unified response shape for one query, regardless of which
// path answered it. Error being set implies Response is empty.
type Result struct {
	Response   string   `json:"response,omitempty"`
	Intent     Intent   `json:"intent"`
	SourceDocs []string `json:"source_docs,omitempty"`
	Error      string   `json:"error,omitempty"`
	TraceID    string   `json:"trace_id"`
}
