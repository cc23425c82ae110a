package mcpserver

import "github.com/go-memo/memo/internal/store"

// AddInput defines the input schema for the memo_add tool.
type AddInput struct {
	Text      string `json:"text" jsonschema:"the text to remember"`
	Container string `json:"container,omitempty" jsonschema:"container tag to scope this memory to, defaults to the current project"`
}

// AddOutput defines the output schema for the memo_add tool.
type AddOutput struct {
	ID         string  `json:"id,omitempty" jsonschema:"the new record's id, present unless skipped"`
	Skipped    bool    `json:"skipped" jsonschema:"true if a duplicate was found and nothing was inserted"`
	Verdict    string  `json:"verdict,omitempty" jsonschema:"not_duplicate, exact_duplicate, or near_duplicate"`
	ExistingID string  `json:"existing_id,omitempty" jsonschema:"the id of the matching duplicate, when skipped"`
	Similarity float32 `json:"similarity,omitempty" jsonschema:"cosine similarity to the matching duplicate, when skipped"`
}

// SearchInput defines the input schema for the memo_search tool.
type SearchInput struct {
	Query        string  `json:"query" jsonschema:"the search query"`
	Container    string  `json:"container,omitempty" jsonschema:"container tag to scope the search to, defaults to the current project"`
	Limit        int     `json:"limit,omitempty" jsonschema:"maximum number of results, default 10"`
	Threshold    float32 `json:"threshold,omitempty" jsonschema:"minimum fused similarity to include a result"`
	SkipVector   bool    `json:"skip_vector,omitempty" jsonschema:"search full-text only, skipping vector KNN"`
	SkipFullText bool    `json:"skip_full_text,omitempty" jsonschema:"search vectors only, skipping full-text"`
}

// SearchOutput defines the output schema for the memo_search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Text    string               `json:"text" jsonschema:"the same results, pre-rendered as markdown-free plain text"`
}

// SearchResultOutput is one rendered search hit.
type SearchResultOutput struct {
	ID         string  `json:"id"`
	Content    string  `json:"content"`
	Similarity float32 `json:"similarity"`
	CreatedAt  int64   `json:"created_at"`
	Location   string  `json:"location,omitempty" jsonschema:"sourcePath:startLine-endLine for markdown-imported chunks"`
}

// ListInput defines the input schema for the memo_list tool.
type ListInput struct {
	Container string `json:"container,omitempty" jsonschema:"container tag to list, defaults to the current project"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum number of records, -1 for all, default 20"`
}

// ListOutput defines the output schema for the memo_list tool.
type ListOutput struct {
	Records []ListRecordOutput `json:"records"`
}

// ListRecordOutput is one record as returned by memo_list.
type ListRecordOutput struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
}

// ForgetInput defines the input schema for the memo_forget tool.
type ForgetInput struct {
	ID        string `json:"id" jsonschema:"the record id to delete"`
	Container string `json:"container,omitempty" jsonschema:"require the record to belong to this container"`
}

// ForgetOutput defines the output schema for the memo_forget tool.
type ForgetOutput struct {
	Deleted bool `json:"deleted"`
}

// StatusInput defines the input schema for the memo_status tool (no
// parameters).
type StatusInput struct{}

// StatusOutput defines the output schema for the memo_status tool.
type StatusOutput struct {
	EmbeddingProvider    string                 `json:"embedding_provider"`
	EmbeddingModel       string                 `json:"embedding_model"`
	EmbeddingDimensions  int                    `json:"embedding_dimensions"`
	DBPath               string                 `json:"db_path"`
	SimilarityThreshold  float32                `json:"similarity_threshold"`
	MinVectorSimilarity  float32                `json:"min_vector_similarity"`
	DeduplicationEnabled bool                   `json:"deduplication_enabled"`
	Containers           []store.ContainerCount `json:"containers"`
}
