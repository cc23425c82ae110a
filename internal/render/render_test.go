package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-memo/memo/internal/search"
)

func TestSourceLocation_MarkdownChunk(t *testing.T) {
	r := search.Result{
		Type:     "doc_chunk",
		Metadata: `{"sourcePath":"docs/auth.md","sourceKey":"docs/auth.md","startLine":10,"endLine":25}`,
	}
	assert.Equal(t, "docs/auth.md:10-25", SourceLocation(r))
}

func TestSourceLocation_RepoMapEntryOmitted(t *testing.T) {
	r := search.Result{
		Type:     "doc_chunk",
		Metadata: `{"sourcePath":"main.go","sourceKey":"main.go","language":"go","importType":"repo-map"}`,
	}
	assert.Equal(t, "", SourceLocation(r))
}

func TestSourceLocation_NonChunkType(t *testing.T) {
	r := search.Result{Type: "", Metadata: ""}
	assert.Equal(t, "", SourceLocation(r))
}

func TestSourceLocation_UnparseableMetadata(t *testing.T) {
	r := search.Result{Type: "doc_chunk", Metadata: "not json"}
	assert.Equal(t, "", SourceLocation(r))
}

func TestResult_FormatsHeaderAndContent(t *testing.T) {
	r := search.Result{
		ID:         "mem_1700000000000_abc123def",
		Content:    "Auth uses JWT with 24h expiry",
		Similarity: 1.0,
		CreatedAt:  1700000000000,
	}
	out := Result(r)
	assert.Contains(t, out, "1.000")
	assert.Contains(t, out, "(mem_1700000000000_abc123def)")
	assert.Contains(t, out, "Auth uses JWT with 24h expiry")
}

func TestResult_IncludesSourceLocationForMarkdownChunk(t *testing.T) {
	r := search.Result{
		ID:         "mem_1_abc",
		Content:    "chunk text",
		Similarity: 0.75,
		Type:       "doc_chunk",
		Metadata:   `{"sourcePath":"notes.md","startLine":1,"endLine":5}`,
	}
	lines := strings.Split(Result(r), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "notes.md:1-5", lines[1])
	assert.Equal(t, "chunk text", lines[2])
}

func TestResults_EmptyListReportsNoResults(t *testing.T) {
	out := Results("barcelona weather", nil)
	assert.Contains(t, out, "No results")
	assert.Contains(t, out, "barcelona weather")
}

func TestResults_MultipleResultsSeparatedByBlankLine(t *testing.T) {
	results := []search.Result{
		{ID: "mem_1_a", Content: "first", Similarity: 1.0},
		{ID: "mem_2_b", Content: "second", Similarity: 0.8},
	}
	out := Results("q", results)
	parts := strings.Split(out, "\n\n")
	require.Len(t, parts, 2)
	assert.Contains(t, parts[0], "first")
	assert.Contains(t, parts[1], "second")
}
