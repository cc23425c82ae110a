// Package render formats search.Result values for display, implementing
// the one rendering contract both the CLI and the MCP server present to
// their callers: a similarity/id/date header, an optional source-location
// line for markdown chunks, then the content.
package render

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-memo/memo/internal/search"
)

// docChunkType is the Store.Record.Type value the importer stamps on
// every markdown/repo-map chunk; only chunks of this type ever carry a
// source-location line.
const docChunkType = "doc_chunk"

// chunkLocation is the subset of the importer's opaque metadata shapes
// this package cares about: the two fields needed to print
// sourcePath:startLine-endLine, plus the discriminator that tells a
// markdown chunk apart from a repo-map entry (which has no line range).
type chunkLocation struct {
	SourcePath string `json:"sourcePath"`
	StartLine  int    `json:"startLine"`
	EndLine    int    `json:"endLine"`
	ImportType string `json:"importType"`
}

// SourceLocation returns the "sourcePath:startLine-endLine" line for r, or
// "" if r isn't a markdown chunk (wrong type, repo-map origin, or
// unparseable/absent metadata).
func SourceLocation(r search.Result) string {
	if r.Type != docChunkType || r.Metadata == "" {
		return ""
	}
	var loc chunkLocation
	if err := json.Unmarshal([]byte(r.Metadata), &loc); err != nil {
		return ""
	}
	if loc.ImportType == "repo-map" || loc.SourcePath == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d-%d", loc.SourcePath, loc.StartLine, loc.EndLine)
}

// Result renders one result: a header line with 3-decimal similarity, the
// id in parentheses, the ISO date of its creation time, an optional
// source-location line, then the content.
func Result(r search.Result) string {
	var sb strings.Builder
	date := time.UnixMilli(r.CreatedAt).UTC().Format("2006-01-02")
	fmt.Fprintf(&sb, "%.3f (%s) %s\n", r.Similarity, r.ID, date)
	if loc := SourceLocation(r); loc != "" {
		sb.WriteString(loc)
		sb.WriteString("\n")
	}
	sb.WriteString(r.Content)
	return sb.String()
}

// Results renders every result in order, separated by a blank line, or a
// single "no results" line when results is empty.
func Results(query string, results []search.Result) string {
	if len(results) == 0 {
		return fmt.Sprintf("No results for %q", query)
	}
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = Result(r)
	}
	return strings.Join(parts, "\n\n")
}
