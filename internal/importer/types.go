// Package importer turns markdown files/trees and repo-map JSON files into
// store records, deriving a stable source key per input so re-importing
// the same source replaces its prior records atomically.
package importer

import "context"

// Embedder is the subset of embed.Pipeline's surface the importer needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Chunk is one sliding-window slice of a markdown file, before embedding.
type Chunk struct {
	Text      string
	StartLine int // 1-based, inclusive
	EndLine   int // 1-based, inclusive
	Hash      string
}

// markdownMetadata is the opaque metadata shape stored for each markdown
// chunk, per the record-rendering contract.
type markdownMetadata struct {
	SourcePath string `json:"sourcePath"`
	SourceKey  string `json:"sourceKey"`
	StartLine  int    `json:"startLine"`
	EndLine    int    `json:"endLine"`
	ChunkIndex int    `json:"chunkIndex"`
	ChunkCount int    `json:"chunkCount"`
	ChunkHash  string `json:"chunkHash"`
}

// RepoMapEntry is one element of a repo-map JSON array.
type RepoMapEntry struct {
	Path    string   `json:"path"`
	Language string  `json:"language,omitempty"`
	Symbols []string `json:"symbols,omitempty"`
	Content string   `json:"content,omitempty"`
}

// repoMapMetadata is the opaque metadata shape stored for each repo-map
// entry, per the record-rendering contract.
type repoMapMetadata struct {
	SourcePath string   `json:"sourcePath"`
	SourceKey  string   `json:"sourceKey"`
	Language   string   `json:"language"`
	Symbols    []string `json:"symbols"`
	ImportType string   `json:"importType"`
}

// recordType is the Store.Record.Type value for every record this package
// produces; the two origins are distinguished by metadata's importType
// field rather than by a separate Type value.
const recordType = "doc_chunk"
