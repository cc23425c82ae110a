// Package memoerrors provides the structured error type every memo
// operation returns on failure, and the fixed set of Kinds the store,
// embedder, and search engine classify failures into.
package memoerrors

// Kind classifies a MemoError into one of the store's fixed failure modes.
type Kind string

const (
	// KindInvalidInput marks a caller-supplied argument that violates an
	// operation's precondition (empty text, empty query, ...).
	KindInvalidInput Kind = "invalid_input"
	// KindFullyPrivate marks a query or record whose visibility rules
	// exclude every candidate from the caller's scope.
	KindFullyPrivate Kind = "fully_private"
	// KindNotFound marks a lookup by id or source key that matched nothing.
	KindNotFound Kind = "not_found"
	// KindWrongContainer marks an operation attempted against a record
	// that belongs to a different container than the caller's scope.
	KindWrongContainer Kind = "wrong_container"
	// KindExtensionLoad marks failure to load the sqlite-vec loadable
	// extension into the database connection.
	KindExtensionLoad Kind = "extension_load"
	// KindFullTextQueryError marks an FTS5 MATCH query the tokenizer
	// rejected (unbalanced quotes, bad operator syntax, ...).
	KindFullTextQueryError Kind = "fulltext_query_error"
	// KindEmbeddingTimeout marks an embedding call that exceeded its
	// deadline, such as an Ollama request over its 30s per-attempt timeout.
	KindEmbeddingTimeout Kind = "embedding_timeout"
	// KindEmbeddingFailure marks an embedding call that failed for a
	// reason other than timeout (provider error, dimension mismatch).
	KindEmbeddingFailure Kind = "embedding_failure"
	// KindIntegrityViolation marks a write that would break a store
	// invariant, such as inserting a record whose id already exists.
	KindIntegrityViolation Kind = "integrity_violation"
)

// retryable reports whether operations that hit this Kind are generally
// worth retrying without caller intervention.
func (k Kind) retryable() bool {
	switch k {
	case KindEmbeddingTimeout:
		return true
	default:
		return false
	}
}
