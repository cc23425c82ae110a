package store

import "fmt"

// schemaStatements returns the DDL for the three live tables and the
// embedding cache, executed once per open. dimensions fixes the width of
// the vec0 virtual table's embedding column for the lifetime of the store.
func schemaStatements(dimensions int) []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS memories (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			container_tag TEXT NOT NULL,
			source_key TEXT,
			type TEXT,
			metadata TEXT,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			display_name TEXT,
			user_name TEXT,
			user_email TEXT,
			project_path TEXT,
			project_name TEXT,
			git_repo_url TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_memories_container ON memories(container_tag)`,
		`CREATE INDEX IF NOT EXISTS idx_memories_created ON memories(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_memories_source ON memories(container_tag, source_key)`,
		fmt.Sprintf(`CREATE VIRTUAL TABLE IF NOT EXISTS vec_memories USING vec0(
			memory_id TEXT PRIMARY KEY,
			embedding float[%d] distance_metric=cosine
		)`, dimensions),
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_memories USING fts5(
			content,
			memory_id UNINDEXED,
			container_tag UNINDEXED,
			tokenize = 'unicode61 remove_diacritics 2'
		)`,
		`CREATE TABLE IF NOT EXISTS embedding_cache (
			content_hash TEXT NOT NULL,
			model_id TEXT NOT NULL,
			vector BLOB NOT NULL,
			created_at INTEGER NOT NULL,
			PRIMARY KEY (content_hash, model_id)
		)`,
	}
}

// pragmaStatements returns the pragmas applied on every open, per spec.md
// §4.1: 5s busy timeout, WAL journal, NORMAL sync, ~64MiB cache, in-memory
// temp store, foreign keys enforced.
var pragmaStatements = []string{
	"PRAGMA busy_timeout = 5000",
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA cache_size = -65536",
	"PRAGMA temp_store = MEMORY",
	"PRAGMA foreign_keys = ON",
}
