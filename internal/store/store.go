package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/gofrs/flock"
	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/go-memo/memo/internal/memoerrors"
)

func init() {
	sqlite_vec.Auto()
}

// containerTagCacheSize bounds the recency-evicted GetContainerTag cache;
// it only needs to be large enough to absorb a batch forget run against a
// handful of hot ids.
const containerTagCacheSize = 512

// Options configures Open.
type Options struct {
	// DBPath is the on-disk database file, typically
	// <project-root>/.memo/memo.db.
	DBPath string

	// Dimensions fixes the width of the vec0 embedding column. It may not
	// change after the store's first write (spec invariant #3).
	Dimensions int

	// CustomSqlitePath, if set, names a system SQLite library build with
	// sqlite-vec preloaded, for platforms where the auto-embedded
	// extension cannot be loaded into the cgo driver's default library.
	CustomSqlitePath string
}

// Store owns the SQLite connection backing the memories table, the vec0
// KNN index, the FTS5 full-text index, and the embedding cache, all on one
// connection so multi-table writes can share a transaction.
type Store struct {
	db         *sql.DB
	dbPath     string
	dimensions int

	mu sync.Mutex // serializes writes that touch more than one table

	containerTagCache *lru.Cache[string, string]
}

// Open creates (if needed) and opens the store at opts.DBPath, applying
// pragmas and creating the schema if missing.
func Open(opts Options) (*Store, error) {
	if opts.Dimensions <= 0 {
		return nil, memoerrors.InvalidInput("store dimensions must be positive")
	}

	dir := filepath.Dir(opts.DBPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", opts.DBPath)
	if err != nil {
		return nil, diagnoseExtensionLoad(err, opts)
	}

	for _, pragma := range pragmaStatements {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	for _, stmt := range schemaStatements(opts.Dimensions) {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			if isExtensionLoadError(err) {
				return nil, diagnoseExtensionLoad(err, opts)
			}
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	cache, err := lru.New[string, string](containerTagCacheSize)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create container-tag cache: %w", err)
	}

	db.SetMaxOpenConns(1) // single writer; avoids SQLITE_BUSY across goroutines

	return &Store{
		db:                db,
		dbPath:            opts.DBPath,
		dimensions:        opts.Dimensions,
		containerTagCache: cache,
	}, nil
}

// isExtensionLoadError reports whether err looks like the vec0 module (or
// any loadable extension) failed to register.
func isExtensionLoadError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "no such module") ||
		strings.Contains(msg, "vec0") ||
		strings.Contains(msg, "extension")
}

// diagnoseExtensionLoad wraps err into a KindExtensionLoad MemoError naming
// the config key and discovery paths an operator should check, per
// spec.md §4.1's extension-loading failure-diagnostic requirement.
func diagnoseExtensionLoad(err error, opts Options) *memoerrors.MemoError {
	tried := []string{"auto-embedded sqlite-vec extension"}
	if opts.CustomSqlitePath != "" {
		tried = append(tried, opts.CustomSqlitePath)
	} else {
		tried = append(tried, discoverySqlitePaths()...)
	}
	return memoerrors.ExtensionLoad(
		"failed to load the sqlite-vec KNN extension",
		err,
	).WithDetail("tried", strings.Join(tried, ", ")).
		WithSuggestion("set customSqlitePath in config to a SQLite build with sqlite-vec preloaded")
}

// discoverySqlitePaths lists the well-known install locations checked when
// customSqlitePath is unset, for diagnostic messages only.
func discoverySqlitePaths() []string {
	return []string{
		"/opt/homebrew/opt/sqlite/lib/libsqlite3.dylib",
		"/usr/local/opt/sqlite/lib/libsqlite3.dylib",
		"/usr/lib/x86_64-linux-gnu/libsqlite3.so",
	}
}

// Close closes the underlying database connection, checkpointing the WAL
// first so durability doesn't depend on a later checkpoint running.
func (s *Store) Close() error {
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

// Path returns the database file path the store was opened with.
func (s *Store) Path() string {
	return s.dbPath
}

// Insert writes record into all three live tables as one atomic unit.
func (s *Store) Insert(ctx context.Context, r *Record) error {
	if r.ID == "" {
		return memoerrors.InvalidInput("record id must not be empty")
	}
	if len(r.Vector) != s.dimensions {
		return memoerrors.InvalidInput(fmt.Sprintf("vector has %d dims, store expects %d", len(r.Vector), s.dimensions))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO memories (
			id, content, container_tag, source_key, type, metadata,
			created_at, updated_at,
			display_name, user_name, user_email, project_path, project_name, git_repo_url
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Content, r.ContainerTag, nullableString(r.SourceKey), nullableString(r.Type), nullableString(r.Metadata),
		r.CreatedAt, r.UpdatedAt,
		nullableString(r.DisplayName), nullableString(r.UserName), nullableString(r.UserEmail),
		nullableString(r.ProjectPath), nullableString(r.ProjectName), nullableString(r.GitRepoURL),
	); err != nil {
		if isUniqueConstraintError(err) {
			return memoerrors.IntegrityViolation(fmt.Sprintf("record id %s already exists", r.ID))
		}
		return fmt.Errorf("insert memory row: %w", err)
	}

	blob, err := sqlite_vec.SerializeFloat32(r.Vector)
	if err != nil {
		return fmt.Errorf("serialize vector: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO vec_memories (memory_id, embedding) VALUES (?, ?)`, r.ID, blob); err != nil {
		return fmt.Errorf("insert vec row (breaks invariant #1): %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO fts_memories (memory_id, container_tag, content) VALUES (?, ?, ?)`,
		r.ID, r.ContainerTag, r.Content); err != nil {
		return fmt.Errorf("insert fts row (breaks invariant #1): %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}

	s.containerTagCache.Add(r.ID, r.ContainerTag)
	return nil
}

// Delete removes id from all three tables, reporting whether it existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin delete transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete memory row: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read delete row count: %w", err)
	}
	if n == 0 {
		return false, tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM vec_memories WHERE memory_id = ?`, id); err != nil {
		return false, fmt.Errorf("delete vec row: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM fts_memories WHERE memory_id = ?`, id); err != nil {
		return false, fmt.Errorf("delete fts row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit delete: %w", err)
	}
	s.containerTagCache.Remove(id)
	return true, nil
}

// ReplaceBySource deletes every record matching (containerTag, sourceKey)
// then inserts newRecords, all inside one transaction: either the whole
// replacement commits, or the prior state remains.
func (s *Store) ReplaceBySource(ctx context.Context, containerTag, sourceKey string, newRecords []*Record) (ReplaceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ReplaceResult{}, fmt.Errorf("begin replace transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM memories WHERE container_tag = ? AND source_key = ?`, containerTag, sourceKey)
	if err != nil {
		return ReplaceResult{}, fmt.Errorf("query existing source records: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return ReplaceResult{}, fmt.Errorf("scan existing id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return ReplaceResult{}, err
	}
	_ = rows.Close()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id); err != nil {
			return ReplaceResult{}, fmt.Errorf("delete memory row %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM vec_memories WHERE memory_id = ?`, id); err != nil {
			return ReplaceResult{}, fmt.Errorf("delete vec row %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM fts_memories WHERE memory_id = ?`, id); err != nil {
			return ReplaceResult{}, fmt.Errorf("delete fts row %s: %w", id, err)
		}
	}

	for _, r := range newRecords {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO memories (
				id, content, container_tag, source_key, type, metadata,
				created_at, updated_at,
				display_name, user_name, user_email, project_path, project_name, git_repo_url
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.Content, r.ContainerTag, nullableString(r.SourceKey), nullableString(r.Type), nullableString(r.Metadata),
			r.CreatedAt, r.UpdatedAt,
			nullableString(r.DisplayName), nullableString(r.UserName), nullableString(r.UserEmail),
			nullableString(r.ProjectPath), nullableString(r.ProjectName), nullableString(r.GitRepoURL),
		); err != nil {
			if isUniqueConstraintError(err) {
				return ReplaceResult{}, memoerrors.IntegrityViolation(fmt.Sprintf("record id %s already exists", r.ID))
			}
			return ReplaceResult{}, fmt.Errorf("insert replacement memory row: %w", err)
		}

		blob, err := sqlite_vec.SerializeFloat32(r.Vector)
		if err != nil {
			return ReplaceResult{}, fmt.Errorf("serialize vector: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO vec_memories (memory_id, embedding) VALUES (?, ?)`, r.ID, blob); err != nil {
			return ReplaceResult{}, fmt.Errorf("insert replacement vec row: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO fts_memories (memory_id, container_tag, content) VALUES (?, ?, ?)`,
			r.ID, r.ContainerTag, r.Content); err != nil {
			return ReplaceResult{}, fmt.Errorf("insert replacement fts row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return ReplaceResult{}, fmt.Errorf("commit replace: %w", err)
	}

	for _, id := range ids {
		s.containerTagCache.Remove(id)
	}
	for _, r := range newRecords {
		s.containerTagCache.Add(r.ID, r.ContainerTag)
	}

	return ReplaceResult{Deleted: len(ids), Inserted: len(newRecords)}, nil
}

// List returns records in containerTag (or every container if empty),
// ordered by created_at descending. limit < 0 means unlimited.
func (s *Store) List(ctx context.Context, containerTag string, limit int) ([]*Record, error) {
	query := `SELECT id, content, container_tag, source_key, type, metadata,
		created_at, updated_at, display_name, user_name, user_email,
		project_path, project_name, git_repo_url
		FROM memories`
	var args []any
	if containerTag != "" {
		query += ` WHERE container_tag = ?`
		args = append(args, containerTag)
	}
	query += ` ORDER BY created_at DESC`
	if limit >= 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetByIDs fetches the records for ids, optionally restricted to
// containerTag. Ids with no matching row (or a mismatched container) are
// silently absent from the result.
func (s *Store) GetByIDs(ctx context.Context, ids []string, containerTag string) ([]*Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, 0, len(ids)+1)
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}
	query := fmt.Sprintf(`SELECT id, content, container_tag, source_key, type, metadata,
		created_at, updated_at, display_name, user_name, user_email,
		project_path, project_name, git_repo_url
		FROM memories WHERE id IN (%s)`, strings.Join(placeholders, ","))
	if containerTag != "" {
		query += ` AND container_tag = ?`
		args = append(args, containerTag)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch records by id: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the number of records in containerTag, or the whole store
// if containerTag is empty.
func (s *Store) Count(ctx context.Context, containerTag string) (int, error) {
	query := `SELECT COUNT(*) FROM memories`
	var args []any
	if containerTag != "" {
		query += ` WHERE container_tag = ?`
		args = append(args, containerTag)
	}
	var n int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

// CountByContainer returns the record count per container tag.
func (s *Store) CountByContainer(ctx context.Context) ([]ContainerCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT container_tag, COUNT(*) FROM memories GROUP BY container_tag ORDER BY container_tag`)
	if err != nil {
		return nil, fmt.Errorf("count by container: %w", err)
	}
	defer rows.Close()

	var out []ContainerCount
	for rows.Next() {
		var c ContainerCount
		if err := rows.Scan(&c.ContainerTag, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountBySource returns the record count for (containerTag, sourceKey),
// used by the importer's scenario tests to assert full-snapshot replace.
func (s *Store) CountBySource(ctx context.Context, containerTag, sourceKey string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memories WHERE container_tag = ? AND source_key = ?`,
		containerTag, sourceKey).Scan(&n)
	return n, err
}

// FindExactDuplicate looks up a record with identical content in
// containerTag.
func (s *Store) FindExactDuplicate(ctx context.Context, content, containerTag string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, content, container_tag, source_key, type, metadata,
		created_at, updated_at, display_name, user_name, user_email,
		project_path, project_name, git_repo_url
		FROM memories WHERE container_tag = ? AND content = ? LIMIT 1`, containerTag, content)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find exact duplicate: %w", err)
	}
	return r, nil
}

// GetContainerTag resolves id's container tag, fronted by a recency-based
// cache that is invalidated on every insert/delete touching that id.
func (s *Store) GetContainerTag(ctx context.Context, id string) (string, bool, error) {
	if tag, ok := s.containerTagCache.Get(id); ok {
		return tag, true, nil
	}

	var tag string
	err := s.db.QueryRowContext(ctx, `SELECT container_tag FROM memories WHERE id = ?`, id).Scan(&tag)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get container tag: %w", err)
	}
	s.containerTagCache.Add(id, tag)
	return tag, true, nil
}

// ReindexFulltext idempotently repairs fts_memories against memories:
// deletes orphaned full-text rows, inserts rows for records missing one.
func (s *Store) ReindexFulltext(ctx context.Context) (ReindexResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ReindexResult{}, fmt.Errorf("begin reindex transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		DELETE FROM fts_memories
		WHERE memory_id NOT IN (SELECT id FROM memories)`)
	if err != nil {
		return ReindexResult{}, fmt.Errorf("remove orphaned fts rows: %w", err)
	}
	removedN, err := res.RowsAffected()
	if err != nil {
		return ReindexResult{}, err
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT id, content, container_tag FROM memories
		WHERE id NOT IN (SELECT memory_id FROM fts_memories)`)
	if err != nil {
		return ReindexResult{}, fmt.Errorf("find records missing fts rows: %w", err)
	}
	type missing struct{ id, content, tag string }
	var toAdd []missing
	for rows.Next() {
		var m missing
		if err := rows.Scan(&m.id, &m.content, &m.tag); err != nil {
			_ = rows.Close()
			return ReindexResult{}, err
		}
		toAdd = append(toAdd, m)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return ReindexResult{}, err
	}
	_ = rows.Close()

	for _, m := range toAdd {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO fts_memories (memory_id, container_tag, content) VALUES (?, ?, ?)`,
			m.id, m.tag, m.content); err != nil {
			return ReindexResult{}, fmt.Errorf("insert missing fts row %s: %w", m.id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return ReindexResult{}, fmt.Errorf("commit reindex: %w", err)
	}

	return ReindexResult{Added: len(toAdd), Removed: int(removedN)}, nil
}

// GetCachedEmbedding looks up an L2 embedding cache row.
func (s *Store) GetCachedEmbedding(ctx context.Context, contentHash, modelID string) ([]float32, bool, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT vector FROM embedding_cache WHERE content_hash = ? AND model_id = ?`,
		contentHash, modelID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached embedding: %w", err)
	}
	vec, err := deserializeFloat32(blob)
	if err != nil {
		return nil, false, fmt.Errorf("decode cached embedding: %w", err)
	}
	return vec, true, nil
}

// PutCachedEmbedding writes (or replaces) an L2 embedding cache row.
func (s *Store) PutCachedEmbedding(ctx context.Context, contentHash, modelID string, vector []float32) error {
	blob, err := sqlite_vec.SerializeFloat32(vector)
	if err != nil {
		return fmt.Errorf("serialize cached embedding: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO embedding_cache (content_hash, model_id, vector, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(content_hash, model_id) DO UPDATE SET vector = excluded.vector, created_at = excluded.created_at`,
		contentHash, modelID, blob, nowMillis())
	return err
}

// Reset closes the store and removes the database file (and its WAL/SHM
// siblings), guarded by an advisory flock on <dbPath>.reset.lock so two
// concurrent resets exclude each other; other writers do not take this lock.
func (s *Store) Reset() error {
	lockPath := s.dbPath + ".reset.lock"
	fl := flock.New(lockPath)
	locked, err := fl.TryLock()
	if err != nil {
		return fmt.Errorf("acquire reset lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("reset already in progress on another process")
	}
	defer func() {
		_ = fl.Unlock()
		_ = os.Remove(lockPath)
	}()

	if err := s.Close(); err != nil {
		slog.Warn("reset: close before remove failed", slog.String("error", err.Error()))
	}

	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(s.dbPath + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s%s: %w", s.dbPath, suffix, err)
		}
	}
	return nil
}

// rowScanner abstracts over *sql.Row and *sql.Rows for scanRecord.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var r Record
	var sourceKey, typ, metadata, displayName, userName, userEmail, projectPath, projectName, gitRepoURL sql.NullString
	if err := row.Scan(
		&r.ID, &r.Content, &r.ContainerTag, &sourceKey, &typ, &metadata,
		&r.CreatedAt, &r.UpdatedAt,
		&displayName, &userName, &userEmail, &projectPath, &projectName, &gitRepoURL,
	); err != nil {
		return nil, err
	}
	r.SourceKey = sourceKey.String
	r.Type = typ.String
	r.Metadata = metadata.String
	r.DisplayName = displayName.String
	r.UserName = userName.String
	r.UserEmail = userEmail.String
	r.ProjectPath = projectPath.String
	r.ProjectName = projectName.String
	r.GitRepoURL = gitRepoURL.String
	return &r, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isUniqueConstraintError(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
