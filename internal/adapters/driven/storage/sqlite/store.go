package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/pipewrench/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/pipewrench/internal/core/domain"
	"github.com/custodia-labs/pipewrench/internal/core/ports/driven"
)

// dbFileName is the database file created inside the data directory.
const dbFileName = "pipewrench.db"

// Store is a unified SQLite-based storage that provides access to
// all store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.pipewrench/data/pipewrench.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".pipewrench", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFileName)

	// WAL lets readers proceed while a chat turn is being written
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SourceStore returns a SourceStore interface backed by this store.
func (s *Store) SourceStore() driven.SourceStore {
	return &sourceStore{store: s}
}

// SessionStore returns a SessionStore interface backed by this store.
func (s *Store) SessionStore() driven.SessionStore {
	return &sessionStore{store: s}
}

// migrate runs all pending migrations, each in its own transaction.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) applyMigration(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Source Store ====================

// sourceStore implements driven.SourceStore.
type sourceStore struct {
	store *Store
}

var _ driven.SourceStore = (*sourceStore)(nil)

// Save stores or updates a source. CreatedAt is preserved across updates.
func (s *sourceStore) Save(ctx context.Context, source domain.Source) error {
	var structured sql.NullString
	if len(source.StructuredData) > 0 {
		data, err := json.Marshal(source.StructuredData)
		if err != nil {
			return fmt.Errorf("marshalling structured data: %w", err)
		}
		structured = sql.NullString{String: string(data), Valid: true}
	}

	now := time.Now().UTC()
	if source.CreatedAt.IsZero() {
		source.CreatedAt = now
	}
	if source.UpdatedAt.IsZero() {
		source.UpdatedAt = now
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sources (kind, id, title, content, structured_data, chunk_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(kind, id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			structured_data = excluded.structured_data,
			chunk_count = excluded.chunk_count,
			updated_at = excluded.updated_at
	`, string(source.Kind), source.ID, source.Title, source.Content, structured,
		source.ChunkCount, toNanos(source.CreatedAt), toNanos(source.UpdatedAt))
	if err != nil {
		return fmt.Errorf("saving source: %w", err)
	}
	return nil
}

// Get retrieves a source by kind and id.
func (s *sourceStore) Get(ctx context.Context, kind domain.SourceKind, id string) (*domain.Source, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT kind, id, title, content, structured_data, chunk_count, created_at, updated_at
		FROM sources WHERE kind = ? AND id = ?
	`, string(kind), id)

	source, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning source: %w", err)
	}
	return source, nil
}

// Delete removes a source.
func (s *sourceStore) Delete(ctx context.Context, kind domain.SourceKind, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM sources WHERE kind = ? AND id = ?", string(kind), id)
	if err != nil {
		return fmt.Errorf("deleting source: %w", err)
	}
	return nil
}

// List returns all catalogued sources ordered by kind then id.
func (s *sourceStore) List(ctx context.Context) ([]domain.Source, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT kind, id, title, content, structured_data, chunk_count, created_at, updated_at
		FROM sources ORDER BY kind, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.Source //nolint:prealloc // size unknown from query
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		sources = append(sources, *source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sources: %w", err)
	}

	return sources, nil
}

// ==================== Session Store ====================

// sessionStore implements driven.SessionStore.
type sessionStore struct {
	store *Store
}

var _ driven.SessionStore = (*sessionStore)(nil)

// CreateSession stores a new session.
func (s *sessionStore) CreateSession(ctx context.Context, session domain.ChatSession) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO chat_sessions (id, user_id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, session.ID, session.UserID, session.Title, toNanos(session.CreatedAt), toNanos(session.UpdatedAt))
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by id.
func (s *sessionStore) GetSession(ctx context.Context, id string) (*domain.ChatSession, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, created_at, updated_at FROM chat_sessions WHERE id = ?
	`, id)

	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	return session, nil
}

// UpdateSession updates the title and last-activity time.
func (s *sessionStore) UpdateSession(ctx context.Context, session domain.ChatSession) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE chat_sessions SET title = ?, updated_at = ? WHERE id = ?
	`, session.Title, toNanos(session.UpdatedAt), session.ID)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListSessions returns the sessions of a user, most recent activity first.
func (s *sessionStore) ListSessions(ctx context.Context, userID string) ([]domain.ChatSession, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, user_id, title, created_at, updated_at FROM chat_sessions
		WHERE user_id = ? ORDER BY updated_at DESC, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.ChatSession //nolint:prealloc // size unknown from query
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, *session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return sessions, nil
}

// AppendMessage appends a message and returns it with its assigned id.
func (s *sessionStore) AppendMessage(ctx context.Context, msg domain.ChatMessage) (*domain.ChatMessage, error) {
	var citations sql.NullString
	if len(msg.Citations) > 0 {
		data, err := json.Marshal(msg.Citations)
		if err != nil {
			return nil, fmt.Errorf("marshalling citations: %w", err)
		}
		citations = sql.NullString{String: string(data), Valid: true}
	}

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	var exists int
	err := s.store.db.QueryRowContext(ctx, "SELECT 1 FROM chat_sessions WHERE id = ?", msg.SessionID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("checking session: %w", err)
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO chat_messages (session_id, role, content, citations, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, msg.SessionID, string(msg.Role), msg.Content, citations, toNanos(msg.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("appending message: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading message id: %w", err)
	}
	msg.ID = id

	return &msg, nil
}

// RecentMessages returns the last limit messages of a session, oldest first.
func (s *sessionStore) RecentMessages(ctx context.Context, sessionID string, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		return []domain.ChatMessage{}, nil
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, session_id, role, content, citations, created_at FROM (
			SELECT * FROM chat_messages WHERE session_id = ?
			ORDER BY created_at DESC, id DESC LIMIT ?
		) ORDER BY created_at, id
	`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// Messages returns every message of a session, oldest first.
func (s *sessionStore) Messages(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, session_id, role, content, citations, created_at FROM chat_messages
		WHERE session_id = ? ORDER BY created_at, id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// ==================== Helper Functions ====================

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSource(row scanner) (*domain.Source, error) {
	var source domain.Source
	var kind string
	var structured sql.NullString
	var createdAt, updatedAt int64

	if err := row.Scan(&kind, &source.ID, &source.Title, &source.Content, &structured,
		&source.ChunkCount, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	source.Kind = domain.SourceKind(kind)
	source.CreatedAt = fromNanos(createdAt)
	source.UpdatedAt = fromNanos(updatedAt)

	if structured.Valid && structured.String != "" {
		if err := json.Unmarshal([]byte(structured.String), &source.StructuredData); err != nil {
			return nil, fmt.Errorf("unmarshalling structured data: %w", err)
		}
	}
	return &source, nil
}

func scanSession(row scanner) (*domain.ChatSession, error) {
	var session domain.ChatSession
	var createdAt, updatedAt int64

	if err := row.Scan(&session.ID, &session.UserID, &session.Title, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	session.CreatedAt = fromNanos(createdAt)
	session.UpdatedAt = fromNanos(updatedAt)
	return &session, nil
}

func scanMessages(rows *sql.Rows) ([]domain.ChatMessage, error) {
	messages := []domain.ChatMessage{}
	for rows.Next() {
		var msg domain.ChatMessage
		var role string
		var citations sql.NullString
		var createdAt int64

		if err := rows.Scan(&msg.ID, &msg.SessionID, &role, &msg.Content, &citations, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}

		msg.Role = domain.Role(role)
		msg.CreatedAt = fromNanos(createdAt)
		if citations.Valid && citations.String != "" {
			if err := json.Unmarshal([]byte(citations.String), &msg.Citations); err != nil {
				return nil, fmt.Errorf("unmarshalling citations: %w", err)
			}
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}
	return messages, nil
}

func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixNano()
}

func fromNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
