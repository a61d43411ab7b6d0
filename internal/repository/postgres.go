package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"marrfa-chat/internal/model"
)

// PostgresRepository handles database operations: the knowledge chunk store
// and the search log.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

type chunkRow struct {
	ID        string          `db:"id"`
	Title     string          `db:"title"`
	Content   string          `db:"content"`
	URL       string          `db:"url"`
	Embedding pgvector.Vector `db:"embedding"`
}

// LoadChunks returns every knowledge chunk with its embedding, in insertion
// order. Used to seed the in-memory index when the database is the chunk
// source instead of the file layout.
func (r *PostgresRepository) LoadChunks(ctx context.Context) ([]model.KnowledgeChunk, [][]float32, error) {
	var rows []chunkRow
	query := `
		SELECT id, title, content, COALESCE(url, '') AS url, embedding
		FROM knowledge_chunks
		ORDER BY created_at, id`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, nil, fmt.Errorf("failed to load knowledge chunks: %w", err)
	}

	chunks := make([]model.KnowledgeChunk, 0, len(rows))
	vectors := make([][]float32, 0, len(rows))
	for _, row := range rows {
		chunks = append(chunks, model.KnowledgeChunk{
			ID:      row.ID,
			Title:   row.Title,
			Content: row.Content,
			URL:     row.URL,
		})
		vectors = append(vectors, row.Embedding.Slice())
	}
	return chunks, vectors, nil
}

// UpsertChunk writes one knowledge chunk and its embedding.
func (r *PostgresRepository) UpsertChunk(ctx context.Context, chunk model.KnowledgeChunk, embedding []float32) error {
	query := `
		INSERT INTO knowledge_chunks (id, title, content, url, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			url = EXCLUDED.url,
			embedding = EXCLUDED.embedding`
	_, err := r.db.ExecContext(ctx, query,
		chunk.ID, chunk.Title, chunk.Content, chunk.URL, pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("failed to upsert knowledge chunk: %w", err)
	}
	return nil
}

// LogSearch records one resolved chat query for offline analysis. Best-effort
// from the caller's perspective; a failed insert is the caller's to log, not
// to fail the request on.
func (r *PostgresRepository) LogSearch(ctx context.Context, entry *model.SearchLogEntry) error {
	query := `
		INSERT INTO search_log (id, session_id, query, intent, intent_method, filters, result_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.SessionID, entry.Query, entry.Intent,
		entry.IntentMethod, entry.Filters, entry.ResultCount)
	if err != nil {
		return fmt.Errorf("failed to log search: %w", err)
	}
	return nil
}
