// Package storage persists judicial cases and their embeddings in
// PostgreSQL with pgvector.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/lexmetrica/juris-analyzer/pkg/models"
)

// CaseRecord is the persisted form of a judicial case.
type CaseRecord struct {
	ID           uuid.UUID
	Title        string
	Text         string
	BodyCode     string
	BodyName     string
	DocketNumber string
	Year         int
	DecidedAt    sql.NullTime
	Theme        string
	Decision     string
	Metadata     map[string]string
	Embedding    pgvector.Vector
	CreatedAt    time.Time
}

// ToModel converts a stored record into a case for the analysis pipeline.
func (r *CaseRecord) ToModel() models.Case {
	c := models.Case{
		ID:           r.ID.String(),
		Title:        r.Title,
		Text:         r.Text,
		Body:         models.IssuingBody{Code: r.BodyCode, Name: r.BodyName},
		DocketNumber: r.DocketNumber,
		Year:         r.Year,
		Theme:        r.Theme,
		Decision:     models.DecisionLabel(r.Decision),
		Metadata:     r.Metadata,
	}
	if r.DecidedAt.Valid {
		c.DecidedAt = r.DecidedAt.Time
	}
	return c
}

// CaseWithSimilarity pairs a record with its similarity to a query vector.
type CaseWithSimilarity struct {
	Case       *CaseRecord
	Similarity float64
}

// CaseRepository defines the interface for case storage operations
type CaseRepository interface {
	Create(ctx context.Context, record *CaseRecord) error
	CreateBatch(ctx context.Context, records []*CaseRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*CaseRecord, error)
	GetByTheme(ctx context.Context, theme string, since time.Time) ([]*CaseRecord, error)
	ListBodies(ctx context.Context) ([]models.IssuingBody, error)
	SearchSimilar(ctx context.Context, embedding pgvector.Vector, limit int, bodyCodes []string) ([]*CaseWithSimilarity, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

// PostgresCaseRepository implements CaseRepository using PostgreSQL with pgvector
type PostgresCaseRepository struct {
	db *sql.DB
}

// NewPostgresCaseRepository creates a new PostgresCaseRepository
func NewPostgresCaseRepository(db *sql.DB) *PostgresCaseRepository {
	return &PostgresCaseRepository{db: db}
}

// Create inserts a new case into the database
func (r *PostgresCaseRepository) Create(ctx context.Context, record *CaseRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	metadata, err := marshalMetadata(record.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO cases (id, title, text, body_code, body_name, docket_number, year, decided_at, theme, decision, metadata, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = r.db.ExecContext(ctx, query,
		record.ID,
		record.Title,
		record.Text,
		record.BodyCode,
		record.BodyName,
		record.DocketNumber,
		record.Year,
		record.DecidedAt,
		record.Theme,
		record.Decision,
		metadata,
		record.Embedding,
		record.CreatedAt,
	)

	return err
}

// CreateBatch inserts multiple cases in a single transaction
func (r *PostgresCaseRepository) CreateBatch(ctx context.Context, records []*CaseRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cases (id, title, text, body_code, body_name, docket_number, year, decided_at, theme, decision, metadata, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, record := range records {
		if record.ID == uuid.Nil {
			record.ID = uuid.New()
		}
		if record.CreatedAt.IsZero() {
			record.CreatedAt = now
		}

		metadata, err := marshalMetadata(record.Metadata)
		if err != nil {
			return err
		}

		_, err = stmt.ExecContext(ctx,
			record.ID,
			record.Title,
			record.Text,
			record.BodyCode,
			record.BodyName,
			record.DocketNumber,
			record.Year,
			record.DecidedAt,
			record.Theme,
			record.Decision,
			metadata,
			record.Embedding,
			record.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByID retrieves a case by its ID
func (r *PostgresCaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*CaseRecord, error) {
	query := `
		SELECT id, title, text, body_code, body_name, docket_number, year, decided_at, theme, decision, metadata, embedding, created_at
		FROM cases
		WHERE id = $1
	`

	record, err := scanCase(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return record, nil
}

// GetByTheme retrieves cases on a theme decided at or after the given time,
// oldest first.
func (r *PostgresCaseRepository) GetByTheme(ctx context.Context, theme string, since time.Time) ([]*CaseRecord, error) {
	query := `
		SELECT id, title, text, body_code, body_name, docket_number, year, decided_at, theme, decision, metadata, embedding, created_at
		FROM cases
		WHERE theme = $1 AND decided_at >= $2
		ORDER BY decided_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, theme, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectCases(rows)
}

// ListBodies retrieves the distinct issuing bodies present in the corpus,
// ordered by code.
func (r *PostgresCaseRepository) ListBodies(ctx context.Context) ([]models.IssuingBody, error) {
	query := `
		SELECT DISTINCT body_code, body_name
		FROM cases
		ORDER BY body_code ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bodies []models.IssuingBody
	for rows.Next() {
		var body models.IssuingBody
		if err := rows.Scan(&body.Code, &body.Name); err != nil {
			return nil, err
		}
		bodies = append(bodies, body)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return bodies, nil
}

// SearchSimilar finds cases closest to the given embedding using pgvector
// cosine distance, optionally restricted to a set of issuing bodies.
func (r *PostgresCaseRepository) SearchSimilar(ctx context.Context, embedding pgvector.Vector, limit int, bodyCodes []string) ([]*CaseWithSimilarity, error) {
	if limit <= 0 {
		limit = 10
	}

	// Cosine distance: 1 - cosine_similarity.
	query := `
		SELECT id, title, text, body_code, body_name, docket_number, year, decided_at, theme, decision, metadata, embedding, created_at,
			   1 - (embedding <=> $1) as similarity
		FROM cases
	`
	args := []interface{}{embedding}

	if len(bodyCodes) > 0 {
		query += ` WHERE body_code = ANY($2)`
		args = append(args, pq.Array(bodyCodes))
	}

	query += fmt.Sprintf(`
		ORDER BY embedding <=> $1
		LIMIT %d
	`, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*CaseWithSimilarity
	for rows.Next() {
		record := &CaseRecord{}
		var metadata []byte
		var similarity float64
		err := rows.Scan(
			&record.ID,
			&record.Title,
			&record.Text,
			&record.BodyCode,
			&record.BodyName,
			&record.DocketNumber,
			&record.Year,
			&record.DecidedAt,
			&record.Theme,
			&record.Decision,
			&metadata,
			&record.Embedding,
			&record.CreatedAt,
			&similarity,
		)
		if err != nil {
			return nil, err
		}
		if record.Metadata, err = unmarshalMetadata(metadata); err != nil {
			return nil, err
		}
		results = append(results, &CaseWithSimilarity{
			Case:       record,
			Similarity: similarity,
		})
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// Delete removes a case from the database
func (r *PostgresCaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM cases WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// Count returns the number of cases in the corpus
func (r *PostgresCaseRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cases`).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCase(row rowScanner) (*CaseRecord, error) {
	record := &CaseRecord{}
	var metadata []byte
	err := row.Scan(
		&record.ID,
		&record.Title,
		&record.Text,
		&record.BodyCode,
		&record.BodyName,
		&record.DocketNumber,
		&record.Year,
		&record.DecidedAt,
		&record.Theme,
		&record.Decision,
		&metadata,
		&record.Embedding,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if record.Metadata, err = unmarshalMetadata(metadata); err != nil {
		return nil, err
	}
	return record, nil
}

func collectCases(rows *sql.Rows) ([]*CaseRecord, error) {
	var records []*CaseRecord
	for rows.Next() {
		record, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func marshalMetadata(metadata map[string]string) ([]byte, error) {
	if len(metadata) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(metadata)
}

func unmarshalMetadata(raw []byte) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var metadata map[string]string
	if err := json.Unmarshal(raw, &metadata); err != nil {
		return nil, err
	}
	if len(metadata) == 0 {
		return nil, nil
	}
	return metadata, nil
}
