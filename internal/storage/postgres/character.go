package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/eoschar/internal/creation"
)

var (
	// ErrCharacterNotFound is returned when a character lookup yields no results.
	ErrCharacterNotFound = errors.New("character not found")
	// ErrInvalidID is returned, before any query runs, for an ID that is not a UUID.
	ErrInvalidID = errors.New("character id must be a UUID")
)

func parseID(id string) (uuid.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return u, nil
}

// CharacterSummary is one row of a character listing.
type CharacterSummary struct {
	ID        string
	Name      string
	Version   string
	UpdatedAt time.Time
}

// CharacterRepository stores creation documents as JSONB rows.
type CharacterRepository struct {
	db *pgxpool.Pool
}

// NewCharacterRepository creates a CharacterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db}
}

// Save inserts doc, or replaces the stored document with the same ID.
//
// Postcondition: Returns nil once the row holds doc, or ErrInvalidID,
// without a query, when doc.ID is not a UUID.
func (r *CharacterRepository) Save(ctx context.Context, doc *creation.Document) error {
	id, err := parseID(doc.ID)
	if err != nil {
		return fmt.Errorf("saving character: %w", err)
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding character document: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO characters (id, name, version, document)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, version = EXCLUDED.version,
		    document = EXCLUDED.document, updated_at = NOW()`,
		id, doc.Name, doc.Version, body,
	)
	if err != nil {
		return fmt.Errorf("saving character: %w", err)
	}
	return nil
}

// Load retrieves the document stored under id.
//
// Postcondition: Returns the Document, ErrInvalidID or ErrCharacterNotFound.
func (r *CharacterRepository) Load(ctx context.Context, id string) (*creation.Document, error) {
	key, err := parseID(id)
	if err != nil {
		return nil, fmt.Errorf("loading character: %w", err)
	}
	var body []byte
	err = r.db.QueryRow(ctx, `SELECT document FROM characters WHERE id = $1`, key).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("querying character: %w", err)
	}
	var doc creation.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decoding character document %s: %w", id, err)
	}
	return &doc, nil
}

// List returns every stored character, most recently updated first.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *CharacterRepository) List(ctx context.Context) ([]CharacterSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id::text, name, version, updated_at
		FROM characters ORDER BY updated_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	out := make([]CharacterSummary, 0)
	for rows.Next() {
		var c CharacterSummary
		if err := rows.Scan(&c.ID, &c.Name, &c.Version, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning character row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Delete removes the character stored under id.
//
// Postcondition: Returns nil on success, ErrInvalidID for a malformed id,
// ErrCharacterNotFound if no row was deleted.
func (r *CharacterRepository) Delete(ctx context.Context, id string) error {
	key, err := parseID(id)
	if err != nil {
		return fmt.Errorf("deleting character: %w", err)
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM characters WHERE id = $1`, key)
	if err != nil {
		return fmt.Errorf("deleting character: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCharacterNotFound
	}
	return nil
}
