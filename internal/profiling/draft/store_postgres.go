package draft

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"offsite/internal/profiling/models"
	"offsite/pkg/platform/sentinel"
)

// Schema is the table backing the postgres store.
//
//	CREATE TABLE IF NOT EXISTS profiling_slots (
//	    slot       TEXT PRIMARY KEY,
//	    payload    JSONB NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL
//	);
const Schema = `
CREATE TABLE IF NOT EXISTS profiling_slots (
    slot       TEXT PRIMARY KEY,
    payload    JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)`

// PostgresStore persists the draft slots as single upserted rows.
type PostgresStore struct {
	db    *sql.DB
	clock func() time.Time
}

// PostgresStoreOption configures a PostgresStore instance.
type PostgresStoreOption func(*PostgresStore)

// WithPostgresClock sets the clock used for envelope timestamps, for tests.
func WithPostgresClock(clock func() time.Time) PostgresStoreOption {
	return func(s *PostgresStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewPostgresStore(db *sql.DB, opts ...PostgresStoreOption) *PostgresStore {
	s := &PostgresStore{db: db, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *PostgresStore) upsert(ctx context.Context, slot string, payload []byte) error {
	query := `
		INSERT INTO profiling_slots (slot, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (slot) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, slot, payload, s.clock()); err != nil {
		return fmt.Errorf("upsert slot %s: %w", slot, err)
	}
	return nil
}

func (s *PostgresStore) load(ctx context.Context, slot string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM profiling_slots WHERE slot = $1`, slot).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load slot %s: %w", slot, err)
	}
	return payload, nil
}

func (s *PostgresStore) SaveDraft(ctx context.Context, record *models.ProfilingRecord) error {
	raw, err := json.Marshal(Envelope{Version: EnvelopeVersion, SavedAt: s.clock(), Record: record})
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	return s.upsert(ctx, DraftKey, raw)
}

func (s *PostgresStore) LoadDraft(ctx context.Context) (*models.ProfilingRecord, error) {
	raw, err := s.load(ctx, DraftKey)
	if err != nil {
		return nil, err
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return env.Record, nil
}

func (s *PostgresStore) DeleteDraft(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM profiling_slots WHERE slot = $1`, DraftKey); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveCompanyID(ctx context.Context, companyID string) error {
	raw, err := json.Marshal(companyID)
	if err != nil {
		return fmt.Errorf("encode company id: %w", err)
	}
	return s.upsert(ctx, CompanyIDKey, raw)
}

func (s *PostgresStore) LoadCompanyID(ctx context.Context) (string, error) {
	raw, err := s.load(ctx, CompanyIDKey)
	if err != nil {
		return "", err
	}
	var companyID string
	if err := json.Unmarshal(raw, &companyID); err != nil {
		return "", fmt.Errorf("decode company id: %w", err)
	}
	return companyID, nil
}
