package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/futures-flipper/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS bot_state (
	id           INTEGER PRIMARY KEY,
	"lastSignal" TEXT CHECK ("lastSignal" IN ('buy', 'sell')),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

ALTER TABLE bot_state ADD COLUMN IF NOT EXISTS updated_at TIMESTAMPTZ NOT NULL DEFAULT now();

CREATE TABLE IF NOT EXISTS transitions (
	id          UUID PRIMARY KEY,
	direction   TEXT NOT NULL,
	state       TEXT NOT NULL,
	error       TEXT,
	started_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	finished_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS transitions_unfinished_idx
	ON transitions (started_at) WHERE finished_at IS NULL;
`

// Postgres stores state in PostgreSQL.
type Postgres struct {
	db       *pgxpool.Pool
	recordID int
	logger   *slog.Logger
}

// NewPostgres creates a store over db. recordID selects the bot_state row.
func NewPostgres(db *pgxpool.Pool, recordID int, logger *slog.Logger) *Postgres {
	if logger == nil {
		logger = slog.Default()
	}
	return &Postgres{
		db:       db,
		recordID: recordID,
		logger:   logger,
	}
}

// Migrate creates the tables if they do not exist. An existing bot_state
// table with only id and "lastSignal" is extended in place.
func (s *Postgres) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// LoadLastSignal returns the persisted signal, or SignalNone when the row
// or value is absent.
func (s *Postgres) LoadLastSignal(ctx context.Context) (model.Signal, error) {
	var v *string
	err := s.db.QueryRow(ctx,
		`SELECT "lastSignal" FROM bot_state WHERE id = $1`, s.recordID,
	).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.SignalNone, nil
	}
	if err != nil {
		return model.SignalNone, fmt.Errorf("load last signal: %w", err)
	}
	if v == nil {
		return model.SignalNone, nil
	}

	sig, err := model.ParseSignal(*v)
	if err != nil {
		return model.SignalNone, fmt.Errorf("load last signal: %w", err)
	}
	return sig, nil
}

// SaveLastSignal upserts the signal. SignalNone is stored as NULL.
func (s *Postgres) SaveLastSignal(ctx context.Context, sig model.Signal) error {
	var v *string
	if sig != model.SignalNone {
		str := string(sig)
		v = &str
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO bot_state (id, "lastSignal", updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE
		SET "lastSignal" = EXCLUDED."lastSignal", updated_at = EXCLUDED.updated_at
	`, s.recordID, v)
	if err != nil {
		return fmt.Errorf("save last signal: %w", err)
	}
	return nil
}

// Ping checks the database is reachable.
func (s *Postgres) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Postgres) BeginTransition(ctx context.Context, id uuid.UUID, direction model.Direction) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO transitions (id, direction, state, started_at)
		VALUES ($1, $2, 'idle', now())
	`, id, string(direction))
	if err != nil {
		return fmt.Errorf("begin transition: %w", err)
	}
	return nil
}

func (s *Postgres) UpdateTransition(ctx context.Context, id uuid.UUID, state string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE transitions SET state = $2 WHERE id = $1`, id, state)
	if err != nil {
		return fmt.Errorf("update transition: %w", err)
	}
	return nil
}

func (s *Postgres) FinishTransition(ctx context.Context, id uuid.UUID, state string, errMsg string) error {
	ct, err := s.db.Exec(ctx, `
		UPDATE transitions
		SET state = $2, error = NULLIF($3, ''), finished_at = now()
		WHERE id = $1
	`, id, state, errMsg)
	if err != nil {
		return fmt.Errorf("finish transition: %w", err)
	}
	if ct.RowsAffected() == 0 {
		s.logger.Debug("finish for unknown transition", "transition_id", id)
	}
	return nil
}

// UnfinishedTransitions returns journal entries with no finish time, oldest
// first. Any entry here means a process stopped mid-flip.
func (s *Postgres) UnfinishedTransitions(ctx context.Context) ([]TransitionRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, direction, state, started_at
		FROM transitions
		WHERE finished_at IS NULL
		ORDER BY started_at
	`)
	if err != nil {
		return nil, fmt.Errorf("query unfinished transitions: %w", err)
	}
	defer rows.Close()

	var out []TransitionRecord
	for rows.Next() {
		var (
			r   TransitionRecord
			dir string
		)
		if err := rows.Scan(&r.ID, &dir, &r.State, &r.StartedAt); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		r.Direction = model.Direction(dir)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}
	return out, nil
}
