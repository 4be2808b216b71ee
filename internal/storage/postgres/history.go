package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/rollcontext/internal/game/history"
)

// ErrDuplicateEntry is returned when appending an entry whose id is already stored.
var ErrDuplicateEntry = errors.New("roll history entry already exists")

// HistoryRepository stores roll history entries in the roll_history table.
// Insertion order is kept by the seq column; item, rolls, and context are JSONB.
type HistoryRepository struct {
	db *pgxpool.Pool
}

// NewHistoryRepository creates a HistoryRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewHistoryRepository(db *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{db: db}
}

var _ history.Store = (*HistoryRepository)(nil)

// Append inserts e, assigning a missing id and timestamp.
//
// Postcondition: Returns ErrDuplicateEntry when e.ID is already stored.
func (r *HistoryRepository) Append(ctx context.Context, e history.Entry) error {
	history.Normalize(&e)
	item, err := marshalNullable(e.Item)
	if err != nil {
		return fmt.Errorf("encoding item: %w", err)
	}
	rolls, err := json.Marshal(rollsOrEmpty(e.Rolls))
	if err != nil {
		return fmt.Errorf("encoding rolls: %w", err)
	}
	flag, err := marshalNullable(e.Context)
	if err != nil {
		return fmt.Errorf("encoding context: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO roll_history
			(id, created_at, actor_id, token_id, target_token_id, item, rolls, context)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		e.ID, e.CreatedAt, e.ActorID, e.TokenID, e.TargetTokenID, item, rolls, flag,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("inserting roll history entry: %w", err)
	}
	return nil
}

// Recent returns at most n entries, newest first.
//
// Postcondition: Returns an empty slice when n <= 0.
func (r *HistoryRepository) Recent(ctx context.Context, n int) ([]history.Entry, error) {
	if n <= 0 {
		return []history.Entry{}, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, created_at, actor_id, token_id, target_token_id, item, rolls, context
		FROM roll_history ORDER BY seq DESC LIMIT $1`,
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("listing roll history: %w", err)
	}
	defer rows.Close()

	out := []history.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating roll history: %w", err)
	}
	return out, nil
}

func scanEntry(row pgx.Row) (history.Entry, error) {
	var (
		e                 history.Entry
		item, rolls, flag []byte
	)
	if err := row.Scan(&e.ID, &e.CreatedAt, &e.ActorID, &e.TokenID, &e.TargetTokenID, &item, &rolls, &flag); err != nil {
		return history.Entry{}, fmt.Errorf("scanning roll history entry: %w", err)
	}
	if len(item) > 0 {
		e.Item = &history.ItemRef{}
		if err := json.Unmarshal(item, e.Item); err != nil {
			return history.Entry{}, fmt.Errorf("decoding item of entry %s: %w", e.ID, err)
		}
	}
	if err := json.Unmarshal(rolls, &e.Rolls); err != nil {
		return history.Entry{}, fmt.Errorf("decoding rolls of entry %s: %w", e.ID, err)
	}
	if len(flag) > 0 {
		e.Context = &history.ContextFlag{}
		if err := json.Unmarshal(flag, e.Context); err != nil {
			return history.Entry{}, fmt.Errorf("decoding context of entry %s: %w", e.ID, err)
		}
	}
	return e, nil
}

// marshalNullable encodes v, or returns nil (SQL NULL) for a nil pointer.
func marshalNullable[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func rollsOrEmpty(rolls []history.Roll) []history.Roll {
	if rolls == nil {
		return []history.Roll{}
	}
	return rolls
}
