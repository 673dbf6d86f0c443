package cases

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository creates a PostgreSQL-backed case repository. The schema is
// expected to be migrated already (see db.Migrate).
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const upsertCaseSQL = `
	INSERT INTO cases (id, referrer_id, expert_id, status, created_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE
	SET referrer_id = EXCLUDED.referrer_id,
	    expert_id   = EXCLUDED.expert_id,
	    status      = EXCLUDED.status,
	    created_at  = EXCLUDED.created_at
`

func (r *PGRepository) GetByID(ctx context.Context, id string) (Case, bool, error) {
	const query = `
		SELECT id, referrer_id, expert_id, status, created_at
		FROM cases
		WHERE id = $1
	`

	c, err := scanCase(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Case{}, false, nil
		}
		return Case{}, false, fmt.Errorf("cases: query by id: %w", err)
	}
	return c, true, nil
}

func (r *PGRepository) Save(ctx context.Context, c Case) error {
	if err := c.validate(); err != nil {
		return err
	}
	c = c.normalized()
	if _, err := r.pool.Exec(ctx, upsertCaseSQL, c.ID, c.ReferrerID, c.ExpertID, string(c.Status), c.CreatedAt); err != nil {
		return fmt.Errorf("cases: upsert: %w", err)
	}
	return nil
}

// SaveIfStatus updates the row only while its status still equals expected.
func (r *PGRepository) SaveIfStatus(ctx context.Context, c Case, expected Status) error {
	const updateSQL = `
		UPDATE cases
		SET referrer_id = $2,
		    expert_id   = $3,
		    status      = $4,
		    created_at  = $5
		WHERE id = $1 AND status = $6
	`

	if err := c.validate(); err != nil {
		return err
	}
	c = c.normalized()
	tag, err := r.pool.Exec(ctx, updateSQL, c.ID, c.ReferrerID, c.ExpertID, string(c.Status), c.CreatedAt, string(expected))
	if err != nil {
		return fmt.Errorf("cases: conditional update: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM cases WHERE id = $1)`, c.ID).Scan(&exists); err != nil {
		return fmt.Errorf("cases: verify case: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrStatusConflict
}

func (r *PGRepository) Seed(ctx context.Context, cs []Case) error {
	if err := validateAll(cs); err != nil {
		return err
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cases: begin seed tx: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, c := range cs {
		c = c.normalized()
		batch.Queue(upsertCaseSQL, c.ID, c.ReferrerID, c.ExpertID, string(c.Status), c.CreatedAt)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("cases: seed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("cases: commit seed: %w", err)
	}
	return nil
}

func scanCase(row pgx.Row) (Case, error) {
	var (
		c        Case
		expertID *string
		status   string
	)
	if err := row.Scan(&c.ID, &c.ReferrerID, &expertID, &status, &c.CreatedAt); err != nil {
		return Case{}, err
	}

	parsed, err := ParseStatus(status)
	if err != nil {
		return Case{}, err
	}
	c.Status = parsed
	c.ExpertID = expertID
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}
