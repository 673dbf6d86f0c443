package cases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisSwapAttempts = 3

// errSwapContended is returned when every WATCH attempt lost to another
// writer. It carries no status, so the service reports it unclassified.
var errSwapContended = errors.New("cases: redis swap contended")

// RedisRepository stores each case as a JSON document under <prefix>case:<id>.
type RedisRepository struct {
	rdb    redis.UniversalClient
	prefix string
}

type redisCase struct {
	ID         string    `json:"id"`
	ReferrerID string    `json:"referrer_id"`
	ExpertID   *string   `json:"expert_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewRedisRepository(rdb redis.UniversalClient, prefix string) *RedisRepository {
	return &RedisRepository{rdb: rdb, prefix: prefix}
}

func (r *RedisRepository) key(id string) string {
	return r.prefix + "case:" + id
}

func (r *RedisRepository) GetByID(ctx context.Context, id string) (Case, bool, error) {
	raw, err := r.rdb.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Case{}, false, nil
		}
		return Case{}, false, fmt.Errorf("cases: redis get: %w", err)
	}

	c, err := decodeRedisCase(raw)
	if err != nil {
		return Case{}, false, err
	}
	return c, true, nil
}

func (r *RedisRepository) Save(ctx context.Context, c Case) error {
	payload, err := encodeRedisCase(c)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, r.key(c.ID), payload, 0).Err(); err != nil {
		return fmt.Errorf("cases: redis set: %w", err)
	}
	return nil
}

// SaveIfStatus runs the check and the write inside WATCH/MULTI so a concurrent
// writer aborts the transaction instead of being overwritten.
func (r *RedisRepository) SaveIfStatus(ctx context.Context, c Case, expected Status) error {
	payload, err := encodeRedisCase(c)
	if err != nil {
		return err
	}

	key := r.key(c.ID)
	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			return fmt.Errorf("cases: redis watch get: %w", err)
		}
		current, err := decodeRedisCase(raw)
		if err != nil {
			return err
		}
		if current.Status != expected {
			return ErrStatusConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < redisSwapAttempts; attempt++ {
		err := r.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("%w after %d attempts on %s", errSwapContended, redisSwapAttempts, key)
}

func (r *RedisRepository) Seed(ctx context.Context, cs []Case) error {
	payloads := make(map[string][]byte, len(cs))
	for _, c := range cs {
		payload, err := encodeRedisCase(c)
		if err != nil {
			return err
		}
		payloads[r.key(c.ID)] = payload
	}

	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, payload := range payloads {
			pipe.Set(ctx, key, payload, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cases: redis seed: %w", err)
	}
	return nil
}

func encodeRedisCase(c Case) ([]byte, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	c = c.normalized()
	payload, err := json.Marshal(redisCase{
		ID:         c.ID,
		ReferrerID: c.ReferrerID,
		ExpertID:   c.ExpertID,
		Status:     string(c.Status),
		CreatedAt:  c.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("cases: marshal case: %w", err)
	}
	return payload, nil
}

func decodeRedisCase(raw []byte) (Case, error) {
	var rc redisCase
	if err := json.Unmarshal(raw, &rc); err != nil {
		return Case{}, fmt.Errorf("cases: unmarshal case: %w", err)
	}
	status, err := ParseStatus(rc.Status)
	if err != nil {
		return Case{}, err
	}
	return Case{
		ID:         rc.ID,
		ReferrerID: rc.ReferrerID,
		ExpertID:   rc.ExpertID,
		Status:     status,
		CreatedAt:  rc.CreatedAt.UTC(),
	}, nil
}
