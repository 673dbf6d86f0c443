package actors

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"caseflow/cases"
)

// Ledger records every successful assignment observed by the actors.
type Ledger struct {
	mu   sync.Mutex
	wins map[string][]string
}

func NewLedger() *Ledger {
	return &Ledger{wins: make(map[string][]string)}
}

func (l *Ledger) record(caseID, expertID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.wins[caseID] = append(l.wins[caseID], expertID)
}

// Wins returns a copy of the recorded winners keyed by case id.
func (l *Ledger) Wins() map[string][]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string][]string, len(l.wins))
	for id, experts := range l.wins {
		out[id] = append([]string(nil), experts...)
	}
	return out
}

// Creator keeps inserting fresh submitted cases, standing in for the external
// intake that creates cases.
func Creator(ctx context.Context, repo cases.Repository, created *atomic.Int64, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		n := created.Add(1)
		c := cases.Case{
			ID:         CaseID(n),
			ReferrerID: fmt.Sprintf("ref-%d", n),
			Status:     cases.StatusSubmitted,
			CreatedAt:  time.Now().UTC().Truncate(cases.TimePrecision),
		}
		if err := repo.Save(ctx, c); err != nil {
			return fmt.Errorf("creator save: %w", err)
		}
		time.Sleep(time.Duration(5+rand.Intn(10)) * time.Millisecond)
	}
}

// Assigner races other assigners for random cases among those created so far.
func Assigner(ctx context.Context, svc *cases.Service, name string, created *atomic.Int64, ledger *Ledger, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		upper := created.Load()
		if upper == 0 {
			time.Sleep(time.Millisecond)
			continue
		}
		caseID := CaseID(1 + rand.Int63n(upper))
		expertID := fmt.Sprintf("%s-%d", name, rand.Intn(1000))

		_, err := svc.AssignExpert(ctx, caseID, expertID)
		switch {
		case err == nil:
			ledger.record(caseID, expertID)
		case errors.Is(err, cases.ErrInvalidState), errors.Is(err, cases.ErrNotFound):
			// expected under contention
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil
		default:
			return fmt.Errorf("assigner %s: %w", name, err)
		}
	}
}

// Reader polls cases to keep read traffic interleaved with writes.
func Reader(ctx context.Context, svc *cases.Service, created *atomic.Int64, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		upper := created.Load()
		if upper == 0 {
			time.Sleep(time.Millisecond)
			continue
		}
		_, err := svc.GetCase(ctx, CaseID(1+rand.Int63n(upper)))
		if err != nil && !errors.Is(err, cases.ErrNotFound) &&
			!errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("reader: %w", err)
		}
	}
}

func CaseID(n int64) string {
	return fmt.Sprintf("stress-%06d", n)
}
