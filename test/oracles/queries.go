package oracles

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"caseflow/cases"
)

type Oracle struct {
	Name string
	SQL  string
}

func All() []Oracle {
	return []Oracle{
		{
			Name: "O1_expert_iff_assigned",
			SQL: `SELECT id, status, expert_id FROM cases
                  WHERE (expert_id IS NOT NULL) <> (status IN ('assigned','in_progress','completed'))`,
		},
		{
			Name: "O2_known_status",
			SQL: `SELECT id, status FROM cases
                  WHERE status NOT IN ('draft','submitted','assigned','in_progress','completed')`,
		},
	}
}

// Run executes all SQL oracles; returns the first failing oracle name and one row sample.
func Run(ctx context.Context, pool *pgxpool.Pool) (string, string, error) {
	for _, o := range All() {
		rows, err := pool.Query(ctx, o.SQL)
		if err != nil {
			return "", "", fmt.Errorf("run %s: %w", o.Name, err)
		}
		if rows.Next() {
			vals, _ := rows.Values()
			rows.Close()
			return o.Name, fmt.Sprint(vals), nil
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return "", "", fmt.Errorf("iterate %s: %w", o.Name, err)
		}
	}
	return "", "", nil
}

// CheckLedger compares the winners the actors observed with what the
// repository holds. Each case may be won once and must carry the winner.
func CheckLedger(ctx context.Context, repo cases.Repository, wins map[string][]string) (string, string, error) {
	for caseID, experts := range wins {
		if len(experts) > 1 {
			return "L1_single_winner", fmt.Sprintf("%s won by %v", caseID, experts), nil
		}
		c, ok, err := repo.GetByID(ctx, caseID)
		if err != nil {
			return "", "", err
		}
		if !ok {
			return "L2_winner_persisted", caseID + " missing", nil
		}
		if c.Status != cases.StatusAssigned || c.ExpertID == nil || *c.ExpertID != experts[0] {
			return "L2_winner_persisted", fmt.Sprintf("%s stored %+v, winner %s", caseID, c, experts[0]), nil
		}
	}
	return "", "", nil
}
