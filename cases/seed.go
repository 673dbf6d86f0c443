package cases

import "time"

// DemoCases is the bootstrap data loaded when SEED_DEMO_DATA is enabled.
func DemoCases(createdAt time.Time) []Case {
	createdAt = createdAt.UTC().Truncate(TimePrecision)
	return []Case{
		{
			ID:         "case-001",
			ReferrerID: "ref-100",
			Status:     StatusSubmitted,
			CreatedAt:  createdAt,
		},
		{
			ID:         "case-002",
			ReferrerID: "ref-200",
			Status:     StatusDraft,
			CreatedAt:  createdAt,
		},
	}
}
