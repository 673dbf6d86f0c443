package cases

import (
	"fmt"
	"time"
)

// Case mirrors the cases table. It carries no JSON annotations so the
// presentation layer owns its own wire shape.
type Case struct {
	ID         string
	ReferrerID string
	ExpertID   *string
	Status     Status
	CreatedAt  time.Time
}

// Assignment is the result of binding an expert to a submitted case. It is
// returned to callers and never stored on its own.
type Assignment struct {
	CaseID     string
	ExpertID   string
	AssignedAt time.Time
}

// clone returns a deep copy so stored records never share the ExpertID pointer
// with callers.
func (c Case) clone() Case {
	if c.ExpertID != nil {
		expert := *c.ExpertID
		c.ExpertID = &expert
	}
	return c
}

// TimePrecision is the resolution at which CreatedAt is stored. Every
// repository truncates to it so the variants agree with Postgres timestamptz.
const TimePrecision = time.Microsecond

// normalized returns a deep copy with CreatedAt in UTC at storage precision.
func (c Case) normalized() Case {
	c = c.clone()
	c.CreatedAt = c.CreatedAt.UTC().Truncate(TimePrecision)
	return c
}

// validate checks a record before any repository writes it.
func (c Case) validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidRecord)
	}
	if !c.Status.Valid() {
		return fmt.Errorf("%w: case %q has unknown status %q", ErrInvalidRecord, c.ID, c.Status)
	}
	switch {
	case c.Status.HasExpert() && c.ExpertID == nil:
		return fmt.Errorf("%w: case %q in %q status has no expert", ErrInvalidRecord, c.ID, c.Status)
	case !c.Status.HasExpert() && c.ExpertID != nil:
		return fmt.Errorf("%w: case %q in %q status cannot have an expert", ErrInvalidRecord, c.ID, c.Status)
	}
	return nil
}

func validateAll(cs []Case) error {
	for _, c := range cs {
		if err := c.validate(); err != nil {
			return err
		}
	}
	return nil
}
