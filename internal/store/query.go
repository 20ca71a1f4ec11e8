package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/tickseq/internal/ir"
)

// Predicate is a condition on the columns of the steps table. It is
// compiled to a parameterized WHERE fragment; values are never
// interpolated into the SQL text.
type Predicate interface {
	isPredicate()
}

// Equals matches rows where Field = Value.
type Equals struct {
	Field string
	Value any
}

// Between matches rows where Min <= Field <= Max. A nil bound is open.
type Between struct {
	Field    string
	Min, Max any
}

// And is the conjunction of its predicates. An empty And is true.
type And struct {
	Predicates []Predicate
}

func (Equals) isPredicate()  {}
func (Between) isPredicate() {}
func (And) isPredicate()     {}

// stepColumns are the fields a predicate may reference.
var stepColumns = map[string]bool{
	"run_id":  true,
	"seq":     true,
	"tick":    true,
	"owner":   true,
	"handle":  true,
	"action":  true,
	"outcome": true,
	"retries": true,
}

// StepQuery selects journaled steps of one run. Zero fields do not filter.
type StepQuery struct {
	RunID    string
	Owner    uint64
	Outcome  ir.Outcome
	Action   string
	FromTick uint64
	ToTick   uint64
}

// Predicate returns the filter of q.
func (q StepQuery) Predicate() Predicate {
	and := And{Predicates: []Predicate{Equals{Field: "run_id", Value: q.RunID}}}
	if q.Owner != 0 {
		and.Predicates = append(and.Predicates, Equals{Field: "owner", Value: int64(q.Owner)})
	}
	if q.Outcome != "" {
		and.Predicates = append(and.Predicates, Equals{Field: "outcome", Value: string(q.Outcome)})
	}
	if q.Action != "" {
		and.Predicates = append(and.Predicates, Equals{Field: "action", Value: q.Action})
	}
	if q.FromTick != 0 || q.ToTick != 0 {
		b := Between{Field: "tick"}
		if q.FromTick != 0 {
			b.Min = int64(q.FromTick)
		}
		if q.ToTick != 0 {
			b.Max = int64(q.ToTick)
		}
		and.Predicates = append(and.Predicates, b)
	}
	return and
}

// compileStepQuery returns the SELECT of q. Results are always ordered by
// seq so reads are deterministic.
func compileStepQuery(q StepQuery) (string, []any, error) {
	where, params, err := compilePredicate(q.Predicate())
	if err != nil {
		return "", nil, err
	}
	sql := "SELECT run_id, seq, tick, owner, handle, action, outcome, retries, error FROM steps" +
		" WHERE " + where +
		" ORDER BY seq ASC"
	return sql, params, nil
}

func compilePredicate(p Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case nil:
		return "1 = 1", nil, nil
	case Equals:
		if err := checkColumn(pred.Field); err != nil {
			return "", nil, err
		}
		return pred.Field + " = ?", []any{pred.Value}, nil
	case Between:
		if err := checkColumn(pred.Field); err != nil {
			return "", nil, err
		}
		var parts []string
		var params []any
		if pred.Min != nil {
			parts = append(parts, pred.Field+" >= ?")
			params = append(params, pred.Min)
		}
		if pred.Max != nil {
			parts = append(parts, pred.Field+" <= ?")
			params = append(params, pred.Max)
		}
		if len(parts) == 0 {
			return "1 = 1", nil, nil
		}
		return strings.Join(parts, " AND "), params, nil
	case And:
		if len(pred.Predicates) == 0 {
			return "1 = 1", nil, nil
		}
		parts := make([]string, 0, len(pred.Predicates))
		var params []any
		for _, child := range pred.Predicates {
			sql, childParams, err := compilePredicate(child)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, sql)
			params = append(params, childParams...)
		}
		return strings.Join(parts, " AND "), params, nil
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func checkColumn(field string) error {
	if !stepColumns[field] {
		return fmt.Errorf("unknown step column %q", field)
	}
	return nil
}

// QuerySteps returns the steps matching q in seq order.
func (s *Store) QuerySteps(ctx context.Context, q StepQuery) ([]ir.Step, error) {
	sql, params, err := compileStepQuery(q)
	if err != nil {
		return nil, fmt.Errorf("compile step query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sql, params...)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	steps := []ir.Step{}
	for rows.Next() {
		step, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}
	return steps, nil
}
