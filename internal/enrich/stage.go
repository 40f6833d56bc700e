// Package enrich runs annotation steps over an item: steps within a stage
// run in parallel, stages run one after another. A finished place draft goes
// through it to pick up derived fields such as its address.
package enrich

import (
	"context"
)

// Step annotates the item in place. Steps of the same stage run concurrently
// on the same item, so they must write disjoint fields. A returned error is
// logged by the pipeline and does not stop later steps.
//
// Example:
//
//	func addAddress(ctx context.Context, p *models.Place) error { p.Address = "..."; return nil }
type Step[T any] func(ctx context.Context, item *T) error

// Stage groups steps that may run together.
type Stage[T any] struct {
	name  string
	steps []Step[T]
}

// NewStage constructs a Stage from the provided steps.
func NewStage[T any](steps ...Step[T]) Stage[T] {
	return Stage[T]{steps: steps}
}

// Named returns a copy of the stage labelled for logging.
func (s Stage[T]) Named(name string) Stage[T] {
	s.name = name
	return s
}
