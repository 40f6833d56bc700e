package enrich

import (
	"context"
	"log/slog"
	"sync"
)

// Pipeline applies its stages, in order, to items.
type Pipeline[T any] struct {
	stages []Stage[T]
	log    *slog.Logger
}

// NewPipeline constructs a Pipeline from the provided stages.
func NewPipeline[T any](stages ...Stage[T]) *Pipeline[T] {
	return &Pipeline[T]{stages: stages, log: slog.Default()}
}

// WithLogger sets the logger used for step failures.
func (p *Pipeline[T]) WithLogger(l *slog.Logger) *Pipeline[T] {
	p.log = l
	return p
}

// Apply runs every stage on a single item and returns the number of steps
// that failed. A nil pipeline is a no-op.
func (p *Pipeline[T]) Apply(ctx context.Context, item *T) int {
	if p == nil {
		return 0
	}
	failed := 0
	var mu sync.Mutex
	for i, stage := range p.stages {
		var wg sync.WaitGroup
		for _, step := range stage.steps {
			wg.Add(1)
			go func(step Step[T]) {
				defer wg.Done()
				if err := step(ctx, item); err != nil {
					p.log.Warn("enrich_step_failed", "stage", stageLabel(stage, i), "error", err)
					mu.Lock()
					failed++
					mu.Unlock()
				}
			}(step)
		}
		wg.Wait() // stage barrier
	}
	return failed
}

func stageLabel[T any](s Stage[T], idx int) any {
	if s.name != "" {
		return s.name
	}
	return idx
}
