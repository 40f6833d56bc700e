package enrich

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

type annotated struct {
	mu      sync.Mutex
	Results map[string]any
}

func newAnnotated() *annotated {
	return &annotated{Results: make(map[string]any)}
}

func stepSet(key string, val any) Step[annotated] {
	return func(_ context.Context, item *annotated) error {
		item.mu.Lock()
		defer item.mu.Unlock()
		item.Results[key] = val
		return nil
	}
}

func stepCopy(from, to string) Step[annotated] {
	return func(_ context.Context, item *annotated) error {
		item.mu.Lock()
		defer item.mu.Unlock()
		v, ok := item.Results[from]
		if !ok {
			return errors.New("missing " + from)
		}
		item.Results[to] = v
		return nil
	}
}

func stepFail(_ context.Context, _ *annotated) error {
	return errors.New("geocoder offline")
}

func TestPipeline_Apply(t *testing.T) {
	tests := []struct {
		name       string
		stages     []Stage[annotated]
		expected   map[string]any
		wantFailed int
	}{
		{
			name:     "single step",
			stages:   []Stage[annotated]{NewStage(stepSet("address", "Champ de Mars"))},
			expected: map[string]any{"address": "Champ de Mars"},
		},
		{
			name:     "parallel steps in one stage",
			stages:   []Stage[annotated]{NewStage(stepSet("x", 1), stepSet("y", 2))},
			expected: map[string]any{"x": 1, "y": 2},
		},
		{
			name: "later stage sees earlier results",
			stages: []Stage[annotated]{
				NewStage(stepSet("a", "first")),
				NewStage(stepCopy("a", "b")).Named("copy"),
			},
			expected: map[string]any{"a": "first", "b": "first"},
		},
		{
			name: "failing step does not stop the pipeline",
			stages: []Stage[annotated]{
				NewStage(stepFail),
				NewStage(stepSet("ok", true)),
			},
			expected:   map[string]any{"ok": true},
			wantFailed: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			item := newAnnotated()
			failed := NewPipeline(tt.stages...).Apply(ctx, item)

			if failed != tt.wantFailed {
				t.Errorf("failed = %d, expected %d", failed, tt.wantFailed)
			}
			if !reflect.DeepEqual(item.Results, tt.expected) {
				t.Errorf("got %+v, expected %+v", item.Results, tt.expected)
			}
		})
	}
}

func TestPipeline_NilIsNoop(t *testing.T) {
	var p *Pipeline[annotated]
	if got := p.Apply(context.Background(), newAnnotated()); got != 0 {
		t.Fatalf("nil pipeline reported %d failures", got)
	}
}
