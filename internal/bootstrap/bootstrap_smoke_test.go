package bootstrap

import (
	"context"
	"testing"
)

func TestInitGraph_DependenciesOrdered(t *testing.T) {
	steps := InitGraph()
	seen := make(map[string]bool, len(steps))

	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if !seen[dep] {
				t.Errorf("step %s depends on %s which is not defined earlier", step.ID, dep)
			}
		}
		if step.Execute == nil {
			t.Errorf("step %s has no execute function", step.ID)
		}
		seen[step.ID] = true
	}
}

func TestExecuteInitSteps_FailsOnMissingDependency(t *testing.T) {
	steps := []initStep{
		{
			ID:        "b",
			DependsOn: []string{"a"},
			Execute:   func(context.Context, *appState) error { return nil },
		},
	}

	if err := executeInitSteps(context.Background(), steps, &appState{}); err == nil {
		t.Error("expected error for unsatisfied dependency")
	}
}

func TestExecuteInitSteps_RunsInOrder(t *testing.T) {
	var order []string
	record := func(id string) stepFn {
		return func(context.Context, *appState) error {
			order = append(order, id)
			return nil
		}
	}

	steps := []initStep{
		{ID: "a", Execute: record("a")},
		{ID: "b", DependsOn: []string{"a"}, Execute: record("b")},
		{ID: "c", DependsOn: []string{"a", "b"}, Execute: record("c")},
	}

	if err := executeInitSteps(context.Background(), steps, &appState{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 3 || order[0] != "a" || order[2] != "c" {
		t.Errorf("unexpected execution order: %v", order)
	}
}

func TestExecuteInitSteps_NilState(t *testing.T) {
	if err := executeInitSteps(context.Background(), InitGraph(), nil); err == nil {
		t.Error("expected error for nil state")
	}
}
