package task

import "testing"

func TestEnsureConsistencyRepairsFields(t *testing.T) {
	tasks := []*Task{
		{ID: "a", Status: "review", Priority: "urgent", TimeSpentMinutes: -5, Position: -1},
	}
	report := EnsureConsistency(tasks)
	if report.OK() {
		t.Fatal("expected repairs")
	}
	tk := tasks[0]
	if tk.Status != StatusTodo || tk.Priority != PriorityMedium || tk.TimeSpentMinutes != 0 || tk.Position != 0 {
		t.Errorf("repaired task = %+v", tk)
	}
}

func TestEnsureConsistencyRenumbersDuplicates(t *testing.T) {
	tasks := []*Task{
		{ID: "c", Status: StatusTodo, Priority: PriorityLow, Position: 5},
		{ID: "a", Status: StatusTodo, Priority: PriorityLow, Position: 1},
		{ID: "b", Status: StatusTodo, Priority: PriorityLow, Position: 1},
		{ID: "z", Status: StatusCompleted, Priority: PriorityLow, Position: 7},
	}
	report := EnsureConsistency(tasks)
	if len(report.Repairs) != 1 {
		t.Fatalf("Repairs = %v, want one renumbering", report.Repairs)
	}
	want := map[string]int{"a": 0, "b": 1, "c": 2, "z": 7}
	for _, tk := range tasks {
		if tk.Position != want[tk.ID] {
			t.Errorf("task %s position = %d, want %d", tk.ID, tk.Position, want[tk.ID])
		}
	}
}

func TestEnsureConsistencyCleanList(t *testing.T) {
	tasks := []*Task{
		{ID: "a", Status: StatusTodo, Priority: PriorityLow, Position: 0},
		{ID: "b", Status: StatusInProgress, Priority: PriorityHigh, Position: 0},
	}
	if r := EnsureConsistency(tasks); !r.OK() {
		t.Errorf("unexpected repairs: %v", r.Repairs)
	}
}
