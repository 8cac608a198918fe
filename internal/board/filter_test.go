package board

import (
	"testing"

	"github.com/antopolskiy/taskboard/internal/date"
	"github.com/antopolskiy/taskboard/internal/task"
)

func filterFixture() []*task.Task {
	a := mk("a", task.StatusTodo, 0, 0)
	a.Title = "Write Parser"
	a.Priority = task.PriorityHigh
	b := mk("b", task.StatusInProgress, 0, 1)
	b.Title = "Review"
	b.Description = "check the PARSER changes"
	c := mk("c", task.StatusCompleted, 0, 2)
	c.Title = "Deploy"
	c.Priority = task.PriorityLow
	return []*task.Task{a, b, c}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		c    Criteria
		want []string
	}{
		{"no criteria", Criteria{}, []string{"a", "b", "c"}},
		{"search title", Criteria{Search: "parser"}, []string{"a", "b"}},
		{"search description case-insensitive", Criteria{Search: "Changes"}, []string{"b"}},
		{"priority", Criteria{Priority: task.PriorityHigh}, []string{"a"}},
		{"status", Criteria{Status: task.StatusCompleted}, []string{"c"}},
		{"conjunctive", Criteria{Search: "parser", Priority: task.PriorityMedium}, []string{"b"}},
		{"no match", Criteria{Search: "parser", Status: task.StatusCompleted}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(filterFixture(), tt.c)
			if !sameIDs(got, tt.want...) {
				t.Errorf("Filter() = %v, want %v", ids(got), tt.want)
			}
		})
	}
}

func TestProjectDoesNotMutateInput(t *testing.T) {
	tasks := filterFixture()
	before := ids(tasks)

	Project(tasks, Criteria{SortKey: SortPriority, Order: Desc})

	if !sameIDs(tasks, before...) {
		t.Errorf("input reordered: %v, want %v", ids(tasks), before)
	}
}

func TestProjectCompletedByPriorityDesc(t *testing.T) {
	// Completed tasks only, high -> medium -> low, ties by creation ascending.
	tasks := []*task.Task{
		withPriority(mk("low", task.StatusCompleted, 0, 0), task.PriorityLow),
		withPriority(mk("med-late", task.StatusCompleted, 1, 5), task.PriorityMedium),
		withPriority(mk("todo-high", task.StatusTodo, 0, 1), task.PriorityHigh),
		withPriority(mk("high", task.StatusCompleted, 2, 3), task.PriorityHigh),
		withPriority(mk("med-early", task.StatusCompleted, 3, 2), task.PriorityMedium),
	}

	got := Project(tasks, Criteria{Status: task.StatusCompleted, SortKey: SortPriority, Order: Desc})

	if !sameIDs(got, "high", "med-early", "med-late", "low") {
		t.Errorf("Project() = %v", ids(got))
	}
}

func TestSortCreatedAt(t *testing.T) {
	tasks := []*task.Task{mk("b", task.StatusTodo, 0, 2), mk("a", task.StatusTodo, 0, 1), mk("c", task.StatusTodo, 0, 3)}

	Sort(tasks, SortCreatedAt, Asc)
	if !sameIDs(tasks, "a", "b", "c") {
		t.Errorf("asc = %v", ids(tasks))
	}
	Sort(tasks, SortCreatedAt, Desc)
	if !sameIDs(tasks, "c", "b", "a") {
		t.Errorf("desc = %v", ids(tasks))
	}
}

func TestSortDueDateMissingLast(t *testing.T) {
	early := mk("early", task.StatusTodo, 0, 3)
	d1 := date.New(2025, 7, 1)
	early.DueDate = &d1
	late := mk("late", task.StatusTodo, 0, 2)
	d2 := date.New(2025, 8, 1)
	late.DueDate = &d2
	none1 := mk("none1", task.StatusTodo, 0, 0)
	none2 := mk("none2", task.StatusTodo, 0, 1)

	tasks := []*task.Task{none2, late, none1, early}
	Sort(tasks, SortDueDate, Asc)
	if !sameIDs(tasks, "early", "late", "none1", "none2") {
		t.Errorf("asc = %v", ids(tasks))
	}

	Sort(tasks, SortDueDate, Desc)
	if !sameIDs(tasks, "late", "early", "none1", "none2") {
		t.Errorf("desc = %v", ids(tasks))
	}
}

func TestSortStableOnEqualKeys(t *testing.T) {
	// Same priority and same creation time: input order is kept.
	a := mk("a", task.StatusTodo, 0, 0)
	b := mk("b", task.StatusTodo, 0, 0)
	c := mk("c", task.StatusTodo, 0, 0)
	tasks := []*task.Task{c, a, b}

	Sort(tasks, SortPriority, Desc)
	if !sameIDs(tasks, "c", "a", "b") {
		t.Errorf("Sort() = %v, want input order", ids(tasks))
	}
}

func TestParseSortKey(t *testing.T) {
	tests := map[string]SortKey{
		"":           SortCreatedAt,
		"created_at": SortCreatedAt,
		"Priority":   SortPriority,
		"due":        SortDueDate,
		"due_date":   SortDueDate,
	}
	for in, want := range tests {
		got, err := ParseSortKey(in)
		if err != nil || got != want {
			t.Errorf("ParseSortKey(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseSortKey("title"); err == nil {
		t.Error("ParseSortKey(title) should fail")
	}
}

func TestParseOrder(t *testing.T) {
	if o, err := ParseOrder("DESC"); err != nil || o != Desc {
		t.Errorf("ParseOrder(DESC) = %q, %v", o, err)
	}
	if o, err := ParseOrder(""); err != nil || o != Asc {
		t.Errorf("ParseOrder() = %q, %v", o, err)
	}
	if _, err := ParseOrder("sideways"); err == nil {
		t.Error("ParseOrder(sideways) should fail")
	}
}

func withPriority(t *task.Task, p task.Priority) *task.Task {
	t.Priority = p
	return t
}
