package selection

import (
	"fmt"
	"testing"

	"github.com/antopolskiy/taskboard/internal/task"
)

func tasks(ids ...string) []*task.Task {
	out := make([]*task.Task, len(ids))
	for i, id := range ids {
		out[i] = &task.Task{ID: id}
	}
	return out
}

func TestEnterExit(t *testing.T) {
	c := New()
	if c.Active() {
		t.Fatal("new controller should be inactive")
	}
	c.Enter()
	c.Toggle("a")
	c.Enter()
	if !c.Active() || c.Len() != 1 {
		t.Errorf("re-entering should keep selection: active=%v len=%d", c.Active(), c.Len())
	}
	c.Exit()
	if c.Active() || c.Len() != 0 {
		t.Errorf("Exit: active=%v len=%d", c.Active(), c.Len())
	}
}

func TestToggle(t *testing.T) {
	var c Controller
	c.Toggle("b")
	c.Toggle("a")
	c.Toggle("c")
	c.Toggle("b")

	if got := fmt.Sprint(c.IDs()); got != "[a c]" {
		t.Errorf("IDs() = %s, want [a c]", got)
	}
	if c.Contains("b") || !c.Contains("a") {
		t.Error("Contains mismatch")
	}
}

func TestToggleAll(t *testing.T) {
	visible := tasks("a", "b", "c")
	tests := []struct {
		name    string
		initial []string
		want    string
	}{
		{"none selected", nil, "[a b c]"},
		{"some selected", []string{"b"}, "[a b c]"},
		{"hidden task kept", []string{"z"}, "[a b c z]"},
		{"all selected clears", []string{"a", "b", "c"}, "[]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			for _, id := range tt.initial {
				c.Toggle(id)
			}
			c.ToggleAll(visible)
			if got := fmt.Sprint(c.IDs()); got != tt.want {
				t.Errorf("IDs() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSelectAllNeverClears(t *testing.T) {
	c := New()
	c.Toggle("z")
	visible := tasks("a", "b")
	c.SelectAll(visible)
	c.SelectAll(visible)
	if got := fmt.Sprint(c.IDs()); got != "[a b z]" {
		t.Errorf("IDs() = %s, want [a b z]", got)
	}
}

func TestToggleAllEmptyVisible(t *testing.T) {
	c := New()
	c.Toggle("a")
	c.ToggleAll(nil)
	if c.Len() != 1 {
		t.Errorf("empty view should not change selection, len=%d", c.Len())
	}
}

func TestPrune(t *testing.T) {
	c := New()
	for _, id := range []string{"a", "b", "c"} {
		c.Toggle(id)
	}
	c.Prune(tasks("a", "c", "d"))
	if got := fmt.Sprint(c.IDs()); got != "[a c]" {
		t.Errorf("IDs() = %s, want [a c]", got)
	}
}

func TestClearKeepsMode(t *testing.T) {
	c := New()
	c.Enter()
	c.Toggle("a")
	c.Clear()
	if !c.Active() || c.Len() != 0 {
		t.Errorf("Clear: active=%v len=%d", c.Active(), c.Len())
	}
}

func TestDeselect(t *testing.T) {
	c := New()
	c.Deselect("x")
	c.Toggle("a")
	c.Toggle("b")
	c.Toggle("c")
	c.Deselect("a", "c", "zzz")
	if got := c.IDs(); len(got) != 1 || got[0] != "b" {
		t.Errorf("IDs() = %v, want [b]", got)
	}
}
