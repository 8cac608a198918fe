package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/antopolskiy/taskboard/internal/board"
	"github.com/antopolskiy/taskboard/internal/clierr"
	"github.com/antopolskiy/taskboard/internal/task"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want OutcomeKind
	}{
		{"nil", nil, OutcomeOK},
		{"wip", &board.Rejection{Reason: board.WIPRejection(3, 3)}, OutcomeRejected},
		{"busy", task.ValidateBusy("a"), OutcomeRejected},
		{"missing", task.NotFound("a"), OutcomeFailed},
		{"io", errors.New("boom"), OutcomeFailed},
	}
	for _, tt := range tests {
		if got := classify(tt.err); got != tt.want {
			t.Errorf("%s: classify = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestBulkResultSummary(t *testing.T) {
	res := BulkResult{Op: "move", Outcomes: []Outcome{
		{TaskID: "a", Kind: OutcomeOK},
		{TaskID: "b", Kind: OutcomeRejected, Err: clierr.New(clierr.WIPLimitExceeded, "limit reached")},
		{TaskID: "c", Kind: OutcomeFailed, Err: errors.New("disk")},
	}}
	got := res.Summary()
	want := "move: 1 of 3 tasks applied, 1 rejected (limit reached), 1 failed"
	if got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
	if ids := res.Succeeded(); len(ids) != 1 || ids[0] != "a" {
		t.Errorf("Succeeded() = %v", ids)
	}
	err := res.Err()
	if err == nil || !strings.Contains(err.Error(), "b: limit reached") || !strings.Contains(err.Error(), "c: disk") {
		t.Errorf("Err() = %v", err)
	}
	if !res.Partial() {
		t.Error("Partial() = false")
	}
	if (BulkResult{Op: "x"}).Err() != nil {
		t.Error("empty result should have no error")
	}
}
