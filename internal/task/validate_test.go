package task

import (
	"errors"
	"strings"
	"testing"

	"github.com/antopolskiy/taskboard/internal/clierr"
)

func TestParseStatusAliases(t *testing.T) {
	tests := map[string]Status{
		"todo":        StatusTodo,
		"To-Do":       StatusTodo,
		"in_progress": StatusInProgress,
		"in-progress": StatusInProgress,
		"done":        StatusCompleted,
		" completed ": StatusCompleted,
	}
	for in, want := range tests {
		got, err := ParseStatus(in)
		if err != nil {
			t.Errorf("ParseStatus(%q) error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseStatus(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestParseStatusInvalid(t *testing.T) {
	_, err := ParseStatus("review")
	var cliErr *clierr.Error
	if !errors.As(err, &cliErr) {
		t.Fatalf("expected *clierr.Error, got %T", err)
	}
	if cliErr.Code != clierr.InvalidStatus {
		t.Errorf("Code = %q, want %q", cliErr.Code, clierr.InvalidStatus)
	}
}

func TestParsePriority(t *testing.T) {
	if p, err := ParsePriority("HIGH"); err != nil || p != PriorityHigh {
		t.Errorf("ParsePriority(HIGH) = %q, %v", p, err)
	}
	if _, err := ParsePriority("critical"); !clierr.HasCode(err, clierr.InvalidPriority) {
		t.Errorf("expected INVALID_PRIORITY, got %v", err)
	}
}

func TestValidateWIPLimitMessage(t *testing.T) {
	err := ValidateWIPLimit(3, 3)
	if err.Code != clierr.WIPLimitExceeded {
		t.Errorf("Code = %q", err.Code)
	}
	if !strings.Contains(err.Error(), "WIP limit reached (3 tasks maximum)") {
		t.Errorf("message = %q", err.Error())
	}
	if err.Details["limit"] != 3 {
		t.Errorf("Details[limit] = %v", err.Details["limit"])
	}
}

func TestValidatePatch(t *testing.T) {
	if err := ValidatePatch(Patch{Status: Ptr(Status("nope"))}); !clierr.HasCode(err, clierr.InvalidStatus) {
		t.Errorf("bad status: %v", err)
	}
	if err := ValidatePatch(Patch{Priority: Ptr(Priority("nope"))}); !clierr.HasCode(err, clierr.InvalidPriority) {
		t.Errorf("bad priority: %v", err)
	}
	if err := ValidatePatch(Patch{Position: Ptr(-1)}); !clierr.HasCode(err, clierr.InvalidPosition) {
		t.Errorf("bad position: %v", err)
	}
	if err := ValidatePatch(Patch{Status: Ptr(StatusTodo), Position: Ptr(0)}); err != nil {
		t.Errorf("valid patch: %v", err)
	}
}
