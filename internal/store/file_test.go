package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/antopolskiy/taskboard/internal/task"
)

func TestFileStoreRenamesOnTitleChange(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	ctx := context.Background()

	tk, err := s.CreateTask(ctx, &task.Task{Title: "First draft"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	oldPath := filepath.Join(dir, task.GenerateFilename(tk.ID, "First draft"))
	if _, err := os.Stat(oldPath); err != nil {
		t.Fatalf("task file missing: %v", err)
	}

	if err := s.UpdateTask(ctx, tk.ID, task.Patch{Title: task.Ptr("Final copy")}); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Errorf("old file should be gone, stat err = %v", err)
	}
	newPath := filepath.Join(dir, task.GenerateFilename(tk.ID, "Final copy"))
	got, err := task.Read(newPath)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Title != "Final copy" {
		t.Errorf("title = %q", got.Title)
	}
}

func TestFileStoreSkipsMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	ctx := context.Background()

	if _, err := s.CreateTask(ctx, &task.Task{Title: "Good"}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad-file.md"), []byte("no frontmatter"), 0o600); err != nil {
		t.Fatal(err)
	}

	list, err := s.ListTasks(ctx, "")
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(list) != 1 || list[0].Title != "Good" {
		t.Errorf("ListTasks = %v, want only the good task", list)
	}
}

func TestFileStoreReadsHandEditedFile(t *testing.T) {
	dir := t.TempDir()
	content := "---\nid: hand-1\ntitle: Edited by hand\nstatus: in-progress\npriority: 2\ncreatedAt: 2026-03-01T08:00:00Z\n---\n\nNotes here.\n"
	if err := os.WriteFile(filepath.Join(dir, "hand-1-edited-by-hand.md"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(dir)
	got := find(t, s, "", "hand-1")
	if got.Status != task.StatusInProgress || got.Priority != task.PriorityHigh {
		t.Errorf("normalized status/priority = %s/%s", got.Status, got.Priority)
	}
	if got.Description != "Notes here.\n" {
		t.Errorf("description = %q", got.Description)
	}
}

func TestFileStoreRepairsDuplicatePositions(t *testing.T) {
	dir := t.TempDir()
	for _, tk := range []*task.Task{
		{ID: "a", Title: "A", Status: task.StatusTodo, Priority: task.PriorityLow, Position: 0, CreatedAt: baseTime},
		{ID: "b", Title: "B", Status: task.StatusTodo, Priority: task.PriorityLow, Position: 0, CreatedAt: baseTime.Add(1)},
	} {
		if err := task.Write(filepath.Join(dir, task.GenerateFilename(tk.ID, tk.Title)), tk); err != nil {
			t.Fatal(err)
		}
	}

	list, err := NewFileStore(dir).ListTasks(context.Background(), "")
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	seen := map[int]bool{}
	for _, tk := range list {
		if seen[tk.Position] {
			t.Fatalf("duplicate position %d after repair", tk.Position)
		}
		seen[tk.Position] = true
	}
}

func TestFileStoreMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "not-yet")
	s := NewFileStore(dir)
	ctx := context.Background()

	list, err := s.ListTasks(ctx, "")
	if err != nil || len(list) != 0 {
		t.Fatalf("ListTasks on missing dir = %v, %v", list, err)
	}
	if err := s.DeleteTask(ctx, "x"); err == nil {
		t.Error("DeleteTask on missing dir should fail")
	}
	if _, err := s.CreateTask(ctx, &task.Task{Title: "First"}); err != nil {
		t.Fatalf("CreateTask should create the directory: %v", err)
	}
	if got := s.Paths(); len(got) != 1 || got[0] != dir {
		t.Errorf("Paths() = %v", got)
	}
}

func TestFileStoreConcurrentUpdates(t *testing.T) {
	s := NewFileStore(t.TempDir())
	ctx := context.Background()
	tk, err := s.CreateTask(ctx, &task.Task{Title: "Shared"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.RecordTime(ctx, tk.ID, 1); err != nil {
				t.Errorf("RecordTime: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := find(t, s, "", tk.ID).TimeSpentMinutes; got != 10 {
		t.Errorf("time spent = %d, want 10 (lost update)", got)
	}
}
