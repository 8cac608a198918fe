//go:build !windows

package e2e_test

import (
	"bytes"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
)

const (
	tuiRows        = 40
	tuiCols        = 120
	tuiWaitTimeout = 3 * time.Second
	tuiKeyDelay    = 15 * time.Millisecond
)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]|\x1b\][^\x07]*\x07`)

type ttyBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *ttyBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *ttyBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type tuiSession struct {
	t    *testing.T
	cmd  *exec.Cmd
	ptmx *os.File
	out  ttyBuffer
	done chan struct{}
	once sync.Once
}

func startTUI(t *testing.T, dir string) *tuiSession {
	t.Helper()

	cmd := exec.Command(binPath, "--dir", dir, "tui") //nolint:gosec,noctx // test-built binary
	cmd.Env = append(os.Environ(), "NO_COLOR=1", "TERM=dumb", "TASKBOARD_LOG_LEVEL=error")

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: tuiCols, Rows: tuiRows})
	if err != nil {
		t.Fatalf("starting TUI: %v", err)
	}
	s := &tuiSession{t: t, cmd: cmd, ptmx: ptmx, done: make(chan struct{})}
	go func() {
		_, _ = io.Copy(&s.out, ptmx)
		_ = cmd.Wait()
		close(s.done)
	}()
	t.Cleanup(s.close)
	return s
}

func (s *tuiSession) close() {
	s.once.Do(func() {
		_, _ = s.ptmx.Write([]byte("q"))
		select {
		case <-s.done:
		case <-time.After(tuiWaitTimeout):
			if s.cmd.Process != nil {
				_ = s.cmd.Process.Kill()
			}
			<-s.done
		}
		_ = s.ptmx.Close()
	})
}

func (s *tuiSession) press(keys ...string) {
	s.t.Helper()
	for _, k := range keys {
		if _, err := s.ptmx.Write([]byte(encodeKey(k))); err != nil {
			s.t.Fatalf("pressing %q: %v", k, err)
		}
		time.Sleep(tuiKeyDelay)
	}
}

func (s *tuiSession) output() string {
	return ansiRe.ReplaceAllString(strings.ReplaceAll(s.out.String(), "\r", ""), "")
}

func (s *tuiSession) waitFor(needle string) {
	s.t.Helper()
	deadline := time.Now().Add(tuiWaitTimeout)
	for time.Now().Before(deadline) {
		if strings.Contains(s.output(), needle) {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	s.t.Fatalf("timed out waiting for %q; got %q", needle, s.output())
}

func (s *tuiSession) waitExit() {
	s.t.Helper()
	select {
	case <-s.done:
	case <-time.After(tuiWaitTimeout):
		s.t.Fatal("timed out waiting for TUI to exit")
	}
}

func encodeKey(name string) string {
	switch name {
	case "enter":
		return "\r"
	case "esc":
		return "\x1b"
	case "up":
		return "\x1b[A"
	case "down":
		return "\x1b[B"
	case "left":
		return "\x1b[D"
	case "right":
		return "\x1b[C"
	default:
		return name
	}
}

func waitForStatus(t *testing.T, dir, id, want string) {
	t.Helper()
	deadline := time.Now().Add(tuiWaitTimeout)
	for {
		var tk taskJSON
		if r := runJSON(t, dir, &tk, "show", id); r.exitCode == 0 && tk.Status == want {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s to reach %s", id, want)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestTUIShowsColumnsAndQuits(t *testing.T) {
	dir := initBoard(t)
	mustCreateTask(t, dir, "Visible card")

	s := startTUI(t, dir)
	s.waitFor("To-Do")
	s.waitFor("In Progress")
	s.waitFor("Visible card")

	s.press("q")
	s.waitExit()
}

func TestTUIDigitMovesFocusedTask(t *testing.T) {
	dir := initBoard(t)
	tk := mustCreateTask(t, dir, "Move me")

	s := startTUI(t, dir)
	s.waitFor("Move me")
	s.press("down", "2")
	waitForStatus(t, dir, tk.ID, statusInProgress)

	s.press("3")
	waitForStatus(t, dir, tk.ID, statusCompleted)
}

func TestTUIReloadsExternalChanges(t *testing.T) {
	dir := initBoard(t)
	mustCreateTask(t, dir, "Initial")

	s := startTUI(t, dir)
	s.waitFor("Initial")

	mustCreateTask(t, dir, "Added from CLI")
	s.waitFor("Added from CLI")
}
