// Package tui implements the interactive terminal board. Gestures are
// handed to the engine; the model only renders what the engine reports.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/antopolskiy/taskboard/internal/board"
	"github.com/antopolskiy/taskboard/internal/config"
	"github.com/antopolskiy/taskboard/internal/engine"
	"github.com/antopolskiy/taskboard/internal/keynav"
	"github.com/antopolskiy/taskboard/internal/task"
)

// view represents the current screen state.
type view int

const (
	viewBoard view = iota
	viewDetail
	viewConfirmDelete
	viewHelp
	viewSearch
	viewCreate
	viewBulk
)

// Key and layout constants.
const (
	keyEsc   = "esc"
	keyDown  = "down"
	keyUp    = "up"
	keyEnter = "enter"

	tagMaxFraction = 2 // tags get at most 1/N of card width
	boardChrome    = 3 // blank line, notice line, and status bar below the columns
	maxScrollOff   = 1<<31 - 1
	clockInterval  = time.Second
)

// Board is the top-level bubbletea model.
type Board struct {
	ctx    context.Context
	eng    *engine.Orchestrator
	name   string
	lines  int
	width  int
	height int
	view   view
	err    error
	now    func() time.Time

	scroll map[task.Status]int

	// Detail view.
	detailID        string
	detailScrollOff int

	// Delete confirmation.
	deleteID    string
	deleteTitle string

	// Search and create prompts.
	input        textinput.Model
	createStatus task.Status

	// Bulk action picker.
	bulkCursor int
}

// NewBoard creates a Board over eng and loads the task list.
func NewBoard(ctx context.Context, eng *engine.Orchestrator, cfg *config.Config) *Board {
	in := textinput.New()
	in.CharLimit = 200
	b := &Board{
		ctx:    ctx,
		eng:    eng,
		name:   cfg.Board.Name,
		lines:  cfg.TitleLines(),
		now:    time.Now,
		scroll: make(map[task.Status]int),
		input:  in,
	}
	b.err = eng.Refresh(ctx)
	return b
}

// SetNow overrides the clock used for age and timer display.
func (b *Board) SetNow(fn func() time.Time) {
	b.now = fn
}

// Init implements tea.Model.
func (b *Board) Init() tea.Cmd {
	return clockTick()
}

// ReloadMsg is sent by the file watcher to trigger a board refresh.
type ReloadMsg struct{}

// clockMsg redraws running timers.
type clockMsg time.Time

func clockTick() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg { return clockMsg(t) })
}

// Update implements tea.Model.
func (b *Board) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return b.handleKey(msg)
	case tea.MouseMsg:
		b.eng.ResetNav()
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
	case ReloadMsg:
		b.err = b.eng.Refresh(b.ctx)
	case clockMsg:
		return b, clockTick()
	}
	return b, nil
}

func (b *Board) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, key.NewBinding(key.WithKeys("ctrl+c"))) {
		return b, tea.Quit
	}

	switch b.view {
	case viewBoard:
		return b.handleBoardKey(msg)
	case viewDetail:
		b.handleDetailKey(msg)
	case viewConfirmDelete:
		b.handleDeleteKey(msg)
	case viewHelp:
		b.view = viewBoard
	case viewSearch, viewCreate:
		return b.handlePromptKey(msg)
	case viewBulk:
		b.handleBulkKey(msg)
	}
	return b, nil
}

func (b *Board) handleBoardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b.err = nil
	switch msg.String() {
	case "q":
		return b, tea.Quit
	case "?":
		b.view = viewHelp
		return b, nil
	case "r":
		b.err = b.eng.Refresh(b.ctx)
		return b, nil
	case "x":
		b.eng.DismissAll()
		return b, nil
	case "/":
		return b, b.openPrompt(viewSearch, b.eng.Criteria().Search)
	case "n":
		b.createStatus = task.StatusTodo
		if st, f := b.eng.Nav(); st == keynav.Navigating && f.Col < len(task.Statuses) {
			b.createStatus = task.Statuses[f.Col]
		}
		return b, b.openPrompt(viewCreate, "")
	case "p":
		b.cyclePriorityFilter()
		return b, nil
	case "o":
		b.cycleSort()
		return b, nil
	case "O":
		c := b.eng.Criteria()
		c.Order = flipOrder(c.Order)
		b.eng.SetCriteria(c)
		return b, nil
	case "c":
		b.eng.SetCriteria(board.Criteria{})
		return b, nil
	case "s":
		b.toggleTimer()
		return b, nil
	case "J":
		b.reorderFocused(1)
		return b, nil
	case "K":
		b.reorderFocused(-1)
		return b, nil
	case "d":
		b.startDelete()
		return b, nil
	case "a":
		if b.eng.Selecting() {
			b.eng.ToggleSelectAll()
		}
		return b, nil
	case "b":
		if b.eng.Selecting() && len(b.eng.Selected()) > 0 {
			b.bulkCursor = 0
			b.view = viewBulk
		}
		return b, nil
	}

	act, _ := b.eng.HandleKey(b.ctx, msg)
	switch act.Kind {
	case keynav.ActionOpen:
		b.detailID = act.TaskID
		b.detailScrollOff = 0
		b.view = viewDetail
	case keynav.ActionNone:
		if msg.String() == keyEsc {
			return b, tea.Quit
		}
	}
	b.ensureVisible()
	return b, nil
}

func (b *Board) handleDetailKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "q", keyEsc, "backspace":
		b.view = viewBoard
		b.detailID = ""
		b.detailScrollOff = 0
	case "j", keyDown:
		b.detailScrollOff++
	case "k", keyUp:
		if b.detailScrollOff > 0 {
			b.detailScrollOff--
		}
	case "g":
		b.detailScrollOff = 0
	case "G":
		// viewDetail clamps it.
		b.detailScrollOff = maxScrollOff
	}
}

func (b *Board) startDelete() {
	id := b.eng.FocusedTask()
	if id == "" {
		return
	}
	t := b.eng.Task(id)
	if t == nil {
		return
	}
	b.deleteID = id
	b.deleteTitle = t.Title
	b.view = viewConfirmDelete
}

func (b *Board) handleDeleteKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "y", "Y":
		_ = b.eng.Delete(b.ctx, b.deleteID)
		b.view = viewBoard
	case "n", "N", keyEsc, "q":
		b.view = viewBoard
	}
}

func (b *Board) openPrompt(v view, value string) tea.Cmd {
	b.view = v
	b.input.SetValue(value)
	b.input.CursorEnd()
	if v == viewSearch {
		b.input.Placeholder = "search title and description"
	} else {
		b.input.Placeholder = "new task title"
	}
	return b.input.Focus()
}

func (b *Board) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		b.input.Blur()
		b.view = viewBoard
		return b, nil
	case keyEnter:
		value := strings.TrimSpace(b.input.Value())
		b.input.Blur()
		if b.view == viewSearch {
			c := b.eng.Criteria()
			c.Search = value
			b.eng.SetCriteria(c)
		} else if value != "" {
			_, err := b.eng.Create(b.ctx, &task.Task{Title: value, Status: b.createStatus})
			var rej *board.Rejection
			if err != nil && !errors.As(err, &rej) {
				b.err = err
			}
		}
		b.view = viewBoard
		return b, nil
	}
	var cmd tea.Cmd
	b.input, cmd = b.input.Update(msg)
	return b, cmd
}

// bulkAction is one entry in the bulk picker.
type bulkAction struct {
	label string
	run   func(b *Board) engine.BulkResult
}

var bulkActions = []bulkAction{
	{"Move to To-Do", func(b *Board) engine.BulkResult { return b.eng.BulkMove(b.ctx, task.StatusTodo) }},
	{"Move to In Progress", func(b *Board) engine.BulkResult { return b.eng.BulkMove(b.ctx, task.StatusInProgress) }},
	{"Move to Completed", func(b *Board) engine.BulkResult { return b.eng.BulkMove(b.ctx, task.StatusCompleted) }},
	{"Priority: high", bulkPriority(task.PriorityHigh)},
	{"Priority: medium", bulkPriority(task.PriorityMedium)},
	{"Priority: low", bulkPriority(task.PriorityLow)},
	{"Delete", func(b *Board) engine.BulkResult { return b.eng.BulkDelete(b.ctx) }},
}

func bulkPriority(p task.Priority) func(*Board) engine.BulkResult {
	return func(b *Board) engine.BulkResult {
		return b.eng.BulkUpdate(b.ctx, task.Patch{Priority: task.Ptr(p)})
	}
}

func (b *Board) handleBulkKey(msg tea.KeyMsg) {
	switch msg.String() {
	case keyEsc, "q":
		b.view = viewBoard
	case "j", keyDown:
		if b.bulkCursor < len(bulkActions)-1 {
			b.bulkCursor++
		}
	case "k", keyUp:
		if b.bulkCursor > 0 {
			b.bulkCursor--
		}
	case keyEnter:
		bulkActions[b.bulkCursor].run(b)
		b.view = viewBoard
	}
}

func (b *Board) toggleTimer() {
	id := b.eng.FocusedTask()
	if id == "" {
		return
	}
	if b.eng.Timers().Running(id) {
		_, _ = b.eng.StopTimer(b.ctx, id)
		return
	}
	_ = b.eng.StartTimer(b.ctx, id)
}

// reorderFocused moves the focused task delta rows within its column and
// keeps the focus on it.
func (b *Board) reorderFocused(delta int) {
	id := b.eng.FocusedTask()
	if id == "" || b.eng.Selecting() {
		return
	}
	_, f := b.eng.Nav()
	target := f.Row + delta
	if target < 0 || f.Col >= len(task.Statuses) {
		return
	}
	col := task.Statuses[f.Col]
	if target >= len(b.eng.Columns()[col]) {
		return
	}
	_ = b.eng.OnReorder(b.ctx, id, col, target)
	b.eng.FocusTask(id)
	b.ensureVisible()
}

func (b *Board) cyclePriorityFilter() {
	c := b.eng.Criteria()
	switch c.Priority {
	case "":
		c.Priority = task.PriorityHigh
	case task.PriorityHigh:
		c.Priority = task.PriorityMedium
	case task.PriorityMedium:
		c.Priority = task.PriorityLow
	default:
		c.Priority = ""
	}
	b.eng.SetCriteria(c)
}

var sortCycle = []board.SortKey{board.SortCreatedAt, board.SortPriority, board.SortDueDate}

func (b *Board) cycleSort() {
	c := b.eng.Criteria()
	next := sortCycle[0]
	for i, k := range sortCycle {
		if k == c.SortKey || (c.SortKey == "" && k == board.SortCreatedAt) {
			next = sortCycle[(i+1)%len(sortCycle)]
			break
		}
	}
	c.SortKey = next
	b.eng.SetCriteria(c)
}

func flipOrder(o board.Order) board.Order {
	if o == board.Desc {
		return board.Asc
	}
	return board.Desc
}

// cardHeight returns the height of a single card in lines:
// top border + title lines + 1 detail line + bottom border.
func (b *Board) cardHeight() int {
	return b.lines + 3 //nolint:mnd // borders(2) + detail line(1)
}

// visibleCards returns how many cards fit in a column of n tasks scrolled
// to off, leaving room for the "↑ N more" and "↓ N more" indicators.
func (b *Board) visibleCards(n, off int) int {
	budget := b.height - boardChrome
	if budget < 1 {
		return 1
	}
	avail := budget - 1 // column header
	if off > 0 {
		avail--
	}
	ch := b.cardHeight()
	vis := max(avail/ch, 1)
	if off+vis < n {
		vis = max((avail-1)/ch, 1)
	}
	return vis
}

// ensureVisible scrolls the focused column so the focused row is shown.
func (b *Board) ensureVisible() {
	st, f := b.eng.Nav()
	if st != keynav.Navigating || f.Col >= len(task.Statuses) {
		return
	}
	status := task.Statuses[f.Col]
	n := len(b.eng.Columns()[status])
	off := b.scroll[status]
	maxVis := b.visibleCards(n, off)
	if f.Row >= off+maxVis {
		off = f.Row - maxVis + 1
	}
	if f.Row < off {
		off = f.Row
	}
	b.scroll[status] = off
}
