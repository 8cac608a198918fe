// Package keynav turns key presses on the board into navigation state
// changes and board actions. It holds only the focus position; executing
// actions is the orchestrator's job.
package keynav

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"

	"github.com/antopolskiy/taskboard/internal/board"
)

// State is the navigation state.
type State int

// Navigation states.
const (
	Idle State = iota
	Navigating
)

func (s State) String() string {
	if s == Navigating {
		return "navigating"
	}
	return "idle"
}

// Kind identifies what an Action asks the orchestrator to do.
type Kind int

// Action kinds.
const (
	ActionNone Kind = iota
	ActionFocus
	ActionOpen
	ActionToggle
	ActionMove
	ActionEnterSelection
	ActionSelectAll
	ActionExitSelection
	ActionIdle
)

var kindNames = [...]string{
	"none", "focus", "open", "toggle", "move",
	"enter-selection", "select-all", "exit-selection", "idle",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Action is the result of handling one key.
type Action struct {
	Kind   Kind
	TaskID string // focused task, when the action targets one
	Column int    // destination column index for ActionMove
}

// View is the board as the user currently sees it: task IDs per column in
// display order, plus whether selection mode is on.
type View struct {
	Columns   [][]string
	Selecting bool
}

// ViewOf builds a View from grouped columns.
func ViewOf(cols board.Columns, selecting bool) View {
	ordered := cols.Ordered()
	v := View{Columns: make([][]string, len(ordered)), Selecting: selecting}
	for i, c := range ordered {
		v.Columns[i] = make([]string, len(c.Tasks))
		for j, t := range c.Tasks {
			v.Columns[i][j] = t.ID
		}
	}
	return v
}

// Focus is a column and row position.
type Focus struct {
	Col, Row int
}

// KeyMap defines the navigation bindings.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Activate  key.Binding
	Select    key.Binding
	SelectAll key.Binding
	Escape    key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:      key.NewBinding(key.WithKeys("left", "h", "shift+tab"), key.WithHelp("←/h", "prev column")),
		Right:     key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("→/l", "next column")),
		Activate:  key.NewBinding(key.WithKeys("enter", " ", "space"), key.WithHelp("enter", "open/toggle")),
		Select:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "select mode")),
		SelectAll: key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "select all")),
		Escape:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	}
}

// Key adapts a plain key string such as "down" or "ctrl+a" for Handle.
type Key string

func (k Key) String() string { return string(k) }

// Controller is the keyboard navigation state machine.
type Controller struct {
	keys  KeyMap
	state State
	focus Focus
}

// New returns an idle controller with the default bindings.
func New() *Controller {
	return NewWithKeys(DefaultKeyMap())
}

// NewWithKeys returns an idle controller with custom bindings.
func NewWithKeys(keys KeyMap) *Controller {
	return &Controller{keys: keys}
}

// Keys returns the bindings, for help rendering.
func (c *Controller) Keys() KeyMap {
	return c.keys
}

// State returns the current navigation state.
func (c *Controller) State() State {
	return c.state
}

// Focus returns the focus position. It is meaningful only while navigating.
func (c *Controller) Focus() Focus {
	return c.focus
}

// Reset returns to Idle, as after mouse interaction with the board.
func (c *Controller) Reset() {
	c.state = Idle
}

// Handle processes one key press against v. k is a tea.KeyMsg or a Key.
func (c *Controller) Handle(k fmt.Stringer, v View) Action {
	c.Clamp(v)

	switch {
	case key.Matches(k, c.keys.SelectAll):
		return Action{Kind: ActionSelectAll}
	case key.Matches(k, c.keys.Select):
		return Action{Kind: ActionEnterSelection}
	case key.Matches(k, c.keys.Escape):
		return c.escape(v)
	case key.Matches(k, c.keys.Up, c.keys.Down, c.keys.Left, c.keys.Right):
		return c.navigate(k, v)
	case key.Matches(k, c.keys.Activate):
		return c.activate(v)
	}

	if n, ok := columnDigit(k.String(), len(v.Columns)); ok {
		return c.moveTo(n, v)
	}
	return Action{Kind: ActionNone}
}

func (c *Controller) escape(v View) Action {
	if v.Selecting {
		return Action{Kind: ActionExitSelection}
	}
	if c.state == Navigating {
		c.state = Idle
		return Action{Kind: ActionIdle}
	}
	return Action{Kind: ActionNone}
}

// navigate moves the focus. The first directional key only enters
// Navigating and shows the current focus.
func (c *Controller) navigate(k fmt.Stringer, v View) Action {
	if c.state == Idle {
		c.state = Navigating
		return c.focusAction(v)
	}

	switch {
	case key.Matches(k, c.keys.Up):
		if c.focus.Row > 0 {
			c.focus.Row--
		}
	case key.Matches(k, c.keys.Down):
		if c.focus.Row < len(columnAt(v, c.focus.Col))-1 {
			c.focus.Row++
		}
	case key.Matches(k, c.keys.Left):
		if c.focus.Col > 0 {
			c.focus = Focus{Col: c.focus.Col - 1}
		}
	case key.Matches(k, c.keys.Right):
		if c.focus.Col < len(v.Columns)-1 {
			c.focus = Focus{Col: c.focus.Col + 1}
		}
	}
	return c.focusAction(v)
}

func (c *Controller) activate(v View) Action {
	id := c.Focused(v)
	if c.state != Navigating || id == "" {
		return Action{Kind: ActionNone}
	}
	if v.Selecting {
		return Action{Kind: ActionToggle, TaskID: id}
	}
	return Action{Kind: ActionOpen, TaskID: id}
}

// moveTo handles digit n (zero-based column). In selection mode the move
// shortcut toggles the focused task instead.
func (c *Controller) moveTo(n int, v View) Action {
	id := c.Focused(v)
	if c.state != Navigating || id == "" {
		return Action{Kind: ActionNone}
	}
	if v.Selecting {
		return Action{Kind: ActionToggle, TaskID: id}
	}
	return Action{Kind: ActionMove, TaskID: id, Column: n}
}

func (c *Controller) focusAction(v View) Action {
	return Action{Kind: ActionFocus, TaskID: c.Focused(v), Column: c.focus.Col}
}

// Focused returns the ID of the focused task, or "" when the focused
// column is empty.
func (c *Controller) Focused(v View) string {
	col := columnAt(v, c.focus.Col)
	if c.focus.Row < 0 || c.focus.Row >= len(col) {
		return ""
	}
	return col[c.focus.Row]
}

// FocusTask moves the focus onto id if it is visible in v.
func (c *Controller) FocusTask(v View, id string) bool {
	for ci, col := range v.Columns {
		for ri, tid := range col {
			if tid == id {
				c.focus = Focus{Col: ci, Row: ri}
				return true
			}
		}
	}
	return false
}

// Clamp keeps the focus inside v after the board changed.
func (c *Controller) Clamp(v View) {
	if len(v.Columns) == 0 {
		c.focus = Focus{}
		return
	}
	c.focus.Col = max(0, min(c.focus.Col, len(v.Columns)-1))
	c.focus.Row = max(0, min(c.focus.Row, len(v.Columns[c.focus.Col])-1))
}

func columnAt(v View, col int) []string {
	if col < 0 || col >= len(v.Columns) {
		return nil
	}
	return v.Columns[col]
}

// columnDigit parses "1".."9" into a zero-based column index below n.
func columnDigit(s string, n int) (int, bool) {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	idx := int(s[0] - '1')
	return idx, idx < n
}
