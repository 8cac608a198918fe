package engine

import (
	"context"
	"fmt"

	"github.com/antopolskiy/taskboard/internal/keynav"
	"github.com/antopolskiy/taskboard/internal/task"
)

// HandleKey runs one key press through keyboard navigation and executes
// the resulting action. ActionOpen and ActionFocus are returned for the
// front end to render; everything else is carried out here.
func (o *Orchestrator) HandleKey(ctx context.Context, k fmt.Stringer) (keynav.Action, error) {
	o.mu.Lock()
	act := o.nav.Handle(k, o.viewLocked())
	switch act.Kind {
	case keynav.ActionToggle:
		o.sel.Toggle(act.TaskID)
	case keynav.ActionEnterSelection:
		o.sel.Enter()
	case keynav.ActionSelectAll:
		o.sel.Enter()
		o.sel.SelectAll(o.visibleLocked())
	case keynav.ActionExitSelection:
		o.sel.Exit()
	case keynav.ActionMove:
		o.mu.Unlock()
		return act, o.moveFocused(ctx, act)
	}
	o.mu.Unlock()
	return act, nil
}

// moveFocused moves the focused task and keeps the focus on it.
func (o *Orchestrator) moveFocused(ctx context.Context, act keynav.Action) error {
	if act.Column < 0 || act.Column >= len(task.Statuses) {
		return nil
	}
	err := o.MoveToColumn(ctx, act.TaskID, task.Statuses[act.Column])

	o.mu.Lock()
	defer o.mu.Unlock()
	o.nav.FocusTask(o.viewLocked(), act.TaskID)
	return err
}

// ResetNav returns keyboard navigation to idle, for mouse interaction.
func (o *Orchestrator) ResetNav() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.nav.Reset()
}

// Nav returns the navigation state and focus.
func (o *Orchestrator) Nav() (keynav.State, keynav.Focus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.nav.State(), o.nav.Focus()
}

// FocusedTask returns the focused task ID, or "" when idle or on an
// empty column.
func (o *Orchestrator) FocusedTask() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.nav.State() != keynav.Navigating {
		return ""
	}
	return o.nav.Focused(o.viewLocked())
}

// KeyMap returns the navigation bindings, for help rendering.
func (o *Orchestrator) KeyMap() keynav.KeyMap {
	return o.nav.Keys()
}

// FocusTask puts the keyboard focus on id if it is visible.
func (o *Orchestrator) FocusTask(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.nav.FocusTask(o.viewLocked(), id)
}
