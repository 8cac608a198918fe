// Package selection holds the bulk-selection state of one board session:
// a mode flag and the set of selected task IDs.
package selection

import (
	"sort"

	"github.com/antopolskiy/taskboard/internal/task"
)

// Controller is the selection state. The zero value is ready to use and
// inactive. It is not safe for concurrent use; the board orchestrator owns it.
type Controller struct {
	active bool
	ids    map[string]struct{}
}

// New returns an inactive controller.
func New() *Controller {
	return &Controller{}
}

// Enter turns selection mode on. The current selection is kept.
func (c *Controller) Enter() {
	c.active = true
}

// Exit turns selection mode off and clears the selection.
func (c *Controller) Exit() {
	c.active = false
	c.Clear()
}

// Active reports whether selection mode is on.
func (c *Controller) Active() bool {
	return c.active
}

// Toggle adds id to the selection, or removes it if already selected. It
// does not check the mode; callers decide when a gesture means "select".
func (c *Controller) Toggle(id string) {
	if c.ids == nil {
		c.ids = make(map[string]struct{})
	}
	if _, ok := c.ids[id]; ok {
		delete(c.ids, id)
		return
	}
	c.ids[id] = struct{}{}
}

// Deselect removes ids from the selection.
func (c *Controller) Deselect(ids ...string) {
	for _, id := range ids {
		delete(c.ids, id)
	}
}

// SelectAll adds every visible task to the selection.
func (c *Controller) SelectAll(visible []*task.Task) {
	if c.ids == nil {
		c.ids = make(map[string]struct{}, len(visible))
	}
	for _, t := range visible {
		c.ids[t.ID] = struct{}{}
	}
}

// ToggleAll selects every visible task, or clears the selection when all of
// them are already selected.
func (c *Controller) ToggleAll(visible []*task.Task) {
	if len(visible) > 0 && c.allSelected(visible) {
		c.Clear()
		return
	}
	c.SelectAll(visible)
}

func (c *Controller) allSelected(visible []*task.Task) bool {
	for _, t := range visible {
		if !c.Contains(t.ID) {
			return false
		}
	}
	return true
}

// Contains reports whether id is selected.
func (c *Controller) Contains(id string) bool {
	_, ok := c.ids[id]
	return ok
}

// IDs returns the selected IDs in sorted order.
func (c *Controller) IDs() []string {
	out := make([]string, 0, len(c.ids))
	for id := range c.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of selected tasks.
func (c *Controller) Len() int {
	return len(c.ids)
}

// Clear empties the selection without leaving selection mode.
func (c *Controller) Clear() {
	c.ids = nil
}

// Prune drops selected IDs that are no longer among tasks.
func (c *Controller) Prune(tasks []*task.Task) {
	if len(c.ids) == 0 {
		return
	}
	existing := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		existing[t.ID] = struct{}{}
	}
	for id := range c.ids {
		if _, ok := existing[id]; !ok {
			delete(c.ids, id)
		}
	}
}
