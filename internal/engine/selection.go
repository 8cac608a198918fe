package engine

// Selecting reports whether selection mode is on.
func (o *Orchestrator) Selecting() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sel.Active()
}

// Selected returns the selected task IDs in sorted order.
func (o *Orchestrator) Selected() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sel.IDs()
}

// IsSelected reports whether id is selected.
func (o *Orchestrator) IsSelected(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sel.Contains(id)
}

// EnterSelection turns selection mode on.
func (o *Orchestrator) EnterSelection() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sel.Enter()
}

// ExitSelection turns selection mode off and clears the selection.
func (o *Orchestrator) ExitSelection() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sel.Exit()
}

// ToggleSelect flips id in or out of the selection, entering selection
// mode first if needed. Unknown IDs are ignored.
func (o *Orchestrator) ToggleSelect(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !hasID(o.snapshot, id) {
		return
	}
	o.sel.Enter()
	o.sel.Toggle(id)
}

// Select enters selection mode and selects exactly ids. Unknown IDs are
// ignored.
func (o *Orchestrator) Select(ids ...string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sel.Enter()
	o.sel.Clear()
	for _, id := range ids {
		if hasID(o.snapshot, id) && !o.sel.Contains(id) {
			o.sel.Toggle(id)
		}
	}
}

// SelectAll enters selection mode and adds every visible task.
func (o *Orchestrator) SelectAll() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sel.Enter()
	o.sel.SelectAll(o.visibleLocked())
}

// ToggleSelectAll selects every visible task, or clears the selection when
// all of them already are.
func (o *Orchestrator) ToggleSelectAll() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sel.Enter()
	o.sel.ToggleAll(o.visibleLocked())
}
