package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/antopolskiy/taskboard/internal/engine"
	"github.com/antopolskiy/taskboard/internal/keynav"
	"github.com/antopolskiy/taskboard/internal/task"
)

var (
	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("236")).
				Padding(0, 1)

	activeColumnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("230")).
				Background(lipgloss.Color("62")).
				Padding(0, 1)

	fullColumnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("230")).
				Background(lipgloss.Color("130")).
				Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	activeCardStyle = cardStyle.BorderForeground(lipgloss.Color("62"))

	selectedCardStyle = cardStyle.BorderForeground(lipgloss.Color("44"))

	statusBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	timerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)

	priorityStyles = map[task.Priority]lipgloss.Style{
		task.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		task.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		task.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	detailLabelStyle = lipgloss.NewStyle().Bold(true).Width(14) //nolint:mnd // label column width

	dialogPadY = 1
	dialogPadX = 2

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(dialogPadY, dialogPadX)
)

// View implements tea.Model.
func (b *Board) View() string {
	if b.width == 0 {
		return "Loading..."
	}

	switch b.view {
	case viewDetail:
		return b.viewDetail()
	case viewConfirmDelete:
		return b.viewDeleteConfirm()
	case viewHelp:
		return b.viewHelp()
	case viewSearch, viewCreate:
		return b.viewPrompt()
	case viewBulk:
		return b.viewBulk()
	default:
		return b.viewBoard()
	}
}

func (b *Board) viewBoard() string {
	cols := b.eng.Columns()
	st, focus := b.eng.Nav()
	navigating := st == keynav.Navigating
	colWidth := b.columnWidth()

	rendered := make([]string, len(task.Statuses))
	for i, status := range task.Statuses {
		active := navigating && focus.Col == i
		row := -1
		if active {
			row = focus.Row
		}
		rendered[i] = b.renderColumn(status, cols[status], active, row, colWidth)
	}

	boardView := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	return lipgloss.JoinVertical(lipgloss.Left, boardView, "", b.renderNotices(), b.renderStatusBar())
}

func (b *Board) columnWidth() int {
	// Total rendered width = w * numColumns (JoinHorizontal adds no gaps).
	w := b.width / len(task.Statuses)
	const maxColWidth = 50
	return min(w, maxColWidth)
}

func (b *Board) renderColumn(status task.Status, tasks []*task.Task, active bool, row, width int) string {
	headerText := fmt.Sprintf("%s (%d)", status.Label(), len(tasks))
	style := columnHeaderStyle
	if status == task.StatusInProgress && b.eng.WIPLimit() > 0 {
		total := b.eng.Summary(b.name).Counts[status]
		headerText = fmt.Sprintf("%s (%d/%d)", status.Label(), total, b.eng.WIPLimit())
		if total >= b.eng.WIPLimit() {
			style = fullColumnHeaderStyle
		}
	}
	if active {
		style = activeColumnHeaderStyle
	}
	// Truncate to fit within padding (1 left + 1 right).
	const headerPad = 2
	header := style.Width(width).Render(truncate(headerText, width-headerPad))

	off := min(b.scroll[status], len(tasks))
	end := min(off+b.visibleCards(len(tasks), off), len(tasks))

	parts := []string{header}
	if off > 0 {
		parts = append(parts, dimStyle.Width(width).Render(truncate(fmt.Sprintf("  ↑ %d more", off), width)))
	}
	if len(tasks) == 0 {
		parts = append(parts, dimStyle.Width(width).Render("  (empty)"))
	}
	for i := off; i < end; i++ {
		parts = append(parts, b.renderCard(tasks[i], i == row, width))
	}
	if end < len(tasks) {
		parts = append(parts, dimStyle.Width(width).Render(truncate(fmt.Sprintf("  ↓ %d more", len(tasks)-end), width)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (b *Board) renderCard(t *task.Task, active bool, width int) string {
	const cardChrome = 4 // border (2) + padding (2)
	cardWidth := max(width-cardChrome, 1)

	prefix := ""
	selected := b.eng.IsSelected(t.ID)
	if b.eng.Selecting() {
		prefix = "[ ] "
		if selected {
			prefix = "[x] "
		}
	}
	firstLineWidth := max(cardWidth-len(prefix), 1)

	var contentLines []string
	wrapped := wrapTitle(t.Title, firstLineWidth, b.lines)
	contentLines = append(contentLines, prefix+wrapped[0])
	padding := strings.Repeat(" ", len(prefix))
	for i := 1; i < len(wrapped); i++ {
		contentLines = append(contentLines, padding+wrapped[i])
	}
	// Pad to exactly the configured title lines for uniform card height.
	for len(contentLines) < b.lines {
		contentLines = append(contentLines, "")
	}

	pStyle, ok := priorityStyles[t.Priority]
	if !ok {
		pStyle = dimStyle
	}
	details := []string{pStyle.Render(string(t.Priority))}
	if len(t.Tags) > 0 {
		tagStr := strings.Join(t.Tags, ",")
		if tagMaxLen := cardWidth / tagMaxFraction; len(tagStr) > tagMaxLen {
			tagStr = truncate(tagStr, tagMaxLen)
		}
		details = append(details, dimStyle.Render(tagStr))
	}
	if t.DueDate != nil {
		details = append(details, dimStyle.Render("due:"+t.DueDate.String()))
	}
	if spent := b.spent(t); spent > 0 || t.TimerRunning() {
		label := formatSpent(spent)
		if t.TimerRunning() {
			details = append(details, timerStyle.Render("▶ "+label))
		} else {
			details = append(details, dimStyle.Render(label))
		}
	} else {
		details = append(details, dimStyle.Render(humanDuration(b.now().Sub(t.UpdatedAt))))
	}
	contentLines = append(contentLines, strings.Join(details, " "))

	style := cardStyle
	if selected {
		style = selectedCardStyle
	}
	if active {
		style = activeCardStyle
	}
	return style.Width(width - 2).Render(strings.Join(contentLines, "\n")) //nolint:mnd // border width
}

// spent returns credited plus uncredited time for t.
func (b *Board) spent(t *task.Task) time.Duration {
	return time.Duration(t.TimeSpentMinutes)*time.Minute + b.eng.Elapsed(t.ID)
}

// wrapTitle lays title out over at most maxLines lines of maxWidth cells.
// Words that do not fit move to the next line; whatever is left for the
// last line is truncated with an ellipsis.
func wrapTitle(title string, maxWidth, maxLines int) []string {
	maxLines = max(maxLines, 1)
	words := strings.Fields(title)
	if len(words) == 0 {
		return []string{""}
	}

	lines := make([]string, 0, maxLines)
	line := words[0]
	for i := 1; i < len(words); i++ {
		if lipgloss.Width(line)+1+lipgloss.Width(words[i]) <= maxWidth {
			line += " " + words[i]
			continue
		}
		if len(lines) == maxLines-1 {
			line += " " + strings.Join(words[i:], " ")
			break
		}
		lines = append(lines, truncate(line, maxWidth))
		line = words[i]
	}
	return append(lines, truncate(line, maxWidth))
}

func (b *Board) renderNotices() string {
	notices := b.eng.Notices()
	if b.err != nil {
		return errorStyle.Render(truncate("Error: "+b.err.Error(), b.width))
	}
	if len(notices) == 0 {
		return ""
	}
	n := notices[len(notices)-1]
	text := n.Message
	if len(notices) > 1 {
		text += fmt.Sprintf(" (+%d more, x:dismiss)", len(notices)-1)
	} else {
		text += " (x:dismiss)"
	}
	text = truncate(text, b.width)
	switch n.Kind {
	case engine.NoticeError:
		return errorStyle.Render(text)
	default:
		return warningStyle.Render(text)
	}
}

func (b *Board) renderStatusBar() string {
	s := b.eng.Summary(b.name)
	parts := []string{" " + s.BoardName, strconv.Itoa(s.TotalTasks) + " tasks"}
	if s.RunningTimers > 0 {
		parts = append(parts, strconv.Itoa(s.RunningTimers)+" running")
	}
	c := b.eng.Criteria()
	if c.Search != "" {
		parts = append(parts, "search:"+c.Search)
	}
	if c.Priority != "" {
		parts = append(parts, "priority:"+string(c.Priority))
	}
	if c.SortKey != "" {
		parts = append(parts, "sort:"+string(c.SortKey)+" "+string(c.Order))
	}
	if b.eng.Selecting() {
		parts = append(parts, fmt.Sprintf("SELECT %d (enter:toggle ctrl+a:all a:invert b:bulk esc:done)", len(b.eng.Selected())))
	} else {
		parts = append(parts, "hjkl:navigate 1-3:move J/K:reorder s:timer m:select n:new ?:help q:quit")
	}
	return statusBarStyle.Render(truncate(strings.Join(parts, " | "), b.width))
}

func (b *Board) viewDetail() string {
	t := b.eng.Task(b.detailID)
	if t == nil {
		return "Task no longer exists.\n" + dimStyle.Render("q/esc:back")
	}

	lines := b.detailLines(t)

	// Reserve the last line for the fixed status hint.
	viewHeight := b.height - 1
	if viewHeight < 1 {
		viewHeight = len(lines)
	}
	hint := "q/esc:back"
	if len(lines) > viewHeight {
		hint += "  j/k:scroll  g/G:top/bottom"
	}

	off := min(b.detailScrollOff, max(len(lines)-viewHeight, 0))
	end := min(off+viewHeight, len(lines))
	return strings.Join(lines[off:end], "\n") + "\n" + dimStyle.Render(hint)
}

func (b *Board) detailLines(t *task.Task) []string {
	field := func(label, value string) string {
		return detailLabelStyle.Render(label+":") + "  " + value
	}
	titleLine := lipgloss.NewStyle().Bold(true).Render(t.Title)
	lines := []string{
		titleLine,
		strings.Repeat("─", lipgloss.Width(titleLine)),
		"",
		field("Status", t.Status.Label()),
		field("Priority", string(t.Priority)),
	}
	if len(t.Tags) > 0 {
		lines = append(lines, field("Tags", strings.Join(t.Tags, ", ")))
	}
	if t.DueDate != nil {
		lines = append(lines, field("Due", t.DueDate.String()))
	}
	if t.EstimatedHours > 0 {
		lines = append(lines, field("Estimate", strconv.FormatFloat(t.EstimatedHours, 'f', -1, 64)+"h"))
	}
	spent := formatSpent(b.spent(t))
	if t.TimerRunning() {
		spent += " " + timerStyle.Render("(running)")
	}
	lines = append(lines,
		field("Spent", spent),
		field("Created", t.CreatedAt.Local().Format("2006-01-02 15:04")),
		field("Updated", t.UpdatedAt.Local().Format("2006-01-02 15:04")),
	)
	if t.StartedAt != nil {
		lines = append(lines, field("Started", t.StartedAt.Local().Format("2006-01-02 15:04")))
	}
	if t.CompletedAt != nil {
		lines = append(lines, field("Completed", t.CompletedAt.Local().Format("2006-01-02 15:04")))
	}
	if t.StartedAt != nil && t.CompletedAt != nil && !t.CompletedAt.Before(*t.StartedAt) {
		lines = append(lines, field("Duration", humanDuration(t.CompletedAt.Sub(*t.StartedAt))))
	}
	lines = append(lines, field("ID", dimStyle.Render(t.ID)))
	if t.Description != "" {
		lines = append(lines, "")
		wrapped := lipgloss.NewStyle().Width(b.width).Render(t.Description)
		lines = append(lines, strings.Split(wrapped, "\n")...)
	}
	return lines
}

func (b *Board) viewDeleteConfirm() string {
	content := errorStyle.Render("Delete task?") + "\n\n" +
		"  " + b.deleteTitle + "\n\n" +
		dimStyle.Render("y:yes  n:no")
	return dialogStyle.Render(content)
}

func (b *Board) viewPrompt() string {
	title := "Search"
	if b.view == viewCreate {
		title = "New task in " + b.createStatus.Label()
	}
	content := lipgloss.NewStyle().Bold(true).Render(title) + "\n\n" +
		b.input.View() + "\n\n" +
		dimStyle.Render("enter:confirm  esc:cancel")
	return dialogStyle.Render(content)
}

func (b *Board) viewBulk() string {
	title := fmt.Sprintf("Apply to %d selected tasks:", len(b.eng.Selected()))
	items := make([]string, len(bulkActions))
	for i, a := range bulkActions {
		cursor := "  "
		if i == b.bulkCursor {
			cursor = "> "
		}
		items[i] = cursor + a.label
	}
	content := lipgloss.NewStyle().Bold(true).Render(title) + "\n\n" +
		strings.Join(items, "\n") + "\n\n" +
		dimStyle.Render("enter:apply  esc:cancel")
	return dialogStyle.Render(content)
}

func (b *Board) viewHelp() string {
	help := []struct{ key, desc string }{
		{"h/l ←/→", "Previous / next column"},
		{"j/k ↓/↑", "Move focus down / up"},
		{"enter", "Show task detail (toggle in select mode)"},
		{"1-3", "Move task to column"},
		{"J/K", "Reorder task down / up"},
		{"s", "Start or stop the timer"},
		{"n", "New task in the focused column"},
		{"d", "Delete task"},
		{"m", "Enter select mode"},
		{"ctrl+a", "Select all visible tasks"},
		{"a", "Select or clear all (select mode)"},
		{"b", "Bulk actions on the selection"},
		{"/", "Search"},
		{"p", "Cycle priority filter"},
		{"o / O", "Cycle sort key / flip order"},
		{"c", "Clear filters"},
		{"x", "Dismiss notices"},
		{"r", "Refresh board"},
		{"esc", "Leave select mode / stop navigating / quit"},
		{"q", "Quit"},
	}

	lines := []string{lipgloss.NewStyle().Bold(true).Render("Keyboard Shortcuts"), ""}
	keyStyle := lipgloss.NewStyle().Bold(true).Width(12) //nolint:mnd // key column width
	for _, h := range help {
		lines = append(lines, keyStyle.Render(h.key)+"  "+h.desc)
	}
	lines = append(lines, "", dimStyle.Render("Press any key to close"))
	return dialogStyle.Render(strings.Join(lines, "\n"))
}

// truncate shortens s to maxLen display cells, ending in "..." when cut.
func truncate(s string, maxLen int) string {
	const ellipsis = "..."
	maxLen = max(maxLen, len(ellipsis)+1)
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+len(ellipsis) > maxLen {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + ellipsis
}

// formatSpent renders tracked time as "12m" or "3h 05m".
func formatSpent(d time.Duration) string {
	m := int(d / time.Minute)
	if m < 60 { //nolint:mnd // minutes per hour
		return strconv.Itoa(m) + "m"
	}
	return fmt.Sprintf("%dh %02dm", m/60, m%60) //nolint:mnd // minutes per hour
}

// humanDuration formats a duration as a compact human-readable string.
// Examples: "<1m", "5m", "2h", "3d", "2w", "3mo", "1y".
func humanDuration(d time.Duration) string {
	const (
		day   = 24 * time.Hour
		week  = 7 * day
		month = 30 * day
		year  = 365 * day
	)

	switch {
	case d < time.Minute:
		return "<1m"
	case d < time.Hour:
		return strconv.Itoa(int(d.Minutes())) + "m"
	case d < day:
		return strconv.Itoa(int(d.Hours())) + "h"
	case d < week:
		return strconv.Itoa(int(d/day)) + "d"
	case d < month:
		return strconv.Itoa(int(d/week)) + "w"
	case d < year:
		return strconv.Itoa(int(d/month)) + "mo"
	default:
		return strconv.Itoa(int(d/year)) + "y"
	}
}
