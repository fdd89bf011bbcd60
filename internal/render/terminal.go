// Package render draws the board in a terminal.
package render

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hiroki-koketsu/kanban-board/internal/board"
	"github.com/hiroki-koketsu/kanban-board/internal/model"
)

const columnWidth = 30

var (
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#A8A8A8")).
			Padding(0, 1).
			Width(columnWidth)

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#42526E"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(lipgloss.Color("#D1D1D1")).
			Width(columnWidth - 2)

	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A8A8A8"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF3D00"))

	categoryColors = map[model.Category]lipgloss.Color{
		model.CategoryTechnicalTask: lipgloss.Color("#1FD7C1"),
		model.CategoryUserStory:     lipgloss.Color("#0038FF"),
	}

	priorityMarks = map[model.Priority]string{
		model.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("#7AE229")).Render("▼ low"),
		model.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA800")).Render("= medium"),
		model.PriorityUrgent: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF3D00")).Render("▲ urgent"),
	}
)

// Terminal renders the board as four side-by-side columns.
type Terminal struct {
	out io.Writer
}

// NewTerminal writes to out.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

// RenderBoard draws every column of v.
func (t *Terminal) RenderBoard(_ context.Context, v board.View) error {
	cols := make([]string, 0, len(v.Columns))
	for _, c := range v.Columns {
		cols = append(cols, renderColumn(c))
	}
	_, err := fmt.Fprintln(t.out, lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	return err
}

// RenderSummary prints the headline numbers of the board.
func (t *Terminal) RenderSummary(s board.Summary) error {
	rows := []string{headerStyle.Render(fmt.Sprintf("Tasks on board: %d", s.Total))}
	for _, st := range model.States {
		rows = append(rows, fmt.Sprintf("%-15s %d", st.Label(), s.ByState[st]))
	}
	rows = append(rows, "", priorityMarks[model.PriorityUrgent], fmt.Sprintf("%-15s %d", "Urgent", s.Urgent))
	if s.NextUrgentDue.IsSet() {
		rows = append(rows, "Next due  "+s.NextUrgentDue.Format("January 2, 2006"))
	}
	_, err := fmt.Fprintln(t.out, columnStyle.Render(strings.Join(rows, "\n")))
	return err
}

// ReportError prints a failed operation.
func (t *Terminal) ReportError(_ context.Context, err error) {
	fmt.Fprintln(t.out, errorStyle.Render("error: "+err.Error()))
}

// Message prints a transient notification line.
func (t *Terminal) Message(text string) {
	fmt.Fprintln(t.out, mutedStyle.Render(text))
}

// Notify prints a board event as a notification line.
func (t *Terminal) Notify(_ context.Context, e board.Event) error {
	t.Message(fmt.Sprintf("%s: %s -> %s", e.Message, e.From.Label(), e.State.Label()))
	return nil
}

func renderColumn(c board.Column) string {
	parts := []string{headerStyle.Render(fmt.Sprintf("%s (%d)", c.Label, len(c.Cards)))}
	if len(c.Cards) == 0 {
		parts = append(parts, mutedStyle.Render("No tasks "+strings.ToLower(c.Label)))
	}
	for _, card := range c.Cards {
		parts = append(parts, renderCard(card))
	}
	return columnStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func renderCard(c board.Card) string {
	lines := []string{
		lipgloss.NewStyle().Foreground(categoryColors[c.Task.Category]).Render(c.CategoryLabel),
		titleStyle.Render(c.Task.Title),
	}
	if c.Task.Description != "" {
		lines = append(lines, mutedStyle.Render(truncate(c.Task.Description, 6)))
	}
	if c.SubtasksTotal > 0 {
		lines = append(lines, fmt.Sprintf("%s %d/%d Subtasks", progressBar(c.SubtasksDone, c.SubtasksTotal, 10), c.SubtasksDone, c.SubtasksTotal))
	}

	avatars := make([]string, 0, len(c.Avatars)+1)
	for _, a := range c.Avatars {
		avatars = append(avatars, lipgloss.NewStyle().Foreground(lipgloss.Color(a.Color)).Render(a.Initials))
	}
	if c.Overflow {
		avatars = append(avatars, mutedStyle.Render("..."))
	}
	lines = append(lines, strings.TrimSpace(strings.Join(avatars, " ")+"  "+priorityMarks[c.Task.Priority]))
	lines = append(lines, mutedStyle.Render(c.Task.ID))
	return cardStyle.Render(strings.Join(lines, "\n"))
}

// truncate keeps the first maxWords words of s.
func truncate(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:maxWords], " ") + " ..."
}

func progressBar(done, total, width int) string {
	filled := 0
	if total > 0 {
		filled = done * width / total
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

var (
	_ board.Renderer = (*Terminal)(nil)
	_ board.Notifier = (*Terminal)(nil)
)
