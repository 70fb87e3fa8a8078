package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/BuzzLyutic/task-sync/internal/model"
)

func (m Model) View() string {
	var b strings.Builder
	st := m.engine.State

	b.WriteString(titleStyle.Render("Tasks"))
	b.WriteString("  ")
	b.WriteString(renderTabs(st.Filter().Status))
	b.WriteString("\n")
	b.WriteString(m.search.View())
	b.WriteString("\n\n")

	if st.Loading() || m.inFlight > 0 {
		b.WriteString(m.spinner.View() + mutedStyle.Render(" Loading..."))
		b.WriteString("\n")
	}
	if msg := st.Err(); msg != "" {
		b.WriteString(errorStyle.Render("Error: " + msg))
		b.WriteString("\n")
	}

	tasks := st.Tasks()
	if len(tasks) == 0 && !st.Loading() {
		b.WriteString(mutedStyle.Render("No tasks found"))
		b.WriteString("\n")
	}
	for i, t := range tasks {
		b.WriteString(renderRow(t, i == m.cursor && m.mode == modeBrowse))
		b.WriteString("\n")
	}

	switch m.mode {
	case modeForm:
		b.WriteString("\n")
		b.WriteString(m.renderForm())
	case modeConfirm:
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Delete this task? (y/N)"))
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func renderTabs(current model.Status) string {
	parts := make([]string, 0, len(statusCycle))
	for _, s := range statusCycle {
		if s == current {
			parts = append(parts, activeTab.Render(string(s)))
		} else {
			parts = append(parts, inactiveTab.Render(string(s)))
		}
	}
	return strings.Join(parts, " ")
}

func renderRow(t model.Task, selected bool) string {
	cursor := "  "
	if selected {
		cursor = cursorStyle.Render("> ")
	}
	check := "[ ]"
	title := t.Title
	if t.IsCompleted {
		check = "[x]"
		title = doneStyle.Render(title)
	}

	meta := priorityStyle(t.Priority).Render(string(t.Priority))
	if t.DueDate != nil {
		meta += mutedStyle.Render("  due " + model.FormatDueDate(t.DueDate))
	}
	row := fmt.Sprintf("%s%s %s  %s", cursor, check, title, meta)
	if t.Description != "" {
		row += "\n      " + mutedStyle.Render(t.Description)
	}
	return row
}

func (m Model) renderForm() string {
	heading := "New task"
	if id, ok := m.engine.Edit.Editing(); ok {
		heading = "Edit task " + id
	}

	labels := []string{"Title", "Description", "Due date"}
	lines := []string{titleStyle.Render(heading)}
	for i, in := range m.inputs {
		lines = append(lines, m.label(i, labels[i])+in.View())
	}
	lines = append(lines, m.label(fieldPriority, "Priority")+"‹ "+priorityStyle(m.priority).Render(string(m.priority))+" ›")
	lines = append(lines, helpStyle.Render("tab next • enter save • esc cancel"))
	return modalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) label(field int, text string) string {
	l := fmt.Sprintf("%-12s", text)
	if m.focus == field {
		return focusedLabel.Render(l)
	}
	return mutedStyle.Render(l)
}

func (m Model) renderHelp() string {
	if m.mode != modeBrowse {
		return ""
	}
	parts := make([]string, 0, len(keys.browseHelp()))
	for _, k := range keys.browseHelp() {
		h := k.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return helpStyle.Render(strings.Join(parts, " • "))
}

