package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/BuzzLyutic/task-sync/internal/model"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	activeTab     = lipgloss.NewStyle().Bold(true).Underline(true)
	inactiveTab   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	doneStyle     = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("240"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	focusedLabel  = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	modalStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1)
	plainPriority = lipgloss.NewStyle()
)

var priorityStyles = map[string]lipgloss.Style{
	"priority-high":   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	"priority-medium": lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	"priority-low":    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
}

// priorityClass names the style of a priority. Values outside the enum get
// no class and render unstyled.
func priorityClass(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "priority-high"
	case model.PriorityMedium:
		return "priority-medium"
	case model.PriorityLow:
		return "priority-low"
	}
	return ""
}

func priorityStyle(p model.Priority) lipgloss.Style {
	if s, ok := priorityStyles[priorityClass(p)]; ok {
		return s
	}
	return plainPriority
}
