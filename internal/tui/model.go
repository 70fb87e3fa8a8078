// Package tui is a terminal view over the sync engine. It renders engine
// state and turns key presses into engine calls; it owns no task data.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/BuzzLyutic/task-sync/internal/engine"
	"github.com/BuzzLyutic/task-sync/internal/model"
)

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeForm
	modeConfirm
)

// Form fields in focus order. The last one is the priority picker.
const (
	fieldTitle = iota
	fieldDescription
	fieldDue
	fieldPriority
	fieldCount
)

// stateChangedMsg is sent whenever the engine state changes.
type stateChangedMsg struct{}

// opDoneMsg reports the end of a remote call started from the UI. The error
// text itself lives in the engine's error slot.
type opDoneMsg struct {
	op   string
	err  error
	form int // form generation a submit belongs to
}

var statusCycle = []model.Status{model.StatusAll, model.StatusPending, model.StatusCompleted}

type Model struct {
	ctx    context.Context
	engine *engine.Engine

	mode     mode
	cursor   int
	width    int
	height   int
	inFlight int

	search   textinput.Model
	inputs   [fieldPriority]textinput.Model
	priority model.Priority
	focus    int
	pending  string // id waiting for delete confirmation
	formGen  int

	spinner spinner.Model
}

func New(ctx context.Context, e *engine.Engine) Model {
	search := textinput.New()
	search.Placeholder = "Search tasks..."
	search.Prompt = "/ "
	search.CharLimit = 200
	search.Cursor.SetMode(cursor.CursorStatic)
	search.SetValue(e.State.Filter().Query)

	var inputs [fieldPriority]textinput.Model
	for i, ph := range []string{"Title", "Description", "YYYY-MM-DD"} {
		ti := textinput.New()
		ti.Placeholder = ph
		ti.CharLimit = 500
		ti.Cursor.SetMode(cursor.CursorStatic)
		inputs[i] = ti
	}

	return Model{
		ctx:      ctx,
		engine:   e,
		search:   search,
		inputs:   inputs,
		priority: model.PriorityMedium,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run("load", func(ctx context.Context) error {
		return m.engine.Query.Refresh(ctx)
	}))
}

// run executes a remote call off the event loop.
func (m Model) run(op string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case stateChangedMsg:
		m.clampCursor()
		return m, nil

	case opDoneMsg:
		if m.inFlight > 0 {
			m.inFlight--
		}
		// Форма могла смениться, пока запрос был в пути
		if msg.op == "submit" && msg.err == nil && msg.form == m.formGen && m.mode == modeForm {
			m.mode = modeBrowse
			m.blurForm()
		}
		m.clampCursor()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeForm:
			return m.updateForm(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tasks := m.engine.State.Tasks()

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(tasks)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Search):
		m.mode = modeSearch
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, keys.Filter):
		m.engine.Query.SetStatus(nextStatus(m.engine.State.Filter().Status))
		m.cursor = 0
	case key.Matches(msg, keys.Refresh):
		return m.start("refresh", func(ctx context.Context) error {
			return m.engine.Query.Refresh(ctx)
		})
	case key.Matches(msg, keys.New):
		m.engine.Edit.Cancel()
		return m.openForm()
	case key.Matches(msg, keys.Edit):
		if t, ok := m.selected(tasks); ok {
			m.engine.Edit.OpenFor(t)
			return m.openForm()
		}
	case key.Matches(msg, keys.Toggle):
		if t, ok := m.selected(tasks); ok {
			id := t.ID
			return m.start("toggle", func(ctx context.Context) error {
				_, err := m.engine.Mutations.ToggleComplete(ctx, id)
				return err
			})
		}
	case key.Matches(msg, keys.Delete):
		if t, ok := m.selected(tasks); ok {
			m.pending = t.ID
			m.mode = modeConfirm
		}
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Submit):
		m.mode = modeBrowse
		m.search.Blur()
		return m, nil
	case key.Matches(msg, keys.Back):
		m.mode = modeBrowse
		m.search.Blur()
		m.search.SetValue("")
		m.engine.Query.SetSearchText("")
		m.cursor = 0
		return m, nil
	}

	var cmd tea.Cmd
	before := m.search.Value()
	m.search, cmd = m.search.Update(msg)
	if v := m.search.Value(); v != before {
		m.engine.Query.SetSearchText(v)
		m.cursor = 0
	}
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.engine.Edit.Cancel()
		m.mode = modeBrowse
		m.blurForm()
		return m, nil
	case key.Matches(msg, keys.Submit):
		f := m.formValue()
		submit := m.engine.Edit.Prepare(f)
		m.inFlight++
		ctx, gen := m.ctx, m.formGen
		return m, func() tea.Msg {
			_, err := submit(ctx)
			return opDoneMsg{op: "submit", err: err, form: gen}
		}
	case key.Matches(msg, keys.Next):
		return m.focusField((m.focus + 1) % fieldCount)
	case key.Matches(msg, keys.Prev):
		return m.focusField((m.focus + fieldCount - 1) % fieldCount)
	}

	if m.focus == fieldPriority {
		switch {
		case key.Matches(msg, keys.Left):
			m.priority = cyclePriority(m.priority, -1)
		case key.Matches(msg, keys.Right), msg.String() == " ":
			m.priority = cyclePriority(m.priority, 1)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.pending
	m.pending = ""
	m.mode = modeBrowse
	if !key.Matches(msg, keys.Confirm) {
		return m, nil
	}
	return m.start("remove", func(ctx context.Context) error {
		return m.engine.Mutations.Remove(ctx, id)
	})
}

func (m Model) start(op string, fn func(ctx context.Context) error) (tea.Model, tea.Cmd) {
	m.inFlight++
	return m, m.run(op, fn)
}

// openForm copies the edit session's form into the inputs.
func (m Model) openForm() (tea.Model, tea.Cmd) {
	f := m.engine.Edit.Form()
	m.inputs[fieldTitle].SetValue(f.Title)
	m.inputs[fieldDescription].SetValue(f.Description)
	m.inputs[fieldDue].SetValue(f.DueDate)
	for i := range m.inputs {
		m.inputs[i].CursorEnd()
	}
	m.priority = f.Priority
	m.mode = modeForm
	m.formGen++
	return m.focusField(fieldTitle)
}

func (m Model) focusField(i int) (tea.Model, tea.Cmd) {
	m.focus = i
	var cmd tea.Cmd
	for j := range m.inputs {
		if j == i {
			cmd = m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	return m, cmd
}

func (m *Model) blurForm() {
	for j := range m.inputs {
		m.inputs[j].Blur()
	}
}

func (m Model) formValue() engine.Form {
	return engine.Form{
		Title:       m.inputs[fieldTitle].Value(),
		Description: m.inputs[fieldDescription].Value(),
		DueDate:     strings.TrimSpace(m.inputs[fieldDue].Value()),
		Priority:    m.priority,
	}
}

func (m Model) selected(tasks []model.Task) (model.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.engine.State.Tasks())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func nextStatus(s model.Status) model.Status {
	for i, v := range statusCycle {
		if v == s {
			return statusCycle[(i+1)%len(statusCycle)]
		}
	}
	return model.StatusAll
}

func cyclePriority(p model.Priority, step int) model.Priority {
	n := len(model.Priorities)
	for i, v := range model.Priorities {
		if v == p {
			return model.Priorities[(i+step+n)%n]
		}
	}
	return model.PriorityMedium
}
