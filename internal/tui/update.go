package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/existflow/ironmeet/internal/board"
	"github.com/existflow/ironmeet/internal/logger"
	"github.com/existflow/ironmeet/internal/model"
	"github.com/existflow/ironmeet/internal/report"
)

// persistedMsg reports the outcome of writing a board change
type persistedMsg struct {
	change *board.Change
	err    error
}

// createdMsg carries a task created by the store
type createdMsg struct {
	task model.Task
	err  error
}

// deletedMsg reports a task deletion
type deletedMsg struct {
	id  string
	err error
}

// reloadedMsg carries a fresh copy of the meeting
type reloadedMsg struct {
	meeting model.Meeting
	err     error
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

func persist(c *board.Change) tea.Cmd {
	return func() tea.Msg {
		return persistedMsg{change: c, err: c.Persist(context.Background())}
	}
}

func (m Model) reload() tea.Cmd {
	store, id := m.store, m.meeting.ID
	return func() tea.Msg {
		fresh, err := store.GetMeeting(context.Background(), id)
		return reloadedMsg{meeting: fresh, err: err}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case persistedMsg:
		m.refresh()
		switch {
		case msg.err == nil:
			m.setMessage("Saved")
		case msg.change.RolledBack():
			m.setError(fmt.Sprintf("Save failed, change reverted: %v", msg.err))
		default:
			m.setError(fmt.Sprintf("Save failed: %v", msg.err))
		}
		return m, nil

	case createdMsg:
		if msg.err != nil {
			m.setError(fmt.Sprintf("Failed to add task: %v", msg.err))
			return m, nil
		}
		if err := m.board.AddTask(msg.task); err != nil {
			m.setError(err.Error())
			return m, m.reload()
		}
		m.refresh()
		m.focusTask(msg.task.ID)
		m.setMessage(fmt.Sprintf("Added \"%s\"", msg.task.Title))
		return m, nil

	case deletedMsg:
		if msg.err != nil {
			m.setError(fmt.Sprintf("Failed to delete task: %v", msg.err))
			return m, m.reload()
		}
		m.setMessage("Task deleted")
		return m, nil

	case reloadedMsg:
		if msg.err != nil {
			m.setError(fmt.Sprintf("Reload failed: %v", msg.err))
			return m, nil
		}
		m.board.Replace(msg.meeting)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeForm:
			return m.updateForm(msg)
		case ModeChart:
			if key.Matches(msg, keys.Escape, keys.Chart, keys.Quit) {
				m.mode = ModeNormal
			}
			return m, nil
		case ModeReport:
			if key.Matches(msg, keys.Escape, keys.Report, keys.Quit) {
				m.mode = ModeNormal
				return m, nil
			}
			var cmd tea.Cmd
			m.report, cmd = m.report.Update(msg)
			return m, cmd
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}
		return m.handleNormalKeys(msg)
	}

	// huh forms run on their own internal messages
	if m.mode == ModeForm {
		return m.updateForm(msg)
	}
	return m, nil
}

// handleNormalKeys handles key presses in normal mode
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.NextProj):
		m.switchProject(1)

	case key.Matches(msg, keys.PrevProj):
		m.switchProject(-1)

	case key.Matches(msg, keys.Left):
		m.colCursor = clamp(m.colCursor-1, 0, len(columns)-1)
		m.rowCursor = clamp(m.rowCursor, 0, len(m.column(m.colCursor))-1)

	case key.Matches(msg, keys.Right):
		m.colCursor = clamp(m.colCursor+1, 0, len(columns)-1)
		m.rowCursor = clamp(m.rowCursor, 0, len(m.column(m.colCursor))-1)

	case key.Matches(msg, keys.Up):
		m.rowCursor = clamp(m.rowCursor-1, 0, len(m.column(m.colCursor))-1)

	case key.Matches(msg, keys.Down):
		m.rowCursor = clamp(m.rowCursor+1, 0, len(m.column(m.colCursor))-1)

	case key.Matches(msg, keys.MovePrev):
		return m.moveTask(-1)

	case key.Matches(msg, keys.MoveNext):
		return m.moveTask(1)

	case key.Matches(msg, keys.Add):
		return m.startAddTask()

	case key.Matches(msg, keys.Edit):
		return m.startEditTask()

	case key.Matches(msg, keys.Delete):
		return m.deleteTask()

	case key.Matches(msg, keys.Chart):
		m.buildChart()
		m.mode = ModeChart

	case key.Matches(msg, keys.Report):
		m.report.SetContent(report.ComposeMeeting(m.meeting))
		m.report.GotoTop()
		m.mode = ModeReport

	case key.Matches(msg, keys.Refresh):
		m.setMessage("Reloading...")
		return m, m.reload()

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp
	}

	return m, nil
}

func (m *Model) switchProject(delta int) {
	n := len(m.meeting.Projects)
	if n == 0 {
		return
	}
	m.projCursor = (m.projCursor + delta + n) % n
	m.rowCursor = clamp(m.rowCursor, 0, len(m.column(m.colCursor))-1)
}

// focusTask moves the cursor onto a task of the current project
func (m *Model) focusTask(id string) {
	for ci := range columns {
		for ri, t := range m.column(ci) {
			if t.ID == id {
				m.colCursor, m.rowCursor = ci, ri
				return
			}
		}
	}
}

// moveTask moves the selected task one column left or right. The board
// shows the move at once and the write runs in the background.
func (m Model) moveTask(delta int) (tea.Model, tea.Cmd) {
	t := m.currentTask()
	if t == nil {
		return m, nil
	}
	target := m.colCursor + delta
	if target < 0 || target >= len(columns) {
		return m, nil
	}

	change, err := m.board.SetTaskStatus(t.ID, columns[target])
	if err != nil {
		m.setError(err.Error())
		return m, nil
	}
	m.refresh()
	m.focusTask(t.ID)

	logger.Debug("Task moved on board", logger.F("task", t.ID), logger.F("to", columns[target]))
	m.setMessage(fmt.Sprintf("Moved \"%s\" to %s", truncate(t.Title, 30), columns[target].Label()))
	return m, persist(change)
}

// deleteTask asks for confirmation first when confirm_delete is set
func (m Model) deleteTask() (tea.Model, tea.Cmd) {
	t := m.currentTask()
	if t == nil {
		return m, nil
	}
	if !m.confirmDelete {
		return m.removeTask(t.ID)
	}

	*m.formConfirm = false
	m.formKind = formDelete
	m.editingID = t.ID
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete \"%s\"?", truncate(t.Title, 40))).
				Affirmative("Delete").
				Negative("Cancel").
				Value(m.formConfirm),
		),
	).WithShowHelp(true)
	m.mode = ModeForm
	return m, m.form.Init()
}

func (m Model) removeTask(id string) (tea.Model, tea.Cmd) {
	store := m.store
	m.board.RemoveTask(id)
	m.refresh()
	return m, func() tea.Msg {
		return deletedMsg{id: id, err: store.DeleteTask(context.Background(), id)}
	}
}

func (m Model) startAddTask() (tea.Model, tea.Cmd) {
	if m.currentProject() == nil {
		m.setError("No projects in this meeting, add one with 'ironmeet project new'")
		return m, nil
	}
	*m.formTitle = ""
	*m.formDesc = ""
	m.formKind = formAdd
	return m.openForm(fmt.Sprintf("New task in %s", columns[m.colCursor].Label()))
}

func (m Model) startEditTask() (tea.Model, tea.Cmd) {
	t := m.currentTask()
	if t == nil {
		return m, nil
	}
	*m.formTitle = t.Title
	*m.formDesc = t.Description
	m.formKind = formEdit
	m.editingID = t.ID
	return m.openForm("Edit task")
}

func (m Model) openForm(title string) (tea.Model, tea.Cmd) {
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title(title).Placeholder(model.DefaultTaskTitle).Value(m.formTitle),
			huh.NewText().Title("Description").Value(m.formDesc),
		),
	).WithShowHelp(true).WithShowErrors(true)
	m.mode = ModeForm
	return m, m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, keys.Escape) {
		m.mode = ModeNormal
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		m.mode = ModeNormal
		m.form = nil
		return m, nil
	case huh.StateCompleted:
		m.mode = ModeNormal
		m.form = nil
		return m.submitForm()
	}
	return m, cmd
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	title, desc := *m.formTitle, *m.formDesc

	if m.formKind == formDelete {
		if !*m.formConfirm {
			m.setMessage("Delete cancelled")
			return m, nil
		}
		return m.removeTask(m.editingID)
	}

	if m.formKind == formEdit {
		change, err := m.board.EditTask(m.editingID, title, desc)
		if err != nil {
			m.setError(err.Error())
			return m, nil
		}
		m.refresh()
		if change.NoOp() {
			return m, nil
		}
		return m, persist(change)
	}

	p := m.currentProject()
	if p == nil {
		return m, nil
	}
	store, projectID := m.store, p.ID
	in := model.TaskInput{Title: title, Description: desc, Status: columns[m.colCursor]}
	return m, func() tea.Msg {
		t, err := store.CreateTask(context.Background(), projectID, in)
		return createdMsg{task: t, err: err}
	}
}
