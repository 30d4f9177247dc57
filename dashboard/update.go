package dashboard

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Kishan-kumar001/mern-task-manager/client"
	"github.com/Kishan-kumar001/mern-task-manager/models"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch {
		case m.screen == screenLogin:
			return m.updateLogin(msg)
		case m.editing != nil:
			return m.updateEditor(msg)
		default:
			return m.updateTasks(msg)
		}

	case clearToastMsg:
		if msg.seq == m.toastSeq {
			m.toast = toast{}
		}
		return m, nil

	case errMsg:
		cmd := m.notify(client.Message(msg.err, msg.fallback), true)
		if client.IsUnauthorized(msg.err) && m.screen == screenTasks {
			m.toLogin()
		}
		return m, cmd

	case tasksLoadedMsg, taskCreatedMsg, taskUpdatedMsg, taskDeletedMsg:
		if m.screen != screenTasks {
			return m, nil
		}
		return m.applyTaskMsg(msg)

	case loggedInMsg:
		m.screen = screenTasks
		m.password.Reset()
		m.setFocus(focusTitle)
		return m, tea.Batch(m.fetchTasks(), m.notify("Logged in successfully", false))

	case registeredMsg:
		m.registering = false
		m.setLoginFocus(1)
		return m, m.notify("Registered successfully, please log in", false)

	case loggedOutMsg:
		m.toLogin()
		if msg.err != nil {
			return m, m.notify("Logged out locally, server logout failed: "+client.Message(msg.err, msg.err.Error()), true)
		}
		return m, m.notify("Logged out successfully", false)
	}
	return m, nil
}

// applyTaskMsg patches the local list with a server result. Results that
// arrive after a switch to the login screen are dropped by the caller.
func (m Model) applyTaskMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tasksLoadedMsg:
		m.tasks = msg.tasks
		m.clampCursor()
		return m, nil

	case taskCreatedMsg:
		m.tasks = append(m.tasks, msg.task)
		m.title.Reset()
		m.description.Reset()
		m.setFocus(focusTitle)
		return m, m.notify("Task added successfully", false)

	case taskUpdatedMsg:
		tasks := make([]models.Task, len(m.tasks))
		for i, t := range m.tasks {
			if t.ID == msg.id {
				t = msg.task
			}
			tasks[i] = t
		}
		m.tasks = tasks
		m.closeEditor()
		return m, m.notify("Task updated successfully", false)

	case taskDeletedMsg:
		kept := make([]models.Task, 0, len(m.tasks))
		for _, t := range m.tasks {
			if t.ID != msg.id {
				kept = append(kept, t)
			}
		}
		m.tasks = kept
		m.clampCursor()
		return m, m.notify("Task deleted successfully", false)
	}
	return m, nil
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.setLoginFocus(1 - m.loginFocus)
		return m, nil
	case "ctrl+r":
		m.registering = !m.registering
		return m, nil
	case "esc":
		return m, tea.Quit
	case "enter":
		creds := models.Credentials{
			Username: strings.TrimSpace(m.username.Value()),
			Password: m.password.Value(),
		}
		if creds.Username == "" || creds.Password == "" {
			return m, m.notify("Username and password are required", true)
		}
		if m.registering {
			return m, m.register(creds)
		}
		return m, m.login(creds)
	}

	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m Model) updateTasks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		m.setFocus((m.focus + 1) % 3)
		return m, nil
	case "shift+tab":
		m.setFocus((m.focus + 2) % 3)
		return m, nil
	}

	if m.focus == focusList {
		return m.updateList(msg)
	}

	switch msg.String() {
	case "esc":
		m.setFocus(focusList)
		return m, nil
	case "enter":
		if m.title.Value() == "" {
			return m, m.notify("Title is required", true)
		}
		return m, m.createTask(models.TaskInput{
			Title:       m.title.Value(),
			Description: m.description.Value(),
		})
	}

	var cmd tea.Cmd
	if m.focus == focusTitle {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.description, cmd = m.description.Update(msg)
	}
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case "a":
		m.setFocus(focusTitle)
	case "e", "enter":
		m.openEditor()
	case "d", "delete":
		if m.cursor < len(m.tasks) {
			return m, m.deleteTask(m.tasks[m.cursor].ID)
		}
	case "L":
		return m, m.logout()
	}
	return m, nil
}

func (m Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeEditor()
		return m, nil
	case "tab", "shift+tab":
		m.setEditFocus(1 - m.editFocus)
		return m, nil
	case "enter":
		m.editing.Title = m.editTitle.Value()
		m.editing.Description = m.editDescription.Value()
		if m.editing.Title == "" {
			return m, m.notify("Title is required", true)
		}
		return m, m.updateTask(m.editing.ID, models.TaskInput{
			Title:       m.editing.Title,
			Description: m.editing.Description,
		})
	}

	var cmd tea.Cmd
	if m.editFocus == 0 {
		m.editTitle, cmd = m.editTitle.Update(msg)
	} else {
		m.editDescription, cmd = m.editDescription.Update(msg)
	}
	return m, cmd
}
