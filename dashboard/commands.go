package dashboard

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Kishan-kumar001/mern-task-manager/client"
	"github.com/Kishan-kumar001/mern-task-manager/models"
	"github.com/Kishan-kumar001/mern-task-manager/session"
)

type (
	tasksLoadedMsg struct{ tasks []models.Task }
	taskCreatedMsg struct{ task models.Task }
	taskUpdatedMsg struct {
		id   string
		task models.Task
	}
	taskDeletedMsg struct{ id string }
	loggedInMsg    struct{}
	registeredMsg  struct{}
	// loggedOutMsg reports a completed local logout; err is the server
	// call's failure, if any.
	loggedOutMsg struct{ err error }
	clearToastMsg  struct{ seq int }

	// errMsg carries a failed call; fallback is shown when the server
	// sent no message of its own.
	errMsg struct {
		err      error
		fallback string
	}
)

func (m Model) call(fn func(ctx context.Context) tea.Msg) tea.Cmd {
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return fn(ctx)
	}
}

func (m Model) fetchTasks() tea.Cmd {
	api := m.api
	return m.call(func(ctx context.Context) tea.Msg {
		tasks, err := api.FetchTasks(ctx)
		if err != nil {
			return errMsg{err: err, fallback: "Failed to load tasks"}
		}
		return tasksLoadedMsg{tasks: tasks}
	})
}

func (m Model) createTask(in models.TaskInput) tea.Cmd {
	api := m.api
	return m.call(func(ctx context.Context) tea.Msg {
		task, err := api.CreateTask(ctx, in)
		if err != nil {
			return errMsg{err: err, fallback: "Failed to add task"}
		}
		return taskCreatedMsg{task: *task}
	})
}

func (m Model) updateTask(id string, in models.TaskInput) tea.Cmd {
	api := m.api
	return m.call(func(ctx context.Context) tea.Msg {
		task, err := api.UpdateTask(ctx, id, in)
		if err != nil {
			return errMsg{err: err, fallback: "Failed to update task"}
		}
		return taskUpdatedMsg{id: id, task: *task}
	})
}

func (m Model) deleteTask(id string) tea.Cmd {
	api := m.api
	return m.call(func(ctx context.Context) tea.Msg {
		if err := api.DeleteTask(ctx, id); err != nil {
			return errMsg{err: err, fallback: "Failed to delete task"}
		}
		return taskDeletedMsg{id: id}
	})
}

func (m Model) login(creds models.Credentials) tea.Cmd {
	api, sess := m.api, m.session
	return m.call(func(ctx context.Context) tea.Msg {
		resp, err := api.Login(ctx, creds)
		if err != nil {
			return errMsg{err: err, fallback: "Login failed"}
		}
		if err := sess.Set(session.TokenKey, resp.Token); err != nil {
			return errMsg{err: err, fallback: "Failed to save session"}
		}
		return loggedInMsg{}
	})
}

func (m Model) register(creds models.Credentials) tea.Cmd {
	api := m.api
	return m.call(func(ctx context.Context) tea.Msg {
		if err := api.Register(ctx, creds); err != nil {
			return errMsg{err: err, fallback: "Registration failed"}
		}
		return registeredMsg{}
	})
}

// logout asks the server to revoke the token and then forgets it
// locally. The local step happens even when the server call fails.
func (m Model) logout() tea.Cmd {
	api, sess := m.api, m.session
	return m.call(func(ctx context.Context) tea.Msg {
		serverErr := api.Logout(ctx)
		if client.IsUnauthorized(serverErr) {
			serverErr = nil
		}
		if err := sess.Remove(session.TokenKey); err != nil {
			return errMsg{err: err, fallback: "Failed to log out"}
		}
		return loggedOutMsg{err: serverErr}
	})
}
