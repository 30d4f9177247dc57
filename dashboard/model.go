// Package dashboard is the interactive terminal client: a login screen
// and a task list with an add form and a modal edit overlay.
package dashboard

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Kishan-kumar001/mern-task-manager/client"
	"github.com/Kishan-kumar001/mern-task-manager/models"
	"github.com/Kishan-kumar001/mern-task-manager/session"
)

// API is the subset of *client.Client the dashboard calls.
type API interface {
	Register(ctx context.Context, creds models.Credentials) error
	Login(ctx context.Context, creds models.Credentials) (*client.AuthResponse, error)
	Logout(ctx context.Context) error
	FetchTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, in models.TaskInput) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, in models.TaskInput) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Session is where the bearer token is kept between runs.
type Session interface {
	Get(key string) string
	Set(key, value string) error
	Remove(key string) error
}

type screen int

const (
	screenLogin screen = iota
	screenTasks
)

type focus int

const (
	focusTitle focus = iota
	focusDescription
	focusList
)

type toast struct {
	text  string
	isErr bool
}

type Model struct {
	api      API
	session  Session
	timeout  time.Duration
	toastTTL time.Duration

	screen        screen
	width, height int

	// login screen
	username    textinput.Model
	password    textinput.Model
	loginFocus  int
	registering bool

	// task screen
	tasks       []models.Task
	cursor      int
	focus       focus
	title       textinput.Model
	description textinput.Model

	// edit overlay, bound to a scratch copy of the selected task
	editing         *models.Task
	editTitle       textinput.Model
	editDescription textinput.Model
	editFocus       int

	toast    toast
	toastSeq int
}

// New builds the dashboard. Without a stored token it starts on the
// login screen.
func New(api API, sess Session) Model {
	m := Model{
		api:             api,
		session:         sess,
		timeout:         15 * time.Second,
		toastTTL:        3 * time.Second,
		username:        newInput("Username", 30),
		password:        newInput("Password", 72),
		title:           newInput("Task Title", 200),
		description:     newInput("Task Description", 1000),
		editTitle:       newInput("Task Title", 200),
		editDescription: newInput("Task Description", 1000),
	}
	m.password.EchoMode = textinput.EchoPassword
	m.password.EchoCharacter = '•'

	if sess.Get(session.TokenKey) == "" {
		m.toLogin()
	} else {
		m.screen = screenTasks
		m.setFocus(focusTitle)
	}
	return m
}

// Run starts the dashboard on the alternate screen and blocks until the
// user quits.
func Run(api API, sess Session) error {
	_, err := tea.NewProgram(New(api, sess), tea.WithAltScreen()).Run()
	return err
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = limit
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

func (m Model) Init() tea.Cmd {
	if m.screen == screenTasks {
		return m.fetchTasks()
	}
	return nil
}

func (m *Model) toLogin() {
	m.screen = screenLogin
	m.tasks = nil
	m.cursor = 0
	m.editing = nil
	m.title.Reset()
	m.description.Reset()
	m.password.Reset()
	m.setLoginFocus(0)
}

func (m *Model) setLoginFocus(i int) {
	m.loginFocus = i
	m.username.Blur()
	m.password.Blur()
	if i == 0 {
		m.username.Focus()
	} else {
		m.password.Focus()
	}
}

func (m *Model) setFocus(f focus) {
	m.focus = f
	m.title.Blur()
	m.description.Blur()
	switch f {
	case focusTitle:
		m.title.Focus()
	case focusDescription:
		m.description.Focus()
	}
}

func (m *Model) setEditFocus(i int) {
	m.editFocus = i
	m.editTitle.Blur()
	m.editDescription.Blur()
	if i == 0 {
		m.editTitle.Focus()
	} else {
		m.editDescription.Focus()
	}
}

func (m *Model) openEditor() {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return
	}
	scratch := m.tasks[m.cursor]
	m.editing = &scratch
	m.editTitle.SetValue(scratch.Title)
	m.editTitle.CursorEnd()
	m.editDescription.SetValue(scratch.Description)
	m.editDescription.CursorEnd()
	m.setFocus(focusList)
	m.setEditFocus(0)
}

func (m *Model) closeEditor() {
	m.editing = nil
	m.editTitle.Blur()
	m.editDescription.Blur()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.tasks) {
		m.cursor = len(m.tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) notify(text string, isErr bool) tea.Cmd {
	m.toastSeq++
	m.toast = toast{text: text, isErr: isErr}
	seq := m.toastSeq
	return tea.Tick(m.toastTTL, func(time.Time) tea.Msg { return clearToastMsg{seq: seq} })
}
