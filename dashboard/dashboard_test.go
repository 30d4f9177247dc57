package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Kishan-kumar001/mern-task-manager/client"
	"github.com/Kishan-kumar001/mern-task-manager/models"
	"github.com/Kishan-kumar001/mern-task-manager/session"
)

type memSession struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemSession(token string) *memSession {
	s := &memSession{values: map[string]string{}}
	if token != "" {
		s.values[session.TokenKey] = token
	}
	return s
}

func (s *memSession) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

func (s *memSession) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *memSession) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// fakeAPI keeps tasks in memory and can be told to fail with a status.
type fakeAPI struct {
	tasks  []models.Task
	nextID int
	fail   int
	calls  []string

	updates []models.TaskInput
}

func (f *fakeAPI) err() error {
	if f.fail == 0 {
		return nil
	}
	return &client.APIError{StatusCode: f.fail, Message: fmt.Sprintf("status %d", f.fail)}
}

func (f *fakeAPI) Register(ctx context.Context, creds models.Credentials) error {
	f.calls = append(f.calls, "register")
	return f.err()
}

func (f *fakeAPI) Login(ctx context.Context, creds models.Credentials) (*client.AuthResponse, error) {
	f.calls = append(f.calls, "login")
	if err := f.err(); err != nil {
		return nil, err
	}
	return &client.AuthResponse{Token: "token-" + creds.Username}, nil
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	return f.err()
}

func (f *fakeAPI) FetchTasks(ctx context.Context) ([]models.Task, error) {
	f.calls = append(f.calls, "fetch")
	if err := f.err(); err != nil {
		return nil, err
	}
	return append([]models.Task(nil), f.tasks...), nil
}

func (f *fakeAPI) CreateTask(ctx context.Context, in models.TaskInput) (*models.Task, error) {
	f.calls = append(f.calls, "create")
	if err := f.err(); err != nil {
		return nil, err
	}
	f.nextID++
	t := models.Task{ID: fmt.Sprintf("t%d", f.nextID), User: "u1", Title: in.Title, Description: in.Description}
	f.tasks = append(f.tasks, t)
	return &t, nil
}

func (f *fakeAPI) UpdateTask(ctx context.Context, id string, in models.TaskInput) (*models.Task, error) {
	f.calls = append(f.calls, "update")
	f.updates = append(f.updates, in)
	if err := f.err(); err != nil {
		return nil, err
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			if in.Title != "" {
				f.tasks[i].Title = in.Title
			}
			if in.Description != "" {
				f.tasks[i].Description = in.Description
			}
			t := f.tasks[i]
			return &t, nil
		}
	}
	return nil, &client.APIError{StatusCode: http.StatusNotFound, Message: "Task not found"}
}

func (f *fakeAPI) DeleteTask(ctx context.Context, id string) error {
	f.calls = append(f.calls, "delete")
	if err := f.err(); err != nil {
		return err
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return &client.APIError{StatusCode: http.StatusNotFound, Message: "Task not found"}
}

func (f *fakeAPI) called(name string) int {
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func newTestModel(api *fakeAPI, sess *memSession) Model {
	m := New(api, sess)
	m.toastTTL = 0
	return m
}

// run executes cmd and feeds every resulting message back into m,
// skipping toast expiry so notifications stay observable.
func run(m Model, cmd tea.Cmd) Model {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, clearToastMsg, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			next, cmd := m.Update(msg)
			m = next.(Model)
			queue = append(queue, cmd)
		}
	}
	return m
}

func send(m Model, msg tea.Msg) Model {
	next, cmd := m.Update(msg)
	return run(next.(Model), cmd)
}

func key(s string) tea.Msg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(m Model, s string) Model {
	return send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func start(m Model) Model {
	return run(m, m.Init())
}

func TestStartsOnLoginWithoutToken(t *testing.T) {
	api := &fakeAPI{}
	m := start(newTestModel(api, newMemSession("")))

	if m.screen != screenLogin {
		t.Fatalf("screen = %v, want login", m.screen)
	}
	if api.called("fetch") != 0 {
		t.Error("tasks fetched without a token")
	}
	if !strings.Contains(m.View(), "Login") {
		t.Errorf("login view not rendered:\n%s", m.View())
	}
}

func TestFetchesTasksWithToken(t *testing.T) {
	api := &fakeAPI{tasks: []models.Task{{ID: "t1", Title: "Buy milk"}}}
	m := start(newTestModel(api, newMemSession("abc")))

	if m.screen != screenTasks {
		t.Fatalf("screen = %v, want tasks", m.screen)
	}
	if len(m.tasks) != 1 || m.tasks[0].Title != "Buy milk" {
		t.Errorf("tasks = %+v", m.tasks)
	}
	if !strings.Contains(m.View(), "Buy milk") {
		t.Errorf("task not rendered:\n%s", m.View())
	}
}

func TestUnauthorizedRedirectsToLogin(t *testing.T) {
	api := &fakeAPI{fail: http.StatusUnauthorized}
	m := start(newTestModel(api, newMemSession("expired")))

	if m.screen != screenLogin {
		t.Errorf("screen = %v, want login after 401", m.screen)
	}
	if !m.toast.isErr {
		t.Errorf("expected an error notification, got %+v", m.toast)
	}
}

func TestLoginStoresToken(t *testing.T) {
	api := &fakeAPI{tasks: []models.Task{{ID: "t1", Title: "Buy milk"}}}
	sess := newMemSession("")
	m := start(newTestModel(api, sess))

	m = typeText(m, "alice")
	m = send(m, key("tab"))
	m = typeText(m, "password1")
	m = send(m, key("enter"))

	if got := sess.Get(session.TokenKey); got != "token-alice" {
		t.Errorf("stored token = %q", got)
	}
	if m.screen != screenTasks {
		t.Fatalf("screen = %v, want tasks", m.screen)
	}
	if len(m.tasks) != 1 {
		t.Errorf("tasks not fetched after login: %+v", m.tasks)
	}
}

func TestLoginFailureStaysOnLogin(t *testing.T) {
	api := &fakeAPI{fail: http.StatusUnauthorized}
	m := start(newTestModel(api, newMemSession("")))
	m = typeText(m, "alice")
	m = send(m, key("tab"))
	m = typeText(m, "wrong")
	m = send(m, key("enter"))

	if m.screen != screenLogin {
		t.Errorf("screen = %v", m.screen)
	}
	if m.toast.text != "status 401" || !m.toast.isErr {
		t.Errorf("toast = %+v", m.toast)
	}
}

func TestRegister(t *testing.T) {
	api := &fakeAPI{}
	m := start(newTestModel(api, newMemSession("")))
	m = send(m, key("ctrl+r"))
	if !m.registering {
		t.Fatal("ctrl+r should switch to registration")
	}
	m = typeText(m, "alice")
	m = send(m, key("tab"))
	m = typeText(m, "password1")
	m = send(m, key("enter"))

	if api.called("register") != 1 {
		t.Errorf("register calls = %d", api.called("register"))
	}
	if m.registering || m.screen != screenLogin {
		t.Errorf("expected to be back on login, registering=%v screen=%v", m.registering, m.screen)
	}
}

func TestAddTaskPatchesList(t *testing.T) {
	api := &fakeAPI{}
	m := start(newTestModel(api, newMemSession("abc")))

	m = typeText(m, "Buy milk")
	m = send(m, key("tab"))
	m = typeText(m, "2%")
	m = send(m, key("enter"))

	if len(m.tasks) != 1 || m.tasks[0].Title != "Buy milk" || m.tasks[0].Description != "2%" {
		t.Fatalf("tasks = %+v", m.tasks)
	}
	if api.called("fetch") != 1 {
		t.Errorf("list refetched after add: %d fetches", api.called("fetch"))
	}
	if m.title.Value() != "" || m.description.Value() != "" {
		t.Error("form not cleared after add")
	}
	if m.toast.text != "Task added successfully" {
		t.Errorf("toast = %+v", m.toast)
	}
}

func TestAddTaskRequiresTitle(t *testing.T) {
	api := &fakeAPI{}
	m := start(newTestModel(api, newMemSession("abc")))
	m = send(m, key("enter"))

	if api.called("create") != 0 {
		t.Error("create sent without a title")
	}
	if m.toast.text != "Title is required" {
		t.Errorf("toast = %+v", m.toast)
	}
}

func TestAddTaskFailureShowsServerMessage(t *testing.T) {
	api := &fakeAPI{}
	m := start(newTestModel(api, newMemSession("abc")))
	api.fail = http.StatusInternalServerError
	m = typeText(m, "Buy milk")
	m = send(m, key("enter"))

	if len(m.tasks) != 0 {
		t.Errorf("failed add changed the list: %+v", m.tasks)
	}
	if m.toast.text != "status 500" || !m.toast.isErr {
		t.Errorf("toast = %+v", m.toast)
	}
	if m.screen != screenTasks {
		t.Error("non-401 failure left the task screen")
	}
}

func TestEditTask(t *testing.T) {
	api := &fakeAPI{tasks: []models.Task{
		{ID: "t1", Title: "Buy milk"},
		{ID: "t2", Title: "Walk dog", Description: "park"},
	}}
	m := start(newTestModel(api, newMemSession("abc")))

	m = send(m, key("esc"))
	m = send(m, key("down"))
	m = send(m, key("e"))
	if m.editing == nil || m.editing.ID != "t2" {
		t.Fatalf("editing = %+v", m.editing)
	}
	if m.editTitle.Value() != "Walk dog" {
		t.Errorf("edit title = %q", m.editTitle.Value())
	}

	m = send(m, key("ctrl+u"))
	m = typeText(m, "Walk the dog")
	if m.tasks[1].Title != "Walk dog" {
		t.Error("list entry changed before saving")
	}
	m = send(m, key("enter"))

	if m.editing != nil {
		t.Error("overlay still open after save")
	}
	if m.tasks[1].Title != "Walk the dog" || m.tasks[1].Description != "park" {
		t.Errorf("tasks = %+v", m.tasks)
	}
	if m.tasks[0].Title != "Buy milk" {
		t.Errorf("other task changed: %+v", m.tasks[0])
	}
	if got := api.updates[0]; got.Title != "Walk the dog" || got.Description != "park" {
		t.Errorf("sent %+v, want the scratch copy", got)
	}
	if api.called("fetch") != 1 {
		t.Errorf("list refetched after edit")
	}
}

func TestEditCancelDiscardsChanges(t *testing.T) {
	api := &fakeAPI{tasks: []models.Task{{ID: "t1", Title: "Buy milk"}}}
	m := start(newTestModel(api, newMemSession("abc")))

	m = send(m, key("esc"))
	m = send(m, key("enter"))
	m = typeText(m, " now")
	m = send(m, key("esc"))

	if m.editing != nil {
		t.Fatal("overlay still open")
	}
	if m.tasks[0].Title != "Buy milk" || api.called("update") != 0 {
		t.Errorf("cancelled edit leaked: %+v, %d updates", m.tasks[0], api.called("update"))
	}
}

func TestDeleteTask(t *testing.T) {
	api := &fakeAPI{tasks: []models.Task{{ID: "t1", Title: "a"}, {ID: "t2", Title: "b"}}}
	m := start(newTestModel(api, newMemSession("abc")))

	m = send(m, key("esc"))
	m = send(m, key("down"))
	m = send(m, key("d"))

	if len(m.tasks) != 1 || m.tasks[0].ID != "t1" {
		t.Fatalf("tasks = %+v", m.tasks)
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want clamped to 0", m.cursor)
	}
	if m.toast.text != "Task deleted successfully" {
		t.Errorf("toast = %+v", m.toast)
	}
}

func TestLogout(t *testing.T) {
	api := &fakeAPI{tasks: []models.Task{{ID: "t1", Title: "a"}}}
	sess := newMemSession("abc")
	m := start(newTestModel(api, sess))

	m = send(m, key("esc"))
	m = send(m, key("L"))

	if sess.Get(session.TokenKey) != "" {
		t.Error("token not removed")
	}
	if m.screen != screenLogin || len(m.tasks) != 0 {
		t.Errorf("screen = %v, tasks = %+v", m.screen, m.tasks)
	}
	if api.called("logout") != 1 {
		t.Errorf("server logout not called")
	}
}

func TestLogoutServerFailureIsReported(t *testing.T) {
	api := &fakeAPI{tasks: []models.Task{{ID: "t1", Title: "a"}}}
	sess := newMemSession("abc")
	m := start(newTestModel(api, sess))

	m = send(m, key("esc"))
	api.fail = http.StatusInternalServerError
	m = send(m, key("L"))

	if sess.Get(session.TokenKey) != "" {
		t.Error("token kept after a failed server logout")
	}
	if m.screen != screenLogin {
		t.Errorf("screen = %v, want login", m.screen)
	}
	if !m.toast.isErr || !strings.Contains(m.toast.text, "status 500") {
		t.Errorf("toast = %+v, want the server failure", m.toast)
	}
}

func TestLogoutWithExpiredTokenIsQuiet(t *testing.T) {
	api := &fakeAPI{}
	m := start(newTestModel(api, newMemSession("abc")))

	m = send(m, key("esc"))
	api.fail = http.StatusUnauthorized
	m = send(m, key("L"))

	if m.toast.isErr || m.toast.text != "Logged out successfully" {
		t.Errorf("toast = %+v", m.toast)
	}
}

func TestLateTaskResultsIgnoredOnLogin(t *testing.T) {
	m := newTestModel(&fakeAPI{}, newMemSession(""))
	if m.screen != screenLogin {
		t.Fatalf("screen = %v, want login", m.screen)
	}

	late := []tea.Msg{
		tasksLoadedMsg{tasks: []models.Task{{ID: "t1", Title: "a"}}},
		taskCreatedMsg{task: models.Task{ID: "t2", Title: "b"}},
	}
	for _, msg := range late {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	if len(m.tasks) != 0 {
		t.Errorf("login screen picked up tasks: %+v", m.tasks)
	}
	if m.toast.text != "" {
		t.Errorf("unexpected toast: %+v", m.toast)
	}
}

func TestToastExpires(t *testing.T) {
	m := newTestModel(&fakeAPI{}, newMemSession("abc"))
	m.notify("first", false)
	stale := m.toastSeq
	m.notify("second", false)

	next, _ := m.Update(clearToastMsg{seq: stale})
	m = next.(Model)
	if m.toast.text != "second" {
		t.Errorf("stale expiry cleared the newer toast: %+v", m.toast)
	}
	next, _ = m.Update(clearToastMsg{seq: m.toastSeq})
	m = next.(Model)
	if m.toast.text != "" {
		t.Errorf("toast not cleared: %+v", m.toast)
	}
}
