package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorAccent = lipgloss.Color("63")
	colorMuted  = lipgloss.Color("241")
	colorError  = lipgloss.Color("196")
	colorOK     = lipgloss.Color("42")

	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).MarginBottom(1)
	labelStyle    = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	inputStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(colorMuted).Padding(0, 1)
	focusedStyle  = inputStyle.BorderForeground(colorAccent)
	taskStyle     = lipgloss.NewStyle().PaddingLeft(2)
	selectedStyle = lipgloss.NewStyle().PaddingLeft(1).Border(lipgloss.ThickBorder(), false, false, false, true).BorderForeground(colorAccent)
	modalStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(1, 2).Width(56)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	okStyle       = lipgloss.NewStyle().Foreground(colorOK).Bold(true)
)

func (m Model) View() string {
	var body string
	switch {
	case m.screen == screenLogin:
		body = m.loginView()
	case m.editing != nil:
		body = m.editorView()
		if m.width > 0 && m.height > 0 {
			body = lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, body)
		}
	default:
		body = m.tasksView()
	}
	return body + "\n" + m.toastView()
}

func field(label string, view string, focused bool) string {
	style := inputStyle
	if focused {
		style = focusedStyle
	}
	return labelStyle.Render(label) + "\n" + style.Width(50).Render(view)
}

func (m Model) loginView() string {
	title := "Login"
	action := "enter: log in   ctrl+r: create an account"
	if m.registering {
		title = "Register"
		action = "enter: register   ctrl+r: back to login"
	}
	return strings.Join([]string{
		headerStyle.Render("Task Manager · " + title),
		field("Username", m.username.View(), m.loginFocus == 0),
		field("Password", m.password.View(), m.loginFocus == 1),
		"",
		mutedStyle.Render(action + "   tab: switch field   esc: quit"),
	}, "\n")
}

func (m Model) tasksView() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Task Manager"))
	b.WriteString("\n")
	b.WriteString(field("Title", m.title.View(), m.focus == focusTitle))
	b.WriteString("\n")
	b.WriteString(field("Description", m.description.View(), m.focus == focusDescription))
	b.WriteString("\n\n")

	listHeader := fmt.Sprintf("Tasks (%d)", len(m.tasks))
	if m.focus == focusList {
		listHeader = lipgloss.NewStyle().Foreground(colorAccent).Render(listHeader)
	}
	b.WriteString(labelStyle.Render(listHeader))
	b.WriteString("\n")

	if len(m.tasks) == 0 {
		b.WriteString(mutedStyle.Render("  No tasks yet."))
		b.WriteString("\n")
	}
	for i, t := range m.tasks {
		line := labelStyle.Render(t.Title)
		if t.Description != "" {
			line += "\n" + t.Description
		}
		if m.focus == focusList && i == m.cursor {
			b.WriteString(selectedStyle.Render(line))
		} else {
			b.WriteString(taskStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.focus == focusList {
		b.WriteString(mutedStyle.Render("↑/↓: select   e: edit   d: delete   a: add   L: logout   q: quit"))
	} else {
		b.WriteString(mutedStyle.Render("enter: add task   tab: next field   esc: task list"))
	}
	return b.String()
}

func (m Model) editorView() string {
	content := strings.Join([]string{
		headerStyle.Render("Edit Task"),
		field("Title", m.editTitle.View(), m.editFocus == 0),
		field("Description", m.editDescription.View(), m.editFocus == 1),
		"",
		mutedStyle.Render("enter: save changes   tab: next field   esc: close"),
	}, "\n")
	return modalStyle.Render(content)
}

func (m Model) toastView() string {
	if m.toast.text == "" {
		return ""
	}
	if m.toast.isErr {
		return errorStyle.Render("✗ " + m.toast.text)
	}
	return okStyle.Render("✓ " + m.toast.text)
}
