package ui

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/trailhead/internal/comments"
)

type formKind int

const (
	formComment formKind = iota
	formLogin
)

// form is a modal text form. Login forms carry an extra remember-me toggle
// after the text inputs.
type form struct {
	kind       formKind
	title      string
	labels     []string
	inputs     []textinput.Model
	focus      int
	remember   bool
	campsiteID int
	err        string
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Prompt = ""
	return ti
}

func (m *Model) openCommentForm(campsiteID int) {
	rating := newInput("1-5", 1)
	rating.SetValue("5")
	f := &form{
		kind:       formComment,
		title:      "Add Comment",
		labels:     []string{"Rating", "Author", "Comment"},
		inputs:     []textinput.Model{rating, newInput("Your name", 60), newInput("What was it like?", 500)},
		campsiteID: campsiteID,
	}
	f.setFocus(0)
	m.form = f
}

func (m *Model) openLoginForm() {
	password := newInput("Password", 128)
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	f := &form{
		kind:   formLogin,
		title:  "Login",
		labels: []string{"Username", "Password"},
		inputs: []textinput.Model{newInput("Username", 64), password},
	}
	if m.core != nil {
		if cred, ok := m.core.RememberedCredential(); ok {
			f.inputs[0].SetValue(cred.Username)
			f.inputs[1].SetValue(cred.Password)
			f.remember = true
		}
	}
	f.setFocus(0)
	m.form = f
}

func (f *form) fieldCount() int {
	if f.kind == formLogin {
		return len(f.inputs) + 1
	}
	return len(f.inputs)
}

func (f *form) onToggle() bool {
	return f.kind == formLogin && f.focus == len(f.inputs)
}

func (f *form) setFocus(i int) {
	n := f.fieldCount()
	f.focus = ((i % n) + n) % n
	for j := range f.inputs {
		if j == f.focus {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

func (f *form) value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.form = nil
		return m, nil
	case "tab", "down":
		f.setFocus(f.focus + 1)
		return m, nil
	case "shift+tab", "up":
		f.setFocus(f.focus - 1)
		return m, nil
	case "enter":
		if f.kind == formLogin {
			return m.submitLogin()
		}
		return m.submitComment()
	case " ":
		if f.onToggle() {
			f.remember = !f.remember
			return m, nil
		}
	}

	if f.onToggle() {
		return m, nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return m, cmd
}

func (m Model) submitComment() (tea.Model, tea.Cmd) {
	f := m.form
	rating, err := strconv.Atoi(f.value(0))
	if err != nil {
		f.err = "rating must be a number from 1 to 5"
		return m, nil
	}
	if m.core == nil {
		m.form = nil
		return m, nil
	}

	p, err := m.core.SubmitComment(m.ctx, comments.Draft{
		Rating:     rating,
		Author:     f.value(1),
		Text:       f.value(2),
		CampsiteID: f.campsiteID,
	})
	if err != nil {
		if errors.Is(err, comments.ErrInvalidDraft) {
			f.err = strings.TrimPrefix(err.Error(), comments.ErrInvalidDraft.Error()+": ")
			return m, nil
		}
		m.form = nil
		m.setFlash("Comment failed: "+err.Error(), true)
		return m, nil
	}

	m.form = nil
	m.posting = append(m.posting, p.Token)
	m.setFlash("Posting comment... (x to discard)", false)
	m.refreshSnapshot()
	return m, waitCommentCmd(m.ctx, p)
}

func (m Model) submitLogin() (tea.Model, tea.Cmd) {
	f := m.form
	username, password := f.value(0), f.inputs[1].Value()
	if username == "" || password == "" {
		f.err = "username and password are required"
		return m, nil
	}
	if m.core != nil {
		m.core.Login(f.remember, username, password)
	}
	m.form = nil
	if f.remember {
		m.setFlash("Signed in as "+username+" (remembered)", false)
	} else {
		m.setFlash("Signed in as "+username, false)
	}
	return m, nil
}
