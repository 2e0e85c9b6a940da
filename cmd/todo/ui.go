package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"todo-board/internal/client"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	mutedStyle    = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Bold(true)
	doneStyle     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)

	boxChecked   = "☑"
	boxUnchecked = "☐"
)

// refreshedMsg signals that a store operation finished and the snapshot
// should be re-read.
type refreshedMsg struct{}

type model struct {
	store *client.Store
	state client.State

	cursor    int
	adding    bool
	submitted bool
	titleIn   textinput.Model
	descIn    textinput.Model
	spin      spinner.Model
}

func newModel(store *client.Store) model {
	titleIn := textinput.New()
	titleIn.Prompt = "> "
	titleIn.Placeholder = "What needs to be done?"
	titleIn.CharLimit = 500

	descIn := textinput.New()
	descIn.Prompt = "> "
	descIn.Placeholder = "Add more details... (optional)"
	descIn.CharLimit = 1000

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return model{
		store:   store,
		state:   store.State(),
		titleIn: titleIn,
		descIn:  descIn,
		spin:    sp,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.storeCmd(func(ctx context.Context) {
		_ = m.store.Refresh(ctx)
	}))
}

// storeCmd runs a store operation on its own goroutine; the store's mutex
// keeps the state machine consistent with the UI loop.
func (m model) storeCmd(op func(ctx context.Context)) tea.Cmd {
	return func() tea.Msg {
		op(context.Background())
		return refreshedMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshedMsg:
		m.state = m.store.State()
		if m.cursor >= len(m.state.Todos) {
			m.cursor = len(m.state.Todos) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		// leave the add form once a submitted create succeeded
		if m.adding && m.submitted && !m.state.Creating && m.state.CreateError == "" {
			m.adding = false
			m.submitted = false
			m.titleIn.SetValue("")
			m.descIn.SetValue("")
			m.titleIn.Blur()
			m.descIn.Blur()
		}
		if m.submitted && !m.state.Creating {
			m.submitted = false
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	if m.adding {
		return m.updateAdding(msg)
	}
	return m.updateList(msg)
}

func (m model) updateAdding(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			m.adding = false
			m.titleIn.Blur()
			m.descIn.Blur()
			return m, nil
		case "tab", "shift+tab":
			if m.titleIn.Focused() {
				m.titleIn.Blur()
				m.descIn.Focus()
			} else {
				m.descIn.Blur()
				m.titleIn.Focus()
			}
			return m, nil
		case "enter":
			// submission is disabled while a create is in flight
			if m.state.Creating {
				return m, nil
			}
			m.store.SetDraft(m.titleIn.Value(), m.descIn.Value())
			m.submitted = true
			return m, m.storeCmd(func(ctx context.Context) {
				_ = m.store.CreateFromDraft(ctx)
			})
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	if !m.state.Creating {
		m.titleIn, cmd = m.titleIn.Update(msg)
		cmds = append(cmds, cmd)
		m.descIn, cmd = m.descIn.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.state.Todos)-1 {
			m.cursor++
		}
	case "r":
		return m, m.storeCmd(func(ctx context.Context) {
			_ = m.store.Refresh(ctx)
		})
	case "a":
		m.adding = true
		m.titleIn.Focus()
		return m, nil
	case " ", "enter":
		if todo, pending := m.selected(); todo != nil && !pending {
			id := todo.ID
			return m, m.storeCmd(func(ctx context.Context) {
				_ = m.store.Toggle(ctx, id)
			})
		}
	case "d":
		if todo, pending := m.selected(); todo != nil && !pending {
			id := todo.ID
			return m, m.storeCmd(func(ctx context.Context) {
				_ = m.store.Delete(ctx, id)
			})
		}
	case "x":
		m.dismiss()
		m.state = m.store.State()
	}
	return m, nil
}

// selected returns the todo under the cursor and whether that row has an
// operation in flight.
func (m model) selected() (*client.Todo, bool) {
	if m.cursor < 0 || m.cursor >= len(m.state.Todos) {
		return nil, false
	}
	todo := m.state.Todos[m.cursor]
	pending := todo.ID == m.state.PendingDeleteID || todo.ID == m.state.PendingUpdateID
	return &todo, pending
}

// dismiss acknowledges the error nearest to the cursor: the row's own error
// first, then the shared banners.
func (m *model) dismiss() {
	if todo, _ := m.selected(); todo != nil {
		if _, ok := m.state.UpdateErrors[todo.ID]; ok {
			m.store.DismissUpdateError(todo.ID)
			return
		}
	}
	if m.state.CreateError != "" {
		m.store.DismissCreateError()
		return
	}
	m.store.DismissDeleteError()
}

func (m model) View() string {
	var b strings.Builder

	done := 0
	for _, todo := range m.state.Todos {
		if todo.Completed {
			done++
		}
	}
	b.WriteString(fmt.Sprintf("%s  %s %d / %d\n\n",
		titleStyle.Render("Todos"),
		successStyle.Render(boxChecked), done, len(m.state.Todos)))

	if m.state.Phase == client.ListLoading {
		b.WriteString(mutedStyle.Render(m.spin.View()+" loading...") + "\n")
	}
	if m.state.ListError != "" {
		b.WriteString(errorStyle.Render("✖ "+m.state.ListError) + "\n")
	}
	if m.state.CreateError != "" {
		b.WriteString(errorStyle.Render("✖ "+m.state.CreateError) + helpStyle.Render("  (x to dismiss)") + "\n")
	}
	if m.state.DeleteError != "" {
		b.WriteString(errorStyle.Render("✖ "+m.state.DeleteError) + helpStyle.Render("  (x to dismiss)") + "\n")
	}
	b.WriteString("\n")

	if len(m.state.Todos) == 0 && m.state.Phase == client.ListReady {
		b.WriteString(mutedStyle.Render("Nothing to do. Press a to add a todo.") + "\n")
	}

	for i, todo := range m.state.Todos {
		prefix := "  "
		if i == m.cursor && !m.adding {
			prefix = selectedStyle.Render("> ")
		}

		box := mutedStyle.Render(boxUnchecked)
		text := todo.Title
		if todo.Completed {
			box = successStyle.Render(boxChecked)
			text = doneStyle.Render(text)
		}

		suffix := ""
		if todo.ID == m.state.PendingDeleteID || todo.ID == m.state.PendingUpdateID {
			suffix = " " + m.spin.View()
		}

		b.WriteString(fmt.Sprintf("%s%s %s%s\n", prefix, box, text, suffix))
		if todo.Description != nil && *todo.Description != "" {
			b.WriteString("      " + mutedStyle.Render(*todo.Description) + "\n")
		}
		if msg, ok := m.state.UpdateErrors[todo.ID]; ok {
			b.WriteString("      " + errorStyle.Render("✖ "+msg) + helpStyle.Render("  (x to dismiss)") + "\n")
		}
	}

	if m.adding {
		b.WriteString("\n" + titleStyle.Render("Add new todo") + "\n")
		b.WriteString(m.titleIn.View() + "\n")
		b.WriteString(m.descIn.View() + "\n")
		if m.state.Creating {
			b.WriteString(mutedStyle.Render(m.spin.View()+" saving...") + "\n")
		}
		b.WriteString(helpStyle.Render("enter save · tab switch field · esc cancel") + "\n")
	} else {
		b.WriteString("\n" + helpStyle.Render("a add · space toggle · d delete · r refresh · x dismiss · q quit") + "\n")
	}

	return b.String()
}
