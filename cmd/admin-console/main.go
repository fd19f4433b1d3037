// Command admin-console is a terminal client for managing property listings.
package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Bold(true).
			PaddingLeft(2)

	normalStyle = lipgloss.NewStyle().
			PaddingLeft(4)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

type step int

const (
	stepEnteringEmail step = iota
	stepEnteringPassword
	stepLoggingIn
	stepLoading
	stepBrowsing
	stepConfirmDelete
	stepDeleting
)

type model struct {
	api          *apiClient
	step         step
	email        string
	password     string
	adminName    string
	currentInput string
	properties   []property
	cursor       int
	message      string
	quitting     bool
}

type loginSuccessMsg struct{ name string }
type propertiesMsg []property
type deletedMsg struct{ title string }
type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

func initialModel(api *apiClient) model {
	return model{api: api, step: stepEnteringEmail}
}

func (m model) Init() tea.Cmd {
	return nil
}

func loginAdmin(api *apiClient, email, password string) tea.Cmd {
	return func() tea.Msg {
		name, err := api.login(email, password)
		if err != nil {
			return errMsg{err}
		}
		return loginSuccessMsg{name: name}
	}
}

func fetchProperties(api *apiClient) tea.Cmd {
	return func() tea.Msg {
		list, err := api.listProperties()
		if err != nil {
			return errMsg{err}
		}
		return propertiesMsg(list)
	}
}

func deleteProperty(api *apiClient, p property) tea.Cmd {
	return func() tea.Msg {
		if err := api.deleteProperty(p.ID); err != nil {
			return errMsg{err}
		}
		return deletedMsg{title: p.Title}
	}
}

func (m model) typing() bool {
	return m.step == stepEnteringEmail || m.step == stepEnteringPassword
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" || (key == "q" && !m.typing()) {
			m.quitting = true
			return m, tea.Quit
		}

		if m.typing() {
			switch msg.Type {
			case tea.KeyBackspace:
				if len(m.currentInput) > 0 {
					m.currentInput = m.currentInput[:len(m.currentInput)-1]
				}
			case tea.KeyEnter:
				return m.submitInput()
			case tea.KeyRunes, tea.KeySpace:
				m.currentInput += string(msg.Runes)
			}
			return m, nil
		}

		switch m.step {
		case stepBrowsing:
			switch key {
			case "up", "k":
				if m.cursor > 0 {
					m.cursor--
				}
			case "down", "j":
				if m.cursor < len(m.properties)-1 {
					m.cursor++
				}
			case "r":
				m.step = stepLoading
				m.message = ""
				return m, fetchProperties(m.api)
			case "d", "delete":
				if len(m.properties) > 0 {
					m.step = stepConfirmDelete
				}
			}
		case stepConfirmDelete:
			switch key {
			case "y":
				m.step = stepDeleting
				return m, deleteProperty(m.api, m.properties[m.cursor])
			case "n", "esc":
				m.step = stepBrowsing
			}
		}

	case loginSuccessMsg:
		m.adminName = msg.name
		m.password = ""
		m.step = stepLoading
		m.message = successStyle.Render("✓ Logged in as " + m.email)
		return m, fetchProperties(m.api)

	case propertiesMsg:
		m.properties = []property(msg)
		if m.cursor >= len(m.properties) {
			m.cursor = max(len(m.properties)-1, 0)
		}
		m.step = stepBrowsing

	case deletedMsg:
		m.message = successStyle.Render("✓ Deactivated " + msg.title)
		m.step = stepLoading
		return m, fetchProperties(m.api)

	case errMsg:
		m.message = errorStyle.Render("✗ " + msg.err.Error())
		if m.step == stepLoggingIn {
			m.step = stepEnteringEmail
			m.email, m.password = "", ""
		} else {
			m.step = stepBrowsing
		}
	}

	return m, nil
}

func (m model) submitInput() (tea.Model, tea.Cmd) {
	if m.currentInput == "" {
		return m, nil
	}
	switch m.step {
	case stepEnteringEmail:
		m.email = m.currentInput
		m.currentInput = ""
		m.step = stepEnteringPassword
	case stepEnteringPassword:
		m.password = m.currentInput
		m.currentInput = ""
		m.step = stepLoggingIn
		m.message = "Logging in..."
		return m, loginAdmin(m.api, m.email, m.password)
	}
	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("AIRBNBBM admin console") + "\n")

	switch m.step {
	case stepEnteringEmail:
		if m.message != "" {
			s.WriteString(m.message + "\n\n")
		}
		s.WriteString(promptStyle.Render("Admin email:") + "\n")
		s.WriteString(inputStyle.Render("> " + m.currentInput))
		s.WriteString("\n\nPress Enter\n")

	case stepEnteringPassword:
		s.WriteString(promptStyle.Render("Password:") + "\n")
		s.WriteString(inputStyle.Render("> " + strings.Repeat("•", len(m.currentInput))))
		s.WriteString("\n\nPress Enter\n")

	case stepLoggingIn, stepDeleting:
		s.WriteString(m.message + "\n")

	case stepLoading:
		if m.message != "" {
			s.WriteString(m.message + "\n\n")
		}
		s.WriteString("Loading properties...\n")

	case stepBrowsing, stepConfirmDelete:
		if m.message != "" {
			s.WriteString(m.message + "\n\n")
		}
		if len(m.properties) == 0 {
			s.WriteString(dimStyle.Render("No active properties.") + "\n")
		}
		for i, p := range m.properties {
			cursor := " "
			style := normalStyle
			if m.cursor == i {
				cursor = ">"
				style = selectedStyle
			}
			line := fmt.Sprintf("%s · %s · $%s/night · %d guests", p.Title, p.Location, p.PricePerNight, p.MaxGuests)
			s.WriteString(fmt.Sprintf("%s %s\n", cursor, style.Render(line)))
		}
		if m.step == stepConfirmDelete {
			s.WriteString("\n" + promptStyle.Render(fmt.Sprintf("Deactivate %q? (y/n)", m.properties[m.cursor].Title)) + "\n")
		} else {
			s.WriteString(dimStyle.Render("\n↑/↓ move · d deactivate · r refresh · q quit") + "\n")
		}
	}

	return s.String()
}

func main() {
	baseURL := os.Getenv("RENTAL_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:5000"
	}

	p := tea.NewProgram(initialModel(newAPIClient(baseURL)))
	if _, err := p.Run(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
