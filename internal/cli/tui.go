package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mesh-intelligence/orchard/internal/view"
	"github.com/mesh-intelligence/orchard/pkg/client"
	"github.com/mesh-intelligence/orchard/pkg/types"
)

const chatHelp = "Enter: send  /image <path>: attach  /detach: drop image  Esc: quit"

var (
	userRoleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("28")).
			Padding(0, 1)

	assistantRoleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("255")).
				Background(lipgloss.Color("208")).
				Padding(0, 1)

	systemRoleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(view.ColorRed))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)
)

// replyMsg reports the outcome of a send.
type replyMsg struct{ err error }

type chatModel struct {
	ctx  context.Context
	conv chatSession

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	ready    bool

	waiting bool
	pending string
	image   *client.File
	status  string
	err     string
	expired bool
}

func newChatModel(ctx context.Context, conv chatSession) chatModel {
	in := textinput.New()
	in.Placeholder = "Ask about your orchard..."
	in.CharLimit = 2000
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return chatModel{ctx: ctx, conv: conv, input: in, spinner: sp, viewport: viewport.New(80, 20)}
}

func runChatTUI(ctx context.Context, conv chatSession, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(newChatModel(ctx, conv),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	final, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if m, ok := final.(chatModel); ok && m.expired {
		return client.ErrAuthExpired
	}
	return nil
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) send(text string, image *client.File) tea.Cmd {
	return func() tea.Msg {
		_, err := m.conv.Send(m.ctx, text, image)
		return replyMsg{err: err}
	}
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-6, 3)
		m.input.Width = max(msg.Width-4, 10)
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}

	case replyMsg:
		m.waiting = false
		m.pending = ""
		if msg.err != nil {
			if errors.Is(msg.err, client.ErrAuthExpired) {
				m.expired = true
				return m, tea.Quit
			}
			m.err = client.Message(msg.err, view.MsgChatFailed)
		} else {
			m.image = nil
			m.status = ""
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit handles Enter: slash commands, or sending the typed message with
// any attached image. The image stays attached until a reply arrives.
func (m chatModel) submit() (tea.Model, tea.Cmd) {
	if m.waiting {
		return m, nil
	}
	text := strings.TrimSpace(m.input.Value())

	switch {
	case text == "/quit":
		return m, tea.Quit
	case text == "/detach":
		m.image = nil
		m.status = ""
		m.input.Reset()
		return m, nil
	case strings.HasPrefix(text, "/image "):
		f, err := client.ReadFile(strings.TrimSpace(strings.TrimPrefix(text, "/image ")))
		if err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.image = &f
		m.status = "Attached " + f.Name
		m.err = ""
		m.input.Reset()
		return m, nil
	}

	if text == "" && m.image == nil {
		return m, nil
	}

	m.err = ""
	m.waiting = true
	m.pending = text
	m.input.Reset()
	m.refresh()
	return m, tea.Batch(m.send(text, m.image), m.spinner.Tick)
}

func (m *chatModel) refresh() {
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

func (m chatModel) renderHistory() string {
	msgs := m.conv.Messages()
	if len(msgs) == 0 && m.pending == "" {
		return dimStyle.Render("Ask me anything about your orchard health, disease detection, or management recommendations.")
	}

	var b strings.Builder
	for _, msg := range msgs {
		b.WriteString(renderChatMessage(msg))
	}
	if m.waiting && !lastIsUser(msgs, m.pending) {
		b.WriteString(renderChatMessage(types.ChatMessage{Role: types.RoleUser, Content: m.pending}))
	}
	return b.String()
}

func lastIsUser(msgs []types.ChatMessage, content string) bool {
	if len(msgs) == 0 {
		return false
	}
	last := msgs[len(msgs)-1]
	return last.Role == types.RoleUser && last.Content == content
}

func renderChatMessage(msg types.ChatMessage) string {
	switch msg.Role {
	case types.RoleUser:
		content := msg.Content
		if content == "" {
			content = dimStyle.Render("(image)")
		}
		return userRoleStyle.Render("You") + " " + content + "\n\n"
	case types.RoleAssistant:
		return assistantRoleStyle.Render("Assistant") + "\n" + renderMarkdown(msg.Content) + "\n"
	default:
		return systemRoleStyle.Render(msg.Content) + "\n\n"
	}
}

func (m chatModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	title := "Orchard Assistant"
	if id := m.conv.OrchardID(); id != 0 {
		title += fmt.Sprintf(" - orchard %d", id)
	}

	var status string
	switch {
	case m.waiting:
		status = m.spinner.View() + " Thinking..."
	case m.err != "":
		status = errorStyle.Render(m.err)
	case m.status != "":
		status = m.status
	}

	return strings.Join([]string{
		titleStyle.Render(title),
		m.viewport.View(),
		statusBarStyle.Render(status),
		m.input.View(),
		dimStyle.Render(chatHelp),
	}, "\n")
}
