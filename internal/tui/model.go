package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"aigist/internal/domain"
)

// AnswerPort is the console-facing subset of the engine.
type AnswerPort interface {
	AnswerQuestion(ctx context.Context, question string) (*domain.Answer, error)
	Stats(ctx context.Context) domain.StoreStats
}

const answerTimeout = 90 * time.Second

type answerMsg struct {
	question string
	answer   *domain.Answer
	err      error
}

// Model is the Bubble Tea model for the Q&A console.
type Model struct {
	engine   AnswerPort
	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model
	status   string
	waiting  bool
	ready    bool
	lastQ    string
}

// New creates a new console model instance.
func New(engine AnswerPort) Model {
	ti := textinput.New()
	ti.Prompt = "? "
	ti.Placeholder = "Ask a question about your documents"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	stats := engine.Stats(context.Background())
	status := fmt.Sprintf("%d documents, %d passages indexed. Type a question and press Enter.",
		stats.TotalDocuments, stats.TotalPassages)
	return Model{engine: engine, input: ti, viewport: vp, spin: sp, status: status}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ah := answerBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header + status + question box + spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-ah)
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" && !m.waiting {
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				m.waiting = true
				m.lastQ = q
				m.status = "Thinking..."
				return m, tea.Batch(m.spin.Tick, ask(m.engine, q))
			}
		}
	case answerMsg:
		m.waiting = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.viewport.SetContent("")
			return m, nil
		}
		m.status = fmt.Sprintf("Answered %q from %d sources", msg.question, len(msg.answer.Sources))
		m.viewport.SetContent(renderAnswer(msg.answer))
		m.viewport.GotoTop()
		m.input.SetValue("")
		return m, nil
	case spinner.TickMsg:
		if m.waiting {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the console layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("AIGist Console")
	answer := answerBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := m.status
	if m.waiting {
		status = m.spin.View() + " " + status
	}
	status = statusStyle.Render(status)
	return header + "\n" + answer + "\n" + input + "\n" + status
}

func ask(engine AnswerPort, question string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), answerTimeout)
		defer cancel()
		ans, err := engine.AnswerQuestion(ctx, question)
		return answerMsg{question: question, answer: ans, err: err}
	}
}

func renderAnswer(ans *domain.Answer) string {
	var b strings.Builder
	b.WriteString(ans.Text)
	if len(ans.Sources) > 0 {
		b.WriteString("\n\n")
		b.WriteString(sourceHeaderStyle.Render("Sources"))
		for i, src := range ans.Sources {
			b.WriteString(fmt.Sprintf("\n%d. %s  (%.0f%%)\n", i+1,
				sourceTitleStyle.Render(src.DocumentTitle), src.Similarity*100))
			b.WriteString(previewStyle.Render("   " + src.TextPreview))
		}
	}
	return b.String()
}

var (
	answerBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	sourceHeaderStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	sourceTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	previewStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
