package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"scisearch/internal/controller"
	"scisearch/internal/domain"
	"scisearch/internal/render"
)

type toggleID int

const (
	toggleSummarization toggleID = iota
	toggleReasoning
	toggleArxiv
	togglePubchem
	toggleCount
)

var toggleLabels = [toggleCount]string{"Summarize", "Reasoning", "arXiv", "PubChem"}

// focusInput is the query field; toggles follow it in tab order.
const focusInput = -1

type searchDoneMsg struct {
	resp *domain.SearchResponse
	err  error
}

// Model is the Bubble Tea model for the search form and its results.
type Model struct {
	cancel    context.CancelFunc
	ctrl      *controller.Controller
	scr       *screen
	input     textinput.Model
	spinner   spinner.Model
	viewport  viewport.Model
	toggles   [toggleCount]bool
	focus     int
	ready     bool
	width     int
	lastQuery string
}

// New creates a new TUI model. initial seeds the toggles (its query, if any,
// prefills the input).
func New(searcher domain.Searcher, endpoint string, initial controller.Form, logger *zap.Logger) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Enter a research question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	ti.SetValue(initial.Query)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	scr := &screen{triggerEnabled: true, triggerLabel: controller.IdleLabel}
	m := Model{
		scr:      scr,
		ctrl:     controller.New(searcher, scr, endpoint, logger),
		input:    ti,
		spinner:  sp,
		viewport: viewport.New(0, 0),
		focus:    focusInput,
	}
	m.toggles[toggleSummarization] = initial.Summarization
	m.toggles[toggleReasoning] = initial.Reasoning
	m.toggles[toggleArxiv] = initial.Arxiv
	m.toggles[togglePubchem] = initial.Pubchem
	return m
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) form() controller.Form {
	return controller.Form{
		Query:         m.input.Value(),
		Summarization: m.toggles[toggleSummarization],
		Reasoning:     m.toggles[toggleReasoning],
		Arxiv:         m.toggles[toggleArxiv],
		Pubchem:       m.toggles[togglePubchem],
	}
}

// Update handles key, window and search events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		rw, rh := resultBoxStyle.GetFrameSize()
		qw, qh := queryBoxStyle.GetFrameSize()
		// header, endpoint, toggles, button, status, query line
		reserved := 6 + qh
		m.viewport.Width = max(20, msg.Width-rw)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		// the input draws its prompt and one cursor cell beyond Width
		m.input.Width = max(10, msg.Width-qw-lipgloss.Width(m.input.Prompt)-1)
		m.refresh()
		return m, nil
	case searchDoneMsg:
		m.stopSearch()
		_, _ = m.ctrl.Finish(msg.resp, msg.err)
		m.viewport.GotoTop()
		m.refresh()
		return m, nil
	case spinner.TickMsg:
		if !m.scr.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			m.stopSearch()
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			return m.submit()
		case "tab":
			return m, m.moveFocus(1)
		case "shift+tab":
			return m, m.moveFocus(-1)
		case " ":
			if m.focus != focusInput {
				m.toggles[m.focus] = !m.toggles[m.focus]
				return m, nil
			}
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		case "pgup":
			m.viewport.ViewUp()
			return m, nil
		case "pgdown":
			m.viewport.ViewDown()
			return m, nil
		}
	}
	if m.focus != focusInput {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit() (tea.Model, tea.Cmd) {
	req, err := m.ctrl.Begin(m.form())
	if err != nil {
		// validation errors are already on screen; overlapping submits are ignored
		m.refresh()
		return *m, nil
	}
	m.lastQuery = req.Query
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	ctrl := m.ctrl
	search := func() tea.Msg {
		resp, err := ctrl.Execute(ctx, req)
		return searchDoneMsg{resp: resp, err: err}
	}
	return *m, tea.Batch(search, m.spinner.Tick)
}

// stopSearch cancels the outstanding request, if any.
func (m *Model) stopSearch() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	// positions: focusInput, then each toggle
	n := int(toggleCount) + 1
	pos := (m.focus + 1 + delta + n) % n
	m.focus = pos - 1
	if m.focus == focusInput {
		return m.input.Focus()
	}
	m.input.Blur()
	return nil
}

func (m *Model) refresh() {
	if m.scr.resultsVisible {
		m.viewport.SetContent(RenderResults(m.scr.results, m.lastQuery, m.viewport.Width))
	} else {
		m.viewport.SetContent("")
	}
}

// View renders the form, status line and results.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	var b strings.Builder
	line := lipgloss.NewStyle().MaxWidth(m.width)
	b.WriteString(headerStyle.Render("Scientific Literature Search"))
	b.WriteString("\n")
	b.WriteString(line.Render(mutedStyle.Render("API endpoint: " + m.scr.endpoint)))
	b.WriteString("\n")
	b.WriteString(queryBoxStyle.Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(line.Render(m.renderToggles()))
	b.WriteString("\n")
	b.WriteString(m.renderTrigger())
	b.WriteString("\n")
	switch {
	case m.scr.loading:
		b.WriteString(m.spinner.View() + " " + statusStyle.Render(m.scr.step))
	case m.scr.errorVisible:
		b.WriteString(errorStyle.Width(m.width).Render(m.scr.errorMsg))
	default:
		b.WriteString(line.Render(mutedStyle.Render(helpText)))
	}
	if m.scr.resultsVisible {
		b.WriteString("\n")
		b.WriteString(resultBoxStyle.Render(m.viewport.View()))
	}
	return b.String()
}

func (m Model) renderToggles() string {
	parts := make([]string, 0, toggleCount+1)
	for i := toggleID(0); i < toggleCount; i++ {
		if i == toggleArxiv {
			parts = append(parts, mutedStyle.Render("Sources:"))
		}
		box := "[ ]"
		if m.toggles[i] {
			box = "[x]"
		}
		label := box + " " + toggleLabels[i]
		if int(i) == m.focus {
			label = focusStyle.Render(label)
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderTrigger() string {
	label := "[ " + m.scr.triggerLabel + " ]"
	if !m.scr.triggerEnabled {
		return m.spinner.View() + " " + disabledStyle.Render(label)
	}
	return buttonStyle.Render(label)
}

const helpText = "enter search • tab next • space toggle • ↑/↓ pgup/pgdn scroll • ctrl+c quit"

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	headerStyle    = lipgloss.NewStyle().Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	focusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	buttonStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	disabledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	spinnerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
)

// screen is the controller-facing view state. It is only touched from
// Update, so it needs no locking.
type screen struct {
	endpoint       string
	resultsVisible bool
	results        render.Results
	errorVisible   bool
	errorMsg       string
	loading        bool
	triggerEnabled bool
	triggerLabel   string
	step           string
}

func (s *screen) ShowEndpoint(url string) { s.endpoint = url }
func (s *screen) HideResults()            { s.resultsVisible = false }
func (s *screen) HideError()              { s.errorVisible = false }
func (s *screen) SetLoading(loading bool) { s.loading = loading }
func (s *screen) SetStep(label string)    { s.step = label }

func (s *screen) ShowError(msg string) {
	s.errorVisible = true
	s.errorMsg = msg
}

func (s *screen) SetTrigger(enabled bool, label string) {
	s.triggerEnabled = enabled
	s.triggerLabel = label
}

func (s *screen) ShowResults(r render.Results) {
	s.resultsVisible = true
	s.results = r
}
