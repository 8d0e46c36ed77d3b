package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/reflow/wordwrap"

	"github.com/linguaquest/dialogue-engine/internal/session"
	"github.com/linguaquest/dialogue-engine/pkg/dialogue"
	"github.com/linguaquest/dialogue-engine/pkg/speech"
)

const PlaceHolderText = "Say something in Spanish..."

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	npcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	targetLangStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Italic(true)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")). // green
			Bold(true)

	partialStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	incorrectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")) // purple

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config    *ConsoleConfig
	client    *http.Client
	viewport  viewport.Model
	textinput textinput.Model
	ready     bool
	width     int
	height    int
	err       error
	loading   bool

	// Tree selection state
	showTreeModal bool
	trees         []string
	selectedTree  int

	sessionID  uuid.UUID
	view       session.View
	transcript []string
	statusLine string
}

type treesLoadedMsg struct {
	trees []string
	err   error
}

type sessionMsg struct {
	resp *sessionResponse
	err  error
}

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	ti := textinput.New()
	ti.Placeholder = PlaceHolderText
	ti.Focus()
	ti.Prompt = promptStyle.Render(":: ")
	ti.CharLimit = 300

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	return ConsoleUI{
		config:        cfg,
		client:        client,
		textinput:     ti,
		viewport:      vp,
		showTreeModal: true,
		loading:       true,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadTrees())
}

func (m ConsoleUI) loadTrees() tea.Cmd {
	return func() tea.Msg {
		trees, err := listTrees(m.client, m.config.APIBaseURL)
		return treesLoadedMsg{trees: trees, err: err}
	}
}

func (m ConsoleUI) openSession(treeID string) tea.Cmd {
	return func() tea.Msg {
		resp, err := openSession(m.client, m.config.APIBaseURL, treeID, treeID, m.config.ProfileID)
		return sessionMsg{resp: resp, err: err}
	}
}

func (m ConsoleUI) submit(text string) tea.Cmd {
	return func() tea.Msg {
		resp, err := submitInput(m.client, m.config.APIBaseURL, m.sessionID, text)
		return sessionMsg{resp: resp, err: err}
	}
}

func (m ConsoleUI) choose(responseID string) tea.Cmd {
	return func() tea.Msg {
		resp, err := selectChoice(m.client, m.config.APIBaseURL, m.sessionID, responseID)
		return sessionMsg{resp: resp, err: err}
	}
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 6
		m.textinput.Width = msg.Width - 8
		m.ready = true
		m.refreshViewport()

	case treesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.trees = msg.trees

	case sessionMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.sessionID = msg.resp.ID
		m.applySession(msg.resp)
		m.refreshViewport()

	case tea.KeyMsg:
		if m.showTreeModal {
			return m.updateTreeModal(msg)
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			if m.view.IsActive {
				_ = closeSession(m.client, m.config.APIBaseURL, m.sessionID)
			}
			return m, tea.Quit

		case tea.KeyCtrlY:
			if err := clipboard.WriteAll(strings.Join(m.transcript, "\n")); err != nil {
				m.statusLine = "Failed to copy transcript"
			} else {
				m.statusLine = "Transcript copied to clipboard"
			}

		case tea.KeyCtrlN:
			// Start a new conversation
			if m.view.IsActive {
				_ = closeSession(m.client, m.config.APIBaseURL, m.sessionID)
			}
			m.showTreeModal = true
			m.transcript = nil
			m.view = session.View{}

		case tea.KeyEnter:
			text := strings.TrimSpace(m.textinput.Value())
			if text == "" || m.loading || !m.view.IsActive {
				break
			}
			m.textinput.Reset()

			// A bare number picks the corresponding choice response.
			if idx, err := strconv.Atoi(text); err == nil {
				if r := m.choiceAt(idx); r != nil {
					m.transcript = append(m.transcript, "> "+r.Text)
					m.loading = true
					return m, m.choose(r.ID)
				}
			}

			m.transcript = append(m.transcript, "> "+text)
			m.loading = true
			m.refreshViewport()
			return m, m.submit(text)
		}
	}

	var tiCmd, vpCmd tea.Cmd
	m.textinput, tiCmd = m.textinput.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	cmds = append(cmds, tiCmd, vpCmd)

	return m, tea.Batch(cmds...)
}

func (m ConsoleUI) updateTreeModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyUp:
		if m.selectedTree > 0 {
			m.selectedTree--
		}
	case tea.KeyDown:
		if m.selectedTree < len(m.trees)-1 {
			m.selectedTree++
		}
	case tea.KeyEnter:
		if len(m.trees) == 0 {
			return m, nil
		}
		m.showTreeModal = false
		m.loading = true
		return m, m.openSession(m.trees[m.selectedTree])
	}
	return m, nil
}

// choiceAt returns the idx-th (1-based) response of the current node if it is
// a choice response.
func (m *ConsoleUI) choiceAt(idx int) *dialogue.Response {
	node := m.view.CurrentNode
	if node == nil || idx < 1 || idx > len(node.Responses) {
		return nil
	}
	r := &node.Responses[idx-1]
	if r.RequiresType != dialogue.InputChoice {
		return nil
	}
	return r
}

func (m *ConsoleUI) applySession(resp *sessionResponse) {
	m.view = resp.Session

	if fb := resp.Feedback; fb != nil {
		var style lipgloss.Style
		switch fb.Type {
		case speech.FeedbackSuccess:
			style = successStyle
		case speech.FeedbackPartial:
			style = partialStyle
		default:
			style = incorrectStyle
		}
		m.transcript = append(m.transcript, style.Render(fb.Message))
		if fb.Hint != "" && (m.view.ShowHint || fb.Type == speech.FeedbackPartial) {
			m.transcript = append(m.transcript, hintStyle.Render("Hint: "+fb.Hint))
		}
	}

	if node := m.view.CurrentNode; node != nil {
		m.transcript = append(m.transcript, "")
		m.transcript = append(m.transcript, npcStyle.Render(node.Text))
		if node.TextInTargetLanguage != "" {
			m.transcript = append(m.transcript, targetLangStyle.Render(node.TextInTargetLanguage))
		}
		for i := range node.Responses {
			r := &node.Responses[i]
			if r.RequiresType == dialogue.InputChoice {
				m.transcript = append(m.transcript, choiceStyle.Render(fmt.Sprintf("  %d) %s", i+1, r.Text)))
			}
		}
	}

	if !m.view.IsActive {
		m.transcript = append(m.transcript, "")
		m.transcript = append(m.transcript, separatorStyle.Render("— conversation ended, ctrl+n for a new one —"))
	}
}

func (m *ConsoleUI) refreshViewport() {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	content := strings.Join(m.transcript, "\n")
	m.viewport.SetContent(wordwrap.String(content, width-2))
	m.viewport.GotoBottom()
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showTreeModal {
		return m.treeModalView()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("LINGUAQUEST") + "\n")
	b.WriteString(m.viewport.View() + "\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", max(m.width-1, 10))) + "\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	} else if m.loading {
		b.WriteString(promptStyle.Render("...") + "\n")
	} else if m.statusLine != "" {
		b.WriteString(promptStyle.Render(m.statusLine) + "\n")
	} else {
		b.WriteString("\n")
	}

	b.WriteString(m.textinput.View() + "\n")
	b.WriteString(promptStyle.Render("enter: send • number: pick choice • ctrl+y: copy transcript • ctrl+n: new • esc: quit"))
	return b.String()
}

func (m ConsoleUI) treeModalView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("LINGUAQUEST") + "\n\n")

	if m.loading {
		b.WriteString("Loading conversations...\n")
		return b.String()
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
		return b.String()
	}

	b.WriteString("Pick a conversation:\n\n")
	for i, id := range m.trees {
		line := "  " + id
		if i == m.selectedTree {
			line = modalSelectedStyle.Render("> " + id)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + promptStyle.Render("↑/↓: select • enter: start • esc: quit"))
	return b.String()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
