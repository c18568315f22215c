// Package main provides the Locobot CLI entry point.
// This file implements the interactive chat interface using bubbletea.
package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"locobot/cmd/locobot/ui"
	"locobot/internal/prompt"
	"locobot/internal/session"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// chatModel is the main model for the interactive chat interface
type chatModel struct {
	// UI components
	textinput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	styles    ui.Styles
	renderer  *glamour.TermRenderer

	// State
	history   []chatMessage
	isLoading bool
	planMode  bool
	err       error
	width     int
	height    int
	ready     bool

	// Backend
	rt *runtime
}

type chatMessage struct {
	role    string // "user" or "assistant"
	content string
	isPlan  bool
	time    time.Time
}

// Messages for tea updates
type (
	generationDoneMsg struct {
		result      session.Result
		previewPath string
	}
	errorMsg error
)

// runInteractiveChat wires the runtime and starts the bubbletea program.
func runInteractiveChat() error {
	ctx := context.Background()

	rt, err := buildRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	m := initChat(rt)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// initChat initializes the interactive chat model
func initChat(rt *runtime) chatModel {
	styles := ui.DefaultStyles()
	if rt.cfg.Theme == "light" {
		styles = ui.NewStyles(ui.LightTheme())
	} else if rt.cfg.Theme == "dark" {
		styles = ui.NewStyles(ui.DarkTheme())
	}

	ti := textinput.New()
	ti.Placeholder = "Describe the app you want... (Enter to send, Ctrl+C to exit)"
	ti.Focus()
	ti.Prompt = "│ "
	ti.CharLimit = 4096
	ti.Width = 80
	ti.PromptStyle = styles.Prompt
	ti.TextStyle = styles.UserInput

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	vp := viewport.New(80, 20)
	vp.SetContent("")

	var renderer *glamour.TermRenderer
	if styles.Theme.IsDark {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
	} else {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithStylePath("light"),
			glamour.WithWordWrap(80),
		)
	}

	// Seed with the greeting plus the restored conversation.
	history := []chatMessage{{
		role:    "assistant",
		content: prompt.InitialGreeting,
		time:    time.Now(),
	}}
	for _, msg := range rt.sess.Messages() {
		history = append(history, chatMessage{
			role:    string(msg.Role),
			content: msg.Text,
			isPlan:  msg.IsPlan,
			time:    msg.Timestamp,
		})
	}

	return chatModel{
		textinput: ti,
		viewport:  vp,
		spinner:   sp,
		styles:    styles,
		renderer:  renderer,
		history:   history,
		rt:        rt,
	}
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
	)
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyCtrlP:
			// Toggle plan mode for subsequent submissions
			m.planMode = !m.planMode
			return m, nil

		case tea.KeyEnter:
			if !m.isLoading {
				return m.handleSubmit()
			}
		}

		if !m.isLoading {
			m.textinput, tiCmd = m.textinput.Update(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4
		footerHeight := 3
		inputHeight := 3

		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, msg.Height-headerHeight-footerHeight-inputHeight)
			m.viewport.SetContent(m.renderHistory())
			m.viewport.GotoBottom()
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = msg.Height - headerHeight - footerHeight - inputHeight
		}

		m.textinput.Width = msg.Width - 4

		if m.renderer != nil {
			m.renderer, _ = glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(msg.Width-8),
			)
		}

	case spinner.TickMsg:
		if m.isLoading {
			m.spinner, spCmd = m.spinner.Update(msg)
			return m, spCmd
		}

	case generationDoneMsg:
		m.isLoading = false
		content := msg.result.Message.Text
		if msg.previewPath != "" {
			content += fmt.Sprintf("\n\n_Preview: %s_", msg.previewPath)
		}
		m.history = append(m.history, chatMessage{
			role:    "assistant",
			content: content,
			isPlan:  msg.result.Message.IsPlan,
			time:    time.Now(),
		})
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()

	case errorMsg:
		m.isLoading = false
		m.err = msg
	}

	m.viewport, vpCmd = m.viewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

func (m chatModel) handleSubmit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textinput.Value())
	if input == "" {
		return m, nil
	}

	if strings.HasPrefix(input, "/") {
		return m.handleCommand(input)
	}

	m.history = append(m.history, chatMessage{
		role:    "user",
		content: input,
		time:    time.Now(),
	})

	m.textinput.Reset()
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
	m.isLoading = true
	m.err = nil

	return m, tea.Batch(
		m.spinner.Tick,
		m.processInput(input, m.planMode),
	)
}

// processInput runs one generation in the background and reports back as a
// tea message.
func (m chatModel) processInput(input string, plan bool) tea.Cmd {
	rt := m.rt
	return func() tea.Msg {
		res, err := rt.sess.Submit(context.Background(), input, plan)
		if err != nil {
			return errorMsg(err)
		}

		previewPath := ""
		if res.ArtifactUpdated {
			if path, err := rt.writePreview(); err == nil {
				previewPath = path
			}
		}

		return generationDoneMsg{result: res, previewPath: previewPath}
	}
}

func (m chatModel) handleCommand(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	cmd := parts[0]

	reply := func(content string) (tea.Model, tea.Cmd) {
		m.history = append(m.history, chatMessage{
			role:    "assistant",
			content: content,
			time:    time.Now(),
		})
		m.textinput.Reset()
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		return m, nil
	}

	switch cmd {
	case "/quit", "/exit", "/q":
		return m, tea.Quit

	case "/clear":
		m.history = nil
		m.viewport.SetContent("")
		m.textinput.Reset()
		return m, nil

	case "/help":
		return reply(`## Available Commands

| Command | Description |
|---------|-------------|
| /help | Show this help message |
| /clear | Clear the visible chat (history stays persisted) |
| /mode <name> | Switch creator mode |
| /modes | List creator modes |
| /plan | Toggle plan mode (blueprint, no code) |
| /preview | Write the current artifact to disk |
| /quota | Show remaining daily generations |
| /quit, /exit, /q | Exit |

## Tips
- **Enter** sends a message
- **Ctrl+P** toggles plan mode
- **Ctrl+C** or **Esc** exits
- Every message iterates on the previous build`)

	case "/modes":
		var sb strings.Builder
		sb.WriteString("## Creator Modes\n\n| Mode | Label | Description |\n|------|-------|-------------|\n")
		for _, mode := range prompt.AllModes() {
			cfg := prompt.ConfigFor(mode)
			sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", mode, cfg.Label, cfg.Description))
		}
		return reply(sb.String())

	case "/mode":
		if len(parts) < 2 {
			return reply(fmt.Sprintf("Current mode: `%s`\n\nUsage: `/mode <name>` (see `/modes`)", m.rt.sess.Mode()))
		}
		mode, err := prompt.ParseMode(parts[1])
		if err != nil {
			return reply(fmt.Sprintf("Unknown mode `%s`. See `/modes`.", parts[1]))
		}
		m.rt.sess.SetMode(mode)
		cfg := prompt.ConfigFor(mode)
		return reply(fmt.Sprintf("Mode switched to **%s**: %s", cfg.Label, cfg.Description))

	case "/plan":
		m.planMode = !m.planMode
		if m.planMode {
			return reply("Plan mode **on**: the next messages return an architecture blueprint, no code.")
		}
		return reply("Plan mode **off**: back to generating artifacts.")

	case "/preview":
		path, err := m.rt.writePreview()
		if err != nil {
			return reply(fmt.Sprintf("Cannot write preview: %v", err))
		}
		return reply(fmt.Sprintf("Artifact written to `%s`. Open it in a browser.", path))

	case "/quota":
		remaining, err := m.rt.gate.Remaining()
		if err != nil {
			return reply(fmt.Sprintf("Quota check failed: %v", err))
		}
		return reply(fmt.Sprintf("Daily quota: **%d/%d** generations remaining.", remaining, m.rt.cfg.Quota.DailyLimit))

	default:
		return reply(fmt.Sprintf("Unknown command: `%s`. Type `/help` for available commands.", cmd))
	}
}

func (m chatModel) renderHistory() string {
	var sb strings.Builder

	for _, msg := range m.history {
		if msg.role == "user" {
			userStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Primary).
				MarginTop(1)
			sb.WriteString(userStyle.Render("You") + "\n")
			sb.WriteString(m.styles.UserInput.Render(msg.content))
			sb.WriteString("\n\n")
		} else {
			label := "⚡ LOCOBOT"
			if msg.isPlan {
				label = "⚡ LOCOBOT · Blueprint"
			}
			assistantStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Accent).
				MarginTop(1)
			sb.WriteString(assistantStyle.Render(label) + "\n")
			sb.WriteString(m.safeRenderMarkdown(msg.content))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// safeRenderMarkdown renders markdown with panic recovery
func (m chatModel) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			// If glamour panics, return plain text
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return rendered
		}
	}
	return content
}

func (m chatModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := m.renderHeader()

	chatView := m.styles.Content.Render(m.viewport.View())

	if m.isLoading {
		chatView += "\n" + m.styles.Spinner.Render(m.spinner.View()) + " " + m.renderAgents()
	}

	if m.err != nil {
		chatView += "\n" + m.styles.Error.Render("Error: "+m.err.Error())
	}

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Accent).
		Padding(0, 1)
	inputArea := inputStyle.Render(m.textinput.View())

	footer := m.renderFooter()

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		chatView,
		inputArea,
		footer,
	)
}

func (m chatModel) renderHeader() string {
	title := m.styles.Header.Render(" ⚡ LOCOBOT ")
	version := m.styles.Badge.Render("2045")

	var status string
	switch {
	case m.rt.offline:
		status = m.styles.Error.Render("● Offline")
	case m.isLoading:
		status = m.styles.Warning.Render("● Generating")
	default:
		status = m.styles.Success.Render("● Ready")
	}

	modeCfg := prompt.ConfigFor(m.rt.sess.Mode())
	modeTag := m.styles.Muted.Render(" ◈ " + modeCfg.Label)

	headerLine := lipgloss.JoinHorizontal(
		lipgloss.Center,
		title,
		" ",
		version,
		"  ",
		status,
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		headerLine,
		modeTag,
		m.styles.RenderDivider(m.width),
	)
}

// renderAgents shows the cosmetic agent roster while a generation runs.
func (m chatModel) renderAgents() string {
	var tags []string
	for _, a := range m.rt.sess.Agents() {
		tags = append(tags, fmt.Sprintf("%s %s:%s",
			m.styles.AgentTag.Render(a.Name),
			m.styles.Muted.Render(a.Role),
			string(a.Status)))
	}
	return strings.Join(tags, "  ")
}

func (m chatModel) renderFooter() string {
	planTag := ""
	if m.planMode {
		planTag = m.styles.Warning.Render("◆ PLAN MODE") + " • "
	}

	help := m.styles.Muted.Render(planTag + "Enter: send • Ctrl+P: plan mode • /help: commands • Ctrl+C: exit")
	return lipgloss.NewStyle().
		MarginTop(1).
		Render(help)
}
