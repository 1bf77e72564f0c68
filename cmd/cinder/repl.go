package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mgomes/cinder/cinder"
)

var (
	accentColor    = lipgloss.Color("#F97316")
	successColor   = lipgloss.Color("#10B981")
	errorColor     = lipgloss.Color("#EF4444")
	mutedColor     = lipgloss.Color("#6B7280")
	highlightColor = lipgloss.Color("#F59E0B")

	promptStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(successColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	headerStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true).
			Padding(0, 1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(highlightColor)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)
)

const (
	replPrompt   = "cinder> "
	replContinue = "   ...> "
)

type historyEntry struct {
	input  string
	output string
	isErr  bool
}

type replModel struct {
	textInput   textinput.Model
	console     *console
	pending     []string
	history     []historyEntry
	cmdHistory  []string
	historyIdx  int
	width       int
	height      int
	showHelp    bool
	showDecls   bool
	quitting    bool
	initialized bool
}

type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	CtrlC key.Binding
	CtrlD key.Binding
	CtrlL key.Binding
	Tab   key.Binding
	CtrlV key.Binding
	CtrlH key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "previous command"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "next command"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "execute"),
	),
	CtrlC: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	CtrlD: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("ctrl+d", "quit"),
	),
	CtrlL: key.NewBinding(
		key.WithKeys("ctrl+l"),
		key.WithHelp("ctrl+l", "clear"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "autocomplete"),
	),
	CtrlV: key.NewBinding(
		key.WithKeys("ctrl+v"),
		key.WithHelp("ctrl+v", "toggle declarations"),
	),
	CtrlH: key.NewBinding(
		key.WithKeys("ctrl+k"),
		key.WithHelp("ctrl+k", "toggle help"),
	),
}

func newREPLModel(c *console) replModel {
	ti := textinput.New()
	ti.Placeholder = "type a statement or expression..."
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 60
	ti.PromptStyle = promptStyle
	ti.Prompt = replPrompt

	return replModel{
		textInput:  ti,
		console:    c,
		history:    make([]historyEntry, 0),
		cmdHistory: make([]string, 0),
		historyIdx: -1,
	}
}

func (m replModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.EnterAltScreen)
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 10
		m.initialized = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.CtrlC), key.Matches(msg, keys.CtrlD):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.CtrlL):
			m.history = make([]historyEntry, 0)
			return m, nil

		case key.Matches(msg, keys.CtrlV):
			m.showDecls = !m.showDecls
			return m, nil

		case key.Matches(msg, keys.CtrlH):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, keys.Up):
			if len(m.cmdHistory) > 0 {
				if m.historyIdx == -1 {
					m.historyIdx = len(m.cmdHistory) - 1
				} else if m.historyIdx > 0 {
					m.historyIdx--
				}
				m.textInput.SetValue(m.cmdHistory[m.historyIdx])
				m.textInput.CursorEnd()
			}
			return m, nil

		case key.Matches(msg, keys.Down):
			if m.historyIdx != -1 {
				if m.historyIdx < len(m.cmdHistory)-1 {
					m.historyIdx++
					m.textInput.SetValue(m.cmdHistory[m.historyIdx])
				} else {
					m.historyIdx = -1
					m.textInput.SetValue("")
				}
				m.textInput.CursorEnd()
			}
			return m, nil

		case key.Matches(msg, keys.Tab):
			m = m.handleAutocomplete()
			return m, nil

		case key.Matches(msg, keys.Enter):
			return m.handleEnter()
		}
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m replModel) handleEnter() (tea.Model, tea.Cmd) {
	line := m.textInput.Value()
	m.textInput.SetValue("")
	m.historyIdx = -1

	if len(m.pending) == 0 {
		input := strings.TrimSpace(line)
		if input == "" {
			return m, nil
		}
		if strings.HasPrefix(input, ":") {
			var cmd tea.Cmd
			m, cmd = m.handleCommand(input)
			return m, cmd
		}
	}

	trimmed := strings.TrimRight(line, " \t")
	continued := strings.HasSuffix(trimmed, "\\")
	if continued {
		line = strings.TrimSuffix(trimmed, "\\")
	}
	m.pending = append(m.pending, line)
	source := strings.Join(m.pending, "\n")
	if continued || cinder.IsIncomplete(source) {
		m.textInput.Prompt = replContinue
		return m, nil
	}

	m.pending = nil
	m.textInput.Prompt = replPrompt
	output, isErr := m.evaluate(source)
	m.history = append(m.history, historyEntry{
		input:  source,
		output: output,
		isErr:  isErr,
	})
	m.cmdHistory = append(m.cmdHistory, strings.ReplaceAll(source, "\n", " "))
	return m, nil
}

func (m replModel) handleCommand(input string) (replModel, tea.Cmd) {
	cmd := strings.Fields(input)[0]

	switch cmd {
	case ":help", ":h":
		m.showHelp = !m.showHelp
	case ":clear", ":c":
		m.history = make([]historyEntry, 0)
	case ":decls", ":d":
		m.showDecls = !m.showDecls
	case ":quit", ":q":
		m.quitting = true
		return m, tea.Quit
	default:
		output, handled, err := m.console.command(input)
		switch {
		case !handled:
			m.history = append(m.history, historyEntry{
				input:  input,
				output: fmt.Sprintf("Unknown command: %s", cmd),
				isErr:  true,
			})
		case err != nil:
			m.history = append(m.history, historyEntry{
				input:  input,
				output: strings.TrimLeft(output+"\n"+err.Error(), "\n"),
				isErr:  true,
			})
		default:
			m.history = append(m.history, historyEntry{
				input:  input,
				output: output,
			})
		}
		m.cmdHistory = append(m.cmdHistory, input)
	}
	return m, nil
}

var replKeywords = []string{
	"auto", "bool", "break", "class", "continue", "double", "else", "extern",
	"false", "for", "if", "int", "namespace", "return", "static", "string",
	"struct", "true", "void", "while",
}

var replBuiltins = []string{"print", "println", "to_string", "len", "sqrt"}

func (m replModel) handleAutocomplete() replModel {
	input := m.textInput.Value()
	if input == "" {
		return m
	}

	words := strings.FieldsFunc(input, func(r rune) bool {
		return !(r == '_' || r == ':' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	})
	if len(words) == 0 || !strings.HasSuffix(input, words[len(words)-1]) {
		return m
	}
	lastWord := words[len(words)-1]

	seen := make(map[string]bool)
	var completions []string
	add := func(name string) {
		if strings.HasPrefix(name, lastWord) && !seen[name] {
			seen[name] = true
			completions = append(completions, name)
		}
	}
	for _, b := range replBuiltins {
		add(b)
	}
	for _, k := range replKeywords {
		add(k)
	}
	for _, name := range m.declNames() {
		add(name)
	}

	if len(completions) == 1 {
		prefix := strings.TrimSuffix(input, lastWord)
		m.textInput.SetValue(prefix + completions[0])
		m.textInput.CursorEnd()
	} else if len(completions) > 1 {
		sort.Strings(completions)
		m.history = append(m.history, historyEntry{
			output: "Completions: " + strings.Join(completions, ", "),
		})
	}

	return m
}

// declNames lists the qualified names of the user declarations.
func (m replModel) declNames() []string {
	var names []string
	for _, tx := range m.console.in.Transactions() {
		for _, d := range tx.Decls() {
			if isWrapperDecl(d) {
				continue
			}
			if _, ok := d.(*cinder.DirectiveDecl); ok {
				continue
			}
			names = append(names, cinder.QualifiedName(d))
		}
	}
	return names
}

func (m replModel) evaluate(input string) (string, bool) {
	output, err := m.console.eval(input)
	if err != nil {
		return strings.TrimLeft(output+"\n"+err.Error(), "\n"), true
	}
	if output == "" {
		return "ok", false
	}
	return output, false
}

func (m replModel) View() string {
	if !m.initialized {
		return "Loading..."
	}

	if m.quitting {
		return mutedStyle.Render("Goodbye!\n")
	}

	var b strings.Builder

	header := headerStyle.Render("Cinder REPL")
	version := mutedStyle.Render("v" + cinder.Version)
	b.WriteString(header + " " + version + "\n")
	b.WriteString(mutedStyle.Render(strings.Repeat("─", max(min(m.width-2, 60), 0))) + "\n\n")

	decls := m.console.decls()
	reservedLines := 8
	if m.showHelp {
		reservedLines += len(consoleHelp) + 8
	}
	if m.showDecls {
		reservedLines += strings.Count(decls, "\n") + 4
	}
	availableHeight := m.height - reservedLines

	historyStart := 0
	if availableHeight < 0 {
		historyStart = len(m.history)
	} else if len(m.history) > availableHeight {
		historyStart = len(m.history) - availableHeight
	}

	for i := historyStart; i < len(m.history); i++ {
		entry := m.history[i]
		if entry.input != "" {
			b.WriteString(mutedStyle.Render("  › ") + entry.input + "\n")
		}
		if entry.isErr {
			b.WriteString("  " + errorStyle.Render("✗ "+entry.output) + "\n")
		} else {
			b.WriteString("  " + resultStyle.Render("→ "+entry.output) + "\n")
		}
		b.WriteString("\n")
	}

	if m.showDecls {
		b.WriteString(renderDeclsPanel(decls))
		b.WriteString("\n")
	}

	if m.showHelp {
		b.WriteString(renderHelpPanel())
		b.WriteString("\n")
	}

	b.WriteString(m.textInput.View() + "\n\n")

	footer := helpKeyStyle.Render("ctrl+k") + helpDescStyle.Render(" help  ") +
		helpKeyStyle.Render("ctrl+v") + helpDescStyle.Render(" decls  ") +
		helpKeyStyle.Render("ctrl+l") + helpDescStyle.Render(" clear  ") +
		helpKeyStyle.Render("ctrl+c") + helpDescStyle.Render(" quit")
	b.WriteString(footer)

	return b.String()
}

func renderDeclsPanel(decls string) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Declarations")
	nameStyle := lipgloss.NewStyle().Foreground(highlightColor)
	lines := []string{title}
	for _, line := range strings.Split(decls, "\n") {
		lines = append(lines, "  "+nameStyle.Render(line))
	}
	return borderStyle.Render(strings.Join(lines, "\n"))
}

func renderHelpPanel() string {
	help := []struct {
		key  string
		desc string
	}{
		{"↑/↓", "Navigate command history"},
		{"Tab", "Autocomplete"},
		{"Enter", "Execute, or continue an open fragment"},
		{":help", "Toggle this help"},
		{":clear", "Clear history"},
		{":quit", "Exit REPL"},
	}

	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Help"))
	for _, h := range help {
		lines = append(lines, fmt.Sprintf("  %s  %s",
			helpKeyStyle.Render(fmt.Sprintf("%-18s", h.key)),
			helpDescStyle.Render(h.desc)))
	}
	for _, h := range consoleHelp {
		lines = append(lines, fmt.Sprintf("  %s  %s",
			helpKeyStyle.Render(fmt.Sprintf("%-18s", h.name)),
			helpDescStyle.Render(h.desc)))
	}

	return borderStyle.Render(strings.Join(lines, "\n"))
}

func runREPL(c *console) error {
	p := tea.NewProgram(newREPLModel(c), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
