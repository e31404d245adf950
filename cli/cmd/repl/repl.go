package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/tmpl/lang"
	"github.com/ardnew/tmpl/log"
)

// Messages sent back by the editor loop.
type (
	editDoneMsg struct {
		content string
		result  lang.Text
	}
	editCancelledMsg struct{ content string }
	editErrorMsg     struct{ err error }
)

// inputMode selects how a submitted line is interpreted.
type inputMode int

const (
	modeEval inputMode = iota // render the line as a template
	modeCtrl                  // run the line as a command
)

const (
	evalPrompt   = "➜ "
	ctrlPrompt   = " :"
	defaultWidth = 80
	maxInput     = 4096
)

const commandHelp = `Commands (press Esc to toggle mode):
  help        Print this help
  list        List loaded templates and context data
  load FILE   Load a template (bound by file name) or YAML context data
  edit        Write and render a template in $VISUAL or $EDITOR
  clear       Clear screen
  quit        Exit REPL

Render mode completes names inside ${ } as you type.`

// Config configures an interactive session.
type Config struct {
	// History is the path of the history file. Empty disables
	// persistence.
	History string

	// Builtins is the built-in context of every rendered line.
	Builtins lang.Context

	Logger log.Logger
}

// savedInput is the text and cursor of the input line.
type savedInput struct {
	text   string
	cursor int
}

// detour remembers where command-history browsing started.
type detour struct {
	mode inputMode
	savedInput
}

type model struct {
	ctxFunc  func() context.Context
	input    textinput.Model
	help     help.Model
	keys     keyMap
	session  *Session
	history  *History
	logger   log.Logger
	comp     completion
	detour   *detour       // non-nil while browsing command history
	stash    [2]savedInput // input of the mode not shown
	recall   int           // shown history entry, history.Len() for a new line
	scratch  string        // last template written in the editor
	width    int
	mode     inputMode
	quitting bool
}

// Run starts an interactive session after loading files into it in
// order (see [Session.Load]).
func Run(ctx context.Context, cfg Config, files ...string) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer func() { cancel(err) }()

	session := NewSession(cfg.Builtins, cfg.Logger)

	for _, file := range files {
		if _, err := session.Load(ctx, file); err != nil {
			return err
		}
	}

	history := NewHistory(cfg.History)
	if err := history.Load(); err != nil {
		cfg.Logger.WarnContext(ctx, "history not loaded",
			slog.String("file", cfg.History),
			slog.Any("error", err))
	}

	cfg.Logger.TraceContext(ctx, "repl start",
		slog.String("history", cfg.History),
		slog.Int("entries", history.Len()),
		slog.Any("files", files))

	_, err = tea.NewProgram(
		newModel(ctx, session, history, cfg.Logger),
		tea.WithContext(ctx),
	).Run()

	return err
}

func newModel(
	ctx context.Context,
	session *Session,
	history *History,
	logger log.Logger,
) model {
	in := textinput.New()
	in.Prompt = style.prompt.Render(evalPrompt)
	in.CharLimit = maxInput
	in.Width = defaultWidth
	in.Focus()

	return model{
		ctxFunc: func() context.Context { return ctx },
		input:   in,
		help:    help.New(),
		keys:    defaultKeyMap(),
		session: session,
		history: history,
		logger:  logger,
		comp:    completion{pick: -1},
		recall:  history.Len(),
		width:   defaultWidth,
	}
}

func (m model) Init() tea.Cmd { return textinput.Blink }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var out string

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - lipgloss.Width(evalPrompt) - 2
		m.help.Width = msg.Width

		return m, nil

	case editDoneMsg:
		m.scratch = msg.content
		out = style.result.Render(string(msg.result))

	case editCancelledMsg:
		m.scratch = msg.content
		out = style.hint.Render("edit cancelled")

	case editErrorMsg:
		out = style.failure.Render("error: " + msg.err.Error())

	default:
		var cmd tea.Cmd

		m.input, cmd = m.input.Update(msg)

		return m, cmd
	}

	return m, tea.Println(out)
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	return m.input.View() + "\n" + m.status() + "\n"
}

// status is the line below the prompt: history position, usage, the
// signature of the enclosing call, or completion candidates.
func (m model) status() string {
	input := m.input.Value()

	if m.recall < m.history.Len() {
		return style.hint.Render(fmt.Sprintf("%d/%d", m.recall+1, m.history.Len()))
	}

	if strings.TrimSpace(input) == "" {
		if m.mode == modeCtrl {
			return style.hint.Render(strings.Join(ctrlCommands, " · "))
		}

		return m.help.ShortHelpView(m.keys.ShortHelp())
	}

	if m.mode == modeEval {
		call := detectFunctionCall(input, m.input.Position())
		if call.inCall {
			if params, ok := signature(m.session, call.name); ok {
				return renderSignatureHint(call.name, params, call.argIndex)
			}
		}
	}

	scope := m.session.Scope()

	return m.comp.bar(m.width, func(name string) bool {
		return callableAt(scope, m.comp.parent, name)
	})
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl key", slog.String("key", msg.String()))

	empty := m.input.Value() == ""

	switch {
	case key.Matches(msg, m.keys.Quit) && empty,
		key.Matches(msg, m.keys.Clear) && empty:
		m.quitting = true

		return m, tea.Quit

	case key.Matches(msg, m.keys.Quit):
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.input.SetValue("")
		m.comp.cycling = false
		m.detour = nil
		m.recall = m.history.Len()

		return m.refresh(false), nil

	case key.Matches(msg, m.keys.Submit):
		m.detour = nil

		if m.comp.cycling && len(m.comp.matches) > 0 {
			m.comp.cycling = false

			return m.refresh(true), nil
		}

		return m.submit()

	case key.Matches(msg, m.keys.Next):
		return m.cycle(1), nil

	case key.Matches(msg, m.keys.Prev):
		return m.cycle(-1), nil

	case key.Matches(msg, m.keys.Older):
		return m.recallStep(-1, false), nil

	case key.Matches(msg, m.keys.Newer):
		return m.recallStep(1, false), nil

	case key.Matches(msg, m.keys.OlderInMode):
		return m.recallStep(-1, true), nil

	case key.Matches(msg, m.keys.NewerInMode):
		return m.recallStep(1, true), nil

	case key.Matches(msg, m.keys.OlderCommand):
		return m.recallCommand(-1), nil

	case key.Matches(msg, m.keys.NewerCommand):
		return m.recallCommand(1), nil

	case key.Matches(msg, m.keys.Mode):
		if m.comp.cycling {
			m.comp.cycling = false
			m.input.SetValue(m.comp.origin.text)
			m.input.SetCursor(m.comp.origin.cursor)

			return m.refresh(false), nil
		}

		m.detour = nil

		return m.setMode(1 - m.mode), nil
	}

	typed := msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace

	// Typing a space accepts the candidate being cycled through.
	if !typed || msg.String() == " " {
		m.comp.cycling = false
	}

	if !typed {
		m.detour = nil
	}

	var cmd tea.Cmd

	m.recall = m.history.Len()
	m.input, cmd = m.input.Update(msg)

	return m.refresh(typed), cmd
}

// cycle selects the candidate step places away, wrapping around, and
// writes it over the word. A sole candidate is accepted outright.
func (m model) cycle(step int) model {
	n := len(m.comp.matches)

	switch {
	case n == 0:
		return m

	case n == 1:
		m = m.insert(m.comp.matches[0].Str)
		m.comp = completion{pick: -1}

		return m

	case m.comp.cycling:
		m.comp.pick = (m.comp.pick + step + n) % n

	default:
		m.comp.cycling = true
		m.comp.origin = savedInput{m.input.Value(), m.input.Position()}

		m.comp.pick = 0
		if step < 0 {
			m.comp.pick = n - 1
		}
	}

	return m.insert(m.comp.matches[m.comp.pick].Str)
}

// insert writes s over the completed word and moves the cursor after it.
func (m model) insert(s string) model {
	in := m.input.Value()

	m.input.SetValue(in[:m.comp.start] + s + in[m.comp.end:])
	m.input.SetCursor(m.comp.start + len(s))
	m.comp.end = m.comp.start + len(s)

	return m
}

// refresh recomputes the candidates. With confirm, a sole candidate that
// the word already spells out is accepted and the list closes. Deletions
// and cursor motion refresh without confirm.
func (m model) refresh(confirm bool) model {
	next := m.suggest()

	if m.comp.cycling {
		next.pick, next.cycling, next.origin = m.comp.pick, true, m.comp.origin
	}

	m.comp = next

	if confirm && len(next.matches) == 1 &&
		m.input.Value()[next.start:next.end] == next.matches[0].Str {
		m.comp = completion{start: next.start, end: next.end, pick: -1}
	}

	return m
}

// submit renders or runs the input line and records it in history.
func (m model) submit() (model, tea.Cmd) {
	raw := m.input.Value()

	line := strings.TrimSpace(raw)
	if line == "" {
		return m, nil
	}

	m.stash = [2]savedInput{}
	m.input.SetValue("")
	m.comp = completion{pick: -1}

	if err := m.history.Add(line, m.mode); err != nil {
		m.logger.DebugContext(m.ctxFunc(), "history not saved", slog.Any("error", err))
	}

	m.recall = m.history.Len()

	prompt := style.prompt.Render(evalPrompt)
	if m.mode == modeCtrl {
		prompt = style.ctrlPrompt.Render(ctrlPrompt)
	}

	echo := tea.Println(prompt + style.input.Render(line))

	if m.mode == modeCtrl {
		return m.command(echo, line)
	}

	// Rendered lines keep their significant whitespace.
	text, err := m.session.Render(m.ctxFunc(), raw)
	if err != nil {
		return m, tea.Sequence(echo, tea.Println(style.failure.Render(describe(err, raw))))
	}

	return m, tea.Sequence(echo, tea.Println(style.result.Render(string(text))))
}

// command runs a command-mode line.
func (m model) command(echo tea.Cmd, line string) (model, tea.Cmd) {
	name, rest, _ := strings.Cut(line, " ")
	args := strings.Fields(rest)

	m.logger.TraceContext(m.ctxFunc(), "repl command",
		slog.String("command", name),
		slog.Any("args", args))

	var out string

	switch name {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())

	case "h", "help":
		out = commandHelp + "\n\n" + m.help.FullHelpView(m.keys.FullHelp())

	case "l", "list":
		out = m.list()

	case "load":
		out = m.load(args)

	default:
		out = style.failure.Render(fmt.Sprintf("unknown command %q (try help)", name))
	}

	return m, tea.Sequence(echo, tea.Println(out))
}

// load loads each file into the session, reporting one line per file.
func (m model) load(files []string) string {
	if len(files) == 0 {
		return style.failure.Render(ErrUsage.Error() + ": load FILE...")
	}

	lines := make([]string, len(files))

	for i, file := range files {
		name, err := m.session.Load(m.ctxFunc(), file)

		switch {
		case err != nil:
			lines[i] = style.failure.Render("error: " + err.Error())
		case name == "":
			lines[i] = style.result.Render("loaded context data from " + file)
		default:
			lines[i] = style.result.Render("loaded " + file + " as " + name)
		}
	}

	return strings.Join(lines, "\n")
}

func (m model) list() string {
	entries := m.session.List()
	if len(entries) == 0 {
		return style.hint.Render("  (nothing loaded)")
	}

	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = "  " + e.Name + " " + style.hint.Render(e.Preview)
	}

	return strings.Join(lines, "\n")
}

func (m model) edit() tea.Cmd {
	c := &editCommand{
		session: m.session,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
		content: m.scratch,
	}

	return tea.Exec(c, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editCancelledMsg{content: c.content}
		case err != nil:
			return editErrorMsg{err: err}
		case strings.TrimSpace(c.content) == "":
			return editCancelledMsg{}
		default:
			return editDoneMsg{content: c.content, result: c.result}
		}
	})
}

// recallAt shows history entry i, switching to its mode.
func (m model) recallAt(i int) model {
	entry, err := m.history.Entry(i)
	if err != nil {
		return m
	}

	if entry.Mode != m.mode {
		m = m.setMode(entry.Mode)
	}

	m.recall = i
	m.input.SetValue(entry.Line)
	m.input.SetCursor(len(entry.Line))

	return m.refresh(false)
}

// recallStep moves through history by step. With sameMode, entries of
// the other mode are skipped. Stepping past the newest entry clears the
// input.
func (m model) recallStep(step int, sameMode bool) model {
	for i := m.recall + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.Entry(i)
		if err != nil {
			break
		}

		if !sameMode || entry.Mode == m.mode {
			return m.recallAt(i)
		}
	}

	if step > 0 && m.recall < m.history.Len() {
		m.recall = m.history.Len()
		m.input.SetValue("")

		return m.refresh(false)
	}

	return m
}

// recallCommand browses command history from either mode. Running off
// either end restores the mode and input from before browsing started.
func (m model) recallCommand(step int) model {
	if m.detour == nil {
		m.detour = &detour{m.mode, savedInput{m.input.Value(), m.input.Position()}}
		m = m.setMode(modeCtrl)
	}

	for i := m.recall + step; i >= 0 && i < m.history.Len(); i += step {
		if entry, err := m.history.Entry(i); err == nil && entry.Mode == modeCtrl {
			return m.recallAt(i)
		}
	}

	back := m.detour
	m.detour = nil
	m = m.setMode(back.mode)

	m.input.SetValue(back.text)
	m.input.SetCursor(back.cursor)
	m.recall = m.history.Len()

	return m.refresh(false)
}

// setMode switches to mode, stashing the input of the current mode and
// restoring the input last typed in the new one.
func (m model) setMode(mode inputMode) model {
	if mode == m.mode {
		return m
	}

	m.stash[m.mode] = savedInput{m.input.Value(), m.input.Position()}
	m.mode = mode

	if mode == modeCtrl {
		m.input.Prompt = style.ctrlPrompt.Render(ctrlPrompt)
	} else {
		m.input.Prompt = style.prompt.Render(evalPrompt)
	}

	m.input.SetValue(m.stash[mode].text)
	m.input.SetCursor(m.stash[mode].cursor)

	return m.refresh(false)
}
