package repl

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/tmpl/lang"
)

func testModel(t *testing.T, entries ...HistoryEntry) model {
	t.Helper()

	h := NewHistory("")
	for _, e := range entries {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatal(err)
		}
	}

	return newModel(t.Context(), NewSession(testScope(), noLogger), h, noLogger)
}

func TestModel_RecallStep(t *testing.T) {
	m := testModel(t,
		HistoryEntry{"${a}", modeEval},
		HistoryEntry{"list", modeCtrl},
		HistoryEntry{"${b}", modeEval},
	)

	steps := []struct {
		step     int
		sameMode bool
		wantLine string
		wantMode inputMode
	}{
		{-1, false, "${b}", modeEval},
		{-1, false, "list", modeCtrl},
		{-1, false, "${a}", modeEval},
		{-1, false, "${a}", modeEval}, // oldest entry stays
		{1, true, "${b}", modeEval},   // skips the command
		{1, false, "", modeEval},      // past the newest clears
	}

	for i, s := range steps {
		m = m.recallStep(s.step, s.sameMode)

		if got := m.input.Value(); got != s.wantLine || m.mode != s.wantMode {
			t.Fatalf("step %d: input %q mode %d, want %q mode %d",
				i, got, m.mode, s.wantLine, s.wantMode)
		}
	}

	if m.recall != m.history.Len() {
		t.Errorf("recall = %d, want %d", m.recall, m.history.Len())
	}
}

func TestModel_RecallCommand(t *testing.T) {
	m := testModel(t,
		HistoryEntry{"help", modeCtrl},
		HistoryEntry{"${x}", modeEval},
	)

	m.input.SetValue("draft")
	m.input.SetCursor(2)

	m = m.recallCommand(-1)
	if m.mode != modeCtrl || m.input.Value() != "help" {
		t.Fatalf("got mode %d input %q", m.mode, m.input.Value())
	}

	// Running off the end restores the draft.
	m = m.recallCommand(-1)
	if m.mode != modeEval || m.input.Value() != "draft" || m.input.Position() != 2 {
		t.Errorf("restored mode %d input %q cursor %d",
			m.mode, m.input.Value(), m.input.Position())
	}

	if m.detour != nil {
		t.Error("command browsing still active")
	}
}

func TestModel_SetMode(t *testing.T) {
	m := testModel(t)

	m.input.SetValue("${x}")
	m = m.setMode(modeCtrl)

	if m.input.Value() != "" {
		t.Errorf("command input = %q, want empty", m.input.Value())
	}

	m.input.SetValue("lis")
	m = m.setMode(modeEval)

	if m.input.Value() != "${x}" {
		t.Errorf("render input = %q, want restored", m.input.Value())
	}

	m = m.setMode(modeCtrl)
	if m.input.Value() != "lis" {
		t.Errorf("command input = %q, want restored", m.input.Value())
	}
}

func TestModel_Cycle(t *testing.T) {
	m := testModel(t)

	m.input.SetValue("${server.h")
	m.input.SetCursor(len("${server.h"))
	m = m.refresh(false)

	if len(m.comp.matches) != 2 {
		t.Fatalf("matches = %v, want host and http", m.comp.matches)
	}

	first := m.cycle(1)
	second := first.cycle(1)
	wrapped := second.cycle(1)
	back := first.cycle(-1)

	if first.input.Value() == second.input.Value() {
		t.Errorf("cycling did not advance: %q", first.input.Value())
	}

	if wrapped.input.Value() != first.input.Value() {
		t.Errorf("cycling did not wrap: %q", wrapped.input.Value())
	}

	if back.input.Value() != second.input.Value() {
		t.Errorf("reverse cycling from the first = %q, want %q",
			back.input.Value(), second.input.Value())
	}

	// Esc restores the text typed before cycling.
	next, _ := first.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if next.input.Value() != "${server.h" {
		t.Errorf("Esc restored %q", next.input.Value())
	}
}

func TestModel_Submit(t *testing.T) {
	m := testModel(t)

	m.input.SetValue("${server.host}")

	next, cmd := m.submit()
	if cmd == nil {
		t.Fatal("no output command")
	}

	if next.input.Value() != "" || next.history.Len() != 1 {
		t.Errorf("input %q history %d", next.input.Value(), next.history.Len())
	}

	next = next.setMode(modeCtrl)
	next.input.SetValue("quit")

	next, _ = next.submit()
	if !next.quitting {
		t.Error("quit command did not quit")
	}
}

func TestModel_Keys(t *testing.T) {
	m := testModel(t)

	next, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !next.quitting || cmd == nil {
		t.Error("ctrl+c on an empty line did not quit")
	}

	m.input.SetValue("${a}")

	next, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlC})
	if next.quitting || next.input.Value() != "" {
		t.Errorf("ctrl+c cleared to %q, quitting %v", next.input.Value(), next.quitting)
	}

	next, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlD})
	if next.quitting || next.input.Value() != "${a}" {
		t.Errorf("ctrl+d on a non-empty line: input %q, quitting %v",
			next.input.Value(), next.quitting)
	}

	next, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if next.mode != modeCtrl {
		t.Error("esc did not switch to command mode")
	}
}

func TestModel_Status(t *testing.T) {
	m := testModel(t, HistoryEntry{"${a}", modeEval})

	if got := stripStyle(m.status()); !strings.Contains(got, "esc") {
		t.Errorf("empty-line status %q lacks key help", got)
	}

	m.input.SetValue("${join: ")
	m.input.SetCursor(len("${join: "))

	if got := stripStyle(m.status()); got != "${join: list, sep}" {
		t.Errorf("signature status = %q", got)
	}

	m = m.recallStep(-1, false)
	if got := stripStyle(m.status()); got != "1/1" {
		t.Errorf("history status = %q", got)
	}
}

func TestModel_Load(t *testing.T) {
	dir := t.TempDir()
	m := testModel(t)

	path := writeFile(t, dir, "extra.yaml", "color: blue\n")

	if out := stripStyle(m.load([]string{path})); out != "loaded context data from "+path {
		t.Errorf("load output = %q", out)
	}

	if got, err := m.session.Render(t.Context(), "${color}"); err != nil || got != lang.Text("blue") {
		t.Errorf("Render after load = %q, %v", got, err)
	}

	if out := stripStyle(m.load(nil)); out != "usage: load FILE..." {
		t.Errorf("load without arguments = %q", out)
	}
}
