package repl

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/tmpl/lang"
)

// testEdit returns an editCommand whose editor leaves the file unchanged.
func testEdit(t *testing.T, content, answer string) (*editCommand, *bytes.Buffer) {
	t.Helper()
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "true")

	var stderr bytes.Buffer

	return &editCommand{
		session: NewSession(lang.Map{"x": lang.Text("y")}, noLogger),
		ctxFunc: func() context.Context { return t.Context() },
		logger:  noLogger,
		content: content,
		stdin:   strings.NewReader(answer),
		stdout:  &bytes.Buffer{},
		stderr:  &stderr,
	}, &stderr
}

func TestEditCommand_Renders(t *testing.T) {
	c, _ := testEdit(t, "${x}!", "")

	if err := c.Run(); err != nil {
		t.Fatal(err)
	}

	if c.result != "y!" {
		t.Errorf("result = %q, want %q", c.result, "y!")
	}
}

func TestEditCommand_Empty(t *testing.T) {
	c, _ := testEdit(t, " \n", "")

	if err := c.Run(); err != nil || c.result != "" {
		t.Errorf("Run() = %v, result %q", err, c.result)
	}
}

func TestEditCommand_Declined(t *testing.T) {
	for _, answer := range []string{"n\n", "NO\n", ""} {
		c, stderr := testEdit(t, "${x", answer)

		if err := c.Run(); !errors.Is(err, ErrEditDeclined) {
			t.Errorf("answer %q: Run() = %v, want %v", answer, err, ErrEditDeclined)
		}

		if !strings.Contains(stderr.String(), "error:") {
			t.Errorf("answer %q: no error report in %q", answer, stderr.String())
		}
	}
}

func TestEditCommand_EditorFails(t *testing.T) {
	c, _ := testEdit(t, "${x}", "")
	t.Setenv("VISUAL", "false")

	if err := c.Run(); err == nil {
		t.Error("failing editor did not fail the edit")
	}
}

func TestDescribe(t *testing.T) {
	if got := describe(errors.New("boom"), ""); got != "error: boom" {
		t.Errorf("describe = %q", got)
	}

	_, err := lang.Parse(t.Context(), "a\n${")
	if err == nil {
		t.Fatal("parse succeeded")
	}

	if got := describe(err, "a\n${"); !strings.Contains(got, "\n") {
		t.Errorf("describe = %q, want a snippet", got)
	}
}
