package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/tmpl/lang"
	"github.com/ardnew/tmpl/log"
)

const defaultEditor = "vi"

// editCommand is a [tea.ExecCommand] that edits a scratch template in an
// external editor and renders it, offering to re-edit after each failure.
type editCommand struct {
	session *Session
	ctxFunc func() context.Context
	logger  log.Logger
	content string    // template source, updated after each edit
	result  lang.Text // rendered output once content renders
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

func (c *editCommand) SetStdin(r io.Reader)  { c.stdin = r }
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run edits until the content renders or is emptied, which cancels
// without error. Declining to re-edit returns [ErrEditDeclined].
func (c *editCommand) Run() error {
	ctx := c.ctxFunc()

	path, cleanup, err := scratchFile()
	if err != nil {
		return err
	}
	defer cleanup()

	for attempt := 1; ; attempt++ {
		if err := c.editOnce(ctx, path); err != nil {
			return err
		}

		if strings.TrimSpace(c.content) == "" {
			return nil
		}

		text, err := c.session.Render(ctx, c.content)

		c.logger.TraceContext(ctx, "edit rendered",
			slog.Int("attempt", attempt),
			slog.Int("bytes", len(c.content)),
			slog.Bool("ok", err == nil))

		if err == nil {
			c.result = text

			return nil
		}

		fmt.Fprintf(c.stderr, "\n%s\n", describe(err, c.content))

		if !c.confirm("Re-edit? [Y/n] ") {
			return ErrEditDeclined
		}
	}
}

// editOnce writes the content to path, runs the editor on it and reads
// the result back.
func (c *editCommand) editOnce(ctx context.Context, path string) error {
	if err := os.WriteFile(path, []byte(c.content), 0o600); err != nil {
		return err
	}

	if err := c.editor(ctx, path).Run(); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	c.content = string(data)

	return err
}

// confirm asks a yes/no question defaulting to yes. End of input is no.
func (c *editCommand) confirm(question string) bool {
	fmt.Fprint(c.stdout, question)

	sc := bufio.NewScanner(c.stdin)
	if !sc.Scan() {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(sc.Text())) {
	case "n", "no":
		return false
	default:
		return true
	}
}

// editor builds the command running $VISUAL, $EDITOR or vi on path. The
// variables may carry arguments, as in "code --wait".
func (c *editCommand) editor(ctx context.Context, path string) *exec.Cmd {
	argv := []string{defaultEditor}

	for _, name := range []string{"VISUAL", "EDITOR"} {
		if f := strings.Fields(os.Getenv(name)); len(f) > 0 {
			argv = f

			break
		}
	}

	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = c.stdin, c.stdout, c.stderr

	return cmd
}

func scratchFile() (path string, cleanup func(), err error) {
	f, err := os.CreateTemp("", "tmpl-repl-*.tmpl")
	if err != nil {
		return "", nil, err
	}

	path = f.Name()

	if err := f.Close(); err != nil {
		os.Remove(path)

		return "", nil, err
	}

	return path, func() { os.Remove(path) }, nil
}

// describe formats err with a source snippet when it carries a position.
func describe(err error, source string) string {
	msg := "error: " + err.Error()

	var le *lang.Error
	if errors.As(err, &le) {
		if snip := strings.TrimRight(le.Snippet(source), "\n"); snip != "" {
			msg += "\n" + snip
		}
	}

	return msg
}
