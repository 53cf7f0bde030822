// Package console is the operator-facing input/output port used for prompts.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

type readResult struct {
	line string
	err  error
}

// Console reads answers from in and writes prompts to out.
type Console struct {
	in     *bufio.Reader
	out    io.Writer
	fd     int
	isTerm bool

	// pending holds a read still in flight after a cancelled prompt; the next
	// prompt receives its line.
	pending chan readResult
}

// New creates a Console. When in is a terminal, secret prompts are not echoed.
func New(in io.Reader, out io.Writer) *Console {
	c := &Console{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		c.fd = int(f.Fd())
		c.isTerm = true
	}
	return c
}

// Printf writes formatted text to the output.
func (c *Console) Printf(format string, a ...any) {
	fmt.Fprintf(c.out, format, a...)
}

// Println writes a line to the output.
func (c *Console) Println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

// Prompt prints label and returns the trimmed answer. End of input counts as
// an empty answer. It returns ctx.Err() if ctx is done before a line arrives.
func (c *Console) Prompt(ctx context.Context, label string) (string, error) {
	fmt.Fprint(c.out, label)
	if c.pending == nil {
		ch := make(chan readResult, 1)
		c.pending = ch
		go func() {
			line, err := c.in.ReadString('\n')
			ch <- readResult{line: line, err: err}
		}()
	}

	select {
	case <-ctx.Done():
		fmt.Fprintln(c.out)
		return "", ctx.Err()
	case r := <-c.pending:
		c.pending = nil
		if r.err != nil && !errors.Is(r.err, io.EOF) {
			return "", fmt.Errorf("reading input: %w", r.err)
		}
		return strings.TrimSpace(r.line), nil
	}
}

// PromptSecret is Prompt without echo when attached to a terminal.
func (c *Console) PromptSecret(ctx context.Context, label string) (string, error) {
	if !c.isTerm {
		return c.Prompt(ctx, label)
	}

	state, err := term.GetState(c.fd)
	if err != nil {
		return "", fmt.Errorf("reading terminal state: %w", err)
	}
	fmt.Fprint(c.out, label)
	ch := make(chan readResult, 1)
	go func() {
		b, err := term.ReadPassword(c.fd)
		ch <- readResult{line: string(b), err: err}
	}()

	select {
	case <-ctx.Done():
		// ReadPassword is still blocked with echo off; put the terminal back.
		_ = term.Restore(c.fd, state)
		fmt.Fprintln(c.out)
		return "", ctx.Err()
	case r := <-ch:
		fmt.Fprintln(c.out)
		if r.err != nil {
			return "", fmt.Errorf("reading secret: %w", r.err)
		}
		return strings.TrimSpace(r.line), nil
	}
}
