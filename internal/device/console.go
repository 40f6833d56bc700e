// Package device implements the phone capability layer for a terminal: a
// console for permission prompts and alerts, a camera that reads photo files
// and positioners backed by configuration or a GeoIP database.
package device

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Console is the interactive terminal shared by every prompting component.
// Reads go through one buffered reader so prompts never steal each other's
// input.
type Console struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// Prompt prints question and returns the trimmed answer line. io.EOF is
// returned when input is exhausted without an answer.
func (c *Console) Prompt(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprint(c.out, question); err != nil {
		return "", err
	}
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Alert prints a blocking-style alert. It implements permission.Alerter.
func (c *Console) Alert(title, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "%s\n%s\n", title, message)
}
