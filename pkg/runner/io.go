package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mbruna/espalier/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user. It
// abstracts the interaction mode so the loop can run against a terminal, a
// test harness or a structured frontend.
type IOHandler interface {
	// Output presents the rendered turn to the user.
	Output(ctx context.Context, resp *domain.Response) error

	// Input reads the next utterance from the user.
	Input(ctx context.Context) (string, error)
}

// ContentRenderer transforms prompt text before output. It decouples TUI
// rendering (markdown to ANSI) from the loop itself.
type ContentRenderer func(string) (string, error)

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
	}
}

func (h *TextHandler) Output(ctx context.Context, resp *domain.Response) error {
	text := resp.PromptText()
	if text == "" {
		return nil
	}
	if h.Renderer != nil {
		if rendered, err := h.Renderer(text); err == nil {
			text = rendered
		}
	}
	_, err := fmt.Fprintln(h.Writer, strings.TrimSpace(text))
	return err
}

func (h *TextHandler) Input(ctx context.Context) (string, error) {
	fmt.Fprint(h.Writer, "> ")

	text, err := h.Reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
