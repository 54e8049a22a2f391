package node

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/benbjohnson/clock"
	"go.viam.com/utils"
)

const lineBufferSize = 16

type line struct {
	text string
	read time.Time
}

// LinePrompter answers confirmations from lines of text, such as stdin. The answer is the first
// non-space character of the line; an empty line or the end of input declines. Lines read before
// a prompt was shown never answer it.
type LinePrompter struct {
	w     io.Writer
	clock clock.Clock
	lines chan line
}

// NewLinePrompter returns a prompter reading answers from r and writing prompts to w. Reading
// starts right away so that lines typed ahead of a prompt can be told apart. A nil clk uses the
// wall clock.
func NewLinePrompter(r io.Reader, w io.Writer, clk clock.Clock) *LinePrompter {
	if clk == nil {
		clk = clock.New()
	}
	p := &LinePrompter{w: w, clock: clk, lines: make(chan line, lineBufferSize)}
	utils.PanicCapturingGo(func() {
		p.readLines(r)
	})
	return p
}

// Reading cannot be interrupted, so a single reader outlives the prompts. Lines beyond the
// buffer are dropped.
func (p *LinePrompter) readLines(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case p.lines <- line{text: scanner.Text(), read: p.clock.Now()}:
		default:
		}
	}
	close(p.lines)
}

// Confirm writes the prompt and waits for a line typed after it.
func (p *LinePrompter) Confirm(ctx context.Context, prompt string) (rune, error) {
	opened := p.clock.Now()
	if p.w != nil {
		if _, err := fmt.Fprintln(p.w, prompt); err != nil {
			return 0, err
		}
	}
	for {
		select {
		case l, ok := <-p.lines:
			if !ok {
				return 0, nil
			}
			if l.read.Before(opened) {
				continue
			}
			return firstRune(l.text), nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

func firstRune(line string) rune {
	line = strings.TrimLeftFunc(line, unicode.IsSpace)
	if line == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(line)
	return r
}
