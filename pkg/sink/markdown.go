package sink

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const (
	// DefaultInterval caps live re-rendering at 10 frames per second.
	DefaultInterval = 100 * time.Millisecond

	defaultWidth = 80
)

// MarkdownOptions configures a Markdown sink.
type MarkdownOptions struct {
	// Width is the word-wrap width. Zero uses the terminal width, or 80 when
	// the output is not a terminal.
	Width int

	// Interval is the minimum time between two live frames.
	Interval time.Duration

	// Style is a glamour standard style name ("auto", "dark", "light",
	// "notty", ...). Empty means "auto".
	Style string

	// Live forces frame-by-frame re-rendering even when the output is not a
	// terminal. Otherwise non-terminal output only gets the final frame.
	Live bool
}

// Markdown re-renders the whole response as terminal markdown on every
// value, erasing the previous frame first.
type Markdown struct {
	out      *termenv.Output
	renderer *glamour.TermRenderer
	width    int
	interval time.Duration
	live     bool

	now       func() time.Time
	lastFrame time.Time
	lines     int
	pending   string
	dirty     bool
}

// NewMarkdown returns a Markdown sink writing to w.
func NewMarkdown(w io.Writer, opts MarkdownOptions) (*Markdown, error) {
	tty := false
	termWidth := 0
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		tty = true
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil {
			termWidth = cols
		}
	}

	width := opts.Width
	if width <= 0 {
		width = termWidth
	}
	if width <= 0 {
		width = defaultWidth
	}

	style := opts.Style
	if style == "" {
		style = "auto"
	}

	styleOpt := glamour.WithStandardStyle(style)
	if style == "auto" {
		styleOpt = glamour.WithAutoStyle()
	}
	renderer, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return nil, fmt.Errorf("creating markdown renderer: %w", err)
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Markdown{
		out:      termenv.NewOutput(w),
		renderer: renderer,
		width:    width,
		interval: interval,
		live:     tty || opts.Live,
		now:      time.Now,
	}, nil
}

// Render draws text unless a frame was drawn less than one interval ago, in
// which case text is kept for the next frame or for Finish.
func (m *Markdown) Render(text string) error {
	m.pending = text
	m.dirty = true
	if !m.live {
		return nil
	}

	now := m.now()
	if !m.lastFrame.IsZero() && now.Sub(m.lastFrame) < m.interval {
		return nil
	}
	m.lastFrame = now
	return m.draw(text)
}

// Finish draws the last value handed to Render if it has not been drawn yet.
func (m *Markdown) Finish() error {
	if !m.dirty {
		return nil
	}
	return m.draw(m.pending)
}

func (m *Markdown) draw(text string) error {
	rendered, err := m.renderer.Render(text)
	if err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}

	if m.lines > 0 {
		m.out.ClearLines(m.lines)
		m.out.ClearLine()
	}
	if _, err := io.WriteString(m.out, rendered); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	m.lines = rows(rendered, m.width)
	m.dirty = false
	return nil
}

// rows counts the terminal rows that s occupies when wrapped at width
// columns, ignoring ANSI escape sequences.
func rows(s string, width int) int {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return 0
	}
	n := 0
	for line := range strings.SplitSeq(s, "\n") {
		w := ansi.StringWidth(line)
		if w == 0 || width <= 0 {
			n++
			continue
		}
		n += (w + width - 1) / width
	}
	return n
}
