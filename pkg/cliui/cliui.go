// Package cliui holds the terminal styles and progress output shared by the
// frontier commands.
package cliui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	SuccessMark = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("✓")
	FailMark    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")

	UserStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	AssistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170"))
	KeyStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	ValueStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	HeaderStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	WarnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	NameStyle      = lipgloss.NewStyle().Bold(true)
	DimStyle       = lipgloss.NewStyle().Faint(true)
	ErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	spinner = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
)

var frames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

const frameInterval = 80 * time.Millisecond

// Step runs fn while a spinner labelled msg animates on w. The spinner line
// is then overwritten with a pass or fail mark and the elapsed time.
func Step(w io.Writer, msg string, fn func() error) error {
	var (
		mu   sync.Mutex
		stop = make(chan struct{})
		done = make(chan struct{})
	)
	draw := func(mark, suffix string) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, "\r  %s %s%s", mark, msg, suffix)
	}

	go func() {
		defer close(done)
		t := time.NewTicker(frameInterval)
		defer t.Stop()
		for i := 0; ; i++ {
			draw(spinner.Render(frames[i%len(frames)]), "")
			select {
			case <-stop:
				return
			case <-t.C:
			}
		}
	}()

	start := time.Now()
	err := fn()
	close(stop)
	<-done

	mark := SuccessMark
	if err != nil {
		mark = FailMark
	}
	draw(mark, " "+DimStyle.Render("("+Elapsed(time.Since(start))+")")+"\n")
	return err
}

// Elapsed formats d as whole milliseconds below a second and tenths of a
// second above.
func Elapsed(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// Fail prints err after a fail mark. A non-empty partial means some of the
// response was already shown, so a note says how much arrived.
func Fail(w io.Writer, err error, partial string) {
	fmt.Fprintf(w, "\n%s %s\n", FailMark, ErrorStyle.Render(err.Error()))
	if partial != "" {
		note := fmt.Sprintf("(response incomplete: %d characters received)", len(partial))
		fmt.Fprintf(w, "  %s\n", DimStyle.Render(note))
	}
}
