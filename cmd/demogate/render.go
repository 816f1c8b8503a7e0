package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/tolutally/matchbox-web/internal/demo"
	"github.com/tolutally/matchbox-web/internal/voice"
)

var (
	assistantColor = color.New(color.FgCyan).SprintFunc()
	userColor      = color.New(color.FgYellow).SprintFunc()
	errorColor     = color.New(color.FgRed).SprintFunc()
	faintColor     = color.New(color.Faint).SprintFunc()
)

func colorStatus(status string) string {
	switch status {
	case "active":
		return color.GreenString(status)
	case "used":
		return color.YellowString(status)
	case "expired":
		return color.RedString(status)
	}
	return status
}

// renderer prints a running demo. On a terminal the countdown and the
// live transcript line are redrawn in place.
type renderer struct {
	w         io.Writer
	tty       bool
	printed   int
	lastMark  int
	liveDrawn bool
}

func newRenderer(w io.Writer) *renderer {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &renderer{w: w, tty: tty, lastMark: -1}
}

// reset forgets printed lines before a new demo.
func (r *renderer) reset() {
	r.printed = 0
	r.lastMark = -1
	r.liveDrawn = false
}

func (r *renderer) render(s demo.Snapshot) {
	for ; r.printed < len(s.Transcript); r.printed++ {
		r.clearLive()
		line := s.Transcript[r.printed]
		fmt.Fprintln(r.w, colorLine(line))
	}

	if s.State != demo.StateInDemo {
		r.clearLive()
		return
	}

	if r.tty {
		fmt.Fprintf(r.w, "\r\033[K%s %s", faintColor("["+formatClock(s.Remaining)+"]"), s.Live)
		r.liveDrawn = true
		return
	}

	// Without a terminal, report the clock every 30 seconds.
	secs := int(s.Remaining / time.Second)
	if mark := secs / 30; mark != r.lastMark {
		r.lastMark = mark
		fmt.Fprintf(r.w, "[%s remaining]\n", formatClock(s.Remaining))
	}
}

func (r *renderer) clearLive() {
	if r.liveDrawn {
		fmt.Fprint(r.w, "\r\033[K")
		r.liveDrawn = false
	}
}

func colorLine(l demo.Line) string {
	if l.Role == voice.RoleAssistant {
		return assistantColor("Assistant:") + " " + l.Text
	}
	return userColor("You:") + " " + l.Text
}

// formatClock renders d as M:SS.
func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
