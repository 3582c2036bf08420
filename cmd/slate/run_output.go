package main

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"slate/internal/notifications"
)

// eventRenderer turns worker notifications into operator-facing output. On a
// terminal, progress updates rewrite a single line; otherwise every event is
// its own line so the output stays greppable in captured logs.
type eventRenderer struct {
	out   io.Writer
	tty   bool
	caser cases.Caser

	max      int
	lastLine bool
}

func newEventRenderer(out io.Writer, tty bool) *eventRenderer {
	return &eventRenderer{out: out, tty: tty, caser: cases.Title(language.English)}
}

func (r *eventRenderer) render(event notifications.Event) {
	switch event.Kind {
	case notifications.KindStage:
		r.endProgressLine()
		fmt.Fprintf(r.out, "==> %s\n", r.stageLabel(event.Stage))
	case notifications.KindStatusMessage:
		if r.tty && r.max > 0 {
			// Transfer statuses ride on the progress line.
			return
		}
		r.endProgressLine()
		fmt.Fprintf(r.out, "    %s\n", event.Message)
	case notifications.KindProgressMax:
		r.max = event.Value
		if event.Value == 0 {
			r.endProgressLine()
			fmt.Fprintln(r.out, "    no colonies detected")
		}
	case notifications.KindProgressValue:
		if r.tty {
			fmt.Fprintf(r.out, "\r    transfer %d of %d", event.Value, r.max)
			r.lastLine = true
		} else {
			fmt.Fprintf(r.out, "    transfer %d of %d\n", event.Value, r.max)
		}
	case notifications.KindFinished:
		r.endProgressLine()
		if event.Aborted {
			fmt.Fprintln(r.out, "Run stopped by operator")
		} else {
			fmt.Fprintln(r.out, "Run complete")
		}
	case notifications.KindFault:
		r.endProgressLine()
		fmt.Fprintf(r.out, "Run failed: %s\n", event.Message)
	}
}

// stageLabel renders a stage code like DRIVE_HOME as "Drive Home".
func (r *eventRenderer) stageLabel(code string) string {
	words := strings.ToLower(strings.ReplaceAll(code, "_", " "))
	return r.caser.String(words)
}

func (r *eventRenderer) endProgressLine() {
	if r.lastLine {
		fmt.Fprintln(r.out)
		r.lastLine = false
	}
}
