package tui

import (
	"fmt"
	"io"
	"sync"

	"github.com/felixgeelhaar/scriptsmith/internal/session"
)

// Reporter prints session progress as it happens. It implements
// session.Observer.
type Reporter struct {
	mu     sync.Mutex
	out    io.Writer
	styles Styles
}

// NewReporter creates a reporter writing to out
func NewReporter(out io.Writer, styles Styles) *Reporter {
	return &Reporter{out: out, styles: styles}
}

// OnEvent implements session.Observer
func (r *Reporter) OnEvent(e session.Event) {
	line := r.render(e)
	if line == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, line)
}

func (r *Reporter) render(e session.Event) string {
	switch e.Kind {
	case session.EventTransition:
		if !e.To.Busy() {
			return ""
		}
		switch e.To {
		case session.StateGenerating:
			return r.styles.Status.Render("→ Generating script")
		case session.StateRepairing:
			return r.styles.Status.Render(fmt.Sprintf("→ Repairing script (cycle %d)", e.Cycle))
		case session.StateChecking:
			return r.styles.Status.Render("→ Checking quality")
		}
	case session.EventArtifact:
		if e.Artifact != nil {
			return RenderMetadata(*e.Artifact, r.styles)
		}
	case session.EventVerdict:
		if e.Verdict != nil {
			return RenderVerdict(*e.Verdict, r.styles)
		}
	case session.EventFailure:
		if e.Err != nil {
			return RenderError(e.Err, r.styles)
		}
	}
	return ""
}
