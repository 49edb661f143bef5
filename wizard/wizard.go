// Package wizard implements the four-phase draft interview: goal,
// context, steps and constraints.
//
// A Wizard owns exactly one Session. Items are added to the current phase
// until the user advances; advancing past the last phase finishes the
// session, freezes it and publishes it on the Completed channel.
//
// The Goal phase holds a single answer and moves on to Context as soon as
// one is accepted.
package wizard

import (
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/minios-linux/draftkit/log"
)

// Phase is one of the fixed interview stages.
type Phase int

const (
	PhaseGoal Phase = iota
	PhaseContext
	PhaseSteps
	PhaseConstraints
	PhaseDone
)

// Phases returns the input phases in order.
func Phases() []Phase {
	return []Phase{PhaseGoal, PhaseContext, PhaseSteps, PhaseConstraints}
}

// Key returns the draft section name of the phase.
func (p Phase) Key() string {
	switch p {
	case PhaseGoal:
		return "goal"
	case PhaseContext:
		return "context"
	case PhaseSteps:
		return "steps"
	case PhaseConstraints:
		return "constraints"
	case PhaseDone:
		return "done"
	}
	return "unknown"
}

// Title returns the untranslated display name (an i18n message ID).
func (p Phase) Title() string {
	switch p {
	case PhaseGoal:
		return "Goal"
	case PhaseContext:
		return "Context"
	case PhaseSteps:
		return "Steps"
	case PhaseConstraints:
		return "Constraints"
	case PhaseDone:
		return "Done"
	}
	return "Unknown"
}

func (p Phase) String() string { return p.Key() }

// Session is the data collected by one run of the wizard.
type Session struct {
	ID          ulid.ULID
	Phase       Phase
	Goal        string
	Context     []string
	Steps       []string
	Constraints []string
}

// Items returns the answers collected for p. The Goal phase yields at
// most one item.
func (s Session) Items(p Phase) []string {
	switch p {
	case PhaseGoal:
		if s.Goal == "" {
			return nil
		}
		return []string{s.Goal}
	case PhaseContext:
		return s.Context
	case PhaseSteps:
		return s.Steps
	case PhaseConstraints:
		return s.Constraints
	}
	return nil
}

// Done reports whether the session is finished.
func (s Session) Done() bool { return s.Phase >= PhaseDone }

func (s Session) clone() Session {
	c := s
	c.Context = append([]string(nil), s.Context...)
	c.Steps = append([]string(nil), s.Steps...)
	c.Constraints = append([]string(nil), s.Constraints...)
	return c
}

// Wizard drives a Session through its phases.
type Wizard struct {
	session   Session
	completed chan Session
	logger    log.Logger
}

// New returns a wizard at the Goal phase.
func New(logger log.Logger) *Wizard {
	if logger == nil {
		logger = log.Noop
	}
	w := &Wizard{logger: logger}
	w.Reset()
	return w
}

// Reset discards the session and starts a new one. A completion that was
// never received is dropped with the old channel.
func (w *Wizard) Reset() {
	w.session = Session{ID: ulid.Make(), Phase: PhaseGoal}
	w.completed = make(chan Session, 1)
	w.log().Debugf("session started")
}

func (w *Wizard) log() log.Logger {
	return w.logger.WithValues(log.Kv{"svc": "wizard", "session": w.session.ID.String()})
}

// Phase returns the current phase.
func (w *Wizard) Phase() Phase { return w.session.Phase }

// Done reports whether the session is finished.
func (w *Wizard) Done() bool { return w.session.Done() }

// Session returns a copy of the session.
func (w *Wizard) Session() Session { return w.session.clone() }

// Completed returns the channel on which the finished session is
// published exactly once.
func (w *Wizard) Completed() <-chan Session { return w.completed }

// AddItem appends the trimmed text to the current phase. Empty text and
// any call after the session is done are ignored and return false. In the
// Goal phase the text becomes the goal and the wizard advances to Context.
func (w *Wizard) AddItem(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" || w.Done() {
		return false
	}

	switch w.session.Phase {
	case PhaseGoal:
		w.session.Goal = text
		w.next()
	case PhaseContext:
		w.session.Context = append(w.session.Context, text)
	case PhaseSteps:
		w.session.Steps = append(w.session.Steps, text)
	case PhaseConstraints:
		w.session.Constraints = append(w.session.Constraints, text)
	}
	return true
}

// Advance flushes pending input through AddItem and moves to the next
// phase. A goal flushed here already advanced the wizard, so the phase is
// not incremented twice. It returns true when this call finished the
// session.
func (w *Wizard) Advance(pending string) bool {
	if w.Done() {
		return false
	}

	from := w.session.Phase
	w.AddItem(pending)
	if w.session.Phase != from {
		return false
	}
	return w.next()
}

func (w *Wizard) next() bool {
	w.session.Phase++
	if w.session.Phase < PhaseDone {
		w.log().Debugf("advanced to %s", w.session.Phase)
		return false
	}
	w.finish()
	return true
}

func (w *Wizard) finish() {
	w.session.Phase = PhaseDone
	w.log().Infof("session complete: %d context, %d steps, %d constraints",
		len(w.session.Context), len(w.session.Steps), len(w.session.Constraints))
	w.completed <- w.session.clone()
}
