// Package popup coordinates the browser-popup login handshake from the
// opener's side: it opens the provider window, watches for the single
// terminal signal (result message, manual close, or timeout), and
// guarantees exactly one outcome per attempt no matter how many signals
// race in.
package popup

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// Outcome is the terminal state of a login attempt.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeSuccess
	OutcomeCanceled
	OutcomeClosed
	OutcomeTimedOut
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeSuccess:
		return "success"
	case OutcomeCanceled:
		return "canceled"
	case OutcomeClosed:
		return "closed"
	case OutcomeTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

var (
	ErrPopupBlocked = errors.New("popup window was blocked")
	ErrCanceled     = errors.New("authentication was canceled")
	ErrWindowClosed = errors.New("popup window was closed before completing")
	ErrTimedOut     = errors.New("authentication timed out")
)

// Message is the payload a terminal page posts back to its opener.
type Message struct {
	Token    string          `json:"token"`
	User     json.RawMessage `json:"user"`
	Canceled bool            `json:"canceled"`
}

// Result is what an attempt resolved to. Err is nil only on success.
type Result struct {
	Token string
	User  json.RawMessage
	Err   error
}

// SessionStore persists a successful login for the client session.
type SessionStore interface {
	Save(token string, user json.RawMessage) error
}

// Attempt is one in-flight handshake. The first of OnMessage,
// OnClosedDetected, and OnTimeout to arrive decides the outcome; the
// rest are no-ops.
type Attempt struct {
	ID             string
	ForceSelection bool

	popup     Popup
	sessions  SessionStore
	onSuccess func(Result)

	mu      sync.Mutex
	outcome Outcome
	result  Result
	done    chan struct{}
}

func newAttempt(id string, forceSelection bool, popup Popup, sessions SessionStore, onSuccess func(Result)) *Attempt {
	return &Attempt{
		ID:             id,
		ForceSelection: forceSelection,
		popup:          popup,
		sessions:       sessions,
		onSuccess:      onSuccess,
		done:           make(chan struct{}),
	}
}

// Done is closed when the attempt reaches a terminal state.
func (a *Attempt) Done() <-chan struct{} { return a.done }

// Outcome returns the attempt's current state.
func (a *Attempt) Outcome() Outcome {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.outcome
}

// Result returns the resolved result. Valid once Done is closed.
func (a *Attempt) Result() Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result
}

// OnMessage handles a payload posted by the terminal page. It reports
// whether this attempt consumed the message.
func (a *Attempt) OnMessage(msg Message) bool {
	if msg.Canceled {
		return a.finish(OutcomeCanceled, Result{Err: ErrCanceled})
	}
	if msg.Token == "" {
		return false
	}
	result := Result{Token: msg.Token, User: msg.User}
	consumed := a.finish(OutcomeSuccess, result)
	if consumed {
		if a.sessions != nil {
			if err := a.sessions.Save(msg.Token, msg.User); err != nil {
				log.Error().Err(err).Str("attempt_id", a.ID).Msg("failed to persist session")
			}
		}
		// runs at most once per attempt since finish consumed the transition
		if a.onSuccess != nil {
			a.onSuccess(result)
		}
	}
	return consumed
}

// OnClosedDetected handles the popup disappearing before a message
// arrived. The close poll can fire just after a successful message, so
// this is a no-op on a terminal attempt.
func (a *Attempt) OnClosedDetected() {
	a.finish(OutcomeClosed, Result{Err: ErrWindowClosed})
}

// OnTimeout expires an attempt that never resolved.
func (a *Attempt) OnTimeout() {
	a.finish(OutcomeTimedOut, Result{Err: ErrTimedOut})
}

func (a *Attempt) finish(outcome Outcome, result Result) bool {
	a.mu.Lock()
	if a.outcome != OutcomePending {
		a.mu.Unlock()
		return false
	}
	a.outcome = outcome
	a.result = result
	close(a.done)
	a.mu.Unlock()

	if a.popup != nil {
		a.popup.Close()
	}
	log.Debug().Str("attempt_id", a.ID).Stringer("outcome", outcome).Msg("handshake attempt resolved")
	return true
}
