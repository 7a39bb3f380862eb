package server

import (
	"context"
	"fmt"

	"github.com/dekarrin/yarnspinner"
	"github.com/dekarrin/yarnspinner/internal/yarn"
	"github.com/google/uuid"
)

// job is a closure submitted to a Session's owning goroutine. Submitting a
// job and waiting on its done channel is how every other goroutine touches
// the Session's Dialogue, since yarnspinner.Dialogue is not safe for
// concurrent use by design (it wraps a single-threaded yarn.VM).
type job struct {
	run  func(d *yarnspinner.Dialogue) (interface{}, error)
	done chan jobResult
}

type jobResult struct {
	val interface{}
	err error
}

// Session confines one yarnspinner.Dialogue to a single goroutine. Every
// operation on the dialogue (advancing it, selecting an option, reading its
// state) is serialized onto that dialogue's own goroutine via jobs, so two
// HTTP requests racing to advance the same session can't corrupt VM state.
type Session struct {
	id     uuid.UUID
	jobs   chan job
	done   chan struct{}
	closed chan struct{}
}

func newSession(id uuid.UUID, d *yarnspinner.Dialogue) *Session {
	s := &Session{
		id:     id,
		jobs:   make(chan job),
		done:   make(chan struct{}),
		closed: make(chan struct{}),
	}
	go s.loop(d)
	return s
}

func (s *Session) loop(d *yarnspinner.Dialogue) {
	defer close(s.closed)
	for {
		select {
		case j := <-s.jobs:
			val, err := j.run(d)
			j.done <- jobResult{val: val, err: err}
		case <-s.done:
			d.Stop()
			return
		}
	}
}

func (s *Session) submit(ctx context.Context, run func(d *yarnspinner.Dialogue) (interface{}, error)) (interface{}, error) {
	j := job{run: run, done: make(chan jobResult, 1)}

	select {
	case s.jobs <- j:
	case <-s.closed:
		return nil, fmt.Errorf("session %s is closed", s.id)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-j.done:
		return res.val, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ID returns the session's identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// State reports the underlying Dialogue's current run state. It is safe to
// call from any goroutine: the read is routed through submit onto the
// session's own goroutine. If submit fails (e.g. the session is closed), it
// reports the zero State, Stopped.
func (s *Session) State() yarn.State {
	var state yarn.State
	res, err := s.submit(context.Background(), func(d *yarnspinner.Dialogue) (interface{}, error) {
		return d.State(), nil
	})
	if err == nil {
		state = res.(yarn.State)
	}
	return state
}

// Advance starts the dialogue (if not already running) and pulls exactly one
// event from it.
func (s *Session) Advance(ctx context.Context) (yarn.Event, error) {
	res, err := s.submit(ctx, func(d *yarnspinner.Dialogue) (interface{}, error) {
		if d.State() == yarn.Stopped {
			if startErr := d.Run(""); startErr != nil {
				return yarn.Event{}, startErr
			}
		}
		return d.Next(), nil
	})
	if err != nil {
		return yarn.Event{}, err
	}
	return res.(yarn.Event), nil
}

// SelectOption resolves a pending option prompt.
func (s *Session) SelectOption(ctx context.Context, index int) error {
	_, err := s.submit(ctx, func(d *yarnspinner.Dialogue) (interface{}, error) {
		return nil, d.SelectOption(index)
	})
	return err
}

// Close stops the session's goroutine and its underlying VM.
func (s *Session) Close() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	<-s.closed
}
