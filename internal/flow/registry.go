// Package flow runs short conversational exchanges that wait for one
// more message from a specific member in a specific channel.
//
// A flow registers a filtered listener with a deadline. The listener is
// resolved exactly once: by the first matching event passed to Dispatch,
// by its deadline, or by cancellation. Whichever path removes the entry
// from the registry wins; the others become no-ops. The listener is
// always removed, whatever the outcome.
package flow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kalambet/slaymom/internal/chat"
	"github.com/kalambet/slaymom/internal/clock"
)

// ErrClosed is returned by Register after Close.
var ErrClosed = errors.New("flow registry closed")

// Kind names what a pending interaction is waiting for.
type Kind string

const (
	KindConfirm  Kind = "confirm"
	KindFollowUp Kind = "follow_up"
)

// Outcome is how a pending interaction ended.
type Outcome int

const (
	Satisfied Outcome = iota + 1
	TimedOut
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Satisfied:
		return "satisfied"
	case TimedOut:
		return "timed_out"
	case Cancelled:
		return "cancelled"
	default:
		return "pending"
	}
}

// Spec describes the event a flow is waiting for.
type Spec struct {
	Kind      Kind
	UserID    string
	ChannelID string
	Timeout   time.Duration

	// Match further filters events from UserID in ChannelID. Nil accepts
	// any such event. It runs with the registry locked and must not block.
	Match func(chat.Event) bool
}

// Result is the resolution of a pending interaction. Event is set only
// when Outcome is Satisfied.
type Result struct {
	Outcome Outcome
	Event   chat.Event
}

// Info is a read-only view of a pending interaction.
type Info struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	UserID    string    `json:"user_id"`
	ChannelID string    `json:"channel_id"`
	Deadline  time.Time `json:"deadline"`
}

// Pending is a registered listener awaiting resolution.
type Pending struct {
	info  Info
	spec  Spec
	reg   *Registry
	done  chan Result
	timer *clock.Timer
}

// ID returns the interaction's identifier.
func (p *Pending) ID() string { return p.info.ID }

// Wait blocks until the interaction resolves. Cancelling ctx resolves it
// as Cancelled unless something else won first, in which case that
// result is returned.
func (p *Pending) Wait(ctx context.Context) Result {
	select {
	case res := <-p.done:
		return res
	case <-ctx.Done():
		p.reg.resolve(p.info.ID, Result{Outcome: Cancelled})
		return <-p.done
	}
}

// Cancel resolves the interaction as Cancelled. It reports false if it
// had already resolved.
func (p *Pending) Cancel() bool {
	return p.reg.resolve(p.info.ID, Result{Outcome: Cancelled})
}

// Registry tracks every pending interaction. The event loop feeds it
// through Dispatch.
type Registry struct {
	clock  clock.Clock
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string]*Pending
	closed  bool
}

// NewRegistry creates an empty Registry.
func NewRegistry(c clock.Clock) *Registry {
	return &Registry{
		clock:   c,
		logger:  slog.Default(),
		pending: make(map[string]*Pending),
	}
}

// Register adds a listener and starts its deadline. Register before
// prompting the member so that a fast reply cannot be missed.
func (r *Registry) Register(spec Spec) (*Pending, error) {
	p := &Pending{
		info: Info{
			ID:        uuid.NewString(),
			Kind:      spec.Kind,
			UserID:    spec.UserID,
			ChannelID: spec.ChannelID,
			Deadline:  r.clock.Now().Add(spec.Timeout),
		},
		spec: spec,
		reg:  r,
		done: make(chan Result, 1),
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrClosed
	}
	r.pending[p.info.ID] = p
	r.mu.Unlock()

	// Created outside the lock: a zero timeout fires synchronously.
	t := r.clock.AfterFunc(spec.Timeout, func() {
		r.resolve(p.info.ID, Result{Outcome: TimedOut})
	})

	r.mu.Lock()
	if _, ok := r.pending[p.info.ID]; ok {
		p.timer = t
	} else {
		t.Stop()
	}
	r.mu.Unlock()

	r.logger.Debug("flow registered", "id", p.info.ID, "kind", spec.Kind, "user_id", spec.UserID, "timeout", spec.Timeout)
	return p, nil
}

// Await registers spec, runs prompt, and waits for the result. If
// prompt fails the listener is removed and the error returned.
func (r *Registry) Await(ctx context.Context, spec Spec, prompt func() error) (Result, error) {
	p, err := r.Register(spec)
	if err != nil {
		return Result{}, err
	}
	if prompt != nil {
		if err := prompt(); err != nil {
			p.Cancel()
			return Result{}, err
		}
	}
	return p.Wait(ctx), nil
}

// Dispatch resolves every pending interaction that ev satisfies and
// returns how many it resolved. The event is observed, not consumed:
// it still goes on to scanning and command handling.
func (r *Registry) Dispatch(ev chat.Event) int {
	r.mu.Lock()
	var hits []*Pending
	for id, p := range r.pending {
		if p.spec.UserID != ev.AuthorID || p.spec.ChannelID != ev.ChannelID {
			continue
		}
		if p.spec.Match != nil && !p.spec.Match(ev) {
			continue
		}
		delete(r.pending, id)
		hits = append(hits, p)
	}
	r.mu.Unlock()

	for _, p := range hits {
		r.finish(p, Result{Outcome: Satisfied, Event: ev})
	}
	return len(hits)
}

// Cancel resolves the interaction with the given ID as Cancelled.
func (r *Registry) Cancel(id string) bool {
	return r.resolve(id, Result{Outcome: Cancelled})
}

// CancelUser cancels every interaction waiting on userID.
func (r *Registry) CancelUser(userID string) int {
	r.mu.Lock()
	var hits []*Pending
	for id, p := range r.pending {
		if p.spec.UserID == userID {
			delete(r.pending, id)
			hits = append(hits, p)
		}
	}
	r.mu.Unlock()

	for _, p := range hits {
		r.finish(p, Result{Outcome: Cancelled})
	}
	return len(hits)
}

// Close cancels everything pending and rejects further registrations.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	hits := make([]*Pending, 0, len(r.pending))
	for id, p := range r.pending {
		delete(r.pending, id)
		hits = append(hits, p)
	}
	r.mu.Unlock()

	for _, p := range hits {
		r.finish(p, Result{Outcome: Cancelled})
	}
}

// Len returns the number of pending interactions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Snapshot lists the pending interactions.
func (r *Registry) Snapshot() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Info, 0, len(r.pending))
	for _, p := range r.pending {
		out = append(out, p.info)
	}
	return out
}

func (r *Registry) resolve(id string, res Result) bool {
	r.mu.Lock()
	p, ok := r.pending[id]
	if ok {
		delete(r.pending, id)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	r.finish(p, res)
	return true
}

// finish delivers res to a pending entry already removed from the map.
func (r *Registry) finish(p *Pending, res Result) {
	r.mu.Lock()
	t := p.timer
	r.mu.Unlock()
	if t != nil {
		t.Stop()
	}
	p.done <- res
	r.logger.Debug("flow resolved", "id", p.info.ID, "kind", p.info.Kind, "outcome", res.Outcome)
}
