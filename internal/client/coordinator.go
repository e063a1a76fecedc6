package client

import (
	"context"
	"fmt"
	"time"

	"github.com/Tomlord1122/tick/internal/domain"
)

// Phase is a step of a client-side mutation:
// Idle -> Fetching -> Deciding -> Writing -> Done | Failed.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseFetching Phase = "fetching"
	PhaseDeciding Phase = "deciding"
	PhaseWriting  Phase = "writing"
	PhaseDone     Phase = "done"
	PhaseFailed   Phase = "failed"
)

// MutationError names the phase in which a mutation failed.
type MutationError struct {
	Phase Phase
	ID    int64
	Err   error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("todo %d: %s: %v", e.ID, e.Phase, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

// API is the subset of Client the coordinator needs.
type API interface {
	Get(ctx context.Context, id int64) (domain.Todo, error)
	Create(ctx context.Context, todo domain.Todo) (domain.Todo, error)
	Put(ctx context.Context, todo domain.Todo) error
}

// Coordinator applies the finish_date rules when the client toggles or
// updates a todo. Each mutation is a fetch followed by a full write; the two
// requests are not atomic, so a writer that lands between them is
// overwritten. Use Client.Toggle for the server-side conditional toggle.
type Coordinator struct {
	API API
	Now func() time.Time
	// OnPhase, if set, observes every phase change.
	OnPhase func(id int64, p Phase)
}

// NewCoordinator returns a Coordinator on api using the wall clock.
func NewCoordinator(api API) *Coordinator {
	return &Coordinator{API: api, Now: time.Now}
}

func (c *Coordinator) enter(id int64, p Phase) {
	if c.OnPhase != nil {
		c.OnPhase(id, p)
	}
}

func (c *Coordinator) fail(id int64, p Phase, err error) error {
	c.enter(id, PhaseFailed)
	return &MutationError{Phase: p, ID: id, Err: err}
}

func (c *Coordinator) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// Toggle inverts done on todo id. Becoming done stamps finish_date with the
// current time; becoming open resets it to the epoch.
func (c *Coordinator) Toggle(ctx context.Context, id int64) (domain.Todo, error) {
	c.enter(id, PhaseIdle)

	c.enter(id, PhaseFetching)
	cur, err := c.API.Get(ctx, id)
	if err != nil {
		return domain.Todo{}, c.fail(id, PhaseFetching, err)
	}

	c.enter(id, PhaseDeciding)
	next := domain.Toggled(cur, c.now())

	c.enter(id, PhaseWriting)
	if err := c.API.Put(ctx, next); err != nil {
		return domain.Todo{}, c.fail(id, PhaseWriting, err)
	}

	c.enter(id, PhaseDone)
	return next, nil
}

// Update writes todo after comparing its done flag with the stored one: a
// false to true transition stamps finish_date, true to false resets it to
// the epoch, and otherwise the caller's finish_date is written as given.
func (c *Coordinator) Update(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	id := todo.ID
	c.enter(id, PhaseIdle)

	c.enter(id, PhaseFetching)
	prev, err := c.API.Get(ctx, id)
	if err != nil {
		return domain.Todo{}, c.fail(id, PhaseFetching, err)
	}

	c.enter(id, PhaseDeciding)
	next := domain.SettleFinish(prev.Done, todo, c.now())

	c.enter(id, PhaseWriting)
	if err := c.API.Put(ctx, next); err != nil {
		return domain.Todo{}, c.fail(id, PhaseWriting, err)
	}

	c.enter(id, PhaseDone)
	return next, nil
}

// Create stamps creation_date with the current time and posts todo.
func (c *Coordinator) Create(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	c.enter(0, PhaseIdle)
	todo.CreationDate = domain.At(c.now())

	c.enter(0, PhaseWriting)
	created, err := c.API.Create(ctx, todo)
	if err != nil {
		return domain.Todo{}, c.fail(0, PhaseWriting, err)
	}

	c.enter(created.ID, PhaseDone)
	return created, nil
}
