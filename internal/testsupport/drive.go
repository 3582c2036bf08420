package testsupport

import (
	"context"
	"sync"

	"slate/internal/drive"
)

// Move records one positioning call the fake drive received.
type Move struct {
	Direct  bool
	X, Y, Z float64
}

// FakeDrive implements drive.Controller in memory, recording every call so
// tests can assert motion order and release semantics.
type FakeDrive struct {
	mu sync.Mutex

	Initialized  bool
	Homed        []drive.Axis
	Moves        []Move
	Terminations int
	LastPolite   bool

	aborted bool

	// InitErr, HomeErr, and MoveErr inject failures into the matching call.
	InitErr error
	HomeErr error
	MoveErr error

	// StopAfterMoves latches the abort flag once this many moves have been
	// recorded. Zero disables the trigger.
	StopAfterMoves int

	// OnMove, when set, runs after each recorded move while holding no locks.
	OnMove func(Move)
}

var _ drive.Controller = (*FakeDrive)(nil)

func (d *FakeDrive) Initialize(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.InitErr != nil {
		return d.InitErr
	}
	d.Initialized = true
	return nil
}

func (d *FakeDrive) Home(ctx context.Context, axis drive.Axis) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.HomeErr != nil {
		return d.HomeErr
	}
	d.Homed = append(d.Homed, axis)
	return nil
}

func (d *FakeDrive) Move(ctx context.Context, x, y, z float64) error {
	return d.record(Move{X: x, Y: y, Z: z})
}

func (d *FakeDrive) MoveDirect(ctx context.Context, x, y, z float64) error {
	return d.record(Move{Direct: true, X: x, Y: y, Z: z})
}

func (d *FakeDrive) record(m Move) error {
	d.mu.Lock()
	if d.MoveErr != nil {
		err := d.MoveErr
		d.mu.Unlock()
		return err
	}
	d.Moves = append(d.Moves, m)
	if d.StopAfterMoves > 0 && len(d.Moves) >= d.StopAfterMoves {
		d.aborted = true
	}
	hook := d.OnMove
	d.mu.Unlock()
	if hook != nil {
		hook(m)
	}
	return nil
}

func (d *FakeDrive) Stop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.aborted = true
	return nil
}

func (d *FakeDrive) Resume(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.aborted = false
	return nil
}

func (d *FakeDrive) Terminate(ctx context.Context, polite bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Terminations++
	d.LastPolite = polite
	return nil
}

func (d *FakeDrive) Aborted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.aborted
}

// AbortLatched reports the current abort flag without the Controller
// interface indirection.
func (d *FakeDrive) AbortLatched() bool {
	return d.Aborted()
}

// MoveCount returns the number of recorded positioning calls.
func (d *FakeDrive) MoveCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Moves)
}

// MovesSnapshot copies the recorded moves for inspection.
func (d *FakeDrive) MovesSnapshot() []Move {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Move, len(d.Moves))
	copy(out, d.Moves)
	return out
}
