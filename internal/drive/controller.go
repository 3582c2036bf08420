package drive

import (
	"context"
	"math"
)

// Axis identifies one motion axis. Z must home before X or Y so the tool
// clears the baseplate before horizontal motion.
type Axis string

const (
	AxisZ Axis = "Z"
	AxisX Axis = "X"
	AxisY Axis = "Y"
)

// Controller is the capability contract between the run pipeline and the
// motion subsystem.
type Controller interface {
	// Initialize establishes the controller session.
	Initialize(ctx context.Context) error
	// Home performs a full homing cycle on one axis.
	Home(ctx context.Context, axis Axis) error
	// Move performs blocking absolute positioning with guaranteed-path
	// motion. Arguments are millimeters.
	Move(ctx context.Context, x, y, z float64) error
	// MoveDirect repositions quickly without full guaranteed-path motion,
	// used for imaging passes.
	MoveDirect(ctx context.Context, x, y, z float64) error
	// Stop requests a halt of in-flight motion and latches the abort flag.
	Stop(ctx context.Context) error
	// Resume clears the abort flag and continues after a stop.
	Resume(ctx context.Context) error
	// Terminate ends the session. Polite termination parks the tool first;
	// non-polite termination ends immediately and is used on the fault path
	// where a park move could compound the failure. Safe to call twice; the
	// session is released exactly once.
	Terminate(ctx context.Context, polite bool) error
	// Aborted reports whether a stop has been requested and not yet cleared
	// by Resume. Polled at pipeline checkpoints.
	Aborted() bool
}

// Micrometers converts a millimeter value to the integer micrometer units the
// controller accepts on the wire.
func Micrometers(mm float64) int {
	return int(math.Round(mm * 1000))
}
