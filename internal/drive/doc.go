// Package drive exposes the motion-controller capability used by the run
// pipeline.
//
// The Controller contract hides the motion subsystem behind a small set of
// blocking operations: every command is submitted and awaited before the
// caller continues, even though the controller executes motion
// asynchronously. User stops surface through the polled abort flag, not
// through errors; errors are reserved for genuine hardware or communication
// faults. Positions are supplied in millimeters and scaled to integer
// micrometers before submission so long runs never accumulate float drift.
package drive
