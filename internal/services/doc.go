// Package services defines the shared error taxonomy and context plumbing
// used across the Slate capabilities.
//
// Errors produced by the drive, camera, detector, and report layers are
// tagged with one of the exported sentinel markers so the run orchestrator
// can classify a failure without inspecting adapter internals. UserAbort is
// deliberately absent from the taxonomy: a cooperative stop is signalled
// through the drive abort flag, not through an error value.
package services
