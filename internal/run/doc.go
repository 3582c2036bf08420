// Package run drives a complete picking run through its staged pipeline:
// camera and drive setup, homing, dish imaging, colony detection and target
// selection, the sampling cycles, report persistence, and hardware release.
//
// A Worker owns one run. Run blocks until the run reaches a terminal state;
// callers observe progress through the notifications channel and steer the
// run with Pause, Resume, and Stop. Stop requests are cooperative: the
// pipeline polls the drive abort flag at stage boundaries and between
// per-item hardware interactions, never mid-motion.
package run
