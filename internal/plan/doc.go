// Package plan holds the in-memory model of a sampling run: dishes, detected
// colonies, destination wells, and the capacity-limited target selection.
//
// Colony ids are dense from zero, assigned in dish-then-within-dish order as
// detections arrive; that order defines the default colony-to-well mapping.
// When more colonies are detected than the plate holds, the target set is
// reduced with a dish-fair random draw rather than a colony-weighted one, so
// sparse dishes stay represented in the output plate.
package plan
