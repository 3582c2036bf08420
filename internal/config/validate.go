package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSampling(); err != nil {
		return err
	}
	if err := c.validateMotion(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.Geometry.validate(); err != nil {
		return err
	}
	if c.Sampling.WellCapacity > c.Geometry.WellCount() {
		return fmt.Errorf("sampling.well_capacity %d exceeds the %d wells described by the geometry",
			c.Sampling.WellCapacity, c.Geometry.WellCount())
	}
	return nil
}

func (c *Config) validateSampling() error {
	if c.Sampling.DishCount < 1 || c.Sampling.DishCount > maxDishCount {
		return fmt.Errorf("sampling.dish_count must be between 1 and %d", maxDishCount)
	}
	if c.Sampling.SterilizerDwellSeconds < 0 || c.Sampling.SterilizerDwellSeconds > maxHoldSeconds {
		return fmt.Errorf("sampling.sterilizer_dwell_seconds must be between 0 and %.0f", maxHoldSeconds)
	}
	if c.Sampling.CoolingSeconds < 0 || c.Sampling.CoolingSeconds > maxHoldSeconds {
		return fmt.Errorf("sampling.cooling_seconds must be between 0 and %.0f", maxHoldSeconds)
	}
	if c.Sampling.WellCapacity < 1 {
		return errors.New("sampling.well_capacity must be at least 1")
	}
	return nil
}

func (c *Config) validateMotion() error {
	if c.Motion.PickDepth < c.Motion.CruiseDepth {
		return errors.New("motion.pick_depth must not be above motion.cruise_depth")
	}
	if c.Motion.SterilizeDepth < c.Motion.CruiseDepth {
		return errors.New("motion.sterilize_depth must not be above motion.cruise_depth")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

func (g *Geometry) validate() error {
	if len(g.Dishes) == 0 {
		return errors.New("geometry: at least one dish position is required")
	}
	if len(g.Dishes) > maxDishCount {
		return fmt.Errorf("geometry: at most %d dish positions are supported", maxDishCount)
	}
	seen := make(map[int]struct{}, len(g.Dishes))
	for _, dish := range g.Dishes {
		if dish.ID < 1 {
			return fmt.Errorf("geometry: dish id %d must be positive", dish.ID)
		}
		if _, dup := seen[dish.ID]; dup {
			return fmt.Errorf("geometry: duplicate dish id %d", dish.ID)
		}
		seen[dish.ID] = struct{}{}
	}
	if g.Wells.Rows < 1 || g.Wells.Columns < 1 {
		return errors.New("geometry: wells.rows and wells.columns must be positive")
	}
	if g.Wells.Pitch <= 0 {
		return errors.New("geometry: wells.pitch must be positive")
	}
	return nil
}

// WellCount returns the number of wells described by the grid.
func (g *Geometry) WellCount() int {
	return g.Wells.Rows * g.Wells.Columns
}

// WellPosition returns the (x, y) location of well id, row-major from the
// grid origin. The id must be in [0, WellCount).
func (g *Geometry) WellPosition(id int) (float64, float64) {
	row := id / g.Wells.Columns
	col := id % g.Wells.Columns
	return g.Wells.OriginX + float64(col)*g.Wells.Pitch,
		g.Wells.OriginY + float64(row)*g.Wells.Pitch
}
