package plan

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"slate/internal/config"
)

// Position is a location on the baseplate in millimeters.
type Position struct {
	X float64
	Y float64
}

// Well is one destination slot in the output multiwell plate.
type Well struct {
	ID        int
	Pos       Position
	HasSample bool
}

// Colony is a detected pickable growth. Position is absolute (dish position
// plus detected offset). Well is -1 until assigned.
type Colony struct {
	ID             int
	DishID         int
	Pos            Position
	IsTarget       bool
	Well           int
	SampleDuration time.Duration
	Sampled        bool
}

// Dish is one petri-dish slot on the baseplate. Created once per configured
// slot; name and active flag come from the operator; image paths and colonies
// are filled in as capture and detection proceed.
type Dish struct {
	ID                 int
	Name               string
	Pos                Position
	Active             bool
	RawImagePath       string
	AnnotatedImagePath string
	Colonies           []*Colony
}

// BuildDishes constructs the dish slots from geometry, activating the first
// count slots with the operator-assigned names. Active names must be
// non-empty and unique.
func BuildDishes(geometry config.Geometry, names []string, count int) ([]*Dish, error) {
	if count < 1 || count > len(geometry.Dishes) {
		return nil, fmt.Errorf("dish count %d outside configured range [1, %d]", count, len(geometry.Dishes))
	}
	if len(names) < count {
		return nil, fmt.Errorf("%d dish names supplied for %d active dishes", len(names), count)
	}

	positions := make([]config.DishPosition, len(geometry.Dishes))
	copy(positions, geometry.Dishes)
	sort.Slice(positions, func(i, j int) bool { return positions[i].ID < positions[j].ID })

	seen := make(map[string]struct{}, count)
	dishes := make([]*Dish, 0, len(positions))
	for i, pos := range positions {
		dish := &Dish{
			ID:   pos.ID,
			Name: fmt.Sprintf("P%d", pos.ID),
			Pos:  Position{X: pos.X, Y: pos.Y},
		}
		if i < count {
			name := strings.TrimSpace(names[i])
			if name == "" {
				return nil, fmt.Errorf("dish %d: name must not be empty", pos.ID)
			}
			if _, dup := seen[name]; dup {
				return nil, fmt.Errorf("dish %d: duplicate name %q", pos.ID, name)
			}
			seen[name] = struct{}{}
			dish.Name = name
			dish.Active = true
		}
		dishes = append(dishes, dish)
	}
	return dishes, nil
}

// BuildWells expands the geometry well grid into capacity wells.
func BuildWells(geometry config.Geometry, capacity int) []Well {
	if capacity > geometry.WellCount() {
		capacity = geometry.WellCount()
	}
	wells := make([]Well, capacity)
	for i := range wells {
		x, y := geometry.WellPosition(i)
		wells[i] = Well{ID: i, Pos: Position{X: x, Y: y}}
	}
	return wells
}

// AddColonies appends detected colonies to dish, assigning ids sequentially
// starting at nextID. Offsets are relative to the dish position; stored
// positions are absolute. Returns the next unassigned id.
func AddColonies(dish *Dish, offsets []Position, nextID int) int {
	for _, offset := range offsets {
		dish.Colonies = append(dish.Colonies, &Colony{
			ID:     nextID,
			DishID: dish.ID,
			Pos:    Position{X: dish.Pos.X + offset.X, Y: dish.Pos.Y + offset.Y},
			Well:   -1,
		})
		nextID++
	}
	return nextID
}

// TotalColonies counts detected colonies across active dishes.
func TotalColonies(dishes []*Dish) int {
	total := 0
	for _, dish := range dishes {
		if dish.Active {
			total += len(dish.Colonies)
		}
	}
	return total
}

// TargetColonies returns the selected colonies of active dishes in ascending
// id order.
func TargetColonies(dishes []*Dish) []*Colony {
	var targets []*Colony
	for _, dish := range dishes {
		if !dish.Active {
			continue
		}
		for _, colony := range dish.Colonies {
			if colony.IsTarget {
				targets = append(targets, colony)
			}
		}
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].ID < targets[j].ID })
	return targets
}

// WellLabel renders a well id in plate notation: row letter then 1-based
// column number, row-major ("A1" ... "H12" on a 96-well plate).
func WellLabel(id, columns int) string {
	if columns < 1 {
		return fmt.Sprintf("%d", id)
	}
	row := id / columns
	col := id % columns
	return fmt.Sprintf("%c%d", 'A'+rune(row), col+1)
}

// AssignWells maps the selected colonies onto wells in ascending colony id
// order: the k-th target gets well k. With all colonies selected this is the
// identity mapping colony i to well i.
func AssignWells(dishes []*Dish, wells []Well) {
	targets := TargetColonies(dishes)
	for i, colony := range targets {
		if i >= len(wells) {
			break
		}
		colony.Well = wells[i].ID
	}
}
