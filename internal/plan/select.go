package plan

import "math/rand/v2"

// SelectTargets marks the colonies to sample, bounded by capacity.
//
// When the detected total fits the plate, every colony becomes a target.
// Otherwise exactly capacity colonies are chosen by a dish-fair draw: pick an
// active dish uniformly at random among those with unselected colonies left,
// then pick one of its unselected colonies uniformly at random. Dishes with
// few colonies end up over-represented relative to a colony-weighted sample;
// that bias is intentional. Returns the number of selected targets.
func SelectTargets(dishes []*Dish, capacity int, rng *rand.Rand) int {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	total := TotalColonies(dishes)
	if total <= capacity {
		for _, dish := range dishes {
			if !dish.Active {
				continue
			}
			for _, colony := range dish.Colonies {
				colony.IsTarget = true
			}
		}
		return total
	}

	selected := 0
	for selected < capacity {
		open := openDishes(dishes)
		if len(open) == 0 {
			break
		}
		dish := open[rng.IntN(len(open))]
		unselected := make([]*Colony, 0, len(dish.Colonies))
		for _, colony := range dish.Colonies {
			if !colony.IsTarget {
				unselected = append(unselected, colony)
			}
		}
		unselected[rng.IntN(len(unselected))].IsTarget = true
		selected++
	}
	return selected
}

func openDishes(dishes []*Dish) []*Dish {
	open := make([]*Dish, 0, len(dishes))
	for _, dish := range dishes {
		if !dish.Active {
			continue
		}
		for _, colony := range dish.Colonies {
			if !colony.IsTarget {
				open = append(open, dish)
				break
			}
		}
	}
	return open
}
