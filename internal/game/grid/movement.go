package grid

// MoveProfile describes the special movement capabilities that change
// terrain costs for one mover. The walking speed itself is the budget
// passed to the pathfinder, not part of the profile.
type MoveProfile struct {
	CanFly   bool
	CanSwim  bool
	CanClimb bool
}

// EntryCost returns the cost in feet of stepping from from into to.
// Returns -1 when the destination terrain cannot be entered at all.
//
// Cost model:
//   - normal terrain costs 5 ft
//   - difficult terrain costs 10 ft; flight ignores it
//   - shallow and deep water cost 10 ft unaided, 5 ft with a swim speed
//     or flight
//   - climbing surfaces and pits cost 10 ft unaided, 5 ft with a climb
//     speed or flight
//   - each 5-ft step of elevation gain adds 5 ft unless flying; a climb
//     speed halves the surcharge
func (g *Grid) EntryCost(from, to Coord, p MoveProfile) int {
	toCell, ok := g.cells[to]
	if !ok || toCell.Terrain == TerrainImpassable {
		return -1
	}

	cost := CellFeet
	switch toCell.Terrain {
	case TerrainDifficult:
		if !p.CanFly {
			cost = 2 * CellFeet
		}
	case TerrainWater, TerrainDeepWater:
		if !p.CanFly && !p.CanSwim {
			cost = 2 * CellFeet
		}
	case TerrainClimb, TerrainPit:
		if !p.CanFly && !p.CanClimb {
			cost = 2 * CellFeet
		}
	}

	if fromCell, ok := g.cells[from]; ok && !p.CanFly {
		if rise := toCell.Elevation - fromCell.Elevation; rise > 0 {
			surcharge := rise * CellFeet
			if p.CanClimb {
				surcharge /= 2
			}
			cost += surcharge
		}
	}

	return cost
}
