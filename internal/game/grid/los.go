package grid

// Line returns the Bresenham line of coordinates from a to b, inclusive
// of both endpoints.
func Line(a, b Coord) []Coord {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx := 1
	if a.X > b.X {
		sx = -1
	}
	sy := 1
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy

	var out []Coord
	x, y := a.X, a.Y
	for {
		out = append(out, Coord{X: x, Y: y})
		if x == b.X && y == b.Y {
			return out
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

// LineOfSight reports whether a clear sight line runs from a to b.
// Only intermediate cells block: impassable terrain on either endpoint
// does not obstruct the line itself.
func (g *Grid) LineOfSight(a, b Coord) bool {
	line := Line(a, b)
	for i := 1; i < len(line)-1; i++ {
		cell, ok := g.cells[line[i]]
		if !ok || cell.Terrain == TerrainImpassable {
			return false
		}
	}
	return true
}

// CoverBetween returns the attack-roll penalty the target at b enjoys
// against an attacker at a: the highest cover value of any intervening
// cell, or CoverFull when no line of sight exists at all.
func (g *Grid) CoverBetween(a, b Coord) int {
	if !g.LineOfSight(a, b) {
		return CoverFull
	}
	line := Line(a, b)
	cover := CoverNone
	for i := 1; i < len(line)-1; i++ {
		if cell, ok := g.cells[line[i]]; ok && cell.Cover > cover {
			cover = cell.Cover
		}
	}
	return cover
}
