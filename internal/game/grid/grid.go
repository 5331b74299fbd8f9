// Package grid implements the combat grid: a bounded field of terrain
// cells with occupancy, elevation, and cover, plus weighted A*
// pathfinding and Bresenham line-of-sight.
package grid

import "fmt"

// CellFeet is the edge length of one grid cell in feet.
const CellFeet = 5

// Coord is a grid coordinate pair.
type Coord struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Chebyshev returns the Chebyshev distance to other, in cells.
func (c Coord) Chebyshev(other Coord) int {
	dx := abs(c.X - other.X)
	dy := abs(c.Y - other.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// DistanceFeet returns the Chebyshev distance to other in feet.
func (c Coord) DistanceFeet(other Coord) int {
	return c.Chebyshev(other) * CellFeet
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Terrain categorises a cell's ground.
type Terrain int

const (
	TerrainNormal Terrain = iota
	TerrainDifficult
	TerrainImpassable
	TerrainWater
	TerrainDeepWater
	TerrainPit
	TerrainClimb
)

// String returns the machine-stable terrain tag.
func (t Terrain) String() string {
	switch t {
	case TerrainNormal:
		return "normal"
	case TerrainDifficult:
		return "difficult"
	case TerrainImpassable:
		return "impassable"
	case TerrainWater:
		return "water"
	case TerrainDeepWater:
		return "deep_water"
	case TerrainPit:
		return "pit"
	case TerrainClimb:
		return "climb"
	default:
		return "normal"
	}
}

// ParseTerrain maps a terrain tag to a Terrain. Unknown tags resolve to
// TerrainNormal rather than failing the caller: a bad content tag should
// cost a default move, not abort a turn.
func ParseTerrain(s string) Terrain {
	switch s {
	case "difficult":
		return TerrainDifficult
	case "impassable":
		return TerrainImpassable
	case "water":
		return TerrainWater
	case "deep_water":
		return TerrainDeepWater
	case "pit":
		return TerrainPit
	case "climb":
		return TerrainClimb
	default:
		return TerrainNormal
	}
}

// Cover values a cell can grant to targets behind it.
const (
	CoverNone = 0
	CoverHalf = 2
	CoverFull = 5
)

// Cell is one square of the combat grid.
// Elevation counts 5-ft steps above the base plane.
type Cell struct {
	Coord      Coord
	Terrain    Terrain
	Elevation  int
	Cover      int // CoverNone, CoverHalf, or CoverFull
	OccupantID string
}

// Grid is a bounded rectangle of cells addressed by coordinate pair.
// It is not safe for concurrent use; the engine serialises access.
type Grid struct {
	Width  int
	Height int
	cells  map[Coord]*Cell
}

// New creates a grid of width x height normal-terrain cells.
//
// Precondition: width and height must be >= 1.
func New(width, height int) (*Grid, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("grid: dimensions must be >= 1, got %dx%d", width, height)
	}
	g := &Grid{Width: width, Height: height, cells: make(map[Coord]*Cell, width*height)}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := Coord{X: x, Y: y}
			g.cells[c] = &Cell{Coord: c, Terrain: TerrainNormal}
		}
	}
	return g, nil
}

// InBounds reports whether c lies on the grid.
func (g *Grid) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < g.Width && c.Y >= 0 && c.Y < g.Height
}

// Cell returns the cell at c, or (nil, false) when out of bounds.
func (g *Grid) Cell(c Coord) (*Cell, bool) {
	cell, ok := g.cells[c]
	return cell, ok
}

// IsPassable reports whether c can be stood on: in bounds, not
// impassable terrain, and unoccupied.
func (g *Grid) IsPassable(c Coord) bool {
	cell, ok := g.cells[c]
	return ok && cell.Terrain != TerrainImpassable && cell.OccupantID == ""
}

// SetTerrain sets the terrain at c.
//
// Precondition: c must be in bounds.
func (g *Grid) SetTerrain(c Coord, t Terrain) error {
	cell, ok := g.cells[c]
	if !ok {
		return fmt.Errorf("grid: %v out of bounds", c)
	}
	cell.Terrain = t
	return nil
}

// SetElevation sets the elevation at c, in 5-ft steps.
//
// Precondition: c must be in bounds.
func (g *Grid) SetElevation(c Coord, steps int) error {
	cell, ok := g.cells[c]
	if !ok {
		return fmt.Errorf("grid: %v out of bounds", c)
	}
	cell.Elevation = steps
	return nil
}

// SetCover sets the cover value at c.
//
// Precondition: c must be in bounds; cover must be CoverNone, CoverHalf,
// or CoverFull.
func (g *Grid) SetCover(c Coord, cover int) error {
	cell, ok := g.cells[c]
	if !ok {
		return fmt.Errorf("grid: %v out of bounds", c)
	}
	if cover != CoverNone && cover != CoverHalf && cover != CoverFull {
		return fmt.Errorf("grid: invalid cover value %d", cover)
	}
	cell.Cover = cover
	return nil
}

// PlaceOccupant records id as the occupant of c.
//
// Precondition: c must be in bounds, passable, and unoccupied.
func (g *Grid) PlaceOccupant(c Coord, id string) error {
	cell, ok := g.cells[c]
	if !ok {
		return fmt.Errorf("grid: %v out of bounds", c)
	}
	if cell.Terrain == TerrainImpassable {
		return fmt.Errorf("grid: %v is impassable", c)
	}
	if cell.OccupantID != "" && cell.OccupantID != id {
		return fmt.Errorf("grid: %v already occupied by %q", c, cell.OccupantID)
	}
	cell.OccupantID = id
	return nil
}

// ClearOccupant removes any occupant from c. No-op out of bounds.
func (g *Grid) ClearOccupant(c Coord) {
	if cell, ok := g.cells[c]; ok {
		cell.OccupantID = ""
	}
}

// Neighbors returns the in-bounds cells adjacent to c: the 4 orthogonal
// neighbors, plus diagonals when diagonal is true.
func (g *Grid) Neighbors(c Coord, diagonal bool) []Coord {
	var out []Coord
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if !diagonal && dx != 0 && dy != 0 {
				continue
			}
			n := Coord{X: c.X + dx, Y: c.Y + dy}
			if g.InBounds(n) {
				out = append(out, n)
			}
		}
	}
	return out
}

// WithinRadius returns every in-bounds cell within feet of center by
// Chebyshev distance, including center itself.
func (g *Grid) WithinRadius(center Coord, feet int) []Coord {
	r := feet / CellFeet
	var out []Coord
	for y := center.Y - r; y <= center.Y+r; y++ {
		for x := center.X - r; x <= center.X+r; x++ {
			c := Coord{X: x, Y: y}
			if g.InBounds(c) {
				out = append(out, c)
			}
		}
	}
	return out
}
