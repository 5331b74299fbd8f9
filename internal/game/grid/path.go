package grid

import "container/heap"

// PathFailure is the machine-stable reason a path request produced no
// movement at all.
type PathFailure string

const (
	FailNone         PathFailure = ""
	FailOutOfBounds  PathFailure = "out_of_bounds"
	FailImpassable   PathFailure = "impassable"
	FailOccupied     PathFailure = "occupied"
	FailNoRoute      PathFailure = "no_route"
	FailSameCell     PathFailure = "same_cell"
)

// PathRequest describes one pathfinding query.
type PathRequest struct {
	Start  Coord
	End    Coord
	Budget int // movement budget in feet
	// MoverID identifies the mover so its own start cell does not read
	// as occupied.
	MoverID string
	Profile MoveProfile
	// IsAlly classifies the occupant of a cell: allies may be moved
	// through but not ended on; everyone else blocks the cell entirely.
	// A nil IsAlly treats every occupant as blocking.
	IsAlly func(occupantID string) bool
}

// PathResult is the outcome of FindPath.
type PathResult struct {
	// Found is true when the request was valid and some movement toward
	// the destination is possible (possibly zero cells when the budget
	// affords none).
	Found bool
	// Complete is true when the returned path reaches End within budget.
	Complete bool
	// Path holds the cells from Start to the final reached cell,
	// inclusive of both.
	Path []Coord
	// Cost is the exact summed entry cost of the returned path in feet.
	Cost int
	// Failure carries the reason when Found is false.
	Failure PathFailure
}

// node is an ephemeral A* search record.
type node struct {
	coord  Coord
	g      int // cost from start in feet
	f      int // g + heuristic
	parent *node
	index  int // heap bookkeeping
}

type nodeHeap []*node

func (h nodeHeap) Len() int            { return len(h) }
func (h nodeHeap) Less(i, j int) bool  { return h[i].f < h[j].f }
func (h nodeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *nodeHeap) Push(x interface{}) { n := x.(*node); n.index = len(*h); *h = append(*h, n) }
func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*h = old[:len(old)-1]
	return n
}

// traversable reports whether the mover may pass through c mid-path.
// Enemy-occupied cells are never traversable; ally-occupied cells are.
func (req *PathRequest) traversable(g *Grid, c Coord) bool {
	cell, ok := g.cells[c]
	if !ok || cell.Terrain == TerrainImpassable {
		return false
	}
	if cell.OccupantID == "" || cell.OccupantID == req.MoverID {
		return true
	}
	return req.IsAlly != nil && req.IsAlly(cell.OccupantID)
}

// occupiedByAlly reports whether c holds an ally of the mover.
func (req *PathRequest) occupiedByAlly(g *Grid, c Coord) bool {
	cell, ok := g.cells[c]
	if !ok || cell.OccupantID == "" || cell.OccupantID == req.MoverID {
		return false
	}
	return req.IsAlly != nil && req.IsAlly(cell.OccupantID)
}

// FindPath runs weighted A* from req.Start to req.End with heuristic
// Chebyshev distance x 5 ft. When the cheapest full path costs more
// than the budget, the result is the longest affordable prefix with its
// exact cost rather than a failure. The final cell of any returned path
// is never ally-occupied.
//
// Precondition: req.Start must be in bounds.
// Postcondition: result.Cost equals the sum of per-cell entry costs of
// result.Path.
func (g *Grid) FindPath(req PathRequest) PathResult {
	if !g.InBounds(req.End) {
		return PathResult{Failure: FailOutOfBounds}
	}
	endCell := g.cells[req.End]
	if endCell.Terrain == TerrainImpassable {
		return PathResult{Failure: FailImpassable}
	}
	if endCell.OccupantID != "" && endCell.OccupantID != req.MoverID {
		return PathResult{Failure: FailOccupied}
	}
	if req.Start == req.End {
		return PathResult{Failure: FailSameCell}
	}

	full := g.searchFullPath(req)
	if full == nil {
		return PathResult{Failure: FailNoRoute}
	}

	path := unwind(full)
	if full.g <= req.Budget {
		return PathResult{Found: true, Complete: true, Path: path, Cost: full.g}
	}
	return g.truncateToBudget(req, path)
}

// searchFullPath runs budget-free A* and returns the goal node, or nil
// when no route exists.
func (g *Grid) searchFullPath(req PathRequest) *node {
	start := &node{coord: req.Start, g: 0, f: req.Start.DistanceFeet(req.End)}
	open := &nodeHeap{}
	heap.Init(open)
	heap.Push(open, start)

	best := map[Coord]int{req.Start: 0}
	for open.Len() > 0 {
		cur := heap.Pop(open).(*node)
		if cur.coord == req.End {
			return cur
		}
		if cur.g > best[cur.coord] {
			continue // stale heap entry
		}
		for _, next := range g.Neighbors(cur.coord, true) {
			if !req.traversable(g, next) {
				continue
			}
			step := g.EntryCost(cur.coord, next, req.Profile)
			if step < 0 {
				continue
			}
			tentative := cur.g + step
			if prev, seen := best[next]; seen && tentative >= prev {
				continue
			}
			best[next] = tentative
			heap.Push(open, &node{
				coord:  next,
				g:      tentative,
				f:      tentative + next.DistanceFeet(req.End),
				parent: cur,
			})
		}
	}
	return nil
}

// truncateToBudget walks the full path forward, keeping the longest
// prefix whose cumulative cost fits the budget and whose final cell is
// not ally-occupied.
func (g *Grid) truncateToBudget(req PathRequest, path []Coord) PathResult {
	afford := []Coord{path[0]}
	cost := 0
	costs := []int{0}
	for i := 1; i < len(path); i++ {
		step := g.EntryCost(path[i-1], path[i], req.Profile)
		if cost+step > req.Budget {
			break
		}
		cost += step
		afford = append(afford, path[i])
		costs = append(costs, cost)
	}
	// Never finish movement on an ally's cell; back off until clear.
	for len(afford) > 1 && req.occupiedByAlly(g, afford[len(afford)-1]) {
		afford = afford[:len(afford)-1]
		costs = costs[:len(costs)-1]
	}
	return PathResult{Found: true, Path: afford, Cost: costs[len(costs)-1]}
}

// unwind rebuilds the start-to-goal coordinate list from a goal node.
func unwind(goal *node) []Coord {
	var rev []Coord
	for n := goal; n != nil; n = n.parent {
		rev = append(rev, n.coord)
	}
	out := make([]Coord, len(rev))
	for i := range rev {
		out[i] = rev[len(rev)-1-i]
	}
	return out
}

// ReachableCell pairs a destination with its exact movement cost.
type ReachableCell struct {
	Coord Coord
	Cost  int
}

// ReachableCells floods outward from req.Start (Dijkstra order) within
// req.Budget feet and returns every cell the mover could legally end
// movement on, with its exact cost. Ally-occupied cells may be passed
// through but do not appear as destinations. req.End is ignored.
func (g *Grid) ReachableCells(req PathRequest) []ReachableCell {
	start := &node{coord: req.Start}
	open := &nodeHeap{}
	heap.Init(open)
	heap.Push(open, start)

	best := map[Coord]int{req.Start: 0}
	var out []ReachableCell
	for open.Len() > 0 {
		cur := heap.Pop(open).(*node)
		if cur.g > best[cur.coord] {
			continue
		}
		if cur.coord != req.Start && !req.occupiedByAlly(g, cur.coord) {
			out = append(out, ReachableCell{Coord: cur.coord, Cost: cur.g})
		}
		for _, next := range g.Neighbors(cur.coord, true) {
			if !req.traversable(g, next) {
				continue
			}
			step := g.EntryCost(cur.coord, next, req.Profile)
			if step < 0 {
				continue
			}
			tentative := cur.g + step
			if tentative > req.Budget {
				continue
			}
			if prev, seen := best[next]; seen && tentative >= prev {
				continue
			}
			best[next] = tentative
			heap.Push(open, &node{coord: next, g: tentative, f: tentative})
		}
	}
	return out
}
