// Package search implements the cabin searches used while boarding: shortest
// paths, blockers in a seat aisle and free holding spaces for a shuffle.
//
// All edges are unit cost, so shortest paths are found with a plain
// breadth-first search.
package search

import (
	"cabin_boarding/internal/cabin"
	"cabin_boarding/internal/models"
)

// Goal is either a ticket seat or an explicit node.
type Goal struct {
	ticket *models.Ticket
	target *cabin.Node
}

// SeatGoal targets the seat matching t.
func SeatGoal(t models.Ticket) Goal {
	return Goal{ticket: &t}
}

// NodeGoal targets a specific node.
func NodeGoal(n *cabin.Node) Goal {
	return Goal{target: n}
}

func (g Goal) reached(n *cabin.Node) bool {
	if g.target != nil {
		return n == g.target
	}
	if g.ticket != nil {
		return n.IsTicketSeat(*g.ticket)
	}
	return false
}

// Result contains the outcome of a search. Path excludes the start node and
// its first element is the next hop; an empty found path means the start
// already satisfies the goal.
type Result struct {
	Path          []*cabin.Node
	ExpandedNodes int
	Found         bool
}

// ShortestPath runs a level-by-level BFS from start. The first node found
// that satisfies the goal wins.
func ShortestPath(start *cabin.Node, goal Goal) Result {
	if goal.reached(start) {
		return Result{Path: []*cabin.Node{}, Found: true}
	}

	levels := map[*cabin.Node]int{start: 0}
	frontier := []*cabin.Node{start}
	var goalNode *cabin.Node
	level := 0
	expanded := 0

	for len(frontier) > 0 && goalNode == nil {
		level++
		var next []*cabin.Node
	expand:
		for _, current := range frontier {
			expanded++
			for _, neighbor := range current.Neighbors() {
				if _, seen := levels[neighbor]; seen {
					continue
				}
				levels[neighbor] = level
				if goal.reached(neighbor) {
					goalNode = neighbor
					break expand
				}
				next = append(next, neighbor)
			}
		}
		frontier = next
	}

	if goalNode == nil {
		return Result{ExpandedNodes: expanded}
	}
	return Result{
		Path:          reconstructPath(levels, goalNode, level),
		ExpandedNodes: expanded,
		Found:         true,
	}
}

// reconstructPath walks back from the goal, at each level picking the first
// neighbour recorded one level closer to the start.
func reconstructPath(levels map[*cabin.Node]int, goal *cabin.Node, level int) []*cabin.Node {
	path := make([]*cabin.Node, level)
	current := goal
	for l := level; l >= 1; l-- {
		path[l-1] = current
		if l == 1 {
			break
		}
		for _, prev := range current.Neighbors() {
			if d, ok := levels[prev]; ok && d == l-1 {
				current = prev
				break
			}
		}
	}
	return path
}
