package search

import (
	"github.com/zyedidia/generic/mapset"

	"cabin_boarding/internal/cabin"
)

// FreeSpaces holds the holding spots found for a shuffle. Both chains start
// next to the ticket holder and extend away from the aisle being entered.
// When the search had to walk further before branching off, the walked nodes
// prefix both chains.
type FreeSpaces struct {
	TicketHolder  []*cabin.Node
	Blockers      []*cabin.Node
	HasFreeSpaces bool
}

// HolderSlot is where the ticket holder waits.
func (fs FreeSpaces) HolderSlot() *cabin.Node {
	if len(fs.TicketHolder) == 0 {
		return nil
	}
	return fs.TicketHolder[len(fs.TicketHolder)-1]
}

// BlockerSlots returns the deepest n nodes of the blocker chain, deepest
// first. The blocker nearest the aisle entrance leaves first and must walk
// furthest, otherwise it walls in the ones behind it.
func (fs FreeSpaces) BlockerSlots(n int) []*cabin.Node {
	if n > len(fs.Blockers) {
		n = len(fs.Blockers)
	}
	out := make([]*cabin.Node, 0, n)
	for i := len(fs.Blockers) - 1; i >= len(fs.Blockers)-n; i-- {
		out = append(out, fs.Blockers[i])
	}
	return out
}

// Nodes returns every distinct node of both chains.
func (fs FreeSpaces) Nodes() []*cabin.Node {
	seen := mapset.New[*cabin.Node]()
	var out []*cabin.Node
	for _, chain := range [][]*cabin.Node{fs.TicketHolder, fs.Blockers} {
		for _, n := range chain {
			if seen.Has(n) {
				continue
			}
			seen.Put(n)
			out = append(out, n)
		}
	}
	return out
}

// FindFreeSpaces looks around start, where the ticket holder stands, for one
// free node for the ticket holder and a chain of needed free nodes for the
// blockers. Nodes on pathToSeat are never used. A result without free spaces
// is normal and means the caller should retry later.
func FindFreeSpaces(pathToSeat []*cabin.Node, start *cabin.Node, needed int, occupants Occupants) FreeSpaces {
	if len(pathToSeat) == 0 || needed < 1 {
		return FreeSpaces{}
	}
	f := &spaceFinder{
		needed:    needed,
		occupants: occupants,
		excluded:  mapset.New[*cabin.Node](),
		visited:   mapset.New[*cabin.Node](),
	}
	for _, n := range pathToSeat {
		f.excluded.Put(n)
	}
	return f.search(start)
}

type spaceFinder struct {
	needed    int
	occupants Occupants
	excluded  mapset.Set[*cabin.Node]
	// visited holds the nodes walked through plus nodes claimed by a branch.
	visited mapset.Set[*cabin.Node]
}

func (f *spaceFinder) search(current *cabin.Node) FreeSpaces {
	if f.visited.Has(current) {
		return FreeSpaces{}
	}
	f.visited.Put(current)

	var holder, chain []*cabin.Node
	for _, neighbor := range current.Neighbors() {
		if holder != nil && chain != nil {
			break
		}
		if f.excluded.Has(neighbor) {
			continue
		}
		branch := f.longestFree(neighbor, f.needed)
		if chain == nil && len(branch) >= f.needed {
			chain = branch
			f.claim(chain)
			continue
		}
		if holder == nil && len(branch) >= 1 {
			holder = branch[:1]
			f.claim(holder)
		}
	}
	if holder != nil && chain != nil {
		return FreeSpaces{TicketHolder: holder, Blockers: chain, HasFreeSpaces: true}
	}
	f.unclaim(holder)
	f.unclaim(chain)

	// walk one step further and try branching off there
	for _, next := range current.Neighbors() {
		if f.excluded.Has(next) || f.visited.Has(next) || f.occupied(next) {
			continue
		}
		deeper := f.search(next)
		if deeper.HasFreeSpaces {
			return FreeSpaces{
				TicketHolder:  append([]*cabin.Node{next}, deeper.TicketHolder...),
				Blockers:      append([]*cabin.Node{next}, deeper.Blockers...),
				HasFreeSpaces: true,
			}
		}
	}
	return FreeSpaces{}
}

// longestFree returns the longest simple path of free nodes starting at node,
// at most max long.
func (f *spaceFinder) longestFree(node *cabin.Node, max int) []*cabin.Node {
	if max == 0 || f.visited.Has(node) || f.excluded.Has(node) || f.occupied(node) {
		return nil
	}
	f.visited.Put(node)
	var best []*cabin.Node
	for _, neighbor := range node.Neighbors() {
		sub := f.longestFree(neighbor, max-1)
		if len(sub) > len(best) {
			best = sub
		}
	}
	f.visited.Remove(node)
	return append([]*cabin.Node{node}, best...)
}

func (f *spaceFinder) occupied(n *cabin.Node) bool {
	_, ok := f.occupants.OccupantAt(n.ID)
	return ok
}

func (f *spaceFinder) claim(nodes []*cabin.Node) {
	for _, n := range nodes {
		f.visited.Put(n)
	}
}

func (f *spaceFinder) unclaim(nodes []*cabin.Node) {
	for _, n := range nodes {
		f.visited.Remove(n)
	}
}
