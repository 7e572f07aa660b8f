package layout

import (
	"slices"

	"github.com/pedigree-app/pedigree/pkg/person"
)

// placement is the provisional (generation, side) cell assigned to an
// included person during traversal.
type placement struct {
	gen  int
	side person.Side
}

// traverse walks the graph outward from self and assigns every reached
// person a placement. Assignment is first-wins: a person already placed
// is never re-queued. Explicit lineage hints are applied afterwards by
// applyHints so the outcome does not depend on discovery order.
//
// The worklist and placement map are function-local and discarded on
// return; traverse never mutates the graph.
func traverse(g person.Graph, opts Options) map[string]placement {
	placements := map[string]placement{
		opts.SelfID: {gen: 0, side: person.SideCenter},
	}
	queue := []string{opts.SelfID}

	assign := func(id string, p placement) {
		if id == "" || g.Person(id) == nil {
			return
		}
		if _, seen := placements[id]; seen {
			return
		}
		placements[id] = p
		queue = append(queue, id)
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		cur := g.Person(id)
		at := placements[id]

		// Ancestors.
		if abs(at.gen) < opts.MaxAncestorDepth {
			fatherSide, motherSide := parentSides(cur, at, opts.SelfID)
			assign(cur.FatherID, placement{gen: at.gen - 1, side: fatherSide})
			assign(cur.MotherID, placement{gen: at.gen - 1, side: motherSide})
		}

		// Descendants. Children of a side-branch relative inherit the
		// side; children along self's direct line stay on center.
		if at.gen < opts.MaxDescendantDepth {
			for _, child := range g.Children(id) {
				assign(child.ID, placement{gen: at.gen + 1, side: at.side})
			}
		}

		// Spouse and siblings share the cell.
		assign(cur.SpouseID, at)
		for _, sib := range g.Siblings(id) {
			assign(sib.ID, at)
		}
	}

	return placements
}

// parentSides decides which branch a person's parents belong to.
//
// Self's father branch is fixed to left (paternal) and mother branch to
// right (maternal). A person already on a side branch passes that side
// to both parents: branches never cross back to center. For any other
// center-line person (spouse, sibling, descendant) the person's own
// gender is the heuristic default: a man's parents read as a paternal
// branch, a woman's as maternal.
func parentSides(p *person.Person, at placement, selfID string) (father, mother person.Side) {
	if p.ID == selfID {
		return person.SideLeft, person.SideRight
	}
	if at.side != person.SideCenter {
		return at.side, at.side
	}
	s := sideForGender(p)
	return s, s
}

// sideForGender maps a center-line person to the branch their parents
// are placed on, honoring an explicit hint over the gender heuristic.
func sideForGender(p *person.Person) person.Side {
	if p.LineageSideHint == person.SideLeft || p.LineageSideHint == person.SideRight {
		return p.LineageSideHint
	}
	if p.Gender == person.GenderFemale {
		return person.SideRight
	}
	return person.SideLeft
}

// applyHints runs the second phase of side assignment: every included
// person carrying an explicit LineageSideHint that disagrees with their
// provisional side is flipped, and the flip is propagated through the
// person's branch (spouse, siblings, ancestors, and side-branch
// descendants reached from them). Hints are applied in sorted ID order,
// so conflicting hints across intermarried branches resolve
// deterministically rather than by traversal arrival order.
//
// Hints never move a person off the center line: self, their spouse and
// siblings are structural.
func applyHints(g person.Graph, opts Options, placements map[string]placement) {
	var hinted []string
	for id := range placements {
		p := g.Person(id)
		if p == nil || p.ID == opts.SelfID {
			continue
		}
		hint := p.LineageSideHint
		if hint != person.SideLeft && hint != person.SideRight {
			continue
		}
		if at := placements[id]; at.side != person.SideCenter && at.side != hint {
			hinted = append(hinted, id)
		}
	}
	slices.Sort(hinted)

	for _, id := range hinted {
		from := placements[id].side
		to := g.Person(id).LineageSideHint
		if from == person.SideCenter || from == to {
			continue // corrected by an earlier hint
		}
		repropagate(g, placements, id, from, to)
	}
}

// repropagate flips a person from one side to another and walks their
// branch, flipping every connected person still on the old side.
// Center-line persons act as a boundary: the walk never crosses them.
func repropagate(g person.Graph, placements map[string]placement, root string, from, to person.Side) {
	queue := []string{root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		at, ok := placements[id]
		if !ok || at.side != from {
			continue
		}
		at.side = to
		placements[id] = at

		p := g.Person(id)
		next := []string{p.FatherID, p.MotherID, p.SpouseID}
		for _, child := range g.Children(id) {
			next = append(next, child.ID)
		}
		for _, sib := range g.Siblings(id) {
			next = append(next, sib.ID)
		}
		for _, n := range next {
			if n == "" {
				continue
			}
			if at, ok := placements[n]; ok && at.side == from {
				queue = append(queue, n)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
