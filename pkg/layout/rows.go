package layout

import (
	"slices"

	"github.com/pedigree-app/pedigree/pkg/person"
)

// rowKey identifies one horizontal run of cards.
type rowKey struct {
	gen  int
	side person.Side
}

// unit is the atomic placement element of a row: a lone person, or an
// adjacent spousal pair. left/right are screen positions — for a pair,
// the member in left gets the smaller x coordinate.
type unit struct {
	left  string
	right string // empty for a lone person
}

func (u unit) size() int {
	if u.right == "" {
		return 1
	}
	return 2
}

// row is an ordered list of units. For side rows the order is
// innermost-first (closest to the center column first); for center
// rows it is the base creation order.
type row struct {
	key   rowKey
	units []unit
}

func (r *row) memberCount() int {
	n := 0
	for _, u := range r.units {
		n += u.size()
	}
	return n
}

// assembleRows groups placed persons into (generation, side) rows,
// pairs spouses into units, and orders each row: base order ascending
// by creation time, spouse pairs kept adjacent, and side rows re-ranked
// so blood relatives of self sit closer to the center column than
// in-laws.
func assembleRows(g person.Graph, opts Options, placements map[string]placement) map[rowKey]*row {
	members := map[rowKey][]*person.Person{}
	for id, at := range placements {
		k := rowKey{gen: at.gen, side: at.side}
		members[k] = append(members[k], g.Person(id))
	}

	blood := bloodRelatives(g, opts.SelfID, placements)

	rows := make(map[rowKey]*row, len(members))
	for k, ps := range members {
		slices.SortFunc(ps, func(a, b *person.Person) int {
			if a.Before(b) {
				return -1
			}
			if b.Before(a) {
				return 1
			}
			return 0
		})

		units := pairUnits(g, k, ps, placements)

		if k.side != person.SideCenter {
			rankUnits(units, blood)
		}

		rows[k] = &row{key: k, units: units}
	}
	return rows
}

// pairUnits walks the base-ordered row and folds spouse pairs into
// single units, preserving the base order of the earlier member.
func pairUnits(g person.Graph, k rowKey, ordered []*person.Person, placements map[string]placement) []unit {
	consumed := map[string]bool{}
	var units []unit

	for _, p := range ordered {
		if consumed[p.ID] {
			continue
		}
		consumed[p.ID] = true

		sp := g.Spouse(p.ID)
		if sp != nil && !consumed[sp.ID] {
			if at, ok := placements[sp.ID]; ok && at.gen == k.gen && at.side == k.side {
				consumed[sp.ID] = true
				units = append(units, orientPair(p, sp))
				continue
			}
		}
		units = append(units, unit{left: p.ID})
	}
	return units
}

// orientPair decides which spouse takes the left (smaller x) slot:
//  1. a male/female pair puts the male left;
//  2. otherwise a differing lineage hint decides;
//  3. otherwise the earlier-created member is left;
//  4. otherwise lexicographic ID order.
func orientPair(a, b *person.Person) unit {
	switch {
	case a.Gender == person.GenderMale && b.Gender == person.GenderFemale:
		return unit{left: a.ID, right: b.ID}
	case a.Gender == person.GenderFemale && b.Gender == person.GenderMale:
		return unit{left: b.ID, right: a.ID}
	}

	if a.LineageSideHint != b.LineageSideHint {
		if a.LineageSideHint == person.SideLeft || b.LineageSideHint == person.SideRight {
			return unit{left: a.ID, right: b.ID}
		}
		if b.LineageSideHint == person.SideLeft || a.LineageSideHint == person.SideRight {
			return unit{left: b.ID, right: a.ID}
		}
	}

	if a.Before(b) {
		return unit{left: a.ID, right: b.ID}
	}
	if b.Before(a) {
		return unit{left: b.ID, right: a.ID}
	}
	if a.ID < b.ID {
		return unit{left: a.ID, right: b.ID}
	}
	return unit{left: b.ID, right: a.ID}
}

// rankUnits stably reorders a side row's units so units whose members
// are all blood relatives of self come first (innermost), mixed
// blood/in-law units next, and all-in-law units last. Ties keep the
// creation order already established.
func rankUnits(units []unit, blood map[string]bool) {
	rank := func(u unit) int {
		n, b := 1, 0
		if blood[u.left] {
			b++
		}
		if u.right != "" {
			n = 2
			if blood[u.right] {
				b++
			}
		}
		switch {
		case b == n:
			return 0 // all blood
		case b > 0:
			return 1 // mixed
		default:
			return 2 // all in-law
		}
	}
	slices.SortStableFunc(units, func(a, b unit) int {
		return rank(a) - rank(b)
	})
}

// bloodRelatives returns the set of included persons reachable from
// self through parent/child links only. Spouse links are excluded, so
// anyone reachable solely through a marriage is an in-law.
func bloodRelatives(g person.Graph, selfID string, placements map[string]placement) map[string]bool {
	blood := map[string]bool{selfID: true}
	queue := []string{selfID}

	push := func(id string) {
		if id == "" || blood[id] {
			return
		}
		if _, ok := placements[id]; !ok {
			return
		}
		blood[id] = true
		queue = append(queue, id)
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		p := g.Person(id)
		if p == nil {
			continue
		}
		push(p.FatherID)
		push(p.MotherID)
		for _, child := range g.Children(id) {
			push(child.ID)
		}
	}
	return blood
}
