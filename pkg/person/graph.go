package person

import (
	"slices"
)

// Graph maps person IDs to persons. Key order is irrelevant; every
// read API that returns multiple persons sorts deterministically.
//
// Graph is not safe for concurrent mutation; callers serialize writes
// and recompute derived views (layout, labels) after each committed
// edit.
type Graph map[string]*Person

// Person returns the person with the given ID, or nil.
func (g Graph) Person(id string) *Person {
	if id == "" {
		return nil
	}
	return g[id]
}

// Spouse returns the person referenced by p's SpouseID, or nil.
func (g Graph) Spouse(id string) *Person {
	p := g.Person(id)
	if p == nil {
		return nil
	}
	return g.Person(p.SpouseID)
}

// Parents returns the father and mother of the given person, either of
// which may be nil.
func (g Graph) Parents(id string) (father, mother *Person) {
	p := g.Person(id)
	if p == nil {
		return nil, nil
	}
	return g.Person(p.FatherID), g.Person(p.MotherID)
}

// Children returns all persons whose FatherID or MotherID references
// the given ID, ordered by creation time.
func (g Graph) Children(id string) []*Person {
	if id == "" {
		return nil
	}
	var kids []*Person
	for _, p := range g {
		if p.FatherID == id || p.MotherID == id {
			kids = append(kids, p)
		}
	}
	sortPersons(kids)
	return kids
}

// Siblings returns all other persons sharing a non-empty FatherID or
// MotherID with the given person, ordered by creation time.
func (g Graph) Siblings(id string) []*Person {
	p := g.Person(id)
	if p == nil || (p.FatherID == "" && p.MotherID == "") {
		return nil
	}
	var sibs []*Person
	for _, q := range g {
		if q.ID == p.ID {
			continue
		}
		if (p.FatherID != "" && q.FatherID == p.FatherID) ||
			(p.MotherID != "" && q.MotherID == p.MotherID) {
			sibs = append(sibs, q)
		}
	}
	sortPersons(sibs)
	return sibs
}

// IDs returns all person IDs in sorted order.
func (g Graph) IDs() []string {
	ids := make([]string, 0, len(g))
	for id := range g {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Clone returns a deep copy of the graph.
func (g Graph) Clone() Graph {
	out := make(Graph, len(g))
	for id, p := range g {
		out[id] = p.Clone()
	}
	return out
}

// Delete removes the person and nulls out any FatherID, MotherID or
// SpouseID on remaining persons that referenced it, so a subsequent
// layout or labeling call never follows a dangling reference.
func (g Graph) Delete(id string) {
	if _, ok := g[id]; !ok {
		return
	}
	delete(g, id)
	for _, p := range g {
		if p.FatherID == id {
			p.FatherID = ""
		}
		if p.MotherID == id {
			p.MotherID = ""
		}
		if p.SpouseID == id {
			p.SpouseID = ""
		}
	}
}

// Normalize repairs the structural conventions the model does not hard
// enforce: dangling references are cleared and spouse links are made
// symmetric (A.SpouseID=B implies B.SpouseID=A). When two persons point
// at the same spouse, the earlier-created link wins and the other is
// cleared. Persons are visited in sorted ID order so the result does
// not depend on map iteration.
func (g Graph) Normalize() {
	for _, p := range g {
		if p.FatherID != "" && g[p.FatherID] == nil {
			p.FatherID = ""
		}
		if p.MotherID != "" && g[p.MotherID] == nil {
			p.MotherID = ""
		}
		if p.SpouseID != "" && g[p.SpouseID] == nil {
			p.SpouseID = ""
		}
		if p.SpouseID == p.ID {
			p.SpouseID = ""
		}
	}

	for _, id := range g.IDs() {
		p := g[id]
		if p.SpouseID == "" {
			continue
		}
		q := g[p.SpouseID]
		if q.SpouseID == "" {
			q.SpouseID = p.ID
		} else if q.SpouseID != p.ID {
			// Contested spouse: keep the link from the earlier side.
			if r := g[q.SpouseID]; r != nil && r.Before(p) {
				p.SpouseID = ""
			} else {
				q.SpouseID = p.ID
			}
		}
	}
}

// sortPersons orders persons by creation time with ID tiebreak.
func sortPersons(ps []*Person) {
	slices.SortFunc(ps, func(a, b *Person) int {
		if a.Before(b) {
			return -1
		}
		if b.Before(a) {
			return 1
		}
		return 0
	})
}
