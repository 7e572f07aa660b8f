// Package kinship computes natural-language relationship labels for
// every person in a family graph, relative to a designated self.
//
// The graph's parent and spouse links are turned into an undirected
// multigraph whose traversal steps carry single-letter tokens (F for
// father, M for mother, S/D/C for son/daughter/child, H/W/P for
// husband/wife/spouse). A bounded breadth-first search from self
// collects, for each reachable person, every shortest token string —
// the relationship codes — and an ordered grammar maps codes to
// kinship terms. When several equally short codes reach one person,
// the term with the highest priority wins.
//
// Like the layout engine, everything here is a pure read of the graph:
// no state survives a call and malformed input degrades to fallback
// labels instead of failing.
package kinship

import (
	"slices"

	"github.com/pedigree-app/pedigree/pkg/person"
)

// MaxDepth bounds the breadth-first search; relationships further than
// eight steps from self receive no label.
const MaxDepth = 8

// Relationship tokens.
const (
	tokFather   = 'F'
	tokMother   = 'M'
	tokSon      = 'S'
	tokDaughter = 'D'
	tokChild    = 'C'
	tokHusband  = 'H'
	tokWife     = 'W'
	tokSpouse   = 'P'
)

// Labels computes the kinship label for every person reachable from
// self within [MaxDepth] steps. Self maps to "self". Unreachable
// persons get no entry; if selfID is not in the graph the mapping is
// empty.
func Labels(g person.Graph, selfID string) map[string]string {
	codes := Codes(g, selfID)
	labels := make(map[string]string, len(codes))
	for id, cs := range codes {
		labels[id] = bestLabel(cs, g.Person(id), g.Person(selfID))
	}
	return labels
}

// Codes returns, for every person reachable from self, the set of all
// shortest relationship codes, sorted. Equal-shortest ties (for
// example via different co-parents) are all retained because label
// derivation must consider every one of them.
func Codes(g person.Graph, selfID string) map[string][]string {
	if g.Person(selfID) == nil {
		return map[string][]string{}
	}

	adj := buildAdjacency(g)

	codes := map[string][]string{selfID: {""}}
	dist := map[string]int{selfID: 0}
	frontier := []string{selfID}

	for depth := 0; depth < MaxDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, id := range frontier {
			for _, step := range adj[id] {
				d, seen := dist[step.to]
				if seen && d != depth+1 {
					continue
				}
				if !seen {
					dist[step.to] = depth + 1
					next = append(next, step.to)
				}
				for _, c := range codes[id] {
					codes[step.to] = append(codes[step.to], c+string(step.token))
				}
			}
		}
		for _, id := range next {
			slices.Sort(codes[id])
			codes[id] = slices.Compact(codes[id])
		}
		frontier = next
	}

	return codes
}

// step is one labeled traversal edge of the undirected multigraph.
type step struct {
	to    string
	token byte
}

// buildAdjacency converts the person graph's links into token-labeled
// adjacency lists. Every relation contributes a pair of inverse edges
// so the search can walk it in either direction; dangling references
// contribute nothing. Edges are sorted for deterministic traversal.
func buildAdjacency(g person.Graph) map[string][]step {
	adj := map[string][]step{}
	seen := map[[3]string]bool{}

	add := func(from, to string, token byte) {
		key := [3]string{from, to, string(token)}
		if seen[key] {
			return
		}
		seen[key] = true
		adj[from] = append(adj[from], step{to: to, token: token})
	}

	for _, id := range g.IDs() {
		p := g[id]
		if f := g.Person(p.FatherID); f != nil {
			add(id, f.ID, tokFather)
			add(f.ID, id, childToken(p))
		}
		if m := g.Person(p.MotherID); m != nil {
			add(id, m.ID, tokMother)
			add(m.ID, id, childToken(p))
		}
		if s := g.Person(p.SpouseID); s != nil && s.ID != id {
			add(id, s.ID, spouseToken(s))
			add(s.ID, id, spouseToken(p))
		}
	}
	return adj
}

// childToken is the token emitted when walking a parent→child edge,
// chosen by the child's own gender.
func childToken(child *person.Person) byte {
	switch child.Gender {
	case person.GenderMale:
		return tokSon
	case person.GenderFemale:
		return tokDaughter
	default:
		return tokChild
	}
}

// spouseToken is the token emitted when walking toward a spouse,
// chosen by the target's gender.
func spouseToken(target *person.Person) byte {
	switch target.Gender {
	case person.GenderMale:
		return tokHusband
	case person.GenderFemale:
		return tokWife
	default:
		return tokSpouse
	}
}
