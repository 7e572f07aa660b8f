package syncq

import (
	"slices"

	"github.com/pedigree-app/pedigree/pkg/person"
)

// Diff computes the patch that transforms base into current: persons
// added or changed become upserts, persons present only in base become
// deletes. Deletes are sorted so the patch is deterministic. Neither
// graph is mutated, and the upserts are deep copies.
func Diff(base, current person.Graph) Patch {
	var p Patch
	for id, pr := range current {
		if pr == nil {
			continue
		}
		if old := base.Person(id); !old.Equal(pr) {
			if p.Upserts == nil {
				p.Upserts = map[string]*person.Person{}
			}
			p.Upserts[id] = pr.Clone()
		}
	}
	for id := range base {
		if current.Person(id) == nil {
			p.Deletes = append(p.Deletes, id)
		}
	}
	slices.Sort(p.Deletes)
	return p
}
