package errors

import (
	"github.com/pedigree-app/pedigree/pkg/person"
)

// ValidateGraph checks the structural conventions of a family graph and
// returns the first violation found, or nil.
//
// The checks are diagnostic: the layout engine and kinship labeler
// tolerate every condition reported here (dangling references are
// skipped, cycles terminate via visited sets). Validation exists so the
// backend and CLI can surface silently-wrong data to the user before it
// produces a confusing diagram.
//
// Rules:
//   - Every FatherID/MotherID/SpouseID must reference an existing person
//   - No person may reference themselves as parent or spouse
//   - Spouse links must be symmetric
//   - Key and embedded ID must agree
func ValidateGraph(g person.Graph) error {
	for _, id := range g.IDs() {
		p := g[id]
		if p.ID != id {
			return New(ErrCodeInvalidGraph, "person keyed %q carries id %q", id, p.ID)
		}
		if p.FatherID == id || p.MotherID == id {
			return New(ErrCodeInvalidPerson, "person %q is their own parent", id)
		}
		if p.SpouseID == id {
			return New(ErrCodeInvalidPerson, "person %q is their own spouse", id)
		}
		for _, ref := range []struct{ field, id string }{
			{"father", p.FatherID},
			{"mother", p.MotherID},
			{"spouse", p.SpouseID},
		} {
			if ref.id != "" && g[ref.id] == nil {
				return New(ErrCodeInvalidGraph, "person %q: dangling %s reference %q", id, ref.field, ref.id)
			}
		}
		if p.SpouseID != "" {
			if sp := g[p.SpouseID]; sp != nil && sp.SpouseID != p.ID {
				return New(ErrCodeInvalidGraph, "asymmetric spouse link between %q and %q", id, p.SpouseID)
			}
		}
	}
	return nil
}

// ValidatePerson checks a single person record before it enters a
// graph. References are not resolved here because the record may arrive
// ahead of the persons it mentions (delta patches apply in one batch);
// use [ValidateGraph] after the batch commits.
func ValidatePerson(p *person.Person) error {
	if p == nil {
		return New(ErrCodeInvalidPerson, "person is nil")
	}
	if p.ID == "" {
		return New(ErrCodeInvalidPerson, "person id must not be empty")
	}
	if len(p.ID) > 128 {
		return New(ErrCodeInvalidPerson, "person id too long (max 128 characters)")
	}
	switch p.Gender {
	case person.GenderUnknown, person.GenderMale, person.GenderFemale:
	default:
		return New(ErrCodeInvalidPerson, "person %q: unknown gender %q", p.ID, p.Gender)
	}
	switch p.LineageSideHint {
	case "", person.SideLeft, person.SideRight:
	default:
		return New(ErrCodeInvalidPerson, "person %q: lineage hint must be left or right, got %q", p.ID, p.LineageSideHint)
	}
	if p.FatherID == p.ID || p.MotherID == p.ID || p.SpouseID == p.ID {
		return New(ErrCodeInvalidPerson, "person %q references themselves", p.ID)
	}
	return nil
}
