// Package person defines the family graph data model shared by the
// layout engine, the kinship labeler, the renderer, and the sync
// backend.
//
// A [Graph] maps person IDs to [Person] records. Parent and spouse
// links are weak references: an unset ID means "unknown", and a
// reference to a missing person is tolerated by every consumer (it is
// simply not followed). The graph is owned by the caller; the layout
// and kinship packages only read it and return derived views.
package person

import (
	"time"

	"github.com/google/uuid"
)

// Gender of a person. Unknown is the zero value and the default for
// persons whose gender was never recorded.
type Gender string

// Gender values.
const (
	GenderUnknown Gender = ""
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
)

// Side is the lineage branch a person is assigned to, relative to self.
type Side string

// Side values. Left is the paternal branch, right the maternal branch,
// center is self's own generation line (spouse, siblings, descendants).
const (
	SideCenter Side = "center"
	SideLeft   Side = "left"
	SideRight  Side = "right"
)

// Person is a node in the family graph.
//
// FatherID, MotherID and SpouseID are weak references to other persons
// in the same graph. Spouse linkage is conceptually symmetric but the
// model does not enforce it; use [Graph.Normalize] after writes.
type Person struct {
	ID        string    `json:"id" bson:"id"`
	Name      string    `json:"name" bson:"name"`
	Gender    Gender    `json:"gender,omitempty" bson:"gender,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	// BirthDate is optional and serves as an ordering fallback when
	// two persons share the same CreatedAt.
	BirthDate *time.Time `json:"birth_date,omitempty" bson:"birth_date,omitempty"`

	FatherID string `json:"father_id,omitempty" bson:"father_id,omitempty"`
	MotherID string `json:"mother_id,omitempty" bson:"mother_id,omitempty"`
	SpouseID string `json:"spouse_id,omitempty" bson:"spouse_id,omitempty"`

	// LineageSideHint overrides automatic branch inference for this
	// person: "left" pins the paternal branch, "right" the maternal.
	// Empty means infer.
	LineageSideHint Side `json:"lineage_side_hint,omitempty" bson:"lineage_side_hint,omitempty"`

	PhotoURL string `json:"photo_url,omitempty" bson:"photo_url,omitempty"`
	Note     string `json:"note,omitempty" bson:"note,omitempty"`
}

// New creates a person with a fresh UUID and CreatedAt set to now.
func New(name string) *Person {
	return &Person{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}

// Clone returns a deep copy of the person.
func (p *Person) Clone() *Person {
	cp := *p
	if p.BirthDate != nil {
		bd := *p.BirthDate
		cp.BirthDate = &bd
	}
	return &cp
}

// Equal reports whether p and q carry the same field values.
// Timestamps compare by instant, so a copy that went through JSON and
// lost its monotonic reading still matches the original.
func (p *Person) Equal(q *Person) bool {
	if p == nil || q == nil {
		return p == q
	}
	switch {
	case p.BirthDate == nil && q.BirthDate != nil:
		return false
	case p.BirthDate != nil && (q.BirthDate == nil || !p.BirthDate.Equal(*q.BirthDate)):
		return false
	}
	return p.ID == q.ID &&
		p.Name == q.Name &&
		p.Gender == q.Gender &&
		p.CreatedAt.Equal(q.CreatedAt) &&
		p.FatherID == q.FatherID &&
		p.MotherID == q.MotherID &&
		p.SpouseID == q.SpouseID &&
		p.LineageSideHint == q.LineageSideHint &&
		p.PhotoURL == q.PhotoURL &&
		p.Note == q.Note
}

// SortTime returns the timestamp used for deterministic ordering:
// CreatedAt, falling back to BirthDate when CreatedAt is zero.
func (p *Person) SortTime() time.Time {
	if p.CreatedAt.IsZero() && p.BirthDate != nil {
		return *p.BirthDate
	}
	return p.CreatedAt
}

// Before reports whether p orders before q: by [Person.SortTime],
// with lexicographic ID comparison as the final deterministic tiebreak.
func (p *Person) Before(q *Person) bool {
	pt, qt := p.SortTime(), q.SortTime()
	if !pt.Equal(qt) {
		return pt.Before(qt)
	}
	return p.ID < q.ID
}
