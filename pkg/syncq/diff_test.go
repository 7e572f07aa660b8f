package syncq

import (
	"reflect"
	"testing"
	"time"

	"github.com/pedigree-app/pedigree/pkg/person"
)

func graphOf(ps ...*person.Person) person.Graph {
	g := person.Graph{}
	for _, p := range ps {
		g[p.ID] = p
	}
	return g
}

func TestDiff_UpsertsNewAndChanged(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	base := graphOf(
		&person.Person{ID: "me", Name: "Alex", CreatedAt: created},
		&person.Person{ID: "dad", Name: "Robert", CreatedAt: created},
	)
	current := base.Clone()
	current["me"].Name = "Alexander"
	current["kid"] = &person.Person{ID: "kid", Name: "Noah", CreatedAt: created}

	p := Diff(base, current)
	if len(p.Deletes) != 0 {
		t.Errorf("Deletes = %v, want none", p.Deletes)
	}
	if len(p.Upserts) != 2 {
		t.Fatalf("Upserts = %v, want me and kid only", p.Upserts)
	}
	if p.Upserts["me"].Name != "Alexander" || p.Upserts["kid"] == nil {
		t.Errorf("Upserts = %v, want renamed me and new kid", p.Upserts)
	}
	if p.Upserts["dad"] != nil {
		t.Error("unchanged person included in the patch")
	}
}

func TestDiff_DeletesMissingSorted(t *testing.T) {
	base := graphOf(
		&person.Person{ID: "me", Name: "Alex"},
		&person.Person{ID: "sis", Name: "Julia"},
		&person.Person{ID: "dad", Name: "Robert"},
	)
	current := graphOf(&person.Person{ID: "me", Name: "Alex"})

	p := Diff(base, current)
	if want := []string{"dad", "sis"}; !reflect.DeepEqual(p.Deletes, want) {
		t.Errorf("Deletes = %v, want %v", p.Deletes, want)
	}
	if len(p.Upserts) != 0 {
		t.Errorf("Upserts = %v, want none", p.Upserts)
	}
}

func TestDiff_EmptyWhenIdentical(t *testing.T) {
	base := graphOf(&person.Person{ID: "me", Name: "Alex", FatherID: "dad"})
	if p := Diff(base, base.Clone()); !p.IsEmpty() {
		t.Errorf("Diff() of identical graphs = %+v, want empty", p)
	}
}

func TestDiff_NilBaseUpsertsEverything(t *testing.T) {
	current := graphOf(
		&person.Person{ID: "me", Name: "Alex"},
		&person.Person{ID: "dad", Name: "Robert"},
	)
	p := Diff(nil, current)
	if len(p.Upserts) != 2 || len(p.Deletes) != 0 {
		t.Errorf("Diff(nil, g) = %+v, want every person upserted", p)
	}
}

func TestDiff_ClonesUpserts(t *testing.T) {
	current := graphOf(&person.Person{ID: "me", Name: "Alex"})
	p := Diff(nil, current)

	p.Upserts["me"].Name = "Mutated"
	if current["me"].Name != "Alex" {
		t.Error("patch mutation leaked into the source graph")
	}
}
