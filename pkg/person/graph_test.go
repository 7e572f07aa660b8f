package person

import (
	"testing"
	"time"
)

// at builds a deterministic creation time n minutes after a fixed base.
func at(n int) time.Time {
	return time.Date(2024, 3, 1, 10, n, 0, 0, time.UTC)
}

func testFamily() Graph {
	return Graph{
		"dad": {ID: "dad", Name: "Robert", Gender: GenderMale, CreatedAt: at(0), SpouseID: "mom"},
		"mom": {ID: "mom", Name: "Elena", Gender: GenderFemale, CreatedAt: at(1), SpouseID: "dad"},
		"me":  {ID: "me", Name: "Alex", Gender: GenderMale, CreatedAt: at(2), FatherID: "dad", MotherID: "mom"},
		"sis": {ID: "sis", Name: "Julia", Gender: GenderFemale, CreatedAt: at(3), FatherID: "dad", MotherID: "mom"},
	}
}

func TestGraph_Lookups(t *testing.T) {
	g := testFamily()

	if g.Person("") != nil {
		t.Error("Person(\"\") should be nil")
	}
	if g.Person("nobody") != nil {
		t.Error("Person(nobody) should be nil")
	}
	if sp := g.Spouse("dad"); sp == nil || sp.ID != "mom" {
		t.Errorf("Spouse(dad) = %v, want mom", sp)
	}

	father, mother := g.Parents("me")
	if father == nil || father.ID != "dad" {
		t.Errorf("Parents(me) father = %v, want dad", father)
	}
	if mother == nil || mother.ID != "mom" {
		t.Errorf("Parents(me) mother = %v, want mom", mother)
	}
}

func TestGraph_ChildrenOrdered(t *testing.T) {
	g := testFamily()

	kids := g.Children("dad")
	if len(kids) != 2 {
		t.Fatalf("Children(dad) returned %d, want 2", len(kids))
	}
	if kids[0].ID != "me" || kids[1].ID != "sis" {
		t.Errorf("Children(dad) = [%s %s], want [me sis]", kids[0].ID, kids[1].ID)
	}
}

func TestGraph_Siblings(t *testing.T) {
	g := testFamily()

	sibs := g.Siblings("me")
	if len(sibs) != 1 || sibs[0].ID != "sis" {
		t.Errorf("Siblings(me) = %v, want [sis]", sibs)
	}
	if sibs := g.Siblings("dad"); sibs != nil {
		t.Errorf("Siblings(dad) = %v, want nil (no recorded parents)", sibs)
	}
}

func TestDelete_PrunesReferences(t *testing.T) {
	g := testFamily()

	g.Delete("dad")

	if g.Person("dad") != nil {
		t.Error("dad still present after Delete")
	}
	if g["mom"].SpouseID != "" {
		t.Errorf("mom.SpouseID = %q, want cleared", g["mom"].SpouseID)
	}
	if g["me"].FatherID != "" {
		t.Errorf("me.FatherID = %q, want cleared", g["me"].FatherID)
	}
	if g["sis"].FatherID != "" {
		t.Errorf("sis.FatherID = %q, want cleared", g["sis"].FatherID)
	}
}

func TestDelete_MissingIDIsNoop(t *testing.T) {
	g := testFamily()
	g.Delete("nobody")
	if len(g) != 4 {
		t.Errorf("graph has %d people after no-op delete, want 4", len(g))
	}
}

func TestNormalize_ClearsDanglingAndSelfReferences(t *testing.T) {
	g := Graph{
		"a": {ID: "a", CreatedAt: at(0), FatherID: "ghost", MotherID: "ghost", SpouseID: "a"},
	}

	g.Normalize()

	p := g["a"]
	if p.FatherID != "" || p.MotherID != "" {
		t.Errorf("dangling parent refs survived: father=%q mother=%q", p.FatherID, p.MotherID)
	}
	if p.SpouseID != "" {
		t.Errorf("self-spouse survived: %q", p.SpouseID)
	}
}

func TestNormalize_RestoresSpouseSymmetry(t *testing.T) {
	g := Graph{
		"a": {ID: "a", CreatedAt: at(0), SpouseID: "b"},
		"b": {ID: "b", CreatedAt: at(1)},
	}

	g.Normalize()

	if g["b"].SpouseID != "a" {
		t.Errorf("b.SpouseID = %q, want a", g["b"].SpouseID)
	}
}

func TestNormalize_ContestedSpouseEarlierWins(t *testing.T) {
	// Both a and c claim b; a was created first and keeps the link.
	g := Graph{
		"a": {ID: "a", CreatedAt: at(0), SpouseID: "b"},
		"b": {ID: "b", CreatedAt: at(1), SpouseID: "a"},
		"c": {ID: "c", CreatedAt: at(2), SpouseID: "b"},
	}

	g.Normalize()

	if g["b"].SpouseID != "a" {
		t.Errorf("b.SpouseID = %q, want a", g["b"].SpouseID)
	}
	if g["c"].SpouseID != "" {
		t.Errorf("c.SpouseID = %q, want cleared", g["c"].SpouseID)
	}
}

func TestClone_Independent(t *testing.T) {
	g := testFamily()
	cp := g.Clone()

	cp["me"].Name = "Changed"
	cp.Delete("sis")

	if g["me"].Name != "Alex" {
		t.Errorf("original mutated: me.Name = %q", g["me"].Name)
	}
	if g.Person("sis") == nil {
		t.Error("original lost sis after deleting from clone")
	}
}
