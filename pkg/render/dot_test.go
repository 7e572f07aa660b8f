package render

import (
	"strings"
	"testing"

	"github.com/pedigree-app/pedigree/pkg/person"
)

func coupleWithChild() person.Graph {
	return person.Graph{
		"dad": {ID: "dad", Name: "Robert", SpouseID: "mom"},
		"mom": {ID: "mom", Name: "Linda", SpouseID: "dad"},
		"me":  {ID: "me", Name: "Alex", FatherID: "dad", MotherID: "mom"},
	}
}

func TestToDOT_Structure(t *testing.T) {
	dot := ToDOT(coupleWithChild(), DOTOptions{SelfID: "me"})

	for _, want := range []string{
		`digraph pedigree {`,
		`"dad" [label="Robert"];`,
		`"me" [label="Alex", fillcolor=lightblue];`,
		`"dad" -> "me";`,
		`"mom" -> "me";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q", want)
		}
	}
}

func TestToDOT_SpouseEdgeEmittedOnce(t *testing.T) {
	dot := ToDOT(coupleWithChild(), DOTOptions{})

	spouseEdge := `"dad" -> "mom" [dir=none, style=dashed, constraint=false];`
	if got := strings.Count(dot, spouseEdge); got != 1 {
		t.Errorf("spouse edge emitted %d times, want once", got)
	}
	if strings.Contains(dot, `"mom" -> "dad"`) {
		t.Error("spouse edge emitted in both directions")
	}
}

func TestToDOT_LabelsAnnotateNodes(t *testing.T) {
	dot := ToDOT(coupleWithChild(), DOTOptions{
		SelfID: "me",
		Labels: map[string]string{"dad": "father"},
	})
	if !strings.Contains(dot, `"dad" [label="Robert\nfather"];`) {
		t.Error("kinship term not appended to node label")
	}
}

func TestToDOT_FallsBackToID(t *testing.T) {
	g := person.Graph{"p1": {ID: "p1"}}
	if dot := ToDOT(g, DOTOptions{}); !strings.Contains(dot, `"p1" [label="p1"];`) {
		t.Error("nameless person not labeled by ID")
	}
}

func TestToDOT_SkipsDanglingReferences(t *testing.T) {
	g := person.Graph{"me": {ID: "me", Name: "Alex", FatherID: "ghost"}}
	if dot := ToDOT(g, DOTOptions{}); strings.Contains(dot, "ghost") {
		t.Error("dangling parent reference produced an edge")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="10.00 20.00 100.00 50.00">body</svg>`)
	out := string(normalizeViewBox(in))

	if !strings.Contains(out, `viewBox="0 0 100.00 50.00"`) {
		t.Errorf("viewBox not rebased to origin: %s", out)
	}
	if !strings.Contains(out, "body") {
		t.Error("SVG body lost during header rewrite")
	}
}

func TestNormalizeViewBox_NoMatchPassthrough(t *testing.T) {
	in := []byte(`<svg>no viewbox</svg>`)
	if got := string(normalizeViewBox(in)); got != string(in) {
		t.Errorf("normalizeViewBox() = %q, want input unchanged", got)
	}
}
