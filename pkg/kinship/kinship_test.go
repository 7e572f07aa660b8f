package kinship

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/pedigree-app/pedigree/pkg/person"
)

func add(g person.Graph, id string, gender person.Gender) *person.Person {
	p := &person.Person{ID: id, Name: id, Gender: gender}
	g[id] = p
	return p
}

// extendedFamily covers three generations on both sides plus in-laws.
func extendedFamily() person.Graph {
	g := person.Graph{}
	me := add(g, "me", person.GenderMale)
	wife := add(g, "wife", person.GenderFemale)
	dad := add(g, "dad", person.GenderMale)
	add(g, "mom", person.GenderFemale)
	add(g, "gpa", person.GenderMale)
	add(g, "gma", person.GenderFemale)
	add(g, "mgma", person.GenderFemale)
	uncle := add(g, "uncle", person.GenderMale)
	cousin := add(g, "cousin", person.GenderFemale)
	sis := add(g, "sis", person.GenderFemale)
	kid := add(g, "kid", person.GenderMale)
	add(g, "wdad", person.GenderMale)

	me.FatherID, me.MotherID, me.SpouseID = "dad", "mom", "wife"
	wife.SpouseID = "me"
	wife.FatherID = "wdad"
	dad.FatherID, dad.MotherID = "gpa", "gma"
	dad.SpouseID = "mom"
	g["mom"].SpouseID = "dad"
	g["mom"].MotherID = "mgma"
	uncle.FatherID, uncle.MotherID = "gpa", "gma"
	cousin.FatherID = "uncle"
	sis.FatherID, sis.MotherID = "dad", "mom"
	kid.FatherID, kid.MotherID = "me", "wife"
	return g
}

func TestLabels_ExtendedFamily(t *testing.T) {
	g := extendedFamily()
	labels := Labels(g, "me")

	tests := []struct {
		id   string
		want string
	}{
		{"me", "self"},
		{"dad", "father"},
		{"mom", "mother"},
		{"wife", "wife"},
		{"sis", "sister"},
		{"kid", "son"},
		{"gpa", "paternal grandfather"},
		{"gma", "paternal grandmother"},
		{"mgma", "maternal grandmother"},
		{"uncle", "paternal uncle"},
		{"cousin", "cousin"},
		{"wdad", "father-in-law"},
	}
	for _, tt := range tests {
		if got := labels[tt.id]; got != tt.want {
			t.Errorf("Labels()[%s] = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestLabels_StepRelations(t *testing.T) {
	g := person.Graph{}
	me := add(g, "me", person.GenderMale)
	dad := add(g, "dad", person.GenderMale)
	step := add(g, "step", person.GenderFemale)
	stepbro := add(g, "stepbro", person.GenderMale)

	me.FatherID = "dad"
	dad.SpouseID = "step"
	step.SpouseID = "dad"
	stepbro.MotherID = "step"

	labels := Labels(g, "me")
	if got := labels["step"]; got != "stepmother" {
		t.Errorf("Labels()[step] = %q, want %q", got, "stepmother")
	}
	if got := labels["stepbro"]; got != "stepbrother" {
		t.Errorf("Labels()[stepbro] = %q, want %q", got, "stepbrother")
	}

	labels = Labels(g, "step")
	if got := labels["me"]; got != "stepson" {
		t.Errorf("Labels()[me] from step = %q, want %q", got, "stepson")
	}
}

func TestLabels_UnknownGender(t *testing.T) {
	g := person.Graph{}
	me := add(g, "me", person.GenderUnknown)
	add(g, "parent", person.GenderUnknown)
	kid := add(g, "kid", person.GenderUnknown)
	partner := add(g, "partner", person.GenderUnknown)

	me.FatherID = "parent"
	me.SpouseID = "partner"
	partner.SpouseID = "me"
	kid.FatherID = "me"

	labels := Labels(g, "me")
	if got := labels["kid"]; got != "child" {
		t.Errorf("Labels()[kid] = %q, want %q", got, "child")
	}
	if got := labels["partner"]; got != "spouse" {
		t.Errorf("Labels()[partner] = %q, want %q", got, "spouse")
	}
}

func TestCodes_ShortestOnly(t *testing.T) {
	g := extendedFamily()
	codes := Codes(g, "me")

	tests := []struct {
		id   string
		want []string
	}{
		{"me", []string{""}},
		{"dad", []string{"F"}},
		{"gma", []string{"FM"}},
		// Both parents reach the sister in two hops; both codes are kept.
		{"sis", []string{"FD", "MD"}},
		{"cousin", []string{"FFSD", "FMSD"}},
	}
	for _, tt := range tests {
		if got := codes[tt.id]; !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Codes()[%s] = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestCodes_UnknownSelf(t *testing.T) {
	g := extendedFamily()
	if got := Codes(g, "nobody"); len(got) != 0 {
		t.Errorf("Codes() with unknown self = %v, want empty", got)
	}
}

func TestLabels_DepthBound(t *testing.T) {
	g := person.Graph{}
	prev := add(g, "p0", person.GenderMale)
	for i := 1; i <= MaxDepth+1; i++ {
		cur := add(g, fmt.Sprintf("p%d", i), person.GenderMale)
		prev.FatherID = cur.ID
		prev = cur
	}

	labels := Labels(g, "p0")
	atLimit := fmt.Sprintf("p%d", MaxDepth)
	if _, ok := labels[atLimit]; !ok {
		t.Errorf("ancestor at depth %d not labeled", MaxDepth)
	}
	beyond := fmt.Sprintf("p%d", MaxDepth+1)
	if _, ok := labels[beyond]; ok {
		t.Errorf("ancestor at depth %d labeled despite bound", MaxDepth+1)
	}
}

func TestLabelFor_Fallbacks(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"FFFSS", "5th-degree relative"},
		{"WFMS", "relative by marriage"},
	}
	for _, tt := range tests {
		got, _ := labelFor(tt.code, nil, nil)
		if got != tt.want {
			t.Errorf("labelFor(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestBestLabel_PrefersMostDirect(t *testing.T) {
	// A person reachable both as grandfather and as father-in-law keeps
	// the blood term.
	got := bestLabel([]string{"FF", "HF"}, nil, nil)
	if got != "paternal grandfather" {
		t.Errorf("bestLabel() = %q, want %q", got, "paternal grandfather")
	}
}

func TestOrdinal(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "1st"},
		{2, "2nd"},
		{3, "3rd"},
		{4, "4th"},
		{11, "11th"},
		{12, "12th"},
		{13, "13th"},
		{21, "21st"},
		{22, "22nd"},
	}
	for _, tt := range tests {
		if got := ordinal(tt.n); got != tt.want {
			t.Errorf("ordinal(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func ExampleLabels() {
	g := person.Graph{
		"me":  {ID: "me", Name: "Alex", FatherID: "dad"},
		"dad": {ID: "dad", Name: "Robert", Gender: person.GenderMale, FatherID: "gpa"},
		"gpa": {ID: "gpa", Name: "Henry", Gender: person.GenderMale},
	}

	labels := Labels(g, "me")
	fmt.Println(labels["dad"])
	fmt.Println(labels["gpa"])
	// Output:
	// father
	// paternal grandfather
}
