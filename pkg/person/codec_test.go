package person

import (
	"fmt"
	"path/filepath"
	"testing"
)

func TestUnmarshal_RekeysEmbeddedIDs(t *testing.T) {
	data := []byte(`{
		"alice": {"id": "wrong", "name": "Alice", "created_at": "2024-03-01T10:00:00Z"},
		"bob":   {"name": "Bob", "created_at": "2024-03-01T10:01:00Z"}
	}`)

	g, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if g["alice"].ID != "alice" {
		t.Errorf("alice.ID = %q, want key to win", g["alice"].ID)
	}
	if g["bob"].ID != "bob" {
		t.Errorf("bob.ID = %q, want filled from key", g["bob"].ID)
	}
}

func TestUnmarshal_DropsNullEntries(t *testing.T) {
	g, err := Unmarshal([]byte(`{"a": null, "b": {"name": "Bob"}}`))
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if _, ok := g["a"]; ok {
		t.Error("null entry survived decoding")
	}
	if len(g) != 1 {
		t.Errorf("graph has %d people, want 1", len(g))
	}
}

func TestUnmarshal_InvalidJSON(t *testing.T) {
	if _, err := Unmarshal([]byte(`{not json`)); err == nil {
		t.Error("Unmarshal() accepted invalid JSON")
	}
}

func TestGraphFile_RoundTrip(t *testing.T) {
	g := testFamily()
	path := filepath.Join(t.TempDir(), "people.json")

	if err := WriteGraphFile(g, path); err != nil {
		t.Fatalf("WriteGraphFile() error: %v", err)
	}
	got, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile() error: %v", err)
	}

	if len(got) != len(g) {
		t.Fatalf("round trip lost people: got %d, want %d", len(got), len(g))
	}
	for id, want := range g {
		p := got.Person(id)
		if p == nil {
			t.Fatalf("person %s missing after round trip", id)
		}
		if p.Name != want.Name || p.FatherID != want.FatherID || p.SpouseID != want.SpouseID {
			t.Errorf("person %s = %+v, want %+v", id, p, want)
		}
	}
}

func TestReadGraphFile_Missing(t *testing.T) {
	if _, err := ReadGraphFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("ReadGraphFile() succeeded on missing file")
	}
}

func ExampleUnmarshal() {
	g, _ := Unmarshal([]byte(`{
		"dad": {"name": "Robert", "gender": "male"},
		"me":  {"name": "Alex", "father_id": "dad"}
	}`))

	father, _ := g.Parents("me")
	fmt.Println(father.Name)
	// Output: Robert
}
