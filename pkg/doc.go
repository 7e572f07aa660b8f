// Package pkg provides the core libraries for Pedigree family trees.
//
// # Overview
//
// Pedigree turns a flat map of people into a laid-out, labeled family
// tree and keeps it in sync with a backend. The pkg directory is
// organized into these areas:
//
//  1. [person] - The family graph: people, parent/spouse links, JSON codec
//  2. [layout] - Card positions: generations, lineage sides, canvas bounds
//  3. [kinship] - Relationship labels (Father, 1st Cousin, Brother-in-law)
//  4. [render] - SVG and Graphviz DOT diagrams
//  5. [store] - Snapshot persistence (memory, MongoDB)
//  6. [session] - Authenticated sessions (memory, file, Redis)
//  7. [syncq] - Offline patch queue and backend client
//
// # Architecture
//
// The typical data flow through Pedigree:
//
//	people.json (map of id → person)
//	         ↓
//	    [layout] package (generations + sides + coordinates)
//	    [kinship] package (relationship labels)
//	         ↓
//	    [render] package (card SVG or Graphviz diagram)
//
// Edits flow the other way: [syncq] coalesces local changes into
// patches and pushes them to the server in internal/server, which
// persists them through [store].
//
// # Quick Start
//
// Lay out and label a tree:
//
//	import (
//	    "github.com/pedigree-app/pedigree/pkg/kinship"
//	    "github.com/pedigree-app/pedigree/pkg/layout"
//	    "github.com/pedigree-app/pedigree/pkg/person"
//	)
//
//	// 1. Load the graph
//	g, _ := person.ReadGraphFile("people.json")
//
//	// 2. Compute the layout
//	res := layout.Build(g, layout.DefaultOptions(selfID))
//
//	// 3. Label everyone relative to self
//	labels := kinship.Labels(g, selfID)
//
//	// 4. Render to SVG
//	svg := render.CardSVG(res, g, render.CardOptions{SelfID: selfID, Labels: labels})
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/layout/...   # Specific package
//	go test -run Example       # Examples only
//
// [person]: https://pkg.go.dev/github.com/pedigree-app/pedigree/pkg/person
// [layout]: https://pkg.go.dev/github.com/pedigree-app/pedigree/pkg/layout
// [kinship]: https://pkg.go.dev/github.com/pedigree-app/pedigree/pkg/kinship
// [render]: https://pkg.go.dev/github.com/pedigree-app/pedigree/pkg/render
// [store]: https://pkg.go.dev/github.com/pedigree-app/pedigree/pkg/store
// [session]: https://pkg.go.dev/github.com/pedigree-app/pedigree/pkg/session
// [syncq]: https://pkg.go.dev/github.com/pedigree-app/pedigree/pkg/syncq
package pkg
