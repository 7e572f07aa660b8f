// Package layout computes card positions for a pedigree diagram.
//
// Given a family graph and a designated self person, [Build] walks the
// graph outward from self (ancestors, descendants, spouses, siblings),
// assigns every reachable relative a generation row and a lineage side,
// orders rows deterministically, and converts rows into absolute pixel
// coordinates plus parent-child edges and canvas bounds.
//
// Build is a pure function: it never mutates the input graph, keeps no
// state between calls, and returns identical output for identical
// input. Malformed input degrades instead of failing — an unresolvable
// self yields an empty result, dangling references are skipped, and
// cycles terminate via the visited set.
package layout

import (
	"github.com/pedigree-app/pedigree/pkg/person"
)

// Default dimensions, in pixels.
const (
	DefaultCardWidth  = 96.0
	DefaultCardHeight = 120.0
	DefaultColGap     = 24.0
	DefaultRowGap     = 170.0
	DefaultPadding    = 24.0

	DefaultMinCardWidth = 56.0
	DefaultMinColGap    = 8.0

	// Auto-tune shrink applied per unit by which the widest row
	// exceeds autoTuneThreshold members.
	autoTuneThreshold = 4
	cardShrinkPerUnit = 8.0
	gapShrinkPerUnit  = 2.0

	// Minimum canvas size: one phone viewport, so a single-card tree
	// still fills the screen.
	minCanvasWidth  = 360.0
	minCanvasHeight = 640.0
)

// Options configures a layout computation.
type Options struct {
	SelfID string

	// MaxAncestorDepth and MaxDescendantDepth bound the graph walk.
	// Negative values are treated as zero.
	MaxAncestorDepth   int
	MaxDescendantDepth int

	CardWidth  float64
	CardHeight float64
	ColGap     float64
	RowGap     float64
	Padding    float64

	// AutoTune shrinks cards and gaps when the widest row exceeds
	// four members, clamped to MinCardWidth/MinColGap.
	AutoTune     bool
	MinCardWidth float64
	MinColGap    float64
}

// DefaultOptions returns options with standard card dimensions,
// three generations of ancestors and descendants, and auto-tune on.
func DefaultOptions(selfID string) Options {
	return Options{
		SelfID:             selfID,
		MaxAncestorDepth:   3,
		MaxDescendantDepth: 3,
		CardWidth:          DefaultCardWidth,
		CardHeight:         DefaultCardHeight,
		ColGap:             DefaultColGap,
		RowGap:             DefaultRowGap,
		Padding:            DefaultPadding,
		AutoTune:           true,
		MinCardWidth:       DefaultMinCardWidth,
		MinColGap:          DefaultMinColGap,
	}
}

// Node is a positioned card. X and Y are the top-left corner.
// Generation is the signed distance from self (negative = ancestors),
// Side the lineage branch.
type Node struct {
	ID         string      `json:"id" bson:"id"`
	X          float64     `json:"x" bson:"x"`
	Y          float64     `json:"y" bson:"y"`
	Width      float64     `json:"width" bson:"width"`
	Height     float64     `json:"height" bson:"height"`
	Generation int         `json:"generation" bson:"generation"`
	Side       person.Side `json:"side" bson:"side"`
}

// CenterX returns the horizontal center of the card.
func (n *Node) CenterX() float64 { return n.X + n.Width/2 }

// CenterY returns the vertical center of the card.
func (n *Node) CenterY() float64 { return n.Y + n.Height/2 }

// Edge is one resolved parent link between two included persons.
// A child with two included parents yields two edges; merging them
// into a single couple connector is the renderer's concern.
type Edge struct {
	ParentID string `json:"parent_id" bson:"parent_id"`
	ChildID  string `json:"child_id" bson:"child_id"`
}

// Result is the renderable model for one layout computation.
// It is recomputed wholesale on every call; there is no incremental
// update.
type Result struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
	Nodes  []Node  `json:"nodes" bson:"nodes"`
	Edges  []Edge  `json:"edges" bson:"edges"`

	byID map[string]*Node
}

// Node returns the positioned node for a person ID, or nil when the
// person was not included in the layout.
func (r *Result) Node(id string) *Node {
	return r.byID[id]
}

// Empty reports whether the layout contains no nodes.
func (r *Result) Empty() bool { return len(r.Nodes) == 0 }

// Build computes the full layout for the graph.
//
// If opts.SelfID does not resolve to a person in g, Build returns an
// empty result with zero canvas. This is a normal outcome, not an
// error.
func Build(g person.Graph, opts Options) Result {
	opts = withDefaults(opts)

	if g.Person(opts.SelfID) == nil {
		return Result{byID: map[string]*Node{}}
	}

	placements := traverse(g, opts)
	applyHints(g, opts, placements)
	rows := assembleRows(g, opts, placements)
	return place(g, opts, placements, rows)
}

// withDefaults fills zero-valued dimensions and clamps depths.
func withDefaults(o Options) Options {
	if o.CardWidth <= 0 {
		o.CardWidth = DefaultCardWidth
	}
	if o.CardHeight <= 0 {
		o.CardHeight = DefaultCardHeight
	}
	if o.ColGap <= 0 {
		o.ColGap = DefaultColGap
	}
	if o.RowGap <= 0 {
		o.RowGap = DefaultRowGap
	}
	if o.Padding < 0 {
		o.Padding = DefaultPadding
	}
	if o.MinCardWidth <= 0 {
		o.MinCardWidth = DefaultMinCardWidth
	}
	if o.MinColGap <= 0 {
		o.MinColGap = DefaultMinColGap
	}
	if o.MaxAncestorDepth < 0 {
		o.MaxAncestorDepth = 0
	}
	if o.MaxDescendantDepth < 0 {
		o.MaxDescendantDepth = 0
	}
	return o
}
