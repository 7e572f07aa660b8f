package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/pedigree-app/pedigree/pkg/layout"
	"github.com/pedigree-app/pedigree/pkg/person"
)

// Card diagram palette.
const (
	cardFill      = "#ffffff"
	cardStroke    = "#8a8a8a"
	selfFill      = "#dcecfb"
	connectorLine = "#9a9a9a"
	spouseLine    = "#c76f6f"
	textColor     = "#2b2b2b"
	labelColor    = "#6b6b6b"
)

// CardOptions configures the card diagram sink.
type CardOptions struct {
	// SelfID tints the root person's card.
	SelfID string

	// Labels writes each person's kinship term under their name.
	Labels map[string]string

	// MergeParentEdges draws a single connector stem for a child whose
	// two parents are both present, instead of two independent lines.
	// The layout engine always emits both edges; merging is purely
	// visual.
	MergeParentEdges bool
}

// CardSVG draws the layout result as the card-and-connector diagram
// the mobile client shows: one rounded card per person, an elbow
// connector per parent edge, and a short tie between adjacent spouse
// cards.
func CardSVG(res layout.Result, g person.Graph, opts CardOptions) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		res.Width, res.Height, res.Width, res.Height)

	renderConnectors(&buf, res, g, opts)
	renderSpouseTies(&buf, res, g)
	renderCards(&buf, res, g, opts)

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// renderConnectors draws parent-child connectors: a vertical drop from
// the parent card's bottom, a horizontal run, and a drop into the
// child card's top.
func renderConnectors(buf *bytes.Buffer, res layout.Result, g person.Graph, opts CardOptions) {
	drawn := map[string]bool{}

	for _, e := range res.Edges {
		parent, child := res.Node(e.ParentID), res.Node(e.ChildID)
		if parent == nil || child == nil {
			continue
		}

		startX := parent.CenterX()
		if opts.MergeParentEdges {
			if drawn[e.ChildID] {
				continue
			}
			if other := coParent(res, g, e); other != nil {
				startX = (parent.CenterX() + other.CenterX()) / 2
				drawn[e.ChildID] = true
			}
		}

		startY := parent.Y + parent.Height
		endX, endY := child.CenterX(), child.Y
		midY := (startY + endY) / 2
		fmt.Fprintf(buf,
			`  <polyline points="%.1f,%.1f %.1f,%.1f %.1f,%.1f %.1f,%.1f" fill="none" stroke="%s" stroke-width="1.5"/>`+"\n",
			startX, startY, startX, midY, endX, midY, endX, endY, connectorLine)
	}
}

// coParent returns the positioned node of the child's other parent when
// both parents are included, or nil.
func coParent(res layout.Result, g person.Graph, e layout.Edge) *layout.Node {
	p := g.Person(e.ChildID)
	if p == nil {
		return nil
	}
	other := p.FatherID
	if other == e.ParentID {
		other = p.MotherID
	}
	if other == "" || other == e.ParentID {
		return nil
	}
	return res.Node(other)
}

// renderSpouseTies draws a short horizontal tie between spouse cards
// placed in adjacent slots.
func renderSpouseTies(buf *bytes.Buffer, res layout.Result, g person.Graph) {
	for _, id := range g.IDs() {
		p := g[id]
		sp := g.Person(p.SpouseID)
		if sp == nil || id >= sp.ID {
			continue
		}
		a, b := res.Node(id), res.Node(sp.ID)
		if a == nil || b == nil {
			continue
		}
		left, right := a, b
		if left.X > right.X {
			left, right = right, left
		}
		y := left.CenterY()
		fmt.Fprintf(buf,
			`  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1.5" stroke-dasharray="4 3"/>`+"\n",
			left.X+left.Width, y, right.X, y, spouseLine)
	}
}

func renderCards(buf *bytes.Buffer, res layout.Result, g person.Graph, opts CardOptions) {
	for i := range res.Nodes {
		n := &res.Nodes[i]
		fill := cardFill
		if n.ID == opts.SelfID {
			fill = selfFill
		}
		fmt.Fprintf(buf,
			`  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="8" fill="%s" stroke="%s" stroke-width="1.5"/>`+"\n",
			n.X, n.Y, n.Width, n.Height, fill, cardStroke)

		name := n.ID
		if p := g.Person(n.ID); p != nil && p.Name != "" {
			name = p.Name
		}
		fmt.Fprintf(buf,
			`  <text x="%.1f" y="%.1f" text-anchor="middle" font-size="13" fill="%s">%s</text>`+"\n",
			n.CenterX(), n.Y+n.Height*0.45, textColor, html.EscapeString(name))

		if term := opts.Labels[n.ID]; term != "" {
			fmt.Fprintf(buf,
				`  <text x="%.1f" y="%.1f" text-anchor="middle" font-size="10" fill="%s">%s</text>`+"\n",
				n.CenterX(), n.Y+n.Height*0.65, labelColor, html.EscapeString(term))
		}
	}
}
