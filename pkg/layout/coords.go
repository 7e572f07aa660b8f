package layout

import (
	"math"
	"slices"

	"github.com/pedigree-app/pedigree/pkg/person"
)

// place converts assembled rows into absolute card coordinates, derives
// parent-child edges, and computes canvas bounds.
//
// Horizontal positions are first measured from a virtual center line at
// x=0 (self's column): side rows fill slots outward from the line,
// center rows spread around it. The canvas is then sized to twice the
// larger lobe plus padding so the center line lands exactly at the
// canvas midpoint, and shifted vertically so the topmost card sits at
// the padding.
func place(g person.Graph, opts Options, placements map[string]placement, rows map[rowKey]*row) Result {
	cardW, colGap := tuneDimensions(opts, rows)
	slotW := cardW + colGap
	cardH := opts.CardHeight

	// Card centers relative to the center line.
	cx := make(map[string]float64, len(placements))
	cy := make(map[string]float64, len(placements))

	for k, r := range rows {
		y := float64(k.gen) * opts.RowGap
		var xs map[string]float64
		switch {
		case k.side != person.SideCenter:
			xs = sideRowX(r, k.side, slotW)
		case containsID(r, opts.SelfID):
			xs = selfRowX(r, opts.SelfID, slotW)
		default:
			xs = centeredRowX(r, slotW)
		}
		for id, x := range xs {
			cx[id] = x
			cy[id] = y
		}
	}

	// Bounding box of all cards.
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for id := range placements {
		minX = math.Min(minX, cx[id]-cardW/2)
		maxX = math.Max(maxX, cx[id]+cardW/2)
		minY = math.Min(minY, cy[id]-cardH/2)
		maxY = math.Max(maxY, cy[id]+cardH/2)
	}

	// Width is symmetric around the center line so self stays visually
	// centered; the larger lobe decides, with the viewport minimum.
	lobe := math.Max(-minX, maxX)
	lobe = math.Max(lobe, minCanvasWidth/2-opts.Padding)
	width := 2*lobe + 2*opts.Padding
	height := math.Max(maxY-minY+2*opts.Padding, minCanvasHeight)

	res := Result{
		Width:  width,
		Height: height,
		byID:   make(map[string]*Node, len(placements)),
	}

	ids := make([]string, 0, len(placements))
	for id := range placements {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		at := placements[id]
		res.Nodes = append(res.Nodes, Node{
			ID:         id,
			X:          cx[id] - cardW/2 + lobe + opts.Padding,
			Y:          cy[id] - cardH/2 - minY + opts.Padding,
			Width:      cardW,
			Height:     cardH,
			Generation: at.gen,
			Side:       at.side,
		})
	}
	for i := range res.Nodes {
		res.byID[res.Nodes[i].ID] = &res.Nodes[i]
	}

	res.Edges = collectEdges(g, placements, ids)
	return res
}

// tuneDimensions applies auto-tuning: each member by which the widest
// generation line exceeds the threshold shrinks the card width and
// column gap by a fixed amount, clamped to the configured minimums.
// Topology is never affected, only dimensions.
func tuneDimensions(opts Options, rows map[rowKey]*row) (cardW, colGap float64) {
	cardW, colGap = opts.CardWidth, opts.ColGap
	if !opts.AutoTune {
		return cardW, colGap
	}

	widest := 0
	perGen := map[int]int{}
	for k, r := range rows {
		perGen[k.gen] += r.memberCount()
		if perGen[k.gen] > widest {
			widest = perGen[k.gen]
		}
	}

	excess := widest - autoTuneThreshold
	if excess <= 0 {
		return cardW, colGap
	}
	cardW = math.Max(opts.MinCardWidth, cardW-float64(excess)*cardShrinkPerUnit)
	colGap = math.Max(opts.MinColGap, colGap-float64(excess)*gapShrinkPerUnit)
	return cardW, colGap
}

// sideRowX assigns x centers to a side row. Units are innermost-first;
// slot j (1-based) sits j slot-widths from the center line, growing
// outward. Within a pair, the screen-left member takes the slot with
// the smaller x.
func sideRowX(r *row, side person.Side, slotW float64) map[string]float64 {
	xs := make(map[string]float64, r.memberCount())
	slot := 1
	for _, u := range r.units {
		inner, outer := float64(slot), float64(slot+u.size()-1)
		if side == person.SideLeft {
			// Left lobe: inner slot has the larger (less negative) x,
			// so the pair's left member lands on the outer slot.
			if u.right == "" {
				xs[u.left] = -inner * slotW
			} else {
				xs[u.left] = -outer * slotW
				xs[u.right] = -inner * slotW
			}
		} else {
			xs[u.left] = inner * slotW
			if u.right != "" {
				xs[u.right] = outer * slotW
			}
		}
		slot += u.size()
	}
	return xs
}

// selfRowX assigns x centers to the center row containing self. Self is
// pinned to the center line; a spouse paired with self takes the
// adjacent slot on their oriented side. Remaining units alternate left
// and right of self in increasing distance, in creation order.
func selfRowX(r *row, selfID string, slotW float64) map[string]float64 {
	xs := make(map[string]float64, r.memberCount())

	nextLeft, nextRight := -1, 1
	rest := make([]unit, 0, len(r.units))

	for _, u := range r.units {
		if u.left != selfID && u.right != selfID {
			rest = append(rest, u)
			continue
		}
		xs[selfID] = 0
		switch {
		case u.right == "":
		case u.left == selfID:
			xs[u.right] = float64(nextRight) * slotW
			nextRight++
		default:
			xs[u.left] = float64(nextLeft) * slotW
			nextLeft--
		}
	}

	toLeft := true
	for _, u := range rest {
		if toLeft {
			// A pair keeps its orientation: left member further out.
			if u.right != "" {
				xs[u.right] = float64(nextLeft) * slotW
				nextLeft--
			}
			xs[u.left] = float64(nextLeft) * slotW
			nextLeft--
		} else {
			xs[u.left] = float64(nextRight) * slotW
			nextRight++
			if u.right != "" {
				xs[u.right] = float64(nextRight) * slotW
				nextRight++
			}
		}
		toLeft = !toLeft
	}
	return xs
}

// centeredRowX spreads a center row without self symmetrically around
// the center line, preserving unit order left to right.
func centeredRowX(r *row, slotW float64) map[string]float64 {
	var flat []string
	for _, u := range r.units {
		flat = append(flat, u.left)
		if u.right != "" {
			flat = append(flat, u.right)
		}
	}
	xs := make(map[string]float64, len(flat))
	offset := float64(len(flat)-1) / 2
	for i, id := range flat {
		xs[id] = (float64(i) - offset) * slotW
	}
	return xs
}

// collectEdges emits one edge per resolved parent link whose endpoints
// are both included. A child with two included parents yields two
// edges; merging is left to the renderer.
func collectEdges(g person.Graph, placements map[string]placement, sortedIDs []string) []Edge {
	var edges []Edge
	for _, id := range sortedIDs {
		p := g.Person(id)
		for _, parent := range []string{p.FatherID, p.MotherID} {
			if parent == "" {
				continue
			}
			if _, ok := placements[parent]; ok {
				edges = append(edges, Edge{ParentID: parent, ChildID: id})
			}
		}
	}
	slices.SortFunc(edges, func(a, b Edge) int {
		if a.ParentID != b.ParentID {
			if a.ParentID < b.ParentID {
				return -1
			}
			return 1
		}
		if a.ChildID < b.ChildID {
			return -1
		}
		if a.ChildID > b.ChildID {
			return 1
		}
		return 0
	})
	return edges
}

func containsID(r *row, id string) bool {
	for _, u := range r.units {
		if u.left == id || u.right == id {
			return true
		}
	}
	return false
}
