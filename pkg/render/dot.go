// Package render turns a pedigree into viewable artifacts.
//
// Two sinks are provided: a Graphviz node-link export ([ToDOT] plus
// [RenderSVG]) for quick structural views, and a card diagram sink
// ([CardSVG]) that draws the layout engine's exact geometry — cards,
// parent connectors, and spouse connectors — the way the mobile client
// renders it.
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/pedigree-app/pedigree/pkg/person"
)

// DOTOptions configures node-link export.
type DOTOptions struct {
	// SelfID highlights the root person with a filled accent.
	SelfID string

	// Labels annotates each node with its kinship term when present.
	Labels map[string]string
}

// ToDOT converts a family graph to Graphviz DOT format. Parent links
// are solid directed edges (parent → child); spouse links are drawn
// once as dashed undirected edges; self gets an accent fill.
// Persons are emitted in sorted ID order for deterministic output.
func ToDOT(g person.Graph, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph pedigree {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=20, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	ids := g.IDs()
	for _, id := range ids {
		p := g[id]
		label := p.Name
		if label == "" {
			label = p.ID
		}
		if term, ok := opts.Labels[id]; ok && term != "" {
			label += "\n" + term
		}
		attrs := fmt.Sprintf("label=%q", label)
		if id == opts.SelfID {
			attrs += ", fillcolor=lightblue"
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", id, attrs)
	}

	buf.WriteString("\n")
	for _, id := range ids {
		p := g[id]
		if g.Person(p.FatherID) != nil {
			fmt.Fprintf(&buf, "  %q -> %q;\n", p.FatherID, id)
		}
		if g.Person(p.MotherID) != nil {
			fmt.Fprintf(&buf, "  %q -> %q;\n", p.MotherID, id)
		}
		// Emit each spouse link once, from the smaller ID.
		if sp := g.Person(p.SpouseID); sp != nil && id < sp.ID {
			fmt.Fprintf(&buf, "  %q -> %q [dir=none, style=dashed, constraint=false];\n", id, sp.ID)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the Graphviz SVG header to a zero-origin
// viewBox so downstream viewers scale it predictably.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
