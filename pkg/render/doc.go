// Package render draws family trees.
//
// # Overview
//
// This package turns a family graph, and optionally a computed layout,
// into visual outputs. It provides:
//
//   - Card diagrams ([CardSVG]): the layout engine's geometry drawn as
//     rounded cards with elbow connectors and dashed spouse ties
//   - Node-link diagrams ([ToDOT], [RenderSVG]): a Graphviz view of the
//     raw graph, useful for debugging link structure
//
// # Card Diagrams
//
// [CardSVG] takes a [layout.Result] and the graph it was built from and
// emits a self-contained SVG. Kinship labels are drawn under the name
// when provided:
//
//	res := layout.Build(g, layout.DefaultOptions(selfID))
//	labels := kinship.Labels(g, selfID)
//	svg := render.CardSVG(res, g, render.CardOptions{SelfID: selfID, Labels: labels})
//
// # Node-Link Diagrams
//
// [ToDOT] emits Graphviz DOT with solid parent edges and one dashed
// spouse edge per couple. [RenderSVG] rasterizes DOT via goccy/go-graphviz,
// so no external graphviz binary is needed:
//
//	dot := render.ToDOT(g, render.DOTOptions{SelfID: selfID})
//	svg, err := render.RenderSVG(dot)
package render
