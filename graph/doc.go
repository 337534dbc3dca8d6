// Package graph provides the lazy frame-graph core the filter packages are
// built on: clips, formats, frames and node construction.
//
// A [Clip] is an immutable handle to one node of a [Graph]. Filter
// constructors validate their parameters, append exactly one node (or, for
// composite filters, a fixed cascade of nodes) and hand back a new Clip; no
// pixels move until an executor renders the graph. Failed constructors
// create no nodes at all, which [Graph.NodeCount] makes easy to assert.
//
// Common workflows:
//   - New() then BlankClip / Source to obtain input clips
//   - Clip.Invoke / Clip.InvokeAs from filter constructors
//   - Dump(clip) for a canonical textual rendering of the subgraph
//
// A Graph is not safe for concurrent construction; rendering through the
// engine package is safe for concurrent use once construction is done.
package graph
