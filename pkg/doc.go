// Package pkg provides the core libraries for topograph replication topology
// diagrams.
//
// # Overview
//
// Topograph turns a snapshot of database replication links into a positioned
// tree and computes the hover highlight that traces a node's replication
// path. The pkg directory is organized as follows:
//
//  1. [topology] - Snapshot types, wire codec and catalog capture
//  2. [topology/layout] - Layout Builder (positions, edge styles, diagnostics)
//  3. [topology/highlight] - Path Highlighter (per-viewer visual state)
//  4. [source] and [cache] - Snapshot delivery from files, Redis or a cache directory
//  5. [view] - Current layout plus one highlighter per viewer
//  6. [render] - Graphviz diagrams of a layout
//
// # Architecture
//
// The typical data flow:
//
//	capture job (Redis keys) / snapshot file
//	         ↓
//	    [source] Watcher (poll, dedupe by content hash)
//	         ↓
//	    [topology/layout] Build
//	         ↓
//	    [view] Controller ──→ [topology/highlight] per viewer
//	         ↓
//	    HTTP API / CLI / SVG
//
// # Quick Start
//
//	snap, _ := topology.ReadSnapshotFile("topology.json")
//
//	res, _ := layout.Build(snap)
//	for _, d := range res.Diagnostics {
//	    log.Warn(d.Message, "code", d.Code)
//	}
//
//	h := highlight.New(res)
//	st, _ := h.HoverEnter("orders-replica")
//	fmt.Println(st.Active())
//
// # Error Handling
//
// Errors carry machine-readable codes from [errors]. Snapshot faults such as
// dangling edges or cycles are reported as layout diagnostics instead of
// failing the build.
package pkg
