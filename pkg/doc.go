// Package pkg provides the libraries behind panetree, a tiling layout
// engine.
//
// # Overview
//
// A layout is a tree: splits lay their children out side by side
// (horizontal) or stacked (vertical), and leaves are panes. The pkg
// directory is organized into three areas:
//
//  1. [layout] - the tree model and its five operations
//  2. [workspace], [store], [server] - state, persistence and the HTTP API
//  3. [render], [cache] - geometry, text boxes and Graphviz output
//
// # Architecture
//
// The typical data flow through panetree:
//
//	CLI / TUI / HTTP request
//	         ↓
//	    [workspace] package (serialize, ignore stale references)
//	         ↓
//	    [layout] package (copy-on-write tree operation)
//	         ↓
//	    [store] package (versioned snapshot: memory, file, redis, mongo)
//	         ↓
//	    subscribers and [render] output
//
// # Quick Start
//
//	ws := workspace.New("demo", layout.Horizontal, workspace.Options{})
//	ws.Apply(ctx, workspace.InsertRoot{ID: "editor"})
//	ws.Apply(ctx, workspace.InsertAt{Target: "editor", Position: layout.Bottom, ID: "shell"})
//	fmt.Print(ws.Snapshot().Tree)
//
// Supporting packages: [config] (TOML settings), [errors] (error codes),
// [observability] (hooks) and [buildinfo].
//
// [layout]: github.com/matzehuels/panetree/pkg/layout
// [workspace]: github.com/matzehuels/panetree/pkg/workspace
// [store]: github.com/matzehuels/panetree/pkg/store
// [server]: github.com/matzehuels/panetree/pkg/server
// [render]: github.com/matzehuels/panetree/pkg/render
// [cache]: github.com/matzehuels/panetree/pkg/cache
// [config]: github.com/matzehuels/panetree/pkg/config
// [errors]: github.com/matzehuels/panetree/pkg/errors
// [observability]: github.com/matzehuels/panetree/pkg/observability
// [buildinfo]: github.com/matzehuels/panetree/pkg/buildinfo
package pkg
