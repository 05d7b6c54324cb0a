// Package schemagraph compiles a concise schema description language into
// a normalized, queryable entity graph.
//
// Declare types, their fields, and each field's parameters as nested
// symbolic declarations with free-form metadata, and get back a graph with
// all cross-references resolved, forward and backward, loaded into a store
// you can query without hand-writing graph-database transactions.
//
// The module is organized into three packages plus a CLI:
//
//   - [github.com/schemagraph/schemagraph/sdl]: declaration-tree model, builders, and the text reader
//   - [github.com/schemagraph/schemagraph/compiler]: symbol resolution, attribute readers, entity building
//   - [github.com/schemagraph/schemagraph/graph]: entity records, stores (in-memory and SQLite), snapshots
//   - cmd/sgc: command-line compiler front end
//
// A minimal end-to-end compile:
//
//	src, _ := sdl.Parse("schema", `(Person {:implements [Agent]} [name {:type String}] Agent {:interface true})`)
//	store := graph.NewMemStore(compiler.Constraints(), graph.MemStoreConfig{})
//	handle, err := compiler.New(store).Compile(src)
package schemagraph
