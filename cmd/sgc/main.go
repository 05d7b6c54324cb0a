// sgc compiles schema description language sources into a queryable graph.
//
// Usage:
//
//	sgc [-out graph.db] [-strict] [-check-refs] [-json] path...
//
// Each path is an .sdl file or a directory scanned recursively. All sources
// compile as one pass into one graph.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/schemagraph/schemagraph/compiler"
	"github.com/schemagraph/schemagraph/graph"
	"github.com/schemagraph/schemagraph/sdl"
)

const version = "0.1.0"

func main() {
	outFile := flag.String("out", "", "SQLite output file (default: in-memory only)")
	strict := flag.Bool("strict", false, "Reject malformed declaration shapes instead of skipping them")
	checkRefs := flag.Bool("check-refs", false, "Reject references to symbols never declared in the pass")
	jsonOut := flag.Bool("json", false, "Write a JSON export of the graph to stdout")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("sgc %s\n", version)
		os.Exit(0)
	}

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "error: at least one source path is required")
		flag.Usage()
		os.Exit(1)
	}

	var sources []sdl.Source
	for _, path := range flag.Args() {
		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		if info.IsDir() {
			scanned, err := sdl.ScanDir(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			sources = append(sources, scanned...)
		} else {
			src, err := sdl.ParseFile(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			sources = append(sources, src)
		}
	}

	var store graph.Store
	if *outFile != "" {
		s, err := graph.OpenSQLite(*outFile, compiler.Constraints(), graph.SQLiteStoreConfig{EnforceRefs: *checkRefs})
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = s.Close() }()
		store = s
	} else {
		store = graph.NewMemStore(compiler.Constraints(), graph.MemStoreConfig{EnforceRefs: *checkRefs})
	}

	opts := []compiler.Option{}
	if *strict {
		opts = append(opts, compiler.WithShapePolicy(compiler.ShapeStrict))
	}

	handle, err := compiler.New(store, opts...).Compile(sources...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *jsonOut {
		if err := handle.WriteJSON(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println()
		return
	}

	types := len(handle.Types())
	fmt.Fprintf(os.Stderr, "compiled %d source(s): %d entities, %d types\n",
		len(sources), handle.Len(), types)
}
