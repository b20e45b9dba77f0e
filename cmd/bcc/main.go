// cmd/bcc is the driver: it reads one or more translation units (a JSON
// program AST plus its hoisted symbol table), runs them through
// internal/invocation, and prints each unit's emitted ITA text or a
// formatted compile error. Flags are parsed by hand off os.Args, the way
// cmd/sentra/main.go does it, rather than reaching for a flags library.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"bcc/internal/ast"
	"bcc/internal/invocation"
)

// unit is one translation unit's input pair: a program AST file and the
// hoisted symbol table the front end produced for it.
type unit struct {
	astPath     string
	symbolsPath string
}

type config struct {
	units []unit
	os    string
	arch  string
	debug bool
}

func main() {
	cfg, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		usage()
		os.Exit(2)
	}
	if len(cfg.units) == 0 {
		usage()
		os.Exit(2)
	}

	results, err := compileAll(cfg)
	if err != nil {
		log.Fatal(err)
	}

	ok := true
	for i, r := range results {
		if r.err != nil {
			ok = false
			printError(os.Stderr, cfg.units[i].astPath, r.err)
			continue
		}
		fmt.Print(r.result.Text)
		if cfg.debug {
			fmt.Fprint(os.Stderr, r.result.Objects.DebugDump())
		}
	}
	if !ok {
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: bcc -ast <file> -symbols <file> [-ast <file> -symbols <file> ...] [-os <name>] [-arch <name>] [-debug]

-ast and -symbols may each be repeated to batch-compile several
independent translation units in one invocation; the nth -ast pairs
with the nth -symbols. -os and -arch are informational only — the
runtime/stdlib catalog is selected at build time, not by these flags.
-debug prints each unit's object table (frame bounds, allocation
footprint, label counts) to stderr alongside its emitted ITA text.`)
}

// parseArgs scans args by hand for -ast, -symbols, -os, -arch, in the
// manual os.Args style cmd/sentra/main.go uses rather than the stdlib
// flag package's single-pass, single-value-per-flag model — this CLI
// needs a flag to repeat and accumulate, not overwrite.
func parseArgs(args []string) (config, error) {
	var cfg config
	var astPaths, symbolPaths []string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-ast":
			i++
			if i >= len(args) {
				return config{}, fmt.Errorf("-ast requires a path argument")
			}
			astPaths = append(astPaths, args[i])
		case "-symbols":
			i++
			if i >= len(args) {
				return config{}, fmt.Errorf("-symbols requires a path argument")
			}
			symbolPaths = append(symbolPaths, args[i])
		case "-os":
			i++
			if i >= len(args) {
				return config{}, fmt.Errorf("-os requires a value")
			}
			cfg.os = args[i]
		case "-arch":
			i++
			if i >= len(args) {
				return config{}, fmt.Errorf("-arch requires a value")
			}
			cfg.arch = args[i]
		case "-debug":
			cfg.debug = true
		default:
			return config{}, fmt.Errorf("unrecognized argument %q", args[i])
		}
	}

	if len(astPaths) != len(symbolPaths) {
		return config{}, fmt.Errorf("got %d -ast path(s) but %d -symbols path(s); each -ast needs a matching -symbols", len(astPaths), len(symbolPaths))
	}
	for i := range astPaths {
		cfg.units = append(cfg.units, unit{astPath: astPaths[i], symbolsPath: symbolPaths[i]})
	}
	return cfg, nil
}

type unitResult struct {
	result *invocation.Result
	err    error
}

// compileAll runs one invocation per unit concurrently via errgroup: per
// spec.md §5 a single invocation owns everything it touches, so nothing
// beyond the slot each goroutine writes into is shared mutable state.
func compileAll(cfg config) ([]unitResult, error) {
	results := make([]unitResult, len(cfg.units))
	eg, _ := errgroup.WithContext(context.Background())

	for i, u := range cfg.units {
		i, u := i, u
		eg.Go(func() error {
			program, hoisted, err := loadUnit(u)
			if err != nil {
				results[i] = unitResult{err: err}
				return nil
			}
			inv := invocation.New(hoisted)
			res, err := inv.Compile(program)
			results[i] = unitResult{result: res, err: err}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func loadUnit(u unit) (*ast.Node, ast.Symbols, error) {
	astRaw, err := os.ReadFile(u.astPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", u.astPath, err)
	}
	program, err := ast.ParseProgram(astRaw)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", u.astPath, err)
	}

	symbolsRaw, err := os.ReadFile(u.symbolsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", u.symbolsPath, err)
	}
	hoisted, err := ast.ParseSymbols(symbolsRaw)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", u.symbolsPath, err)
	}

	return program, hoisted, nil
}

// printError writes path's compile error to w, bolded when w is a
// terminal and plain when it's piped — the same isatty check used
// anywhere in the Go ecosystem that colorizes conditionally.
func printError(w *os.File, path string, err error) {
	if isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd()) {
		fmt.Fprintf(w, "\x1b[1m%s:\x1b[0m %s\n", path, err)
		return
	}
	fmt.Fprintf(w, "%s: %s\n", path, err)
}
