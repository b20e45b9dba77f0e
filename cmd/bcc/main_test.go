package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleAST = `{
	"node":"program","left":[
		{"node":"function_definition","root":"main","left":[],
		 "right":{"node":"statement","root":"block","right":[
			{"node":"statement","root":"auto","left":[{"node":"lvalue","root":"x"}]},
			{"node":"statement","root":"rvalue","left":{
				"node":"assignment_expression","root":"B_ASSIGN",
				"left":{"node":"lvalue","root":"x"},
				"right":{"node":"number_literal","root":"1"}
			}},
			{"node":"statement","root":"return","left":{"node":"lvalue","root":"x"}}
		 ]}}
	]
}`

const sampleSymbols = `{}`

func TestParseArgsPairsAstAndSymbolsByPosition(t *testing.T) {
	cfg, err := parseArgs([]string{
		"-ast", "a.json", "-symbols", "a.sym.json",
		"-ast", "b.json", "-symbols", "b.sym.json",
		"-os", "linux", "-arch", "amd64",
	})
	if err != nil {
		t.Fatalf("parseArgs returned an error: %v", err)
	}
	if len(cfg.units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(cfg.units))
	}
	if cfg.units[0].astPath != "a.json" || cfg.units[0].symbolsPath != "a.sym.json" {
		t.Fatalf("unexpected first unit: %+v", cfg.units[0])
	}
	if cfg.units[1].astPath != "b.json" || cfg.units[1].symbolsPath != "b.sym.json" {
		t.Fatalf("unexpected second unit: %+v", cfg.units[1])
	}
	if cfg.os != "linux" || cfg.arch != "amd64" {
		t.Fatalf("expected -os/-arch to be recorded, got %+v", cfg)
	}
}

func TestParseArgsRejectsMismatchedCounts(t *testing.T) {
	_, err := parseArgs([]string{"-ast", "a.json", "-symbols", "a.sym.json", "-ast", "b.json"})
	if err == nil {
		t.Fatalf("expected an error for an unmatched -ast")
	}
}

func TestParseArgsAcceptsDebugFlag(t *testing.T) {
	cfg, err := parseArgs([]string{"-ast", "a.json", "-symbols", "a.sym.json", "-debug"})
	if err != nil {
		t.Fatalf("parseArgs returned an error: %v", err)
	}
	if !cfg.debug {
		t.Fatalf("expected -debug to set cfg.debug")
	}
}

func TestParseArgsRejectsUnknownFlag(t *testing.T) {
	_, err := parseArgs([]string{"-bogus", "1"})
	if err == nil {
		t.Fatalf("expected an error for an unrecognized flag")
	}
}

func TestCompileAllRunsEachUnitIndependently(t *testing.T) {
	dir := t.TempDir()
	astPath := filepath.Join(dir, "main.ast.json")
	symPath := filepath.Join(dir, "main.sym.json")
	if err := os.WriteFile(astPath, []byte(sampleAST), 0o644); err != nil {
		t.Fatalf("writing ast fixture: %v", err)
	}
	if err := os.WriteFile(symPath, []byte(sampleSymbols), 0o644); err != nil {
		t.Fatalf("writing symbols fixture: %v", err)
	}

	cfg := config{units: []unit{{astPath: astPath, symbolsPath: symPath}}}
	results, err := compileAll(cfg)
	if err != nil {
		t.Fatalf("compileAll returned an error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].err != nil {
		t.Fatalf("unexpected unit compile error: %v", results[0].err)
	}
	if !strings.Contains(results[0].result.Text, "__main") {
		t.Fatalf("expected emitted text to mention the main entry label, got %q", results[0].result.Text)
	}
}

func TestCompileAllReportsPerUnitLoadError(t *testing.T) {
	cfg := config{units: []unit{{astPath: "/does/not/exist.json", symbolsPath: "/does/not/exist.sym.json"}}}
	results, err := compileAll(cfg)
	if err != nil {
		t.Fatalf("compileAll itself should not fail on a missing file: %v", err)
	}
	if results[0].err == nil {
		t.Fatalf("expected a per-unit load error for a missing file")
	}
}
