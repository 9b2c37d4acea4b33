package driver

import (
	"os"
	"path/filepath"
	"testing"

	"loam/frontend-go/pkg/ast"
)

const sampleProgram = `
types:
  - union: {name: T, members: [number]}
  - record:
      name: Pair
      fields:
        - {name: a, type: number}
        - {name: b, type: number}
relations:
  - name: edge
    attributes:
      - {name: x, type: number}
      - {name: y, type: number}
    input: true
  - name: path
    attributes:
      - {name: x, type: number}
      - {name: y, type: number}
    output: true
clauses:
  - head:
      name: path
      args: [{var: X}, {var: Y}]
    body:
      - atom:
          name: edge
          args: [{var: X}, {var: Y}]
  - head:
      name: path
      args: [{var: X}, {var: Z}]
    body:
      - atom:
          name: edge
          args: [{var: X}, {var: Y}]
      - atom:
          name: path
          args: [{var: Y}, {var: Z}]
directives:
  - {kind: store, name: path}
functors:
  - {name: hash, args: [symbol], returns: number}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadProgram(t *testing.T) {
	path := writeFile(t, "program.yaml", sampleProgram)
	program, err := LoadProgram(path)
	if err != nil {
		t.Fatalf("LoadProgram: %v", err)
	}

	if len(program.Relations) != 2 {
		t.Fatalf("expected 2 relations, got %d", len(program.Relations))
	}
	edge := program.Relation("edge")
	if edge == nil || !edge.Input || edge.Arity() != 2 {
		t.Fatalf("edge relation not loaded correctly: %+v", edge)
	}
	path2 := program.Relation("path")
	if path2 == nil || len(path2.Clauses) != 2 {
		t.Fatalf("expected both clauses attached to path")
	}
	if len(program.Directives) != 1 || program.Directives[0].Kind != ast.DirectiveStore {
		t.Fatalf("store directive not loaded")
	}
	if program.FunctorDeclaration("hash") == nil {
		t.Fatalf("functor declaration not loaded")
	}
	if program.TypeDecl("T") == nil || program.TypeDecl("Pair") == nil {
		t.Fatalf("type declarations not loaded")
	}

	// Locations point back into the document.
	if loc := path2.Clauses[0].Head.SrcLoc(); loc.Filename != path || loc.StartLine == 0 {
		t.Fatalf("expected head location in %s, got %v", path, loc)
	}
}

func TestRunCleanProgram(t *testing.T) {
	path := writeFile(t, "program.yaml", sampleProgram)
	program, err := LoadProgram(path)
	if err != nil {
		t.Fatalf("LoadProgram: %v", err)
	}

	result, err := Run(program, NewConfig())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n := result.Report.NumErrors(); n != 0 {
		t.Fatalf("expected a clean program, got %d errors", n)
	}
	if result.Semantic.UsesRecords {
		t.Fatalf("program declares but never uses a record type in a relation")
	}
	if len(result.TypeAnalysis.TypedClauses()) != 2 {
		t.Fatalf("expected both clauses typed")
	}
}

func TestRunReportsErrors(t *testing.T) {
	const broken = `
relations:
  - name: r
    attributes:
      - {name: x, type: number}
clauses:
  - head:
      name: r
      args: [{var: X}]
`
	path := writeFile(t, "broken.yaml", broken)
	program, err := LoadProgram(path)
	if err != nil {
		t.Fatalf("LoadProgram: %v", err)
	}

	result, err := Run(program, NewConfig())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Report.NumErrors() != 1 {
		t.Fatalf("expected the fact-variable error, got %d errors", result.Report.NumErrors())
	}
}

func TestRunWithDebugReport(t *testing.T) {
	path := writeFile(t, "program.yaml", sampleProgram)
	program, err := LoadProgram(path)
	if err != nil {
		t.Fatalf("LoadProgram: %v", err)
	}

	debugPath := filepath.Join(t.TempDir(), "debug.log")
	cfg := NewConfig()
	cfg.Set(KeyDebugReport, debugPath)
	if _, err := Run(program, cfg); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(debugPath)
	if err != nil {
		t.Fatalf("debug report not written: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected per-clause debug output")
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "config.yaml", "suppress-warnings: \"*\"\ndebug-report: \"-\"\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.Has(KeySuppressWarnings) || cfg.Get(KeySuppressWarnings) != "*" {
		t.Fatalf("suppress-warnings not loaded")
	}
	cfg.Unset(KeyDebugReport)
	if cfg.Has(KeyDebugReport) {
		t.Fatalf("Unset should remove the key")
	}
}

func TestLoadProgramRejectsUnknownOperators(t *testing.T) {
	const bad = `
relations:
  - name: r
    attributes:
      - {name: x, type: number}
clauses:
  - head:
      name: r
      args: [{functor: {op: frobnicate, args: []}}]
`
	path := writeFile(t, "bad.yaml", bad)
	if _, err := LoadProgram(path); err == nil {
		t.Fatalf("expected an unknown functor operator error")
	}
}
