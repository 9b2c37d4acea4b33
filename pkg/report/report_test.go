package report

import (
	"strings"
	"testing"

	"loam/frontend-go/pkg/ast"
)

func TestReportCounts(t *testing.T) {
	r := NewErrorReport()
	r.AddError("boom", ast.Loc("f.loam", 3, 1))
	r.AddWarning("meh", ast.Loc("f.loam", 1, 1))
	r.AddGlobalError("global boom")

	if r.NumErrors() != 2 {
		t.Fatalf("expected 2 errors, got %d", r.NumErrors())
	}
	if r.NumWarnings() != 1 {
		t.Fatalf("expected 1 warning, got %d", r.NumWarnings())
	}
}

func TestReportPrintSortsByLocation(t *testing.T) {
	r := NewErrorReport()
	r.AddError("second", ast.Loc("f.loam", 9, 1))
	r.AddError("first", ast.Loc("f.loam", 2, 1))

	var sb strings.Builder
	r.Print(&sb)
	out := sb.String()
	if strings.Index(out, "first") > strings.Index(out, "second") {
		t.Fatalf("diagnostics should print in source order:\n%s", out)
	}
	if !strings.Contains(out, "Error: first in f.loam:2:1") {
		t.Fatalf("unexpected rendering:\n%s", out)
	}
}

func TestCompositeDiagnosticRendering(t *testing.T) {
	d := Diagnostic{
		Severity: SeverityError,
		Primary:  Msg("Unable to stratify relation(s) {a,b}"),
		Notes: []Message{
			MsgAt("Relation a", ast.Loc("f.loam", 1, 1)),
			MsgAt("has cyclic negation", ast.Loc("f.loam", 4, 9)),
		},
	}
	out := d.String()
	if !strings.HasPrefix(out, "Error: Unable to stratify") {
		t.Fatalf("unexpected prefix: %s", out)
	}
	if !strings.Contains(out, "has cyclic negation in f.loam:4:9") {
		t.Fatalf("notes should render with their locations: %s", out)
	}
}
