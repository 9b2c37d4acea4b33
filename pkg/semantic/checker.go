// Package semantic implements the static checks of the front-end: scope,
// arity, groundedness, stratification, inlining safety, and type
// correctness. Checks are independent; every check runs to completion and
// accumulates diagnostics in the shared error report.
package semantic

import (
	"fmt"
	"strings"

	"loam/frontend-go/pkg/analysis"
	"loam/frontend-go/pkg/ast"
	"loam/frontend-go/pkg/report"
	"loam/frontend-go/pkg/typecheck"
)

// Options carries the configuration the checker honors.
type Options struct {
	// SuppressWarnings mutes no-rules warnings for the named relations;
	// the value "*" mutes every relation. Ignored unless set.
	SuppressWarnings    string
	HasSuppressWarnings bool
}

// Result reports facts the driver needs beyond the diagnostics. UsesRecords
// is set when a record-typed attribute or record constructor occurs anywhere
// in the program; drivers that cannot compile records consult it instead of
// the checker mutating global state behind their back.
type Result struct {
	UsesRecords bool
}

// Checker wires one program's semantic checks together.
type Checker struct {
	program       *ast.Program
	report        *report.ErrorReport
	env           *analysis.TypeEnvironment
	typeAnalysis  *typecheck.TypeAnalysis
	graph         *analysis.PrecedenceGraph
	recursive     *analysis.RecursiveClauses
	io            *analysis.IOType
	result        Result
	aggrVarNumber int
}

// Check runs every semantic check over the translation unit, writing
// diagnostics into its error report.
func Check(tu *analysis.TranslationUnit, typeAnalysis *typecheck.TypeAnalysis, opts Options) Result {
	c := &Checker{
		program:      tu.Program,
		report:       tu.Report,
		env:          analysis.Get[*analysis.TypeEnvironment](tu),
		typeAnalysis: typeAnalysis,
		graph:        analysis.Get[*analysis.PrecedenceGraph](tu),
		recursive:    analysis.Get[*analysis.RecursiveClauses](tu),
		io:           analysis.Get[*analysis.IOType](tu),
	}

	c.suppressWarnings(opts)

	c.checkTypes()
	c.checkRules()
	c.checkNamespaces()
	c.checkIODirectives()
	c.checkWitnessProblem()
	c.checkInlining()
	c.checkGroundedness()
	c.checkTypeUsage()
	c.checkTypeCorrectness()
	c.checkStratification()

	return c.result
}

// suppressWarnings applies the suppress-warnings configuration: "*" mutes
// every relation, otherwise each named relation that exists is muted.
func (c *Checker) suppressWarnings(opts Options) {
	if !opts.HasSuppressWarnings {
		return
	}
	names := strings.Split(opts.SuppressWarnings, ",")
	for _, name := range names {
		if strings.TrimSpace(name) == "*" {
			for _, rel := range c.program.Relations {
				rel.Suppressed = true
			}
			return
		}
	}
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		if rel := c.program.Relation(ast.QualifiedName(trimmed)); rel != nil {
			rel.Suppressed = true
		}
	}
}

// checkTypes validates union and record declarations.
func (c *Checker) checkTypes() {
	for _, decl := range c.program.Types {
		switch t := decl.(type) {
		case *ast.UnionTypeDecl:
			c.checkUnionType(t)
		case *ast.RecordTypeDecl:
			c.checkRecordType(t)
		}
	}
}

func (c *Checker) checkUnionType(t *ast.UnionTypeDecl) {
	for _, member := range t.Members {
		if member == "number" || member == "symbol" {
			continue
		}
		memberDecl := c.program.TypeDecl(member)
		if memberDecl == nil {
			c.report.AddError(
				fmt.Sprintf("Undefined type %s in definition of union type %s", member, t.Name),
				t.SrcLoc())
		} else if _, isRecord := memberDecl.(*ast.RecordTypeDecl); isRecord {
			c.report.AddError(
				fmt.Sprintf("Union type %s contains the non-primitive type %s", t.Name, member),
				t.SrcLoc())
		}
	}

	if c.unionContainsKind(t, ast.KindSymbol, make(map[string]bool)) &&
		c.unionContainsKind(t, ast.KindNumber, make(map[string]bool)) {
		c.report.AddError(
			fmt.Sprintf("Union type %s contains a mixture of symbol and number types", t.Name),
			t.SrcLoc())
	}
}

// unionContainsKind reports whether any member of the union transitively
// bottoms out in the given primitive kind.
func (c *Checker) unionContainsKind(t *ast.UnionTypeDecl, kind ast.Kind, visited map[string]bool) bool {
	if visited[t.Name] {
		return false
	}
	visited[t.Name] = true
	for _, member := range t.Members {
		if member == "number" && kind == ast.KindNumber {
			return true
		}
		if member == "symbol" && kind == ast.KindSymbol {
			return true
		}
		switch memberDecl := c.program.TypeDecl(member).(type) {
		case *ast.UnionTypeDecl:
			if c.unionContainsKind(memberDecl, kind, visited) {
				return true
			}
		case *ast.PrimitiveTypeDecl:
			if memberDecl.Numeric == (kind == ast.KindNumber) {
				return true
			}
		}
	}
	return false
}

func (c *Checker) checkRecordType(t *ast.RecordTypeDecl) {
	for _, field := range t.Fields {
		if field.TypeName != "number" && field.TypeName != "symbol" && c.program.TypeDecl(field.TypeName) == nil {
			c.report.AddError(
				fmt.Sprintf("Undefined type %s in definition of field %s", field.TypeName, field.Name),
				t.SrcLoc())
		}
	}
	for i, field := range t.Fields {
		for j := 0; j < i; j++ {
			if t.Fields[j].Name == field.Name {
				c.report.AddError(
					fmt.Sprintf("Doubly defined field name %s in definition of type %s", field.Name, t.Name),
					t.SrcLoc())
			}
		}
	}
}

// checkNamespaces verifies that type and relation names are disjoint,
// reporting the second occurrence of each clash.
func (c *Checker) checkNamespaces() {
	names := make(map[string]ast.SrcLocation)
	for _, t := range c.program.Types {
		name := t.TypeName()
		if _, clash := names[name]; clash {
			c.report.AddError(fmt.Sprintf("Name clash on type %s", name), t.SrcLoc())
		} else {
			names[name] = t.SrcLoc()
		}
	}
	for _, rel := range c.program.Relations {
		name := rel.Name.String()
		if _, clash := names[name]; clash {
			c.report.AddError(fmt.Sprintf("Name clash on relation %s", name), rel.SrcLoc())
		} else {
			names[name] = rel.SrcLoc()
		}
	}
}

// checkIODirectives verifies that every load, store, and printsize names an
// existing relation.
func (c *Checker) checkIODirectives() {
	for _, directive := range c.program.Directives {
		if c.program.Relation(directive.Name) == nil {
			c.report.AddError(fmt.Sprintf("Undefined relation %s", directive.Name), directive.SrcLoc())
		}
	}
}
