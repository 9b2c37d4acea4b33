package typecheck

import (
	"go.uber.org/zap"

	"loam/frontend-go/pkg/analysis"
	"loam/frontend-go/pkg/ast"
)

// TypeAnalysis runs the solver over every typable clause of a program and
// retains the inferred type of each argument.
type TypeAnalysis struct {
	lattice      *TypeLattice
	types        map[ast.Argument]AnalysisType
	typedClauses []*ast.Clause
	skipped      bool
	logger       *zap.Logger
}

// NewTypeAnalysis creates an analysis; logger may be nil, otherwise the
// per-clause constraint sets and solutions are logged for the debug report.
func NewTypeAnalysis(logger *zap.Logger) *TypeAnalysis {
	return &TypeAnalysis{
		types:  make(map[ast.Argument]AnalysisType),
		logger: logger,
	}
}

// Run builds the lattice from the translation unit's type environment and
// types every clause that is structurally fit for typing.
func (t *TypeAnalysis) Run(tu *analysis.TranslationUnit) {
	env := analysis.Get[*analysis.TypeEnvironment](tu)
	t.lattice = NewTypeLattice(env)
	if !t.lattice.IsValid() {
		return
	}

	program := tu.Program
	for _, rel := range program.Relations {
		for _, clause := range rel.Clauses {
			if !FitForTyping(program, clause) {
				t.skipped = true
				continue
			}
			t.typedClauses = append(t.typedClauses, clause)

			solver := NewTypeSolver(program, t.lattice, clause, t.logger)
			ast.WalkArguments(clause, func(arg ast.Argument) {
				t.types[arg] = solver.TypeOf(arg)
			})
		}
	}

	if t.logger != nil && t.skipped {
		t.logger.Debug("some clauses were skipped as they cannot be typechecked")
	}
}

// TypeOf returns the inferred analysis type of an argument, or nil when its
// clause was not typed.
func (t *TypeAnalysis) TypeOf(arg ast.Argument) AnalysisType {
	return t.types[arg]
}

// TypedClauses returns the clauses the solver processed.
func (t *TypeAnalysis) TypedClauses() []*ast.Clause {
	return t.typedClauses
}

// FoundSkippedClauses reports whether any clause was structurally unfit for
// typing and therefore skipped.
func (t *TypeAnalysis) FoundSkippedClauses() bool {
	return t.skipped
}

// Lattice returns the lattice the analysis was run against.
func (t *TypeAnalysis) Lattice() *TypeLattice {
	return t.lattice
}

// FitForTyping reports whether a clause is structurally sound enough to
// generate type constraints for: every atom resolves to a declared relation
// of matching arity with declared attribute types, user functors and record
// constructors match their declarations, and casts name declared types.
// Unfit clauses are skipped by the analysis and recorded so later checks can
// avoid piling on.
func FitForTyping(program *ast.Program, clause *ast.Clause) bool {
	fit := true

	ast.Walk(clause, func(n ast.Node) {
		switch node := n.(type) {
		case *ast.Atom:
			rel := program.Relation(node.Name)
			if rel == nil || rel.Arity() != node.Arity() {
				fit = false
				return
			}
			for _, attr := range rel.Attributes {
				if attr.TypeName == "number" || attr.TypeName == "symbol" {
					continue
				}
				if program.TypeDecl(attr.TypeName) == nil {
					fit = false
					return
				}
			}
		case *ast.UserDefinedFunctor:
			decl := program.FunctorDeclaration(node.Name)
			if decl == nil || decl.Arity() != node.Arity() {
				fit = false
			}
		case *ast.RecordInit:
			decl, ok := program.TypeDecl(node.TypeName).(*ast.RecordTypeDecl)
			if !ok || len(decl.Fields) != len(node.Args) {
				fit = false
			}
		case *ast.TypeCast:
			if node.TypeName == "number" || node.TypeName == "symbol" {
				return
			}
			if program.TypeDecl(node.TypeName) == nil {
				fit = false
			}
		}
	})

	return fit
}
