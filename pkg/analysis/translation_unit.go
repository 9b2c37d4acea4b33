// Package analysis provides the translation unit and the auxiliary analyses
// the semantic passes consume: the type environment, the precedence graph,
// the recursive-clause classification, the relation schedule, and the I/O
// classification. Analyses are registered as named services and built
// lazily on first request.
package analysis

import (
	"github.com/samber/do"

	"loam/frontend-go/pkg/ast"
	"loam/frontend-go/pkg/report"
)

// TranslationUnit owns one program under analysis together with its
// diagnostic sink and the lazily constructed auxiliary analyses.
type TranslationUnit struct {
	Program *ast.Program
	Report  *report.ErrorReport

	injector *do.Injector
}

func NewTranslationUnit(program *ast.Program, errorReport *report.ErrorReport) *TranslationUnit {
	tu := &TranslationUnit{
		Program:  program,
		Report:   errorReport,
		injector: do.New(),
	}
	do.ProvideValue(tu.injector, tu)
	do.Provide(tu.injector, newTypeEnvironmentService)
	do.Provide(tu.injector, newPrecedenceGraphService)
	do.Provide(tu.injector, newRecursiveClausesService)
	do.Provide(tu.injector, newRelationScheduleService)
	do.Provide(tu.injector, newIOTypeService)
	return tu
}

// Get resolves an analysis from the translation unit, constructing it (and
// anything it depends on) on first use.
func Get[A any](tu *TranslationUnit) A {
	return do.MustInvoke[A](tu.injector)
}

func newTypeEnvironmentService(i *do.Injector) (*TypeEnvironment, error) {
	tu := do.MustInvoke[*TranslationUnit](i)
	return NewTypeEnvironment(tu.Program), nil
}

func newPrecedenceGraphService(i *do.Injector) (*PrecedenceGraph, error) {
	tu := do.MustInvoke[*TranslationUnit](i)
	return NewPrecedenceGraph(tu.Program), nil
}

func newRecursiveClausesService(i *do.Injector) (*RecursiveClauses, error) {
	graph := do.MustInvoke[*PrecedenceGraph](i)
	tu := do.MustInvoke[*TranslationUnit](i)
	return NewRecursiveClauses(tu.Program, graph), nil
}

func newRelationScheduleService(i *do.Injector) (*RelationSchedule, error) {
	graph := do.MustInvoke[*PrecedenceGraph](i)
	return NewRelationSchedule(graph), nil
}

func newIOTypeService(i *do.Injector) (*IOType, error) {
	tu := do.MustInvoke[*TranslationUnit](i)
	return NewIOType(tu.Program), nil
}
