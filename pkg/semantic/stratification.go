package semantic

import (
	"fmt"
	"sort"
	"strings"

	"loam/frontend-go/pkg/analysis"
	"loam/frontend-go/pkg/ast"
	"loam/frontend-go/pkg/report"
)

// checkStratification reports every recursion clique that depends on one of
// its own members through negation or aggregation.
func (c *Checker) checkStratification() {
	for _, cur := range c.graph.Vertices() {
		if !c.graph.Reaches(cur, cur) {
			continue
		}
		clique := c.graph.Clique(cur).Slice()
		sort.Slice(clique, func(i, j int) bool { return clique[i].Name < clique[j].Name })

		for _, cyclic := range clique {
			foundLiteral, hasNegation := ast.HasClauseWithNegatedRelation(cyclic, cur, c.program)
			if !hasNegation {
				var hasAggregation bool
				foundLiteral, hasAggregation = ast.HasClauseWithAggregatedRelation(cyclic, cur, c.program)
				if !hasAggregation {
					continue
				}
			}

			names := make([]string, 0, len(clique))
			for _, rel := range clique {
				names = append(names, rel.Name.String())
			}
			dependency := "aggregation"
			if hasNegation {
				dependency = "negation"
			}
			c.report.AddDiagnostic(report.Diagnostic{
				Severity: report.SeverityError,
				Primary:  report.Msg(fmt.Sprintf("Unable to stratify relation(s) {%s}", strings.Join(names, ","))),
				Notes: []report.Message{
					report.MsgAt(fmt.Sprintf("Relation %s", cur.Name), cur.SrcLoc()),
					report.MsgAt("has cyclic "+dependency, foundLiteral.SrcLoc()),
				},
			})
			break
		}
	}
}

// CheckExecutionPlans validates that the versions of every recursive
// clause's execution plan stay below the clause's version count within its
// stratum. It is a separate pass because it needs the relation schedule.
func CheckExecutionPlans(tu *analysis.TranslationUnit) {
	schedule := analysis.Get[*analysis.RelationSchedule](tu)
	recursive := analysis.Get[*analysis.RecursiveClauses](tu)
	program := tu.Program

	for _, step := range schedule.Steps() {
		scc := step.Computed()
		relations := scc.Slice()
		sort.Slice(relations, func(i, j int) bool { return relations[i].Name < relations[j].Name })
		for _, rel := range relations {
			for _, clause := range rel.Clauses {
				if !recursive.Recursive(clause) || clause.Plan == nil {
					continue
				}
				version := 0
				for _, atom := range clause.Atoms() {
					if target := ast.AtomRelation(atom, program); target != nil && scc.Contains(target) {
						version++
					}
				}
				if version > clause.Plan.MaxVersion() {
					continue
				}
				for _, planVersion := range sortedVersions(clause.Plan) {
					if planVersion < version {
						continue
					}
					order := clause.Plan.Orders[planVersion]
					tu.Report.AddDiagnostic(report.Diagnostic{
						Severity: report.SeverityError,
						Primary:  report.MsgAt(fmt.Sprintf("execution plan for version %d", planVersion), order.SrcLoc()),
						Notes: []report.Message{
							report.Msg(fmt.Sprintf("only versions 0..%d permitted", version-1)),
						},
					})
				}
			}
		}
	}
}
