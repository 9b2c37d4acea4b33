package analysis

import (
	"loam/frontend-go/pkg/ast"
)

// RecursiveClauses classifies each clause as recursive or not: a clause is
// recursive when one of its positive body atoms names a relation that the
// clause's head relation participates in a cycle with.
type RecursiveClauses struct {
	recursive map[*ast.Clause]bool
}

func NewRecursiveClauses(program *ast.Program, graph *PrecedenceGraph) *RecursiveClauses {
	rc := &RecursiveClauses{recursive: make(map[*ast.Clause]bool)}
	for _, rel := range program.Relations {
		for _, clause := range rel.Clauses {
			rc.recursive[clause] = isRecursive(rel, clause, program, graph)
		}
	}
	return rc
}

func isRecursive(head *ast.Relation, clause *ast.Clause, program *ast.Program, graph *PrecedenceGraph) bool {
	for _, atom := range clause.Atoms() {
		body := program.Relation(atom.Name)
		if body == nil {
			continue
		}
		if body == head || graph.Reaches(head, body) {
			return true
		}
	}
	return false
}

// Recursive reports whether the clause takes part in a recursive cycle.
func (rc *RecursiveClauses) Recursive(clause *ast.Clause) bool {
	return rc.recursive[clause]
}
