package analysis

import (
	set "github.com/hashicorp/go-set/v3"

	"loam/frontend-go/pkg/ast"
)

// RelationScheduleStep is one stratum of the evaluation schedule: a strongly
// connected component of the precedence graph, computed as a unit.
type RelationScheduleStep struct {
	computed *set.Set[*ast.Relation]
}

// Computed returns the relations evaluated in this step.
func (s *RelationScheduleStep) Computed() *set.Set[*ast.Relation] {
	return s.computed
}

// RelationSchedule orders the strongly connected components of the
// precedence graph so that every relation appears after everything it
// depends on.
type RelationSchedule struct {
	steps []*RelationScheduleStep
}

func NewRelationSchedule(graph *PrecedenceGraph) *RelationSchedule {
	components := stronglyConnected(graph)
	schedule := &RelationSchedule{}
	for _, component := range components {
		step := &RelationScheduleStep{computed: set.From(component)}
		schedule.steps = append(schedule.steps, step)
	}
	return schedule
}

// Steps returns the schedule in dependency order.
func (s *RelationSchedule) Steps() []*RelationScheduleStep {
	return s.steps
}

// stronglyConnected computes the SCCs of the precedence graph with Tarjan's
// algorithm. Components come out in reverse topological order of the
// condensation, so reversing yields dependencies-first.
func stronglyConnected(graph *PrecedenceGraph) [][]*ast.Relation {
	index := 0
	indices := make(map[*ast.Relation]int)
	lowlinks := make(map[*ast.Relation]int)
	onStack := make(map[*ast.Relation]bool)
	var stack []*ast.Relation
	var components [][]*ast.Relation

	var connect func(v *ast.Relation)
	connect = func(v *ast.Relation) {
		indices[v] = index
		lowlinks[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph.Successors(v).Slice() {
			if _, seen := indices[w]; !seen {
				connect(w)
				if lowlinks[w] < lowlinks[v] {
					lowlinks[v] = lowlinks[w]
				}
			} else if onStack[w] && indices[w] < lowlinks[v] {
				lowlinks[v] = indices[w]
			}
		}

		if lowlinks[v] == indices[v] {
			var component []*ast.Relation
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				component = append(component, w)
				if w == v {
					break
				}
			}
			components = append(components, component)
		}
	}

	for _, v := range graph.Vertices() {
		if _, seen := indices[v]; !seen {
			connect(v)
		}
	}

	// Tarjan emits a component only once everything reachable from it is
	// finished, so dependents come out before their dependencies; reverse
	// to obtain dependencies-first order.
	for i, j := 0, len(components)-1; i < j; i, j = i+1, j-1 {
		components[i], components[j] = components[j], components[i]
	}
	return components
}
