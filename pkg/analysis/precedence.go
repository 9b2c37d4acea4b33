package analysis

import (
	set "github.com/hashicorp/go-set/v3"

	"loam/frontend-go/pkg/ast"
)

// PrecedenceGraph is the directed dependency graph over relations: an edge
// from B to H records that some clause of H mentions B in its body, whether
// positively, negated, or inside an aggregator.
type PrecedenceGraph struct {
	program    *ast.Program
	vertices   []*ast.Relation
	successors map[*ast.Relation]*set.Set[*ast.Relation]
	predecs    map[*ast.Relation]*set.Set[*ast.Relation]
}

func NewPrecedenceGraph(program *ast.Program) *PrecedenceGraph {
	g := &PrecedenceGraph{
		program:    program,
		successors: make(map[*ast.Relation]*set.Set[*ast.Relation]),
		predecs:    make(map[*ast.Relation]*set.Set[*ast.Relation]),
	}
	for _, rel := range program.Relations {
		g.vertices = append(g.vertices, rel)
		g.successors[rel] = set.New[*ast.Relation](0)
		g.predecs[rel] = set.New[*ast.Relation](0)
	}
	for _, head := range program.Relations {
		for _, clause := range head.Clauses {
			for _, lit := range clause.Body {
				ast.WalkLiterals(lit, func(l ast.Literal) {
					var atom *ast.Atom
					switch body := l.(type) {
					case *ast.Atom:
						atom = body
					case *ast.Negation:
						atom = body.Atom
					default:
						return
					}
					if source := program.Relation(atom.Name); source != nil {
						g.successors[source].Insert(head)
						g.predecs[head].Insert(source)
					}
				})
			}
		}
	}
	return g
}

// Vertices returns the relations of the graph in declaration order.
func (g *PrecedenceGraph) Vertices() []*ast.Relation {
	return g.vertices
}

// Successors returns the relations that directly depend on r.
func (g *PrecedenceGraph) Successors(r *ast.Relation) *set.Set[*ast.Relation] {
	return g.successors[r]
}

// Predecessors returns the relations r directly depends on.
func (g *PrecedenceGraph) Predecessors(r *ast.Relation) *set.Set[*ast.Relation] {
	return g.predecs[r]
}

// Reaches reports whether a non-empty path leads from a to b.
func (g *PrecedenceGraph) Reaches(a, b *ast.Relation) bool {
	visited := set.New[*ast.Relation](0)
	stack := g.successors[a].Slice()
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == b {
			return true
		}
		if visited.Contains(cur) {
			continue
		}
		visited.Insert(cur)
		stack = append(stack, g.successors[cur].Slice()...)
	}
	return false
}

// Clique returns every relation on a common cycle with r, including r
// itself when it sits on a cycle.
func (g *PrecedenceGraph) Clique(r *ast.Relation) *set.Set[*ast.Relation] {
	clique := set.New[*ast.Relation](0)
	for _, other := range g.vertices {
		if g.Reaches(r, other) && g.Reaches(other, r) {
			clique.Insert(other)
		}
	}
	return clique
}
