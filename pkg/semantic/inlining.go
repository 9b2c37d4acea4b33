package semantic

import (
	"fmt"
	"sort"
	"strings"

	"loam/frontend-go/pkg/ast"
)

// checkInlining validates that the inline-qualified relations can actually
// be substituted away: no I/O, no cyclic inlining, no counters, no negated
// relations that introduce variables, no underscores under negation, and no
// appearances inside aggregators.
func (c *Checker) checkInlining() {
	var inlined []*ast.Relation
	for _, rel := range c.program.Relations {
		if rel.Inline {
			inlined = append(inlined, rel)
			if c.io.IsIO(rel) {
				c.report.AddError(
					fmt.Sprintf("IO relation %s cannot be inlined", rel.Name),
					rel.SrcLoc())
			}
		}
	}
	sort.Slice(inlined, func(i, j int) bool { return inlined[i].Name < inlined[j].Name })

	// Check 1: the restriction of the precedence graph to inlined
	// relations must be acyclic.
	if cycle := c.findInlineCycle(inlined); len(cycle) > 0 {
		origin := c.program.Relation(cycle[len(cycle)-1])
		names := make([]string, 0, len(cycle))
		names = append(names, origin.Name.String())
		for i := len(cycle) - 2; i >= 0; i-- {
			names = append(names, cycle[i].String())
		}
		c.report.AddError(
			fmt.Sprintf("Cannot inline cyclically dependent relations {%s}", strings.Join(names, ", ")),
			origin.SrcLoc())
	}

	// Check 2: the counter argument '$' may neither flow into an inlined
	// relation nor occur inside one of its clauses.
	for _, clause := range c.program.AllClauses() {
		ast.Walk(clause, func(n ast.Node) {
			atom, ok := n.(*ast.Atom)
			if !ok {
				return
			}
			rel := c.program.Relation(atom.Name)
			if rel == nil || !rel.Inline {
				return
			}
			ast.WalkArguments(atom, func(arg ast.Argument) {
				if _, ok := arg.(*ast.Counter); ok {
					c.report.AddError("Cannot inline literal containing a counter argument '$'", arg.SrcLoc())
				}
			})
		})
	}
	for _, rel := range inlined {
		for _, clause := range rel.Clauses {
			ast.WalkArguments(clause, func(arg ast.Argument) {
				if _, ok := arg.(*ast.Counter); ok {
					c.report.AddError("Cannot inline clause containing a counter argument '$'", arg.SrcLoc())
				}
			})
		}
	}

	// Check 3: an inlined relation whose body introduces variables missing
	// from its head cannot appear negated.
	nonNegatable := make(map[*ast.Relation]bool)
	for _, rel := range inlined {
		for _, clause := range rel.Clauses {
			headVars := make(map[string]bool)
			ast.WalkVariables(clause.Head, func(v *ast.Variable) { headVars[v.Name] = true })
			introduces := false
			for _, lit := range clause.Body {
				ast.WalkVariables(lit, func(v *ast.Variable) {
					if !headVars[v.Name] {
						introduces = true
					}
				})
			}
			if introduces {
				nonNegatable[rel] = true
				break
			}
		}
	}
	for _, clause := range c.program.AllClauses() {
		ast.Walk(clause, func(n ast.Node) {
			neg, ok := n.(*ast.Negation)
			if !ok {
				return
			}
			rel := c.program.Relation(neg.Atom.Name)
			if rel != nil && nonNegatable[rel] {
				c.report.AddError("Cannot inline negated relation which may introduce new variables", neg.SrcLoc())
			}
		})
	}

	// Check 4: atoms of inlined relations may not appear inside
	// aggregators; the aggregate would decompose into per-clause
	// aggregates with different semantics.
	for _, clause := range c.program.AllClauses() {
		ast.Walk(clause, func(n ast.Node) {
			aggr, ok := n.(*ast.Aggregator)
			if !ok {
				return
			}
			ast.Walk(aggr, func(inner ast.Node) {
				if atom, ok := inner.(*ast.Atom); ok {
					rel := c.program.Relation(atom.Name)
					if rel != nil && rel.Inline {
						c.report.AddError("Cannot inline relations that appear in aggregator", atom.SrcLoc())
					}
				}
			})
		})
	}

	// Check 5: a negated inlined atom may not contain an unnamed variable,
	// except inside a nested aggregator, which grounds its whole body.
	for _, clause := range c.program.AllClauses() {
		ast.Walk(clause, func(n ast.Node) {
			neg, ok := n.(*ast.Negation)
			if !ok {
				return
			}
			rel := c.program.Relation(neg.Atom.Name)
			if rel == nil || !rel.Inline {
				return
			}
			if loc, found := findInvalidUnderscore(neg.Atom); found {
				c.report.AddError(
					"Cannot inline negated atom containing an unnamed variable unless the variable is within an aggregator",
					loc)
			}
		})
	}
}

// findInvalidUnderscore locates the first unnamed variable beneath the node
// that is not shielded by an aggregator.
func findInvalidUnderscore(n ast.Node) (ast.SrcLocation, bool) {
	switch n.(type) {
	case *ast.UnnamedVariable:
		return n.SrcLoc(), true
	case *ast.Aggregator:
		return ast.SrcLocation{}, false
	}
	for _, child := range ast.Children(n) {
		if loc, found := findInvalidUnderscore(child); found {
			return loc, true
		}
	}
	return ast.SrcLocation{}, false
}

// findInlineCycle searches the inlined-only subgraph of the precedence
// graph for a cycle, returning its members in reverse discovery order.
func (c *Checker) findInlineCycle(inlined []*ast.Relation) []ast.QualifiedName {
	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[*ast.Relation]int)
	origins := make(map[*ast.Relation]*ast.Relation)

	var visit func(cur *ast.Relation) []ast.QualifiedName
	visit = func(cur *ast.Relation) []ast.QualifiedName {
		state[cur] = visiting
		successors := c.graph.Successors(cur).Slice()
		sort.Slice(successors, func(i, j int) bool { return successors[i].Name < successors[j].Name })
		for _, successor := range successors {
			if !successor.Inline || state[successor] == visited {
				continue
			}
			if state[successor] == visiting {
				// Construct the cycle backwards from the current node.
				var cycle []ast.QualifiedName
				for node := cur; node != nil; node = origins[node] {
					cycle = append(cycle, node.Name)
					if node == successor {
						break
					}
				}
				return cycle
			}
			origins[successor] = cur
			if cycle := visit(successor); len(cycle) > 0 {
				return cycle
			}
		}
		state[cur] = visited
		return nil
	}

	for _, rel := range inlined {
		if state[rel] != unvisited {
			continue
		}
		origins[rel] = nil
		if cycle := visit(rel); len(cycle) > 0 {
			return cycle
		}
	}
	return nil
}
