package semantic

import (
	"fmt"

	"loam/frontend-go/pkg/ast"
)

// checkWitnessProblem detects variables that are grounded only inside an
// aggregator's body yet referenced in the enclosing scope. For each clause
// the body is cloned twice: one clone stays equivalent to the original, the
// other has every aggregator replaced by a fresh, intrinsically grounded
// variable. An argument that is ungrounded in the replaced clone but
// grounded in the original can only have been grounded through an
// aggregator body, which is exactly the witness problem.
func (c *Checker) checkWitnessProblem() {
	for _, clause := range c.program.AllClauses() {
		literals := make([]ast.Literal, 0, len(clause.Body)+1)
		literals = append(literals, clause.Body...)

		// Head variables participate as ungrounded uses: a negated
		// synthetic atom carries them without grounding them.
		headVars := ast.NewAtom("*")
		ast.WalkVariables(clause.Head, func(v *ast.Variable) {
			headVars.AddArgument(ast.CloneArgument(v))
		})
		literals = append(literals, ast.NewNegation(headVars))

		for _, loc := range c.usesInvalidWitness(literals, nil) {
			c.report.AddError(
				"Witness problem: argument grounded by an aggregator's inner scope is used ungrounded in outer scope",
				loc)
		}
	}
}

func (c *Checker) usesInvalidWitness(literals []ast.Literal, groundedArgs []ast.Argument) []ast.SrcLocation {
	// Build the two parallel clones with the position map in one pass.
	originalClause := ast.NewClause(ast.NewAtom("*"))
	replacedClause := ast.NewClause(ast.NewAtom("*"))
	pairs := make(map[ast.Argument]ast.Argument)
	for _, lit := range literals {
		original, replaced := ast.CloneLiteralPair(lit, pairs)
		originalClause.AddToBody(original)
		replacedClause.AddToBody(replaced)
	}

	// Swap every aggregator in the replaced clone for a fresh variable.
	var freshNames []string
	for _, lit := range replacedClause.Body {
		ast.ReplaceArguments(lit, func(arg ast.Argument) ast.Argument {
			if _, ok := arg.(*ast.Aggregator); ok {
				name := fmt.Sprintf("+aggr_var_%d", c.aggrVarNumber)
				c.aggrVarNumber++
				freshNames = append(freshNames, name)
				return ast.NewVariable(name)
			}
			return arg
		})
	}

	// The grounding atom declares the fresh variables (replaced clone
	// only) and all previously grounded arguments (both clones) grounded.
	groundingOriginal := ast.NewAtom("grounding_atom")
	groundingReplaced := ast.NewAtom("grounding_atom")
	for _, name := range freshNames {
		groundingReplaced.AddArgument(ast.NewVariable(name))
	}
	for _, arg := range groundedArgs {
		groundingOriginal.AddArgument(ast.CloneArgument(arg))
		groundingReplaced.AddArgument(ast.CloneArgument(arg))
	}
	originalClause.AddToBody(groundingOriginal)
	replacedClause.AddToBody(groundingReplaced)

	originalGrounded := ast.GroundedTerms(originalClause)
	replacedGrounded := ast.GroundedTerms(replacedClause)

	var result []ast.SrcLocation
	var newlyGrounded []ast.Argument
	ast.WalkArguments(replacedClause, func(arg ast.Argument) {
		if !replacedGrounded[arg] && originalGrounded[pairs[arg]] {
			result = append(result, arg.SrcLoc())
		}
		// Everything surviving this level counts as grounded for the
		// nested aggregator checks below.
		newlyGrounded = append(newlyGrounded, ast.CloneArgument(arg))
	})
	newlyGrounded = append(newlyGrounded, groundedArgs...)

	// Recurse into each aggregator body to catch nested witnesses.
	for _, lit := range literals {
		ast.Walk(lit, func(n ast.Node) {
			if aggr, ok := n.(*ast.Aggregator); ok {
				result = append(result, c.usesInvalidWitness(aggr.Body, newlyGrounded)...)
			}
		})
	}

	return result
}
