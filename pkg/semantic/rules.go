package semantic

import (
	"fmt"
	"sort"
	"strings"

	"loam/frontend-go/pkg/analysis"
	"loam/frontend-go/pkg/ast"
)

// sortedVersions returns the plan's versions in increasing order.
func sortedVersions(plan *ast.ExecutionPlan) []int {
	versions := make([]int, 0, len(plan.Orders))
	for version := range plan.Orders {
		versions = append(versions, version)
	}
	sort.Ints(versions)
	return versions
}

// checkRules validates every relation declaration, every clause attached to
// a relation, and every orphan clause.
func (c *Checker) checkRules() {
	for _, rel := range c.program.Relations {
		c.checkRelation(rel)
	}
	for _, clause := range c.program.Orphans {
		c.checkClause(clause)
	}
}

func (c *Checker) checkRelation(rel *ast.Relation) {
	if rel.Representation == ast.RepresentationEqrel {
		if rel.Arity() == 2 {
			if rel.Attributes[0].TypeName != rel.Attributes[1].TypeName {
				c.report.AddError(
					fmt.Sprintf("Domains of equivalence relation %s are different", rel.Name),
					rel.SrcLoc())
			}
		} else {
			c.report.AddError(
				fmt.Sprintf("Equivalence relation %s is not binary", rel.Name),
				rel.SrcLoc())
		}
	}

	c.checkRelationDeclaration(rel)

	for _, clause := range rel.Clauses {
		c.checkClause(clause)
	}

	if len(rel.Clauses) == 0 && !c.io.IsInput(rel) && !rel.Suppressed {
		c.report.AddWarning(
			fmt.Sprintf("No rules/facts defined for relation %s", rel.Name),
			rel.SrcLoc())
	}
}

func (c *Checker) checkRelationDeclaration(rel *ast.Relation) {
	for i, attr := range rel.Attributes {
		typeName := attr.TypeName

		if typeName != "number" && typeName != "symbol" && c.program.TypeDecl(typeName) == nil {
			c.report.AddError(
				fmt.Sprintf("Undefined type in attribute %s:%s", attr.Name, typeName),
				attr.SrcLoc())
		}

		for j := 0; j < i; j++ {
			if attr.Name == rel.Attributes[j].Name {
				c.report.AddError(
					fmt.Sprintf("Doubly defined attribute name %s:%s", attr.Name, typeName),
					attr.SrcLoc())
			}
		}

		if _, isRecord := c.env.Get(typeName).(*analysis.RecordEnvType); isRecord {
			c.result.UsesRecords = true

			if c.io.IsInput(rel) {
				c.report.AddError(
					fmt.Sprintf("Input relations must not have record types. Attribute %s has record type %s", attr.Name, typeName),
					attr.SrcLoc())
			}
			if c.io.IsOutput(rel) {
				c.report.AddWarning(
					fmt.Sprintf("Record types in output relations are not printed verbatim: attribute %s has record type %s", attr.Name, typeName),
					attr.SrcLoc())
			}
		}
	}
}

func (c *Checker) checkClause(clause *ast.Clause) {
	c.checkAtom(clause.Head)

	if hasUnnamedVariableInAtom(clause.Head) {
		c.report.AddError("Underscore in head of rule", clause.Head.SrcLoc())
	}

	for _, lit := range clause.Body {
		c.checkLiteral(lit)
	}

	if clause.IsFact() {
		c.checkFact(clause)
	}

	// Variables occurring exactly once are typically typos; generated
	// clauses and names starting with an underscore are exempt.
	varCount := make(map[string]int)
	varPos := make(map[string]*ast.Variable)
	var varOrder []string
	ast.WalkVariables(clause, func(v *ast.Variable) {
		if varCount[v.Name] == 0 {
			varOrder = append(varOrder, v.Name)
		}
		varCount[v.Name]++
		varPos[v.Name] = v
	})
	if !clause.Generated {
		for _, name := range varOrder {
			if varCount[name] == 1 && !strings.HasPrefix(name, "_") {
				c.report.AddWarning(
					fmt.Sprintf("Variable %s only occurs once", name),
					varPos[name].SrcLoc())
			}
		}
	}

	if clause.Plan != nil {
		numAtoms := len(clause.Atoms())
		for _, version := range sortedVersions(clause.Plan) {
			order := clause.Plan.Orders[version]
			if len(order.Atoms) != numAtoms || !order.IsComplete() {
				c.report.AddError("Invalid execution plan", order.SrcLoc())
			}
		}
	}

	if c.recursive.Recursive(clause) {
		ast.Walk(clause, func(n ast.Node) {
			if ctr, ok := n.(*ast.Counter); ok {
				c.report.AddError("Auto-increment functor in a recursive rule", ctr.SrcLoc())
			}
		})
	}
}

func (c *Checker) checkAtom(atom *ast.Atom) {
	rel := c.program.Relation(atom.Name)
	if rel == nil {
		c.report.AddError(fmt.Sprintf("Undefined relation %s", atom.Name), atom.SrcLoc())
	}

	if rel != nil && rel.Arity() != atom.Arity() {
		c.report.AddError(fmt.Sprintf("Mismatching arity of relation %s", atom.Name), atom.SrcLoc())
	}

	for _, arg := range atom.Args {
		c.checkArgument(arg)
	}
}

func (c *Checker) checkLiteral(lit ast.Literal) {
	switch l := lit.(type) {
	case *ast.Atom:
		c.checkAtom(l)
	case *ast.Negation:
		c.checkAtom(l.Atom)
	case *ast.BinaryConstraint:
		c.checkArgument(l.LHS)
		c.checkArgument(l.RHS)
		if hasUnnamedVariableInArg(l.LHS) || hasUnnamedVariableInArg(l.RHS) {
			c.report.AddError("Underscore in binary relation", l.SrcLoc())
		}
	case *ast.BooleanConstraint:
	}
}

// checkArgument descends into composite arguments; aggregator bodies are
// checked as nested literal lists.
func (c *Checker) checkArgument(arg ast.Argument) {
	switch a := arg.(type) {
	case *ast.Aggregator:
		for _, lit := range a.Body {
			c.checkLiteral(lit)
		}
	case *ast.IntrinsicFunctor:
		for _, child := range a.Args {
			c.checkArgument(child)
		}
	case *ast.UserDefinedFunctor:
		for _, child := range a.Args {
			c.checkArgument(child)
		}
	}
}

// checkFact enforces that fact arguments reduce to constants.
func (c *Checker) checkFact(fact *ast.Clause) {
	head := fact.Head
	if head == nil {
		return
	}
	if c.program.Relation(head.Name) == nil {
		return // already reported by checkAtom
	}
	for _, arg := range head.Args {
		c.checkConstant(arg)
	}
}

func (c *Checker) checkConstant(arg ast.Argument) {
	switch a := arg.(type) {
	case *ast.Variable:
		c.report.AddError(fmt.Sprintf("Variable %s in fact", a.Name), a.SrcLoc())
	case *ast.UnnamedVariable:
		c.report.AddError("Underscore in fact", a.SrcLoc())
	case *ast.IntrinsicFunctor:
		if !isConstantArithExpr(a) {
			c.report.AddError("Function in fact", a.SrcLoc())
		}
	case *ast.UserDefinedFunctor:
		c.report.AddError("User-defined functor in fact", a.SrcLoc())
	case *ast.TypeCast:
		c.checkConstant(a.Value)
	case *ast.Counter:
		c.report.AddError("Counter in fact", a.SrcLoc())
	case *ast.NumberConstant, *ast.StringConstant, *ast.NilConstant:
		// constants are fine; the type checker validates their types
	case *ast.RecordInit:
		for _, child := range a.Args {
			c.checkConstant(child)
		}
	case *ast.Aggregator:
		c.report.AddError("Function in fact", a.SrcLoc())
	}
}

// isConstantArithExpr reports whether the argument is a number constant or a
// numerical intrinsic functor over constant arithmetic expressions.
func isConstantArithExpr(arg ast.Argument) bool {
	switch a := arg.(type) {
	case *ast.NumberConstant:
		return true
	case *ast.IntrinsicFunctor:
		if !a.Op.Numerical() {
			return false
		}
		for _, child := range a.Args {
			if !isConstantArithExpr(child) {
				return false
			}
		}
		return true
	}
	return false
}

// hasUnnamedVariableInArg reports whether an underscore occurs anywhere in
// the argument expression; aggregators shield their bodies.
func hasUnnamedVariableInArg(arg ast.Argument) bool {
	switch a := arg.(type) {
	case *ast.UnnamedVariable:
		return true
	case *ast.TypeCast:
		return hasUnnamedVariableInArg(a.Value)
	case *ast.IntrinsicFunctor:
		return anyUnnamed(a.Args)
	case *ast.UserDefinedFunctor:
		return anyUnnamed(a.Args)
	case *ast.RecordInit:
		return anyUnnamed(a.Args)
	}
	return false
}

func anyUnnamed(args []ast.Argument) bool {
	for _, arg := range args {
		if hasUnnamedVariableInArg(arg) {
			return true
		}
	}
	return false
}

func hasUnnamedVariableInAtom(atom *ast.Atom) bool {
	return anyUnnamed(atom.Args)
}
