package semantic

import (
	"fmt"

	"loam/frontend-go/pkg/ast"
	"loam/frontend-go/pkg/typecheck"
)

// checkTypeCorrectness consumes the solver's fixed point and reports every
// argument whose inferred type contradicts a declaration. Clauses the solver
// skipped are covered by an umbrella error; arguments whose types are
// already invalid are reported once and otherwise ignored downstream.
func (c *Checker) checkTypeCorrectness() {
	lattice := c.typeAnalysis.Lattice()
	if !lattice.IsValid() {
		c.report.AddGlobalError("No type checking could occur due to other errors present")
		return
	}

	clauses := c.typeAnalysis.TypedClauses()
	if c.typeAnalysis.FoundSkippedClauses() {
		c.report.AddGlobalError("Not all clauses could be typechecked due to other errors present")
	}

	for _, clause := range clauses {
		c.checkArgumentTypesValid(clause)
	}
	c.checkFunctorTypes(clauses)
	for _, clause := range clauses {
		c.checkRecordTypes(clause)
	}
	c.checkAggregatorTypes(clauses)
	c.checkCastTypes(clauses)
	c.checkAtomTypes(clauses)
	c.checkConstraintTypes(clauses)
}

// checkArgumentTypesValid reports grounded arguments whose fixed point
// bottomed out. A Top result is left alone: it belongs to a mistyped record
// constructor that produces its own diagnostic.
func (c *Checker) checkArgumentTypesValid(clause *ast.Clause) {
	grounded := ast.GroundedTerms(clause)

	seenVariables := make(map[string]bool)
	ast.WalkArguments(clause, func(arg ast.Argument) {
		if !grounded[arg] {
			return // ungrounded terms are reported by the groundedness check
		}
		if v, ok := arg.(*ast.Variable); ok {
			if seenVariables[v.Name] {
				return
			}
			seenVariables[v.Name] = true
		}

		argType := c.typeAnalysis.TypeOf(arg)
		if argType == nil || typecheck.IsValidType(argType) {
			return
		}
		switch argType.(type) {
		case *typecheck.BottomPrimitiveType:
			c.report.AddError("Unable to deduce valid type for expression, as base types are disjoint", arg.SrcLoc())
		case *typecheck.BottomType:
			c.report.AddError("Unable to deduce valid type for expression, as primitive types are disjoint", arg.SrcLoc())
		}
	})
}

func (c *Checker) checkFunctorTypes(clauses []*ast.Clause) {
	lattice := c.typeAnalysis.Lattice()

	checkArg := func(arg ast.Argument, acceptsSymbols, acceptsNumbers bool) {
		argType := c.typeAnalysis.TypeOf(arg)
		if argType == nil || !typecheck.IsValidType(argType) {
			return
		}
		if acceptsSymbols && !lattice.IsSubtype(argType, lattice.TopPrimitive(ast.KindSymbol)) {
			c.report.AddError(
				fmt.Sprintf("Non-symbolic argument for functor, instead argument has type %s", argType),
				arg.SrcLoc())
		} else if acceptsNumbers && !lattice.IsSubtype(argType, lattice.TopPrimitive(ast.KindNumber)) {
			c.report.AddError(
				fmt.Sprintf("Non-numeric argument for functor, instead argument has type %s", argType),
				arg.SrcLoc())
		}
	}

	for _, clause := range clauses {
		ast.Walk(clause, func(n ast.Node) {
			switch functor := n.(type) {
			case *ast.IntrinsicFunctor:
				for i, arg := range functor.Args {
					checkArg(arg, functor.Op.AcceptsSymbols(i), functor.Op.AcceptsNumbers(i))
				}
			case *ast.UserDefinedFunctor:
				decl := c.program.FunctorDeclaration(functor.Name)
				for i, arg := range functor.Args {
					checkArg(arg, decl.AcceptsSymbols(i), decl.AcceptsNumbers(i))
				}
			}
		})
	}
}

func (c *Checker) checkRecordTypes(clause *ast.Clause) {
	lattice := c.typeAnalysis.Lattice()
	grounded := ast.GroundedTerms(clause)

	ast.Walk(clause, func(n ast.Node) {
		record, ok := n.(*ast.RecordInit)
		if !ok || !grounded[record] {
			return
		}

		decl := c.program.TypeDecl(record.TypeName).(*ast.RecordTypeDecl)

		// A record left at Top was never grounded as a record, which means
		// one of its elements broke the constructor's implication.
		if _, isTop := c.typeAnalysis.TypeOf(record).(*typecheck.TopType); isTop {
			c.report.AddError(
				fmt.Sprintf("Unable to deduce type %s as record is not grounded as a record elsewhere, and at least one of its elements has the wrong type", record.TypeName),
				record.SrcLoc())
		}

		for i, arg := range record.Args {
			actualType := c.typeAnalysis.TypeOf(arg)
			fieldType := lattice.AnalysisType(decl.Fields[i].TypeName)
			if actualType == nil || !typecheck.IsValidType(actualType) {
				continue
			}
			if !lattice.IsSubtype(actualType, fieldType) {
				c.report.AddError(
					fmt.Sprintf("Record constructor expects element to have type %s but instead it has type %s", fieldType, actualType),
					arg.SrcLoc())
			}
		}
	})
}

func (c *Checker) checkAggregatorTypes(clauses []*ast.Clause) {
	lattice := c.typeAnalysis.Lattice()
	for _, clause := range clauses {
		ast.Walk(clause, func(n ast.Node) {
			aggr, ok := n.(*ast.Aggregator)
			if !ok || aggr.Op == ast.AggCount {
				return
			}
			targetType := c.typeAnalysis.TypeOf(aggr.Target)
			if targetType == nil || !typecheck.IsValidType(targetType) {
				return
			}
			if !lattice.IsSubtype(targetType, lattice.TopPrimitive(ast.KindNumber)) {
				c.report.AddError(
					fmt.Sprintf("Aggregation variable is not a number, instead has type %s", targetType),
					aggr.Target.SrcLoc())
			}
		})
	}
}

func (c *Checker) checkCastTypes(clauses []*ast.Clause) {
	lattice := c.typeAnalysis.Lattice()
	for _, clause := range clauses {
		ast.Walk(clause, func(n ast.Node) {
			cast, ok := n.(*ast.TypeCast)
			if !ok {
				return
			}
			actualType := c.typeAnalysis.TypeOf(cast)
			if actualType == nil || !typecheck.IsValidType(actualType) {
				return
			}

			expectedType := lattice.AnalysisType(cast.TypeName)
			if actualType != expectedType {
				c.report.AddError(
					fmt.Sprintf("Typecast is to type %s but is used where the type %s is expected", cast.TypeName, actualType),
					cast.SrcLoc())
			}

			inputType, ok := c.typeAnalysis.TypeOf(cast.Value).(typecheck.InnerType)
			if !ok || !typecheck.IsValidType(inputType) {
				return
			}
			outputType := expectedType.(typecheck.InnerType)
			outputPrimitive := lattice.TopPrimitive(outputType.Kind())
			if !lattice.IsSubtype(inputType, outputPrimitive) {
				c.report.AddWarning(
					fmt.Sprintf("Casts from %s values to %s types may cause runtime errors", inputType.Kind(), outputType.Kind()),
					cast.SrcLoc())
			} else if outputType.Kind() == ast.KindRecord && !lattice.IsSubtype(inputType, outputType) {
				c.report.AddWarning("Casting a record to the wrong record type may cause runtime errors", cast.SrcLoc())
			}
		})
	}
}

// checkAtomTypes verifies every atom argument against the declared
// attribute type. Positive body atoms hold trivially by construction; head
// and negated atoms are the ones that matter.
func (c *Checker) checkAtomTypes(clauses []*ast.Clause) {
	lattice := c.typeAnalysis.Lattice()
	for _, clause := range clauses {
		ast.Walk(clause, func(n ast.Node) {
			atom, ok := n.(*ast.Atom)
			if !ok {
				return
			}
			rel := c.program.Relation(atom.Name)
			for i, arg := range atom.Args {
				actualType := c.typeAnalysis.TypeOf(arg)
				if actualType == nil || !typecheck.IsValidType(actualType) {
					continue
				}
				attributeType := rel.Attributes[i].TypeName
				expectedType := lattice.AnalysisType(attributeType)
				if !lattice.IsSubtype(actualType, expectedType) {
					c.report.AddError(
						fmt.Sprintf("Relation expects value of type %s but got argument of type %s", attributeType, actualType),
						arg.SrcLoc())
				}
			}
		})
	}
}

func (c *Checker) checkConstraintTypes(clauses []*ast.Clause) {
	lattice := c.typeAnalysis.Lattice()
	for _, clause := range clauses {
		ast.Walk(clause, func(n ast.Node) {
			constraint, ok := n.(*ast.BinaryConstraint)
			if !ok || constraint.Op == ast.OpEq {
				return
			}

			lhsType := c.typeAnalysis.TypeOf(constraint.LHS)
			rhsType := c.typeAnalysis.TypeOf(constraint.RHS)

			if constraint.Op == ast.OpNe {
				if lhsType == nil || rhsType == nil || !typecheck.IsValidType(lhsType) || !typecheck.IsValidType(rhsType) {
					return
				}
				lhsInner := lhsType.(typecheck.InnerType)
				rhsInner := rhsType.(typecheck.InnerType)
				if lhsInner.Kind() != rhsInner.Kind() {
					c.report.AddError(
						fmt.Sprintf("Cannot compare operands of different kinds, left operand is a %s and right operand is a %s", lhsInner.Kind(), rhsInner.Kind()),
						constraint.SrcLoc())
				} else if lhsInner.Kind() == ast.KindRecord {
					if !(lattice.IsSubtype(lhsInner, rhsInner) && lattice.IsSubtype(rhsInner, lhsInner)) {
						c.report.AddError("Cannot compare records of different types", constraint.SrcLoc())
					}
				}
				return
			}

			var expected typecheck.AnalysisType
			var mismatch string
			switch {
			case constraint.Op.Numerical():
				expected = lattice.TopPrimitive(ast.KindNumber)
				mismatch = "Non-numerical operand for comparison, instead %s operand has type %s"
			case constraint.Op.Symbolic():
				expected = lattice.TopPrimitive(ast.KindSymbol)
				mismatch = "Non-symbolic operand for comparison, instead %s operand has type %s"
			default:
				return
			}
			if lhsType != nil && typecheck.IsValidType(lhsType) && !lattice.IsSubtype(lhsType, expected) {
				c.report.AddError(fmt.Sprintf(mismatch, "left", lhsType), constraint.LHS.SrcLoc())
			}
			if rhsType != nil && typecheck.IsValidType(rhsType) && !lattice.IsSubtype(rhsType, expected) {
				c.report.AddError(fmt.Sprintf(mismatch, "right", rhsType), constraint.RHS.SrcLoc())
			}
		})
	}
}
