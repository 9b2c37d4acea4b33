package semantic

import (
	"fmt"

	"loam/frontend-go/pkg/analysis"
	"loam/frontend-go/pkg/ast"
)

// checkGroundedness verifies that every variable and record constructor of
// every rule is grounded by the rule's body. Each variable name is reported
// at most once per clause.
func (c *Checker) checkGroundedness() {
	for _, rel := range c.program.Relations {
		for _, clause := range rel.Clauses {
			if clause.IsFact() {
				continue
			}

			grounded := ast.GroundedTerms(clause)

			reported := make(map[string]bool)
			for _, v := range ast.Variables(clause) {
				if !grounded[v] && !reported[v.Name] {
					reported[v.Name] = true
					c.report.AddError(fmt.Sprintf("Ungrounded variable %s", v.Name), v.SrcLoc())
				}
			}

			for _, record := range ast.Records(clause) {
				if !grounded[record] {
					c.report.AddError("Ungrounded record", record.SrcLoc())
				}
			}
		}
	}
}

// checkTypeUsage validates type references syntactically, without the type
// solver: cast targets and record constructors name declared types, number
// constants stay in the representable domain, and user functor calls match
// their declarations.
func (c *Checker) checkTypeUsage() {
	clauses := make([]*ast.Clause, 0)
	for _, rel := range c.program.Relations {
		clauses = append(clauses, rel.Clauses...)
	}

	for _, clause := range clauses {
		ast.Walk(clause, func(n ast.Node) {
			switch node := n.(type) {
			case *ast.TypeCast:
				if !c.env.IsType(node.TypeName) {
					c.report.AddError(
						fmt.Sprintf("Type cast is to undeclared type %s", node.TypeName),
						node.SrcLoc())
				}
			case *ast.RecordInit:
				c.result.UsesRecords = true
				if c.env.IsType(node.TypeName) {
					envType := c.env.Get(node.TypeName)
					record, isRecord := envType.(*analysis.RecordEnvType)
					if !isRecord {
						c.report.AddError(
							fmt.Sprintf("Type %s is not a record type", node.TypeName),
							node.SrcLoc())
					} else if len(node.Args) != len(record.Fields) {
						c.report.AddError("Wrong number of arguments given to record", node.SrcLoc())
					}
				} else {
					c.report.AddError(
						fmt.Sprintf("Type %s has not been declared", node.TypeName),
						node.SrcLoc())
				}
			case *ast.NumberConstant:
				if node.Value > ast.MaxNumberValue || node.Value < ast.MinNumberValue {
					c.report.AddError(
						fmt.Sprintf("Number constant not in range [%d, %d]", ast.MinNumberValue, ast.MaxNumberValue),
						node.SrcLoc())
				}
			case *ast.UserDefinedFunctor:
				decl := c.program.FunctorDeclaration(node.Name)
				if decl == nil {
					c.report.AddError("User-defined functor hasn't been declared", node.SrcLoc())
				} else if decl.Arity() != node.Arity() {
					c.report.AddError("Mismatching number of arguments of functor", node.SrcLoc())
				}
			}
		})
	}
}
