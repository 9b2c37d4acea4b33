package typecheck

import (
	"fmt"

	"go.uber.org/zap"

	"loam/frontend-go/pkg/ast"
)

// constraint is one requirement on the type assignment of a clause. A fresh
// assignment starts at Top, which deliberately fails to satisfy any bound
// below Top; that is what drives the first resolution pass.
type constraint interface {
	satisfied(s *TypeSolver) bool
	resolve(s *TypeSolver)
	String() string
}

// fixedConstraint requires type(arg) ≤ bound.
type fixedConstraint struct {
	arg   ast.Argument
	bound AnalysisType
}

func (c *fixedConstraint) satisfied(s *TypeSolver) bool {
	return s.lattice.IsSubtype(s.TypeOf(c.arg), c.bound)
}

func (c *fixedConstraint) resolve(s *TypeSolver) {
	s.setType(c.arg, s.lattice.Meet(s.TypeOf(c.arg), c.bound))
}

func (c *fixedConstraint) String() string {
	return fmt.Sprintf("type(%v) <: %v", c.arg, c.bound)
}

// variableConstraint requires type(target) ≤ type(source).
type variableConstraint struct {
	target ast.Argument
	source ast.Argument
}

func (c *variableConstraint) satisfied(s *TypeSolver) bool {
	return s.lattice.IsSubtype(s.TypeOf(c.target), s.TypeOf(c.source))
}

func (c *variableConstraint) resolve(s *TypeSolver) {
	s.setType(c.target, s.lattice.Meet(s.TypeOf(c.target), s.TypeOf(c.source)))
}

func (c *variableConstraint) String() string {
	return fmt.Sprintf("type(%v) <: type(%v)", c.target, c.source)
}

// unionConstraint requires type(result) ≤ type(a) ⊔ type(b).
type unionConstraint struct {
	result ast.Argument
	a      ast.Argument
	b      ast.Argument
}

func (c *unionConstraint) satisfied(s *TypeSolver) bool {
	bound := s.lattice.Join(s.TypeOf(c.a), s.TypeOf(c.b))
	return s.lattice.IsSubtype(s.TypeOf(c.result), bound)
}

func (c *unionConstraint) resolve(s *TypeSolver) {
	bound := s.lattice.Join(s.TypeOf(c.a), s.TypeOf(c.b))
	s.setType(c.result, s.lattice.Meet(s.TypeOf(c.result), bound))
}

func (c *unionConstraint) String() string {
	return fmt.Sprintf("type(%v) <: type(%v) ⊔ type(%v)", c.result, c.a, c.b)
}

// implicationConstraint fires its consequent once every requirement holds.
type implicationConstraint struct {
	consequent   *fixedConstraint
	requirements []*fixedConstraint
}

func (c *implicationConstraint) satisfied(s *TypeSolver) bool {
	for _, req := range c.requirements {
		if !req.satisfied(s) {
			return true
		}
	}
	return c.consequent.satisfied(s)
}

func (c *implicationConstraint) resolve(s *TypeSolver) {
	for _, req := range c.requirements {
		if !req.satisfied(s) {
			return
		}
	}
	c.consequent.resolve(s)
}

func (c *implicationConstraint) String() string {
	return fmt.Sprintf("%v requirements -> %v", len(c.requirements), c.consequent)
}

// TypeSolver generates and resolves the type constraints of a single clause.
// All occurrences of a variable name map to one representative argument, so
// constraints always tighten a single shared assignment.
type TypeSolver struct {
	program *ast.Program
	lattice *TypeLattice
	clause  *ast.Clause

	types           map[ast.Argument]AnalysisType
	constraints     []constraint
	representatives map[string]ast.Argument
	logger          *zap.Logger
}

// NewTypeSolver runs the solver over the clause: every reachable argument
// receives a fixed-point analysis type.
func NewTypeSolver(program *ast.Program, lattice *TypeLattice, clause *ast.Clause, logger *zap.Logger) *TypeSolver {
	s := &TypeSolver{
		program:         program,
		lattice:         lattice,
		clause:          clause,
		types:           make(map[ast.Argument]AnalysisType),
		representatives: make(map[string]ast.Argument),
	}
	s.generateConstraints()
	s.resolveConstraints()
	s.logger = logger
	if logger != nil {
		s.logSolution()
	}
	return s
}

// Representative returns the canonical argument standing for arg: the first
// occurrence of the variable's name in the clause, or arg itself for
// non-variables.
func (s *TypeSolver) Representative(arg ast.Argument) ast.Argument {
	v, ok := arg.(*ast.Variable)
	if !ok {
		return arg
	}
	if rep, ok := s.representatives[v.Name]; ok {
		return rep
	}
	s.representatives[v.Name] = v
	return v
}

// TypeOf returns the current (after construction: final) type of arg.
func (s *TypeSolver) TypeOf(arg ast.Argument) AnalysisType {
	if t, ok := s.types[s.Representative(arg)]; ok {
		return t
	}
	return s.lattice.Top()
}

func (s *TypeSolver) setType(arg ast.Argument, t AnalysisType) {
	s.types[s.Representative(arg)] = t
}

func (s *TypeSolver) addConstraint(c constraint) {
	s.constraints = append(s.constraints, c)
}

func (s *TypeSolver) fixed(arg ast.Argument, bound AnalysisType) *fixedConstraint {
	return &fixedConstraint{arg: s.Representative(arg), bound: bound}
}

func (s *TypeSolver) generateConstraints() {
	for _, lit := range s.clause.Body {
		s.generateLiteral(lit)
	}
	// The head contributes the constraints of its argument expressions but
	// no attribute bounds: head types are inferred from the body and
	// checked against the declaration afterwards.
	if s.clause.Head != nil {
		for _, arg := range s.clause.Head.Args {
			s.generateArgument(arg)
		}
	}
}

func (s *TypeSolver) generateLiteral(lit ast.Literal) {
	switch l := lit.(type) {
	case *ast.Atom:
		for _, arg := range l.Args {
			s.generateArgument(arg)
		}
		rel := s.program.Relation(l.Name)
		for i, arg := range l.Args {
			expected := s.lattice.AnalysisType(rel.Attributes[i].TypeName)
			s.addConstraint(s.fixed(arg, expected))
		}
	case *ast.Negation:
		// Only the child constraints of the negated atom apply: variables
		// inside a negation are not grounded by it, so the atom's
		// attribute bounds are not imposed.
		for _, arg := range l.Atom.Args {
			s.generateArgument(arg)
		}
	case *ast.BinaryConstraint:
		s.generateArgument(l.LHS)
		s.generateArgument(l.RHS)
		if l.Op == ast.OpEq {
			lhs := s.Representative(l.LHS)
			rhs := s.Representative(l.RHS)
			s.addConstraint(&variableConstraint{target: lhs, source: rhs})
			s.addConstraint(&variableConstraint{target: rhs, source: lhs})
		}
	case *ast.BooleanConstraint:
	}
}

func (s *TypeSolver) generateArgument(arg ast.Argument) {
	switch a := arg.(type) {
	case *ast.NumberConstant:
		s.addConstraint(s.fixed(a, s.lattice.Constant(ast.KindNumber)))
	case *ast.StringConstant:
		s.addConstraint(s.fixed(a, s.lattice.Constant(ast.KindSymbol)))
	case *ast.NilConstant:
		s.addConstraint(s.fixed(a, s.lattice.Constant(ast.KindRecord)))
	case *ast.Counter:
		s.addConstraint(s.fixed(a, s.lattice.Constant(ast.KindNumber)))
	case *ast.TypeCast:
		s.generateArgument(a.Value)
		s.addConstraint(s.fixed(a, s.lattice.AnalysisType(a.TypeName)))
	case *ast.IntrinsicFunctor:
		for _, child := range a.Args {
			s.generateArgument(child)
		}
		if a.Op == ast.OpMax || a.Op == ast.OpMin {
			lhs := s.Representative(a.Args[0])
			rhs := s.Representative(a.Args[1])
			s.addConstraint(&unionConstraint{result: a, a: lhs, b: rhs})
			return
		}
		outKind := ast.KindNumber
		if a.Op.Symbolic() {
			outKind = ast.KindSymbol
		}
		s.addConstraint(s.fixed(a, s.lattice.TopPrimitive(outKind)))
		s.addConstraint(s.constantImplication(a, a.Args, outKind, func(i int) ast.Kind {
			if a.Op.AcceptsSymbols(i) {
				return ast.KindSymbol
			}
			return ast.KindNumber
		}))
	case *ast.UserDefinedFunctor:
		for _, child := range a.Args {
			s.generateArgument(child)
		}
		decl := s.program.FunctorDeclaration(a.Name)
		outKind := ast.KindNumber
		if decl.Symbolic() {
			outKind = ast.KindSymbol
		}
		s.addConstraint(s.fixed(a, s.lattice.TopPrimitive(outKind)))
		s.addConstraint(s.constantImplication(a, a.Args, outKind, func(i int) ast.Kind {
			if decl.AcceptsSymbols(i) {
				return ast.KindSymbol
			}
			return ast.KindNumber
		}))
	case *ast.RecordInit:
		for _, child := range a.Args {
			s.generateArgument(child)
		}
		decl := s.program.TypeDecl(a.TypeName).(*ast.RecordTypeDecl)
		recordType := s.lattice.AnalysisType(a.TypeName)

		// A record bound to its record type grounds its elements: each
		// element must then carry its field type.
		for i, child := range a.Args {
			fieldType := s.lattice.AnalysisType(decl.Fields[i].TypeName)
			s.addConstraint(&implicationConstraint{
				consequent:   s.fixed(child, fieldType),
				requirements: []*fixedConstraint{s.fixed(a, s.lattice.TopPrimitive(ast.KindRecord))},
			})
		}

		// Conversely, elements that all match their field types ground the
		// record at its declared type.
		var requirements []*fixedConstraint
		for i, child := range a.Args {
			fieldType := s.lattice.AnalysisType(decl.Fields[i].TypeName)
			requirements = append(requirements, s.fixed(child, fieldType))
		}
		s.addConstraint(&implicationConstraint{
			consequent:   s.fixed(a, recordType),
			requirements: requirements,
		})
	case *ast.Aggregator:
		if a.Target != nil {
			s.generateArgument(a.Target)
		}
		for _, lit := range a.Body {
			s.generateLiteral(lit)
		}
		switch a.Op {
		case ast.AggCount, ast.AggSum:
			s.addConstraint(s.fixed(a, s.lattice.TopPrimitive(ast.KindNumber)))
		case ast.AggMin, ast.AggMax:
			s.addConstraint(&variableConstraint{target: a, source: s.Representative(a.Target)})
		}
	}
}

func (s *TypeSolver) constantImplication(result ast.Argument, args []ast.Argument, outKind ast.Kind, argKind func(int) ast.Kind) *implicationConstraint {
	impl := &implicationConstraint{
		consequent: s.fixed(result, s.lattice.Constant(outKind)),
	}
	for i, arg := range args {
		impl.requirements = append(impl.requirements, s.fixed(arg, s.lattice.Constant(argKind(i))))
	}
	return impl
}

func (s *TypeSolver) resolveConstraints() {
	// Restore everything reachable from the clause to Top.
	ast.WalkArguments(s.clause, func(arg ast.Argument) {
		s.types[s.Representative(arg)] = s.lattice.Top()
	})

	// Resolve each unsatisfied constraint until a full pass changes
	// nothing. Every resolution step only lowers an assignment in a
	// finite-height lattice, so the loop terminates.
	changed := true
	for changed {
		changed = false
		for _, c := range s.constraints {
			if !c.satisfied(s) {
				changed = true
				c.resolve(s)
			}
		}
	}
}

func (s *TypeSolver) logSolution() {
	s.logger.Debug("typed clause", zap.String("clause", s.clause.String()))
	for _, c := range s.constraints {
		s.logger.Debug("constraint", zap.String("constraint", c.String()))
	}
	ast.WalkArguments(s.clause, func(arg ast.Argument) {
		s.logger.Debug("solution",
			zap.String("argument", fmt.Sprintf("%v", arg)),
			zap.String("type", s.TypeOf(arg).String()))
	})
}
