package typecheck

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"loam/frontend-go/pkg/analysis"
	"loam/frontend-go/pkg/ast"
)

func solverProgram() *ast.Program {
	p := ast.NewProgram()
	p.Types = []ast.TypeDecl{
		ast.NewPrimitiveTypeDecl("Even", true),
		ast.NewPrimitiveTypeDecl("Odd", true),
		ast.NewUnionTypeDecl("Int", "Even", "Odd"),
		ast.NewRecordTypeDecl("Pair",
			ast.RecordField{Name: "a", TypeName: "number"},
			ast.RecordField{Name: "b", TypeName: "symbol"}),
	}
	p.Relations = []*ast.Relation{
		ast.Rel("num", ast.Attr("x", "number")),
		ast.Rel("sym", ast.Attr("x", "symbol")),
		ast.Rel("even", ast.Attr("x", "Even")),
		ast.Rel("odd", ast.Attr("x", "Odd")),
		ast.Rel("pair", ast.Attr("p", "Pair")),
	}
	p.Functors = append(p.Functors,
		ast.NewFunctorDeclaration("f", []ast.Kind{ast.KindNumber}, ast.KindSymbol))
	return p
}

func solveClause(t *testing.T, p *ast.Program, clause *ast.Clause) *TypeSolver {
	t.Helper()
	env := analysis.NewTypeEnvironment(p)
	if err := env.Err(); err != nil {
		t.Fatalf("environment: %v", err)
	}
	lattice := NewTypeLattice(env)
	if !lattice.IsValid() {
		t.Fatalf("lattice should be valid")
	}
	return NewTypeSolver(p, lattice, clause, nil)
}

func TestSolverAtomArgumentsTakeAttributeTypes(t *testing.T) {
	p := solverProgram()
	x := ast.Var("X")
	clause := ast.Rule(ast.At("num", ast.Var("X")), ast.At("even", x))
	s := solveClause(t, p, clause)

	if got := s.TypeOf(x).String(); got != "Even" {
		t.Fatalf("expected X : Even, got %s", got)
	}
}

func TestSolverVariableUnification(t *testing.T) {
	p := solverProgram()
	x1 := ast.Var("X")
	x2 := ast.Var("X")
	clause := ast.Rule(ast.At("num", x1), ast.At("even", x1), ast.At("odd", x2))
	s := solveClause(t, p, clause)

	// All occurrences of X share one representative and one type.
	if s.Representative(x1) != s.Representative(x2) {
		t.Fatalf("occurrences of X should share a representative")
	}
	if s.TypeOf(x1) != s.TypeOf(x2) {
		t.Fatalf("occurrences of X should share a type")
	}
	// Even and Odd are disjoint bases.
	if _, ok := s.TypeOf(x1).(*BottomPrimitiveType); !ok {
		t.Fatalf("expected disjoint bases to bottom out, got %v", s.TypeOf(x1))
	}
}

func TestSolverEqualityEquatesTypes(t *testing.T) {
	p := solverProgram()
	x := ast.Var("X")
	y := ast.Var("Y")
	clause := ast.Rule(ast.At("num", ast.Var("X")),
		ast.At("even", x),
		ast.At("num", y),
		ast.Eq(ast.Var("X"), ast.Var("Y")),
	)
	s := solveClause(t, p, clause)

	if s.TypeOf(x) != s.TypeOf(y) {
		t.Fatalf("EQ-linked arguments must have equal types: %v vs %v", s.TypeOf(x), s.TypeOf(y))
	}
	if got := s.TypeOf(y).String(); got != "Even" {
		t.Fatalf("expected Y to tighten to Even, got %s", got)
	}
}

func TestSolverConstants(t *testing.T) {
	p := solverProgram()
	n := ast.Num(1)
	str := ast.Str("a")
	clause := ast.Rule(ast.At("num", ast.Var("X")),
		ast.Eq(ast.Var("X"), n),
		ast.At("sym", str),
	)
	s := solveClause(t, p, clause)

	if _, ok := s.TypeOf(n).(*ConstantType); !ok {
		t.Fatalf("number literal should infer a constant type, got %v", s.TypeOf(n))
	}
	if got, ok := s.TypeOf(str).(*ConstantType); !ok || got.Kind() != ast.KindSymbol {
		t.Fatalf("string literal should infer constant(symbol), got %v", s.TypeOf(str))
	}
}

func TestSolverFunctorConstantPropagation(t *testing.T) {
	p := solverProgram()
	fn := ast.Intr(ast.OpAdd, ast.Num(1), ast.Num(2))
	clause := ast.Rule(ast.At("num", ast.Var("X")), ast.Eq(ast.Var("X"), fn))
	s := solveClause(t, p, clause)

	// A functor over constants is itself a constant.
	if got, ok := s.TypeOf(fn).(*ConstantType); !ok || got.Kind() != ast.KindNumber {
		t.Fatalf("expected add over constants to be constant(number), got %v", s.TypeOf(fn))
	}
}

func TestSolverFunctorOverVariableStaysPrimitive(t *testing.T) {
	p := solverProgram()
	fn := ast.Intr(ast.OpAdd, ast.Var("Y"), ast.Num(2))
	clause := ast.Rule(ast.At("num", ast.Var("X")),
		ast.At("even", ast.Var("Y")),
		ast.Eq(ast.Var("X"), fn),
	)
	s := solveClause(t, p, clause)

	if _, ok := s.TypeOf(fn).(*TopPrimitiveType); !ok {
		t.Fatalf("expected add over a non-constant to stay at the primitive top, got %v", s.TypeOf(fn))
	}
}

func TestSolverUserDefinedFunctor(t *testing.T) {
	p := solverProgram()
	fn := ast.UFun("f", ast.Var("Y"))
	clause := ast.Rule(ast.At("sym", ast.Var("X")),
		ast.At("num", ast.Var("Y")),
		ast.Eq(ast.Var("X"), fn),
	)
	s := solveClause(t, p, clause)

	if got, ok := s.TypeOf(fn).(*TopPrimitiveType); !ok || got.Kind() != ast.KindSymbol {
		t.Fatalf("expected @f to produce a symbol, got %v", s.TypeOf(fn))
	}
}

func TestSolverRecordConstructor(t *testing.T) {
	p := solverProgram()
	a := ast.Num(1)
	b := ast.Str("x")
	rec := ast.Rec("Pair", a, b)
	clause := ast.Rule(ast.At("pair", ast.Var("P")), ast.Eq(ast.Var("P"), rec), ast.At("pair", ast.Var("P")))
	s := solveClause(t, p, clause)

	if got := s.TypeOf(rec).String(); got != "Pair" {
		t.Fatalf("expected record constructor to take its declared type, got %s", got)
	}
}

func TestSolverMinMaxUnionConstraint(t *testing.T) {
	p := solverProgram()
	fn := ast.Intr(ast.OpMax, ast.Var("A"), ast.Var("B"))
	clause := ast.Rule(ast.At("num", ast.Var("X")),
		ast.At("even", ast.Var("A")),
		ast.At("even", ast.Var("B")),
		ast.Eq(ast.Var("X"), fn),
	)
	s := solveClause(t, p, clause)

	if got := s.TypeOf(fn).String(); got != "Even" {
		t.Fatalf("expected max(Even, Even) to be Even, got %s", got)
	}
}

func TestSolverAggregators(t *testing.T) {
	p := solverProgram()
	cnt := ast.Agg(ast.AggCount, nil, ast.At("num", ast.Unnamed()))
	minAgg := ast.Agg(ast.AggMin, ast.Var("Y"), ast.At("even", ast.Var("Y")))
	clause := ast.Rule(ast.At("num", ast.Var("X")),
		ast.Eq(ast.Var("X"), cnt),
		ast.Eq(ast.Var("Z"), minAgg),
		ast.At("num", ast.Var("Z")),
	)
	s := solveClause(t, p, clause)

	if got, ok := s.TypeOf(cnt).(*TopPrimitiveType); !ok || got.Kind() != ast.KindNumber {
		t.Fatalf("count must be a number, got %v", s.TypeOf(cnt))
	}
	if got := s.TypeOf(minAgg).String(); got != "Even" {
		t.Fatalf("min over Even target must be Even, got %s", got)
	}
}

func TestSolverNegationImposesNoAttributeBounds(t *testing.T) {
	p := solverProgram()
	x := ast.Var("X")
	clause := ast.Rule(ast.At("num", ast.Var("X")),
		ast.At("num", x),
		ast.NewNegation(ast.At("even", ast.Var("X"))),
	)
	s := solveClause(t, p, clause)

	// The negated atom must not tighten X to Even.
	if got := s.TypeOf(x).String(); got != "number" {
		t.Fatalf("expected X to stay at number, got %s", got)
	}
}

func TestTypeAnalysisIdempotence(t *testing.T) {
	p := solverProgram()
	rel := p.Relation("even")
	clause := ast.Rule(ast.At("even", ast.Var("X")), ast.At("num", ast.Var("X")), ast.At("even", ast.Var("X")))
	rel.AddClause(clause)

	run := func() map[string]string {
		tu := analysis.NewTranslationUnit(p, nil)
		ta := NewTypeAnalysis(nil)
		ta.Run(tu)
		out := make(map[string]string)
		ast.WalkArguments(clause, func(arg ast.Argument) {
			out[arg.String()+"@"+string(arg.NodeType())] = ta.TypeOf(arg).String()
		})
		return out
	}

	first := run()
	second := run()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated analysis must be identical (-first +second):\n%s", diff)
	}
}

func TestFitForTyping(t *testing.T) {
	p := solverProgram()

	fit := ast.Rule(ast.At("num", ast.Num(1)))
	if !FitForTyping(p, fit) {
		t.Fatalf("well-formed clause should be fit for typing")
	}

	undefinedRel := ast.Rule(ast.At("num", ast.Num(1)), ast.At("nope", ast.Num(1)))
	if FitForTyping(p, undefinedRel) {
		t.Fatalf("undefined relation must make the clause unfit")
	}

	badArity := ast.Rule(ast.At("num", ast.Num(1), ast.Num(2)))
	if FitForTyping(p, badArity) {
		t.Fatalf("arity mismatch must make the clause unfit")
	}

	badFunctor := ast.Rule(ast.At("num", ast.Var("X")), ast.Eq(ast.Var("X"), ast.UFun("g", ast.Num(1))))
	if FitForTyping(p, badFunctor) {
		t.Fatalf("undefined user functor must make the clause unfit")
	}

	badRecord := ast.Rule(ast.At("num", ast.Var("X")), ast.Eq(ast.Var("X"), ast.Rec("Pair", ast.Num(1))))
	if FitForTyping(p, badRecord) {
		t.Fatalf("record arity mismatch must make the clause unfit")
	}

	badCast := ast.Rule(ast.At("num", ast.Var("X")), ast.Eq(ast.Var("X"), ast.Cast("Nope", ast.Num(1))))
	if FitForTyping(p, badCast) {
		t.Fatalf("cast to undeclared type must make the clause unfit")
	}
}
