package analysis

import (
	"testing"

	"loam/frontend-go/pkg/ast"
	"loam/frontend-go/pkg/report"
)

// chainProgram builds a -> b -> c with a recursive cycle between b and c.
func chainProgram() *ast.Program {
	p := ast.NewProgram()
	a := ast.Rel("a", ast.Attr("x", "number"))
	b := ast.Rel("b", ast.Attr("x", "number"))
	c := ast.Rel("c", ast.Attr("x", "number"))
	a.Input = true
	b.AddClause(ast.Rule(ast.At("b", ast.Var("X")), ast.At("a", ast.Var("X"))))
	b.AddClause(ast.Rule(ast.At("b", ast.Var("X")), ast.At("c", ast.Var("X"))))
	c.AddClause(ast.Rule(ast.At("c", ast.Var("X")), ast.At("b", ast.Var("X"))))
	p.Relations = []*ast.Relation{a, b, c}
	return p
}

func TestPrecedenceGraphEdges(t *testing.T) {
	p := chainProgram()
	g := NewPrecedenceGraph(p)
	a, b, c := p.Relation("a"), p.Relation("b"), p.Relation("c")

	if !g.Successors(a).Contains(b) {
		t.Fatalf("b depends on a, so b must be a successor of a")
	}
	if !g.Successors(b).Contains(c) || !g.Successors(c).Contains(b) {
		t.Fatalf("b and c must depend on each other")
	}
	if !g.Predecessors(b).Contains(a) {
		t.Fatalf("a must be a predecessor of b")
	}
}

func TestPrecedenceGraphReachesAndClique(t *testing.T) {
	p := chainProgram()
	g := NewPrecedenceGraph(p)
	a, b, c := p.Relation("a"), p.Relation("b"), p.Relation("c")

	if !g.Reaches(a, c) {
		t.Fatalf("a should reach c transitively")
	}
	if g.Reaches(c, a) {
		t.Fatalf("c must not reach a")
	}
	if g.Reaches(a, a) {
		t.Fatalf("a is not on a cycle")
	}
	if !g.Reaches(b, b) {
		t.Fatalf("b is on a cycle")
	}

	clique := g.Clique(b)
	if clique.Size() != 2 || !clique.Contains(b) || !clique.Contains(c) {
		t.Fatalf("expected clique {b, c}, got %v", clique.Slice())
	}
}

func TestRecursiveClauses(t *testing.T) {
	p := chainProgram()
	g := NewPrecedenceGraph(p)
	rc := NewRecursiveClauses(p, g)
	b := p.Relation("b")
	c := p.Relation("c")

	if rc.Recursive(b.Clauses[0]) {
		t.Fatalf("b :- a is not recursive")
	}
	if !rc.Recursive(b.Clauses[1]) {
		t.Fatalf("b :- c is recursive")
	}
	if !rc.Recursive(c.Clauses[0]) {
		t.Fatalf("c :- b is recursive")
	}
}

func TestRelationScheduleOrdersDependenciesFirst(t *testing.T) {
	p := chainProgram()
	g := NewPrecedenceGraph(p)
	schedule := NewRelationSchedule(g)
	a, b, c := p.Relation("a"), p.Relation("b"), p.Relation("c")

	steps := schedule.Steps()
	if len(steps) != 2 {
		t.Fatalf("expected 2 strata, got %d", len(steps))
	}
	if !steps[0].Computed().Contains(a) {
		t.Fatalf("a must be scheduled first")
	}
	if !steps[1].Computed().Contains(b) || !steps[1].Computed().Contains(c) {
		t.Fatalf("the b/c cycle must form the second stratum")
	}
}

func TestIOTypeClassification(t *testing.T) {
	p := chainProgram()
	p.Relation("c").Output = true
	p.Directives = append(p.Directives,
		ast.NewIODirective(ast.DirectiveLoad, "b"),
		ast.NewIODirective(ast.DirectivePrintSize, "b"),
	)
	io := NewIOType(p)

	if !io.IsInput(p.Relation("a")) {
		t.Fatalf("a is declared input")
	}
	if !io.IsInput(p.Relation("b")) || !io.IsOutput(p.Relation("b")) {
		t.Fatalf("directives must classify b as input and output")
	}
	if !io.IsOutput(p.Relation("c")) || io.IsInput(p.Relation("c")) {
		t.Fatalf("c is output only")
	}
	if !io.IsIO(p.Relation("a")) {
		t.Fatalf("inputs are IO relations")
	}
}

func TestTypeEnvironmentResolvesDeclarations(t *testing.T) {
	p := ast.NewProgram()
	p.Types = []ast.TypeDecl{
		ast.NewPrimitiveTypeDecl("Even", true),
		ast.NewPrimitiveTypeDecl("Odd", true),
		ast.NewUnionTypeDecl("Int", "Even", "Odd"),
		ast.NewUnionTypeDecl("Wider", "Int", "Even"),
		ast.NewRecordTypeDecl("List",
			ast.RecordField{Name: "head", TypeName: "number"},
			ast.RecordField{Name: "tail", TypeName: "List"}),
	}
	env := NewTypeEnvironment(p)
	if err := env.Err(); err != nil {
		t.Fatalf("environment should be valid: %v", err)
	}

	union, ok := env.Get("Wider").(*UnionEnvType)
	if !ok {
		t.Fatalf("Wider should resolve to a union")
	}
	if len(union.Bases) != 2 {
		t.Fatalf("Wider should flatten to the bases {Even, Odd}, got %v", union.Bases)
	}
	if union.Kind != ast.KindNumber {
		t.Fatalf("Wider should be numeric")
	}

	if _, ok := env.Get("List").(*RecordEnvType); !ok {
		t.Fatalf("recursive record should resolve")
	}
	if !env.IsType("number") || !env.IsType("Int") || env.IsType("Missing") {
		t.Fatalf("IsType misclassified a name")
	}
}

func TestTypeEnvironmentRejectsMalformedDeclarations(t *testing.T) {
	mixed := ast.NewProgram()
	mixed.Types = []ast.TypeDecl{ast.NewUnionTypeDecl("Mixed", "number", "symbol")}
	if NewTypeEnvironment(mixed).Err() == nil {
		t.Fatalf("mixed-kind union must invalidate the environment")
	}

	undefined := ast.NewProgram()
	undefined.Types = []ast.TypeDecl{ast.NewUnionTypeDecl("U", "Missing")}
	if NewTypeEnvironment(undefined).Err() == nil {
		t.Fatalf("undefined member must invalidate the environment")
	}

	cyclic := ast.NewProgram()
	cyclic.Types = []ast.TypeDecl{
		ast.NewUnionTypeDecl("A", "B"),
		ast.NewUnionTypeDecl("B", "A"),
	}
	if NewTypeEnvironment(cyclic).Err() == nil {
		t.Fatalf("cyclic unions must invalidate the environment")
	}
}

func TestTranslationUnitServices(t *testing.T) {
	p := chainProgram()
	tu := NewTranslationUnit(p, report.NewErrorReport())

	graph := Get[*PrecedenceGraph](tu)
	if graph == nil {
		t.Fatalf("precedence graph service missing")
	}
	if Get[*PrecedenceGraph](tu) != graph {
		t.Fatalf("services must be memoized")
	}
	if Get[*RecursiveClauses](tu) == nil || Get[*RelationSchedule](tu) == nil {
		t.Fatalf("schedule services missing")
	}
	if Get[*IOType](tu) == nil || Get[*TypeEnvironment](tu) == nil {
		t.Fatalf("io/type services missing")
	}
}
