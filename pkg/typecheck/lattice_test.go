package typecheck

import (
	"testing"

	"github.com/stretchr/testify/require"

	"loam/frontend-go/pkg/analysis"
	"loam/frontend-go/pkg/ast"
)

func testLattice(t *testing.T) *TypeLattice {
	t.Helper()
	p := ast.NewProgram()
	p.Types = []ast.TypeDecl{
		ast.NewPrimitiveTypeDecl("Even", true),
		ast.NewPrimitiveTypeDecl("Odd", true),
		ast.NewPrimitiveTypeDecl("Name", false),
		ast.NewPrimitiveTypeDecl("Prime", true),
		ast.NewUnionTypeDecl("Int", "Even", "Odd"),
		ast.NewUnionTypeDecl("Evens", "Even"),
		ast.NewUnionTypeDecl("EvenOrPrime", "Even", "Prime"),
		ast.NewUnionTypeDecl("OddOrPrime", "Odd", "Prime"),
		ast.NewRecordTypeDecl("Pair",
			ast.RecordField{Name: "a", TypeName: "number"},
			ast.RecordField{Name: "b", TypeName: "number"}),
		ast.NewRecordTypeDecl("Wrap",
			ast.RecordField{Name: "inner", TypeName: "Pair"}),
	}
	env := analysis.NewTypeEnvironment(p)
	require.NoError(t, env.Err())
	lattice := NewTypeLattice(env)
	require.True(t, lattice.IsValid())
	return lattice
}

func TestLatticeSubtypeBounds(t *testing.T) {
	l := testLattice(t)
	even := l.AnalysisType("Even")
	intType := l.AnalysisType("Int")
	pair := l.AnalysisType("Pair")

	for _, typ := range []AnalysisType{even, intType, pair, l.TopPrimitive(ast.KindNumber), l.Constant(ast.KindSymbol)} {
		require.True(t, l.IsSubtype(l.Bottom(), typ), "bottom <= %v", typ)
		require.True(t, l.IsSubtype(typ, l.Top()), "%v <= top", typ)
		require.True(t, l.IsSubtype(typ, typ), "%v <= %v", typ, typ)
	}

	require.True(t, l.IsSubtype(l.BottomPrimitive(ast.KindNumber), even))
	require.True(t, l.IsSubtype(even, l.TopPrimitive(ast.KindNumber)))
	require.False(t, l.IsSubtype(even, l.TopPrimitive(ast.KindSymbol)))
}

func TestLatticeSubtypeConstants(t *testing.T) {
	l := testLattice(t)
	require.True(t, l.IsSubtype(l.Constant(ast.KindNumber), l.AnalysisType("Even")))
	require.True(t, l.IsSubtype(l.Constant(ast.KindNumber), l.AnalysisType("Int")))
	require.True(t, l.IsSubtype(l.Constant(ast.KindRecord), l.AnalysisType("Pair")))
	require.False(t, l.IsSubtype(l.Constant(ast.KindSymbol), l.AnalysisType("Even")))
	require.False(t, l.IsSubtype(l.AnalysisType("Even"), l.Constant(ast.KindNumber)))
}

func TestLatticeSubtypeUnions(t *testing.T) {
	l := testLattice(t)
	even := l.AnalysisType("Even")
	odd := l.AnalysisType("Odd")
	intType := l.AnalysisType("Int")
	evens := l.AnalysisType("Evens")

	require.True(t, l.IsSubtype(even, intType))
	require.True(t, l.IsSubtype(odd, intType))
	require.True(t, l.IsSubtype(evens, intType))
	require.False(t, l.IsSubtype(intType, evens))
	require.False(t, l.IsSubtype(l.AnalysisType("Name"), intType))
}

func TestLatticeSubtypeRecordsAreNominal(t *testing.T) {
	l := testLattice(t)
	pair := l.AnalysisType("Pair")
	wrap := l.AnalysisType("Wrap")
	require.True(t, l.IsSubtype(pair, pair))
	require.False(t, l.IsSubtype(pair, wrap))
	require.True(t, l.IsSubtype(pair, l.TopPrimitive(ast.KindRecord)))
}

func TestLatticeJoin(t *testing.T) {
	l := testLattice(t)
	even := l.AnalysisType("Even")
	odd := l.AnalysisType("Odd")
	intType := l.AnalysisType("Int")
	name := l.AnalysisType("Name")

	require.Equal(t, intType, l.Join(even, intType))
	require.Equal(t, l.Top(), l.Join(even, name))
	require.Equal(t, even, l.Join(even, l.Constant(ast.KindNumber)))

	joined := l.Join(even, odd)
	require.True(t, l.IsSubtype(even, joined))
	require.True(t, l.IsSubtype(odd, joined))
	require.True(t, l.IsSubtype(joined, intType))
}

func TestLatticeMeet(t *testing.T) {
	l := testLattice(t)
	even := l.AnalysisType("Even")
	odd := l.AnalysisType("Odd")
	intType := l.AnalysisType("Int")
	evens := l.AnalysisType("Evens")
	name := l.AnalysisType("Name")
	pair := l.AnalysisType("Pair")
	wrap := l.AnalysisType("Wrap")

	require.Equal(t, even, l.Meet(even, intType))
	require.Equal(t, l.BottomPrimitive(ast.KindNumber), l.Meet(even, odd))
	require.Equal(t, l.Bottom(), l.Meet(even, name))
	require.Equal(t, l.BottomPrimitive(ast.KindRecord), l.Meet(pair, wrap))
	require.Equal(t, l.Constant(ast.KindNumber), l.Meet(l.Constant(ast.KindNumber), even))

	// A union that is a subset of another is their meet.
	require.Same(t, evens, l.Meet(intType, evens))

	// Incomparable unions meet on their shared bases.
	require.Same(t, l.AnalysisType("Prime"),
		l.Meet(l.AnalysisType("EvenOrPrime"), l.AnalysisType("OddOrPrime")))
}

func TestLatticeInterning(t *testing.T) {
	l := testLattice(t)
	require.Same(t, l.AnalysisType("Even"), l.AnalysisType("Even"))
	require.Same(t, l.AnalysisType("number"), l.TopPrimitive(ast.KindNumber))
	require.Same(t, l.StoredType(&TopPrimitiveType{kind: ast.KindNumber}), l.TopPrimitive(ast.KindNumber))
	require.Same(t, l.StoredType(&TopType{}), l.Top())
	require.Same(t, l.StoredType(&ConstantType{kind: ast.KindSymbol}), l.Constant(ast.KindSymbol))
}

func TestLatticeInvalidEnvironment(t *testing.T) {
	p := ast.NewProgram()
	p.Types = []ast.TypeDecl{
		ast.NewUnionTypeDecl("Mixed", "number", "symbol"),
	}
	env := analysis.NewTypeEnvironment(p)
	require.Error(t, env.Err())
	lattice := NewTypeLattice(env)
	require.False(t, lattice.IsValid())
}
