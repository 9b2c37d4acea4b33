// Package typecheck implements the analysis-type lattice and the per-clause
// constraint solver that assigns every AST argument a type drawn from the
// lattice.
package typecheck

import (
	"sort"
	"strings"

	"loam/frontend-go/pkg/analysis"
	"loam/frontend-go/pkg/ast"
)

// AnalysisType is an element of the type lattice. Lattice elements are
// interned: equality is pointer identity.
type AnalysisType interface {
	String() string
	analysisType()
}

// InnerType is any lattice element below Top and above Bottom; it carries a
// primitive kind.
type InnerType interface {
	AnalysisType
	Kind() ast.Kind
}

// TopType accepts anything.
type TopType struct{}

func (*TopType) String() string { return "top" }
func (*TopType) analysisType()  {}

// BottomType is the empty type, indicating a contradiction across kinds.
type BottomType struct{}

func (*BottomType) String() string { return "bottom" }
func (*BottomType) analysisType()  {}

// TopPrimitiveType is the universe of a single primitive kind.
type TopPrimitiveType struct {
	kind ast.Kind
}

func (t *TopPrimitiveType) Kind() ast.Kind { return t.kind }
func (t *TopPrimitiveType) String() string { return strings.ToLower(string(t.kind)) }
func (*TopPrimitiveType) analysisType()    {}

// BottomPrimitiveType is a contradiction within a single primitive kind.
type BottomPrimitiveType struct {
	kind ast.Kind
}

func (t *BottomPrimitiveType) Kind() ast.Kind { return t.kind }
func (t *BottomPrimitiveType) String() string {
	return "bottom(" + strings.ToLower(string(t.kind)) + ")"
}
func (*BottomPrimitiveType) analysisType() {}

// ConstantType is inhabited only by the literal constants of a kind.
type ConstantType struct {
	kind ast.Kind
}

func (t *ConstantType) Kind() ast.Kind { return t.kind }
func (t *ConstantType) String() string {
	return "constant(" + strings.ToLower(string(t.kind)) + ")"
}
func (*ConstantType) analysisType() {}

// BaseType is a user-declared leaf type.
type BaseType struct {
	name string
	kind ast.Kind
}

func (t *BaseType) Kind() ast.Kind { return t.kind }
func (t *BaseType) Name() string   { return t.name }
func (t *BaseType) String() string { return t.name }
func (*BaseType) analysisType()    {}

// UnionType is a user-declared (or synthesized) union of base types of one
// kind. The bases set is the transitive closure of leaf members.
type UnionType struct {
	name  string
	kind  ast.Kind
	bases map[string]bool
}

func (t *UnionType) Kind() ast.Kind { return t.kind }
func (t *UnionType) Name() string   { return t.name }
func (t *UnionType) String() string { return t.name }
func (*UnionType) analysisType()    {}

// RecordType is a user-declared record type; fields hold the analysis types
// of the record's elements in order.
type RecordType struct {
	name   string
	fields []AnalysisType
}

func (t *RecordType) Kind() ast.Kind          { return ast.KindRecord }
func (t *RecordType) Name() string            { return t.name }
func (t *RecordType) Fields() []AnalysisType  { return t.fields }
func (t *RecordType) String() string          { return t.name }
func (*RecordType) analysisType()             {}

// IsValidType reports whether a fixed-point type is usable: Top, Bottom, and
// the per-kind bottoms all indicate an unresolved or contradictory argument.
func IsValidType(t AnalysisType) bool {
	switch t.(type) {
	case *TopType, *BottomType, *BottomPrimitiveType:
		return false
	}
	return true
}

// TypeLattice owns the canonical instance of every analysis type derived
// from a type environment, plus the subtype, join, and meet operations.
type TypeLattice struct {
	valid bool

	top    *TopType
	bottom *BottomType

	topPrimitive    map[ast.Kind]*TopPrimitiveType
	bottomPrimitive map[ast.Kind]*BottomPrimitiveType
	constant        map[ast.Kind]*ConstantType

	named  map[string]AnalysisType
	unions map[string]*UnionType
}

func NewTypeLattice(env *analysis.TypeEnvironment) *TypeLattice {
	l := &TypeLattice{
		valid:           env.Err() == nil,
		top:             &TopType{},
		bottom:          &BottomType{},
		topPrimitive:    make(map[ast.Kind]*TopPrimitiveType),
		bottomPrimitive: make(map[ast.Kind]*BottomPrimitiveType),
		constant:        make(map[ast.Kind]*ConstantType),
		named:           make(map[string]AnalysisType),
		unions:          make(map[string]*UnionType),
	}
	for _, kind := range []ast.Kind{ast.KindSymbol, ast.KindNumber, ast.KindRecord} {
		l.topPrimitive[kind] = &TopPrimitiveType{kind: kind}
		l.bottomPrimitive[kind] = &BottomPrimitiveType{kind: kind}
		l.constant[kind] = &ConstantType{kind: kind}
	}

	// First materialize every named type, then resolve record fields so
	// recursive records tie back into interned instances.
	var records []*analysis.RecordEnvType
	for name, envType := range env.Types() {
		switch t := envType.(type) {
		case *analysis.BaseEnvType:
			l.named[name] = &BaseType{name: name, kind: t.Kind}
		case *analysis.UnionEnvType:
			bases := make(map[string]bool, len(t.Bases))
			for _, base := range t.Bases {
				bases[base] = true
			}
			union := &UnionType{name: name, kind: t.Kind, bases: bases}
			l.named[name] = union
			l.unions[unionKey(t.Kind, bases)] = union
		case *analysis.RecordEnvType:
			l.named[name] = &RecordType{name: name}
			records = append(records, t)
		}
	}
	for _, record := range records {
		interned := l.named[record.TypeName].(*RecordType)
		for _, field := range record.Fields {
			fieldType := l.AnalysisType(field.TypeName)
			if fieldType == nil {
				fieldType = l.top
				l.valid = false
			}
			interned.fields = append(interned.fields, fieldType)
		}
	}
	return l
}

// IsValid reports whether the lattice was built from a well-formed type
// environment; when false the type subsystem short-circuits.
func (l *TypeLattice) IsValid() bool { return l.valid }

// AnalysisType returns the canonical analysis type for a declared type name
// or primitive, or nil when the name is unknown.
func (l *TypeLattice) AnalysisType(typeName string) AnalysisType {
	switch typeName {
	case "number":
		return l.topPrimitive[ast.KindNumber]
	case "symbol":
		return l.topPrimitive[ast.KindSymbol]
	}
	if t, ok := l.named[typeName]; ok {
		return t
	}
	return nil
}

func (l *TypeLattice) Top() AnalysisType    { return l.top }
func (l *TypeLattice) Bottom() AnalysisType { return l.bottom }

func (l *TypeLattice) TopPrimitive(kind ast.Kind) AnalysisType    { return l.topPrimitive[kind] }
func (l *TypeLattice) BottomPrimitive(kind ast.Kind) AnalysisType { return l.bottomPrimitive[kind] }
func (l *TypeLattice) Constant(kind ast.Kind) AnalysisType        { return l.constant[kind] }

// StoredType interns an ad-hoc analysis type, returning the canonical
// instance with the same meaning.
func (l *TypeLattice) StoredType(t AnalysisType) AnalysisType {
	switch v := t.(type) {
	case *TopType:
		return l.top
	case *BottomType:
		return l.bottom
	case *TopPrimitiveType:
		return l.topPrimitive[v.kind]
	case *BottomPrimitiveType:
		return l.bottomPrimitive[v.kind]
	case *ConstantType:
		return l.constant[v.kind]
	case *BaseType:
		return l.named[v.name]
	case *RecordType:
		return l.named[v.name]
	case *UnionType:
		return l.internUnion(v.kind, v.bases)
	}
	return nil
}

func unionKey(kind ast.Kind, bases map[string]bool) string {
	names := make([]string, 0, len(bases))
	for name := range bases {
		names = append(names, name)
	}
	sort.Strings(names)
	return string(kind) + ":" + strings.Join(names, "|")
}

func (l *TypeLattice) internUnion(kind ast.Kind, bases map[string]bool) *UnionType {
	key := unionKey(kind, bases)
	if u, ok := l.unions[key]; ok {
		return u
	}
	names := make([]string, 0, len(bases))
	for name := range bases {
		names = append(names, name)
	}
	sort.Strings(names)
	u := &UnionType{name: strings.Join(names, " | "), kind: kind, bases: bases}
	l.unions[key] = u
	return u
}

// baseNames returns the set of leaf base names an inner primitive type
// covers, for Base and Union elements.
func baseNames(t AnalysisType) (map[string]bool, bool) {
	switch v := t.(type) {
	case *BaseType:
		return map[string]bool{v.name: true}, true
	case *UnionType:
		return v.bases, true
	}
	return nil, false
}

// IsSubtype reports a ≤ b in the lattice.
func (l *TypeLattice) IsSubtype(a, b AnalysisType) bool {
	if a == b {
		return true
	}
	if _, ok := a.(*BottomType); ok {
		return true
	}
	if _, ok := b.(*TopType); ok {
		return true
	}
	ia, okA := a.(InnerType)
	ib, okB := b.(InnerType)
	if !okA || !okB {
		return false
	}
	if ia.Kind() != ib.Kind() {
		return false
	}
	if _, ok := b.(*TopPrimitiveType); ok {
		return true
	}
	if _, ok := a.(*BottomPrimitiveType); ok {
		return true
	}
	if _, ok := a.(*TopPrimitiveType); ok {
		return false
	}
	if _, ok := b.(*BottomPrimitiveType); ok {
		return false
	}
	if _, ok := a.(*ConstantType); ok {
		// Constants inhabit every declared type of their kind.
		return true
	}
	if _, ok := b.(*ConstantType); ok {
		return false
	}
	if _, ok := a.(*RecordType); ok {
		// Distinct records are unrelated; identity was checked above.
		return false
	}
	subBases, okSub := baseNames(a)
	superBases, okSuper := baseNames(b)
	if !okSub || !okSuper {
		return false
	}
	for name := range subBases {
		if !superBases[name] {
			return false
		}
	}
	return true
}

// Join computes the least upper bound of a and b.
func (l *TypeLattice) Join(a, b AnalysisType) AnalysisType {
	if l.IsSubtype(a, b) {
		return b
	}
	if l.IsSubtype(b, a) {
		return a
	}
	ia, okA := a.(InnerType)
	ib, okB := b.(InnerType)
	if !okA || !okB || ia.Kind() != ib.Kind() {
		return l.top
	}
	kind := ia.Kind()
	basesA, okA := baseNames(a)
	basesB, okB := baseNames(b)
	if !okA || !okB {
		return l.topPrimitive[kind]
	}
	merged := make(map[string]bool, len(basesA)+len(basesB))
	for name := range basesA {
		merged[name] = true
	}
	for name := range basesB {
		merged[name] = true
	}
	return l.internUnion(kind, merged)
}

// Meet computes the greatest lower bound of a and b.
func (l *TypeLattice) Meet(a, b AnalysisType) AnalysisType {
	if l.IsSubtype(a, b) {
		return a
	}
	if l.IsSubtype(b, a) {
		return b
	}
	ia, okA := a.(InnerType)
	ib, okB := b.(InnerType)
	if !okA || !okB || ia.Kind() != ib.Kind() {
		return l.bottom
	}
	kind := ia.Kind()
	basesA, okA := baseNames(a)
	basesB, okB := baseNames(b)
	if !okA || !okB {
		return l.bottomPrimitive[kind]
	}
	intersection := make(map[string]bool)
	for name := range basesA {
		if basesB[name] {
			intersection[name] = true
		}
	}
	switch len(intersection) {
	case 0:
		return l.bottomPrimitive[kind]
	case 1:
		for name := range intersection {
			if base, ok := l.named[name].(*BaseType); ok {
				return base
			}
		}
		return l.bottomPrimitive[kind]
	default:
		return l.internUnion(kind, intersection)
	}
}
