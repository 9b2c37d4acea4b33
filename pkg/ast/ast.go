package ast

import (
	"fmt"
	"strings"
)

type NodeType string

const (
	NodeVariable           NodeType = "Variable"
	NodeUnnamedVariable    NodeType = "UnnamedVariable"
	NodeNumberConstant     NodeType = "NumberConstant"
	NodeStringConstant     NodeType = "StringConstant"
	NodeNilConstant        NodeType = "NilConstant"
	NodeCounter            NodeType = "Counter"
	NodeTypeCast           NodeType = "TypeCast"
	NodeIntrinsicFunctor   NodeType = "IntrinsicFunctor"
	NodeUserDefinedFunctor NodeType = "UserDefinedFunctor"
	NodeRecordInit         NodeType = "RecordInit"
	NodeAggregator         NodeType = "Aggregator"
	NodeAtom               NodeType = "Atom"
	NodeNegation           NodeType = "Negation"
	NodeBinaryConstraint   NodeType = "BinaryConstraint"
	NodeBooleanConstraint  NodeType = "BooleanConstraint"
	NodeAttribute          NodeType = "Attribute"
	NodeRelation           NodeType = "Relation"
	NodeClause             NodeType = "Clause"
	NodePrimitiveType      NodeType = "PrimitiveType"
	NodeUnionType          NodeType = "UnionType"
	NodeRecordType         NodeType = "RecordType"
	NodeIODirective        NodeType = "IODirective"
	NodeFunctorDecl        NodeType = "FunctorDeclaration"
	NodeExecutionOrder     NodeType = "ExecutionOrder"
	NodeProgram            NodeType = "Program"
)

// SrcLocation identifies a region of a source file.
type SrcLocation struct {
	Filename  string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

func Loc(file string, line, col int) SrcLocation {
	return SrcLocation{Filename: file, StartLine: line, StartCol: col, EndLine: line, EndCol: col}
}

func (l SrcLocation) IsSet() bool {
	return l.StartLine != 0
}

func (l SrcLocation) String() string {
	if !l.IsSet() {
		return ""
	}
	file := l.Filename
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", file, l.StartLine, l.StartCol)
}

// Before orders locations by file, then line, then column.
func (l SrcLocation) Before(other SrcLocation) bool {
	if l.Filename != other.Filename {
		return l.Filename < other.Filename
	}
	if l.StartLine != other.StartLine {
		return l.StartLine < other.StartLine
	}
	return l.StartCol < other.StartCol
}

// Node is implemented by every AST node.
type Node interface {
	NodeType() NodeType
	SrcLoc() SrcLocation
	isNode()
}

type nodeImpl struct {
	Type NodeType
	Loc  SrcLocation
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n *nodeImpl) NodeType() NodeType       { return n.Type }
func (n *nodeImpl) SrcLoc() SrcLocation      { return n.Loc }
func (n *nodeImpl) SetSrcLoc(l SrcLocation)  { n.Loc = l }
func (*nodeImpl) isNode()                    {}

// Kind is the coarse classification every analysis type lives under.
type Kind string

const (
	KindSymbol Kind = "SYMBOL"
	KindNumber Kind = "NUMBER"
	KindRecord Kind = "RECORD"
)

func (k Kind) String() string { return string(k) }

// QualifiedName is a dotted relation identifier.
type QualifiedName string

func NewQualifiedName(components ...string) QualifiedName {
	return QualifiedName(strings.Join(components, "."))
}

func (q QualifiedName) Components() []string { return strings.Split(string(q), ".") }
func (q QualifiedName) String() string       { return string(q) }

// MinNumberValue and MaxNumberValue bound the number constant domain.
const (
	MinNumberValue int64 = -2147483648
	MaxNumberValue int64 = 2147483647
)

// TypeDecl is a user type declaration: primitive, union, or record.
type TypeDecl interface {
	Node
	TypeName() string
	typeDeclNode()
}

// PrimitiveTypeDecl declares a leaf type carved out of a primitive domain.
type PrimitiveTypeDecl struct {
	nodeImpl
	Name    string
	Numeric bool
}

func NewPrimitiveTypeDecl(name string, numeric bool) *PrimitiveTypeDecl {
	return &PrimitiveTypeDecl{nodeImpl: newNodeImpl(NodePrimitiveType), Name: name, Numeric: numeric}
}

func (t *PrimitiveTypeDecl) TypeName() string { return t.Name }
func (*PrimitiveTypeDecl) typeDeclNode()      {}

// UnionTypeDecl declares a union over previously declared types.
type UnionTypeDecl struct {
	nodeImpl
	Name    string
	Members []string
}

func NewUnionTypeDecl(name string, members ...string) *UnionTypeDecl {
	return &UnionTypeDecl{nodeImpl: newNodeImpl(NodeUnionType), Name: name, Members: members}
}

func (t *UnionTypeDecl) TypeName() string { return t.Name }
func (*UnionTypeDecl) typeDeclNode()      {}

// RecordField is a single named field of a record type.
type RecordField struct {
	Name     string
	TypeName string
}

// RecordTypeDecl declares a record type with ordered named fields.
type RecordTypeDecl struct {
	nodeImpl
	Name   string
	Fields []RecordField
}

func NewRecordTypeDecl(name string, fields ...RecordField) *RecordTypeDecl {
	return &RecordTypeDecl{nodeImpl: newNodeImpl(NodeRecordType), Name: name, Fields: fields}
}

func (t *RecordTypeDecl) TypeName() string { return t.Name }
func (*RecordTypeDecl) typeDeclNode()      {}

// RelationRepresentation selects the data structure backing a relation.
type RelationRepresentation string

const (
	RepresentationDefault RelationRepresentation = ""
	RepresentationBtree   RelationRepresentation = "btree"
	RepresentationBrie    RelationRepresentation = "brie"
	RepresentationEqrel   RelationRepresentation = "eqrel"
)

// Attribute is one named, typed column of a relation.
type Attribute struct {
	nodeImpl
	Name     string
	TypeName string
}

func NewAttribute(name, typeName string) *Attribute {
	return &Attribute{nodeImpl: newNodeImpl(NodeAttribute), Name: name, TypeName: typeName}
}

// Relation is a declared relation together with its clauses.
type Relation struct {
	nodeImpl
	Name           QualifiedName
	Attributes     []*Attribute
	Representation RelationRepresentation
	Inline         bool
	Input          bool
	Output         bool
	PrintSize      bool
	Suppressed     bool
	Clauses        []*Clause
}

func NewRelation(name QualifiedName, attributes ...*Attribute) *Relation {
	return &Relation{nodeImpl: newNodeImpl(NodeRelation), Name: name, Attributes: attributes}
}

func (r *Relation) Arity() int { return len(r.Attributes) }

func (r *Relation) AddClause(c *Clause) *Relation {
	r.Clauses = append(r.Clauses, c)
	return r
}

// ExecutionOrder is one scheduled ordering of a clause's body atoms.
type ExecutionOrder struct {
	nodeImpl
	Atoms []int
}

func NewExecutionOrder(atoms ...int) *ExecutionOrder {
	return &ExecutionOrder{nodeImpl: newNodeImpl(NodeExecutionOrder), Atoms: atoms}
}

// IsComplete reports whether the order is a permutation of 1..len(Atoms).
func (o *ExecutionOrder) IsComplete() bool {
	seen := make(map[int]bool, len(o.Atoms))
	for _, idx := range o.Atoms {
		if idx < 1 || idx > len(o.Atoms) || seen[idx] {
			return false
		}
		seen[idx] = true
	}
	return true
}

// ExecutionPlan maps recursion versions to execution orders.
type ExecutionPlan struct {
	Orders map[int]*ExecutionOrder
}

func NewExecutionPlan() *ExecutionPlan {
	return &ExecutionPlan{Orders: make(map[int]*ExecutionOrder)}
}

func (p *ExecutionPlan) SetOrder(version int, order *ExecutionOrder) {
	p.Orders[version] = order
}

func (p *ExecutionPlan) MaxVersion() int {
	max := -1
	for version := range p.Orders {
		if version > max {
			max = version
		}
	}
	return max
}

// Clause is a rule: one head atom and a possibly empty body.
type Clause struct {
	nodeImpl
	Head      *Atom
	Body      []Literal
	Plan      *ExecutionPlan
	Generated bool
}

func NewClause(head *Atom, body ...Literal) *Clause {
	return &Clause{nodeImpl: newNodeImpl(NodeClause), Head: head, Body: body}
}

func (c *Clause) IsFact() bool { return len(c.Body) == 0 }

// AddToBody appends a literal to the clause body.
func (c *Clause) AddToBody(lit Literal) {
	c.Body = append(c.Body, lit)
}

// Atoms returns the positive body atoms in order.
func (c *Clause) Atoms() []*Atom {
	var atoms []*Atom
	for _, lit := range c.Body {
		if atom, ok := lit.(*Atom); ok {
			atoms = append(atoms, atom)
		}
	}
	return atoms
}

// Negations returns the negated body literals in order.
func (c *Clause) Negations() []*Negation {
	var negs []*Negation
	for _, lit := range c.Body {
		if neg, ok := lit.(*Negation); ok {
			negs = append(negs, neg)
		}
	}
	return negs
}

// IODirectiveKind distinguishes load, store, and printsize directives.
type IODirectiveKind string

const (
	DirectiveLoad      IODirectiveKind = "load"
	DirectiveStore     IODirectiveKind = "store"
	DirectivePrintSize IODirectiveKind = "printsize"
)

// IODirective attaches an I/O operation to a relation by name.
type IODirective struct {
	nodeImpl
	Kind IODirectiveKind
	Name QualifiedName
}

func NewIODirective(kind IODirectiveKind, name QualifiedName) *IODirective {
	return &IODirective{nodeImpl: newNodeImpl(NodeIODirective), Kind: kind, Name: name}
}

// FunctorDeclaration declares an external functor's signature.
type FunctorDeclaration struct {
	nodeImpl
	Name       string
	ArgKinds   []Kind
	ReturnKind Kind
}

func NewFunctorDeclaration(name string, argKinds []Kind, returnKind Kind) *FunctorDeclaration {
	return &FunctorDeclaration{nodeImpl: newNodeImpl(NodeFunctorDecl), Name: name, ArgKinds: argKinds, ReturnKind: returnKind}
}

func (f *FunctorDeclaration) Arity() int { return len(f.ArgKinds) }

func (f *FunctorDeclaration) AcceptsSymbols(i int) bool {
	return i < len(f.ArgKinds) && f.ArgKinds[i] == KindSymbol
}

func (f *FunctorDeclaration) AcceptsNumbers(i int) bool {
	return i < len(f.ArgKinds) && f.ArgKinds[i] == KindNumber
}

func (f *FunctorDeclaration) Symbolic() bool  { return f.ReturnKind == KindSymbol }
func (f *FunctorDeclaration) Numerical() bool { return f.ReturnKind == KindNumber }

// Program bundles every declaration of a translation unit.
type Program struct {
	nodeImpl
	Types      []TypeDecl
	Relations  []*Relation
	Orphans    []*Clause
	Directives []*IODirective
	Functors   []*FunctorDeclaration
}

func NewProgram() *Program {
	return &Program{nodeImpl: newNodeImpl(NodeProgram)}
}

// Relation looks up a relation declaration by name, or nil.
func (p *Program) Relation(name QualifiedName) *Relation {
	for _, rel := range p.Relations {
		if rel.Name == name {
			return rel
		}
	}
	return nil
}

// TypeDecl looks up a user type declaration by name, or nil.
func (p *Program) TypeDecl(name string) TypeDecl {
	for _, t := range p.Types {
		if t.TypeName() == name {
			return t
		}
	}
	return nil
}

// FunctorDeclaration looks up a functor declaration by name, or nil.
func (p *Program) FunctorDeclaration(name string) *FunctorDeclaration {
	for _, f := range p.Functors {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// AllClauses returns every clause of the program, relation clauses first,
// then orphan clauses.
func (p *Program) AllClauses() []*Clause {
	var clauses []*Clause
	for _, rel := range p.Relations {
		clauses = append(clauses, rel.Clauses...)
	}
	clauses = append(clauses, p.Orphans...)
	return clauses
}
