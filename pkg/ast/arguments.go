package ast

// Argument is an expression appearing in an atom, constraint, or functor.
type Argument interface {
	Node
	String() string
	argumentNode()
}

type argumentMarker struct{}

func (argumentMarker) argumentNode() {}

// Literal is a positive atom, a negation, or a constraint in a clause body.
type Literal interface {
	Node
	String() string
	literalNode()
}

type literalMarker struct{}

func (literalMarker) literalNode() {}

// Variable is a named clause variable.
type Variable struct {
	nodeImpl
	argumentMarker
	Name string
}

func NewVariable(name string) *Variable {
	return &Variable{nodeImpl: newNodeImpl(NodeVariable), Name: name}
}

// UnnamedVariable is the anonymous placeholder written as an underscore.
type UnnamedVariable struct {
	nodeImpl
	argumentMarker
}

func NewUnnamedVariable() *UnnamedVariable {
	return &UnnamedVariable{nodeImpl: newNodeImpl(NodeUnnamedVariable)}
}

// NumberConstant is a numeric literal.
type NumberConstant struct {
	nodeImpl
	argumentMarker
	Value int64
}

func NewNumberConstant(value int64) *NumberConstant {
	return &NumberConstant{nodeImpl: newNodeImpl(NodeNumberConstant), Value: value}
}

// StringConstant is a symbol literal.
type StringConstant struct {
	nodeImpl
	argumentMarker
	Value string
}

func NewStringConstant(value string) *StringConstant {
	return &StringConstant{nodeImpl: newNodeImpl(NodeStringConstant), Value: value}
}

// NilConstant is the empty record constant.
type NilConstant struct {
	nodeImpl
	argumentMarker
}

func NewNilConstant() *NilConstant {
	return &NilConstant{nodeImpl: newNodeImpl(NodeNilConstant)}
}

// Counter is the auto-increment argument written as '$'.
type Counter struct {
	nodeImpl
	argumentMarker
}

func NewCounter() *Counter {
	return &Counter{nodeImpl: newNodeImpl(NodeCounter)}
}

// TypeCast reinterprets its value as the named type.
type TypeCast struct {
	nodeImpl
	argumentMarker
	TypeName string
	Value    Argument
}

func NewTypeCast(typeName string, value Argument) *TypeCast {
	return &TypeCast{nodeImpl: newNodeImpl(NodeTypeCast), TypeName: typeName, Value: value}
}

// IntrinsicFunctor applies a built-in operation to its arguments.
type IntrinsicFunctor struct {
	nodeImpl
	argumentMarker
	Op   FunctorOp
	Args []Argument
}

func NewIntrinsicFunctor(op FunctorOp, args ...Argument) *IntrinsicFunctor {
	return &IntrinsicFunctor{nodeImpl: newNodeImpl(NodeIntrinsicFunctor), Op: op, Args: args}
}

func (f *IntrinsicFunctor) Arity() int { return len(f.Args) }

// UserDefinedFunctor applies a declared external functor.
type UserDefinedFunctor struct {
	nodeImpl
	argumentMarker
	Name string
	Args []Argument
}

func NewUserDefinedFunctor(name string, args ...Argument) *UserDefinedFunctor {
	return &UserDefinedFunctor{nodeImpl: newNodeImpl(NodeUserDefinedFunctor), Name: name, Args: args}
}

func (f *UserDefinedFunctor) Arity() int { return len(f.Args) }

// RecordInit constructs a record value of the named record type.
type RecordInit struct {
	nodeImpl
	argumentMarker
	TypeName string
	Args     []Argument
}

func NewRecordInit(typeName string, args ...Argument) *RecordInit {
	return &RecordInit{nodeImpl: newNodeImpl(NodeRecordInit), TypeName: typeName, Args: args}
}

// AggregatorOp enumerates the aggregation operators.
type AggregatorOp string

const (
	AggCount AggregatorOp = "count"
	AggSum   AggregatorOp = "sum"
	AggMin   AggregatorOp = "min"
	AggMax   AggregatorOp = "max"
)

// Aggregator folds the matches of its body into a single value. Target is
// nil for count.
type Aggregator struct {
	nodeImpl
	argumentMarker
	Op     AggregatorOp
	Target Argument
	Body   []Literal
}

func NewAggregator(op AggregatorOp, target Argument, body ...Literal) *Aggregator {
	return &Aggregator{nodeImpl: newNodeImpl(NodeAggregator), Op: op, Target: target, Body: body}
}

// Atom applies a relation to an ordered list of arguments. Atoms serve both
// as clause heads and as positive body literals.
type Atom struct {
	nodeImpl
	literalMarker
	Name QualifiedName
	Args []Argument
}

func NewAtom(name QualifiedName, args ...Argument) *Atom {
	return &Atom{nodeImpl: newNodeImpl(NodeAtom), Name: name, Args: args}
}

func (a *Atom) Arity() int { return len(a.Args) }

// AddArgument appends an argument to the atom.
func (a *Atom) AddArgument(arg Argument) {
	a.Args = append(a.Args, arg)
}

// Negation negates a single atom.
type Negation struct {
	nodeImpl
	literalMarker
	Atom *Atom
}

func NewNegation(atom *Atom) *Negation {
	return &Negation{nodeImpl: newNodeImpl(NodeNegation), Atom: atom}
}

// BinaryConstraint compares two arguments.
type BinaryConstraint struct {
	nodeImpl
	literalMarker
	Op  ConstraintOp
	LHS Argument
	RHS Argument
}

func NewBinaryConstraint(op ConstraintOp, lhs, rhs Argument) *BinaryConstraint {
	return &BinaryConstraint{nodeImpl: newNodeImpl(NodeBinaryConstraint), Op: op, LHS: lhs, RHS: rhs}
}

// BooleanConstraint is the constant literal true or false.
type BooleanConstraint struct {
	nodeImpl
	literalMarker
	Value bool
}

func NewBooleanConstraint(value bool) *BooleanConstraint {
	return &BooleanConstraint{nodeImpl: newNodeImpl(NodeBooleanConstraint), Value: value}
}
