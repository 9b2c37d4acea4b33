package ast

// Argument helpers.

func Var(name string) *Variable {
	return NewVariable(name)
}

func Unnamed() *UnnamedVariable {
	return NewUnnamedVariable()
}

func Num(value int64) *NumberConstant {
	return NewNumberConstant(value)
}

func Str(value string) *StringConstant {
	return NewStringConstant(value)
}

func Nil() *NilConstant {
	return NewNilConstant()
}

func Ctr() *Counter {
	return NewCounter()
}

func Cast(typeName string, value Argument) *TypeCast {
	return NewTypeCast(typeName, value)
}

func Intr(op FunctorOp, args ...Argument) *IntrinsicFunctor {
	return NewIntrinsicFunctor(op, args...)
}

func UFun(name string, args ...Argument) *UserDefinedFunctor {
	return NewUserDefinedFunctor(name, args...)
}

func Rec(typeName string, args ...Argument) *RecordInit {
	return NewRecordInit(typeName, args...)
}

func Agg(op AggregatorOp, target Argument, body ...Literal) *Aggregator {
	return NewAggregator(op, target, body...)
}

// Literal helpers.

func At(name QualifiedName, args ...Argument) *Atom {
	return NewAtom(name, args...)
}

func Neg(atom *Atom) *Negation {
	return NewNegation(atom)
}

func Cmp(op ConstraintOp, lhs, rhs Argument) *BinaryConstraint {
	return NewBinaryConstraint(op, lhs, rhs)
}

func Eq(lhs, rhs Argument) *BinaryConstraint {
	return NewBinaryConstraint(OpEq, lhs, rhs)
}

// Declaration helpers.

func Attr(name, typeName string) *Attribute {
	return NewAttribute(name, typeName)
}

func Rel(name QualifiedName, attributes ...*Attribute) *Relation {
	return NewRelation(name, attributes...)
}

func Rule(head *Atom, body ...Literal) *Clause {
	return NewClause(head, body...)
}

func Fact(head *Atom) *Clause {
	return NewClause(head)
}
