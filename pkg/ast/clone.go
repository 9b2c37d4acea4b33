package ast

// CloneArgument deep-copies an argument subtree, preserving source locations.
func CloneArgument(arg Argument) Argument {
	if arg == nil {
		return nil
	}
	switch node := arg.(type) {
	case *Variable:
		out := NewVariable(node.Name)
		out.Loc = node.Loc
		return out
	case *UnnamedVariable:
		out := NewUnnamedVariable()
		out.Loc = node.Loc
		return out
	case *NumberConstant:
		out := NewNumberConstant(node.Value)
		out.Loc = node.Loc
		return out
	case *StringConstant:
		out := NewStringConstant(node.Value)
		out.Loc = node.Loc
		return out
	case *NilConstant:
		out := NewNilConstant()
		out.Loc = node.Loc
		return out
	case *Counter:
		out := NewCounter()
		out.Loc = node.Loc
		return out
	case *TypeCast:
		out := NewTypeCast(node.TypeName, CloneArgument(node.Value))
		out.Loc = node.Loc
		return out
	case *IntrinsicFunctor:
		out := NewIntrinsicFunctor(node.Op, cloneArgs(node.Args)...)
		out.Loc = node.Loc
		return out
	case *UserDefinedFunctor:
		out := NewUserDefinedFunctor(node.Name, cloneArgs(node.Args)...)
		out.Loc = node.Loc
		return out
	case *RecordInit:
		out := NewRecordInit(node.TypeName, cloneArgs(node.Args)...)
		out.Loc = node.Loc
		return out
	case *Aggregator:
		var target Argument
		if node.Target != nil {
			target = CloneArgument(node.Target)
		}
		body := make([]Literal, len(node.Body))
		for i, lit := range node.Body {
			body[i] = CloneLiteral(lit)
		}
		out := NewAggregator(node.Op, target, body...)
		out.Loc = node.Loc
		return out
	}
	return nil
}

func cloneArgs(args []Argument) []Argument {
	out := make([]Argument, len(args))
	for i, a := range args {
		out[i] = CloneArgument(a)
	}
	return out
}

// CloneAtom deep-copies an atom.
func CloneAtom(atom *Atom) *Atom {
	out := NewAtom(atom.Name, cloneArgs(atom.Args)...)
	out.Loc = atom.Loc
	return out
}

// CloneLiteral deep-copies a body literal.
func CloneLiteral(lit Literal) Literal {
	switch node := lit.(type) {
	case *Atom:
		return CloneAtom(node)
	case *Negation:
		out := NewNegation(CloneAtom(node.Atom))
		out.Loc = node.Loc
		return out
	case *BinaryConstraint:
		out := NewBinaryConstraint(node.Op, CloneArgument(node.LHS), CloneArgument(node.RHS))
		out.Loc = node.Loc
		return out
	case *BooleanConstraint:
		out := NewBooleanConstraint(node.Value)
		out.Loc = node.Loc
		return out
	}
	return nil
}

// CloneLiteralPair produces two independent deep copies of a literal in a
// single traversal, along with the mapping from each argument of the second
// copy to the parallel argument of the first copy.
func CloneLiteralPair(lit Literal, pairs map[Argument]Argument) (Literal, Literal) {
	switch node := lit.(type) {
	case *Atom:
		a, b := cloneAtomPair(node, pairs)
		return a, b
	case *Negation:
		innerA, innerB := cloneAtomPair(node.Atom, pairs)
		a := NewNegation(innerA)
		a.Loc = node.Loc
		b := NewNegation(innerB)
		b.Loc = node.Loc
		return a, b
	case *BinaryConstraint:
		lhsA, lhsB := cloneArgumentPair(node.LHS, pairs)
		rhsA, rhsB := cloneArgumentPair(node.RHS, pairs)
		a := NewBinaryConstraint(node.Op, lhsA, rhsA)
		a.Loc = node.Loc
		b := NewBinaryConstraint(node.Op, lhsB, rhsB)
		b.Loc = node.Loc
		return a, b
	case *BooleanConstraint:
		a := NewBooleanConstraint(node.Value)
		a.Loc = node.Loc
		b := NewBooleanConstraint(node.Value)
		b.Loc = node.Loc
		return a, b
	}
	return nil, nil
}

func cloneAtomPair(atom *Atom, pairs map[Argument]Argument) (*Atom, *Atom) {
	argsA := make([]Argument, len(atom.Args))
	argsB := make([]Argument, len(atom.Args))
	for i, arg := range atom.Args {
		argsA[i], argsB[i] = cloneArgumentPair(arg, pairs)
	}
	a := NewAtom(atom.Name, argsA...)
	a.Loc = atom.Loc
	b := NewAtom(atom.Name, argsB...)
	b.Loc = atom.Loc
	return a, b
}

func cloneArgumentPair(arg Argument, pairs map[Argument]Argument) (Argument, Argument) {
	if arg == nil {
		return nil, nil
	}
	var a, b Argument
	switch node := arg.(type) {
	case *TypeCast:
		valA, valB := cloneArgumentPair(node.Value, pairs)
		castA := NewTypeCast(node.TypeName, valA)
		castA.Loc = node.Loc
		castB := NewTypeCast(node.TypeName, valB)
		castB.Loc = node.Loc
		a, b = castA, castB
	case *IntrinsicFunctor:
		argsA, argsB := cloneArgsPair(node.Args, pairs)
		funA := NewIntrinsicFunctor(node.Op, argsA...)
		funA.Loc = node.Loc
		funB := NewIntrinsicFunctor(node.Op, argsB...)
		funB.Loc = node.Loc
		a, b = funA, funB
	case *UserDefinedFunctor:
		argsA, argsB := cloneArgsPair(node.Args, pairs)
		funA := NewUserDefinedFunctor(node.Name, argsA...)
		funA.Loc = node.Loc
		funB := NewUserDefinedFunctor(node.Name, argsB...)
		funB.Loc = node.Loc
		a, b = funA, funB
	case *RecordInit:
		argsA, argsB := cloneArgsPair(node.Args, pairs)
		recA := NewRecordInit(node.TypeName, argsA...)
		recA.Loc = node.Loc
		recB := NewRecordInit(node.TypeName, argsB...)
		recB.Loc = node.Loc
		a, b = recA, recB
	case *Aggregator:
		targetA, targetB := cloneArgumentPair(node.Target, pairs)
		bodyA := make([]Literal, len(node.Body))
		bodyB := make([]Literal, len(node.Body))
		for i, lit := range node.Body {
			bodyA[i], bodyB[i] = CloneLiteralPair(lit, pairs)
		}
		aggA := NewAggregator(node.Op, targetA, bodyA...)
		aggA.Loc = node.Loc
		aggB := NewAggregator(node.Op, targetB, bodyB...)
		aggB.Loc = node.Loc
		a, b = aggA, aggB
	default:
		a = CloneArgument(arg)
		b = CloneArgument(arg)
	}
	pairs[b] = a
	return a, b
}

func cloneArgsPair(args []Argument, pairs map[Argument]Argument) ([]Argument, []Argument) {
	outA := make([]Argument, len(args))
	outB := make([]Argument, len(args))
	for i, arg := range args {
		outA[i], outB[i] = cloneArgumentPair(arg, pairs)
	}
	return outA, outB
}
