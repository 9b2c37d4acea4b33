package ast

import "testing"

func TestGroundedTermsPositiveAtomGroundsVariables(t *testing.T) {
	x := Var("X")
	headX := Var("X")
	clause := Rule(At("p", headX), At("q", x))

	grounded := GroundedTerms(clause)
	if !grounded[x] {
		t.Fatalf("expected X to be grounded by positive atom")
	}
	if !grounded[headX] {
		t.Fatalf("expected head occurrence of X to share groundedness")
	}
}

func TestGroundedTermsNegationGroundsNothing(t *testing.T) {
	x := Var("X")
	clause := Rule(At("p", Var("X")), Neg(At("q", x)))

	grounded := GroundedTerms(clause)
	if grounded[x] {
		t.Fatalf("expected X to stay ungrounded under negation")
	}
}

func TestGroundedTermsEqualityPropagates(t *testing.T) {
	x := Var("X")
	y := Var("Y")
	z := Var("Z")
	clause := Rule(At("p", Var("X")),
		At("q", z),
		Eq(y, z),
		Eq(x, y),
	)

	grounded := GroundedTerms(clause)
	for _, v := range []*Variable{x, y, z} {
		if !grounded[v] {
			t.Fatalf("expected %s to be grounded through equality chain", v.Name)
		}
	}
}

func TestGroundedTermsInequalityDoesNotGround(t *testing.T) {
	x := Var("X")
	clause := Rule(At("p", Var("X")), Cmp(OpLt, x, Num(3)))

	grounded := GroundedTerms(clause)
	if grounded[x] {
		t.Fatalf("expected X to stay ungrounded: inequalities bind nothing")
	}
}

func TestGroundedTermsConstantsAndCounter(t *testing.T) {
	num := Num(1)
	str := Str("a")
	ctr := Ctr()
	clause := Rule(At("p", Var("Y")), Eq(Var("Y"), num), Eq(Var("Z"), str), Eq(Var("W"), ctr))

	grounded := GroundedTerms(clause)
	for _, arg := range []Argument{num, str, ctr} {
		if !grounded[arg] {
			t.Fatalf("expected constant %v to be grounded", arg)
		}
	}
}

func TestGroundedTermsFunctorOverGroundedArgs(t *testing.T) {
	x := Var("X")
	fn := Intr(OpAdd, Var("X"), Num(1))
	clause := Rule(At("p", Var("Y")), At("q", x), Eq(Var("Y"), fn))

	grounded := GroundedTerms(clause)
	if !grounded[fn] {
		t.Fatalf("expected functor over grounded arguments to be grounded")
	}
}

func TestGroundedTermsFunctorDoesNotGroundItsArguments(t *testing.T) {
	x := Var("X")
	fn := Intr(OpAdd, x, Num(1))
	clause := Rule(At("p", Var("Y")), Eq(Var("Y"), fn), At("q", Var("Y")))

	grounded := GroundedTerms(clause)
	if grounded[x] {
		t.Fatalf("functors are not invertible; X must stay ungrounded")
	}
}

func TestGroundedTermsRecordBidirectional(t *testing.T) {
	// A record in a positive atom position is grounded, which grounds its
	// fields.
	x := Var("X")
	rec := Rec("Pair", x, Num(2))
	clause := Rule(At("p", Var("X")), At("q", rec))

	grounded := GroundedTerms(clause)
	if !grounded[rec] {
		t.Fatalf("expected record in atom position to be grounded")
	}
	if !grounded[x] {
		t.Fatalf("expected grounded record to ground its fields")
	}

	// Conversely a record over grounded fields is grounded.
	y := Var("Y")
	rec2 := Rec("Pair", y, Num(2))
	clause2 := Rule(At("p", Var("Z")), At("q", y), Eq(Var("Z"), rec2))
	grounded2 := GroundedTerms(clause2)
	if !grounded2[rec2] {
		t.Fatalf("expected record over grounded fields to be grounded")
	}
}

func TestGroundedTermsAggregatorResultIsGrounded(t *testing.T) {
	x := Var("X")
	aggr := Agg(AggMin, Var("Y"), At("r", Unnamed(), Var("Y")))
	clause := Rule(At("s", Var("X")), Eq(x, aggr))

	grounded := GroundedTerms(clause)
	if !grounded[aggr] {
		t.Fatalf("expected aggregator result position to be grounded")
	}
	if !grounded[x] {
		t.Fatalf("expected X to be grounded through equality with the aggregator")
	}
}

func TestGroundedTermsHeadDoesNotGround(t *testing.T) {
	x := Var("X")
	clause := Rule(At("p", x))
	clause.AddToBody(NewBooleanConstraint(true))

	grounded := GroundedTerms(clause)
	if grounded[x] {
		t.Fatalf("the head alone must not ground its arguments")
	}
}
