package ast

// groundContext carries the dataflow state of one groundedness computation.
// Occurrences of the same variable name share a single groundedness value;
// every other term is tracked per instance.
type groundContext struct {
	vars    map[string]bool
	terms   map[Argument]bool
	changed bool
}

func (g *groundContext) isGrounded(arg Argument) bool {
	if v, ok := arg.(*Variable); ok {
		return g.vars[v.Name]
	}
	return g.terms[arg]
}

func (g *groundContext) setGrounded(arg Argument) {
	if v, ok := arg.(*Variable); ok {
		if !g.vars[v.Name] {
			g.vars[v.Name] = true
			g.changed = true
		}
		return
	}
	if !g.terms[arg] {
		g.terms[arg] = true
		g.changed = true
	}
}

// GroundedTerms computes, for every argument of the clause, whether its value
// is forced by the clause body. The computation is a fixed point over a small
// dataflow lattice: positive atoms ground their arguments, equality
// constraints propagate groundedness between their sides, constants and
// counters are grounded, functors and records over grounded arguments are
// grounded, grounded records ground their fields, and aggregators are
// grounded in their result position. Negations and inequalities ground
// nothing.
func GroundedTerms(clause *Clause) map[Argument]bool {
	var args []Argument
	WalkArguments(clause, func(a Argument) { args = append(args, a) })

	// All literals that may bind values, including those nested inside
	// aggregator bodies. Atoms under a negation are left out, and the head
	// atom itself binds nothing.
	var literals []Literal
	negated := make(map[*Atom]bool)
	collect := func(l Literal) {
		if neg, ok := l.(*Negation); ok {
			negated[neg.Atom] = true
		}
		if atom, ok := l.(*Atom); ok && negated[atom] {
			return
		}
		literals = append(literals, l)
	}
	for _, lit := range clause.Body {
		WalkLiterals(lit, collect)
	}
	if clause.Head != nil {
		for _, arg := range clause.Head.Args {
			WalkLiterals(arg, collect)
		}
	}

	ctx := &groundContext{vars: make(map[string]bool), terms: make(map[Argument]bool)}
	ctx.changed = true
	for ctx.changed {
		ctx.changed = false

		for _, lit := range literals {
			switch l := lit.(type) {
			case *Atom:
				for _, arg := range l.Args {
					ctx.setGrounded(arg)
				}
			case *BinaryConstraint:
				if l.Op == OpEq {
					if ctx.isGrounded(l.LHS) {
						ctx.setGrounded(l.RHS)
					}
					if ctx.isGrounded(l.RHS) {
						ctx.setGrounded(l.LHS)
					}
				}
			}
		}

		for _, arg := range args {
			switch a := arg.(type) {
			case *NumberConstant, *StringConstant, *NilConstant, *Counter:
				ctx.setGrounded(arg)
			case *TypeCast:
				if ctx.isGrounded(a.Value) {
					ctx.setGrounded(a)
				}
				if ctx.isGrounded(a) {
					ctx.setGrounded(a.Value)
				}
			case *IntrinsicFunctor:
				if allGrounded(ctx, a.Args) {
					ctx.setGrounded(a)
				}
			case *UserDefinedFunctor:
				if allGrounded(ctx, a.Args) {
					ctx.setGrounded(a)
				}
			case *RecordInit:
				if allGrounded(ctx, a.Args) {
					ctx.setGrounded(a)
				}
				if ctx.isGrounded(a) {
					for _, field := range a.Args {
						ctx.setGrounded(field)
					}
				}
			case *Aggregator:
				ctx.setGrounded(a)
			}
		}
	}

	result := make(map[Argument]bool, len(args))
	for _, arg := range args {
		result[arg] = ctx.isGrounded(arg)
	}
	return result
}

func allGrounded(ctx *groundContext, args []Argument) bool {
	for _, arg := range args {
		if !ctx.isGrounded(arg) {
			return false
		}
	}
	return true
}
