package ast

// Variables collects every named variable beneath n in depth-first order.
func Variables(n Node) []*Variable {
	var vars []*Variable
	WalkVariables(n, func(v *Variable) { vars = append(vars, v) })
	return vars
}

// Records collects every record constructor beneath n in depth-first order.
func Records(n Node) []*RecordInit {
	var records []*RecordInit
	Walk(n, func(node Node) {
		if r, ok := node.(*RecordInit); ok {
			records = append(records, r)
		}
	})
	return records
}

// AtomRelation resolves the relation an atom refers to, or nil.
func AtomRelation(atom *Atom, program *Program) *Relation {
	return program.Relation(atom.Name)
}

// HasClauseWithNegatedRelation reports whether some clause of rel negates the
// searched relation, returning the offending negation.
func HasClauseWithNegatedRelation(rel, searched *Relation, program *Program) (Literal, bool) {
	for _, clause := range rel.Clauses {
		var found Literal
		for _, lit := range clause.Body {
			if found != nil {
				break
			}
			WalkLiterals(lit, func(l Literal) {
				if found != nil {
					return
				}
				if neg, ok := l.(*Negation); ok && AtomRelation(neg.Atom, program) == searched {
					found = neg
				}
			})
		}
		if found != nil {
			return found, true
		}
	}
	return nil, false
}

// HasClauseWithAggregatedRelation reports whether some clause of rel uses the
// searched relation inside an aggregator body, returning the offending atom.
func HasClauseWithAggregatedRelation(rel, searched *Relation, program *Program) (Literal, bool) {
	for _, clause := range rel.Clauses {
		var found Literal
		Walk(clause, func(node Node) {
			if found != nil {
				return
			}
			aggr, ok := node.(*Aggregator)
			if !ok {
				return
			}
			for _, lit := range aggr.Body {
				WalkLiterals(lit, func(l Literal) {
					if found != nil {
						return
					}
					if atom, ok := l.(*Atom); ok && AtomRelation(atom, program) == searched {
						found = atom
					}
				})
			}
		})
		if found != nil {
			return found, true
		}
	}
	return nil, false
}
