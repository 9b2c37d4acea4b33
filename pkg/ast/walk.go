package ast

// Children returns the direct child nodes of a node in source order.
func Children(n Node) []Node {
	switch node := n.(type) {
	case *Program:
		var kids []Node
		for _, t := range node.Types {
			kids = append(kids, t)
		}
		for _, r := range node.Relations {
			kids = append(kids, r)
		}
		for _, c := range node.Orphans {
			kids = append(kids, c)
		}
		for _, d := range node.Directives {
			kids = append(kids, d)
		}
		for _, f := range node.Functors {
			kids = append(kids, f)
		}
		return kids
	case *Relation:
		var kids []Node
		for _, a := range node.Attributes {
			kids = append(kids, a)
		}
		for _, c := range node.Clauses {
			kids = append(kids, c)
		}
		return kids
	case *Clause:
		kids := []Node{node.Head}
		for _, lit := range node.Body {
			kids = append(kids, lit)
		}
		return kids
	case *Atom:
		kids := make([]Node, 0, len(node.Args))
		for _, a := range node.Args {
			kids = append(kids, a)
		}
		return kids
	case *Negation:
		return []Node{node.Atom}
	case *BinaryConstraint:
		return []Node{node.LHS, node.RHS}
	case *TypeCast:
		return []Node{node.Value}
	case *IntrinsicFunctor:
		kids := make([]Node, 0, len(node.Args))
		for _, a := range node.Args {
			kids = append(kids, a)
		}
		return kids
	case *UserDefinedFunctor:
		kids := make([]Node, 0, len(node.Args))
		for _, a := range node.Args {
			kids = append(kids, a)
		}
		return kids
	case *RecordInit:
		kids := make([]Node, 0, len(node.Args))
		for _, a := range node.Args {
			kids = append(kids, a)
		}
		return kids
	case *Aggregator:
		var kids []Node
		if node.Target != nil {
			kids = append(kids, node.Target)
		}
		for _, lit := range node.Body {
			kids = append(kids, lit)
		}
		return kids
	}
	return nil
}

// Walk visits n and every node beneath it depth first, parents before
// children.
func Walk(n Node, fn func(Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, child := range Children(n) {
		Walk(child, fn)
	}
}

// WalkArguments visits every argument node beneath n in depth-first order.
func WalkArguments(n Node, fn func(Argument)) {
	Walk(n, func(node Node) {
		if arg, ok := node.(Argument); ok {
			fn(arg)
		}
	})
}

// WalkVariables visits every named variable beneath n.
func WalkVariables(n Node, fn func(*Variable)) {
	Walk(n, func(node Node) {
		if v, ok := node.(*Variable); ok {
			fn(v)
		}
	})
}

// WalkLiterals visits every literal beneath n, including literals nested in
// aggregator bodies.
func WalkLiterals(n Node, fn func(Literal)) {
	Walk(n, func(node Node) {
		if lit, ok := node.(Literal); ok {
			fn(lit)
		}
	})
}

// ReplaceArguments rewrites the argument subtrees of a literal in place. The
// mapper is applied parent-first: when it returns a replacement the walk does
// not descend into the replaced subtree.
func ReplaceArguments(lit Literal, fn func(Argument) Argument) {
	switch node := lit.(type) {
	case *Atom:
		replaceArgSlice(node.Args, fn)
	case *Negation:
		replaceArgSlice(node.Atom.Args, fn)
	case *BinaryConstraint:
		node.LHS = replaceArg(node.LHS, fn)
		node.RHS = replaceArg(node.RHS, fn)
	case *BooleanConstraint:
	}
}

func replaceArgSlice(args []Argument, fn func(Argument) Argument) {
	for i, arg := range args {
		args[i] = replaceArg(arg, fn)
	}
}

func replaceArg(arg Argument, fn func(Argument) Argument) Argument {
	if mapped := fn(arg); mapped != arg {
		return mapped
	}
	switch node := arg.(type) {
	case *TypeCast:
		node.Value = replaceArg(node.Value, fn)
	case *IntrinsicFunctor:
		replaceArgSlice(node.Args, fn)
	case *UserDefinedFunctor:
		replaceArgSlice(node.Args, fn)
	case *RecordInit:
		replaceArgSlice(node.Args, fn)
	case *Aggregator:
		if node.Target != nil {
			node.Target = replaceArg(node.Target, fn)
		}
		for _, lit := range node.Body {
			ReplaceArguments(lit, fn)
		}
	}
	return arg
}
