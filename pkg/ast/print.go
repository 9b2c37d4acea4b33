package ast

import (
	"fmt"
	"strings"
)

func (v *Variable) String() string        { return v.Name }
func (*UnnamedVariable) String() string   { return "_" }
func (n *NumberConstant) String() string  { return fmt.Sprintf("%d", n.Value) }
func (s *StringConstant) String() string  { return fmt.Sprintf("%q", s.Value) }
func (*NilConstant) String() string       { return "nil" }
func (*Counter) String() string           { return "$" }

func (c *TypeCast) String() string {
	return fmt.Sprintf("as(%s, %s)", formatArgument(c.Value), c.TypeName)
}

func (f *IntrinsicFunctor) String() string {
	return fmt.Sprintf("%s(%s)", f.Op, formatArguments(f.Args))
}

func (f *UserDefinedFunctor) String() string {
	return fmt.Sprintf("@%s(%s)", f.Name, formatArguments(f.Args))
}

func (r *RecordInit) String() string {
	return fmt.Sprintf("[%s]", formatArguments(r.Args))
}

func (a *Aggregator) String() string {
	var sb strings.Builder
	sb.WriteString(string(a.Op))
	if a.Target != nil {
		sb.WriteString(" ")
		sb.WriteString(formatArgument(a.Target))
	}
	sb.WriteString(" : { ")
	sb.WriteString(formatLiterals(a.Body))
	sb.WriteString(" }")
	return sb.String()
}

func (a *Atom) String() string {
	return fmt.Sprintf("%s(%s)", a.Name, formatArguments(a.Args))
}

func (n *Negation) String() string {
	return "!" + n.Atom.String()
}

func (b *BinaryConstraint) String() string {
	return fmt.Sprintf("%s %s %s", formatArgument(b.LHS), b.Op, formatArgument(b.RHS))
}

func (b *BooleanConstraint) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}

func (c *Clause) String() string {
	if c.IsFact() {
		return c.Head.String() + "."
	}
	return c.Head.String() + " :- " + formatLiterals(c.Body) + "."
}

func formatArgument(arg Argument) string {
	if arg == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%v", arg)
}

func formatArguments(args []Argument) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = formatArgument(arg)
	}
	return strings.Join(parts, ", ")
}

func formatLiterals(lits []Literal) string {
	parts := make([]string, len(lits))
	for i, lit := range lits {
		parts[i] = fmt.Sprintf("%v", lit)
	}
	return strings.Join(parts, ", ")
}
