package driver

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"loam/frontend-go/pkg/ast"
)

// The driver defines a YAML document form for program ASTs; the analysis
// core itself has no on-disk format. Every document node records the line
// and column it was parsed from so diagnostics point back into the file.

type programDoc struct {
	Types      []typeDoc      `yaml:"types"`
	Relations  []relationDoc  `yaml:"relations"`
	Clauses    []clauseDoc    `yaml:"clauses"`
	Directives []directiveDoc `yaml:"directives"`
	Functors   []functorDoc   `yaml:"functors"`
}

type docPos struct {
	line   int
	column int
}

func (p docPos) loc(file string) ast.SrcLocation {
	return ast.Loc(file, p.line, p.column)
}

type typeDoc struct {
	docPos    `yaml:"-"`
	Primitive *primitiveTypeDoc `yaml:"primitive"`
	Union     *unionTypeDoc     `yaml:"union"`
	Record    *recordTypeDoc    `yaml:"record"`
}

func (d *typeDoc) UnmarshalYAML(node *yaml.Node) error {
	type raw typeDoc
	var r raw
	if err := node.Decode(&r); err != nil {
		return err
	}
	*d = typeDoc(r)
	d.line, d.column = node.Line, node.Column
	return nil
}

type primitiveTypeDoc struct {
	Name    string `yaml:"name"`
	Numeric bool   `yaml:"numeric"`
}

type unionTypeDoc struct {
	Name    string   `yaml:"name"`
	Members []string `yaml:"members"`
}

type recordTypeDoc struct {
	Name   string     `yaml:"name"`
	Fields []fieldDoc `yaml:"fields"`
}

type fieldDoc struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type relationDoc struct {
	docPos         `yaml:"-"`
	Name           string         `yaml:"name"`
	Attributes     []attributeDoc `yaml:"attributes"`
	Representation string         `yaml:"representation"`
	Inline         bool           `yaml:"inline"`
	Input          bool           `yaml:"input"`
	Output         bool           `yaml:"output"`
	PrintSize      bool           `yaml:"printsize"`
}

func (d *relationDoc) UnmarshalYAML(node *yaml.Node) error {
	type raw relationDoc
	var r raw
	if err := node.Decode(&r); err != nil {
		return err
	}
	*d = relationDoc(r)
	d.line, d.column = node.Line, node.Column
	return nil
}

type attributeDoc struct {
	docPos `yaml:"-"`
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
}

func (d *attributeDoc) UnmarshalYAML(node *yaml.Node) error {
	type raw attributeDoc
	var r raw
	if err := node.Decode(&r); err != nil {
		return err
	}
	*d = attributeDoc(r)
	d.line, d.column = node.Line, node.Column
	return nil
}

type clauseDoc struct {
	docPos    `yaml:"-"`
	Head      *atomDoc         `yaml:"head"`
	Body      []literalDoc     `yaml:"body"`
	Plan      map[int][]int    `yaml:"plan"`
	Generated bool             `yaml:"generated"`
}

func (d *clauseDoc) UnmarshalYAML(node *yaml.Node) error {
	type raw clauseDoc
	var r raw
	if err := node.Decode(&r); err != nil {
		return err
	}
	*d = clauseDoc(r)
	d.line, d.column = node.Line, node.Column
	return nil
}

type atomDoc struct {
	docPos `yaml:"-"`
	Name   string        `yaml:"name"`
	Args   []argumentDoc `yaml:"args"`
}

func (d *atomDoc) UnmarshalYAML(node *yaml.Node) error {
	type raw atomDoc
	var r raw
	if err := node.Decode(&r); err != nil {
		return err
	}
	*d = atomDoc(r)
	d.line, d.column = node.Line, node.Column
	return nil
}

type literalDoc struct {
	docPos     `yaml:"-"`
	Atom       *atomDoc       `yaml:"atom"`
	Negation   *atomDoc       `yaml:"negation"`
	Constraint *constraintDoc `yaml:"constraint"`
	Boolean    *bool          `yaml:"boolean"`
}

func (d *literalDoc) UnmarshalYAML(node *yaml.Node) error {
	type raw literalDoc
	var r raw
	if err := node.Decode(&r); err != nil {
		return err
	}
	*d = literalDoc(r)
	d.line, d.column = node.Line, node.Column
	return nil
}

type constraintDoc struct {
	Op  string       `yaml:"op"`
	LHS *argumentDoc `yaml:"lhs"`
	RHS *argumentDoc `yaml:"rhs"`
}

type argumentDoc struct {
	docPos      `yaml:"-"`
	Var         *string         `yaml:"var"`
	Unnamed     bool            `yaml:"unnamed"`
	Num         *int64          `yaml:"num"`
	Str         *string         `yaml:"str"`
	Nil         bool            `yaml:"nil"`
	Counter     bool            `yaml:"counter"`
	Cast        *castDoc        `yaml:"cast"`
	Functor     *opFunctorDoc   `yaml:"functor"`
	UserFunctor *userFunctorDoc `yaml:"user_functor"`
	Record      *recordInitDoc  `yaml:"record"`
	Aggregate   *aggregateDoc   `yaml:"aggregate"`
}

func (d *argumentDoc) UnmarshalYAML(node *yaml.Node) error {
	type raw argumentDoc
	var r raw
	if err := node.Decode(&r); err != nil {
		return err
	}
	*d = argumentDoc(r)
	d.line, d.column = node.Line, node.Column
	return nil
}

type castDoc struct {
	Type  string       `yaml:"type"`
	Value *argumentDoc `yaml:"value"`
}

type opFunctorDoc struct {
	Op   string        `yaml:"op"`
	Args []argumentDoc `yaml:"args"`
}

type userFunctorDoc struct {
	Name string        `yaml:"name"`
	Args []argumentDoc `yaml:"args"`
}

type recordInitDoc struct {
	Type string        `yaml:"type"`
	Args []argumentDoc `yaml:"args"`
}

type aggregateDoc struct {
	Op     string       `yaml:"op"`
	Target *argumentDoc `yaml:"target"`
	Body   []literalDoc `yaml:"body"`
}

type directiveDoc struct {
	docPos `yaml:"-"`
	Kind   string `yaml:"kind"`
	Name   string `yaml:"name"`
}

func (d *directiveDoc) UnmarshalYAML(node *yaml.Node) error {
	type raw directiveDoc
	var r raw
	if err := node.Decode(&r); err != nil {
		return err
	}
	*d = directiveDoc(r)
	d.line, d.column = node.Line, node.Column
	return nil
}

type functorDoc struct {
	Name    string   `yaml:"name"`
	Args    []string `yaml:"args"`
	Returns string   `yaml:"returns"`
}

var functorOps = map[string]ast.FunctorOp{
	"ord": ast.OpOrd, "strlen": ast.OpStrlen, "neg": ast.OpNeg,
	"bnot": ast.OpBnot, "lnot": ast.OpLnot, "add": ast.OpAdd,
	"sub": ast.OpSub, "mul": ast.OpMul, "div": ast.OpDiv,
	"exp": ast.OpExp, "mod": ast.OpMod, "band": ast.OpBand,
	"bor": ast.OpBor, "bxor": ast.OpBxor, "land": ast.OpLand,
	"lor": ast.OpLor, "max": ast.OpMax, "min": ast.OpMin,
	"cat": ast.OpCat, "substr": ast.OpSubstr,
}

var constraintOps = map[string]ast.ConstraintOp{
	"=": ast.OpEq, "!=": ast.OpNe, "<": ast.OpLt, "<=": ast.OpLe,
	">": ast.OpGt, ">=": ast.OpGe, "match": ast.OpMatch,
	"not_match": ast.OpNotMatch, "contains": ast.OpContains,
	"not_contains": ast.OpNotContains,
}

var aggregateOps = map[string]ast.AggregatorOp{
	"count": ast.AggCount, "sum": ast.AggSum,
	"min": ast.AggMin, "max": ast.AggMax,
}

var directiveKinds = map[string]ast.IODirectiveKind{
	"load": ast.DirectiveLoad, "store": ast.DirectiveStore,
	"printsize": ast.DirectivePrintSize,
}

var functorKinds = map[string]ast.Kind{
	"number": ast.KindNumber, "symbol": ast.KindSymbol,
}

// LoadProgram reads a YAML program document and builds the AST.
func LoadProgram(path string) (*ast.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading program %s", path)
	}
	var doc programDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "parsing program %s", path)
	}
	return buildProgram(&doc, path)
}

func buildProgram(doc *programDoc, file string) (*ast.Program, error) {
	program := ast.NewProgram()

	for _, t := range doc.Types {
		decl, err := buildType(&t, file)
		if err != nil {
			return nil, err
		}
		program.Types = append(program.Types, decl)
	}

	for _, r := range doc.Relations {
		rel := ast.NewRelation(ast.QualifiedName(r.Name))
		rel.SetSrcLoc(r.loc(file))
		rel.Representation = ast.RelationRepresentation(r.Representation)
		rel.Inline = r.Inline
		rel.Input = r.Input
		rel.Output = r.Output
		rel.PrintSize = r.PrintSize
		for _, a := range r.Attributes {
			attr := ast.NewAttribute(a.Name, a.Type)
			attr.SetSrcLoc(a.loc(file))
			rel.Attributes = append(rel.Attributes, attr)
		}
		program.Relations = append(program.Relations, rel)
	}

	for _, c := range doc.Clauses {
		clause, err := buildClause(&c, file)
		if err != nil {
			return nil, err
		}
		if rel := program.Relation(clause.Head.Name); rel != nil {
			rel.AddClause(clause)
		} else {
			program.Orphans = append(program.Orphans, clause)
		}
	}

	for _, d := range doc.Directives {
		kind, ok := directiveKinds[d.Kind]
		if !ok {
			return nil, errors.Errorf("unknown directive kind %q", d.Kind)
		}
		directive := ast.NewIODirective(kind, ast.QualifiedName(d.Name))
		directive.SetSrcLoc(d.loc(file))
		program.Directives = append(program.Directives, directive)
	}

	for _, f := range doc.Functors {
		var argKinds []ast.Kind
		for _, arg := range f.Args {
			kind, ok := functorKinds[arg]
			if !ok {
				return nil, errors.Errorf("functor %s: unknown argument kind %q", f.Name, arg)
			}
			argKinds = append(argKinds, kind)
		}
		returnKind, ok := functorKinds[f.Returns]
		if !ok {
			return nil, errors.Errorf("functor %s: unknown return kind %q", f.Name, f.Returns)
		}
		program.Functors = append(program.Functors, ast.NewFunctorDeclaration(f.Name, argKinds, returnKind))
	}

	return program, nil
}

func buildType(doc *typeDoc, file string) (ast.TypeDecl, error) {
	switch {
	case doc.Primitive != nil:
		decl := ast.NewPrimitiveTypeDecl(doc.Primitive.Name, doc.Primitive.Numeric)
		decl.SetSrcLoc(doc.loc(file))
		return decl, nil
	case doc.Union != nil:
		decl := ast.NewUnionTypeDecl(doc.Union.Name, doc.Union.Members...)
		decl.SetSrcLoc(doc.loc(file))
		return decl, nil
	case doc.Record != nil:
		fields := make([]ast.RecordField, 0, len(doc.Record.Fields))
		for _, f := range doc.Record.Fields {
			fields = append(fields, ast.RecordField{Name: f.Name, TypeName: f.Type})
		}
		decl := ast.NewRecordTypeDecl(doc.Record.Name, fields...)
		decl.SetSrcLoc(doc.loc(file))
		return decl, nil
	}
	return nil, errors.New("type entry must declare primitive, union, or record")
}

func buildClause(doc *clauseDoc, file string) (*ast.Clause, error) {
	if doc.Head == nil {
		return nil, errors.New("clause is missing a head")
	}
	head, err := buildAtom(doc.Head, file)
	if err != nil {
		return nil, err
	}
	clause := ast.NewClause(head)
	clause.SetSrcLoc(doc.loc(file))
	clause.Generated = doc.Generated
	for _, lit := range doc.Body {
		built, err := buildLiteral(&lit, file)
		if err != nil {
			return nil, err
		}
		clause.AddToBody(built)
	}
	if len(doc.Plan) > 0 {
		plan := ast.NewExecutionPlan()
		for version, order := range doc.Plan {
			built := ast.NewExecutionOrder(order...)
			built.SetSrcLoc(doc.loc(file))
			plan.SetOrder(version, built)
		}
		clause.Plan = plan
	}
	return clause, nil
}

func buildAtom(doc *atomDoc, file string) (*ast.Atom, error) {
	atom := ast.NewAtom(ast.QualifiedName(doc.Name))
	atom.SetSrcLoc(doc.loc(file))
	for _, arg := range doc.Args {
		built, err := buildArgument(&arg, file)
		if err != nil {
			return nil, err
		}
		atom.AddArgument(built)
	}
	return atom, nil
}

func buildLiteral(doc *literalDoc, file string) (ast.Literal, error) {
	switch {
	case doc.Atom != nil:
		return buildAtom(doc.Atom, file)
	case doc.Negation != nil:
		atom, err := buildAtom(doc.Negation, file)
		if err != nil {
			return nil, err
		}
		neg := ast.NewNegation(atom)
		neg.SetSrcLoc(doc.loc(file))
		return neg, nil
	case doc.Constraint != nil:
		op, ok := constraintOps[doc.Constraint.Op]
		if !ok {
			return nil, errors.Errorf("unknown constraint operator %q", doc.Constraint.Op)
		}
		lhs, err := buildArgument(doc.Constraint.LHS, file)
		if err != nil {
			return nil, err
		}
		rhs, err := buildArgument(doc.Constraint.RHS, file)
		if err != nil {
			return nil, err
		}
		constraint := ast.NewBinaryConstraint(op, lhs, rhs)
		constraint.SetSrcLoc(doc.loc(file))
		return constraint, nil
	case doc.Boolean != nil:
		lit := ast.NewBooleanConstraint(*doc.Boolean)
		lit.SetSrcLoc(doc.loc(file))
		return lit, nil
	}
	return nil, errors.New("literal entry must declare atom, negation, constraint, or boolean")
}

func buildArgument(doc *argumentDoc, file string) (ast.Argument, error) {
	if doc == nil {
		return nil, errors.New("missing argument")
	}
	loc := doc.loc(file)
	switch {
	case doc.Var != nil:
		arg := ast.NewVariable(*doc.Var)
		arg.SetSrcLoc(loc)
		return arg, nil
	case doc.Unnamed:
		arg := ast.NewUnnamedVariable()
		arg.SetSrcLoc(loc)
		return arg, nil
	case doc.Num != nil:
		arg := ast.NewNumberConstant(*doc.Num)
		arg.SetSrcLoc(loc)
		return arg, nil
	case doc.Str != nil:
		arg := ast.NewStringConstant(*doc.Str)
		arg.SetSrcLoc(loc)
		return arg, nil
	case doc.Nil:
		arg := ast.NewNilConstant()
		arg.SetSrcLoc(loc)
		return arg, nil
	case doc.Counter:
		arg := ast.NewCounter()
		arg.SetSrcLoc(loc)
		return arg, nil
	case doc.Cast != nil:
		value, err := buildArgument(doc.Cast.Value, file)
		if err != nil {
			return nil, err
		}
		arg := ast.NewTypeCast(doc.Cast.Type, value)
		arg.SetSrcLoc(loc)
		return arg, nil
	case doc.Functor != nil:
		op, ok := functorOps[doc.Functor.Op]
		if !ok {
			return nil, errors.Errorf("unknown functor operator %q", doc.Functor.Op)
		}
		args, err := buildArguments(doc.Functor.Args, file)
		if err != nil {
			return nil, err
		}
		arg := ast.NewIntrinsicFunctor(op, args...)
		arg.SetSrcLoc(loc)
		return arg, nil
	case doc.UserFunctor != nil:
		args, err := buildArguments(doc.UserFunctor.Args, file)
		if err != nil {
			return nil, err
		}
		arg := ast.NewUserDefinedFunctor(doc.UserFunctor.Name, args...)
		arg.SetSrcLoc(loc)
		return arg, nil
	case doc.Record != nil:
		args, err := buildArguments(doc.Record.Args, file)
		if err != nil {
			return nil, err
		}
		arg := ast.NewRecordInit(doc.Record.Type, args...)
		arg.SetSrcLoc(loc)
		return arg, nil
	case doc.Aggregate != nil:
		op, ok := aggregateOps[doc.Aggregate.Op]
		if !ok {
			return nil, errors.Errorf("unknown aggregate operator %q", doc.Aggregate.Op)
		}
		var target ast.Argument
		if doc.Aggregate.Target != nil {
			var err error
			target, err = buildArgument(doc.Aggregate.Target, file)
			if err != nil {
				return nil, err
			}
		}
		var body []ast.Literal
		for _, lit := range doc.Aggregate.Body {
			built, err := buildLiteral(&lit, file)
			if err != nil {
				return nil, err
			}
			body = append(body, built)
		}
		arg := ast.NewAggregator(op, target, body...)
		arg.SetSrcLoc(loc)
		return arg, nil
	}
	return nil, errors.New("argument entry does not declare a variant")
}

func buildArguments(docs []argumentDoc, file string) ([]ast.Argument, error) {
	args := make([]ast.Argument, 0, len(docs))
	for _, doc := range docs {
		built, err := buildArgument(&doc, file)
		if err != nil {
			return nil, err
		}
		args = append(args, built)
	}
	return args, nil
}
