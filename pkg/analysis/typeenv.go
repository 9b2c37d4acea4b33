package analysis

import (
	"fmt"

	"go.uber.org/multierr"

	"loam/frontend-go/pkg/ast"
)

// EnvType is a fully resolved user type in the environment.
type EnvType interface {
	Name() string
	envType()
}

// BaseEnvType is a declared leaf type carved out of a primitive domain.
type BaseEnvType struct {
	TypeName string
	Kind     ast.Kind
}

func (t *BaseEnvType) Name() string { return t.TypeName }
func (*BaseEnvType) envType()       {}

// UnionEnvType is a declared union. Bases holds the transitive closure of
// leaf member names.
type UnionEnvType struct {
	TypeName string
	Kind     ast.Kind
	Members  []string
	Bases    []string
}

func (t *UnionEnvType) Name() string { return t.TypeName }
func (*UnionEnvType) envType()       {}

// RecordEnvType is a declared record type.
type RecordEnvType struct {
	TypeName string
	Fields   []ast.RecordField
}

func (t *RecordEnvType) Name() string { return t.TypeName }
func (*RecordEnvType) envType()       {}

// TypeEnvironment resolves the program's type declarations. A malformed
// environment (mixed-kind union, undefined member, record with a missing
// field type) is recorded rather than reported here: the type lattice
// consults Err and degrades to "no type checking" while the semantic checker
// reports the individual declaration defects.
type TypeEnvironment struct {
	program *ast.Program
	types   map[string]EnvType
	err     error
}

func NewTypeEnvironment(program *ast.Program) *TypeEnvironment {
	env := &TypeEnvironment{
		program: program,
		types:   make(map[string]EnvType),
	}
	env.build()
	return env
}

// IsType reports whether the name resolves to a declared type or primitive.
func (env *TypeEnvironment) IsType(name string) bool {
	if isPrimitiveName(name) {
		return true
	}
	_, ok := env.types[name]
	return ok
}

// Get returns the resolved environment type for a declared name, or nil.
func (env *TypeEnvironment) Get(name string) EnvType {
	return env.types[name]
}

// Types returns every resolved environment type keyed by name.
func (env *TypeEnvironment) Types() map[string]EnvType {
	return env.types
}

// Err aggregates every defect detected during resolution; nil means the
// environment is well formed.
func (env *TypeEnvironment) Err() error {
	return env.err
}

func isPrimitiveName(name string) bool {
	return name == "number" || name == "symbol"
}

func primitiveKind(name string) ast.Kind {
	if name == "number" {
		return ast.KindNumber
	}
	return ast.KindSymbol
}

func (env *TypeEnvironment) build() {
	for _, decl := range env.program.Types {
		env.resolve(decl.TypeName(), make(map[string]bool))
	}
}

// resolve computes the environment type of a declared name, memoizing the
// result. The visiting set guards against cyclic declarations.
func (env *TypeEnvironment) resolve(name string, visiting map[string]bool) EnvType {
	if t, ok := env.types[name]; ok {
		return t
	}
	if visiting[name] {
		env.fail(fmt.Errorf("type %s is cyclically defined", name))
		return nil
	}
	visiting[name] = true
	defer delete(visiting, name)

	decl := env.program.TypeDecl(name)
	if decl == nil {
		return nil
	}

	switch d := decl.(type) {
	case *ast.PrimitiveTypeDecl:
		kind := ast.KindSymbol
		if d.Numeric {
			kind = ast.KindNumber
		}
		t := &BaseEnvType{TypeName: name, Kind: kind}
		env.types[name] = t
		return t

	case *ast.UnionTypeDecl:
		var kind ast.Kind
		var bases []string
		ok := true
		for _, member := range d.Members {
			memberKind, memberBases, resolved := env.resolveUnionMember(member, visiting)
			if !resolved {
				ok = false
				continue
			}
			if kind == "" {
				kind = memberKind
			} else if kind != memberKind {
				env.fail(fmt.Errorf("union type %s mixes %s and %s members", name, kind, memberKind))
				ok = false
			}
			bases = append(bases, memberBases...)
		}
		if !ok || kind == "" {
			env.fail(fmt.Errorf("union type %s could not be resolved", name))
			return nil
		}
		t := &UnionEnvType{TypeName: name, Kind: kind, Members: d.Members, Bases: dedupe(bases)}
		env.types[name] = t
		return t

	case *ast.RecordTypeDecl:
		// Register the record before resolving its fields so recursive
		// records (lists) resolve.
		t := &RecordEnvType{TypeName: name, Fields: d.Fields}
		env.types[name] = t
		for _, field := range d.Fields {
			if isPrimitiveName(field.TypeName) {
				continue
			}
			if env.resolve(field.TypeName, visiting) == nil {
				env.fail(fmt.Errorf("record type %s references undefined type %s", name, field.TypeName))
			}
		}
		return t
	}
	return nil
}

// resolveUnionMember yields the kind and leaf base names a union member
// contributes. Primitives contribute themselves as a base.
func (env *TypeEnvironment) resolveUnionMember(member string, visiting map[string]bool) (ast.Kind, []string, bool) {
	if isPrimitiveName(member) {
		return primitiveKind(member), []string{member}, true
	}
	switch t := env.resolve(member, visiting).(type) {
	case *BaseEnvType:
		return t.Kind, []string{t.TypeName}, true
	case *UnionEnvType:
		return t.Kind, t.Bases, true
	case *RecordEnvType:
		env.fail(fmt.Errorf("union member %s is a record type", member))
		return "", nil, false
	}
	env.fail(fmt.Errorf("union member %s is undefined", member))
	return "", nil, false
}

func (env *TypeEnvironment) fail(err error) {
	env.err = multierr.Append(env.err, err)
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
