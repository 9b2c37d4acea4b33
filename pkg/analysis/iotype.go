package analysis

import (
	"loam/frontend-go/pkg/ast"
)

// IOType classifies relations as inputs and outputs based on their
// declaration qualifiers and the program's I/O directives.
type IOType struct {
	inputs  map[*ast.Relation]bool
	outputs map[*ast.Relation]bool
}

func NewIOType(program *ast.Program) *IOType {
	io := &IOType{
		inputs:  make(map[*ast.Relation]bool),
		outputs: make(map[*ast.Relation]bool),
	}
	for _, rel := range program.Relations {
		if rel.Input {
			io.inputs[rel] = true
		}
		if rel.Output || rel.PrintSize {
			io.outputs[rel] = true
		}
	}
	for _, directive := range program.Directives {
		rel := program.Relation(directive.Name)
		if rel == nil {
			continue
		}
		switch directive.Kind {
		case ast.DirectiveLoad:
			io.inputs[rel] = true
		case ast.DirectiveStore, ast.DirectivePrintSize:
			io.outputs[rel] = true
		}
	}
	return io
}

func (io *IOType) IsInput(rel *ast.Relation) bool  { return io.inputs[rel] }
func (io *IOType) IsOutput(rel *ast.Relation) bool { return io.outputs[rel] }
func (io *IOType) IsIO(rel *ast.Relation) bool     { return io.inputs[rel] || io.outputs[rel] }
