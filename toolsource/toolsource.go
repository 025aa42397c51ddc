// Package toolsource defines the Tool capability surface (§6.2): a named,
// JSON-Schema-described function contract plus its executor. Grounded on
// the Goa-generated ToolSpec in goadesign-goa-ai's runtime/agent/tools, cut
// down to the fields a worker actually needs, with schema validation wired
// through github.com/santhosh-tekuri/jsonschema/v6 rather than Goa codegen.
package toolsource

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Spec describes one invocable tool: its name, natural-language description
// for the model, and its JSON-Schema parameter contract.
type Spec struct {
	Name        string
	Description string
	Parameters  json.RawMessage // JSON Schema, draft 2020-12
}

// Executor runs one tool with already-validated arguments; Source.Invoke
// resolves the tool by name.
type Executor interface {
	Invoke(ctx context.Context, args json.RawMessage) (json.RawMessage, error)
}

// Source resolves a tool name to its Spec and Executor (§6.2 ToolSource).
type Source interface {
	Schema(name string) (Spec, bool)
	Executor(name string) (Executor, bool)
	List() []Spec
	Invoke(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error)
}

// Static is an in-memory Source populated at startup by registration and
// shared by the workers that take a tool source.
type Static struct {
	specs     map[string]Spec
	executors map[string]Executor
	compiled  map[string]*jsonschema.Schema
}

// NewStatic returns an empty Static tool source.
func NewStatic() *Static {
	return &Static{
		specs:     map[string]Spec{},
		executors: map[string]Executor{},
		compiled:  map[string]*jsonschema.Schema{},
	}
}

// Register adds a tool, compiling its parameter schema eagerly so a
// malformed schema fails at startup rather than at call time.
func (s *Static) Register(spec Spec, exec Executor) error {
	compiler := jsonschema.NewCompiler()
	if len(spec.Parameters) > 0 {
		var doc any
		if err := json.Unmarshal(spec.Parameters, &doc); err != nil {
			return fmt.Errorf("toolsource: %s: invalid parameter schema: %w", spec.Name, err)
		}
		if err := compiler.AddResource(spec.Name+"#params", doc); err != nil {
			return fmt.Errorf("toolsource: %s: add schema resource: %w", spec.Name, err)
		}
		sch, err := compiler.Compile(spec.Name + "#params")
		if err != nil {
			return fmt.Errorf("toolsource: %s: compile schema: %w", spec.Name, err)
		}
		s.compiled[spec.Name] = sch
	}
	s.specs[spec.Name] = spec
	s.executors[spec.Name] = exec
	return nil
}

// Schema implements Source.
func (s *Static) Schema(name string) (Spec, bool) {
	spec, ok := s.specs[name]
	return spec, ok
}

// Executor implements Source.
func (s *Static) Executor(name string) (Executor, bool) {
	exec, ok := s.executors[name]
	return exec, ok
}

// List implements Source.
func (s *Static) List() []Spec {
	out := make([]Spec, 0, len(s.specs))
	for _, spec := range s.specs {
		out = append(out, spec)
	}
	return out
}

// Validate checks args against name's compiled parameter schema, if any.
func (s *Static) Validate(name string, args json.RawMessage) error {
	sch, ok := s.compiled[name]
	if !ok {
		return nil
	}
	var doc any
	if err := json.Unmarshal(args, &doc); err != nil {
		return fmt.Errorf("toolsource: %s: arguments not valid JSON: %w", name, err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("toolsource: %s: %w", name, err)
	}
	return nil
}

// Invoke validates args against name's schema, then calls its Executor.
func (s *Static) Invoke(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	if err := s.Validate(name, args); err != nil {
		return nil, err
	}
	exec, ok := s.Executor(name)
	if !ok {
		return nil, fmt.Errorf("toolsource: no executor registered for %q", name)
	}
	return exec.Invoke(ctx, args)
}
