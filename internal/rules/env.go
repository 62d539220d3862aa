package rules

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"
)

// Registry manages the CEL environment used to compile and evaluate
// forbidden-combination predicates over character snapshots.
type Registry struct {
	env *cel.Env
}

// NewRegistry initializes the CEL environment with the variables every
// predicate may reference: the character's class, level, experience, stat
// values, and equipped items (slot → item).
func NewRegistry() (*Registry, error) {
	env, err := cel.NewEnv(
		ext.Strings(),
		ext.Lists(),

		cel.Variable("character", cel.StringType),
		cel.Variable("class", cel.StringType),
		cel.Variable("level", cel.IntType),
		cel.Variable("experience", cel.IntType),
		cel.Variable("stats", cel.MapType(cel.StringType, cel.IntType)),
		cel.Variable("equipped", cel.MapType(cel.StringType, cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Registry{env: env}, nil
}

// Predicate is a compiled boolean expression ready for repeated evaluation.
type Predicate struct {
	prg cel.Program
}

// Compile compiles an expression and checks that it evaluates to a boolean.
// Compilation happens once at axiom load time; evaluation never re-parses.
func (r *Registry) Compile(expr string) (Predicate, error) {
	ast, iss := r.env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return Predicate{}, fmt.Errorf("CEL compile error: %w", iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return Predicate{}, fmt.Errorf("predicate must evaluate to bool, got %s", ast.OutputType())
	}
	prg, err := r.env.Program(ast)
	if err != nil {
		return Predicate{}, fmt.Errorf("CEL program error: %w", err)
	}
	return Predicate{prg: prg}, nil
}

// Eval runs the predicate against a snapshot context.
func (p Predicate) Eval(ctx map[string]any) (bool, error) {
	out, _, err := p.prg.Eval(ctx)
	if err != nil {
		return false, fmt.Errorf("CEL eval error: %w", err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("predicate returned %T, want bool", out.Value())
	}
	return b, nil
}
