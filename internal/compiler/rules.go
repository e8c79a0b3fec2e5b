package compiler

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"formspec-backend/internal/schema"
)

// compiledRule pairs a schema-level expression rule with its lazily compiled
// program. Programs compile once per CompiledSchema and are reused across
// submissions.
type compiledRule struct {
	def  schema.ExpressionRule
	prog *vm.Program
}

// CompileExpression compiles a rule expression. Expressions must evaluate to
// a boolean; true means the rule is violated.
func CompileExpression(expression string) (*vm.Program, error) {
	// "values" must refer to the submission map in the eval env, not the
	// expr-lang builtin values() function that would otherwise shadow it.
	prog, err := expr.Compile(expression, expr.AsBool(), expr.DisableBuiltin("values"))
	if err != nil {
		return nil, fmt.Errorf("compile expression: %w", err)
	}
	return prog, nil
}

// evaluateRules runs the schema-level expression rules against the full value
// map. It only runs once per-field validation has passed.
func (cs *CompiledSchema) evaluateRules(values map[string]any) []FieldError {
	if len(cs.rules) == 0 {
		return nil
	}

	env := map[string]any{"values": values}

	var errs []FieldError
	for _, r := range cs.rules {
		if detail := r.evaluate(env); detail != nil {
			errs = append(errs, *detail)
		}
	}
	return errs
}

func (r *compiledRule) evaluate(env map[string]any) *FieldError {
	if r.prog == nil {
		prog, err := CompileExpression(r.def.Expression)
		if err != nil {
			return &FieldError{Rule: "expression", Message: fmt.Sprintf("compile error: %v", err)}
		}
		r.prog = prog
	}

	result, err := expr.Run(r.prog, env)
	if err != nil {
		return &FieldError{Rule: "expression", Message: fmt.Sprintf("rule evaluation error: %v", err)}
	}

	violated, ok := result.(bool)
	if !ok || !violated {
		return nil
	}

	msg := r.def.Message
	if msg == "" {
		msg = "Submission violates a schema rule"
	}
	return &FieldError{Rule: "expression", Message: msg}
}
