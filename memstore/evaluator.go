package memstore

import (
	"fmt"
	"reflect"

	"github.com/google/cel-go/cel"
)

// orderEvaluator compiles a CEL expression comparing two records (exposed to
// the program as mapX/mapY) and returns -1/0/1.
type orderEvaluator struct {
	expression string
	program    cel.Program
}

func newOrderEvaluator(expression string) (*orderEvaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("mapX", cel.MapType(cel.StringType, cel.AnyType)),
		cel.Variable("mapY", cel.MapType(cel.StringType, cel.AnyType)),
	)
	if err != nil {
		return nil, fmt.Errorf("memstore: creating CEL environment: %w", err)
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("memstore: compiling order expression %q: %w", expression, issues.Err())
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("memstore: building CEL program: %w", err)
	}
	return &orderEvaluator{expression: expression, program: program}, nil
}

// compare evaluates the compiled expression against x and y.
func (e *orderEvaluator) compare(x, y map[string]any) (int, error) {
	out, _, err := e.program.Eval(map[string]any{"mapX": x, "mapY": y})
	if err != nil {
		return 0, fmt.Errorf("memstore: evaluating order expression: %w", err)
	}
	native, err := out.ConvertToNative(reflect.TypeOf(int(0)))
	if err != nil {
		return 0, fmt.Errorf("memstore: order expression did not evaluate to int: %w", err)
	}
	v, ok := native.(int)
	if !ok {
		return 0, fmt.Errorf("memstore: order expression result %v is not an int", native)
	}
	return v, nil
}

// orderExpression builds a chained CEL comparator expression for one or more
// field names, most-significant first, each formatted as a ternary fallthrough
// to the next field on a tie.
func orderExpression(fields []string) string {
	expr := "0"
	for i := len(fields) - 1; i >= 0; i-- {
		f := fields[i]
		expr = fmt.Sprintf(
			"(mapX['%s'] < mapY['%s'] ? -1 : (mapX['%s'] > mapY['%s'] ? 1 : (%s)))",
			f, f, f, f, expr,
		)
	}
	return expr
}
