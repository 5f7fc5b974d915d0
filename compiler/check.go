package compiler

import (
	"errors"
	"fmt"

	"github.com/gogpu/naga/ir"
)

// ErrReturnType is returned when a function returns nothing or a value
// whose shape differs from its declared result type.
var ErrReturnType = errors.New("compiler: return type mismatch")

// checkReturns type-checks every return statement of the module's
// functions against their declared results. IR validation does not cover
// this; a mismatch would otherwise surface as a pipeline creation failure.
// Expressions whose type cannot be resolved are not checked.
func checkReturns(module *ir.Module) error {
	for i := range module.Functions {
		if err := checkFunctionReturns(module, &module.Functions[i]); err != nil {
			return err
		}
	}
	for i := range module.EntryPoints {
		if err := checkFunctionReturns(module, &module.EntryPoints[i].Function); err != nil {
			return err
		}
	}
	return nil
}

func checkFunctionReturns(module *ir.Module, fn *ir.Function) error {
	if fn.Result == nil {
		return nil
	}
	if int(fn.Result.Type) >= len(module.Types) {
		return fmt.Errorf("%w: fn %s: unknown result type", ErrReturnType, fn.Name)
	}
	want := module.Types[fn.Result.Type].Inner

	var walk func(ir.Block) error
	walk = func(block ir.Block) error {
		for i, st := range block {
			switch s := st.Kind.(type) {
			case ir.StmtReturn:
				if s.Value == nil && i > 0 && isLoop(block[i-1]) {
					// Lowering terminates a block that ends in a loop with a
					// bare return; it is unreachable.
					continue
				}
				if s.Value == nil {
					return fmt.Errorf("%w: fn %s: missing return value", ErrReturnType, fn.Name)
				}
				got, ok := expressionType(module, fn, *s.Value)
				if ok && !sameShape(want, got) {
					return fmt.Errorf("%w: fn %s returns %s, declared %s", ErrReturnType, fn.Name, shapeName(got), shapeName(want))
				}
			case ir.StmtBlock:
				if err := walk(s.Block); err != nil {
					return err
				}
			case ir.StmtIf:
				if err := walk(s.Accept); err != nil {
					return err
				}
				if err := walk(s.Reject); err != nil {
					return err
				}
			case ir.StmtLoop:
				if err := walk(s.Body); err != nil {
					return err
				}
				if err := walk(s.Continuing); err != nil {
					return err
				}
			case ir.StmtSwitch:
				for _, c := range s.Cases {
					if err := walk(c.Body); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}
	return walk(fn.Body)
}

func isLoop(st ir.Statement) bool {
	_, ok := st.Kind.(ir.StmtLoop)
	return ok
}

// expressionType returns the inner type of expression h, or false when it
// cannot be resolved.
func expressionType(module *ir.Module, fn *ir.Function, h ir.ExpressionHandle) (ir.TypeInner, bool) {
	res, err := ir.ResolveExpressionType(module, fn, h)
	if err != nil {
		if int(h) >= len(fn.ExpressionTypes) {
			return nil, false
		}
		res = fn.ExpressionTypes[h]
	}
	if res.Handle != nil {
		if int(*res.Handle) >= len(module.Types) {
			return nil, false
		}
		return module.Types[*res.Handle].Inner, true
	}
	return res.Value, res.Value != nil
}

// sameShape compares scalars, vectors and matrices by component count and
// kind. Abstract literals match any concrete numeric kind. Other types are
// not checked.
func sameShape(want, got ir.TypeInner) bool {
	switch w := want.(type) {
	case ir.ScalarType:
		g, ok := got.(ir.ScalarType)
		return ok && sameKind(w.Kind, g.Kind)
	case ir.VectorType:
		g, ok := got.(ir.VectorType)
		return ok && w.Size == g.Size && sameKind(w.Scalar.Kind, g.Scalar.Kind)
	case ir.MatrixType:
		g, ok := got.(ir.MatrixType)
		return ok && w.Columns == g.Columns && w.Rows == g.Rows && sameKind(w.Scalar.Kind, g.Scalar.Kind)
	default:
		return true
	}
}

func sameKind(want, got ir.ScalarKind) bool {
	switch got {
	case ir.ScalarAbstractFloat:
		return want == ir.ScalarFloat || want == ir.ScalarAbstractFloat
	case ir.ScalarAbstractInt:
		return want != ir.ScalarBool
	}
	return want == got
}

func shapeName(t ir.TypeInner) string {
	switch v := t.(type) {
	case ir.ScalarType:
		return kindName(v.Kind)
	case ir.VectorType:
		return fmt.Sprintf("vec%d<%s>", v.Size, kindName(v.Scalar.Kind))
	case ir.MatrixType:
		return fmt.Sprintf("mat%dx%d<%s>", v.Columns, v.Rows, kindName(v.Scalar.Kind))
	default:
		return fmt.Sprintf("%T", t)
	}
}

func kindName(k ir.ScalarKind) string {
	switch k {
	case ir.ScalarSint:
		return "i32"
	case ir.ScalarUint:
		return "u32"
	case ir.ScalarFloat:
		return "f32"
	case ir.ScalarBool:
		return "bool"
	case ir.ScalarAbstractInt:
		return "abstract-int"
	default:
		return "abstract-float"
	}
}
