package yarn

import "fmt"

// file builtins.go registers the standard library: the operator-token
// functions the compiler emits as CallFunc operands, plus the visited/
// visitCount functions used by node-visit conditions. Each operator gets
// its own small Go function (add, sub, mult, ...) rather than a generic
// reflective dispatcher.

// RegisterStandardLibrary installs the arithmetic, comparison, logical, and
// visit-tracking functions into l. vm supplies the visited-node bookkeeping
// that visited/visitCount read.
func RegisterStandardLibrary(l *Library, vm *VM) {
	l.Register("Add", 2, true, binaryOp(Add))
	l.Register("Minus", 2, true, binaryOp(Sub))
	l.Register("Multiply", 2, true, binaryOp(Mul))
	l.Register("Divide", 2, true, binaryOp(Div))
	l.Register("Modulo", 2, true, binaryOp(Mod))
	l.Register("UnaryMinus", 1, true, unaryOp(Neg))
	l.Register("Not", 1, true, unaryOp(Not))

	l.Register("EqualTo", 2, true, binaryOp(func(a, b Value) (Value, error) {
		return NewBool(Equal(a, b)), nil
	}))
	l.Register("NotEqualTo", 2, true, binaryOp(func(a, b Value) (Value, error) {
		return NewBool(!Equal(a, b)), nil
	}))
	l.Register("GreaterThan", 2, true, cmpFunc(func(c int) bool { return c > 0 }))
	l.Register("GreaterThanOrEqualTo", 2, true, cmpFunc(func(c int) bool { return c >= 0 }))
	l.Register("LessThan", 2, true, cmpFunc(func(c int) bool { return c < 0 }))
	l.Register("LessThanOrEqualTo", 2, true, cmpFunc(func(c int) bool { return c <= 0 }))

	l.Register("And", 2, true, binaryOp(func(a, b Value) (Value, error) {
		return NewBool(a.AsBool() && b.AsBool()), nil
	}))
	l.Register("Or", 2, true, binaryOp(func(a, b Value) (Value, error) {
		return NewBool(a.AsBool() || b.AsBool()), nil
	}))
	l.Register("Xor", 2, true, binaryOp(func(a, b Value) (Value, error) {
		return NewBool(a.AsBool() != b.AsBool()), nil
	}))

	// visited/visitCount are called via the general "name(args)" call
	// syntax (FuncCallExpr), which always uses the variadic N-on-top
	// calling convention. Both are registered with Arity -1 even though
	// visited takes exactly one argument.
	l.Register("visited", -1, true, func(args []Value) (Value, error) {
		if len(args) != 1 {
			return Value{}, fmt.Errorf("visited() takes exactly 1 argument, got %d", len(args))
		}
		name := args[0].AsString()
		return NewBool(vm.visitCounts[name] > 0), nil
	})
	l.Register("visitCount", -1, true, func(args []Value) (Value, error) {
		if len(args) == 0 {
			return NewNumber(float32(vm.visitedNodeCount)), nil
		}
		name := args[0].AsString()
		if !vm.program.NodeExists(name) {
			// non-fatal diagnostic
			vm.diagnosef("visitCount: unknown node %q", name)
			return NewNumber(0), nil
		}
		return NewNumber(float32(vm.visitCounts[name])), nil
	})
}
