package node

import (
	"errors"
	"fmt"
	"path"
	"reflect"
	"runtime"
	"strings"
)

var (
	ErrNotAConstructor         = errors.New("provided function is not a recognizable constructor")
	ErrConstructorNotAFunction = errors.New("provided constructor is not a function")
)

var errorType = reflect.TypeFor[error]()

// Constructor describes a function that builds a value from its parameters.
type Constructor struct {
	Fn     reflect.Value
	Out    reflect.Type
	Params []reflect.Type
	Name   string // package-qualified function name, e.g. "testmodel.NewPoint"
	HasErr bool
}

// ParseConstructor inspects fn and returns a Constructor if it is usable as one.
//
// Supports signatures:
//   - func(a A, b B, ...) T
//   - func(a A, b B, ...) (T, error)
//
// Variadic functions are rejected.
func ParseConstructor(fn any) (*Constructor, error) {
	if fn == nil {
		return nil, ErrConstructorNotAFunction
	}

	fnVal := reflect.ValueOf(fn)
	fnType := fnVal.Type()
	if fnType.Kind() != reflect.Func {
		return nil, ErrConstructorNotAFunction
	}

	if fnType.IsVariadic() || fnType.NumOut() == 0 || fnType.NumOut() > 2 {
		return nil, ErrNotAConstructor
	}

	out := fnType.Out(0)
	if out == errorType {
		return nil, ErrNotAConstructor
	}

	ctor := &Constructor{
		Fn:     fnVal,
		Out:    out,
		Params: make([]reflect.Type, fnType.NumIn()),
		Name:   funcName(fnVal),
	}

	for i := range ctor.Params {
		ctor.Params[i] = fnType.In(i)
	}

	if fnType.NumOut() == 2 {
		if fnType.Out(1) != errorType {
			return nil, ErrNotAConstructor
		}
		ctor.HasErr = true
	}

	return ctor, nil
}

// Call invokes the constructor with args.
func (c *Constructor) Call(args []reflect.Value) (reflect.Value, error) {
	if len(args) != len(c.Params) {
		return reflect.Value{}, fmt.Errorf("constructor %s expects %d arguments, got %d", c.Name, len(c.Params), len(args))
	}

	out := c.Fn.Call(args)
	if c.HasErr && !out[1].IsNil() {
		return reflect.Value{}, fmt.Errorf("constructor %s: %w", c.Name, out[1].Interface().(error))
	}

	return out[0], nil
}

// Result returns the type built by the constructor with pointers removed.
func (c *Constructor) Result() reflect.Type {
	_, base := ptrDepthAndBase(c.Out)
	return base
}

func funcName(fn reflect.Value) string {
	fnPC := runtime.FuncForPC(fn.Pointer())
	if fnPC == nil {
		return "func"
	}

	// "github.com/x/y/pkg.Name" -> "pkg.Name"
	_, name := path.Split(fnPC.Name())
	if name == "" {
		return strings.TrimSuffix(fnPC.Name(), ".")
	}

	return name
}
