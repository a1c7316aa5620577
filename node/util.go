package node

import "reflect"

// ptrDepthAndBase returns the number of pointer indirections of t and the
// type they point to.
func ptrDepthAndBase(t reflect.Type) (int, reflect.Type) {
	depth := 0
	for t.Kind() == reflect.Pointer {
		depth++
		t = t.Elem()
	}

	return depth, t
}
