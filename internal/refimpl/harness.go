// Package refimpl hosts property tests for the value-representation
// invariants in §8: TaggedValue box/unbox round-tripping and
// struct-equality reflexivity/symmetry/transitivity. Test cases are
// generated in Go and carried across a C-shaped callback slot via
// go-pointer, the same boundary shape the generated code uses when it
// calls back into host-provided runtime helpers (§6.5).
package refimpl

import (
	"unsafe"

	pointer "github.com/mattn/go-pointer"
)

// Property is a single generated check: it returns true when the
// invariant holds for whatever state it closed over.
type Property func() bool

// callbackSlot mimics the shape of a C function pointer plus opaque
// user-data argument, the same calling convention tea_* runtime helpers
// use to invoke back into host code.
type callbackSlot func(userData unsafe.Pointer) bool

// Run saves p behind an opaque pointer, invokes it through a slot shaped
// like a C callback, and releases the handle afterward.
func Run(p Property) bool {
	handle := pointer.Save(p)
	defer pointer.Unref(handle)
	return invoke(handle, dispatch)
}

func dispatch(userData unsafe.Pointer) bool {
	prop := pointer.Restore(userData).(Property)
	return prop()
}

func invoke(userData unsafe.Pointer, slot callbackSlot) bool {
	return slot(userData)
}
