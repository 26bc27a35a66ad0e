package ssa

import "io"

// Generator is the contract every backend implements. The module drives it
// over global variables then functions in insertion order; a backend
// dispatches on Value.Kind and recursively walks children as it needs.
type Generator interface {
	GenerateOn(v *Value) error

	// Dump writes whatever the generator has produced so far.
	Dump(w io.Writer) error
}
