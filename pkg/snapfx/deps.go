package snapfx

import (
	"fmt"
	"reflect"

	"github.com/google/go-cmp/cmp"
)

// Deps is an effect's dependency list. Its shape selects the re-run policy:
//
//   - nil (Always): run after every commit
//   - empty, non-nil (Once): run after the first commit only
//   - non-empty (On): run when any entry differs from the previous run
type Deps []any

// Always returns the "no tracking" marker.
func Always() Deps { return nil }

// Once returns the "run once" marker.
func Once() Deps { return Deps{} }

// On returns a positional dependency list. On() with no values is Once().
func On(values ...any) Deps {
	if len(values) == 0 {
		return Deps{}
	}
	return Deps(values)
}

func (d Deps) clone() Deps {
	if d == nil {
		return nil
	}
	out := make(Deps, len(d))
	copy(out, d)
	return out
}

// Comparer reports whether two dependency entries (or two state values) are
// equal. It must be consistent: the same pair always compares the same way.
type Comparer func(a, b any) bool

// DefaultComparer is the shallow, per-entry policy used unless WithComparer
// says otherwise. Values of different dynamic types are unequal. Values
// whose dynamic type is comparable use ==, everything else (slices, maps,
// structs holding them) uses reflect.DeepEqual.
//
// NaN never equals itself, so an effect depending on NaN re-runs on every
// commit.
func DefaultComparer(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Comparable() && vb.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// IdentityComparer compares reference kinds (maps, slices, funcs, chans,
// pointers) by identity and everything else with ==. Non-comparable values
// that are not reference kinds are always treated as changed.
func IdentityComparer(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Map, reflect.Func, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	if va.Comparable() && vb.Comparable() {
		return a == b
	}
	return false
}

// StructuralComparer compares with reflect.DeepEqual.
func StructuralComparer(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// CmpComparer compares with go-cmp. Options such as cmpopts.EquateEmpty or
// cmp.AllowUnexported are passed through. Without options cmp.Equal panics on
// structs with unexported fields.
func CmpComparer(opts ...cmp.Option) Comparer {
	return func(a, b any) bool {
		return cmp.Equal(a, b, opts...)
	}
}

// ComparerByName resolves a comparer policy from its configuration name.
func ComparerByName(name string) (Comparer, error) {
	switch name {
	case "", "default":
		return DefaultComparer, nil
	case "identity":
		return IdentityComparer, nil
	case "structural":
		return StructuralComparer, nil
	case "cmp":
		return CmpComparer(), nil
	default:
		return nil, fmt.Errorf("snapfx: unknown comparer %q", name)
	}
}
