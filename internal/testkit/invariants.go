// Package testkit checks structural invariants of checked programs. Tests and
// fuzz harnesses call it after a check that reported no errors.
package testkit

import (
	"errors"
	"fmt"
	"slices"
	"maps"

	"tao/internal/hir"
	"tao/internal/types"
)

// CheckProgram verifies a program that lowered and solved without errors:
//  1. no error expression or error pattern survived
//  2. every expression and binding has a resolved type
//  3. every span lies inside the module root
//  4. every definition with a body has a body type
func CheckProgram(prog *hir.Program) error {
	if prog == nil {
		return errors.New("nil program")
	}
	var errs []error
	root := prog.Root
	check := func(where string, e *hir.Expr) {
		hir.WalkAll(e, func(x *hir.Expr) {
			switch {
			case x.Kind == hir.ExprError:
				errs = append(errs, fmt.Errorf("%s: error expression at %v", where, x.Span))
			case x.Ty == types.NoTyID:
				errs = append(errs, fmt.Errorf("%s: %s at %v has no type", where, x.Kind, x.Span))
			}
			if !root.Contains(x.Span) {
				errs = append(errs, fmt.Errorf("%s: span %v outside module %v", where, x.Span, root))
			}
		}, func(b *hir.Binding) {
			if b.Pat.Kind == hir.PatError {
				errs = append(errs, fmt.Errorf("%s: error pattern at %v", where, b.Span))
			}
			if b.Ty == types.NoTyID {
				errs = append(errs, fmt.Errorf("%s: binding at %v has no type", where, b.Span))
			}
			if !root.Contains(b.Span) {
				errs = append(errs, fmt.Errorf("%s: binding span %v outside module %v", where, b.Span, root))
			}
		})
	}

	for _, id := range slices.Sorted(maps.Keys(prog.Defs)) {
		d := prog.Table.Def(id)
		if d == nil {
			errs = append(errs, fmt.Errorf("body for unknown definition %d", id))
			continue
		}
		if d.BodyTy == types.NoTyID {
			errs = append(errs, fmt.Errorf("def %s has no body type", d.Name))
		}
		check("def "+d.Name, prog.Defs[id])
	}
	for _, id := range slices.Sorted(maps.Keys(prog.Members)) {
		fields := prog.Members[id]
		for _, name := range slices.Sorted(maps.Keys(fields)) {
			check(fmt.Sprintf("member %d field %s", id, name), fields[name])
		}
	}
	return errors.Join(errs...)
}
