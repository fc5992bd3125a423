package fuzztests

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"tao/internal/ast"
	"tao/internal/diag"
	"tao/internal/lower"
	"tao/internal/mono"
	"tao/internal/testkit"
)

// checkTimeout bounds one input; hitting it means a pass loops.
const checkTimeout = 5 * time.Second

func FuzzCheckTree(f *testing.F) {
	addSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		if len(input) > maxFuzzInput {
			input = input[:maxFuzzInput]
		}
		mod, err := ast.Decode(bytes.NewReader(input), ast.FormatJSON)
		if err != nil {
			return
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			bag := diag.NewBag(128)
			rep := diag.BagReporter{Bag: bag}
			prog := lower.Check(context.Background(), mod, 0, rep)
			if bag.HasErrors() {
				return
			}
			if err := testkit.CheckProgram(prog); err != nil {
				t.Errorf("checked program breaks invariants: %v", err)
				return
			}
			_, err := mono.Concretize(context.Background(), prog, mono.Options{MaxInstances: 1 << 10}, rep)
			if err != nil && !errors.Is(err, mono.ErrTooManyInstances) {
				// checking passed, so mono must not find anything broken
				t.Errorf("Concretize after a clean check: %v", err)
			}
		}()

		select {
		case <-done:
		case <-time.After(checkTimeout):
			t.Fatalf("check did not finish within %v for input %q", checkTimeout, input)
		}
	})
}

// TestSeedsCheck runs the seeds once as a plain test.
func TestSeedsCheck(t *testing.T) {
	for i, m := range seedModules() {
		bag := diag.NewBag(32)
		prog := lower.Check(context.Background(), m, 0, diag.BagReporter{Bag: bag})
		if bag.HasErrors() {
			if i == len(seedModules())-1 {
				continue
			}
			t.Fatalf("seed %d: %v", i, bag.Items())
		}
		if err := testkit.CheckProgram(prog); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}
}
