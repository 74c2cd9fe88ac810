package optimize

import (
	"fmt"

	"github.com/sasha-s/go-deadlock"

	"lll/internal/ir"
	"lll/internal/verify"
)

// runGuard catches an optimization pass re-entering Run on the program it
// is itself being driven over, e.g. a pass that mistakenly calls
// optimize.RunDefault on its own ctx.Program mid-pass instead of just
// mutating it directly. deadlock.Mutex reports the exact call stack that
// double-locked if this ever fires, the same diagnostic value it gives
// the teacher's contract analyzer for its own reentrancy guard.
var runGuard deadlock.Mutex

// Pass is one optimization transformation over an entire program. Program
// passes (dead-function elimination, dead-signature elimination, inlining)
// inspect Program.Functions directly; function passes loop over it
// themselves, mirroring the teacher's own OptimizationPass.Apply(program)
// shape rather than splitting the driver into two pass kinds.
type Pass interface {
	Name() string
	Run(ctx *Context) bool
}

// DefaultPipeline returns the passes in their default order: dead-function
// elim, dead-signature elim, inlining, aggregate splitting, alloc-to-phi,
// constant folding + SCCP, dead-instruction elim, block simplify,
// dead-block elim.
func DefaultPipeline() []Pass {
	return []Pass{
		DeadFunctionElimination{},
		DeadSignatureElimination{},
		Inlining{},
		AggregateSplitting{},
		AllocToPhi{},
		ConstantFolding{},
		SCCP{},
		DeadInstructionElimination{},
		BlockSimplification{},
		DeadBlockElimination{},
	}
}

// Run drives p through passes until a full loop iteration makes no
// change, or Config.MaxIterations loop iterations have run. When debug
// is true the verifier runs after every pass invocation that reports a
// change and a
// verification failure aborts the run immediately (a structural-
// invariant bug in a pass, not a user error).
func Run(p *ir.Program, passes []Pass, debug bool) error {
	return RunWithConfig(p, passes, DefaultConfig(), debug)
}

// RunWithConfig is Run with an explicit Config, letting a caller tune the
// inlining threshold/depth and the fixed-point iteration cap.
func RunWithConfig(p *ir.Program, passes []Pass, cfg Config, debug bool) error {
	runGuard.Lock()
	defer runGuard.Unlock()

	ctx := NewContextWithConfig(p, cfg)
	for iter := 0; ; iter++ {
		if iter >= cfg.MaxIterations {
			return fmt.Errorf("optimizer did not reach a fixed point within %d iterations", cfg.MaxIterations)
		}
		anyChanged := false
		for _, pass := range passes {
			if pass.Run(ctx) {
				anyChanged = true
				if errs := verify.Program(p); debug && len(errs) > 0 {
					return fmt.Errorf("verification failed after pass %q: %w", pass.Name(), errs[0])
				}
			}
		}
		if !anyChanged {
			return nil
		}
	}
}

// RunDefault runs the default pipeline to a fixed point using DefaultConfig.
func RunDefault(p *ir.Program, debug bool) error {
	return Run(p, DefaultPipeline(), debug)
}
