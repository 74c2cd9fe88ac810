// Package optimize implements the optimization driver (C8) and passes
// (C9): dead-function/dead-signature elimination, inlining, alloc-to-phi,
// sparse conditional constant propagation, constant folding,
// dead-instruction elimination, block simplification, dead-block
// elimination, and aggregate splitting.
package optimize

import (
	"lll/internal/dom"
	"lll/internal/ir"
)

// Config tunes the optimizer driver and the inlining pass. DefaultConfig
// supplies the values used when a caller doesn't need anything custom.
type Config struct {
	// InlineThreshold caps the callee instruction count inlining will
	// consider for a multi-call-site callee, keeping the pass a
	// size-neutral cleanup rather than a general blow-up. A single-call-
	// site callee is always eligible regardless of size, since inlining
	// it can only move code, never duplicate it.
	InlineThreshold int
	// MaxInlineDepth bounds a function's inline depth: every inline sets
	// the caller's depth to one more than the larger of its own and the
	// callee's, and a caller at this depth receives no further inlined
	// callees, preventing unbounded growth from mutual or indirect
	// recursion that eligibleForInlining's direct-self-call check can't see.
	MaxInlineDepth int
	// MaxIterations caps the driver's fixed-point loop so a misbehaving
	// pass combination can't hang it.
	MaxIterations int
}

// DefaultConfig is the configuration RunDefault and DefaultPipeline use.
func DefaultConfig() Config {
	return Config{InlineThreshold: 40, MaxInlineDepth: 4, MaxIterations: 64}
}

// Context is threaded through every pass invocation: it memoizes each
// function's dominator tree until a pass reports a change, so mem2reg and
// SCCP don't each recompute it within the same fixpoint iteration.
type Context struct {
	Program *ir.Program
	Config  Config

	doms        map[*ir.Function]*dom.Tree
	inlineDepth map[*ir.Function]int
}

// NewContext creates a Context over p using DefaultConfig.
func NewContext(p *ir.Program) *Context {
	return NewContextWithConfig(p, DefaultConfig())
}

// NewContextWithConfig creates a Context over p with an explicit Config.
func NewContextWithConfig(p *ir.Program, cfg Config) *Context {
	return &Context{
		Program:     p,
		Config:      cfg,
		doms:        make(map[*ir.Function]*dom.Tree),
		inlineDepth: make(map[*ir.Function]int),
	}
}

// DomInfo returns fn's dominator tree, building it on first use and
// reusing it until invalidated.
func (c *Context) DomInfo(fn *ir.Function) *dom.Tree {
	if t, ok := c.doms[fn]; ok {
		return t
	}
	t := dom.Build(fn)
	c.doms[fn] = t
	return t
}

// Invalidate drops fn's memoized dominator tree; passes call this after
// any change to fn's control-flow graph.
func (c *Context) Invalidate(fn *ir.Function) {
	delete(c.doms, fn)
}

// InvalidateAll drops every memoized dominator tree, used after a
// program-level pass adds or removes functions.
func (c *Context) InvalidateAll() {
	c.doms = make(map[*ir.Function]*dom.Tree)
}
