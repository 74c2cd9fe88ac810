// Package repl SPDX-License-Identifier: Apache-2.0
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"lll/internal/diagnostics"
	"lll/internal/interp"
	"lll/internal/lower"
	"lll/internal/optimize"
	"lll/internal/parser"
	"lll/internal/textir"
	"lll/internal/verify"
)

const PROMPT = ">> "

// Start reads whole function/struct declarations from in, one blank-line
// terminated block at a time, and runs each through the same
// parse/lower/verify/optimize/interpret pipeline as cmd/lllc. A single
// LLL declaration rarely fits on one line, so unlike a typical
// expression REPL this one accumulates lines until it sees a blank one,
// then treats the buffer as a whole program.
func Start(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	var buf strings.Builder

	for {
		fmt.Fprint(out, PROMPT)
		if !scanner.Scan() {
			return
		}

		line := scanner.Text()
		if strings.TrimSpace(line) != "" {
			buf.WriteString(line)
			buf.WriteString("\n")
			continue
		}

		source := buf.String()
		buf.Reset()
		if strings.TrimSpace(source) == "" {
			continue
		}

		run(out, source)
	}
}

func run(out io.Writer, source string) {
	reporter := diagnostics.NewReporter("<repl>", source)

	prog, err := parser.ParseSource("<repl>", source)
	if err != nil {
		fmt.Fprint(out, reporter.Format(diagnostics.FromParseError(err)))
		return
	}

	irProg, errs := lower.Lower(prog)
	if len(errs) > 0 {
		for _, e := range errs {
			if lerr, ok := e.(*lower.Error); ok {
				fmt.Fprint(out, reporter.Format(diagnostics.FromLowerError(lerr)))
				continue
			}
			fmt.Fprintln(out, e)
		}
		return
	}

	if verrs := verify.Program(irProg); len(verrs) > 0 {
		for _, e := range verrs {
			if verr, ok := e.(*verify.Error); ok {
				fmt.Fprint(out, reporter.Format(diagnostics.FromVerifyError(verr)))
				continue
			}
			fmt.Fprintln(out, e)
		}
		return
	}

	if err := optimize.RunDefault(irProg, false); err != nil {
		fmt.Fprintf(out, "optimization failed: %s\n", err)
		return
	}

	fmt.Fprint(out, textir.Print(irProg))

	if irProg.Entry == nil {
		return
	}

	in := interp.New(irProg)
	if err := in.RunToEnd(); err != nil {
		fmt.Fprintf(out, "runtime error: %s\n", err)
		return
	}
	if in.Result != nil {
		fmt.Fprintf(out, "=> %s\n", in.Result)
	}
	for _, obs := range in.Observations {
		fmt.Fprintf(out, "observed: %v\n", obs)
	}
}
