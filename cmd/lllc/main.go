// SPDX-License-Identifier: Apache-2.0

// Command lllc drives the whole pipeline over one source file: parse,
// lower, verify, optionally optimize to a fixed point, optionally print
// the resulting IR, and optionally interpret it.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"lll/internal/diagnostics"
	"lll/internal/interp"
	"lll/internal/lower"
	"lll/internal/optimize"
	"lll/internal/parser"
	"lll/internal/textir"
	"lll/internal/verify"
)

func main() {
	optFlag := flag.Bool("opt", false, "run the default optimization pipeline to a fixed point")
	emitIR := flag.Bool("emit-ir", false, "print the program's text IR to stdout")
	runFlag := flag.Bool("run", false, "interpret the program's entry function")
	debugFlag := flag.Bool("debug-verify", false, "re-verify after every optimization pass that reports a change")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: lllc [-opt] [-emit-ir] [-run] <file.lll>")
		os.Exit(1)
	}
	path := flag.Arg(0)

	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read file: %s", err)
		os.Exit(1)
	}

	reporter := diagnostics.NewReporter(path, string(source))

	prog, err := parser.ParseSource(path, string(source))
	if err != nil {
		fmt.Fprint(os.Stderr, reporter.Format(diagnostics.FromParseError(err)))
		os.Exit(1)
	}

	irProg, errs := lower.Lower(prog)
	if len(errs) > 0 {
		for _, e := range errs {
			if lerr, ok := e.(*lower.Error); ok {
				fmt.Fprint(os.Stderr, reporter.Format(diagnostics.FromLowerError(lerr)))
				continue
			}
			color.Red("%s", e)
		}
		os.Exit(1)
	}

	if verrs := verify.Program(irProg); len(verrs) > 0 {
		for _, e := range verrs {
			if verr, ok := e.(*verify.Error); ok {
				fmt.Fprint(os.Stderr, reporter.Format(diagnostics.FromVerifyError(verr)))
				continue
			}
			color.Red("%s", e)
		}
		os.Exit(1)
	}

	if *optFlag {
		if err := optimize.RunDefault(irProg, *debugFlag); err != nil {
			color.Red("optimization failed: %s", err)
			os.Exit(1)
		}
	}

	if *emitIR {
		fmt.Print(textir.Print(irProg))
	}

	if *runFlag {
		in := interp.New(irProg)
		if err := in.RunToEnd(); err != nil {
			color.Red("runtime error: %s", err)
			os.Exit(1)
		}
		if in.Result != nil {
			fmt.Println(in.Result)
		}
		for _, obs := range in.Observations {
			fmt.Println(obs)
		}
	}

	color.Green("✅ %s", path)
}
