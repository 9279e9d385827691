// Command twicec wires the s-expression reader, the codegen core and the
// GAS emitter into a single pass: read source text, lower it, print or
// assemble the result. Flag handling follows the teacher's own compiler
// CLIs in shape (a flat flag.FlagSet, positional source file, -o for
// output), grounded on other_examples/hupe1980-vecgo's main.go use of the
// standard flag package for a compiler-adjacent tool.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"classgen/internal/codegen"
	"classgen/internal/emitter"
	"classgen/internal/lexer"
	"classgen/internal/reader"
)

// compileToExecutableFn is swapped out in tests so runCLI's binary-output
// branch can be exercised without invoking the real assembler/linker.
var compileToExecutableFn = codegen.CompileToExecutable

func main() {
	os.Exit(runCLI(os.Args[1:], os.Stdout, os.Stderr))
}

// runCLI implements the whole reader -> core -> emitter pipeline against
// injected output streams, mirroring the teacher's runCLI(args, stdin,
// stdout, stderr) shape (internal/codegen/../cmd/twice/main_unit_test.go)
// so the CLI's behavior is unit-testable without spawning a subprocess.
func runCLI(argv []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("twicec", flag.ContinueOnError)
	outPath := fs.String("o", "", "write output to this path instead of stdout")
	emitAsm := fs.Bool("S", false, "stop after emitting assembly text instead of assembling and linking -o into a binary")
	debugInfo := fs.Bool("g", false, "annotate emitted assembly with source line comments")
	vtableDump := fs.Bool("vtable-dump", false, "print the allocated vtable slot layout to stderr after compiling")
	fs.SetOutput(stderr)
	if err := fs.Parse(argv); err != nil {
		return 2
	}

	args := fs.Args()
	if len(args) != 1 {
		fmt.Fprintln(stderr, "usage: twicec [-o out.s] [-g] [-vtable-dump] <source.twc>")
		return 2
	}
	srcPath := args[0]

	src, err := os.ReadFile(srcPath)
	if err != nil {
		fmt.Fprintf(stderr, "twicec: %v\n", err)
		return 1
	}

	rdr := reader.New(lexer.New(string(src)), srcPath)
	program := rdr.ReadProgram()
	if errs := rdr.Errors(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(stderr, "error: %s\n", e)
		}
		return 1
	}

	d := codegen.NewDriver(emitter.NewGASEmitter())
	d.SetDebugInfo(*debugInfo)
	asm := d.Compile(program)

	for _, diagnostic := range d.Diagnostics() {
		fmt.Fprintln(stderr, diagnostic.String())
	}
	if d.HasErrors() {
		return 1
	}

	if *vtableDump {
		for _, name := range d.VTable.Names() {
			off, _ := d.VTable.Lookup(name)
			fmt.Fprintf(stderr, "vtable: %-24s %d\n", name, off)
		}
	}

	if *outPath == "" {
		fmt.Fprint(stdout, asm)
		return 0
	}
	if *emitAsm || strings.HasSuffix(*outPath, ".s") {
		if err := os.WriteFile(*outPath, []byte(asm), 0o644); err != nil {
			fmt.Fprintf(stderr, "twicec: %v\n", err)
			return 1
		}
		return 0
	}
	if err := compileToExecutableFn(asm, *outPath); err != nil {
		fmt.Fprintf(stderr, "twicec: %v\n", err)
		return 1
	}
	return 0
}
