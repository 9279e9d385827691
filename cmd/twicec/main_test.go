package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunCLIWrongArgCountPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	code := runCLI(nil, &out, &out)
	if code != 2 {
		t.Fatalf("code=%d want=2", code)
	}
	if !strings.Contains(out.String(), "usage: twicec") {
		t.Fatalf("expected usage text, got:\n%s", out.String())
	}
}

func TestRunCLIMissingFileReportsError(t *testing.T) {
	var out bytes.Buffer
	code := runCLI([]string{filepath.Join(t.TempDir(), "nope.twc")}, &out, &out)
	if code != 1 {
		t.Fatalf("code=%d want=1", code)
	}
}

func TestRunCLIReaderErrorReportsAndExits(t *testing.T) {
	src := writeSource(t, "(class Foo Object")
	var out bytes.Buffer
	code := runCLI([]string{src}, &out, &out)
	if code != 1 {
		t.Fatalf("code=%d want=1", code)
	}
	if !strings.Contains(out.String(), "error:") {
		t.Fatalf("expected an error message, got:\n%s", out.String())
	}
}

func TestRunCLICompilesAndPrintsAssemblyToStdout(t *testing.T) {
	src := writeSource(t, "(class Point Object (defm getx () (return 42)))")
	var out bytes.Buffer
	code := runCLI([]string{src}, &out, &out)
	if code != 0 {
		t.Fatalf("code=%d want=0, output:\n%s", code, out.String())
	}
	if !strings.Contains(out.String(), "__new_class_object") {
		t.Fatalf("expected emitted assembly on stdout, got:\n%s", out.String())
	}
}

func TestRunCLIVtableDumpPrintsSlotLayout(t *testing.T) {
	src := writeSource(t, "(class Point Object (defm getx () (return 1)))")
	var out bytes.Buffer
	code := runCLI([]string{"-vtable-dump", "-o", filepath.Join(t.TempDir(), "out.s"), src}, &out, &out)
	if code != 0 {
		t.Fatalf("code=%d want=0, output:\n%s", code, out.String())
	}
	if !strings.Contains(out.String(), "vtable: getx") {
		t.Fatalf("expected a vtable dump line, got:\n%s", out.String())
	}
}

func TestRunCLIWritesAssemblyFileWhenSFlagSet(t *testing.T) {
	src := writeSource(t, "(do 1)")
	outPath := filepath.Join(t.TempDir(), "out.s")
	var out bytes.Buffer
	code := runCLI([]string{"-S", "-o", outPath, src}, &out, &out)
	if code != 0 {
		t.Fatalf("code=%d want=0, output:\n%s", code, out.String())
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("expected the assembly file to exist: %v", err)
	}
	if !strings.Contains(string(data), ".include") {
		t.Fatalf("expected assembly content, got:\n%s", data)
	}
}

func TestRunCLIInvokesAssemblerWhenOutputIsBinary(t *testing.T) {
	oldCompile := compileToExecutableFn
	defer func() { compileToExecutableFn = oldCompile }()

	var gotAsm, gotOut string
	compileToExecutableFn = func(asm, outPath string) error {
		gotAsm, gotOut = asm, outPath
		return nil
	}

	src := writeSource(t, "(do 1)")
	outPath := filepath.Join(t.TempDir(), "a.out")
	var out bytes.Buffer
	code := runCLI([]string{"-o", outPath, src}, &out, &out)
	if code != 0 {
		t.Fatalf("code=%d want=0, output:\n%s", code, out.String())
	}
	if gotOut != outPath {
		t.Fatalf("expected the assembler to be invoked with %q, got %q", outPath, gotOut)
	}
	if !strings.Contains(gotAsm, ".include") {
		t.Fatalf("expected assembled text to be passed through, got:\n%s", gotAsm)
	}
}

func TestRunCLIReportsAssemblerFailure(t *testing.T) {
	oldCompile := compileToExecutableFn
	defer func() { compileToExecutableFn = oldCompile }()
	compileToExecutableFn = func(asm, outPath string) error { return errors.New("boom") }

	src := writeSource(t, "(do 1)")
	var out bytes.Buffer
	code := runCLI([]string{"-o", filepath.Join(t.TempDir(), "a.out"), src}, &out, &out)
	if code != 1 {
		t.Fatalf("code=%d want=1", code)
	}
	if !strings.Contains(out.String(), "boom") {
		t.Fatalf("expected the assembler error to surface, got:\n%s", out.String())
	}
}

func writeSource(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.twc")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}
