package codegen

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// CompileToExecutable assembles and links generated assembly into a
// runnable binary. The core emits 32-bit x86 (spec.md §1's "cdecl calling
// convention, 32-bit registers"), so both the assembler and the linker are
// forced into 32-bit mode with -m32/--32 rather than relying on the host's
// default target.
func CompileToExecutable(assembly string, outputPath string) error {
	tmpDir, err := os.MkdirTemp("", "twicec-compile-")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	asmPath := filepath.Join(tmpDir, "program.s")
	if err := os.WriteFile(asmPath, []byte(assembly), 0o644); err != nil {
		return fmt.Errorf("failed to write assembly: %v", err)
	}

	objPath := filepath.Join(tmpDir, "program.o")
	cmd := exec.Command("as", "--32", asmPath, "-o", objPath)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("assembler failed: %v\n%s", err, output)
	}

	// gcc -m32 handles the C runtime's calling convention and libc symbols
	// (printf) the runtime relies on; fall back to a bare ld link for a
	// self-contained object with no libc dependency.
	cmd = exec.Command("gcc", "-m32", "-static", "-nostartfiles", objPath, "-o", outputPath)
	if _, err := cmd.CombinedOutput(); err != nil {
		cmd = exec.Command("ld", "-m", "elf_i386", objPath, "-o", outputPath)
		if output, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("linker failed: %v\n%s", err, output)
		}
	}

	return nil
}
