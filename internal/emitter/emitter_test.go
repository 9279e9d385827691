package emitter

import (
	"strings"
	"testing"
)

func TestSectionSwitchesEmitOnceOnChange(t *testing.T) {
	e := NewGASEmitter()
	e.Section("text")
	e.Section("text")
	e.Section("bss")
	out := e.String()
	if strings.Count(out, ".text") != 1 {
		t.Fatalf("expected .text emitted once, got:\n%s", out)
	}
	if strings.Count(out, ".bss") != 1 {
		t.Fatalf("expected .bss emitted once, got:\n%s", out)
	}
}

func TestLocalGeneratesUniqueLabels(t *testing.T) {
	e := NewGASEmitter()
	a := e.Local()
	b := e.Local()
	if a == b {
		t.Fatalf("expected distinct labels, got %q twice", a)
	}
}

func TestFuncEmitsPrologueAndEpilogue(t *testing.T) {
	e := NewGASEmitter()
	e.Func("fn_add", 2, func() {
		e.Emit("    ; body")
	})
	out := e.String()
	for _, want := range []string{"fn_add:", "push %ebp", "mov %esp, %ebp", "sub $8, %esp", "mov %ebp, %esp", "pop %ebp", "ret"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestFuncClearsCacheAcrossBody(t *testing.T) {
	e := NewGASEmitter()
	e.CacheReg("x", "eax")
	e.Func("fn_f", 0, func() {
		if _, ok := e.CachedReg("x"); ok {
			t.Fatalf("expected cache cleared at function entry")
		}
		e.CacheReg("y", "ebx")
	})
	if _, ok := e.CachedReg("y"); ok {
		t.Fatalf("expected cache cleared at function exit")
	}
}

func TestCallerSaveSpillsAndRestoresLiveRegister(t *testing.T) {
	e := NewGASEmitter()
	e.CacheReg("counter", "ecx")
	e.CallerSave(func() {
		e.Emit("    call foo")
	})
	out := e.String()
	if !strings.Contains(out, "push %ecx") || !strings.Contains(out, "pop %ecx") {
		t.Fatalf("expected ecx spilled and restored, got:\n%s", out)
	}
	if _, ok := e.CachedReg("counter"); ok {
		t.Fatalf("expected cache cleared after CallerSave")
	}
}

func TestCallerSaveDoesNotSpillUncachedRegisters(t *testing.T) {
	e := NewGASEmitter()
	e.CallerSave(func() {
		e.Emit("    call foo")
	})
	out := e.String()
	if strings.Contains(out, "push") {
		t.Fatalf("expected no spills with an empty cache, got:\n%s", out)
	}
}

func TestEvictAllAndEvictRegsFor(t *testing.T) {
	e := NewGASEmitter()
	e.CacheReg("a", "eax")
	e.EvictRegsFor("b") // different name, no-op
	if _, ok := e.CachedReg("a"); !ok {
		t.Fatalf("expected a to remain cached")
	}
	e.EvictRegsFor("a")
	if _, ok := e.CachedReg("a"); ok {
		t.Fatalf("expected a evicted")
	}
	e.CacheReg("c", "edx")
	e.EvictAll()
	if _, ok := e.CachedReg("c"); ok {
		t.Fatalf("expected EvictAll to clear everything")
	}
}

func TestStringConstEscapesQuotesAndBackslashes(t *testing.T) {
	e := NewGASEmitter()
	e.StringConst("L1", "he said \"hi\"\\n")
	out := e.String()
	if !strings.Contains(out, `L1: .asciz "he said \"hi\"\\n"`) {
		t.Fatalf("got:\n%s", out)
	}
}

func TestWithLocalYieldsDistinctOffsets(t *testing.T) {
	e := NewGASEmitter()
	var offsets []int
	e.WithLocal(func(off int) {
		offsets = append(offsets, off)
		e.WithLocal(func(off2 int) {
			offsets = append(offsets, off2)
		})
	})
	if offsets[0] == offsets[1] {
		t.Fatalf("expected nested WithLocal to yield distinct offsets, got %v", offsets)
	}
}
