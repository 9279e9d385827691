// Package emitter is the assembly sink internal/codegen writes to: section
// switches, prologue/epilogue block forms, a fresh-label generator, stack
// window helpers, and the register cache. It is grounded on the teacher's
// strings.Builder-plus-emit(format, args...) approach in
// internal/codegen/codegen.go, generalized from one fixed 64-bit
// syscall-exit program shape into the reusable Emitter contract spec.md §6
// names, and retargeted from raw syscalls to 32-bit cdecl calls into the
// external runtime symbols internal/runtime names.
package emitter

import (
	"fmt"
	"strings"
)

// Emitter is the sink every internal/codegen lowering routine writes
// through. Its shape follows spec.md §6's "emitter contract" line item.
type Emitter interface {
	// Section switches text/data output between .text, .rodata and .bss.
	Section(name string)

	// Emit writes one formatted assembly line, verbatim, with a trailing
	// newline. "%%" is used the way the teacher's emit() lines use it,
	// to escape a literal "%" ahead of an AT&T register name.
	Emit(format string, args ...interface{})

	// Label emits a bare "name:" line.
	Label(name string)

	// Local returns a fresh, program-unique local label, e.g. "L7".
	Local() string

	// Equ emits a ".equ name, value" constant definition, used for
	// vtable-offset constants (spec.md §4.2).
	Equ(name string, value int)

	// Long emits a ".long" data word (BSS/rodata global slot).
	Long(name string, initial int)

	// StringConst emits a ".asciz" string literal under label.
	StringConst(label, value string)

	// Func brackets a function body in a prologue/epilogue pair and
	// calls body between them. The prologue reserves frameWords 32-bit
	// stack slots.
	Func(label string, frameWords int, body func())

	// WithStack reserves n extra words of stack space for the duration
	// of body, restoring the pointer afterward (spec.md §6).
	WithStack(words int, body func())

	// WithLocal allocates one fresh stack-relative local for the
	// duration of body, passing its frame offset in.
	WithLocal(body func(offset int))

	// WithRegister reserves a scratch register (not the result register)
	// for the duration of body.
	WithRegister(body func(reg string))

	// CallerSave wraps a call: it evicts and spills every caller-saved
	// register that currently holds a live value, runs body (expected to
	// contain the call instruction), then leaves the cache clear per
	// spec.md's "mandatory caller-save around every call."
	CallerSave(body func())

	// CacheReg records that logical name now lives in reg, evicting
	// whatever the cache previously held (a single-register cache; see
	// RegisterCache).
	CacheReg(name, reg string)

	// CachedReg returns the register currently caching name, if any.
	CachedReg(name string) (string, bool)

	// EvictAll invalidates the whole register cache, used at
	// if/while/let boundaries per spec.md §5.
	EvictAll()

	// EvictRegsFor invalidates the cache only for name, if it was the
	// cached entry.
	EvictRegsFor(name string)

	// Lineno emits a source-position marker for the given line, used
	// when -g is passed to cmd/twicec (SPEC_FULL.md §7.2).
	Lineno(line int)

	// Include emits an assembler-level include directive naming a
	// runtime header, e.g. the extern declarations for
	// internal/runtime's symbols.
	Include(path string)

	// String returns everything emitted so far.
	String() string
}

// section names the three switches spec.md §6 lists.
type section int

const (
	sectionNone section = iota
	sectionText
	sectionData
	sectionBSS
)

// GASEmitter is the concrete Emitter targeting 32-bit AT&T-syntax GNU
// assembler text, grounded on the teacher's codegen.go emit() line-buffer
// approach and header/footer section emission.
type GASEmitter struct {
	out        strings.Builder
	cur        section
	labelCount int
	cache      RegisterCache
	stackDepth int // words currently reserved beyond the frame base, for WithStack/WithLocal nesting
}

func NewGASEmitter() *GASEmitter {
	return &GASEmitter{}
}

func (e *GASEmitter) Emit(format string, args ...interface{}) {
	fmt.Fprintf(&e.out, format, args...)
	e.out.WriteByte('\n')
}

func (e *GASEmitter) Section(name string) {
	var want section
	var directive string
	switch name {
	case "text":
		want, directive = sectionText, ".text"
	case "rodata":
		want, directive = sectionData, ".section .rodata"
	case "bss":
		want, directive = sectionBSS, ".bss"
	default:
		want, directive = sectionNone, "."+name
	}
	if e.cur == want {
		return
	}
	e.cur = want
	e.Emit(directive)
}

func (e *GASEmitter) Label(name string) {
	e.Emit("%s:", name)
}

func (e *GASEmitter) Local() string {
	e.labelCount++
	return fmt.Sprintf("L%d", e.labelCount)
}

func (e *GASEmitter) Equ(name string, value int) {
	e.Emit(".equ %s, %d", name, value)
}

func (e *GASEmitter) Long(name string, initial int) {
	if initial == 0 {
		e.Emit("%s: .long 0", name)
		return
	}
	e.Emit("%s: .long %d", name, initial)
}

func (e *GASEmitter) StringConst(label, value string) {
	e.Emit("%s: .asciz \"%s\"", label, escapeASM(value))
}

// Func emits a cdecl 32-bit prologue (push %ebp; mov %esp, %ebp; sub
// $4*frameWords, %esp) and matching epilogue (mov %ebp, %esp; pop %ebp;
// ret), running body in between with the register cache cleared.
func (e *GASEmitter) Func(label string, frameWords int, body func()) {
	e.Section("text")
	e.Label(label)
	e.Emit("    push %%ebp")
	e.Emit("    mov %%esp, %%ebp")
	if frameWords > 0 {
		e.Emit("    sub $%d, %%esp", frameWords*4)
	}
	e.cache.Clear()
	body()
	e.cache.Clear()
	e.Emit("    mov %%ebp, %%esp")
	e.Emit("    pop %%ebp")
	e.Emit("    ret")
}

func (e *GASEmitter) WithStack(words int, body func()) {
	if words > 0 {
		e.Emit("    sub $%d, %%esp", words*4)
	}
	e.stackDepth += words
	body()
	e.stackDepth -= words
	if words > 0 {
		e.Emit("    add $%d, %%esp", words*4)
	}
}

func (e *GASEmitter) WithLocal(body func(offset int)) {
	e.WithStack(1, func() {
		off := -4 * (e.stackDepth)
		body(off)
	})
}

// callerSaveRegs lists the caller-saved 32-bit general registers a cdecl
// call may clobber.
var callerSaveRegs = []string{"eax", "ecx", "edx"}

func (e *GASEmitter) WithRegister(body func(reg string)) {
	reg := "ebx"
	e.Emit("    push %%%s", reg)
	body(reg)
	e.Emit("    pop %%%s", reg)
}

func (e *GASEmitter) CallerSave(body func()) {
	live := e.cache.LiveRegs(callerSaveRegs)
	for _, reg := range live {
		e.Emit("    push %%%s", reg)
	}
	e.cache.Clear()
	body()
	for i := len(live) - 1; i >= 0; i-- {
		e.Emit("    pop %%%s", live[i])
	}
}

func (e *GASEmitter) CacheReg(name, reg string)              { e.cache.Set(name, reg) }
func (e *GASEmitter) CachedReg(name string) (string, bool)   { return e.cache.Get(name) }
func (e *GASEmitter) EvictAll()                              { e.cache.Clear() }
func (e *GASEmitter) EvictRegsFor(name string)               { e.cache.Evict(name) }

func (e *GASEmitter) Lineno(line int) {
	e.Emit("    # line %d", line)
}

func (e *GASEmitter) Include(path string) {
	e.Emit(".include \"%s\"", path)
}

func (e *GASEmitter) String() string { return e.out.String() }

// escapeASM escapes a Go string for embedding in a GAS .asciz directive.
func escapeASM(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString("\\\"")
		case '\\':
			b.WriteString("\\\\")
		case '\n':
			b.WriteString("\\n")
		case '\t':
			b.WriteString("\\t")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
