package codegen

import (
	"fmt"
	"strings"
)

// operatorNames maps punctuation-only method names to the cleaned-name
// fragments spec.md §4.2 names explicitly ("__plus", "__eq", "__NDX").
var operatorNames = map[string]string{
	"+":   "__plus",
	"-":   "__minus",
	"*":   "__times",
	"/":   "__div",
	"%":   "__mod",
	"==":  "__eq",
	"!=":  "__ne",
	"<":   "__lt",
	"<=":  "__le",
	">":   "__gt",
	">=":  "__ge",
	"<<":  "__lshift",
	"[]":  "__NDX",
	"[]=": "__NDXEQ",
	"!":   "__not",
	"?":   "__Q",
}

// cleanName rewrites a source-level method or symbol name into one safe as
// an assembler label, per spec.md §4.2 / GLOSSARY's "Cleaned name": a name
// that is exactly a known operator translates to a fixed word; otherwise
// letters, digits and `_` pass through, `?` anywhere becomes `__Q`, `!`
// becomes `__bang`, and each other byte becomes `__<hex>` on its own.
func cleanName(name string) string {
	if repl, ok := operatorNames[name]; ok {
		return repl
	}
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == '_':
			b.WriteByte('_')
		case c == '?':
			b.WriteString("__Q")
		case c == '!':
			b.WriteString("__bang")
		default:
			fmt.Fprintf(&b, "__%x", c)
		}
	}
	return b.String()
}

// methodLabel builds the emitted label for a method defined on className,
// spec.md §4.2's "__method_<ClassName>_<cleaned>".
func methodLabel(className, methodName string) string {
	return "__method_" + className + "_" + cleanName(methodName)
}

// vtableOffsetConst is the .equ symbol name for a method's global offset.
func vtableOffsetConst(methodName string) string {
	return "__voff__" + cleanName(methodName)
}

// missingThunkLabel is the label of the method-missing thunk filling an
// unused vtable slot for methodName.
func missingThunkLabel(methodName string) string {
	return "__vtable_missing_thunk_" + cleanName(methodName)
}
