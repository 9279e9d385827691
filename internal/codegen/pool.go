package codegen

import "strconv"

// stringPool interns byte-string literals to a private label, spec.md §3's
// "String-constant pool": identical bytes always share one label.
type stringPool struct {
	labels map[string]string
	order  []string
	next   int
}

func newStringPool() *stringPool {
	return &stringPool{labels: map[string]string{}}
}

// Intern returns the label for s, allocating a fresh one the first time s
// is seen.
func (p *stringPool) Intern(s string) string {
	if l, ok := p.labels[s]; ok {
		return l
	}
	label := "__str_" + strconv.Itoa(p.next)
	p.next++
	p.labels[s] = label
	p.order = append(p.order, s)
	return label
}

// Entries returns (label, literal) pairs in allocation order, for
// flushing the pool into read-only data at the end of compilation.
func (p *stringPool) Entries() []struct{ Label, Value string } {
	out := make([]struct{ Label, Value string }, 0, len(p.order))
	for _, s := range p.order {
		out = append(out, struct{ Label, Value string }{p.labels[s], s})
	}
	return out
}

// globalSet is the append-only set of names promoted to BSS longs, spec.md
// §3's "Global-constant set": every bare name assigned at top level, or
// used as a class name, is emitted exactly once.
type globalSet struct {
	names map[string]bool
	order []string
}

func newGlobalSet() *globalSet {
	return &globalSet{names: map[string]bool{}}
}

// Add records name if it isn't already present, returning whether this
// call actually added it (callers use this to warn on nothing; the
// driver only needs it for the "exactly once" testable property).
func (g *globalSet) Add(name string) bool {
	if g.names[name] {
		return false
	}
	g.names[name] = true
	g.order = append(g.order, name)
	return true
}

func (g *globalSet) Has(name string) bool { return g.names[name] }

func (g *globalSet) Names() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}
