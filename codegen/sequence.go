package codegen

// declaration is one emitted fragment in an interface's buffer.
type declaration struct {
	text     string
	deferred bool
}

// sequencer buffers emitted declarations for one interface and reorders
// them before rendering. Function-signature descriptors may reference any
// type, including ones declared after the function in source text, so they
// are deferred to the end of the buffer. Everything else keeps source
// order, which is safe because WIT forbids cyclic type dependencies.
type sequencer struct {
	decls []declaration
}

// push appends a fragment in source order.
func (s *sequencer) push(text string) {
	s.decls = append(s.decls, declaration{text: text})
}

// pushDeferred appends a fragment that must end up after all non-deferred
// fragments.
func (s *sequencer) pushDeferred(text string) {
	s.decls = append(s.decls, declaration{text: text, deferred: true})
}

func (s *sequencer) empty() bool {
	return len(s.decls) == 0
}

// ordered returns the fragments with deferred entries moved to the end.
// The partition is stable: mutual order within each class is preserved.
func (s *sequencer) ordered() []string {
	out := make([]string, 0, len(s.decls))
	for _, d := range s.decls {
		if !d.deferred {
			out = append(out, d.text)
		}
	}
	for _, d := range s.decls {
		if d.deferred {
			out = append(out, d.text)
		}
	}
	return out
}
