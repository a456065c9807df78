package codegen

import (
	"sort"
	"strings"
)

// importSet aggregates the file-header import statements: one line per
// distinct foreign source interface, one line for base-type aliases, and
// the runtime namespace when any descriptor was emitted. Base types have
// set semantics; foreign interfaces keep first-use order.
type importSet struct {
	base    map[string]struct{}
	foreign map[string]struct{}
	order   []string
	runtime bool
}

func newImportSet() *importSet {
	return &importSet{
		base:    make(map[string]struct{}),
		foreign: make(map[string]struct{}),
	}
}

// addBase records a base-type alias used somewhere in the file.
func (s *importSet) addBase(name string) {
	s.base[name] = struct{}{}
}

// addForeign records a use of a foreign source interface. Repeated imports
// from the same source collapse into the one aggregated line.
func (s *importSet) addForeign(source string) {
	if _, ok := s.foreign[source]; ok {
		return
	}
	s.foreign[source] = struct{}{}
	s.order = append(s.order, source)
}

// markRuntime records that descriptor expressions were emitted.
func (s *importSet) markRuntime() {
	s.runtime = true
}

// render produces the header lines. runtimeModule is the module the
// generated code resolves descriptors and base aliases from.
func (s *importSet) render(runtimeModule string) []string {
	var lines []string

	if s.runtime {
		lines = append(lines, "import * as "+runtimeAlias+" from '"+runtimeModule+"';")
	}

	if len(s.base) > 0 {
		names := make([]string, 0, len(s.base))
		for n := range s.base {
			names = append(names, n)
		}
		sort.Strings(names)
		lines = append(lines, "import type { "+strings.Join(names, ", ")+" } from '"+runtimeModule+"/types';")
	}

	for _, source := range s.order {
		ns := namespaceName(source)
		lines = append(lines, "import { "+ns+" } from './"+ns+".js';")
	}

	return lines
}
