package codegen

import (
	"testing"

	"github.com/wippyai/wit-codegen/errors"
)

func TestScope_Local(t *testing.T) {
	s := NewScope("filesystem")
	s.DeclareLocal("descriptor-stat")

	got, err := s.Resolve("descriptor-stat")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != "$descriptorStat" {
		t.Errorf("Resolve = %q, want $descriptorStat", got)
	}

	got, err = s.ResolveDecl("descriptor-stat")
	if err != nil {
		t.Fatalf("ResolveDecl failed: %v", err)
	}
	if got != "descriptorStat" {
		t.Errorf("ResolveDecl = %q, want descriptorStat", got)
	}
}

func TestScope_Imported(t *testing.T) {
	s := NewScope("filesystem")
	s.DeclareImported("input-stream", "wasi:io/streams@0.2.0", "")

	got, err := s.Resolve("input-stream")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != "streams.$cm.$inputStream" {
		t.Errorf("Resolve = %q, want streams.$cm.$inputStream", got)
	}

	got, err = s.ResolveDecl("input-stream")
	if err != nil {
		t.Fatalf("ResolveDecl failed: %v", err)
	}
	if got != "streams.inputStream" {
		t.Errorf("ResolveDecl = %q, want streams.inputStream", got)
	}
}

func TestScope_ImportedRenamed(t *testing.T) {
	s := NewScope("api")
	s.DeclareImported("local-error", "errors", "error-code")

	got, err := s.Resolve("local-error")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != "errors.$cm.$errorCode" {
		t.Errorf("Resolve = %q, want errors.$cm.$errorCode", got)
	}
}

func TestScope_Unresolved(t *testing.T) {
	s := NewScope("filesystem")

	_, err := s.Resolve("missing")
	if err == nil {
		t.Fatal("expected unresolved-symbol error")
	}
	serr, ok := err.(*errors.Error)
	if !ok {
		t.Fatalf("error type = %T", err)
	}
	if serr.Kind != errors.KindUnresolvedSymbol {
		t.Errorf("Kind = %v, want KindUnresolvedSymbol", serr.Kind)
	}
	if serr.Scope != "filesystem" {
		t.Errorf("Scope = %q, the failing interface must be named", serr.Scope)
	}
}

func TestScope_NoLeakAcrossScopes(t *testing.T) {
	a := NewScope("a")
	a.DeclareLocal("shared")

	b := NewScope("b")
	if _, err := b.Resolve("shared"); err == nil {
		t.Error("symbol declared in one scope resolved in another")
	}
}
