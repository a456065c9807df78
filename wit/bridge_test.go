package wit

import (
	"testing"

	bca "go.bytecodealliance.org/wit"
)

func TestDocumentBuilder_Record(t *testing.T) {
	b := NewDocumentBuilder()
	iface := b.AddInterface("filesystem")

	name := "stat"
	recType := &bca.TypeDef{
		Name: &name,
		Kind: &bca.Record{
			Fields: []bca.Field{
				{Name: "device", Type: bca.U64{}},
				{Name: "path", Type: bca.String{}},
			},
		},
	}

	ref, err := b.DeclareType(iface, "stat", recType)
	if err != nil {
		t.Fatalf("DeclareType failed: %v", err)
	}

	doc := b.Document()
	idx, ok := ref.(Index)
	if !ok {
		t.Fatalf("ref = %T, want Index", ref)
	}
	td := doc.Types[idx]
	if td.Name != "stat" {
		t.Errorf("name = %q, want stat", td.Name)
	}
	rec, ok := td.Kind.(Record)
	if !ok {
		t.Fatalf("kind = %T, want Record", td.Kind)
	}
	if len(rec.Fields) != 2 {
		t.Fatalf("fields len = %d, want 2", len(rec.Fields))
	}
	if rec.Fields[0].Type != Builtin(PrimU64) {
		t.Errorf("fields[0] = %v, want u64 builtin", rec.Fields[0].Type)
	}
	if rec.Fields[1].Type != Builtin(PrimString) {
		t.Errorf("fields[1] = %v, want string builtin", rec.Fields[1].Type)
	}

	members := doc.Interfaces[iface].Types
	if len(members) != 1 || members[0].Name != "stat" || members[0].Index != int(idx) {
		t.Errorf("interface members = %+v", members)
	}
}

func TestDocumentBuilder_SharedTypeDefDeduplicated(t *testing.T) {
	b := NewDocumentBuilder()
	iface := b.AddInterface("api")

	elemName := "entry"
	elem := &bca.TypeDef{
		Name: &elemName,
		Kind: &bca.Record{Fields: []bca.Field{{Name: "id", Type: bca.U32{}}}},
	}
	listA := &bca.TypeDef{Kind: &bca.List{Type: elem}}
	listB := &bca.TypeDef{Kind: &bca.List{Type: elem}}

	if _, err := b.DeclareType(iface, "a", listA); err != nil {
		t.Fatalf("DeclareType a failed: %v", err)
	}
	if _, err := b.DeclareType(iface, "b", listB); err != nil {
		t.Fatalf("DeclareType b failed: %v", err)
	}

	// Two list entries plus exactly one shared element entry.
	doc := b.Document()
	entries := 0
	for _, td := range doc.Types {
		if td.Name == "entry" {
			entries++
		}
	}
	if entries != 1 {
		t.Errorf("entry typedefs = %d, want 1 shared entry", entries)
	}
}

func TestDocumentBuilder_PrimitiveMemberGetsEntry(t *testing.T) {
	b := NewDocumentBuilder()
	iface := b.AddInterface("clocks")

	ref, err := b.DeclareType(iface, "instant", bca.U64{})
	if err != nil {
		t.Fatalf("DeclareType failed: %v", err)
	}
	idx, ok := ref.(Index)
	if !ok {
		t.Fatalf("ref = %T, want Index for named member", ref)
	}
	td := b.Document().Types[idx]
	if td.Name != "instant" {
		t.Errorf("name = %q, want instant", td.Name)
	}
	base, ok := td.Kind.(Base)
	if !ok || base.Prim != PrimU64 {
		t.Errorf("kind = %+v, want Base{u64}", td.Kind)
	}
}

func TestDocumentBuilder_Func(t *testing.T) {
	b := NewDocumentBuilder()
	iface := b.AddInterface("api")

	err := b.DeclareFunc(iface, "read",
		[]bca.Type{bca.U32{}, bca.U64{}},
		[]string{"fd", "len"},
		[]bca.Type{bca.String{}})
	if err != nil {
		t.Fatalf("DeclareFunc failed: %v", err)
	}

	fns := b.Document().Interfaces[iface].Functions
	if len(fns) != 1 {
		t.Fatalf("functions len = %d, want 1", len(fns))
	}
	fn := fns[0]
	if fn.Kind != FuncFreestanding {
		t.Errorf("kind = %q, want freestanding", fn.Kind)
	}
	if len(fn.Params) != 2 || fn.Params[0].Name != "fd" || fn.Params[1].Name != "len" {
		t.Errorf("params = %+v", fn.Params)
	}
	if len(fn.Results) != 1 || fn.Results[0] != Builtin(PrimString) {
		t.Errorf("results = %v", fn.Results)
	}
}

func TestDocumentBuilder_Handles(t *testing.T) {
	b := NewDocumentBuilder()
	iface := b.AddInterface("resources")

	ownName := "own-desc"
	own := &bca.TypeDef{Name: &ownName, Kind: &bca.Own{}}
	ref, err := b.DeclareType(iface, "own-desc", own)
	if err != nil {
		t.Fatalf("DeclareType own failed: %v", err)
	}
	td := b.Document().Types[ref.(Index)]
	if _, ok := td.Kind.(Handle); !ok {
		t.Errorf("own kind = %T, want Handle", td.Kind)
	}

	borrowName := "borrow-desc"
	borrow := &bca.TypeDef{Name: &borrowName, Kind: &bca.Borrow{}}
	ref, err = b.DeclareType(iface, "borrow-desc", borrow)
	if err != nil {
		t.Fatalf("DeclareType borrow failed: %v", err)
	}
	td = b.Document().Types[ref.(Index)]
	if _, ok := td.Kind.(Handle); !ok {
		t.Errorf("borrow kind = %T, want Handle", td.Kind)
	}
}
