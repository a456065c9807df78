package wit

// Prim identifies a built-in primitive type.
type Prim uint8

const (
	PrimBool Prim = iota
	PrimU8
	PrimS8
	PrimU16
	PrimS16
	PrimU32
	PrimS32
	PrimU64
	PrimS64
	PrimF32
	PrimF64
	PrimChar
	PrimString
)

var primNames = [...]string{
	PrimBool:   "bool",
	PrimU8:     "u8",
	PrimS8:     "s8",
	PrimU16:    "u16",
	PrimS16:    "s16",
	PrimU32:    "u32",
	PrimS32:    "s32",
	PrimU64:    "u64",
	PrimS64:    "s64",
	PrimF32:    "f32",
	PrimF64:    "f64",
	PrimChar:   "char",
	PrimString: "string",
}

func (p Prim) String() string {
	if int(p) < len(primNames) {
		return primNames[p]
	}
	return "unknown"
}

// IsNumeric reports whether p is a fixed-width numeric primitive. Lists of
// numeric primitives get a contiguous-buffer representation instead of a
// generic sequence.
func (p Prim) IsNumeric() bool {
	switch p {
	case PrimU8, PrimS8, PrimU16, PrimS16, PrimU32, PrimS32, PrimU64, PrimS64, PrimF32, PrimF64:
		return true
	default:
		return false
	}
}

// ParsePrim maps a builtin type name to its Prim. The float32/float64
// spellings are accepted as aliases for f32/f64.
func ParsePrim(name string) (Prim, bool) {
	switch name {
	case "float32":
		return PrimF32, true
	case "float64":
		return PrimF64, true
	}
	for p, n := range primNames {
		if n == name {
			return Prim(p), true
		}
	}
	return 0, false
}
