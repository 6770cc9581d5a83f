package shader

// wgslTypeLayout holds the byte size and alignment for a WGSL type per the WGSL specification.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField represents a single field extracted from a WGSL struct during parsing
type parsedField struct {
	name      string
	typeName  string
	isBuiltin bool
}

// parsedStruct represents a WGSL struct block extracted during parsing
type parsedStruct struct {
	name   string
	fields []parsedField
}

// UniformKind classifies a uniform field by the setter that may write it.
type UniformKind int

const (
	UniformKindUnknown UniformKind = iota
	UniformKindFloat
	UniformKindInt
	UniformKindUint
	UniformKindVec2
	UniformKindVec3
	UniformKindVec4
	UniformKindMat2
	UniformKindMat3
	UniformKindMat4
)

// UniformField is one addressable slot of a uniform block. Array fields are expanded
// into one UniformField per element named "field[i]".
type UniformField struct {
	Name   string
	Type   string
	Kind   UniformKind
	Offset uint64
	Size   uint64
}

// UniformLayout is the byte layout of the struct bound as a var<uniform>.
type UniformLayout struct {
	// Var is the WGSL variable name, e.g. "u".
	Var string

	// Struct is the WGSL struct type name.
	Struct string

	// Group and Binding locate the variable.
	Group   uint32
	Binding uint32

	// Size is the struct size rounded up to its alignment.
	Size uint64

	// Fields holds every addressable slot in declaration order.
	Fields []UniformField

	byName map[string]int
}

// Field looks up a slot by name.
//
// Parameters:
//   - name: field name, or "field[i]" for array elements
//
// Returns:
//   - UniformField: the slot
//   - bool: false if the layout has no such slot
func (l *UniformLayout) Field(name string) (UniformField, bool) {
	i, ok := l.byName[name]
	if !ok {
		return UniformField{}, false
	}
	return l.Fields[i], true
}
