package shader

import (
	"strconv"
	"strings"
)

// wgslPrimitiveLayoutMap maps the WGSL scalar, vector and matrix types usable in a
// uniform block to their byte size and alignment per the WGSL specification.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var wgslPrimitiveLayoutMap = map[string]wgslTypeLayout{
	"f32": {4, 4},
	"i32": {4, 4},
	"u32": {4, 4},

	"vec2<f32>": {8, 8},
	"vec2f":     {8, 8},
	"vec3<f32>": {12, 16},
	"vec3f":     {12, 16},
	"vec4<f32>": {16, 16},
	"vec4f":     {16, 16},

	// matCxR<f32>: C columns of vecR<f32>, stride = roundUp(align(vecR), size(vecR))
	"mat2x2<f32>": {16, 8},
	"mat2x2f":     {16, 8},
	"mat3x3<f32>": {48, 16},
	"mat3x3f":     {48, 16},
	"mat4x4<f32>": {64, 16},
	"mat4x4f":     {64, 16},
}

// wgslKindMap maps the primitive types to the setter kind that writes them.
var wgslKindMap = map[string]UniformKind{
	"f32":         UniformKindFloat,
	"i32":         UniformKindInt,
	"u32":         UniformKindUint,
	"vec2<f32>":   UniformKindVec2,
	"vec2f":       UniformKindVec2,
	"vec3<f32>":   UniformKindVec3,
	"vec3f":       UniformKindVec3,
	"vec4<f32>":   UniformKindVec4,
	"vec4f":       UniformKindVec4,
	"mat2x2<f32>": UniformKindMat2,
	"mat2x2f":     UniformKindMat2,
	"mat3x3<f32>": UniformKindMat3,
	"mat3x3f":     UniformKindMat3,
	"mat4x4<f32>": UniformKindMat4,
	"mat4x4f":     UniformKindMat4,
}

// roundUpAlign rounds value up to the next multiple of alignment.
// Alignment must be a power of two.
//
// Parameters:
//   - alignment: the required alignment (must be a power of two)
//   - value: the value to align
//
// Returns:
//   - uint64: value rounded up to the next multiple of alignment
func roundUpAlign(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// splitArrayType splits "array<T, N>" into T and N.
func splitArrayType(typeName string) (elem string, count uint64, ok bool) {
	inner, found := strings.CutPrefix(typeName, "array<")
	if !found || !strings.HasSuffix(inner, ">") {
		return "", 0, false
	}
	inner = strings.TrimSuffix(inner, ">")
	parts := strings.SplitN(inner, ",", 2)
	if len(parts) != 2 {
		return "", 0, false
	}
	n, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil || n == 0 {
		return "", 0, false
	}
	return strings.TrimSpace(parts[0]), n, true
}

// computeUniformFields places every field of ps at its aligned offset and expands
// fixed-size arrays of primitives into per-element slots.
//
// Parameters:
//   - ps: the parsed struct bound as the uniform block
//
// Returns:
//   - []UniformField: the slots in declaration order
//   - wgslTypeLayout: the struct size and alignment
//   - error: error naming the first field whose type cannot live in a uniform block
func computeUniformFields(ps parsedStruct) ([]UniformField, wgslTypeLayout, error) {
	var fields []UniformField
	offset := uint64(0)
	maxAlign := uint64(1)

	for _, f := range ps.fields {
		if f.isBuiltin {
			continue
		}

		if elem, count, ok := splitArrayType(f.typeName); ok {
			el, known := wgslPrimitiveLayoutMap[elem]
			if !known {
				return nil, wgslTypeLayout{}, &LayoutError{Struct: ps.name, Field: f.name, Type: f.typeName}
			}
			// Uniform address space arrays use a 16 byte element stride at minimum.
			stride := roundUpAlign(16, roundUpAlign(el.align, el.size))
			align := max(el.align, 16)
			offset = roundUpAlign(align, offset)
			for i := uint64(0); i < count; i++ {
				fields = append(fields, UniformField{
					Name:   f.name + "[" + strconv.FormatUint(i, 10) + "]",
					Type:   elem,
					Kind:   wgslKindMap[elem],
					Offset: offset + i*stride,
					Size:   el.size,
				})
			}
			offset += count * stride
			maxAlign = max(maxAlign, align)
			continue
		}

		fl, known := wgslPrimitiveLayoutMap[f.typeName]
		if !known {
			return nil, wgslTypeLayout{}, &LayoutError{Struct: ps.name, Field: f.name, Type: f.typeName}
		}
		offset = roundUpAlign(fl.align, offset)
		fields = append(fields, UniformField{
			Name:   f.name,
			Type:   f.typeName,
			Kind:   wgslKindMap[f.typeName],
			Offset: offset,
			Size:   fl.size,
		})
		offset += fl.size
		maxAlign = max(maxAlign, fl.align)
	}

	// Uniform buffer structs are rounded to 16 bytes.
	maxAlign = max(maxAlign, 16)
	return fields, wgslTypeLayout{size: roundUpAlign(maxAlign, offset), align: maxAlign}, nil
}

// stripComments removes both line (//) and block (/* */) comments from WGSL source.
//
// Parameters:
//   - source: raw WGSL source string
//
// Returns:
//   - string: source with all comments removed
func stripComments(source string) string {
	return stripLineComments(stripBlockComments(source))
}

// stripLineComments removes single-line // comments from WGSL source so they
// do not interfere with struct and field parsing
func stripLineComments(source string) string {
	var sb strings.Builder
	for line := range strings.SplitSeq(source, "\n") {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// stripBlockComments removes block comments (/* ... */) from WGSL source,
// handling nested block comments per the WGSL specification
func stripBlockComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			if source[i] == '/' && source[i+1] == '*' {
				depth++
				i++
				continue
			}
			if source[i] == '*' && source[i+1] == '/' && depth > 0 {
				depth--
				i++
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}

// splitAtTopLevelCommas splits a string at commas that are not nested inside angle brackets.
// This correctly handles WGSL types like array<mat4x4<f32>, 6> where the comma is part of
// the type syntax rather than a field separator.
//
// Parameters:
//   - s: the string to split (typically the body of a WGSL struct)
//
// Returns:
//   - []string: substrings between top-level commas
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
