package shader

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a struct field line: optional attributes, name, colon, type.
	// The type capture (.+) is greedy to handle parameterized types like array<T, N>.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// uniformDeclRegex captures group, binding, variable name, and type
	// from declarations like: @group(0) @binding(0) var<uniform> u: Uniforms;
	uniformDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var<uniform>\s+(\w+)\s*:\s*(\w+)\s*;`)

	// depthTextureRegex matches a depth texture binding and captures its dimension
	depthTextureRegex = regexp.MustCompile(`var\s+\w+\s*:\s*texture_depth_(2d|cube)\b`)
)

// DepthTexture classifies the shadow texture a WGSL program samples.
type DepthTexture int

const (
	// DepthTextureNone means the program samples no depth texture (a shadow pass program).
	DepthTextureNone DepthTexture = iota

	// DepthTexture2D is a texture_depth_2d, the directional light shadow map.
	DepthTexture2D

	// DepthTextureCube is a texture_depth_cube, the point light shadow cubemap.
	DepthTextureCube
)

// ParseDepthTexture reports which depth texture type a WGSL source binds.
//
// Parameters:
//   - source: the raw WGSL source code string
//
// Returns:
//   - DepthTexture: the first depth texture binding found, or DepthTextureNone
func ParseDepthTexture(source string) DepthTexture {
	m := depthTextureRegex.FindStringSubmatch(stripComments(source))
	if m == nil {
		return DepthTextureNone
	}
	if m[1] == "cube" {
		return DepthTextureCube
	}
	return DepthTexture2D
}

// LayoutError reports a uniform struct field whose type cannot be placed in a uniform block.
type LayoutError struct {
	Struct string
	Field  string
	Type   string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("uniform struct %s: field %s has unsupported type %s", e.Struct, e.Field, e.Type)
}

// ParseUniformLayout finds the first var<uniform> declaration in WGSL source and computes
// the byte layout of its struct. Sources without a uniform block return a nil layout.
//
// Parameters:
//   - source: the raw WGSL source code string
//
// Returns:
//   - *UniformLayout: the layout, or nil if the source declares no uniform block
//   - error: error if the struct is missing or holds unsupported types
func ParseUniformLayout(source string) (*UniformLayout, error) {
	clean := stripComments(source)
	m := uniformDeclRegex.FindStringSubmatch(clean)
	if m == nil {
		return nil, nil
	}
	group, _ := strconv.ParseUint(m[1], 10, 32)
	binding, _ := strconv.ParseUint(m[2], 10, 32)
	varName, structName := m[3], m[4]

	var target *parsedStruct
	structs := parseStructBlocks(clean)
	for i := range structs {
		if structs[i].name == structName {
			target = &structs[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("uniform %s: struct %s not declared", varName, structName)
	}

	fields, layout, err := computeUniformFields(*target)
	if err != nil {
		return nil, err
	}

	ul := &UniformLayout{
		Var:     varName,
		Struct:  structName,
		Group:   uint32(group),
		Binding: uint32(binding),
		Size:    layout.size,
		Fields:  fields,
		byName:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		ul.byName[f.Name] = i
	}
	return ul, nil
}

// ParseEntryPoint returns the name of the first entry point for the given stage.
// Geometry is not a WGSL stage and always yields "".
//
// Parameters:
//   - source: the raw WGSL source code string
//   - stage: StageVertex or StageFragment
//
// Returns:
//   - string: the entry point name, or "" if none is declared
func ParseEntryPoint(source string, stage Stage) string {
	clean := stripComments(source)
	var re *regexp.Regexp
	switch stage {
	case StageVertex:
		re = vertexEntryRegex
	case StageFragment:
		re = fragmentEntryRegex
	default:
		return ""
	}
	if m := re.FindStringSubmatch(clean); m != nil {
		return m[1]
	}
	return ""
}

// parseStructBlocks finds all struct { ... } blocks in the cleaned WGSL source
// and parses their fields
//
// Parameters:
//   - source: WGSL source with comments already stripped
//
// Returns:
//   - []parsedStruct: all struct blocks found in the source
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))
	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseStructFields(match[2]),
		})
	}
	return structs
}

// parseStructFields parses the body of a struct block into individual fields,
// flagging @builtin fields so layouts can skip them
func parseStructFields(body string) []parsedField {
	lines := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fm := fieldRegex.FindStringSubmatch(line)
		if fm == nil {
			continue
		}
		fields = append(fields, parsedField{
			name:      fm[1],
			typeName:  strings.Join(strings.Fields(fm[2]), ""),
			isBuiltin: builtinRegex.MatchString(line),
		})
	}
	return fields
}
