package shader

import (
	"errors"
	"fmt"
	"path/filepath"
)

var (
	// ErrShaderNotFound is returned when a stage file does not exist.
	ErrShaderNotFound = errors.New("shader file not found")

	// ErrEmptySource is returned when a stage file stays empty after all read attempts.
	ErrEmptySource = errors.New("shader source is empty")

	// ErrMissingStage is returned when a required vertex or fragment path is not set.
	ErrMissingStage = errors.New("shader stage path missing")

	// ErrCompile is wrapped by backend compile failures together with the compiler log.
	ErrCompile = errors.New("shader compile failed")

	// ErrLink is wrapped by backend link / pipeline creation failures.
	ErrLink = errors.New("shader link failed")
)

// Stage identifies one programmable stage of a render program.
type Stage int

const (
	// StageVertex transforms cube vertices.
	StageVertex Stage = iota

	// StageFragment shades fragments (or writes depth in the shadow pass).
	StageFragment

	// StageGeometry is optional and only used by the OpenGL point light depth program
	// to emit each triangle into all six cubemap faces.
	StageGeometry
)

// Stages lists every stage in load order.
var Stages = []Stage{StageVertex, StageFragment, StageGeometry}

// String returns the lowercase stage name.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageGeometry:
		return "geometry"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Paths are the files a program is built from. Geometry may be empty.
type Paths struct {
	Vertex   string `toml:"vertex"`
	Fragment string `toml:"fragment"`
	Geometry string `toml:"geometry"`
}

// Path returns the file of a stage, or "" if unset.
//
// Parameters:
//   - stage: the stage
//
// Returns:
//   - string: the path
func (p Paths) Path(stage Stage) string {
	switch stage {
	case StageVertex:
		return p.Vertex
	case StageFragment:
		return p.Fragment
	case StageGeometry:
		return p.Geometry
	default:
		return ""
	}
}

// Files returns every non-empty path.
//
// Returns:
//   - []string: the stage files in load order
func (p Paths) Files() []string {
	var files []string
	for _, st := range Stages {
		if path := p.Path(st); path != "" {
			files = append(files, path)
		}
	}
	return files
}

// Contains reports whether file is one of the stage files.
//
// Parameters:
//   - file: the path to check (compared after filepath.Clean)
//
// Returns:
//   - bool: true if the program is built from file
func (p Paths) Contains(file string) bool {
	file = filepath.Clean(file)
	for _, f := range p.Files() {
		if filepath.Clean(f) == file {
			return true
		}
	}
	return false
}

// Join prefixes every non-empty path with dir.
//
// Parameters:
//   - dir: the directory
//
// Returns:
//   - Paths: the joined paths
func (p Paths) Join(dir string) Paths {
	join := func(s string) string {
		if s == "" {
			return ""
		}
		return filepath.Join(dir, s)
	}
	return Paths{Vertex: join(p.Vertex), Fragment: join(p.Fragment), Geometry: join(p.Geometry)}
}

// Validate checks that the vertex and fragment paths are set.
//
// Returns:
//   - error: ErrMissingStage wrapped with the stage name
func (p Paths) Validate() error {
	if p.Vertex == "" {
		return fmt.Errorf("%w: %s", ErrMissingStage, StageVertex)
	}
	if p.Fragment == "" {
		return fmt.Errorf("%w: %s", ErrMissingStage, StageFragment)
	}
	return nil
}

// Source is the text of every stage of one program.
type Source struct {
	Paths    Paths
	Vertex   string
	Fragment string
	Geometry string
}

// Stage returns the text of a stage.
//
// Parameters:
//   - stage: the stage
//
// Returns:
//   - string: the source text, or "" if the stage is absent
func (s Source) Stage(stage Stage) string {
	switch stage {
	case StageVertex:
		return s.Vertex
	case StageFragment:
		return s.Fragment
	case StageGeometry:
		return s.Geometry
	default:
		return ""
	}
}

// HasGeometry reports whether the program has a geometry stage.
func (s Source) HasGeometry() bool {
	return s.Geometry != ""
}

func (s *Source) set(stage Stage, text string) {
	switch stage {
	case StageVertex:
		s.Vertex = text
	case StageFragment:
		s.Fragment = text
	case StageGeometry:
		s.Geometry = text
	}
}
