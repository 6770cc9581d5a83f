package renderer

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// The stack error codes are not exported by the 4.1 core bindings.
const (
	glStackOverflow  = 0x0503
	glStackUnderflow = 0x0504
)

var glErrorNames = map[uint32]string{
	gl.INVALID_ENUM:                  "INVALID_ENUM",
	gl.INVALID_VALUE:                 "INVALID_VALUE",
	gl.INVALID_OPERATION:             "INVALID_OPERATION",
	glStackOverflow:                  "STACK_OVERFLOW",
	glStackUnderflow:                 "STACK_UNDERFLOW",
	gl.OUT_OF_MEMORY:                 "OUT_OF_MEMORY",
	gl.INVALID_FRAMEBUFFER_OPERATION: "INVALID_FRAMEBUFFER_OPERATION",
}

// glErrorName returns the enum name of a glGetError code.
func glErrorName(code uint32) string {
	if name, ok := glErrorNames[code]; ok {
		return name
	}
	return fmt.Sprintf("0x%04X", code)
}

// CheckError drains the OpenGL error queue. The context must be current.
//
// Parameters:
//   - op: the operation to name in the error
//
// Returns:
//   - error: every pending error joined, or nil
func CheckError(op string) error {
	var errs []error
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		errs = append(errs, fmt.Errorf("%s: GL %s", op, glErrorName(code)))
	}
	return errors.Join(errs...)
}
