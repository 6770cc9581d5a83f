package model

// ModelBuilderOption is a functional option for configuring a Model.
type ModelBuilderOption func(*modelImpl)

// WithName sets the key the mesh is uploaded under.
//
// Parameters:
//   - name: the mesh name
//
// Returns:
//   - ModelBuilderOption: option function to apply
func WithName(name string) ModelBuilderOption {
	return func(m *modelImpl) {
		m.name = name
	}
}

// WithSize sets the cube's edge length.
//
// Parameters:
//   - size: edge length in model units (ignored if not positive)
//
// Returns:
//   - ModelBuilderOption: option function to apply
func WithSize(size float32) ModelBuilderOption {
	return func(m *modelImpl) {
		if size > 0 {
			m.size = size
		}
	}
}
