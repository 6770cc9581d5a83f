package scene

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithName sets the scene's identifier. Defaults to "shadows".
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithCubeSpeeds sets the rotation rates of the spinning cube and the orbiting light cube.
// Defaults to 0.5 and 2 radians per second.
//
// Parameters:
//   - cube1: radians per second of cube 1
//   - cube2: radians per second of cube 2
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCubeSpeeds(cube1, cube2 float32) SceneBuilderOption {
	return func(s *scene) {
		s.cube1Speed = cube1
		s.cube2Speed = cube2
	}
}
