package camera

// CameraBuilderOption is a functional option for configuring a Camera.
type CameraBuilderOption func(*cameraImpl)

// WithDistance sets how far the camera sits from the origin.
//
// Parameters:
//   - distance: distance along -Z in world units
//
// Returns:
//   - CameraBuilderOption: functional option to set the distance
func WithDistance(distance float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.distance = distance
	}
}

// WithFov sets the vertical field of view.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: functional option to set the field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithAspect sets the aspect ratio.
//
// Parameters:
//   - aspect: width / height
//
// Returns:
//   - CameraBuilderOption: functional option to set the aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if aspect > 0 {
			c.aspect = aspect
		}
	}
}

// WithPlanes sets the near and far clipping planes.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: functional option to set the clipping planes
func WithPlanes(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
		c.far = far
	}
}

// WithAngles sets the initial camera angles.
//
// Parameters:
//   - x: rotation about X in radians
//   - y: rotation about Y in radians
//
// Returns:
//   - CameraBuilderOption: functional option to set the angles
func WithAngles(x, y float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.angleX = x
		c.angleY = y
	}
}

// WithController attaches a CameraController to the camera.
//
// Parameters:
//   - ctrl: the controller to attach
//
// Returns:
//   - CameraBuilderOption: functional option to attach the controller
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}
