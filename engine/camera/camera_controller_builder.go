package camera

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithSpeed sets the rotation rate of the controller.
//
// Parameters:
//   - radiansPerSecond: rotation applied per second while a key is held
//
// Returns:
//   - CameraControllerOption: functional option to set the speed
func WithSpeed(radiansPerSecond float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.speed = radiansPerSecond
	}
}

// WithBinding binds a key to a rotation direction, replacing any existing binding for that key.
// Signs are typically -1, 0 or 1.
//
// Parameters:
//   - keyCode: the virtual key code
//   - xSign: direction of rotation about X while held
//   - ySign: direction of rotation about Y while held
//
// Returns:
//   - CameraControllerOption: functional option to add the binding
func WithBinding(keyCode uint32, xSign, ySign float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.bindings[keyCode] = axisBinding{xSign: xSign, ySign: ySign}
	}
}
