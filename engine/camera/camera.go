package camera

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

type cameraImpl struct {
	mu *sync.Mutex

	angleX   float32
	angleY   float32
	distance float32

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix       mgl32.Mat4
	projectionMatrix mgl32.Mat4

	controller CameraController
}

// Camera defines the interface for the orbiting demo camera.
// The camera sits Distance units in front of the origin and the scene is rotated
// about X then Y by the camera angles: view = translate(0,0,-d)·rotX(ax)·rotY(ay).
type Camera interface {
	// AngleX returns the rotation about the X axis in radians.
	//
	// Returns:
	//   - float32: the X angle
	AngleX() float32

	// AngleY returns the rotation about the Y axis in radians.
	//
	// Returns:
	//   - float32: the Y angle
	AngleY() float32

	// Distance returns how far the camera sits from the origin.
	//
	// Returns:
	//   - float32: the distance
	Distance() float32

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// ViewMatrix returns the current view matrix (column-major, OpenGL conventions).
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the current perspective projection (OpenGL clip space).
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// ChangeAngleX adds delta to the X angle.
	//
	// Parameters:
	//   - delta: angle change in radians
	ChangeAngleX(delta float32)

	// ChangeAngleY adds delta to the Y angle.
	//
	// Parameters:
	//   - delta: angle change in radians
	ChangeAngleY(delta float32)

	// SetAspect sets the aspect ratio (width / height) and recomputes the projection.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// Controller returns the attached CameraController, or nil.
	//
	// Returns:
	//   - CameraController: the attached controller or nil
	Controller() CameraController

	// SetController attaches a CameraController to the camera.
	//
	// Parameters:
	//   - ctrl: the controller to attach
	SetController(ctrl CameraController)

	// Update advances the attached controller by dt seconds and rebuilds the view matrix.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Update(dt float32)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera 3.5 units from the origin with a 45 degree
// field of view, aspect 1 and planes at 0.1 and 10.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		distance: 3.5,
		fov:      mgl32.DegToRad(45),
		aspect:   1.0,
		near:     0.1,
		far:      10.0,
	}
	for _, option := range options {
		option(c)
	}
	c.updateProjection()
	c.updateView()
	return c
}

func (c *cameraImpl) AngleX() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.angleX
}

func (c *cameraImpl) AngleY() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.angleY
}

func (c *cameraImpl) Distance() float32 {
	return c.distance
}

func (c *cameraImpl) Fov() float32 {
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	return c.near
}

func (c *cameraImpl) Far() float32 {
	return c.far
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ChangeAngleX(delta float32) {
	c.mu.Lock()
	c.angleX += delta
	c.mu.Unlock()
}

func (c *cameraImpl) ChangeAngleY(delta float32) {
	c.mu.Lock()
	c.angleY += delta
	c.mu.Unlock()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	c.aspect = aspect
	c.mu.Unlock()
	c.updateProjection()
}

func (c *cameraImpl) Controller() CameraController {
	return c.controller
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.controller = ctrl
}

func (c *cameraImpl) Update(dt float32) {
	if c.controller != nil {
		c.controller.Apply(c, dt)
	}
	c.updateView()
}

func (c *cameraImpl) updateView() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewMatrix = mgl32.Translate3D(0, 0, -c.distance).
		Mul4(mgl32.HomogRotate3DX(c.angleX)).
		Mul4(mgl32.HomogRotate3DY(c.angleY))
}

func (c *cameraImpl) updateProjection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projectionMatrix = mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
}
