package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-shadows/common"
)

// CameraController turns held keys into camera angle changes.
// Window key callbacks feed KeyDown/KeyUp; the camera calls Apply once per frame.
type CameraController interface {
	// KeyDown records a key press.
	//
	// Parameters:
	//   - keyCode: the virtual key code
	KeyDown(keyCode uint32)

	// KeyUp records a key release.
	//
	// Parameters:
	//   - keyCode: the virtual key code
	KeyUp(keyCode uint32)

	// Held reports whether a key is currently pressed.
	//
	// Parameters:
	//   - keyCode: the virtual key code
	//
	// Returns:
	//   - bool: true if the key is down
	Held(keyCode uint32) bool

	// Speed returns the rotation rate in radians per second.
	//
	// Returns:
	//   - float32: rotation speed
	Speed() float32

	// Apply rotates the camera for every held binding, scaled by dt.
	//
	// Parameters:
	//   - cam: the camera to rotate
	//   - dt: elapsed time in seconds
	Apply(cam Camera, dt float32)
}

// axisBinding maps a key to a signed rotation about one camera axis.
type axisBinding struct {
	xSign float32
	ySign float32
}

type cameraControllerImpl struct {
	mu       sync.Mutex
	speed    float32
	held     map[uint32]bool
	bindings map[uint32]axisBinding
}

var _ CameraController = &cameraControllerImpl{}

// defaultBindings rotates with the arrow keys and WASD.
func defaultBindings() map[uint32]axisBinding {
	return map[uint32]axisBinding{
		common.KeyUp:    {xSign: -1},
		common.KeyW:     {xSign: -1},
		common.KeyDown:  {xSign: 1},
		common.KeyS:     {xSign: 1},
		common.KeyLeft:  {ySign: -1},
		common.KeyA:     {ySign: -1},
		common.KeyRight: {ySign: 1},
		common.KeyD:     {ySign: 1},
	}
}

// NewCameraController creates a keyboard controller bound to the arrow keys and WASD,
// rotating at one radian per second by default.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the new controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		speed:    1.0,
		held:     make(map[uint32]bool),
		bindings: defaultBindings(),
	}
	for _, opt := range options {
		opt(cc)
	}
	return cc
}

func (cc *cameraControllerImpl) KeyDown(keyCode uint32) {
	cc.mu.Lock()
	cc.held[keyCode] = true
	cc.mu.Unlock()
}

func (cc *cameraControllerImpl) KeyUp(keyCode uint32) {
	cc.mu.Lock()
	delete(cc.held, keyCode)
	cc.mu.Unlock()
}

func (cc *cameraControllerImpl) Held(keyCode uint32) bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.held[keyCode]
}

func (cc *cameraControllerImpl) Speed() float32 {
	return cc.speed
}

func (cc *cameraControllerImpl) Apply(cam Camera, dt float32) {
	cc.mu.Lock()
	var dx, dy float32
	for key := range cc.held {
		b, ok := cc.bindings[key]
		if !ok {
			continue
		}
		dx += b.xSign
		dy += b.ySign
	}
	cc.mu.Unlock()

	step := cc.speed * dt
	if dx != 0 {
		cam.ChangeAngleX(dx * step)
	}
	if dy != 0 {
		cam.ChangeAngleY(dy * step)
	}
}
