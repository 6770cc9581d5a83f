package scene

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/Carmen-Shannon/oxy-shadows/engine/camera"
	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

// CubeCount is the number of cubes in the scene.
const CubeCount = 3

// Default rotation rates in radians per second.
const (
	DefaultCube1Speed float32 = 0.5
	DefaultCube2Speed float32 = 2.0
)

// shadowMatrixNames avoids formatting the array element names every draw.
var shadowMatrixNames = func() [light.CubeFaceCount]string {
	var names [light.CubeFaceCount]string
	for i := range names {
		names[i] = fmt.Sprintf("shadowMatrices[%d]", i)
	}
	return names
}()

// Cube is the per-draw state of one cube.
type Cube struct {
	Model    mgl32.Mat4
	Diffuse  mgl32.Vec3
	Emissive mgl32.Vec3
}

// Drawer issues draws and converts projections for the active backend.
// renderer.Renderer satisfies it.
type Drawer interface {
	Draw(p renderer.Program, m renderer.Mesh) error
	ClipCorrection(space renderer.ClipSpace) mgl32.Mat4
}

// Scene holds the three cubes, the camera and the shadow-casting light.
// Cube 1 spins about Y, cube 2 is a small emissive cube orbiting the origin and
// cube 3 is a flat floor below them.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// Light returns the scene's light.
	Light() light.Light

	// Mesh returns the cube mesh drawn for every cube.
	Mesh() renderer.Mesh

	// Cubes returns a copy of the current cube state in draw order.
	//
	// Returns:
	//   - [CubeCount]Cube: model matrices and colours
	Cubes() [CubeCount]Cube

	// Angles returns the accumulated rotation angles of cube 1 and cube 2.
	//
	// Returns:
	//   - cube1, cube2: angles in radians, kept within [0, 2π]
	Angles() (cube1, cube2 float32)

	// WorldSpaceLightPos returns the centre of the emissive cube in world space.
	//
	// Returns:
	//   - mgl32.Vec3: cube2·(0,0,0,1)
	WorldSpaceLightPos() mgl32.Vec3

	// Update advances the cube rotations and the camera by dt seconds.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Update(dt float32)

	// ChangeCameraAngleX rotates the camera about X.
	//
	// Parameters:
	//   - delta: angle change in radians
	ChangeCameraAngleX(delta float32)

	// ChangeCameraAngleY rotates the camera about Y.
	//
	// Parameters:
	//   - delta: angle change in radians
	ChangeCameraAngleY(delta float32)

	// Draw sets the frame uniforms on p and draws every cube with the scene mesh.
	// Uniforms p does not declare are ignored, so the same call serves both passes.
	//
	// Parameters:
	//   - d: the renderer, inside an active pass
	//   - p: the depth program in the shadow pass, the lit program in the scene pass
	//   - pass: the active pass, used in error messages
	//
	// Returns:
	//   - error: the first draw error
	Draw(d Drawer, p renderer.Program, pass renderer.Pass) error
}

type scene struct {
	mu *sync.RWMutex

	name string
	cam  camera.Camera
	l    light.Light
	mesh renderer.Mesh

	cube1Speed float32
	cube2Speed float32
	cube1Angle float32
	cube2Angle float32

	cube2Offset mgl32.Mat4
	cubes       [CubeCount]Cube
}

var _ Scene = &scene{}

// NewScene creates the three-cube scene. Panics if cam, l or mesh is nil.
//
// Parameters:
//   - cam: the camera
//   - l: the shadow-casting light
//   - mesh: the uploaded cube mesh
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(cam camera.Camera, l light.Light, mesh renderer.Mesh, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	if l == nil {
		panic("scene: NewScene requires a non-nil Light")
	}
	if mesh == nil {
		panic("scene: NewScene requires a non-nil Mesh")
	}

	s := &scene{
		mu:          &sync.RWMutex{},
		name:        "shadows",
		cam:         cam,
		l:           l,
		mesh:        mesh,
		cube1Speed:  DefaultCube1Speed,
		cube2Speed:  DefaultCube2Speed,
		cube2Offset: mgl32.Translate3D(1, 0, 0).Mul4(mgl32.Scale3D(0.1, 0.1, 0.1)),
	}
	for _, option := range options {
		option(s)
	}

	s.cubes = [CubeCount]Cube{
		{Model: mgl32.Ident4(), Diffuse: mgl32.Vec3{1, 0.3, 0.3}},
		{Model: s.cube2Offset, Emissive: mgl32.Vec3{1, 1, 1}},
		{
			Model:   mgl32.Translate3D(0, -1, 0).Mul4(mgl32.Scale3D(2, 0.1, 2)),
			Diffuse: mgl32.Vec3{0.3, 0.3, 1},
		},
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Camera() camera.Camera {
	return s.cam
}

func (s *scene) Light() light.Light {
	return s.l
}

func (s *scene) Mesh() renderer.Mesh {
	return s.mesh
}

func (s *scene) Cubes() [CubeCount]Cube {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cubes
}

func (s *scene) Angles() (cube1, cube2 float32) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cube1Angle, s.cube2Angle
}

func (s *scene) WorldSpaceLightPos() mgl32.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return common.TransformPoint(s.cubes[1].Model, mgl32.Vec3{}).Vec3()
}

func (s *scene) Update(dt float32) {
	s.mu.Lock()
	s.cube1Angle = common.WrapAngle(s.cube1Angle + s.cube1Speed*dt)
	s.cube2Angle = common.WrapAngle(s.cube2Angle + s.cube2Speed*dt)

	s.cubes[0].Model = mgl32.HomogRotate3DY(s.cube1Angle)
	s.cubes[1].Model = mgl32.HomogRotate3DY(-s.cube2Angle).Mul4(s.cube2Offset)
	s.mu.Unlock()

	s.cam.Update(dt)
}

func (s *scene) ChangeCameraAngleX(delta float32) {
	s.cam.ChangeAngleX(delta)
}

func (s *scene) ChangeCameraAngleY(delta float32) {
	s.cam.ChangeAngleY(delta)
}

func (s *scene) Draw(d Drawer, p renderer.Program, pass renderer.Pass) error {
	cubes := s.Cubes()

	p.SetVec3("worldSpaceLightPos", s.WorldSpaceLightPos())
	p.SetVec3("lightPos", s.l.Position())
	p.SetMat4("viewMat", s.cam.ViewMatrix())
	p.SetMat4("projMat", d.ClipCorrection(renderer.ClipSpaceScreen).Mul4(s.cam.ProjectionMatrix()))
	p.SetMat4("lightSpaceMatrix", d.ClipCorrection(renderer.ClipSpaceShadow2D).Mul4(s.l.LightSpaceMatrix()))
	p.SetFloat("far_plane", s.l.Far())
	p.SetFloat("near_plane", s.l.Near())
	p.SetInt("depthMap", 0)

	// the lit program samples the cubemap and never declares the face matrices
	if s.l.Type() == light.LightTypePoint && p.HasUniform(shadowMatrixNames[0]) {
		correction := d.ClipCorrection(renderer.ClipSpaceShadowCube)
		transforms := s.l.ShadowTransforms()
		for i, m := range transforms {
			p.SetMat4(shadowMatrixNames[i], correction.Mul4(m))
		}
	}

	for i, c := range cubes {
		p.SetMat4("modelMat", c.Model)
		p.SetVec3("diffuseColour", c.Diffuse)
		p.SetVec3("emissiveColour", c.Emissive)
		if err := d.Draw(p, s.mesh); err != nil {
			return fmt.Errorf("%s pass cube %d: %w", pass, i+1, err)
		}
	}
	return nil
}
