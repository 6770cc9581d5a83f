package scene

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/Carmen-Shannon/oxy-shadows/engine/camera"
	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProgram struct {
	log    *[]string
	values map[string]any
	// undeclared uniforms report false from HasUniform
	undeclared map[string]bool
}

func newRecordingProgram(log *[]string) *recordingProgram {
	return &recordingProgram{log: log, values: make(map[string]any)}
}

func (p *recordingProgram) set(name string, v any) {
	*p.log = append(*p.log, name)
	p.values[name] = v
}

func (p *recordingProgram) Key() string { return "recording" }
func (p *recordingProgram) HasUniform(name string) bool { return !p.undeclared[name] }
func (p *recordingProgram) Release() {}
func (p *recordingProgram) SetBool(name string, v bool) { p.set(name, v) }
func (p *recordingProgram) SetInt(name string, v int32) { p.set(name, v) }
func (p *recordingProgram) SetFloat(name string, v float32) { p.set(name, v) }
func (p *recordingProgram) SetVec2(name string, v mgl32.Vec2) { p.set(name, v) }
func (p *recordingProgram) SetVec3(name string, v mgl32.Vec3) { p.set(name, v) }
func (p *recordingProgram) SetVec4(name string, v mgl32.Vec4) { p.set(name, v) }
func (p *recordingProgram) SetMat2(name string, m mgl32.Mat2) { p.set(name, m) }
func (p *recordingProgram) SetMat3(name string, m mgl32.Mat3) { p.set(name, m) }
func (p *recordingProgram) SetMat4(name string, m mgl32.Mat4) { p.set(name, m) }

type fakeMesh struct{}

func (fakeMesh) VertexCount() int { return 36 }
func (fakeMesh) Release() {}

type fakeDrawer struct {
	log        *[]string
	correction map[renderer.ClipSpace]mgl32.Mat4
	failAt     int
	draws      int
}

func (d *fakeDrawer) Draw(p renderer.Program, m renderer.Mesh) error {
	d.draws++
	*d.log = append(*d.log, "draw")
	if d.failAt == d.draws {
		return errors.New("boom")
	}
	return nil
}

func (d *fakeDrawer) ClipCorrection(space renderer.ClipSpace) mgl32.Mat4 {
	if m, ok := d.correction[space]; ok {
		return m
	}
	return mgl32.Ident4()
}

func newTestScene(lightType light.LightType, options ...SceneBuilderOption) Scene {
	return NewScene(camera.NewCamera(), light.NewLight(lightType), fakeMesh{}, options...)
}

func assertMat4InDelta(t *testing.T, want, got mgl32.Mat4) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5, "element %d", i)
	}
}

func TestNewSceneInitialCubes(t *testing.T) {
	s := newTestScene(light.LightTypePoint)
	cubes := s.Cubes()

	assert.Equal(t, mgl32.Ident4(), cubes[0].Model)
	assert.Equal(t, mgl32.Vec3{1, 0.3, 0.3}, cubes[0].Diffuse)
	assert.Equal(t, mgl32.Vec3{}, cubes[0].Emissive)

	assertMat4InDelta(t, mgl32.Translate3D(1, 0, 0).Mul4(mgl32.Scale3D(0.1, 0.1, 0.1)), cubes[1].Model)
	assert.Equal(t, mgl32.Vec3{}, cubes[1].Diffuse)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, cubes[1].Emissive)

	assertMat4InDelta(t, mgl32.Translate3D(0, -1, 0).Mul4(mgl32.Scale3D(2, 0.1, 2)), cubes[2].Model)
	assert.Equal(t, mgl32.Vec3{0.3, 0.3, 1}, cubes[2].Diffuse)

	assert.Equal(t, "shadows", s.Name())
	assert.InDelta(t, 1, s.WorldSpaceLightPos().X(), 1e-6)
}

func TestNewScenePanicsOnMissingParts(t *testing.T) {
	assert.Panics(t, func() { NewScene(nil, light.NewLight(light.LightTypePoint), fakeMesh{}) })
	assert.Panics(t, func() { NewScene(camera.NewCamera(), nil, fakeMesh{}) })
	assert.Panics(t, func() { NewScene(camera.NewCamera(), light.NewLight(light.LightTypePoint), nil) })
}

func TestUpdateAdvancesAngles(t *testing.T) {
	s := newTestScene(light.LightTypePoint)

	s.Update(1)
	a1, a2 := s.Angles()
	assert.InDelta(t, 0.5, a1, 1e-6)
	assert.InDelta(t, 2.0, a2, 1e-6)

	s.Update(4)
	a1, a2 = s.Angles()
	assert.InDelta(t, 2.5, a1, 1e-5)
	assert.InDelta(t, 10-common.TwoPi, a2, 1e-5)
	assert.LessOrEqual(t, a2, float32(common.TwoPi))
}

func TestUpdateRotatesCubes(t *testing.T) {
	s := newTestScene(light.LightTypePoint, WithCubeSpeeds(1, 1))
	s.Update(math32.Pi / 2)

	cubes := s.Cubes()
	assertMat4InDelta(t, mgl32.HomogRotate3DY(math32.Pi/2), cubes[0].Model)

	// rotY(-a) carries (1,0,0) to (cos a, 0, sin a)
	pos := s.WorldSpaceLightPos()
	assert.InDelta(t, 0, pos.X(), 1e-5)
	assert.InDelta(t, 0, pos.Y(), 1e-5)
	assert.InDelta(t, 1, pos.Z(), 1e-5)
}

func TestCameraAngles(t *testing.T) {
	s := newTestScene(light.LightTypePoint)
	s.ChangeCameraAngleX(0.25)
	s.ChangeCameraAngleY(-0.5)
	s.Update(0)

	want := mgl32.Translate3D(0, 0, -3.5).
		Mul4(mgl32.HomogRotate3DX(0.25)).
		Mul4(mgl32.HomogRotate3DY(-0.5))
	assertMat4InDelta(t, want, s.Camera().ViewMatrix())
}

func expectedUniformOrder(withShadowMatrices bool) []string {
	names := []string{
		"worldSpaceLightPos", "lightPos", "viewMat", "projMat", "lightSpaceMatrix",
		"far_plane", "near_plane", "depthMap",
	}
	if withShadowMatrices {
		for i := 0; i < light.CubeFaceCount; i++ {
			names = append(names, fmt.Sprintf("shadowMatrices[%d]", i))
		}
	}
	for i := 0; i < CubeCount; i++ {
		names = append(names, "modelMat", "diffuseColour", "emissiveColour", "draw")
	}
	return names
}

func TestDrawPointLightOrder(t *testing.T) {
	var log []string
	s := newTestScene(light.LightTypePoint)
	p := newRecordingProgram(&log)
	d := &fakeDrawer{log: &log}

	require.NoError(t, s.Draw(d, p, renderer.PassShadow))
	assert.Equal(t, expectedUniformOrder(true), log)
	assert.Equal(t, int32(0), p.values["depthMap"])
	assert.Equal(t, float32(10), p.values["far_plane"])
	assert.Equal(t, float32(0.1), p.values["near_plane"])
	assert.Equal(t, mgl32.Vec3{-1, 4, 1}, p.values["lightPos"])
}

func TestDrawDirectionalSkipsCubeMatrices(t *testing.T) {
	var log []string
	s := newTestScene(light.LightTypeDirectional)

	require.NoError(t, s.Draw(&fakeDrawer{log: &log}, newRecordingProgram(&log), renderer.PassScene))
	assert.Equal(t, expectedUniformOrder(false), log)
}

func TestDrawPointLightSkipsUndeclaredCubeMatrices(t *testing.T) {
	var log []string
	s := newTestScene(light.LightTypePoint)
	p := newRecordingProgram(&log)
	p.undeclared = map[string]bool{"shadowMatrices[0]": true}

	require.NoError(t, s.Draw(&fakeDrawer{log: &log}, p, renderer.PassScene))
	assert.Equal(t, expectedUniformOrder(false), log)
}

func TestDrawRepeatsFixedShadowMatrices(t *testing.T) {
	var log []string
	s := newTestScene(light.LightTypePoint)
	p := newRecordingProgram(&log)
	d := &fakeDrawer{log: &log}

	require.NoError(t, s.Draw(d, p, renderer.PassShadow))
	first := p.values["shadowMatrices[5]"]
	log = log[:0]
	require.NoError(t, s.Draw(d, p, renderer.PassShadow))

	assert.Equal(t, expectedUniformOrder(true), log)
	assert.Equal(t, first, p.values["shadowMatrices[5]"])
	assert.NotContains(t, p.values, "shadowMatrices[6]")
}

func TestDrawAppliesClipCorrection(t *testing.T) {
	var log []string
	s := newTestScene(light.LightTypePoint)
	p := newRecordingProgram(&log)
	d := &fakeDrawer{log: &log, correction: map[renderer.ClipSpace]mgl32.Mat4{
		renderer.ClipSpaceScreen:     common.DepthRemap,
		renderer.ClipSpaceShadow2D:   common.DepthRemap,
		renderer.ClipSpaceShadowCube: common.DepthRemap.Mul4(common.FlipY),
	}}

	require.NoError(t, s.Draw(d, p, renderer.PassScene))

	assertMat4InDelta(t, common.DepthRemap.Mul4(s.Camera().ProjectionMatrix()), p.values["projMat"].(mgl32.Mat4))
	assertMat4InDelta(t, common.DepthRemap.Mul4(s.Light().LightSpaceMatrix()), p.values["lightSpaceMatrix"].(mgl32.Mat4))

	faces := s.Light().ShadowTransforms()
	assertMat4InDelta(t, common.DepthRemap.Mul4(common.FlipY).Mul4(faces[2]), p.values["shadowMatrices[2]"].(mgl32.Mat4))
	assert.Equal(t, s.Camera().ViewMatrix(), p.values["viewMat"])
}

func TestDrawReturnsDrawError(t *testing.T) {
	var log []string
	s := newTestScene(light.LightTypeDirectional)
	d := &fakeDrawer{log: &log, failAt: 2}

	err := s.Draw(d, newRecordingProgram(&log), renderer.PassShadow)
	require.Error(t, err)
	assert.Equal(t, "shadow pass cube 2: boom", err.Error())
	assert.Equal(t, 2, d.draws)
}
