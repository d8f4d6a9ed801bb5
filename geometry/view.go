package geometry

import "github.com/go-gl/mathgl/mgl64"

// Per-tick spin in radians.
const (
	SpinRateX = 0.002
	SpinRateY = 0.003
)

// SuggestedCamera places the eye above and beside a tube of the given length.
func SuggestedCamera(totalLength float64) mgl64.Vec3 {
	return mgl64.Vec3{totalLength * 0.7, totalLength * 0.7, totalLength}
}

// CameraView is a view matrix looking from SuggestedCamera at the origin.
func CameraView(totalLength float64) mgl64.Mat4 {
	return mgl64.LookAtV(SuggestedCamera(totalLength), mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})
}

// Spin returns the model rotation after ticks render ticks, X then Y.
// The host owns the render loop and decides how often to tick.
func Spin(ticks int) mgl64.Mat4 {
	n := float64(ticks)
	return mgl64.HomogRotate3DX(SpinRateX * n).Mul4(mgl64.HomogRotate3DY(SpinRateY * n))
}
