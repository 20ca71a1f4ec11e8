package action

import "golang.org/x/exp/constraints"

// LerpFunc interpolates between from and to at fraction t in [0, 1].
type LerpFunc[T any] func(from, to T, t float64) T

// Number is any built-in integer or floating point type.
type Number interface {
	constraints.Integer | constraints.Float
}

// Lerp is linear interpolation for numeric types.
// Integer results are truncated toward zero.
func Lerp[T Number](from, to T, t float64) T {
	return T(float64(from) + (float64(to)-float64(from))*t)
}

// Vec2 is a two-component vector.
type Vec2 struct {
	X, Y float64
}

// LerpVec2 interpolates componentwise.
func LerpVec2(from, to Vec2, t float64) Vec2 {
	return Vec2{
		X: Lerp(from.X, to.X, t),
		Y: Lerp(from.Y, to.Y, t),
	}
}

// Vec3 is a three-component vector.
type Vec3 struct {
	X, Y, Z float64
}

// LerpVec3 interpolates componentwise.
func LerpVec3(from, to Vec3, t float64) Vec3 {
	return Vec3{
		X: Lerp(from.X, to.X, t),
		Y: Lerp(from.Y, to.Y, t),
		Z: Lerp(from.Z, to.Z, t),
	}
}
