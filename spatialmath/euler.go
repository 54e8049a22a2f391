// Package spatialmath holds the geometric types of a goal: a position in r3 and an orientation
// expressed as euler angles.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

const gimbalLockEpsilon = 1e-9

// EulerAngles are three angles (in radians) used to represent the rotation of an object in 3D
// Euclidean space. The rotation is applied intrinsically about Z, then the new Y', then the new X''.
type EulerAngles struct {
	Roll  float64 `json:"roll"`  // phi, about X''
	Pitch float64 `json:"pitch"` // theta, about Y'
	Yaw   float64 `json:"yaw"`   // psi, about Z
}

// EulerAnglesFromVector reads roll, pitch and yaw from the X, Y and Z components of v.
func EulerAnglesFromVector(v r3.Vector) EulerAngles {
	return EulerAngles{Roll: v.X, Pitch: v.Y, Yaw: v.Z}
}

// Vector returns the angles as (roll, pitch, yaw).
func (ea EulerAngles) Vector() r3.Vector {
	return r3.Vector{X: ea.Roll, Y: ea.Pitch, Z: ea.Yaw}
}

// Quaternion returns the unit quaternion of the Z->Y'->X'' rotation.
func (ea EulerAngles) Quaternion() quat.Number {
	halfRoll, halfPitch, halfYaw := ea.Roll/2, ea.Pitch/2, ea.Yaw/2
	qx := quat.Number{Real: math.Cos(halfRoll), Imag: math.Sin(halfRoll)}
	qy := quat.Number{Real: math.Cos(halfPitch), Jmag: math.Sin(halfPitch)}
	qz := quat.Number{Real: math.Cos(halfYaw), Kmag: math.Sin(halfYaw)}
	return quat.Mul(quat.Mul(qz, qy), qx)
}

// QuatToEulerAngles converts a quaternion to the Z->Y'->X'' euler angles it represents.
// At gimbal lock (pitch of +-90 degrees) roll absorbs the whole of the remaining rotation.
func QuatToEulerAngles(q quat.Number) EulerAngles {
	q = normalize(q)
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag

	sinPitch := 2 * (w*y - z*x)
	var angles EulerAngles
	switch {
	case sinPitch >= 1-gimbalLockEpsilon:
		angles.Pitch = math.Pi / 2
		angles.Roll = 2 * math.Atan2(x, w)
	case sinPitch <= -1+gimbalLockEpsilon:
		angles.Pitch = -math.Pi / 2
		angles.Roll = -2 * math.Atan2(x, w)
	default:
		angles.Pitch = math.Asin(sinPitch)
		angles.Roll = math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))
		angles.Yaw = math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))
	}
	return angles
}

// normalize scales a quaternion to unit length. The zero quaternion is returned as identity.
func normalize(q quat.Number) quat.Number {
	norm := quat.Abs(q)
	if norm == 0 {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/norm, q)
}

// EulerAnglesAlmostEqual compares each angle within epsilon.
func EulerAnglesAlmostEqual(a, b EulerAngles, epsilon float64) bool {
	return R3VectorAlmostEqual(a.Vector(), b.Vector(), epsilon)
}

// R3VectorAlmostEqual compares two r3.Vector objects and returns if the all elementwise differences are less than epsilon.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return math.Abs(a.X-b.X) < epsilon && math.Abs(a.Y-b.Y) < epsilon && math.Abs(a.Z-b.Z) < epsilon
}
