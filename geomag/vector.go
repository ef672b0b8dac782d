// Package geomag provides the geophysical primitives shared by the
// coordinate conversion front-end: unit-sphere vector math, the subsolar
// point, geodetic/geocentric latitude conversion, and the centered-dipole
// axis derived from degree-one Gauss coefficients.
package geomag

import "math"

const (
	radDeg = 180 / math.Pi
	degRad = math.Pi / 180
)

// EarthRadiusKm is the mean Earth radius used for radius normalization.
const EarthRadiusKm = 6371.2

type Vec3 struct {
	X float64
	Y float64
	Z float64
}

func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vec3) Mul(k float64) Vec3 {
	return Vec3{X: v.X * k, Y: v.Y * k, Z: v.Z * k}
}

func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

func (v Vec3) Normalize() Vec3 {
	n := v.Norm()
	if n == 0 {
		return Vec3{}
	}
	return v.Mul(1 / n)
}

// LatLonToVec maps latitude/longitude in degrees to a unit vector in the
// Earth-fixed frame (x toward lon 0, z toward the north pole).
func LatLonToVec(latDeg, lonDeg float64) Vec3 {
	lat := latDeg * degRad
	lon := lonDeg * degRad
	clat := math.Cos(lat)
	return Vec3{
		X: clat * math.Cos(lon),
		Y: clat * math.Sin(lon),
		Z: math.Sin(lat),
	}
}

// VecToLatLon is the inverse of LatLonToVec for unit vectors.
func VecToLatLon(v Vec3) (latDeg, lonDeg float64) {
	latDeg = math.Asin(clamp(v.Z, -1, 1)) * radDeg
	lonDeg = math.Atan2(v.Y, v.X) * radDeg
	return latDeg, lonDeg
}

// WrapLon maps a longitude in degrees into [-180, 180).
func WrapLon(lonDeg float64) float64 {
	lon := math.Mod(lonDeg+180.0, 360.0)
	if lon < 0 {
		lon += 360.0
	}
	return lon - 180.0
}

// Wrap24 maps an hour value into [0, 24).
func Wrap24(h float64) float64 {
	h = math.Mod(h, 24.0)
	if h < 0 {
		h += 24.0
	}
	return h
}

func clamp(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
