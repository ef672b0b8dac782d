package geomag

import "time"

// DipoleAxis returns the unit vector along the north-pointing centered
// dipole axis for the given degree-one Gauss coefficients (nT). The axis
// points out of the northern hemisphere, so the geomagnetic north pole is
// at VecToLatLon(DipoleAxis(...)).
func DipoleAxis(g10, g11, h11 float64) Vec3 {
	v := Vec3{X: -g11, Y: -h11, Z: -g10}
	return v.Normalize()
}

// DipolePole returns the latitude/longitude in degrees of the north
// geomagnetic pole for the given degree-one Gauss coefficients.
func DipolePole(g10, g11, h11 float64) (latDeg, lonDeg float64) {
	return VecToLatLon(DipoleAxis(g10, g11, h11))
}

// DecimalYear expresses t as a fractional year, the time scale the
// coefficient tables interpolate on.
func DecimalYear(t time.Time) float64 {
	t = t.UTC()
	y := t.Year()
	start := time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(y+1, 1, 1, 0, 0, 0, 0, time.UTC)
	duration := end.Sub(start)
	if duration <= 0 {
		return float64(y)
	}
	return float64(y) + float64(t.Sub(start))/float64(duration)
}
