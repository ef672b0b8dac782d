package geomag

import "math"

// flattening factor (1-f)^2 for the reference ellipsoid, the same constant
// the AACGM-v2 distribution uses for its geodetic/geocentric correction.
const ellipsoidFactor = 0.9933056

// GeodeticLat converts a geocentric latitude in degrees to geodetic.
func GeodeticLat(gcLatDeg float64) float64 {
	return math.Atan(math.Tan(gcLatDeg*degRad)/ellipsoidFactor) * radDeg
}

// GeocentricLat converts a geodetic latitude in degrees to geocentric.
func GeocentricLat(gdLatDeg float64) float64 {
	return math.Atan(ellipsoidFactor*math.Tan(gdLatDeg*degRad)) * radDeg
}
