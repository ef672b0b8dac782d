package aacgm

import (
	"errors"
	"time"
)

// ErrUndefinedLocation is returned by engines when the conversion has no
// solution at the requested point (typically too close to the magnetic
// equator for the corrected-geomagnetic mapping to exist). The front-end
// turns it into NaN results rather than a hard failure.
var ErrUndefinedLocation = errors.New("aacgm: coordinates undefined at this location")

// Engine is the numerical core behind the front-end. Implementations may
// wrap the compiled AACGM-v2 library or provide an approximation such as
// the centered dipole in the dipole subpackage.
//
// Convert maps (lat, lon, height) under the given code; the returned r is
// the geocentric distance in Earth radii. Engines report undefined
// locations with ErrUndefinedLocation (possibly wrapped).
type Engine interface {
	SetDateTime(t time.Time) error
	Convert(latDeg, lonDeg, heightKm float64, code Code) (lat, lon, r float64, err error)
	MLTConvert(t time.Time, mlonDeg float64) (float64, error)
	InvMLTConvert(t time.Time, mlt float64) (float64, error)
}

// Point is a converted location: degrees latitude and longitude plus the
// geocentric distance in Earth radii. Soft conversion failures leave all
// three fields NaN.
type Point struct {
	Lat float64
	Lon float64
	R   float64
}

// Converter binds the validation/marshaling layer to an Engine.
type Converter struct {
	eng Engine
}

// New returns a Converter dispatching to eng.
func New(eng Engine) *Converter {
	return &Converter{eng: eng}
}

// Engine exposes the backend, mainly so callers can type-assert for
// backend-specific capabilities.
func (c *Converter) Engine() Engine { return c.eng }
