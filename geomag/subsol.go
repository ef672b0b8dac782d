package geomag

import (
	"fmt"
	"math"
	"time"
)

// Subsolar year bounds. The low-precision solar ephemeris used here is the
// Astronomical Almanac C.24 formulation, which holds between these years.
const (
	SubsolarMinYear = 1601
	SubsolarMaxYear = 2100
)

// Subsolar returns the latitude and longitude (degrees) of the point on
// Earth directly beneath the Sun at the given instant. The instant is
// interpreted in UTC. Years outside [1601, 2100] are rejected.
func Subsolar(t time.Time) (latDeg, lonDeg float64, err error) {
	utc := t.UTC()
	year := utc.Year()
	if year < SubsolarMinYear || year > SubsolarMaxYear {
		return 0, 0, fmt.Errorf("geomag: subsolar point unavailable for year %d (valid %d-%d)",
			year, SubsolarMinYear, SubsolarMaxYear)
	}

	doy := float64(utc.YearDay())
	ut := float64(utc.Hour()*3600+utc.Minute()*60+utc.Second()) +
		float64(utc.Nanosecond())/1e9

	yr := float64(year - 2000)
	nleap := math.Floor(float64(year-1601)/4.0) - 99
	if year <= 1900 {
		ncent := 3 - math.Floor(float64(year-1601)/100.0)
		nleap += ncent
	}

	l0 := -79.549 + (-0.238699*(yr-4.0*nleap) + 3.08514e-2*nleap)
	g0 := -2.472 + (-0.2558905*(yr-4.0*nleap) - 3.79617e-2*nleap)

	// Days, including fraction, since 12 UT on January 1 of the epoch year.
	df := (ut/86400.0 - 1.5) + doy

	// Mean longitude and mean anomaly of the Sun.
	lmean := l0 + 0.9856474*df
	grad := (g0 + 0.9856003*df) * degRad

	// Ecliptic longitude.
	lmrad := (lmean + 1.915*math.Sin(grad) + 0.020*math.Sin(2.0*grad)) * degRad
	sinlm := math.Sin(lmrad)

	// Obliquity of the ecliptic.
	n := df + 365.0*yr + nleap
	epsrad := (23.439 - 4.0e-7*n) * degRad

	// Right ascension and declination; the declination is the subsolar
	// latitude.
	alpha := math.Atan2(math.Cos(epsrad)*sinlm, math.Cos(lmrad)) * radDeg
	latDeg = math.Asin(math.Sin(epsrad)*sinlm) * radDeg

	// Equation of time in degrees.
	etdeg := lmean - alpha
	etdeg -= 360.0 * math.Round(etdeg/360.0)

	// Earth rotates one degree every 240 seconds.
	lonDeg = 180.0 - (ut/240.0 + etdeg)
	lonDeg -= 360.0 * math.Round(lonDeg/360.0)
	return latDeg, lonDeg, nil
}
