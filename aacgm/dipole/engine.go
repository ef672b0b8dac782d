// Package dipole implements the aacgm.Engine interface with a centered
// dipole built from the degree-one IGRF Gauss coefficients. It is an
// approximation of the full AACGM-v2 model: adequate for local-time work,
// visualization, and testing, while the full corrected-geomagnetic model
// stays behind a compiled backend. The dipole mapping is closed form, so
// the Trace/AllowTrace/BadIdea bits change only the altitude policy
// applied upstream, never the math here.
package dipole

import (
	"fmt"
	"math"
	"sync"
	"time"

	"magcoord/aacgm"
	"magcoord/geomag"
	"magcoord/igrf"
)

// minApexAltKm is the lowest field-line apex altitude for which the
// corrected-geomagnetic mapping is treated as defined. Field lines that
// top out below this height hug the magnetic equator and have no useful
// magnetic latitude.
const minApexAltKm = 85.0

const degRad = math.Pi / 180

// frame is the orthonormal magnetic basis for one instant: Z along the
// north dipole axis, X in the plane of the geographic pole so magnetic
// longitudes have a stable zero meridian.
type frame struct {
	x, y, z geomag.Vec3
}

// Engine converts through a centered dipole whose axis follows the
// coefficient table over time.
type Engine struct {
	model *igrf.Model

	mu  sync.Mutex
	t   time.Time
	frm frame
	set bool
}

// New returns an Engine over the given coefficient model.
func New(m *igrf.Model) *Engine {
	return &Engine{model: m}
}

// SetDateTime fixes the conversion epoch. It fails when the coefficient
// table does not cover t.
func (e *Engine) SetDateTime(t time.Time) error {
	frm, err := e.frameAt(t)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.t = t.UTC()
	e.frm = frm
	e.set = true
	e.mu.Unlock()
	return nil
}

func (e *Engine) frameAt(t time.Time) (frame, error) {
	g10, g11, h11, err := e.model.Dipole(t)
	if err != nil {
		return frame{}, fmt.Errorf("dipole: %w", err)
	}
	z := geomag.DipoleAxis(g10, g11, h11)
	y := z.Cross(geomag.Vec3{Z: 1}).Normalize()
	if y.Norm() == 0 {
		return frame{}, fmt.Errorf("dipole: axis degenerate with rotation axis")
	}
	// Left in this order, x completes a right-handed basis.
	x := y.Cross(z)
	return frame{x: x, y: y, z: z}, nil
}

// Convert maps a location between geographic and dipole-magnetic
// coordinates. Geographic latitudes are geodetic unless the Geocentric
// bit is set. The returned r is the geocentric distance in Earth radii.
func (e *Engine) Convert(latDeg, lonDeg, heightKm float64, code aacgm.Code) (float64, float64, float64, error) {
	e.mu.Lock()
	frm, set := e.frm, e.set
	e.mu.Unlock()
	if !set {
		return 0, 0, 0, fmt.Errorf("dipole: SetDateTime must be called before Convert")
	}

	r := (geomag.EarthRadiusKm + heightKm) / geomag.EarthRadiusKm

	if code.Has(aacgm.A2G) {
		if err := checkApex(latDeg, r); err != nil {
			return 0, 0, 0, err
		}
		vm := geomag.LatLonToVec(latDeg, lonDeg)
		vg := frm.x.Mul(vm.X).Add(frm.y.Mul(vm.Y)).Add(frm.z.Mul(vm.Z))
		glat, glon := geomag.VecToLatLon(vg)
		if !code.Has(aacgm.Geocentric) {
			glat = geomag.GeodeticLat(glat)
		}
		return glat, glon, r, nil
	}

	gcLat := latDeg
	if !code.Has(aacgm.Geocentric) {
		gcLat = geomag.GeocentricLat(latDeg)
	}
	v := geomag.LatLonToVec(gcLat, lonDeg)
	mlat := math.Asin(v.Dot(frm.z)) / degRad
	mlon := math.Atan2(v.Dot(frm.y), v.Dot(frm.x)) / degRad
	if err := checkApex(mlat, r); err != nil {
		return 0, 0, 0, err
	}
	return mlat, mlon, r, nil
}

// checkApex rejects field lines whose apex sits below minApexAltKm.
func checkApex(mlatDeg, r float64) error {
	clat := math.Cos(mlatDeg * degRad)
	if clat == 0 {
		return nil // over the pole the line extends to infinity
	}
	apexKm := (r/(clat*clat) - 1) * geomag.EarthRadiusKm
	if apexKm < minApexAltKm {
		return fmt.Errorf("%w: field-line apex at %.1f km", aacgm.ErrUndefinedLocation, apexKm)
	}
	return nil
}

// MLTConvert returns the magnetic local time for a magnetic longitude at
// t, defined from the magnetic longitude of the subsolar point:
// mlt = 12 + (mlon - mlonSubsolar)/15.
func (e *Engine) MLTConvert(t time.Time, mlonDeg float64) (float64, error) {
	ssmlon, err := e.subsolarMlon(t)
	if err != nil {
		return 0, err
	}
	return geomag.Wrap24(12 + (mlonDeg-ssmlon)/15), nil
}

// InvMLTConvert returns the magnetic longitude at which the given magnetic
// local time occurs at t.
func (e *Engine) InvMLTConvert(t time.Time, mlt float64) (float64, error) {
	ssmlon, err := e.subsolarMlon(t)
	if err != nil {
		return 0, err
	}
	return geomag.WrapLon(ssmlon + 15*(mlt-12)), nil
}

func (e *Engine) subsolarMlon(t time.Time) (float64, error) {
	sslat, sslon, err := geomag.Subsolar(t)
	if err != nil {
		return 0, fmt.Errorf("dipole: %w", err)
	}
	frm, err := e.frameAt(t)
	if err != nil {
		return 0, err
	}
	v := geomag.LatLonToVec(sslat, sslon)
	return math.Atan2(v.Dot(frm.y), v.Dot(frm.x)) / degRad, nil
}
