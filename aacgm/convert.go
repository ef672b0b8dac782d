package aacgm

import (
	"fmt"
	"log"
	"math"
	"time"
)

// ConvertLatLon converts a single location. Out-of-range latitudes,
// longitudes, and missing timestamps are hard errors; heights the code
// cannot handle and locations where the mapping is undefined come back as
// NaN with a logged explanation, so batch callers never lose a whole run
// to one bad record.
func (c *Converter) ConvertLatLon(latDeg, lonDeg, heightKm float64, t time.Time, code Code) (mlat, mlon, r float64, err error) {
	t, err = NormalizeTime(t)
	if err != nil {
		return nan3(err)
	}
	latDeg, err = checkLat(latDeg)
	if err != nil {
		return nan3(err)
	}
	lonDeg, err = checkLon(lonDeg)
	if err != nil {
		return nan3(err)
	}
	if !CheckHeight(heightKm, code) {
		return math.NaN(), math.NaN(), math.NaN(), nil
	}
	if err := c.eng.SetDateTime(t); err != nil {
		return nan3(fmt.Errorf("aacgm: set date/time: %w", err))
	}
	mlat, mlon, r, convErr := c.eng.Convert(latDeg, lonDeg, heightKm, code)
	if convErr != nil {
		log.Printf("aacgm: conversion failed at (%.3f, %.3f, %g km): %v", latDeg, lonDeg, heightKm, convErr)
		return math.NaN(), math.NaN(), math.NaN(), nil
	}
	return mlat, mlon, r, nil
}

// ConvertLatLonSlice converts locations element-wise. Slices of length one
// are broadcast against the longest input; other length mismatches are an
// error. Soft failures produce NaN in the affected elements only.
func (c *Converter) ConvertLatLonSlice(lats, lons, heights []float64, t time.Time, code Code) (mlats, mlons, rs []float64, err error) {
	lats, lons, heights, err = broadcast3(lats, lons, heights)
	if err != nil {
		return nil, nil, nil, err
	}
	n := len(lats)
	if n == 1 {
		log.Printf("aacgm: for a single location, consider using ConvertLatLon")
	}

	t, err = NormalizeTime(t)
	if err != nil {
		return nil, nil, nil, err
	}
	for i := range lats {
		if lats[i], err = checkLat(lats[i]); err != nil {
			return nil, nil, nil, err
		}
		if lons[i], err = checkLon(lons[i]); err != nil {
			return nil, nil, nil, err
		}
	}

	mlats = make([]float64, n)
	mlons = make([]float64, n)
	rs = make([]float64, n)

	// The altitude policy is decided once on the highest point, the way
	// the coefficient validity itself is bounded.
	if !CheckHeight(maxOf(heights), code) {
		fillNaN(mlats, mlons, rs)
		return mlats, mlons, rs, nil
	}
	if err := c.eng.SetDateTime(t); err != nil {
		return nil, nil, nil, fmt.Errorf("aacgm: set date/time: %w", err)
	}
	for i := range lats {
		mlat, mlon, r, convErr := c.eng.Convert(lats[i], lons[i], heights[i], code)
		if convErr != nil {
			log.Printf("aacgm: conversion failed at (%.3f, %.3f, %g km): %v", lats[i], lons[i], heights[i], convErr)
			mlat, mlon, r = math.NaN(), math.NaN(), math.NaN()
		}
		mlats[i] = mlat
		mlons[i] = mlon
		rs[i] = r
	}
	return mlats, mlons, rs, nil
}

// ConvertPoint is ConvertLatLon for callers that carry Point values.
func (c *Converter) ConvertPoint(latDeg, lonDeg, heightKm float64, t time.Time, code Code) (Point, error) {
	mlat, mlon, r, err := c.ConvertLatLon(latDeg, lonDeg, heightKm, t, code)
	return Point{Lat: mlat, Lon: mlon, R: r}, err
}

// DefaultMethod is the conversion method GetCoord uses: coefficients where
// valid, tracing above the coefficient limit.
const DefaultMethod = AllowTrace

// GetCoord converts a geographic location and returns magnetic latitude,
// longitude, and local time. The method code is combined with G2A; use
// DefaultMethod when in doubt.
func (c *Converter) GetCoord(latDeg, lonDeg, heightKm float64, t time.Time, method Code) (mlat, mlon, mlt float64, err error) {
	mlat, mlon, _, err = c.ConvertLatLon(latDeg, lonDeg, heightKm, t, G2A|method)
	if err != nil {
		return nan3(err)
	}
	mlts, err := c.ConvertMLTAt([]float64{mlon}, t, false)
	if err != nil {
		return nan3(err)
	}
	return mlat, mlon, mlts[0], nil
}

// GetCoordSlice is the slice form of GetCoord, with ConvertLatLonSlice
// broadcasting rules.
func (c *Converter) GetCoordSlice(lats, lons, heights []float64, t time.Time, method Code) (mlats, mlons, mlts []float64, err error) {
	mlats, mlons, _, err = c.ConvertLatLonSlice(lats, lons, heights, t, G2A|method)
	if err != nil {
		return nil, nil, nil, err
	}
	mlts, err = c.ConvertMLTAt(mlons, t, false)
	if err != nil {
		return nil, nil, nil, err
	}
	return mlats, mlons, mlts, nil
}

func nan3(err error) (float64, float64, float64, error) {
	return math.NaN(), math.NaN(), math.NaN(), err
}

func fillNaN(slices ...[]float64) {
	for _, s := range slices {
		for i := range s {
			s[i] = math.NaN()
		}
	}
}

func maxOf(vals []float64) float64 {
	max := math.Inf(-1)
	for _, v := range vals {
		if v > max {
			max = v
		}
	}
	return max
}

// broadcast3 stretches length-one inputs to the common length and rejects
// every other mismatch.
func broadcast3(a, b, c []float64) ([]float64, []float64, []float64, error) {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	if len(c) > n {
		n = len(c)
	}
	if n == 0 {
		return nil, nil, nil, fmt.Errorf("aacgm: empty input")
	}
	var err error
	if a, err = stretch(a, n, "latitude"); err != nil {
		return nil, nil, nil, err
	}
	if b, err = stretch(b, n, "longitude"); err != nil {
		return nil, nil, nil, err
	}
	if c, err = stretch(c, n, "height"); err != nil {
		return nil, nil, nil, err
	}
	return a, b, c, nil
}

func stretch(s []float64, n int, what string) ([]float64, error) {
	switch len(s) {
	case n:
		out := make([]float64, n)
		copy(out, s)
		return out, nil
	case 1:
		out := make([]float64, n)
		for i := range out {
			out[i] = s[0]
		}
		return out, nil
	default:
		return nil, fmt.Errorf("aacgm: %s length %d does not match input length %d", what, len(s), n)
	}
}
