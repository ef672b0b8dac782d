package aacgm

import (
	"fmt"
	"log"
	"math"
	"time"

	"magcoord/geomag"
)

// Altitude limits of the AACGM-v2 model, in km. Coefficients are fitted up
// to CoeffAltLimitKm; field-line tracing holds up to TraceAltLimitKm (one
// Earth radius of altitude). Above that the corrected-geomagnetic system
// stops being meaningful.
const (
	CoeffAltLimitKm = 2000.0
	TraceAltLimitKm = 6378.0
)

// latTolerance is how far beyond +/-90 a latitude may sit (floating point
// slop from upstream pipelines) and still be clamped to the pole.
const latTolerance = 0.01

// CheckHeight applies the altitude policy for a conversion code. It
// returns false when the height cannot be converted under the code, after
// logging why. Heights below ground log a warning but are allowed.
func CheckHeight(heightKm float64, code Code) bool {
	if heightKm < 0 {
		log.Printf("aacgm: conversion not intended for altitudes < 0 km: %g", heightKm)
	}
	if heightKm > TraceAltLimitKm && !code.Has(BadIdea) {
		log.Printf("aacgm: coordinates are not intended for the magnetosphere (%g km); use badidea to override", heightKm)
		return false
	}
	if heightKm > CoeffAltLimitKm && code&(Trace|AllowTrace|BadIdea) == 0 {
		log.Printf("aacgm: coefficients are not valid above %.0f km; must either use field-line tracing (trace or allowtrace) or indicate you know this is a bad idea (badidea)", CoeffAltLimitKm)
		return false
	}
	return true
}

// NormalizeTime validates a conversion timestamp and moves it to UTC. A
// date without a clock component behaves as midnight UTC.
func NormalizeTime(t time.Time) (time.Time, error) {
	if t.IsZero() {
		return time.Time{}, fmt.Errorf("aacgm: a conversion date or datetime is required")
	}
	return t.UTC(), nil
}

// checkLat clamps latitudes marginally past the poles and rejects the rest.
func checkLat(latDeg float64) (float64, error) {
	if math.Abs(latDeg) > 90.0 {
		if math.Abs(latDeg) > 90.0+latTolerance {
			return 0, fmt.Errorf("aacgm: unrealistic latitude %g", latDeg)
		}
		latDeg = math.Copysign(90.0, latDeg)
	}
	return latDeg, nil
}

// checkLon rejects longitudes outside [-180, 360] and normalizes the rest
// into [-180, 180).
func checkLon(lonDeg float64) (float64, error) {
	if lonDeg < -180.0 || lonDeg > 360.0 {
		return 0, fmt.Errorf("aacgm: unrealistic longitude %g", lonDeg)
	}
	return geomag.WrapLon(lonDeg), nil
}
