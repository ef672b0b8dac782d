package aacgm

import (
	"fmt"
	"time"

	"magcoord/geomag"
)

// ConvertMLT converts magnetic longitudes (degrees) to magnetic local time
// (hours), or the inverse when m2a is true. times must hold either a
// single shared timestamp or one per value. Inputs wrap: longitudes are
// taken mod 360 and local times mod 24, so 25 h equals 1 h and 361 deg
// equals 1 deg.
func (c *Converter) ConvertMLT(values []float64, times []time.Time, m2a bool) ([]float64, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("aacgm: empty input")
	}
	switch len(times) {
	case 1, len(values):
	default:
		return nil, fmt.Errorf("aacgm: %d timestamps for %d values", len(times), len(values))
	}

	norm := make([]time.Time, len(times))
	for i, t := range times {
		nt, err := NormalizeTime(t)
		if err != nil {
			return nil, err
		}
		norm[i] = nt
	}

	out := make([]float64, len(values))
	for i, v := range values {
		t := norm[0]
		if len(norm) > 1 {
			t = norm[i]
		}
		var err error
		if m2a {
			out[i], err = c.eng.InvMLTConvert(t, geomag.Wrap24(v))
		} else {
			out[i], err = c.eng.MLTConvert(t, geomag.WrapLon(v))
		}
		if err != nil {
			return nil, fmt.Errorf("aacgm: mlt conversion: %w", err)
		}
	}
	return out, nil
}

// ConvertMLTAt is ConvertMLT with one timestamp shared by every value.
func (c *Converter) ConvertMLTAt(values []float64, t time.Time, m2a bool) ([]float64, error) {
	return c.ConvertMLT(values, []time.Time{t}, m2a)
}
