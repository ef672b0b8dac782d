// Package igrf loads the standard IGRF coefficient table (the whitespace
// text format distributed as e.g. igrf13coeffs.txt) and interpolates Gauss
// coefficients to a point in time. Only the table handling lives here; what
// the coefficients are used for is up to the caller.
package igrf

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"magcoord/geomag"
)

// Kinds of Gauss coefficients in the table.
const (
	KindG byte = 'g'
	KindH byte = 'h'
)

// svYears is the span the secular-variation column extends the model past
// its final epoch.
const svYears = 5.0

var (
	ErrOutOfRange = errors.New("igrf: date outside model validity")
	ErrNoCoeff    = errors.New("igrf: no such coefficient")
)

type coeffKey struct {
	kind byte
	n    int
	m    int
}

// Model holds the parsed coefficient table.
type Model struct {
	Path   string
	Epochs []float64 // ascending decimal years, one per main-field column

	values map[coeffKey][]float64 // per-epoch values, len == len(Epochs)
	sv     map[coeffKey]float64   // secular variation, nT/year
	maxDeg int
}

// Load reads and parses a coefficient table from path.
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("igrf: open coefficients: %w", err)
	}
	defer f.Close()

	m := &Model{
		Path:   path,
		values: make(map[coeffKey][]float64),
		sv:     make(map[coeffKey]float64),
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "c/s", "cos/sin", "g/h":
			// The table carries two label rows; only the one whose columns
			// are decimal years defines the epochs.
			if len(fields) > 3 {
				if _, err := strconv.ParseFloat(fields[3], 64); err != nil {
					continue
				}
			}
			if err := m.parseHeader(fields); err != nil {
				return nil, fmt.Errorf("igrf: line %d: %w", lineNo, err)
			}
		case "g", "h":
			if len(m.Epochs) == 0 {
				return nil, fmt.Errorf("igrf: line %d: coefficient row before epoch header", lineNo)
			}
			if err := m.parseRow(fields); err != nil {
				return nil, fmt.Errorf("igrf: line %d: %w", lineNo, err)
			}
		default:
			// Title rows such as "IGRF13 coefficients ..." are ignored.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("igrf: read coefficients: %w", err)
	}
	if len(m.Epochs) == 0 || len(m.values) == 0 {
		return nil, fmt.Errorf("igrf: %s contains no coefficient table", path)
	}
	return m, nil
}

func (m *Model) parseHeader(fields []string) error {
	if len(fields) < 5 {
		return errors.New("epoch header too short")
	}
	// Columns: kind, degree, order, epochs..., secular-variation label
	// (e.g. "2020-25").
	cols := fields[3:]
	epochs := make([]float64, 0, len(cols))
	for i, col := range cols {
		v, err := strconv.ParseFloat(col, 64)
		if err != nil {
			if i == len(cols)-1 && strings.Contains(col, "-") {
				break // secular-variation span label
			}
			return fmt.Errorf("bad epoch column %q", col)
		}
		epochs = append(epochs, v)
	}
	if !sort.Float64sAreSorted(epochs) {
		return errors.New("epochs are not ascending")
	}
	m.Epochs = epochs
	return nil
}

func (m *Model) parseRow(fields []string) error {
	if len(fields) != len(m.Epochs)+4 {
		return fmt.Errorf("row for %s has %d fields, want %d",
			strings.Join(fields[:3], " "), len(fields), len(m.Epochs)+4)
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 1 {
		return fmt.Errorf("bad degree %q", fields[1])
	}
	mm, err := strconv.Atoi(fields[2])
	if err != nil || mm < 0 || mm > n {
		return fmt.Errorf("bad order %q", fields[2])
	}
	vals := make([]float64, len(m.Epochs))
	for i := 0; i < len(m.Epochs); i++ {
		v, err := strconv.ParseFloat(fields[3+i], 64)
		if err != nil {
			return fmt.Errorf("bad value %q", fields[3+i])
		}
		vals[i] = v
	}
	sv, err := strconv.ParseFloat(fields[len(fields)-1], 64)
	if err != nil {
		return fmt.Errorf("bad secular variation %q", fields[len(fields)-1])
	}
	key := coeffKey{kind: fields[0][0], n: n, m: mm}
	m.values[key] = vals
	m.sv[key] = sv
	if n > m.maxDeg {
		m.maxDeg = n
	}
	return nil
}

// MaxDegree reports the highest spherical-harmonic degree in the table.
func (m *Model) MaxDegree() int { return m.maxDeg }

// Validity returns the decimal-year span the model covers, including the
// secular-variation extension past the final epoch.
func (m *Model) Validity() (min, max float64) {
	return m.Epochs[0], m.Epochs[len(m.Epochs)-1] + svYears
}

// Contains reports whether t falls inside the model validity span.
func (m *Model) Contains(t time.Time) bool {
	y := geomag.DecimalYear(t)
	min, max := m.Validity()
	return y >= min && y <= max
}

// Gauss interpolates the coefficient (kind, n, m) to the instant t. Between
// epochs the value is linear; past the final epoch the secular-variation
// column extrapolates for up to five years.
func (m *Model) Gauss(kind byte, n, order int, t time.Time) (float64, error) {
	key := coeffKey{kind: kind, n: n, m: order}
	vals, ok := m.values[key]
	if !ok {
		return 0, fmt.Errorf("%w: %c(%d,%d)", ErrNoCoeff, kind, n, order)
	}
	y := geomag.DecimalYear(t)
	min, max := m.Validity()
	if y < min || y > max {
		return 0, fmt.Errorf("%w: %.2f not in [%.1f, %.1f]", ErrOutOfRange, y, min, max)
	}

	last := len(m.Epochs) - 1
	if y >= m.Epochs[last] {
		return vals[last] + m.sv[key]*(y-m.Epochs[last]), nil
	}
	i := sort.SearchFloat64s(m.Epochs, y)
	if i > 0 && m.Epochs[i] != y {
		i--
	}
	if i >= last {
		i = last - 1
	}
	span := m.Epochs[i+1] - m.Epochs[i]
	frac := (y - m.Epochs[i]) / span
	return vals[i] + (vals[i+1]-vals[i])*frac, nil
}

// Dipole returns the degree-one terms (g10, g11, h11) interpolated to t.
func (m *Model) Dipole(t time.Time) (g10, g11, h11 float64, err error) {
	if g10, err = m.Gauss(KindG, 1, 0, t); err != nil {
		return 0, 0, 0, err
	}
	if g11, err = m.Gauss(KindG, 1, 1, t); err != nil {
		return 0, 0, 0, err
	}
	if h11, err = m.Gauss(KindH, 1, 1, t); err != nil {
		return 0, 0, 0, err
	}
	return g10, g11, h11, nil
}
