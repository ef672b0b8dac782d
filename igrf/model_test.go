package igrf

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sample = "testdata/igrf_sample.txt"

func loadSample(t *testing.T) *Model {
	t.Helper()
	m, err := Load(sample)
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	return m
}

func TestLoadSample(t *testing.T) {
	m := loadSample(t)
	if got := len(m.Epochs); got != 3 {
		t.Fatalf("epochs = %d, want 3", got)
	}
	if m.Epochs[0] != 2010.0 || m.Epochs[2] != 2020.0 {
		t.Fatalf("unexpected epochs %v", m.Epochs)
	}
	if got := m.MaxDegree(); got != 2 {
		t.Fatalf("max degree = %d, want 2", got)
	}
	min, max := m.Validity()
	if min != 2010.0 || max != 2025.0 {
		t.Fatalf("validity = [%v, %v]", min, max)
	}
}

func TestGaussAtEpoch(t *testing.T) {
	m := loadSample(t)
	got, err := m.Gauss(KindG, 1, 0, time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-(-29441.46)) > 1e-9 {
		t.Fatalf("g10(2015.0) = %v", got)
	}
}

func TestGaussInterpolation(t *testing.T) {
	m := loadSample(t)
	// Halfway between 2010 and 2015.
	mid := time.Date(2012, 7, 2, 0, 0, 0, 0, time.UTC)
	got, err := m.Gauss(KindH, 1, 1, mid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := (4944.26 + 4795.99) / 2
	if math.Abs(got-want) > 0.2 {
		t.Fatalf("h11(2012.5) = %v, want near %v", got, want)
	}
}

func TestGaussSecularExtrapolation(t *testing.T) {
	m := loadSample(t)
	got, err := m.Gauss(KindG, 1, 0, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := -29404.8 + 5.7*2.0
	if math.Abs(got-want) > 0.1 {
		t.Fatalf("g10(2022.0) = %v, want near %v", got, want)
	}
}

func TestGaussOutOfRange(t *testing.T) {
	m := loadSample(t)
	for _, d := range []time.Time{
		time.Date(2009, 12, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
	} {
		if _, err := m.Gauss(KindG, 1, 0, d); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("expected ErrOutOfRange for %v, got %v", d, err)
		}
	}
	if m.Contains(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("Contains should be false past validity")
	}
}

func TestGaussUnknownCoefficient(t *testing.T) {
	m := loadSample(t)
	if _, err := m.Gauss(KindG, 9, 0, time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)); !errors.Is(err, ErrNoCoeff) {
		t.Fatalf("expected ErrNoCoeff, got %v", err)
	}
}

func TestDipoleTerms(t *testing.T) {
	m := loadSample(t)
	g10, g11, h11, err := m.Dipole(time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(g10-(-29441.46)) > 1e-6 || math.Abs(g11-(-1501.77)) > 1e-6 || math.Abs(h11-4795.99) > 1e-6 {
		t.Fatalf("dipole terms = %v %v %v", g10, g11, h11)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.txt")
	if err := os.WriteFile(path, []byte("g/h n m 2010.0 2020-25\ng 1 0 nope 5.7\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
