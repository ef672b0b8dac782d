package aacgm

import (
	"strings"
	"testing"
	"time"
)

func TestCheckHeightLowIsAccepted(t *testing.T) {
	buf := captureLog(t)
	if !CheckHeight(-1, A2G) {
		t.Fatal("below-ground heights should pass with a warning")
	}
	if !strings.Contains(buf.String(), "not intended for altitudes < 0 km") {
		t.Fatalf("missing warning, got %q", buf.String())
	}
}

func TestCheckHeightCoefficientLimit(t *testing.T) {
	buf := captureLog(t)
	if CheckHeight(CoeffAltLimitKm+10, A2G) {
		t.Fatal("coefficient evaluation above the limit should fail")
	}
	if !strings.Contains(buf.String(), "field-line tracing") {
		t.Fatalf("missing explanation, got %q", buf.String())
	}
	if !CheckHeight(CoeffAltLimitKm*0.5, A2G) {
		t.Fatal("a normal height should pass")
	}
	if !CheckHeight(CoeffAltLimitKm+10, Trace) {
		t.Fatal("tracing should lift the coefficient limit")
	}
	if !CheckHeight(CoeffAltLimitKm+10, AllowTrace) {
		t.Fatal("allowtrace should lift the coefficient limit")
	}
	if !CheckHeight(CoeffAltLimitKm+10, BadIdea) {
		t.Fatal("badidea should lift the coefficient limit")
	}
}

func TestCheckHeightTraceLimit(t *testing.T) {
	buf := captureLog(t)
	if CheckHeight(TraceAltLimitKm+10, Trace) {
		t.Fatal("tracing above one Earth radius should fail")
	}
	if !strings.Contains(buf.String(), "magnetosphere") {
		t.Fatalf("missing warning, got %q", buf.String())
	}
	if !CheckHeight(TraceAltLimitKm+10, BadIdea) {
		t.Fatal("badidea should lift the trace limit")
	}
	if !CheckHeight(70000, BadIdea) {
		t.Fatal("badidea lifts every altitude bound")
	}
}

func TestNormalizeTime(t *testing.T) {
	in := time.Date(2015, 1, 1, 10, 10, 10, 0, time.FixedZone("x", 3600))
	got, err := NormalizeTime(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Location() != time.UTC || !got.Equal(in) {
		t.Fatalf("NormalizeTime moved the instant: %v", got)
	}
	if _, err := NormalizeTime(time.Time{}); err == nil {
		t.Fatal("expected error for zero time")
	}
}

func TestCheckLatTolerance(t *testing.T) {
	if got, err := checkLat(90.005); err != nil || got != 90 {
		t.Fatalf("checkLat(90.005) = %v, %v", got, err)
	}
	if got, err := checkLat(-90.005); err != nil || got != -90 {
		t.Fatalf("checkLat(-90.005) = %v, %v", got, err)
	}
	if _, err := checkLat(90.02); err == nil {
		t.Fatal("expected error past the tolerance")
	}
}

func TestCheckLonRange(t *testing.T) {
	if got, err := checkLon(360); err != nil || got != 0 {
		t.Fatalf("checkLon(360) = %v, %v", got, err)
	}
	if got, err := checkLon(200); err != nil || got != -160 {
		t.Fatalf("checkLon(200) = %v, %v", got, err)
	}
	if _, err := checkLon(360.5); err == nil {
		t.Fatal("expected error past 360")
	}
}
