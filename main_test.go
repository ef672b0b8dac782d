package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"magcoord/coeff"
	"magcoord/sites"
)

// testConfig writes a config file whose state lives under a temporary
// directory and points the coefficient env vars at the bundled sample
// table. Returns the config path and the temp directory.
func testConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	body := "sites:\n  db_path: " + filepath.Join(dir, "sites.db") + "\n" +
		"cache:\n  dir: " + filepath.Join(dir, "cache") + "\n"
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(coeff.EnvIGRF, filepath.Join("igrf", "testdata", "igrf_sample.txt"))
	t.Setenv(coeff.EnvDatPrefix, filepath.Join(dir, "aacgm_coeffs-13-"))
	return path, dir
}

func TestRunBatchPlainText(t *testing.T) {
	cfgPath, _ := testConfig(t)
	in := strings.NewReader("60 0 300\n# comment\n\n45.5 -120.25 0\n")
	var out bytes.Buffer

	err := run([]string{"-config", cfgPath, "-date", "2015-06-01"}, in, &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("output lines = %d: %q", len(lines), out.String())
	}
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) != 3 {
			t.Fatalf("line %q", line)
		}
		for _, f := range fields {
			if _, err := strconv.ParseFloat(f, 64); err != nil {
				t.Fatalf("non-numeric field %q", f)
			}
		}
	}
}

func TestRunBatchJSON(t *testing.T) {
	cfgPath, _ := testConfig(t)
	in := strings.NewReader("60 0 300\n")
	var out bytes.Buffer

	err := run([]string{"-config", cfgPath, "-date", "2015-06-01", "-json"}, in, &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var results []result
	if err := json.Unmarshal(out.Bytes(), &results); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out.String())
	}
	if len(results) != 1 {
		t.Fatalf("results = %+v", results)
	}
	if results[0].Lat != 60 || results[0].HeightKm != 300 {
		t.Fatalf("echoed input mismatch: %+v", results[0])
	}
	if math.IsNaN(float64(results[0].MLat)) {
		t.Fatal("expected a defined conversion")
	}
}

func TestRunRoundTrip(t *testing.T) {
	cfgPath, _ := testConfig(t)

	var fwd bytes.Buffer
	err := run([]string{"-config", cfgPath, "-date", "2015-06-01"},
		strings.NewReader("60 0 300\n"), &fwd)
	if err != nil {
		t.Fatalf("forward run: %v", err)
	}
	fields := strings.Fields(strings.TrimSpace(fwd.String()))
	if len(fields) != 3 {
		t.Fatalf("forward output %q", fwd.String())
	}

	var back bytes.Buffer
	err = run([]string{"-config", cfgPath, "-date", "2015-06-01", "-a2g"},
		strings.NewReader(fields[0]+" "+fields[1]+" 300\n"), &back)
	if err != nil {
		t.Fatalf("inverse run: %v", err)
	}
	got := strings.Fields(strings.TrimSpace(back.String()))
	lat, _ := strconv.ParseFloat(got[0], 64)
	lon, _ := strconv.ParseFloat(got[1], 64)
	if math.Abs(lat-60) > 0.01 || math.Abs(lon-0) > 0.01 {
		t.Fatalf("round trip gave (%v, %v)", lat, lon)
	}
}

func TestRunMLTMode(t *testing.T) {
	cfgPath, _ := testConfig(t)
	var out bytes.Buffer

	err := run([]string{"-config", cfgPath, "-date", "2015-06-01", "-mlt"},
		strings.NewReader("0\n90\n"), &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("output %q", out.String())
	}
	for _, line := range lines {
		v, err := strconv.ParseFloat(line, 64)
		if err != nil || v < 0 || v >= 24 {
			t.Fatalf("MLT value %q", line)
		}
	}
}

func TestRunCoordMode(t *testing.T) {
	cfgPath, _ := testConfig(t)
	var out bytes.Buffer

	err := run([]string{"-config", cfgPath, "-date", "2015-06-01", "-coord"},
		strings.NewReader("60 0 300\n"), &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	fields := strings.Fields(strings.TrimSpace(out.String()))
	if len(fields) != 3 {
		t.Fatalf("output %q", out.String())
	}
	mlt, err := strconv.ParseFloat(fields[2], 64)
	if err != nil || mlt < 0 || mlt >= 24 {
		t.Fatalf("mlt field %q", fields[2])
	}
}

func TestRunCoordRejectsA2G(t *testing.T) {
	cfgPath, _ := testConfig(t)
	var out bytes.Buffer
	err := run([]string{"-config", cfgPath, "-date", "2015-06-01", "-coord", "-a2g"},
		strings.NewReader(""), &out)
	if err == nil {
		t.Fatal("expected error combining -coord and -a2g")
	}
}

func TestRunSiteLookup(t *testing.T) {
	cfgPath, dir := testConfig(t)

	db, err := sites.Open(filepath.Join(dir, "sites.db"))
	if err != nil {
		t.Fatalf("open sites: %v", err)
	}
	if err := db.Upsert(sites.Site{Name: "tromso", Lat: 69.58, Lon: 19.23, HeightKm: 0.1}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	db.Close()

	var out bytes.Buffer
	err = run([]string{"-config", cfgPath, "-date", "2015-06-01", "-site", "tromso"}, strings.NewReader(""), &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(strings.Fields(strings.TrimSpace(out.String()))) != 3 {
		t.Fatalf("output %q", out.String())
	}
}

func TestRunSiteUnknown(t *testing.T) {
	cfgPath, _ := testConfig(t)
	var out bytes.Buffer
	err := run([]string{"-config", cfgPath, "-site", "atlantis"}, strings.NewReader(""), &out)
	if err == nil {
		t.Fatal("expected error for unknown site")
	}
}

func TestRunImportSites(t *testing.T) {
	cfgPath, _ := testConfig(t)
	var out bytes.Buffer
	plistPath := filepath.Join("sites", "testdata", "sites.plist")
	err := run([]string{"-config", cfgPath, "-import-sites", plistPath}, strings.NewReader(""), &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "imported 3 sites") {
		t.Fatalf("output %q", out.String())
	}
}

func TestRunWithCache(t *testing.T) {
	cfgPath, _ := testConfig(t)
	input := "60 0 300\n"

	var first bytes.Buffer
	err := run([]string{"-config", cfgPath, "-date", "2015-06-01", "-cache"},
		strings.NewReader(input), &first)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	var second bytes.Buffer
	err = run([]string{"-config", cfgPath, "-date", "2015-06-01", "-cache"},
		strings.NewReader(input), &second)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if first.String() != second.String() {
		t.Fatalf("cached output differs:\n%q\n%q", first.String(), second.String())
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	cfgPath, _ := testConfig(t)
	var out bytes.Buffer
	err := run([]string{"-config", cfgPath, "-date", "2015-06-01"},
		strings.NewReader("sixty zero 300\n"), &out)
	if err == nil {
		t.Fatal("expected error for non-numeric input")
	}
}

func TestRunRejectsBadDate(t *testing.T) {
	cfgPath, _ := testConfig(t)
	var out bytes.Buffer
	err := run([]string{"-config", cfgPath, "-date", "junk"}, strings.NewReader(""), &out)
	if err == nil {
		t.Fatal("expected error for bad date")
	}
}

func TestParseLocation(t *testing.T) {
	lat, lon, h, err := parseLocation("45.5 -120.25 300")
	if err != nil || lat != 45.5 || lon != -120.25 || h != 300 {
		t.Fatalf("got (%v, %v, %v, %v)", lat, lon, h, err)
	}
	_, _, h, err = parseLocation("45.5 -120.25")
	if err != nil || h != 0 {
		t.Fatalf("two-field parse: h=%v err=%v", h, err)
	}
	if _, _, _, err := parseLocation("45.5"); err == nil {
		t.Fatal("expected error for one field")
	}
	if _, _, _, err := parseLocation("a b c"); err == nil {
		t.Fatal("expected error for non-numeric fields")
	}
}

func TestParseDate(t *testing.T) {
	got, err := parseDate("2015-06-01")
	if err != nil || got.Year() != 2015 || got.Month() != 6 {
		t.Fatalf("got %v, %v", got, err)
	}
	got, err = parseDate("2015-06-01T12:30:00Z")
	if err != nil || got.Hour() != 12 {
		t.Fatalf("got %v, %v", got, err)
	}
	if now, err := parseDate(""); err != nil || now.IsZero() {
		t.Fatalf("empty date: %v, %v", now, err)
	}
	if _, err := parseDate("yesterday"); err == nil {
		t.Fatal("expected error")
	}
}

func TestJSONFloatMarshalsNaNAsNull(t *testing.T) {
	data, err := json.Marshal(result{MLat: jsonFloat(math.NaN())})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"mlat":null`) {
		t.Fatalf("encoded %s", data)
	}
}
