// Command magpole prints the centered dipole pole, axis, and subsolar point
// for a given date. Handy for sanity-checking a coefficient table.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"magcoord/coeff"
	"magcoord/geomag"
	"magcoord/igrf"
)

func main() {
	igrfPath := flag.String("igrf", "", "IGRF coefficient table (default from environment)")
	dateStr := flag.String("date", "", "date as YYYY-MM-DD (default today)")
	flag.Parse()

	path := *igrfPath
	if path == "" {
		path = coeff.IGRFPath()
	}

	t := time.Now().UTC()
	if *dateStr != "" {
		parsed, err := time.Parse("2006-01-02", *dateStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error parsing date: %v\n", err)
			os.Exit(1)
		}
		t = parsed
	}

	model, err := igrf.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading IGRF table: %v\n", err)
		os.Exit(1)
	}
	from, to := model.Validity()
	fmt.Printf("table: %s (valid %.1f to %.1f, degree %d)\n", path, from, to, model.MaxDegree())

	g10, g11, h11, err := model.Dipole(t)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error evaluating dipole terms: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("date: %s (decimal year %.3f)\n", t.Format("2006-01-02"), geomag.DecimalYear(t))
	fmt.Printf("dipole terms: g10=%.2f g11=%.2f h11=%.2f nT\n", g10, g11, h11)

	axis := geomag.DipoleAxis(g10, g11, h11)
	lat, lon := geomag.DipolePole(g10, g11, h11)
	fmt.Printf("dipole axis (ECEF): [%.6f, %.6f, %.6f]\n", axis.X, axis.Y, axis.Z)
	fmt.Printf("north magnetic pole: %.4f lat, %.4f lon\n", lat, lon)

	sslat, sslon, err := geomag.Subsolar(t)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error computing subsolar point: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("subsolar point: %.4f lat, %.4f lon\n", sslat, sslon)
}
