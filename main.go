// Program magconv converts between geodetic and magnetic coordinates on the
// command line. It reads "lat lon height" lines (or magnetic longitudes in
// MLT mode), runs them through the conversion engine, and writes plain text
// or JSON results. Named sites, a persistent result cache, and coefficient
// downloads are wired through the configuration file.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"magcoord/aacgm"
	"magcoord/aacgm/dipole"
	"magcoord/coeff"
	"magcoord/config"
	"magcoord/convcache"
	"magcoord/igrf"
	"magcoord/sites"

	"github.com/dustin/go-humanize"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/term"
)

const (
	defaultConfigPath = "config.yaml"
	envConfigPath     = "MAGCONV_CONFIG"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type options struct {
	configPath  string
	date        string
	a2g         bool
	trace       bool
	allowTrace  bool
	badIdea     bool
	geocentric  bool
	mlt         bool
	m2a         bool
	coord       bool
	jsonOut     bool
	site        string
	importSites string
	fetch       bool
	cache       bool
	input       string
}

// jsonFloat renders NaN as null so undefined locations survive encoding.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(f)) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(f), 'g', -1, 64), nil
}

// result is one converted location.
type result struct {
	Lat      float64   `json:"lat"`
	Lon      float64   `json:"lon"`
	HeightKm float64   `json:"height_km"`
	MLat     jsonFloat `json:"mlat"`
	MLon     jsonFloat `json:"mlon"`
	R        jsonFloat `json:"r"`
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "magconv: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	var opts options
	fs := flag.NewFlagSet("magconv", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "configuration file (default $MAGCONV_CONFIG or "+defaultConfigPath+")")
	fs.StringVar(&opts.date, "date", "", "conversion date, YYYY-MM-DD or RFC 3339 (default now)")
	fs.BoolVar(&opts.a2g, "a2g", false, "convert magnetic to geodetic instead of geodetic to magnetic")
	fs.BoolVar(&opts.trace, "trace", false, "use field-line tracing")
	fs.BoolVar(&opts.allowTrace, "allowtrace", false, "allow tracing above the coefficient altitude limit")
	fs.BoolVar(&opts.badIdea, "badidea", false, "use coefficients above their altitude limit")
	fs.BoolVar(&opts.geocentric, "geocentric", false, "treat latitudes as geocentric")
	fs.BoolVar(&opts.mlt, "mlt", false, "MLT mode: convert magnetic longitudes to magnetic local time")
	fs.BoolVar(&opts.m2a, "m2a", false, "with -mlt, convert magnetic local time to magnetic longitude")
	fs.BoolVar(&opts.coord, "coord", false, "output magnetic latitude, longitude and local time instead of mlat mlon r")
	fs.BoolVar(&opts.jsonOut, "json", false, "write results as JSON")
	fs.StringVar(&opts.site, "site", "", "convert the named site from the catalog instead of reading input")
	fs.StringVar(&opts.importSites, "import-sites", "", "import sites from a property list file and exit")
	fs.BoolVar(&opts.fetch, "fetch", false, "download the IGRF coefficient table before converting")
	fs.BoolVar(&opts.cache, "cache", false, "enable the result cache regardless of configuration")
	fs.StringVar(&opts.input, "in", "", "input file (default stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	fanout, err := setupLogging(cfg.Logging, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "magconv: file logging unavailable: %v\n", err)
	}
	defer fanout.Close()
	log.SetFlags(0)
	log.SetOutput(fanout)

	if err := coeff.Set(cfg.Paths.IGRFCoeffs, cfg.Paths.CoeffPrefix); err != nil {
		return fmt.Errorf("set coefficient paths: %w", err)
	}

	if opts.fetch {
		if err := fetchCoefficients(stdout); err != nil {
			return err
		}
	}

	if opts.importSites != "" {
		return importSites(cfg.Sites.DBPath, opts.importSites, stdout)
	}

	t, err := parseDate(opts.date)
	if err != nil {
		return err
	}

	model, err := igrf.Load(coeff.IGRFPath())
	if err != nil {
		return fmt.Errorf("load IGRF table: %w", err)
	}
	conv := aacgm.New(dipole.New(model))

	if opts.mlt || opts.m2a {
		return runMLT(conv, t, opts, stdin, stdout)
	}

	if opts.coord {
		if opts.a2g {
			return errors.New("-coord computes magnetic coordinates and cannot be combined with -a2g")
		}
		method := aacgm.CodeFromBools(false, opts.trace, opts.allowTrace, opts.badIdea, opts.geocentric)
		if !opts.trace && !opts.allowTrace && !opts.badIdea {
			method |= aacgm.DefaultMethod
		}
		return runCoords(conv, t, method, opts, stdin, stdout)
	}

	code := aacgm.CodeFromBools(opts.a2g, opts.trace, opts.allowTrace, opts.badIdea, opts.geocentric)

	var cache *convcache.Store
	if opts.cache || cfg.Cache.Enabled {
		cache, err = convcache.Open(cfg.Cache.Dir, convcache.Options{})
		if err != nil {
			return fmt.Errorf("open result cache: %w", err)
		}
		defer cache.Close()
	}

	if opts.site != "" {
		return runSite(conv, cfg.Sites.DBPath, opts.site, t, code, opts.jsonOut, stdout)
	}
	return runBatch(conv, cache, t, code, opts, stdin, stdout)
}

func loadConfig(path string) (*config.Config, error) {
	explicit := path != ""
	if path == "" {
		path = os.Getenv(envConfigPath)
	}
	if path == "" {
		path = defaultConfigPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		// A missing default config is fine; an explicit one is not.
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q (want YYYY-MM-DD or RFC 3339)", s)
}

func fetchCoefficients(stdout io.Writer) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	res, err := coeff.Fetch(ctx, coeff.DefaultIGRFURL, coeff.IGRFPath())
	if err != nil {
		return fmt.Errorf("fetch IGRF table: %w", err)
	}
	switch res.Status {
	case coeff.StatusNotModified:
		fmt.Fprintf(stdout, "IGRF table is up to date (%s)\n", coeff.IGRFPath())
	default:
		fmt.Fprintf(stdout, "downloaded %s bytes to %s\n", humanize.Comma(res.Bytes), coeff.IGRFPath())
	}
	return nil
}

func importSites(dbPath, plistPath string, stdout io.Writer) error {
	db, err := sites.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	n, err := db.ImportPlist(plistPath)
	if err != nil {
		return err
	}
	total, err := db.Count()
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "imported %s sites (%s total)\n", humanize.Comma(int64(n)), humanize.Comma(int64(total)))
	return nil
}

func runSite(conv *aacgm.Converter, dbPath, name string, t time.Time, code aacgm.Code, asJSON bool, stdout io.Writer) error {
	db, err := sites.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	site, err := db.Lookup(name)
	if err != nil {
		return err
	}
	mlat, mlon, r, err := conv.ConvertLatLon(site.Lat, site.Lon, site.HeightKm, t, code)
	if err != nil {
		return err
	}
	res := result{Lat: site.Lat, Lon: site.Lon, HeightKm: site.HeightKm, MLat: jsonFloat(mlat), MLon: jsonFloat(mlon), R: jsonFloat(r)}
	return writeResults(stdout, []result{res}, asJSON)
}

func runMLT(conv *aacgm.Converter, t time.Time, opts options, stdin io.Reader, stdout io.Writer) error {
	values, err := readValues(opts.input, stdin)
	if err != nil {
		return err
	}
	out, err := conv.ConvertMLT(values, []time.Time{t}, opts.m2a)
	if err != nil {
		return err
	}
	if opts.jsonOut {
		enc := json.NewEncoder(stdout)
		return enc.Encode(out)
	}
	for _, v := range out {
		fmt.Fprintf(stdout, "%.6f\n", v)
	}
	return nil
}

// coordResult is one location with its magnetic local time.
type coordResult struct {
	Lat      float64   `json:"lat"`
	Lon      float64   `json:"lon"`
	HeightKm float64   `json:"height_km"`
	MLat     jsonFloat `json:"mlat"`
	MLon     jsonFloat `json:"mlon"`
	MLT      jsonFloat `json:"mlt"`
}

func runCoords(conv *aacgm.Converter, t time.Time, method aacgm.Code, opts options, stdin io.Reader, stdout io.Writer) error {
	in, closeIn, interactive, err := openInput(opts.input, stdin)
	if err != nil {
		return err
	}
	defer closeIn()
	if interactive {
		fmt.Fprintln(os.Stderr, "reading \"lat lon height_km\" lines from stdin (Ctrl+D to finish)")
	}

	var results []coordResult
	scanner := bufio.NewScanner(in)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lat, lon, h, err := parseLocation(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		mlat, mlon, mlt, err := conv.GetCoord(lat, lon, h, t, method)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		results = append(results, coordResult{Lat: lat, Lon: lon, HeightKm: h, MLat: jsonFloat(mlat), MLon: jsonFloat(mlon), MLT: jsonFloat(mlt)})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	if opts.jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for _, r := range results {
		if _, err := fmt.Fprintf(stdout, "%.6f %.6f %.6f\n", r.MLat, r.MLon, r.MLT); err != nil {
			return err
		}
	}
	return nil
}

func runBatch(conv *aacgm.Converter, cache *convcache.Store, t time.Time, code aacgm.Code, opts options, stdin io.Reader, stdout io.Writer) error {
	in, closeIn, interactive, err := openInput(opts.input, stdin)
	if err != nil {
		return err
	}
	defer closeIn()
	if interactive {
		fmt.Fprintln(os.Stderr, "reading \"lat lon height_km\" lines from stdin (Ctrl+D to finish)")
	}

	var results []result
	cacheHits := 0
	scanner := bufio.NewScanner(in)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lat, lon, h, err := parseLocation(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}

		if cache != nil {
			if mlat, mlon, r, ok, err := cache.Get(t, code, lat, lon, h); err == nil && ok {
				cacheHits++
				results = append(results, result{Lat: lat, Lon: lon, HeightKm: h, MLat: jsonFloat(mlat), MLon: jsonFloat(mlon), R: jsonFloat(r)})
				continue
			}
		}

		mlat, mlon, r, err := conv.ConvertLatLon(lat, lon, h, t, code)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		if cache != nil {
			if err := cache.Put(t, code, lat, lon, h, mlat, mlon, r); err != nil {
				log.Printf("cache write failed: %v", err)
			}
		}
		results = append(results, result{Lat: lat, Lon: lon, HeightKm: h, MLat: jsonFloat(mlat), MLon: jsonFloat(mlon), R: jsonFloat(r)})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	if err := writeResults(stdout, results, opts.jsonOut); err != nil {
		return err
	}
	summary := fmt.Sprintf("converted %s locations", humanize.Comma(int64(len(results))))
	if cache != nil {
		summary += fmt.Sprintf(" (%s cache hits)", humanize.Comma(int64(cacheHits)))
	}
	log.Print(summary)
	return nil
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), bool, error) {
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, false, fmt.Errorf("open input: %w", err)
		}
		return f, func() { f.Close() }, false, nil
	}
	interactive := false
	if f, ok := stdin.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}
	return stdin, func() {}, interactive, nil
}

func readValues(path string, stdin io.Reader) ([]float64, error) {
	in, closeIn, _, err := openInput(path, stdin)
	if err != nil {
		return nil, err
	}
	defer closeIn()
	var values []float64
	scanner := bufio.NewScanner(in)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad value %q", lineNo, line)
		}
		values = append(values, v)
	}
	return values, scanner.Err()
}

// parseLocation splits a "lat lon height_km" line. Height may be omitted
// and defaults to the surface.
func parseLocation(line string) (lat, lon, h float64, err error) {
	fields := strings.Fields(line)
	if len(fields) != 2 && len(fields) != 3 {
		return 0, 0, 0, fmt.Errorf("want \"lat lon [height_km]\", got %q", line)
	}
	if lat, err = strconv.ParseFloat(fields[0], 64); err != nil {
		return 0, 0, 0, fmt.Errorf("bad latitude %q", fields[0])
	}
	if lon, err = strconv.ParseFloat(fields[1], 64); err != nil {
		return 0, 0, 0, fmt.Errorf("bad longitude %q", fields[1])
	}
	if len(fields) == 3 {
		if h, err = strconv.ParseFloat(fields[2], 64); err != nil {
			return 0, 0, 0, fmt.Errorf("bad height %q", fields[2])
		}
	}
	return lat, lon, h, nil
}

func writeResults(w io.Writer, results []result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for _, r := range results {
		if _, err := fmt.Fprintf(w, "%.6f %.6f %.6f\n", r.MLat, r.MLon, r.R); err != nil {
			return err
		}
	}
	return nil
}
