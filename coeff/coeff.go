// Package coeff manages where the coefficient files live. The native
// AACGM-v2 core and the IGRF loader both locate their tables through two
// environment variables, so configuration is process-wide by design;
// this package owns the defaulting rules for those variables.
package coeff

import (
	"os"
	"path/filepath"
)

const (
	// EnvIGRF names the IGRF coefficient table file.
	EnvIGRF = "IGRF_COEFFS"
	// EnvDatPrefix names the AACGM-v2 coefficient file prefix; the core
	// appends the epoch and extension to it.
	EnvDatPrefix = "AACGM_v2_DAT_PREFIX"

	// EnvDataDir relocates the bundled default data directory.
	EnvDataDir = "MAGCOORD_DATA_DIR"
)

// Default, passed to Set, selects the module default path. The NUL byte
// keeps it from colliding with any real filesystem path.
const Default = "\x00default"

const (
	defaultDataDir   = "data/coeffs"
	igrfFileName     = "igrf13coeffs.txt"
	aacgmCoeffPrefix = "aacgm_coeffs-13-"
)

func dataDir() string {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return dir
	}
	return defaultDataDir
}

// DefaultIGRF returns the module default IGRF table path.
func DefaultIGRF() string {
	return filepath.Join(dataDir(), igrfFileName)
}

// DefaultDatPrefix returns the module default AACGM coefficient prefix.
func DefaultDatPrefix() string {
	return filepath.Join(dataDir(), aacgmCoeffPrefix)
}

// Set configures both coefficient environment variables. For each value:
// Default applies the module default, an empty string leaves the variable
// untouched unless it is unset (the default is applied then), and any
// other string is written as given.
func Set(igrfFile, coeffPrefix string) error {
	if err := setVar(EnvIGRF, igrfFile, DefaultIGRF()); err != nil {
		return err
	}
	return setVar(EnvDatPrefix, coeffPrefix, DefaultDatPrefix())
}

func setVar(env, val, def string) error {
	switch val {
	case Default:
		return os.Setenv(env, def)
	case "":
		if _, ok := os.LookupEnv(env); !ok {
			return os.Setenv(env, def)
		}
		return nil
	default:
		return os.Setenv(env, val)
	}
}

// IGRFPath returns the effective IGRF table path: the environment when
// set, the module default otherwise.
func IGRFPath() string {
	if p := os.Getenv(EnvIGRF); p != "" {
		return p
	}
	return DefaultIGRF()
}

// DatPrefix returns the effective AACGM coefficient prefix.
func DatPrefix() string {
	if p := os.Getenv(EnvDatPrefix); p != "" {
		return p
	}
	return DefaultDatPrefix()
}
