// Package aacgm is the front-end for Altitude-Adjusted Corrected
// Geomagnetic coordinate conversion. It owns input normalization,
// conversion-mode flags, altitude/latitude bounds policy, and magnetic
// local time plumbing, and hands the numerical work to an Engine.
package aacgm

import (
	"log"
	"strings"

	lev "github.com/agnivade/levenshtein"
)

// Code is the bit-flag set selecting conversion direction and behavior.
// The values match the native AACGM-v2 library so a compiled backend can
// take them unchanged.
type Code uint32

const (
	// G2A converts geographic to magnetic coordinates. It is the zero
	// value: every code without A2G set is a G2A conversion.
	G2A Code = 0
	// A2G converts magnetic back to geographic coordinates.
	A2G Code = 1 << 0
	// Trace forces field-line tracing instead of coefficient evaluation.
	Trace Code = 1 << 1
	// AllowTrace permits tracing above the coefficient altitude limit.
	AllowTrace Code = 1 << 2
	// BadIdea evaluates coefficients above their validity limit anyway.
	BadIdea Code = 1 << 3
	// Geocentric marks the inputs as geocentric rather than geodetic.
	Geocentric Code = 1 << 4
)

var codeNames = map[string]Code{
	"G2A":        G2A,
	"A2G":        A2G,
	"TRACE":      Trace,
	"ALLOWTRACE": AllowTrace,
	"BADIDEA":    BadIdea,
	"GEOCENTRIC": Geocentric,
}

// codeOrder keeps String output and suggestions deterministic.
var codeOrder = []string{"A2G", "TRACE", "ALLOWTRACE", "BADIDEA", "GEOCENTRIC"}

// Has reports whether all bits of flag are set.
func (c Code) Has(flag Code) bool {
	if flag == G2A {
		return c&A2G == 0
	}
	return c&flag == flag
}

func (c Code) String() string {
	if c == G2A {
		return "G2A"
	}
	var parts []string
	for _, name := range codeOrder {
		if c&codeNames[name] != 0 {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return "G2A"
	}
	return strings.Join(parts, "|")
}

// ParseCode interprets a method string such as "G2A|TRACE". Tokens are
// case-insensitive and may carry surrounding spaces. Any unrecognized
// token makes the whole result G2A, with a logged warning that names the
// nearest known token when one is plausibly close.
func ParseCode(s string) Code {
	code := G2A
	for _, tok := range strings.Split(s, "|") {
		name := strings.ToUpper(strings.TrimSpace(tok))
		flag, ok := codeNames[name]
		if !ok {
			if closest := closestCodeName(name); closest != "" {
				log.Printf("aacgm: unknown method code %q (did you mean %s?), using G2A", tok, closest)
			} else {
				log.Printf("aacgm: unknown method code %q, using G2A", tok)
			}
			return G2A
		}
		code |= flag
	}
	return code
}

// CodeFromBools assembles a Code from individual selections, mirroring the
// boolean-keyword calling convention of older interfaces.
func CodeFromBools(a2g, trace, allowtrace, badidea, geocentric bool) Code {
	code := G2A
	if a2g {
		code |= A2G
	}
	if trace {
		code |= Trace
	}
	if allowtrace {
		code |= AllowTrace
	}
	if badidea {
		code |= BadIdea
	}
	if geocentric {
		code |= Geocentric
	}
	return code
}

// closestCodeName returns the known token nearest to name by edit
// distance, or "" when nothing is close enough to be a likely typo.
func closestCodeName(name string) string {
	if name == "" {
		return ""
	}
	best := ""
	bestDist := 3 // anything further is not a typo worth suggesting
	for _, known := range append([]string{"G2A"}, codeOrder...) {
		d := lev.ComputeDistance(name, known)
		if d < bestDist {
			bestDist = d
			best = known
		}
	}
	return best
}
