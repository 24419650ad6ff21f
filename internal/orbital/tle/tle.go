// Package tle decodes and validates NORAD Two-Line Element sets.
//
// Parsing is strict: both lines must be exactly 69 characters, carry the
// correct leading character, pass the modulo-10 checksum, and agree on the
// catalog number. Angles are harmonized to radians and mean motion to
// radians per minute so downstream propagation never re-converts units.
package tle

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const lineLength = 69

// ParseError describes a TLE that failed validation.
type ParseError struct {
	Line   int    // 1 or 2; 0 when the failure spans both lines
	Field  string // offending field, empty for structural failures
	Reason string
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("tle: line %d field %s: %s", e.Line, e.Field, e.Reason)
	}
	if e.Line != 0 {
		return fmt.Sprintf("tle: line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("tle: %s", e.Reason)
}

// MeanElements holds the orbital elements extracted from a TLE after unit
// harmonization. Immutable after construction.
type MeanElements struct {
	NoradID int
	Epoch   time.Time // UTC, full fractional-day precision

	MeanMotionRadMin float64 // rad/min
	Eccentricity     float64
	InclinationRad   float64
	RAANRad          float64
	ArgPerigeeRad    float64
	MeanAnomalyRad   float64
	BStar            float64

	MeanMotionDot  float64 // rev/day², as encoded
	MeanMotionDDot float64 // rev/day³, as encoded
}

// TLE pairs the validated source lines with their decoded elements. The
// raw lines are retained because the propagation model is initialized
// from them.
type TLE struct {
	Line1 string
	Line2 string
	MeanElements
}

// PeriodMinutes returns the mean orbital period.
func (e *MeanElements) PeriodMinutes() float64 {
	return 2 * math.Pi / e.MeanMotionRadMin
}

// Parse validates both lines and extracts mean elements.
func Parse(line1, line2 string) (*TLE, error) {
	line1 = strings.TrimRight(line1, "\r\n")
	line2 = strings.TrimRight(line2, "\r\n")

	if len(line1) != lineLength {
		return nil, &ParseError{Line: 1, Reason: fmt.Sprintf("length %d, want %d", len(line1), lineLength)}
	}
	if len(line2) != lineLength {
		return nil, &ParseError{Line: 2, Reason: fmt.Sprintf("length %d, want %d", len(line2), lineLength)}
	}
	if !strings.HasPrefix(line1, "1 ") {
		return nil, &ParseError{Line: 1, Reason: `must start with "1 "`}
	}
	if !strings.HasPrefix(line2, "2 ") {
		return nil, &ParseError{Line: 2, Reason: `must start with "2 "`}
	}
	if err := verifyChecksum(1, line1); err != nil {
		return nil, err
	}
	if err := verifyChecksum(2, line2); err != nil {
		return nil, err
	}

	norad1, err := parseInt(1, "catalog number", line1[2:7])
	if err != nil {
		return nil, err
	}
	norad2, err := parseInt(2, "catalog number", line2[2:7])
	if err != nil {
		return nil, err
	}
	if norad1 != norad2 {
		return nil, &ParseError{Reason: fmt.Sprintf("catalog numbers disagree: %d vs %d", norad1, norad2)}
	}

	epochYear, err := parseInt(1, "epoch year", line1[18:20])
	if err != nil {
		return nil, err
	}
	epochDay, err := parseFloat(1, "epoch day", line1[20:32])
	if err != nil {
		return nil, err
	}
	if epochDay < 1.0 || epochDay >= 367.0 {
		return nil, &ParseError{Line: 1, Field: "epoch day", Reason: fmt.Sprintf("%g outside [1, 367)", epochDay)}
	}

	ndot, err := parseFloat(1, "mean motion dot", line1[33:43])
	if err != nil {
		return nil, err
	}
	nddot, err := parseImpliedDecimal(1, "mean motion ddot", line1[44:52])
	if err != nil {
		return nil, err
	}
	bstar, err := parseImpliedDecimal(1, "bstar", line1[53:61])
	if err != nil {
		return nil, err
	}

	inclDeg, err := parseFloat(2, "inclination", line2[8:16])
	if err != nil {
		return nil, err
	}
	if inclDeg < 0 || inclDeg > 180 {
		return nil, &ParseError{Line: 2, Field: "inclination", Reason: fmt.Sprintf("%g outside [0, 180]", inclDeg)}
	}
	raanDeg, err := parseFloat(2, "raan", line2[17:25])
	if err != nil {
		return nil, err
	}
	ecc, err := parseFloat(2, "eccentricity", "0."+strings.TrimSpace(line2[26:33]))
	if err != nil {
		return nil, err
	}
	if ecc < 0 || ecc >= 1 {
		return nil, &ParseError{Line: 2, Field: "eccentricity", Reason: fmt.Sprintf("%g outside [0, 1)", ecc)}
	}
	argpDeg, err := parseFloat(2, "argument of perigee", line2[34:42])
	if err != nil {
		return nil, err
	}
	maDeg, err := parseFloat(2, "mean anomaly", line2[43:51])
	if err != nil {
		return nil, err
	}
	meanMotion, err := parseFloat(2, "mean motion", line2[52:63])
	if err != nil {
		return nil, err
	}
	if meanMotion <= 0 {
		return nil, &ParseError{Line: 2, Field: "mean motion", Reason: fmt.Sprintf("%g must be positive", meanMotion)}
	}

	year := 1900 + epochYear
	if epochYear < 57 {
		year = 2000 + epochYear
	}

	const degToRad = math.Pi / 180.0
	return &TLE{
		Line1: line1,
		Line2: line2,
		MeanElements: MeanElements{
			NoradID:          norad1,
			Epoch:            epochTime(year, epochDay),
			MeanMotionRadMin: meanMotion * 2 * math.Pi / 1440.0,
			Eccentricity:     ecc,
			InclinationRad:   inclDeg * degToRad,
			RAANRad:          raanDeg * degToRad,
			ArgPerigeeRad:    argpDeg * degToRad,
			MeanAnomalyRad:   maDeg * degToRad,
			BStar:            bstar,
			MeanMotionDot:    ndot,
			MeanMotionDDot:   nddot,
		},
	}, nil
}

// epochTime assembles the UTC epoch from a year and fractional day-of-year.
// The fractional day converts to nanoseconds in one step; an intermediate
// whole-seconds truncation would discard the sub-second part of the epoch.
func epochTime(year int, dayOfYear float64) time.Time {
	day := math.Floor(dayOfYear)
	fracNanos := math.Round((dayOfYear - day) * 86400.0 * 1e9)

	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return jan1.
		AddDate(0, 0, int(day)-1).
		Add(time.Duration(fracNanos) * time.Nanosecond)
}

// verifyChecksum checks the modulo-10 line checksum: digits contribute
// their value, minus signs contribute one, everything else zero.
func verifyChecksum(lineNo int, line string) error {
	sum := 0
	for _, c := range line[:lineLength-1] {
		switch {
		case c >= '0' && c <= '9':
			sum += int(c - '0')
		case c == '-':
			sum++
		}
	}
	want := line[lineLength-1]
	if want < '0' || want > '9' {
		return &ParseError{Line: lineNo, Field: "checksum", Reason: fmt.Sprintf("%q is not a digit", want)}
	}
	if byte(sum%10)+'0' != want {
		return &ParseError{Line: lineNo, Field: "checksum", Reason: fmt.Sprintf("computed %d, line carries %c", sum%10, want)}
	}
	return nil
}

// parseImpliedDecimal decodes the TLE exponential fields (BSTAR and the
// second mean-motion derivative), e.g. " 10270-3" -> 0.10270e-3.
func parseImpliedDecimal(lineNo int, field, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	sign := 1.0
	if s[0] == '-' {
		sign = -1.0
		s = s[1:]
	} else if s[0] == '+' {
		s = s[1:]
	}

	// Exponent is the trailing signed digit.
	expIdx := strings.LastIndexAny(s, "+-")
	if expIdx <= 0 {
		return 0, &ParseError{Line: lineNo, Field: field, Reason: fmt.Sprintf("malformed exponent in %q", s)}
	}
	mantissa, err := strconv.ParseFloat("0."+s[:expIdx], 64)
	if err != nil {
		return 0, &ParseError{Line: lineNo, Field: field, Reason: err.Error()}
	}
	exp, err := strconv.Atoi(s[expIdx:])
	if err != nil {
		return 0, &ParseError{Line: lineNo, Field: field, Reason: err.Error()}
	}
	return sign * mantissa * math.Pow(10, float64(exp)), nil
}

func parseFloat(lineNo int, field, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, &ParseError{Line: lineNo, Field: field, Reason: err.Error()}
	}
	return v, nil
}

func parseInt(lineNo int, field, s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &ParseError{Line: lineNo, Field: field, Reason: err.Error()}
	}
	return v, nil
}
