package hl7v2

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
)

// EmptyField is the HL7 sentinel for an intentionally blank field position.
const EmptyField = "^"

// Date layouts accepted from the roster.
const (
	LayoutDate         = "01/02/06"       // lot expirations and other short dates
	LayoutDateTime     = "01/02/06 15:04" // short date with wall time
	LayoutISODate      = "2006-01-02"     // date of birth
	LayoutAdministered = "2006-01-02T15:04Z" // administered-at, UTC minute precision
)

// Rendered HL7 timestamp layouts.
const (
	hl7Date       = "20060102"
	hl7DateHour   = "2006010215"
	hl7DateTime   = "20060102150405"
)

// Normalized is the outcome of a normalizer that substitutes a default on
// bad input instead of failing. Defaulted reports that the value was not
// derived from the input, so callers can tell a fallback from a real match.
type Normalized struct {
	Value     string
	Defaulted bool
}

// ReadString converts a raw roster value to an HL7-safe token. An empty
// string becomes the caret sentinel; anything that is not a string at all
// becomes the empty string, which templates render as a blank field.
func ReadString(value any) string {
	s, ok := value.(string)
	if !ok {
		return ""
	}
	if s == "" {
		return EmptyField
	}
	return s
}

// NormalizeDate parses value against layout and renders it as an HL7
// numeric timestamp: YYYYMMDDHH for date-only layouts, YYYYMMDDHHMMSS when
// the layout carries a time component. Unparseable input yields "".
//
// Dates more than a year in the future are assumed to be two-digit-year
// rollover artifacts ("23" read as 2023 instead of 1923) and are pulled
// back a century.
func NormalizeDate(value any, layout string) string {
	return normalizeDate(value, layout, time.Now())
}

func normalizeDate(value any, layout string, now time.Time) string {
	s, ok := value.(string)
	if !ok {
		return ""
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return ""
	}
	t = correctCenturyRollover(t, now)
	if strings.Contains(layout, "15:04") {
		return t.Format(hl7DateTime)
	}
	return t.Format(hl7DateHour)
}

// correctCenturyRollover subtracts 100 years from dates at or past
// now+1y. The one-year grace keeps legitimately future dates (upcoming
// expirations) intact while catching century rollover.
func correctCenturyRollover(t, now time.Time) time.Time {
	if !t.Before(now.AddDate(1, 0, 0)) {
		return t.AddDate(-100, 0, 0)
	}
	return t
}

// NormalizePhone parses value as a US phone number and renders it as
// "AAA^NNNNNNN" (area code, caret, seven-digit subscriber number).
// Malformed input defaults to blank.
func NormalizePhone(value any) Normalized {
	s, ok := value.(string)
	if !ok || s == "" || s == EmptyField {
		return Normalized{Defaulted: true}
	}
	num, err := phonenumbers.Parse(s, "US")
	if err != nil || !phonenumbers.IsPossibleNumber(num) {
		return Normalized{Defaulted: true}
	}
	digits := strconv.FormatUint(num.GetNationalNumber(), 10)
	if len(digits) < 10 {
		return Normalized{Defaulted: true}
	}
	return Normalized{Value: digits[:3] + "^" + digits[len(digits)-7:]}
}

// textRule maps a predicate over the lower-cased input to a fixed coded
// value. Rules are evaluated in order; the first match wins.
type textRule struct {
	match func(s string) bool
	value string
}

func applyRules(rules []textRule, value any, def string) Normalized {
	raw := strings.ToLower(ReadString(value))
	for _, r := range rules {
		if r.match(raw) {
			return Normalized{Value: r.value}
		}
	}
	return Normalized{Value: def, Defaulted: true}
}

func prefix(p string) func(string) bool {
	return func(s string) bool { return strings.HasPrefix(s, p) }
}

func contains(sub string) func(string) bool {
	return func(s string) bool { return strings.Contains(s, sub) }
}

var genderRules = []textRule{
	{prefix("m"), "M"},
	{prefix("f"), "F"},
	{prefix("n"), "N"},
	// checked before the generic "o" prefix so "other - transgender"
	// style entries resolve to T
	{contains("transgender"), "T"},
	{prefix("o"), "O"},
}

// NormalizeGender maps free-text gender to an HL7 administrative sex code.
// Unrecognized input defaults to blank.
func NormalizeGender(value any) Normalized {
	return applyRules(genderRules, value, "")
}

var raceRules = []textRule{
	{prefix("w"), "2106-3^White"},
	{prefix("asian"), "2028-9^Asian"},
	{prefix("black"), "2054-5^Black"},
	{prefix("africa"), "2054-5^African_American"},
	{contains("alaska"), "1002-5^alaska_native"},
	{prefix("other"), "2131-1^Other_Race"},
	{contains("hawaii"), "2076-8^native_hawaiian"},
	{contains("pacific"), "2076-8^pacific_islander"},
}

// raceOther is the registry's catch-all race code; race never renders blank.
const raceOther = "2131-1^Other_Race"

// NormalizeRace maps free-text race to the registry's code^label pair.
// The output strings are part of the downstream parser contract and are
// preserved byte-for-byte, label casing included.
func NormalizeRace(value any) Normalized {
	return applyRules(raceRules, value, raceOther)
}

const (
	ethnicityNotHispanic = "2186-5^Not Hispanic or Latino"
	ethnicityHispanic    = "2135-2^Hispanic or Latino"
)

var ethnicityRules = []textRule{
	{prefix("not"), ethnicityNotHispanic},
	{prefix("hispanic"), ethnicityHispanic},
	{prefix("latino"), ethnicityHispanic},
}

// NormalizeEthnicity maps free-text ethnicity to the registry's code^label
// pair, defaulting to not-Hispanic. Never blank.
func NormalizeEthnicity(value any) Normalized {
	return applyRules(ethnicityRules, value, ethnicityNotHispanic)
}

var lotSeparators = regexp.MustCompile(`[\s-]+`)

// ExtractLotNumber returns the lot code from a "Vendor - Lot" formatted
// string: the last token after splitting on whitespace/hyphen runs. A bare
// lot code passes through unchanged.
func ExtractLotNumber(value any) string {
	parts := lotSeparators.Split(ReadString(value), -1)
	return parts[len(parts)-1]
}

// splitClinicianName splits a combined "First Last" medical professional
// string at its first space, stripping any remaining spaces from each
// half. With no space present the whole value is treated as the last name.
// ORC and RXA both use this split and must stay identical.
func splitClinicianName(full string) (first, last string) {
	idx := strings.Index(full, " ")
	if idx < 0 {
		return "", strings.TrimSpace(full)
	}
	first = strings.ReplaceAll(full[:idx], " ", "")
	last = strings.ReplaceAll(full[idx:], " ", "")
	return first, last
}
