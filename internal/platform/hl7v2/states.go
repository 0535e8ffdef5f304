package hl7v2

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownState reports a state name that matches no entry in the postal
// table. Unlike the defaulting normalizers this is fatal for the row: a
// wrong-but-plausible abbreviation would misroute the record.
var ErrUnknownState = errors.New("unknown state name")

// stateAbbreviations maps lower-cased US state, district, and territory
// names to their two-letter postal abbreviations.
var stateAbbreviations = map[string]string{
	"alabama":                  "AL",
	"alaska":                   "AK",
	"arizona":                  "AZ",
	"arkansas":                 "AR",
	"california":               "CA",
	"colorado":                 "CO",
	"connecticut":              "CT",
	"delaware":                 "DE",
	"florida":                  "FL",
	"georgia":                  "GA",
	"hawaii":                   "HI",
	"idaho":                    "ID",
	"illinois":                 "IL",
	"indiana":                  "IN",
	"iowa":                     "IA",
	"kansas":                   "KS",
	"kentucky":                 "KY",
	"louisiana":                "LA",
	"maine":                    "ME",
	"maryland":                 "MD",
	"massachusetts":            "MA",
	"michigan":                 "MI",
	"minnesota":                "MN",
	"mississippi":              "MS",
	"missouri":                 "MO",
	"montana":                  "MT",
	"nebraska":                 "NE",
	"nevada":                   "NV",
	"new hampshire":            "NH",
	"new jersey":               "NJ",
	"new mexico":               "NM",
	"new york":                 "NY",
	"north carolina":           "NC",
	"north dakota":             "ND",
	"ohio":                     "OH",
	"oklahoma":                 "OK",
	"oregon":                   "OR",
	"pennsylvania":             "PA",
	"rhode island":             "RI",
	"south carolina":           "SC",
	"south dakota":             "SD",
	"tennessee":                "TN",
	"texas":                    "TX",
	"utah":                     "UT",
	"vermont":                  "VT",
	"virginia":                 "VA",
	"washington":               "WA",
	"west virginia":            "WV",
	"wisconsin":                "WI",
	"wyoming":                  "WY",
	"district of columbia":     "DC",
	"american samoa":           "AS",
	"guam":                     "GU",
	"northern mariana islands": "MP",
	"puerto rico":              "PR",
	"u.s. virgin islands":      "VI",
	"virgin islands":           "VI",
}

// LookupStateAbbreviation resolves a full US state name to its postal
// abbreviation. Inputs of two characters or fewer (already-abbreviated or
// junk) yield "" without error; a longer name that matches nothing is
// ErrUnknownState.
func LookupStateAbbreviation(value any) (string, error) {
	raw := ReadString(value)
	if len(raw) <= 2 {
		return "", nil
	}
	abbr, ok := stateAbbreviations[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownState, raw)
	}
	return abbr, nil
}
