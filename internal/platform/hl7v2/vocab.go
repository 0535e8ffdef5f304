package hl7v2

import (
	"errors"
	"fmt"
	"strings"
)

// Code is a resolved {code, description} pair from a fixed vocabulary.
type Code struct {
	Code        string
	Description string
}

var (
	// ErrUnrecognizedRoute reports an administration route that matches no
	// vocabulary entry. There is no safe default route, so this fails the
	// RXR segment for the row.
	ErrUnrecognizedRoute = errors.New("unrecognized administration route")

	// ErrUnrecognizedBodySite is the body-site equivalent of
	// ErrUnrecognizedRoute.
	ErrUnrecognizedBodySite = errors.New("unrecognized body site")
)

// administrationRoutes is the HL7 table 0162 subset the registry accepts.
// Slice order is the resolution tie-break and must not be reordered.
var administrationRoutes = []Code{
	{"EP", "Epidural"},
	{"IH", "Inhalation"},
	{"IA", "Intra-arterial"},
	{"IB", "Intrabursal"},
	{"IC", "Intracardiac"},
	{"ICV", "Intracervical (uterus)"},
	{"ID", "Intradermal"},
	{"IHA", "Intrahepatic Artery"},
	{"IM", "Intramuscular"},
	{"IN", "Intranasal"},
	{"IO", "Intraocular"},
	{"IP", "Intraperitoneal"},
	{"IS", "Intrasynovial"},
	{"IT", "Intrathecal"},
	{"IU", "Intrauterine"},
	{"IV", "Intravenous"},
	{"NS", "Nasal"},
	{"NP", "Nasal Prongs"},
	{"NG", "Nasogastric"},
	{"NT", "Nasotrachial Tube"},
	{"OP", "Ophthalmic"},
	{"PO", "Oral"},
	{"OTH", "Other/Miscellaneous"},
	{"OT", "Otic"},
	{"PF", "Perfusion"},
	{"RM", "Rebreather Mask"},
	{"SC", "Subcutaneous"},
	{"SL", "Sublingual"},
	{"TP", "Topical"},
	{"TD", "Transdermal"},
	{"TL", "Translingual"},
}

// bodySites is the HL7 table 0163 subset the registry accepts.
var bodySites = []Code{
	{"BN", "Bilateral Nares"},
	{"LA", "Left Arm"},
	{"LD", "Left Deltoid"},
	{"LG", "Left Gluteus Medius"},
	{"LLFA", "Left Lower Forearm"},
	{"LT", "Left Thigh"},
	{"LVL", "Left Vastus Lateralis"},
	{"RA", "Right Arm"},
	{"RD", "Right Deltoid"},
	{"RG", "Right Gluteus Medius"},
	{"RLFA", "Right Lower Forearm"},
	{"RT", "Right Thigh"},
	{"RVL", "Right Vastus Lateralis"},
}

// resolveCode returns the first table entry whose lower-cased description
// is contained in the lower-cased input. Containment direction is the
// fixed contract: the input must mention the vocabulary term.
func resolveCode(table []Code, value any) (Code, bool) {
	needle := strings.ToLower(ReadString(value))
	for _, c := range table {
		if strings.Contains(needle, strings.ToLower(c.Description)) {
			return c, true
		}
	}
	return Code{}, false
}

// ResolveRoute matches a free-text administration route against the route
// vocabulary.
func ResolveRoute(value any) (Code, error) {
	c, ok := resolveCode(administrationRoutes, value)
	if !ok {
		return Code{}, fmt.Errorf("%w: %q", ErrUnrecognizedRoute, ReadString(value))
	}
	return c, nil
}

// ResolveBodySite matches a free-text administration site against the
// body-site vocabulary.
func ResolveBodySite(value any) (Code, error) {
	c, ok := resolveCode(bodySites, value)
	if !ok {
		return Code{}, fmt.Errorf("%w: %q", ErrUnrecognizedBodySite, ReadString(value))
	}
	return c, nil
}
