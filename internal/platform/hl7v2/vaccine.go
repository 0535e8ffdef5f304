package hl7v2

import "strings"

// VaccineProfile is the resolved coded identity of an administered product.
type VaccineProfile struct {
	CVXCode          string
	CVXDescription   string
	VISDescription   string
	ManufacturerName string
	ManufacturerCode string
}

// UndefinedVaccine is the fallback profile for a product no rule
// recognizes. Vaccine resolution always yields a profile, never an error.
var UndefinedVaccine = VaccineProfile{
	CVXCode:          "999",
	CVXDescription:   "UNDEFINED",
	VISDescription:   "UNDEFINED",
	ManufacturerName: "UNDEFINED",
	ManufacturerCode: "UNK",
}

// vaccineRule pairs a predicate over (service name, manufacturer, age)
// with the profile it resolves to. Rules run in slice order,
// first match wins; the pediatric Pfizer rule must stay ahead of the
// adult one for the age gate to take effect.
type vaccineRule struct {
	matches func(service, manufacturer string, age int) bool
	profile VaccineProfile
}

func anyContains(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func pfizerMatch(service, manufacturer string) bool {
	return strings.Contains(service, "pfizer") || anyContains(manufacturer, "pfr", "pfizer")
}

var vaccineRules = []vaccineRule{
	{
		matches: func(svc, mfr string, age int) bool {
			return pfizerMatch(svc, mfr) && age >= 5 && age <= 11
		},
		profile: VaccineProfile{"218", "COVID-19, mRNA, LNP-S, PF, 10 mcg/0.2 mL dose, tris-sucrose", "COVID-19 Pfizer Vaccine", "Pfizer", "PFR"},
	},
	{
		matches: func(svc, mfr string, _ int) bool { return pfizerMatch(svc, mfr) },
		profile: VaccineProfile{"208", "COVID-19, mRNA, LNP-S, PF, 30 mcg/0.3 mL dose", "COVID-19 Pfizer Vaccine", "Pfizer", "PFR"},
	},
	{
		matches: func(svc, mfr string, _ int) bool {
			return strings.Contains(svc, "moderna") || anyContains(mfr, "mod", "moderna")
		},
		profile: VaccineProfile{"207", "COVID-19, mRNA, LNP-S, PF, 100 mcg/0.5 mL dose", "COVID-19 Moderna Vaccine", "Moderna", "MOD"},
	},
	{
		matches: func(svc, mfr string, _ int) bool {
			return strings.Contains(svc, "astra") || anyContains(mfr, "asz", "astra")
		},
		profile: VaccineProfile{"210", "COVID-19 vaccine, vector-nr, rS-ChAdOx1, PF, 0.5 mL", "COVID-19 AstraZeneca Vaccine", "AstraZeneca", "ASZ"},
	},
	{
		matches: func(svc, mfr string, _ int) bool {
			return strings.Contains(svc, "janssen") || anyContains(mfr, "j&j", "johnson", "janssen")
		},
		profile: VaccineProfile{"212", "COVID-19 vaccine, vector-nr, rS-Ad26, PF, 0.5 mL", "COVID-19 Janssen Vaccine", "Janssen", "JSN"},
	},
	{
		matches: func(_, mfr string, _ int) bool { return strings.Contains(mfr, "afluria quadrivalent") },
		profile: VaccineProfile{"158", "Influenza vaccine, 5 mL", "Influenza-19 Afluria Quadrivalent Vaccine", "Afluria Quadrivalent", "SEQ"},
	},
	{
		matches: func(_, mfr string, _ int) bool { return strings.Contains(mfr, "fluad quadrivalent") },
		profile: VaccineProfile{"205", "Influenza vaccine, 0.5 mL", "Influenza-19 Fluad Quadrivalent Vaccine", "Fluad Quadrivalent", "SEQ"},
	},
	{
		matches: func(_, mfr string, _ int) bool { return strings.Contains(mfr, "jyn") },
		profile: VaccineProfile{"206", "Vaccinia, smallpox monkeypox vaccine live, PF", "Monkey Pox JYNNEOS Vaccine", "JYNNEOS", "BN"},
	},
}

// ResolveVaccine maps a free-text service/product name and manufacturer
// (plus patient age for dose gating) to exactly one VaccineProfile.
// Unrecognized products resolve to UndefinedVaccine.
func ResolveVaccine(service, manufacturer any, age int) VaccineProfile {
	svc := strings.ToLower(ReadString(service))
	mfr := strings.ToLower(ReadString(manufacturer))
	for _, r := range vaccineRules {
		if r.matches(svc, mfr, age) {
			return r.profile
		}
	}
	return UndefinedVaccine
}
