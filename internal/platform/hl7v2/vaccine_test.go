package hl7v2

import "testing"

func TestResolveVaccinePrecedence(t *testing.T) {
	tests := []struct {
		name         string
		service      string
		manufacturer string
		age          int
		wantCVX      string
		wantMfgCode  string
	}{
		{"pfizer pediatric by age", "Pfizer COVID-19", "", 7, "218", "PFR"},
		{"pfizer pediatric lower bound", "Pfizer", "", 5, "218", "PFR"},
		{"pfizer pediatric upper bound", "Pfizer", "", 11, "218", "PFR"},
		{"pfizer adult just past gate", "Pfizer", "", 12, "208", "PFR"},
		{"pfizer adult", "Pfizer", "", 45, "208", "PFR"},
		{"pfizer via manufacturer code", "", "PFR", 45, "208", "PFR"},
		{"moderna by service", "Moderna Booster", "", 30, "207", "MOD"},
		{"moderna by manufacturer", "", "MOD", 30, "207", "MOD"},
		{"astrazeneca", "AstraZeneca", "", 40, "210", "ASZ"},
		{"janssen by j&j", "", "J&J", 40, "212", "JSN"},
		{"janssen by johnson", "", "Johnson & Johnson", 40, "212", "JSN"},
		{"afluria", "", "Afluria Quadrivalent", 40, "158", "SEQ"},
		{"fluad", "", "Fluad Quadrivalent", 40, "205", "SEQ"},
		{"jynneos", "", "JYNNEOS", 40, "206", "BN"},
		{"unrecognized defaults", "Elixir", "Acme", 40, "999", "UNK"},
		{"blank defaults", "", "", 40, "999", "UNK"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveVaccine(tt.service, tt.manufacturer, tt.age)
			if got.CVXCode != tt.wantCVX {
				t.Errorf("CVXCode = %q, want %q", got.CVXCode, tt.wantCVX)
			}
			if got.ManufacturerCode != tt.wantMfgCode {
				t.Errorf("ManufacturerCode = %q, want %q", got.ManufacturerCode, tt.wantMfgCode)
			}
		})
	}
}

func TestResolveVaccineAlwaysOneProfile(t *testing.T) {
	// Every input resolves to exactly one profile; the default is a real
	// profile, not a zero value.
	got := ResolveVaccine(nil, nil, 0)
	if got != UndefinedVaccine {
		t.Errorf("ResolveVaccine(nil, nil, 0) = %+v, want UndefinedVaccine", got)
	}
	if got.CVXDescription != "UNDEFINED" || got.VISDescription != "UNDEFINED" {
		t.Errorf("default profile incomplete: %+v", got)
	}
}
