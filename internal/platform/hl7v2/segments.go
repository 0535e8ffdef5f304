package hl7v2

import (
	"fmt"
	"time"
)

// maxIdentifierLen is the HL7 field-length limit for the CX identifier
// fields carrying the patient MRN (PID-3) and placer order number (ORC-2).
const maxIdentifierLen = 20

func truncateIdentifier(s string) string {
	if len(s) > maxIdentifierLen {
		return s[:maxIdentifierLen]
	}
	return s
}

// buildMSH renders the message header. The field map carries only the
// per-message values; routing identity comes from the generator options.
func (g *Generator) buildMSH(controlID string) (string, error) {
	now := g.now().UTC()
	fields := map[string]string{
		"sending_application":   g.opts.SendingApplication,
		"sending_facility":      g.opts.SendingFacility,
		"receiving_application": g.opts.ReceivingApplication,
		"receiving_facility":    g.opts.ReceivingFacility,
		"message_time_stamp":    now.Format(hl7DateTime) + "+0000",
		"message_control_id":    controlID,
	}
	return g.store.Render(SegmentMSH, fields)
}

// buildPID renders patient identification. Date of birth applies the
// century-rollover correction; an unparseable DOB fails the segment.
func (g *Generator) buildPID(rec InputRecord) (string, error) {
	dob, err := time.Parse(LayoutISODate, rec.DateOfBirth)
	if err != nil {
		return "", fmt.Errorf("parse date of birth: %w", err)
	}
	dob = correctCenturyRollover(dob, g.now())

	state, err := LookupStateAbbreviation(rec.State)
	if err != nil {
		return "", err
	}

	fields := map[string]string{
		"patient_mrn":           truncateIdentifier(ReadString(rec.PatientID)),
		"patient_ssn":           "",
		"patient_last":          ReadString(rec.LastName),
		"patient_first":         ReadString(rec.FirstName),
		"patient_mi":            ReadString(rec.MiddleInitial),
		"patient_dob":           dob.Format(hl7Date),
		"patient_gender":        NormalizeGender(rec.Gender).Value,
		"patient_race":          NormalizeRace(rec.Race).Value,
		"patient_address_1":     rec.StreetAddress,
		"patient_address_2":     "",
		"patient_address_city":  ReadString(rec.City),
		"patient_address_state": state,
		"patient_address_zip":   rec.ZipCode,
		"patient_phone":         NormalizePhone(ReadString(rec.PhoneNumber)).Value,
		"patient_ethnicity":     NormalizeEthnicity(rec.Ethnicity).Value,
		"sending_facility":      g.opts.SendingFacility,
	}
	return g.store.Render(SegmentPID, fields)
}

// buildPD1 renders additional demographics. The administered-at timestamp
// is parsed strictly but rendered date-only, without rollover correction.
func (g *Generator) buildPD1(rec InputRecord) (string, error) {
	t, err := time.Parse(LayoutAdministered, rec.AdministeredAt)
	if err != nil {
		return "", fmt.Errorf("parse administered-at: %w", err)
	}
	fields := map[string]string{
		"protection_date": t.Format(hl7Date),
	}
	return g.store.Render(SegmentPD1, fields)
}

// buildORC renders the common order. The ordering-provider identity is
// fixed deployment configuration; the placer order number reuses the
// patient identifier under the same 20-character cap as PID-3.
func (g *Generator) buildORC(rec InputRecord, controlID string) (string, error) {
	first, last := splitClinicianName(rec.Clinician)
	fields := map[string]string{
		"order_number":          truncateIdentifier(ReadString(rec.PatientID)),
		"filler_order_number":   controlID,
		"provider_npi":          g.opts.ProviderNPI,
		"provider_last_name":    g.opts.ProviderLastName,
		"provider_first_name":   g.opts.ProviderFirstName,
		"provider_phone_number": g.opts.ProviderPhone,
		"checked_in_by":         rec.CheckedInBy,
		"clinician_first":       ReadString(first),
		"clinician_last":        ReadString(last),
	}
	return g.store.Render(SegmentORC, fields)
}

// buildRXA renders the administration segment. The administered-at
// timestamp keeps minute precision and, unlike PD1/OBX, applies the
// century-rollover correction. A bad expiration date degrades to blank;
// a bad administered-at fails the segment.
func (g *Generator) buildRXA(rec InputRecord) (string, error) {
	t, err := time.Parse(LayoutAdministered, rec.AdministeredAt)
	if err != nil {
		return "", fmt.Errorf("parse administered-at: %w", err)
	}
	t = correctCenturyRollover(t, g.now())

	profile := ResolveVaccine(rec.ServiceName, rec.Manufacturer, rec.Age)
	first, last := splitClinicianName(rec.Clinician)

	fields := map[string]string{
		"cvx_code":            profile.CVXCode,
		"cvx_description":     profile.CVXDescription,
		"vis_description":     profile.VISDescription,
		"vax_manufacturer":    profile.ManufacturerName,
		"mfg_code":            profile.ManufacturerCode,
		"lot_number":          ExtractLotNumber(rec.Lot),
		"lot_expiration_date": normalizeDate(rec.Expiration, LayoutDate, g.now()),
		"procedure_date":      t.Format(hl7DateTime),
		"clinician_first":     ReadString(first),
		"clinician_last":      ReadString(last),
		"location":            "",
		"report_date":         g.now().Format(hl7Date),
	}
	return g.store.Render(SegmentRXA, fields)
}

// buildRXR renders the route segment. Route and body site have no
// defaults; either failing to resolve fails the segment.
func (g *Generator) buildRXR(rec InputRecord) (string, error) {
	route, err := ResolveRoute(rec.InjectionRoute)
	if err != nil {
		return "", err
	}
	site, err := ResolveBodySite(rec.AdministrationSite)
	if err != nil {
		return "", err
	}
	fields := map[string]string{
		"admin_code":        route.Code,
		"admin_description": route.Description,
		"site_code":         site.Code,
		"site_description":  site.Description,
	}
	return g.store.Render(SegmentRXR, fields)
}

// buildOBX renders the observation segment: the administered-at date,
// parsed strictly, rendered date-only, no rollover correction.
func (g *Generator) buildOBX(rec InputRecord) (string, error) {
	t, err := time.Parse(LayoutAdministered, rec.AdministeredAt)
	if err != nil {
		return "", fmt.Errorf("parse administered-at: %w", err)
	}
	fields := map[string]string{
		"vaccination_date": t.Format(hl7Date),
	}
	return g.store.Render(SegmentOBX, fields)
}
