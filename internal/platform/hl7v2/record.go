package hl7v2

// InputRecord is one parsed vaccination roster row. Fields carry the raw,
// human-entered values; the segment builders run them through the
// normalizers and vocabulary resolvers. The record is read-only to the
// engine.
type InputRecord struct {
	// Patient identity.
	PatientID     string
	FirstName     string
	LastName      string
	MiddleInitial string
	DateOfBirth   string // YYYY-MM-DD
	Gender        string
	Race          string
	Ethnicity     string
	StreetAddress string
	City          string
	State         string
	ZipCode       string
	PhoneNumber   string

	// Vaccine administration facts.
	ServiceName        string // appointment service / product name
	Manufacturer       string
	Lot                string // "Vendor - Lot" or bare lot code
	Expiration         string // MM/DD/YY
	AdministeredDate   string // YYYY-MM-DD, used for dedupe and log correlation
	AdministeredAt     string // YYYY-MM-DDTHH:MMZ, UTC minute precision
	InjectionRoute     string
	AdministrationSite string
	Clinician          string // combined "First Last" medical professional
	Age                int

	// Workflow metadata.
	CheckedInBy  string
	VaccineState string // destination registry jurisdiction, log-only
}
