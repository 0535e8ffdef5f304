// Package roster decodes vaccination roster CSVs into engine input
// records. Column lookup is header-keyed, so column order in the export
// does not matter; absent columns read as empty and flow through the
// engine's normalizers like any other blank field.
package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/immbridge/immbridge/internal/platform/hl7v2"
)

// Roster export column headers.
const (
	colPatientID      = "Patient ID"
	colFirstName      = "First Name"
	colLastName       = "Last Name"
	colMiddleInitial  = "Middle Initial"
	colDateOfBirth    = "Date of Birth"
	colGender         = "Gender"
	colRace           = "Race"
	colEthnicity      = "Ethnicity"
	colStreetAddress  = "Street Address"
	colCity           = "City"
	colState          = "State"
	colZipCode        = "Zip Code"
	colPhoneNumber    = "Phone Number"
	colServiceName    = "Appointment Service Name"
	colManufacturer   = "Manufacturer"
	colLot            = "Lot"
	colExpiration     = "Expiration"
	colAdministered   = "Vaccine Administered Date"
	colAdministeredAt = "Vaccine Administered Date/Time"
	colInjectionRoute = "Injection Route"
	colAdminSite      = "Administration Site"
	colClinician      = "Medical Professional"
	colCheckedInBy    = "Patient Checked in By"
	colAge            = "Age"
	colVaccineState   = "Vaccine_State"
)

// Parse reads a roster CSV and returns one InputRecord per data row.
// The first row must be a header naming at least the patient identifier
// column.
func Parse(r io.Reader) ([]hl7v2.InputRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read roster header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	if _, ok := idx[colPatientID]; !ok {
		return nil, fmt.Errorf("roster has no %q column", colPatientID)
	}

	var records []hl7v2.InputRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read roster row %d: %w", len(records)+2, err)
		}
		field := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		age, _ := strconv.Atoi(field(colAge))
		records = append(records, hl7v2.InputRecord{
			PatientID:          field(colPatientID),
			FirstName:          field(colFirstName),
			LastName:           field(colLastName),
			MiddleInitial:      field(colMiddleInitial),
			DateOfBirth:        field(colDateOfBirth),
			Gender:             field(colGender),
			Race:               field(colRace),
			Ethnicity:          field(colEthnicity),
			StreetAddress:      field(colStreetAddress),
			City:               field(colCity),
			State:              field(colState),
			ZipCode:            field(colZipCode),
			PhoneNumber:        field(colPhoneNumber),
			ServiceName:        field(colServiceName),
			Manufacturer:       field(colManufacturer),
			Lot:                field(colLot),
			Expiration:         field(colExpiration),
			AdministeredDate:   field(colAdministered),
			AdministeredAt:     field(colAdministeredAt),
			InjectionRoute:     field(colInjectionRoute),
			AdministrationSite: field(colAdminSite),
			Clinician:          field(colClinician),
			Age:                age,
			CheckedInBy:        field(colCheckedInBy),
			VaccineState:       field(colVaccineState),
		})
	}
	return records, nil
}
