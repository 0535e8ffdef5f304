package hl7v2

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2023, 7, 15, 12, 0, 0, 0, time.UTC)

func TestReadString(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"empty string becomes sentinel", "", "^"},
		{"text passes through", "Garcia", "Garcia"},
		{"nil becomes blank", nil, ""},
		{"number becomes blank", 42, ""},
		{"bool becomes blank", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReadString(tt.value); got != tt.want {
				t.Errorf("ReadString(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		layout string
		want   string
	}{
		{"past date", "06/01/10", LayoutDate, "2010060100"},
		{"near-future date kept", "06/01/24", LayoutDate, "2024060100"},
		{"rollover corrected", "06/01/29", LayoutDate, "1929060100"},
		{"rollover just past now+1y", "07/16/24", LayoutDate, "1924071600"},
		{"datetime rendered with seconds", "06/01/10 10:30", LayoutDateTime, "20100601103000"},
		{"datetime rollover corrected", "06/01/29 10:30", LayoutDateTime, "19290601103000"},
		{"garbage yields empty", "not a date", LayoutDate, ""},
		{"wrong layout yields empty", "2010-06-01", LayoutDate, ""},
		{"non-string yields empty", 20100601, LayoutDate, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeDate(tt.value, tt.layout, testNow); got != tt.want {
				t.Errorf("normalizeDate(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestCorrectCenturyRolloverNeverFuture(t *testing.T) {
	for _, year := range []int{25, 37, 50, 75, 99} {
		parsed := time.Date(2000+year, 3, 1, 0, 0, 0, 0, time.UTC)
		got := correctCenturyRollover(parsed, testNow)
		if got.After(testNow.AddDate(1, 0, 0)) {
			t.Errorf("corrected date %v is still in the future", got)
		}
		if parsed.After(testNow.AddDate(1, 0, 0)) && got.Year() != parsed.Year()-100 {
			t.Errorf("corrected year = %d, want %d", got.Year(), parsed.Year()-100)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name      string
		value     any
		want      string
		defaulted bool
	}{
		{"formatted", "(385) 375-6419", "385^3756419", false},
		{"bare digits", "3853756419", "385^3756419", false},
		{"dashed", "555-867-5309", "555^8675309", false},
		{"with country code", "+1 512 555 0188", "512^5550188", false},
		{"too few digits", "555-12", "", true},
		{"letters", "not a number", "", true},
		{"empty", "", "", true},
		{"non-string", 3853756419, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.value)
			if got.Value != tt.want || got.Defaulted != tt.defaulted {
				t.Errorf("NormalizePhone(%v) = %+v, want {%q %v}", tt.value, got, tt.want, tt.defaulted)
			}
		})
	}
}

func TestNormalizeGender(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"Male", "M"},
		{"female", "F"},
		{"Nonbinary", "N"},
		{"Other - Transgender", "T"},
		{"Other", "O"},
		{"xyz", ""},
		{"", ""},
	}
	for _, tt := range tests {
		got := NormalizeGender(tt.value)
		if got.Value != tt.want {
			t.Errorf("NormalizeGender(%q) = %q, want %q", tt.value, got.Value, tt.want)
		}
		if (tt.want == "") != got.Defaulted {
			t.Errorf("NormalizeGender(%q).Defaulted = %v", tt.value, got.Defaulted)
		}
	}
}

func TestNormalizeRace(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"White", "2106-3^White"},
		{"white/caucasian", "2106-3^White"},
		{"Asian", "2028-9^Asian"},
		{"Black", "2054-5^Black"},
		{"African American", "2054-5^African_American"},
		{"American Indian or Alaska Native", "1002-5^alaska_native"},
		{"Other", "2131-1^Other_Race"},
		{"Native Hawaiian", "2076-8^native_hawaiian"},
		{"Pacific Islander", "2076-8^pacific_islander"},
		{"declined", "2131-1^Other_Race"},
		{"", "2131-1^Other_Race"},
	}
	for _, tt := range tests {
		if got := NormalizeRace(tt.value); got.Value != tt.want {
			t.Errorf("NormalizeRace(%q) = %q, want %q", tt.value, got.Value, tt.want)
		}
	}
}

func TestNormalizeEthnicity(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"Not Hispanic or Latino", "2186-5^Not Hispanic or Latino"},
		{"Hispanic", "2135-2^Hispanic or Latino"},
		{"Latino", "2135-2^Hispanic or Latino"},
		{"unknown", "2186-5^Not Hispanic or Latino"},
		{"", "2186-5^Not Hispanic or Latino"},
	}
	for _, tt := range tests {
		if got := NormalizeEthnicity(tt.value); got.Value != tt.want {
			t.Errorf("NormalizeEthnicity(%q) = %q, want %q", tt.value, got.Value, tt.want)
		}
	}
}

func TestExtractLotNumber(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"Moderna - AB1234", "AB1234"},
		{"AB1234", "AB1234"},
		{"Pfizer-FL7645", "FL7645"},
		{"Janssen  -  XY-99", "99"},
	}
	for _, tt := range tests {
		if got := ExtractLotNumber(tt.value); got != tt.want {
			t.Errorf("ExtractLotNumber(%q) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestLookupStateAbbreviation(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    string
		wantErr bool
	}{
		{"full name", "Texas", "TX", false},
		{"case insensitive", "neW YoRk", "NY", false},
		{"district", "District of Columbia", "DC", false},
		{"territory", "Puerto Rico", "PR", false},
		{"already abbreviated", "TX", "", false},
		{"empty", "", "", false},
		{"non-string", 7, "", false},
		{"unknown name", "Atlantis", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LookupStateAbbreviation(tt.value)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownState) {
					t.Fatalf("expected ErrUnknownState, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("LookupStateAbbreviation(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestSplitClinicianName(t *testing.T) {
	tests := []struct {
		in          string
		first, last string
	}{
		{"June Steely", "June", "Steely"},
		{"Ana Maria Ruiz", "Ana", "MariaRuiz"},
		{"Steely", "", "Steely"},
		{" Steely ", "", "Steely"},
	}
	for _, tt := range tests {
		first, last := splitClinicianName(tt.in)
		if first != tt.first || last != tt.last {
			t.Errorf("splitClinicianName(%q) = (%q, %q), want (%q, %q)",
				tt.in, first, last, tt.first, tt.last)
		}
	}
}
