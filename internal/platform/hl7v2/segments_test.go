package hl7v2

import (
	"strings"
	"testing"
)

// The administered-at timestamp gets the century-rollover correction in
// RXA only; PD1 and OBX render the parsed date as-is. The asymmetry is
// part of the registry contract.
func TestAdministeredAtRolloverAsymmetry(t *testing.T) {
	g := testGenerator(t)
	rec := testRecord()
	rec.AdministeredAt = "2029-06-01T10:00Z" // century-rollover artifact

	rxa, err := g.buildRXA(rec)
	if err != nil {
		t.Fatalf("buildRXA: %v", err)
	}
	if !strings.Contains(rxa, "19290601100000") {
		t.Errorf("RXA did not apply rollover correction: %q", rxa)
	}

	pd1, err := g.buildPD1(rec)
	if err != nil {
		t.Fatalf("buildPD1: %v", err)
	}
	if !strings.Contains(pd1, "20290601") {
		t.Errorf("PD1 must render the parsed date uncorrected: %q", pd1)
	}

	obx, err := g.buildOBX(rec)
	if err != nil {
		t.Fatalf("buildOBX: %v", err)
	}
	if !strings.Contains(obx, "20290601") {
		t.Errorf("OBX must render the parsed date uncorrected: %q", obx)
	}
}

func TestBuildPIDDateOfBirthRollover(t *testing.T) {
	g := testGenerator(t)
	rec := testRecord()
	rec.DateOfBirth = "2029-01-01" // "29" read as 2029 instead of 1929

	pid, err := g.buildPID(rec)
	if err != nil {
		t.Fatalf("buildPID: %v", err)
	}
	if !strings.Contains(pid, "|19290101|") {
		t.Errorf("PID DOB not corrected: %q", pid)
	}
}

func TestBuildRXABadExpirationDegrades(t *testing.T) {
	g := testGenerator(t)
	rec := testRecord()
	rec.Expiration = "soon"

	rxa, err := g.buildRXA(rec)
	if err != nil {
		t.Fatalf("buildRXA: a bad expiration must degrade, not fail: %v", err)
	}
	if !strings.Contains(rxa, "|FL7645||") {
		t.Errorf("expected blank expiration after lot number: %q", rxa)
	}
}

func TestBuildPIDBlankOptionalFields(t *testing.T) {
	g := testGenerator(t)
	rec := testRecord()
	rec.MiddleInitial = ""
	rec.Gender = "xyz"
	rec.PhoneNumber = ""

	pid, err := g.buildPID(rec)
	if err != nil {
		t.Fatalf("buildPID: %v", err)
	}
	if !strings.Contains(pid, "Garcia^Maria^^") {
		t.Errorf("empty middle initial must render the caret sentinel: %q", pid)
	}
	if !strings.Contains(pid, "|19500101||") {
		t.Errorf("unmatched gender must render blank: %q", pid)
	}
}
