// Package hl7v2 converts vaccination roster rows into HL7 v2.5.1 VXU
// messages for state immunization registries. The engine is pure
// transformation: it reads an InputRecord, normalizes each field, resolves
// coded vocabularies, renders seven segment templates, and concatenates
// them into one message. Storage, delivery, and batch driving live with
// the caller.
package hl7v2

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Options configures the fixed, per-deployment values stamped into every
// message.
type Options struct {
	SendingApplication   string
	SendingFacility      string
	ReceivingApplication string
	ReceivingFacility    string

	// FacilityPrefix is the 4-digit prefix of generated message control
	// numbers.
	FacilityPrefix string

	// Ordering-provider identity rendered into ORC.
	ProviderNPI       string
	ProviderLastName  string
	ProviderFirstName string
	ProviderPhone     string

	// ControlNumberFunc overrides control-number generation. The default
	// appends a random 5-digit suffix to FacilityPrefix; collisions within
	// a batch are unlikely but not impossible, so callers needing hard
	// uniqueness can substitute their own.
	ControlNumberFunc func() string

	// Now overrides the clock, for tests.
	Now func() time.Time
}

func (o *Options) applyDefaults() {
	if o.SendingApplication == "" {
		o.SendingApplication = "IMMBRIDGE"
	}
	if o.SendingFacility == "" {
		o.SendingFacility = "IMMBRIDGE"
	}
	if o.ReceivingApplication == "" {
		o.ReceivingApplication = "IIS"
	}
	if o.ReceivingFacility == "" {
		o.ReceivingFacility = "IIS"
	}
	if o.FacilityPrefix == "" {
		o.FacilityPrefix = "7501"
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// RowContext carries the log-correlation identity of one roster row.
// It is passed explicitly rather than held as ambient logger state.
type RowContext struct {
	State       string
	PatientID   string
	VaccineDate string
}

// Context extracts the log-correlation fields from a record.
func (rec InputRecord) Context() RowContext {
	return RowContext{
		State:       rec.VaccineState,
		PatientID:   rec.PatientID,
		VaccineDate: rec.AdministeredDate,
	}
}

// SegmentError reports which segment of a message could not be built.
type SegmentError struct {
	Segment string
	Err     error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("%s segment: %v", e.Segment, e.Err)
}

func (e *SegmentError) Unwrap() error { return e.Err }

// Message is one fully assembled HL7 document, immutable once built.
type Message struct {
	ControlID string
	Text      string
}

// Generator assembles messages from roster rows. It is built once and is
// safe for concurrent use across rows.
type Generator struct {
	store *TemplateStore
	opts  Options
}

// NewGenerator builds a Generator over a loaded template store.
func NewGenerator(store *TemplateStore, opts Options) *Generator {
	opts.applyDefaults()
	return &Generator{store: store, opts: opts}
}

func (g *Generator) now() time.Time { return g.opts.Now() }

// ControlNumber returns a fresh message control number: the facility
// prefix plus a random 5-digit suffix.
func (g *Generator) ControlNumber() string {
	if g.opts.ControlNumberFunc != nil {
		return g.opts.ControlNumberFunc()
	}
	return fmt.Sprintf("%s%d", g.opts.FacilityPrefix, 10000+rand.Intn(90000))
}

// Generate assembles the message for one record, building segments in the
// fixed order MSH, PID, PD1, ORC, RXA, RXR, OBX. The first segment that
// fails aborts the row with a SegmentError naming it; rendered segments
// are concatenated with no separator beyond each template's embedded
// terminator.
func (g *Generator) Generate(rec InputRecord) (*Message, error) {
	controlID := g.ControlNumber()

	steps := []struct {
		segment string
		build   func() (string, error)
	}{
		{SegmentMSH, func() (string, error) { return g.buildMSH(controlID) }},
		{SegmentPID, func() (string, error) { return g.buildPID(rec) }},
		{SegmentPD1, func() (string, error) { return g.buildPD1(rec) }},
		{SegmentORC, func() (string, error) { return g.buildORC(rec, controlID) }},
		{SegmentRXA, func() (string, error) { return g.buildRXA(rec) }},
		{SegmentRXR, func() (string, error) { return g.buildRXR(rec) }},
		{SegmentOBX, func() (string, error) { return g.buildOBX(rec) }},
	}

	var sb strings.Builder
	for _, st := range steps {
		seg, err := st.build()
		if err != nil {
			return nil, &SegmentError{Segment: st.segment, Err: err}
		}
		sb.WriteString(seg)
	}

	return &Message{ControlID: controlID, Text: sb.String()}, nil
}
