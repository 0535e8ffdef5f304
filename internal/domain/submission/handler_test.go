package submission

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/immbridge/immbridge/internal/platform/hl7v2"
)

const testRoster = `Patient ID,First Name,Last Name,Middle Initial,Date of Birth,Gender,Race,Ethnicity,Street Address,City,State,Zip Code,Phone Number,Appointment Service Name,Manufacturer,Lot,Expiration,Vaccine Administered Date,Vaccine Administered Date/Time,Injection Route,Administration Site,Medical Professional,Age,Patient Checked in By,Vaccine_State
PAT-001,Maria,Garcia,L,1950-01-01,Female,White,Not Hispanic or Latino,400 W 15th St,Austin,Texas,78701,(512) 555-0188,COVID-19 Vaccination,Pfizer,Pfizer - FL7645,10/01/23,2023-06-01,2023-06-01T10:00Z,Intramuscular,Left Deltoid,June Steely,45,Front Desk,TX
`

func newHandlerEnv(t *testing.T) (*Handler, *testEnv, *echo.Echo) {
	t.Helper()
	env := newTestEnv(t, ServiceOptions{})
	return NewHandler(env.svc, env.store), env, echo.New()
}

func TestHandler_StartRun(t *testing.T) {
	h, env, e := newHandlerEnv(t)
	if err := env.store.Put(context.Background(), "rosters/today.csv", []byte(testRoster)); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"roster_key":"rosters/today.csv"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.StartRun(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var report RunReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Sent != 1 || report.Total != 1 {
		t.Errorf("report sent=%d total=%d, want 1/1", report.Sent, report.Total)
	}
	if env.deliverer.Count() != 1 {
		t.Errorf("delivered %d files, want 1", env.deliverer.Count())
	}
}

func TestHandler_StartRun_MissingKey(t *testing.T) {
	h, _, e := newHandlerEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.StartRun(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_StartRun_RosterNotFound(t *testing.T) {
	h, _, e := newHandlerEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"roster_key":"rosters/absent.csv"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.StartRun(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestHandler_ListRunEntries(t *testing.T) {
	h, env, e := newHandlerEnv(t)

	rep, err := env.svc.Run(context.Background(), []hl7v2.InputRecord{testRecord("PAT-001")})
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(rep.ID.String())

	if err := h.ListRunEntries(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var entries []*MessageLogEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode entries: %v", err)
	}
	if len(entries) != 1 || entries[0].PatientID != "PAT-001" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestHandler_ListRunEntries_BadID(t *testing.T) {
	h, _, e := newHandlerEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.ListRunEntries(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
