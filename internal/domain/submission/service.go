package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/immbridge/immbridge/internal/platform/blobstore"
	"github.com/immbridge/immbridge/internal/platform/hl7v2"
	"github.com/immbridge/immbridge/internal/platform/transport"
)

const (
	defaultTimeBudget     = 14 * time.Minute
	defaultArchivePrefix  = "hl7-messages"
	defaultErrorLogPrefix = "vaccine-logs/Errors"
)

// ServiceOptions tunes batch behavior. Zero values take the defaults.
type ServiceOptions struct {
	// Facility is the file-name prefix of archived and delivered messages.
	Facility string

	// TimeBudget caps wall-clock time spent starting new rows. Rows
	// already in flight finish; remaining rows are left for the next run.
	TimeBudget time.Duration

	ArchivePrefix  string
	ErrorLogPrefix string

	// Now overrides the clock, for tests.
	Now func() time.Time
}

func (o *ServiceOptions) applyDefaults() {
	if o.Facility == "" {
		o.Facility = "IMMBRIDGE"
	}
	if o.TimeBudget <= 0 {
		o.TimeBudget = defaultTimeBudget
	}
	if o.ArchivePrefix == "" {
		o.ArchivePrefix = defaultArchivePrefix
	}
	if o.ErrorLogPrefix == "" {
		o.ErrorLogPrefix = defaultErrorLogPrefix
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Service drives batch submission: generate a message per roster row,
// archive it, deliver it, and record the outcome in the message log.
type Service struct {
	gen       *hl7v2.Generator
	log       MessageLogRepository
	store     blobstore.Store
	deliverer transport.Deliverer
	logger    zerolog.Logger
	opts      ServiceOptions
}

func NewService(gen *hl7v2.Generator, log MessageLogRepository, store blobstore.Store, deliverer transport.Deliverer, logger zerolog.Logger, opts ServiceOptions) *Service {
	opts.applyDefaults()
	return &Service{gen: gen, log: log, store: store, deliverer: deliverer, logger: logger, opts: opts}
}

// fileName builds the registry drop-file name: facility, two-digit year,
// three-digit day of year, then the roster row index.
func (s *Service) fileName(now time.Time, seq int) string {
	return fmt.Sprintf("%s%s%03d.%d.hl7", s.opts.Facility, now.Format("06"), now.YearDay(), seq)
}

// Run processes one roster. Rows whose patient/date combo already appears
// in the message log are skipped; every other row is attempted, and a row
// failure never aborts the batch. Row starts stop once the time budget is
// spent, leaving the remainder for the next run.
func (s *Service) Run(ctx context.Context, records []hl7v2.InputRecord) (*RunReport, error) {
	started := s.opts.Now()
	report := &RunReport{
		ID:        uuid.New(),
		StartedAt: started,
		Total:     len(records),
	}
	logger := s.logger.With().Stringer("run_id", report.ID).Logger()

	attempted, err := s.log.AttemptedCombos(ctx)
	if err != nil {
		return nil, fmt.Errorf("load attempted combos: %w", err)
	}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if s.opts.Now().Sub(started) >= s.opts.TimeBudget {
			report.BudgetExhausted = true
			logger.Warn().
				Int("remaining", report.Total-report.Sent-report.Failed-report.Skipped).
				Msg("time budget exhausted, stopping row submission")
			break
		}

		combo := Combo{PatientID: rec.PatientID, VaccineDate: rec.AdministeredDate}
		rc := rec.Context()
		rowLog := logger.With().
			Str("state", rc.State).
			Str("patient_id", rc.PatientID).
			Str("vaccine_date", rc.VaccineDate).
			Logger()

		if attempted[combo] {
			report.Skipped++
			rowLog.Debug().Msg("already submitted, skipping")
			continue
		}
		attempted[combo] = true

		row := s.submitRow(ctx, rowLog, report, rec, i)
		if row.Error == "" {
			report.Sent++
		} else {
			report.Failed++
		}
		report.Rows = append(report.Rows, row)
	}

	report.FinishedAt = s.opts.Now()
	logger.Info().
		Int("total", report.Total).
		Int("sent", report.Sent).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Msg("batch run finished")
	return report, nil
}

// submitRow handles one roster row. seq is the row's index in the
// roster, so drop-file names stay unique even when earlier rows fail.
func (s *Service) submitRow(ctx context.Context, logger zerolog.Logger, report *RunReport, rec hl7v2.InputRecord, seq int) RowResult {
	row := RowResult{PatientID: rec.PatientID, VaccineDate: rec.AdministeredDate}
	entry := &MessageLogEntry{
		RunID:       report.ID,
		PatientID:   rec.PatientID,
		VaccineDate: rec.AdministeredDate,
	}

	msg, err := s.gen.Generate(rec)
	if err != nil {
		var segErr *hl7v2.SegmentError
		entry.Message = CouldNotGenerate
		if errors.As(err, &segErr) {
			entry.FailedSegment = segErr.Segment
			entry.Error = fmt.Sprintf("Failed at %s segment", segErr.Segment)
		} else {
			entry.Error = err.Error()
		}
		logger.Error().Err(err).Str("segment", entry.FailedSegment).Msg("message generation failed")
		s.appendErrorLog(ctx, logger, fmt.Sprintf("%s %s: %v", rec.PatientID, rec.AdministeredDate, err))
		s.appendEntry(ctx, logger, entry)
		row.FailedSegment = entry.FailedSegment
		row.Error = entry.Error
		return row
	}
	entry.Message = msg.Text

	name := s.fileName(s.opts.Now(), seq)
	key := s.opts.ArchivePrefix + "/" + name
	if err := s.store.Put(ctx, key, []byte(msg.Text)); err != nil {
		entry.Error = fmt.Sprintf("archive: %v", err)
		logger.Error().Err(err).Str("key", key).Msg("archive failed")
		s.appendEntry(ctx, logger, entry)
		row.Error = entry.Error
		return row
	}

	if err := s.deliverer.Deliver(ctx, name, []byte(msg.Text)); err != nil {
		entry.Error = fmt.Sprintf("deliver: %v", err)
		logger.Error().Err(err).Str("file", name).Msg("delivery failed")
		s.appendErrorLog(ctx, logger, fmt.Sprintf("%s %s: delivery failed: %v", rec.PatientID, rec.AdministeredDate, err))
		s.appendEntry(ctx, logger, entry)
		row.Error = entry.Error
		return row
	}

	s.appendEntry(ctx, logger, entry)
	row.FileName = name
	logger.Info().Str("file", name).Str("control_id", msg.ControlID).Msg("message delivered")
	return row
}

// appendEntry records a row outcome. Log persistence failures are
// reported but do not fail the row; the message has already been handled.
func (s *Service) appendEntry(ctx context.Context, logger zerolog.Logger, e *MessageLogEntry) {
	if err := s.log.Append(ctx, e); err != nil {
		logger.Error().Err(err).Msg("message log append failed")
	}
}

// appendErrorLog adds a line to the day's error file in the blob store,
// one JSON array of strings per calendar day.
func (s *Service) appendErrorLog(ctx context.Context, logger zerolog.Logger, line string) {
	key := fmt.Sprintf("%s/%s.json", s.opts.ErrorLogPrefix, s.opts.Now().Format("2006-01-02"))

	var lines []string
	body, err := s.store.Get(ctx, key)
	switch {
	case err == nil:
		if err := json.Unmarshal(body, &lines); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("error log corrupt, starting fresh")
			lines = nil
		}
	case !errors.Is(err, blobstore.ErrObjectNotFound):
		logger.Error().Err(err).Str("key", key).Msg("error log read failed")
		return
	}

	lines = append(lines, line)
	out, err := json.Marshal(lines)
	if err != nil {
		logger.Error().Err(err).Msg("error log marshal failed")
		return
	}
	if err := s.store.Put(ctx, key, out); err != nil {
		logger.Error().Err(err).Str("key", key).Msg("error log write failed")
	}
}

// RunEntries lists the persisted log entries of a given run.
func (s *Service) RunEntries(ctx context.Context, runID string) ([]*MessageLogEntry, error) {
	return s.log.ListByRun(ctx, runID)
}
