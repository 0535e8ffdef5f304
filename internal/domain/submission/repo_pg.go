package submission

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type messageLogRepoPG struct{ pool *pgxpool.Pool }

// NewMessageLogRepoPG builds the PostgreSQL message log over a shared
// pool. Schema: migrations/001_message_log.sql.
func NewMessageLogRepoPG(pool *pgxpool.Pool) MessageLogRepository {
	return &messageLogRepoPG{pool: pool}
}

func (r *messageLogRepoPG) Append(ctx context.Context, e *MessageLogEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO message_log (id, run_id, patient_id, vaccine_date, message, failed_segment, error)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		e.ID, e.RunID, e.PatientID, e.VaccineDate, e.Message, e.FailedSegment, e.Error)
	return err
}

func (r *messageLogRepoPG) AttemptedCombos(ctx context.Context) (map[Combo]bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT patient_id, vaccine_date FROM message_log`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	combos := make(map[Combo]bool)
	for rows.Next() {
		var c Combo
		if err := rows.Scan(&c.PatientID, &c.VaccineDate); err != nil {
			return nil, err
		}
		combos[c] = true
	}
	return combos, rows.Err()
}

func (r *messageLogRepoPG) ListByRun(ctx context.Context, runID string) ([]*MessageLogEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, run_id, patient_id, vaccine_date, message, failed_segment, error, created_at
		FROM message_log
		WHERE run_id = $1
		ORDER BY created_at`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*MessageLogEntry
	for rows.Next() {
		var e MessageLogEntry
		if err := rows.Scan(&e.ID, &e.RunID, &e.PatientID, &e.VaccineDate,
			&e.Message, &e.FailedSegment, &e.Error, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
