package submission

import "context"

// MessageLogRepository persists the submission log. The log is
// append-only: entries are never updated, and the attempted-combo set is
// how later runs skip rows already handled.
type MessageLogRepository interface {
	Append(ctx context.Context, e *MessageLogEntry) error
	AttemptedCombos(ctx context.Context) (map[Combo]bool, error)
	ListByRun(ctx context.Context, runID string) ([]*MessageLogEntry, error)
}
