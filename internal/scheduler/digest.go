package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/crmdeck/crmdeck/internal/query"
)

// ActivitySource provides the due activities the digest reports on.
type ActivitySource interface {
	DueActivities(ctx context.Context, date string, limit int) ([]query.Activity, error)
}

// NewDigest builds a DigestFunc that logs every undone activity due on or
// before today. now is injected for deterministic tests.
func NewDigest(src ActivitySource, logger *slog.Logger, limit int, now func() time.Time) DigestFunc {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context) error {
		today := now().Format(query.DateLayout)
		due, err := src.DueActivities(ctx, today, limit)
		if err != nil {
			return fmt.Errorf("load due activities: %w", err)
		}

		if len(due) == 0 {
			logger.Info("reminder digest: nothing due", "date", today)
			return nil
		}

		logger.Info("reminder digest", "date", today, "due", len(due))
		for _, a := range due {
			logger.Info("activity due",
				"id", a.ID,
				"subject", a.Subject,
				"scheduled", a.ScheduleDate,
				"assigned", a.AssignedUser,
				"priority", a.Priority,
			)
		}
		return nil
	}
}
