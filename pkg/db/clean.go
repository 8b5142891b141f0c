package db

import (
	"context"
	"fmt"
	"time"
)

// DeleteSamplesBefore removes durable samples older than cutoff and
// reports how many rows went.
func (db *DB) DeleteSamplesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := db.ExecContext(ctx, "DELETE FROM traffic_samples WHERE ts < ?", cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("%w traffic samples: %w", ErrFailedToClean, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w traffic samples: %w", ErrFailedToClean, err)
	}

	return n, nil
}
