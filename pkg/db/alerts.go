package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/mfreeman451/routeradar/pkg/models"
)

// CreateAlert stores a new open alert. ErrAlertOpen is returned when an
// unacknowledged alert already exists for the same condition key.
func (db *DB) CreateAlert(ctx context.Context, alert *models.Alert) (int64, error) {
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now()
	}

	result, err := db.ExecContext(ctx, `
		INSERT INTO alerts (condition_key, kind, device_id, interface_id, interface_name,
			severity, message, current_bps, threshold_bps, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		alert.ConditionKey, string(alert.Kind), alert.DeviceID, alert.InterfaceID, alert.InterfaceName,
		string(alert.Severity), alert.Message, alert.CurrentTrafficBps, alert.ThresholdBps,
		alert.CreatedAt.Unix())
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return 0, fmt.Errorf("%s: %w", alert.ConditionKey, ErrAlertOpen)
		}

		return 0, fmt.Errorf("%w alert: %w", ErrFailedToInsert, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w alert: %w", ErrFailedToInsert, err)
	}

	alert.ID = id

	return id, nil
}

func (db *DB) GetOpenAlert(ctx context.Context, conditionKey string) (*models.Alert, error) {
	var (
		a                     models.Alert
		kind, severity        string
		acknowledgedAt, since int64
	)

	err := db.QueryRowContext(ctx, `
		SELECT id, condition_key, kind, device_id, interface_id, interface_name, severity, message,
			current_bps, threshold_bps, acknowledged, acknowledged_by, acknowledged_at, created_at
		FROM alerts
		WHERE condition_key = ? AND acknowledged = 0`, conditionKey).
		Scan(&a.ID, &a.ConditionKey, &kind, &a.DeviceID, &a.InterfaceID, &a.InterfaceName, &severity,
			&a.Message, &a.CurrentTrafficBps, &a.ThresholdBps, &a.Acknowledged, &a.AcknowledgedBy,
			&acknowledgedAt, &since)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w alert: %w", ErrFailedToQuery, err)
	}

	a.Kind = models.AlertKind(kind)
	a.Severity = models.Severity(severity)
	a.AcknowledgedAt = timeOrZero(acknowledgedAt)
	a.CreatedAt = timeOrZero(since)

	return &a, nil
}

func (db *DB) AcknowledgeAlert(ctx context.Context, alertID int64, actor string, at time.Time) error {
	result, err := db.ExecContext(ctx, `
		UPDATE alerts
		SET acknowledged = 1, acknowledged_by = ?, acknowledged_at = ?
		WHERE id = ? AND acknowledged = 0`, actor, unixOrZero(at), alertID)
	if err != nil {
		return fmt.Errorf("%w alert: %w", ErrFailedToUpdate, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w alert: %w", ErrFailedToUpdate, err)
	}

	if n == 0 {
		return fmt.Errorf("open alert %d: %w", alertID, ErrNotFound)
	}

	return nil
}
