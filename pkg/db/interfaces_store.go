package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mfreeman451/routeradar/pkg/models"
)

// AddMonitoredInterface selects an interface for monitoring and returns its id.
func (db *DB) AddMonitoredInterface(ctx context.Context, iface *models.MonitoredInterface) (int64, error) {
	result, err := db.ExecContext(ctx, `
		INSERT INTO monitored_interfaces (device_id, name, enabled, min_total_bps)
		VALUES (?, ?, ?, ?)`,
		iface.DeviceID, iface.Name, iface.Enabled, iface.MinTotalBps)
	if err != nil {
		return 0, fmt.Errorf("%w monitored interface: %w", ErrFailedToInsert, err)
	}

	return result.LastInsertId()
}

func (db *DB) ListMonitoredInterfaces(ctx context.Context, deviceID int64) ([]models.MonitoredInterface, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, device_id, name, enabled, min_total_bps, comment, mac, running, last_seen
		FROM monitored_interfaces
		WHERE device_id = ?
		ORDER BY name`, deviceID)
	if err != nil {
		return nil, fmt.Errorf("%w monitored interfaces: %w", ErrFailedToQuery, err)
	}
	defer closeRows(db.log, rows)

	var out []models.MonitoredInterface

	for rows.Next() {
		var (
			mi       models.MonitoredInterface
			lastSeen int64
		)

		if err := rows.Scan(&mi.ID, &mi.DeviceID, &mi.Name, &mi.Enabled, &mi.MinTotalBps,
			&mi.Comment, &mi.MAC, &mi.Running, &lastSeen); err != nil {
			return nil, fmt.Errorf("%w monitored interface: %w", ErrFailedToScan, err)
		}

		mi.LastSeen = timeOrZero(lastSeen)
		out = append(out, mi)
	}

	return out, rows.Err()
}

func (db *DB) UpsertInterfaceMeta(ctx context.Context, deviceID int64, metas []models.InterfaceMeta) (err error) {
	if len(metas) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToBeginTx, err)
	}

	defer func() { rollbackOnError(db.log, tx, err) }()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE monitored_interfaces
		SET comment = ?, mac = ?, running = ?, last_seen = ?
		WHERE device_id = ? AND name = ?`)
	if err != nil {
		return fmt.Errorf("%w interface meta: %w", ErrFailedToUpdate, err)
	}

	defer func(stmt *sql.Stmt) { _ = stmt.Close() }(stmt)

	for _, m := range metas {
		if _, err = stmt.ExecContext(ctx, m.Comment, m.MAC, m.Running, unixOrZero(m.LastSeen), deviceID, m.Name); err != nil {
			return fmt.Errorf("%w interface meta %s: %w", ErrFailedToUpdate, m.Name, err)
		}
	}

	return tx.Commit()
}
