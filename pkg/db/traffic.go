package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mfreeman451/routeradar/pkg/models"
)

// InsertSamples writes a batch of samples in one transaction.
func (db *DB) InsertSamples(ctx context.Context, samples []models.TrafficSample) (err error) {
	if len(samples) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToBeginTx, err)
	}

	defer func() { rollbackOnError(db.log, tx, err) }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO traffic_samples (device_id, interface, ts, rx_bps, tx_bps, total_bps)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w samples: %w", ErrFailedToInsert, err)
	}

	defer func(stmt *sql.Stmt) { _ = stmt.Close() }(stmt)

	for i := range samples {
		s := &samples[i]

		if _, err = stmt.ExecContext(ctx, s.DeviceID, s.Interface, s.Timestamp.Unix(),
			s.RxBps, s.TxBps, s.TotalBps); err != nil {
			return fmt.Errorf("%w sample: %w", ErrFailedToInsert, err)
		}
	}

	return tx.Commit()
}

func (db *DB) QueryTraffic(ctx context.Context, q models.TrafficQuery) ([]models.TrafficSample, error) {
	if q.Bucket <= 0 {
		return db.queryRaw(ctx, q)
	}

	width := int64(q.Bucket / time.Second)
	if width < 1 {
		width = 1
	}

	rows, err := db.QueryContext(ctx, `
		SELECT interface, (ts / ?) * ? AS bucket, AVG(rx_bps), AVG(tx_bps), AVG(total_bps)
		FROM traffic_samples
		WHERE device_id = ? AND (? = '' OR interface = ?) AND ts >= ? AND ts < ?
		GROUP BY interface, bucket
		ORDER BY bucket, interface`,
		width, width, q.DeviceID, q.Interface, q.Interface, q.Start.Unix(), q.End.Unix())
	if err != nil {
		return nil, fmt.Errorf("%w traffic: %w", ErrFailedToQuery, err)
	}
	defer closeRows(db.log, rows)

	return scanSamples(q.DeviceID, rows)
}

func (db *DB) queryRaw(ctx context.Context, q models.TrafficQuery) ([]models.TrafficSample, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT interface, ts, rx_bps, tx_bps, total_bps
		FROM traffic_samples
		WHERE device_id = ? AND (? = '' OR interface = ?) AND ts >= ? AND ts < ?
		ORDER BY ts, interface`,
		q.DeviceID, q.Interface, q.Interface, q.Start.Unix(), q.End.Unix())
	if err != nil {
		return nil, fmt.Errorf("%w traffic: %w", ErrFailedToQuery, err)
	}
	defer closeRows(db.log, rows)

	return scanSamples(q.DeviceID, rows)
}

func scanSamples(deviceID int64, rows *sql.Rows) ([]models.TrafficSample, error) {
	samples := make([]models.TrafficSample, 0)

	for rows.Next() {
		var (
			s  models.TrafficSample
			ts int64
		)

		if err := rows.Scan(&s.Interface, &ts, &s.RxBps, &s.TxBps, &s.TotalBps); err != nil {
			return nil, fmt.Errorf("%w sample: %w", ErrFailedToScan, err)
		}

		s.DeviceID = deviceID
		s.Timestamp = time.Unix(ts, 0).UTC()
		samples = append(samples, s)
	}

	return samples, rows.Err()
}
