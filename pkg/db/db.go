// Package db pkg/db/db.go provides SQLite storage for routeradar.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/mfreeman451/routeradar/pkg/logger"
	"github.com/mfreeman451/routeradar/pkg/models"
)

const (
	// SQL statements for database initialization.
	createTablesSQL = `
	-- Devices and their protocol settings
	CREATE TABLE IF NOT EXISTS devices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		address TEXT NOT NULL,
		owner_id INTEGER NOT NULL,
		native_port INTEGER NOT NULL DEFAULT 0,
		rest_enabled BOOLEAN NOT NULL DEFAULT 0,
		rest_port INTEGER NOT NULL DEFAULT 0,
		rest_alt_hostname TEXT NOT NULL DEFAULT '',
		rest_discovered_hostname TEXT NOT NULL DEFAULT '',
		snmp_enabled BOOLEAN NOT NULL DEFAULT 0,
		snmp_community TEXT NOT NULL DEFAULT '',
		snmp_version TEXT NOT NULL DEFAULT '',
		snmp_port INTEGER NOT NULL DEFAULT 0,
		interface_policy TEXT NOT NULL DEFAULT 'static-only',
		method TEXT NOT NULL DEFAULT '',
		reachable BOOLEAN NOT NULL DEFAULT 0,
		last_checked INTEGER NOT NULL DEFAULT 0,
		username TEXT NOT NULL DEFAULT '',
		password BLOB,
		password_sealed BOOLEAN NOT NULL DEFAULT 0
	);

	-- Users assigned to a device besides its owner
	CREATE TABLE IF NOT EXISTS device_users (
		device_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		PRIMARY KEY (device_id, user_id),
		FOREIGN KEY (device_id) REFERENCES devices(id) ON DELETE CASCADE
	);

	-- Interfaces selected for monitoring
	CREATE TABLE IF NOT EXISTS monitored_interfaces (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		device_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		enabled BOOLEAN NOT NULL DEFAULT 1,
		min_total_bps REAL NOT NULL DEFAULT 0,
		comment TEXT NOT NULL DEFAULT '',
		mac TEXT NOT NULL DEFAULT '',
		running BOOLEAN NOT NULL DEFAULT 0,
		last_seen INTEGER NOT NULL DEFAULT 0,
		UNIQUE (device_id, name),
		FOREIGN KEY (device_id) REFERENCES devices(id) ON DELETE CASCADE
	);

	-- Durable traffic samples, unix seconds
	CREATE TABLE IF NOT EXISTS traffic_samples (
		device_id INTEGER NOT NULL,
		interface TEXT NOT NULL,
		ts INTEGER NOT NULL,
		rx_bps REAL NOT NULL,
		tx_bps REAL NOT NULL,
		total_bps REAL NOT NULL,
		FOREIGN KEY (device_id) REFERENCES devices(id) ON DELETE CASCADE
	);

	-- Alerts
	CREATE TABLE IF NOT EXISTS alerts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		condition_key TEXT NOT NULL,
		kind TEXT NOT NULL,
		device_id INTEGER NOT NULL,
		interface_id INTEGER NOT NULL DEFAULT 0,
		interface_name TEXT NOT NULL DEFAULT '',
		severity TEXT NOT NULL,
		message TEXT NOT NULL,
		current_bps REAL NOT NULL DEFAULT 0,
		threshold_bps REAL NOT NULL DEFAULT 0,
		acknowledged BOOLEAN NOT NULL DEFAULT 0,
		acknowledged_by TEXT NOT NULL DEFAULT '',
		acknowledged_at INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);

	-- Indexes for better query performance
	CREATE INDEX IF NOT EXISTS idx_traffic_samples_series_time
		ON traffic_samples(device_id, interface, ts);
	CREATE INDEX IF NOT EXISTS idx_traffic_samples_time
		ON traffic_samples(ts);
	CREATE INDEX IF NOT EXISTS idx_alerts_device
		ON alerts(device_id, created_at);

	-- At most one unacknowledged alert per condition
	CREATE UNIQUE INDEX IF NOT EXISTS idx_alerts_open_condition
		ON alerts(condition_key) WHERE acknowledged = 0;

	PRAGMA foreign_keys=ON;
	`

	deviceColumns = `id, name, address, owner_id, native_port, rest_enabled, rest_port,
		rest_alt_hostname, rest_discovered_hostname, snmp_enabled, snmp_community,
		snmp_version, snmp_port, interface_policy, method, reachable, last_checked`
)

var _ Service = (*DB)(nil)

// DB represents the database connection and operations.
type DB struct {
	*sql.DB
	key *[32]byte
	log logger.Logger
}

// Option configures a DB.
type Option func(*DB)

// WithCredentialKey enables sealing of stored device passwords.
func WithCredentialKey(key *[32]byte) Option {
	return func(db *DB) { db.key = key }
}

func WithLogger(l logger.Logger) Option {
	return func(db *DB) { db.log = l }
}

// New creates a new database connection and initializes the schema.
func New(dbPath string, opts ...Option) (*DB, error) {
	sqlDB, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedOpenDB, err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("%w: %w", ErrFailedToEnableWAL, err)
	}

	db := &DB{DB: sqlDB, log: logger.GetLogger()}

	for _, opt := range opts {
		opt(db)
	}

	if err := db.initSchema(); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("%w: %w", ErrFailedToInit, err)
	}

	return db, nil
}

// initSchema creates the database tables if they don't exist.
func (db *DB) initSchema() error {
	_, err := db.Exec(createTablesSQL)

	return err
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}

	return t.Unix()
}

func timeOrZero(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}

	return time.Unix(sec, 0).UTC()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDevice(row scanner) (*models.Device, error) {
	var (
		d           models.Device
		policy      string
		method      string
		lastChecked int64
	)

	err := row.Scan(&d.ID, &d.Name, &d.Address, &d.OwnerID, &d.Native.Port,
		&d.REST.Enabled, &d.REST.Port, &d.REST.AltHostname, &d.REST.DiscoveredHostname,
		&d.SNMP.Enabled, &d.SNMP.Community, &d.SNMP.Version, &d.SNMP.Port,
		&policy, &method, &d.Reachable, &lastChecked)
	if err != nil {
		return nil, err
	}

	d.InterfacePolicy = models.InterfacePolicy(policy)
	d.Method = models.ConnectionMethod(method)
	d.LastChecked = timeOrZero(lastChecked)

	return &d, nil
}

func (db *DB) ListDevices(ctx context.Context) ([]models.Device, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+deviceColumns+` FROM devices ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w devices: %w", ErrFailedToQuery, err)
	}
	defer closeRows(db.log, rows)

	var devices []models.Device

	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("%w device: %w", ErrFailedToScan, err)
		}

		devices = append(devices, *d)
	}

	return devices, rows.Err()
}

func (db *DB) GetDevice(ctx context.Context, deviceID int64) (*models.Device, error) {
	row := db.QueryRowContext(ctx, `SELECT `+deviceColumns+` FROM devices WHERE id = ?`, deviceID)

	d, err := scanDevice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("device %d: %w", deviceID, ErrNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("%w device: %w", ErrFailedToScan, err)
	}

	return d, nil
}

// CreateDevice stores a device together with its credentials and returns
// the new id. The password is sealed when a credential key is configured.
func (db *DB) CreateDevice(ctx context.Context, d *models.Device, creds models.Credentials) (int64, error) {
	password, sealed, err := db.sealPassword(creds.Password)
	if err != nil {
		return 0, err
	}

	policy := d.InterfacePolicy
	if policy == "" {
		policy = models.PolicyStaticOnly
	}

	result, err := db.ExecContext(ctx, `
		INSERT INTO devices (name, address, owner_id, native_port, rest_enabled, rest_port,
			rest_alt_hostname, rest_discovered_hostname, snmp_enabled, snmp_community,
			snmp_version, snmp_port, interface_policy, method, reachable, last_checked,
			username, password, password_sealed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.Name, d.Address, d.OwnerID, d.Native.Port, d.REST.Enabled, d.REST.Port,
		d.REST.AltHostname, d.REST.DiscoveredHostname, d.SNMP.Enabled, d.SNMP.Community,
		d.SNMP.Version, d.SNMP.Port, string(policy), string(d.Method), d.Reachable,
		unixOrZero(d.LastChecked), creds.Username, password, sealed)
	if err != nil {
		return 0, fmt.Errorf("%w device: %w", ErrFailedToInsert, err)
	}

	return result.LastInsertId()
}

// AssignUser gives a user access to a device's alerts and live view.
func (db *DB) AssignUser(ctx context.Context, deviceID, userID int64) error {
	if _, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO device_users (device_id, user_id) VALUES (?, ?)`, deviceID, userID); err != nil {
		return fmt.Errorf("%w device user: %w", ErrFailedToInsert, err)
	}

	return nil
}

func (db *DB) ListDeviceRecipients(ctx context.Context, deviceID int64) ([]int64, error) {
	var owner int64

	err := db.QueryRowContext(ctx, `SELECT owner_id FROM devices WHERE id = ?`, deviceID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("device %d: %w", deviceID, ErrNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("%w owner: %w", ErrFailedToQuery, err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT user_id FROM device_users WHERE device_id = ? AND user_id != ? ORDER BY user_id`, deviceID, owner)
	if err != nil {
		return nil, fmt.Errorf("%w device users: %w", ErrFailedToQuery, err)
	}
	defer closeRows(db.log, rows)

	recipients := []int64{owner}

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w device user: %w", ErrFailedToScan, err)
		}

		recipients = append(recipients, id)
	}

	return recipients, rows.Err()
}

func (db *DB) UpdateReachability(ctx context.Context, deviceID int64, reachable bool, checkedAt time.Time) error {
	return db.updateDevice(ctx, deviceID, `UPDATE devices SET reachable = ?, last_checked = ? WHERE id = ?`,
		reachable, unixOrZero(checkedAt), deviceID)
}

func (db *DB) UpdateConnectionMethod(ctx context.Context, deviceID int64, method models.ConnectionMethod) error {
	return db.updateDevice(ctx, deviceID, `UPDATE devices SET method = ? WHERE id = ?`, string(method), deviceID)
}

func (db *DB) UpdateDiscoveredHostname(ctx context.Context, deviceID int64, hostname string) error {
	return db.updateDevice(ctx, deviceID, `UPDATE devices SET rest_discovered_hostname = ? WHERE id = ?`,
		hostname, deviceID)
}

func (db *DB) updateDevice(ctx context.Context, deviceID int64, query string, args ...interface{}) error {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w device: %w", ErrFailedToUpdate, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w device: %w", ErrFailedToUpdate, err)
	}

	if n == 0 {
		return fmt.Errorf("device %d: %w", deviceID, ErrNotFound)
	}

	return nil
}

func rollbackOnError(l logger.Logger, tx *sql.Tx, err error) {
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			l.Error().Err(rbErr).Msg("Error rolling back transaction")
		}
	}
}

func closeRows(l logger.Logger, rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		l.Error().Err(err).Msg("Failed to close rows")
	}
}
