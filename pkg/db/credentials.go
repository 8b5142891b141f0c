package db

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/mfreeman451/routeradar/pkg/models"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// sealPassword returns the stored form of a password: nonce||box when a key
// is configured, the plain bytes otherwise.
func (db *DB) sealPassword(password string) ([]byte, bool, error) {
	if db.key == nil {
		return []byte(password), false, nil
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrCredentialSeal, err)
	}

	return secretbox.Seal(nonce[:], []byte(password), &nonce, db.key), true, nil
}

func (db *DB) openPassword(stored []byte, sealed bool) (string, error) {
	if !sealed {
		return string(stored), nil
	}

	if db.key == nil {
		return "", fmt.Errorf("%w: password is sealed but no credential key is configured", ErrCredentialSeal)
	}

	if len(stored) < nonceSize {
		return "", fmt.Errorf("%w: sealed password too short", ErrCredentialSeal)
	}

	var nonce [nonceSize]byte
	copy(nonce[:], stored[:nonceSize])

	plain, ok := secretbox.Open(nil, stored[nonceSize:], &nonce, db.key)
	if !ok {
		return "", fmt.Errorf("%w: cannot open sealed password", ErrCredentialSeal)
	}

	return string(plain), nil
}

func (db *DB) GetCredentials(ctx context.Context, deviceID int64) (models.Credentials, error) {
	var (
		username string
		stored   []byte
		sealed   bool
	)

	err := db.QueryRowContext(ctx,
		`SELECT username, password, password_sealed FROM devices WHERE id = ?`, deviceID).
		Scan(&username, &stored, &sealed)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Credentials{}, fmt.Errorf("device %d: %w", deviceID, ErrNotFound)
	}

	if err != nil {
		return models.Credentials{}, fmt.Errorf("%w credentials: %w", ErrFailedToQuery, err)
	}

	if username == "" {
		return models.Credentials{}, fmt.Errorf("device %d: %w", deviceID, ErrNoCredentials)
	}

	password, err := db.openPassword(stored, sealed)
	if err != nil {
		return models.Credentials{}, err
	}

	return models.Credentials{Username: username, Password: password}, nil
}
