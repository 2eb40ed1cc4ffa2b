package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-vocab-backend/internal/domain"
)

// ErrDuplicate is returned when a live record already holds (scope, key).
var ErrDuplicate = errors.New("duplicate")

// GetIdempotency returns the record for (scope, key) if it has not expired
// at now. Blank keys and expired records both yield ErrNotFound.
func GetIdempotency(ctx context.Context, db *gorm.DB, scope, key string, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("scope = ? AND key = ?", scope, key).
		Where("expires_at > ?", now).
		Take(&rec).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, err
	}
	return &rec, nil
}

// CreateIdempotency remembers that key produced resourceID with status for
// ttl. An expired record under the same key is replaced; a live one yields
// ErrDuplicate.
func CreateIdempotency(ctx context.Context, db *gorm.DB, scope, key, resourceID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("idempotency id: %w", err)
	}
	now := time.Now().UTC()
	rec := &domain.Idempotency{
		ID:         id.String(),
		Scope:      scope,
		Key:        key,
		ResourceID: resourceID,
		Status:     status,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stale := tx.Where("scope = ? AND key = ? AND expires_at <= ?", scope, key, now).
			Delete(&domain.Idempotency{})
		if stale.Error != nil {
			return stale.Error
		}
		return tx.Create(rec).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// isUniqueViolation also matches the plain-text errors glebarez/sqlite
// returns instead of gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"unique constraint failed", "constraint failed: unique", "duplicate key value"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// PurgeExpiredIdempotency deletes every record expired at or before now and
// reports how many went.
func PurgeExpiredIdempotency(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.Idempotency{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge idempotency: %w", res.Error)
	}
	return res.RowsAffected, nil
}
