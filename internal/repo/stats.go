package repo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-vocab-backend/internal/domain"
)

// TableStats is a cheap fingerprint of the vocabulary table. Every create,
// edit, review or delete changes Rows or LastWrite.
type TableStats struct {
	Rows      int64
	LastWrite time.Time
}

// Version renders the stats as "rows:unixnano", or "0:0" for an empty table.
func (s TableStats) Version() string {
	if s.Rows == 0 {
		return "0:0"
	}
	return fmt.Sprintf("%d:%d", s.Rows, s.LastWrite.UnixNano())
}

// VocabularyStats reads TableStats. The newest updated_at is fetched by
// ordering rather than MAX(), which SQLite hands back as TEXT.
func VocabularyStats(ctx context.Context, db *gorm.DB) (TableStats, error) {
	var st TableStats
	q := db.WithContext(ctx).Model(&domain.Vocabulary{})
	if err := q.Count(&st.Rows).Error; err != nil {
		return TableStats{}, fmt.Errorf("count vocabularies: %w", err)
	}
	if st.Rows == 0 {
		return st, nil
	}

	var latest struct{ UpdatedAt time.Time }
	err := db.WithContext(ctx).Model(&domain.Vocabulary{}).
		Select("updated_at").
		Order("updated_at DESC").
		Limit(1).
		Scan(&latest).Error
	if err != nil {
		return TableStats{}, fmt.Errorf("latest vocabulary write: %w", err)
	}
	st.LastWrite = latest.UpdatedAt.UTC()
	return st, nil
}
