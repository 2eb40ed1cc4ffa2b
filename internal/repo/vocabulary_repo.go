// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// Vocabulary model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no scheduling rules live here. The
// caller computes step and target; the repository only guarantees that the
// two are written by the same statement.
//
// Error semantics:
//   - When a vocabulary is not found, functions return ErrNotFound
//     (an alias of gorm.ErrRecordNotFound).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-vocab-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ListFilter narrows ListVocabularies. Zero values disable a filter.
type ListFilter struct {
	// Collection keeps only records in this collection (exact match).
	Collection string
	// DueOn keeps only records whose target is on or before this
	// YYYY-MM-DD date.
	DueOn string
	// Limit caps the number of rows; <= 0 means no cap.
	Limit int
}

// VocabularyChanges is a partial update. Nil fields are left untouched.
type VocabularyChanges struct {
	English      *string
	Vietnamese   *string
	IPA          *string
	Example      *string
	Collection   *string
	PartOfSpeech *string
	Step         *string
	Target       *string
}

func (c VocabularyChanges) columns() map[string]any {
	cols := make(map[string]any, 8)
	set := func(col string, v *string) {
		if v != nil {
			cols[col] = *v
		}
	}
	set("english", c.English)
	set("vietnamese", c.Vietnamese)
	set("ipa", c.IPA)
	set("example", c.Example)
	set("collection", c.Collection)
	set("part_of_speech", c.PartOfSpeech)
	set("step", c.Step)
	set("target", c.Target)
	return cols
}

// CreateVocabulary inserts v as-is. The caller assigns ID, Step and Target.
func CreateVocabulary(ctx context.Context, db *gorm.DB, v *domain.Vocabulary) error {
	return db.WithContext(ctx).Create(v).Error
}

// ListVocabularies returns records ordered by ascending target, ties broken
// by id (which is time-ordered, so older words come first).
func ListVocabularies(ctx context.Context, db *gorm.DB, f ListFilter) ([]domain.Vocabulary, error) {
	q := db.WithContext(ctx).Model(&domain.Vocabulary{})
	if f.Collection != "" {
		q = q.Where("collection = ?", f.Collection)
	}
	if f.DueOn != "" {
		q = q.Where("target <= ?", f.DueOn)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	out := []domain.Vocabulary{}
	err := q.Order("target asc").Order("id asc").Find(&out).Error
	return out, err
}

// CountDue returns how many records have a target on or before day.
func CountDue(ctx context.Context, db *gorm.DB, day string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Vocabulary{}).
		Where("target <= ?", day).
		Count(&n).Error
	return n, err
}

// GetVocabulary fetches a single record by id, or ErrNotFound.
func GetVocabulary(ctx context.Context, db *gorm.DB, id string) (*domain.Vocabulary, error) {
	var v domain.Vocabulary
	if err := db.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// UpdateVocabulary applies ch to the record identified by id and returns the
// persisted row. The update and the read-back run in one transaction. An
// empty change set is a plain read.
func UpdateVocabulary(ctx context.Context, db *gorm.DB, id string, ch VocabularyChanges) (*domain.Vocabulary, error) {
	cols := ch.columns()
	if len(cols) == 0 {
		return GetVocabulary(ctx, db, id)
	}

	var out domain.Vocabulary
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Vocabulary{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("id = ?", id).First(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSchedule writes step and target for one record and returns it.
func UpdateSchedule(ctx context.Context, db *gorm.DB, id, step, target string) (*domain.Vocabulary, error) {
	return UpdateVocabulary(ctx, db, id, VocabularyChanges{Step: &step, Target: &target})
}

// UpdateScheduleBatch writes the same (step, target) pair to every id in one
// bulk UPDATE and returns the number of rows matched. Unknown ids are
// silently skipped.
func UpdateScheduleBatch(ctx context.Context, db *gorm.DB, ids []string, step, target string) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Vocabulary{}).
		Where("id IN ?", ids).
		Updates(map[string]any{"step": step, "target": target})
	return res.RowsAffected, res.Error
}

// DeleteVocabularies removes every record whose id is in ids and returns the
// number of rows deleted.
func DeleteVocabularies(ctx context.Context, db *gorm.DB, ids []string) (int64, error) {
	res := db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&domain.Vocabulary{})
	return res.RowsAffected, res.Error
}
