package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-vocab-backend/internal/domain"
)

func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	// Unique DB per test to avoid schema leaking across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func seedVocab(t *testing.T, db *gorm.DB, items ...domain.Vocabulary) {
	t.Helper()
	for i := range items {
		if err := db.Create(&items[i]).Error; err != nil {
			t.Fatalf("seed %s: %v", items[i].ID, err)
		}
	}
}

func vocab(id, target string) domain.Vocabulary {
	return domain.Vocabulary{
		ID:         id,
		English:    "en-" + id,
		Vietnamese: "vi-" + id,
		Collection: "default",
		Step:       "0",
		Target:     target,
	}
}

func strp(s string) *string { return &s }

func TestCreateVocabulary_Error_NoTable(t *testing.T) {
	db := newTestDB(t /* no migrations */)
	v := vocab("a", "2025-01-01")
	if err := CreateVocabulary(context.Background(), db, &v); err == nil {
		t.Fatalf("expected error creating without table")
	}
}

func TestCreateAndGetVocabulary(t *testing.T) {
	db := newTestDB(t, &domain.Vocabulary{})
	ctx := context.Background()

	v := domain.Vocabulary{ID: "v1", English: "cat", Vietnamese: "con mèo", PartOfSpeech: "noun", Step: "0", Target: "2025-02-03"}
	if err := CreateVocabulary(ctx, db, &v); err != nil {
		t.Fatalf("CreateVocabulary: %v", err)
	}
	got, err := GetVocabulary(ctx, db, "v1")
	if err != nil {
		t.Fatalf("GetVocabulary: %v", err)
	}
	if got.English != "cat" || got.PartOfSpeech != "noun" || got.Target != "2025-02-03" {
		t.Fatalf("round-trip mismatch: %+v", got)
	}

	if _, err := GetVocabulary(ctx, db, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListVocabularies_OrderAndFilters(t *testing.T) {
	db := newTestDB(t, &domain.Vocabulary{})
	ctx := context.Background()

	other := vocab("d", "2025-01-01")
	other.Collection = "travel"
	seedVocab(t, db,
		vocab("c", "2025-03-01"),
		vocab("a", "2025-01-15"),
		vocab("b", "2025-01-15"),
		other,
	)

	all, err := ListVocabularies(ctx, db, ListFilter{})
	if err != nil {
		t.Fatalf("ListVocabularies: %v", err)
	}
	want := []string{"d", "a", "b", "c"}
	if len(all) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(all))
	}
	for i, id := range want {
		if all[i].ID != id {
			t.Fatalf("order mismatch at %d: got %s want %s (%+v)", i, all[i].ID, id, all)
		}
	}

	due, err := ListVocabularies(ctx, db, ListFilter{DueOn: "2025-01-15"})
	if err != nil {
		t.Fatalf("ListVocabularies due: %v", err)
	}
	if len(due) != 3 {
		t.Fatalf("expected 3 due rows, got %d", len(due))
	}

	travel, err := ListVocabularies(ctx, db, ListFilter{Collection: "travel"})
	if err != nil || len(travel) != 1 || travel[0].ID != "d" {
		t.Fatalf("collection filter: err=%v rows=%+v", err, travel)
	}

	limited, err := ListVocabularies(ctx, db, ListFilter{Limit: 2})
	if err != nil || len(limited) != 2 || limited[0].ID != "d" {
		t.Fatalf("limit: err=%v rows=%+v", err, limited)
	}
}

func TestListVocabularies_EmptyIsNonNil(t *testing.T) {
	db := newTestDB(t, &domain.Vocabulary{})
	out, err := ListVocabularies(context.Background(), db, ListFilter{})
	if err != nil {
		t.Fatalf("ListVocabularies: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", out)
	}
}

func TestCountDue(t *testing.T) {
	db := newTestDB(t, &domain.Vocabulary{})
	seedVocab(t, db, vocab("a", "2025-01-01"), vocab("b", "2025-01-02"), vocab("c", "2025-01-03"))

	n, err := CountDue(context.Background(), db, "2025-01-02")
	if err != nil {
		t.Fatalf("CountDue: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 due, got %d", n)
	}
}

func TestUpdateSchedule_ReturnsPersistedRowAndKeepsOtherFields(t *testing.T) {
	db := newTestDB(t, &domain.Vocabulary{})
	ctx := context.Background()
	orig := vocab("a", "2025-01-01")
	orig.IPA = "/kæt/"
	orig.Example = "The cat sleeps."
	seedVocab(t, db, orig)

	got, err := UpdateSchedule(ctx, db, "a", "7-15", "2025-01-10")
	if err != nil {
		t.Fatalf("UpdateSchedule: %v", err)
	}
	if got.Step != "7-15" || got.Target != "2025-01-10" {
		t.Fatalf("schedule not applied: %+v", got)
	}
	if got.English != orig.English || got.IPA != orig.IPA || got.Example != orig.Example || got.Collection != orig.Collection {
		t.Fatalf("unrelated fields changed: %+v", got)
	}

	if _, err := UpdateSchedule(ctx, db, "missing", "1", "2025-01-02"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got %v", err)
	}
}

func TestUpdateVocabulary_PartialChanges(t *testing.T) {
	db := newTestDB(t, &domain.Vocabulary{})
	ctx := context.Background()
	seedVocab(t, db, vocab("a", "2025-01-01"))

	got, err := UpdateVocabulary(ctx, db, "a", VocabularyChanges{English: strp("dog"), Example: strp("")})
	if err != nil {
		t.Fatalf("UpdateVocabulary: %v", err)
	}
	if got.English != "dog" || got.Vietnamese != "vi-a" || got.Step != "0" || got.Target != "2025-01-01" {
		t.Fatalf("unexpected row: %+v", got)
	}

	// Empty change set is a plain read.
	same, err := UpdateVocabulary(ctx, db, "a", VocabularyChanges{})
	if err != nil || same.English != "dog" {
		t.Fatalf("empty changes: err=%v row=%+v", err, same)
	}
	if _, err := UpdateVocabulary(ctx, db, "zzz", VocabularyChanges{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateScheduleBatch_SameValuesForAll(t *testing.T) {
	db := newTestDB(t, &domain.Vocabulary{})
	ctx := context.Background()
	seedVocab(t, db, vocab("a", "2025-01-01"), vocab("b", "2025-01-02"), vocab("c", "2025-01-03"), vocab("d", "2025-01-04"))

	n, err := UpdateScheduleBatch(ctx, db, []string{"a", "b", "c", "ghost"}, "7-15", "2025-02-01")
	if err != nil {
		t.Fatalf("UpdateScheduleBatch: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 rows affected, got %d", n)
	}
	for _, id := range []string{"a", "b", "c"} {
		v, err := GetVocabulary(ctx, db, id)
		if err != nil {
			t.Fatalf("get %s: %v", id, err)
		}
		if v.Step != "7-15" || v.Target != "2025-02-01" {
			t.Fatalf("%s not updated: %+v", id, v)
		}
	}
	d, _ := GetVocabulary(ctx, db, "d")
	if d.Step != "0" || d.Target != "2025-01-04" {
		t.Fatalf("untouched row changed: %+v", d)
	}
}

func TestDeleteVocabularies_RemovesOnlyGivenIDs(t *testing.T) {
	db := newTestDB(t, &domain.Vocabulary{})
	ctx := context.Background()
	seedVocab(t, db, vocab("a", "2025-01-01"), vocab("b", "2025-01-02"))

	n, err := DeleteVocabularies(ctx, db, []string{"a"})
	if err != nil || n != 1 {
		t.Fatalf("DeleteVocabularies: n=%d err=%v", n, err)
	}
	if _, err := GetVocabulary(ctx, db, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("a should be gone, got %v", err)
	}
	if _, err := GetVocabulary(ctx, db, "b"); err != nil {
		t.Fatalf("b should remain: %v", err)
	}
}

func TestDeleteVocabularies_Error_NoTable(t *testing.T) {
	db := newTestDB(t /* no migrations */)
	if _, err := DeleteVocabularies(context.Background(), db, []string{"a"}); err == nil {
		t.Fatalf("expected error when table missing")
	}
}
