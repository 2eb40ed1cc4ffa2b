package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/go-vocab-backend/internal/domain"
)

func TestVocabularyStats(t *testing.T) {
	ctx := context.Background()

	if _, err := VocabularyStats(ctx, newTestDB(t)); err == nil {
		t.Fatal("missing table must surface as an error")
	}

	db := newTestDB(t, &domain.Vocabulary{})
	st, err := VocabularyStats(ctx, db)
	if err != nil {
		t.Fatalf("empty: %v", err)
	}
	if st.Rows != 0 || !st.LastWrite.IsZero() || st.Version() != "0:0" {
		t.Fatalf("empty table stats = %+v (%s)", st, st.Version())
	}

	older := time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC)
	// newest first, so insertion order cannot fake the answer
	for _, seed := range []struct {
		id string
		ts time.Time
	}{{"n", newer}, {"o", older}} {
		id := seed.id
		v := vocab(id, "2025-01-01")
		v.CreatedAt, v.UpdatedAt = seed.ts, seed.ts
		if err := db.Create(&v).Error; err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}

	st, err = VocabularyStats(ctx, db)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Rows != 2 || !st.LastWrite.Equal(newer) {
		t.Fatalf("stats = %+v, want 2 rows at %v", st, newer)
	}
	before := st.Version()

	if err := db.Delete(&domain.Vocabulary{}, "id = ?", "o").Error; err != nil {
		t.Fatalf("delete: %v", err)
	}
	st, _ = VocabularyStats(ctx, db)
	if st.Version() == before {
		t.Fatalf("version %s unchanged after delete", before)
	}
}
