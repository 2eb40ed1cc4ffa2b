package search

import (
	"sync"
	"testing"
)

func TestFold(t *testing.T) {
	cases := map[string]string{
		"":               "",
		"Cat":            "cat",
		"  Con  Mèo ":    "con meo",
		"Đường":          "duong",
		"Rất Dễ":         "rat de",
		"ƯỚC MƠ":         "uoc mo",
		"tab\tand\nline": "tab and line",
		"/kæt/":          "/kæt/",
	}
	for in, want := range cases {
		if got := Fold(in); got != want {
			t.Fatalf("Fold(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMatcher_EmptyQueryMatchesAll(t *testing.T) {
	m := NewMatcher("   ")
	if !m.Empty() || !m.Match() || !m.Match("anything") {
		t.Fatalf("empty matcher should accept everything")
	}
}

func TestMatcher_SubstringAcrossFields(t *testing.T) {
	m := NewMatcher("meo")
	if !m.Match("cat", "con mèo") {
		t.Fatalf("expected diacritic-insensitive hit")
	}
	if m.Match("dog", "con chó") {
		t.Fatalf("unexpected hit")
	}

	// contiguous by default: words out of order do not match
	if NewMatcher("meo con").Match("con mèo") {
		t.Fatalf("substring mode must keep word order")
	}
}

func TestMatcher_AllTerms(t *testing.T) {
	m := NewMatcher("MEO con", WithAllTerms())
	if !m.Match("con mèo") {
		t.Fatalf("all-terms mode should ignore order")
	}
	if !m.Match("mèo", "con") {
		t.Fatalf("terms may come from different fields")
	}
	if m.Match("con chó") {
		t.Fatalf("missing term must fail")
	}
}

func TestMatcher_MinQueryRunes(t *testing.T) {
	m := NewMatcher("a", WithMinQueryRunes(2))
	if !m.Empty() {
		t.Fatalf("short query should be treated as empty")
	}
	if NewMatcher("ab", WithMinQueryRunes(2)).Empty() {
		t.Fatalf("query at threshold should be kept")
	}
}

type word struct{ en, vi string }

func fields(w word) []string { return []string{w.en, w.vi} }

func TestFilter_PreservesOrderAndCaps(t *testing.T) {
	items := []word{
		{"cat", "con mèo"},
		{"dog", "con chó"},
		{"kitten", "mèo con"},
	}

	got := Filter(items, "mèo", fields)
	if len(got) != 2 || got[0].en != "cat" || got[1].en != "kitten" {
		t.Fatalf("unexpected filter result: %+v", got)
	}

	capped := Filter(items, "con", fields, WithMaxResults(2))
	if len(capped) != 2 || capped[1].en != "dog" {
		t.Fatalf("unexpected capped result: %+v", capped)
	}

	none := Filter(items, "zzz", fields)
	if none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", none)
	}
}

func TestFold_ConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if Fold("Mèo") != "meo" {
					t.Errorf("bad fold")
					return
				}
			}
		}()
	}
	wg.Wait()
}
