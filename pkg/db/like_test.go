package db

import "testing"

func TestContainsPatternEscapesWildcards(t *testing.T) {
	tests := []struct {
		term string
		want string
	}{
		{term: "INV", want: "%inv%"},
		{term: "50%", want: `%50\%%`},
		{term: "a_b", want: `%a\_b%`},
		{term: `c:\x`, want: `%c:\\x%`},
	}
	for _, tt := range tests {
		if got := ContainsPattern(tt.term); got != tt.want {
			t.Fatalf("ContainsPattern(%q) = %q, want %q", tt.term, got, tt.want)
		}
	}
}

func TestContainsPatternMatchesLiterallyOnSQLite(t *testing.T) {
	conn := newTestDB(t)
	for _, name := range []string{"promo 50% off", "promo 500 off", "a_b", "axb"} {
		if err := conn.Create(&testModel{Name: name}).Error; err != nil {
			t.Fatalf("seed %q: %v", name, err)
		}
	}

	count := func(term string) int64 {
		t.Helper()
		var n int64
		err := conn.Model(&testModel{}).Where("LOWER(name) LIKE ? "+LikeEscape, ContainsPattern(term)).Count(&n).Error
		if err != nil {
			t.Fatalf("count %q: %v", term, err)
		}
		return n
	}
	if got := count("50%"); got != 1 {
		t.Fatalf("expected one literal 50%% match, got %d", got)
	}
	if got := count("a_b"); got != 1 {
		t.Fatalf("expected one literal a_b match, got %d", got)
	}
	if got := count("PROMO"); got != 2 {
		t.Fatalf("expected case-insensitive match on both promos, got %d", got)
	}
}
