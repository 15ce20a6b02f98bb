package pagination

import "testing"

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total int64
		size  int
		want  int
	}{
		{total: 25, size: 10, want: 3},
		{total: 0, size: 10, want: 1},
		{total: 20, size: 10, want: 2},
		{total: 1, size: 6, want: 1},
		{total: 7, size: 6, want: 2},
		{total: 40, size: 0, want: 1},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.size); got != tt.want {
			t.Fatalf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.size, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	p := Normalize(0, 0, 6, 100)
	if p.Number != 1 || p.Size != 6 {
		t.Fatalf("expected defaults 1/6, got %+v", p)
	}
	if p.Offset() != 0 {
		t.Fatalf("expected offset 0, got %d", p.Offset())
	}

	p = Normalize(3, 500, 20, 100)
	if p.Size != 100 || p.Offset() != 200 {
		t.Fatalf("expected clamp to 100 and offset 200, got %+v offset=%d", p, p.Offset())
	}

	p = Normalize(2, 0, 0, 100)
	if p.Paged() || p.Offset() != 0 {
		t.Fatalf("expected unpaged request, got %+v", p)
	}
}
