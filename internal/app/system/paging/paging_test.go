package paging

import (
	"math"
	"testing"
)

func TestParsePositive(t *testing.T) {
	tests := []struct {
		in   string
		def  int
		want int
	}{
		{"", 1, 1},
		{"3", 1, 3},
		{" 7 ", 1, 7},
		{"2abc", 1, 2},
		{"abc", 50, 50},
		{"0", 50, 50},
		{"-4", 1, 1},
		{"+5", 1, 5},
		{"1.9", 1, 1},
		{"25", 50, 25},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParsePositive(tt.in, tt.def); got != tt.want {
				t.Errorf("ParsePositive(%q, %d) = %d, want %d", tt.in, tt.def, got, tt.want)
			}
		})
	}
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		limit    int
		total    int64
		wantNext *PageRef
		wantPrev *PageRef
	}{
		{"first of three", 1, 50, 120, &PageRef{Page: 2, Limit: 50}, nil},
		{"middle", 2, 50, 120, &PageRef{Page: 3, Limit: 50}, &PageRef{Page: 1, Limit: 50}},
		{"last of three", 3, 50, 120, nil, &PageRef{Page: 2, Limit: 50}},
		{"single page", 1, 50, 10, nil, nil},
		{"exact fit", 1, 50, 50, nil, nil},
		{"past the end", 5, 50, 120, nil, &PageRef{Page: 4, Limit: 50}},
		{"empty collection", 1, 50, 0, nil, nil},
		{"max page", math.MaxInt, 50, 120, nil, &PageRef{Page: math.MaxInt - 1, Limit: 50}},
		{"max limit", 2, math.MaxInt, 120, nil, &PageRef{Page: 1, Limit: math.MaxInt}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.page, tt.limit, tt.total)
			if !sameRef(got.Next, tt.wantNext) {
				t.Errorf("Next = %+v, want %+v", got.Next, tt.wantNext)
			}
			if !sameRef(got.Prev, tt.wantPrev) {
				t.Errorf("Prev = %+v, want %+v", got.Prev, tt.wantPrev)
			}
		})
	}
}

func TestStartIndex(t *testing.T) {
	if got := StartIndex(1, 50); got != 0 {
		t.Errorf("StartIndex(1, 50) = %d, want 0", got)
	}
	if got := StartIndex(3, 25); got != 50 {
		t.Errorf("StartIndex(3, 25) = %d, want 50", got)
	}
}

func TestStartIndex_Saturates(t *testing.T) {
	tests := []struct {
		page, limit int
	}{
		{math.MaxInt, 50},
		{2, math.MaxInt},
		{math.MaxInt, math.MaxInt},
	}
	for _, tt := range tests {
		got := StartIndex(tt.page, tt.limit)
		if got < 0 {
			t.Errorf("StartIndex(%d, %d) = %d, want non-negative", tt.page, tt.limit, got)
		}
		if got != math.MaxInt64 {
			t.Errorf("StartIndex(%d, %d) = %d, want %d", tt.page, tt.limit, got, int64(math.MaxInt64))
		}
	}
}

func sameRef(a, b *PageRef) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
