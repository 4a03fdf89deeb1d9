// internal/app/system/paging/paging.go
package paging

import (
	"math"
	"strconv"
	"strings"
)

// DefaultLimit is the page size used when the request does not supply a
// usable "limit".
const DefaultLimit = 50

// DefaultPage is the page used when the request does not supply a usable
// "page".
const DefaultPage = 1

// ParsePositive reads the leading integer of s (so "3abc" is 3) and returns
// def when s is empty, non-numeric, or not positive. It never fails.
func ParsePositive(s string, def int) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return def
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n < 1 {
		return def
	}
	return n
}

// PageRef points at a neighbouring page.
type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination carries the neighbouring pages of a list response. Either side
// is omitted when no data exists in that direction.
type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

// StartIndex is the number of documents skipped before page. Products that
// do not fit in an int64 saturate at math.MaxInt64.
func StartIndex(page, limit int) int64 {
	return mulSat(int64(page)-1, int64(limit))
}

// mulSat multiplies non-negative a and b, saturating at math.MaxInt64.
func mulSat(a, b int64) int64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	if a > math.MaxInt64/b {
		return math.MaxInt64
	}
	return a * b
}

// Compute builds the pagination block for page/limit against total.
//
// total is the size of the whole collection, not of the filtered result, so
// a narrow filter can still advertise a next page.
func Compute(page, limit int, total int64) Pagination {
	var p Pagination
	start := StartIndex(page, limit)
	end := mulSat(int64(page), int64(limit))
	if end < total && page < math.MaxInt {
		p.Next = &PageRef{Page: page + 1, Limit: limit}
	}
	if start > 0 {
		p.Prev = &PageRef{Page: page - 1, Limit: limit}
	}
	return p
}
