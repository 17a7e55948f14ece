package entity

import (
	"math"
	"testing"
)

func TestNewVideoPageMiddle(t *testing.T) {
	p := NewVideoPage(make([]VideoWithOwner, 10), 35, 2, 10)
	if p.TotalPages != 4 {
		t.Fatalf("total pages: got %d want 4", p.TotalPages)
	}
	if p.PagingCounter != 11 {
		t.Fatalf("paging counter: got %d want 11", p.PagingCounter)
	}
	if !p.HasPrevPage || p.PrevPage == nil || *p.PrevPage != 1 {
		t.Fatalf("unexpected prev page: %+v", p)
	}
	if !p.HasNextPage || p.NextPage == nil || *p.NextPage != 3 {
		t.Fatalf("unexpected next page: %+v", p)
	}
}

func TestNewVideoPageLast(t *testing.T) {
	p := NewVideoPage(make([]VideoWithOwner, 5), 35, 4, 10)
	if p.HasNextPage || p.NextPage != nil {
		t.Fatalf("last page should have no next page: %+v", p)
	}
}

func TestNewVideoPageEmpty(t *testing.T) {
	p := NewVideoPage(nil, 0, 1, 10)
	if p.Videos == nil {
		t.Fatal("videos should be an empty slice, not nil")
	}
	if p.TotalPages != 0 || p.HasPrevPage || p.HasNextPage {
		t.Fatalf("unexpected metadata: %+v", p)
	}
}

func TestVideoQuerySkip(t *testing.T) {
	cases := []struct {
		page, limit, want int64
	}{
		{1, 10, 0},
		{3, 20, 40},
		{0, 10, 0},
		{math.MaxInt64, 100, (math.MaxInt64/100 - 1) * 100},
		{1e17, 100, (math.MaxInt64/100 - 1) * 100},
	}
	for _, tc := range cases {
		if got := (VideoQuery{Page: tc.page, Limit: tc.limit}).Skip(); got != tc.want {
			t.Errorf("Skip(page=%d, limit=%d) = %d, want %d", tc.page, tc.limit, got, tc.want)
		}
	}
}

func TestNewVideoPageHugePage(t *testing.T) {
	p := NewVideoPage(nil, 3, math.MaxInt64, 100)
	if p.PagingCounter < 1 {
		t.Fatalf("paging counter overflowed: %d", p.PagingCounter)
	}
}
