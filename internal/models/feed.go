package models

// Feed sort modes
const (
	SortNewest   = "newest"
	SortPopular  = "popular"
	SortTrending = "trending"
)

// Pagination bounds. Limits outside the range are clamped, never rejected.
const (
	MinLimit     = 1
	MaxLimit     = 100
	DefaultLimit = 20
)

// Trending windows in days
var TrendingWindows = []int{1, 7, 30}

// DefaultTrendingWindow is used when sort=trending is requested through the
// feed endpoint, which carries no window parameter.
const DefaultTrendingWindow = 7

// ValidSort reports whether s is a recognized feed sort mode.
func ValidSort(s string) bool {
	switch s {
	case SortNewest, SortPopular, SortTrending:
		return true
	}
	return false
}

// ValidWindow reports whether w is a supported trending window.
func ValidWindow(w int) bool {
	for _, v := range TrendingWindows {
		if w == v {
			return true
		}
	}
	return false
}

// ClampLimit coerces limit into [MinLimit, MaxLimit].
func ClampLimit(limit int) int {
	if limit < MinLimit {
		return MinLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// ClampPage coerces page to 1 when zero or negative. Malformed numeric input
// is coerced to the nearest valid value by policy, not rejected.
func ClampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// FeedQuery is a normalized feed listing request. Cursor, when set, takes
// precedence over Page.
type FeedQuery struct {
	Category string
	Sort     string
	Page     int
	Limit    int
	Cursor   string
}

// TrendingQuery is a normalized trending request
type TrendingQuery struct {
	WindowDays int
	Category   string
	Page       int
	Limit      int
	Cursor     string
}

// PaginationMeta describes the position of a page within the result set.
// Page/TotalCount/TotalPages are populated in page mode, NextCursor in
// cursor mode; HasMore is always set.
type PaginationMeta struct {
	Page       int    `json:"page,omitempty"`
	Limit      int    `json:"limit"`
	TotalCount int64  `json:"total_count,omitempty"`
	TotalPages int    `json:"total_pages,omitempty"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// AppliedFilters echoes back the filters the query actually ran with
type AppliedFilters struct {
	Category string `json:"category,omitempty"`
	Sort     string `json:"sort"`
}

// FeedResponse is the feed listing payload
type FeedResponse struct {
	Items          []Paper        `json:"items"`
	Pagination     PaginationMeta `json:"pagination"`
	AppliedFilters AppliedFilters `json:"applied_filters"`
}

// TrendingMeta describes the trending window the result was computed over
type TrendingMeta struct {
	WindowDays int    `json:"window"`
	Category   string `json:"category,omitempty"`
}

// TrendingResponse is the trending listing payload
type TrendingResponse struct {
	Items      []Paper        `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
	Meta       TrendingMeta   `json:"meta"`
}
