package model

import "time"

// RawFilter is the untrusted, requester-supplied filter as parsed from the
// query string. It must pass through visibility shaping before it reaches
// the repository.
type RawFilter struct {
	From  *time.Time
	To    *time.Time
	Type  string
	Email string
}

// RawOptions is the untrusted pagination/sort input.
type RawOptions struct {
	SortBy string
	Limit  int
	Page   int
}

// BookingFilter is the shaped, trusted filter applied by the repository.
// From/To select bookings whose stored window overlaps [From, To), not an
// exact match.
type BookingFilter struct {
	From      *time.Time
	To        *time.Time
	Type      string
	Email     string
	Confirmed *bool
	// StartsAt selects bookings whose start_time is at or after the given
	// instant. Used by the upcoming-unconfirmed listing; unlike From it is
	// not an overlap bound.
	StartsAt *time.Time
}

// QueryOptions is the shaped pagination/sort/projection set. Projection is
// the list of bson fields to fetch; empty means all fields.
type QueryOptions struct {
	SortField  string
	SortAsc    bool
	Limit      int
	Page       int
	Projection []string
}

// Skip converts the 1-based page into a document offset.
func (o QueryOptions) Skip() int64 {
	page := o.Page
	if page < 1 {
		page = 1
	}
	return int64(page-1) * int64(o.Limit)
}

// Page is one page of booking results plus totals.
type Page struct {
	Results      any   `json:"results"`
	Page         int   `json:"page"`
	Limit        int   `json:"limit"`
	TotalResults int64 `json:"total_results"`
}
