// Package visibility shapes requester-supplied filters and output
// projections by actor role. It is the only place role branching happens on
// the read path; callers consume the shaped (filter, options) pair and never
// inspect the role themselves.
package visibility

import (
	"bookline/pkg/model"
)

// PublicProjection is the safe field subset served to non-administrators.
var PublicProjection = []string{"_id", "start_time", "end_time", "type"}

var sortableFields = map[string]bool{
	"start_time": true,
	"end_time":   true,
	"created_at": true,
	"type":       true,
}

// Shaper turns untrusted query input into a trusted repository query.
type Shaper struct {
	defaultLimit int
	maxLimit     int
}

func NewShaper(defaultLimit, maxLimit int) *Shaper {
	if defaultLimit < 1 {
		defaultLimit = 1
	}
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	return &Shaper{
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// Shape applies the role rules: non-administrators may not filter by email
// and only receive the public projection. Administrators pass through
// unrestricted. Pure transform; no side effects.
func (s *Shaper) Shape(actor model.Actor, raw model.RawFilter, rawOpts model.RawOptions) (model.BookingFilter, model.QueryOptions) {
	filter := model.BookingFilter{
		From: raw.From,
		To:   raw.To,
		Type: raw.Type,
	}

	opts := s.shapeOptions(rawOpts)

	if actor.IsAdmin() {
		filter.Email = raw.Email
		return filter, opts
	}

	opts.Projection = PublicProjection
	return filter, opts
}

func (s *Shaper) shapeOptions(raw model.RawOptions) model.QueryOptions {
	opts := model.QueryOptions{
		SortField: "start_time",
		SortAsc:   true,
		Limit:     s.defaultLimit,
		Page:      1,
	}

	if field, asc, ok := parseSortBy(raw.SortBy); ok {
		opts.SortField = field
		opts.SortAsc = asc
	}

	if raw.Limit >= 1 {
		opts.Limit = raw.Limit
		if opts.Limit > s.maxLimit {
			opts.Limit = s.maxLimit
		}
	}
	if raw.Page >= 1 {
		opts.Page = raw.Page
	}

	return opts
}

// parseSortBy accepts "field" or "field:asc|desc" over a whitelist of
// sortable fields.
func parseSortBy(sortBy string) (field string, asc bool, ok bool) {
	if sortBy == "" {
		return "", false, false
	}

	field = sortBy
	asc = true
	for i := 0; i < len(sortBy); i++ {
		if sortBy[i] == ':' {
			field = sortBy[:i]
			asc = sortBy[i+1:] != "desc"
			break
		}
	}

	if !sortableFields[field] {
		return "", false, false
	}
	return field, asc, true
}

// Redact maps bookings to their public projection. Used alongside the
// database-level projection so redacted fields neither leave storage nor
// appear in the response shape.
func Redact(bookings []*model.Booking) []model.PublicBooking {
	out := make([]model.PublicBooking, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, model.PublicBooking{
			ID:        b.ID,
			StartTime: b.StartTime,
			EndTime:   b.EndTime,
			Type:      b.Type,
		})
	}
	return out
}
