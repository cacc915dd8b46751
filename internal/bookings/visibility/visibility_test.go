package visibility

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"bookline/pkg/model"
)

func admin() model.Actor {
	return model.Actor{ID: "admin-1", Role: model.RoleAdmin}
}

func anonymous() model.Actor {
	return model.Actor{}
}

func TestShape_PublicEmailFilterStripped(t *testing.T) {
	s := NewShaper(20, 100)

	raw := model.RawFilter{Email: "x@y.com", Type: "yoga"}
	filter, _ := s.Shape(anonymous(), raw, model.RawOptions{})

	if filter.Email != "" {
		t.Errorf("expected email filter stripped for public actor, got %q", filter.Email)
	}
	if filter.Type != "yoga" {
		t.Errorf("expected type filter preserved, got %q", filter.Type)
	}
}

func TestShape_AdminKeepsEmailFilter(t *testing.T) {
	s := NewShaper(20, 100)

	filter, opts := s.Shape(admin(), model.RawFilter{Email: "x@y.com"}, model.RawOptions{})

	if filter.Email != "x@y.com" {
		t.Errorf("expected email filter preserved for admin, got %q", filter.Email)
	}
	if len(opts.Projection) != 0 {
		t.Errorf("expected no projection restriction for admin, got %v", opts.Projection)
	}
}

func TestShape_PublicProjection(t *testing.T) {
	s := NewShaper(20, 100)

	_, opts := s.Shape(anonymous(), model.RawFilter{}, model.RawOptions{})

	want := map[string]bool{"_id": true, "start_time": true, "end_time": true, "type": true}
	if len(opts.Projection) != len(want) {
		t.Fatalf("expected %d projection fields, got %v", len(want), opts.Projection)
	}
	for _, f := range opts.Projection {
		if !want[f] {
			t.Errorf("unexpected projection field %q", f)
		}
	}
}

func TestShape_TimeRangePassesThrough(t *testing.T) {
	s := NewShaper(20, 100)
	from := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	filter, _ := s.Shape(anonymous(), model.RawFilter{From: &from, To: &to}, model.RawOptions{})

	if filter.From == nil || !filter.From.Equal(from) {
		t.Errorf("expected From preserved, got %v", filter.From)
	}
	if filter.To == nil || !filter.To.Equal(to) {
		t.Errorf("expected To preserved, got %v", filter.To)
	}
}

func TestShapeOptions(t *testing.T) {
	s := NewShaper(20, 100)

	tests := []struct {
		name      string
		raw       model.RawOptions
		wantField string
		wantAsc   bool
		wantLimit int
		wantPage  int
	}{
		{"defaults", model.RawOptions{}, "start_time", true, 20, 1},
		{"explicit sort desc", model.RawOptions{SortBy: "end_time:desc"}, "end_time", false, 20, 1},
		{"bare field sorts asc", model.RawOptions{SortBy: "created_at"}, "created_at", true, 20, 1},
		{"unknown field falls back", model.RawOptions{SortBy: "phone:asc"}, "start_time", true, 20, 1},
		{"limit clamped to max", model.RawOptions{Limit: 5000}, "start_time", true, 100, 1},
		{"zero limit uses default", model.RawOptions{Limit: 0}, "start_time", true, 20, 1},
		{"negative page normalized", model.RawOptions{Page: -3}, "start_time", true, 20, 1},
		{"valid page kept", model.RawOptions{Page: 4, Limit: 10}, "start_time", true, 10, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, opts := s.Shape(admin(), model.RawFilter{}, tt.raw)
			if opts.SortField != tt.wantField {
				t.Errorf("SortField = %q, want %q", opts.SortField, tt.wantField)
			}
			if opts.SortAsc != tt.wantAsc {
				t.Errorf("SortAsc = %v, want %v", opts.SortAsc, tt.wantAsc)
			}
			if opts.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", opts.Limit, tt.wantLimit)
			}
			if opts.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", opts.Page, tt.wantPage)
			}
		})
	}
}

func TestRedact_NeverExposesContactFields(t *testing.T) {
	bookings := []*model.Booking{
		{
			ID:        "b1",
			Name:      "Jane Doe",
			Email:     "jane@example.com",
			Phone:     "+14155552671",
			Type:      "massage",
			Notes:     "private medical detail",
			StartTime: time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC),
		},
	}

	public := Redact(bookings)
	if len(public) != 1 {
		t.Fatalf("expected 1 result, got %d", len(public))
	}

	data, err := json.Marshal(public)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	serialized := string(data)

	for _, forbidden := range []string{"jane@example.com", "+14155552671", "private medical detail", "Jane Doe", "notes", "phone", "email"} {
		if strings.Contains(serialized, forbidden) {
			t.Errorf("public projection leaked %q: %s", forbidden, serialized)
		}
	}

	for _, required := range []string{"b1", "start_time", "end_time", "massage"} {
		if !strings.Contains(serialized, required) {
			t.Errorf("public projection missing %q: %s", required, serialized)
		}
	}
}

func TestRedact_EmptyInput(t *testing.T) {
	if got := Redact(nil); len(got) != 0 {
		t.Errorf("expected empty slice, got %v", got)
	}
}
