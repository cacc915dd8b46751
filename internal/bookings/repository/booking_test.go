package repository

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"bookline/pkg/model"
)

func TestBuildFilter(t *testing.T) {
	from := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC)
	confirmed := false

	tests := []struct {
		name   string
		filter model.BookingFilter
		want   bson.M
	}{
		{
			name:   "empty filter matches everything",
			filter: model.BookingFilter{},
			want:   bson.M{},
		},
		{
			name:   "type and email",
			filter: model.BookingFilter{Type: "massage", Email: "jane@example.com"},
			want:   bson.M{"type": "massage", "email": "jane@example.com"},
		},
		{
			name:   "time range uses half-open overlap bounds",
			filter: model.BookingFilter{From: &from, To: &to},
			want: bson.M{
				"start_time": bson.M{"$lt": to},
				"end_time":   bson.M{"$gt": from},
			},
		},
		{
			name:   "both start_time bounds merge into one clause",
			filter: model.BookingFilter{StartsAt: &from, To: &to},
			want: bson.M{
				"start_time": bson.M{"$gte": from, "$lt": to},
			},
		},
		{
			name:   "unconfirmed upcoming",
			filter: model.BookingFilter{Confirmed: &confirmed, StartsAt: &from},
			want: bson.M{
				"confirmed":  false,
				"start_time": bson.M{"$gte": from},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildFilter(tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("buildFilter() = %v, want %v", got, tt.want)
			}
			for key, want := range tt.want {
				gotVal, ok := got[key]
				if !ok {
					t.Errorf("missing key %q", key)
					continue
				}
				switch wantM := want.(type) {
				case bson.M:
					gotM, ok := gotVal.(bson.M)
					if !ok {
						t.Errorf("key %q: expected bson.M, got %T", key, gotVal)
						continue
					}
					for op, bound := range wantM {
						if gotBound, ok := gotM[op]; !ok || gotBound != bound {
							t.Errorf("key %q op %q: got %v, want %v", key, op, gotBound, bound)
						}
					}
				default:
					if gotVal != want {
						t.Errorf("key %q: got %v, want %v", key, gotVal, want)
					}
				}
			}
		})
	}
}
