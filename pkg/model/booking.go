package model

import (
	"time"
)

// Booking is a single reserved time window with requester contact details
// and confirmation status. Windows are half-open: [start_time, end_time).
type Booking struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name,omitempty" bson:"name,omitempty" validate:"required,max=120"`
	Email     string    `json:"email,omitempty" bson:"email,omitempty" validate:"required,email"`
	Phone     string    `json:"phone,omitempty" bson:"phone,omitempty" validate:"required,booking_phone"`
	Type      string    `json:"type" bson:"type" validate:"required"`
	Notes     string    `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=2000"`
	StartTime time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" bson:"end_time" validate:"required"`
	Confirmed bool      `json:"confirmed" bson:"confirmed"`
	CreatedAt time.Time `json:"created_at,omitempty" bson:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// BookingUpdate carries a partial administrative update. Nil/empty fields
// retain the current value; time fields are pointers so "absent" and "zero"
// stay distinguishable.
type BookingUpdate struct {
	Name      string     `json:"name,omitempty" validate:"omitempty,max=120"`
	Email     string     `json:"email,omitempty" validate:"omitempty,email"`
	Phone     string     `json:"phone,omitempty" validate:"omitempty,booking_phone"`
	Type      string     `json:"type,omitempty"`
	Notes     *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

// ChangesWindow reports whether the update touches either time field, which
// forces a fresh overlap check against the rest of the collection.
func (u *BookingUpdate) ChangesWindow() bool {
	return u.StartTime != nil || u.EndTime != nil
}

// PublicBooking is the redacted projection served to non-administrators.
// Contact details and notes are never part of it.
type PublicBooking struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Type      string    `json:"type"`
}

// SlotLock is an advisory lock document keyed by the requested window.
// A unique _id insert acts as the lock acquisition; ExpiresAt backs a TTL
// index so crashed holders cannot wedge a slot.
type SlotLock struct {
	ID        string    `bson:"_id"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}
