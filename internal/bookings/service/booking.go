package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "bookline/internal/bookings/errors"
	"bookline/internal/bookings/repository"
	"bookline/internal/bookings/validator"
	"bookline/internal/notify"
	"bookline/pkg/config"
	apperrors "bookline/pkg/errors"
	"bookline/pkg/model"
	"bookline/pkg/sanitizer"
)

type BookingService interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	Query(ctx context.Context, filter model.BookingFilter, opts model.QueryOptions) ([]*model.Booking, int64, error)
	Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error)
	Delete(ctx context.Context, id string) error
	Confirm(ctx context.Context, id string) (*model.Booking, error)
	Reject(ctx context.Context, id string, message string) error
	CheckAvailability(ctx context.Context, start, end time.Time) (bool, error)
	Unconfirmed(ctx context.Context, opts model.QueryOptions) ([]*model.Booking, int64, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.SlotLockRepository
	validator *validator.BookingValidator
	notifier  notify.Notifier
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.SlotLockRepository,
	validator *validator.BookingValidator,
	notifier notify.Notifier,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		validator: validator,
		notifier:  notifier,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, booking *model.Booking) error {
	s.sanitize(booking)
	// The identifier is assigned by the database on insert. A caller-supplied
	// string _id would never match the ObjectID lookups used everywhere else.
	booking.ID = ""
	booking.Confirmed = false

	if err := s.validate(booking); err != nil {
		return err
	}

	// Advisory lock serializes concurrent creates for the identical window;
	// the unique index backstops the rest.
	lockID, err := s.acquireSlotLock(ctx, booking.StartTime, booking.EndTime)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyWindowFree(sessCtx, booking.StartTime, booking.EndTime, ""); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			if errors.Is(err, bookingserrors.ErrDuplicate) {
				return apperrors.Conflict("A booking with the same email and time range already exists")
			}
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking",
			"email", booking.Email,
			"start_time", booking.StartTime,
			"error", err,
		)
		return err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"type", booking.Type,
		"start_time", booking.StartTime,
		"end_time", booking.EndTime,
	)

	// Notifications are best-effort: the booking is committed either way.
	if err := s.notifier.BookingReceived(ctx, booking); err != nil {
		s.cfg.Log.Warn("Failed to send booking received notification", "id", booking.ID, "error", err)
	}
	if err := s.notifier.PendingReview(ctx, booking); err != nil {
		s.cfg.Log.Warn("Failed to send pending review notification", "id", booking.ID, "error", err)
	}
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.findExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) Query(ctx context.Context, filter model.BookingFilter, opts model.QueryOptions) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.Find(ctx, filter, opts)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings",
				"limit", opts.Limit,
				"page", opts.Page,
				"error", errFind,
			)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return bookings, count, nil
}

func (s *bookingService) Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error) {
	existing, err := s.findExisting(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Booking update validation failed", "id", id, "error", err)
		return nil, s.updateValidationError(err)
	}

	merged := s.mergeBookingUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return nil, err
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if updates.ChangesWindow() {
			if err := s.verifyWindowFree(sessCtx, merged.StartTime, merged.EndTime, id); err != nil {
				return err
			}
		}
		if err := s.repo.Update(sessCtx, id, merged); err != nil {
			if errors.Is(err, bookingserrors.ErrDuplicate) {
				return apperrors.Conflict("A booking with the same email and time range already exists")
			}
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id)
			}
			return apperrors.Internal("Failed to update booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update booking", "id", id, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking updated successfully", "id", id)
	return merged, nil
}

func (s *bookingService) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		// Malformed IDs cannot address any stored booking, so they read
		// the same as a missing one.
		if errors.Is(err, bookingserrors.ErrNotFound) || errors.Is(err, bookingserrors.ErrInvalidID) {
			return apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to delete booking", "id", id, "error", err)
		return apperrors.Internal("Failed to delete booking", err)
	}

	s.cfg.Log.Info("Booking deleted successfully", "id", id)
	return nil
}

// Confirm flips a pending booking to confirmed. Confirming an already
// confirmed booking is a no-op that returns the booking unchanged and sends
// no second notification.
func (s *bookingService) Confirm(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.findExisting(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.Confirmed {
		return booking, nil
	}

	booking.Confirmed = true
	if err := s.repo.Update(ctx, id, booking); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to confirm booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to confirm booking", err)
	}

	s.cfg.Log.Info("Booking confirmed", "id", id, "email", booking.Email)

	if err := s.notifier.BookingConfirmed(ctx, booking); err != nil {
		s.cfg.Log.Warn("Failed to send confirmation notification", "id", id, "error", err)
	}
	return booking, nil
}

// Reject removes the booking and notifies the requester, passing along the
// administrator's message when one was given.
func (s *bookingService) Reject(ctx context.Context, id string, message string) error {
	booking, err := s.findExisting(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to reject booking", "id", id, "error", err)
		return apperrors.Internal("Failed to reject booking", err)
	}

	s.cfg.Log.Info("Booking rejected", "id", id, "email", booking.Email)

	if err := s.notifier.BookingRejected(ctx, booking, message); err != nil {
		s.cfg.Log.Warn("Failed to send rejection notification", "id", id, "error", err)
	}
	return nil
}

func (s *bookingService) CheckAvailability(ctx context.Context, start, end time.Time) (bool, error) {
	if err := validator.ValidateWindow(start, end); err != nil {
		return false, apperrors.InvalidTimeWindow(err.Error())
	}

	existing, err := s.repo.FindOverlapping(ctx, start, end, "")
	if err != nil {
		s.cfg.Log.Error("Failed to check availability",
			"start_time", start,
			"end_time", end,
			"error", err,
		)
		return false, apperrors.Internal("Failed to check availability", err)
	}

	return existing == nil, nil
}

// Unconfirmed lists pending bookings starting today (UTC) or later, soonest
// first.
func (s *bookingService) Unconfirmed(ctx context.Context, opts model.QueryOptions) ([]*model.Booking, int64, error) {
	confirmed := false
	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)
	filter := model.BookingFilter{
		Confirmed: &confirmed,
		StartsAt:  &startOfDay,
	}

	opts.SortField = "start_time"
	opts.SortAsc = true

	return s.Query(ctx, filter, opts)
}

// --- Helpers ---

// findExisting loads a booking, folding invalid ID format into NotFound: a
// malformed ID can never address a stored booking.
func (s *bookingService) findExisting(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) || errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to retrieve booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *bookingService) sanitize(b *model.Booking) {
	b.Name = sanitizer.SanitizeName(b.Name)
	b.Email = sanitizer.SanitizeEmail(b.Email)
	b.Phone = sanitizer.SanitizePhone(b.Phone)
	b.Type = sanitizer.SanitizeType(b.Type)
	b.Notes = sanitizer.SanitizeNotes(b.Notes)
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		var verr *validator.WindowError
		if errors.As(err, &verr) {
			return apperrors.InvalidTimeWindow(verr.Error())
		}
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *bookingService) updateValidationError(err error) error {
	var verr *validator.WindowError
	if errors.As(err, &verr) {
		return apperrors.InvalidTimeWindow(verr.Error())
	}
	return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
}

func (s *bookingService) mergeBookingUpdates(existing *model.Booking, updates *model.BookingUpdate) *model.Booking {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Email != "" {
		merged.Email = updates.Email
	}
	if updates.Phone != "" {
		merged.Phone = updates.Phone
	}
	if updates.Type != "" {
		merged.Type = updates.Type
	}
	if updates.Notes != nil {
		merged.Notes = *updates.Notes
	}
	if updates.StartTime != nil {
		merged.StartTime = *updates.StartTime
	}
	if updates.EndTime != nil {
		merged.EndTime = *updates.EndTime
	}

	return &merged
}

// verifyWindowFree rejects the window when any stored booking overlaps it.
// Windows are half-open, so a booking ending exactly when another starts is
// not an overlap.
func (s *bookingService) verifyWindowFree(ctx context.Context, start, end time.Time, excludeID string) error {
	existing, err := s.repo.FindOverlapping(ctx, start, end, excludeID)
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}
	if existing != nil {
		return apperrors.Conflict(fmt.Sprintf(
			"Booking time overlaps with existing booking (%s - %s)",
			existing.StartTime.Format(time.RFC3339),
			existing.EndTime.Format(time.RFC3339),
		))
	}
	return nil
}

// acquireSlotLock takes an advisory lock keyed on the requested window.
// A concurrent holder surfaces as a Conflict rather than a double booking.
func (s *bookingService) acquireSlotLock(ctx context.Context, start, end time.Time) (string, error) {
	lockID := fmt.Sprintf("slot_%d_%d", start.Unix(), end.Unix())

	lock := &model.SlotLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.SlotLockTTL),
	}

	if _, err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This time slot is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire slot lock", err)
	}

	return lockID, nil
}

func (s *bookingService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}
