package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	"bookline/internal/bookings/visibility"
	apperrors "bookline/pkg/errors"
	"bookline/pkg/logger"
	"bookline/pkg/middleware"
	"bookline/pkg/model"
)

// Mock service for testing
type mockBookingService struct {
	createFunc      func(ctx context.Context, booking *model.Booking) error
	getByIDFunc     func(ctx context.Context, id string) (*model.Booking, error)
	queryFunc       func(ctx context.Context, filter model.BookingFilter, opts model.QueryOptions) ([]*model.Booking, int64, error)
	updateFunc      func(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error)
	deleteFunc      func(ctx context.Context, id string) error
	confirmFunc     func(ctx context.Context, id string) (*model.Booking, error)
	rejectFunc      func(ctx context.Context, id string, message string) error
	checkAvailFunc  func(ctx context.Context, start, end time.Time) (bool, error)
	unconfirmedFunc func(ctx context.Context, opts model.QueryOptions) ([]*model.Booking, int64, error)
}

func (m *mockBookingService) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	booking.ID = "64f0c2a5e13d5a0001a1b2c3"
	return nil
}

func (m *mockBookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, apperrors.NotFoundWithID("Booking", id)
}

func (m *mockBookingService) Query(ctx context.Context, filter model.BookingFilter, opts model.QueryOptions) ([]*model.Booking, int64, error) {
	if m.queryFunc != nil {
		return m.queryFunc(ctx, filter, opts)
	}
	return nil, 0, nil
}

func (m *mockBookingService) Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, updates)
	}
	return nil, apperrors.NotFoundWithID("Booking", id)
}

func (m *mockBookingService) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockBookingService) Confirm(ctx context.Context, id string) (*model.Booking, error) {
	if m.confirmFunc != nil {
		return m.confirmFunc(ctx, id)
	}
	return nil, apperrors.NotFoundWithID("Booking", id)
}

func (m *mockBookingService) Reject(ctx context.Context, id string, message string) error {
	if m.rejectFunc != nil {
		return m.rejectFunc(ctx, id, message)
	}
	return nil
}

func (m *mockBookingService) CheckAvailability(ctx context.Context, start, end time.Time) (bool, error) {
	if m.checkAvailFunc != nil {
		return m.checkAvailFunc(ctx, start, end)
	}
	return true, nil
}

func (m *mockBookingService) Unconfirmed(ctx context.Context, opts model.QueryOptions) ([]*model.Booking, int64, error) {
	if m.unconfirmedFunc != nil {
		return m.unconfirmedFunc(ctx, opts)
	}
	return nil, 0, nil
}

func newTestHandler(svc *mockBookingService) *BookingHandler {
	log := logger.New(logger.Config{Level: "error", Service: "test"})
	return NewBookingHandler(svc, visibility.NewShaper(10, 100), log)
}

func newTestRouter(svc *mockBookingService) *httprouter.Router {
	router := httprouter.New()
	newTestHandler(svc).RegisterRoutes(router)
	return router
}

func adminRequest(r *http.Request) *http.Request {
	actor := model.Actor{ID: "admin-1", Email: "admin@example.com", Role: model.RoleAdmin}
	return r.WithContext(context.WithValue(r.Context(), middleware.ActorKey, actor))
}

func userRequest(r *http.Request) *http.Request {
	actor := model.Actor{ID: "user-1", Email: "user@example.com", Role: model.RoleUser}
	return r.WithContext(context.WithValue(r.Context(), middleware.ActorKey, actor))
}

func sampleBooking() *model.Booking {
	return &model.Booking{
		ID:        "64f0c2a5e13d5a0001a1b2c3",
		Name:      "Jane Doe",
		Email:     "jane@example.com",
		Phone:     "+14155552671",
		Type:      "massage",
		StartTime: time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC),
	}
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp.Code
}

// --- Create ---

func TestCreateHandler(t *testing.T) {
	router := newTestRouter(&mockBookingService{})

	body, _ := json.Marshal(sampleBooking())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateHandler_InvalidJSON(t *testing.T) {
	router := newTestRouter(&mockBookingService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCreateHandler_ConflictMapsTo409(t *testing.T) {
	svc := &mockBookingService{
		createFunc: func(context.Context, *model.Booking) error {
			return apperrors.Conflict("Booking time overlaps with existing booking")
		},
	}
	router := newTestRouter(svc)

	body, _ := json.Marshal(sampleBooking())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != apperrors.CodeConflict {
		t.Errorf("expected CONFLICT code, got %s", code)
	}
}

// --- List visibility ---

func TestListHandler_PublicGetsRedactedResults(t *testing.T) {
	svc := &mockBookingService{
		queryFunc: func(_ context.Context, filter model.BookingFilter, _ model.QueryOptions) ([]*model.Booking, int64, error) {
			if filter.Email != "" {
				t.Errorf("email filter must be stripped for public actors, got %q", filter.Email)
			}
			return []*model.Booking{sampleBooking()}, 1, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?email=jane@example.com", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	for _, leaked := range []string{"jane@example.com", "+14155552671", "Jane Doe"} {
		if strings.Contains(body, leaked) {
			t.Errorf("public response must not contain %q", leaked)
		}
	}
	for _, want := range []string{"start_time", "end_time", "massage"} {
		if !strings.Contains(body, want) {
			t.Errorf("public response missing %q", want)
		}
	}
}

func TestListHandler_AdminGetsFullDocuments(t *testing.T) {
	svc := &mockBookingService{
		queryFunc: func(_ context.Context, filter model.BookingFilter, _ model.QueryOptions) ([]*model.Booking, int64, error) {
			if filter.Email != "jane@example.com" {
				t.Errorf("admin email filter must pass through, got %q", filter.Email)
			}
			return []*model.Booking{sampleBooking()}, 1, nil
		},
	}
	router := newTestRouter(svc)

	req := adminRequest(httptest.NewRequest(http.MethodGet, "/api/v1/bookings?email=jane@example.com", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "jane@example.com") {
		t.Error("admin response must include contact details")
	}
}

func TestListHandler_InvalidFromParameter(t *testing.T) {
	router := newTestRouter(&mockBookingService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?from=yesterday", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

// --- Admin gating ---

func TestAdminRoutes_AnonymousGets401(t *testing.T) {
	router := newTestRouter(&mockBookingService{})

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/bookings/unconfirmed"},
		{http.MethodGet, "/api/v1/bookings/id/64f0c2a5e13d5a0001a1b2c3"},
		{http.MethodPatch, "/api/v1/bookings/id/64f0c2a5e13d5a0001a1b2c3"},
		{http.MethodDelete, "/api/v1/bookings/id/64f0c2a5e13d5a0001a1b2c3"},
		{http.MethodPost, "/api/v1/bookings/id/64f0c2a5e13d5a0001a1b2c3/confirm"},
		{http.MethodPost, "/api/v1/bookings/id/64f0c2a5e13d5a0001a1b2c3/reject"},
	}

	for _, rt := range routes {
		req := httptest.NewRequest(rt.method, rt.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", rt.method, rt.path, rec.Code)
		}
	}
}

func TestAdminRoutes_NonAdminGets403(t *testing.T) {
	router := newTestRouter(&mockBookingService{})

	req := userRequest(httptest.NewRequest(http.MethodGet, "/api/v1/bookings/id/64f0c2a5e13d5a0001a1b2c3", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

// --- GetByID ---

func TestGetByIDHandler_NotFound(t *testing.T) {
	router := newTestRouter(&mockBookingService{})

	req := adminRequest(httptest.NewRequest(http.MethodGet, "/api/v1/bookings/id/64f0c2a5e13d5a0001a1b2c3", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != apperrors.CodeNotFound {
		t.Errorf("expected NOT_FOUND code, got %s", code)
	}
}

// --- Availability ---

func TestCheckAvailabilityHandler(t *testing.T) {
	svc := &mockBookingService{
		checkAvailFunc: func(_ context.Context, start, end time.Time) (bool, error) {
			return false, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/bookings/availability?start_time=2025-01-10T09:00:00Z&end_time=2025-01-10T10:00:00Z", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data availabilityResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.Available {
		t.Error("expected available=false")
	}
}

func TestCheckAvailabilityHandler_MissingParams(t *testing.T) {
	router := newTestRouter(&mockBookingService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/availability", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != apperrors.CodeInvalidTimeWindow {
		t.Errorf("expected INVALID_TIME_WINDOW code, got %s", code)
	}
}

// --- Confirm / Reject ---

func TestConfirmHandler(t *testing.T) {
	confirmed := sampleBooking()
	confirmed.Confirmed = true

	svc := &mockBookingService{
		confirmFunc: func(_ context.Context, id string) (*model.Booking, error) {
			return confirmed, nil
		},
	}
	router := newTestRouter(svc)

	req := adminRequest(httptest.NewRequest(http.MethodPost,
		"/api/v1/bookings/id/64f0c2a5e13d5a0001a1b2c3/confirm", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"confirmed":true`) {
		t.Error("expected confirmed booking in response")
	}
}

func TestRejectHandler_ForwardsMessage(t *testing.T) {
	var gotMessage string
	svc := &mockBookingService{
		rejectFunc: func(_ context.Context, _ string, message string) error {
			gotMessage = message
			return nil
		},
	}
	router := newTestRouter(svc)

	req := adminRequest(httptest.NewRequest(http.MethodPost,
		"/api/v1/bookings/id/64f0c2a5e13d5a0001a1b2c3/reject",
		strings.NewReader(`{"message":"fully booked"}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if gotMessage != "fully booked" {
		t.Errorf("expected admin message forwarded, got %q", gotMessage)
	}
}

func TestRejectHandler_EmptyBodyAllowed(t *testing.T) {
	svc := &mockBookingService{
		rejectFunc: func(context.Context, string, string) error {
			return nil
		},
	}
	router := newTestRouter(svc)

	req := adminRequest(httptest.NewRequest(http.MethodPost,
		"/api/v1/bookings/id/64f0c2a5e13d5a0001a1b2c3/reject", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

// --- Delete ---

func TestDeleteHandler(t *testing.T) {
	deleted := ""
	svc := &mockBookingService{
		deleteFunc: func(_ context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	router := newTestRouter(svc)

	req := adminRequest(httptest.NewRequest(http.MethodDelete,
		"/api/v1/bookings/id/64f0c2a5e13d5a0001a1b2c3", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if deleted != "64f0c2a5e13d5a0001a1b2c3" {
		t.Errorf("expected delete for path ID, got %q", deleted)
	}
}

// --- Unconfirmed ---

func TestUnconfirmedHandler(t *testing.T) {
	svc := &mockBookingService{
		unconfirmedFunc: func(_ context.Context, opts model.QueryOptions) ([]*model.Booking, int64, error) {
			return []*model.Booking{sampleBooking()}, 1, nil
		},
	}
	router := newTestRouter(svc)

	req := adminRequest(httptest.NewRequest(http.MethodGet, "/api/v1/bookings/unconfirmed", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "total_results") {
		t.Error("expected paginated response shape")
	}
}
