package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"bookline/internal/bookings/service"
	"bookline/internal/bookings/visibility"
	apperrors "bookline/pkg/errors"
	httputil "bookline/pkg/http"
	"bookline/pkg/logger"
	"bookline/pkg/middleware"
	"bookline/pkg/model"
)

type BookingHandler struct {
	service service.BookingService
	shaper  *visibility.Shaper
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, shaper *visibility.Shaper, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		shaper:  shaper,
		log:     log,
	}
}

// rejectBody is the optional payload of a reject request.
type rejectBody struct {
	Message string `json:"message"`
}

// availabilityResponse reports whether a requested window is free.
type availabilityResponse struct {
	Available bool      `json:"available"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var booking model.Booking
	if err := json.NewDecoder(r.Body).Decode(&booking); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Create(r.Context(), &booking); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !h.requireAdmin(w, r, "GetByID") {
		return
	}

	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

// List serves the shaped collection read. Administrators see full documents
// and may filter by email; everyone else gets the redacted projection.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor := middleware.ActorFromContext(r.Context())

	raw, rawOpts, err := parseListQuery(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	filter, opts := h.shaper.Shape(actor, raw, rawOpts)

	bookings, total, err := h.service.Query(r.Context(), filter, opts)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	var results any = bookings
	if !actor.IsAdmin() {
		results = visibility.Redact(bookings)
	}

	if err := httputil.WritePaginated(w, results, opts.Page, opts.Limit, total); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "error", err)
	}
}

func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	start, err := parseRequiredTime(query.Get("start_time"), "start_time")
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}
	end, err := parseRequiredTime(query.Get("end_time"), "end_time")
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}

	available, err := h.service.CheckAvailability(r.Context(), start, end)
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}

	if err := httputil.WriteSuccess(w, availabilityResponse{
		Available: available,
		StartTime: start,
		EndTime:   end,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckAvailability", "error", err)
	}
}

// Unconfirmed lists pending bookings from today on, for the admin review
// queue.
func (h *BookingHandler) Unconfirmed(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !h.requireAdmin(w, r, "Unconfirmed") {
		return
	}

	_, rawOpts, err := parseListQuery(r)
	if err != nil {
		h.writeError(w, "Unconfirmed", err)
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	_, opts := h.shaper.Shape(actor, model.RawFilter{}, rawOpts)

	bookings, total, err := h.service.Unconfirmed(r.Context(), opts)
	if err != nil {
		h.writeError(w, "Unconfirmed", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, opts.Page, opts.Limit, total); err != nil {
		h.log.Error("failed to write paginated response", "handler", "Unconfirmed", "error", err)
	}
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !h.requireAdmin(w, r, "Update") {
		return
	}

	var updates model.BookingUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "error", err)
	}
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !h.requireAdmin(w, r, "Delete") {
		return
	}

	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !h.requireAdmin(w, r, "Confirm") {
		return
	}

	booking, err := h.service.Confirm(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Confirm", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Confirm", "error", err)
	}
}

func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !h.requireAdmin(w, r, "Reject") {
		return
	}

	// The message body is optional: an empty body is a plain rejection.
	var body rejectBody
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			h.writeError(w, "Reject", apperrors.InvalidInput("Invalid request body"))
			return
		}
	}

	if err := h.service.Reject(r.Context(), ps.ByName("id"), body.Message); err != nil {
		h.writeError(w, "Reject", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.List)
	router.GET("/api/v1/bookings/availability", h.CheckAvailability)
	router.GET("/api/v1/bookings/unconfirmed", h.Unconfirmed)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.PATCH("/api/v1/bookings/id/:id", h.Update)
	router.DELETE("/api/v1/bookings/id/:id", h.Delete)
	router.POST("/api/v1/bookings/id/:id/confirm", h.Confirm)
	router.POST("/api/v1/bookings/id/:id/reject", h.Reject)
}

// --- Helpers ---

// requireAdmin writes the failure response and returns false when the actor
// is not an administrator. Anonymous callers get 401, authenticated
// non-admins 403.
func (h *BookingHandler) requireAdmin(w http.ResponseWriter, r *http.Request, handlerName string) bool {
	actor := middleware.ActorFromContext(r.Context())
	if actor.IsAdmin() {
		return true
	}

	var err *apperrors.AppError
	if actor.IsAnonymous() {
		err = apperrors.Unauthorized("Authentication required")
	} else {
		err = apperrors.Forbidden("Administrator access required")
	}
	h.writeError(w, handlerName, err)
	return false
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func parseListQuery(r *http.Request) (model.RawFilter, model.RawOptions, error) {
	query := r.URL.Query()

	var raw model.RawFilter
	raw.Type = query.Get("type")
	raw.Email = query.Get("email")

	if fromStr := query.Get("from"); fromStr != "" {
		parsed, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return raw, model.RawOptions{}, apperrors.InvalidInput("invalid from parameter, must be RFC3339")
		}
		raw.From = &parsed
	}
	if toStr := query.Get("to"); toStr != "" {
		parsed, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			return raw, model.RawOptions{}, apperrors.InvalidInput("invalid to parameter, must be RFC3339")
		}
		raw.To = &parsed
	}

	var rawOpts model.RawOptions
	rawOpts.SortBy = query.Get("sortBy")

	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return raw, rawOpts, apperrors.InvalidInput(fmt.Sprintf("invalid limit parameter: %s", limitStr))
		}
		rawOpts.Limit = limit
	}
	if pageStr := query.Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil {
			return raw, rawOpts, apperrors.InvalidInput(fmt.Sprintf("invalid page parameter: %s", pageStr))
		}
		rawOpts.Page = page
	}

	return raw, rawOpts, nil
}

func parseRequiredTime(value, name string) (time.Time, error) {
	if value == "" {
		return time.Time{}, apperrors.InvalidTimeWindow(fmt.Sprintf("%s query parameter is required", name))
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, apperrors.InvalidTimeWindow(fmt.Sprintf("invalid %s, must be RFC3339", name))
	}
	return parsed, nil
}
