package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"conferencepass/internal/delivery/http/helpers"
	"conferencepass/internal/delivery/http/middleware"
	"conferencepass/internal/domain"
)

type EnrollmentController struct {
	Logger  *slog.Logger
	Service domain.EnrollmentService
}

func NewEnrollmentController(logger *slog.Logger, svc domain.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{
		Logger:  logger,
		Service: svc,
	}
}

// RegisterRequest is the request body for POST /enrollments.
type RegisterRequest struct {
	ActivityIDs []string `json:"activity_ids"`
}

// Validate implements Validator.
func (r RegisterRequest) Validate() []string {
	if len(r.ActivityIDs) == 0 {
		return []string{"activity_ids must not be empty"}
	}
	for _, id := range r.ActivityIDs {
		if id == "" {
			return []string{"activity_ids must not contain empty IDs"}
		}
	}
	return nil
}

// RegistrationResult is the per-activity outcome in the POST /enrollments response.
type RegistrationResult struct {
	ActivityID string             `json:"activity_id"`
	Enrollment *domain.Enrollment `json:"enrollment,omitempty"`
	Token      *domain.QrToken    `json:"token,omitempty"`
	Error      *helpers.APIError  `json:"error,omitempty"`
}

// RegisterSuccessResponse is the success response envelope for POST /enrollments.
type RegisterSuccessResponse struct {
	Data  []RegistrationResult `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

func registrationError(err error) *helpers.APIError {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return &helpers.APIError{Code: helpers.ErrCodeNotFound, Message: "activity not found"}
	case errors.Is(err, domain.ErrAlreadyEnrolled):
		return &helpers.APIError{Code: helpers.ErrCodeConflict, Message: "already enrolled"}
	case errors.Is(err, domain.ErrActivityFull):
		return &helpers.APIError{Code: helpers.ErrCodeConflict, Message: "activity is full"}
	case errors.Is(err, domain.ErrActivityUnavailable):
		return &helpers.APIError{Code: helpers.ErrCodeConflict, Message: "activity is not open for enrollment"}
	default:
		return &helpers.APIError{Code: helpers.ErrCodeInternalError, Message: err.Error()}
	}
}

// Register godoc
// @Summary Register for activities
// @Description Enrolls the authenticated user in each of the given activities and returns a per-activity outcome. Each successful entry carries the enrollment and its QR check-in token; failed entries carry an error object instead. A confirmation email is sent when at least one registration succeeds.
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RegisterRequest true "Activity IDs to register for"
// @Success 201 {object} controllers.RegisterSuccessResponse "data is an array of per-activity results"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /enrollments [post]
func (c *EnrollmentController) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	outcomes, err := c.Service.Register(r.Context(), userID, req.ActivityIDs)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	results := make([]RegistrationResult, 0, len(outcomes))
	anyCreated := false
	for _, o := range outcomes {
		res := RegistrationResult{ActivityID: o.ActivityID}
		if o.Err != nil {
			res.Error = registrationError(o.Err)
		} else {
			res.Enrollment = o.Enrollment
			res.Token = o.Token
			anyCreated = true
		}
		results = append(results, res)
	}

	status := http.StatusOK
	if anyCreated {
		status = http.StatusCreated
	}
	helpers.WriteJSONSuccess(w, status, results)
}

// ListMyEnrollmentsSuccessResponse is the success response envelope for GET /enrollments (200).
type ListMyEnrollmentsSuccessResponse struct {
	Data  []*domain.EnrollmentWithActivity `json:"data"`
	Error *helpers.APIError                `json:"error"`
}

// ListMyEnrollments godoc
// @Summary List the current user's enrollments
// @Description Returns the authenticated user's enrollments with their activities and QR tokens, ordered by activity start time.
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListMyEnrollmentsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /enrollments [get]
func (c *EnrollmentController) ListMyEnrollments(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	items, err := c.Service.ListForUser(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if items == nil {
		items = []*domain.EnrollmentWithActivity{}
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, items)
}

// CancelEnrollment godoc
// @Summary Cancel an enrollment
// @Description Cancels one of the authenticated user's enrollments, freeing its capacity slot. Checked-in enrollments cannot be cancelled.
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param enrollmentID path string true "Enrollment ID"
// @Success 200 {object} helpers.APIResponse "data contains {cancelled: true}"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (already checked in)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not the owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /enrollments/{enrollmentID} [delete]
func (c *EnrollmentController) CancelEnrollment(w http.ResponseWriter, r *http.Request) {
	enrollmentID := r.PathValue("enrollmentID")
	if enrollmentID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing enrollmentID")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if err := c.Service.Cancel(r.Context(), userID, enrollmentID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "enrollment not found")
			return
		}
		if errors.Is(err, domain.ErrForbidden) {
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"cancelled": true})
}
