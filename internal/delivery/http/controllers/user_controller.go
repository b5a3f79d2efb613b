package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"conferencepass/internal/delivery/http/helpers"
	"conferencepass/internal/delivery/http/middleware"
	"conferencepass/internal/domain"
)

type UserController struct {
	Logger  *slog.Logger
	Service domain.UserService
}

func NewUserController(logger *slog.Logger, svc domain.UserService) *UserController {
	return &UserController{
		Logger:  logger,
		Service: svc,
	}
}

// GetMe godoc
// @Summary Get the current user
// @Description Returns the authenticated user's account, including the staff or student profile if one is set.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the user"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /me [get]
func (c *UserController) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	user, err := c.Service.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUserNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// SetProfileRequest is the request body for PUT /me/profile. Exactly one of
// staff_profile and student_profile must be set.
type SetProfileRequest struct {
	Staff   *domain.StaffProfile   `json:"staff_profile"`
	Student *domain.StudentProfile `json:"student_profile"`
}

// Validate implements Validator.
func (s SetProfileRequest) Validate() []string {
	var errs []string
	if s.Staff == nil && s.Student == nil {
		errs = append(errs, "one of staff_profile or student_profile is required")
	}
	if s.Staff != nil && s.Student != nil {
		errs = append(errs, "staff_profile and student_profile are mutually exclusive")
	}
	if s.Staff != nil && strings.TrimSpace(s.Staff.Department) == "" {
		errs = append(errs, "staff_profile.department is required")
	}
	if s.Student != nil && strings.TrimSpace(s.Student.StudentCode) == "" {
		errs = append(errs, "student_profile.student_code is required")
	}
	return errs
}

// SetProfile godoc
// @Summary Set the current user's profile
// @Description Replaces the authenticated user's profile with a staff or student profile. Exactly one of staff_profile and student_profile must be provided; the other side, if previously set, is removed.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SetProfileRequest true "Profile data"
// @Success 200 {object} helpers.APIResponse "data contains the updated user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /me/profile [put]
func (c *UserController) SetProfile(w http.ResponseWriter, r *http.Request) {
	var req SetProfileRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	user, err := c.Service.SetProfile(r.Context(), userID, req.Staff, req.Student)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUserNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
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

	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}
