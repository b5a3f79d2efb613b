package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"conferencepass/internal/delivery/http/helpers"
	"conferencepass/internal/domain"
)

type CheckinController struct {
	Logger  *slog.Logger
	Service domain.AttendanceService
}

func NewCheckinController(logger *slog.Logger, svc domain.AttendanceService) *CheckinController {
	return &CheckinController{
		Logger:  logger,
		Service: svc,
	}
}

// CheckinRequest is the request body for POST /checkin.
type CheckinRequest struct {
	Token string `json:"token"`
}

// Validate implements Validator.
func (c CheckinRequest) Validate() []string {
	if strings.TrimSpace(c.Token) == "" {
		return []string{"token is required"}
	}
	return nil
}

// CheckinSuccessResponse is the success response envelope for POST /checkin (200).
type CheckinSuccessResponse struct {
	Data  *domain.CheckInResult `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// Checkin godoc
// @Summary Verify a QR token and mark attendance
// @Description Consumes the presented QR token and flips its enrollment to checked_in. Each token is accepted exactly once; concurrent presentations of the same token succeed for exactly one caller. Returns the enrollment, the attendee, and the activity for the check-in screen. Staff only.
// @Tags checkin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CheckinRequest true "QR token payload"
// @Success 200 {object} controllers.CheckinSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (unknown token)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (token already used)"
// @Failure 410 {object} helpers.APIResponse "error.code: expired"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /checkin [post]
func (c *CheckinController) Checkin(w http.ResponseWriter, r *http.Request) {
	var req CheckinRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	result, err := c.Service.Verify(r.Context(), req.Token)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "unknown token")
		case errors.Is(err, domain.ErrTokenAlreadyUsed):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "token already used")
		case errors.Is(err, domain.ErrTokenExpired):
			helpers.WriteJSONError(w, http.StatusGone, helpers.ErrCodeExpired, "token expired")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}
