package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"conferencepass/internal/delivery/http/helpers"
	"conferencepass/internal/delivery/http/middleware"
	"conferencepass/internal/domain"
)

type CertificateController struct {
	Logger  *slog.Logger
	Service domain.CertificateService
}

func NewCertificateController(logger *slog.Logger, svc domain.CertificateService) *CertificateController {
	return &CertificateController{
		Logger:  logger,
		Service: svc,
	}
}

// IssueCertificate godoc
// @Summary Issue an attendance certificate
// @Description Issues a certificate for a checked-in enrollment once its activity has ended. At most one certificate exists per enrollment. Staff only.
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Param enrollmentID path string true "Enrollment ID"
// @Success 201 {object} helpers.APIResponse "data contains the issued certificate"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (activity not ended, or attendee not checked in)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already certified)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /certificates/{enrollmentID} [post]
func (c *CertificateController) IssueCertificate(w http.ResponseWriter, r *http.Request) {
	enrollmentID := r.PathValue("enrollmentID")
	if enrollmentID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing enrollmentID")
		return
	}

	cert, err := c.Service.Issue(r.Context(), enrollmentID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "enrollment not found")
		case errors.Is(err, domain.ErrNotCheckedIn):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "attendee is not checked in")
		case errors.Is(err, domain.ErrAlreadyCertified):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "certificate already issued")
		case errors.Is(err, domain.ErrInvalidInput):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusCreated, cert)
}

// ListMyCertificatesSuccessResponse is the success response envelope for GET /certificates (200).
type ListMyCertificatesSuccessResponse struct {
	Data  []*domain.CertificateWithActivity `json:"data"`
	Error *helpers.APIError                 `json:"error"`
}

// ListMyCertificates godoc
// @Summary List the current user's certificates
// @Description Returns the authenticated user's certificates with the activities they cover.
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListMyCertificatesSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /certificates [get]
func (c *CertificateController) ListMyCertificates(w http.ResponseWriter, r *http.Request) {
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
		items = []*domain.CertificateWithActivity{}
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, items)
}

// VerifyCertificate godoc
// @Summary Verify a certificate by serial code
// @Description Public verification endpoint. Returns the certificate when the serial exists and the certificate is in issued state; revoked or unknown serials respond 404.
// @Tags certificates
// @Produce json
// @Param serial path string true "Certificate serial code"
// @Success 200 {object} helpers.APIResponse "data contains the certificate"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /certificates/{serial}/verify [get]
func (c *CertificateController) VerifyCertificate(w http.ResponseWriter, r *http.Request) {
	serial := r.PathValue("serial")
	if serial == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing serial")
		return
	}

	cert, err := c.Service.VerifyBySerial(r.Context(), serial)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "certificate not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, cert)
}

// RevokeCertificate godoc
// @Summary Revoke a certificate
// @Description Flips the certificate to revoked state; the record is kept and the serial stops verifying. Idempotent. Staff only.
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Param serial path string true "Certificate serial code"
// @Success 200 {object} helpers.APIResponse "data contains {revoked: true}"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /certificates/{serial} [delete]
func (c *CertificateController) RevokeCertificate(w http.ResponseWriter, r *http.Request) {
	serial := r.PathValue("serial")
	if serial == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing serial")
		return
	}

	if err := c.Service.Revoke(r.Context(), serial); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "certificate not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"revoked": true})
}
