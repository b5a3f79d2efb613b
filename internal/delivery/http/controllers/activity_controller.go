package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"conferencepass/internal/delivery/http/helpers"
	"conferencepass/internal/domain"
)

type ActivityController struct {
	Logger  *slog.Logger
	Service domain.ActivityService
}

func NewActivityController(logger *slog.Logger, svc domain.ActivityService) *ActivityController {
	return &ActivityController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateActivityRequest is the request body for POST /activities.
type CreateActivityRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Speaker     string    `json:"speaker"`
	Location    string    `json:"location"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Capacity    int       `json:"capacity"`
	Published   bool      `json:"published"`
	Active      bool      `json:"active"`
}

// Validate implements Validator.
func (a CreateActivityRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(a.Title) == "" {
		errs = append(errs, "title is required")
	}
	if !domain.ActivityType(a.Type).Valid() {
		errs = append(errs, "type must be \"talk\", \"workshop\", or \"competition\"")
	}
	if a.StartTime.IsZero() || a.EndTime.IsZero() {
		errs = append(errs, "start_time and end_time are required")
	} else if !a.EndTime.After(a.StartTime) {
		errs = append(errs, "end_time must be after start_time")
	}
	if a.Capacity < 0 {
		errs = append(errs, "capacity must be zero (unlimited) or positive")
	}
	return errs
}

// CreateActivity godoc
// @Summary Create an activity
// @Description Creates a talk, workshop, or competition. Capacity 0 means unlimited. Staff only.
// @Tags activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateActivityRequest true "Activity data"
// @Success 201 {object} helpers.APIResponse "data contains the created activity"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /activities [post]
func (c *ActivityController) CreateActivity(w http.ResponseWriter, r *http.Request) {
	var req CreateActivityRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	activity, err := c.Service.Create(r.Context(), &domain.Activity{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Type:        domain.ActivityType(req.Type),
		Speaker:     req.Speaker,
		Location:    req.Location,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Capacity:    req.Capacity,
		Published:   req.Published,
		Active:      req.Active,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusCreated, activity)
}

// ListActivitiesSuccessResponse is the success response envelope for GET /activities (200).
type ListActivitiesSuccessResponse struct {
	Data  ListActivitiesData `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// ListActivitiesData is the data payload for GET /activities.
type ListActivitiesData struct {
	Activities []*domain.Activity     `json:"activities"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListActivities godoc
// @Summary List published activities
// @Description Returns published activities ordered by start time, paginated via page and page_size query parameters.
// @Tags activities
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListActivitiesSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /activities [get]
func (c *ActivityController) ListActivities(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)

	activities, total, err := c.Service.ListPublished(r.Context(), params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if activities == nil {
		activities = []*domain.Activity{}
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, ListActivitiesData{
		Activities: activities,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// GetActivity godoc
// @Summary Get an activity by ID
// @Tags activities
// @Produce json
// @Param activityID path string true "Activity ID"
// @Success 200 {object} helpers.APIResponse "data contains the activity"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /activities/{activityID} [get]
func (c *ActivityController) GetActivity(w http.ResponseWriter, r *http.Request) {
	activityID := r.PathValue("activityID")
	if activityID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing activityID")
		return
	}

	activity, err := c.Service.GetByID(r.Context(), activityID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "activity not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, activity)
}

// SetActivityFlagsRequest is the request body for PATCH /activities/{activityID}/flags.
type SetActivityFlagsRequest struct {
	Published bool `json:"published"`
	Active    bool `json:"active"`
}

// SetActivityFlags godoc
// @Summary Set an activity's published and active flags
// @Description Updates the published and active flags. Clearing either flag stops new enrollments without touching existing ones. Staff only.
// @Tags activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param activityID path string true "Activity ID"
// @Param body body SetActivityFlagsRequest true "Flag values"
// @Success 200 {object} helpers.APIResponse "data contains the updated activity"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /activities/{activityID}/flags [patch]
func (c *ActivityController) SetActivityFlags(w http.ResponseWriter, r *http.Request) {
	activityID := r.PathValue("activityID")
	if activityID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing activityID")
		return
	}

	var req SetActivityFlagsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	activity, err := c.Service.SetFlags(r.Context(), activityID, req.Published, req.Active)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "activity not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, activity)
}
