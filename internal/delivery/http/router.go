package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"conferencepass/internal/delivery/http/controllers"
	"conferencepass/internal/delivery/http/middleware"
	"conferencepass/internal/domain"
)

// RouterDeps bundles everything NewRouter needs to wire the routes.
type RouterDeps struct {
	Logger        *slog.Logger
	TokenVerifier domain.TokenVerifier
	UserService   domain.UserService

	Auth         *controllers.AuthController
	Users        *controllers.UserController
	Activities   *controllers.ActivityController
	Enrollments  *controllers.EnrollmentController
	Checkin      *controllers.CheckinController
	Certificates *controllers.CertificateController
}

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(deps RouterDeps) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(deps.TokenVerifier, deps.Logger)
	staff := middleware.RequireStaff(deps.UserService, deps.Logger)
	staffOnly := func(h http.HandlerFunc) http.HandlerFunc { return auth(staff(h)) }

	// Auth
	mux.HandleFunc("POST /auth/signup", deps.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", deps.Auth.Login)

	// Account
	mux.HandleFunc("GET /me", auth(deps.Users.GetMe))
	mux.HandleFunc("PUT /me/profile", auth(deps.Users.SetProfile))

	// Activity catalog
	mux.HandleFunc("GET /activities", deps.Activities.ListActivities)
	mux.HandleFunc("GET /activities/{activityID}", deps.Activities.GetActivity)
	mux.HandleFunc("POST /activities", staffOnly(deps.Activities.CreateActivity))
	mux.HandleFunc("PATCH /activities/{activityID}/flags", staffOnly(deps.Activities.SetActivityFlags))

	// Enrollments
	mux.HandleFunc("POST /enrollments", auth(deps.Enrollments.Register))
	mux.HandleFunc("GET /enrollments", auth(deps.Enrollments.ListMyEnrollments))
	mux.HandleFunc("DELETE /enrollments/{enrollmentID}", auth(deps.Enrollments.CancelEnrollment))

	// Check-in stations
	mux.HandleFunc("POST /checkin", staffOnly(deps.Checkin.Checkin))

	// Certificates
	mux.HandleFunc("POST /certificates/{enrollmentID}", staffOnly(deps.Certificates.IssueCertificate))
	mux.HandleFunc("GET /certificates", auth(deps.Certificates.ListMyCertificates))
	mux.HandleFunc("GET /certificates/{serial}/verify", deps.Certificates.VerifyCertificate)
	mux.HandleFunc("DELETE /certificates/{serial}", staffOnly(deps.Certificates.RevokeCertificate))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
