package server

import (
	"context"
	"net/http"

	"github.com/calinga/care-booking-system/internal/domain/types"
	wrap "github.com/calinga/care-booking-system/pkg/logger/wrapper"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// setupRoutes - setups http routes
func (a *API) setupRoutes() {
	// System Health
	a.mux.HandleFunc("/health", a.routes.health.HealthCheck)

	a.setupSwaggerRoutes()
	setupMetricsRoute(a.mux)

	switch a.mode {
	case types.BookingService:
		a.setupBookingRoutes()
	case types.CaregiverAndLocationService:
		a.setupCaregiverAndLocationRoutes()
	case types.AdminService:
		a.setupAdminRoutes()
	}
}

// setupBookingRoutes setups routes for booking service
func (a *API) setupBookingRoutes() {
	mux, routes, m := a.mux, a.routes, a.m

	mux.Handle("POST /bookings", m.RequireRoles(routes.booking.Create, types.RoleCareseeker))                    // Create a booking request
	mux.Handle("GET /bookings/{booking_id}", m.RequireRoles(routes.booking.Get, types.RoleCareseeker, types.RoleCaregiver, types.RoleAdmin))
	mux.Handle("POST /bookings/{booking_id}/accept", m.RequireRoles(routes.booking.Accept, types.RoleCaregiver)) // Caregiver takes the job
	mux.Handle("POST /bookings/{booking_id}/complete", m.RequireRoles(routes.booking.Complete, types.RoleCaregiver))
	mux.Handle("POST /bookings/{booking_id}/cancel", m.RequireRoles(routes.booking.Cancel, types.RoleCareseeker, types.RoleCaregiver))
	mux.Handle("GET /careseekers/{careseeker_id}/bookings", m.RequireRoles(routes.booking.ListForCareseeker, types.RoleCareseeker, types.RoleAdmin))
	mux.Handle("GET /caregivers/{caregiver_id}/bookings", m.RequireRoles(routes.booking.ListForCaregiver, types.RoleCaregiver, types.RoleAdmin))
}

// setupCaregiverAndLocationRoutes setups routes for caregiver and location service
func (a *API) setupCaregiverAndLocationRoutes() {
	mux, routes, m := a.mux, a.routes, a.m

	mux.HandleFunc("GET /caregivers/nearby", routes.caregiver.Nearby) // Proximity search, open to seekers
	mux.Handle("POST /caregivers/{caregiver_id}/location", m.RequireRoles(routes.caregiver.UpdateLocation, types.RoleCaregiver))
	mux.Handle("POST /caregivers/{caregiver_id}/activate", m.RequireRoles(routes.caregiver.Activate, types.RoleCaregiver))
	mux.Handle("POST /caregivers/{caregiver_id}/deactivate", m.RequireRoles(routes.caregiver.Deactivate, types.RoleCaregiver))
	mux.Handle("GET /notifications", m.RequireRoles(routes.caregiver.Notifications, types.RoleCaregiver, types.RoleCareseeker))
	mux.Handle("POST /notifications/{notification_id}/seen", m.RequireRoles(routes.caregiver.MarkNotificationSeen, types.RoleCaregiver, types.RoleCareseeker))
	mux.HandleFunc("GET /ws/caregivers/{caregiver_id}", routes.caregiverHub.HandleWS) // WebSocket connection for caregivers
}

// setupAdminRoutes setups routes for admin service
func (a *API) setupAdminRoutes() {
	a.mux.Handle("GET /admin/overview", a.m.RequireRoles(a.routes.admin.GetOverview, types.RoleAdmin)) // Get system metrics overview
}

// setupSwaggerRoutes configures Swagger UI endpoints based on service mode
func (a *API) setupSwaggerRoutes() {
	var instanceName string

	switch a.mode {
	case types.BookingService:
		instanceName = "booking"
	case types.CaregiverAndLocationService:
		instanceName = "caregiver"
	case types.AdminService:
		instanceName = "admin"
	default:
		a.log.Warn(wrap.WithAction(context.Background(), "setup swagger routes"), "unknown service mode for swagger setup", "mode", a.mode)
		return
	}

	// Swagger UI endpoint
	swaggerURL := httpSwagger.InstanceName(instanceName)
	a.mux.HandleFunc("/swagger/", httpSwagger.Handler(swaggerURL))
}

// setupMetricsRoute configures the Prometheus metrics endpoint
func setupMetricsRoute(mux *http.ServeMux) {
	mux.Handle("/metrics", promhttp.Handler())
}
