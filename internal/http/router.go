package http

import (
	"net/http"

	"harir-backend/internal/handlers"
	"harir-backend/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	visitHandler *handlers.VisitHandler,
	supplierHandler *handlers.SupplierHandler,
	weightHandler *handlers.WeightHandler,
	rejectHandler *handlers.RejectHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public API routes - Authentication
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected API routes - Users (admin only)
	usersAPI := r.PathPrefix("/api/users").Subrouter()
	usersAPI.Use(authMiddleware.Authenticate)
	usersAPI.HandleFunc("", authMiddleware.RequireAdmin(http.HandlerFunc(userHandler.ListUsers)).ServeHTTP).Methods("GET")
	usersAPI.HandleFunc("", authMiddleware.RequireAdmin(http.HandlerFunc(userHandler.CreateUser)).ServeHTTP).Methods("POST")

	// Protected API routes - Vehicle visits. The dashboard addresses a visit
	// with the id query parameter, so PUT has no path variable.
	visitsAPI := r.PathPrefix("/api/vehicle-visits").Subrouter()
	visitsAPI.Use(authMiddleware.Authenticate)
	visitsAPI.HandleFunc("", visitHandler.ListVisits).Methods("GET")
	visitsAPI.HandleFunc("", authMiddleware.RequireRole("operator", "guard", "admin")(http.HandlerFunc(visitHandler.RegisterVisit)).ServeHTTP).Methods("POST")
	visitsAPI.HandleFunc("", authMiddleware.RequireRole("operator", "guard", "admin")(http.HandlerFunc(visitHandler.UpdateVisit)).ServeHTTP).Methods("PUT")

	// Protected API routes - Suppliers
	suppliersAPI := r.PathPrefix("/api/suppliers").Subrouter()
	suppliersAPI.Use(authMiddleware.Authenticate)
	suppliersAPI.HandleFunc("/checked-in", supplierHandler.ListCheckedIn).Methods("GET")
	suppliersAPI.HandleFunc("", supplierHandler.GetSupplier).Methods("GET")

	// Protected API routes - Weights
	weightsAPI := r.PathPrefix("/api/weights").Subrouter()
	weightsAPI.Use(authMiddleware.Authenticate)
	weightsAPI.HandleFunc("", weightHandler.ListWeights).Methods("GET")
	weightsAPI.HandleFunc("/select", weightHandler.SelectForWeighing).Methods("GET")
	weightsAPI.HandleFunc("", authMiddleware.RequireRole("operator", "admin")(http.HandlerFunc(weightHandler.CaptureWeight)).ServeHTTP).Methods("POST")
	weightsAPI.HandleFunc("", authMiddleware.RequireRole("operator", "admin")(http.HandlerFunc(weightHandler.UpdateWeight)).ServeHTTP).Methods("PATCH")
	weightsAPI.HandleFunc("", authMiddleware.RequireAdmin(http.HandlerFunc(weightHandler.DeleteWeight)).ServeHTTP).Methods("DELETE")

	// Protected API routes - Rejects
	rejectsAPI := r.PathPrefix("/api/rejects").Subrouter()
	rejectsAPI.Use(authMiddleware.Authenticate)
	rejectsAPI.HandleFunc("", rejectHandler.ListRejects).Methods("GET")
	rejectsAPI.HandleFunc("", authMiddleware.RequireRole("operator", "admin")(http.HandlerFunc(rejectHandler.CreateReject)).ServeHTTP).Methods("POST")

	// Health endpoints (no auth required - for Kubernetes probes)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", healthHandler.DetailedHealth).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
