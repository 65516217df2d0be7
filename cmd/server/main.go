package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"harir-backend/internal/auth"
	"harir-backend/internal/cache"
	"harir-backend/internal/config"
	"harir-backend/internal/database"
	"harir-backend/internal/db"
	"harir-backend/internal/handlers"
	"harir-backend/internal/health"
	h "harir-backend/internal/http"
	"harir-backend/internal/logging"
	"harir-backend/internal/middleware"
	"harir-backend/internal/repositories"
	"harir-backend/internal/services"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	if err := logging.Init(os.Getenv("APP_ENV")); err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer logging.Close()

	pool := db.Connect(cfg)
	defer pool.Close()

	// Redis is optional - login falls back to bcrypt-only, supplier list
	// caching is skipped
	if err := cache.Init(); err != nil {
		logging.Warn("redis cache unavailable", "error", err.Error())
	} else {
		logging.Info("redis cache connected")
	}

	// Run database migrations on startup
	migrator := database.NewMigrator(pool)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrator.RunMigrations(ctx); err != nil {
		logging.Fatal("migrations failed", "error", err.Error())
	}

	healthChecker := health.NewHealthChecker(pool)
	jwtManager := auth.NewJWTManager(cfg)

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	supplierRepo := repositories.NewSupplierRepository(pool)
	visitRepo := repositories.NewVisitRepository(pool)
	weightRepo := repositories.NewWeightRepository(pool)
	rejectRepo := repositories.NewRejectRepository(pool)

	// Services
	userService := services.NewUserService(userRepo, jwtManager)
	visitService := services.NewVisitService(visitRepo, supplierRepo)
	weightService := services.NewWeightService(weightRepo, visitRepo)
	rejectService := services.NewRejectService(rejectRepo, visitRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	visitHandler := handlers.NewVisitHandler(visitService)
	supplierHandler := handlers.NewSupplierHandler(supplierRepo)
	weightHandler := handlers.NewWeightHandler(weightService)
	rejectHandler := handlers.NewRejectHandler(rejectService)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	corsMiddleware := middleware.NewCORS(cfg)

	router := h.NewRouter(
		authHandler,
		userHandler,
		visitHandler,
		supplierHandler,
		weightHandler,
		rejectHandler,
		healthHandler,
		authMiddleware,
	)

	handler := middleware.PanicRecovery(
		middleware.MetricsMiddleware(
			middleware.RequestLogging(
				corsMiddleware(router),
			),
		),
	)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logging.Info("server starting", "addr", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		logging.Fatal("server failed", "error", err.Error())
	}
}
