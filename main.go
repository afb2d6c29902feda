package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Fazilniyaz/cable-net-complete-backend/config"
	"github.com/Fazilniyaz/cable-net-complete-backend/handlers"
	"github.com/Fazilniyaz/cable-net-complete-backend/middleware"
	"github.com/Fazilniyaz/cable-net-complete-backend/repository"
)

type HealthResponse struct {
	Status    string `json:"status"`
	DBStatus  string `json:"db_status"`
	DBDetails struct {
		Database    string   `json:"database"`
		Collections []string `json:"collections,omitempty"`
	} `json:"db_details"`
	Error string `json:"error,omitempty"`
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status: "ok",
	}

	if config.MongoClient == nil {
		response.Status = "error"
		response.DBStatus = "not_initialized"
		response.Error = "Database connection not initialized"
	} else if err := config.CheckMongoHealth(); err != nil {
		response.Status = "error"
		response.DBStatus = "connection_error"
		response.Error = fmt.Sprintf("Database ping failed: %v", err)
	} else {
		response.DBStatus = "connected"
		response.DBDetails.Database = config.MongoDBName()

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if names, err := config.MongoDB.ListCollectionNames(ctx, bson.M{}); err == nil {
			response.DBDetails.Collections = names
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func main() {
	startTime := time.Now()
	log.Printf("Starting server initialization at %s", startTime.Format(time.RFC3339))

	// Load environment variables first
	if err := config.LoadEnv(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	port := config.Port()

	// Initialize MongoDB with retries
	log.Println("Initializing MongoDB...")
	if err := config.ConnectWithRetry(5); err != nil {
		log.Fatalf("Failed to initialize MongoDB: %v", err)
	}
	log.Println("MongoDB initialized successfully")
	defer config.CloseDB()

	config.InitCache()

	// Wire repositories and handlers
	locationRepo := repository.NewLocationRepository(config.MongoDB)
	adminRepo := repository.NewAdminRepository(config.MongoDB)

	// Bootstrap must finish before any request can depend on the admins
	// collection being non-empty.
	bootstrapCtx, cancelBootstrap := context.WithTimeout(context.Background(), 30*time.Second)
	if err := adminRepo.Bootstrap(bootstrapCtx); err != nil {
		cancelBootstrap()
		log.Fatalf("Failed to bootstrap default admin: %v", err)
	}
	cancelBootstrap()
	log.Println("Admin bootstrap completed")

	locationHandler := handlers.NewLocationHandler(locationRepo, adminRepo)
	adminHandler := handlers.NewAdminHandler(adminRepo)
	authHandler := handlers.NewAuthHandler(adminRepo)

	r := mux.NewRouter()

	// CORS configuration
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: config.AllowedOrigins(),
		AllowedMethods: []string{
			"GET", "POST", "PUT", "DELETE", "OPTIONS",
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Requested-With",
			"Origin",
		},
		ExposedHeaders: []string{
			"Content-Length",
			"Content-Type",
		},
		AllowCredentials: false,
		MaxAge:           86400,
	})

	// Apply middlewares in correct order
	r.Use(corsHandler.Handler)
	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.LoggingMiddleware)

	// API routes
	api := r.PathPrefix("/api/v1").Subrouter()
	registerRoutes(api, locationHandler, adminHandler, authHandler)
	log.Println("Routes registered successfully")

	// Create server with explicit timeouts
	srv := &http.Server{
		Handler:           r,
		Addr:              ":" + port,
		WriteTimeout:      15 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErrors := make(chan error, 1)

	go func() {
		log.Printf("Starting server on port %s...", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
			serverErrors <- err
		}
	}()

	log.Printf("Health check endpoint: http://localhost:%s/api/v1/health", port)

	// Handle graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("Shutdown signal received")
	case err := <-serverErrors:
		log.Printf("Server error received: %v", err)
	}

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	} else {
		log.Println("Server shutdown completed successfully")
	}
}

func registerRoutes(api *mux.Router, locations *handlers.LocationHandler, admins *handlers.AdminHandler, auth *handlers.AuthHandler) {
	// Health checks
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")
	api.HandleFunc("/health/detailed", healthCheck).Methods("GET")

	// Auth routes
	api.HandleFunc("/auth/login", auth.Login).Methods("POST")

	// Everything below requires a valid bearer token
	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.AuthMiddleware)

	protected.HandleFunc("/auth/verify", auth.Verify).Methods("GET")

	// Location routes
	protected.HandleFunc("/locations", locations.List).Methods("GET")
	protected.HandleFunc("/locations", locations.Create).Methods("POST")
	protected.HandleFunc("/locations/stats/dashboard", locations.Stats).Methods("GET")
	protected.HandleFunc("/locations/filter/service-type/{id}", locations.FilterByServiceType).Methods("GET")
	protected.HandleFunc("/locations/{id}", locations.Get).Methods("GET")
	protected.HandleFunc("/locations/{id}", locations.Update).Methods("PUT")
	protected.HandleFunc("/locations/{id}/{adminId}", locations.Delete).Methods("DELETE")

	// Admin routes
	protected.HandleFunc("/admin/{adminId}/geojson", admins.UpdateGeoJSON).Methods("PUT")
}
