package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/amanpalap/wimb/config"
	"github.com/amanpalap/wimb/geocode"
	"github.com/amanpalap/wimb/handlers"
	"github.com/amanpalap/wimb/journey"
	"github.com/amanpalap/wimb/middleware"
	"github.com/amanpalap/wimb/store"
)

type healthResponse struct {
	Status    string `json:"status"`
	DBStatus  string `json:"db_status"`
	DBDetails struct {
		Database    string   `json:"database"`
		Collections []string `json:"collections,omitempty"`
	} `json:"db_details"`
	Error string `json:"error,omitempty"`
}

func detailedHealthCheck(client *mongo.Client, db *mongo.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := healthResponse{Status: "ok"}

		if err := config.CheckMongoHealth(client); err != nil {
			response.Status = "error"
			response.DBStatus = "connection_error"
			response.Error = err.Error()
		} else {
			response.DBStatus = "connected"
			response.DBDetails.Database = db.Name()

			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()
			names, err := db.ListCollectionNames(ctx, bson.M{"name": "buses"})
			if err == nil {
				response.DBDetails.Collections = names
			}
		}

		w.Header().Set("Content-Type", "application/json")
		writeStatus := http.StatusOK
		if response.Status != "ok" {
			writeStatus = http.StatusServiceUnavailable
		}
		w.WriteHeader(writeStatus)
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Printf("Error writing health response: %v", err)
		}
	}
}

func main() {
	startTime := time.Now()
	log.Printf("Starting server initialization at %s", startTime.Format(time.RFC3339))

	if err := config.LoadEnv(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	port := config.GetEnvWithDefault("PORT", "8080")

	log.Println("Connecting to MongoDB...")
	client, err := config.ConnectWithRetry(config.GetEnvAsInt("MONGO_MAX_RETRIES", 5))
	if err != nil {
		log.Fatalf("Failed to initialize MongoDB: %v", err)
	}
	defer config.Disconnect(client)

	db := config.Database(client)
	log.Printf("Connected to MongoDB database: %s", db.Name())

	{
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := config.EnsureIndexes(ctx, db); err != nil {
			log.Printf("Warning: Failed to create indexes: %v", err)
		}
		cancel()
	}

	busStore := store.New(db)
	geocoder := geocode.NewClient(config.GetEnvWithDefault("GEOCODE_BASE_URL", ""))
	resolver := journey.NewResolver(busStore, geocoder)
	busHandler := handlers.NewBusHandler(busStore, resolver)

	r := mux.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"https://wimb.vercel.app",
		},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"Origin",
			"X-Requested-With",
		},
		MaxAge: 86400,
	})

	r.Use(corsHandler.Handler)
	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.MetricsMiddleware)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/bus-list", busHandler.ListBuses).Methods("POST", "OPTIONS")
	api.HandleFunc("/location/update", busHandler.ResolveJourney).Methods("POST", "OPTIONS")
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")
	api.HandleFunc("/health/detailed", detailedHealthCheck(client, db)).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	log.Println("Routes registered successfully")

	srv := &http.Server{
		Handler:           r,
		Addr:              ":" + port,
		WriteTimeout:      60 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErrors := make(chan error, 1)

	go func() {
		log.Printf("Starting server on port %s...", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

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
