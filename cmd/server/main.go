/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the attendance ingestion server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Build the business calendar
  3. Initialize the SQLite store
  4. Wire the ingestion pipeline and API handler
  5. Start the server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: attendance.db)
           Use ":memory:" for an in-memory database

ENVIRONMENT:
  WEBHOOK_AUTH_KEY   Shared secret for the device webhook (required;
                     the webhook fails closed when unset)
  BUSINESS_TIMEZONE  IANA timezone for all attendance decisions
                     (default: Asia/Kolkata)
  OFFICE_START       Lateness cutoff as HH:MM (default: 10:00)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/warp/attendance-engine/api"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/store/sqlite"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "attendance.db", "SQLite database path")
	flag.Parse()

	authKey := os.Getenv("WEBHOOK_AUTH_KEY")
	if authKey == "" {
		log.Println("Warning: WEBHOOK_AUTH_KEY not set; webhook will reject all requests")
	}

	timezone := envOr("BUSINESS_TIMEZONE", attendance.DefaultTimezone)
	officeStart := envOr("OFFICE_START", attendance.DefaultOfficeStart)

	cal, err := attendance.NewBusinessCalendar(timezone, officeStart)
	if err != nil {
		log.Fatalf("Failed to build business calendar: %v", err)
	}

	// Initialize store
	store, err := sqlite.New(*dbPath, cal.Location())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Wire pipeline and handler
	pipeline := attendance.NewPipeline(store, store, cal)
	handler := api.NewHandler(store, store, pipeline, cal, authKey)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Attendance webhook listening on http://localhost:%d/api/webhook/attendance", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
