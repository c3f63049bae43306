/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the cash-back recommender server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load rules and keyword tables from the data directory
  3. Initialize the SQLite history store
  4. Create API handler with dependencies
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: cashback.db)
           Use ":memory:" for an in-memory database
  -data    Directory with rules.json, merchantmap.json,
           categorymap.json (default: ./data)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  ./server -db="./data/cashback.db"
  ./server -db=":memory:" -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - factory/config.go: Data file loading
  - store/sqlite/sqlite.go: History persistence
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

	"github.com/swipewise/cashback-engine/api"
	"github.com/swipewise/cashback-engine/engine"
	"github.com/swipewise/cashback-engine/factory"
	"github.com/swipewise/cashback-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "cashback.db", "SQLite database path")
	dataDir := flag.String("data", "./data", "Directory with rules.json, merchantmap.json, categorymap.json")
	flag.Parse()

	// Load configuration (rules + keyword tables)
	cfg, err := factory.LoadConfig(*dataDir)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Loaded %d rules, %d merchant keywords, %d category keywords",
		len(cfg.Rules), len(cfg.MerchantRegions), len(cfg.MerchantCategories))

	// Initialize history store
	history, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer history.Close()

	// Initialize handler
	handler := api.NewHandler(engine.New(cfg), history)

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
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
