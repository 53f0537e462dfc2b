/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the roster costing engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Build the zap logger
  3. Load reference data (built-in defaults or YAML files)
  4. Initialize SQLite store
  5. Construct the engine and API handler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port      HTTP server port (default: 8080)
  -db        SQLite database path (default: roster.db, ":memory:" works)
  -rates     Optional rate-table YAML file (default: built-in price list)
  -holidays  Optional holiday-calendar YAML file (default: national days)

REFERENCE DATA:
  The rate table and holiday calendar are loaded once and injected into
  the engine. An annual price-list update means restarting with a new
  YAML file - the whole table is swapped, never patched.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, drain active requests
  (30s timeout), close the database, exit.

SEE ALSO:
  - api/server.go: Router configuration
  - rates/load.go: YAML reference data formats
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/roster-engine/api"
	"github.com/warp/roster-engine/engine"
	"github.com/warp/roster-engine/rates"
	"github.com/warp/roster-engine/store/sqlite"
)

func main() {
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "roster.db", "SQLite database path")
	ratesPath := flag.String("rates", "", "rate table YAML file (default: built-in)")
	holidaysPath := flag.String("holidays", "", "holiday calendar YAML file (default: built-in)")
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Reference data
	table := rates.DefaultTable()
	if *ratesPath != "" {
		table, err = rates.LoadRateTableFile(*ratesPath)
		if err != nil {
			log.Fatal("failed to load rate table", zap.Error(err))
		}
	}
	calendar := rates.DefaultCalendar()
	if *holidaysPath != "" {
		calendar, err = rates.LoadHolidaysFile(*holidaysPath)
		if err != nil {
			log.Fatal("failed to load holidays", zap.Error(err))
		}
	}

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	eng := engine.New(table, calendar)
	handler := api.NewHandler(store, eng, log)
	router := api.NewRouter(handler, log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting",
			zap.Int("port", *port),
			zap.Int("line_items", len(table.Items())),
			zap.Int("holidays", len(calendar.Holidays())),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}
