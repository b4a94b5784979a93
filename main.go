package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"empire-monitor/internal/api"
	"empire-monitor/internal/cdp"
	"empire-monitor/internal/config"
	"empire-monitor/internal/database"
	"empire-monitor/internal/ingest"
	"empire-monitor/internal/reconcile"
	"empire-monitor/internal/sink"
	"empire-monitor/internal/stats"
)

var (
	dbURL       = flag.String("db", "", "database connection string (defaults to DATABASE_URL)")
	devtoolsURL = flag.String("devtools", "", "DevTools endpoint of the capture browser")
	matchURL    = flag.String("match-url", "", "substring a tab URL must contain")
	rawLogPath  = flag.String("raw-log", "", "append-only raw frame log file")
	statsEvery  = flag.Int("stats-interval", 30, "seconds between stats log lines")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()
	if *dbURL != "" {
		cfg.DatabaseURL = *dbURL
	}
	if *devtoolsURL != "" {
		cfg.DevToolsURL = *devtoolsURL
	}
	if *matchURL != "" {
		cfg.MatchURL = *matchURL
	}
	if *rawLogPath != "" {
		cfg.RawFrameLog = *rawLogPath
	}

	logger := log.New(os.Stdout, "[Monitor] ", log.LstdFlags)

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	debuggerURL, err := cdp.DiscoverTarget(cfg.DevToolsURL, cfg.MatchURL)
	if err != nil {
		log.Fatal("Failed to locate feed tab:", err)
	}
	stream, err := cdp.Attach(ctx, debuggerURL, cfg.MatchURL)
	if err != nil {
		log.Fatal("Failed to attach to feed tab:", err)
	}
	defer stream.Close()
	logger.Printf("attached to %s", debuggerURL)

	rec := reconcile.New()
	agg := stats.NewAggregator()
	writer := sink.NewAsync(sink.NewWriter(db), 256, logger)
	defer writer.Close()

	loop := ingest.NewLoop(stream, rec, writer, agg, logger)
	if cfg.RawFrameLog != "" {
		f, err := os.OpenFile(cfg.RawFrameLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Fatal("Failed to open raw frame log:", err)
		}
		defer f.Close()
		loop.SetRawLog(f)
	}

	// Reporting API.
	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api.SetupRoutes(r.Group("/api"), db, agg)

	server := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("api server: %v", err)
		}
	}()

	// Periodic stats line, the headless stand-in for the old dashboard.
	go func() {
		ticker := time.NewTicker(time.Duration(*statsEvery) * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t := agg.Snapshot()
				logger.Printf("items=%d snapshots=%d auction_updates=%d deletions=%d dropped=%d",
					t.Items, t.Snapshots, t.AuctionUpdates, t.Deletions, t.DroppedEvents)
			}
		}
	}()

	logger.Println("monitoring started")
	err = loop.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Printf("ingestion stopped: %v", err)
		writer.Close() // flush queued writes, os.Exit skips defers
		os.Exit(1)
	}
	logger.Println("ingestion stopped")
}
