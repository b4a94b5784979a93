// Replays a captured raw frame log through the full ingestion pipeline,
// useful for rebuilding the database from an earlier monitoring session.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"

	"empire-monitor/internal/config"
	"empire-monitor/internal/database"
	"empire-monitor/internal/ingest"
	"empire-monitor/internal/reconcile"
	"empire-monitor/internal/sink"
	"empire-monitor/internal/stats"
)

var (
	input = flag.String("input", "raw_tracker.log", "raw frame log to replay")
	dbURL = flag.String("db", "", "database connection string (defaults to DATABASE_URL)")
)

// fileSource feeds logged frames to the loop. Lines are either the JSON
// capture format {"t":...,"payload":...} or the bare frame text.
type fileSource struct {
	scanner *bufio.Scanner
}

func newFileSource(r io.Reader) *fileSource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &fileSource{scanner: sc}
}

func (f *fileSource) Next(ctx context.Context) (string, error) {
	for f.scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		line := f.scanner.Text()
		if line == "" {
			continue
		}
		var captured struct {
			Payload string `json:"payload"`
		}
		if err := json.Unmarshal([]byte(line), &captured); err == nil && captured.Payload != "" {
			return captured.Payload, nil
		}
		return line, nil
	}
	if err := f.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()
	if *dbURL != "" {
		cfg.DatabaseURL = *dbURL
	}

	logger := log.New(os.Stdout, "[Replay] ", log.LstdFlags)

	f, err := os.Open(*input)
	if err != nil {
		log.Fatal("Failed to open input:", err)
	}
	defer f.Close()

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	rec := reconcile.New()
	agg := stats.NewAggregator()
	writer := sink.NewAsync(sink.NewWriter(db), 256, logger)

	loop := ingest.NewLoop(newFileSource(f), rec, writer, agg, logger)
	err = loop.Run(context.Background())
	writer.Close()

	if err != nil && !errors.Is(err, io.EOF) {
		log.Fatal("Replay failed:", err)
	}

	t := agg.Snapshot()
	logger.Printf("replay complete: frames=%d items=%d snapshots=%d auction_updates=%d deletions=%d dropped=%d",
		t.Frames, t.Items, t.Snapshots, t.AuctionUpdates, t.Deletions, t.DroppedEvents)
}
