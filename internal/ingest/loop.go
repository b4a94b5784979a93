// Package ingest drives the pipeline: it pulls frames from the transport
// stream one at a time and routes them through decode, extraction and
// reconciliation in strict arrival order.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"empire-monitor/internal/extract"
	"empire-monitor/internal/feed"
	"empire-monitor/internal/reconcile"
	"empire-monitor/internal/stats"
)

// FrameSource yields raw text frames from the marketplace channel. Next
// blocks until a frame arrives, the context is cancelled, or the transport
// fails; a transport failure is fatal to the loop and surfaced to the
// caller (reconnecting is the collaborator's job, not ours).
type FrameSource interface {
	Next(ctx context.Context) (string, error)
}

// Sink receives persistence write intents in event order.
type Sink interface {
	Apply(ops []reconcile.WriteOp) error
}

type Loop struct {
	source FrameSource
	rec    *reconcile.Reconciler
	sink   Sink
	agg    *stats.Aggregator
	logger *log.Logger

	// rawLog, when set, receives every inbound frame as one JSON line.
	rawLog io.Writer
}

func NewLoop(source FrameSource, rec *reconcile.Reconciler, sink Sink, agg *stats.Aggregator, logger *log.Logger) *Loop {
	return &Loop{
		source: source,
		rec:    rec,
		sink:   sink,
		agg:    agg,
		logger: logger,
	}
}

// SetRawLog enables append-only raw frame capture, replayable later with
// the replay tool.
func (l *Loop) SetRawLog(w io.Writer) {
	l.rawLog = w
}

// Run processes frames until the context is cancelled or the transport
// fails. Cancellation takes effect between frames, never mid-event. An
// error in a single event is logged and the loop continues; only transport
// errors end the run.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		raw, err := l.source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("frame receive: %w", err)
		}

		l.agg.FrameSeen()
		l.captureRaw(raw)
		l.processFrame(raw)
	}
}

func (l *Loop) processFrame(raw string) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Printf("panic processing frame: %v", r)
		}
	}()

	event, args, ok := feed.DecodeFrame(raw)
	if !ok {
		// Handshake, ack, or truncated payload.
		return
	}

	var ops []reconcile.WriteOp
	var err error

	switch event {
	case feed.EventNewItem:
		fields := extract.Fields(args, reconcile.ListingFields)
		// Classification keys repeat inside the embedded item_search
		// object; values scoped to that section win.
		if section, found := extract.Section(args, "item_search"); found {
			for k, v := range extract.Fields(section, reconcile.SearchFields) {
				fields[k] = v
			}
		}
		var id int64
		var first bool
		ops, id, first, err = l.rec.ApplyListing(fields)
		if err == nil && first {
			l.logListing(id, fields)
		}

	case feed.EventAuctionUpdate:
		ops, err = l.rec.ApplyAuctionUpdate(extract.Fields(args, reconcile.AuctionFields))

	case feed.EventDeletedItem:
		ops = l.rec.ApplyDeletion(extract.IDList(args))

	case feed.EventSellerStatus:
		err = l.rec.ApplySellerStatus(extract.Fields(args, reconcile.SellerStatusFields))
	}

	if err != nil {
		l.agg.EventDropped()
		l.logger.Printf("dropped %s event: %v", event, err)
		return
	}
	if len(ops) == 0 {
		return
	}

	l.agg.Observe(ops)
	if err := l.sink.Apply(ops); err != nil {
		l.logger.Printf("persist %s event: %v", event, err)
	}
}

func (l *Loop) logListing(id int64, fields map[string]any) {
	name := "unknown"
	if n, ok := fields["market_name"].(string); ok {
		name = n
	}
	var cents int64
	if v, ok := extract.GetInt(fields, "market_value"); ok {
		cents = v
	}
	l.logger.Printf("new item %d: %s ($%.2f)", id, name, float64(cents)/100)
}

type rawLine struct {
	T       string `json:"t"`
	Payload string `json:"payload"`
}

func (l *Loop) captureRaw(raw string) {
	if l.rawLog == nil {
		return
	}
	line, err := json.Marshal(rawLine{
		T:       time.Now().UTC().Format(time.RFC3339Nano),
		Payload: raw,
	})
	if err != nil {
		return
	}
	line = append(line, '\n')
	if _, err := l.rawLog.Write(line); err != nil {
		l.logger.Printf("raw log write: %v", err)
	}
}
