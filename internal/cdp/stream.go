package cdp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// Stream is an attached CDP session yielding the payloads of WebSocket
// frames received by the page, filtered to the marketplace URL. It
// implements the ingestion loop's FrameSource.
type Stream struct {
	conn     *websocket.Conn
	matchURL string

	mu     sync.Mutex
	nextID int

	// watched records, per requestId learned from webSocketCreated, whether
	// that page websocket matched the URL filter. Frame events carry no URL
	// of their own.
	watched map[string]bool
}

type cdpRequest struct {
	ID     int            `json:"id"`
	Method string         `json:"method"`
	Params map[string]any `json:"params,omitempty"`
}

type cdpEnvelope struct {
	Method string `json:"method"`
	Params struct {
		RequestID string `json:"requestId"`
		URL       string `json:"url"`
		Response  struct {
			PayloadData string `json:"payloadData"`
		} `json:"response"`
	} `json:"params"`
}

// Attach dials the tab's debugger endpoint and enables Network events.
// The connection is torn down when ctx is cancelled.
func Attach(ctx context.Context, debuggerURL, matchURL string) (*Stream, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, debuggerURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial devtools: %w", err)
	}

	s := &Stream{
		conn:     conn,
		matchURL: strings.ToLower(matchURL),
		nextID:   1,
		watched:  make(map[string]bool),
	}
	if err := s.send("Network.enable", nil); err != nil {
		conn.Close()
		return nil, err
	}

	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	return s, nil
}

func (s *Stream) send(method string, params map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req := cdpRequest{ID: s.nextID, Method: method, Params: params}
	s.nextID++
	if err := s.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("send %s: %w", method, err)
	}
	return nil
}

// Next blocks until the page receives a WebSocket frame that can belong to
// the filtered connection, then returns its payload. Connection URLs are
// learned from webSocketCreated events; frames on connections that predate
// the session carry no URL and are passed through rather than dropped.
// Protocol replies and frames on known non-matching connections are
// skipped. A read failure (including the close triggered by ctx
// cancellation) is a transport fault.
func (s *Stream) Next(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return "", fmt.Errorf("read devtools frame: %w", err)
		}

		var env cdpEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}

		switch env.Method {
		case "Network.webSocketCreated":
			s.watched[env.Params.RequestID] = s.matchURL == "" ||
				strings.Contains(strings.ToLower(env.Params.URL), s.matchURL)
		case "Network.webSocketClosed":
			delete(s.watched, env.Params.RequestID)
		case "Network.webSocketFrameReceived":
			// Sockets opened before Network.enable never replay their
			// webSocketCreated, and the feed socket is usually already
			// open when the session attaches. Frames on those unknown
			// requestIds pass through; the frame decoder discards
			// anything that is not a feed event. Only sockets known to
			// miss the filter are dropped.
			if matched, known := s.watched[env.Params.RequestID]; known && !matched {
				continue
			}
			if env.Params.Response.PayloadData == "" {
				continue
			}
			return env.Params.Response.PayloadData, nil
		}
	}
}

// Close tears down the session.
func (s *Stream) Close() error {
	return s.conn.Close()
}
