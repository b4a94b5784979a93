// Package feed decodes raw text frames from the marketplace trade channel.
// Frames are socket.io-style envelopes; only the inner `["event",[...]]`
// array is meaningful and the outer frame is frequently not valid JSON.
package feed

import (
	"strings"

	"empire-monitor/internal/extract"
)

// Event names carried by the withdrawal-market feed.
const (
	EventNewItem       = "new_item"
	EventAuctionUpdate = "auction_update"
	EventDeletedItem   = "deleted_item"
	EventSellerStatus  = "updated_seller_online_status"
)

// knownEvents is scanned in order; a frame never carries more than one of
// these names at the envelope level.
var knownEvents = []string{
	EventNewItem,
	EventAuctionUpdate,
	EventDeletedItem,
	EventSellerStatus,
}

// DecodeFrame determines whether raw carries a named event. On a hit it
// returns the event name and the slice of raw holding the event's argument
// array (outer brackets stripped). Handshake and ack frames, and frames
// whose argument array is truncated, report ok=false. DecodeFrame is a pure
// function of its input.
func DecodeFrame(raw string) (event, args string, ok bool) {
	for _, ev := range knownEvents {
		marker := `"` + ev + `",[`
		idx := strings.Index(raw, marker)
		if idx < 0 {
			continue
		}
		start := idx + len(marker)
		end := extract.MatchBracket(raw, start)
		if end == extract.NoMatch {
			return "", "", false
		}
		return ev, raw[start:end], true
	}
	return "", "", false
}
