// Package cdp attaches to a browser tab through the Chrome DevTools
// Protocol and exposes the tab's marketplace WebSocket traffic as a frame
// source for the ingestion loop.
package cdp

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrNoTarget means no open tab matched the requested URL filter.
var ErrNoTarget = errors.New("no matching browser tab found")

// Target is one debuggable page reported by the DevTools /json endpoint.
type Target struct {
	Type                 string `json:"type"`
	Title                string `json:"title"`
	URL                  string `json:"url"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// DiscoverTarget queries the DevTools endpoint for open targets and returns
// the debugger WebSocket URL of the best match: pages score above other
// target types, and a URL containing matchURL scores above one that does
// not. The top target must actually match the filter.
func DiscoverTarget(devtoolsURL, matchURL string) (string, error) {
	client := resty.New().SetTimeout(5 * time.Second)

	var targets []Target
	resp, err := client.R().SetResult(&targets).Get(devtoolsURL + "/json")
	if err != nil {
		return "", fmt.Errorf("query devtools: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("query devtools: status %s", resp.Status())
	}

	score := func(t Target) int {
		s := 0
		if t.Type == "page" {
			s += 2
		}
		if matchURL != "" && strings.Contains(strings.ToLower(t.URL), strings.ToLower(matchURL)) {
			s += 3
		}
		return s
	}
	sort.SliceStable(targets, func(i, j int) bool {
		return score(targets[i]) > score(targets[j])
	})

	if len(targets) == 0 {
		return "", ErrNoTarget
	}
	top := targets[0]
	if matchURL != "" && !strings.Contains(strings.ToLower(top.URL), strings.ToLower(matchURL)) {
		return "", ErrNoTarget
	}
	if top.WebSocketDebuggerURL == "" {
		return "", ErrNoTarget
	}
	return top.WebSocketDebuggerURL, nil
}
