// Package push turns push payloads into notifications for subscribed
// clients. It is a boundary component: it has no interaction with the cache
// engine. Subscribers hold an SSE stream open; pushed payloads fan out to
// every subscriber, and notification clicks resolve against the url carried
// in the notification data.
package push

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/UtsavBalar1231/website/internal/logging"
	"github.com/UtsavBalar1231/website/metrics"
)

// Notification actions offered to the user.
const (
	ActionOpen  = "open"
	ActionClose = "close"
)

// Payload is the inbound push message.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

// Action is one button on a displayed notification.
type Action struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

// Notification is the document sent to subscribers for display.
type Notification struct {
	Title   string   `json:"title"`
	Body    string   `json:"body"`
	Data    Data     `json:"data"`
	Actions []Action `json:"actions"`
}

// Data carries the navigation target attached to a notification.
type Data struct {
	URL string `json:"url"`
}

func newNotification(p Payload) Notification {
	return Notification{
		Title: p.Title,
		Body:  p.Body,
		Data:  Data{URL: p.URL},
		Actions: []Action{
			{Action: ActionOpen, Title: "Open"},
			{Action: ActionClose, Title: "Close"},
		},
	}
}

// Hub fans notifications out to subscribers. The zero value is not usable;
// use NewHub.
type Hub struct {
	mu          sync.Mutex
	subscribers map[chan []byte]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[chan []byte]struct{})}
}

// Subscribe registers a new subscriber and returns its channel plus a cancel
// function that must be called when the subscriber goes away.
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, 8)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subscribers, ch)
		h.mu.Unlock()
	}

	return ch, cancel
}

// SubscriberCount returns the number of connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.subscribers)
}

// Broadcast delivers a notification to every subscriber. Slow subscribers
// with a full buffer are skipped rather than blocked on.
func (h *Hub) Broadcast(n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subscribers {
		select {
		case ch <- data:
		default:
			log.Debug("dropping notification for slow push subscriber")
		}
	}

	metrics.PushNotifications.Inc()

	return nil
}

// ServePush accepts a push payload and dispatches it to subscribers.
func (h *Hub) ServePush(w http.ResponseWriter, r *http.Request) {
	var payload Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "malformed push payload", http.StatusBadRequest)
		return
	}

	if payload.Title == "" {
		http.Error(w, "push payload requires a title", http.StatusBadRequest)
		return
	}

	if err := h.Broadcast(newNotification(payload)); err != nil {
		logging.LogRequest(r).WithError(err).Error("could not broadcast push notification")
		http.Error(w, "broadcast failed", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// ServeSubscribe streams notifications to a client over server-sent events
// until the client disconnects.
func (h *Hub) ServeSubscribe(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch, cancel := h.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case data := <-ch:
			fmt.Fprintf(w, "event: notification\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// click is the inbound notification-click event.
type click struct {
	Action string `json:"action"`
	URL    string `json:"url"`
}

// ServeClick resolves a notification click. An "open" action (or no action)
// answers with the url the client should open or focus; "close" dismisses
// only.
func ServeClick(w http.ResponseWriter, r *http.Request) {
	var c click
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "malformed click event", http.StatusBadRequest)
		return
	}

	switch c.Action {
	case ActionOpen, "":
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"open": c.URL})

	default:
		// close, or anything unrecognized, dismisses without navigation
		w.WriteHeader(http.StatusNoContent)
	}
}
