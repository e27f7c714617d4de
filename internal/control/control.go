// Package control implements the worker's message channel. Clients post
// small JSON messages; SKIP_WAITING forces a waiting generation to activate
// and GET_VERSION reports the current static-store version. Unknown message
// types are ignored silently.
package control

import (
	"encoding/json"
	"net/http"

	"github.com/UtsavBalar1231/website/internal/logging"
)

const (
	// MessageSkipWaiting instructs the worker to activate immediately,
	// bypassing the waiting period.
	MessageSkipWaiting = "SKIP_WAITING"

	// MessageGetVersion asks for the current static-store version
	// identifier.
	MessageGetVersion = "GET_VERSION"
)

// Message is the inbound control-channel envelope.
type Message struct {
	Type string `json:"type"`
}

// versionReply answers GET_VERSION.
type versionReply struct {
	Version string `json:"version"`
}

// Lifecycle is the slice of the lifecycle controller the channel needs.
type Lifecycle interface {
	SkipWaiting()
	Version() string
}

// Handler serves the control channel endpoint.
type Handler struct {
	lifecycle Lifecycle
}

// NewHandler returns a Handler driving the given lifecycle.
func NewHandler(lifecycle Lifecycle) *Handler {
	return &Handler{lifecycle: lifecycle}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var msg Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "malformed message", http.StatusBadRequest)
		return
	}

	switch msg.Type {
	case MessageSkipWaiting:
		h.lifecycle.SkipWaiting()
		w.WriteHeader(http.StatusAccepted)

	case MessageGetVersion:
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(versionReply{Version: h.lifecycle.Version()}); err != nil {
			logging.LogRequest(r).WithError(err).Debug("could not write version reply")
		}

	default:
		// unknown message types are dropped without acknowledgement
		w.WriteHeader(http.StatusNoContent)
	}
}
