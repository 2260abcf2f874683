// internal/server/routes.go
package server

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"
	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// Routes returns the HTTP handler serving every endpoint of the hub.
func (h *Hub) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /session", h.handleSession)
	mux.HandleFunc("GET /ws", h.ServeWS)
	mux.HandleFunc("GET /rooms/{code}/qr.png", h.handleRoomQR)
	mux.HandleFunc("GET /health", h.handleHealth)
	return mux
}

type sessionResponse struct {
	Session string `json:"session"`
	Name    string `json:"name"`
	Token   string `json:"token"`
}

// handleSession issues a session token for ?name=.
func (h *Hub) handleSession(w http.ResponseWriter, r *http.Request) {
	s, token, err := h.issueSession(r.URL.Query().Get("name"))
	if err != nil {
		logrus.Errorf("Issuing session token: %v", err)
		http.Error(w, "could not issue session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: s.ID, Name: s.Name, Token: token})
}

// JoinURL is the link a room's QR code encodes.
func (h *Hub) JoinURL(code string) string {
	return h.PublicURL + "/?room=" + url.QueryEscape(code)
}

func (h *Hub) handleRoomQR(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if _, ok := h.Rooms.Get(code); !ok {
		http.Error(w, errNoRoom.Error(), http.StatusNotFound)
		return
	}
	png, err := qrcode.Encode(h.JoinURL(code), qrcode.Medium, qrSize)
	if err != nil {
		logrus.Errorf("Game %s: QR encode failed: %v", code, err)
		http.Error(w, "could not render code", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

func (h *Hub) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	clients := len(h.clients)
	h.mu.RUnlock()
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "rooms": h.Rooms.Len(), "clients": clients})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Debugf("Writing response: %v", err)
	}
}
