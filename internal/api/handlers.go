package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/josephwere/NeuroEdge/internal/kernel"
)

// handleKernelHealth returns JSON of all component health.
func (a *API) handleKernelHealth(w http.ResponseWriter, _ *http.Request) {
	type componentHealth struct {
		Component string `json:"component"`
		Healthy   bool   `json:"healthy"`
		LastCheck string `json:"last_check"`
		Error     string `json:"error,omitempty"`
	}

	statuses := a.kernel.Health().StatusesSnapshot()
	health := make([]componentHealth, 0, len(statuses))
	for _, s := range statuses {
		errStr := ""
		if s.LastError != nil {
			errStr = s.LastError.Error()
		}
		health = append(health, componentHealth{
			Component: s.Name,
			Healthy:   s.Healthy,
			LastCheck: s.LastCheck.UTC().Format("2006-01-02T15:04:05Z07:00"),
			Error:     errStr,
		})
	}
	writeJSON(w, health)
}

// handleNodes returns all registered mesh nodes.
func (a *API) handleNodes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, a.kernel.Registry().Nodes())
}

// handleCapabilities returns all registered agents and engines.
func (a *API) handleCapabilities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, a.kernel.Registry().Capabilities())
}

// handleExecute accepts orchestrator commands and returns a normalized
// response. /chat is an alias for chat-style requests.
func (a *API) handleExecute(w http.ResponseWriter, r *http.Request) {
	var cmd kernel.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	writeJSON(w, a.kernel.Execute(r.Context(), cmd))
}

// handleEventIngest accepts orchestrator bridge events.
func (a *API) handleEventIngest(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name   string                 `json:"name"`
		Source string                 `json:"source"`
		Data   map[string]interface{} `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if payload.Name == "" {
		http.Error(w, "event name required", http.StatusBadRequest)
		return
	}

	a.kernel.IngestEvent(r.Context(), payload.Name, payload.Source, payload.Data)
	writeJSON(w, map[string]interface{}{
		"status":    "accepted",
		"component": "kernel-api",
	})
}

// handleMessages returns recent mesh message history. When a store is
// attached the durable history is served, otherwise the in-memory one.
func (a *API) handleMessages(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r)
	if st := a.kernel.Store(); st != nil {
		rows, err := st.RecentMessages(r.Context(), limit)
		if err != nil {
			a.serverError(w, err)
			return
		}
		writeJSON(w, rows)
		return
	}
	writeJSON(w, a.kernel.Messaging().History(limit))
}

// handleRoutes returns recent route history.
func (a *API) handleRoutes(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r)
	if st := a.kernel.Store(); st != nil {
		rows, err := st.RecentRoutes(r.Context(), limit)
		if err != nil {
			a.serverError(w, err)
			return
		}
		writeJSON(w, rows)
		return
	}
	writeJSON(w, a.kernel.Routing().History(limit))
}

func parseLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 100
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 100
	}
	return n
}

func (a *API) serverError(w http.ResponseWriter, err error) {
	a.log.Error("API", err, nil)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}
