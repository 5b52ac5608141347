package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/gorilla/mux"
)

// Routes connects all endpoints with their middleware chains.
func (a *API) Routes() *mux.Router {
	r := mux.NewRouter()

	// Public health/liveness. /health is a compatibility alias.
	r.HandleFunc("/healthz", a.publicHandler(a.handleLiveness)).Methods("GET")
	r.HandleFunc("/health", a.publicHandler(a.handleLiveness)).Methods("GET")

	// Rich health details for dashboards and SRE probes.
	r.HandleFunc("/health/details", a.publicHandler(a.handleHealthDetails)).Methods("GET")

	// Ready means process is up and required auth config is present.
	r.HandleFunc("/readyz", a.publicHandler(a.handleReadiness)).Methods("GET")

	// Protected kernel routes.
	r.HandleFunc("/kernel/health", a.secureHandler(a.handleKernelHealth)).Methods("GET")
	r.HandleFunc("/kernel/nodes", a.secureHandler(a.handleNodes)).Methods("GET")
	r.HandleFunc("/kernel/capabilities", a.secureHandler(a.handleCapabilities)).Methods("GET")
	r.HandleFunc("/kernel/messages", a.secureHandler(a.handleMessages)).Methods("GET")
	r.HandleFunc("/kernel/routes", a.secureHandler(a.handleRoutes)).Methods("GET")
	r.HandleFunc("/chat", a.secureHandler(a.handleExecute)).Methods("POST")
	r.HandleFunc("/execute", a.secureHandler(a.handleExecute)).Methods("POST")
	r.HandleFunc("/events", a.secureHandler(a.handleEventIngest)).Methods("POST")

	return r
}

func (a *API) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (a *API) handleHealthDetails(w http.ResponseWriter, _ *http.Request) {
	mem := runtime.MemStats{}
	runtime.ReadMemStats(&mem)
	snapshot := a.concurrencySnapshot()
	body := map[string]any{
		"status":      "ok",
		"service":     "kernel",
		"time":        time.Now().UTC().Format(time.RFC3339),
		"goroutines":  runtime.NumGoroutine(),
		"allocBytes":  mem.Alloc,
		"sysBytes":    mem.Sys,
		"inflight":    snapshot.Current,
		"inflightMax": snapshot.Limit,
	}
	if visionStats := a.kernel.VisionMemoryStats(); visionStats != nil {
		body["vision"] = visionStats
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func (a *API) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	if a.apiKey() == "" {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
