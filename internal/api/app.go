package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/slaymom/internal/flow"
	"github.com/kalambet/slaymom/internal/profile"
	"github.com/kalambet/slaymom/internal/storage"
)

const maxRequestBodySize = 10 << 20 // 10MB, room for a full export

// Scheduler reports the next daily broadcast. Implemented by
// broadcast.Broadcaster.
type Scheduler interface {
	Next() time.Time
}

type AppDeps struct {
	Store    *storage.Store
	Profiles *profile.Manager
	Flows    *flow.Registry
	Schedule Scheduler // optional; nil when no broadcast channel is configured
	Token    string
	Version  string
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Version       string      `json:"version"`
	Profiles      int         `json:"profiles"`
	PendingFlows  []flow.Info `json:"pending_flows"`
	NextBroadcast *time.Time  `json:"next_broadcast,omitempty"`
}

// NewAppHandler returns the management API. /health is open; every other
// route needs the bearer token.
func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Get("/status", handleStatus(deps))
		r.Get("/profiles/{id}", handleGetProfile(deps))
		r.Delete("/profiles/{id}", handleDeleteProfile(deps))
		r.Get("/profiles/{id}/warnings", handleListWarnings(deps))
		r.Get("/export", handleExport(deps))
		r.Put("/import", handleImport(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleStatus(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := deps.Store.CountProfiles()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to count profiles: %v", err)
			return
		}

		resp := StatusResponse{
			Version:      deps.Version,
			Profiles:     n,
			PendingFlows: deps.Flows.Snapshot(),
		}
		if resp.PendingFlows == nil {
			resp.PendingFlows = []flow.Info{}
		}
		if deps.Schedule != nil {
			if next := deps.Schedule.Next(); !next.IsZero() {
				resp.NextBroadcast = &next
			}
		}
		writeJSON(w, resp)
	}
}

func handleGetProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		p, found, err := deps.Profiles.Lookup(id)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get profile: %v", err)
			return
		}
		if !found {
			httpError(w, http.StatusNotFound, "not_found", "profile not found")
			return
		}
		writeJSON(w, p)
	}
}

func handleDeleteProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		existed, err := deps.Profiles.Delete(id)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to delete profile: %v", err)
			return
		}
		if !existed {
			httpError(w, http.StatusNotFound, "not_found", "profile not found")
			return
		}
		if deps.Flows != nil {
			deps.Flows.CancelUser(id)
		}
		writeJSON(w, map[string]string{"status": "deleted"})
	}
}

func handleListWarnings(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		limit := parseIntParam(r, "limit", 20, 100)

		ws, err := deps.Store.ListWarnings(id, limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list warnings: %v", err)
			return
		}
		if ws == nil {
			ws = []storage.Warning{}
		}
		writeJSON(w, ws)
	}
}

// handleExport returns every profile keyed by user ID, in the bot's
// user_data.json layout.
func handleExport(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := deps.Profiles.Export()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to export profiles: %v", err)
			return
		}
		writeJSON(w, all)
	}
}

// handleImport replaces the whole profile table with the posted
// user_data.json document.
func handleImport(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var all map[string]profile.Profile
		if err := json.NewDecoder(r.Body).Decode(&all); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if err := deps.Profiles.Import(all); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to import profiles: %v", err)
			return
		}
		writeJSON(w, map[string]string{"status": "imported", "profiles": strconv.Itoa(len(all))})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": fmt.Sprintf(format, args...),
			"type":    errType,
		},
	})
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}
