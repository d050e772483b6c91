package ws

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/samber/lo"

	"simplix/internal/app/events"
	"simplix/internal/domain"
	"simplix/internal/usecase/commands"
)

const maxLogLimit = 500

type CatalogProvider interface {
	Catalog() []commands.CommandDTO
}

type apiHandlers struct {
	catalog CatalogProvider
	log     domain.CommandLogRepository
}

func newAPIHandlers(catalog CatalogProvider, log domain.CommandLogRepository) *apiHandlers {
	return &apiHandlers{catalog: catalog, log: log}
}

func (a *apiHandlers) register(mux *http.ServeMux) {
	mux.HandleFunc("/api/commands", a.handleCommands)
	mux.HandleFunc("/api/commands/log", a.handleCommandLog)
}

func (a *apiHandlers) handleCommands(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if a.catalog == nil {
		writeError(w, http.StatusServiceUnavailable, "commands not available")
		return
	}
	writeJSON(w, http.StatusOK, a.catalog.Catalog())
}

func (a *apiHandlers) handleCommandLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if a.log == nil {
		writeError(w, http.StatusServiceUnavailable, "command log not available")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxLogLimit)
	}

	records, err := a.log.ListCommandRecords(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(records, func(rec *domain.CommandRecord, _ int) events.CommandRecordDTO {
		return events.NewCommandRecordDTO(*rec)
	}))
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Allow-Methods", "GET,OPTIONS")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
