// Package handlers exposes the SmartScheduler API over HTTP: one handler
// struct per concern, a shared respondWithJSON/respondWithError pair, and a
// mux.Router assembled by SetupRoutes.
package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/pageza/smartscheduler/internal/domain"
)

// Handlers aggregates every concern-specific handler the router wires up.
type Handlers struct {
	Recommendation *RecommendationHandler
	Mutation       *MutationHandler
	Realtime       *RealtimeHandler
	logger         *log.Logger
}

// NewHandlers builds the aggregate from its constituent handlers.
func NewHandlers(rec *RecommendationHandler, mut *MutationHandler, rt *RealtimeHandler, logger *log.Logger) *Handlers {
	return &Handlers{Recommendation: rec, Mutation: mut, Realtime: rt, logger: logger}
}

func respondWithJSON(w http.ResponseWriter, logger *log.Logger, code int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.Printf("handlers: failed to marshal response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(body)
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func respondWithError(w http.ResponseWriter, logger *log.Logger, err error) {
	code := domain.CodeOf(err)
	status, message := http.StatusInternalServerError, err.Error()

	switch code {
	case domain.ErrCodeNotFound:
		status = http.StatusNotFound
	case domain.ErrCodeInvalidArgument:
		status = http.StatusBadRequest
	case domain.ErrCodeInvalidState, domain.ErrCodeNotAvailable, domain.ErrCodeConflictingAssignment:
		status = http.StatusConflict
	case domain.ErrCodeInvalidConfig:
		status = http.StatusBadRequest
	case domain.ErrCodeUpstreamUnavailable:
		status = http.StatusServiceUnavailable
	}

	respondWithJSON(w, logger, status, errorResponse{Error: string(code), Message: message})
}
