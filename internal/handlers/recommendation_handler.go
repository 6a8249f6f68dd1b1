package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/pageza/smartscheduler/internal/domain"
	"github.com/pageza/smartscheduler/internal/services"
)

// RecommendationHandler exposes the ranking pipeline over HTTP, following
// job_handler.go's request-decode/service-call/respond shape.
type RecommendationHandler struct {
	recommendations *services.RecommendationService
	logger          *log.Logger
}

func NewRecommendationHandler(recommendations *services.RecommendationService, logger *log.Logger) *RecommendationHandler {
	return &RecommendationHandler{recommendations: recommendations, logger: logger}
}

func (h *RecommendationHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/jobs/{id}/recommendations", h.Recommend).Methods("POST")
}

type recommendRequestBody struct {
	Region       string `json:"region"`
	MaxResults   int    `json:"maxResults"`
	ActorID      string `json:"actorId"`
	PublishReady bool   `json:"publishReady"`
}

func (h *RecommendationHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, h.logger, domain.InvalidArgument("invalid job id"))
		return
	}

	var body recommendRequestBody
	if r.Body != nil {
		if decodeErr := json.NewDecoder(r.Body).Decode(&body); decodeErr != nil && decodeErr.Error() != "EOF" {
			respondWithError(w, h.logger, domain.InvalidArgument("invalid request body"))
			return
		}
	}

	resp, err := h.recommendations.Recommend(r.Context(), services.RecommendationRequest{
		JobID:        jobID,
		Region:       body.Region,
		MaxResults:   body.MaxResults,
		ActorID:      body.ActorID,
		PublishReady: body.PublishReady,
	})
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, resp)
}
