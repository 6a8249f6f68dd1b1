package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRoutes assembles the full API router: one RegisterRoutes call per
// concern handler under a shared base path.
func (h *Handlers) SetupRoutes() *mux.Router {
	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()

	h.Recommendation.RegisterRoutes(api)
	h.Mutation.RegisterRoutes(api)
	h.Realtime.RegisterRoutes(api)

	router.HandleFunc("/healthz", h.health).Methods("GET")

	return router
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}
