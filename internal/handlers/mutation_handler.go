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

// MutationHandler exposes the three mutation handlers over HTTP:
// assign/confirm, reschedule, and cancel.
type MutationHandler struct {
	mutations *services.MutationService
	logger    *log.Logger
}

func NewMutationHandler(mutations *services.MutationService, logger *log.Logger) *MutationHandler {
	return &MutationHandler{mutations: mutations, logger: logger}
}

func (h *MutationHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/jobs/{id}/assign", h.AssignConfirm).Methods("POST")
	router.HandleFunc("/jobs/{id}/reschedule", h.Reschedule).Methods("POST")
	router.HandleFunc("/jobs/{id}/cancel", h.Cancel).Methods("POST")
}

type assignRequestBody struct {
	ContractorID uuid.UUID             `json:"contractorId"`
	Window       domain.TimeWindow     `json:"window"`
	Source       domain.AssignmentSource `json:"source"`
	AuditID      *uuid.UUID            `json:"auditId,omitempty"`
	Region       string                `json:"region"`
}

func (h *MutationHandler) AssignConfirm(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, h.logger, domain.InvalidArgument("invalid job id"))
		return
	}

	var body assignRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, h.logger, domain.InvalidArgument("invalid request body"))
		return
	}
	if body.Source == "" {
		body.Source = domain.SourceManual
	}

	assignment, err := h.mutations.AssignConfirm(r.Context(), services.AssignConfirmRequest{
		JobID:        jobID,
		ContractorID: body.ContractorID,
		Window:       body.Window,
		Source:       body.Source,
		AuditID:      body.AuditID,
		Region:       body.Region,
	})
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusCreated, assignment)
}

type rescheduleRequestBody struct {
	NewWindow domain.TimeWindow `json:"newWindow"`
	Region    string            `json:"region"`
}

func (h *MutationHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, h.logger, domain.InvalidArgument("invalid job id"))
		return
	}

	var body rescheduleRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, h.logger, domain.InvalidArgument("invalid request body"))
		return
	}

	job, err := h.mutations.Reschedule(r.Context(), services.RescheduleRequest{
		JobID:     jobID,
		NewWindow: body.NewWindow,
		Region:    body.Region,
	})
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, job)
}

type cancelRequestBody struct {
	Reason string `json:"reason"`
	Region string `json:"region"`
}

func (h *MutationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, h.logger, domain.InvalidArgument("invalid job id"))
		return
	}

	var body cancelRequestBody
	if r.Body != nil {
		if decodeErr := json.NewDecoder(r.Body).Decode(&body); decodeErr != nil && decodeErr.Error() != "EOF" {
			respondWithError(w, h.logger, domain.InvalidArgument("invalid request body"))
			return
		}
	}

	job, err := h.mutations.Cancel(r.Context(), services.CancelRequest{
		JobID:  jobID,
		Reason: body.Reason,
		Region: body.Region,
	})
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, job)
}
