package handlers

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/pageza/smartscheduler/internal/domain"
	"github.com/pageza/smartscheduler/internal/realtime"
)

// RealtimeHandler upgrades dispatcher and contractor clients onto the
// dispatch/{region} and contractor/{id} subscriber groups.
type RealtimeHandler struct {
	hub    *realtime.Hub
	logger *log.Logger
}

func NewRealtimeHandler(hub *realtime.Hub, logger *log.Logger) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, logger: logger}
}

func (h *RealtimeHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/realtime/dispatch/{region}", h.SubscribeDispatch).Methods("GET")
	router.HandleFunc("/realtime/contractor/{id}", h.SubscribeContractor).Methods("GET")
}

func (h *RealtimeHandler) SubscribeDispatch(w http.ResponseWriter, r *http.Request) {
	region := mux.Vars(r)["region"]
	conn, err := h.hub.Subscribe(w, r, realtime.DispatchGroup(region))
	if err != nil {
		h.logger.Printf("realtime: dispatch subscribe upgrade failed: %v", err)
		return
	}
	h.drain(conn)
}

func (h *RealtimeHandler) SubscribeContractor(w http.ResponseWriter, r *http.Request) {
	contractorID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, h.logger, domain.InvalidArgument("invalid contractor id"))
		return
	}
	conn, err := h.hub.Subscribe(w, r, realtime.ContractorGroup(contractorID))
	if err != nil {
		h.logger.Printf("realtime: contractor subscribe upgrade failed: %v", err)
		return
	}
	h.drain(conn)
}

// drain discards anything a subscriber sends (these connections are
// publish-only from the server's side) until the client disconnects, which
// the Hub's close handler notices and cleans up after.
func (h *RealtimeHandler) drain(conn interface{ ReadMessage() (int, []byte, error) }) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
