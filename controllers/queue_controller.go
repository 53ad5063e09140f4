package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"duoq_server/services"

	"github.com/gorilla/mux"
)

// QueueController handles HTTP requests for the duo queue
type QueueController struct {
	QueueService *services.QueueService
}

// NewQueueController creates a new QueueController instance
func NewQueueController(queueService *services.QueueService) *QueueController {
	return &QueueController{QueueService: queueService}
}

// HandleJoin enqueues a player and reports their position, or the match the
// join immediately completed into.
func (qc *QueueController) HandleJoin(w http.ResponseWriter, r *http.Request) {
	var request struct {
		PlayerID    string `json:"playerId"`
		DisplayName string `json:"displayName"`
		AccountRef  string `json:"accountRef"`
		Region      string `json:"region"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Println("Invalid request payload:", err)
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	entry, position, err := qc.QueueService.Join(request.PlayerID, request.DisplayName, request.AccountRef, request.Region)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"queueId":  entry.QueueEntryID,
		"position": position,
	})
}

// HandleLeave removes a player from the queue; leaving while not queued is
// still a success.
func (qc *QueueController) HandleLeave(w http.ResponseWriter, r *http.Request) {
	var request struct {
		PlayerID string `json:"playerId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Println("Invalid request payload:", err)
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if request.PlayerID == "" {
		http.Error(w, "playerId is required", http.StatusBadRequest)
		return
	}

	qc.QueueService.Leave(request.PlayerID)
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// HandleStatus returns a player's queue snapshot
func (qc *QueueController) HandleStatus(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["playerId"]
	status := qc.QueueService.Status(playerID)
	writeJSON(w, http.StatusOK, status)
}

// HandlePlayers returns the public view of everyone currently waiting
func (qc *QueueController) HandlePlayers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, qc.QueueService.Players())
}
