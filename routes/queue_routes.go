package routes

import (
	"duoq_server/controllers"
	"duoq_server/services"

	"github.com/gorilla/mux"
)

// RegisterQueueRoutes sets up routes for queue operations under /api/queue
func RegisterQueueRoutes(r *mux.Router, queueService *services.QueueService) {
	controller := controllers.NewQueueController(queueService)

	queueRouter := r.PathPrefix("/api/queue").Subrouter()

	queueRouter.HandleFunc("/join", controller.HandleJoin).Methods("POST")
	queueRouter.HandleFunc("/leave", controller.HandleLeave).Methods("POST")
	queueRouter.HandleFunc("/status/{playerId}", controller.HandleStatus).Methods("GET")
	queueRouter.HandleFunc("/players", controller.HandlePlayers).Methods("GET")
}
