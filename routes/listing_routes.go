package routes

import (
	"duoq_server/controllers"
	"duoq_server/services"

	"github.com/gorilla/mux"
)

// RegisterListingRoutes sets up routes for listing operations under /api/listings
func RegisterListingRoutes(r *mux.Router, listingService *services.ListingService) {
	controller := controllers.NewListingController(listingService)

	listingRouter := r.PathPrefix("/api/listings").Subrouter()

	listingRouter.HandleFunc("", controller.HandleCreate).Methods("POST")
	listingRouter.HandleFunc("", controller.HandleList).Methods("GET")
	listingRouter.HandleFunc("/{id}", controller.HandleGet).Methods("GET")
	listingRouter.HandleFunc("/{id}", controller.HandleUpdate).Methods("PATCH")
	listingRouter.HandleFunc("/{id}", controller.HandleDelete).Methods("DELETE")
	listingRouter.HandleFunc("/{id}/apply", controller.HandleApply).Methods("POST")
	listingRouter.HandleFunc("/{id}/applicants/{applicantId}/resolve", controller.HandleResolve).Methods("POST")
}
