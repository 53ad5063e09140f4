package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"duoq_server/models"
	"duoq_server/services"

	"github.com/gorilla/mux"
)

// ListingController handles HTTP requests for game listings
type ListingController struct {
	ListingService *services.ListingService
}

// NewListingController creates a new ListingController instance
func NewListingController(listingService *services.ListingService) *ListingController {
	return &ListingController{ListingService: listingService}
}

// HandleCreate creates a new listing for the calling owner
func (lc *ListingController) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var request struct {
		OwnerID                 string               `json:"ownerId"`
		OwnerSnapshot           models.OwnerSnapshot `json:"ownerSnapshot"`
		Role                    string               `json:"role"`
		PreferredRole           string               `json:"preferredRole"`
		QueueType               string               `json:"queueType"`
		CommunicationPreference string               `json:"communicationPreference"`
		Description             string               `json:"description"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Println("Invalid request payload:", err)
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	listing, err := lc.ListingService.CreateListing(r.Context(), services.CreateListingInput{
		OwnerID:                 request.OwnerID,
		OwnerSnapshot:           request.OwnerSnapshot,
		Role:                    request.Role,
		PreferredRole:           request.PreferredRole,
		QueueType:               request.QueueType,
		CommunicationPreference: request.CommunicationPreference,
		Description:             request.Description,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":   true,
		"listingId": listing.ListingID,
		"listing":   listing,
	})
}

// HandleList returns all listings for the lobby view
func (lc *ListingController) HandleList(w http.ResponseWriter, r *http.Request) {
	listings, err := lc.ListingService.ListListings(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

// HandleGet returns one listing by id
func (lc *ListingController) HandleGet(w http.ResponseWriter, r *http.Request) {
	listing, err := lc.ListingService.GetListing(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// HandleUpdate edits a listing's descriptive fields
func (lc *ListingController) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var request struct {
		CallerID string `json:"callerId"`
		models.ListingFields
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Println("Invalid request payload:", err)
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if request.CallerID == "" {
		http.Error(w, "callerId is required", http.StatusBadRequest)
		return
	}

	listing, err := lc.ListingService.UpdateListing(r.Context(), mux.Vars(r)["id"], request.CallerID, request.ListingFields)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "listing": listing})
}

// HandleApply submits an application to a listing
func (lc *ListingController) HandleApply(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ApplicantID string `json:"applicantId"`
		DisplayName string `json:"displayName"`
		AccountRef  string `json:"accountRef"`
		Message     string `json:"message"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Println("Invalid request payload:", err)
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	listing, err := lc.ListingService.Apply(r.Context(), mux.Vars(r)["id"], request.ApplicantID, request.DisplayName, request.AccountRef, request.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "listing": listing})
}

// HandleResolve applies the owner's accept or decline decision to one applicant
func (lc *ListingController) HandleResolve(w http.ResponseWriter, r *http.Request) {
	var request struct {
		CallerID      string `json:"callerId"`
		Decision      string `json:"decision"`
		RejectionNote string `json:"rejectionNote"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Println("Invalid request payload:", err)
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	listing, err := lc.ListingService.ResolveApplicant(r.Context(), vars["id"], request.CallerID, vars["applicantId"], request.Decision, request.RejectionNote)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "listing": listing})
}

// HandleDelete hard-deletes a listing and its applicant state
func (lc *ListingController) HandleDelete(w http.ResponseWriter, r *http.Request) {
	var request struct {
		CallerID string `json:"callerId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Println("Invalid request payload:", err)
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := lc.ListingService.DeleteListing(r.Context(), mux.Vars(r)["id"], request.CallerID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
