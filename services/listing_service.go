package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"duoq_server/models"

	"github.com/google/uuid"
)

// Notifier receives listing change events after each committed mutation so a
// real-time layer can broadcast them. The coordinator never depends on the
// broadcast succeeding.
type Notifier interface {
	ListingChanged(listing *models.Listing)
	ListingDeleted(listingID string)
}

// NoopNotifier drops all events; used in tests and store-only deployments.
type NoopNotifier struct{}

func (NoopNotifier) ListingChanged(*models.Listing) {}
func (NoopNotifier) ListingDeleted(string)          {}

// ListingService coordinates the lifecycle of game listings and their
// applicants. The atomicity of the pending→resolved transition lives in the
// store; this service owns validation, ownership checks, side-effect
// ordering, and change notification.
type ListingService struct {
	Store    ListingStore
	Friends  *FriendService
	Notifier Notifier
}

// CreateListingInput carries the owner-supplied fields for a new listing.
type CreateListingInput struct {
	OwnerID                 string
	OwnerSnapshot           models.OwnerSnapshot
	Role                    string
	PreferredRole           string
	QueueType               string
	CommunicationPreference string
	Description             string
}

// CreateListing opens a new active listing. Nothing restricts an owner to a
// single listing here; the surrounding UI may, the core does not.
func (ls *ListingService) CreateListing(ctx context.Context, input CreateListingInput) (*models.Listing, error) {
	if input.OwnerID == "" {
		return nil, fmt.Errorf("%w: ownerId is required", ErrValidation)
	}
	if input.Role == "" {
		return nil, fmt.Errorf("%w: role is required", ErrValidation)
	}

	now := time.Now().UTC()
	listing := &models.Listing{
		ListingID:               uuid.NewString(),
		OwnerID:                 input.OwnerID,
		OwnerSnapshot:           input.OwnerSnapshot,
		Role:                    input.Role,
		PreferredRole:           input.PreferredRole,
		QueueType:               input.QueueType,
		CommunicationPreference: input.CommunicationPreference,
		Description:             input.Description,
		Status:                  models.ListingStatusActive,
		Applicants:              []models.Applicant{},
		AcceptedPlayers:         []models.AcceptedPlayer{},
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	if err := ls.Store.Put(ctx, listing); err != nil {
		return nil, err
	}
	ls.Notifier.ListingChanged(listing)
	return listing, nil
}

// GetListing returns one listing by id.
func (ls *ListingService) GetListing(ctx context.Context, listingID string) (*models.Listing, error) {
	return ls.Store.Get(ctx, listingID)
}

// ListListings returns every listing for the lobby view.
func (ls *ListingService) ListListings(ctx context.Context) ([]models.Listing, error) {
	return ls.Store.List(ctx)
}

// UpdateListing edits the descriptive fields. Only the owner may edit, and
// applicant state is never touched by an update.
func (ls *ListingService) UpdateListing(ctx context.Context, listingID, callerID string, fields models.ListingFields) (*models.Listing, error) {
	listing, err := ls.Store.Get(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != callerID {
		return nil, ErrNotOwner
	}

	updated, err := ls.Store.UpdateFields(ctx, listingID, fields, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	ls.Notifier.ListingChanged(updated)
	return updated, nil
}

// Apply submits a player's request to join a listing. A player gets exactly
// one entry per listing for its whole lifetime — re-applying after a decline
// is rejected the same way as a double apply.
func (ls *ListingService) Apply(ctx context.Context, listingID, applicantID, displayName, accountRef, message string) (*models.Listing, error) {
	if applicantID == "" {
		return nil, fmt.Errorf("%w: applicantId is required", ErrValidation)
	}
	if len(message) > models.MaxApplyMessageLength {
		return nil, fmt.Errorf("%w: message exceeds %d characters", ErrValidation, models.MaxApplyMessageLength)
	}

	applicant := models.Applicant{
		ApplicantID: applicantID,
		DisplayName: displayName,
		AccountRef:  accountRef,
		Message:     message,
		Status:      models.ApplicantStatusPending,
		AppliedAt:   time.Now().UTC(),
	}

	listing, err := ls.Store.AppendApplicant(ctx, listingID, applicant)
	if err != nil {
		return nil, err
	}
	ls.Notifier.ListingChanged(listing)
	return listing, nil
}

// ResolveApplicant applies the owner's accept or decline decision. The
// store's check-and-set guarantees exactly one of two concurrent resolutions
// wins; the loser gets ErrAlreadyResolved, which callers should surface as
// "someone already acted on this" rather than a failure.
//
// On accept, the accepted-player snapshot and the mutual-friend edge are
// applied after the transition commits. A friend-edge failure is logged but
// never rolls the acceptance back.
func (ls *ListingService) ResolveApplicant(ctx context.Context, listingID, callerID, applicantID, decision, rejectionNote string) (*models.Listing, error) {
	if decision != models.DecisionAccept && decision != models.DecisionDecline {
		return nil, fmt.Errorf("%w: decision must be %q or %q", ErrValidation, models.DecisionAccept, models.DecisionDecline)
	}

	listing, err := ls.Store.Get(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != callerID {
		return nil, ErrNotOwner
	}

	newStatus := models.ApplicantStatusAccepted
	note := ""
	if decision == models.DecisionDecline {
		newStatus = models.ApplicantStatusDeclined
		note = rejectionNote
	}

	updated, applicant, err := ls.Store.ResolveApplicant(ctx, listingID, applicantID, newStatus, note, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if decision == models.DecisionAccept {
		withPlayer, err := ls.Store.AppendAcceptedPlayer(ctx, listingID, models.AcceptedPlayer{
			PlayerID:    applicant.ApplicantID,
			DisplayName: applicant.DisplayName,
			AccountRef:  applicant.AccountRef,
			AcceptedAt:  *applicant.ResolvedAt,
		})
		if err != nil {
			log.Printf("⚠️ Failed to append accepted player %s to listing %s: %v", applicant.ApplicantID, listingID, err)
		} else {
			updated = withPlayer
		}

		// Best effort: the acceptance is the durable fact, friending is
		// enrichment and never rolls it back.
		if err := ls.Friends.EnsureFriendEdge(ctx, listing.OwnerID, applicant.ApplicantID); err != nil {
			log.Printf("⚠️ Failed to create friend edge between %s and %s: %v", listing.OwnerID, applicant.ApplicantID, err)
		}
	}

	ls.Notifier.ListingChanged(updated)
	return updated, nil
}

// DeleteListing hard-deletes a listing and all its applicant state. Friend
// edges granted by earlier accepts are intentionally left in place.
func (ls *ListingService) DeleteListing(ctx context.Context, listingID, callerID string) error {
	listing, err := ls.Store.Get(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.OwnerID != callerID {
		return ErrNotOwner
	}

	if err := ls.Store.Delete(ctx, listingID); err != nil {
		return err
	}
	ls.Notifier.ListingDeleted(listingID)
	return nil
}
