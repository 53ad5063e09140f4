package services

import (
	"context"
	"sync"
	"time"

	"duoq_server/models"
)

// ListingStore is the persistence boundary for listings. Implementations
// must make ResolveApplicant an atomic check-and-set against the applicant's
// current status: of two concurrent resolution attempts exactly one wins and
// the loser observes ErrAlreadyResolved.
type ListingStore interface {
	Put(ctx context.Context, listing *models.Listing) error
	Get(ctx context.Context, listingID string) (*models.Listing, error)
	List(ctx context.Context) ([]models.Listing, error)
	UpdateFields(ctx context.Context, listingID string, fields models.ListingFields, updatedAt time.Time) (*models.Listing, error)
	// AppendApplicant adds a pending applicant to an active listing.
	// ErrListingNotFound covers both a missing and a closed listing;
	// ErrAlreadyApplied a duplicate applicantId, regardless of its status.
	AppendApplicant(ctx context.Context, listingID string, applicant models.Applicant) (*models.Listing, error)
	// ResolveApplicant moves a pending applicant to newStatus. The returned
	// applicant is the post-transition snapshot.
	ResolveApplicant(ctx context.Context, listingID, applicantID, newStatus, rejectionNote string, resolvedAt time.Time) (*models.Listing, *models.Applicant, error)
	// AppendAcceptedPlayer appends the denormalized snapshot, ignoring
	// replays for a player already present.
	AppendAcceptedPlayer(ctx context.Context, listingID string, player models.AcceptedPlayer) (*models.Listing, error)
	Delete(ctx context.Context, listingID string) error
}

// MemoryListingStore keeps listings in process memory. It backs tests and
// store-free deployments; everything mutates under one lock, with applicants
// indexed by id per listing for O(1) transitions. The store-wide lock
// serializes operations on unrelated listings too, which is acceptable at
// dev/test scale; DynamoListingStore is the production backend and contends
// per item only.
type MemoryListingStore struct {
	mu       sync.Mutex
	listings map[string]*listingRecord
}

type listingRecord struct {
	listing      models.Listing
	applicantIdx map[string]int // applicantId → position in Applicants
}

func NewMemoryListingStore() *MemoryListingStore {
	return &MemoryListingStore{listings: make(map[string]*listingRecord)}
}

var _ ListingStore = (*MemoryListingStore)(nil)

func (ms *MemoryListingStore) Put(_ context.Context, listing *models.Listing) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	record := &listingRecord{
		listing:      cloneListing(listing),
		applicantIdx: make(map[string]int, len(listing.Applicants)),
	}
	for i, applicant := range listing.Applicants {
		record.applicantIdx[applicant.ApplicantID] = i
	}
	ms.listings[listing.ListingID] = record
	return nil
}

func (ms *MemoryListingStore) Get(_ context.Context, listingID string) (*models.Listing, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	record, ok := ms.listings[listingID]
	if !ok {
		return nil, ErrListingNotFound
	}
	snapshot := cloneListing(&record.listing)
	return &snapshot, nil
}

func (ms *MemoryListingStore) List(_ context.Context) ([]models.Listing, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	listings := make([]models.Listing, 0, len(ms.listings))
	for _, record := range ms.listings {
		listings = append(listings, cloneListing(&record.listing))
	}
	return listings, nil
}

func (ms *MemoryListingStore) UpdateFields(_ context.Context, listingID string, fields models.ListingFields, updatedAt time.Time) (*models.Listing, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	record, ok := ms.listings[listingID]
	if !ok {
		return nil, ErrListingNotFound
	}

	listing := &record.listing
	if fields.Role != nil {
		listing.Role = *fields.Role
	}
	if fields.PreferredRole != nil {
		listing.PreferredRole = *fields.PreferredRole
	}
	if fields.QueueType != nil {
		listing.QueueType = *fields.QueueType
	}
	if fields.CommunicationPreference != nil {
		listing.CommunicationPreference = *fields.CommunicationPreference
	}
	if fields.Description != nil {
		listing.Description = *fields.Description
	}
	listing.UpdatedAt = updatedAt

	snapshot := cloneListing(listing)
	return &snapshot, nil
}

func (ms *MemoryListingStore) AppendApplicant(_ context.Context, listingID string, applicant models.Applicant) (*models.Listing, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	record, ok := ms.listings[listingID]
	if !ok || record.listing.Status != models.ListingStatusActive {
		return nil, ErrListingNotFound
	}
	if _, exists := record.applicantIdx[applicant.ApplicantID]; exists {
		return nil, ErrAlreadyApplied
	}

	record.applicantIdx[applicant.ApplicantID] = len(record.listing.Applicants)
	record.listing.Applicants = append(record.listing.Applicants, applicant)
	record.listing.UpdatedAt = applicant.AppliedAt

	snapshot := cloneListing(&record.listing)
	return &snapshot, nil
}

func (ms *MemoryListingStore) ResolveApplicant(_ context.Context, listingID, applicantID, newStatus, rejectionNote string, resolvedAt time.Time) (*models.Listing, *models.Applicant, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	record, ok := ms.listings[listingID]
	if !ok {
		return nil, nil, ErrListingNotFound
	}
	idx, ok := record.applicantIdx[applicantID]
	if !ok {
		return nil, nil, ErrApplicantNotFound
	}

	applicant := &record.listing.Applicants[idx]
	if applicant.Status != models.ApplicantStatusPending {
		return nil, nil, ErrAlreadyResolved
	}

	applicant.Status = newStatus
	applicant.ResolvedAt = &resolvedAt
	if rejectionNote != "" {
		applicant.RejectionNote = rejectionNote
	}
	record.listing.UpdatedAt = resolvedAt

	listingSnapshot := cloneListing(&record.listing)
	applicantSnapshot := *applicant
	return &listingSnapshot, &applicantSnapshot, nil
}

func (ms *MemoryListingStore) AppendAcceptedPlayer(_ context.Context, listingID string, player models.AcceptedPlayer) (*models.Listing, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	record, ok := ms.listings[listingID]
	if !ok {
		return nil, ErrListingNotFound
	}

	for _, existing := range record.listing.AcceptedPlayers {
		if existing.PlayerID == player.PlayerID {
			// Replay of an accept that already landed; keep the first snapshot.
			snapshot := cloneListing(&record.listing)
			return &snapshot, nil
		}
	}
	record.listing.AcceptedPlayers = append(record.listing.AcceptedPlayers, player)

	snapshot := cloneListing(&record.listing)
	return &snapshot, nil
}

func (ms *MemoryListingStore) Delete(_ context.Context, listingID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.listings, listingID)
	return nil
}

func cloneListing(listing *models.Listing) models.Listing {
	clone := *listing
	clone.Applicants = append([]models.Applicant(nil), listing.Applicants...)
	clone.AcceptedPlayers = append([]models.AcceptedPlayer(nil), listing.AcceptedPlayers...)
	clone.ApplicantIDs = append([]string(nil), listing.ApplicantIDs...)
	clone.AcceptedIDs = append([]string(nil), listing.AcceptedIDs...)
	return clone
}
