package models

import "time"

// Listing is a hosting player's open invitation to play together. Listings
// persist in the document store; applicants are embedded in the listing item
// so a single read yields the full state a subscriber can diff.
type Listing struct {
	ListingID               string           `dynamodbav:"listingId" json:"listingId"` // Partition Key (PK)
	OwnerID                 string           `dynamodbav:"ownerId" json:"ownerId"`
	OwnerSnapshot           OwnerSnapshot    `dynamodbav:"ownerSnapshot" json:"ownerSnapshot"`
	Role                    string           `dynamodbav:"role" json:"role"`
	PreferredRole           string           `dynamodbav:"preferredRole" json:"preferredRole"`
	QueueType               string           `dynamodbav:"queueType" json:"queueType"`
	CommunicationPreference string           `dynamodbav:"communicationPreference" json:"communicationPreference"`
	Description             string           `dynamodbav:"description" json:"description"`
	Status                  string           `dynamodbav:"status" json:"status"` // "active", "closed"
	Applicants              []Applicant      `dynamodbav:"applicants" json:"applicants"`
	AcceptedPlayers         []AcceptedPlayer `dynamodbav:"acceptedPlayers" json:"acceptedPlayers"`
	ApplicantIDs            []string         `dynamodbav:"applicantIds,stringset,omitempty" json:"-"` // dedupe set for conditional appends
	AcceptedIDs             []string         `dynamodbav:"acceptedIds,stringset,omitempty" json:"-"`
	CreatedAt               time.Time        `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt               time.Time        `dynamodbav:"updatedAt" json:"updatedAt"`
}

// TableName returns the DynamoDB table name for the Listing model
func (Listing) TableName() string {
	return "GameListings"
}

// OwnerSnapshot is the hosting player's denormalized display data, captured
// at create/update time rather than live-joined.
type OwnerSnapshot struct {
	DisplayName string `dynamodbav:"displayName" json:"displayName"`
	AccountRef  string `dynamodbav:"accountRef" json:"accountRef"`
	RankSummary string `dynamodbav:"rankSummary,omitempty" json:"rankSummary,omitempty"`
}

// Applicant is one player's request to join a listing.
// pending → accepted and pending → declined are the only transitions; both
// are terminal.
type Applicant struct {
	ApplicantID   string     `dynamodbav:"applicantId" json:"applicantId"`
	DisplayName   string     `dynamodbav:"displayName" json:"displayName"`
	AccountRef    string     `dynamodbav:"accountRef" json:"accountRef"`
	Message       string     `dynamodbav:"message,omitempty" json:"message,omitempty"`
	Status        string     `dynamodbav:"status" json:"status"` // "pending", "accepted", "declined"
	AppliedAt     time.Time  `dynamodbav:"appliedAt" json:"appliedAt"`
	ResolvedAt    *time.Time `dynamodbav:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
	RejectionNote string     `dynamodbav:"rejectionNote,omitempty" json:"rejectionNote,omitempty"`
}

// AcceptedPlayer is appended exactly once per accepted applicant,
// denormalized for display without re-resolving the applicant list.
type AcceptedPlayer struct {
	PlayerID    string    `dynamodbav:"playerId" json:"playerId"`
	DisplayName string    `dynamodbav:"displayName" json:"displayName"`
	AccountRef  string    `dynamodbav:"accountRef" json:"accountRef"`
	AcceptedAt  time.Time `dynamodbav:"acceptedAt" json:"acceptedAt"`
}

// ListingFields carries the descriptive fields an owner may edit. Nil means
// "leave unchanged"; applicants and accepted players are never touched here.
type ListingFields struct {
	Role                    *string `json:"role,omitempty"`
	PreferredRole           *string `json:"preferredRole,omitempty"`
	QueueType               *string `json:"queueType,omitempty"`
	CommunicationPreference *string `json:"communicationPreference,omitempty"`
	Description             *string `json:"description,omitempty"`
}

// Listing Status Constants
const (
	ListingStatusActive = "active"
	ListingStatusClosed = "closed"
)

// Applicant Status Constants
const (
	ApplicantStatusPending  = "pending"
	ApplicantStatusAccepted = "accepted"
	ApplicantStatusDeclined = "declined"
)

// Resolution decisions
const (
	DecisionAccept  = "accept"
	DecisionDecline = "decline"
)

// MaxApplyMessageLength bounds the optional message on an application.
const MaxApplyMessageLength = 500
