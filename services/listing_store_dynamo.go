package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"duoq_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoListingStore persists listings as single DynamoDB items, applicants
// embedded. The atomic applicant transitions ride on conditional update
// expressions: the condition re-checks the applicant's id and pending status
// at write time, so a lost race comes back as a conditional failure rather
// than a double transition. The applicantIds/acceptedIds string sets exist so
// appends can be deduplicated in the same conditional write.
type DynamoListingStore struct {
	Dynamo *DynamoService
}

func NewDynamoListingStore(dynamo *DynamoService) *DynamoListingStore {
	return &DynamoListingStore{Dynamo: dynamo}
}

var _ ListingStore = (*DynamoListingStore)(nil)

func listingKey(listingID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"listingId": &types.AttributeValueMemberS{Value: listingID},
	}
}

func (ds *DynamoListingStore) Put(ctx context.Context, listing *models.Listing) error {
	return ds.Dynamo.PutItem(ctx, models.Listing{}.TableName(), listing)
}

func (ds *DynamoListingStore) Get(ctx context.Context, listingID string) (*models.Listing, error) {
	item, err := ds.Dynamo.GetItem(ctx, models.Listing{}.TableName(), listingKey(listingID))
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}

	var listing models.Listing
	if err := attributevalue.UnmarshalMap(item, &listing); err != nil {
		return nil, fmt.Errorf("failed to unmarshal listing: %w", err)
	}
	return &listing, nil
}

func (ds *DynamoListingStore) List(ctx context.Context) ([]models.Listing, error) {
	var listings []models.Listing
	if err := ds.Dynamo.ScanAll(ctx, models.Listing{}.TableName(), &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

func (ds *DynamoListingStore) UpdateFields(ctx context.Context, listingID string, fields models.ListingFields, updatedAt time.Time) (*models.Listing, error) {
	updateExpression := "SET updatedAt = :updatedAt"
	values := map[string]types.AttributeValue{}
	names := map[string]string{}

	updatedAtAV, err := attributevalue.Marshal(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal updatedAt: %w", err)
	}
	values[":updatedAt"] = updatedAtAV

	set := func(attr string, value *string) {
		if value == nil {
			return
		}
		names["#"+attr] = attr
		values[":"+attr] = &types.AttributeValueMemberS{Value: *value}
		updateExpression += fmt.Sprintf(", #%s = :%s", attr, attr)
	}
	set("role", fields.Role)
	set("preferredRole", fields.PreferredRole)
	set("queueType", fields.QueueType)
	set("communicationPreference", fields.CommunicationPreference)
	set("description", fields.Description)

	if len(names) == 0 {
		names = nil
	}
	attrs, err := ds.Dynamo.UpdateItem(ctx, models.Listing{}.TableName(), updateExpression,
		"attribute_exists(listingId)", listingKey(listingID), values, names)
	if err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return unmarshalListing(attrs)
}

func (ds *DynamoListingStore) AppendApplicant(ctx context.Context, listingID string, applicant models.Applicant) (*models.Listing, error) {
	applicantAV, err := attributevalue.Marshal(applicant)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal applicant: %w", err)
	}
	appliedAtAV, err := attributevalue.Marshal(applicant.AppliedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal appliedAt: %w", err)
	}

	attrs, err := ds.Dynamo.UpdateItem(ctx, models.Listing{}.TableName(),
		"SET applicants = list_append(if_not_exists(applicants, :empty), :newApplicant), updatedAt = :updatedAt ADD applicantIds :applicantIdSet",
		"attribute_exists(listingId) AND #status = :active AND (attribute_not_exists(applicantIds) OR NOT contains(applicantIds, :applicantId))",
		listingKey(listingID),
		map[string]types.AttributeValue{
			":empty":          &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			":newApplicant":   &types.AttributeValueMemberL{Value: []types.AttributeValue{applicantAV}},
			":updatedAt":      appliedAtAV,
			":applicantIdSet": &types.AttributeValueMemberSS{Value: []string{applicant.ApplicantID}},
			":applicantId":    &types.AttributeValueMemberS{Value: applicant.ApplicantID},
			":active":         &types.AttributeValueMemberS{Value: models.ListingStatusActive},
		},
		map[string]string{"#status": "status"},
	)
	if err == nil {
		return unmarshalListing(attrs)
	}
	if !errors.Is(err, ErrConditionFailed) {
		return nil, err
	}

	// Disambiguate the failed condition: a missing or closed listing reads as
	// not found, a duplicate applicant as already applied. An infrastructure
	// failure on the follow-up read stays an infrastructure failure.
	listing, getErr := ds.Get(ctx, listingID)
	if getErr != nil {
		if errors.Is(getErr, ErrListingNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, getErr
	}
	if listing.Status != models.ListingStatusActive {
		return nil, ErrListingNotFound
	}
	return nil, ErrAlreadyApplied
}

func (ds *DynamoListingStore) ResolveApplicant(ctx context.Context, listingID, applicantID, newStatus, rejectionNote string, resolvedAt time.Time) (*models.Listing, *models.Applicant, error) {
	listing, err := ds.Get(ctx, listingID)
	if err != nil {
		return nil, nil, err
	}

	idx := -1
	for i, applicant := range listing.Applicants {
		if applicant.ApplicantID == applicantID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, nil, ErrApplicantNotFound
	}
	if listing.Applicants[idx].Status != models.ApplicantStatusPending {
		return nil, nil, ErrAlreadyResolved
	}

	resolvedAtAV, err := attributevalue.Marshal(resolvedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal resolvedAt: %w", err)
	}

	updateExpression := fmt.Sprintf(
		"SET applicants[%d].#status = :newStatus, applicants[%d].resolvedAt = :resolvedAt, updatedAt = :resolvedAt", idx, idx)
	values := map[string]types.AttributeValue{
		":newStatus":   &types.AttributeValueMemberS{Value: newStatus},
		":resolvedAt":  resolvedAtAV,
		":applicantId": &types.AttributeValueMemberS{Value: applicantID},
		":pending":     &types.AttributeValueMemberS{Value: models.ApplicantStatusPending},
	}
	if rejectionNote != "" {
		updateExpression += fmt.Sprintf(", applicants[%d].rejectionNote = :rejectionNote", idx)
		values[":rejectionNote"] = &types.AttributeValueMemberS{Value: rejectionNote}
	}

	// The condition pins both the id at this index and the pending status, so
	// exactly one of two racing resolutions can commit.
	condition := fmt.Sprintf("applicants[%d].applicantId = :applicantId AND applicants[%d].#status = :pending", idx, idx)

	attrs, err := ds.Dynamo.UpdateItem(ctx, models.Listing{}.TableName(), updateExpression, condition,
		listingKey(listingID), values, map[string]string{"#status": "status"})
	if err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return nil, nil, ErrAlreadyResolved
		}
		return nil, nil, err
	}

	updated, err := unmarshalListing(attrs)
	if err != nil {
		return nil, nil, err
	}
	applicant := updated.Applicants[idx]
	return updated, &applicant, nil
}

func (ds *DynamoListingStore) AppendAcceptedPlayer(ctx context.Context, listingID string, player models.AcceptedPlayer) (*models.Listing, error) {
	playerAV, err := attributevalue.Marshal(player)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal accepted player: %w", err)
	}

	attrs, err := ds.Dynamo.UpdateItem(ctx, models.Listing{}.TableName(),
		"SET acceptedPlayers = list_append(if_not_exists(acceptedPlayers, :empty), :newPlayer) ADD acceptedIds :playerIdSet",
		"attribute_exists(listingId) AND (attribute_not_exists(acceptedIds) OR NOT contains(acceptedIds, :playerId))",
		listingKey(listingID),
		map[string]types.AttributeValue{
			":empty":       &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			":newPlayer":   &types.AttributeValueMemberL{Value: []types.AttributeValue{playerAV}},
			":playerIdSet": &types.AttributeValueMemberSS{Value: []string{player.PlayerID}},
			":playerId":    &types.AttributeValueMemberS{Value: player.PlayerID},
		},
		nil,
	)
	if err != nil {
		if errors.Is(err, ErrConditionFailed) {
			// Replay: the snapshot already landed; hand back current state.
			return ds.Get(ctx, listingID)
		}
		return nil, err
	}
	return unmarshalListing(attrs)
}

func (ds *DynamoListingStore) Delete(ctx context.Context, listingID string) error {
	return ds.Dynamo.DeleteItem(ctx, models.Listing{}.TableName(), listingKey(listingID))
}

func unmarshalListing(attrs map[string]types.AttributeValue) (*models.Listing, error) {
	var listing models.Listing
	if err := attributevalue.UnmarshalMap(attrs, &listing); err != nil {
		return nil, fmt.Errorf("failed to unmarshal listing: %w", err)
	}
	return &listing, nil
}
