package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"duoq_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// FriendStore is the friend-graph boundary. AddFriend must be idempotent for
// a (playerId, friendId) pair.
type FriendStore interface {
	GetFriendIDs(ctx context.Context, playerID string) ([]string, error)
	AddFriend(ctx context.Context, playerID, friendID string) error
}

// FriendService owns the mutual-friend side effect triggered by accepting an
// applicant.
type FriendService struct {
	Store FriendStore
}

// EnsureFriendEdge creates the symmetric edge between two players. If an
// edge already exists in either direction it does nothing, which makes the
// call safe under retries, duplicate accept deliveries, and repair of a
// one-sided edge left by a crash between the two writes.
func (fs *FriendService) EnsureFriendEdge(ctx context.Context, a, b string) error {
	if a == b {
		return nil
	}

	aFriends, err := fs.Store.GetFriendIDs(ctx, a)
	if err != nil {
		return fmt.Errorf("failed to read friend set for %s: %w", a, err)
	}
	bFriends, err := fs.Store.GetFriendIDs(ctx, b)
	if err != nil {
		return fmt.Errorf("failed to read friend set for %s: %w", b, err)
	}
	if contains(aFriends, b) && contains(bFriends, a) {
		return nil
	}

	// Writes are ordered: a crash here leaves at most a one-sided edge that
	// the next call for this pair repairs.
	if !contains(aFriends, b) {
		if err := fs.Store.AddFriend(ctx, a, b); err != nil {
			return fmt.Errorf("failed to add friend edge %s → %s: %w", a, b, err)
		}
	}
	if !contains(bFriends, a) {
		if err := fs.Store.AddFriend(ctx, b, a); err != nil {
			return fmt.Errorf("failed to add friend edge %s → %s: %w", b, a, err)
		}
	}

	log.Printf("🤝 Friend edge ensured between %s and %s", a, b)
	return nil
}

// AreFriends reports whether a full bidirectional edge exists.
func (fs *FriendService) AreFriends(ctx context.Context, a, b string) (bool, error) {
	aFriends, err := fs.Store.GetFriendIDs(ctx, a)
	if err != nil {
		return false, err
	}
	bFriends, err := fs.Store.GetFriendIDs(ctx, b)
	if err != nil {
		return false, err
	}
	return contains(aFriends, b) && contains(bFriends, a), nil
}

func contains(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

// MemoryFriendStore keeps the friend graph in process memory.
type MemoryFriendStore struct {
	mu      sync.Mutex
	friends map[string]map[string]struct{}
}

func NewMemoryFriendStore() *MemoryFriendStore {
	return &MemoryFriendStore{friends: make(map[string]map[string]struct{})}
}

var _ FriendStore = (*MemoryFriendStore)(nil)

func (ms *MemoryFriendStore) GetFriendIDs(_ context.Context, playerID string) ([]string, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ids := make([]string, 0, len(ms.friends[playerID]))
	for id := range ms.friends[playerID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (ms *MemoryFriendStore) AddFriend(_ context.Context, playerID, friendID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.friends[playerID] == nil {
		ms.friends[playerID] = make(map[string]struct{})
	}
	ms.friends[playerID][friendID] = struct{}{}
	return nil
}

// DynamoFriendStore keeps one item per player with a friendIds string set.
// ADD on a string set is idempotent, so replays cannot duplicate an edge.
type DynamoFriendStore struct {
	Dynamo *DynamoService
}

func NewDynamoFriendStore(dynamo *DynamoService) *DynamoFriendStore {
	return &DynamoFriendStore{Dynamo: dynamo}
}

var _ FriendStore = (*DynamoFriendStore)(nil)

func friendKey(playerID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"playerId": &types.AttributeValueMemberS{Value: playerID},
	}
}

func (ds *DynamoFriendStore) GetFriendIDs(ctx context.Context, playerID string) ([]string, error) {
	item, err := ds.Dynamo.GetItem(ctx, models.FriendRecord{}.TableName(), friendKey(playerID))
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var record models.FriendRecord
	if err := attributevalue.UnmarshalMap(item, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal friend record: %w", err)
	}
	return record.FriendIDs, nil
}

func (ds *DynamoFriendStore) AddFriend(ctx context.Context, playerID, friendID string) error {
	_, err := ds.Dynamo.UpdateItem(ctx, models.FriendRecord{}.TableName(),
		"ADD friendIds :friendId", "", friendKey(playerID),
		map[string]types.AttributeValue{
			":friendId": &types.AttributeValueMemberSS{Value: []string{friendID}},
		},
		nil,
	)
	return err
}
