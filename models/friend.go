package models

// FriendRecord holds one player's friend id set. Edges are symmetric: an
// accepted applicant appears in the owner's set and vice versa. A one-sided
// edge can exist only transiently after a crash between the two writes and
// is repaired by the next EnsureFriendEdge for the same pair.
type FriendRecord struct {
	PlayerID  string   `dynamodbav:"playerId" json:"playerId"` // Partition Key (PK)
	FriendIDs []string `dynamodbav:"friendIds,stringset,omitempty" json:"friendIds"`
}

// TableName returns the DynamoDB table name for the FriendRecord model
func (FriendRecord) TableName() string {
	return "Friends"
}
