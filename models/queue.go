package models

import "time"

// QueueEntry represents a player waiting in the duo queue. Queue state lives
// in process memory only; entries are lost on restart by design.
type QueueEntry struct {
	QueueEntryID string    `json:"queueEntryId"`
	PlayerID     string    `json:"playerId"`
	DisplayName  string    `json:"displayName"`
	AccountRef   string    `json:"accountRef"` // opaque id of the linked game account
	Region       string    `json:"region"`
	JoinedAt     time.Time `json:"joinedAt"`
}

// Match pairs two queue entries from the same region. A Match is immutable
// once created and is retained only long enough for a status lookup to
// report "you were just matched".
type Match struct {
	MatchID   string     `json:"matchId"`
	PlayerA   QueueEntry `json:"playerA"`
	PlayerB   QueueEntry `json:"playerB"`
	MatchedAt time.Time  `json:"matchedAt"`
}

// QueueStatus is the read-only snapshot returned to a polling player.
type QueueStatus struct {
	InQueue       bool   `json:"inQueue"`
	QueuePosition int    `json:"queuePosition"`
	QueueSize     int    `json:"queueSize"`
	CurrentMatch  *Match `json:"currentMatch,omitempty"`
}

// WaitingPlayer is the public lobby view of a queued player.
type WaitingPlayer struct {
	DisplayName     string `json:"displayName"`
	AccountRef      string `json:"accountRef"`
	Region          string `json:"region"`
	WaitTimeSeconds int64  `json:"waitTimeSeconds"`
}

// Retention windows for queue state
const (
	QueueEntryTTL  = 15 * time.Minute
	MatchRetention = 10 * time.Minute
)
