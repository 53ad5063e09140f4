package services

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"duoq_server/models"

	"github.com/google/uuid"
)

// QueueService owns the in-memory duo queue: one FIFO partition per region
// plus the recently formed matches. All mutations run under a single mutex so
// a join and the matching it triggers are one atomic step — two concurrent
// joins can never both claim the same opposing entry.
type QueueService struct {
	mu            sync.Mutex
	partitions    map[string][]*models.QueueEntry // region → FIFO, oldest first
	entryByPlayer map[string]*models.QueueEntry
	matches       map[string]*models.Match
	matchByPlayer map[string]string // playerId → matchId
}

// NewQueueService creates an empty queue store. Construct once per process
// and hand it to the handlers and the sweeper.
func NewQueueService() *QueueService {
	return &QueueService{
		partitions:    make(map[string][]*models.QueueEntry),
		entryByPlayer: make(map[string]*models.QueueEntry),
		matches:       make(map[string]*models.Match),
		matchByPlayer: make(map[string]string),
	}
}

// Join enqueues a player and immediately attempts matching in their region.
// The returned position is the 1-indexed rank in the global queue at the
// moment of insertion; it may already be stale by the time the caller reads
// it (the join itself may have completed into a match).
func (qs *QueueService) Join(playerID, displayName, accountRef, region string) (*models.QueueEntry, int, error) {
	if playerID == "" {
		return nil, 0, fmt.Errorf("%w: playerId is required", ErrValidation)
	}
	if region == "" {
		return nil, 0, fmt.Errorf("%w: region is required", ErrValidation)
	}

	qs.mu.Lock()
	defer qs.mu.Unlock()

	if _, exists := qs.entryByPlayer[playerID]; exists {
		return nil, 0, ErrAlreadyQueued
	}

	entry := &models.QueueEntry{
		QueueEntryID: uuid.NewString(),
		PlayerID:     playerID,
		DisplayName:  displayName,
		AccountRef:   accountRef,
		Region:       region,
		JoinedAt:     time.Now().UTC(),
	}
	qs.partitions[region] = append(qs.partitions[region], entry)
	qs.entryByPlayer[playerID] = entry
	position := len(qs.entryByPlayer)

	// A re-join supersedes the player's retained match. The whole match
	// record is evicted, not just this player's index entry: otherwise the
	// former partner's status would keep reporting a live match containing a
	// player who is queued (or matched) again.
	if matchID, ok := qs.matchByPlayer[playerID]; ok {
		qs.evictMatch(matchID)
	}

	qs.matchRegion(region)

	return entry, position, nil
}

// matchRegion pops the two oldest entries of a region into a match until
// fewer than two remain. Callers must hold qs.mu.
func (qs *QueueService) matchRegion(region string) {
	for len(qs.partitions[region]) >= 2 {
		part := qs.partitions[region]
		a, b := part[0], part[1]
		qs.partitions[region] = part[2:]
		delete(qs.entryByPlayer, a.PlayerID)
		delete(qs.entryByPlayer, b.PlayerID)

		match := &models.Match{
			MatchID:   uuid.NewString(),
			PlayerA:   *a,
			PlayerB:   *b,
			MatchedAt: time.Now().UTC(),
		}
		qs.matches[match.MatchID] = match
		qs.matchByPlayer[a.PlayerID] = match.MatchID
		qs.matchByPlayer[b.PlayerID] = match.MatchID

		log.Printf("✅ Matched %s with %s in region %s", a.PlayerID, b.PlayerID, region)
	}
}

// evictMatch drops a match and both players' index entries. Callers must
// hold qs.mu.
func (qs *QueueService) evictMatch(matchID string) {
	match, ok := qs.matches[matchID]
	if !ok {
		return
	}
	delete(qs.matches, matchID)
	if qs.matchByPlayer[match.PlayerA.PlayerID] == matchID {
		delete(qs.matchByPlayer, match.PlayerA.PlayerID)
	}
	if qs.matchByPlayer[match.PlayerB.PlayerID] == matchID {
		delete(qs.matchByPlayer, match.PlayerB.PlayerID)
	}
}

// Leave removes a player's queue entry. Removing a player who is not queued
// is not an error; a match that already formed is left untouched.
func (qs *QueueService) Leave(playerID string) {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	entry, ok := qs.entryByPlayer[playerID]
	if !ok {
		return
	}
	delete(qs.entryByPlayer, playerID)

	part := qs.partitions[entry.Region]
	for i, e := range part {
		if e.PlayerID == playerID {
			qs.partitions[entry.Region] = append(part[:i], part[i+1:]...)
			break
		}
	}
}

// Status returns a read-only snapshot for one player. CurrentMatch is set
// while the player's match is inside its retention window.
func (qs *QueueService) Status(playerID string) models.QueueStatus {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	status := models.QueueStatus{QueueSize: len(qs.entryByPlayer)}

	if entry, ok := qs.entryByPlayer[playerID]; ok {
		status.InQueue = true
		status.QueuePosition = 1
		for _, other := range qs.entryByPlayer {
			if other.JoinedAt.Before(entry.JoinedAt) {
				status.QueuePosition++
			}
		}
	}

	if matchID, ok := qs.matchByPlayer[playerID]; ok {
		if match, ok := qs.matches[matchID]; ok && time.Since(match.MatchedAt) < models.MatchRetention {
			snapshot := *match
			status.CurrentMatch = &snapshot
		}
	}

	return status
}

// Players returns the public lobby view of everyone waiting, oldest first.
func (qs *QueueService) Players() []models.WaitingPlayer {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	now := time.Now().UTC()
	players := make([]models.WaitingPlayer, 0, len(qs.entryByPlayer))
	entries := make([]*models.QueueEntry, 0, len(qs.entryByPlayer))
	for _, entry := range qs.entryByPlayer {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].JoinedAt.Before(entries[j].JoinedAt) })

	for _, entry := range entries {
		players = append(players, models.WaitingPlayer{
			DisplayName:     entry.DisplayName,
			AccountRef:      entry.AccountRef,
			Region:          entry.Region,
			WaitTimeSeconds: int64(now.Sub(entry.JoinedAt).Seconds()),
		})
	}
	return players
}

// Sweep evicts queue entries and matches whose age exceeds their retention
// window as of the given time. It returns the eviction counts for logging.
func (qs *QueueService) Sweep(asOf time.Time) (entriesRemoved, matchesRemoved int) {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	for region, part := range qs.partitions {
		kept := part[:0]
		for _, entry := range part {
			if asOf.Sub(entry.JoinedAt) > models.QueueEntryTTL {
				delete(qs.entryByPlayer, entry.PlayerID)
				entriesRemoved++
			} else {
				kept = append(kept, entry)
			}
		}
		if len(kept) == 0 {
			delete(qs.partitions, region)
		} else {
			qs.partitions[region] = kept
		}
	}

	for matchID, match := range qs.matches {
		if asOf.Sub(match.MatchedAt) > models.MatchRetention {
			qs.evictMatch(matchID)
			matchesRemoved++
		}
	}

	return entriesRemoved, matchesRemoved
}
