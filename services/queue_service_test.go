package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinMatchesFIFOWithinRegion(t *testing.T) {
	qs := NewQueueService()

	_, _, err := qs.Join("p1", "Player One", "acct-1", "na1")
	require.NoError(t, err)
	_, position, err := qs.Join("p2", "Player Two", "acct-2", "na1")
	require.NoError(t, err)
	assert.Equal(t, 2, position)

	// p1 and p2 matched immediately; queue is empty again
	status1 := qs.Status("p1")
	status2 := qs.Status("p2")
	assert.False(t, status1.InQueue)
	assert.False(t, status2.InQueue)
	require.NotNil(t, status1.CurrentMatch)
	require.NotNil(t, status2.CurrentMatch)
	assert.Equal(t, status1.CurrentMatch.MatchID, status2.CurrentMatch.MatchID)

	// FIFO order: p3+p4 pair next, never p3 with a later joiner first
	_, _, err = qs.Join("p3", "Player Three", "acct-3", "na1")
	require.NoError(t, err)
	status3 := qs.Status("p3")
	assert.True(t, status3.InQueue)
	assert.Nil(t, status3.CurrentMatch)

	_, _, err = qs.Join("p4", "Player Four", "acct-4", "na1")
	require.NoError(t, err)
	status4 := qs.Status("p4")
	require.NotNil(t, status4.CurrentMatch)
	assert.Equal(t, "p3", status4.CurrentMatch.PlayerA.PlayerID)
	assert.Equal(t, "p4", status4.CurrentMatch.PlayerB.PlayerID)
	assert.Equal(t, "na1", status4.CurrentMatch.PlayerA.Region)
}

func TestJoinRejectsDuplicateAndMissingRegion(t *testing.T) {
	qs := NewQueueService()

	_, _, err := qs.Join("p1", "Player One", "acct-1", "na1")
	require.NoError(t, err)

	_, _, err = qs.Join("p1", "Player One", "acct-1", "na1")
	assert.ErrorIs(t, err, ErrAlreadyQueued)

	_, _, err = qs.Join("p2", "Player Two", "acct-2", "")
	assert.ErrorIs(t, err, ErrValidation)

	// Failed joins left exactly one entry behind
	assert.Equal(t, 1, qs.Status("p1").QueueSize)
}

func TestCrossRegionJoinsNeverMatch(t *testing.T) {
	qs := NewQueueService()

	_, _, err := qs.Join("p1", "Player One", "acct-1", "na1")
	require.NoError(t, err)
	_, _, err = qs.Join("p2", "Player Two", "acct-2", "euw1")
	require.NoError(t, err)

	status1 := qs.Status("p1")
	status2 := qs.Status("p2")
	assert.True(t, status1.InQueue)
	assert.True(t, status2.InQueue)
	assert.Nil(t, status1.CurrentMatch)
	assert.Nil(t, status2.CurrentMatch)
	assert.Equal(t, 2, status1.QueueSize)
}

func TestLeaveIsIdempotent(t *testing.T) {
	qs := NewQueueService()

	_, _, err := qs.Join("p1", "Player One", "acct-1", "na1")
	require.NoError(t, err)

	qs.Leave("p1")
	qs.Leave("p1")
	qs.Leave("never-joined")

	status := qs.Status("p1")
	assert.False(t, status.InQueue)
	assert.Equal(t, 0, status.QueueSize)
}

func TestLeaveAfterMatchDoesNotTouchMatch(t *testing.T) {
	qs := NewQueueService()

	_, _, err := qs.Join("p1", "Player One", "acct-1", "na1")
	require.NoError(t, err)
	_, _, err = qs.Join("p2", "Player Two", "acct-2", "na1")
	require.NoError(t, err)

	qs.Leave("p1")

	status := qs.Status("p1")
	require.NotNil(t, status.CurrentMatch)
	assert.Equal(t, "p1", status.CurrentMatch.PlayerA.PlayerID)
}

func TestRejoinWithinRetentionEvictsOldMatch(t *testing.T) {
	qs := NewQueueService()

	_, _, err := qs.Join("p1", "Player One", "acct-1", "na1")
	require.NoError(t, err)
	_, _, err = qs.Join("p2", "Player Two", "acct-2", "na1")
	require.NoError(t, err)
	require.NotNil(t, qs.Status("p2").CurrentMatch)

	// p1 moves on before the old match ages out of retention
	_, _, err = qs.Join("p1", "Player One", "acct-1", "na1")
	require.NoError(t, err)
	_, _, err = qs.Join("p3", "Player Three", "acct-3", "na1")
	require.NoError(t, err)

	// The superseded (p1,p2) match is gone: p2 sees no live match and p1
	// appears in exactly one retained match
	assert.Nil(t, qs.Status("p2").CurrentMatch)
	status1 := qs.Status("p1")
	require.NotNil(t, status1.CurrentMatch)
	assert.Equal(t, "p3", status1.CurrentMatch.PlayerB.PlayerID)

	qs.mu.Lock()
	defer qs.mu.Unlock()
	require.Len(t, qs.matches, 1)
	appearances := 0
	for _, match := range qs.matches {
		if match.PlayerA.PlayerID == "p1" || match.PlayerB.PlayerID == "p1" {
			appearances++
		}
	}
	assert.Equal(t, 1, appearances)
}

func TestPlayersSnapshot(t *testing.T) {
	qs := NewQueueService()

	_, _, err := qs.Join("p1", "Player One", "acct-1", "na1")
	require.NoError(t, err)
	_, _, err = qs.Join("p2", "Player Two", "acct-2", "euw1")
	require.NoError(t, err)

	players := qs.Players()
	require.Len(t, players, 2)
	assert.Equal(t, "Player One", players[0].DisplayName)
	assert.Equal(t, "na1", players[0].Region)
	assert.Equal(t, "euw1", players[1].Region)
	assert.GreaterOrEqual(t, players[0].WaitTimeSeconds, int64(0))
}

func TestSweepEvictsExpiredEntriesAndMatches(t *testing.T) {
	qs := NewQueueService()

	_, _, err := qs.Join("stale", "Stale Player", "acct-1", "na1")
	require.NoError(t, err)
	_, _, err = qs.Join("fresh", "Fresh Player", "acct-2", "euw1")
	require.NoError(t, err)

	// Backdate the stale entry past the queue TTL
	qs.mu.Lock()
	qs.entryByPlayer["stale"].JoinedAt = time.Now().UTC().Add(-16 * time.Minute)
	qs.mu.Unlock()

	entries, matches := qs.Sweep(time.Now().UTC())
	assert.Equal(t, 1, entries)
	assert.Equal(t, 0, matches)

	assert.False(t, qs.Status("stale").InQueue)
	assert.True(t, qs.Status("fresh").InQueue)
	assert.Len(t, qs.Players(), 1)
}

func TestSweepEvictsRetainedMatches(t *testing.T) {
	qs := NewQueueService()

	_, _, err := qs.Join("p1", "Player One", "acct-1", "na1")
	require.NoError(t, err)
	_, _, err = qs.Join("p2", "Player Two", "acct-2", "na1")
	require.NoError(t, err)
	require.NotNil(t, qs.Status("p1").CurrentMatch)

	// Inside the retention window nothing is removed
	_, matches := qs.Sweep(time.Now().UTC())
	assert.Equal(t, 0, matches)

	_, matches = qs.Sweep(time.Now().UTC().Add(11 * time.Minute))
	assert.Equal(t, 1, matches)
	assert.Nil(t, qs.Status("p1").CurrentMatch)
	assert.Nil(t, qs.Status("p2").CurrentMatch)
}

func TestConcurrentJoinsKeepSingleEntryAndMatchInvariant(t *testing.T) {
	qs := NewQueueService()

	const players = 40
	var wg sync.WaitGroup
	for i := 0; i < players; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			playerID := fmt.Sprintf("p%d", i)
			_, _, err := qs.Join(playerID, "Player", "acct", "na1")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// Even player count in one region: everyone matched exactly once
	qs.mu.Lock()
	defer qs.mu.Unlock()
	assert.Empty(t, qs.entryByPlayer)
	assert.Len(t, qs.matches, players/2)

	seen := make(map[string]int)
	for _, match := range qs.matches {
		seen[match.PlayerA.PlayerID]++
		seen[match.PlayerB.PlayerID]++
	}
	for playerID, count := range seen {
		assert.Equalf(t, 1, count, "player %s appears in %d matches", playerID, count)
	}
}
