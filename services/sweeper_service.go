package services

import (
	"context"
	"log"
	"time"
)

// DefaultSweepInterval is how often expired queue state is evicted.
const DefaultSweepInterval = 5 * time.Minute

// SweeperService runs the periodic TTL sweep over queue entries and matches.
// One ticker covers everything; there is never a timer per entity, so
// shutdown is a single context cancellation.
type SweeperService struct {
	Queue    *QueueService
	Interval time.Duration
}

func NewSweeperService(queue *QueueService, interval time.Duration) *SweeperService {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &SweeperService{Queue: queue, Interval: interval}
}

// Run blocks until ctx is cancelled, sweeping once per interval. A sweep
// that finds nothing is a silent no-op.
func (ss *SweeperService) Run(ctx context.Context) {
	ticker := time.NewTicker(ss.Interval)
	defer ticker.Stop()

	log.Printf("🧹 Expiry sweeper started (interval %s)", ss.Interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("🧹 Expiry sweeper stopped")
			return
		case <-ticker.C:
			entries, matches := ss.Queue.Sweep(time.Now().UTC())
			if entries > 0 || matches > 0 {
				log.Printf("🧹 Swept %d expired queue entries and %d stale matches", entries, matches)
			}
		}
	}
}
