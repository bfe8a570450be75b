package service

import (
	"context"
	"log"
	"time"
)

// SessionJanitor periodically evicts idle sessions.
type SessionJanitor struct {
	sessions SessionService
	interval time.Duration
}

// NewSessionJanitor creates a new SessionJanitor.
func NewSessionJanitor(sessions SessionService, interval time.Duration) *SessionJanitor {
	return &SessionJanitor{sessions: sessions, interval: interval}
}

// Start runs the eviction loop until ctx is canceled.
func (j *SessionJanitor) Start(ctx context.Context) {
	if j.interval <= 0 {
		log.Printf("sessionJanitor: disabled (interval=%s)", j.interval)
		return
	}
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	log.Printf("sessionJanitor: started (interval=%s)", j.interval)

	for {
		select {
		case <-ctx.Done():
			log.Printf("sessionJanitor: shutdown complete")
			return
		case now := <-ticker.C:
			j.sessions.EvictIdle(now.UTC())
		}
	}
}
