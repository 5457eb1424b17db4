package session

import (
	"context"
	"log/slog"
	"time"
)

// RunJanitor expires idle sessions every interval until ctx is cancelled.
func (m *Manager) RunJanitor(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Expire(idle); n > 0 {
				slog.Info("expired idle sessions", "count", n)
			}
		}
	}
}
