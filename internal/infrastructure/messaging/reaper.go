package messaging

import "time"

// reapLoop sweeps the registry on a fixed interval and evicts sessions whose
// last activity is older than the stale threshold. The loop is armed lazily
// by the first Register into an empty registry and exits when the registry
// empties again, clearing the running flag under the registry mutex so the
// next Register can re-arm it. A loop that dies for any reason is therefore
// replaced on the next registration instead of leaving the process without a
// reaper.
func (b *SSEBroadcaster) reapLoop() {
	ticker := time.NewTicker(b.sweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		if b.sweep() {
			return
		}
	}
}

// sweep evicts stale sessions and reports whether the loop should exit.
func (b *SSEBroadcaster) sweep() (done bool) {
	cutoff := time.Now().Add(-b.staleThreshold)

	b.mu.RLock()
	var stale []*Session
	for _, list := range b.sessions {
		for _, s := range list {
			if s.LastActivity().Before(cutoff) {
				stale = append(stale, s)
			}
		}
	}
	b.mu.RUnlock()

	for _, s := range stale {
		if b.logger != nil {
			b.logger.SSE().Info("Evicting stale session",
				"userId", s.UserID(),
				"idleSeconds", time.Since(s.LastActivity()).Seconds())
		}
		b.Unregister(s.UserID(), s)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.sessions) == 0 {
		b.reaperRunning = false
		return true
	}
	return false
}
