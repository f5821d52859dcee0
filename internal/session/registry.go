package session

import (
	"context"
	"sync"
	"time"

	"github.com/tobilg/otlp-langfuse-bridge/internal/langfuse"
	"github.com/tobilg/otlp-langfuse-bridge/internal/logger"
	"github.com/tobilg/otlp-langfuse-bridge/internal/otlp"
)

// Registry maps session keys to live sessions. Reads run concurrently;
// inserts and removals serialize on the registry lock, everything else on
// the per-session lock.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	sink        langfuse.Sink
	notifier    Notifier
	idleTimeout time.Duration

	sweeperStop chan struct{}
	sweeperDone chan struct{}
}

// NewRegistry creates an empty registry. A nil notifier disables lifecycle
// notifications.
func NewRegistry(sink langfuse.Sink, notifier Notifier, idleTimeout time.Duration) *Registry {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Registry{
		sessions:    make(map[string]*Session),
		sink:        sink,
		notifier:    notifier,
		idleTimeout: idleTimeout,
	}
}

// GetOrCreate returns the session for key, creating and initializing it on
// first sight. Identity fields merge first-write-wins on every call.
func (r *Registry) GetOrCreate(key string, id otlp.Identity, now time.Time) *Session {
	r.mu.RLock()
	s, ok := r.sessions[key]
	r.mu.RUnlock()

	if !ok {
		r.mu.Lock()
		// Re-check under the write lock; another ingest worker may have won
		if s, ok = r.sessions[key]; !ok {
			s = newSession(key, id, r.sink, r.notifier, now)
			r.sessions[key] = s
			r.mu.Unlock()

			logger.Info("Session started", "session", key)
			r.notifier.SessionStarted(key)
			return s
		}
		r.mu.Unlock()
	}

	s.MergeIdentity(id)
	return s
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// FinalizeAndRemove finalizes the session for key (if any) and drops it
func (r *Registry) FinalizeAndRemove(key string) {
	r.mu.Lock()
	s, ok := r.sessions[key]
	delete(r.sessions, key)
	r.mu.Unlock()

	if ok {
		s.Finalize()
	}
}

// Sweep finalizes and removes every session idle for at least the
// registry's idle timeout
func (r *Registry) Sweep(now time.Time) {
	r.mu.RLock()
	var idle []string
	for key, s := range r.sessions {
		if now.Sub(s.LastActivity()) >= r.idleTimeout {
			idle = append(idle, key)
		}
	}
	r.mu.RUnlock()

	for _, key := range idle {
		logger.Info("Finalizing idle session", "session", key)
		r.FinalizeAndRemove(key)
	}
}

// StartSweeper runs Sweep on the given interval until StopSweeper is called
func (r *Registry) StartSweeper(interval time.Duration) {
	r.sweeperStop = make(chan struct{})
	r.sweeperDone = make(chan struct{})

	go func() {
		defer close(r.sweeperDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.Sweep(time.Now())
			case <-r.sweeperStop:
				return
			}
		}
	}()
}

// StopSweeper stops the background sweeper and waits for it to exit
func (r *Registry) StopSweeper() {
	if r.sweeperStop == nil {
		return
	}
	close(r.sweeperStop)
	<-r.sweeperDone
	r.sweeperStop = nil
}

// Shutdown finalizes every live session and flushes the sink, bounded by
// the context deadline
func (r *Registry) Shutdown(ctx context.Context) error {
	r.StopSweeper()

	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Finalize()
	}

	if err := r.sink.Flush(ctx); err != nil {
		logger.Warn("Abandoning pending backend deliveries", "error", err)
		return err
	}
	return nil
}
