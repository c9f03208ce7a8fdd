package repository

import (
	"context"
	"sync"
	"time"
)

// Provider resolves the store that serves a session.
type Provider interface {
	Store(sessionID string) TaskStore
	Probe(ctx context.Context) error
	Close() error
}

// SharedProvider serves every session from one external store.
type SharedProvider struct {
	store TaskStore
}

func NewSharedProvider(store TaskStore) *SharedProvider {
	return &SharedProvider{store: store}
}

func (p *SharedProvider) Store(string) TaskStore { return p.store }

func (p *SharedProvider) Probe(ctx context.Context) error { return p.store.Probe(ctx) }

func (p *SharedProvider) Close() error { return p.store.Close() }

// SessionProvider gives each session its own MemoryRepository, so tasks never
// leak between sessions. Sessions idle longer than ttl are dropped the next
// time the registry is used.
type SessionProvider struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	store    *MemoryRepository
	lastSeen time.Time
}

func NewSessionProvider(ttl time.Duration) *SessionProvider {
	return &SessionProvider{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*sessionEntry),
	}
}

// Store returns the session's repository, creating it on first use.
func (p *SessionProvider) Store(sessionID string) TaskStore {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	p.evict(now)

	entry, ok := p.sessions[sessionID]
	if !ok {
		entry = &sessionEntry{store: NewMemoryRepository()}
		p.sessions[sessionID] = entry
	}
	entry.lastSeen = now
	return entry.store
}

// Len reports the number of live sessions.
func (p *SessionProvider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

func (p *SessionProvider) evict(now time.Time) {
	if p.ttl <= 0 {
		return
	}
	for id, entry := range p.sessions {
		if now.Sub(entry.lastSeen) > p.ttl {
			delete(p.sessions, id)
		}
	}
}

func (p *SessionProvider) Probe(context.Context) error { return nil }

func (p *SessionProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	clear(p.sessions)
	return nil
}
