package sessionstore

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	creds     Credentials
	expiresAt time.Time
}

// Memory is an in-process Store. Expired entries are rejected on read and
// swept by a background janitor; secrets are zeroed as soon as an entry is
// removed for any reason.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	stop    chan struct{}
	done    chan struct{}
}

// NewMemory creates a memory store whose sessions expire ttl after Put.
func NewMemory(ttl time.Duration) *Memory {
	m := &Memory{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go m.janitor()
	return m
}

func (m *Memory) janitor() {
	defer close(m.done)
	interval := m.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Memory) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.entries {
		if now().After(e.expiresAt) {
			m.removeLocked(id)
		}
	}
}

func (m *Memory) removeLocked(sessionID string) {
	if e, ok := m.entries[sessionID]; ok {
		for i := range e.creds.Secret {
			e.creds.Secret[i] = 0
		}
		delete(m.entries, sessionID)
	}
}

func (m *Memory) Put(_ context.Context, sessionID string, creds Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(sessionID)

	// Keep a private copy so zeroing never races with the caller's slice.
	secret := make([]byte, len(creds.Secret))
	copy(secret, creds.Secret)
	m.entries[sessionID] = memoryEntry{
		creds:     Credentials{Identifier: creds.Identifier, Secret: secret},
		expiresAt: now().Add(m.ttl),
	}
	return nil
}

func (m *Memory) Get(_ context.Context, sessionID string) (Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[sessionID]
	if !ok {
		return Credentials{}, ErrNoSession
	}
	if now().After(e.expiresAt) {
		m.removeLocked(sessionID)
		return Credentials{}, ErrNoSession
	}

	secret := make([]byte, len(e.creds.Secret))
	copy(secret, e.creds.Secret)
	return Credentials{Identifier: e.creds.Identifier, Secret: secret}, nil
}

func (m *Memory) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(sessionID)
	return nil
}

// Close stops the janitor and zeroes every remaining secret.
func (m *Memory) Close() error {
	close(m.stop)
	<-m.done
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.entries {
		m.removeLocked(id)
	}
	return nil
}
