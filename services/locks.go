package services

import "sync"

// chatbotLocks hands out one mutex per business ID so that mutating
// operations on the same chatbot serialize while operations on
// different businesses proceed fully in parallel.
type chatbotLocks struct {
	mu    sync.RWMutex
	locks map[string]*sync.Mutex
}

func newChatbotLocks() *chatbotLocks {
	return &chatbotLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

// get returns the mutex for a business, creating it on first use.
// Lock entries are never removed; the set of businesses is small and
// long-lived relative to the process.
func (l *chatbotLocks) get(businessID string) *sync.Mutex {
	l.mu.RLock()
	m, ok := l.locks[businessID]
	l.mu.RUnlock()
	if ok {
		return m
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if m, ok := l.locks[businessID]; ok {
		return m
	}
	m = &sync.Mutex{}
	l.locks[businessID] = m
	return m
}
