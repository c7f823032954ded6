package session

import (
	"maps"
	"sync"
	"time"
)

/*
Inspited by https://github.com/symfony/symfony/blob/7.2/src/Symfony/Component/HttpFoundation/Session/SessionInterface.php
*/
type Session interface {
	GetId() string
	Has(name string) bool
	Get(name string, fallback any) any
	Set(name string, value any)
	All() map[string]any
	Replace(attributes map[string]any)
	Remove(name string)
	Clear()

	LastAccessed() time.Time
	Touch(now time.Time)
}

type defaultSession struct {
	mu           sync.RWMutex
	id           string
	attributes   map[string]any
	lastAccessed time.Time
}

func NewDefaultSession(id string, attributes map[string]any, now time.Time) Session {
	if attributes == nil {
		attributes = make(map[string]any)
	}

	return &defaultSession{
		id:           id,
		attributes:   attributes,
		lastAccessed: now,
	}
}

func (s *defaultSession) GetId() string {
	return s.id
}

// All returns a copy of the attributes.
func (s *defaultSession) All() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.attributes)
}

func (s *defaultSession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attributes = make(map[string]any)
}

func (s *defaultSession) Get(name string, fallback any) any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, found := s.attributes[name]
	if !found {
		return fallback
	}

	return value
}

func (s *defaultSession) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, found := s.attributes[name]
	return found
}

func (s *defaultSession) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attributes, name)
}

func (s *defaultSession) Replace(attributes map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attributes = maps.Clone(attributes)
	if s.attributes == nil {
		s.attributes = make(map[string]any)
	}
}

func (s *defaultSession) Set(name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attributes[name] = value
}

func (s *defaultSession) LastAccessed() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAccessed
}

func (s *defaultSession) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccessed = now
}
