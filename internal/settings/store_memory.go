package settings

import (
	"context"
	"sync"
)

// InMemoryStore holds the current value of each persisted settings domain.
// Each domain is written under the lock as a whole value, so readers never
// observe a half-applied form.
type InMemoryStore struct {
	mu            sync.RWMutex
	profile       StoreProfile
	notifications NotificationPreferences
	integrations  IntegrationConfig
}

// NewInMemoryStore creates an empty settings store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// SaveProfile replaces the store profile.
func (s *InMemoryStore) SaveProfile(_ context.Context, p StoreProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
	return nil
}

// GetProfile returns the current store profile.
func (s *InMemoryStore) GetProfile(_ context.Context) (StoreProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile, nil
}

// SaveNotifications replaces the notification preferences.
func (s *InMemoryStore) SaveNotifications(_ context.Context, n NotificationPreferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = n
	return nil
}

// GetNotifications returns the current notification preferences.
func (s *InMemoryStore) GetNotifications(_ context.Context) (NotificationPreferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notifications, nil
}

// SaveIntegrations replaces the integration configuration.
func (s *InMemoryStore) SaveIntegrations(_ context.Context, i IntegrationConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.integrations = i
	return nil
}

// GetIntegrations returns the current integration configuration.
func (s *InMemoryStore) GetIntegrations(_ context.Context) (IntegrationConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.integrations, nil
}
