// Package kv persists JSON values under string keys. Each logical
// collection of the application lives under one key as one JSON array.
package kv

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Backend stores raw bytes by key
type Backend interface {
	Load(key string) ([]byte, bool, error)
	Save(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// Adapter serializes values to JSON on top of a Backend.
//
// A stored value that no longer decodes is treated as absent: the key is
// removed and Get reports a miss instead of an error.
type Adapter struct {
	backend Backend
	logger  *zap.Logger
}

// NewAdapter creates a new adapter over backend
func NewAdapter(backend Backend, logger *zap.Logger) *Adapter {
	return &Adapter{
		backend: backend,
		logger:  logger,
	}
}

// Get decodes the value stored under key into dst.
// It returns false when the key is absent or held corrupt data.
func (a *Adapter) Get(key string, dst any) (bool, error) {
	raw, ok, err := a.backend.Load(key)
	if err != nil {
		return false, fmt.Errorf("failed to load key %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		a.logger.Warn("Discarding corrupt stored value",
			zap.String("key", key),
			zap.Int("bytes", len(raw)),
			zap.Error(err))

		if delErr := a.backend.Delete(key); delErr != nil {
			a.logger.Error("Failed to remove corrupt key",
				zap.String("key", key),
				zap.Error(delErr))
		}
		return false, nil
	}

	return true, nil
}

// Has reports whether key holds a value, without decoding it
func (a *Adapter) Has(key string) (bool, error) {
	_, ok, err := a.backend.Load(key)
	if err != nil {
		return false, fmt.Errorf("failed to load key %s: %w", key, err)
	}
	return ok, nil
}

// Set encodes value and overwrites key
func (a *Adapter) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for key %s: %w", key, err)
	}
	if err := a.backend.Save(key, raw); err != nil {
		return fmt.Errorf("failed to save key %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (a *Adapter) Remove(key string) error {
	if err := a.backend.Delete(key); err != nil {
		return fmt.Errorf("failed to remove key %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying backend
func (a *Adapter) Close() error {
	return a.backend.Close()
}
