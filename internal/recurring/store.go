package recurring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/siamakdehbokri-hub/siaflowtest/internal/model"
	"github.com/siamakdehbokri-hub/siaflowtest/internal/service"
)

// keyPrefix namespaces the persisted template collections. The v1
// suffix matches the serialized format version.
const keyPrefix = "siaflow.recurring.v1."

// anonBucket is the storage bucket used when no user is configured.
const anonBucket = "anon"

// ErrCorruptState marks a persisted template collection that could not
// be decoded. Callers are expected to log it and fall back to an empty
// collection; the corrupt payload stays in place until the next save.
var ErrCorruptState = errors.New("corrupt recurring template state")

// TemplateStore persists a user's recurring template collection as a
// single serialized value in a key-value store. Saves always replace
// the whole collection.
type TemplateStore struct {
	kv service.KeyValue
}

// NewTemplateStore creates a template store over the given key-value
// backend.
func NewTemplateStore(kv service.KeyValue) *TemplateStore {
	return &TemplateStore{kv: kv}
}

// StorageKey returns the kv key holding the template collection for
// the given user, or the anonymous bucket when userID is empty.
func StorageKey(userID string) string {
	if userID == "" {
		userID = anonBucket
	}
	return keyPrefix + userID
}

// Load reads the template collection for a user. A missing or empty
// entry yields an empty collection and no error. A malformed entry
// yields an empty collection and an error wrapping ErrCorruptState so
// the caller can log the data loss before proceeding.
func (s *TemplateStore) Load(ctx context.Context, userID string) ([]model.RecurringTemplate, error) {
	raw, ok, err := s.kv.GetValue(ctx, StorageKey(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to read recurring templates: %w", err)
	}
	if !ok || raw == "" {
		return []model.RecurringTemplate{}, nil
	}

	var templates []model.RecurringTemplate
	if err := json.Unmarshal([]byte(raw), &templates); err != nil {
		return []model.RecurringTemplate{}, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if templates == nil {
		// Stored "null" is treated the same as never used.
		return []model.RecurringTemplate{}, nil
	}

	return templates, nil
}

// Save replaces the persisted template collection for a user.
func (s *TemplateStore) Save(ctx context.Context, userID string, templates []model.RecurringTemplate) error {
	if templates == nil {
		templates = []model.RecurringTemplate{}
	}

	data, err := json.Marshal(templates)
	if err != nil {
		return fmt.Errorf("failed to encode recurring templates: %w", err)
	}

	if err := s.kv.SetValue(ctx, StorageKey(userID), string(data)); err != nil {
		return fmt.Errorf("failed to write recurring templates: %w", err)
	}

	return nil
}
