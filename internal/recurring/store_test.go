package recurring

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/siamakdehbokri-hub/siaflowtest/internal/model"
)

// fakeKV is an in-memory stand-in for the persisted key-value store.
type fakeKV struct {
	values map[string]string
}

func newFakeKV() *fakeKV {
	return &fakeKV{values: make(map[string]string)}
}

func (f *fakeKV) GetValue(_ context.Context, key string) (string, bool, error) {
	value, ok := f.values[key]
	return value, ok, nil
}

func (f *fakeKV) SetValue(_ context.Context, key, value string) error {
	f.values[key] = value
	return nil
}

func TestStorageKey(t *testing.T) {
	if got := StorageKey("user-42"); got != "siaflow.recurring.v1.user-42" {
		t.Errorf("StorageKey(user-42) = %s", got)
	}
	if got := StorageKey(""); got != "siaflow.recurring.v1.anon" {
		t.Errorf("StorageKey(\"\") = %s, want anon bucket", got)
	}
}

func TestLoadMissingKeyReturnsEmpty(t *testing.T) {
	store := NewTemplateStore(newFakeKV())

	templates, err := store.Load(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(templates) != 0 {
		t.Errorf("expected empty collection, got %d", len(templates))
	}
}

func TestLoadDegradedStates(t *testing.T) {
	tests := []struct {
		name        string
		stored      string
		wantCorrupt bool
	}{
		{name: "empty string", stored: ""},
		{name: "stored null", stored: "null"},
		{name: "empty array", stored: "[]"},
		{name: "not json", stored: "definitely not json", wantCorrupt: true},
		{name: "non-array json", stored: `{"id":"tpl-1"}`, wantCorrupt: true},
		{name: "array of wrong shape", stored: `[{"nextRunDate":"not-a-date"}]`, wantCorrupt: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := newFakeKV()
			kv.values[StorageKey("user-1")] = tt.stored
			store := NewTemplateStore(kv)

			templates, err := store.Load(context.Background(), "user-1")
			if tt.wantCorrupt {
				if !errors.Is(err, ErrCorruptState) {
					t.Fatalf("expected ErrCorruptState, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(templates) != 0 {
				t.Errorf("degraded load must yield an empty collection, got %d", len(templates))
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	kv := newFakeKV()
	store := NewTemplateStore(kv)
	ctx := context.Background()

	original := []model.RecurringTemplate{{
		ID:          "tpl-1",
		Type:        model.TypeExpense,
		Amount:      150000,
		Category:    "Rent",
		Subcategory: "Apartment",
		Description: "Monthly rent",
		Cadence:     model.CadenceMonthly,
		NextRunDate: model.NewDate(2024, time.January, 31),
		Tags:        []string{"home", "fixed"},
	}}

	if err := store.Save(ctx, "user-1", original); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// The persisted form keeps the original date format.
	raw := kv.values[StorageKey("user-1")]
	if !strings.Contains(raw, `"nextRunDate":"2024-01-31"`) {
		t.Errorf("persisted payload missing YYYY-MM-DD date: %s", raw)
	}

	loaded, err := store.Load(ctx, "user-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 template, got %d", len(loaded))
	}

	got := loaded[0]
	if got.ID != "tpl-1" || got.Amount != 150000 || got.Category != "Rent" || got.Subcategory != "Apartment" {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if got.Cadence != model.CadenceMonthly || !got.NextRunDate.Equal(model.NewDate(2024, time.January, 31)) {
		t.Errorf("round trip lost schedule: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "home" {
		t.Errorf("round trip lost tags: %v", got.Tags)
	}
}

func TestSaveReplacesWholeCollection(t *testing.T) {
	store := NewTemplateStore(newFakeKV())
	ctx := context.Background()

	first := []model.RecurringTemplate{
		{ID: "tpl-1", Type: model.TypeExpense, Amount: 10, Category: "A", Cadence: model.CadenceWeekly, NextRunDate: model.NewDate(2026, time.January, 1)},
		{ID: "tpl-2", Type: model.TypeExpense, Amount: 20, Category: "B", Cadence: model.CadenceWeekly, NextRunDate: model.NewDate(2026, time.January, 1)},
	}
	if err := store.Save(ctx, "user-1", first); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := store.Save(ctx, "user-1", first[:1]); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	loaded, err := store.Load(ctx, "user-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 1 || loaded[0].ID != "tpl-1" {
		t.Errorf("save must replace the whole collection, got %+v", loaded)
	}
}

func TestUsersAreIsolated(t *testing.T) {
	store := NewTemplateStore(newFakeKV())
	ctx := context.Background()

	mine := []model.RecurringTemplate{{ID: "tpl-mine", Type: model.TypeExpense, Amount: 10, Category: "A", Cadence: model.CadenceWeekly, NextRunDate: model.NewDate(2026, time.January, 1)}}
	if err := store.Save(ctx, "user-1", mine); err != nil {
		t.Fatalf("Save: %v", err)
	}

	other, err := store.Load(ctx, "user-2")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("user-2 must not see user-1 templates, got %d", len(other))
	}
}
