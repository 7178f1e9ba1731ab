package model

import (
	"errors"
	"fmt"
)

// Cadence is the recurrence interval of a template.
type Cadence string

// Supported cadences.
const (
	CadenceWeekly  Cadence = "weekly"
	CadenceMonthly Cadence = "monthly"
)

// IsValid reports whether the cadence is one of the known values.
func (c Cadence) IsValid() bool {
	return c == CadenceWeekly || c == CadenceMonthly
}

// Template validation errors.
var (
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrMissingCategory = errors.New("category is required")
	ErrInvalidCadence  = errors.New("cadence must be weekly or monthly")
	ErrInvalidType     = errors.New("type must be income or expense")
	ErrMissingRunDate  = errors.New("next run date is required")
)

// RecurringTemplate is a durable recurring-payment definition.
// NextRunDate is the next date the template is due; only the
// materialization runner advances it. The JSON field names match the
// persisted collection format.
type RecurringTemplate struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory,omitempty"`
	Description string          `json:"description"`
	Cadence     Cadence         `json:"cadence"`
	Tags        []string        `json:"tags,omitempty"`
	NextRunDate Date            `json:"nextRunDate"`
	Amount      int64           `json:"amount"`
}

// Validate checks the fields a template needs to be actionable. The
// materialization runner assumes templates are well formed; this is
// enforced at creation and edit time.
func (t *RecurringTemplate) Validate() error {
	if t.Amount <= 0 {
		return fmt.Errorf("template %s: %w", t.ID, ErrInvalidAmount)
	}
	if t.Category == "" {
		return fmt.Errorf("template %s: %w", t.ID, ErrMissingCategory)
	}
	if !t.Type.IsValid() {
		return fmt.Errorf("template %s: %w", t.ID, ErrInvalidType)
	}
	if !t.Cadence.IsValid() {
		return fmt.Errorf("template %s: %w", t.ID, ErrInvalidCadence)
	}
	if t.NextRunDate.IsZero() {
		return fmt.Errorf("template %s: %w", t.ID, ErrMissingRunDate)
	}
	return nil
}

// Clone returns a deep copy of the template.
func (t RecurringTemplate) Clone() RecurringTemplate {
	clone := t
	if t.Tags != nil {
		clone.Tags = append([]string(nil), t.Tags...)
	}
	return clone
}
