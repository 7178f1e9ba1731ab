package recurring

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/siamakdehbokri-hub/siaflowtest/internal/model"
)

func recordingSink(out *[]model.Transaction) Sink {
	return func(_ context.Context, txn model.Transaction) error {
		*out = append(*out, txn)
		return nil
	}
}

func weeklyTemplate(next model.Date) model.RecurringTemplate {
	return model.RecurringTemplate{
		ID:          "tpl-weekly",
		Type:        model.TypeExpense,
		Amount:      3000,
		Category:    "Food",
		Description: "Groceries",
		Cadence:     model.CadenceWeekly,
		NextRunDate: next,
		Tags:        []string{"weekly"},
	}
}

func TestProcessDueAtEmitsAllMissedOccurrencesChronologically(t *testing.T) {
	templates := []model.RecurringTemplate{weeklyTemplate(date(2026, time.January, 1))}
	now := date(2026, time.January, 22)

	var emitted []model.Transaction
	result, err := ProcessDueAt(context.Background(), "user-1", templates, now, recordingSink(&emitted))
	if err != nil {
		t.Fatalf("ProcessDueAt: %v", err)
	}

	if result.Created != 4 {
		t.Fatalf("expected 4 created, got %d", result.Created)
	}

	wantDates := []string{"2026-01-01", "2026-01-08", "2026-01-15", "2026-01-22"}
	for i, txn := range emitted {
		if txn.Date.String() != wantDates[i] {
			t.Errorf("occurrence %d dated %s, want %s", i, txn.Date, wantDates[i])
		}
		if !txn.IsRecurring {
			t.Errorf("occurrence %d must be flagged recurring", i)
		}
		if txn.Amount != 3000 || txn.Category != "Food" {
			t.Errorf("occurrence %d did not copy template fields: %+v", i, txn)
		}
	}

	if got := result.Templates[0].NextRunDate.String(); got != "2026-01-29" {
		t.Errorf("next run date = %s, want 2026-01-29", got)
	}
}

func TestProcessDueAtGuardCapLeavesTemplateDue(t *testing.T) {
	// 20 weeks overdue; one run only catches up 12.
	templates := []model.RecurringTemplate{weeklyTemplate(date(2025, time.August, 1))}
	now := date(2025, time.December, 31)

	var emitted []model.Transaction
	result, err := ProcessDueAt(context.Background(), "user-1", templates, now, recordingSink(&emitted))
	if err != nil {
		t.Fatalf("ProcessDueAt: %v", err)
	}

	if result.Created != 12 {
		t.Fatalf("expected 12 created at the cap, got %d", result.Created)
	}
	if next := result.Templates[0].NextRunDate; next.After(now) {
		t.Errorf("template should still be due after capped run, next run %s", next)
	}

	// Second run picks up the remainder.
	var second []model.Transaction
	result, err = ProcessDueAt(context.Background(), "user-1", result.Templates, now, recordingSink(&second))
	if err != nil {
		t.Fatalf("second ProcessDueAt: %v", err)
	}
	if result.Created != 10 {
		t.Fatalf("expected 10 created on second run, got %d", result.Created)
	}
	if next := result.Templates[0].NextRunDate; !next.After(now) {
		t.Errorf("template should be caught up after second run, next run %s", next)
	}
}

func TestProcessDueAtFutureTemplateUntouched(t *testing.T) {
	templates := []model.RecurringTemplate{weeklyTemplate(date(2026, time.February, 1))}
	now := date(2026, time.January, 22)

	var emitted []model.Transaction
	result, err := ProcessDueAt(context.Background(), "user-1", templates, now, recordingSink(&emitted))
	if err != nil {
		t.Fatalf("ProcessDueAt: %v", err)
	}

	if result.Created != 0 || len(emitted) != 0 {
		t.Fatalf("expected no emissions for a future template, got %d", result.Created)
	}
	if got := result.Templates[0].NextRunDate.String(); got != "2026-02-01" {
		t.Errorf("future template advanced to %s", got)
	}
}

func TestProcessDueAtDueTodayIsEmitted(t *testing.T) {
	now := date(2026, time.January, 22)
	templates := []model.RecurringTemplate{weeklyTemplate(now)}

	var emitted []model.Transaction
	result, err := ProcessDueAt(context.Background(), "user-1", templates, now, recordingSink(&emitted))
	if err != nil {
		t.Fatalf("ProcessDueAt: %v", err)
	}

	if result.Created != 1 {
		t.Fatalf("a template due today must emit exactly once, got %d", result.Created)
	}
	if emitted[0].Date.String() != "2026-01-22" {
		t.Errorf("emitted date = %s, want 2026-01-22", emitted[0].Date)
	}
}

func TestProcessDueAtWithoutUserIsNoop(t *testing.T) {
	templates := []model.RecurringTemplate{weeklyTemplate(date(2026, time.January, 1))}

	result, err := ProcessDueAt(context.Background(), "", templates, date(2026, time.June, 1), func(context.Context, model.Transaction) error {
		t.Fatal("sink must not be called without a user")
		return nil
	})
	if err != nil {
		t.Fatalf("ProcessDueAt: %v", err)
	}

	if result.Created != 0 {
		t.Fatalf("expected 0 created, got %d", result.Created)
	}
	if got := result.Templates[0].NextRunDate.String(); got != "2026-01-01" {
		t.Errorf("template advanced without a user: %s", got)
	}
}

func TestProcessDueAtDoesNotMutateInput(t *testing.T) {
	templates := []model.RecurringTemplate{weeklyTemplate(date(2026, time.January, 1))}

	var emitted []model.Transaction
	_, err := ProcessDueAt(context.Background(), "user-1", templates, date(2026, time.January, 22), recordingSink(&emitted))
	if err != nil {
		t.Fatalf("ProcessDueAt: %v", err)
	}

	if got := templates[0].NextRunDate.String(); got != "2026-01-01" {
		t.Errorf("input template mutated, next run %s", got)
	}
}

func TestProcessDueAtSinkFailureKeepsPartialProgress(t *testing.T) {
	templates := []model.RecurringTemplate{
		weeklyTemplate(date(2026, time.January, 1)),
		{
			ID:          "tpl-later",
			Type:        model.TypeIncome,
			Amount:      50000,
			Category:    "Salary",
			Cadence:     model.CadenceMonthly,
			NextRunDate: date(2026, time.January, 1),
		},
	}
	now := date(2026, time.January, 22)

	sinkErr := errors.New("sink unavailable")
	calls := 0
	failingSink := func(_ context.Context, _ model.Transaction) error {
		calls++
		if calls > 2 {
			return sinkErr
		}
		return nil
	}

	result, err := ProcessDueAt(context.Background(), "user-1", templates, now, failingSink)
	if !errors.Is(err, sinkErr) {
		t.Fatalf("expected sink error to propagate, got %v", err)
	}

	if result.Created != 2 {
		t.Fatalf("expected 2 committed before failure, got %d", result.Created)
	}
	// The failing template keeps the due date of the failed occurrence.
	if got := result.Templates[0].NextRunDate.String(); got != "2026-01-15" {
		t.Errorf("failing template next run = %s, want 2026-01-15", got)
	}
	// Templates after the failure point stay at their pre-run dates.
	if got := result.Templates[1].NextRunDate.String(); got != "2026-01-01" {
		t.Errorf("subsequent template advanced to %s", got)
	}
}

// Scenario: monthly template anchored on Jan 31, 2024, materialized on
// Apr 15. Occurrences clamp through the leap February and carry the
// clamped day; the template is left due on the first date past "now".
func TestProcessDueAtMonthlyClampScenario(t *testing.T) {
	templates := []model.RecurringTemplate{{
		ID:          "tpl-rent",
		Type:        model.TypeExpense,
		Amount:      100,
		Category:    "Rent",
		Cadence:     model.CadenceMonthly,
		NextRunDate: date(2024, time.January, 31),
	}}
	now := date(2024, time.April, 15)

	var emitted []model.Transaction
	result, err := ProcessDueAt(context.Background(), "user-1", templates, now, recordingSink(&emitted))
	if err != nil {
		t.Fatalf("ProcessDueAt: %v", err)
	}

	wantDates := []string{"2024-01-31", "2024-02-29", "2024-03-29"}
	if len(emitted) != len(wantDates) {
		t.Fatalf("expected %d occurrences, got %d", len(wantDates), len(emitted))
	}
	for i, txn := range emitted {
		if txn.Date.String() != wantDates[i] {
			t.Errorf("occurrence %d dated %s, want %s", i, txn.Date, wantDates[i])
		}
	}

	if got := result.Templates[0].NextRunDate.String(); got != "2024-04-29" {
		t.Errorf("next run date = %s, want 2024-04-29", got)
	}
}

func TestProcessDueAtTemplatesProcessedInInputOrder(t *testing.T) {
	now := date(2026, time.January, 8)
	templates := make([]model.RecurringTemplate, 3)
	for i := range templates {
		tpl := weeklyTemplate(date(2026, time.January, 1))
		tpl.ID = fmt.Sprintf("tpl-%d", i)
		templates[i] = tpl
	}

	var emitted []model.Transaction
	var order []string
	sink := func(_ context.Context, txn model.Transaction) error {
		emitted = append(emitted, txn)
		order = append(order, txn.Description)
		return nil
	}
	for i := range templates {
		templates[i].Description = templates[i].ID
	}

	result, err := ProcessDueAt(context.Background(), "user-1", templates, now, sink)
	if err != nil {
		t.Fatalf("ProcessDueAt: %v", err)
	}
	if result.Created != 6 {
		t.Fatalf("expected 6 created (2 per template), got %d", result.Created)
	}

	want := []string{"tpl-0", "tpl-0", "tpl-1", "tpl-1", "tpl-2", "tpl-2"}
	for i, id := range order {
		if id != want[i] {
			t.Fatalf("emission order %v, want %v", order, want)
		}
	}
}
