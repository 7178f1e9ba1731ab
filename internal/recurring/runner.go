package recurring

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/siamakdehbokri-hub/siaflowtest/internal/model"
)

// Sink durably commits one materialized transaction. The runner waits
// for each call to return before advancing the template, so the sink
// sees occurrences of a template in chronological order. A sink error
// aborts the run; the runner performs no retry and no idempotency
// check of its own.
type Sink func(ctx context.Context, txn model.Transaction) error

// maxCatchUp bounds how many missed occurrences a single run emits per
// template. A template overdue beyond the cap stays due and finishes
// catching up on later runs, which keeps a long-unattended template
// from emitting years of backlog in one pass.
const maxCatchUp = 12

// RunResult reports the outcome of a materialization run.
type RunResult struct {
	// Templates is the full template set with due templates advanced.
	// On a sink error it reflects progress up to the failure point.
	Templates []model.RecurringTemplate
	// Created is the number of transactions emitted.
	Created int
}

// ProcessDue materializes every occurrence due on or before today.
func ProcessDue(ctx context.Context, userID string, templates []model.RecurringTemplate, sink Sink) (RunResult, error) {
	return ProcessDueAt(ctx, userID, templates, model.Today(), sink)
}

// ProcessDueAt materializes every occurrence due on or before now.
//
// Templates are processed in input order; within one template,
// occurrences are emitted oldest first, each dated with the
// then-current due date before it is advanced. With no user there is
// nowhere to attribute transactions, so the run is a no-op. The input
// slice is never mutated; the returned set carries the advanced dates.
//
// A sink error propagates unwrapped intent: occurrences committed
// before the failure stay committed, the failing template keeps the
// due date of the failed occurrence, and later templates are left
// untouched. The partially advanced set is still returned so the
// caller can persist it and resume from the failure point next run.
func ProcessDueAt(ctx context.Context, userID string, templates []model.RecurringTemplate, now model.Date, sink Sink) (RunResult, error) {
	updated := make([]model.RecurringTemplate, len(templates))
	for i := range templates {
		updated[i] = templates[i].Clone()
	}
	result := RunResult{Templates: updated}

	if userID == "" {
		slog.Debug("skipping materialization run, no user configured")
		return result, nil
	}

	for i := range updated {
		tpl := &updated[i]

		guard := 0
		for !tpl.NextRunDate.After(now) && guard < maxCatchUp {
			txn := model.Transaction{
				Type:        tpl.Type,
				Amount:      tpl.Amount,
				Category:    tpl.Category,
				Subcategory: tpl.Subcategory,
				Description: tpl.Description,
				Date:        tpl.NextRunDate,
				IsRecurring: true,
				Tags:        append([]string(nil), tpl.Tags...),
			}

			if err := sink(ctx, txn); err != nil {
				return result, fmt.Errorf("failed to materialize template %s occurrence on %s: %w", tpl.ID, tpl.NextRunDate, err)
			}

			result.Created++
			tpl.NextRunDate = Advance(tpl.NextRunDate, tpl.Cadence)
			guard++
		}

		if guard == maxCatchUp && !tpl.NextRunDate.After(now) {
			slog.Warn("catch-up cap reached, template still due",
				"template", tpl.ID,
				"next_run", tpl.NextRunDate)
		}
	}

	return result, nil
}
