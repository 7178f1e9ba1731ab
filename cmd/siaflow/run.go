package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/siamakdehbokri-hub/siaflowtest/internal/cli"
	"github.com/siamakdehbokri-hub/siaflowtest/internal/common"
	"github.com/siamakdehbokri-hub/siaflowtest/internal/model"
	"github.com/siamakdehbokri-hub/siaflowtest/internal/recurring"
	"github.com/siamakdehbokri-hub/siaflowtest/internal/service"
	"github.com/spf13/cobra"
)

func runRecurringCmd() *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Materialize all due recurring templates",
		Long: `Walk every recurring template and commit one transaction per missed
occurrence, oldest first, then advance each template's next run date.
At most 12 occurrences per template are created in one run; anything
older is picked up by the next run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			userID := currentUserID()
			if userID == "" {
				fmt.Println(cli.InfoStyle.Render("No user configured; nothing to materialize. Set user.id or pass --user."))
				return nil
			}

			now := model.Today()
			if asOf != "" {
				var err error
				now, err = model.ParseDate(asOf)
				if err != nil {
					return err
				}
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			templates, err := loadTemplates(ctx, store, userID)
			if err != nil {
				return err
			}
			if len(templates) == 0 {
				fmt.Println(cli.InfoStyle.Render("No recurring templates. Use 'siaflow recurring add' to create one."))
				return nil
			}

			bar := newMaterializeBar()
			result, runErr := recurring.ProcessDueAt(ctx, userID, templates, now, materializeSink(store, bar))
			_ = bar.Finish()
			fmt.Println()

			// Persist whatever progress was made; the advanced next run
			// dates are the resumption point after a failure, and the
			// emitted transactions are already committed.
			if saveErr := recurring.NewTemplateStore(store).Save(ctx, userID, result.Templates); saveErr != nil {
				if runErr != nil {
					common.LogError(saveErr, "failed to persist templates after run failure", common.Fields{"user": userID})
					return runErr
				}
				return saveErr
			}

			if runErr != nil {
				return common.NewUserError(
					fmt.Sprintf("materialization stopped after %d transaction(s); run again to resume", result.Created),
					runErr)
			}

			if result.Created == 0 {
				fmt.Println(cli.InfoStyle.Render("Nothing due."))
			} else {
				fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created %d transaction(s).", result.Created)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "treat this date (YYYY-MM-DD) as today")

	return cmd
}

// materializeSink commits each emitted occurrence to the transaction
// store, assigning it a fresh ID, and ticks the progress bar.
func materializeSink(store service.Storage, bar *progressbar.ProgressBar) recurring.Sink {
	return func(ctx context.Context, txn model.Transaction) error {
		txn.ID = uuid.NewString()
		txn.CreatedAt = time.Now()
		if err := store.SaveTransaction(ctx, &txn); err != nil {
			return err
		}
		if bar != nil {
			_ = bar.Add(1)
		}
		return nil
	}
}

func newMaterializeBar() *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Materializing occurrences...[reset]"),
		progressbar.OptionSpinnerType(14),
	)
}
