package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/siamakdehbokri-hub/siaflowtest/internal/cli"
	"github.com/siamakdehbokri-hub/siaflowtest/internal/common"
	"github.com/siamakdehbokri-hub/siaflowtest/internal/model"
	"github.com/siamakdehbokri-hub/siaflowtest/internal/recurring"
	"github.com/siamakdehbokri-hub/siaflowtest/internal/service"
	"github.com/spf13/cobra"
)

func recurringCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "Manage recurring transaction templates",
		Long:  `Define, inspect, and materialize recurring payment templates (rent, salary, subscriptions).`,
	}

	cmd.AddCommand(addTemplateCmd())
	cmd.AddCommand(listTemplatesCmd())
	cmd.AddCommand(editTemplateCmd())
	cmd.AddCommand(deleteTemplateCmd())
	cmd.AddCommand(runRecurringCmd())

	return cmd
}

// loadTemplates reads the user's template collection, downgrading a
// corrupt persisted state to an empty collection after logging it.
func loadTemplates(ctx context.Context, store service.KeyValue, userID string) ([]model.RecurringTemplate, error) {
	templates, err := recurring.NewTemplateStore(store).Load(ctx, userID)
	if err != nil {
		if errors.Is(err, recurring.ErrCorruptState) {
			common.LogError(err, "recurring template state is corrupt, starting over with an empty collection",
				common.Fields{"user": userID})
			return []model.RecurringTemplate{}, nil
		}
		return nil, err
	}
	return templates, nil
}

func addTemplateCmd() *cobra.Command {
	var (
		templateType string
		amount       int64
		category     string
		subcategory  string
		description  string
		cadence      string
		nextRun      string
		tags         []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a recurring template",
		Long:  `Create a recurring transaction template. The next run date defaults to today.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			nextDate := model.Today()
			if nextRun != "" {
				nextDate, err = model.ParseDate(nextRun)
				if err != nil {
					return err
				}
			}

			tpl := model.RecurringTemplate{
				ID:          uuid.NewString(),
				Type:        model.TransactionType(templateType),
				Amount:      amount,
				Category:    category,
				Subcategory: subcategory,
				Description: description,
				Cadence:     model.Cadence(cadence),
				NextRunDate: nextDate,
				Tags:        tags,
			}
			if err := tpl.Validate(); err != nil {
				return err
			}

			userID := currentUserID()
			templates, err := loadTemplates(ctx, store, userID)
			if err != nil {
				return err
			}

			templates = append(templates, tpl)
			if err := recurring.NewTemplateStore(store).Save(ctx, userID, templates); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created template %s (%s %s, next run %s)", tpl.ID, tpl.Cadence, tpl.Category, tpl.NextRunDate)))
			return nil
		},
	}

	cmd.Flags().StringVar(&templateType, "type", string(model.TypeExpense), "template type (income, expense)")
	cmd.Flags().Int64Var(&amount, "amount", 0, "amount in the smallest currency unit")
	cmd.Flags().StringVar(&category, "category", "", "category name")
	cmd.Flags().StringVar(&subcategory, "subcategory", "", "subcategory name")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&cadence, "cadence", string(model.CadenceMonthly), "cadence (weekly, monthly)")
	cmd.Flags().StringVar(&nextRun, "next", "", "next run date (YYYY-MM-DD, default today)")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "tags")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func listTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recurring templates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			templates, err := loadTemplates(ctx, store, currentUserID())
			if err != nil {
				return err
			}

			if len(templates) == 0 {
				fmt.Println(cli.InfoStyle.Render("No recurring templates. Use 'siaflow recurring add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("ID"),
				cli.HeaderStyle.Render("Type"),
				cli.HeaderStyle.Render("Amount"),
				cli.HeaderStyle.Render("Category"),
				cli.HeaderStyle.Render("Cadence"),
				cli.HeaderStyle.Render("Next Run"),
				cli.HeaderStyle.Render("Description"))

			for _, tpl := range templates {
				category := tpl.Category
				if tpl.Subcategory != "" {
					category += " / " + tpl.Subcategory
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
					tpl.ID, tpl.Type, tpl.Amount, category, tpl.Cadence, tpl.NextRunDate, tpl.Description)
			}

			return nil
		},
	}
}

func editTemplateCmd() *cobra.Command {
	var (
		templateType string
		amount       int64
		category     string
		subcategory  string
		description  string
		cadence      string
		nextRun      string
		tags         []string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a recurring template",
		Long: `Update fields of an existing template. Only flags that are set are
applied. Changing the cadence takes effect on the next advance.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			userID := currentUserID()
			templates, err := loadTemplates(ctx, store, userID)
			if err != nil {
				return err
			}

			idx := -1
			for i := range templates {
				if templates[i].ID == args[0] {
					idx = i
					break
				}
			}
			if idx < 0 {
				return fmt.Errorf("template %s: %w", args[0], common.ErrNotFound)
			}

			tpl := &templates[idx]
			if cmd.Flags().Changed("type") {
				tpl.Type = model.TransactionType(templateType)
			}
			if cmd.Flags().Changed("amount") {
				tpl.Amount = amount
			}
			if cmd.Flags().Changed("category") {
				tpl.Category = category
				tpl.Subcategory = ""
			}
			if cmd.Flags().Changed("subcategory") {
				tpl.Subcategory = subcategory
			}
			if cmd.Flags().Changed("description") {
				tpl.Description = description
			}
			if cmd.Flags().Changed("cadence") {
				tpl.Cadence = model.Cadence(cadence)
			}
			if cmd.Flags().Changed("next") {
				tpl.NextRunDate, err = model.ParseDate(nextRun)
				if err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("tags") {
				tpl.Tags = tags
			}

			if err := tpl.Validate(); err != nil {
				return err
			}

			if err := recurring.NewTemplateStore(store).Save(ctx, userID, templates); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated template %s", tpl.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&templateType, "type", "", "template type (income, expense)")
	cmd.Flags().Int64Var(&amount, "amount", 0, "amount in the smallest currency unit")
	cmd.Flags().StringVar(&category, "category", "", "category name (clears the subcategory)")
	cmd.Flags().StringVar(&subcategory, "subcategory", "", "subcategory name")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&cadence, "cadence", "", "cadence (weekly, monthly)")
	cmd.Flags().StringVar(&nextRun, "next", "", "next run date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "tags")

	return cmd
}

func deleteTemplateCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recurring template",
		Long:  `Delete a template. Transactions already materialized from it are kept.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			userID := currentUserID()
			templates, err := loadTemplates(ctx, store, userID)
			if err != nil {
				return err
			}

			kept := templates[:0]
			found := false
			for _, tpl := range templates {
				if tpl.ID == args[0] {
					found = true
					continue
				}
				kept = append(kept, tpl)
			}
			if !found {
				return fmt.Errorf("template %s: %w", args[0], common.ErrNotFound)
			}

			if !confirm(fmt.Sprintf("Are you sure you want to delete template %s?", args[0]), force) {
				fmt.Println("Deletion cancelled.")
				return nil
			}

			if err := recurring.NewTemplateStore(store).Save(ctx, userID, kept); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted template %s", args[0])))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")

	return cmd
}
