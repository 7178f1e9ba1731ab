package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/siamakdehbokri-hub/siaflowtest/internal/common"
	"github.com/siamakdehbokri-hub/siaflowtest/internal/model"
)

// GetCategories returns all active categories ordered by name.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, type, subcategories, created_at, is_active
		FROM categories
		WHERE is_active = 1
		ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		cat, scanErr := scanCategory(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// GetCategoryByName returns an active category by its name, or nil if
// no such category exists.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, type, subcategories, created_at, is_active
		FROM categories
		WHERE name = ? AND is_active = 1`

	row := s.db.QueryRowContext(ctx, query, name)
	cat, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &cat, nil
}

// CreateCategory creates a new category. Creating a name that exists
// as an inactive category reactivates it instead.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, name string, categoryType model.TransactionType, subcategories []string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if !categoryType.IsValid() {
		return nil, fmt.Errorf("invalid category type %q", categoryType)
	}

	existing, err := s.getCategoryAnyState(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing category: %w", err)
	}
	if existing != nil {
		if existing.IsActive {
			return nil, fmt.Errorf("category %q: %w", name, common.ErrDuplicateEntry)
		}
		if _, err := s.db.ExecContext(ctx, `UPDATE categories SET is_active = 1 WHERE id = ?`, existing.ID); err != nil {
			return nil, fmt.Errorf("failed to reactivate category: %w", err)
		}
		existing.IsActive = true
		slog.Info("reactivated existing category", "name", name)
		return existing, nil
	}

	subs, err := marshalTags(subcategories)
	if err != nil {
		return nil, fmt.Errorf("failed to encode subcategories: %w", err)
	}

	now := time.Now()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (name, type, subcategories, created_at, is_active) VALUES (?, ?, ?, ?, 1)`,
		name, string(categoryType), subs, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category ID: %w", err)
	}

	category := &model.Category{
		ID:            int(id),
		Name:          name,
		Type:          categoryType,
		Subcategories: subcategories,
		CreatedAt:     now,
		IsActive:      true,
	}

	slog.Info("created new category", "name", name, "id", id)
	return category, nil
}

// DeleteCategory soft-deletes a category by marking it inactive.
// Transactions and templates referencing it by name are untouched.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `UPDATE categories SET is_active = 0 WHERE id = ? AND is_active = 1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}

	slog.Info("deleted category", "id", id)
	return nil
}

func (s *SQLiteStorage) getCategoryAnyState(ctx context.Context, name string) (*model.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, type, subcategories, created_at, is_active FROM categories WHERE name = ?`, name)
	cat, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (model.Category, error) {
	var (
		cat     model.Category
		catType string
		subs    sql.NullString
	)

	err := row.Scan(&cat.ID, &cat.Name, &catType, &subs, &cat.CreatedAt, &cat.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, err
	}
	if err != nil {
		return model.Category{}, fmt.Errorf("failed to scan category: %w", err)
	}

	cat.Type = model.TransactionType(catType)
	cat.Subcategories, err = unmarshalTags(subs)
	if err != nil {
		return model.Category{}, fmt.Errorf("category %s has malformed subcategories: %w", cat.Name, err)
	}

	return cat, nil
}
