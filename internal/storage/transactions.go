package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/siamakdehbokri-hub/siaflowtest/internal/model"
)

// SaveTransaction persists a single committed transaction.
func (s *SQLiteStorage) SaveTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	tags, err := marshalTags(txn.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	createdAt := txn.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO transactions (id, type, amount, category, subcategory, description, date, is_recurring, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		txn.ID,
		string(txn.Type),
		txn.Amount,
		txn.Category,
		nullableString(txn.Subcategory),
		txn.Description,
		txn.Date.String(),
		txn.IsRecurring,
		tags,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", txn.ID, err)
	}

	slog.Debug("saved transaction",
		"id", txn.ID,
		"date", txn.Date,
		"amount", txn.Amount,
		"recurring", txn.IsRecurring)
	return nil
}

// ListTransactions returns the most recent transactions, newest first.
// A non-positive limit returns all transactions.
func (s *SQLiteStorage) ListTransactions(ctx context.Context, limit int) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, type, amount, category, subcategory, description, date, is_recurring, tags, created_at
		FROM transactions
		ORDER BY date DESC, created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		transactions = append(transactions, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

// TransactionCount returns the total number of stored transactions.
func (s *SQLiteStorage) TransactionCount(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func scanTransaction(rows *sql.Rows) (model.Transaction, error) {
	var (
		txn         model.Transaction
		txnType     string
		subcategory sql.NullString
		description sql.NullString
		date        string
		tags        sql.NullString
	)

	err := rows.Scan(
		&txn.ID,
		&txnType,
		&txn.Amount,
		&txn.Category,
		&subcategory,
		&description,
		&date,
		&txn.IsRecurring,
		&tags,
		&txn.CreatedAt,
	)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to scan transaction: %w", err)
	}

	txn.Type = model.TransactionType(txnType)
	txn.Subcategory = subcategory.String
	txn.Description = description.String

	txn.Date, err = model.ParseDate(date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %s has malformed date: %w", txn.ID, err)
	}

	txn.Tags, err = unmarshalTags(tags)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %s has malformed tags: %w", txn.ID, err)
	}

	return txn, nil
}

func marshalTags(tags []string) (sql.NullString, error) {
	if len(tags) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalTags(tags sql.NullString) ([]string, error) {
	if !tags.Valid || tags.String == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(tags.String), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
