// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/siamakdehbokri-hub/siaflowtest/internal/model"
)

// KeyValue is a synchronous keyed blob store. The recurring template
// collection is persisted through it as a single serialized value per
// user, which lets tests substitute an in-memory fake.
type KeyValue interface {
	GetValue(ctx context.Context, key string) (string, bool, error)
	SetValue(ctx context.Context, key, value string) error
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	KeyValue

	// Transaction operations
	SaveTransaction(ctx context.Context, txn *model.Transaction) error
	ListTransactions(ctx context.Context, limit int) ([]model.Transaction, error)
	TransactionCount(ctx context.Context) (int, error)

	// Category operations
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	CreateCategory(ctx context.Context, name string, categoryType model.TransactionType, subcategories []string) (*model.Category, error)
	DeleteCategory(ctx context.Context, id int) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
