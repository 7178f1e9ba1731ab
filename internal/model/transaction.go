package model

import "time"

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

// Valid transaction types.
const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// IsValid reports whether the type is one of the known values.
func (t TransactionType) IsValid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction is a single committed financial transaction. Amounts are
// integers in the smallest currency unit. Category and subcategory are
// free-text labels referencing the category registry by name; no
// referential integrity is enforced.
type Transaction struct {
	CreatedAt   time.Time       `json:"createdAt"`
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory,omitempty"`
	Description string          `json:"description"`
	Tags        []string        `json:"tags,omitempty"`
	Date        Date            `json:"date"`
	Amount      int64           `json:"amount"`
	IsRecurring bool            `json:"isRecurring,omitempty"`
}
