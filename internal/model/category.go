package model

import "time"

// Category is a named spending or income bucket with an optional set
// of subcategory labels. Templates and transactions reference it by
// name only.
type Category struct {
	CreatedAt     time.Time
	Name          string
	Type          TransactionType
	Subcategories []string
	ID            int
	IsActive      bool
}

// HasSubcategory reports whether name is one of the category's
// subcategory labels.
func (c *Category) HasSubcategory(name string) bool {
	for _, sub := range c.Subcategories {
		if sub == name {
			return true
		}
	}
	return false
}
