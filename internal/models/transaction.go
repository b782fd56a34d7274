package models

import "time"

// CategoryIncome is the primary category assigned to payroll and other income deposits
const CategoryIncome = "INCOME"

// Transaction is one ledger entry.
// Amount is signed minor units: positive = outflow (debit), negative = inflow (credit).
type Transaction struct {
	ID               string    `json:"transaction_id" validate:"required"`
	AccountID        string    `json:"account_id" validate:"required"`
	Date             time.Time `json:"date" validate:"required"`
	Amount           int64     `json:"amount"`
	MerchantName     string    `json:"merchant_name,omitempty"`
	MerchantEntityID string    `json:"merchant_entity_id,omitempty"`
	CategoryPrimary  string    `json:"category_primary"`
	CategoryDetailed string    `json:"category_detailed,omitempty"`
	Pending          bool      `json:"pending"`
}

// IsOutflow reports whether money left the account
func (t Transaction) IsOutflow() bool {
	return t.Amount > 0
}

// IsIncome reports whether the transaction is tagged as income
func (t Transaction) IsIncome() bool {
	return t.CategoryPrimary == CategoryIncome
}

// MerchantKey returns the grouping key for recurrence detection.
// The stable merchant entity is preferred over the display name.
func (t Transaction) MerchantKey() string {
	if t.MerchantEntityID != "" {
		return t.MerchantEntityID
	}
	return t.MerchantName
}
