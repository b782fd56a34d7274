package signals

import (
	"fmt"
	"time"

	"github.com/ternarybob/spendsense/internal/models"
)

var baseDate = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return baseDate.AddDate(0, 0, n)
}

func charge(id, merchant string, amount int64, date time.Time) models.Transaction {
	return models.Transaction{
		ID:              id,
		AccountID:       "acc_checking",
		Date:            date,
		Amount:          amount,
		MerchantName:    merchant,
		CategoryPrimary: "GENERAL_MERCHANDISE",
	}
}

func paycheck(id string, amount int64, date time.Time) models.Transaction {
	return models.Transaction{
		ID:              id,
		AccountID:       "acc_checking",
		Date:            date,
		Amount:          -amount,
		MerchantName:    "Employer Payroll",
		CategoryPrimary: models.CategoryIncome,
	}
}

// recurring builds n charges from the same merchant spaced gapDays apart
func recurring(merchant string, amount int64, n, gapDays int) []models.Transaction {
	txns := make([]models.Transaction, 0, n)
	for i := 0; i < n; i++ {
		txns = append(txns, charge(fmt.Sprintf("%s_%d", merchant, i), merchant, amount, day(i*gapDays)))
	}
	return txns
}

func creditCard(id string, balance, limit int64) models.Account {
	return models.Account{
		ID:          id,
		UserID:      "user_1",
		Type:        models.AccountTypeCredit,
		Subtype:     models.SubtypeCreditCard,
		Balance:     balance,
		CreditLimit: models.Int64Ptr(limit),
	}
}

func savingsAccount(id string, balance int64) models.Account {
	return models.Account{
		ID:      id,
		UserID:  "user_1",
		Type:    models.AccountTypeDepository,
		Subtype: models.SubtypeSavings,
		Balance: balance,
	}
}
