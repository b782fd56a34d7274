package signals

import (
	"fmt"
	"sort"

	"github.com/ternarybob/spendsense/internal/models"
)

// Signal descriptions - static explanations of what each signal group measures
const (
	DescriptionSubscriptions = "Merchants charging at least three times on a regular cadence, amortized to a monthly figure and compared against window spend."
	DescriptionSavings       = "Savings-type balances, net inflow over the window, and how many months of expenses the balance would cover."
	DescriptionCredit        = "Balance against limit across credit accounts, estimated monthly interest, and payment behavior flags."
	DescriptionIncome        = "How regularly income arrives, how much each payment varies, and the monthly surplus or shortfall relative to expenses."
)

// SignalComputer orchestrates all signal computations
type SignalComputer struct {
	subscriptions *SubscriptionDetector
	savings       *SavingsAnalyzer
	credit        *CreditAnalyzer
	income        *IncomeAnalyzer
	validator     *InputValidator
}

// NewSignalComputer creates a new SignalComputer with default configurations
func NewSignalComputer() *SignalComputer {
	return &SignalComputer{
		subscriptions: NewSubscriptionDetector(DefaultSubscriptionConfig()),
		savings:       NewSavingsAnalyzer(DefaultSavingsConfig()),
		credit:        NewCreditAnalyzer(DefaultCreditConfig()),
		income:        NewIncomeAnalyzer(DefaultIncomeConfig()),
		validator:     NewInputValidator(),
	}
}

// ComputeSignals computes all four signal groups.
// Transactions must already be restricted to the window; no date filtering happens here.
func (c *SignalComputer) ComputeSignals(accounts []models.Account, transactions []models.Transaction, windowDays int) (Groups, error) {
	if windowDays <= 0 {
		return Groups{}, fmt.Errorf("%w: got %d", ErrInvalidWindow, windowDays)
	}
	if err := c.validator.Validate(accounts, transactions); err != nil {
		return Groups{}, err
	}

	return Groups{
		WindowDays:    windowDays,
		Subscriptions: c.subscriptions.Detect(transactions, windowDays),
		Savings:       c.savings.Analyze(accounts, transactions, windowDays),
		Credit:        c.credit.Analyze(accounts),
		Income:        c.income.Analyze(transactions, windowDays),
	}, nil
}

// CategoriesWithData counts signal groups that had enough input to say something
func (g Groups) CategoriesWithData() int {
	count := 0
	if g.Subscriptions.Count > 0 {
		count++
	}
	if g.Savings.AccountCount > 0 {
		count++
	}
	if g.Credit.AccountCount > 0 {
		count++
	}
	if g.Income.Frequency != FrequencyUnknown && g.Income.Frequency != "" {
		count++
	}
	return count
}

// sortTransactionsByDate orders transactions oldest first, breaking ties by ID
func sortTransactionsByDate(txns []models.Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		if txns[i].Date.Equal(txns[j].Date) {
			return txns[i].ID < txns[j].ID
		}
		return txns[i].Date.Before(txns[j].Date)
	})
}
