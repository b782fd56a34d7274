package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/spendsense/internal/catalog"
	"github.com/ternarybob/spendsense/internal/guardrails"
	"github.com/ternarybob/spendsense/internal/models"
	"github.com/ternarybob/spendsense/internal/personas"
	"github.com/ternarybob/spendsense/internal/recommend"
	"github.com/ternarybob/spendsense/internal/signals"
)

func highUtilizationAccounts() []models.Account {
	return []models.Account{
		{
			ID:          "acc_card_4521",
			UserID:      "user_1",
			Type:        models.AccountTypeCredit,
			Subtype:     models.SubtypeCreditCard,
			Mask:        "4521",
			Balance:     680000,
			CreditLimit: models.Int64Ptr(1000000),
			APR:         models.Float64Ptr(22.99),
		},
		{
			ID:      "acc_checking",
			UserID:  "user_1",
			Type:    models.AccountTypeDepository,
			Subtype: models.SubtypeChecking,
			Balance: 120000,
		},
	}
}

func highUtilizationTransactions() []models.Transaction {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	return []models.Transaction{
		{ID: "t1", AccountID: "acc_checking", Date: base, Amount: 4500, MerchantName: "Grocer", CategoryPrimary: "FOOD_AND_DRINK"},
		{ID: "t2", AccountID: "acc_card_4521", Date: base.AddDate(0, 0, 3), Amount: 12000, MerchantName: "Fuel Stop", CategoryPrimary: "TRANSPORTATION"},
	}
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	opts = append([]Option{WithCatalog(cat), WithLogger(arbor.NewLogger())}, opts...)
	return New(opts...)
}

func TestEngine_HighUtilizationScenario(t *testing.T) {
	e := newTestEngine(t, WithToneCheck(guardrails.CheckTone))

	result, err := e.Generate(context.Background(), highUtilizationAccounts(), highUtilizationTransactions(), 30, recommend.NewTemplateGenerator(nil))
	require.NoError(t, err)

	assert.Equal(t, personas.HighUtilization, result.PersonaType)
	assert.Equal(t, 0.95, result.Confidence)
	assert.Equal(t, 0.68, result.Signals.Credit.OverallUtilization)
	assert.Equal(t, guardrails.Disclaimer, result.Disclaimer)
	require.NotEmpty(t, result.Recommendations)
	assert.LessOrEqual(t, len(result.Recommendations), recommend.DefaultLimit)

	explanation := result.Recommendations[0].Rationale.Explanation
	assert.Contains(t, explanation, "68%")
	assert.Contains(t, explanation, "$6,800.00")
	assert.Contains(t, explanation, "$10,000.00")

	for _, rec := range result.Recommendations {
		assert.NotEmpty(t, rec.Rationale.Citations, "recommendation %s has no citations", rec.Content.ID)
		assert.True(t, rec.Content.HasPersona(string(personas.HighUtilization)))
	}
	assert.Empty(t, result.Offers)
}

// ninetyDayMiscSpend spreads one-off purchases across a 90-day window
func ninetyDayMiscSpend() []models.Transaction {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	merchants := []string{"Grocer", "Fuel Stop", "Hardware Store", "Bookshop", "Pharmacy", "Cafe", "Garden Centre", "Cinema", "Bakery", "Florist", "Pet Supplies", "Bike Shop"}
	txns := make([]models.Transaction, 0, len(merchants))
	for i, merchant := range merchants {
		account := "acc_checking"
		if i%2 == 1 {
			account = "acc_card_4521"
		}
		txns = append(txns, models.Transaction{
			ID:              fmt.Sprintf("misc_%02d", i),
			AccountID:       account,
			Date:            base.AddDate(0, 0, i*7+i%3),
			Amount:          int64(2500 + i*731),
			MerchantName:    merchant,
			CategoryPrimary: "GENERAL_MERCHANDISE",
		})
	}
	return txns
}

func TestEngine_HighUtilizationScenario90Days(t *testing.T) {
	e := newTestEngine(t, WithToneCheck(guardrails.CheckTone))

	result, err := e.Generate(context.Background(), highUtilizationAccounts(), ninetyDayMiscSpend(), 90, recommend.NewTemplateGenerator(nil))
	require.NoError(t, err)

	assert.Equal(t, 90, result.Signals.WindowDays)
	assert.Equal(t, 0, result.Signals.Subscriptions.Count)
	assert.Equal(t, personas.HighUtilization, result.PersonaType)
	assert.Equal(t, 0.95, result.Confidence)
	assert.Equal(t, 0.68, result.Signals.Credit.OverallUtilization)
	require.NotEmpty(t, result.Recommendations)

	for _, rec := range result.Recommendations {
		explanation := rec.Rationale.Explanation
		assert.Contains(t, explanation, "68%")
		assert.Contains(t, explanation, "$6,800.00")
		assert.Contains(t, explanation, "$10,000.00")
		assert.Contains(t, rec.Rationale.Citations, signals.DataPoint{Signal: "card_utilization", Value: "68%", Account: "card ending in 4521"})
	}
}

func TestEngine_NilGeneratorUsesTemplates(t *testing.T) {
	e := newTestEngine(t)

	result, err := e.Generate(context.Background(), highUtilizationAccounts(), highUtilizationTransactions(), 30, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Recommendations)
}

func TestEngine_Offers(t *testing.T) {
	e := newTestEngine(t, WithOffers(true))

	result, err := e.Generate(context.Background(), highUtilizationAccounts(), highUtilizationTransactions(), 30, nil)
	require.NoError(t, err)

	require.NotEmpty(t, result.Offers)
	for _, offer := range result.Offers {
		assert.False(t, guardrails.IsPredatory(offer.Offer))
		assert.NotEmpty(t, offer.Rationale.Citations)
	}
}

func TestEngine_Idempotent(t *testing.T) {
	e := newTestEngine(t, WithOffers(true))

	first, err := e.Generate(context.Background(), highUtilizationAccounts(), highUtilizationTransactions(), 30, nil)
	require.NoError(t, err)
	second, err := e.Generate(context.Background(), highUtilizationAccounts(), highUtilizationTransactions(), 30, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEngine_MissingCatalog(t *testing.T) {
	e := New()

	_, err := e.Generate(context.Background(), highUtilizationAccounts(), nil, 30, nil)
	assert.True(t, errors.Is(err, ErrMissingCatalog))
}

func TestEngine_PassesThroughSignalErrors(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Generate(context.Background(), highUtilizationAccounts(), nil, 0, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, signals.ErrInvalidWindow))

	bad := []models.Account{{ID: "acc", Type: "brokerage", Subtype: "x", UserID: "u"}}
	_, err = e.Generate(context.Background(), bad, nil, 30, nil)
	assert.True(t, errors.Is(err, signals.ErrInvalidInput))
}

func TestEngine_ToneViolation(t *testing.T) {
	strict := func(text string) (bool, []string) {
		return false, []string{"flagged"}
	}
	e := newTestEngine(t, WithToneCheck(strict))

	_, err := e.Generate(context.Background(), highUtilizationAccounts(), highUtilizationTransactions(), 30, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrToneViolation))
	assert.Contains(t, err.Error(), "flagged")
}

func TestEngine_CustomDisclaimerAndLimit(t *testing.T) {
	e := newTestEngine(t, WithDisclaimer("Educational only."), WithLimit(1))

	result, err := e.Generate(context.Background(), highUtilizationAccounts(), highUtilizationTransactions(), 30, nil)
	require.NoError(t, err)
	assert.Equal(t, "Educational only.", result.Disclaimer)
	assert.Len(t, result.Recommendations, 1)
}

func TestEngine_BalancedFallback(t *testing.T) {
	e := newTestEngine(t)

	result, err := e.Generate(context.Background(), nil, nil, 30, nil)
	require.NoError(t, err)
	assert.Equal(t, personas.Balanced, result.PersonaType)
	assert.Equal(t, 0.60, result.Confidence)
	for _, rec := range result.Recommendations {
		assert.NotEmpty(t, rec.Rationale.Citations)
	}
}
