package guardrails

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/spendsense/internal/models"
)

func TestCheckTone(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		wantOK         bool
		wantViolations []string
	}{
		{
			name:   "neutral language",
			text:   "Your card ending in 4521 is at 68% utilization.",
			wantOK: true,
		},
		{
			name:   "empty text",
			text:   "",
			wantOK: true,
		},
		{
			name:           "overspending with apostrophe",
			text:           "You're overspending on subscriptions",
			wantOK:         false,
			wantViolations: []string{"you're overspending"},
		},
		{
			name:           "overspending without apostrophe",
			text:           "Youre Overspending again",
			wantOK:         false,
			wantViolations: []string{"youre overspending"},
		},
		{
			name:           "multiple patterns",
			text:           "These were poor choices and reckless spending.",
			wantOK:         false,
			wantViolations: []string{"poor choices", "reckless"},
		},
		{
			name:   "word boundary",
			text:   "Carelessness aside, keep going.",
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, violations := CheckTone(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantViolations, violations)
		})
	}
}

func TestAppendDisclosure(t *testing.T) {
	text := AppendDisclosure("Pay down the highest APR card first.")
	assert.True(t, strings.HasSuffix(text, Disclaimer))
	assert.Equal(t, text, AppendDisclosure(text), "disclaimer should only be appended once")
	assert.Equal(t, Disclaimer, AppendDisclosure(""))
}

func TestIsPredatory(t *testing.T) {
	assert.True(t, IsPredatory(models.PartnerOffer{OfferType: "payday_loan"}))
	assert.True(t, IsPredatory(models.PartnerOffer{OfferType: "Title_Loan"}))
	assert.True(t, IsPredatory(models.PartnerOffer{OfferType: "personal_loan", APR: models.Float64Ptr(39.9)}))
	assert.False(t, IsPredatory(models.PartnerOffer{OfferType: "personal_loan", APR: models.Float64Ptr(36.0)}))
	assert.False(t, IsPredatory(models.PartnerOffer{OfferType: "savings_account"}))
}

func TestCheckEligibility(t *testing.T) {
	facts := Facts{
		CreditUtilization:   0.68,
		HasCredit:           true,
		MonthlyIncome:       450000,
		EmergencyFundMonths: 0.8,
		AccountTypes:        []models.AccountType{models.AccountTypeDepository, models.AccountTypeCredit},
		AccountSubtypes:     []string{models.SubtypeChecking, models.SubtypeCreditCard},
		ActiveTags:          []string{"high_utilization_50", "interest_charges"},
	}

	t.Run("no rules", func(t *testing.T) {
		ok, reasons := CheckEligibility(models.EligibilityRules{}, facts)
		assert.True(t, ok)
		assert.Empty(t, reasons)
	})

	t.Run("balance transfer card", func(t *testing.T) {
		rules := models.EligibilityRules{
			MinCreditUtilization: models.Float64Ptr(0.30),
			MinMonthlyIncome:     models.Int64Ptr(200000),
			RequiredAccountTypes: []string{"credit"},
			RequiredSignals:      []string{"interest_charges"},
		}
		ok, reasons := CheckEligibility(rules, facts)
		assert.True(t, ok)
		assert.Empty(t, reasons)
	})

	t.Run("every failing rule is reported", func(t *testing.T) {
		rules := models.EligibilityRules{
			MaxCreditUtilization:    models.Float64Ptr(0.30),
			MinMonthlyIncome:        models.Int64Ptr(500000),
			MinEmergencyFundMonths:  models.Float64Ptr(1.0),
			RequiredAccountTypes:    []string{"investment"},
			ExcludedAccountSubtypes: []string{models.SubtypeCreditCard},
			ExcludedSignals:         []string{"interest_charges"},
		}
		ok, reasons := CheckEligibility(rules, facts)
		require.False(t, ok)
		assert.Len(t, reasons, 6)
		assert.Contains(t, reasons, "credit utilization above 30%")
		assert.Contains(t, reasons, "already has a credit_card account")
	})

	t.Run("minimum utilization needs credit", func(t *testing.T) {
		rules := models.EligibilityRules{MinCreditUtilization: models.Float64Ptr(0.0)}
		ok, _ := CheckEligibility(rules, Facts{})
		assert.False(t, ok)
	})
}
