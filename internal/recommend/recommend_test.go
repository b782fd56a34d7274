package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/spendsense/internal/models"
	"github.com/ternarybob/spendsense/internal/personas"
	"github.com/ternarybob/spendsense/internal/signals"
)

func testCatalog() *models.Catalog {
	return &models.Catalog{
		Version: "test",
		Education: []models.ContentItem{
			{
				ID:          "edu_credit_basics",
				Title:       "Credit utilization basics",
				Summary:     "How utilization affects your score",
				PersonaTags: []string{"high_utilization"},
				SignalTags:  []string{"high_credit_utilization"},
			},
			{
				ID:          "edu_interest",
				Title:       "Reducing interest costs",
				Summary:     "Paying down high-APR balances",
				PersonaTags: []string{"high_utilization"},
				SignalTags:  []string{"interest_charges", "high_utilization_50", "high_credit_utilization"},
			},
			{
				ID:          "edu_overdue",
				Title:       "Getting back on track",
				Summary:     "Handling overdue payments",
				PersonaTags: []string{"high_utilization"},
				SignalTags:  []string{"overdue"},
			},
			{
				ID:          "edu_autopay",
				Title:       "Setting up autopay",
				Summary:     "Never miss a due date",
				PersonaTags: []string{"high_utilization"},
				SignalTags:  []string{"interest_charges"},
			},
			{
				ID:          "edu_balanced",
				Title:       "Keeping things steady",
				Summary:     "Habits for balanced finances",
				PersonaTags: []string{"balanced"},
			},
		},
		Offers: []models.PartnerOffer{
			{
				ID:                     "offer_balance_transfer",
				Title:                  "0% balance transfer card",
				Provider:               "Example Bank",
				OfferType:              "balance_transfer_card",
				EligibilityExplanation: "You carry a balance that is accruing interest.",
				PersonaTags:            []string{"high_utilization"},
				SignalTags:             []string{"interest_charges"},
				Eligibility:            models.EligibilityRules{MinCreditUtilization: models.Float64Ptr(0.30)},
			},
			{
				ID:          "offer_payday",
				Title:       "Fast cash",
				Provider:    "Lender",
				OfferType:   "payday_loan",
				PersonaTags: []string{"high_utilization"},
			},
			{
				ID:          "offer_high_apr",
				Title:       "Personal loan",
				Provider:    "Lender",
				OfferType:   "personal_loan",
				APR:         models.Float64Ptr(59.0),
				PersonaTags: []string{"high_utilization"},
			},
			{
				ID:          "offer_savings",
				Title:       "High-yield savings",
				Provider:    "Example Bank",
				OfferType:   "savings_account",
				PersonaTags: []string{"high_utilization"},
				Eligibility: models.EligibilityRules{MaxCreditUtilization: models.Float64Ptr(0.30)},
			},
		},
	}
}

func highUtilizationGroups() signals.Groups {
	card := models.Account{
		ID:          "acc_card_4521",
		UserID:      "user_1",
		Type:        models.AccountTypeCredit,
		Subtype:     models.SubtypeCreditCard,
		Mask:        "4521",
		Balance:     680000,
		CreditLimit: models.Int64Ptr(1000000),
		APR:         models.Float64Ptr(22.99),
	}
	return signals.Groups{
		WindowDays: 30,
		Credit:     signals.NewCreditAnalyzer(signals.DefaultCreditConfig()).Analyze([]models.Account{card}),
	}
}

func highUtilizationPersona() personas.Result {
	return personas.Result{Type: personas.HighUtilization, Confidence: personas.ConfidenceHighUtilization}
}

func TestTemplateGenerator_GenerateEducation(t *testing.T) {
	gen := NewTemplateGenerator(arbor.NewLogger())

	items, err := gen.GenerateEducation(context.Background(), highUtilizationPersona(), highUtilizationGroups(), testCatalog(), 3)
	require.NoError(t, err)
	require.Len(t, items, 3)

	// Three matched tags first, then catalog order among single matches
	assert.Equal(t, "edu_interest", items[0].Content.ID)
	assert.Equal(t, 3, items[0].Score)
	assert.Equal(t, 5, items[0].RelevanceScore)
	assert.Equal(t, "edu_credit_basics", items[1].Content.ID)
	assert.Equal(t, "edu_autopay", items[2].Content.ID)
	assert.Equal(t, 4, items[1].RelevanceScore)
}

func TestTemplateGenerator_DefaultLimit(t *testing.T) {
	gen := NewTemplateGenerator(nil)

	items, err := gen.GenerateEducation(context.Background(), highUtilizationPersona(), highUtilizationGroups(), testCatalog(), 0)
	require.NoError(t, err)
	assert.Len(t, items, DefaultLimit)
}

func TestTemplateGenerator_GenerateRationale(t *testing.T) {
	gen := NewTemplateGenerator(nil)
	groups := highUtilizationGroups()
	persona := highUtilizationPersona()

	items, err := gen.GenerateEducation(context.Background(), persona, groups, testCatalog(), 1)
	require.NoError(t, err)
	require.Len(t, items, 1)

	rationale, err := gen.GenerateRationale(context.Background(), items[0], persona, groups)
	require.NoError(t, err)

	assert.Contains(t, rationale.Explanation, "card ending in 4521")
	assert.Contains(t, rationale.Explanation, "68%")
	assert.Contains(t, rationale.Explanation, "$6,800.00")
	assert.Contains(t, rationale.Explanation, "$10,000.00")
	assert.Equal(t, personas.HighUtilization, rationale.PersonaType)
	assert.Equal(t, 0.95, rationale.Confidence)
	assert.Equal(t, []string{"interest_charges", "high_utilization_50", "high_credit_utilization"}, rationale.KeySignals)

	assert.Contains(t, rationale.Citations, signals.DataPoint{Signal: "card_utilization", Value: "68%", Account: "card ending in 4521"})
	assert.Contains(t, rationale.Citations, signals.DataPoint{Signal: "monthly_interest", Value: "$130.28"})

	// Every cited value appears in the explanation
	for _, c := range rationale.Citations {
		assert.Contains(t, rationale.Explanation, c.Value)
	}

	// The credit_utilization citation is shared by two tags and appears once
	count := 0
	for _, c := range rationale.Citations {
		if c.Signal == "credit_utilization" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestGenerateRecommendations(t *testing.T) {
	gen := NewTemplateGenerator(nil)

	recs, err := GenerateRecommendations(context.Background(), gen, highUtilizationPersona(), highUtilizationGroups(), testCatalog(), 3)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	for _, rec := range recs {
		assert.NotEmpty(t, rec.Rationale.Citations)
		assert.Equal(t, personas.HighUtilization, rec.PersonaType)
		assert.Contains(t, rec.ID, "rec_")
	}

	again, err := GenerateRecommendations(context.Background(), gen, highUtilizationPersona(), highUtilizationGroups(), testCatalog(), 3)
	require.NoError(t, err)
	assert.Equal(t, recs, again)
}

func TestGenerateRecommendations_Balanced(t *testing.T) {
	gen := NewTemplateGenerator(nil)
	persona := personas.Result{Type: personas.Balanced, Confidence: personas.ConfidenceBalanced}

	recs, err := GenerateRecommendations(context.Background(), gen, persona, signals.Groups{WindowDays: 30}, testCatalog(), 3)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.NotEmpty(t, recs[0].Rationale.Citations)
}

type uncitedGenerator struct {
	*TemplateGenerator
}

func (g uncitedGenerator) GenerateRationale(ctx context.Context, item EducationItem, persona personas.Result, groups signals.Groups) (Rationale, error) {
	return Rationale{PersonaType: persona.Type, Explanation: "No data here."}, nil
}

func TestGenerateRecommendations_MissingCitation(t *testing.T) {
	gen := uncitedGenerator{NewTemplateGenerator(nil)}

	_, err := GenerateRecommendations(context.Background(), gen, highUtilizationPersona(), highUtilizationGroups(), testCatalog(), 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingCitation))
}

func TestSelectOffers(t *testing.T) {
	accounts := []models.Account{{ID: "acc_card_4521", Type: models.AccountTypeCredit, Subtype: models.SubtypeCreditCard}}

	offers := SelectOffers(highUtilizationPersona(), highUtilizationGroups(), accounts, testCatalog(), 3)
	require.Len(t, offers, 1)
	assert.Equal(t, "offer_balance_transfer", offers[0].Offer.ID)
	assert.NotEmpty(t, offers[0].Rationale.Citations)
	assert.Contains(t, offers[0].Rationale.Explanation, "accruing interest")
	assert.Equal(t, []string{"interest_charges"}, offers[0].Rationale.KeySignals)
}

func TestRelevanceScore(t *testing.T) {
	tests := []struct {
		matched int
		want    int
	}{
		{0, 3},
		{1, 4},
		{2, 4},
		{3, 5},
		{8, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RelevanceScore(tt.matched), "matched=%d", tt.matched)
	}
}

func lowUtilizationCard(modify func(*models.Account)) signals.Groups {
	card := models.Account{
		ID:          "acc_card_1111",
		UserID:      "user_1",
		Type:        models.AccountTypeCredit,
		Subtype:     models.SubtypeCreditCard,
		Mask:        "1111",
		Balance:     10000,
		CreditLimit: models.Int64Ptr(1000000),
	}
	modify(&card)
	return signals.Groups{
		WindowDays: 30,
		Credit:     signals.NewCreditAnalyzer(signals.DefaultCreditConfig()).Analyze([]models.Account{card}),
	}
}

func TestGenerateRecommendations_OverdueAtLowUtilization(t *testing.T) {
	groups := lowUtilizationCard(func(a *models.Account) { a.IsOverdue = true })
	persona := personas.NewClassifier().Assign(groups)
	require.Equal(t, personas.HighUtilization, persona.Type)
	require.Equal(t, []string{personas.CriterionOverdue}, persona.Signals)

	recs, err := GenerateRecommendations(context.Background(), NewTemplateGenerator(nil), persona, groups, testCatalog(), 3)
	require.NoError(t, err)
	require.NotEmpty(t, recs)

	overdue := signals.DataPoint{Signal: "overdue_accounts", Value: "1", Account: "card ending in 1111"}
	for _, rec := range recs {
		explanation := rec.Rationale.Explanation
		assert.Contains(t, rec.Rationale.Citations, overdue, "recommendation %s", rec.Content.ID)
		assert.Contains(t, explanation, "1 credit account with a payment past due (card ending in 1111)")
		assert.NotContains(t, explanation, "below 30%")
		assert.NotContains(t, explanation, "interest")
		for _, c := range rec.Rationale.Citations {
			assert.NotEqual(t, "card_utilization", c.Signal)
			assert.Contains(t, explanation, c.Value)
		}
	}
}

func TestPersonaExplanation_InterestAtLowUtilization(t *testing.T) {
	groups := lowUtilizationCard(func(a *models.Account) {
		a.Balance = 20000
		a.APR = models.Float64Ptr(24.0)
	})
	persona := personas.NewClassifier().Assign(groups)
	require.Equal(t, []string{personas.CriterionInterestCharges}, persona.Signals)

	explanation := PersonaExplanation(persona, groups)
	assert.Contains(t, explanation, "$4.00 per month")
	assert.NotContains(t, explanation, "below 30%")
	assert.Equal(t, []signals.DataPoint{{Signal: "monthly_interest", Value: "$4.00"}}, PersonaCitations(persona, groups))
}

func TestPersonaExplanation_MinimumPaymentOnly(t *testing.T) {
	groups := lowUtilizationCard(func(a *models.Account) {
		a.MinimumPayment = models.Int64Ptr(2500)
		a.LastPayment = models.Int64Ptr(2500)
	})
	persona := personas.NewClassifier().Assign(groups)
	require.Equal(t, []string{personas.CriterionMinimumPayment}, persona.Signals)

	explanation := PersonaExplanation(persona, groups)
	assert.Contains(t, explanation, "1 credit account where the last payment was close to the minimum due (card ending in 1111)")
	assert.NotContains(t, explanation, "interest")
	assert.Contains(t, PersonaCitations(persona, groups), signals.DataPoint{Signal: "minimum_payment_accounts", Value: "1", Account: "card ending in 1111"})
}

func TestPersonaExplanation_BalancedWithoutExpenses(t *testing.T) {
	accounts := []models.Account{{
		ID:      "acc_savings",
		UserID:  "user_1",
		Type:    models.AccountTypeDepository,
		Subtype: models.SubtypeSavings,
		Balance: 500000,
	}}
	groups, err := signals.NewSignalComputer().ComputeSignals(accounts, nil, 30)
	require.NoError(t, err)
	persona := personas.NewClassifier().Assign(groups)
	require.Equal(t, personas.Balanced, persona.Type)

	explanation := PersonaExplanation(persona, groups)
	citations := PersonaCitations(persona, groups)

	assert.Contains(t, explanation, "across 1 signal category.")
	assert.NotContains(t, explanation, "999")
	assert.Contains(t, citations, signals.DataPoint{Signal: "emergency_fund", Value: "no recent expenses"})
	for _, c := range citations {
		assert.NotContains(t, c.Value, "999")
		assert.Contains(t, explanation, c.Value)
	}
}
