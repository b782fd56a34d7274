package personas

import (
	"github.com/ternarybob/spendsense/internal/signals"
)

// Persona confidences
const (
	ConfidenceHighUtilization   = 0.95
	ConfidenceVariableIncome    = 0.90
	ConfidenceSubscriptionHeavy = 0.85
	ConfidenceSavingsBuilder    = 0.80
	ConfidenceBalanced          = 0.60
)

// Criterion names reported in Result.Signals
const (
	CriterionOverallUtilization = "overall_utilization"
	CriterionCardUtilization    = "card_utilization"
	CriterionInterestCharges    = signals.FlagInterestCharges
	CriterionOverdue            = signals.FlagOverdue
	CriterionMinimumPayment     = signals.FlagMinimumPaymentOnly
	CriterionMedianPayGap       = "median_pay_gap"
	CriterionCashBuffer         = "cash_flow_buffer"
	CriterionSubscriptionCount  = "subscription_count"
	CriterionSubscriptionSpend  = "monthly_recurring_spend"
	CriterionSubscriptionShare  = "subscription_share"
	CriterionSavingsGrowth      = "savings_growth_rate"
	CriterionSavingsInflow      = "monthly_savings_inflow"
	CriterionLowUtilization     = "low_utilization"
	CriterionDefault            = "default"
)

// DefaultThresholds returns the persona rule cutoffs
func DefaultThresholds() Thresholds {
	return Thresholds{
		Utilization:           signals.HighUtilizationThreshold,
		VariableGapDays:       signals.VariableIncomeGapDays,
		CashBufferMonths:      signals.LowCashBufferMonths,
		SubscriptionCount:     signals.SubscriptionCountMin,
		SubscriptionSpend:     signals.RecurringSpendThreshold,
		SubscriptionShare:     signals.PercentOfSpendThreshold,
		SavingsGrowthRate:     signals.SavingsGrowthThreshold,
		SavingsMonthlyInflow:  signals.SavingsInflowThreshold,
		SavingsMaxUtilization: signals.SavingsUtilizationCeiling,
	}
}

// rule matches a persona. criteria returns the satisfied criteria; a nil result means no match.
type rule struct {
	persona    PersonaType
	confidence float64
	criteria   func(t Thresholds, g signals.Groups) []string
}

// Classifier assigns personas by evaluating rules in priority order
type Classifier struct {
	thresholds Thresholds
	rules      []rule
}

// NewClassifier creates a classifier with the default thresholds
func NewClassifier() *Classifier {
	return &Classifier{
		thresholds: DefaultThresholds(),
		rules: []rule{
			{persona: HighUtilization, confidence: ConfidenceHighUtilization, criteria: highUtilization},
			{persona: VariableIncome, confidence: ConfidenceVariableIncome, criteria: variableIncome},
			{persona: SubscriptionHeavy, confidence: ConfidenceSubscriptionHeavy, criteria: subscriptionHeavy},
			{persona: SavingsBuilder, confidence: ConfidenceSavingsBuilder, criteria: savingsBuilder},
			{persona: Balanced, confidence: ConfidenceBalanced, criteria: balanced},
		},
	}
}

// Assign returns the first persona whose rule matches. Balanced always matches, so Assign is total.
func (c *Classifier) Assign(g signals.Groups) Result {
	for _, r := range c.rules {
		if matched := r.criteria(c.thresholds, g); matched != nil {
			return Result{Type: r.persona, Confidence: r.confidence, Signals: matched}
		}
	}
	return Result{Type: Balanced, Confidence: ConfidenceBalanced, Signals: []string{CriterionDefault}}
}

// MatchedRules returns every persona whose rule matches, in priority order
func (c *Classifier) MatchedRules(g signals.Groups) []Result {
	var results []Result
	for _, r := range c.rules {
		if matched := r.criteria(c.thresholds, g); matched != nil {
			results = append(results, Result{Type: r.persona, Confidence: r.confidence, Signals: matched})
		}
	}
	return results
}

// Confidence returns the fixed confidence for a persona
func Confidence(p PersonaType) float64 {
	switch p {
	case HighUtilization:
		return ConfidenceHighUtilization
	case VariableIncome:
		return ConfidenceVariableIncome
	case SubscriptionHeavy:
		return ConfidenceSubscriptionHeavy
	case SavingsBuilder:
		return ConfidenceSavingsBuilder
	default:
		return ConfidenceBalanced
	}
}

func highUtilization(t Thresholds, g signals.Groups) []string {
	var matched []string
	credit := g.Credit
	if credit.AccountCount > 0 && credit.OverallUtilization >= t.Utilization {
		matched = append(matched, CriterionOverallUtilization)
	}
	if card, ok := credit.MaxCardUtilization(); ok && card.Utilization >= t.Utilization {
		matched = append(matched, CriterionCardUtilization)
	}
	for _, flag := range []string{signals.FlagInterestCharges, signals.FlagOverdue, signals.FlagMinimumPaymentOnly} {
		if credit.HasFlag(flag) {
			matched = append(matched, flag)
		}
	}
	return matched
}

func variableIncome(t Thresholds, g signals.Groups) []string {
	income := g.Income
	if income.Frequency == signals.FrequencyUnknown || income.Frequency == "" {
		return nil
	}
	if income.MedianGapDays > t.VariableGapDays && income.BufferMonths < t.CashBufferMonths {
		return []string{CriterionMedianPayGap, CriterionCashBuffer}
	}
	return nil
}

func subscriptionHeavy(t Thresholds, g signals.Groups) []string {
	subs := g.Subscriptions
	if subs.Count < t.SubscriptionCount {
		return nil
	}
	matched := []string{CriterionSubscriptionCount}
	if subs.MonthlyRecurringSpend >= t.SubscriptionSpend {
		matched = append(matched, CriterionSubscriptionSpend)
	}
	if subs.PercentageOfSpend >= t.SubscriptionShare {
		matched = append(matched, CriterionSubscriptionShare)
	}
	if len(matched) == 1 {
		return nil
	}
	return matched
}

func savingsBuilder(t Thresholds, g signals.Groups) []string {
	if g.Credit.OverallUtilization >= t.SavingsMaxUtilization {
		return nil
	}
	var matched []string
	if g.Savings.GrowthRate >= t.SavingsGrowthRate {
		matched = append(matched, CriterionSavingsGrowth)
	}
	if g.Savings.MonthlyInflow >= t.SavingsMonthlyInflow {
		matched = append(matched, CriterionSavingsInflow)
	}
	if len(matched) == 0 {
		return nil
	}
	return append(matched, CriterionLowUtilization)
}

func balanced(Thresholds, signals.Groups) []string {
	return []string{CriterionDefault}
}
