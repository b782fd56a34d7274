package recommend

import (
	"strings"

	"github.com/ternarybob/spendsense/internal/personas"
	"github.com/ternarybob/spendsense/internal/signals"
)

// PersonaCitations returns the evidence for the criteria that selected the persona
func PersonaCitations(persona personas.Result, g signals.Groups) []signals.DataPoint {
	switch persona.Type {
	case personas.HighUtilization:
		return highUtilizationCitations(personaCriteria(persona, g), g)
	case personas.VariableIncome:
		return []signals.DataPoint{
			{Signal: "median_pay_gap", Value: signals.FormatDays(g.Income.MedianGapDays)},
			{Signal: "cash_flow_buffer", Value: signals.FormatFundMonths(g.Income.BufferMonths)},
		}
	case personas.SubscriptionHeavy:
		return []signals.DataPoint{
			{Signal: "recurring_merchants", Value: signals.FormatCount(g.Subscriptions.Count)},
			{Signal: "monthly_recurring_spend", Value: signals.FormatMoney(g.Subscriptions.MonthlyRecurringSpend)},
			{Signal: "subscription_share", Value: signals.FormatPercentPrecise(g.Subscriptions.PercentageOfSpend)},
		}
	case personas.SavingsBuilder:
		return []signals.DataPoint{
			{Signal: "monthly_savings_inflow", Value: signals.FormatMoney(g.Savings.MonthlyInflow)},
			{Signal: "savings_growth_rate", Value: signals.FormatPercentPrecise(g.Savings.GrowthRate)},
			{Signal: "emergency_fund", Value: signals.FormatFundMonths(g.Savings.EmergencyFundMonths)},
		}
	default:
		return balancedCitations(g)
	}
}

// personaCriteria returns the criteria recorded on the result, re-deriving them when the caller left them empty
func personaCriteria(persona personas.Result, g signals.Groups) []string {
	if len(persona.Signals) > 0 {
		return persona.Signals
	}
	for _, r := range personas.NewClassifier().MatchedRules(g) {
		if r.Type == persona.Type {
			return r.Signals
		}
	}
	return nil
}

func hasCriterion(criteria []string, name string) bool {
	for _, c := range criteria {
		if c == name {
			return true
		}
	}
	return false
}

func utilizationMatched(criteria []string) bool {
	return hasCriterion(criteria, personas.CriterionOverallUtilization) || hasCriterion(criteria, personas.CriterionCardUtilization)
}

// flaggedCards counts cards matching the predicate and labels the first one
func flaggedCards(g signals.Groups, match func(signals.CardUtilization) bool) (int, string) {
	count := 0
	label := ""
	for _, card := range g.Credit.Cards {
		if !match(card) {
			continue
		}
		if label == "" {
			label = cardLabel(card)
		}
		count++
	}
	return count, label
}

func isOverdue(c signals.CardUtilization) bool     { return c.Overdue }
func isMinimumOnly(c signals.CardUtilization) bool { return c.MinimumOnly }

func highUtilizationCitations(criteria []string, g signals.Groups) []signals.DataPoint {
	var citations []signals.DataPoint

	if utilizationMatched(criteria) {
		if card, ok := g.Credit.MaxCardUtilization(); ok {
			account := cardLabel(card)
			citations = append(citations,
				signals.DataPoint{Signal: "card_utilization", Value: signals.FormatPercent(card.Utilization), Account: account},
				signals.DataPoint{Signal: "card_balance", Value: signals.FormatMoney(card.Balance), Account: account},
				signals.DataPoint{Signal: "credit_limit", Value: signals.FormatMoney(card.Limit), Account: account},
			)
		} else {
			citations = append(citations, signals.DataPoint{Signal: "credit_utilization", Value: signals.FormatPercent(g.Credit.OverallUtilization)})
		}
	}
	if hasCriterion(criteria, personas.CriterionOverdue) {
		if count, label := flaggedCards(g, isOverdue); count > 0 {
			citations = append(citations, signals.DataPoint{Signal: "overdue_accounts", Value: signals.FormatCount(count), Account: label})
		}
	}
	if hasCriterion(criteria, personas.CriterionMinimumPayment) {
		if count, label := flaggedCards(g, isMinimumOnly); count > 0 {
			citations = append(citations, signals.DataPoint{Signal: "minimum_payment_accounts", Value: signals.FormatCount(count), Account: label})
		}
	}
	if hasCriterion(criteria, personas.CriterionInterestCharges) && g.Credit.MonthlyInterest > 0 {
		citations = append(citations, signals.DataPoint{Signal: "monthly_interest", Value: signals.FormatMoney(g.Credit.MonthlyInterest)})
	}

	if len(citations) == 0 {
		return []signals.DataPoint{{Signal: "credit_utilization", Value: signals.FormatPercent(g.Credit.OverallUtilization)}}
	}
	return citations
}

func balancedCitations(g signals.Groups) []signals.DataPoint {
	citations := []signals.DataPoint{
		{Signal: "signal_categories", Value: signals.FormatCount(g.CategoriesWithData())},
	}
	if g.Credit.AccountCount > 0 {
		citations = append(citations, signals.DataPoint{Signal: "credit_utilization", Value: signals.FormatPercent(g.Credit.OverallUtilization)})
	}
	if g.Savings.AccountCount > 0 {
		citations = append(citations, signals.DataPoint{Signal: "emergency_fund", Value: signals.FormatFundMonths(g.Savings.EmergencyFundMonths)})
	}
	return citations
}

// TagCitations returns the evidence for every active tag, skipping inactive ones
func TagCitations(tags []string, g signals.Groups) []signals.DataPoint {
	var citations []signals.DataPoint
	for _, tag := range tags {
		if point, ok := signals.TagEvidence(tag, g); ok {
			citations = append(citations, point)
		}
	}
	return citations
}

// dedupeCitations keeps the first occurrence of each citation
func dedupeCitations(citations []signals.DataPoint) []signals.DataPoint {
	seen := make(map[signals.DataPoint]bool, len(citations))
	out := make([]signals.DataPoint, 0, len(citations))
	for _, c := range citations {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func cardLabel(card signals.CardUtilization) string {
	return "card ending in " + card.Mask
}

// signalLabel turns a signal name into readable words
func signalLabel(signal string) string {
	return strings.ReplaceAll(signal, "_", " ")
}
