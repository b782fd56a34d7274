package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/spendsense/internal/models"
	"github.com/ternarybob/spendsense/internal/personas"
	"github.com/ternarybob/spendsense/internal/signals"
)

// TemplateGenerator selects catalog items by tag overlap and fills persona text templates from signal data
type TemplateGenerator struct {
	logger arbor.ILogger
}

// NewTemplateGenerator creates a new template generator
func NewTemplateGenerator(logger arbor.ILogger) *TemplateGenerator {
	if logger == nil {
		logger = arbor.NewLogger()
	}
	return &TemplateGenerator{logger: logger}
}

// GenerateEducation returns up to limit catalog items tagged for the persona, ordered by matched active tags.
// Catalog order breaks ties.
func (g *TemplateGenerator) GenerateEducation(ctx context.Context, persona personas.Result, groups signals.Groups, catalog *models.Catalog, limit int) ([]EducationItem, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	active := signals.ActiveTags(groups)
	candidates := make([]EducationItem, 0, len(catalog.Education))
	for _, content := range catalog.Education {
		if !content.HasPersona(string(persona.Type)) {
			continue
		}
		matched := matchTags(content.SignalTags, active)
		candidates = append(candidates, EducationItem{
			Content:        content,
			MatchedTags:    matched,
			Score:          len(matched),
			RelevanceScore: RelevanceScore(len(matched)),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	g.logger.Debug().
		Str("persona", string(persona.Type)).
		Int("candidates", len(candidates)).
		Strs("active_tags", active).
		Msg("Selected education content")

	return candidates, nil
}

// GenerateRationale fills the persona template and cites the persona evidence plus every matched tag
func (g *TemplateGenerator) GenerateRationale(ctx context.Context, item EducationItem, persona personas.Result, groups signals.Groups) (Rationale, error) {
	citations := PersonaCitations(persona, groups)
	citations = append(citations, TagCitations(item.MatchedTags, groups)...)
	citations = dedupeCitations(citations)

	keySignals := make([]string, 0, len(item.MatchedTags))
	for _, tag := range item.MatchedTags {
		if signals.IsTagActive(tag, groups) {
			keySignals = append(keySignals, tag)
		}
	}

	explanation := PersonaExplanation(persona, groups)
	if related := relatedSignals(item.MatchedTags, groups); related != "" {
		explanation += " " + related
	}

	return Rationale{
		PersonaType: persona.Type,
		Confidence:  persona.Confidence,
		Explanation: explanation,
		Citations:   citations,
		KeySignals:  keySignals,
	}, nil
}

// PersonaExplanation renders the persona sentence from the same formatted values used for citations
func PersonaExplanation(persona personas.Result, g signals.Groups) string {
	switch persona.Type {
	case personas.HighUtilization:
		return highUtilizationExplanation(personaCriteria(persona, g), g)
	case personas.VariableIncome:
		return fmt.Sprintf(
			"Your income arrives about every %s, and your cash-flow buffer is %s. Planning your budget around your lowest expected month can smooth out the gaps between paychecks.",
			signals.FormatDays(g.Income.MedianGapDays),
			signals.FormatFundMonths(g.Income.BufferMonths),
		)
	case personas.SubscriptionHeavy:
		return fmt.Sprintf(
			"You have %s recurring subscriptions totaling about %s per month, %s of your spending. Reviewing them from time to time can free up money for other goals.",
			signals.FormatCount(g.Subscriptions.Count),
			signals.FormatMoney(g.Subscriptions.MonthlyRecurringSpend),
			signals.FormatPercentPrecise(g.Subscriptions.PercentageOfSpend),
		)
	case personas.SavingsBuilder:
		coverage := fmt.Sprintf("and your savings cover %s of expenses", signals.FormatMonths(g.Savings.EmergencyFundMonths))
		if g.Savings.EmergencyFundMonths >= signals.EmergencyFundSentinel {
			coverage = "and there are " + signals.FormatFundMonths(g.Savings.EmergencyFundMonths) + " drawing on your savings"
		}
		return fmt.Sprintf(
			"You are adding about %s per month to savings, a growth rate of %s, %s. Keeping that momentum builds a stronger safety net.",
			signals.FormatMoney(g.Savings.MonthlyInflow),
			signals.FormatPercentPrecise(g.Savings.GrowthRate),
			coverage,
		)
	default:
		return balancedExplanation(g)
	}
}

// highUtilizationExplanation describes only the criteria that fired, in citation order
func highUtilizationExplanation(criteria []string, g signals.Groups) string {
	var sentences []string

	if utilizationMatched(criteria) {
		if card, ok := g.Credit.MaxCardUtilization(); ok {
			sentences = append(sentences, fmt.Sprintf(
				"Your %s is at %s utilization (%s of a %s limit). Bringing this below 30%% can help your credit score.",
				cardLabel(card),
				signals.FormatPercent(card.Utilization),
				signals.FormatMoney(card.Balance),
				signals.FormatMoney(card.Limit),
			))
		} else {
			sentences = append(sentences, fmt.Sprintf(
				"Your overall credit utilization is %s. Bringing it below 30%% can help your credit score.",
				signals.FormatPercent(g.Credit.OverallUtilization),
			))
		}
	}
	if hasCriterion(criteria, personas.CriterionOverdue) {
		if count, label := flaggedCards(g, isOverdue); count > 0 {
			sentences = append(sentences, fmt.Sprintf(
				"You have %s with a payment past due (%s). Getting current can help avoid late fees and protect your credit history.",
				creditAccounts(count), label,
			))
		}
	}
	if hasCriterion(criteria, personas.CriterionMinimumPayment) {
		if count, label := flaggedCards(g, isMinimumOnly); count > 0 {
			sentences = append(sentences, fmt.Sprintf(
				"You have %s where the last payment was close to the minimum due (%s). Paying more than the minimum when you can shortens the time to clear the balance.",
				creditAccounts(count), label,
			))
		}
	}
	if hasCriterion(criteria, personas.CriterionInterestCharges) && g.Credit.MonthlyInterest > 0 {
		sentences = append(sentences, fmt.Sprintf(
			"Interest is currently costing you about %s per month. Paying down the highest-rate balance first can reduce interest charges.",
			signals.FormatMoney(g.Credit.MonthlyInterest),
		))
	}

	if len(sentences) == 0 {
		return fmt.Sprintf("Your overall credit utilization is %s.", signals.FormatPercent(g.Credit.OverallUtilization))
	}
	return strings.Join(sentences, " ")
}

func balancedExplanation(g signals.Groups) string {
	sentences := []string{fmt.Sprintf("Your finances look balanced across %s.", signalCategories(g.CategoriesWithData()))}
	if g.Credit.AccountCount > 0 {
		sentences = append(sentences, fmt.Sprintf("Your credit utilization is %s.", signals.FormatPercent(g.Credit.OverallUtilization)))
	}
	if g.Savings.AccountCount > 0 {
		if g.Savings.EmergencyFundMonths >= signals.EmergencyFundSentinel {
			sentences = append(sentences, "You have savings and "+signals.FormatFundMonths(g.Savings.EmergencyFundMonths)+" drawing on them.")
		} else {
			sentences = append(sentences, fmt.Sprintf("Your savings cover %s of expenses.", signals.FormatMonths(g.Savings.EmergencyFundMonths)))
		}
	}
	sentences = append(sentences, "Small, steady habits help keep them that way.")
	return strings.Join(sentences, " ")
}

func creditAccounts(n int) string {
	if n == 1 {
		return "1 credit account"
	}
	return signals.FormatCount(n) + " credit accounts"
}

func signalCategories(n int) string {
	if n == 1 {
		return "1 signal category"
	}
	return signals.FormatCount(n) + " signal categories"
}

// relatedSignals summarizes matched tag evidence as one sentence
func relatedSignals(tags []string, g signals.Groups) string {
	var parts []string
	for _, point := range TagCitations(tags, g) {
		parts = append(parts, signalLabel(point.Signal)+" "+point.Value)
	}
	if len(parts) == 0 {
		return ""
	}
	return "Related signals: " + strings.Join(dedupeStrings(parts), ", ") + "."
}

func matchTags(itemTags, active []string) []string {
	activeSet := make(map[string]bool, len(active))
	for _, tag := range active {
		activeSet[tag] = true
	}
	matched := []string{}
	for _, tag := range itemTags {
		if activeSet[tag] {
			matched = append(matched, tag)
		}
	}
	return dedupeStrings(matched)
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
