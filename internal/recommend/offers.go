package recommend

import (
	"sort"

	"github.com/ternarybob/spendsense/internal/guardrails"
	"github.com/ternarybob/spendsense/internal/models"
	"github.com/ternarybob/spendsense/internal/personas"
	"github.com/ternarybob/spendsense/internal/signals"
)

// BuildFacts collects the attributes offer eligibility rules are checked against
func BuildFacts(groups signals.Groups, accounts []models.Account) guardrails.Facts {
	facts := guardrails.Facts{
		CreditUtilization:   groups.Credit.OverallUtilization,
		HasCredit:           groups.Credit.AccountCount > 0,
		MonthlyIncome:       groups.Income.MonthlyIncome,
		EmergencyFundMonths: groups.Savings.EmergencyFundMonths,
		ActiveTags:          signals.ActiveTags(groups),
	}
	seenTypes := make(map[models.AccountType]bool)
	seenSubtypes := make(map[string]bool)
	for _, account := range accounts {
		if !seenTypes[account.Type] {
			seenTypes[account.Type] = true
			facts.AccountTypes = append(facts.AccountTypes, account.Type)
		}
		if !seenSubtypes[account.Subtype] {
			seenSubtypes[account.Subtype] = true
			facts.AccountSubtypes = append(facts.AccountSubtypes, account.Subtype)
		}
	}
	return facts
}

// SelectOffers returns eligible, non-predatory partner offers tagged for the persona
func SelectOffers(persona personas.Result, groups signals.Groups, accounts []models.Account, catalog *models.Catalog, limit int) []OfferRecommendation {
	if catalog == nil {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	facts := BuildFacts(groups, accounts)
	type candidate struct {
		offer   models.PartnerOffer
		matched []string
	}
	var candidates []candidate
	for _, offer := range catalog.Offers {
		if !offer.HasPersona(string(persona.Type)) || guardrails.IsPredatory(offer) {
			continue
		}
		if ok, _ := guardrails.CheckEligibility(offer.Eligibility, facts); !ok {
			continue
		}
		candidates = append(candidates, candidate{offer: offer, matched: matchTags(offer.SignalTags, facts.ActiveTags)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return len(candidates[i].matched) > len(candidates[j].matched)
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	offers := make([]OfferRecommendation, 0, len(candidates))
	for _, c := range candidates {
		citations := PersonaCitations(persona, groups)
		citations = dedupeCitations(append(citations, TagCitations(c.matched, groups)...))

		explanation := PersonaExplanation(persona, groups)
		if c.offer.EligibilityExplanation != "" {
			explanation += " " + c.offer.EligibilityExplanation
		}

		offers = append(offers, OfferRecommendation{
			ID:             RecommendationID(persona.Type, c.offer.ID),
			Offer:          c.offer,
			RelevanceScore: RelevanceScore(len(c.matched)),
			Rationale: Rationale{
				PersonaType: persona.Type,
				Confidence:  persona.Confidence,
				Explanation: explanation,
				Citations:   citations,
				KeySignals:  c.matched,
			},
			PersonaType: persona.Type,
			Confidence:  persona.Confidence,
		})
	}
	return offers
}
