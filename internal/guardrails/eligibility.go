package guardrails

import (
	"fmt"
	"strings"

	"github.com/ternarybob/spendsense/internal/models"
)

// MaxOfferAPR is the APR above which an offer is treated as predatory
const MaxOfferAPR = 36.0

// Offer types that are never shown
var blockedOfferTypes = map[string]bool{
	"payday_loan": true,
	"title_loan":  true,
	"rent_to_own": true,
}

// Facts are the user attributes eligibility rules are evaluated against
type Facts struct {
	CreditUtilization   float64
	HasCredit           bool
	MonthlyIncome       int64 // Cents
	EmergencyFundMonths float64
	AccountTypes        []models.AccountType
	AccountSubtypes     []string
	ActiveTags          []string
}

// IsPredatory reports whether the offer is a blocked product type or carries an APR above MaxOfferAPR
func IsPredatory(offer models.PartnerOffer) bool {
	if blockedOfferTypes[strings.ToLower(offer.OfferType)] {
		return true
	}
	return offer.APR != nil && *offer.APR > MaxOfferAPR
}

// CheckEligibility evaluates every rule and returns the reasons any failed
func CheckEligibility(rules models.EligibilityRules, facts Facts) (bool, []string) {
	var reasons []string

	if rules.MinCreditUtilization != nil && (!facts.HasCredit || facts.CreditUtilization < *rules.MinCreditUtilization) {
		reasons = append(reasons, fmt.Sprintf("credit utilization below %.0f%%", *rules.MinCreditUtilization*100))
	}
	if rules.MaxCreditUtilization != nil && facts.CreditUtilization > *rules.MaxCreditUtilization {
		reasons = append(reasons, fmt.Sprintf("credit utilization above %.0f%%", *rules.MaxCreditUtilization*100))
	}
	if rules.MinMonthlyIncome != nil && facts.MonthlyIncome < *rules.MinMonthlyIncome {
		reasons = append(reasons, fmt.Sprintf("monthly income below %d cents", *rules.MinMonthlyIncome))
	}
	if rules.MinEmergencyFundMonths != nil && facts.EmergencyFundMonths < *rules.MinEmergencyFundMonths {
		reasons = append(reasons, fmt.Sprintf("emergency fund below %.1f months", *rules.MinEmergencyFundMonths))
	}
	if rules.MaxEmergencyFundMonths != nil && facts.EmergencyFundMonths > *rules.MaxEmergencyFundMonths {
		reasons = append(reasons, fmt.Sprintf("emergency fund above %.1f months", *rules.MaxEmergencyFundMonths))
	}

	for _, required := range rules.RequiredAccountTypes {
		if !containsAccountType(facts.AccountTypes, models.AccountType(required)) {
			reasons = append(reasons, "missing required account type "+required)
		}
	}
	for _, excluded := range rules.ExcludedAccountSubtypes {
		if contains(facts.AccountSubtypes, excluded) {
			reasons = append(reasons, "already has a "+excluded+" account")
		}
	}
	for _, required := range rules.RequiredSignals {
		if !contains(facts.ActiveTags, required) {
			reasons = append(reasons, "missing required signal "+required)
		}
	}
	for _, excluded := range rules.ExcludedSignals {
		if contains(facts.ActiveTags, excluded) {
			reasons = append(reasons, "excluded by signal "+excluded)
		}
	}

	return len(reasons) == 0, reasons
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func containsAccountType(values []models.AccountType, target models.AccountType) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
