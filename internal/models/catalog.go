package models

// ContentItem is one curated piece of financial education content
type ContentItem struct {
	ID          string   `yaml:"id" json:"id" validate:"required"`
	Title       string   `yaml:"title" json:"title" validate:"required"`
	Summary     string   `yaml:"summary" json:"summary" validate:"required"`
	Body        string   `yaml:"body" json:"body"` // Markdown
	CTA         string   `yaml:"cta" json:"cta"`
	Source      string   `yaml:"source" json:"source"`
	PersonaTags []string `yaml:"persona_tags" json:"persona_tags" validate:"required,min=1"`
	SignalTags  []string `yaml:"signal_tags" json:"signal_tags"`
}

// HasPersona reports whether the item is tagged for the persona
func (c ContentItem) HasPersona(persona string) bool {
	for _, p := range c.PersonaTags {
		if p == persona {
			return true
		}
	}
	return false
}

// EligibilityRules are the AND-combined requirements for a partner offer.
// Utilization bounds are fractions (0.30 = 30%).
type EligibilityRules struct {
	MinCreditUtilization    *float64 `yaml:"min_credit_utilization" json:"min_credit_utilization,omitempty" validate:"omitempty,gte=0,lte=1"`
	MaxCreditUtilization    *float64 `yaml:"max_credit_utilization" json:"max_credit_utilization,omitempty" validate:"omitempty,gte=0,lte=1"`
	MinMonthlyIncome        *int64   `yaml:"min_monthly_income" json:"min_monthly_income,omitempty" validate:"omitempty,gte=0"`
	MinEmergencyFundMonths  *float64 `yaml:"min_emergency_fund_months" json:"min_emergency_fund_months,omitempty" validate:"omitempty,gte=0"`
	MaxEmergencyFundMonths  *float64 `yaml:"max_emergency_fund_months" json:"max_emergency_fund_months,omitempty" validate:"omitempty,gte=0"`
	RequiredAccountTypes    []string `yaml:"required_account_types" json:"required_account_types,omitempty"`
	ExcludedAccountSubtypes []string `yaml:"excluded_account_subtypes" json:"excluded_account_subtypes,omitempty"`
	RequiredSignals         []string `yaml:"required_signals" json:"required_signals,omitempty"`
	ExcludedSignals         []string `yaml:"excluded_signals" json:"excluded_signals,omitempty"`
}

// PartnerOffer is a partner product that can be surfaced next to education content
type PartnerOffer struct {
	ID                     string           `yaml:"id" json:"id" validate:"required"`
	Title                  string           `yaml:"title" json:"title" validate:"required"`
	Provider               string           `yaml:"provider" json:"provider" validate:"required"`
	OfferType              string           `yaml:"offer_type" json:"offer_type" validate:"required"`
	Summary                string           `yaml:"summary" json:"summary"`
	Benefits               []string         `yaml:"benefits" json:"benefits"`
	EligibilityExplanation string           `yaml:"eligibility_explanation" json:"eligibility_explanation"`
	CTA                    string           `yaml:"cta" json:"cta"`
	CTAURL                 string           `yaml:"cta_url" json:"cta_url" validate:"omitempty,url"`
	Disclaimer             string           `yaml:"disclaimer" json:"disclaimer"`
	APR                    *float64         `yaml:"apr" json:"apr,omitempty" validate:"omitempty,gte=0"`
	PersonaTags            []string         `yaml:"persona_tags" json:"persona_tags" validate:"required,min=1"`
	SignalTags             []string         `yaml:"signal_tags" json:"signal_tags"`
	Eligibility            EligibilityRules `yaml:"eligibility_rules" json:"eligibility_rules"`
}

// HasPersona reports whether the offer is tagged for the persona
func (o PartnerOffer) HasPersona(persona string) bool {
	for _, p := range o.PersonaTags {
		if p == persona {
			return true
		}
	}
	return false
}

// Catalog is the content the recommendation generator selects from
type Catalog struct {
	Version   string         `yaml:"version" json:"version"`
	Education []ContentItem  `yaml:"education" json:"education" validate:"dive"`
	Offers    []PartnerOffer `yaml:"partner_offers" json:"partner_offers" validate:"dive"`
}
