package signals

// Signal tags used by catalog items. A tag is active when its condition holds for the current groups.
const (
	TagHighUtilization80     = FlagHighUtilization80
	TagHighUtilization50     = FlagHighUtilization50
	TagModerateUtilization30 = FlagModerateUtilization
	TagHighCreditUtilization = "high_credit_utilization"
	TagInterestCharges       = FlagInterestCharges
	TagOverdue               = FlagOverdue
	TagMinimumPaymentOnly    = FlagMinimumPaymentOnly
	TagSubscriptionHeavy     = "subscription_heavy"
	TagHighRecurringSpend    = "high_recurring_spend"
	TagVariableIncome        = "variable_income"
	TagIrregularIncome       = "irregular_income"
	TagStableIncome          = "stable_income"
	TagLowCashBuffer         = "low_cash_buffer"
	TagPositiveSavings       = "positive_savings"
	TagSavingsGrowth         = "savings_growth"
	TagLowEmergencyFund      = "low_emergency_fund"
)

// Tag thresholds
const (
	HighUtilizationThreshold  = 0.50
	SubscriptionCountMin      = 3
	RecurringSpendThreshold   = 5000 // $50.00 per month
	PercentOfSpendThreshold   = 0.10
	VariableIncomeGapDays     = 45.0
	LowCashBufferMonths       = 1.0
	SavingsGrowthThreshold    = 0.02
	SavingsInflowThreshold    = 20000 // $200.00 per month
	LowEmergencyFundMonths    = 3.0
	SavingsUtilizationCeiling = 0.30
)

// tagDefinition pairs a tag condition with the evidence it cites
type tagDefinition struct {
	tag      string
	active   func(g Groups) bool
	evidence func(g Groups) DataPoint
}

var tagDefinitions = []tagDefinition{
	{
		tag:      TagHighUtilization80,
		active:   func(g Groups) bool { return g.Credit.HasFlag(FlagHighUtilization80) },
		evidence: utilizationEvidence,
	},
	{
		tag:      TagHighUtilization50,
		active:   func(g Groups) bool { return g.Credit.HasFlag(FlagHighUtilization50) },
		evidence: utilizationEvidence,
	},
	{
		tag:      TagModerateUtilization30,
		active:   func(g Groups) bool { return g.Credit.HasFlag(FlagModerateUtilization) },
		evidence: utilizationEvidence,
	},
	{
		tag: TagHighCreditUtilization,
		active: func(g Groups) bool {
			return g.Credit.AccountCount > 0 && g.Credit.OverallUtilization >= HighUtilizationThreshold
		},
		evidence: utilizationEvidence,
	},
	{
		tag:    TagInterestCharges,
		active: func(g Groups) bool { return g.Credit.HasFlag(FlagInterestCharges) },
		evidence: func(g Groups) DataPoint {
			return DataPoint{Signal: "monthly_interest", Value: FormatMoney(g.Credit.MonthlyInterest)}
		},
	},
	{
		tag:    TagOverdue,
		active: func(g Groups) bool { return g.Credit.HasFlag(FlagOverdue) },
		evidence: func(g Groups) DataPoint {
			return cardEvidence(g, "overdue_accounts", func(c CardUtilization) bool { return c.Overdue })
		},
	},
	{
		tag:    TagMinimumPaymentOnly,
		active: func(g Groups) bool { return g.Credit.HasFlag(FlagMinimumPaymentOnly) },
		evidence: func(g Groups) DataPoint {
			return cardEvidence(g, "minimum_payment_accounts", func(c CardUtilization) bool { return c.MinimumOnly })
		},
	},
	{
		tag:    TagSubscriptionHeavy,
		active: func(g Groups) bool { return g.Subscriptions.Count >= SubscriptionCountMin },
		evidence: func(g Groups) DataPoint {
			return DataPoint{Signal: "recurring_merchants", Value: FormatCount(g.Subscriptions.Count)}
		},
	},
	{
		tag:    TagHighRecurringSpend,
		active: func(g Groups) bool { return g.Subscriptions.MonthlyRecurringSpend >= RecurringSpendThreshold },
		evidence: func(g Groups) DataPoint {
			return DataPoint{Signal: "monthly_recurring_spend", Value: FormatMoney(g.Subscriptions.MonthlyRecurringSpend)}
		},
	},
	{
		tag: TagVariableIncome,
		active: func(g Groups) bool {
			return g.Income.Frequency != FrequencyUnknown && g.Income.MedianGapDays > VariableIncomeGapDays
		},
		evidence: func(g Groups) DataPoint {
			return DataPoint{Signal: "median_pay_gap", Value: FormatDays(g.Income.MedianGapDays)}
		},
	},
	{
		tag:    TagIrregularIncome,
		active: func(g Groups) bool { return g.Income.Stability == StabilityVariable },
		evidence: func(g Groups) DataPoint {
			return DataPoint{Signal: "income_variability", Value: FormatPercent(g.Income.CoefficientOfVariation)}
		},
	},
	{
		tag:    TagStableIncome,
		active: func(g Groups) bool { return g.Income.Stability == StabilityStable },
		evidence: func(g Groups) DataPoint {
			return DataPoint{Signal: "income_frequency", Value: string(g.Income.Frequency)}
		},
	},
	{
		tag: TagLowCashBuffer,
		active: func(g Groups) bool {
			return g.Income.Frequency != FrequencyUnknown && g.Income.BufferMonths < LowCashBufferMonths
		},
		evidence: func(g Groups) DataPoint {
			return DataPoint{Signal: "cash_flow_buffer", Value: FormatFundMonths(g.Income.BufferMonths)}
		},
	},
	{
		tag:    TagPositiveSavings,
		active: func(g Groups) bool { return g.Savings.MonthlyInflow > 0 },
		evidence: func(g Groups) DataPoint {
			return DataPoint{Signal: "monthly_savings_inflow", Value: FormatMoney(g.Savings.MonthlyInflow)}
		},
	},
	{
		tag:    TagSavingsGrowth,
		active: func(g Groups) bool { return g.Savings.GrowthRate >= SavingsGrowthThreshold },
		evidence: func(g Groups) DataPoint {
			return DataPoint{Signal: "savings_growth_rate", Value: FormatPercentPrecise(g.Savings.GrowthRate)}
		},
	},
	{
		tag:    TagLowEmergencyFund,
		active: func(g Groups) bool { return g.Savings.EmergencyFundMonths < LowEmergencyFundMonths },
		evidence: func(g Groups) DataPoint {
			return DataPoint{Signal: "emergency_fund", Value: FormatFundMonths(g.Savings.EmergencyFundMonths)}
		},
	},
}

// ActiveTags returns every tag whose condition currently holds, in a fixed order
func ActiveTags(g Groups) []string {
	tags := []string{}
	for _, def := range tagDefinitions {
		if def.active(g) {
			tags = append(tags, def.tag)
		}
	}
	return tags
}

// IsTagActive reports whether a single tag is active
func IsTagActive(tag string, g Groups) bool {
	for _, def := range tagDefinitions {
		if def.tag == tag {
			return def.active(g)
		}
	}
	return false
}

// TagEvidence returns the data point that justifies a tag.
// ok is false for unknown or inactive tags.
func TagEvidence(tag string, g Groups) (DataPoint, bool) {
	for _, def := range tagDefinitions {
		if def.tag == tag {
			if !def.active(g) {
				return DataPoint{}, false
			}
			return def.evidence(g), true
		}
	}
	return DataPoint{}, false
}

// KnownTag reports whether the tag name is part of the vocabulary
func KnownTag(tag string) bool {
	for _, def := range tagDefinitions {
		if def.tag == tag {
			return true
		}
	}
	return false
}

func utilizationEvidence(g Groups) DataPoint {
	return DataPoint{Signal: "credit_utilization", Value: FormatPercent(g.Credit.OverallUtilization)}
}

// cardEvidence counts matching cards, naming the first one as the account hint
func cardEvidence(g Groups, signal string, match func(CardUtilization) bool) DataPoint {
	count := 0
	hint := ""
	for _, card := range g.Credit.Cards {
		if !match(card) {
			continue
		}
		if hint == "" {
			hint = "card ending in " + card.Mask
		}
		count++
	}
	return DataPoint{Signal: signal, Value: FormatCount(count), Account: hint}
}
