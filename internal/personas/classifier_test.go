package personas

import (
	"testing"

	"github.com/ternarybob/spendsense/internal/signals"
)

func highUtilizationGroups() signals.Groups {
	return signals.Groups{
		WindowDays: 30,
		Credit: signals.CreditSignals{
			AccountCount:       1,
			OverallUtilization: 0.68,
			Flags:              []string{signals.FlagHighUtilization50, signals.FlagInterestCharges},
			Cards:              []signals.CardUtilization{{AccountID: "acc_card", Mask: "4521", Utilization: 0.68}},
		},
	}
}

func variableIncomeGroups() signals.Groups {
	return signals.Groups{
		WindowDays: 180,
		Income: signals.IncomeSignals{
			PaymentCount:  3,
			Frequency:     signals.FrequencyVariable,
			Stability:     signals.StabilityVariable,
			MedianGapDays: 60,
			BufferMonths:  0.4,
		},
	}
}

func subscriptionGroups() signals.Groups {
	return signals.Groups{
		WindowDays: 30,
		Subscriptions: signals.SubscriptionSignals{
			Count:                 4,
			MonthlyRecurringSpend: 6500,
			PercentageOfSpend:     0.04,
		},
	}
}

func savingsGroups() signals.Groups {
	return signals.Groups{
		WindowDays: 30,
		Savings: signals.SavingsSignals{
			AccountCount:  1,
			TotalBalance:  1000000,
			MonthlyInflow: 25000,
			GrowthRate:    0.025,
		},
		Credit: signals.CreditSignals{AccountCount: 1, OverallUtilization: 0.10},
	}
}

func TestClassifier_Assign(t *testing.T) {
	classifier := NewClassifier()

	tests := []struct {
		name           string
		groups         signals.Groups
		wantType       PersonaType
		wantConfidence float64
	}{
		{"high utilization", highUtilizationGroups(), HighUtilization, 0.95},
		{"variable income", variableIncomeGroups(), VariableIncome, 0.90},
		{"subscription heavy", subscriptionGroups(), SubscriptionHeavy, 0.85},
		{"savings builder", savingsGroups(), SavingsBuilder, 0.80},
		{"empty groups fall back to balanced", signals.Groups{}, Balanced, 0.60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := classifier.Assign(tt.groups)
			if result.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", result.Type, tt.wantType)
			}
			if result.Confidence != tt.wantConfidence {
				t.Errorf("Confidence = %v, want %v", result.Confidence, tt.wantConfidence)
			}
			if len(result.Signals) == 0 {
				t.Error("Signals should not be empty")
			}
		})
	}
}

func TestClassifier_Priority(t *testing.T) {
	classifier := NewClassifier()

	// Every rule matches; the highest-priority persona wins
	groups := highUtilizationGroups()
	groups.Income = variableIncomeGroups().Income
	groups.Subscriptions = subscriptionGroups().Subscriptions
	groups.Savings = savingsGroups().Savings

	result := classifier.Assign(groups)
	if result.Type != HighUtilization {
		t.Errorf("Type = %v, want %v", result.Type, HighUtilization)
	}

	matched := classifier.MatchedRules(groups)
	want := []PersonaType{HighUtilization, VariableIncome, SubscriptionHeavy, Balanced}
	if len(matched) != len(want) {
		t.Fatalf("MatchedRules() returned %d results, want %d", len(matched), len(want))
	}
	for i, r := range matched {
		if r.Type != want[i] {
			t.Errorf("MatchedRules()[%d] = %v, want %v", i, r.Type, want[i])
		}
	}

	// Variable income outranks subscriptions
	groups = variableIncomeGroups()
	groups.Subscriptions = subscriptionGroups().Subscriptions
	if got := classifier.Assign(groups).Type; got != VariableIncome {
		t.Errorf("Type = %v, want %v", got, VariableIncome)
	}
}

func TestClassifier_HighUtilizationTriggers(t *testing.T) {
	classifier := NewClassifier()

	tests := []struct {
		name   string
		credit signals.CreditSignals
		want   PersonaType
	}{
		{
			name:   "overall at 50 percent",
			credit: signals.CreditSignals{AccountCount: 1, OverallUtilization: 0.50},
			want:   HighUtilization,
		},
		{
			name: "single card over 50 percent with low overall",
			credit: signals.CreditSignals{
				AccountCount:       2,
				OverallUtilization: 0.30,
				Cards:              []signals.CardUtilization{{Utilization: 0.55}, {Utilization: 0.05}},
			},
			want: HighUtilization,
		},
		{
			name:   "overdue alone",
			credit: signals.CreditSignals{AccountCount: 1, OverallUtilization: 0.05, Flags: []string{signals.FlagOverdue}},
			want:   HighUtilization,
		},
		{
			name:   "minimum payments alone",
			credit: signals.CreditSignals{AccountCount: 1, OverallUtilization: 0.05, Flags: []string{signals.FlagMinimumPaymentOnly}},
			want:   HighUtilization,
		},
		{
			name:   "just under 50 percent",
			credit: signals.CreditSignals{AccountCount: 1, OverallUtilization: 0.499999, Flags: []string{signals.FlagModerateUtilization}},
			want:   Balanced,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := classifier.Assign(signals.Groups{Credit: tt.credit})
			if result.Type != tt.want {
				t.Errorf("Type = %v, want %v", result.Type, tt.want)
			}
		})
	}
}

func TestClassifier_SubscriptionRequiresSpendOrShare(t *testing.T) {
	classifier := NewClassifier()

	groups := signals.Groups{Subscriptions: signals.SubscriptionSignals{Count: 3, MonthlyRecurringSpend: 2000, PercentageOfSpend: 0.05}}
	if got := classifier.Assign(groups).Type; got != Balanced {
		t.Errorf("Type = %v, want %v", got, Balanced)
	}

	groups.Subscriptions.PercentageOfSpend = 0.10
	if got := classifier.Assign(groups).Type; got != SubscriptionHeavy {
		t.Errorf("Type = %v, want %v", got, SubscriptionHeavy)
	}
}

func TestClassifier_SavingsBlockedByUtilization(t *testing.T) {
	classifier := NewClassifier()

	groups := savingsGroups()
	groups.Credit.OverallUtilization = 0.30
	if got := classifier.Assign(groups).Type; got != Balanced {
		t.Errorf("Type = %v, want %v", got, Balanced)
	}
}

func TestClassifier_VariableIncomeNeedsKnownFrequency(t *testing.T) {
	classifier := NewClassifier()

	groups := variableIncomeGroups()
	groups.Income.Frequency = signals.FrequencyUnknown
	if got := classifier.Assign(groups).Type; got != Balanced {
		t.Errorf("Type = %v, want %v", got, Balanced)
	}
}

func TestClassifier_Totality(t *testing.T) {
	classifier := NewClassifier()

	utilizations := []float64{0, 0.29, 0.30, 0.49, 0.50, 0.80, 1.2}
	gaps := []float64{0, 14, 45, 46, 120}
	counts := []int{0, 2, 3, 8}

	for _, u := range utilizations {
		for _, gap := range gaps {
			for _, count := range counts {
				groups := signals.Groups{
					Credit:        signals.CreditSignals{AccountCount: 1, OverallUtilization: u},
					Income:        signals.IncomeSignals{Frequency: signals.FrequencyVariable, MedianGapDays: gap, BufferMonths: 0.5},
					Subscriptions: signals.SubscriptionSignals{Count: count, MonthlyRecurringSpend: int64(count) * 2000},
				}
				result := classifier.Assign(groups)
				if !result.Type.Valid() {
					t.Fatalf("Assign() returned unknown persona %q", result.Type)
				}
				if result.Confidence != Confidence(result.Type) {
					t.Errorf("Confidence = %v, want %v", result.Confidence, Confidence(result.Type))
				}
			}
		}
	}
}

func TestPersonaType_Title(t *testing.T) {
	for _, p := range All() {
		if p.Title() == "" || p.Title() == string(p) {
			t.Errorf("Title(%s) should be a display name", p)
		}
	}
}
