package signals

import (
	"testing"

	"github.com/ternarybob/spendsense/internal/models"
)

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func TestActiveTags(t *testing.T) {
	computer := NewSignalComputer()
	accounts, txns := sampleInput()

	groups, err := computer.ComputeSignals(accounts, txns, 90)
	if err != nil {
		t.Fatalf("ComputeSignals() error = %v", err)
	}

	tags := ActiveTags(groups)
	for _, want := range []string{TagHighUtilization50, TagHighCreditUtilization, TagInterestCharges, TagSubscriptionHeavy, TagStableIncome} {
		if !containsTag(tags, want) {
			t.Errorf("ActiveTags() = %v, missing %s", tags, want)
		}
	}
	for _, unwanted := range []string{TagHighUtilization80, TagOverdue, TagIrregularIncome} {
		if containsTag(tags, unwanted) {
			t.Errorf("ActiveTags() = %v, should not contain %s", tags, unwanted)
		}
	}

	if !reflectEqualStrings(tags, ActiveTags(groups)) {
		t.Error("ActiveTags() should be deterministic")
	}
}

func TestTagEvidence(t *testing.T) {
	card := creditCard("acc_card_4521", 680000, 1000000)
	card.Mask = "4521"
	card.IsOverdue = true
	groups := Groups{Credit: NewCreditAnalyzer(DefaultCreditConfig()).Analyze([]models.Account{card})}

	point, ok := TagEvidence(TagHighCreditUtilization, groups)
	if !ok {
		t.Fatal("TagEvidence(high_credit_utilization) ok = false, want true")
	}
	if point.Value != "68%" {
		t.Errorf("Value = %v, want 68%%", point.Value)
	}

	point, ok = TagEvidence(TagOverdue, groups)
	if !ok {
		t.Fatal("TagEvidence(overdue) ok = false, want true")
	}
	if point.Account != "card ending in 4521" {
		t.Errorf("Account = %v, want card ending in 4521", point.Account)
	}

	if _, ok := TagEvidence(TagSavingsGrowth, groups); ok {
		t.Error("TagEvidence() should reject inactive tags")
	}
	if _, ok := TagEvidence("not_a_tag", groups); ok {
		t.Error("TagEvidence() should reject unknown tags")
	}
	if KnownTag("not_a_tag") {
		t.Error("KnownTag(not_a_tag) = true, want false")
	}
}

func reflectEqualStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
