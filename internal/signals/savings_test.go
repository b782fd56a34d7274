package signals

import (
	"encoding/json"
	"testing"

	"github.com/ternarybob/spendsense/internal/models"
)

func TestSavingsAnalyzer_EmergencyFundSentinel(t *testing.T) {
	analyzer := NewSavingsAnalyzer(DefaultSavingsConfig())

	accounts := []models.Account{savingsAccount("acc_savings", 500000)}
	result := analyzer.Analyze(accounts, nil, 30)

	if result.EmergencyFundMonths != EmergencyFundSentinel {
		t.Errorf("EmergencyFundMonths = %v, want %v", result.EmergencyFundMonths, EmergencyFundSentinel)
	}
	if _, err := json.Marshal(result); err != nil {
		t.Errorf("json.Marshal() error = %v", err)
	}
}

func TestSavingsAnalyzer_NoSavings(t *testing.T) {
	analyzer := NewSavingsAnalyzer(DefaultSavingsConfig())

	result := analyzer.Analyze(nil, nil, 30)
	if result.EmergencyFundMonths != 0 {
		t.Errorf("EmergencyFundMonths = %v, want 0", result.EmergencyFundMonths)
	}
	if result.GrowthRate != 0 {
		t.Errorf("GrowthRate = %v, want 0", result.GrowthRate)
	}
}

func TestSavingsAnalyzer_Coverage(t *testing.T) {
	analyzer := NewSavingsAnalyzer(DefaultSavingsConfig())

	accounts := []models.Account{
		savingsAccount("acc_savings", 600000),
		{ID: "acc_checking", UserID: "user_1", Type: models.AccountTypeDepository, Subtype: models.SubtypeChecking, Balance: 900000},
	}
	transfer := models.Transaction{
		ID:              "t_transfer",
		AccountID:       "acc_savings",
		Date:            day(10),
		Amount:          -30000,
		CategoryPrimary: "TRANSFER_IN",
	}
	txns := []models.Transaction{
		charge("groceries", "Market", 200000, day(2)),
		transfer,
	}

	result := analyzer.Analyze(accounts, txns, 30)

	if result.AccountCount != 1 {
		t.Errorf("AccountCount = %d, want 1", result.AccountCount)
	}
	if result.TotalBalance != 600000 {
		t.Errorf("TotalBalance = %d, want 600000", result.TotalBalance)
	}
	if result.MonthlyExpenses != 200000 {
		t.Errorf("MonthlyExpenses = %d, want 200000", result.MonthlyExpenses)
	}
	if result.EmergencyFundMonths != 3.0 {
		t.Errorf("EmergencyFundMonths = %v, want 3.0", result.EmergencyFundMonths)
	}
	if result.NetInflow != 30000 {
		t.Errorf("NetInflow = %d, want 30000", result.NetInflow)
	}
	if result.GrowthRate != 0.05 {
		t.Errorf("GrowthRate = %v, want 0.05", result.GrowthRate)
	}
}

func TestSavingsAnalyzer_SubtypesOnly(t *testing.T) {
	analyzer := NewSavingsAnalyzer(DefaultSavingsConfig())

	for _, subtype := range []string{models.SubtypeSavings, models.SubtypeMoneyMarket, models.SubtypeCD, models.SubtypeHSA} {
		if !analyzer.IsSavingsAccount(models.Account{Subtype: subtype}) {
			t.Errorf("IsSavingsAccount(%s) = false, want true", subtype)
		}
	}
	if analyzer.IsSavingsAccount(models.Account{Subtype: models.SubtypeChecking}) {
		t.Error("IsSavingsAccount(checking) = true, want false")
	}
}
