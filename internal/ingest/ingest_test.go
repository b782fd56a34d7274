package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/spendsense/internal/models"
)

const snapshotJSON = `{
  "users": [
    {
      "user_id": "user-a",
      "accounts": [
        {"account_id": "cc-1", "type": "credit", "subtype": "credit_card", "mask": "4523",
         "balance": 680000, "credit_limit": 1000000, "apr": 22.99}
      ],
      "transactions": [
        {"transaction_id": "t1", "account_id": "cc-1", "date": "2025-01-05T00:00:00Z",
         "amount": 1599, "merchant_name": "Netflix", "category_primary": "ENTERTAINMENT"}
      ]
    }
  ]
}`

func TestReadJSON_File(t *testing.T) {
	snapshots, err := ReadJSON(strings.NewReader(snapshotJSON))
	require.NoError(t, err)
	require.Len(t, snapshots, 1)

	s := snapshots[0]
	assert.Equal(t, "user-a", s.UserID)
	require.Len(t, s.Accounts, 1)
	assert.Equal(t, "user-a", s.Accounts[0].UserID, "owner is filled from the snapshot")
	assert.Equal(t, int64(1000000), s.Accounts[0].Limit())
	require.Len(t, s.Transactions, 1)
	assert.Equal(t, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), s.Transactions[0].Date)
}

func TestReadJSON_SingleSnapshot(t *testing.T) {
	input := `{"user_id": "user-b", "accounts": [
		{"account_id": "chk", "type": "depository", "subtype": "checking", "balance": 100}
	], "transactions": []}`

	snapshots, err := ReadJSON(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, "user-b", snapshots[0].UserID)
}

func TestReadJSON_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		errMsg string
	}{
		{"malformed", `{"users": [`, "failed to parse"},
		{"missing type", `{"user_id": "u", "accounts": [{"account_id": "a", "subtype": "checking"}]}`, "Type"},
		{"bad type", `{"user_id": "u", "accounts": [{"account_id": "a", "type": "crypto", "subtype": "x"}]}`, "oneof"},
		{"unknown account", `{"user_id": "u", "accounts": [], "transactions": [
			{"transaction_id": "t", "account_id": "zz", "date": "2025-01-01T00:00:00Z", "amount": 1}]}`, "unknown account zz"},
		{"negative limit", `{"user_id": "u", "accounts": [{"account_id": "a", "type": "credit", "subtype": "credit_card", "credit_limit": -5}]}`, "gte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidate_DuplicateUser(t *testing.T) {
	s := models.Snapshot{UserID: "u", Accounts: []models.Account{}, Transactions: []models.Transaction{}}
	err := Validate([]models.Snapshot{s, s})
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
	assert.Contains(t, err.Error(), "duplicate user u")
}

const accountsCSV = `account_id,user_id,type,subtype,mask,name,balance,credit_limit,apr,minimum_payment,last_payment,is_overdue
cc-1,user-a,credit,credit_card,4523,Visa,"6,800.00",10000,22.99,25.00,25.00,false
chk-1,user-a,depository,checking,,Checking,1500.50,,,,,
sav-1,user-b,depository,savings,,Savings,$12000,,,,,
`

const transactionsCSV = `transaction_id,account_id,date,amount,merchant_name,category_primary,pending
t1,cc-1,2025-01-05,15.99,Netflix,entertainment,false
t2,chk-1,01/15/2025,-2500.00,Acme Payroll,income,
t3,sav-1,2025-01-20T10:00:00Z,-200,,transfer_in,
`

func TestReadCSV(t *testing.T) {
	accounts, err := ReadAccountsCSV(strings.NewReader(accountsCSV))
	require.NoError(t, err)
	require.Len(t, accounts, 3)

	cc := accounts[0]
	assert.Equal(t, models.AccountTypeCredit, cc.Type)
	assert.Equal(t, int64(680000), cc.Balance)
	assert.Equal(t, int64(1000000), cc.Limit())
	require.NotNil(t, cc.APR)
	assert.InDelta(t, 22.99, *cc.APR, 1e-9)
	require.NotNil(t, cc.MinimumPayment)
	assert.Equal(t, int64(2500), *cc.MinimumPayment)
	assert.Nil(t, accounts[1].CreditLimit)
	assert.Equal(t, int64(150050), accounts[1].Balance)
	assert.Equal(t, int64(1200000), accounts[2].Balance)

	txns, err := ReadTransactionsCSV(strings.NewReader(transactionsCSV))
	require.NoError(t, err)
	require.Len(t, txns, 3)
	assert.Equal(t, int64(1599), txns[0].Amount)
	assert.Equal(t, "ENTERTAINMENT", txns[0].CategoryPrimary)
	assert.True(t, txns[1].IsIncome())
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), txns[1].Date)

	snapshots, err := BuildSnapshots(accounts, txns)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, "user-a", snapshots[0].UserID)
	assert.Len(t, snapshots[0].Accounts, 2)
	assert.Len(t, snapshots[0].Transactions, 2)
	assert.Equal(t, "user-b", snapshots[1].UserID)
	assert.NoError(t, Validate(snapshots))
}

func TestReadCSV_Errors(t *testing.T) {
	_, err := ReadAccountsCSV(strings.NewReader("account_id,user_id\n"))
	assert.ErrorContains(t, err, `missing column "type"`)

	_, err = ReadAccountsCSV(strings.NewReader(""))
	assert.ErrorContains(t, err, "empty csv")

	_, err = ReadTransactionsCSV(strings.NewReader("transaction_id,account_id,date,amount\nt1,a1,yesterday,1.00\n"))
	assert.ErrorContains(t, err, "line 2: date")

	_, err = BuildSnapshots(nil, []models.Transaction{{ID: "t1", AccountID: "missing"}})
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
}

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	accountsPath := filepath.Join(dir, "accounts.csv")
	transactionsPath := filepath.Join(dir, "transactions.csv")
	require.NoError(t, os.WriteFile(accountsPath, []byte(accountsCSV), 0644))
	require.NoError(t, os.WriteFile(transactionsPath, []byte(transactionsCSV), 0644))

	snapshots, err := LoadCSV(accountsPath, transactionsPath)
	require.NoError(t, err)
	assert.Len(t, snapshots, 2)
}

func TestParseCents(t *testing.T) {
	tests := []struct {
		input string
		want  int64
		err   bool
	}{
		{"15.99", 1599, false},
		{"-2500.00", -250000, false},
		{"$1,234.5", 123450, false},
		{"200", 20000, false},
		{".75", 75, false},
		{"1.999", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCents(tt.input)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
