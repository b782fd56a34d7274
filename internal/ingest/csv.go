package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/spendsense/internal/models"
)

// Accepted date layouts for CSV input
var dateLayouts = []string{"2006-01-02", time.RFC3339, "01/02/2006"}

// csvTable maps header names to column positions
type csvTable struct {
	columns map[string]int
	line    int
	record  []string
}

func newCSVTable(header []string, required ...string) (*csvTable, error) {
	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrInvalidSnapshot, name)
		}
	}
	return &csvTable{columns: columns, line: 1}, nil
}

func (t *csvTable) get(name string) string {
	i, ok := t.columns[name]
	if !ok || i >= len(t.record) {
		return ""
	}
	return strings.TrimSpace(t.record[i])
}

func (t *csvTable) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: line %d: %s", ErrInvalidSnapshot, t.line, fmt.Sprintf(format, args...))
}

func (t *csvTable) cents(name string) (int64, error) {
	v, err := ParseCents(t.get(name))
	if err != nil {
		return 0, t.errorf("%s: %v", name, err)
	}
	return v, nil
}

func (t *csvTable) optionalCents(name string) (*int64, error) {
	if t.get(name) == "" {
		return nil, nil
	}
	v, err := t.cents(name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (t *csvTable) optionalFloat(name string) (*float64, error) {
	raw := t.get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
	if err != nil {
		return nil, t.errorf("%s: %v", name, err)
	}
	return &v, nil
}

func (t *csvTable) bool(name string) (bool, error) {
	raw := t.get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, t.errorf("%s: %v", name, err)
	}
	return v, nil
}

func readRows(r io.Reader, required []string, row func(t *csvTable) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty csv", ErrInvalidSnapshot)
		}
		return fmt.Errorf("failed to read csv header: %w", err)
	}

	table, err := newCSVTable(header, required...)
	if err != nil {
		return err
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		table.line++
		if err != nil {
			return fmt.Errorf("failed to read csv line %d: %w", table.line, err)
		}
		table.record = record
		if err := row(table); err != nil {
			return err
		}
	}
}

// ReadAccountsCSV parses accounts with columns
// account_id,user_id,type,subtype,mask,name,balance,credit_limit,apr,minimum_payment,last_payment,is_overdue.
// Money columns are decimal dollars.
func ReadAccountsCSV(r io.Reader) ([]models.Account, error) {
	accounts := []models.Account{}
	err := readRows(r, []string{"account_id", "user_id", "type", "subtype", "balance"}, func(t *csvTable) error {
		balance, err := t.cents("balance")
		if err != nil {
			return err
		}
		limit, err := t.optionalCents("credit_limit")
		if err != nil {
			return err
		}
		apr, err := t.optionalFloat("apr")
		if err != nil {
			return err
		}
		minimum, err := t.optionalCents("minimum_payment")
		if err != nil {
			return err
		}
		last, err := t.optionalCents("last_payment")
		if err != nil {
			return err
		}
		overdue, err := t.bool("is_overdue")
		if err != nil {
			return err
		}

		accounts = append(accounts, models.Account{
			ID:             t.get("account_id"),
			UserID:         t.get("user_id"),
			Type:           models.AccountType(strings.ToLower(t.get("type"))),
			Subtype:        strings.ToLower(t.get("subtype")),
			Mask:           t.get("mask"),
			Name:           t.get("name"),
			Balance:        balance,
			CreditLimit:    limit,
			APR:            apr,
			MinimumPayment: minimum,
			LastPayment:    last,
			IsOverdue:      overdue,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// ReadTransactionsCSV parses transactions with columns
// transaction_id,account_id,date,amount,merchant_name,merchant_entity_id,category_primary,category_detailed,pending.
// Amount is decimal dollars, positive for outflows.
func ReadTransactionsCSV(r io.Reader) ([]models.Transaction, error) {
	transactions := []models.Transaction{}
	err := readRows(r, []string{"transaction_id", "account_id", "date", "amount"}, func(t *csvTable) error {
		date, err := ParseDate(t.get("date"))
		if err != nil {
			return t.errorf("date: %v", err)
		}
		amount, err := t.cents("amount")
		if err != nil {
			return err
		}
		pending, err := t.bool("pending")
		if err != nil {
			return err
		}

		transactions = append(transactions, models.Transaction{
			ID:               t.get("transaction_id"),
			AccountID:        t.get("account_id"),
			Date:             date,
			Amount:           amount,
			MerchantName:     t.get("merchant_name"),
			MerchantEntityID: t.get("merchant_entity_id"),
			CategoryPrimary:  strings.ToUpper(t.get("category_primary")),
			CategoryDetailed: strings.ToUpper(t.get("category_detailed")),
			Pending:          pending,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transactions, nil
}

// ParseDate accepts ISO dates, RFC3339 timestamps and US month/day/year dates, returning UTC
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ParseCents converts a decimal dollar string such as "-1,234.5" or "$15.99" to cents without float rounding
func ParseCents(s string) (int64, error) {
	raw := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
	if raw == "" {
		return 0, fmt.Errorf("empty amount")
	}

	negative := false
	switch raw[0] {
	case '-':
		negative = true
		raw = raw[1:]
	case '+':
		raw = raw[1:]
	}

	whole, frac, hasFrac := strings.Cut(raw, ".")
	if whole == "" {
		whole = "0"
	}
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		if len(frac) == 1 {
			frac += "0"
		}
	} else {
		frac = "00"
	}

	dollars, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil || cents < 0 {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	total := dollars*100 + cents
	if negative {
		total = -total
	}
	return total, nil
}
