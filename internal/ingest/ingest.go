// Package ingest reads user snapshots from JSON and CSV files.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/spendsense/internal/models"
)

// ErrInvalidSnapshot is returned when imported data fails validation
var ErrInvalidSnapshot = errors.New("invalid snapshot")

var validate = validator.New()

// ReadJSON decodes a snapshot file: either {"users": [...]} or a single snapshot object
func ReadJSON(r io.Reader) ([]models.Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot JSON: %w", err)
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot JSON: %w", err)
	}

	var snapshots []models.Snapshot
	if _, ok := probe["users"]; ok {
		var file models.SnapshotFile
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse snapshot file: %w", err)
		}
		snapshots = file.Users
	} else {
		var single models.Snapshot
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("failed to parse snapshot: %w", err)
		}
		snapshots = []models.Snapshot{single}
	}

	for i := range snapshots {
		fillUserID(&snapshots[i])
	}
	if err := Validate(snapshots); err != nil {
		return nil, err
	}
	return snapshots, nil
}

// LoadFile reads snapshots from a .json file
func LoadFile(path string) ([]models.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if ext := strings.ToLower(filepath.Ext(path)); ext != ".json" {
		return nil, fmt.Errorf("unsupported snapshot file type %q (use LoadCSV for csv input)", ext)
	}
	return ReadJSON(f)
}

// LoadCSV reads an accounts CSV and a transactions CSV and groups them into per-user snapshots
func LoadCSV(accountsPath, transactionsPath string) ([]models.Snapshot, error) {
	af, err := os.Open(accountsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", accountsPath, err)
	}
	defer af.Close()

	accounts, err := ReadAccountsCSV(af)
	if err != nil {
		return nil, err
	}

	tf, err := os.Open(transactionsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", transactionsPath, err)
	}
	defer tf.Close()

	transactions, err := ReadTransactionsCSV(tf)
	if err != nil {
		return nil, err
	}

	snapshots, err := BuildSnapshots(accounts, transactions)
	if err != nil {
		return nil, err
	}
	if err := Validate(snapshots); err != nil {
		return nil, err
	}
	return snapshots, nil
}

// BuildSnapshots groups accounts by owner and attaches each transaction to its account's owner.
// A transaction for an unknown account is an error.
func BuildSnapshots(accounts []models.Account, transactions []models.Transaction) ([]models.Snapshot, error) {
	owners := make(map[string]string, len(accounts))
	byUser := map[string]*models.Snapshot{}

	for _, a := range accounts {
		owners[a.ID] = a.UserID
		s, ok := byUser[a.UserID]
		if !ok {
			s = &models.Snapshot{UserID: a.UserID}
			byUser[a.UserID] = s
		}
		s.Accounts = append(s.Accounts, a)
	}

	for _, t := range transactions {
		owner, ok := owners[t.AccountID]
		if !ok {
			return nil, fmt.Errorf("%w: transaction %s references unknown account %s", ErrInvalidSnapshot, t.ID, t.AccountID)
		}
		byUser[owner].Transactions = append(byUser[owner].Transactions, t)
	}

	userIDs := make([]string, 0, len(byUser))
	for id := range byUser {
		userIDs = append(userIDs, id)
	}
	sort.Strings(userIDs)

	snapshots := make([]models.Snapshot, 0, len(userIDs))
	for _, id := range userIDs {
		snapshots = append(snapshots, *byUser[id])
	}
	return snapshots, nil
}

// Validate checks every snapshot with the model validation tags plus cross-record rules
func Validate(snapshots []models.Snapshot) error {
	var problems []string
	seen := map[string]bool{}

	for i, s := range snapshots {
		path := fmt.Sprintf("users[%d]", i)
		if err := validate.Struct(s); err != nil {
			problems = append(problems, describe(path, err)...)
			continue
		}
		if seen[s.UserID] {
			problems = append(problems, fmt.Sprintf("%s: duplicate user %s", path, s.UserID))
		}
		seen[s.UserID] = true

		accountIDs := map[string]bool{}
		for _, a := range s.Accounts {
			if a.UserID != s.UserID {
				problems = append(problems, fmt.Sprintf("%s: account %s belongs to %s", path, a.ID, a.UserID))
			}
			accountIDs[a.ID] = true
		}
		for _, t := range s.Transactions {
			if !accountIDs[t.AccountID] {
				problems = append(problems, fmt.Sprintf("%s: transaction %s references unknown account %s", path, t.ID, t.AccountID))
			}
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidSnapshot, strings.Join(problems, "; "))
}

// fillUserID stamps the snapshot owner on accounts that omit it
func fillUserID(s *models.Snapshot) {
	for i := range s.Accounts {
		if s.Accounts[i].UserID == "" {
			s.Accounts[i].UserID = s.UserID
		}
	}
}

func describe(path string, err error) []string {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []string{path + ": " + err.Error()}
	}
	out := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		out = append(out, fmt.Sprintf("%s: %s failed '%s'", path, fe.Namespace(), fe.Tag()))
	}
	return out
}
