package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/spendsense/internal/interfaces"
	"github.com/ternarybob/spendsense/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// userRecord tracks one imported user
type userRecord struct {
	UserID           string
	AccountCount     int
	TransactionCount int
	ImportedAt       time.Time
}

// accountRecord keys an account by owner so queries stay top-level
type accountRecord struct {
	UserID    string `badgerhold:"index"`
	AccountID string
	Account   models.Account
}

// transactionRecord lifts the query fields of a transaction to the top level
type transactionRecord struct {
	UserID      string `badgerhold:"index"`
	AccountID   string `badgerhold:"index"`
	DateUnix    int64
	Transaction models.Transaction
}

// SnapshotStorage implements the SnapshotStorage interface for Badger
type SnapshotStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSnapshotStorage creates a new SnapshotStorage instance
func NewSnapshotStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SnapshotStorage {
	return &SnapshotStorage{
		db:     db,
		logger: logger,
	}
}

func scopedKey(userID, id string) string {
	return userID + "/" + id
}

// SaveSnapshot replaces everything stored for the user in a single transaction
func (s *SnapshotStorage) SaveSnapshot(ctx context.Context, snapshot *models.Snapshot) error {
	if snapshot == nil || snapshot.UserID == "" {
		return fmt.Errorf("snapshot user ID is required")
	}
	userID := snapshot.UserID
	store := s.db.Store()

	err := store.Badger().Update(func(tx *badger.Txn) error {
		if err := deleteUserTx(store, tx, userID); err != nil {
			return err
		}

		for _, account := range snapshot.Accounts {
			record := accountRecord{UserID: userID, AccountID: account.ID, Account: account}
			if err := store.TxUpsert(tx, scopedKey(userID, account.ID), record); err != nil {
				return fmt.Errorf("failed to save account %s: %w", account.ID, err)
			}
		}

		for _, txn := range snapshot.Transactions {
			record := transactionRecord{
				UserID:      userID,
				AccountID:   txn.AccountID,
				DateUnix:    txn.Date.Unix(),
				Transaction: txn,
			}
			if err := store.TxUpsert(tx, scopedKey(userID, txn.ID), record); err != nil {
				return fmt.Errorf("failed to save transaction %s: %w", txn.ID, err)
			}
		}

		user := userRecord{
			UserID:           userID,
			AccountCount:     len(snapshot.Accounts),
			TransactionCount: len(snapshot.Transactions),
			ImportedAt:       time.Now(),
		}
		return store.TxUpsert(tx, userID, user)
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot for %s: %w", userID, err)
	}

	s.logger.Debug().
		Str("user_id", userID).
		Int("accounts", len(snapshot.Accounts)).
		Int("transactions", len(snapshot.Transactions)).
		Msg("Snapshot saved")
	return nil
}

func (s *SnapshotStorage) ListUsers(ctx context.Context) ([]string, error) {
	var users []userRecord
	if err := s.db.Store().Find(&users, badgerhold.Where("UserID").Ne("").SortBy("UserID")); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.UserID
	}
	return ids, nil
}

func (s *SnapshotStorage) GetAccounts(ctx context.Context, userID string) ([]models.Account, error) {
	var user userRecord
	if err := s.db.Store().Get(userID, &user); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("user %s: %w", userID, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var records []accountRecord
	if err := s.db.Store().Find(&records, badgerhold.Where("UserID").Eq(userID).SortBy("AccountID")); err != nil {
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}

	accounts := make([]models.Account, len(records))
	for i, r := range records {
		accounts[i] = r.Account
	}
	return accounts, nil
}

func (s *SnapshotStorage) GetTransactions(ctx context.Context, accountIDs []string, start, end time.Time) ([]models.Transaction, error) {
	if len(accountIDs) == 0 {
		return []models.Transaction{}, nil
	}

	ids := make([]interface{}, len(accountIDs))
	for i, id := range accountIDs {
		ids[i] = id
	}

	query := badgerhold.Where("AccountID").In(ids...).
		And("DateUnix").Ge(start.Unix()).
		And("DateUnix").Le(end.Unix())

	var records []transactionRecord
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	txns := make([]models.Transaction, len(records))
	for i, r := range records {
		txns[i] = r.Transaction
	}
	sort.SliceStable(txns, func(i, j int) bool {
		if !txns[i].Date.Equal(txns[j].Date) {
			return txns[i].Date.Before(txns[j].Date)
		}
		return txns[i].ID < txns[j].ID
	})
	return txns, nil
}

func (s *SnapshotStorage) DeleteUser(ctx context.Context, userID string) error {
	store := s.db.Store()
	if err := store.Badger().Update(func(tx *badger.Txn) error {
		return deleteUserTx(store, tx, userID)
	}); err != nil {
		return fmt.Errorf("failed to delete user %s: %w", userID, err)
	}
	return nil
}

func deleteUserTx(store *badgerhold.Store, tx *badger.Txn, userID string) error {
	if err := store.TxDeleteMatching(tx, &accountRecord{}, badgerhold.Where("UserID").Eq(userID)); err != nil {
		return fmt.Errorf("failed to delete accounts: %w", err)
	}
	if err := store.TxDeleteMatching(tx, &transactionRecord{}, badgerhold.Where("UserID").Eq(userID)); err != nil {
		return fmt.Errorf("failed to delete transactions: %w", err)
	}
	if err := store.TxDelete(tx, userID, &userRecord{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// Close is a no-op; the manager owns the connection
func (s *SnapshotStorage) Close() error {
	return nil
}
