// Package mongo reads account and transaction snapshots from an external MongoDB.
// It is read-only; imports always go to Badger.
package mongo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/spendsense/internal/common"
	"github.com/ternarybob/spendsense/internal/interfaces"
	"github.com/ternarybob/spendsense/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// collection is the subset of *mongo.Collection the source needs
type collection interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	Distinct(ctx context.Context, fieldName string, filter interface{}, opts ...*options.DistinctOptions) ([]interface{}, error)
}

// accountDocument is the stored shape of an account
type accountDocument struct {
	AccountID      string   `bson:"account_id"`
	UserID         string   `bson:"user_id"`
	Type           string   `bson:"type"`
	Subtype        string   `bson:"subtype"`
	Mask           string   `bson:"mask,omitempty"`
	Name           string   `bson:"name,omitempty"`
	Balance        int64    `bson:"balance"`
	CreditLimit    *int64   `bson:"credit_limit,omitempty"`
	APR            *float64 `bson:"apr,omitempty"`
	MinimumPayment *int64   `bson:"minimum_payment,omitempty"`
	LastPayment    *int64   `bson:"last_payment,omitempty"`
	IsOverdue      bool     `bson:"is_overdue"`
}

func (d accountDocument) toModel() models.Account {
	return models.Account{
		ID:             d.AccountID,
		UserID:         d.UserID,
		Type:           models.AccountType(d.Type),
		Subtype:        d.Subtype,
		Mask:           d.Mask,
		Name:           d.Name,
		Balance:        d.Balance,
		CreditLimit:    d.CreditLimit,
		APR:            d.APR,
		MinimumPayment: d.MinimumPayment,
		LastPayment:    d.LastPayment,
		IsOverdue:      d.IsOverdue,
	}
}

// transactionDocument is the stored shape of a transaction
type transactionDocument struct {
	TransactionID    string    `bson:"transaction_id"`
	AccountID        string    `bson:"account_id"`
	Date             time.Time `bson:"date"`
	Amount           int64     `bson:"amount"`
	MerchantName     string    `bson:"merchant_name,omitempty"`
	MerchantEntityID string    `bson:"merchant_entity_id,omitempty"`
	CategoryPrimary  string    `bson:"category_primary"`
	CategoryDetailed string    `bson:"category_detailed,omitempty"`
	Pending          bool      `bson:"pending"`
}

func (d transactionDocument) toModel() models.Transaction {
	return models.Transaction{
		ID:               d.TransactionID,
		AccountID:        d.AccountID,
		Date:             d.Date.UTC(),
		Amount:           d.Amount,
		MerchantName:     d.MerchantName,
		MerchantEntityID: d.MerchantEntityID,
		CategoryPrimary:  d.CategoryPrimary,
		CategoryDetailed: d.CategoryDetailed,
		Pending:          d.Pending,
	}
}

// Source implements interfaces.SnapshotSource over MongoDB collections
type Source struct {
	client       *mongo.Client
	accounts     collection
	transactions collection
	timeout      time.Duration
	logger       arbor.ILogger
}

// Connect opens a client, pings the server and returns a source over the configured collections
func Connect(ctx context.Context, logger arbor.ILogger, config *common.MongoConfig) (*Source, error) {
	if config.URI == "" {
		return nil, fmt.Errorf("mongo uri is required")
	}

	timeout := 10 * time.Second
	if config.Timeout != "" {
		d, err := time.ParseDuration(config.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid mongo timeout %q: %w", config.Timeout, err)
		}
		timeout = d
	}

	logger.Debug().Str("database", config.Database).Msg("Connecting to MongoDB")

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(config.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(config.Database)
	logger.Info().
		Str("database", config.Database).
		Str("accounts", config.AccountsCollection).
		Str("transactions", config.TransactionsCollection).
		Msg("MongoDB snapshot source connected")

	return &Source{
		client:       client,
		accounts:     db.Collection(config.AccountsCollection),
		transactions: db.Collection(config.TransactionsCollection),
		timeout:      timeout,
		logger:       logger,
	}, nil
}

func newSource(accounts, transactions collection, logger arbor.ILogger) *Source {
	return &Source{
		accounts:     accounts,
		transactions: transactions,
		timeout:      10 * time.Second,
		logger:       logger,
	}
}

func accountsFilter(userID string) bson.D {
	return bson.D{{Key: "user_id", Value: userID}}
}

func transactionsFilter(accountIDs []string, start, end time.Time) bson.D {
	return bson.D{
		{Key: "account_id", Value: bson.D{{Key: "$in", Value: accountIDs}}},
		{Key: "date", Value: bson.D{
			{Key: "$gte", Value: start},
			{Key: "$lte", Value: end},
		}},
	}
}

func (s *Source) ListUsers(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	values, err := s.accounts.Distinct(ctx, "user_id", bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok && id != "" {
			users = append(users, id)
		}
	}
	sort.Strings(users)
	return users, nil
}

func (s *Source) GetAccounts(ctx context.Context, userID string) ([]models.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cursor, err := s.accounts.Find(ctx, accountsFilter(userID), options.Find().SetSort(bson.D{{Key: "account_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find accounts: %w", err)
	}

	var docs []accountDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode accounts: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("user %s: %w", userID, interfaces.ErrNotFound)
	}

	accounts := make([]models.Account, len(docs))
	for i, d := range docs {
		accounts[i] = d.toModel()
	}
	return accounts, nil
}

func (s *Source) GetTransactions(ctx context.Context, accountIDs []string, start, end time.Time) ([]models.Transaction, error) {
	if len(accountIDs) == 0 {
		return []models.Transaction{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "transaction_id", Value: 1}})
	cursor, err := s.transactions.Find(ctx, transactionsFilter(accountIDs, start, end), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find transactions: %w", err)
	}

	var docs []transactionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}

	txns := make([]models.Transaction, len(docs))
	for i, d := range docs {
		txns[i] = d.toModel()
	}
	s.logger.Debug().Int("accounts", len(accountIDs)).Int("transactions", len(txns)).Msg("Transactions loaded from MongoDB")
	return txns, nil
}

// Close disconnects the client
func (s *Source) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(context.Background())
}
