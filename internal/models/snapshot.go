package models

// Snapshot is a read-only view of one user's accounts and transactions
type Snapshot struct {
	UserID       string        `json:"user_id" validate:"required"`
	Accounts     []Account     `json:"accounts" validate:"dive"`
	Transactions []Transaction `json:"transactions" validate:"dive"`
}

// SnapshotFile is the JSON interchange format for bulk imports
type SnapshotFile struct {
	Users []Snapshot `json:"users" validate:"dive"`
}

// AccountIDs returns the IDs of all accounts in the snapshot
func (s Snapshot) AccountIDs() []string {
	ids := make([]string, 0, len(s.Accounts))
	for _, a := range s.Accounts {
		ids = append(ids, a.ID)
	}
	return ids
}
