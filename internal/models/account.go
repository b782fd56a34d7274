package models

// AccountType is the top-level account category
type AccountType string

const (
	AccountTypeDepository AccountType = "depository"
	AccountTypeCredit     AccountType = "credit"
	AccountTypeLoan       AccountType = "loan"
	AccountTypeInvestment AccountType = "investment"
)

// Account subtypes referenced by the signal engine
const (
	SubtypeChecking    = "checking"
	SubtypeSavings     = "savings"
	SubtypeMoneyMarket = "money_market"
	SubtypeCD          = "cd"
	SubtypeHSA         = "hsa"
	SubtypeCreditCard  = "credit_card"
)

// Account is one financial account owned by a user.
// All money fields are integer minor currency units (cents).
type Account struct {
	ID             string      `json:"account_id" validate:"required"`
	UserID         string      `json:"user_id" validate:"required"`
	Type           AccountType `json:"type" validate:"required,oneof=depository credit loan investment"`
	Subtype        string      `json:"subtype" validate:"required"`
	Mask           string      `json:"mask,omitempty"`                           // Last 4 digits shown to the user
	Name           string      `json:"name,omitempty"`
	Balance        int64       `json:"balance"`
	CreditLimit    *int64      `json:"credit_limit,omitempty" validate:"omitempty,gte=0"`
	APR            *float64    `json:"apr,omitempty" validate:"omitempty,gte=0"` // Annual percentage rate, e.g. 22.99
	MinimumPayment *int64      `json:"minimum_payment,omitempty" validate:"omitempty,gte=0"`
	LastPayment    *int64      `json:"last_payment,omitempty" validate:"omitempty,gte=0"`
	IsOverdue      bool        `json:"is_overdue"`
}

// IsCredit reports whether the account is a credit account
func (a Account) IsCredit() bool {
	return a.Type == AccountTypeCredit
}

// DisplayMask returns the mask, falling back to the last 4 characters of the ID
func (a Account) DisplayMask() string {
	if a.Mask != "" {
		return a.Mask
	}
	if len(a.ID) <= 4 {
		return a.ID
	}
	return a.ID[len(a.ID)-4:]
}

// Limit returns the credit limit or 0 when none is set
func (a Account) Limit() int64 {
	if a.CreditLimit == nil {
		return 0
	}
	return *a.CreditLimit
}

// Int64Ptr returns a pointer to v
func Int64Ptr(v int64) *int64 {
	return &v
}

// Float64Ptr returns a pointer to v
func Float64Ptr(v float64) *float64 {
	return &v
}
