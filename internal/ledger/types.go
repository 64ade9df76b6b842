package ledger

import (
	"errors"
	"time"
)

// AccountType classifies an account group and, through it, every member account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// Side is the normal balance direction of an account type.
type Side string

const (
	Debit  Side = "debit"
	Credit Side = "credit"
)

// NormalBalance maps each account type to the side on which its balance is
// conventionally positive under the signed representation (positive = debit).
var NormalBalance = map[AccountType]Side{
	Asset:     Debit,
	Liability: Credit,
	Equity:    Credit,
	Income:    Credit,
	Expense:   Debit,
}

// Valid reports whether t is one of the five account types.
func (t AccountType) Valid() bool {
	_, ok := NormalBalance[t]
	return ok
}

// UnitType categorizes a unit of account.
type UnitType string

const (
	Fiat      UnitType = "FIAT"
	Crypto    UnitType = "CRYPTO"
	Commodity UnitType = "COMMODITY"
	Security  UnitType = "SECURITY"
	Inventory UnitType = "INVENTORY"
	Other     UnitType = "OTHER"
)

// CostingMethod selects how lot costs are assigned.
type CostingMethod string

const (
	FIFO    CostingMethod = "FIFO"
	LIFO    CostingMethod = "LIFO"
	Average CostingMethod = "AVERAGE"
)

// Unit is a unit of account. Amounts are stored as integers in the unit's
// minor denomination; DisplayDivisor converts them to a display value.
type Unit struct {
	Code           string   `json:"code"`
	Name           string   `json:"name"`
	Symbol         string   `json:"symbol,omitempty"`
	UnitType       UnitType `json:"unit_type"`
	DisplayDivisor int64    `json:"display_divisor"`
}

// Entity is an independent accounting book. It owns its accounts and
// transactions; deleting it cascades in the store.
type Entity struct {
	ID                   string        `json:"id"`
	Name                 string        `json:"name"`
	Description          string        `json:"description,omitempty"`
	FiscalYearEnd        string        `json:"fiscal_year_end,omitempty"` // "MM-DD"
	BaseUnit             string        `json:"base_unit"`
	DefaultCostingMethod CostingMethod `json:"default_costing_method,omitempty"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}

// AccountGroup is a named bucket of accounts with exactly one account type.
// Groups form a forest via ParentID; the type is invariant for a subtree by
// convention but not enforced (see DESIGN.md).
type AccountGroup struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	AccountType  AccountType `json:"account_type"`
	ParentID     string      `json:"parent_id,omitempty"`
	Description  string      `json:"description,omitempty"`
	DisplayOrder int         `json:"display_order,omitempty"`
}

// Account belongs to exactly one entity and one account group. Its effective
// type is inherited from the group.
type Account struct {
	ID             string        `json:"id"`
	EntityID       string        `json:"entity_id"`
	AccountGroupID string        `json:"account_group_id"`
	ParentID       string        `json:"parent_id,omitempty"`
	Code           string        `json:"code,omitempty"`
	Name           string        `json:"name"`
	Description    string        `json:"description,omitempty"`
	Unit           string        `json:"unit"`
	CostingMethod  CostingMethod `json:"costing_method,omitempty"`
	ClosedDate     string        `json:"closed_date,omitempty"` // "YYYY-MM-DD"
	IsActive       bool          `json:"is_active"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Transaction is a dated double-entry posting. Dates are civil "YYYY-MM-DD"
// strings so that ordering and as-of cutoffs are timezone-free.
type Transaction struct {
	ID        string    `json:"id"`
	EntityID  string    `json:"entity_id"`
	Date      string    `json:"date"`
	Memo      string    `json:"memo,omitempty"`
	Reference string    `json:"reference,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Entry is one leg of a transaction. Amount is in the account's unit's minor
// denomination: positive = debit, negative = credit. Entries are immutable
// once created; mutation happens only through full transaction replace/delete.
type Entry struct {
	ID               string `json:"id"`
	TransactionID    string `json:"transaction_id"`
	AccountID        string `json:"account_id"`
	Amount           Amount `json:"amount"`
	Note             string `json:"note,omitempty"`
	TagID            string `json:"tag_id,omitempty"`
	ReconciliationID string `json:"reconciliation_id,omitempty"`
}

// EntryInput is a candidate entry for a not-yet-persisted transaction.
type EntryInput struct {
	AccountID        string `json:"account_id"`
	Amount           Amount `json:"amount"`
	Note             string `json:"note,omitempty"`
	TagID            string `json:"tag_id,omitempty"`
	ReconciliationID string `json:"reconciliation_id,omitempty"`
}

// TransactionInput carries the transaction header for creation.
type TransactionInput struct {
	EntityID  string `json:"entity_id"`
	Date      string `json:"date"`
	Memo      string `json:"memo,omitempty"`
	Reference string `json:"reference,omitempty"`
}

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidType   = errors.New("invalid account type")
	ErrParentCycle   = errors.New("parent reference creates a cycle")
	ErrUnknownParent = errors.New("unknown parent id")
)

// DateLayout is the civil date layout used throughout the engine.
const DateLayout = "2006-01-02"

// Today returns the current civil date in UTC, the default as-of cutoff.
func Today() string {
	return time.Now().UTC().Format(DateLayout)
}

// ValidDate reports whether s is a well-formed civil date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
