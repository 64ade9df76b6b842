// Package store defines the engine-facing persistence contract and the
// initialization-deduplicating provider in front of it. The engine never
// reaches for a global handle; a Store is passed in explicitly.
package store

import (
	"context"

	"github.com/gotchoices/sereus-bonum/internal/ledger"
)

// EntryFilter narrows entry reads for an account. Dates are civil
// "YYYY-MM-DD" strings, inclusive on both ends.
type EntryFilter struct {
	StartDate    string
	EndDate      string
	Unreconciled bool
	Limit        int
}

// TransactionFilter narrows transaction listings for an entity.
type TransactionFilter struct {
	AccountID string
	StartDate string
	EndDate   string
	Limit     int
}

// Store is the persistence contract consumed by the engine and the HTTP
// layer. Amounts cross this boundary as integers, never floats.
type Store interface {
	Close() error

	// Units
	Units(ctx context.Context) ([]ledger.Unit, error)
	Unit(ctx context.Context, code string) (ledger.Unit, error)
	CreateUnit(ctx context.Context, u ledger.Unit) (ledger.Unit, error)
	UpdateUnit(ctx context.Context, code string, patch UnitPatch) (ledger.Unit, error)

	// Entities
	Entities(ctx context.Context) ([]ledger.Entity, error)
	Entity(ctx context.Context, id string) (ledger.Entity, error)
	CreateEntity(ctx context.Context, in EntityInput) (ledger.Entity, error)
	UpdateEntity(ctx context.Context, id string, patch EntityPatch) (ledger.Entity, error)
	DeleteEntity(ctx context.Context, id string) error

	// Account groups
	AccountGroups(ctx context.Context) ([]ledger.AccountGroup, error)
	AccountGroup(ctx context.Context, id string) (ledger.AccountGroup, error)
	CreateAccountGroup(ctx context.Context, in GroupInput) (ledger.AccountGroup, error)
	UpdateAccountGroup(ctx context.Context, id string, patch GroupPatch) (ledger.AccountGroup, error)
	DeleteAccountGroup(ctx context.Context, id string) error

	// Accounts
	AccountsForEntity(ctx context.Context, entityID string) ([]ledger.AccountWithGroup, error)
	Account(ctx context.Context, id string) (ledger.Account, error)
	CreateAccount(ctx context.Context, in AccountInput) (ledger.Account, error)
	UpdateAccount(ctx context.Context, id string, patch AccountPatch) (ledger.Account, error)
	DeleteAccount(ctx context.Context, id string) error

	// Transactions. CreateTransaction is atomic: the validator runs first,
	// then the header and all entries persist as one unit or not at all.
	// DeleteTransaction removes the header and every entry in one operation.
	CreateTransaction(ctx context.Context, in ledger.TransactionInput, entries []ledger.EntryInput) (ledger.Transaction, error)
	Transaction(ctx context.Context, id string) (ledger.Transaction, error)
	Transactions(ctx context.Context, entityID string, f TransactionFilter) ([]ledger.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, patch TransactionPatch) (ledger.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error

	// Entry reads for the engine. EntriesForAccount is ordered ascending by
	// (transaction date, transaction creation order).
	EntriesForAccount(ctx context.Context, accountID string, f EntryFilter) ([]ledger.JoinedEntry, error)
	EntriesForTransaction(ctx context.Context, transactionID string) ([]ledger.EntryWithAccount, error)
}

// Input shapes for row creation: the caller supplies everything except ids
// and timestamps, which the store assigns.

type EntityInput struct {
	Name                 string
	Description          string
	FiscalYearEnd        string
	BaseUnit             string
	DefaultCostingMethod ledger.CostingMethod
}

type GroupInput struct {
	Name         string
	AccountType  ledger.AccountType
	ParentID     string
	Description  string
	DisplayOrder int
}

type AccountInput struct {
	EntityID       string
	AccountGroupID string
	ParentID       string
	Code           string
	Name           string
	Description    string
	Unit           string
	CostingMethod  ledger.CostingMethod
	IsActive       bool
}

// Partial updates are explicit value objects with optional fields; a nil
// field means "leave unchanged". They are applied as one read-merge-write,
// never as per-field SQL fragments.

type UnitPatch struct {
	Name           *string
	Symbol         *string
	UnitType       *ledger.UnitType
	DisplayDivisor *int64
}

type EntityPatch struct {
	Name                 *string
	Description          *string
	FiscalYearEnd        *string
	BaseUnit             *string
	DefaultCostingMethod *ledger.CostingMethod
}

type GroupPatch struct {
	Name         *string
	AccountType  *ledger.AccountType
	ParentID     *string
	Description  *string
	DisplayOrder *int
}

type AccountPatch struct {
	AccountGroupID *string
	ParentID       *string
	Code           *string
	Name           *string
	Description    *string
	Unit           *string
	CostingMethod  *ledger.CostingMethod
	ClosedDate     *string
	IsActive       *bool
}

type TransactionPatch struct {
	Date      *string
	Memo      *string
	Reference *string
}
