// Package report derives the read-only views of the ledger: per-account
// balances, the running-balance ledger, and the balance sheet. Every view is
// a synchronous pure function over a snapshot fetched through Source; no
// internal locking, no floats, no mutation.
package report

import (
	"context"

	"github.com/gotchoices/sereus-bonum/internal/ledger"
	"github.com/gotchoices/sereus-bonum/internal/store"
)

// Source is the slice of the store the views read from.
type Source interface {
	Account(ctx context.Context, id string) (ledger.Account, error)
	AccountsForEntity(ctx context.Context, entityID string) ([]ledger.AccountWithGroup, error)
	AccountGroups(ctx context.Context) ([]ledger.AccountGroup, error)
	EntriesForAccount(ctx context.Context, accountID string, f store.EntryFilter) ([]ledger.JoinedEntry, error)
	EntriesForTransaction(ctx context.Context, transactionID string) ([]ledger.EntryWithAccount, error)
}

// Service builds report views against a Source.
type Service struct {
	src Source
}

// New wires a report service to its data source.
func New(src Source) *Service {
	return &Service{src: src}
}

// Balance sums the amounts of every entry for the account whose transaction
// date is on or before asOf (empty = today). An account with no entries has
// balance 0; an unknown account is ledger.ErrNotFound. The fold is
// order-independent and idempotent, so it is deliberately not cached.
func (s *Service) Balance(ctx context.Context, accountID, asOf string) (ledger.Amount, error) {
	if asOf == "" {
		asOf = ledger.Today()
	}
	entries, err := s.src.EntriesForAccount(ctx, accountID, store.EntryFilter{EndDate: asOf})
	if err != nil {
		return 0, err
	}
	var total ledger.Amount
	for _, e := range entries {
		total += e.Amount
	}
	return total, nil
}
