package report

import (
	"context"
	"sort"

	"github.com/gotchoices/sereus-bonum/internal/ledger"
	"github.com/gotchoices/sereus-bonum/internal/store"
)

// LedgerRow is one line of an account's ledger: an entry with its transaction
// header, running balance, and either a single offset account (simple
// transaction) or the full list of other legs (split transaction).
type LedgerRow struct {
	EntryID        string        `json:"entry_id"`
	TransactionID  string        `json:"transaction_id"`
	Date           string        `json:"date"`
	Reference      string        `json:"reference,omitempty"`
	Memo           string        `json:"memo,omitempty"`
	AccountID      string        `json:"account_id"`
	Amount         ledger.Amount `json:"amount"`
	Note           string        `json:"note,omitempty"`
	RunningBalance ledger.Amount `json:"running_balance"`

	OffsetAccountID   string `json:"offset_account_id,omitempty"`
	OffsetAccountName string `json:"offset_account_name,omitempty"`
	OffsetAccountPath string `json:"offset_account_path,omitempty"`

	IsSplit      bool       `json:"is_split"`
	SplitEntries []SplitLeg `json:"split_entries,omitempty"`
}

// SplitLeg is one of the other legs of a split transaction.
type SplitLeg struct {
	EntryID     string        `json:"entry_id"`
	AccountID   string        `json:"account_id"`
	AccountName string        `json:"account_name"`
	AccountPath string        `json:"account_path"`
	Amount      ledger.Amount `json:"amount"`
	Note        string        `json:"note,omitempty"`
}

// LedgerOptions narrows the ledger window. Limit caps rows after ordering;
// Unreconciled drops entries that carry a reconciliation id.
type LedgerOptions struct {
	StartDate    string
	EndDate      string
	Unreconciled bool
	Limit        int
}

// Ledger reconstructs the account's ledger ascending by (transaction date,
// transaction creation order). The running balance starts at 0; a windowed
// view that needs an opening balance seeds its own leading row.
//
// A row is a split iff its transaction has more than 2 entries; the split
// legs are every other entry sorted by amount descending. A 2-entry
// transaction resolves to its single offset account. A 1-entry transaction
// cannot balance and should not exist, but it renders as a simple row with
// no offset rather than failing.
func (s *Service) Ledger(ctx context.Context, accountID string, opts LedgerOptions) ([]LedgerRow, error) {
	entries, err := s.src.EntriesForAccount(ctx, accountID, store.EntryFilter{
		StartDate:    opts.StartDate,
		EndDate:      opts.EndDate,
		Unreconciled: opts.Unreconciled,
		Limit:        opts.Limit,
	})
	if err != nil {
		return nil, err
	}

	rows := make([]LedgerRow, 0, len(entries))
	var running ledger.Amount
	for _, e := range entries {
		running += e.Amount
		row := LedgerRow{
			EntryID:        e.ID,
			TransactionID:  e.TransactionID,
			Date:           e.TransactionDate,
			Reference:      e.TransactionReference,
			Memo:           e.TransactionMemo,
			AccountID:      accountID,
			Amount:         e.Amount,
			Note:           e.Note,
			RunningBalance: running,
			IsSplit:        e.SiblingCount > 2,
		}

		switch {
		case row.IsSplit:
			legs, err := s.otherLegs(ctx, e.TransactionID, e.ID)
			if err != nil {
				return nil, err
			}
			sort.SliceStable(legs, func(i, j int) bool { return legs[i].Amount > legs[j].Amount })
			row.SplitEntries = legs

		case e.SiblingCount == 2:
			legs, err := s.otherLegs(ctx, e.TransactionID, e.ID)
			if err != nil {
				return nil, err
			}
			if len(legs) == 1 {
				row.OffsetAccountID = legs[0].AccountID
				row.OffsetAccountName = legs[0].AccountName
				row.OffsetAccountPath = legs[0].AccountPath
			}

			// SiblingCount <= 1: simple row, offset fields stay empty.
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *Service) otherLegs(ctx context.Context, transactionID, entryID string) ([]SplitLeg, error) {
	all, err := s.src.EntriesForTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	legs := make([]SplitLeg, 0, len(all)-1)
	for _, leg := range all {
		if leg.ID == entryID {
			continue
		}
		legs = append(legs, SplitLeg{
			EntryID:     leg.ID,
			AccountID:   leg.AccountID,
			AccountName: leg.AccountName,
			AccountPath: leg.AccountPath,
			Amount:      leg.Amount,
			Note:        leg.Note,
		})
	}
	return legs, nil
}
