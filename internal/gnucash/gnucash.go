// Package gnucash normalizes a GnuCash XML export into the engine's model:
// fixed-point minor-unit amounts, a flat account list with parent references,
// and transactions with their legs. Element-level problems become warnings
// and the element is skipped; only an unreadable document (bad gzip, invalid
// XML, no book) fails the whole import. Nothing is written anywhere: the
// output feeds the same entry validator as hand-entered transactions, and
// unbalanced imports are reported, never forced to balance.
package gnucash

import (
	"errors"

	"github.com/gotchoices/sereus-bonum/internal/ledger"
)

// ErrNoBook marks a document that parsed as XML but holds no ledger book.
var ErrNoBook = errors.New("gnucash: no book element")

// Commodity is a currency or security declared by the book.
type Commodity struct {
	ID       string // "space:id", e.g. "CURRENCY:USD"
	Space    string
	Symbol   string
	Name     string
	Fraction int64 // smallest unit per whole, 0 when undeclared
}

// Account is one node of the foreign chart of accounts. Parent references
// are by GUID; the hierarchy is reconstructed, not flattened.
type Account struct {
	GUID        string
	Name        string
	Type        string // foreign vocabulary: ROOT, ASSET, BANK, CREDIT, ...
	Code        string
	Description string
	ParentGUID  string
	Placeholder bool // explicitly flagged in the source
}

// Entry is one split of a foreign transaction, already converted to
// minor units.
type Entry struct {
	GUID        string
	AccountGUID string
	Amount      ledger.Amount
	Memo        string
	Reconciled  string // 'n' not reconciled, 'c' cleared, 'y' reconciled
}

// Transaction is a foreign transaction with its splits.
type Transaction struct {
	GUID        string
	Date        string // YYYY-MM-DD
	Description string
	Reference   string
	Entries     []Entry
}

// Books is the parsed content of one import file plus the warnings
// accumulated while skipping malformed elements.
type Books struct {
	Commodities  []Commodity
	Accounts     []Account
	Transactions []Transaction
	Warnings     []string
}

// EntryInputs converts the transaction's splits to validator input. The
// account ids are still foreign GUIDs; the import mapping step rewrites them
// once accounts are matched or created.
func (t Transaction) EntryInputs() []ledger.EntryInput {
	out := make([]ledger.EntryInput, 0, len(t.Entries))
	for _, e := range t.Entries {
		out = append(out, ledger.EntryInput{
			AccountID: e.AccountGUID,
			Amount:    e.Amount,
			Note:      e.Memo,
		})
	}
	return out
}

// UnbalancedTransaction identifies an imported transaction whose splits do
// not sum to zero, with the residual the validator reported.
type UnbalancedTransaction struct {
	GUID     string        `json:"guid"`
	Date     string        `json:"date"`
	Residual ledger.Amount `json:"residual"`
}

// Unbalanced runs every parsed transaction through the entry validator and
// returns the failures. Rounding during rational conversion can legitimately
// unbalance a transaction that balanced in the source; the caller decides
// what to do with them.
func (b *Books) Unbalanced() []UnbalancedTransaction {
	var out []UnbalancedTransaction
	for _, t := range b.Transactions {
		_, err := ledger.ValidateEntries(t.EntryInputs())
		if err == nil {
			continue
		}
		var unbalanced *ledger.UnbalancedError
		if errors.As(err, &unbalanced) {
			out = append(out, UnbalancedTransaction{
				GUID:     t.GUID,
				Date:     t.Date,
				Residual: unbalanced.Residual,
			})
		}
	}
	return out
}
