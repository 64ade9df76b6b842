package ledger

// Read models fetched from the store for the engine. These are explicit typed
// shapes: every row scan lands here, never in positional slices.

// JoinedEntry is an entry joined to its parent transaction header plus the
// count of sibling entries in the same transaction. The store returns these
// ordered ascending by (transaction date, transaction creation order); the
// ledger view's running balance depends on that ordering.
type JoinedEntry struct {
	Entry
	TransactionDate      string `json:"transaction_date"`
	TransactionMemo      string `json:"transaction_memo,omitempty"`
	TransactionReference string `json:"transaction_reference,omitempty"`
	SiblingCount         int    `json:"sibling_count"`
}

// EntryWithAccount is an entry joined to its account's name and display path,
// used for offset resolution and split legs.
type EntryWithAccount struct {
	Entry
	AccountName string `json:"account_name"`
	AccountPath string `json:"account_path"`
}

// AccountWithGroup pairs an account with its owning group, as fetched for
// balance-sheet aggregation.
type AccountWithGroup struct {
	Account Account      `json:"account"`
	Group   AccountGroup `json:"group"`
}

// Type is the account's effective type, inherited from its group.
func (a AccountWithGroup) Type() AccountType { return a.Group.AccountType }
