package ledger

import (
	"errors"
	"fmt"
)

// ErrNoEntries rejects a transaction with zero legs.
var ErrNoEntries = errors.New("transaction has no entries")

// UnbalancedError reports a candidate transaction whose entries do not net to
// zero. Residual is the non-zero integer sum in minor units.
type UnbalancedError struct {
	Residual Amount
}

func (e *UnbalancedError) Error() string {
	return fmt.Sprintf("transaction entries do not balance: residual %d", e.Residual)
}

// ValidateEntries is the single gate through which all transaction creation
// passes, including imported data. It returns the validated set iff the
// integer sum of amounts is exactly zero, and an UnbalancedError carrying the
// residual otherwise. It must run before any persistence side effect.
func ValidateEntries(entries []EntryInput) ([]EntryInput, error) {
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	var total Amount
	for _, e := range entries {
		total += e.Amount
	}
	if total != 0 {
		return nil, &UnbalancedError{Residual: total}
	}
	return entries, nil
}
