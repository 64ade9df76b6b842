package report

import (
	"context"
	"sort"

	"github.com/samber/lo"

	"github.com/gotchoices/sereus-bonum/internal/ledger"
)

// AccountBalance is one balance-sheet row: an account with its group, type,
// and balance as of the cutoff.
type AccountBalance struct {
	AccountID   string             `json:"account_id"`
	AccountName string             `json:"account_name"`
	AccountCode string             `json:"account_code,omitempty"`
	GroupID     string             `json:"group_id"`
	GroupName   string             `json:"group_name"`
	AccountType ledger.AccountType `json:"account_type"`
	Balance     ledger.Amount      `json:"balance"`
	Unit        string             `json:"unit"`
}

// GroupBalance sums the member accounts of one group. Groups with no
// accounts report 0, they are not omitted.
type GroupBalance struct {
	GroupID     string             `json:"group_id"`
	GroupName   string             `json:"group_name"`
	AccountType ledger.AccountType `json:"account_type"`
	Balance     ledger.Amount      `json:"balance"`
}

// BalanceSheet aggregates every active account of an entity as of a cutoff
// date. Signed totals follow the engine convention (positive = debit);
// TotalLiabilities and TotalEquity are display values (absolute), with the
// raw signed figures alongside. NetIncome folds into equity on every call;
// retained earnings are derived, never persisted.
type BalanceSheet struct {
	EntityID string `json:"entity_id"`
	AsOf     string `json:"as_of"`

	NetWorth         ledger.Amount `json:"net_worth"`
	TotalAssets      ledger.Amount `json:"total_assets"`
	TotalLiabilities ledger.Amount `json:"total_liabilities"` // displayed positive
	TotalEquity      ledger.Amount `json:"total_equity"`      // adjusted, displayed positive

	SignedLiabilities ledger.Amount `json:"signed_liabilities"`
	SignedEquity      ledger.Amount `json:"signed_equity"`
	TotalIncome       ledger.Amount `json:"total_income"`
	TotalExpense      ledger.Amount `json:"total_expense"`
	NetIncome         ledger.Amount `json:"net_income"`
	AdjustedEquity    ledger.Amount `json:"adjusted_equity"`

	GroupBalances   []GroupBalance   `json:"group_balances"`
	AccountBalances []AccountBalance `json:"account_balances"`
}

// BalanceSheetFor computes the balance sheet for an entity as of the cutoff
// date (empty = today). Ordering of groups and accounts is (display order,
// code/name) ascending; it is cosmetic and never affects totals.
func (s *Service) BalanceSheetFor(ctx context.Context, entityID, asOf string) (*BalanceSheet, error) {
	if asOf == "" {
		asOf = ledger.Today()
	}

	accounts, err := s.src.AccountsForEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}
	groups, err := s.src.AccountGroups(ctx)
	if err != nil {
		return nil, err
	}

	active := lo.Filter(accounts, func(a ledger.AccountWithGroup, _ int) bool {
		return a.Account.IsActive
	})

	rows := make([]AccountBalance, 0, len(active))
	for _, a := range active {
		balance, err := s.Balance(ctx, a.Account.ID, asOf)
		if err != nil {
			return nil, err
		}
		rows = append(rows, AccountBalance{
			AccountID:   a.Account.ID,
			AccountName: a.Account.Name,
			AccountCode: a.Account.Code,
			GroupID:     a.Group.ID,
			GroupName:   a.Group.Name,
			AccountType: a.Type(),
			Balance:     balance,
			Unit:        a.Account.Unit,
		})
	}

	byType := func(t ledger.AccountType) ledger.Amount {
		return lo.SumBy(rows, func(r AccountBalance) ledger.Amount {
			if r.AccountType == t {
				return r.Balance
			}
			return 0
		})
	}
	totalAssets := byType(ledger.Asset)
	totalLiabilities := byType(ledger.Liability)
	totalEquity := byType(ledger.Equity)
	totalIncome := byType(ledger.Income)
	totalExpense := byType(ledger.Expense)

	// Income is credit-signed and expense debit-signed, so this flips to a
	// conventional positive-is-profit figure.
	netIncome := -totalIncome - totalExpense
	adjustedEquity := -totalLiabilities + totalEquity + netIncome
	netWorth := totalAssets + totalLiabilities

	perGroup := lo.GroupBy(rows, func(r AccountBalance) string { return r.GroupID })
	groupBalances := make([]GroupBalance, 0, len(groups))
	for _, g := range groups {
		groupBalances = append(groupBalances, GroupBalance{
			GroupID:     g.ID,
			GroupName:   g.Name,
			AccountType: g.AccountType,
			Balance: lo.SumBy(perGroup[g.ID], func(r AccountBalance) ledger.Amount {
				return r.Balance
			}),
		})
	}

	groupOrder := lo.SliceToMap(groups, func(g ledger.AccountGroup) (string, int) {
		return g.ID, g.DisplayOrder
	})
	sort.SliceStable(rows, func(i, j int) bool {
		if groupOrder[rows[i].GroupID] != groupOrder[rows[j].GroupID] {
			return groupOrder[rows[i].GroupID] < groupOrder[rows[j].GroupID]
		}
		if rows[i].AccountCode != rows[j].AccountCode {
			return rows[i].AccountCode < rows[j].AccountCode
		}
		return rows[i].AccountName < rows[j].AccountName
	})

	return &BalanceSheet{
		EntityID:          entityID,
		AsOf:              asOf,
		NetWorth:          netWorth,
		TotalAssets:       totalAssets,
		TotalLiabilities:  totalLiabilities.Abs(),
		TotalEquity:       adjustedEquity.Abs(),
		SignedLiabilities: totalLiabilities,
		SignedEquity:      totalEquity,
		TotalIncome:       totalIncome,
		TotalExpense:      totalExpense,
		NetIncome:         netIncome,
		AdjustedEquity:    adjustedEquity,
		GroupBalances:     groupBalances,
		AccountBalances:   rows,
	}, nil
}
