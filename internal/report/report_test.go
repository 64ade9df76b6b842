package report

import (
	"context"
	"errors"
	"testing"

	"github.com/gotchoices/sereus-bonum/internal/ledger"
	"github.com/gotchoices/sereus-bonum/internal/store"
)

type fixture struct {
	store   *store.Memory
	svc     *Service
	entity  ledger.Entity
	checking, opening, utilities, groceries ledger.Account
}

// Opening scenario: checking (ASSET) funded from opening balances (EQUITY)
// on 2024-01-01, then a split purchase on 2024-01-20 across two expense
// accounts.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	m := store.NewMemory()

	if _, err := m.CreateUnit(ctx, ledger.Unit{Code: "USD", Name: "US Dollar", Symbol: "$", UnitType: ledger.Fiat, DisplayDivisor: 100}); err != nil {
		t.Fatal(err)
	}
	entity, err := m.CreateEntity(ctx, store.EntityInput{Name: "Personal", BaseUnit: "USD"})
	if err != nil {
		t.Fatal(err)
	}

	assets, err := m.CreateAccountGroup(ctx, store.GroupInput{Name: "Current Assets", AccountType: ledger.Asset, DisplayOrder: 1})
	if err != nil {
		t.Fatal(err)
	}
	equity, err := m.CreateAccountGroup(ctx, store.GroupInput{Name: "Equity", AccountType: ledger.Equity, DisplayOrder: 3})
	if err != nil {
		t.Fatal(err)
	}
	expenses, err := m.CreateAccountGroup(ctx, store.GroupInput{Name: "Household", AccountType: ledger.Expense, DisplayOrder: 5})
	if err != nil {
		t.Fatal(err)
	}

	mkAccount := func(groupID, code, name string) ledger.Account {
		acc, err := m.CreateAccount(ctx, store.AccountInput{
			EntityID:       entity.ID,
			AccountGroupID: groupID,
			Code:           code,
			Name:           name,
			Unit:           "USD",
			IsActive:       true,
		})
		if err != nil {
			t.Fatal(err)
		}
		return acc
	}
	f := &fixture{
		store:     m,
		svc:       New(m),
		entity:    entity,
		checking:  mkAccount(assets.ID, "1000", "Checking"),
		opening:   mkAccount(equity.ID, "3000", "Opening Balances"),
		utilities: mkAccount(expenses.ID, "5100", "Utilities"),
		groceries: mkAccount(expenses.ID, "5200", "Groceries"),
	}

	if _, err := m.CreateTransaction(ctx,
		ledger.TransactionInput{EntityID: entity.ID, Date: "2024-01-01", Memo: "Opening balance"},
		[]ledger.EntryInput{
			{AccountID: f.checking.ID, Amount: 500000},
			{AccountID: f.opening.ID, Amount: -500000},
		}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.CreateTransaction(ctx,
		ledger.TransactionInput{EntityID: entity.ID, Date: "2024-01-20", Memo: "Errands", Reference: "101"},
		[]ledger.EntryInput{
			{AccountID: f.checking.ID, Amount: -15000},
			{AccountID: f.utilities.ID, Amount: 10000},
			{AccountID: f.groceries.ID, Amount: 5000},
		}); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.svc.Balance(ctx, f.checking.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	if got != 485000 {
		t.Fatalf("checking balance = %d, want 485000", got)
	}

	got, _ = f.svc.Balance(ctx, f.opening.ID, "")
	if got != -500000 {
		t.Fatalf("equity balance = %d, want -500000", got)
	}
}

func TestBalanceAsOfCutoff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for asOf, want := range map[string]ledger.Amount{
		"2023-12-31": 0,
		"2024-01-01": 500000,
		"2024-01-19": 500000,
		"2024-01-20": 485000,
	} {
		got, err := f.svc.Balance(ctx, f.checking.ID, asOf)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("balance as of %s = %d, want %d", asOf, got, want)
		}
	}
}

func TestBalanceEmptyAndMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	fresh, err := f.store.CreateAccount(ctx, store.AccountInput{
		EntityID:       f.entity.ID,
		AccountGroupID: f.checking.AccountGroupID,
		Name:           "Savings",
		Unit:           "USD",
		IsActive:       true,
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := f.svc.Balance(ctx, fresh.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Fatalf("empty account balance = %d, want 0", got)
	}

	if _, err := f.svc.Balance(ctx, "no-such-account", ""); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLedgerRunningBalanceAndSplit(t *testing.T) {
	f := newFixture(t)
	rows, err := f.svc.Ledger(context.Background(), f.checking.ID, LedgerOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	first := rows[0]
	if first.IsSplit {
		t.Fatal("2-entry transaction classified as split")
	}
	if first.RunningBalance != 500000 {
		t.Fatalf("running[0] = %d, want 500000", first.RunningBalance)
	}
	if first.OffsetAccountID != f.opening.ID || first.OffsetAccountName != "Opening Balances" {
		t.Fatalf("offset = %s/%s", first.OffsetAccountID, first.OffsetAccountName)
	}

	second := rows[1]
	if !second.IsSplit {
		t.Fatal("3-entry transaction not classified as split")
	}
	if second.RunningBalance != 485000 {
		t.Fatalf("running[1] = %d, want 485000", second.RunningBalance)
	}
	if len(second.SplitEntries) != 2 {
		t.Fatalf("split legs = %d, want 2", len(second.SplitEntries))
	}
	// Sorted amount descending, and the legs offset this row's amount.
	if second.SplitEntries[0].Amount != 10000 || second.SplitEntries[1].Amount != 5000 {
		t.Fatalf("split legs = %d,%d", second.SplitEntries[0].Amount, second.SplitEntries[1].Amount)
	}
	if second.SplitEntries[0].Amount+second.SplitEntries[1].Amount != 15000 {
		t.Fatal("split legs do not offset the row amount")
	}
	if second.SplitEntries[0].AccountPath != "Expenses : Household : Utilities" {
		t.Fatalf("split path = %q", second.SplitEntries[0].AccountPath)
	}

	// Running balance consistency: running[i] == running[i-1] + amount[i].
	var acc ledger.Amount
	for i, row := range rows {
		acc += row.Amount
		if row.RunningBalance != acc {
			t.Fatalf("row %d running balance inconsistent", i)
		}
	}
}

func TestLedgerWindowAndLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rows, err := f.svc.Ledger(ctx, f.checking.ID, LedgerOptions{StartDate: "2024-01-02"})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Date != "2024-01-20" {
		t.Fatalf("windowed ledger = %+v", rows)
	}
	// The accumulator starts at 0 inside the window; the caller seeds any
	// opening balance row.
	if rows[0].RunningBalance != -15000 {
		t.Fatalf("windowed running = %d, want -15000", rows[0].RunningBalance)
	}

	rows, err = f.svc.Ledger(ctx, f.checking.ID, LedgerOptions{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Date != "2024-01-01" {
		t.Fatalf("limited ledger = %+v", rows)
	}
}

func TestBalanceSheet(t *testing.T) {
	f := newFixture(t)
	bs, err := f.svc.BalanceSheetFor(context.Background(), f.entity.ID, "")
	if err != nil {
		t.Fatal(err)
	}

	if bs.TotalAssets != 485000 {
		t.Fatalf("totalAssets = %d", bs.TotalAssets)
	}
	if bs.SignedEquity != -500000 {
		t.Fatalf("signedEquity = %d", bs.SignedEquity)
	}
	if bs.TotalExpense != 15000 {
		t.Fatalf("totalExpense = %d", bs.TotalExpense)
	}
	if bs.NetIncome != -15000 {
		t.Fatalf("netIncome = %d", bs.NetIncome)
	}
	if bs.NetWorth != 485000 {
		t.Fatalf("netWorth = %d", bs.NetWorth)
	}
	// Identity: assets + signed liabilities == net worth.
	if bs.TotalAssets+bs.SignedLiabilities != bs.NetWorth {
		t.Fatal("balance sheet identity violated")
	}
	// Equity display folds net income in and is shown positive.
	if bs.AdjustedEquity != -485000 || bs.TotalEquity != 485000 {
		t.Fatalf("adjustedEquity = %d, displayed %d", bs.AdjustedEquity, bs.TotalEquity)
	}

	if len(bs.AccountBalances) != 4 {
		t.Fatalf("account rows = %d, want 4", len(bs.AccountBalances))
	}
	if len(bs.GroupBalances) != 3 {
		t.Fatalf("group rows = %d, want 3", len(bs.GroupBalances))
	}
	for _, g := range bs.GroupBalances {
		if g.GroupName == "Household" && g.Balance != 15000 {
			t.Fatalf("household group balance = %d", g.Balance)
		}
	}
}

func TestBalanceSheetOpeningOnly(t *testing.T) {
	// Before any expenses the equity total displays positive and net worth
	// equals the funding.
	f := newFixture(t)
	bs, err := f.svc.BalanceSheetFor(context.Background(), f.entity.ID, "2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if bs.NetWorth != 500000 || bs.TotalEquity != 500000 {
		t.Fatalf("netWorth = %d, totalEquity = %d", bs.NetWorth, bs.TotalEquity)
	}
}

func TestBalanceSheetSkipsInactiveAccounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inactive := false
	if _, err := f.store.UpdateAccount(ctx, f.utilities.ID, store.AccountPatch{IsActive: &inactive}); err != nil {
		t.Fatal(err)
	}
	bs, err := f.svc.BalanceSheetFor(ctx, f.entity.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(bs.AccountBalances) != 3 {
		t.Fatalf("account rows = %d, want 3", len(bs.AccountBalances))
	}
	if bs.TotalExpense != 5000 {
		t.Fatalf("totalExpense = %d, want 5000", bs.TotalExpense)
	}
}

func TestBalanceSheetEmptyGroupReportsZero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.store.CreateAccountGroup(ctx, store.GroupInput{Name: "Long-term Debt", AccountType: ledger.Liability, DisplayOrder: 2}); err != nil {
		t.Fatal(err)
	}
	bs, err := f.svc.BalanceSheetFor(ctx, f.entity.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, g := range bs.GroupBalances {
		if g.GroupName == "Long-term Debt" {
			found = true
			if g.Balance != 0 {
				t.Fatalf("empty group balance = %d", g.Balance)
			}
		}
	}
	if !found {
		t.Fatal("empty group absent from balance sheet")
	}
}

func TestLedgerUnreconciledFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.store.CreateTransaction(ctx,
		ledger.TransactionInput{EntityID: f.entity.ID, Date: "2024-02-01", Memo: "Cleared rent"},
		[]ledger.EntryInput{
			{AccountID: f.checking.ID, Amount: -20000, ReconciliationID: "rec-2024-02"},
			{AccountID: f.groceries.ID, Amount: 20000},
		}); err != nil {
		t.Fatal(err)
	}

	rows, err := f.svc.Ledger(ctx, f.checking.ID, LedgerOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("unfiltered rows = %d, want 3", len(rows))
	}

	rows, err = f.svc.Ledger(ctx, f.checking.ID, LedgerOptions{Unreconciled: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("unreconciled rows = %d, want 2", len(rows))
	}
	for _, row := range rows {
		if row.Date == "2024-02-01" {
			t.Fatalf("reconciled entry leaked: %+v", row)
		}
	}
	if rows[1].RunningBalance != 485000 {
		t.Fatalf("running = %d, want 485000", rows[1].RunningBalance)
	}
}
