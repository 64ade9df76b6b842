package gnucash

import (
	"strings"
	"testing"
)

func classifyBooks() *Books {
	return &Books{
		Accounts: []Account{
			{GUID: "root", Name: "Root Account", Type: "ROOT"},
			{GUID: "assets", Name: "Assets", Type: "ASSET", ParentGUID: "root", Placeholder: true},
			{GUID: "checking", Name: "Checking", Type: "BANK", ParentGUID: "assets"},
			{GUID: "expenses", Name: "Expenses", Type: "EXPENSE", ParentGUID: "root"},
			{GUID: "food", Name: "Food", Type: "EXPENSE", ParentGUID: "expenses"},
			{GUID: "unused", Name: "Old Savings", Type: "BANK", ParentGUID: "assets"},
		},
		Transactions: []Transaction{
			{GUID: "t1", Date: "2024-01-05", Entries: []Entry{
				{GUID: "s1", AccountGUID: "checking", Amount: -2500},
				{GUID: "s2", AccountGUID: "food", Amount: 2500},
			}},
		},
	}
}

func TestClassify(t *testing.T) {
	c := Classify(classifyBooks())

	names := func(accs []Account) string {
		parts := make([]string, 0, len(accs))
		for _, a := range accs {
			parts = append(parts, a.GUID)
		}
		return strings.Join(parts, ",")
	}

	if got := names(c.Explicit); got != "assets" {
		t.Fatalf("explicit = %s", got)
	}
	// Root and expenses have no splits but have children; they are implicit
	// placeholders even without the source flag.
	if got := names(c.Implicit); got != "root,expenses" {
		t.Fatalf("implicit = %s", got)
	}
	if got := names(c.Transactional); got != "checking,food" {
		t.Fatalf("transactional = %s", got)
	}
	if got := names(c.UnusedLeaves); got != "unused" {
		t.Fatalf("unused = %s", got)
	}
	if len(c.Placeholders()) != 3 {
		t.Fatalf("placeholders = %d, want 3", len(c.Placeholders()))
	}
}

func TestAccountPath(t *testing.T) {
	b := classifyBooks()
	if got := b.AccountPath("checking"); got != "Root Account : Assets : Checking" {
		t.Fatalf("path = %q", got)
	}
	if got := b.AccountPath("root"); got != "Root Account" {
		t.Fatalf("root path = %q", got)
	}
	if got := b.AccountPath("missing"); got != "" {
		t.Fatalf("missing path = %q", got)
	}
}

func TestAccountPathBoundedOnCycle(t *testing.T) {
	b := &Books{Accounts: []Account{
		{GUID: "a", Name: "A", Type: "ASSET", ParentGUID: "b"},
		{GUID: "b", Name: "B", Type: "ASSET", ParentGUID: "a"},
	}}
	// Must terminate; the rendered path is truncated, not infinite.
	_ = b.AccountPath("a")
}

func TestCheckHierarchy(t *testing.T) {
	b := classifyBooks()
	if findings := b.CheckHierarchy(); len(findings) != 0 {
		t.Fatalf("clean hierarchy reported: %v", findings)
	}

	b.Accounts = append(b.Accounts,
		Account{GUID: "orphan", Name: "Orphan", Type: "ASSET", ParentGUID: "gone"},
		Account{GUID: "x", Name: "X", Type: "ASSET", ParentGUID: "y"},
		Account{GUID: "y", Name: "Y", Type: "ASSET", ParentGUID: "x"},
	)
	findings := b.CheckHierarchy()
	var unknown, cyclic int
	for _, f := range findings {
		if strings.Contains(f, "unknown parent") {
			unknown++
		}
		if strings.Contains(f, "cyclic") {
			cyclic++
		}
	}
	if unknown != 1 {
		t.Fatalf("unknown parent findings = %d: %v", unknown, findings)
	}
	if cyclic != 2 {
		t.Fatalf("cycle findings = %d: %v", cyclic, findings)
	}
}

func TestSummarize(t *testing.T) {
	books, err := Parse(strings.NewReader(fixtureXML))
	if err != nil {
		t.Fatal(err)
	}
	s := Summarize(books)

	if s.Accounts != 4 || s.Transactions != 2 || s.Commodities != 1 {
		t.Fatalf("summary counts = %+v", s)
	}
	if s.TotalSplits != 4 || s.SplitSizes[2] != 2 {
		t.Fatalf("split distribution = %+v", s)
	}
	if s.AccountTypes["BANK"] != 1 || s.AccountTypes["ROOT"] != 1 {
		t.Fatalf("account types = %v", s.AccountTypes)
	}
	if s.DateFrom != "2024-03-05" || s.DateTo != "2024-03-09" {
		t.Fatalf("date range = %s..%s", s.DateFrom, s.DateTo)
	}
	if s.Unbalanced != 1 || s.Warnings != 1 {
		t.Fatalf("unbalanced = %d, warnings = %d", s.Unbalanced, s.Warnings)
	}
	if s.ExplicitPlaceholders != 1 || s.ImplicitPlaceholders != 1 {
		t.Fatalf("placeholders = %d/%d", s.ExplicitPlaceholders, s.ImplicitPlaceholders)
	}
}
