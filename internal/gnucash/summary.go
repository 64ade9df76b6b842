package gnucash

import (
	"github.com/samber/lo"
)

// Summary condenses a parse for the import report: counts by account type,
// the split-size distribution, placeholder classification, and how many
// transactions would fail validation as-is.
type Summary struct {
	Commodities  int
	Accounts     int
	Transactions int
	TotalSplits  int

	AccountTypes map[string]int
	SplitSizes   map[int]int

	DateFrom string
	DateTo   string

	ExplicitPlaceholders int
	ImplicitPlaceholders int
	Transactional        int
	UnusedLeaves         int

	Unbalanced int
	Warnings   int
}

// Summarize builds the report for parsed books.
func Summarize(b *Books) Summary {
	s := Summary{
		Commodities:  len(b.Commodities),
		Accounts:     len(b.Accounts),
		Transactions: len(b.Transactions),
		Warnings:     len(b.Warnings),
		AccountTypes: lo.CountValuesBy(b.Accounts, func(a Account) string { return a.Type }),
		SplitSizes:   lo.CountValuesBy(b.Transactions, func(t Transaction) int { return len(t.Entries) }),
		Unbalanced:   len(b.Unbalanced()),
	}
	for _, t := range b.Transactions {
		s.TotalSplits += len(t.Entries)
	}

	dates := lo.Map(b.Transactions, func(t Transaction, _ int) string { return t.Date })
	if len(dates) > 0 {
		s.DateFrom = lo.Min(dates)
		s.DateTo = lo.Max(dates)
	}

	c := Classify(b)
	s.ExplicitPlaceholders = len(c.Explicit)
	s.ImplicitPlaceholders = len(c.Implicit)
	s.Transactional = len(c.Transactional)
	s.UnusedLeaves = len(c.UnusedLeaves)
	return s
}
