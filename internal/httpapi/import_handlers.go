package httpapi

import (
	"errors"
	"net/http"

	"github.com/gotchoices/sereus-bonum/internal/gnucash"
	"github.com/gotchoices/sereus-bonum/internal/obs"
)

type importSummary struct {
	Commodities  int `json:"commodities"`
	Accounts     int `json:"accounts"`
	Transactions int `json:"transactions"`
	TotalSplits  int `json:"total_splits"`

	AccountTypes map[string]int `json:"account_types"`
	SplitSizes   map[int]int    `json:"split_sizes"`

	DateFrom string `json:"date_from,omitempty"`
	DateTo   string `json:"date_to,omitempty"`

	ExplicitPlaceholders int `json:"explicit_placeholders"`
	ImplicitPlaceholders int `json:"implicit_placeholders"`
	Transactional        int `json:"transactional"`
	UnusedLeaves         int `json:"unused_leaves"`
}

type importResponse struct {
	Summary    importSummary                   `json:"summary"`
	Warnings   []string                        `json:"warnings,omitempty"`
	Unbalanced []gnucash.UnbalancedTransaction `json:"unbalanced,omitempty"`
	Hierarchy  []string                        `json:"hierarchy_findings,omitempty"`
}

// handleGnuCashImport parses an uploaded GnuCash XML file (plain or
// gzipped) and reports what a commit would produce. Nothing is persisted:
// the caller reviews the summary, warnings, and unbalanced transactions
// before deciding what to load.
func (a *API) handleGnuCashImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	books, err := gnucash.Parse(r.Body)
	if err != nil {
		if errors.Is(err, gnucash.ErrNoBook) {
			writeError(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, r, http.StatusBadRequest, "unreadable import file: "+err.Error())
		return
	}

	sum := gnucash.Summarize(books)
	obs.CountImport(sum.Accounts, sum.Transactions, sum.Commodities, sum.Warnings)

	writeJSON(w, http.StatusOK, importResponse{
		Summary: importSummary{
			Commodities:          sum.Commodities,
			Accounts:             sum.Accounts,
			Transactions:         sum.Transactions,
			TotalSplits:          sum.TotalSplits,
			AccountTypes:         sum.AccountTypes,
			SplitSizes:           sum.SplitSizes,
			DateFrom:             sum.DateFrom,
			DateTo:               sum.DateTo,
			ExplicitPlaceholders: sum.ExplicitPlaceholders,
			ImplicitPlaceholders: sum.ImplicitPlaceholders,
			Transactional:        sum.Transactional,
			UnusedLeaves:         sum.UnusedLeaves,
		},
		Warnings:   books.Warnings,
		Unbalanced: books.Unbalanced(),
		Hierarchy:  books.CheckHierarchy(),
	})
}
