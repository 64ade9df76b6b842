package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gotchoices/sereus-bonum/internal/ledger"
	"github.com/gotchoices/sereus-bonum/internal/report"
	"github.com/gotchoices/sereus-bonum/internal/store"
)

type createUnitRequest struct {
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Symbol         string          `json:"symbol"`
	UnitType       ledger.UnitType `json:"unit_type"`
	DisplayDivisor int64           `json:"display_divisor"`
}

type patchUnitRequest struct {
	Name           *string          `json:"name"`
	Symbol         *string          `json:"symbol"`
	UnitType       *ledger.UnitType `json:"unit_type"`
	DisplayDivisor *int64           `json:"display_divisor"`
}

type createEntityRequest struct {
	Name                 string               `json:"name"`
	Description          string               `json:"description"`
	FiscalYearEnd        string               `json:"fiscal_year_end"`
	BaseUnit             string               `json:"base_unit"`
	DefaultCostingMethod ledger.CostingMethod `json:"default_costing_method"`
}

type patchEntityRequest struct {
	Name                 *string               `json:"name"`
	Description          *string               `json:"description"`
	FiscalYearEnd        *string               `json:"fiscal_year_end"`
	BaseUnit             *string               `json:"base_unit"`
	DefaultCostingMethod *ledger.CostingMethod `json:"default_costing_method"`
}

type createGroupRequest struct {
	Name         string             `json:"name"`
	AccountType  ledger.AccountType `json:"account_type"`
	ParentID     string             `json:"parent_id"`
	Description  string             `json:"description"`
	DisplayOrder int                `json:"display_order"`
}

type patchGroupRequest struct {
	Name         *string             `json:"name"`
	AccountType  *ledger.AccountType `json:"account_type"`
	ParentID     *string             `json:"parent_id"`
	Description  *string             `json:"description"`
	DisplayOrder *int                `json:"display_order"`
}

type createAccountRequest struct {
	AccountGroupID string               `json:"account_group_id"`
	ParentID       string               `json:"parent_id"`
	Code           string               `json:"code"`
	Name           string               `json:"name"`
	Description    string               `json:"description"`
	Unit           string               `json:"unit"`
	CostingMethod  ledger.CostingMethod `json:"costing_method"`
}

type patchAccountRequest struct {
	AccountGroupID *string               `json:"account_group_id"`
	ParentID       *string               `json:"parent_id"`
	Code           *string               `json:"code"`
	Name           *string               `json:"name"`
	Description    *string               `json:"description"`
	Unit           *string               `json:"unit"`
	CostingMethod  *ledger.CostingMethod `json:"costing_method"`
	ClosedDate     *string               `json:"closed_date"`
	IsActive       *bool                 `json:"is_active"`
}

type createTransactionRequest struct {
	Date      string              `json:"date"`
	Memo      string              `json:"memo"`
	Reference string              `json:"reference"`
	Entries   []ledger.EntryInput `json:"entries"`
}

type patchTransactionRequest struct {
	Date      *string `json:"date"`
	Memo      *string `json:"memo"`
	Reference *string `json:"reference"`
}

type balanceResponse struct {
	AccountID string        `json:"account_id"`
	AsOf      string        `json:"as_of"`
	Balance   ledger.Amount `json:"balance"`
}

// --- Units ---

func (a *API) handleUnitsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		units, err := a.store.Units(r.Context())
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, units)
	case http.MethodPost:
		var req createUnitRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		code := strings.ToUpper(strings.TrimSpace(req.Code))
		if code == "" {
			writeError(w, r, http.StatusBadRequest, "code is required")
			return
		}
		if req.DisplayDivisor <= 0 {
			writeError(w, r, http.StatusBadRequest, "display_divisor must be > 0")
			return
		}
		u, err := a.store.CreateUnit(r.Context(), ledger.Unit{
			Code:           code,
			Name:           req.Name,
			Symbol:         req.Symbol,
			UnitType:       req.UnitType,
			DisplayDivisor: req.DisplayDivisor,
		})
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		w.Header().Set("Location", "/v1/units/"+u.Code)
		writeJSON(w, http.StatusCreated, u)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleUnitResource(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimPrefix(r.URL.Path, "/v1/units/")
	if code == "" || strings.Contains(code, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		u, err := a.store.Unit(r.Context(), code)
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	case http.MethodPatch:
		var req patchUnitRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		u, err := a.store.UpdateUnit(r.Context(), code, store.UnitPatch{
			Name:           req.Name,
			Symbol:         req.Symbol,
			UnitType:       req.UnitType,
			DisplayDivisor: req.DisplayDivisor,
		})
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch)
	}
}

// --- Entities ---

func (a *API) handleEntitiesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		entities, err := a.store.Entities(r.Context())
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, entities)
	case http.MethodPost:
		var req createEntityRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			writeError(w, r, http.StatusBadRequest, "name is required")
			return
		}
		ent, err := a.store.CreateEntity(r.Context(), store.EntityInput{
			Name:                 req.Name,
			Description:          req.Description,
			FiscalYearEnd:        req.FiscalYearEnd,
			BaseUnit:             strings.ToUpper(req.BaseUnit),
			DefaultCostingMethod: req.DefaultCostingMethod,
		})
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		w.Header().Set("Location", "/v1/entities/"+ent.ID)
		writeJSON(w, http.StatusCreated, ent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleEntityResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/entities/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	id, rest, _ := strings.Cut(path, "/")
	if id == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch rest {
	case "":
		a.entityByID(w, r, id)
	case "accounts":
		a.entityAccounts(w, r, id)
	case "balance-sheet":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		a.balanceSheet(w, r, id)
	case "transactions":
		a.entityTransactions(w, r, id)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) entityByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		ent, err := a.store.Entity(r.Context(), id)
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ent)
	case http.MethodPatch:
		var req patchEntityRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		ent, err := a.store.UpdateEntity(r.Context(), id, store.EntityPatch{
			Name:                 req.Name,
			Description:          req.Description,
			FiscalYearEnd:        req.FiscalYearEnd,
			BaseUnit:             req.BaseUnit,
			DefaultCostingMethod: req.DefaultCostingMethod,
		})
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ent)
	case http.MethodDelete:
		if err := a.store.DeleteEntity(r.Context(), id); err != nil {
			handleStoreError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

func (a *API) entityAccounts(w http.ResponseWriter, r *http.Request, entityID string) {
	switch r.Method {
	case http.MethodGet:
		accounts, err := a.store.AccountsForEntity(r.Context(), entityID)
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, accounts)
	case http.MethodPost:
		var req createAccountRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			writeError(w, r, http.StatusBadRequest, "name is required")
			return
		}
		if req.AccountGroupID == "" {
			writeError(w, r, http.StatusBadRequest, "account_group_id is required")
			return
		}
		acc, err := a.store.CreateAccount(r.Context(), store.AccountInput{
			EntityID:       entityID,
			AccountGroupID: req.AccountGroupID,
			ParentID:       req.ParentID,
			Code:           req.Code,
			Name:           req.Name,
			Description:    req.Description,
			Unit:           strings.ToUpper(req.Unit),
			CostingMethod:  req.CostingMethod,
			IsActive:       true,
		})
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		w.Header().Set("Location", "/v1/accounts/"+acc.ID)
		writeJSON(w, http.StatusCreated, acc)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) balanceSheet(w http.ResponseWriter, r *http.Request, entityID string) {
	asOf := strings.TrimSpace(r.URL.Query().Get("as_of"))
	if asOf != "" && !validDate(asOf) {
		writeError(w, r, http.StatusBadRequest, "as_of must be YYYY-MM-DD")
		return
	}
	sheet, err := a.reports.BalanceSheetFor(r.Context(), entityID, asOf)
	if err != nil {
		handleStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sheet)
}

func (a *API) entityTransactions(w http.ResponseWriter, r *http.Request, entityID string) {
	switch r.Method {
	case http.MethodGet:
		limit, err := parsePositiveInt(r.URL.Query().Get("limit"), 100, 1, 1000)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		txns, err := a.store.Transactions(r.Context(), entityID, store.TransactionFilter{
			AccountID: strings.TrimSpace(r.URL.Query().Get("account_id")),
			StartDate: strings.TrimSpace(r.URL.Query().Get("start")),
			EndDate:   strings.TrimSpace(r.URL.Query().Get("end")),
			Limit:     limit,
		})
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, txns)
	case http.MethodPost:
		var req createTransactionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if !validDate(req.Date) {
			writeError(w, r, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		txn, err := a.store.CreateTransaction(r.Context(), ledger.TransactionInput{
			EntityID:  entityID,
			Date:      req.Date,
			Memo:      req.Memo,
			Reference: req.Reference,
		}, req.Entries)
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		w.Header().Set("Location", "/v1/transactions/"+txn.ID)
		writeJSON(w, http.StatusCreated, txn)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

// --- Account groups ---

func (a *API) handleGroupsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		groups, err := a.store.AccountGroups(r.Context())
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, groups)
	case http.MethodPost:
		var req createGroupRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			writeError(w, r, http.StatusBadRequest, "name is required")
			return
		}
		grp, err := a.store.CreateAccountGroup(r.Context(), store.GroupInput{
			Name:         req.Name,
			AccountType:  req.AccountType,
			ParentID:     req.ParentID,
			Description:  req.Description,
			DisplayOrder: req.DisplayOrder,
		})
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		w.Header().Set("Location", "/v1/groups/"+grp.ID)
		writeJSON(w, http.StatusCreated, grp)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleGroupResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/groups/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		grp, err := a.store.AccountGroup(r.Context(), id)
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, grp)
	case http.MethodPatch:
		var req patchGroupRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		grp, err := a.store.UpdateAccountGroup(r.Context(), id, store.GroupPatch{
			Name:         req.Name,
			AccountType:  req.AccountType,
			ParentID:     req.ParentID,
			Description:  req.Description,
			DisplayOrder: req.DisplayOrder,
		})
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, grp)
	case http.MethodDelete:
		if err := a.store.DeleteAccountGroup(r.Context(), id); err != nil {
			handleStoreError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

// --- Accounts ---

func (a *API) handleAccountResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/accounts/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	id, rest, _ := strings.Cut(path, "/")
	if id == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch rest {
	case "":
		a.accountByID(w, r, id)
	case "balance":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		a.accountBalance(w, r, id)
	case "ledger":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		a.accountLedger(w, r, id)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) accountByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		acc, err := a.store.Account(r.Context(), id)
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, acc)
	case http.MethodPatch:
		var req patchAccountRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		acc, err := a.store.UpdateAccount(r.Context(), id, store.AccountPatch{
			AccountGroupID: req.AccountGroupID,
			ParentID:       req.ParentID,
			Code:           req.Code,
			Name:           req.Name,
			Description:    req.Description,
			Unit:           req.Unit,
			CostingMethod:  req.CostingMethod,
			ClosedDate:     req.ClosedDate,
			IsActive:       req.IsActive,
		})
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, acc)
	case http.MethodDelete:
		if err := a.store.DeleteAccount(r.Context(), id); err != nil {
			handleStoreError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

func (a *API) accountBalance(w http.ResponseWriter, r *http.Request, id string) {
	asOf := strings.TrimSpace(r.URL.Query().Get("as_of"))
	if asOf != "" && !validDate(asOf) {
		writeError(w, r, http.StatusBadRequest, "as_of must be YYYY-MM-DD")
		return
	}
	balance, err := a.reports.Balance(r.Context(), id, asOf)
	if err != nil {
		handleStoreError(w, r, err)
		return
	}
	if asOf == "" {
		asOf = ledger.Today()
	}
	writeJSON(w, http.StatusOK, balanceResponse{
		AccountID: id,
		AsOf:      asOf,
		Balance:   balance,
	})
}

func (a *API) accountLedger(w http.ResponseWriter, r *http.Request, id string) {
	limit, err := parsePositiveInt(r.URL.Query().Get("limit"), 0, 1, 10000)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	start := strings.TrimSpace(r.URL.Query().Get("start"))
	end := strings.TrimSpace(r.URL.Query().Get("end"))
	if (start != "" && !validDate(start)) || (end != "" && !validDate(end)) {
		writeError(w, r, http.StatusBadRequest, "start and end must be YYYY-MM-DD")
		return
	}
	unreconciled := false
	if raw := r.URL.Query().Get("unreconciled"); raw != "" {
		unreconciled, err = strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "unreconciled must be a boolean")
			return
		}
	}
	rows, err := a.reports.Ledger(r.Context(), id, report.LedgerOptions{
		StartDate:    start,
		EndDate:      end,
		Unreconciled: unreconciled,
		Limit:        limit,
	})
	if err != nil {
		handleStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// --- Transactions ---

func (a *API) handleTransactionResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/transactions/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	id, rest, _ := strings.Cut(path, "/")
	if id == "" || (rest != "" && rest != "entries") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if rest == "entries" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		entries, err := a.store.EntriesForTransaction(r.Context(), id)
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
		return
	}

	switch r.Method {
	case http.MethodGet:
		txn, err := a.store.Transaction(r.Context(), id)
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, txn)
	case http.MethodPatch:
		var req patchTransactionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if req.Date != nil && !validDate(*req.Date) {
			writeError(w, r, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		txn, err := a.store.UpdateTransaction(r.Context(), id, store.TransactionPatch{
			Date:      req.Date,
			Memo:      req.Memo,
			Reference: req.Reference,
		})
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, txn)
	case http.MethodDelete:
		if err := a.store.DeleteTransaction(r.Context(), id); err != nil {
			handleStoreError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

// --- helpers ---

func validDate(s string) bool {
	return ledger.ValidDate(s)
}

// parsePositiveInt parses a query integer with bounds; empty returns def.
func parsePositiveInt(raw string, def, min, max int) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("limit must be an integer")
	}
	if val < min || val > max {
		return 0, errors.New("limit out of range")
	}
	return val, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

func handleStoreError(w http.ResponseWriter, r *http.Request, err error) {
	var unbalanced *ledger.UnbalancedError
	switch {
	case errors.As(err, &unbalanced):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":    unbalanced.Error(),
			"residual": unbalanced.Residual,
		})
	case errors.Is(err, ledger.ErrNoEntries),
		errors.Is(err, ledger.ErrInvalidType),
		errors.Is(err, ledger.ErrParentCycle),
		errors.Is(err, ledger.ErrUnknownParent):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}
