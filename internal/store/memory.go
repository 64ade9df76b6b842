package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gotchoices/sereus-bonum/internal/ids"
	"github.com/gotchoices/sereus-bonum/internal/ledger"
)

// Memory implements Store with in-process maps. It backs tests and the
// throwaway demo mode; durable deployments use sqlstore.
type Memory struct {
	mu       sync.RWMutex
	units    map[string]ledger.Unit
	entities map[string]ledger.Entity
	groups   map[string]ledger.AccountGroup
	accounts map[string]ledger.Account
	txns     map[string]ledger.Transaction
	entries  map[string][]ledger.Entry // transaction id -> legs
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		units:    make(map[string]ledger.Unit),
		entities: make(map[string]ledger.Entity),
		groups:   make(map[string]ledger.AccountGroup),
		accounts: make(map[string]ledger.Account),
		txns:     make(map[string]ledger.Transaction),
		entries:  make(map[string][]ledger.Entry),
	}
}

func (m *Memory) Close() error { return nil }

// Units -------------------------------------------------------------------

func (m *Memory) Units(ctx context.Context) ([]ledger.Unit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ledger.Unit, 0, len(m.units))
	for _, u := range m.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *Memory) Unit(ctx context.Context, code string) (ledger.Unit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.units[code]
	if !ok {
		return ledger.Unit{}, ledger.ErrNotFound
	}
	return u, nil
}

func (m *Memory) CreateUnit(ctx context.Context, u ledger.Unit) (ledger.Unit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.units[u.Code] = u
	return u, nil
}

func (m *Memory) UpdateUnit(ctx context.Context, code string, patch UnitPatch) (ledger.Unit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.units[code]
	if !ok {
		return ledger.Unit{}, ledger.ErrNotFound
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Symbol != nil {
		u.Symbol = *patch.Symbol
	}
	if patch.UnitType != nil {
		u.UnitType = *patch.UnitType
	}
	if patch.DisplayDivisor != nil {
		u.DisplayDivisor = *patch.DisplayDivisor
	}
	m.units[code] = u
	return u, nil
}

// Entities ----------------------------------------------------------------

func (m *Memory) Entities(ctx context.Context) ([]ledger.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ledger.Entity, 0, len(m.entities))
	for _, e := range m.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) Entity(ctx context.Context, id string) (ledger.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entities[id]
	if !ok {
		return ledger.Entity{}, ledger.ErrNotFound
	}
	return e, nil
}

func (m *Memory) CreateEntity(ctx context.Context, in EntityInput) (ledger.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	e := ledger.Entity{
		ID:                   uuid.NewString(),
		Name:                 in.Name,
		Description:          in.Description,
		FiscalYearEnd:        in.FiscalYearEnd,
		BaseUnit:             in.BaseUnit,
		DefaultCostingMethod: in.DefaultCostingMethod,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	m.entities[e.ID] = e
	return e, nil
}

func (m *Memory) UpdateEntity(ctx context.Context, id string, patch EntityPatch) (ledger.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entities[id]
	if !ok {
		return ledger.Entity{}, ledger.ErrNotFound
	}
	if patch.Name != nil {
		e.Name = *patch.Name
	}
	if patch.Description != nil {
		e.Description = *patch.Description
	}
	if patch.FiscalYearEnd != nil {
		e.FiscalYearEnd = *patch.FiscalYearEnd
	}
	if patch.BaseUnit != nil {
		e.BaseUnit = *patch.BaseUnit
	}
	if patch.DefaultCostingMethod != nil {
		e.DefaultCostingMethod = *patch.DefaultCostingMethod
	}
	e.UpdatedAt = time.Now().UTC()
	m.entities[id] = e
	return e, nil
}

func (m *Memory) DeleteEntity(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entities[id]; !ok {
		return ledger.ErrNotFound
	}
	delete(m.entities, id)
	// Cascade: accounts and transactions owned by the entity.
	for accID, acc := range m.accounts {
		if acc.EntityID == id {
			delete(m.accounts, accID)
		}
	}
	for txnID, txn := range m.txns {
		if txn.EntityID == id {
			delete(m.txns, txnID)
			delete(m.entries, txnID)
		}
	}
	return nil
}

// Account groups ----------------------------------------------------------

func (m *Memory) AccountGroups(ctx context.Context) ([]ledger.AccountGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ledger.AccountGroup, 0, len(m.groups))
	for _, g := range m.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *Memory) AccountGroup(ctx context.Context, id string) (ledger.AccountGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.groups[id]
	if !ok {
		return ledger.AccountGroup{}, ledger.ErrNotFound
	}
	return g, nil
}

func (m *Memory) CreateAccountGroup(ctx context.Context, in GroupInput) (ledger.AccountGroup, error) {
	if !in.AccountType.Valid() {
		return ledger.AccountGroup{}, ledger.ErrInvalidType
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	g := ledger.AccountGroup{
		ID:           uuid.NewString(),
		Name:         in.Name,
		AccountType:  in.AccountType,
		ParentID:     in.ParentID,
		Description:  in.Description,
		DisplayOrder: in.DisplayOrder,
	}
	if err := m.groupArenaLocked().CheckParent(g.ID, g.ParentID); err != nil {
		return ledger.AccountGroup{}, err
	}
	m.groups[g.ID] = g
	return g, nil
}

func (m *Memory) UpdateAccountGroup(ctx context.Context, id string, patch GroupPatch) (ledger.AccountGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[id]
	if !ok {
		return ledger.AccountGroup{}, ledger.ErrNotFound
	}
	if patch.Name != nil {
		g.Name = *patch.Name
	}
	if patch.AccountType != nil {
		if !patch.AccountType.Valid() {
			return ledger.AccountGroup{}, ledger.ErrInvalidType
		}
		g.AccountType = *patch.AccountType
	}
	if patch.ParentID != nil {
		if err := m.groupArenaLocked().CheckParent(id, *patch.ParentID); err != nil {
			return ledger.AccountGroup{}, err
		}
		g.ParentID = *patch.ParentID
	}
	if patch.Description != nil {
		g.Description = *patch.Description
	}
	if patch.DisplayOrder != nil {
		g.DisplayOrder = *patch.DisplayOrder
	}
	m.groups[id] = g
	return g, nil
}

func (m *Memory) DeleteAccountGroup(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.groups[id]; !ok {
		return ledger.ErrNotFound
	}
	delete(m.groups, id)
	return nil
}

func (m *Memory) groupArenaLocked() ledger.GroupArena {
	arena := make(ledger.GroupArena, len(m.groups))
	for id, g := range m.groups {
		arena[id] = g
	}
	return arena
}

// Accounts ----------------------------------------------------------------

func (m *Memory) AccountsForEntity(ctx context.Context, entityID string) ([]ledger.AccountWithGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.entities[entityID]; !ok {
		return nil, ledger.ErrNotFound
	}
	var out []ledger.AccountWithGroup
	for _, acc := range m.accounts {
		if acc.EntityID != entityID {
			continue
		}
		out = append(out, ledger.AccountWithGroup{Account: acc, Group: m.groups[acc.AccountGroupID]})
	}
	sort.Slice(out, func(i, j int) bool {
		gi, gj := out[i].Group, out[j].Group
		if gi.DisplayOrder != gj.DisplayOrder {
			return gi.DisplayOrder < gj.DisplayOrder
		}
		ai, aj := out[i].Account, out[j].Account
		if ai.Code != aj.Code {
			return ai.Code < aj.Code
		}
		return ai.Name < aj.Name
	})
	return out, nil
}

func (m *Memory) Account(ctx context.Context, id string) (ledger.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acc, ok := m.accounts[id]
	if !ok {
		return ledger.Account{}, ledger.ErrNotFound
	}
	return acc, nil
}

func (m *Memory) CreateAccount(ctx context.Context, in AccountInput) (ledger.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entities[in.EntityID]; !ok {
		return ledger.Account{}, ledger.ErrNotFound
	}
	if _, ok := m.groups[in.AccountGroupID]; !ok {
		return ledger.Account{}, ledger.ErrNotFound
	}
	now := time.Now().UTC()
	acc := ledger.Account{
		ID:             uuid.NewString(),
		EntityID:       in.EntityID,
		AccountGroupID: in.AccountGroupID,
		ParentID:       in.ParentID,
		Code:           in.Code,
		Name:           in.Name,
		Description:    in.Description,
		Unit:           in.Unit,
		CostingMethod:  in.CostingMethod,
		IsActive:       in.IsActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := m.accountArenaLocked().CheckParent(acc.ID, acc.ParentID); err != nil {
		return ledger.Account{}, err
	}
	m.accounts[acc.ID] = acc
	return acc, nil
}

func (m *Memory) UpdateAccount(ctx context.Context, id string, patch AccountPatch) (ledger.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return ledger.Account{}, ledger.ErrNotFound
	}
	if patch.AccountGroupID != nil {
		if _, ok := m.groups[*patch.AccountGroupID]; !ok {
			return ledger.Account{}, ledger.ErrNotFound
		}
		acc.AccountGroupID = *patch.AccountGroupID
	}
	if patch.ParentID != nil {
		if err := m.accountArenaLocked().CheckParent(id, *patch.ParentID); err != nil {
			return ledger.Account{}, err
		}
		acc.ParentID = *patch.ParentID
	}
	if patch.Code != nil {
		acc.Code = *patch.Code
	}
	if patch.Name != nil {
		acc.Name = *patch.Name
	}
	if patch.Description != nil {
		acc.Description = *patch.Description
	}
	if patch.Unit != nil {
		acc.Unit = *patch.Unit
	}
	if patch.CostingMethod != nil {
		acc.CostingMethod = *patch.CostingMethod
	}
	if patch.ClosedDate != nil {
		acc.ClosedDate = *patch.ClosedDate
	}
	if patch.IsActive != nil {
		acc.IsActive = *patch.IsActive
	}
	acc.UpdatedAt = time.Now().UTC()
	m.accounts[id] = acc
	return acc, nil
}

func (m *Memory) DeleteAccount(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; !ok {
		return ledger.ErrNotFound
	}
	delete(m.accounts, id)
	return nil
}

func (m *Memory) accountArenaLocked() ledger.AccountArena {
	arena := make(ledger.AccountArena, len(m.accounts))
	for id, acc := range m.accounts {
		arena[id] = acc
	}
	return arena
}

// Transactions ------------------------------------------------------------

func (m *Memory) CreateTransaction(ctx context.Context, in ledger.TransactionInput, entries []ledger.EntryInput) (ledger.Transaction, error) {
	validated, err := ledger.ValidateEntries(entries)
	if err != nil {
		return ledger.Transaction{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entities[in.EntityID]; !ok {
		return ledger.Transaction{}, ledger.ErrNotFound
	}
	for _, e := range validated {
		if _, ok := m.accounts[e.AccountID]; !ok {
			return ledger.Transaction{}, ledger.ErrNotFound
		}
	}

	now := time.Now().UTC()
	txn := ledger.Transaction{
		ID:        ids.New(),
		EntityID:  in.EntityID,
		Date:      in.Date,
		Memo:      in.Memo,
		Reference: in.Reference,
		CreatedAt: now,
		UpdatedAt: now,
	}
	legs := make([]ledger.Entry, 0, len(validated))
	for _, e := range validated {
		legs = append(legs, ledger.Entry{
			ID:               ids.New(),
			TransactionID:    txn.ID,
			AccountID:        e.AccountID,
			Amount:           e.Amount,
			Note:             e.Note,
			TagID:            e.TagID,
			ReconciliationID: e.ReconciliationID,
		})
	}
	m.txns[txn.ID] = txn
	m.entries[txn.ID] = legs
	return txn, nil
}

func (m *Memory) Transaction(ctx context.Context, id string) (ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	txn, ok := m.txns[id]
	if !ok {
		return ledger.Transaction{}, ledger.ErrNotFound
	}
	return txn, nil
}

func (m *Memory) Transactions(ctx context.Context, entityID string, f TransactionFilter) ([]ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ledger.Transaction
	for _, txn := range m.txns {
		if txn.EntityID != entityID {
			continue
		}
		if f.StartDate != "" && txn.Date < f.StartDate {
			continue
		}
		if f.EndDate != "" && txn.Date > f.EndDate {
			continue
		}
		if f.AccountID != "" && !m.touchesAccountLocked(txn.ID, f.AccountID) {
			continue
		}
		out = append(out, txn)
	}
	// Newest first, matching the transaction list view.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID > out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *Memory) UpdateTransaction(ctx context.Context, id string, patch TransactionPatch) (ledger.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.txns[id]
	if !ok {
		return ledger.Transaction{}, ledger.ErrNotFound
	}
	if patch.Date != nil {
		txn.Date = *patch.Date
	}
	if patch.Memo != nil {
		txn.Memo = *patch.Memo
	}
	if patch.Reference != nil {
		txn.Reference = *patch.Reference
	}
	txn.UpdatedAt = time.Now().UTC()
	m.txns[id] = txn
	return txn, nil
}

func (m *Memory) DeleteTransaction(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.txns[id]; !ok {
		return ledger.ErrNotFound
	}
	delete(m.txns, id)
	delete(m.entries, id)
	return nil
}

func (m *Memory) touchesAccountLocked(txnID, accountID string) bool {
	for _, e := range m.entries[txnID] {
		if e.AccountID == accountID {
			return true
		}
	}
	return false
}

// Entry reads -------------------------------------------------------------

func (m *Memory) EntriesForAccount(ctx context.Context, accountID string, f EntryFilter) ([]ledger.JoinedEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.accounts[accountID]; !ok {
		return nil, ledger.ErrNotFound
	}
	var out []ledger.JoinedEntry
	for txnID, legs := range m.entries {
		txn := m.txns[txnID]
		if f.StartDate != "" && txn.Date < f.StartDate {
			continue
		}
		if f.EndDate != "" && txn.Date > f.EndDate {
			continue
		}
		for _, e := range legs {
			if e.AccountID != accountID {
				continue
			}
			if f.Unreconciled && e.ReconciliationID != "" {
				continue
			}
			out = append(out, ledger.JoinedEntry{
				Entry:                e,
				TransactionDate:      txn.Date,
				TransactionMemo:      txn.Memo,
				TransactionReference: txn.Reference,
				SiblingCount:         len(legs),
			})
		}
	}
	// Ascending (date, creation order); transaction ids are monotonic ULIDs.
	sort.Slice(out, func(i, j int) bool {
		if out[i].TransactionDate != out[j].TransactionDate {
			return out[i].TransactionDate < out[j].TransactionDate
		}
		return out[i].TransactionID < out[j].TransactionID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *Memory) EntriesForTransaction(ctx context.Context, transactionID string) ([]ledger.EntryWithAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	legs, ok := m.entries[transactionID]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	out := make([]ledger.EntryWithAccount, 0, len(legs))
	for _, e := range legs {
		acc := m.accounts[e.AccountID]
		group := m.groups[acc.AccountGroupID]
		out = append(out, ledger.EntryWithAccount{
			Entry:       e,
			AccountName: acc.Name,
			AccountPath: ledger.AccountPath(acc, group),
		})
	}
	return out, nil
}
