package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gotchoices/sereus-bonum/internal/ledger"
	"github.com/gotchoices/sereus-bonum/internal/store"
)

const accountColumns = `id, entity_id, account_group_id, parent_id, code, name, description, unit, costing_method, closed_date, is_active, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (ledger.Account, error) {
	var a ledger.Account
	var parent sql.NullString
	var created, updated string
	err := row.Scan(&a.ID, &a.EntityID, &a.AccountGroupID, &parent, &a.Code, &a.Name,
		&a.Description, &a.Unit, &a.CostingMethod, &a.ClosedDate, &a.IsActive, &created, &updated)
	if err != nil {
		return ledger.Account{}, err
	}
	a.ParentID = fromNull(parent)
	a.CreatedAt = parseTime(created)
	a.UpdatedAt = parseTime(updated)
	return a, nil
}

func (s *Store) AccountsForEntity(ctx context.Context, entityID string) ([]ledger.AccountWithGroup, error) {
	if _, err := s.Entity(ctx, entityID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, s.q(`
		select a.id, a.entity_id, a.account_group_id, a.parent_id, a.code, a.name,
		       a.description, a.unit, a.costing_method, a.closed_date, a.is_active,
		       a.created_at, a.updated_at,
		       g.id, g.name, g.account_type, g.parent_id, g.description, g.display_order
		from accounts a
		join account_groups g on g.id = a.account_group_id
		where a.entity_id = ?
		order by g.display_order asc, a.code asc, a.name asc
	`), entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.AccountWithGroup
	for rows.Next() {
		var a ledger.Account
		var g ledger.AccountGroup
		var accParent, groupParent sql.NullString
		var created, updated string
		err := rows.Scan(&a.ID, &a.EntityID, &a.AccountGroupID, &accParent, &a.Code, &a.Name,
			&a.Description, &a.Unit, &a.CostingMethod, &a.ClosedDate, &a.IsActive,
			&created, &updated,
			&g.ID, &g.Name, &g.AccountType, &groupParent, &g.Description, &g.DisplayOrder)
		if err != nil {
			return nil, err
		}
		a.ParentID = fromNull(accParent)
		a.CreatedAt = parseTime(created)
		a.UpdatedAt = parseTime(updated)
		g.ParentID = fromNull(groupParent)
		out = append(out, ledger.AccountWithGroup{Account: a, Group: g})
	}
	return out, rows.Err()
}

func (s *Store) Account(ctx context.Context, id string) (ledger.Account, error) {
	a, err := scanAccount(s.db.QueryRowContext(ctx,
		s.q(`select `+accountColumns+` from accounts where id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Account{}, ledger.ErrNotFound
	}
	return a, err
}

func (s *Store) CreateAccount(ctx context.Context, in store.AccountInput) (ledger.Account, error) {
	if _, err := s.Entity(ctx, in.EntityID); err != nil {
		return ledger.Account{}, err
	}
	if _, err := s.AccountGroup(ctx, in.AccountGroupID); err != nil {
		return ledger.Account{}, err
	}
	now := time.Now().UTC()
	a := ledger.Account{
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
	arena, err := s.accountArena(ctx, in.EntityID)
	if err != nil {
		return ledger.Account{}, err
	}
	if err := arena.CheckParent(a.ID, a.ParentID); err != nil {
		return ledger.Account{}, err
	}
	_, err = s.db.ExecContext(ctx, s.q(`
		insert into accounts (`+accountColumns+`)
		values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), a.ID, a.EntityID, a.AccountGroupID, nullable(a.ParentID), a.Code, a.Name,
		a.Description, a.Unit, string(a.CostingMethod), a.ClosedDate, a.IsActive,
		fmtTime(now), fmtTime(now))
	if err != nil {
		return ledger.Account{}, err
	}
	return a, nil
}

func (s *Store) UpdateAccount(ctx context.Context, id string, patch store.AccountPatch) (ledger.Account, error) {
	a, err := s.Account(ctx, id)
	if err != nil {
		return ledger.Account{}, err
	}
	if patch.AccountGroupID != nil {
		if _, err := s.AccountGroup(ctx, *patch.AccountGroupID); err != nil {
			return ledger.Account{}, err
		}
		a.AccountGroupID = *patch.AccountGroupID
	}
	if patch.ParentID != nil {
		arena, err := s.accountArena(ctx, a.EntityID)
		if err != nil {
			return ledger.Account{}, err
		}
		if err := arena.CheckParent(id, *patch.ParentID); err != nil {
			return ledger.Account{}, err
		}
		a.ParentID = *patch.ParentID
	}
	if patch.Code != nil {
		a.Code = *patch.Code
	}
	if patch.Name != nil {
		a.Name = *patch.Name
	}
	if patch.Description != nil {
		a.Description = *patch.Description
	}
	if patch.Unit != nil {
		a.Unit = *patch.Unit
	}
	if patch.CostingMethod != nil {
		a.CostingMethod = *patch.CostingMethod
	}
	if patch.ClosedDate != nil {
		a.ClosedDate = *patch.ClosedDate
	}
	if patch.IsActive != nil {
		a.IsActive = *patch.IsActive
	}
	a.UpdatedAt = time.Now().UTC()
	_, err = s.db.ExecContext(ctx, s.q(`
		update accounts set account_group_id = ?, parent_id = ?, code = ?, name = ?,
			description = ?, unit = ?, costing_method = ?, closed_date = ?,
			is_active = ?, updated_at = ?
		where id = ?
	`), a.AccountGroupID, nullable(a.ParentID), a.Code, a.Name, a.Description,
		a.Unit, string(a.CostingMethod), a.ClosedDate, a.IsActive, fmtTime(a.UpdatedAt), id)
	if err != nil {
		return ledger.Account{}, err
	}
	return a, nil
}

func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`delete from accounts where id = ?`), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (s *Store) accountArena(ctx context.Context, entityID string) (ledger.AccountArena, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`select `+accountColumns+` from accounts where entity_id = ?`), entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []ledger.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ledger.NewAccountArena(accounts), nil
}
