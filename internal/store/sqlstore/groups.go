package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/gotchoices/sereus-bonum/internal/ledger"
	"github.com/gotchoices/sereus-bonum/internal/store"
)

const groupColumns = `id, name, account_type, parent_id, description, display_order`

func scanGroup(row interface{ Scan(...any) error }) (ledger.AccountGroup, error) {
	var g ledger.AccountGroup
	var parent sql.NullString
	err := row.Scan(&g.ID, &g.Name, &g.AccountType, &parent, &g.Description, &g.DisplayOrder)
	if err != nil {
		return ledger.AccountGroup{}, err
	}
	g.ParentID = fromNull(parent)
	return g, nil
}

func (s *Store) AccountGroups(ctx context.Context) ([]ledger.AccountGroup, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+groupColumns+` from account_groups order by display_order asc, name asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ledger.AccountGroup
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Store) AccountGroup(ctx context.Context, id string) (ledger.AccountGroup, error) {
	g, err := scanGroup(s.db.QueryRowContext(ctx,
		s.q(`select `+groupColumns+` from account_groups where id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.AccountGroup{}, ledger.ErrNotFound
	}
	return g, err
}

func (s *Store) CreateAccountGroup(ctx context.Context, in store.GroupInput) (ledger.AccountGroup, error) {
	if !in.AccountType.Valid() {
		return ledger.AccountGroup{}, ledger.ErrInvalidType
	}
	g := ledger.AccountGroup{
		ID:           uuid.NewString(),
		Name:         in.Name,
		AccountType:  in.AccountType,
		ParentID:     in.ParentID,
		Description:  in.Description,
		DisplayOrder: in.DisplayOrder,
	}
	arena, err := s.groupArena(ctx)
	if err != nil {
		return ledger.AccountGroup{}, err
	}
	if err := arena.CheckParent(g.ID, g.ParentID); err != nil {
		return ledger.AccountGroup{}, err
	}
	_, err = s.db.ExecContext(ctx, s.q(`
		insert into account_groups (`+groupColumns+`)
		values (?, ?, ?, ?, ?, ?)
	`), g.ID, g.Name, string(g.AccountType), nullable(g.ParentID), g.Description, g.DisplayOrder)
	if err != nil {
		return ledger.AccountGroup{}, err
	}
	return g, nil
}

func (s *Store) UpdateAccountGroup(ctx context.Context, id string, patch store.GroupPatch) (ledger.AccountGroup, error) {
	g, err := s.AccountGroup(ctx, id)
	if err != nil {
		return ledger.AccountGroup{}, err
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
		arena, err := s.groupArena(ctx)
		if err != nil {
			return ledger.AccountGroup{}, err
		}
		if err := arena.CheckParent(id, *patch.ParentID); err != nil {
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
	_, err = s.db.ExecContext(ctx, s.q(`
		update account_groups set name = ?, account_type = ?, parent_id = ?,
			description = ?, display_order = ?
		where id = ?
	`), g.Name, string(g.AccountType), nullable(g.ParentID), g.Description, g.DisplayOrder, id)
	if err != nil {
		return ledger.AccountGroup{}, err
	}
	return g, nil
}

func (s *Store) DeleteAccountGroup(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`delete from account_groups where id = ?`), id)
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

func (s *Store) groupArena(ctx context.Context) (ledger.GroupArena, error) {
	groups, err := s.AccountGroups(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.NewGroupArena(groups), nil
}
