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

const entityColumns = `id, name, description, fiscal_year_end, base_unit, default_costing_method, created_at, updated_at`

func scanEntity(row interface{ Scan(...any) error }) (ledger.Entity, error) {
	var e ledger.Entity
	var created, updated string
	err := row.Scan(&e.ID, &e.Name, &e.Description, &e.FiscalYearEnd,
		&e.BaseUnit, &e.DefaultCostingMethod, &created, &updated)
	if err != nil {
		return ledger.Entity{}, err
	}
	e.CreatedAt = parseTime(created)
	e.UpdatedAt = parseTime(updated)
	return e, nil
}

func (s *Store) Entities(ctx context.Context) ([]ledger.Entity, error) {
	rows, err := s.db.QueryContext(ctx, `select `+entityColumns+` from entities order by name asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ledger.Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Entity(ctx context.Context, id string) (ledger.Entity, error) {
	e, err := scanEntity(s.db.QueryRowContext(ctx,
		s.q(`select `+entityColumns+` from entities where id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Entity{}, ledger.ErrNotFound
	}
	return e, err
}

func (s *Store) CreateEntity(ctx context.Context, in store.EntityInput) (ledger.Entity, error) {
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
	_, err := s.db.ExecContext(ctx, s.q(`
		insert into entities (`+entityColumns+`)
		values (?, ?, ?, ?, ?, ?, ?, ?)
	`), e.ID, e.Name, e.Description, e.FiscalYearEnd, e.BaseUnit,
		string(e.DefaultCostingMethod), fmtTime(now), fmtTime(now))
	if err != nil {
		return ledger.Entity{}, err
	}
	return e, nil
}

func (s *Store) UpdateEntity(ctx context.Context, id string, patch store.EntityPatch) (ledger.Entity, error) {
	e, err := s.Entity(ctx, id)
	if err != nil {
		return ledger.Entity{}, err
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
	_, err = s.db.ExecContext(ctx, s.q(`
		update entities set name = ?, description = ?, fiscal_year_end = ?,
			base_unit = ?, default_costing_method = ?, updated_at = ?
		where id = ?
	`), e.Name, e.Description, e.FiscalYearEnd, e.BaseUnit,
		string(e.DefaultCostingMethod), fmtTime(e.UpdatedAt), id)
	if err != nil {
		return ledger.Entity{}, err
	}
	return e, nil
}

// DeleteEntity cascades explicitly inside one transaction, so the behavior
// does not depend on dialect-specific foreign key enforcement.
func (s *Store) DeleteEntity(ctx context.Context, id string) error {
	if _, err := s.Entity(ctx, id); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	steps := []string{
		`delete from entries where transaction_id in (select id from transactions where entity_id = ?)`,
		`delete from transactions where entity_id = ?`,
		`delete from accounts where entity_id = ?`,
		`delete from entities where id = ?`,
	}
	for _, stmt := range steps {
		if _, err := tx.ExecContext(ctx, s.q(stmt), id); err != nil {
			return err
		}
	}
	return tx.Commit()
}
