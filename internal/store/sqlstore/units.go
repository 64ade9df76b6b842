package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gotchoices/sereus-bonum/internal/ledger"
	"github.com/gotchoices/sereus-bonum/internal/store"
)

const unitColumns = `code, name, symbol, unit_type, display_divisor`

func scanUnit(row interface{ Scan(...any) error }) (ledger.Unit, error) {
	var u ledger.Unit
	err := row.Scan(&u.Code, &u.Name, &u.Symbol, &u.UnitType, &u.DisplayDivisor)
	return u, err
}

func (s *Store) Units(ctx context.Context) ([]ledger.Unit, error) {
	rows, err := s.db.QueryContext(ctx, `select `+unitColumns+` from units order by code asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ledger.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) Unit(ctx context.Context, code string) (ledger.Unit, error) {
	u, err := scanUnit(s.db.QueryRowContext(ctx,
		s.q(`select `+unitColumns+` from units where code = ?`), code))
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Unit{}, ledger.ErrNotFound
	}
	return u, err
}

func (s *Store) CreateUnit(ctx context.Context, u ledger.Unit) (ledger.Unit, error) {
	_, err := s.db.ExecContext(ctx, s.q(`
		insert into units (code, name, symbol, unit_type, display_divisor)
		values (?, ?, ?, ?, ?)
		on conflict (code) do update set
			name = excluded.name,
			symbol = excluded.symbol,
			unit_type = excluded.unit_type,
			display_divisor = excluded.display_divisor
	`), u.Code, u.Name, u.Symbol, string(u.UnitType), u.DisplayDivisor)
	if err != nil {
		return ledger.Unit{}, err
	}
	return u, nil
}

func (s *Store) UpdateUnit(ctx context.Context, code string, patch store.UnitPatch) (ledger.Unit, error) {
	u, err := s.Unit(ctx, code)
	if err != nil {
		return ledger.Unit{}, err
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
	_, err = s.db.ExecContext(ctx, s.q(`
		update units set name = ?, symbol = ?, unit_type = ?, display_divisor = ?
		where code = ?
	`), u.Name, u.Symbol, string(u.UnitType), u.DisplayDivisor, code)
	if err != nil {
		return ledger.Unit{}, err
	}
	return u, nil
}
