package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/gotchoices/sereus-bonum/internal/ids"
	"github.com/gotchoices/sereus-bonum/internal/ledger"
	"github.com/gotchoices/sereus-bonum/internal/store"
)

const transactionColumns = `id, entity_id, date, memo, reference, created_at, updated_at`

func scanTransaction(row interface{ Scan(...any) error }) (ledger.Transaction, error) {
	var t ledger.Transaction
	var created, updated string
	err := row.Scan(&t.ID, &t.EntityID, &t.Date, &t.Memo, &t.Reference, &created, &updated)
	if err != nil {
		return ledger.Transaction{}, err
	}
	t.CreatedAt = parseTime(created)
	t.UpdatedAt = parseTime(updated)
	return t, nil
}

// CreateTransaction validates the entries, then writes the header and every
// leg inside one transaction. Either all rows land or none do.
func (s *Store) CreateTransaction(ctx context.Context, in ledger.TransactionInput, entries []ledger.EntryInput) (ledger.Transaction, error) {
	validated, err := ledger.ValidateEntries(entries)
	if err != nil {
		return ledger.Transaction{}, err
	}
	if _, err := s.Entity(ctx, in.EntityID); err != nil {
		return ledger.Transaction{}, err
	}
	for _, e := range validated {
		if _, err := s.Account(ctx, e.AccountID); err != nil {
			return ledger.Transaction{}, err
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

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ledger.Transaction{}, err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, s.q(`
		insert into transactions (`+transactionColumns+`)
		values (?, ?, ?, ?, ?, ?, ?)
	`), txn.ID, txn.EntityID, txn.Date, txn.Memo, txn.Reference, fmtTime(now), fmtTime(now))
	if err != nil {
		return ledger.Transaction{}, err
	}
	for _, e := range validated {
		_, err = tx.ExecContext(ctx, s.q(`
			insert into entries (id, transaction_id, account_id, amount, note, tag_id, reconciliation_id)
			values (?, ?, ?, ?, ?, ?, ?)
		`), ids.New(), txn.ID, e.AccountID, int64(e.Amount), e.Note, e.TagID, e.ReconciliationID)
		if err != nil {
			return ledger.Transaction{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return ledger.Transaction{}, err
	}
	return txn, nil
}

func (s *Store) Transaction(ctx context.Context, id string) (ledger.Transaction, error) {
	t, err := scanTransaction(s.db.QueryRowContext(ctx,
		s.q(`select `+transactionColumns+` from transactions where id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Transaction{}, ledger.ErrNotFound
	}
	return t, err
}

func (s *Store) Transactions(ctx context.Context, entityID string, f store.TransactionFilter) ([]ledger.Transaction, error) {
	query := `select ` + transactionColumns + ` from transactions where entity_id = ?`
	args := []any{entityID}
	if f.StartDate != "" {
		query += ` and date >= ?`
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		query += ` and date <= ?`
		args = append(args, f.EndDate)
	}
	if f.AccountID != "" {
		query += ` and exists (select 1 from entries e where e.transaction_id = transactions.id and e.account_id = ?)`
		args = append(args, f.AccountID)
	}
	// Newest first, matching the transaction list view.
	query += ` order by date desc, id desc`
	if f.Limit > 0 {
		query += ` limit ` + strconv.Itoa(f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ledger.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) UpdateTransaction(ctx context.Context, id string, patch store.TransactionPatch) (ledger.Transaction, error) {
	t, err := s.Transaction(ctx, id)
	if err != nil {
		return ledger.Transaction{}, err
	}
	if patch.Date != nil {
		t.Date = *patch.Date
	}
	if patch.Memo != nil {
		t.Memo = *patch.Memo
	}
	if patch.Reference != nil {
		t.Reference = *patch.Reference
	}
	t.UpdatedAt = time.Now().UTC()
	_, err = s.db.ExecContext(ctx, s.q(`
		update transactions set date = ?, memo = ?, reference = ?, updated_at = ?
		where id = ?
	`), t.Date, t.Memo, t.Reference, fmtTime(t.UpdatedAt), id)
	if err != nil {
		return ledger.Transaction{}, err
	}
	return t, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	if _, err := s.Transaction(ctx, id); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, s.q(`delete from entries where transaction_id = ?`), id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, s.q(`delete from transactions where id = ?`), id); err != nil {
		return err
	}
	return tx.Commit()
}

// EntriesForAccount returns the account's entries joined to their transaction
// header and sibling count, ascending by (date, transaction id). Transaction
// ids are monotonic ULIDs, so the id ordering is creation ordering.
func (s *Store) EntriesForAccount(ctx context.Context, accountID string, f store.EntryFilter) ([]ledger.JoinedEntry, error) {
	if _, err := s.Account(ctx, accountID); err != nil {
		return nil, err
	}
	query := `
		select e.id, e.transaction_id, e.account_id, e.amount, e.note, e.tag_id, e.reconciliation_id,
		       t.date, t.memo, t.reference,
		       (select count(*) from entries s where s.transaction_id = e.transaction_id) as sibling_count
		from entries e
		join transactions t on t.id = e.transaction_id
		where e.account_id = ?`
	args := []any{accountID}
	if f.StartDate != "" {
		query += ` and t.date >= ?`
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		query += ` and t.date <= ?`
		args = append(args, f.EndDate)
	}
	if f.Unreconciled {
		query += ` and e.reconciliation_id = ''`
	}
	query += ` order by t.date asc, t.id asc`
	if f.Limit > 0 {
		query += ` limit ` + strconv.Itoa(f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ledger.JoinedEntry
	for rows.Next() {
		var j ledger.JoinedEntry
		var amount int64
		err := rows.Scan(&j.ID, &j.TransactionID, &j.AccountID, &amount, &j.Note,
			&j.TagID, &j.ReconciliationID,
			&j.TransactionDate, &j.TransactionMemo, &j.TransactionReference, &j.SiblingCount)
		if err != nil {
			return nil, err
		}
		j.Amount = ledger.Amount(amount)
		out = append(out, j)
	}
	return out, rows.Err()
}

// EntriesForTransaction joins each leg to its account's name and display
// path for offset and split rendering.
func (s *Store) EntriesForTransaction(ctx context.Context, transactionID string) ([]ledger.EntryWithAccount, error) {
	if _, err := s.Transaction(ctx, transactionID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, s.q(`
		select e.id, e.transaction_id, e.account_id, e.amount, e.note, e.tag_id, e.reconciliation_id,
		       a.name, a.code, g.name, g.account_type
		from entries e
		join accounts a on a.id = e.account_id
		join account_groups g on g.id = a.account_group_id
		where e.transaction_id = ?
		order by e.id asc
	`), transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ledger.EntryWithAccount
	for rows.Next() {
		var ea ledger.EntryWithAccount
		var amount int64
		var acc ledger.Account
		var group ledger.AccountGroup
		err := rows.Scan(&ea.ID, &ea.TransactionID, &ea.AccountID, &amount, &ea.Note,
			&ea.TagID, &ea.ReconciliationID,
			&acc.Name, &acc.Code, &group.Name, &group.AccountType)
		if err != nil {
			return nil, err
		}
		ea.Amount = ledger.Amount(amount)
		ea.AccountName = acc.Name
		ea.AccountPath = ledger.AccountPath(acc, group)
		out = append(out, ea)
	}
	return out, rows.Err()
}
