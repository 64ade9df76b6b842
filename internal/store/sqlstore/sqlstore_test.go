package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/gotchoices/sereus-bonum/internal/ledger"
	"github.com/gotchoices/sereus-bonum/internal/store"
)

func TestRebind(t *testing.T) {
	q := `insert into units (code, name) values (?, ?)`
	if got := Rebind(SQLite, q); got != q {
		t.Fatalf("sqlite rebind changed query: %q", got)
	}
	want := `insert into units (code, name) values ($1, $2)`
	if got := Rebind(Postgres, q); got != want {
		t.Fatalf("postgres rebind = %q, want %q", got, want)
	}
}

func newMockStore(t *testing.T, dialect Dialect) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return NewWithDB(db, dialect), mock
}

func entityRow() *sqlmock.Rows {
	now := time.Now().UTC().Format(timeLayout)
	return sqlmock.NewRows([]string{
		"id", "name", "description", "fiscal_year_end", "base_unit",
		"default_costing_method", "created_at", "updated_at",
	}).AddRow("ent-1", "Personal", "", "", "USD", "", now, now)
}

func accountRow(id string) *sqlmock.Rows {
	now := time.Now().UTC().Format(timeLayout)
	return sqlmock.NewRows([]string{
		"id", "entity_id", "account_group_id", "parent_id", "code", "name",
		"description", "unit", "costing_method", "closed_date", "is_active",
		"created_at", "updated_at",
	}).AddRow(id, "ent-1", "grp-1", nil, "1000", "Checking", "", "USD", "", "", true, now, now)
}

func TestUnitNotFound(t *testing.T) {
	s, mock := newMockStore(t, SQLite)
	mock.ExpectQuery("from units where code").
		WithArgs("XXX").
		WillReturnRows(sqlmock.NewRows([]string{"code", "name", "symbol", "unit_type", "display_divisor"}))

	if _, err := s.Unit(context.Background(), "XXX"); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateTransactionRejectsUnbalancedBeforeSQL(t *testing.T) {
	s, mock := newMockStore(t, SQLite)
	// No expectations: the validator must fail before any query runs.
	_, err := s.CreateTransaction(context.Background(),
		ledger.TransactionInput{EntityID: "ent-1", Date: "2024-01-01"},
		[]ledger.EntryInput{
			{AccountID: "acc-1", Amount: 100},
			{AccountID: "acc-2", Amount: -99},
		})
	var unbalanced *ledger.UnbalancedError
	if !errors.As(err, &unbalanced) || unbalanced.Residual != 1 {
		t.Fatalf("expected unbalanced residual 1, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateTransactionAtomic(t *testing.T) {
	s, mock := newMockStore(t, SQLite)

	mock.ExpectQuery("from entities where id").WithArgs("ent-1").WillReturnRows(entityRow())
	mock.ExpectQuery("from accounts where id").WithArgs("acc-1").WillReturnRows(accountRow("acc-1"))
	mock.ExpectQuery("from accounts where id").WithArgs("acc-2").WillReturnRows(accountRow("acc-2"))
	mock.ExpectBegin()
	mock.ExpectExec("insert into transactions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("insert into entries").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("insert into entries").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	txn, err := s.CreateTransaction(context.Background(),
		ledger.TransactionInput{EntityID: "ent-1", Date: "2024-01-01", Memo: "Opening"},
		[]ledger.EntryInput{
			{AccountID: "acc-1", Amount: 500000},
			{AccountID: "acc-2", Amount: -500000},
		})
	if err != nil {
		t.Fatal(err)
	}
	if txn.ID == "" || txn.Date != "2024-01-01" {
		t.Fatalf("transaction = %+v", txn)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateTransactionRollsBackOnEntryError(t *testing.T) {
	s, mock := newMockStore(t, SQLite)

	mock.ExpectQuery("from entities where id").WithArgs("ent-1").WillReturnRows(entityRow())
	mock.ExpectQuery("from accounts where id").WithArgs("acc-1").WillReturnRows(accountRow("acc-1"))
	mock.ExpectQuery("from accounts where id").WithArgs("acc-2").WillReturnRows(accountRow("acc-2"))
	mock.ExpectBegin()
	mock.ExpectExec("insert into transactions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("insert into entries").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := s.CreateTransaction(context.Background(),
		ledger.TransactionInput{EntityID: "ent-1", Date: "2024-01-01"},
		[]ledger.EntryInput{
			{AccountID: "acc-1", Amount: 100},
			{AccountID: "acc-2", Amount: -100},
		})
	if err == nil {
		t.Fatal("expected entry insert failure to surface")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestEntriesForAccountOrderingAndFilters(t *testing.T) {
	s, mock := newMockStore(t, SQLite)

	mock.ExpectQuery("from accounts where id").WithArgs("acc-1").WillReturnRows(accountRow("acc-1"))
	mock.ExpectQuery(`order by t.date asc, t.id asc`).
		WithArgs("acc-1", "2024-01-01", "2024-12-31").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "transaction_id", "account_id", "amount", "note", "tag_id",
			"reconciliation_id", "date", "memo", "reference", "sibling_count",
		}).
			AddRow("e1", "t1", "acc-1", int64(500000), "", "", "", "2024-01-01", "Opening", "", 2).
			AddRow("e2", "t2", "acc-1", int64(-15000), "", "", "", "2024-01-20", "Errands", "101", 3))

	entries, err := s.EntriesForAccount(context.Background(), "acc-1", store.EntryFilter{
		StartDate: "2024-01-01",
		EndDate:   "2024-12-31",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d", len(entries))
	}
	if entries[0].Amount != 500000 || entries[0].SiblingCount != 2 {
		t.Fatalf("entries[0] = %+v", entries[0])
	}
	if entries[1].TransactionReference != "101" || entries[1].SiblingCount != 3 {
		t.Fatalf("entries[1] = %+v", entries[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteAccountGroupNotFound(t *testing.T) {
	s, mock := newMockStore(t, SQLite)
	mock.ExpectExec("delete from account_groups").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.DeleteAccountGroup(context.Background(), "missing"); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateUnitMergesPatch(t *testing.T) {
	s, mock := newMockStore(t, SQLite)
	mock.ExpectQuery("from units where code").
		WithArgs("USD").
		WillReturnRows(sqlmock.NewRows([]string{"code", "name", "symbol", "unit_type", "display_divisor"}).
			AddRow("USD", "US Dollar", "$", "FIAT", int64(100)))
	mock.ExpectExec("update units set").
		WithArgs("US Dollars", "$", "FIAT", int64(100), "USD").
		WillReturnResult(sqlmock.NewResult(0, 1))

	name := "US Dollars"
	u, err := s.UpdateUnit(context.Background(), "USD", store.UnitPatch{Name: &name})
	if err != nil {
		t.Fatal(err)
	}
	if u.Name != "US Dollars" || u.DisplayDivisor != 100 {
		t.Fatalf("unit = %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestEntriesForAccountUnreconciledOnly(t *testing.T) {
	s, mock := newMockStore(t, SQLite)

	mock.ExpectQuery("from accounts where id").WithArgs("acc-1").WillReturnRows(accountRow("acc-1"))
	mock.ExpectQuery(`and e.reconciliation_id = ''`).
		WithArgs("acc-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "transaction_id", "account_id", "amount", "note", "tag_id",
			"reconciliation_id", "date", "memo", "reference", "sibling_count",
		}).
			AddRow("e1", "t1", "acc-1", int64(500000), "", "", "", "2024-01-01", "Opening", "", 2))

	entries, err := s.EntriesForAccount(context.Background(), "acc-1", store.EntryFilter{
		Unreconciled: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].ReconciliationID != "" {
		t.Fatalf("entries = %+v", entries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
