package gnucash

import (
	"bytes"
	"compress/gzip"
	"errors"
	"strings"
	"testing"
)

const fixtureXML = `<?xml version="1.0" encoding="utf-8" ?>
<gnc-v2
     xmlns:gnc="http://www.gnucash.org/XML/gnc"
     xmlns:act="http://www.gnucash.org/XML/act"
     xmlns:book="http://www.gnucash.org/XML/book"
     xmlns:cmdty="http://www.gnucash.org/XML/cmdty"
     xmlns:slot="http://www.gnucash.org/XML/slot"
     xmlns:split="http://www.gnucash.org/XML/split"
     xmlns:trn="http://www.gnucash.org/XML/trn"
     xmlns:ts="http://www.gnucash.org/XML/ts">
<gnc:book version="2.0.0">
<book:id type="guid">b0000000000000000000000000000000</book:id>
<gnc:commodity version="2.0.0">
  <cmdty:space>CURRENCY</cmdty:space>
  <cmdty:id>USD</cmdty:id>
  <cmdty:name>US Dollar</cmdty:name>
  <cmdty:fraction>100</cmdty:fraction>
</gnc:commodity>
<gnc:account version="2.0.0">
  <act:name>Root Account</act:name>
  <act:id type="guid">root0001</act:id>
  <act:type>ROOT</act:type>
</gnc:account>
<gnc:account version="2.0.0">
  <act:name>Assets</act:name>
  <act:id type="guid">asset001</act:id>
  <act:type>ASSET</act:type>
  <act:parent type="guid">root0001</act:parent>
  <act:slots>
    <slot>
      <slot:key>placeholder</slot:key>
      <slot:value type="string">true</slot:value>
    </slot>
  </act:slots>
</gnc:account>
<gnc:account version="2.0.0">
  <act:name>Checking</act:name>
  <act:id type="guid">check001</act:id>
  <act:type>BANK</act:type>
  <act:code>1000</act:code>
  <act:description>Main checking</act:description>
  <act:parent type="guid">asset001</act:parent>
</gnc:account>
<gnc:account version="2.0.0">
  <act:name>Groceries</act:name>
  <act:id type="guid">groc0001</act:id>
  <act:type>EXPENSE</act:type>
  <act:parent type="guid">root0001</act:parent>
</gnc:account>
<gnc:account version="2.0.0">
  <act:name>Broken</act:name>
  <act:id type="guid">broke001</act:id>
</gnc:account>
<gnc:transaction version="2.0.0">
  <trn:id type="guid">txn00001</trn:id>
  <trn:date-posted>
    <ts:date>2024-03-05 10:59:00 +0000</ts:date>
  </trn:date-posted>
  <trn:description>Grocery run</trn:description>
  <trn:num>204</trn:num>
  <trn:splits>
    <trn:split>
      <split:id type="guid">split001</split:id>
      <split:reconciled-state>y</split:reconciled-state>
      <split:value>-4550/100</split:value>
      <split:account type="guid">check001</split:account>
    </trn:split>
    <trn:split>
      <split:id type="guid">split002</split:id>
      <split:memo>weekly</split:memo>
      <split:reconciled-state>n</split:reconciled-state>
      <split:value>4550/100</split:value>
      <split:account type="guid">groc0001</split:account>
    </trn:split>
  </trn:splits>
</gnc:transaction>
<gnc:transaction version="2.0.0">
  <trn:id type="guid">txn00002</trn:id>
  <trn:date-posted>
    <ts:date>2024-03-09 00:00:00 +0000</ts:date>
  </trn:date-posted>
  <trn:description>Rounded import</trn:description>
  <trn:splits>
    <trn:split>
      <split:id type="guid">split003</split:id>
      <split:reconciled-state>n</split:reconciled-state>
      <split:value>-999/100</split:value>
      <split:account type="guid">check001</split:account>
    </trn:split>
    <trn:split>
      <split:id type="guid">split004</split:id>
      <split:reconciled-state>n</split:reconciled-state>
      <split:value>1000/100</split:value>
      <split:account type="guid">groc0001</split:account>
    </trn:split>
  </trn:splits>
</gnc:transaction>
</gnc:book>
</gnc-v2>
`

func TestParseFixture(t *testing.T) {
	books, err := Parse(strings.NewReader(fixtureXML))
	if err != nil {
		t.Fatal(err)
	}

	if len(books.Commodities) != 1 {
		t.Fatalf("commodities = %d, want 1", len(books.Commodities))
	}
	usd := books.Commodities[0]
	if usd.ID != "CURRENCY:USD" || usd.Symbol != "USD" || usd.Fraction != 100 {
		t.Fatalf("commodity = %+v", usd)
	}

	// Broken account lacks a type and is skipped with a warning.
	if len(books.Accounts) != 4 {
		t.Fatalf("accounts = %d, want 4", len(books.Accounts))
	}
	if len(books.Warnings) != 1 || !strings.Contains(books.Warnings[0], "broke001") {
		t.Fatalf("warnings = %v", books.Warnings)
	}

	var assets, checking Account
	for _, a := range books.Accounts {
		switch a.GUID {
		case "asset001":
			assets = a
		case "check001":
			checking = a
		}
	}
	if !assets.Placeholder {
		t.Fatal("placeholder slot not detected")
	}
	if checking.Placeholder {
		t.Fatal("checking wrongly flagged placeholder")
	}
	if checking.Type != "BANK" || checking.Code != "1000" || checking.ParentGUID != "asset001" {
		t.Fatalf("checking = %+v", checking)
	}

	if len(books.Transactions) != 2 {
		t.Fatalf("transactions = %d, want 2", len(books.Transactions))
	}
	txn := books.Transactions[0]
	if txn.GUID != "txn00001" || txn.Date != "2024-03-05" || txn.Reference != "204" {
		t.Fatalf("transaction = %+v", txn)
	}
	if len(txn.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(txn.Entries))
	}
	if txn.Entries[0].Amount != -4550 || txn.Entries[0].Reconciled != "y" {
		t.Fatalf("entry[0] = %+v", txn.Entries[0])
	}
	if txn.Entries[1].Amount != 4550 || txn.Entries[1].Memo != "weekly" {
		t.Fatalf("entry[1] = %+v", txn.Entries[1])
	}
}

func TestParseGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(fixtureXML)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	books, err := Parse(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(books.Accounts) != 4 || len(books.Transactions) != 2 {
		t.Fatalf("gzip parse: %d accounts, %d transactions", len(books.Accounts), len(books.Transactions))
	}
}

func TestParseInvalidXML(t *testing.T) {
	if _, err := Parse(strings.NewReader("<gnc-v2><gnc:book></gnc-v2>")); err == nil {
		t.Fatal("expected error for malformed XML")
	}
}

func TestParseWrongRoot(t *testing.T) {
	if _, err := Parse(strings.NewReader("<html></html>")); !errors.Is(err, ErrNoBook) {
		t.Fatalf("expected ErrNoBook, got %v", err)
	}
}

func TestParseMissingBook(t *testing.T) {
	if _, err := Parse(strings.NewReader("<gnc-v2></gnc-v2>")); !errors.Is(err, ErrNoBook) {
		t.Fatalf("expected ErrNoBook, got %v", err)
	}
}

func TestParseTruncatedGzip(t *testing.T) {
	if _, err := Parse(bytes.NewReader([]byte{0x1f, 0x8b, 0x00})); err == nil {
		t.Fatal("expected error for truncated gzip stream")
	}
}

func TestUnbalancedReported(t *testing.T) {
	books, err := Parse(strings.NewReader(fixtureXML))
	if err != nil {
		t.Fatal(err)
	}
	unbalanced := books.Unbalanced()
	if len(unbalanced) != 1 {
		t.Fatalf("unbalanced = %d, want 1", len(unbalanced))
	}
	if unbalanced[0].GUID != "txn00002" || unbalanced[0].Residual != 1 {
		t.Fatalf("unbalanced[0] = %+v", unbalanced[0])
	}
}
