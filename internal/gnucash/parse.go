package gnucash

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Wire shapes for the namespaced GnuCash document. Field tags carry local
// names only, so the decoder matches elements whatever prefix the file binds
// (gnc:, act:, trn:, split:, cmdty:, ts:).
type xmlDocument struct {
	XMLName xml.Name
	Books   []xmlBook `xml:"book"`
}

type xmlBook struct {
	Commodities  []xmlCommodity   `xml:"commodity"`
	Accounts     []xmlAccount     `xml:"account"`
	Transactions []xmlTransaction `xml:"transaction"`
}

type xmlCommodity struct {
	Space    string `xml:"space"`
	ID       string `xml:"id"`
	Name     string `xml:"name"`
	Fraction string `xml:"fraction"`
}

type xmlAccount struct {
	ID          string    `xml:"id"`
	Name        string    `xml:"name"`
	Type        string    `xml:"type"`
	Code        string    `xml:"code"`
	Description string    `xml:"description"`
	Parent      string    `xml:"parent"`
	Slots       []xmlSlot `xml:"slots>slot"`
}

type xmlSlot struct {
	Key   string `xml:"key"`
	Value string `xml:"value"`
}

type xmlTimestamp struct {
	Date string `xml:"date"`
}

type xmlTransaction struct {
	ID          string       `xml:"id"`
	DatePosted  xmlTimestamp `xml:"date-posted"`
	Description string       `xml:"description"`
	Num         string       `xml:"num"`
	Splits      []xmlSplit   `xml:"splits>split"`
}

type xmlSplit struct {
	ID         string `xml:"id"`
	Account    string `xml:"account"`
	Value      string `xml:"value"`
	Memo       string `xml:"memo"`
	Reconciled string `xml:"reconciled-state"`
}

// Parse reads a GnuCash export (raw or gzip-compressed XML) into Books.
// Malformed elements are skipped with a warning; a document that cannot be
// read at all returns an error and no partial data.
func Parse(r io.Reader) (*Books, error) {
	xr, err := newReader(r)
	if err != nil {
		return nil, err
	}

	var doc xmlDocument
	if err := xml.NewDecoder(xr).Decode(&doc); err != nil {
		return nil, fmt.Errorf("gnucash: invalid XML: %w", err)
	}
	if doc.XMLName.Local != "gnc-v2" && doc.XMLName.Local != "gnucash" {
		return nil, fmt.Errorf("%w: unexpected root <%s>", ErrNoBook, doc.XMLName.Local)
	}
	if len(doc.Books) == 0 {
		return nil, ErrNoBook
	}

	books := &Books{}
	for _, book := range doc.Books {
		books.convertBook(book)
	}
	return books, nil
}

func (b *Books) convertBook(book xmlBook) {
	for _, c := range book.Commodities {
		b.convertCommodity(c)
	}
	for _, a := range book.Accounts {
		b.convertAccount(a)
	}
	for _, t := range book.Transactions {
		b.convertTransaction(t)
	}
}

func (b *Books) warnf(format string, args ...any) {
	b.Warnings = append(b.Warnings, fmt.Sprintf(format, args...))
}

func (b *Books) convertCommodity(c xmlCommodity) {
	space := strings.TrimSpace(c.Space)
	id := strings.TrimSpace(c.ID)
	if id == "" {
		b.warnf("commodity missing id (space=%q)", space)
		return
	}
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = id
	}
	var fraction int64
	if f := strings.TrimSpace(c.Fraction); f != "" {
		fraction, _ = strconv.ParseInt(f, 10, 64)
	}
	b.Commodities = append(b.Commodities, Commodity{
		ID:       space + ":" + id,
		Space:    space,
		Symbol:   id,
		Name:     name,
		Fraction: fraction,
	})
}

func (b *Books) convertAccount(a xmlAccount) {
	guid := strings.TrimSpace(a.ID)
	name := strings.TrimSpace(a.Name)
	typ := strings.TrimSpace(a.Type)
	if guid == "" || name == "" || typ == "" {
		b.warnf("account missing required fields: id=%q name=%q type=%q", guid, name, typ)
		return
	}
	placeholder := false
	for _, slot := range a.Slots {
		if strings.TrimSpace(slot.Key) == "placeholder" {
			placeholder = strings.TrimSpace(slot.Value) == "true"
		}
	}
	b.Accounts = append(b.Accounts, Account{
		GUID:        guid,
		Name:        name,
		Type:        typ,
		Code:        strings.TrimSpace(a.Code),
		Description: strings.TrimSpace(a.Description),
		ParentGUID:  strings.TrimSpace(a.Parent),
		Placeholder: placeholder,
	})
}

func (b *Books) convertTransaction(t xmlTransaction) {
	guid := strings.TrimSpace(t.ID)
	if guid == "" {
		b.warnf("transaction missing id")
		return
	}
	// GnuCash timestamps are "YYYY-MM-DD HH:MM:SS +0000"; only the civil
	// date carries over.
	date, _, _ := strings.Cut(strings.TrimSpace(t.DatePosted.Date), " ")
	if date == "" {
		b.warnf("transaction %s missing posted date", guid)
		return
	}

	entries := make([]Entry, 0, len(t.Splits))
	for _, s := range t.Splits {
		if e, ok := b.convertSplit(guid, s); ok {
			entries = append(entries, e)
		}
	}
	if len(entries) == 0 {
		b.warnf("transaction %s has no usable splits", guid)
		return
	}

	b.Transactions = append(b.Transactions, Transaction{
		GUID:        guid,
		Date:        date,
		Description: strings.TrimSpace(t.Description),
		Reference:   strings.TrimSpace(t.Num),
		Entries:     entries,
	})
}

func (b *Books) convertSplit(txnGUID string, s xmlSplit) (Entry, bool) {
	guid := strings.TrimSpace(s.ID)
	account := strings.TrimSpace(s.Account)
	if guid == "" || account == "" {
		b.warnf("split missing required fields in transaction %s: id=%q account=%q", txnGUID, guid, account)
		return Entry{}, false
	}
	value := strings.TrimSpace(s.Value)
	if value == "" {
		value = "0/1"
	}
	amount, err := ParseRational(value)
	if err != nil {
		b.warnf("split %s: %v", guid, err)
	}
	reconciled := strings.TrimSpace(s.Reconciled)
	if reconciled == "" {
		reconciled = "n"
	}
	return Entry{
		GUID:        guid,
		AccountGUID: account,
		Amount:      amount,
		Memo:        strings.TrimSpace(s.Memo),
		Reconciled:  reconciled,
	}, true
}
