package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                                   "/",
		"/metrics":                           "/metrics",
		"/v1/entities/abc":                   "/v1/entities/:id",
		"/v1/entities/abc/balance-sheet":     "/v1/entities/:id/balance-sheet",
		"/v1/entities/abc/accounts":          "/v1/entities/:id/accounts",
		"/v1/accounts/abc/balance":           "/v1/accounts/:id/balance",
		"/v1/accounts/abc/ledger":            "/v1/accounts/:id/ledger",
		"/v1/accounts/abc/extra":             "/v1/accounts/abc/extra",
		"/v1/transactions/abc":               "/v1/transactions/:id",
		"/v1/transactions":                   "/v1/transactions",
		"/v1/import/gnucash":                 "/v1/import/gnucash",
		"/v1/entities/abc/transactions?n=10": "/v1/entities/:id/transactions",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
