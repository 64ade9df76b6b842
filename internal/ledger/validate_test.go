package ledger

import (
	"errors"
	"math/rand"
	"testing"
)

func TestValidateBalanced(t *testing.T) {
	entries := []EntryInput{
		{AccountID: "a", Amount: 500000},
		{AccountID: "b", Amount: -500000},
	}
	got, err := ValidateEntries(entries)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected validated set back, got %d entries", len(got))
	}
}

func TestValidateUnbalancedCarriesResidual(t *testing.T) {
	entries := []EntryInput{
		{AccountID: "a", Amount: 1000},
		{AccountID: "b", Amount: -999},
	}
	_, err := ValidateEntries(entries)
	var ub *UnbalancedError
	if !errors.As(err, &ub) {
		t.Fatalf("expected UnbalancedError, got %v", err)
	}
	if ub.Residual != 1 {
		t.Fatalf("residual = %d, want 1", ub.Residual)
	}
}

func TestValidateEmpty(t *testing.T) {
	if _, err := ValidateEntries(nil); !errors.Is(err, ErrNoEntries) {
		t.Fatalf("expected ErrNoEntries, got %v", err)
	}
}

// Random balanced sets must always pass; the same set with one leg skewed
// must always fail with the skew as residual.
func TestValidateRandomSets(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		n := 2 + rng.Intn(6)
		entries := make([]EntryInput, 0, n)
		var running Amount
		for j := 0; j < n-1; j++ {
			amt := Amount(rng.Int63n(1_000_000) - 500_000)
			running += amt
			entries = append(entries, EntryInput{AccountID: "x", Amount: amt})
		}
		entries = append(entries, EntryInput{AccountID: "y", Amount: -running})

		if _, err := ValidateEntries(entries); err != nil {
			t.Fatalf("balanced set %d rejected: %v", i, err)
		}

		skew := Amount(1 + rng.Int63n(1000))
		entries[0].Amount += skew
		_, err := ValidateEntries(entries)
		var ub *UnbalancedError
		if !errors.As(err, &ub) {
			t.Fatalf("skewed set %d accepted", i)
		}
		if ub.Residual != skew {
			t.Fatalf("set %d residual = %d, want %d", i, ub.Residual, skew)
		}
	}
}
