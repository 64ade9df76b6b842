package ledger

import "github.com/shopspring/decimal"

// Amount is money as a signed count of a unit's minor denomination (e.g.,
// cents). All engine arithmetic on amounts is exact integer arithmetic; no
// floats touch stored amounts anywhere in balance or ledger computation.
type Amount int64

// Sum folds amounts with plain integer addition.
func Sum(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total += a
	}
	return total
}

// Neg returns the amount with its sign flipped.
func (a Amount) Neg() Amount { return -a }

// Abs returns the magnitude of the amount.
func (a Amount) Abs() Amount {
	if a < 0 {
		return -a
	}
	return a
}

func (a Amount) IsZero() bool { return a == 0 }

// Display converts the stored amount to its human display value using the
// unit's divisor. This is the presentation boundary: the result is a decimal,
// never fed back into engine arithmetic.
func (a Amount) Display(divisor int64) decimal.Decimal {
	if divisor == 0 {
		divisor = 1
	}
	return decimal.New(int64(a), 0).Div(decimal.New(divisor, 0))
}

// DisplayIn formats the amount against a unit, with the unit's symbol if any.
func (a Amount) DisplayIn(u Unit) string {
	s := a.Display(u.DisplayDivisor).String()
	if u.Symbol != "" {
		return u.Symbol + s
	}
	return s
}
