package gnucash

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/gotchoices/sereus-bonum/internal/ledger"
)

// ParseRational converts a "numerator/denominator" amount string to minor
// units. A denominator of 100 means the numerator already is the minor-unit
// integer and passes through unrounded. Any other denominator is normalized
// to a 2-decimal unit with half-up rounding. The conversion is a pure
// function of the string, so re-importing the same file yields the same
// integers.
func ParseRational(s string) (ledger.Amount, error) {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return 0, fmt.Errorf("not a rational: %q", s)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(num), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad numerator in %q", s)
	}
	d, err := strconv.ParseInt(strings.TrimSpace(den), 10, 64)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("bad denominator in %q", s)
	}
	if d == 100 {
		return ledger.Amount(n), nil
	}
	// round(n/d*100) without floats: half-up is floor((200n+d)/(2d)).
	if n > math.MaxInt64/200 || n < math.MinInt64/200 || d > math.MaxInt64/2 {
		return bigRational(s, n, d)
	}
	return ledger.Amount(floorDiv(200*n+d, 2*d)), nil
}

// bigRational handles values whose intermediate products would overflow
// int64. big.Int.Div floors for a positive divisor, matching floorDiv.
func bigRational(s string, n, d int64) (ledger.Amount, error) {
	num := new(big.Int).Mul(big.NewInt(n), big.NewInt(200))
	num.Add(num, big.NewInt(d))
	den := new(big.Int).Mul(big.NewInt(d), big.NewInt(2))
	q := num.Div(num, den)
	if !q.IsInt64() {
		return 0, fmt.Errorf("amount out of range in %q", s)
	}
	return ledger.Amount(q.Int64()), nil
}

// floorDiv divides rounding toward negative infinity. Go's / truncates
// toward zero, which is wrong for negative numerators here.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
