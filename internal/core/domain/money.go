package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

const (
	// MinRechargeAmount is the smallest wallet recharge, one rupee.
	MinRechargeAmount int64 = 100
	// MaxAmount caps any single amount at ten crore rupees.
	MaxAmount int64 = 100_000_000 * 100
)

var (
	hundred   = decimal.NewFromInt(100)
	maxAmount = decimal.NewFromInt(MaxAmount)

	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrAmountPrecision = errors.New("amount has more than two decimal places")
	ErrAmountTooLarge  = errors.New("amount exceeds the maximum")
)

// RupeesToPaise converts a rupee value into paise. Fractions of a paisa
// are rejected rather than rounded.
func RupeesToPaise(rupees decimal.Decimal) (int64, error) {
	if rupees.IsNegative() {
		return 0, ErrNegativeAmount
	}
	paise := rupees.Mul(hundred)
	if !paise.IsInteger() {
		return 0, ErrAmountPrecision
	}
	if paise.GreaterThan(maxAmount) {
		return 0, ErrAmountTooLarge
	}
	return paise.IntPart(), nil
}

// ParseRupees parses a decimal rupee string such as "500" or "500.00".
func ParseRupees(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return RupeesToPaise(d)
}

// PaiseToRupees returns the rupee value of an amount in paise.
func PaiseToRupees(paise int64) decimal.Decimal {
	return decimal.New(paise, -2)
}

// FormatRupees renders paise as a rupee string with two decimals, e.g. "2.00".
func FormatRupees(paise int64) string {
	return PaiseToRupees(paise).StringFixed(2)
}
