package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TransactionKind is the user-facing expense-or-income choice. It is a
// convenience for forms only: the stored representation is the sign of
// Transaction.Amount, and Classify is the sole way to recover the kind.
type TransactionKind string

const (
	KindExpense TransactionKind = "expense"
	KindIncome  TransactionKind = "income"
)

// ParseKind resolves a user-supplied kind string.
func ParseKind(s string) (TransactionKind, error) {
	switch TransactionKind(s) {
	case KindExpense, KindIncome:
		return TransactionKind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// ToStoredAmount canonicalizes an entered magnitude into the stored signed
// amount: income is stored negative, expense positive. Users enter
// magnitudes, so a negative input is rejected rather than silently folded.
func ToStoredAmount(kind TransactionKind, entered decimal.Decimal) (decimal.Decimal, error) {
	if entered.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: got %s", ErrNegativeAmount, entered)
	}
	switch kind {
	case KindIncome:
		return entered.Abs().Neg(), nil
	case KindExpense:
		return entered.Abs(), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// ToStoredClientFacingAmount resolves the client-facing portion of a
// transaction. Income is always fully client-attributed, so its
// client-facing amount equals the stored signed amount exactly. For an
// expense the caller decides, and null means "not yet decided".
func ToStoredClientFacingAmount(kind TransactionKind, stored decimal.Decimal, entered decimal.NullDecimal) decimal.NullDecimal {
	if kind == KindIncome {
		return decimal.NullDecimal{Decimal: stored, Valid: true}
	}
	return entered
}

// Classify derives the kind from a stored signed amount. This is the only
// place classification happens; everything reading stored data goes
// through here so edits and reads can never disagree.
func Classify(stored decimal.Decimal) TransactionKind {
	if stored.IsNegative() {
		return KindIncome
	}
	return KindExpense
}
